package database

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	// Load env
	_ "github.com/joho/godotenv/autoload"

	m "JobBridge-backend/internal/model"
	"JobBridge-backend/internal/utilities"
)

var testDBInstance *DBinstanceStruct
var teardown func(context.Context) error

// Exported test users
var (
	TestAdminUser     m.User
	TestApplicant1    m.User
	TestApplicant2    m.User
	TestCompanyUser1  m.User
	TestCompanyUser2  m.User
	TestSeedPassword  = "SeedPass123!"

	// Exported seeded job posts
	TestJobPostOpen     m.JobPost // uncapped, no requirements
	TestJobPostSingle   m.JobPost // cap 1, requires a resume
	TestJobPostScreened m.JobPost // cap 3, required docs + screening questions
)

// GetTestDB starts a PostgreSQL test container and returns a teardown function,
// the DB instance, and any error encountered during setup.
func GetTestDB() (func(context.Context) error, *DBinstanceStruct, error) {

	if testDBInstance != nil && teardown != nil {
		return teardown, testDBInstance, nil
	}

	// Database configuration
	var (
		dbName = "database"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:latest",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		return nil, nil, err
	}

	dbHost, err := dbContainer.Host(context.Background())
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	dbPort, err := dbContainer.MappedPort(context.Background(), nat.Port("5432/tcp"))
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	config := &DBConfig{
		useConstr: true,
		Constr:    fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", dbHost, dbPort.Port(), dbUser, dbPwd, dbName),
	}

	db, err := NewDBInstance(config)
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	if err := seedTestData(db); err != nil {
		_ = dbContainer.Terminate(context.Background())
		return nil, nil, err
	}

	testDBInstance = db
	teardown = dbContainer.Terminate

	return dbContainer.Terminate, db, nil
}

// seedTestData inserts sample users and job posts if the database is empty.
func seedTestData(db *DBinstanceStruct) error {
	var userCount int64
	if err := db.Model(&m.User{}).Count(&userCount).Error; err != nil {
		return err
	}

	// Ignore admin user that got create during NewDBInstance
	if userCount > 1 {
		return loadTestData(db)
	}

	userSpecs := []struct {
		username string
		email    string
		role     string
	}{
		{"applicant_1", "applicant1@example.com", m.RoleApplicant},
		{"applicant_2", "applicant2@example.com", m.RoleApplicant},
		{"company_user_1", "company1@example.com", m.RoleCompany},
		{"company_user_2", "company2@example.com", m.RoleCompany},
		{"admin_user", "admin@example.com", m.RoleAdmin},
	}

	// Pre-hash shared password for all seeded users
	hashedPwd, errHash := utilities.HashPassword(TestSeedPassword)
	if errHash != nil {
		return errHash
	}

	users := make([]m.User, 0, len(userSpecs))
	for _, s := range userSpecs {
		email := s.email
		users = append(users, m.User{
			ID:       uuid.New(),
			Username: s.username,
			Email:    &email,
			Role:     s.role,
			Password: hashedPwd,
		})
	}

	if err := db.Create(&users).Error; err != nil {
		return err
	}

	for _, u := range users {
		switch u.Username {
		case "applicant_1":
			TestApplicant1 = u
		case "applicant_2":
			TestApplicant2 = u
		case "company_user_1":
			TestCompanyUser1 = u
		case "company_user_2":
			TestCompanyUser2 = u
		case "admin_user":
			TestAdminUser = u
		}
	}

	// Seed job posts (only if none exist yet)
	var jobPostCount int64
	if err := db.Model(&m.JobPost{}).Count(&jobPostCount).Error; err != nil {
		return err
	}
	if jobPostCount == 0 {
		exp := time.Now().AddDate(0, 2, 0)

		jobPosts := []m.JobPost{
			{
				CompanyID: TestCompanyUser1.ID,
				Status:    m.JobStatusActive,
				EditableJobPostInfo: m.EditableJobPostInfo{
					Title:         "Backend Engineer",
					Desc:          "Work on Go microservices and database layers.",
					Req:           "Go basics; SQL familiarity",
					Location:      "Bangkok (Hybrid)",
					Type:          "Full-time",
					Salary:        "45000 THB",
					Tags:          []string{"go", "backend", "api"},
					Expiring:      &exp,
					MaxApplicants: 0,
				},
			},
			{
				CompanyID: TestCompanyUser1.ID,
				Status:    m.JobStatusActive,
				EditableJobPostInfo: m.EditableJobPostInfo{
					Title:             "Frontend Developer",
					Desc:              "Build a component library in React.",
					Req:               "JS/TS fundamentals",
					Location:          "Remote",
					Type:              "Full-time",
					Salary:            "40000 THB",
					Tags:              []string{"react", "typescript", "ui"},
					Expiring:          &exp,
					MaxApplicants:     1,
					RequiredDocuments: []string{"resume"},
				},
			},
			{
				CompanyID: TestCompanyUser2.ID,
				Status:    m.JobStatusActive,
				EditableJobPostInfo: m.EditableJobPostInfo{
					Title:              "Data Analyst",
					Desc:               "Support data cleansing and dashboard creation.",
					Req:                "SQL; basic statistics",
					Location:           "Chiang Mai (On-site)",
					Type:               "Contract",
					Salary:             "38000 THB",
					Tags:               []string{"data", "sql", "analytics"},
					Expiring:           &exp,
					MaxApplicants:      3,
					RequiredDocuments:  []string{"resume", "transcript"},
					ScreeningQuestions: []string{"Why do you want this role?", "Describe a dashboard you built."},
				},
			},
		}

		if err := db.Create(&jobPosts).Error; err != nil {
			return err
		}
		TestJobPostOpen = jobPosts[0]
		TestJobPostSingle = jobPosts[1]
		TestJobPostScreened = jobPosts[2]
	}

	return nil
}

// loadTestData populates exported variables when records already exist.
func loadTestData(db *DBinstanceStruct) error {
	var users []m.User
	if err := db.Where("username IN ?", []string{
		"applicant_1", "applicant_2", "company_user_1", "company_user_2", "admin_user",
	}).Find(&users).Error; err != nil {
		return err
	}
	for _, u := range users {
		switch u.Username {
		case "applicant_1":
			TestApplicant1 = u
		case "applicant_2":
			TestApplicant2 = u
		case "company_user_1":
			TestCompanyUser1 = u
		case "company_user_2":
			TestCompanyUser2 = u
		case "admin_user":
			TestAdminUser = u
		}
	}

	// Load first three job posts deterministically
	var posts []m.JobPost
	if err := db.Order("id ASC").Limit(3).Find(&posts).Error; err == nil {
		if len(posts) > 0 {
			TestJobPostOpen = posts[0]
		}
		if len(posts) > 1 {
			TestJobPostSingle = posts[1]
		}
		if len(posts) > 2 {
			TestJobPostScreened = posts[2]
		}
	}

	return nil
}
