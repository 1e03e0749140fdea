package jobpost

import (
	"JobBridge-backend/internal/auth"
	"JobBridge-backend/internal/database"
	"JobBridge-backend/internal/middleware"
	"JobBridge-backend/internal/model"
	"JobBridge-backend/internal/testutil"
	"context"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

var testDB *database.DBinstanceStruct

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	var err error
	var midTeardown func(context.Context) error
	midTeardown, testDB, err = database.GetTestDB()
	if err != nil {
		os.Exit(1)
	}
	m.Run()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if midTeardown != nil {
		_ = midTeardown(ctx)
	}
}

func newRouter() *gin.Engine {
	r := gin.Default()
	jc := NewJobPostController(testDB, nil)
	r.GET("/jobpost", middleware.RequireAuth(testDB), jc.GetAllHandler)
	r.GET("/jobpost/:id", middleware.RequireAuth(testDB), jc.GetHandler)
	r.POST("/jobpost", middleware.RequireAuth(testDB), middleware.CheckRole(model.RoleCompany), jc.CreateHandler)
	r.PATCH("/jobpost/:id", middleware.RequireAuth(testDB), middleware.CheckRole(model.RoleCompany, model.RoleAdmin), jc.EditHandler)
	r.DELETE("/jobpost/:id", middleware.RequireAuth(testDB), middleware.CheckRole(model.RoleCompany, model.RoleAdmin), jc.DeleteHandler)
	r.POST("/jobpost/:id/close", middleware.RequireAuth(testDB), middleware.CheckRole(model.RoleCompany, model.RoleAdmin), jc.CloseHandler)
	r.GET("/jobpost/:id/applications", middleware.RequireAuth(testDB), middleware.CheckRole(model.RoleCompany, model.RoleAdmin), jc.GetApplicationsHandler)
	return r
}

func TestCreateHandler_Success(t *testing.T) {
	token, err := auth.GetAccessToken(t, testDB, database.TestCompanyUser1.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := newRouter()
	body := gin.H{
		"title":               "Platform Engineer",
		"max_applicants":      5,
		"required_documents":  []string{"resume", "portfolio"},
		"screening_questions": []string{"Why this role?"},
	}
	rec, resp := testutil.MakeJSONRequest(body, token, r, "/jobpost", http.MethodPost)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Platform Engineer", resp["title"])
	assert.Equal(t, model.JobStatusActive, resp["status"])
	assert.Equal(t, float64(0), resp["current_applicants"])
}

func TestCreateHandler_DuplicateDocumentLabels(t *testing.T) {
	token, err := auth.GetAccessToken(t, testDB, database.TestCompanyUser1.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := newRouter()
	body := gin.H{
		"title":              "Analyst",
		"required_documents": []string{"resume", "resume"},
	}
	rec, _ := testutil.MakeJSONRequest(body, token, r, "/jobpost", http.MethodPost)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateHandler_ApplicantForbidden(t *testing.T) {
	token, err := auth.GetAccessToken(t, testDB, database.TestApplicant1.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := newRouter()
	rec, _ := testutil.MakeJSONRequest(gin.H{"title": "Nope"}, token, r, "/jobpost", http.MethodPost)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestEditHandler_OnlyOwnerOrAdmin(t *testing.T) {
	ownerToken, err := auth.GetAccessToken(t, testDB, database.TestCompanyUser1.Username, database.TestSeedPassword)
	assert.NoError(t, err)
	otherToken, err := auth.GetAccessToken(t, testDB, database.TestCompanyUser2.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	post := model.JobPost{
		CompanyID:           database.TestCompanyUser1.ID,
		Status:              model.JobStatusActive,
		EditableJobPostInfo: model.EditableJobPostInfo{Title: "Before Edit"},
	}
	if err := testDB.Create(&post).Error; err != nil {
		t.Fatalf("failed to create job post: %v", err)
	}

	r := newRouter()
	endpoint := fmt.Sprintf("/jobpost/%d", post.ID)

	rec, _ := testutil.MakeJSONRequest(gin.H{"title": "Hijacked"}, otherToken, r, endpoint, http.MethodPatch)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, resp := testutil.MakeJSONRequest(gin.H{"title": "After Edit"}, ownerToken, r, endpoint, http.MethodPatch)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "After Edit", resp["title"])
}

func TestCloseHandler_MarksFilled(t *testing.T) {
	token, err := auth.GetAccessToken(t, testDB, database.TestCompanyUser1.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	post := model.JobPost{
		CompanyID:           database.TestCompanyUser1.ID,
		Status:              model.JobStatusActive,
		EditableJobPostInfo: model.EditableJobPostInfo{Title: "To Close"},
	}
	if err := testDB.Create(&post).Error; err != nil {
		t.Fatalf("failed to create job post: %v", err)
	}

	r := newRouter()
	rec, resp := testutil.MakeJSONRequest(gin.H{}, token, r, fmt.Sprintf("/jobpost/%d/close", post.ID), http.MethodPost)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.JobStatusFilled, resp["status"])
}

func TestGetApplicationsHandler_OwnerOnly(t *testing.T) {
	otherToken, err := auth.GetAccessToken(t, testDB, database.TestCompanyUser2.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := newRouter()
	endpoint := fmt.Sprintf("/jobpost/%d/applications", database.TestJobPostOpen.ID)
	rec, _ := testutil.MakeJSONRequest(gin.H{}, otherToken, r, endpoint, http.MethodGet)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeleteHandler_RemovesPost(t *testing.T) {
	token, err := auth.GetAccessToken(t, testDB, database.TestCompanyUser1.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	post := model.JobPost{
		CompanyID:           database.TestCompanyUser1.ID,
		Status:              model.JobStatusActive,
		EditableJobPostInfo: model.EditableJobPostInfo{Title: "To Delete"},
	}
	if err := testDB.Create(&post).Error; err != nil {
		t.Fatalf("failed to create job post: %v", err)
	}

	r := newRouter()
	endpoint := fmt.Sprintf("/jobpost/%d", post.ID)
	rec, _ := testutil.MakeJSONRequest(gin.H{}, token, r, endpoint, http.MethodDelete)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = testutil.MakeJSONRequest(gin.H{}, token, r, endpoint, http.MethodGet)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
