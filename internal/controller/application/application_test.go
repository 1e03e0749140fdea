package application

import (
	"JobBridge-backend/internal/admission"
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
	engine := admission.NewEngine(testDB, nil)
	ac := NewApplicationController(testDB, engine)
	r.POST("/application", middleware.RequireAuth(testDB), middleware.CheckRole(model.RoleApplicant), ac.SubmitHandler)
	r.GET("/application", middleware.RequireAuth(testDB), middleware.CheckRole(model.RoleApplicant), ac.ListMineHandler)
	r.PATCH("/application/:id/status", middleware.RequireAuth(testDB), middleware.CheckRole(model.RoleCompany, model.RoleAdmin), ac.TransitionHandler)
	r.POST("/application/:id/withdraw", middleware.RequireAuth(testDB), middleware.CheckRole(model.RoleApplicant), ac.WithdrawHandler)
	return r
}

func TestSubmitHandler_Success(t *testing.T) {
	token, err := auth.GetAccessToken(t, testDB, database.TestApplicant1.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := newRouter()
	body := gin.H{"post_id": database.TestJobPostOpen.ID}
	rec, resp := testutil.MakeJSONRequest(body, token, r, "/application", http.MethodPost)

	assert.Equal(t, http.StatusCreated, rec.Code)
	if resp != nil {
		v, ok := resp["post_id"]
		assert.True(t, ok)
		assert.Equal(t, float64(database.TestJobPostOpen.ID), v)
		assert.Equal(t, model.ApplicationStatusPending, resp["status"])
	}
}

func TestSubmitHandler_CompanyForbidden(t *testing.T) {
	token, err := auth.GetAccessToken(t, testDB, database.TestCompanyUser1.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := newRouter()
	body := gin.H{"post_id": database.TestJobPostOpen.ID}
	rec, _ := testutil.MakeJSONRequest(body, token, r, "/application", http.MethodPost)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSubmitHandler_MissingDocumentIsBadRequest(t *testing.T) {
	token, err := auth.GetAccessToken(t, testDB, database.TestApplicant2.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := newRouter()
	// TestJobPostSingle requires a "resume" document
	body := gin.H{"post_id": database.TestJobPostSingle.ID}
	rec, _ := testutil.MakeJSONRequest(body, token, r, "/application", http.MethodPost)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitHandler_UnknownPost(t *testing.T) {
	token, err := auth.GetAccessToken(t, testDB, database.TestApplicant1.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := newRouter()
	body := gin.H{"post_id": 999999}
	rec, _ := testutil.MakeJSONRequest(body, token, r, "/application", http.MethodPost)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTransitionHandler_FullRoundTrip(t *testing.T) {
	applicantToken, err := auth.GetAccessToken(t, testDB, database.TestApplicant2.Username, database.TestSeedPassword)
	assert.NoError(t, err)
	companyToken, err := auth.GetAccessToken(t, testDB, database.TestCompanyUser1.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	post := model.JobPost{
		CompanyID: database.TestCompanyUser1.ID,
		Status:    model.JobStatusActive,
		EditableJobPostInfo: model.EditableJobPostInfo{
			Title: "Round Trip Position",
		},
	}
	if err := testDB.Create(&post).Error; err != nil {
		t.Fatalf("failed to create job post: %v", err)
	}

	r := newRouter()

	rec, resp := testutil.MakeJSONRequest(gin.H{"post_id": post.ID}, applicantToken, r, "/application", http.MethodPost)
	assert.Equal(t, http.StatusCreated, rec.Code)
	applicationID := int(resp["id"].(float64))

	endpoint := fmt.Sprintf("/application/%d/status", applicationID)
	rec, resp = testutil.MakeJSONRequest(gin.H{"status": "reviewing"}, companyToken, r, endpoint, http.MethodPatch)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.ApplicationStatusReviewing, resp["status"])

	// a withdrawn status cannot go through the status endpoint
	rec, _ = testutil.MakeJSONRequest(gin.H{"status": "withdrawn"}, companyToken, r, endpoint, http.MethodPatch)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	withdrawEndpoint := fmt.Sprintf("/application/%d/withdraw", applicationID)
	rec, resp = testutil.MakeJSONRequest(gin.H{}, applicantToken, r, withdrawEndpoint, http.MethodPost)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.ApplicationStatusWithdrawn, resp["status"])

	// terminal, any further move conflicts
	rec, _ = testutil.MakeJSONRequest(gin.H{"status": "accepted"}, companyToken, r, endpoint, http.MethodPatch)
	assert.Equal(t, http.StatusConflict, rec.Code)
}
