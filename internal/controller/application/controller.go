// Package application provides HTTP handlers for job application operations.
package application

import (
	"JobBridge-backend/internal/admission"
	"JobBridge-backend/internal/database"
	"JobBridge-backend/internal/model"
	"JobBridge-backend/internal/utilities"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ApplicationController handles job application related endpoints
type ApplicationController struct {
	DB     *database.DBinstanceStruct
	Engine *admission.Engine
}

// NewApplicationController creates a new instance of ApplicationController with the provided engine.
func NewApplicationController(db *database.DBinstanceStruct, engine *admission.Engine) *ApplicationController {
	return &ApplicationController{
		DB:     db,
		Engine: engine,
	}
}

// statusFromError maps the engine's typed errors to HTTP status codes.
func statusFromError(err error) int {
	switch {
	case admission.IsValidationError(err):
		return http.StatusBadRequest
	case isAny(err, admission.ErrJobNotFound, admission.ErrApplicationNotFound):
		return http.StatusNotFound
	case isAny(err, admission.ErrJobNotActive, admission.ErrCapacityExceeded,
		admission.ErrInvalidTransition, admission.ErrDuplicateApplication):
		return http.StatusConflict
	case isAny(err, admission.ErrPermissionDenied):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

func isAny(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// SubmitHandler handles the creation of a new job application by an applicant.
// @Summary Submit job application
// @Description Only applicant users can access this endpoint. Admission is refused when the post is full.
// @Tags Application
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param application body admission.SubmitRequest true "Application information"
// @Success 201 {object} model.Application "Successfully applied to job post"
// @Failure 400 {object} utilities.ErrorResponse "Invalid request body or missing requirements"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as applicant"
// @Failure 404 {object} utilities.ErrorResponse "Job post not found"
// @Failure 409 {object} utilities.ErrorResponse "Post full, inactive, or already applied"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /application [post]
func (a *ApplicationController) SubmitHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	request := admission.SubmitRequest{}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	application, err := a.Engine.Submit(user, request)
	if err != nil {
		c.JSON(statusFromError(err), utilities.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, application)
}

type transitionRequest struct {
	Status   string  `json:"status" binding:"required,oneof=reviewing accepted rejected"`
	Feedback *string `json:"feedback"`
}

// TransitionHandler moves an application to a new status.
// @Summary Change application status
// @Description Company owning the post or admin moves an application to reviewing, accepted or rejected.
// @Tags Application
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path int true "Application ID"
// @Param transition body transitionRequest true "Target status and optional feedback"
// @Success 200 {object} model.Application "Application after the transition"
// @Failure 400 {object} utilities.ErrorResponse "Invalid request body"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not the owning company or admin"
// @Failure 404 {object} utilities.ErrorResponse "Application not found"
// @Failure 409 {object} utilities.ErrorResponse "Transition not allowed from the current status"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /application/{id}/status [patch]
func (a *ApplicationController) TransitionHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	applicationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Invalid application ID"})
		return
	}

	request := transitionRequest{}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	application, err := a.Engine.Transition(user, uint(applicationID), request.Status, request.Feedback)
	if err != nil {
		c.JSON(statusFromError(err), utilities.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, application)
}

// WithdrawHandler lets an applicant withdraw their own application.
// @Summary Withdraw application
// @Description Only the applicant who submitted the application can withdraw it.
// @Tags Application
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path int true "Application ID"
// @Success 200 {object} model.Application "Application after withdrawal"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not the owner of the application"
// @Failure 404 {object} utilities.ErrorResponse "Application not found"
// @Failure 409 {object} utilities.ErrorResponse "Application already in a terminal status"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /application/{id}/withdraw [post]
func (a *ApplicationController) WithdrawHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	applicationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Invalid application ID"})
		return
	}

	application, err := a.Engine.Withdraw(user, uint(applicationID))
	if err != nil {
		c.JSON(statusFromError(err), utilities.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, application)
}

// ListMineHandler returns the caller's applications, history included.
// @Summary List own applications
// @Description Applicant's applications with status history, newest first.
// @Tags Application
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {array} model.Application "Applications of the caller"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /application [get]
func (a *ApplicationController) ListMineHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	var applications []model.Application
	if err := a.DB.
		Preload("History").Preload("Answers").Preload("Documents").Preload("JobPost").
		Where("applicant_id = ?", user.ID).
		Order("last_updated DESC").
		Find(&applications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve applications: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, applications)
}
