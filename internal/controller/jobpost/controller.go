// Package jobpost provides HTTP handlers for job post operations.
package jobpost

import (
	"JobBridge-backend/internal/database"
	"JobBridge-backend/internal/events"
	"JobBridge-backend/internal/model"
	"JobBridge-backend/internal/utilities"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/asaskevich/EventBus"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// JobPostController handles job post related endpoints
type JobPostController struct {
	DB  *database.DBinstanceStruct
	Bus EventBus.Bus
}

// NewJobPostController creates a new instance of JobPostController with the provided database connection and event bus.
func NewJobPostController(db *database.DBinstanceStruct, bus EventBus.Bus) *JobPostController {
	return &JobPostController{
		DB:  db,
		Bus: bus,
	}
}

func (j *JobPostController) publishChanged(post *model.JobPost) {
	if j.Bus != nil {
		j.Bus.Publish(events.JobPostChangedTopic, events.JobPostChanged{
			PostID:    post.ID,
			CompanyID: post.CompanyID,
		})
	}
}

// loadPost fetches a post by the :id route parameter.
func (j *JobPostController) loadPost(c *gin.Context) (*model.JobPost, bool) {
	postID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Invalid job post ID"})
		return nil, false
	}

	post := model.JobPost{}
	if err := j.DB.First(&post, uint(postID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Job post not found"})
		} else {
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to retrieve job post: %s", err.Error()),
			})
		}
		return nil, false
	}
	return &post, true
}

// canManage reports whether the user may edit, close or delete the post.
func canManage(user model.User, post *model.JobPost) bool {
	return user.Role == model.RoleAdmin || post.CompanyID == user.ID
}

// CreateHandler creates a new job post owned by the calling company.
// @Summary Create job post
// @Description Only company users can access this endpoint. Required document labels must be unique.
// @Tags JobPost
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param jobpost body model.EditableJobPostInfo true "Job post information"
// @Success 201 {object} model.JobPost "Successfully created job post"
// @Failure 400 {object} utilities.ErrorResponse "Invalid request body or duplicate document labels"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as company"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /jobpost [post]
func (j *JobPostController) CreateHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	info := model.EditableJobPostInfo{}
	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	post := model.JobPost{
		CompanyID:           user.ID,
		Status:              model.JobStatusActive,
		EditableJobPostInfo: info,
	}
	if post.HasDuplicateDocumentLabels() {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Required document labels must be unique",
		})
		return
	}

	if err := j.DB.Create(&post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to create job post: %s", err.Error()),
		})
		return
	}

	j.publishChanged(&post)
	c.JSON(http.StatusCreated, post)
}

// EditHandler updates the editable fields of a job post.
// @Summary Edit job post
// @Description Only the owning company or admin can edit a post.
// @Tags JobPost
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path int true "Job post ID"
// @Param jobpost body model.EditableJobPostInfo true "Updated job post information"
// @Success 200 {object} model.JobPost "Job post after the update"
// @Failure 400 {object} utilities.ErrorResponse "Invalid request body or duplicate document labels"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not the owner or admin"
// @Failure 404 {object} utilities.ErrorResponse "Job post not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /jobpost/{id} [patch]
func (j *JobPostController) EditHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	post, ok := j.loadPost(c)
	if !ok {
		return
	}
	if !canManage(user, post) {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{Error: "You do not own this job post"})
		return
	}

	info := model.EditableJobPostInfo{}
	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	post.EditableJobPostInfo = info
	if post.HasDuplicateDocumentLabels() {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Required document labels must be unique",
		})
		return
	}

	if err := j.DB.Model(post).Updates(map[string]any{
		"title":               info.Title,
		"desc":                info.Desc,
		"req":                 info.Req,
		"location":            info.Location,
		"type":                info.Type,
		"salary":              info.Salary,
		"tags":                info.Tags,
		"expiring":            info.Expiring,
		"max_applicants":      info.MaxApplicants,
		"required_documents":  info.RequiredDocuments,
		"screening_questions": info.ScreeningQuestions,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update job post: %s", err.Error()),
		})
		return
	}

	j.publishChanged(post)
	c.JSON(http.StatusOK, post)
}

// GetHandler returns a single job post.
// @Summary Get job post
// @Tags JobPost
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path int true "Job post ID"
// @Success 200 {object} model.JobPost "Job post"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 404 {object} utilities.ErrorResponse "Job post not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /jobpost/{id} [get]
func (j *JobPostController) GetHandler(c *gin.Context) {
	post, ok := j.loadPost(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, post)
}

// GetAllHandler returns every job post, newest first.
// @Summary List job posts
// @Tags JobPost
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {array} model.JobPost "All job posts"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /jobpost [get]
func (j *JobPostController) GetAllHandler(c *gin.Context) {
	var posts []model.JobPost
	if err := j.DB.Order("post_time DESC").Find(&posts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve job posts: %s", err.Error()),
		})
		return
	}
	c.JSON(http.StatusOK, posts)
}

// CloseHandler marks a job post filled, refusing further admissions.
// @Summary Close job post
// @Description Only the owning company or admin can close a post.
// @Tags JobPost
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path int true "Job post ID"
// @Success 200 {object} model.JobPost "Job post after closing"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not the owner or admin"
// @Failure 404 {object} utilities.ErrorResponse "Job post not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /jobpost/{id}/close [post]
func (j *JobPostController) CloseHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	post, ok := j.loadPost(c)
	if !ok {
		return
	}
	if !canManage(user, post) {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{Error: "You do not own this job post"})
		return
	}

	if err := j.DB.Model(post).Update("status", model.JobStatusFilled).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to close job post: %s", err.Error()),
		})
		return
	}

	j.publishChanged(post)
	c.JSON(http.StatusOK, post)
}

// DeleteHandler removes a job post.
// @Summary Delete job post
// @Description Only the owning company or admin can delete a post.
// @Tags JobPost
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path int true "Job post ID"
// @Success 200 {object} utilities.MessageResponse "Job post deleted"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not the owner or admin"
// @Failure 404 {object} utilities.ErrorResponse "Job post not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /jobpost/{id} [delete]
func (j *JobPostController) DeleteHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	post, ok := j.loadPost(c)
	if !ok {
		return
	}
	if !canManage(user, post) {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{Error: "You do not own this job post"})
		return
	}

	if err := j.DB.Select("Applications").Delete(post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to delete job post: %s", err.Error()),
		})
		return
	}

	j.publishChanged(post)
	c.JSON(http.StatusOK, utilities.MessageResponse{Message: "Job post deleted"})
}

// GetApplicationsHandler lists the applications submitted to a post.
// @Summary List applications of a job post
// @Description Only the owning company or admin can see a post's applications.
// @Tags JobPost
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path int true "Job post ID"
// @Success 200 {array} model.Application "Applications of the post"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not the owner or admin"
// @Failure 404 {object} utilities.ErrorResponse "Job post not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /jobpost/{id}/applications [get]
func (j *JobPostController) GetApplicationsHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	post, ok := j.loadPost(c)
	if !ok {
		return
	}
	if !canManage(user, post) {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{Error: "You do not own this job post"})
		return
	}

	var applications []model.Application
	if err := j.DB.
		Preload("History").Preload("Answers").Preload("Documents").
		Where("post_id = ?", post.ID).
		Order("id").
		Find(&applications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve applications: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, applications)
}
