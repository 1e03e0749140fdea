// Package stream bridges realtime subscriptions to clients over server-sent events.
package stream

import (
	"JobBridge-backend/internal/database"
	"JobBridge-backend/internal/model"
	"JobBridge-backend/internal/realtime"
	"JobBridge-backend/internal/utilities"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// StreamController handles server-sent event endpoints
type StreamController struct {
	DB  *database.DBinstanceStruct
	Hub *realtime.Hub
}

// NewStreamController creates a new instance of StreamController
func NewStreamController(db *database.DBinstanceStruct, hub *realtime.Hub) *StreamController {
	return &StreamController{
		DB:  db,
		Hub: hub,
	}
}

// serve forwards snapshots from the subscription to the client until the
// client disconnects.
func (s *StreamController) serve(c *gin.Context, sub *realtime.Subscription) {
	defer sub.Cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case snapshot, ok := <-sub.C:
			if !ok {
				return false
			}
			c.SSEvent("snapshot", string(snapshot))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// ApplicationsHandler streams the caller's application list.
// @Summary Stream own applications
// @Description Server-sent events. The first event is the current state, later events follow every change.
// @Tags Stream
// @Produce text/event-stream
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {string} string "SSE stream of application snapshots"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Router /stream/applications [get]
func (s *StreamController) ApplicationsHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	s.serve(c, s.Hub.SubscribeApplications(user.ID))
}

// JobPostsHandler streams the calling company's job posts.
// @Summary Stream company job posts
// @Description Server-sent events with the company's posts, capacity counters included.
// @Tags Stream
// @Produce text/event-stream
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {string} string "SSE stream of job post snapshots"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Router /stream/jobposts [get]
func (s *StreamController) JobPostsHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	s.serve(c, s.Hub.SubscribeCompanyPosts(user.ID))
}

// PostApplicationsHandler streams the applications of one job post.
// @Summary Stream applications of a job post
// @Description Only the owning company or admin can subscribe.
// @Tags Stream
// @Produce text/event-stream
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path int true "Job post ID"
// @Success 200 {string} string "SSE stream of application snapshots"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not the owner or admin"
// @Failure 404 {object} utilities.ErrorResponse "Job post not found"
// @Router /stream/jobpost/{id}/applications [get]
func (s *StreamController) PostApplicationsHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	postID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Invalid job post ID"})
		return
	}

	post := model.JobPost{}
	if err := s.DB.First(&post, uint(postID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Job post not found"})
		} else {
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to retrieve job post: %s", err.Error()),
			})
		}
		return
	}

	if user.Role != model.RoleAdmin && post.CompanyID != user.ID {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{Error: "You do not own this job post"})
		return
	}

	s.serve(c, s.Hub.SubscribePostApplications(post.ID))
}
