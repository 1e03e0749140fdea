// Package notification provides HTTP handlers for reading and acknowledging notifications.
package notification

import (
	"JobBridge-backend/internal/notify"
	"JobBridge-backend/internal/utilities"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// NotificationController handles notification related endpoints
type NotificationController struct {
	Dispatcher *notify.Dispatcher
}

// NewNotificationController creates a new instance of NotificationController
func NewNotificationController(dispatcher *notify.Dispatcher) *NotificationController {
	return &NotificationController{Dispatcher: dispatcher}
}

// ListHandler returns the caller's notifications with an unread count.
// @Summary List notifications
// @Tags Notification
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {object} map[string]interface{} "Notifications and unread count"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /notification [get]
func (n *NotificationController) ListHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	notifications, err := n.Dispatcher.List(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve notifications: %s", err.Error()),
		})
		return
	}

	unread, err := n.Dispatcher.UnreadCount(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to count notifications: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"unread":        unread,
	})
}

// MarkReadHandler marks one notification read.
// @Summary Mark notification read
// @Description Marking an already read notification is a no-op.
// @Tags Notification
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path int true "Notification ID"
// @Success 200 {object} utilities.MessageResponse "Notification marked read"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 404 {object} utilities.ErrorResponse "Notification not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /notification/{id}/read [patch]
func (n *NotificationController) MarkReadHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	notificationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Invalid notification ID"})
		return
	}

	ok, err := n.Dispatcher.MarkRead(user.ID, uint(notificationID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to mark notification read: %s", err.Error()),
		})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Notification not found"})
		return
	}

	c.JSON(http.StatusOK, utilities.MessageResponse{Message: "Notification marked read"})
}

// ReadAllHandler marks every unread notification of the caller read.
// @Summary Mark all notifications read
// @Description Calling twice in a row reports zero changed the second time.
// @Tags Notification
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {object} map[string]interface{} "Number of notifications marked"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /notification/read-all [post]
func (n *NotificationController) ReadAllHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	changed, err := n.Dispatcher.MarkAllRead(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to mark notifications read: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"marked": changed})
}
