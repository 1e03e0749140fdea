// Package notify turns admission events into per-user notifications.
package notify

import (
	"JobBridge-backend/internal/database"
	"JobBridge-backend/internal/events"
	"JobBridge-backend/internal/metrics"
	"JobBridge-backend/internal/model"
	"fmt"

	"github.com/asaskevich/EventBus"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Dispatcher listens on the event bus and persists notifications for the
// affected users. Delivery failures are logged and dropped so they can never
// fail the admission or transition that triggered them.
type Dispatcher struct {
	DB  *database.DBinstanceStruct
	Bus EventBus.Bus
}

// NewDispatcher creates a Dispatcher and subscribes it to the bus.
func NewDispatcher(db *database.DBinstanceStruct, bus EventBus.Bus) (*Dispatcher, error) {
	d := &Dispatcher{DB: db, Bus: bus}
	if err := bus.Subscribe(events.ApplicationSubmittedTopic, d.onApplicationSubmitted); err != nil {
		return nil, err
	}
	if err := bus.Subscribe(events.ApplicationStatusChangedTopic, d.onApplicationStatusChanged); err != nil {
		return nil, err
	}
	return d, nil
}

// Close unsubscribes the dispatcher from the bus.
func (d *Dispatcher) Close() {
	_ = d.Bus.Unsubscribe(events.ApplicationSubmittedTopic, d.onApplicationSubmitted)
	_ = d.Bus.Unsubscribe(events.ApplicationStatusChangedTopic, d.onApplicationStatusChanged)
}

func (d *Dispatcher) onApplicationSubmitted(event events.ApplicationSubmitted) {
	d.deliver(model.Notification{
		RecipientID: event.CompanyID,
		Kind:        model.NotificationKindNewApplication,
		Title:       fmt.Sprintf("New application for %s", event.PostTitle),
		Message:     fmt.Sprintf("A new application (#%d) was submitted to your post %q.", event.ApplicationID, event.PostTitle),
	})
}

func (d *Dispatcher) onApplicationStatusChanged(event events.ApplicationStatusChanged) {
	message := fmt.Sprintf("Your application to %q moved from %s to %s.", event.PostTitle, event.OldStatus, event.NewStatus)
	if event.Feedback != nil && *event.Feedback != "" {
		message += " Feedback: " + *event.Feedback
	}
	d.deliver(model.Notification{
		RecipientID: event.ApplicantID,
		Kind:        model.NotificationKindStatusChanged,
		Title:       fmt.Sprintf("Application update: %s", event.NewStatus),
		Message:     message,
	})
}

func (d *Dispatcher) deliver(notification model.Notification) {
	if err := d.DB.Create(&notification).Error; err != nil {
		log.WithFields(log.Fields{
			"recipient": notification.RecipientID,
			"kind":      notification.Kind,
		}).WithError(err).Warn("failed to deliver notification")
		return
	}
	metrics.NotificationsCounter.WithLabelValues(notification.Kind).Inc()
}

// List returns the user's notifications, newest first.
func (d *Dispatcher) List(userID uuid.UUID) ([]model.Notification, error) {
	var notifications []model.Notification
	err := d.DB.Where("recipient_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&notifications).Error
	return notifications, err
}

// UnreadCount returns how many of the user's notifications are unread.
func (d *Dispatcher) UnreadCount(userID uuid.UUID) (int64, error) {
	var count int64
	err := d.DB.Model(&model.Notification{}).
		Where("recipient_id = ? AND read = false", userID).
		Count(&count).Error
	return count, err
}

// MarkRead marks a single notification read. Marking an already read
// notification is a no-op. Returns false when the notification does not
// belong to the user.
func (d *Dispatcher) MarkRead(userID uuid.UUID, notificationID uint) (bool, error) {
	result := d.DB.Model(&model.Notification{}).
		Where("id = ? AND recipient_id = ?", notificationID, userID).
		Update("read", true)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := d.DB.Model(&model.Notification{}).
			Where("id = ? AND recipient_id = ?", notificationID, userID).
			Count(&count).Error; err != nil {
			return false, err
		}
		return count > 0, nil
	}
	return true, nil
}

// MarkAllRead marks every unread notification of the user read and reports
// how many rows changed. Calling it again immediately reports zero.
func (d *Dispatcher) MarkAllRead(userID uuid.UUID) (int64, error) {
	result := d.DB.Model(&model.Notification{}).
		Where("recipient_id = ? AND read = false", userID).
		Update("read", true)
	return result.RowsAffected, result.Error
}
