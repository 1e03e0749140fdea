package admission

import (
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"JobBridge-backend/internal/events"
	"JobBridge-backend/internal/metrics"
	"JobBridge-backend/internal/model"
)

// Transition moves an application to newStatus on behalf of user. Withdrawal
// is reserved for the owning applicant; every other transition requires the
// post's company or an admin. The current status is re-checked inside the
// update so concurrent callers cannot both move the same application.
func (e *Engine) Transition(user model.User, applicationID uint, newStatus string, feedback *string) (*model.Application, error) {
	var application model.Application
	if err := e.DB.Preload("JobPost").Where("id = ?", applicationID).First(&application).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, errors.Wrap(err, "failed to retrieve application")
	}

	if err := checkTransitionPermission(user, &application, newStatus); err != nil {
		return nil, err
	}

	if !model.CanTransition(application.Status, newStatus) {
		return nil, ErrInvalidTransition
	}

	oldStatus := application.Status
	now := time.Now()

	txErr := e.DB.Transaction(func(tx *gorm.DB) error {
		// Optimistic precondition: only move if the source status still holds.
		res := tx.Model(&model.Application{}).
			Where("id = ? AND status = ?", applicationID, oldStatus).
			Updates(map[string]interface{}{
				"status":       newStatus,
				"last_updated": now,
			})
		if res.Error != nil {
			return errors.Wrap(res.Error, "failed to update application status")
		}
		if res.RowsAffected == 0 {
			return ErrInvalidTransition
		}

		event := model.ApplicationEvent{
			ApplicationID: applicationID,
			Status:        newStatus,
			Feedback:      feedback,
		}
		if err := tx.Create(&event).Error; err != nil {
			return errors.Wrap(err, "failed to append history entry")
		}

		// A terminal non-accepted transition frees the applicant slot.
		// Acceptance keeps it.
		if newStatus == model.ApplicationStatusRejected || newStatus == model.ApplicationStatusWithdrawn {
			if err := releaseSlot(tx, application.PostID); err != nil {
				return err
			}
		}

		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	application.Status = newStatus
	application.LastUpdated = now

	metrics.TransitionsCounter.WithLabelValues(newStatus).Inc()

	if e.Bus != nil {
		e.Bus.Publish(events.ApplicationStatusChangedTopic, events.ApplicationStatusChanged{
			ApplicationID: application.ID,
			PostID:        application.PostID,
			PostTitle:     application.JobPost.Title,
			ApplicantID:   application.ApplicantID,
			CompanyID:     application.JobPost.CompanyID,
			OldStatus:     oldStatus,
			NewStatus:     newStatus,
			Feedback:      feedback,
		})
	}

	log.WithFields(log.Fields{
		"application": application.ID,
		"from":        oldStatus,
		"to":          newStatus,
	}).Info("application transitioned")

	return &application, nil
}

// Withdraw is the applicant-facing shorthand for a transition to withdrawn.
func (e *Engine) Withdraw(user model.User, applicationID uint) (*model.Application, error) {
	return e.Transition(user, applicationID, model.ApplicationStatusWithdrawn, nil)
}

func checkTransitionPermission(user model.User, application *model.Application, newStatus string) error {
	if newStatus == model.ApplicationStatusWithdrawn {
		if user.Role != model.RoleApplicant || application.ApplicantID != user.ID {
			return ErrPermissionDenied
		}
		return nil
	}

	if !lo.Contains([]string{
		model.ApplicationStatusReviewing,
		model.ApplicationStatusAccepted,
		model.ApplicationStatusRejected,
	}, newStatus) {
		return ErrInvalidTransition
	}

	if user.Role == model.RoleAdmin {
		return nil
	}
	if user.Role == model.RoleCompany && application.JobPost.CompanyID == user.ID {
		return nil
	}
	return ErrPermissionDenied
}

// releaseSlot decrements the post's active slot count and reopens a post
// that the cap closed. Only a filled post sitting exactly at its cap was
// closed by the gate; a post closed below cap was closed by its company and
// stays filled. Both columns read the pre-update row, so the CASE sees the
// count before the decrement.
func releaseSlot(tx *gorm.DB, postID uint) error {
	if err := tx.Exec(`
		UPDATE job_posts
		SET current_applicants = current_applicants - 1,
		    status = CASE
		        WHEN status = ? AND max_applicants > 0 AND current_applicants = max_applicants
		        THEN ?
		        ELSE status
		    END
		WHERE id = ? AND current_applicants > 0`,
		model.JobStatusFilled, model.JobStatusActive, postID).Error; err != nil {
		return errors.Wrap(err, "failed to release applicant slot")
	}
	return nil
}
