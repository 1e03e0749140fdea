// Package admission implement the capacity-controlled admission engine: it
// creates applications against a job post's applicant cap and drives the
// application status state machine.
package admission

import (
	"fmt"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"JobBridge-backend/internal/database"
	"JobBridge-backend/internal/events"
	"JobBridge-backend/internal/metrics"
	"JobBridge-backend/internal/model"
)

// Engine is the admission controller. All writes to applications and to the
// job post applicant counter go through it.
type Engine struct {
	DB  *database.DBinstanceStruct
	Bus EventBus.Bus
}

// NewEngine creates a new Engine with the provided database connection and event bus.
func NewEngine(db *database.DBinstanceStruct, bus EventBus.Bus) *Engine {
	return &Engine{DB: db, Bus: bus}
}

// SubmitRequest carries everything an applicant provides when applying.
type SubmitRequest struct {
	PostID    uint                        `json:"post_id" binding:"required"`
	Answers   []model.ApplicationAnswer   `json:"answers"`
	Documents []model.ApplicationDocument `json:"documents"`
}

// gateRow is scanned from the atomic capacity update.
type gateRow struct {
	CurrentApplicants int
	MaxApplicants     int
}

// Submit validates the request against the post's requirements, atomically
// claims a slot, and creates the application with its initial history entry.
// The checks run in order and the first failure wins: post active, capacity,
// required documents, screening answers.
func (e *Engine) Submit(user model.User, req SubmitRequest) (*model.Application, error) {
	if user.Role != model.RoleApplicant {
		return nil, ErrPermissionDenied
	}

	var job model.JobPost
	if err := e.DB.Where("id = ?", req.PostID).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, errors.Wrap(err, "failed to retrieve job post")
	}

	// Advisory pre-checks so the caller gets the right error before any
	// validation work. The authoritative check is the atomic update below.
	// A post auto-closed by its cap reports capacity, not inactivity.
	if err := admissionGateError(&job); err != nil {
		if errors.Is(err, ErrCapacityExceeded) {
			metrics.CapacityRejectionsCounter.Inc()
		}
		return nil, err
	}

	if err := validateRequirements(&job, req); err != nil {
		return nil, err
	}

	var existing model.Application
	err := e.DB.Where("post_id = ? AND applicant_id = ?", req.PostID, user.ID).First(&existing).Error
	if err == nil {
		return nil, ErrDuplicateApplication
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(err, "failed to check existing application")
	}

	application := model.Application{
		PostID:      req.PostID,
		ApplicantID: user.ID,
		Status:      model.ApplicationStatusPending,
		LastUpdated: time.Now(),
		Answers:     req.Answers,
		Documents:   req.Documents,
		History: []model.ApplicationEvent{
			{Status: model.ApplicationStatusPending},
		},
	}

	jobFilled := false

	txErr := e.DB.Transaction(func(tx *gorm.DB) error {
		// Capacity check and increment as one statement. Zero rows means the
		// gate closed between the pre-check and now.
		var gate []gateRow
		if err := tx.Raw(`
			UPDATE job_posts
			SET current_applicants = current_applicants + 1
			WHERE id = ? AND status = ?
			  AND (max_applicants = 0 OR current_applicants < max_applicants)
			RETURNING current_applicants, max_applicants`,
			req.PostID, model.JobStatusActive,
		).Scan(&gate).Error; err != nil {
			return errors.Wrap(err, "failed to claim applicant slot")
		}

		if len(gate) == 0 {
			var current model.JobPost
			if err := tx.Where("id = ?", req.PostID).First(&current).Error; err != nil {
				return errors.Wrap(err, "failed to re-read job post")
			}
			if err := admissionGateError(&current); err != nil {
				return err
			}
			return ErrCapacityExceeded
		}

		if err := tx.Create(&application).Error; err != nil {
			// Unique violation on (post_id, applicant_id): a concurrent
			// submission from the same applicant won the race.
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return ErrDuplicateApplication
			}
			return errors.Wrap(err, "failed to create application")
		}

		// Reaching the cap closes the post in the same transaction.
		if gate[0].MaxApplicants > 0 && gate[0].CurrentApplicants >= gate[0].MaxApplicants {
			if err := tx.Model(&model.JobPost{}).Where("id = ?", req.PostID).
				Update("status", model.JobStatusFilled).Error; err != nil {
				return errors.Wrap(err, "failed to close filled job post")
			}
			jobFilled = true
		}

		return nil
	})
	if txErr != nil {
		if errors.Is(txErr, ErrCapacityExceeded) {
			metrics.CapacityRejectionsCounter.Inc()
		}
		return nil, txErr
	}

	metrics.AdmissionsCounter.Inc()

	if e.Bus != nil {
		e.Bus.Publish(events.ApplicationSubmittedTopic, events.ApplicationSubmitted{
			ApplicationID: application.ID,
			PostID:        job.ID,
			PostTitle:     job.Title,
			ApplicantID:   user.ID,
			CompanyID:     job.CompanyID,
			JobFilled:     jobFilled,
		})
	}

	log.WithFields(log.Fields{
		"application": application.ID,
		"post":        job.ID,
		"filled":      jobFilled,
	}).Info("application admitted")

	return &application, nil
}

// admissionGateError maps the post's state to the admission error a caller
// should see, or nil when the post can still take applicants.
func admissionGateError(job *model.JobPost) error {
	switch {
	case job.Status == model.JobStatusFilled:
		return ErrCapacityExceeded
	case job.Status != model.JobStatusActive:
		return ErrJobNotActive
	case !job.IsUncapped() && job.CurrentApplicants >= job.MaxApplicants:
		return ErrCapacityExceeded
	}
	return nil
}

// validateRequirements checks the required-document labels and screening
// answers against the post's declared requirements.
func validateRequirements(job *model.JobPost, req SubmitRequest) error {
	labels := lo.Map(req.Documents, func(d model.ApplicationDocument, _ int) string {
		return d.Label
	})

	missing, _ := lo.Difference([]string(job.RequiredDocuments), labels)
	if len(missing) > 0 {
		return &ValidationError{Reason: fmt.Sprintf("missing required documents: %v", missing)}
	}

	answered := map[string]string{}
	for _, a := range req.Answers {
		answered[a.Question] = a.Response
	}
	for _, q := range job.ScreeningQuestions {
		if answered[q] == "" {
			return &ValidationError{Reason: fmt.Sprintf("screening question %q must be answered", q)}
		}
	}
	return nil
}
