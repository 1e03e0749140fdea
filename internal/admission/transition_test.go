package admission

import (
	"JobBridge-backend/internal/database"
	"JobBridge-backend/internal/model"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func submitTo(t *testing.T, engine *Engine, applicant model.User, post model.JobPost) *model.Application {
	t.Helper()
	app, err := engine.Submit(applicant, SubmitRequest{PostID: post.ID})
	if err != nil {
		t.Fatalf("failed to submit application: %v", err)
	}
	return app
}

// Scenario: a pending application is rejected with feedback, then any further
// transition is refused and the history stays as written.
func TestTransition_RejectWithFeedbackThenClosed(t *testing.T) {
	engine := NewEngine(testDB, nil)
	applicant := newApplicant(t, "reject_flow")
	post := newPost(t, 0, nil, nil)
	app := submitTo(t, engine, applicant, post)

	feedback := "not a fit"
	updated, err := engine.Transition(database.TestCompanyUser1, app.ID, model.ApplicationStatusRejected, &feedback)
	assert.NoError(t, err)
	assert.Equal(t, model.ApplicationStatusRejected, updated.Status)

	history := historyOf(t, app.ID)
	assert.Len(t, history, 2)
	assert.Equal(t, model.ApplicationStatusRejected, history[1].Status)
	if assert.NotNil(t, history[1].Feedback) {
		assert.Equal(t, "not a fit", *history[1].Feedback)
	}

	_, err = engine.Transition(database.TestCompanyUser1, app.ID, model.ApplicationStatusReviewing, nil)
	assert.True(t, errors.Is(err, ErrInvalidTransition))

	// status and history are untouched by the refused call
	after := historyOf(t, app.ID)
	assert.Len(t, after, 2)
	var current model.Application
	assert.NoError(t, testDB.Where("id = ?", app.ID).First(&current).Error)
	assert.Equal(t, model.ApplicationStatusRejected, current.Status)
}

// Scenario: an application under review is withdrawn by the applicant, after
// which acceptance is impossible.
func TestTransition_WithdrawWhileReviewing(t *testing.T) {
	engine := NewEngine(testDB, nil)
	applicant := newApplicant(t, "withdraw_flow")
	post := newPost(t, 0, nil, nil)
	app := submitTo(t, engine, applicant, post)

	_, err := engine.Transition(database.TestCompanyUser1, app.ID, model.ApplicationStatusReviewing, nil)
	assert.NoError(t, err)

	withdrawn, err := engine.Withdraw(applicant, app.ID)
	assert.NoError(t, err)
	assert.Equal(t, model.ApplicationStatusWithdrawn, withdrawn.Status)

	_, err = engine.Transition(database.TestCompanyUser1, app.ID, model.ApplicationStatusAccepted, nil)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
}

func TestTransition_HistoryGrowsOncePerTransition(t *testing.T) {
	engine := NewEngine(testDB, nil)
	applicant := newApplicant(t, "history_flow")
	post := newPost(t, 0, nil, nil)
	app := submitTo(t, engine, applicant, post)

	_, err := engine.Transition(database.TestCompanyUser1, app.ID, model.ApplicationStatusReviewing, nil)
	assert.NoError(t, err)
	_, err = engine.Transition(database.TestCompanyUser1, app.ID, model.ApplicationStatusAccepted, nil)
	assert.NoError(t, err)

	history := historyOf(t, app.ID)
	assert.Len(t, history, 3)
	assert.Equal(t, model.ApplicationStatusPending, history[0].Status)
	assert.Equal(t, model.ApplicationStatusReviewing, history[1].Status)
	assert.Equal(t, model.ApplicationStatusAccepted, history[2].Status)
}

func TestTransition_PermissionRules(t *testing.T) {
	engine := NewEngine(testDB, nil)
	applicant := newApplicant(t, "perm_flow")
	bystander := newApplicant(t, "perm_bystander")
	post := newPost(t, 0, nil, nil)
	app := submitTo(t, engine, applicant, post)

	// applicants cannot accept or reject, not even their own
	_, err := engine.Transition(applicant, app.ID, model.ApplicationStatusAccepted, nil)
	assert.True(t, errors.Is(err, ErrPermissionDenied))

	// a different company cannot touch the application
	_, err = engine.Transition(database.TestCompanyUser2, app.ID, model.ApplicationStatusReviewing, nil)
	assert.True(t, errors.Is(err, ErrPermissionDenied))

	// only the owning applicant may withdraw
	_, err = engine.Withdraw(bystander, app.ID)
	assert.True(t, errors.Is(err, ErrPermissionDenied))
	_, err = engine.Withdraw(database.TestCompanyUser1, app.ID)
	assert.True(t, errors.Is(err, ErrPermissionDenied))

	// admins may transition any application
	_, err = engine.Transition(database.TestAdminUser, app.ID, model.ApplicationStatusReviewing, nil)
	assert.NoError(t, err)
}

// A rejected application frees its slot and reopens a cap-closed post;
// an accepted one keeps the slot.
func TestTransition_SlotAccounting(t *testing.T) {
	engine := NewEngine(testDB, nil)
	applicant := newApplicant(t, "slot_flow")
	post := newPost(t, 1, nil, nil)
	app := submitTo(t, engine, applicant, post)

	filled := reloadPost(t, post.ID)
	assert.Equal(t, model.JobStatusFilled, filled.Status)
	assert.Equal(t, 1, filled.CurrentApplicants)

	_, err := engine.Transition(database.TestCompanyUser1, app.ID, model.ApplicationStatusRejected, nil)
	assert.NoError(t, err)

	reopened := reloadPost(t, post.ID)
	assert.Equal(t, 0, reopened.CurrentApplicants)
	assert.Equal(t, model.JobStatusActive, reopened.Status)

	// the freed slot admits a new applicant, whose acceptance keeps it
	second := newApplicant(t, "slot_second")
	app2 := submitTo(t, engine, second, post)
	_, err = engine.Transition(database.TestCompanyUser1, app2.ID, model.ApplicationStatusAccepted, nil)
	assert.NoError(t, err)

	final := reloadPost(t, post.ID)
	assert.Equal(t, 1, final.CurrentApplicants)
	assert.Equal(t, model.JobStatusFilled, final.Status)
}

// A post the company closed below its cap stays filled when a slot frees;
// only a post the gate closed at cap reopens.
func TestTransition_ManuallyClosedPostStaysClosed(t *testing.T) {
	engine := NewEngine(testDB, nil)
	first := newApplicant(t, "closed_first")
	second := newApplicant(t, "closed_second")
	post := newPost(t, 5, nil, nil)
	app1 := submitTo(t, engine, first, post)
	submitTo(t, engine, second, post)

	// company closes the post while two slots are taken out of five
	err := testDB.Model(&model.JobPost{}).Where("id = ?", post.ID).
		Update("status", model.JobStatusFilled).Error
	assert.NoError(t, err)

	_, err = engine.Transition(database.TestCompanyUser1, app1.ID, model.ApplicationStatusRejected, nil)
	assert.NoError(t, err)

	closed := reloadPost(t, post.ID)
	assert.Equal(t, 1, closed.CurrentApplicants)
	assert.Equal(t, model.JobStatusFilled, closed.Status)

	// the closed post refuses new submissions
	third := newApplicant(t, "closed_third")
	_, err = engine.Submit(third, SubmitRequest{PostID: post.ID})
	assert.True(t, errors.Is(err, ErrCapacityExceeded))
}

func TestTransition_ApplicationNotFound(t *testing.T) {
	engine := NewEngine(testDB, nil)
	_, err := engine.Transition(database.TestAdminUser, 999999, model.ApplicationStatusReviewing, nil)
	assert.True(t, errors.Is(err, ErrApplicationNotFound))
}
