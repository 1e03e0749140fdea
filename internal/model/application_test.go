package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition_HappyPath(t *testing.T) {
	assert.True(t, CanTransition(ApplicationStatusPending, ApplicationStatusReviewing))
	assert.True(t, CanTransition(ApplicationStatusPending, ApplicationStatusRejected))
	assert.True(t, CanTransition(ApplicationStatusReviewing, ApplicationStatusAccepted))
	assert.True(t, CanTransition(ApplicationStatusReviewing, ApplicationStatusRejected))
}

func TestCanTransition_WithdrawFromAnyNonTerminal(t *testing.T) {
	assert.True(t, CanTransition(ApplicationStatusPending, ApplicationStatusWithdrawn))
	assert.True(t, CanTransition(ApplicationStatusReviewing, ApplicationStatusWithdrawn))
}

func TestCanTransition_TerminalStatesAreClosed(t *testing.T) {
	terminals := []string{
		ApplicationStatusAccepted,
		ApplicationStatusRejected,
		ApplicationStatusWithdrawn,
	}
	targets := []string{
		ApplicationStatusPending,
		ApplicationStatusReviewing,
		ApplicationStatusAccepted,
		ApplicationStatusRejected,
		ApplicationStatusWithdrawn,
	}

	for _, from := range terminals {
		assert.True(t, IsTerminalStatus(from))
		for _, to := range targets {
			assert.False(t, CanTransition(from, to), "transition %s -> %s should be blocked", from, to)
		}
	}
}

func TestCanTransition_NoBackwardEdges(t *testing.T) {
	assert.False(t, CanTransition(ApplicationStatusReviewing, ApplicationStatusPending))
	assert.False(t, CanTransition(ApplicationStatusPending, ApplicationStatusPending))
}

func TestHasDuplicateDocumentLabels(t *testing.T) {
	job := JobPost{}
	job.RequiredDocuments = []string{"resume", "transcript"}
	assert.False(t, job.HasDuplicateDocumentLabels())

	job.RequiredDocuments = []string{"resume", "resume"}
	assert.True(t, job.HasDuplicateDocumentLabels())
}
