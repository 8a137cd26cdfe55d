package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransitionDraft(t *testing.T) {
	assert.True(t, CanTransition(StatusDraft, StatusSubmitted))

	for _, target := range ReviewStatuses {
		assert.False(t, CanTransition(StatusDraft, target), "Draft must not jump to %s", target)
	}
}

func TestCanTransitionReviewStates(t *testing.T) {
	origins := []ApplicationStatus{
		StatusSubmitted, StatusUnderReview, StatusDocumentsPending,
		StatusRejected, StatusApproved, StatusWaitlisted,
	}
	for _, from := range origins {
		for _, to := range ReviewStatuses {
			assert.True(t, CanTransition(from, to), "%s -> %s should be allowed", from, to)
		}
		assert.False(t, CanTransition(from, StatusDraft), "%s must not revert to Draft", from)
		assert.False(t, CanTransition(from, StatusSubmitted), "%s must not re-enter Submitted", from)
	}
}

func TestCanTransitionUnknownStatus(t *testing.T) {
	require.False(t, CanTransition(ApplicationStatus("Bogus"), StatusSubmitted))
}

func TestIsDecision(t *testing.T) {
	assert.True(t, IsDecision(StatusApproved))
	assert.True(t, IsDecision(StatusRejected))
	assert.True(t, IsDecision(StatusWaitlisted))
	assert.False(t, IsDecision(StatusUnderReview))
	assert.False(t, IsDecision(StatusDocumentsPending))
	assert.False(t, IsDecision(StatusSubmitted))
}

func TestIsReviewStatus(t *testing.T) {
	assert.False(t, IsReviewStatus(StatusDraft))
	assert.False(t, IsReviewStatus(StatusSubmitted))
	for _, s := range ReviewStatuses {
		assert.True(t, IsReviewStatus(s))
	}
}

func TestRoleIsReviewer(t *testing.T) {
	assert.False(t, RoleStudent.IsReviewer())
	assert.True(t, RoleStaff.IsReviewer())
	assert.True(t, RoleAdmin.IsReviewer())
}

func TestValidDocumentType(t *testing.T) {
	assert.True(t, ValidDocumentType(DocHighSchoolTranscripts))
	assert.True(t, ValidDocumentType(DocOther))
	assert.False(t, ValidDocumentType(DocumentType("Diploma Frame")))
}
