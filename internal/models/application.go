package models

import "time"

// ApplicationStatus is the lifecycle state of an admission application.
type ApplicationStatus string

const (
	StatusDraft            ApplicationStatus = "Draft"
	StatusSubmitted        ApplicationStatus = "Submitted"
	StatusUnderReview      ApplicationStatus = "Under Review"
	StatusDocumentsPending ApplicationStatus = "Documents Pending"
	StatusRejected         ApplicationStatus = "Rejected"
	StatusApproved         ApplicationStatus = "Approved"
	StatusWaitlisted       ApplicationStatus = "Waitlisted"
)

// ReviewStatuses are the states a reviewer may move an application into.
var ReviewStatuses = []ApplicationStatus{
	StatusUnderReview,
	StatusDocumentsPending,
	StatusRejected,
	StatusApproved,
	StatusWaitlisted,
}

// IsReviewStatus reports whether the status is a valid reviewer target.
func IsReviewStatus(s ApplicationStatus) bool {
	for _, rs := range ReviewStatuses {
		if s == rs {
			return true
		}
	}
	return false
}

// IsDecision reports whether the status records an admission decision.
// Moving into a decision status stamps decisionDate.
func IsDecision(s ApplicationStatus) bool {
	return s == StatusRejected || s == StatusApproved || s == StatusWaitlisted
}

// allowedTransitions is the explicit transition table for application
// statuses. Draft can only be submitted by its owner; every non-Draft
// state may move to any review state, which deliberately allows a
// decided application to be reopened.
var allowedTransitions = map[ApplicationStatus][]ApplicationStatus{
	StatusDraft:            {StatusSubmitted},
	StatusSubmitted:        ReviewStatuses,
	StatusUnderReview:      ReviewStatuses,
	StatusDocumentsPending: ReviewStatuses,
	StatusRejected:         ReviewStatuses,
	StatusApproved:         ReviewStatuses,
	StatusWaitlisted:       ReviewStatuses,
}

// CanTransition reports whether moving from one status to another is listed
// in the transition table.
func CanTransition(from, to ApplicationStatus) bool {
	for _, target := range allowedTransitions[from] {
		if target == to {
			return true
		}
	}
	return false
}

// PaymentStatus tracks the application fee.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "Pending"
	PaymentCompleted PaymentStatus = "Completed"
)

// PaymentDetails records a completed fee transaction. Stored as a JSONB
// sub-document and always overwritten wholesale, never merged.
type PaymentDetails struct {
	Amount        float64   `json:"amount"`
	TransactionID string    `json:"transaction_id"`
	PaymentDate   time.Time `json:"payment_date"`
	PaymentMethod string    `json:"payment_method"`
}

// Application ties a student to a program and carries status, review,
// and payment sub-state.
type Application struct {
	ID                string            `db:"id" json:"id"`
	StudentID         string            `db:"student_id" json:"student_id"`
	ProgramID         string            `db:"program_id" json:"program_id"`
	ApplicationNumber string            `db:"application_number" json:"application_number"`
	Status            ApplicationStatus `db:"status" json:"status"`
	ReviewedBy        *string           `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewNotes       *string           `db:"review_notes" json:"review_notes,omitempty"`
	SubmissionDate    *time.Time        `db:"submission_date" json:"submission_date,omitempty"`
	DecisionDate      *time.Time        `db:"decision_date" json:"decision_date,omitempty"`
	PaymentStatus     PaymentStatus     `db:"payment_status" json:"payment_status"`
	PaymentDetails    *PaymentDetails   `db:"-" json:"payment_details,omitempty"`
	PaymentDetailsRaw []byte            `db:"payment_details" json:"-"`
	CreatedAt         time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time         `db:"updated_at" json:"updated_at"`
}

// ApplicationDetail enriches Application with student and program info.
type ApplicationDetail struct {
	Application
	StudentName  string `db:"student_name" json:"student_name"`
	StudentEmail string `db:"student_email" json:"student_email"`
	ProgramName  string `db:"program_name" json:"program_name"`
	Department   string `db:"department" json:"department"`
}

// ApplicationFilter provides filters for listing applications.
type ApplicationFilter struct {
	StudentID string
	ProgramID string
	Status    ApplicationStatus
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
