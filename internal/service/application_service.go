package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-adm-api/internal/models"
	appErrors "github.com/noah-isme/uni-adm-api/pkg/errors"
)

type applicationRepository interface {
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.ApplicationDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Application, error)
	FindDetailByID(ctx context.Context, id string) (*models.ApplicationDetail, error)
	Exists(ctx context.Context, studentID, programID string) (bool, error)
	NextSequence(ctx context.Context, year int) (int, error)
	Create(ctx context.Context, application *models.Application) error
	MarkSubmitted(ctx context.Context, id string, submittedAt time.Time) error
	UpdateReview(ctx context.Context, id string, status models.ApplicationStatus, reviewedBy string, reviewNotes *string, decisionDate *time.Time) error
	UpdatePayment(ctx context.Context, id string, status models.PaymentStatus, details []byte) error
}

type applicationProgramRepository interface {
	FindByID(ctx context.Context, id string) (*models.Program, error)
}

// CreateApplicationRequest starts a draft application for a program.
type CreateApplicationRequest struct {
	ProgramID string `json:"program_id" validate:"required"`
}

// UpdateApplicationStatusRequest moves an application through review.
type UpdateApplicationStatusRequest struct {
	Status      models.ApplicationStatus `json:"status" validate:"required"`
	ReviewNotes *string                  `json:"review_notes"`
}

// UpdatePaymentRequest records the application fee state. The details
// sub-document, when present, replaces the stored one wholesale.
type UpdatePaymentRequest struct {
	PaymentStatus  models.PaymentStatus   `json:"payment_status" validate:"required,oneof=Pending Completed"`
	PaymentDetails *models.PaymentDetails `json:"payment_details"`
}

// ApplicationService drives the admission application lifecycle.
type ApplicationService struct {
	repo          applicationRepository
	programs      applicationProgramRepository
	notifications *NotificationService
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewApplicationService creates an instance of ApplicationService.
func NewApplicationService(repo applicationRepository, programs applicationProgramRepository, notifications *NotificationService, validate *validator.Validate, logger *zap.Logger) *ApplicationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ApplicationService{repo: repo, programs: programs, notifications: notifications, validator: validate, logger: logger}
}

// Create starts a draft application for the calling student. Students
// only, and at most one application per student and program.
func (s *ApplicationService) Create(ctx context.Context, claims *models.JWTClaims, req CreateApplicationRequest) (*models.Application, error) {
	if err := requireStudent(claims); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid application payload")
	}

	// Any existing program is a valid target, including inactive ones.
	if _, err := s.programs.FindByID(ctx, req.ProgramID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}

	exists, err := s.repo.Exists(ctx, claims.UserID, req.ProgramID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing application")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "an application for this program already exists")
	}

	now := time.Now().UTC()
	seq, err := s.repo.NextSequence(ctx, now.Year())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to allocate application number")
	}

	application := &models.Application{
		ID:                uuid.NewString(),
		StudentID:         claims.UserID,
		ProgramID:         req.ProgramID,
		ApplicationNumber: fmt.Sprintf("APP-%d-%05d", now.Year(), seq),
		Status:            models.StatusDraft,
		PaymentStatus:     models.PaymentPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.Create(ctx, application); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create application")
	}

	return application, nil
}

// Submit moves the caller's draft into Submitted and stamps the
// submission date. Only the owner may submit, and only from Draft.
func (s *ApplicationService) Submit(ctx context.Context, claims *models.JWTClaims, id string) (*models.ApplicationDetail, error) {
	if err := requireClaims(claims); err != nil {
		return nil, err
	}

	application, err := s.loadDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if application.StudentID != claims.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the applicant may submit")
	}
	if !models.CanTransition(application.Status, models.StatusSubmitted) {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, fmt.Sprintf("cannot submit an application in status %q", application.Status))
	}

	submittedAt := time.Now().UTC()
	if err := s.repo.MarkSubmitted(ctx, id, submittedAt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to submit application")
	}

	application.Status = models.StatusSubmitted
	application.SubmissionDate = &submittedAt
	application.UpdatedAt = submittedAt

	s.notifications.ApplicationSubmitted(application.StudentEmail, application.StudentName, application.ApplicationNumber, application.ProgramName)

	return application, nil
}

// UpdateStatus moves an application through review. Reviewers only. The
// decision date is stamped exactly when the target status is a decision.
func (s *ApplicationService) UpdateStatus(ctx context.Context, claims *models.JWTClaims, id string, req UpdateApplicationStatusRequest) (*models.ApplicationDetail, error) {
	if err := requireReviewer(claims); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	if !models.IsReviewStatus(req.Status) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%q is not a review status", req.Status))
	}

	application, err := s.loadDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(application.Status, req.Status) {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, fmt.Sprintf("cannot move from %q to %q", application.Status, req.Status))
	}

	var decisionDate *time.Time
	if models.IsDecision(req.Status) {
		now := time.Now().UTC()
		decisionDate = &now
	}

	if err := s.repo.UpdateReview(ctx, id, req.Status, claims.UserID, req.ReviewNotes, decisionDate); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update application status")
	}

	application.Status = req.Status
	application.ReviewedBy = &claims.UserID
	if req.ReviewNotes != nil {
		application.ReviewNotes = req.ReviewNotes
	}
	if decisionDate != nil {
		application.DecisionDate = decisionDate
	}

	s.notifications.ApplicationStatusChanged(application.StudentEmail, application.StudentName, application.ApplicationNumber, application.ProgramName, string(req.Status))

	return application, nil
}

// UpdatePayment records the application fee state. The owner or a
// reviewer may update it.
func (s *ApplicationService) UpdatePayment(ctx context.Context, claims *models.JWTClaims, id string, req UpdatePaymentRequest) (*models.Application, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}

	application, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	if err := requireOwnerOrReviewer(claims, application.StudentID); err != nil {
		return nil, err
	}

	var details []byte
	if req.PaymentDetails != nil {
		details, err = json.Marshal(req.PaymentDetails)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode payment details")
		}
	}

	if err := s.repo.UpdatePayment(ctx, id, req.PaymentStatus, details); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update payment")
	}

	application.PaymentStatus = req.PaymentStatus
	if req.PaymentDetails != nil {
		application.PaymentDetails = req.PaymentDetails
		application.PaymentDetailsRaw = details
	}

	return application, nil
}

// Get returns the enriched application. Owner or reviewer only.
func (s *ApplicationService) Get(ctx context.Context, claims *models.JWTClaims, id string) (*models.ApplicationDetail, error) {
	application, err := s.loadDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwnerOrReviewer(claims, application.StudentID); err != nil {
		return nil, err
	}
	return application, nil
}

// List returns applications scoped by role: students see their own,
// reviewers see everything the filter allows.
func (s *ApplicationService) List(ctx context.Context, claims *models.JWTClaims, filter models.ApplicationFilter) ([]models.ApplicationDetail, *models.Pagination, error) {
	if err := requireClaims(claims); err != nil {
		return nil, nil, err
	}
	if !claims.Role.IsReviewer() {
		filter.StudentID = claims.UserID
	}

	applications, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	return applications, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

func (s *ApplicationService) loadDetail(ctx context.Context, id string) (*models.ApplicationDetail, error) {
	application, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	if len(application.PaymentDetailsRaw) > 0 {
		var details models.PaymentDetails
		if err := json.Unmarshal(application.PaymentDetailsRaw, &details); err != nil {
			s.logger.Warn("failed to decode payment details", zap.String("application_id", application.ID), zap.Error(err))
		} else {
			application.PaymentDetails = &details
		}
	}
	return application, nil
}
