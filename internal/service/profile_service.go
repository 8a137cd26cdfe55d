package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-adm-api/internal/models"
	appErrors "github.com/noah-isme/uni-adm-api/pkg/errors"
)

type profileRepository interface {
	Create(ctx context.Context, profile *models.StudentProfile) error
	FindByUserID(ctx context.Context, userID string) (*models.StudentProfile, error)
	ExistsForUser(ctx context.Context, userID string) (bool, error)
	Update(ctx context.Context, profile *models.StudentProfile) error
}

type profileDocumentLister interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Document, error)
}

// ProfileRequest carries both profile sub-documents. Used for create and
// update alike, since updates replace the sub-documents wholesale.
type ProfileRequest struct {
	PersonalInfo models.PersonalInfo          `json:"personal_info" validate:"required"`
	Educational  models.EducationalBackground `json:"educational_background"`
}

// ProfileService manages the 1:1 student profile extension.
type ProfileService struct {
	repo      profileRepository
	documents profileDocumentLister
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProfileService creates an instance of ProfileService.
func NewProfileService(repo profileRepository, documents profileDocumentLister, validate *validator.Validate, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ProfileService{repo: repo, documents: documents, validator: validate, logger: logger}
}

// Create adds the caller's profile. Each account holds at most one.
func (s *ProfileService) Create(ctx context.Context, claims *models.JWTClaims, req ProfileRequest) (*models.StudentProfile, error) {
	if err := requireClaims(claims); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}

	exists, err := s.repo.ExistsForUser(ctx, claims.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing profile")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "profile already exists")
	}

	now := time.Now().UTC()
	profile := &models.StudentProfile{
		ID:           uuid.NewString(),
		UserID:       claims.UserID,
		PersonalInfo: req.PersonalInfo,
		Educational:  req.Educational,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.marshalSubDocuments(profile); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create profile")
	}

	return profile, nil
}

// Get returns the profile of the given user together with the user's
// document references. Owners and reviewers only.
func (s *ProfileService) Get(ctx context.Context, claims *models.JWTClaims, userID string) (*models.StudentProfile, error) {
	if err := requireOwnerOrReviewer(claims, userID); err != nil {
		return nil, err
	}

	profile, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}
	if err := s.unmarshalSubDocuments(profile); err != nil {
		return nil, err
	}

	documents, err := s.documents.ListByStudent(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile documents")
	}
	profile.Documents = documents

	return profile, nil
}

// Update replaces the profile sub-documents wholesale.
func (s *ProfileService) Update(ctx context.Context, claims *models.JWTClaims, userID string, req ProfileRequest) (*models.StudentProfile, error) {
	if err := requireOwnerOrAdmin(claims, userID); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}

	profile, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}

	profile.PersonalInfo = req.PersonalInfo
	profile.Educational = req.Educational
	profile.UpdatedAt = time.Now().UTC()
	if err := s.marshalSubDocuments(profile); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, profile); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}

	return profile, nil
}

func (s *ProfileService) marshalSubDocuments(profile *models.StudentProfile) error {
	personal, err := json.Marshal(profile.PersonalInfo)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode personal info")
	}
	educational, err := json.Marshal(profile.Educational)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode educational background")
	}
	profile.PersonalRaw = personal
	profile.EducationalRaw = educational
	return nil
}

func (s *ProfileService) unmarshalSubDocuments(profile *models.StudentProfile) error {
	if len(profile.PersonalRaw) > 0 {
		if err := json.Unmarshal(profile.PersonalRaw, &profile.PersonalInfo); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode personal info")
		}
	}
	if len(profile.EducationalRaw) > 0 {
		if err := json.Unmarshal(profile.EducationalRaw, &profile.Educational); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode educational background")
		}
	}
	return nil
}
