package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-adm-api/internal/models"
	appErrors "github.com/noah-isme/uni-adm-api/pkg/errors"
)

type programRepository interface {
	List(ctx context.Context, filter models.ProgramFilter) ([]models.Program, int, error)
	FindByID(ctx context.Context, id string) (*models.Program, error)
	Create(ctx context.Context, program *models.Program) error
	Update(ctx context.Context, program *models.Program) error
	Delete(ctx context.Context, id string) error
}

const programCachePrefix = "programs:catalog"

// ProgramRequest is the payload for creating or replacing a program.
type ProgramRequest struct {
	Name                string               `json:"name" validate:"required"`
	Description         string               `json:"description"`
	ProgramType         models.ProgramType   `json:"program_type" validate:"required,oneof=BTech MTech PhD Diploma"`
	Department          string               `json:"department" validate:"required"`
	DurationYears       int                  `json:"duration_years" validate:"required,min=1"`
	Seats               int                  `json:"seats" validate:"required,min=1"`
	ApplicationFee      float64              `json:"application_fee" validate:"min=0"`
	TuitionFee          float64              `json:"tuition_fee" validate:"min=0"`
	Eligibility         string               `json:"eligibility"`
	ApplicationDeadline time.Time            `json:"application_deadline" validate:"required"`
	StartDate           time.Time            `json:"start_date" validate:"required"`
	Status              models.ProgramStatus `json:"status" validate:"omitempty,oneof=Active Inactive"`
}

// ProgramService manages the program catalog. The public listing of
// Active programs is cached; any catalog write invalidates it.
type ProgramService struct {
	repo      programRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProgramService creates an instance of ProgramService.
func NewProgramService(repo programRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ProgramService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ProgramService{repo: repo, cache: cache, validator: validate, logger: logger}
}

type cachedProgramPage struct {
	Programs   []models.Program  `json:"programs"`
	Pagination models.Pagination `json:"pagination"`
}

// ListActive returns the public catalog of Active programs.
func (s *ProgramService) ListActive(ctx context.Context, filter models.ProgramFilter) ([]models.Program, *models.Pagination, error) {
	filter.Status = models.ProgramActive

	key := fmt.Sprintf("%s:%s:%s:%d:%d:%s:%s",
		programCachePrefix, filter.Department, filter.Type, filter.Page, filter.PageSize, filter.SortBy, filter.SortOrder)

	var cached cachedProgramPage
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		page := cached.Pagination
		return cached.Programs, &page, nil
	}

	programs, pagination, err := s.list(ctx, filter)
	if err != nil {
		return nil, nil, err
	}

	if err := s.cache.Set(ctx, key, cachedProgramPage{Programs: programs, Pagination: *pagination}, 0); err != nil {
		s.logger.Warn("failed to cache program catalog", zap.Error(err))
	}

	return programs, pagination, nil
}

// List returns programs in any status for staff and admin callers.
func (s *ProgramService) List(ctx context.Context, claims *models.JWTClaims, filter models.ProgramFilter) ([]models.Program, *models.Pagination, error) {
	if err := requireReviewer(claims); err != nil {
		return nil, nil, err
	}
	return s.list(ctx, filter)
}

func (s *ProgramService) list(ctx context.Context, filter models.ProgramFilter) ([]models.Program, *models.Pagination, error) {
	programs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list programs")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	return programs, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Get returns a single program by ID.
func (s *ProgramService) Get(ctx context.Context, id string) (*models.Program, error) {
	program, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}
	return program, nil
}

// Create adds a program. Admin only.
func (s *ProgramService) Create(ctx context.Context, claims *models.JWTClaims, req ProgramRequest) (*models.Program, error) {
	if err := s.requireAdmin(claims); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid program payload")
	}

	now := time.Now().UTC()
	program := &models.Program{
		ID:                  uuid.NewString(),
		Name:                req.Name,
		Description:         req.Description,
		ProgramType:         req.ProgramType,
		Department:          req.Department,
		DurationYears:       req.DurationYears,
		Seats:               req.Seats,
		ApplicationFee:      req.ApplicationFee,
		TuitionFee:          req.TuitionFee,
		Eligibility:         req.Eligibility,
		ApplicationDeadline: req.ApplicationDeadline,
		StartDate:           req.StartDate,
		Status:              req.Status,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if program.Status == "" {
		program.Status = models.ProgramActive
	}

	if err := s.repo.Create(ctx, program); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create program")
	}

	s.invalidateCatalog(ctx)
	return program, nil
}

// Update replaces the program attributes. Admin only.
func (s *ProgramService) Update(ctx context.Context, claims *models.JWTClaims, id string, req ProgramRequest) (*models.Program, error) {
	if err := s.requireAdmin(claims); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid program payload")
	}

	program, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}

	program.Name = req.Name
	program.Description = req.Description
	program.ProgramType = req.ProgramType
	program.Department = req.Department
	program.DurationYears = req.DurationYears
	program.Seats = req.Seats
	program.ApplicationFee = req.ApplicationFee
	program.TuitionFee = req.TuitionFee
	program.Eligibility = req.Eligibility
	program.ApplicationDeadline = req.ApplicationDeadline
	program.StartDate = req.StartDate
	if req.Status != "" {
		program.Status = req.Status
	}
	program.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, program); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update program")
	}

	s.invalidateCatalog(ctx)
	return program, nil
}

// Delete removes a program. Admin only.
func (s *ProgramService) Delete(ctx context.Context, claims *models.JWTClaims, id string) error {
	if err := s.requireAdmin(claims); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete program")
	}

	s.invalidateCatalog(ctx)
	return nil
}

func (s *ProgramService) requireAdmin(claims *models.JWTClaims) error {
	if err := requireClaims(claims); err != nil {
		return err
	}
	if claims.Role != models.RoleAdmin {
		return appErrors.ErrForbidden
	}
	return nil
}

func (s *ProgramService) invalidateCatalog(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, programCachePrefix+":*"); err != nil {
		s.logger.Warn("failed to invalidate program catalog cache", zap.Error(err))
	}
}
