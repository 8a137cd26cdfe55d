package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-adm-api/internal/models"
	"github.com/noah-isme/uni-adm-api/pkg/config"
	appErrors "github.com/noah-isme/uni-adm-api/pkg/errors"
)

type documentRepository interface {
	Create(ctx context.Context, document *models.Document) error
	FindByID(ctx context.Context, id string) (*models.Document, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Document, error)
	ListByApplication(ctx context.Context, applicationID string) ([]models.Document, error)
	UpdateVerification(ctx context.Context, id string, status models.DocumentStatus, verified bool, verifiedBy string, verifiedAt time.Time, remarks *string) error
	Delete(ctx context.Context, id string) error
}

type documentApplicationRepository interface {
	FindByID(ctx context.Context, id string) (*models.Application, error)
}

type documentUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type documentBlobStore interface {
	SaveStream(name string, r io.Reader) (string, error)
	Open(name string) (*os.File, error)
	Delete(name string) error
}

// UploadDocumentRequest carries one uploaded file plus its metadata.
// Content is streamed to the blob store, never buffered whole.
type UploadDocumentRequest struct {
	ApplicationID *string
	DocumentType  models.DocumentType
	DocumentName  string
	Filename      string
	ContentType   string
	Size          int64
	Content       io.Reader
}

// VerifyDocumentRequest records a reviewer's verdict on a document.
type VerifyDocumentRequest struct {
	Status  models.DocumentStatus `json:"status" validate:"required"`
	Remarks *string               `json:"remarks"`
}

// DocumentService manages uploaded supporting documents. The blob and
// its metadata row are kept consistent with compensating deletes.
type DocumentService struct {
	repo          documentRepository
	applications  documentApplicationRepository
	users         documentUserRepository
	blobs         documentBlobStore
	notifications *NotificationService
	uploads       config.UploadsConfig
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewDocumentService creates an instance of DocumentService.
func NewDocumentService(repo documentRepository, applications documentApplicationRepository, users documentUserRepository, blobs documentBlobStore, notifications *NotificationService, uploads config.UploadsConfig, validate *validator.Validate, logger *zap.Logger) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &DocumentService{
		repo:          repo,
		applications:  applications,
		users:         users,
		blobs:         blobs,
		notifications: notifications,
		uploads:       uploads,
		validator:     validate,
		logger:        logger,
	}
}

// Upload validates the file, writes the blob, then records the metadata.
// If the metadata write fails the blob is removed again.
func (s *DocumentService) Upload(ctx context.Context, claims *models.JWTClaims, req UploadDocumentRequest) (*models.Document, error) {
	if err := requireClaims(claims); err != nil {
		return nil, err
	}
	if err := s.validateUpload(req); err != nil {
		return nil, err
	}

	if req.ApplicationID != nil {
		application, err := s.applications.FindByID(ctx, *req.ApplicationID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
		}
		if application.StudentID != claims.UserID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "application belongs to another student")
		}
	}

	id := uuid.NewString()
	blobName := fmt.Sprintf("%s/%s%s", claims.UserID, id, strings.ToLower(filepath.Ext(req.Filename)))
	storedPath, err := s.blobs.SaveStream(blobName, req.Content)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store file")
	}

	now := time.Now().UTC()
	document := &models.Document{
		ID:            id,
		StudentID:     claims.UserID,
		ApplicationID: req.ApplicationID,
		DocumentType:  req.DocumentType,
		DocumentName:  req.DocumentName,
		FilePath:      storedPath,
		UploadDate:    now,
		Verified:      false,
		Status:        models.DocumentPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, document); err != nil {
		if cleanupErr := s.blobs.Delete(blobName); cleanupErr != nil {
			s.logger.Error("failed to clean up orphaned blob",
				zap.String("blob", blobName),
				zap.Error(cleanupErr),
			)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record document")
	}

	return document, nil
}

// Verify records a reviewer verdict. The verified flag, verifier,
// timestamp, and remarks land in one write so the record never shows a
// half-applied verdict.
func (s *DocumentService) Verify(ctx context.Context, claims *models.JWTClaims, id string, req VerifyDocumentRequest) (*models.Document, error) {
	if err := requireReviewer(claims); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid verification payload")
	}
	if !models.ValidDocumentStatus(req.Status) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%q is not a document status", req.Status))
	}

	document, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	verified := req.Status == models.DocumentApproved
	verifiedAt := time.Now().UTC()
	if err := s.repo.UpdateVerification(ctx, id, req.Status, verified, claims.UserID, verifiedAt, req.Remarks); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update verification")
	}

	document.Status = req.Status
	document.Verified = verified
	document.VerifiedBy = &claims.UserID
	document.VerificationDate = &verifiedAt
	if req.Remarks != nil {
		document.Remarks = req.Remarks
	}

	if student, err := s.users.FindByID(ctx, document.StudentID); err != nil {
		s.logger.Warn("failed to load student for notification", zap.String("student_id", document.StudentID), zap.Error(err))
	} else {
		s.notifications.DocumentVerified(student.Email, student.Name, document.DocumentName, string(req.Status))
	}

	return document, nil
}

// Get returns one document. Owner or reviewer only.
func (s *DocumentService) Get(ctx context.Context, claims *models.JWTClaims, id string) (*models.Document, error) {
	document, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwnerOrReviewer(claims, document.StudentID); err != nil {
		return nil, err
	}
	return document, nil
}

// OpenFile returns the stored blob for download. Owner or reviewer only.
func (s *DocumentService) OpenFile(ctx context.Context, claims *models.JWTClaims, id string) (*models.Document, *os.File, error) {
	document, err := s.Get(ctx, claims, id)
	if err != nil {
		return nil, nil, err
	}
	file, err := s.blobs.Open(document.FilePath)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open stored file")
	}
	return document, file, nil
}

// ListByStudent returns a student's documents. Owner or reviewer only.
func (s *DocumentService) ListByStudent(ctx context.Context, claims *models.JWTClaims, studentID string) ([]models.Document, error) {
	if err := requireOwnerOrReviewer(claims, studentID); err != nil {
		return nil, err
	}
	documents, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list documents")
	}
	return documents, nil
}

// ListByApplication returns the documents attached to an application.
func (s *DocumentService) ListByApplication(ctx context.Context, claims *models.JWTClaims, applicationID string) ([]models.Document, error) {
	application, err := s.applications.FindByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	if err := requireOwnerOrReviewer(claims, application.StudentID); err != nil {
		return nil, err
	}

	documents, err := s.repo.ListByApplication(ctx, applicationID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list documents")
	}
	return documents, nil
}

// Delete removes a document. Owner or admin only. The blob is released
// first; the metadata row is deleted only once the release succeeded.
func (s *DocumentService) Delete(ctx context.Context, claims *models.JWTClaims, id string) error {
	document, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := requireOwnerOrAdmin(claims, document.StudentID); err != nil {
		return err
	}

	if err := s.blobs.Delete(document.FilePath); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove stored file")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete document")
	}
	return nil
}

func (s *DocumentService) load(ctx context.Context, id string) (*models.Document, error) {
	document, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}
	return document, nil
}

func (s *DocumentService) validateUpload(req UploadDocumentRequest) error {
	if req.DocumentName == "" || req.Filename == "" || req.Content == nil {
		return appErrors.Clone(appErrors.ErrValidation, "document name and file are required")
	}
	if !models.ValidDocumentType(req.DocumentType) {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%q is not a document type", req.DocumentType))
	}
	if req.Size > s.uploads.MaxFileSizeBytes {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file exceeds the %d byte limit", s.uploads.MaxFileSizeBytes))
	}

	ext := strings.ToLower(filepath.Ext(req.Filename))
	if !contains(s.uploads.AllowedExtensions, ext) {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file extension %q is not allowed", ext))
	}
	mime := req.ContentType
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	if !contains(s.uploads.AllowedMIMEs, mime) {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("content type %q is not allowed", mime))
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
