package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-adm-api/internal/models"
)

// DocumentRepository handles persistence of document metadata records.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository constructs the repository.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `id, student_id, application_id, document_type, document_name, file_path,
        upload_date, verified, verified_by, verification_date, status, remarks, created_at, updated_at`

// Create persists a new document metadata record.
func (r *DocumentRepository) Create(ctx context.Context, document *models.Document) error {
	if document.ID == "" {
		document.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	document.CreatedAt = now
	document.UpdatedAt = now
	if document.UploadDate.IsZero() {
		document.UploadDate = now
	}
	if document.Status == "" {
		document.Status = models.DocumentPending
	}
	const query = `INSERT INTO documents (id, student_id, application_id, document_type, document_name, file_path,
        upload_date, verified, verified_by, verification_date, status, remarks, created_at, updated_at)
        VALUES (:id, :student_id, :application_id, :document_type, :document_name, :file_path,
        :upload_date, :verified, :verified_by, :verification_date, :status, :remarks, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, document); err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

// FindByID returns a document by its ID.
func (r *DocumentRepository) FindByID(ctx context.Context, id string) (*models.Document, error) {
	query := fmt.Sprintf("SELECT %s FROM documents WHERE id = $1", documentColumns)
	var document models.Document
	if err := r.db.GetContext(ctx, &document, query, id); err != nil {
		return nil, err
	}
	return &document, nil
}

// ListByStudent returns all documents owned by the student.
func (r *DocumentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Document, error) {
	query := fmt.Sprintf("SELECT %s FROM documents WHERE student_id = $1 ORDER BY upload_date DESC", documentColumns)
	var documents []models.Document
	if err := r.db.SelectContext(ctx, &documents, query, studentID); err != nil {
		return nil, fmt.Errorf("list student documents: %w", err)
	}
	return documents, nil
}

// ListByApplication returns all documents attached to the application.
func (r *DocumentRepository) ListByApplication(ctx context.Context, applicationID string) ([]models.Document, error) {
	query := fmt.Sprintf("SELECT %s FROM documents WHERE application_id = $1 ORDER BY upload_date DESC", documentColumns)
	var documents []models.Document
	if err := r.db.SelectContext(ctx, &documents, query, applicationID); err != nil {
		return nil, fmt.Errorf("list application documents: %w", err)
	}
	return documents, nil
}

// UpdateVerification records a verification outcome. Status, verified flag,
// verifier, timestamp, and remarks land in a single record write so the
// verified/status invariant can never be observed half-applied.
func (r *DocumentRepository) UpdateVerification(ctx context.Context, id string, status models.DocumentStatus, verified bool, verifiedBy string, verifiedAt time.Time, remarks *string) error {
	const query = `UPDATE documents SET status = $2, verified = $3, verified_by = $4,
        verification_date = $5, remarks = COALESCE($6, remarks), updated_at = $7 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, verified, verifiedBy, verifiedAt, remarks, time.Now().UTC()); err != nil {
		return fmt.Errorf("update document verification: %w", err)
	}
	return nil
}

// Delete removes a document metadata record.
func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
