package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-adm-api/internal/models"
)

// ApplicationRepository handles persistence of the application ledger.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository constructs the repository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

const applicationColumns = `a.id, a.student_id, a.program_id, a.application_number, a.status,
        a.reviewed_by, a.review_notes, a.submission_date, a.decision_date,
        a.payment_status, a.payment_details, a.created_at, a.updated_at`

// List returns applications with student and program context.
func (r *ApplicationRepository) List(ctx context.Context, filter models.ApplicationFilter) ([]models.ApplicationDetail, int, error) {
	base := `FROM applications a
LEFT JOIN users u ON u.id = a.student_id
LEFT JOIN programs p ON p.id = a.program_id`
	var conditions []string
	var args []interface{}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("a.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.ProgramID != "" {
		conditions = append(conditions, fmt.Sprintf("a.program_id = $%d", len(args)+1))
		args = append(args, filter.ProgramID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("a.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"created_at":         "a.created_at",
		"submission_date":    "a.submission_date",
		"application_number": "a.application_number",
		"student_name":       "u.name",
	}
	orderBy := allowedSorts[filter.SortBy]
	if orderBy == "" {
		orderBy = "a.created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s, u.name AS student_name, u.email AS student_email,
        p.name AS program_name, p.department AS department
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, applicationColumns, base+clause, orderBy, order, size, offset)

	var applications []models.ApplicationDetail
	if err := r.db.SelectContext(ctx, &applications, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}
	return applications, total, nil
}

// FindByID returns an application by its ID.
func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (*models.Application, error) {
	const query = `SELECT id, student_id, program_id, application_number, status,
        reviewed_by, review_notes, submission_date, decision_date,
        payment_status, payment_details, created_at, updated_at
        FROM applications WHERE id = $1`
	var application models.Application
	if err := r.db.GetContext(ctx, &application, query, id); err != nil {
		return nil, err
	}
	return &application, nil
}

// FindDetailByID returns an application with contextual info.
func (r *ApplicationRepository) FindDetailByID(ctx context.Context, id string) (*models.ApplicationDetail, error) {
	query := fmt.Sprintf(`SELECT %s, u.name AS student_name, u.email AS student_email,
        p.name AS program_name, p.department AS department
        FROM applications a
        LEFT JOIN users u ON u.id = a.student_id
        LEFT JOIN programs p ON p.id = a.program_id
        WHERE a.id = $1`, applicationColumns)
	var detail models.ApplicationDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Exists checks whether the student already applied to the program.
func (r *ApplicationRepository) Exists(ctx context.Context, studentID, programID string) (bool, error) {
	const query = `SELECT 1 FROM applications WHERE student_id = $1 AND program_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, studentID, programID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check application: %w", err)
	}
	return true, nil
}

// NextSequence atomically allocates the next application number for the
// given year. The upsert makes concurrent creations race-free: each call
// observes a distinct value.
func (r *ApplicationRepository) NextSequence(ctx context.Context, year int) (int, error) {
	const query = `INSERT INTO application_counters (year, value) VALUES ($1, 1)
        ON CONFLICT (year) DO UPDATE SET value = application_counters.value + 1
        RETURNING value`
	var seq int
	if err := r.db.GetContext(ctx, &seq, query, year); err != nil {
		return 0, fmt.Errorf("next application sequence: %w", err)
	}
	return seq, nil
}

// Create persists a new application record.
func (r *ApplicationRepository) Create(ctx context.Context, application *models.Application) error {
	if application.ID == "" {
		application.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	application.CreatedAt = now
	application.UpdatedAt = now
	if application.Status == "" {
		application.Status = models.StatusDraft
	}
	if application.PaymentStatus == "" {
		application.PaymentStatus = models.PaymentPending
	}
	const query = `INSERT INTO applications (id, student_id, program_id, application_number, status,
        reviewed_by, review_notes, submission_date, decision_date, payment_status, payment_details, created_at, updated_at)
        VALUES (:id, :student_id, :program_id, :application_number, :status,
        :reviewed_by, :review_notes, :submission_date, :decision_date, :payment_status, :payment_details, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, application); err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

// MarkSubmitted records the Draft to Submitted transition.
func (r *ApplicationRepository) MarkSubmitted(ctx context.Context, id string, submittedAt time.Time) error {
	const query = `UPDATE applications SET status = $2, submission_date = $3, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.StatusSubmitted, submittedAt, time.Now().UTC()); err != nil {
		return fmt.Errorf("submit application: %w", err)
	}
	return nil
}

// UpdateReview records a reviewer transition in one write. decisionDate is
// only provided when the new status is a decision.
func (r *ApplicationRepository) UpdateReview(ctx context.Context, id string, status models.ApplicationStatus, reviewedBy string, reviewNotes *string, decisionDate *time.Time) error {
	const query = `UPDATE applications SET status = $2, reviewed_by = $3,
        review_notes = COALESCE($4, review_notes),
        decision_date = COALESCE($5, decision_date),
        updated_at = $6 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, reviewedBy, reviewNotes, decisionDate, time.Now().UTC()); err != nil {
		return fmt.Errorf("update application review: %w", err)
	}
	return nil
}

// UpdatePayment overwrites the payment sub-state. details replaces the
// stored document wholesale when non-nil.
func (r *ApplicationRepository) UpdatePayment(ctx context.Context, id string, status models.PaymentStatus, details []byte) error {
	const query = `UPDATE applications SET payment_status = $2,
        payment_details = COALESCE($3, payment_details),
        updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, details, time.Now().UTC()); err != nil {
		return fmt.Errorf("update application payment: %w", err)
	}
	return nil
}
