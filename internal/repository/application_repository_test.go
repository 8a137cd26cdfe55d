package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-adm-api/internal/models"
)

func newApplicationRepoMock(t *testing.T) (*ApplicationRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "sqlmock")
	return NewApplicationRepository(sqlxDB), mock, func() { _ = db.Close() }
}

func TestApplicationRepositoryNextSequence(t *testing.T) {
	repo, mock, cleanup := newApplicationRepoMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO application_counters (year, value) VALUES ($1, 1)`)).
		WithArgs(2026).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(7))

	seq, err := repo.NextSequence(context.Background(), 2026)
	require.NoError(t, err)
	assert.Equal(t, 7, seq)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryExists(t *testing.T) {
	repo, mock, cleanup := newApplicationRepoMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM applications WHERE student_id = $1 AND program_id = $2 LIMIT 1`)).
		WithArgs("stu-1", "prog-1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.Exists(context.Background(), "stu-1", "prog-1")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryExistsNoRows(t *testing.T) {
	repo, mock, cleanup := newApplicationRepoMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM applications WHERE student_id = $1 AND program_id = $2 LIMIT 1`)).
		WithArgs("stu-1", "prog-2").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	exists, err := repo.Exists(context.Background(), "stu-1", "prog-2")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryFindByID(t *testing.T) {
	repo, mock, cleanup := newApplicationRepoMock(t)
	defer cleanup()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "student_id", "program_id", "application_number", "status",
		"reviewed_by", "review_notes", "submission_date", "decision_date",
		"payment_status", "payment_details", "created_at", "updated_at",
	}).AddRow("app-1", "stu-1", "prog-1", "APP-2026-00001", "Draft",
		nil, nil, nil, nil, "Pending", nil, now, now)

	mock.ExpectQuery(`SELECT id, student_id, program_id, application_number, status,`).
		WithArgs("app-1").
		WillReturnRows(rows)

	application, err := repo.FindByID(context.Background(), "app-1")
	require.NoError(t, err)
	assert.Equal(t, "APP-2026-00001", application.ApplicationNumber)
	assert.Equal(t, models.StatusDraft, application.Status)
	assert.Nil(t, application.SubmissionDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryMarkSubmitted(t *testing.T) {
	repo, mock, cleanup := newApplicationRepoMock(t)
	defer cleanup()

	submittedAt := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE applications SET status = $2, submission_date = $3, updated_at = $4 WHERE id = $1`)).
		WithArgs("app-1", string(models.StatusSubmitted), submittedAt, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.MarkSubmitted(context.Background(), "app-1", submittedAt)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryUpdateReview(t *testing.T) {
	repo, mock, cleanup := newApplicationRepoMock(t)
	defer cleanup()

	notes := "documents verified"
	decided := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE applications SET status = $2, reviewed_by = $3,`)).
		WithArgs("app-1", string(models.StatusApproved), "staff-1", notes, decided, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateReview(context.Background(), "app-1", models.StatusApproved, "staff-1", &notes, &decided)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryUpdateReviewKeepsPriorFields(t *testing.T) {
	repo, mock, cleanup := newApplicationRepoMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE applications SET status = $2, reviewed_by = $3,`)).
		WithArgs("app-1", string(models.StatusUnderReview), "staff-1", nil, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateReview(context.Background(), "app-1", models.StatusUnderReview, "staff-1", nil, nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryUpdatePayment(t *testing.T) {
	repo, mock, cleanup := newApplicationRepoMock(t)
	defer cleanup()

	details := []byte(`{"amount":1000,"transaction_id":"TXN-1"}`)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE applications SET payment_status = $2,`)).
		WithArgs("app-1", string(models.PaymentCompleted), details, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdatePayment(context.Background(), "app-1", models.PaymentCompleted, details)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
