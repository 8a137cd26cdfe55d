package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-adm-api/internal/models"
)

func newDocumentRepoMock(t *testing.T) (*DocumentRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "sqlmock")
	return NewDocumentRepository(sqlxDB), mock, func() { _ = db.Close() }
}

func documentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "student_id", "application_id", "document_type", "document_name", "file_path",
		"upload_date", "verified", "verified_by", "verification_date", "status", "remarks",
		"created_at", "updated_at",
	})
}

func TestDocumentRepositoryFindByID(t *testing.T) {
	repo, mock, cleanup := newDocumentRepoMock(t)
	defer cleanup()

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT id, student_id, application_id, document_type, document_name, file_path,`).
		WithArgs("doc-1").
		WillReturnRows(documentRows().AddRow(
			"doc-1", "stu-1", nil, "High School Transcripts", "Class XII Marksheet", "stu-1/doc-1.pdf",
			now, false, nil, nil, "Pending", nil, now, now))

	document, err := repo.FindByID(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "stu-1", document.StudentID)
	assert.Equal(t, models.DocumentPending, document.Status)
	assert.False(t, document.Verified)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositoryListByStudent(t *testing.T) {
	repo, mock, cleanup := newDocumentRepoMock(t)
	defer cleanup()

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM documents WHERE student_id = $1 ORDER BY upload_date DESC`)).
		WithArgs("stu-1").
		WillReturnRows(documentRows().
			AddRow("doc-2", "stu-1", nil, "Photo", "Passport Photo", "stu-1/doc-2.jpg",
				now, false, nil, nil, "Pending", nil, now, now).
			AddRow("doc-1", "stu-1", nil, "High School Transcripts", "Class XII Marksheet", "stu-1/doc-1.pdf",
				now.Add(-time.Hour), true, nil, nil, "Approved", nil, now, now))

	documents, err := repo.ListByStudent(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Len(t, documents, 2)
	assert.Equal(t, "doc-2", documents[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositoryUpdateVerification(t *testing.T) {
	repo, mock, cleanup := newDocumentRepoMock(t)
	defer cleanup()

	remarks := "legible and complete"
	verifiedAt := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE documents SET status = $2, verified = $3, verified_by = $4,`)).
		WithArgs("doc-1", string(models.DocumentApproved), true, "staff-1", verifiedAt, remarks, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateVerification(context.Background(), "doc-1", models.DocumentApproved, true, "staff-1", verifiedAt, &remarks)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositoryDelete(t *testing.T) {
	repo, mock, cleanup := newDocumentRepoMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM documents WHERE id = $1`)).
		WithArgs("doc-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "doc-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositoryDeleteMissing(t *testing.T) {
	repo, mock, cleanup := newDocumentRepoMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM documents WHERE id = $1`)).
		WithArgs("doc-404").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "doc-404")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
