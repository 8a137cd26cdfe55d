package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-adm-api/internal/models"
	appErrors "github.com/noah-isme/uni-adm-api/pkg/errors"
)

type mockApplicationRepo struct {
	applications map[string]models.Application
	details      map[string]models.ApplicationDetail
	existing     map[string]bool
	sequence     int
	created      *models.Application
	submitted    []string
	reviewed     map[string]models.ApplicationStatus
	payments     map[string]models.PaymentStatus
	paymentRaw   map[string][]byte
	lastFilter   models.ApplicationFilter
}

func (m *mockApplicationRepo) List(ctx context.Context, filter models.ApplicationFilter) ([]models.ApplicationDetail, int, error) {
	m.lastFilter = filter
	var list []models.ApplicationDetail
	for _, d := range m.details {
		if filter.StudentID != "" && d.StudentID != filter.StudentID {
			continue
		}
		list = append(list, d)
	}
	return list, len(list), nil
}

func (m *mockApplicationRepo) FindByID(ctx context.Context, id string) (*models.Application, error) {
	if a, ok := m.applications[id]; ok {
		return &a, nil
	}
	if d, ok := m.details[id]; ok {
		a := d.Application
		return &a, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockApplicationRepo) FindDetailByID(ctx context.Context, id string) (*models.ApplicationDetail, error) {
	if d, ok := m.details[id]; ok {
		return &d, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockApplicationRepo) Exists(ctx context.Context, studentID, programID string) (bool, error) {
	return m.existing[studentID+"/"+programID], nil
}

func (m *mockApplicationRepo) NextSequence(ctx context.Context, year int) (int, error) {
	m.sequence++
	return m.sequence, nil
}

func (m *mockApplicationRepo) Create(ctx context.Context, application *models.Application) error {
	if m.applications == nil {
		m.applications = make(map[string]models.Application)
	}
	m.applications[application.ID] = *application
	m.created = application
	return nil
}

func (m *mockApplicationRepo) MarkSubmitted(ctx context.Context, id string, submittedAt time.Time) error {
	m.submitted = append(m.submitted, id)
	return nil
}

func (m *mockApplicationRepo) UpdateReview(ctx context.Context, id string, status models.ApplicationStatus, reviewedBy string, reviewNotes *string, decisionDate *time.Time) error {
	if m.reviewed == nil {
		m.reviewed = make(map[string]models.ApplicationStatus)
	}
	m.reviewed[id] = status
	return nil
}

func (m *mockApplicationRepo) UpdatePayment(ctx context.Context, id string, status models.PaymentStatus, details []byte) error {
	if m.payments == nil {
		m.payments = make(map[string]models.PaymentStatus)
		m.paymentRaw = make(map[string][]byte)
	}
	m.payments[id] = status
	m.paymentRaw[id] = details
	return nil
}

type mockProgramLookup struct {
	programs map[string]models.Program
}

func (m *mockProgramLookup) FindByID(ctx context.Context, id string) (*models.Program, error) {
	if p, ok := m.programs[id]; ok {
		return &p, nil
	}
	return nil, sql.ErrNoRows
}

func studentClaims(id string) *models.JWTClaims {
	return &models.JWTClaims{UserID: id, Role: models.RoleStudent, Email: id + "@example.com", Name: "Student " + id}
}

func staffClaims(id string) *models.JWTClaims {
	return &models.JWTClaims{UserID: id, Role: models.RoleStaff}
}

func newApplicationServiceForTest(repo *mockApplicationRepo, programs *mockProgramLookup) *ApplicationService {
	return NewApplicationService(repo, programs, nil, nil, nil)
}

func TestApplicationServiceCreate(t *testing.T) {
	repo := &mockApplicationRepo{}
	programs := &mockProgramLookup{programs: map[string]models.Program{
		"prog-1": {ID: "prog-1", Name: "CSE", Status: models.ProgramActive},
	}}
	svc := newApplicationServiceForTest(repo, programs)

	application, err := svc.Create(context.Background(), studentClaims("stu-1"), CreateApplicationRequest{ProgramID: "prog-1"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, application.Status)
	assert.Equal(t, models.PaymentPending, application.PaymentStatus)
	assert.Equal(t, "stu-1", application.StudentID)
	assert.Equal(t, fmt.Sprintf("APP-%d-00001", time.Now().UTC().Year()), application.ApplicationNumber)
}

func TestApplicationServiceCreateSequencesAdvance(t *testing.T) {
	repo := &mockApplicationRepo{}
	programs := &mockProgramLookup{programs: map[string]models.Program{
		"prog-1": {ID: "prog-1", Status: models.ProgramActive},
		"prog-2": {ID: "prog-2", Status: models.ProgramActive},
	}}
	svc := newApplicationServiceForTest(repo, programs)

	first, err := svc.Create(context.Background(), studentClaims("stu-1"), CreateApplicationRequest{ProgramID: "prog-1"})
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), studentClaims("stu-1"), CreateApplicationRequest{ProgramID: "prog-2"})
	require.NoError(t, err)
	assert.NotEqual(t, first.ApplicationNumber, second.ApplicationNumber)
}

func TestApplicationServiceCreateUnknownProgram(t *testing.T) {
	svc := newApplicationServiceForTest(&mockApplicationRepo{}, &mockProgramLookup{})

	_, err := svc.Create(context.Background(), studentClaims("stu-1"), CreateApplicationRequest{ProgramID: "missing"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestApplicationServiceCreateInactiveProgram(t *testing.T) {
	programs := &mockProgramLookup{programs: map[string]models.Program{
		"prog-1": {ID: "prog-1", Status: models.ProgramInactive},
	}}
	svc := newApplicationServiceForTest(&mockApplicationRepo{}, programs)

	application, err := svc.Create(context.Background(), studentClaims("stu-1"), CreateApplicationRequest{ProgramID: "prog-1"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, application.Status)
}

func TestApplicationServiceCreateStudentsOnly(t *testing.T) {
	repo := &mockApplicationRepo{}
	programs := &mockProgramLookup{programs: map[string]models.Program{
		"prog-1": {ID: "prog-1", Status: models.ProgramActive},
	}}
	svc := newApplicationServiceForTest(repo, programs)

	_, err := svc.Create(context.Background(), staffClaims("staff-1"), CreateApplicationRequest{ProgramID: "prog-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.created)
}

func TestApplicationServiceCreateDuplicate(t *testing.T) {
	repo := &mockApplicationRepo{existing: map[string]bool{"stu-1/prog-1": true}}
	programs := &mockProgramLookup{programs: map[string]models.Program{
		"prog-1": {ID: "prog-1", Status: models.ProgramActive},
	}}
	svc := newApplicationServiceForTest(repo, programs)

	_, err := svc.Create(context.Background(), studentClaims("stu-1"), CreateApplicationRequest{ProgramID: "prog-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestApplicationServiceSubmit(t *testing.T) {
	repo := &mockApplicationRepo{details: map[string]models.ApplicationDetail{
		"app-1": {
			Application: models.Application{ID: "app-1", StudentID: "stu-1", Status: models.StatusDraft, ApplicationNumber: "APP-2026-00001"},
			StudentName: "Student stu-1", StudentEmail: "stu-1@example.com", ProgramName: "CSE",
		},
	}}
	svc := newApplicationServiceForTest(repo, &mockProgramLookup{})

	application, err := svc.Submit(context.Background(), studentClaims("stu-1"), "app-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSubmitted, application.Status)
	require.NotNil(t, application.SubmissionDate)
	assert.Equal(t, []string{"app-1"}, repo.submitted)
}

func TestApplicationServiceSubmitNotOwner(t *testing.T) {
	repo := &mockApplicationRepo{details: map[string]models.ApplicationDetail{
		"app-1": {Application: models.Application{ID: "app-1", StudentID: "stu-1", Status: models.StatusDraft}},
	}}
	svc := newApplicationServiceForTest(repo, &mockProgramLookup{})

	_, err := svc.Submit(context.Background(), studentClaims("stu-2"), "app-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.submitted)
}

func TestApplicationServiceSubmitTwice(t *testing.T) {
	repo := &mockApplicationRepo{details: map[string]models.ApplicationDetail{
		"app-1": {Application: models.Application{ID: "app-1", StudentID: "stu-1", Status: models.StatusSubmitted}},
	}}
	svc := newApplicationServiceForTest(repo, &mockProgramLookup{})

	_, err := svc.Submit(context.Background(), studentClaims("stu-1"), "app-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code)
}

func TestApplicationServiceUpdateStatusRequiresReviewer(t *testing.T) {
	svc := newApplicationServiceForTest(&mockApplicationRepo{}, &mockProgramLookup{})

	_, err := svc.UpdateStatus(context.Background(), studentClaims("stu-1"), "app-1", UpdateApplicationStatusRequest{Status: models.StatusUnderReview})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestApplicationServiceUpdateStatusRejectsDraftTarget(t *testing.T) {
	repo := &mockApplicationRepo{details: map[string]models.ApplicationDetail{
		"app-1": {Application: models.Application{ID: "app-1", StudentID: "stu-1", Status: models.StatusSubmitted}},
	}}
	svc := newApplicationServiceForTest(repo, &mockProgramLookup{})

	_, err := svc.UpdateStatus(context.Background(), staffClaims("staff-1"), "app-1", UpdateApplicationStatusRequest{Status: models.StatusDraft})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestApplicationServiceUpdateStatusFromDraft(t *testing.T) {
	repo := &mockApplicationRepo{details: map[string]models.ApplicationDetail{
		"app-1": {Application: models.Application{ID: "app-1", StudentID: "stu-1", Status: models.StatusDraft}},
	}}
	svc := newApplicationServiceForTest(repo, &mockProgramLookup{})

	_, err := svc.UpdateStatus(context.Background(), staffClaims("staff-1"), "app-1", UpdateApplicationStatusRequest{Status: models.StatusUnderReview})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code)
}

func TestApplicationServiceUpdateStatusDecisionStampsDate(t *testing.T) {
	repo := &mockApplicationRepo{details: map[string]models.ApplicationDetail{
		"app-1": {Application: models.Application{ID: "app-1", StudentID: "stu-1", Status: models.StatusUnderReview}},
	}}
	svc := newApplicationServiceForTest(repo, &mockProgramLookup{})

	application, err := svc.UpdateStatus(context.Background(), staffClaims("staff-1"), "app-1", UpdateApplicationStatusRequest{Status: models.StatusApproved})
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, application.Status)
	require.NotNil(t, application.DecisionDate)
	require.NotNil(t, application.ReviewedBy)
	assert.Equal(t, "staff-1", *application.ReviewedBy)
}

func TestApplicationServiceUpdateStatusNonDecisionKeepsDate(t *testing.T) {
	repo := &mockApplicationRepo{details: map[string]models.ApplicationDetail{
		"app-1": {Application: models.Application{ID: "app-1", StudentID: "stu-1", Status: models.StatusSubmitted}},
	}}
	svc := newApplicationServiceForTest(repo, &mockProgramLookup{})

	application, err := svc.UpdateStatus(context.Background(), staffClaims("staff-1"), "app-1", UpdateApplicationStatusRequest{Status: models.StatusUnderReview})
	require.NoError(t, err)
	assert.Nil(t, application.DecisionDate)
}

func TestApplicationServiceUpdatePayment(t *testing.T) {
	repo := &mockApplicationRepo{applications: map[string]models.Application{
		"app-1": {ID: "app-1", StudentID: "stu-1", PaymentStatus: models.PaymentPending},
	}}
	svc := newApplicationServiceForTest(repo, &mockProgramLookup{})

	details := &models.PaymentDetails{Amount: 1000, TransactionID: "txn-1", PaymentMethod: "card", PaymentDate: time.Now().UTC()}
	application, err := svc.UpdatePayment(context.Background(), studentClaims("stu-1"), "app-1", UpdatePaymentRequest{
		PaymentStatus:  models.PaymentCompleted,
		PaymentDetails: details,
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, application.PaymentStatus)
	assert.Equal(t, models.PaymentCompleted, repo.payments["app-1"])
	assert.NotEmpty(t, repo.paymentRaw["app-1"])
}

func TestApplicationServiceUpdatePaymentForbidden(t *testing.T) {
	repo := &mockApplicationRepo{applications: map[string]models.Application{
		"app-1": {ID: "app-1", StudentID: "stu-1"},
	}}
	svc := newApplicationServiceForTest(repo, &mockProgramLookup{})

	_, err := svc.UpdatePayment(context.Background(), studentClaims("stu-2"), "app-1", UpdatePaymentRequest{PaymentStatus: models.PaymentCompleted})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestApplicationServiceListScopesStudents(t *testing.T) {
	repo := &mockApplicationRepo{details: map[string]models.ApplicationDetail{
		"app-1": {Application: models.Application{ID: "app-1", StudentID: "stu-1"}},
		"app-2": {Application: models.Application{ID: "app-2", StudentID: "stu-2"}},
	}}
	svc := newApplicationServiceForTest(repo, &mockProgramLookup{})

	list, pagination, err := svc.List(context.Background(), studentClaims("stu-1"), models.ApplicationFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "stu-1", repo.lastFilter.StudentID)
	assert.Equal(t, 1, pagination.TotalCount)
}

func TestApplicationServiceListReviewerSeesAll(t *testing.T) {
	repo := &mockApplicationRepo{details: map[string]models.ApplicationDetail{
		"app-1": {Application: models.Application{ID: "app-1", StudentID: "stu-1"}},
		"app-2": {Application: models.Application{ID: "app-2", StudentID: "stu-2"}},
	}}
	svc := newApplicationServiceForTest(repo, &mockProgramLookup{})

	list, _, err := svc.List(context.Background(), staffClaims("staff-1"), models.ApplicationFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Empty(t, repo.lastFilter.StudentID)
}

func TestApplicationServiceGetOwnership(t *testing.T) {
	repo := &mockApplicationRepo{details: map[string]models.ApplicationDetail{
		"app-1": {Application: models.Application{ID: "app-1", StudentID: "stu-1"}},
	}}
	svc := newApplicationServiceForTest(repo, &mockProgramLookup{})

	_, err := svc.Get(context.Background(), studentClaims("stu-2"), "app-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	detail, err := svc.Get(context.Background(), staffClaims("staff-1"), "app-1")
	require.NoError(t, err)
	assert.Equal(t, "app-1", detail.ID)
}
