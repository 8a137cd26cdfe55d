package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-adm-api/internal/models"
	appErrors "github.com/noah-isme/uni-adm-api/pkg/errors"
)

type mockProgramRepo struct {
	programs   map[string]*models.Program
	lastFilter models.ProgramFilter
	created    *models.Program
	updated    *models.Program
	deleted    []string
}

func newMockProgramRepo() *mockProgramRepo {
	return &mockProgramRepo{programs: make(map[string]*models.Program)}
}

func (m *mockProgramRepo) List(ctx context.Context, filter models.ProgramFilter) ([]models.Program, int, error) {
	m.lastFilter = filter
	var out []models.Program
	for _, p := range m.programs {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (m *mockProgramRepo) FindByID(ctx context.Context, id string) (*models.Program, error) {
	p, ok := m.programs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *p
	return &copied, nil
}

func (m *mockProgramRepo) Create(ctx context.Context, program *models.Program) error {
	m.created = program
	m.programs[program.ID] = program
	return nil
}

func (m *mockProgramRepo) Update(ctx context.Context, program *models.Program) error {
	if _, ok := m.programs[program.ID]; !ok {
		return sql.ErrNoRows
	}
	m.updated = program
	m.programs[program.ID] = program
	return nil
}

func (m *mockProgramRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.programs[id]; !ok {
		return sql.ErrNoRows
	}
	m.deleted = append(m.deleted, id)
	delete(m.programs, id)
	return nil
}

func seedProgram(repo *mockProgramRepo, id string, status models.ProgramStatus) *models.Program {
	program := &models.Program{
		ID:          id,
		Name:        "Computer Science Engineering",
		ProgramType: models.ProgramBTech,
		Department:  "Computer Science",
		Status:      status,
	}
	repo.programs[id] = program
	return program
}

func validProgramRequest() ProgramRequest {
	return ProgramRequest{
		Name:                "Machine Learning and AI",
		Description:         "Advanced program in ML",
		ProgramType:         models.ProgramMTech,
		Department:          "Computer Science",
		DurationYears:       2,
		Seats:               40,
		ApplicationFee:      1500,
		TuitionFee:          150000,
		ApplicationDeadline: time.Now().AddDate(0, 3, 0),
		StartDate:           time.Now().AddDate(0, 6, 0),
	}
}

func TestProgramServiceListActiveFiltersStatus(t *testing.T) {
	repo := newMockProgramRepo()
	seedProgram(repo, "prog-1", models.ProgramActive)
	seedProgram(repo, "prog-2", models.ProgramInactive)
	svc := NewProgramService(repo, nil, nil, nil)

	programs, pagination, err := svc.ListActive(context.Background(), models.ProgramFilter{Status: models.ProgramInactive})
	require.NoError(t, err)
	require.Len(t, programs, 1)
	assert.Equal(t, "prog-1", programs[0].ID)
	assert.Equal(t, models.ProgramActive, repo.lastFilter.Status)
	assert.Equal(t, 1, pagination.TotalCount)
}

func TestProgramServiceListRequiresReviewer(t *testing.T) {
	repo := newMockProgramRepo()
	seedProgram(repo, "prog-1", models.ProgramActive)
	seedProgram(repo, "prog-2", models.ProgramInactive)
	svc := NewProgramService(repo, nil, nil, nil)

	_, _, err := svc.List(context.Background(), studentClaims("stu-1"), models.ProgramFilter{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	programs, _, err := svc.List(context.Background(), staffClaims("staff-1"), models.ProgramFilter{})
	require.NoError(t, err)
	assert.Len(t, programs, 2)
}

func TestProgramServiceGetNotFound(t *testing.T) {
	svc := NewProgramService(newMockProgramRepo(), nil, nil, nil)

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestProgramServiceCreateAdminOnly(t *testing.T) {
	repo := newMockProgramRepo()
	svc := NewProgramService(repo, nil, nil, nil)

	_, err := svc.Create(context.Background(), staffClaims("staff-1"), validProgramRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	program, err := svc.Create(context.Background(), adminClaims("adm-1"), validProgramRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, program.ID)
	assert.Equal(t, models.ProgramActive, program.Status)
	require.NotNil(t, repo.created)
}

func TestProgramServiceCreateRejectsUnknownType(t *testing.T) {
	svc := NewProgramService(newMockProgramRepo(), nil, nil, nil)

	req := validProgramRequest()
	req.ProgramType = "Bootcamp"
	_, err := svc.Create(context.Background(), adminClaims("adm-1"), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestProgramServiceUpdate(t *testing.T) {
	repo := newMockProgramRepo()
	seedProgram(repo, "prog-1", models.ProgramActive)
	svc := NewProgramService(repo, nil, nil, nil)

	req := validProgramRequest()
	req.Status = models.ProgramInactive
	program, err := svc.Update(context.Background(), adminClaims("adm-1"), "prog-1", req)
	require.NoError(t, err)
	assert.Equal(t, "Machine Learning and AI", program.Name)
	assert.Equal(t, models.ProgramInactive, program.Status)
}

func TestProgramServiceDelete(t *testing.T) {
	repo := newMockProgramRepo()
	seedProgram(repo, "prog-1", models.ProgramActive)
	svc := NewProgramService(repo, nil, nil, nil)

	err := svc.Delete(context.Background(), staffClaims("staff-1"), "prog-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.Delete(context.Background(), adminClaims("adm-1"), "prog-1"))
	assert.Equal(t, []string{"prog-1"}, repo.deleted)

	err = svc.Delete(context.Background(), adminClaims("adm-1"), "prog-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
