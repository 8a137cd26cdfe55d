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

type mockProfileRepo struct {
	profiles map[string]*models.StudentProfile
	created  *models.StudentProfile
	updated  *models.StudentProfile
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{profiles: make(map[string]*models.StudentProfile)}
}

func (m *mockProfileRepo) Create(ctx context.Context, profile *models.StudentProfile) error {
	m.created = profile
	m.profiles[profile.UserID] = profile
	return nil
}

func (m *mockProfileRepo) FindByUserID(ctx context.Context, userID string) (*models.StudentProfile, error) {
	p, ok := m.profiles[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *p
	return &copied, nil
}

func (m *mockProfileRepo) ExistsForUser(ctx context.Context, userID string) (bool, error) {
	_, ok := m.profiles[userID]
	return ok, nil
}

func (m *mockProfileRepo) Update(ctx context.Context, profile *models.StudentProfile) error {
	if _, ok := m.profiles[profile.UserID]; !ok {
		return sql.ErrNoRows
	}
	m.updated = profile
	m.profiles[profile.UserID] = profile
	return nil
}

type mockProfileDocuments struct {
	docs map[string][]models.Document
}

func (m *mockProfileDocuments) ListByStudent(ctx context.Context, studentID string) ([]models.Document, error) {
	if m == nil {
		return nil, nil
	}
	return m.docs[studentID], nil
}

func newProfileServiceForTest(repo *mockProfileRepo, docs *mockProfileDocuments) *ProfileService {
	return NewProfileService(repo, docs, nil, nil)
}

func validProfileRequest() ProfileRequest {
	return ProfileRequest{
		PersonalInfo: models.PersonalInfo{
			FirstName:   "Asha",
			LastName:    "Verma",
			DateOfBirth: time.Date(2004, time.March, 12, 0, 0, 0, 0, time.UTC),
			Gender:      "female",
			PhoneNumber: "+91-9876543210",
		},
		Educational: models.EducationalBackground{
			HighSchoolName:           "Central High School",
			HighSchoolGrade:          92.5,
			HighSchoolGraduationYear: 2022,
		},
	}
}

func TestProfileServiceCreate(t *testing.T) {
	repo := newMockProfileRepo()
	svc := newProfileServiceForTest(repo, nil)

	profile, err := svc.Create(context.Background(), studentClaims("stu-1"), validProfileRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, profile.ID)
	assert.Equal(t, "stu-1", profile.UserID)
	assert.NotEmpty(t, profile.PersonalRaw)
	assert.NotEmpty(t, profile.EducationalRaw)
}

func TestProfileServiceCreateOnlyOnce(t *testing.T) {
	repo := newMockProfileRepo()
	svc := newProfileServiceForTest(repo, nil)

	_, err := svc.Create(context.Background(), studentClaims("stu-1"), validProfileRequest())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), studentClaims("stu-1"), validProfileRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestProfileServiceCreateRejectsIncompletePayload(t *testing.T) {
	svc := newProfileServiceForTest(newMockProfileRepo(), nil)

	req := validProfileRequest()
	req.PersonalInfo.PhoneNumber = ""
	_, err := svc.Create(context.Background(), studentClaims("stu-1"), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestProfileServiceGetOwnership(t *testing.T) {
	repo := newMockProfileRepo()
	svc := newProfileServiceForTest(repo, nil)
	_, err := svc.Create(context.Background(), studentClaims("stu-1"), validProfileRequest())
	require.NoError(t, err)

	profile, err := svc.Get(context.Background(), studentClaims("stu-1"), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, "Asha", profile.PersonalInfo.FirstName)

	profile, err = svc.Get(context.Background(), staffClaims("staff-1"), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, "stu-1", profile.UserID)

	_, err = svc.Get(context.Background(), studentClaims("stu-2"), "stu-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestProfileServiceGetIncludesDocuments(t *testing.T) {
	repo := newMockProfileRepo()
	docs := &mockProfileDocuments{docs: map[string][]models.Document{
		"stu-1": {
			{ID: "doc-2", StudentID: "stu-1", DocumentType: models.DocHighSchoolTranscripts},
			{ID: "doc-1", StudentID: "stu-1", DocumentType: models.DocIDProof},
		},
	}}
	svc := newProfileServiceForTest(repo, docs)
	_, err := svc.Create(context.Background(), studentClaims("stu-1"), validProfileRequest())
	require.NoError(t, err)

	profile, err := svc.Get(context.Background(), studentClaims("stu-1"), "stu-1")
	require.NoError(t, err)
	require.Len(t, profile.Documents, 2)
	assert.Equal(t, "doc-2", profile.Documents[0].ID)
	assert.Equal(t, models.DocIDProof, profile.Documents[1].DocumentType)
}

func TestProfileServiceUpdateReplacesSubDocuments(t *testing.T) {
	repo := newMockProfileRepo()
	svc := newProfileServiceForTest(repo, nil)
	_, err := svc.Create(context.Background(), studentClaims("stu-1"), validProfileRequest())
	require.NoError(t, err)

	req := validProfileRequest()
	req.PersonalInfo.City = "Pune"
	req.Educational = models.EducationalBackground{HighSchoolName: "City Public School"}

	profile, err := svc.Update(context.Background(), studentClaims("stu-1"), "stu-1", req)
	require.NoError(t, err)
	assert.Equal(t, "Pune", profile.PersonalInfo.City)
	assert.Equal(t, "City Public School", profile.Educational.HighSchoolName)
	assert.Zero(t, profile.Educational.HighSchoolGrade)
	require.NotNil(t, repo.updated)
}

func TestProfileServiceUpdateStaffForbidden(t *testing.T) {
	repo := newMockProfileRepo()
	svc := newProfileServiceForTest(repo, nil)
	_, err := svc.Create(context.Background(), studentClaims("stu-1"), validProfileRequest())
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), staffClaims("staff-1"), "stu-1", validProfileRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
