package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/uni-adm-api/internal/models"
	appErrors "github.com/noah-isme/uni-adm-api/pkg/errors"
)

type mockUserRepo struct {
	users   map[string]models.User
	byEmail map[string]string
	created *models.User
	updated *models.User
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.users == nil {
		m.users = make(map[string]models.User)
		m.byEmail = make(map[string]string)
	}
	m.users[user.ID] = *user
	m.byEmail[user.Email] = user.ID
	m.created = user
	return nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if id, ok := m.byEmail[email]; ok {
		u := m.users[id]
		return &u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return &u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) ExistsEmail(ctx context.Context, email string) (bool, error) {
	_, ok := m.byEmail[email]
	return ok, nil
}

func (m *mockUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	var list []models.User
	for _, u := range m.users {
		list = append(list, u)
	}
	return list, len(list), nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *models.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return sql.ErrNoRows
	}
	m.users[user.ID] = *user
	m.updated = user
	return nil
}

func newAuthServiceForTest(repo *mockUserRepo) *AuthService {
	return NewAuthService(repo, nil, nil, nil, AuthConfig{
		TokenSecret: "test-secret",
		TokenExpiry: 24 * time.Hour,
		Issuer:      "uni-adm-api",
	})
}

func seedAccount(t *testing.T, repo *mockUserRepo, id, email, password string, role models.UserRole) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), &models.User{
		ID:           id,
		Name:         "Seeded " + id,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}))
}

func TestAuthServiceRegister(t *testing.T) {
	repo := &mockUserRepo{}
	svc := newAuthServiceForTest(repo)

	res, err := svc.Register(context.Background(), models.RegisterRequest{
		Name:     "New Student",
		Email:    "new@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, models.RoleStudent, res.User.Role)
	require.NotNil(t, repo.created)
	assert.NotEqual(t, "secret123", repo.created.PasswordHash)

	claims, err := svc.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, repo.created.ID, claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
}

func TestAuthServiceRegisterDuplicateEmail(t *testing.T) {
	repo := &mockUserRepo{}
	seedAccount(t, repo, "usr-1", "taken@example.com", "pw123456", models.RoleStudent)
	svc := newAuthServiceForTest(repo)

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Name:     "Someone",
		Email:    "taken@example.com",
		Password: "secret123",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRegisterInvalidPayload(t *testing.T) {
	svc := newAuthServiceForTest(&mockUserRepo{})

	_, err := svc.Register(context.Background(), models.RegisterRequest{Email: "not-an-email", Password: "short"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLogin(t *testing.T) {
	repo := &mockUserRepo{}
	seedAccount(t, repo, "usr-1", "student@example.com", "student123", models.RoleStudent)
	svc := newAuthServiceForTest(repo)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "student@example.com", Password: "student123"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "usr-1", res.User.ID)
	assert.Equal(t, int64((24 * time.Hour).Seconds()), res.ExpiresIn)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	repo := &mockUserRepo{}
	seedAccount(t, repo, "usr-1", "student@example.com", "student123", models.RoleStudent)
	svc := newAuthServiceForTest(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "student@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	svc := newAuthServiceForTest(&mockUserRepo{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ghost@example.com", Password: "whatever"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenRejectsTampered(t *testing.T) {
	repo := &mockUserRepo{}
	svc := newAuthServiceForTest(repo)

	res, err := svc.Register(context.Background(), models.RegisterRequest{
		Name:     "New Student",
		Email:    "new@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	_, err = svc.ValidateToken(res.Token + "x")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceMe(t *testing.T) {
	repo := &mockUserRepo{}
	seedAccount(t, repo, "usr-1", "student@example.com", "student123", models.RoleStudent)
	svc := newAuthServiceForTest(repo)

	user, err := svc.Me(context.Background(), &models.JWTClaims{UserID: "usr-1"})
	require.NoError(t, err)
	assert.Equal(t, "student@example.com", user.Email)

	_, err = svc.Me(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
