package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/cardbinder/cardbinder-backend/pkg/auth"
	"github.com/cardbinder/cardbinder-backend/pkg/config"
	dbpkg "github.com/cardbinder/cardbinder-backend/pkg/db"
	"github.com/cardbinder/cardbinder-backend/pkg/db/models"
	"github.com/cardbinder/cardbinder-backend/pkg/enums"
	pkgerrors "github.com/cardbinder/cardbinder-backend/pkg/errors"
	"github.com/cardbinder/cardbinder-backend/pkg/security"
)

type fakeUserRepo struct {
	byEmail map[string]*models.User
	byID    map[uuid.UUID]*models.User
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if user, ok := f.byEmail[email]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := f.byID[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) UpdateLastLogin(context.Context, uuid.UUID, time.Time) error {
	return nil
}

type fakeSessions struct {
	tokens map[string]string
}

func (f *fakeSessions) StoreRefreshToken(_ context.Context, userID, token string, _ time.Duration) error {
	f.tokens[userID] = token
	return nil
}

func (f *fakeSessions) GetRefreshToken(_ context.Context, userID string) (string, error) {
	return f.tokens[userID], nil
}

func (f *fakeSessions) RevokeRefreshToken(_ context.Context, userID string) error {
	delete(f.tokens, userID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "cardbinder-test",
		ExpirationMinutes: 15,
	}
}

func testUser(t *testing.T, email, password string) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		DisplayName:  "Test Trader",
		Role:         enums.RoleUser,
		Tier:         enums.AccountTierFree,
		IsActive:     true,
	}
}

func testService(t *testing.T, repo *fakeUserRepo, sessions *fakeSessions) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:  repo,
		DBClient:  &dbpkg.Client{},
		Sessions:  sessions,
		JWTConfig: testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func wantUnauthorized(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected an error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginIssuesSession(t *testing.T) {
	user := testUser(t, "ash@example.com", "pikachu-rules")
	repo := &fakeUserRepo{
		byEmail: map[string]*models.User{user.Email: user},
		byID:    map[uuid.UUID]*models.User{user.ID: user},
	}
	sessions := &fakeSessions{tokens: map[string]string{}}
	svc := testService(t, repo, sessions)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "Ash@Example.com ", Password: "pikachu-rules"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatalf("expected both tokens")
	}
	if sessions.tokens[user.ID.String()] != resp.RefreshToken {
		t.Fatalf("expected refresh token to be stored")
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("wrong subject in token")
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	user := testUser(t, "ash@example.com", "pikachu-rules")
	repo := &fakeUserRepo{byEmail: map[string]*models.User{user.Email: user}}
	svc := testService(t, repo, &fakeSessions{tokens: map[string]string{}})

	_, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "wrong"})
	wantUnauthorized(t, err)
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	user := testUser(t, "banned@example.com", "pikachu-rules")
	user.IsActive = false
	repo := &fakeUserRepo{byEmail: map[string]*models.User{user.Email: user}}
	svc := testService(t, repo, &fakeSessions{tokens: map[string]string{}})

	_, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "pikachu-rules"})
	wantUnauthorized(t, err)
}

func TestRefreshRotatesSession(t *testing.T) {
	user := testUser(t, "ash@example.com", "pikachu-rules")
	repo := &fakeUserRepo{
		byEmail: map[string]*models.User{user.Email: user},
		byID:    map[uuid.UUID]*models.User{user.ID: user},
	}
	sessions := &fakeSessions{tokens: map[string]string{}}
	svc := testService(t, repo, sessions)

	first, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "pikachu-rules"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	second, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  first.AccessToken,
		RefreshToken: first.RefreshToken,
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Fatalf("expected the refresh token to rotate")
	}
	if sessions.tokens[user.ID.String()] != second.RefreshToken {
		t.Fatalf("expected the new refresh token to be stored")
	}
}

func TestRefreshRejectsMismatchedToken(t *testing.T) {
	user := testUser(t, "ash@example.com", "pikachu-rules")
	repo := &fakeUserRepo{
		byEmail: map[string]*models.User{user.Email: user},
		byID:    map[uuid.UUID]*models.User{user.ID: user},
	}
	sessions := &fakeSessions{tokens: map[string]string{}}
	svc := testService(t, repo, sessions)

	first, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "pikachu-rules"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	_, err = svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  first.AccessToken,
		RefreshToken: "stolen-token",
	})
	wantUnauthorized(t, err)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	user := testUser(t, "ash@example.com", "pikachu-rules")
	repo := &fakeUserRepo{
		byEmail: map[string]*models.User{user.Email: user},
		byID:    map[uuid.UUID]*models.User{user.ID: user},
	}
	sessions := &fakeSessions{tokens: map[string]string{}}
	svc := testService(t, repo, sessions)

	if _, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "pikachu-rules"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := svc.Logout(context.Background(), user.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, ok := sessions.tokens[user.ID.String()]; ok {
		t.Fatalf("expected the refresh token to be revoked")
	}
}
