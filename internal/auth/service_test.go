package auth

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/kodacard/kodacard-backend/internal/users"
	pkgAuth "github.com/kodacard/kodacard-backend/pkg/auth"
	"github.com/kodacard/kodacard-backend/pkg/config"
	"github.com/kodacard/kodacard-backend/pkg/db/models"
	"github.com/kodacard/kodacard-backend/pkg/enums"
	pkgerrors "github.com/kodacard/kodacard-backend/pkg/errors"
	"github.com/kodacard/kodacard-backend/pkg/security"
)

type fakeUserRepo struct {
	byEmail map[string]*models.User
	nextID  uint64
	logins  []uint64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: map[string]*models.User{}, nextID: 1}
}

func (f *fakeUserRepo) Create(_ context.Context, dto users.CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	user.ID = f.nextID
	f.nextID++
	f.byEmail[user.Email] = user
	return user, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) UpdateLastLogin(_ context.Context, id uint64, _ time.Time) error {
	f.logins = append(f.logins, id)
	return nil
}

type fakeSessions struct {
	generated []string
	revoked   []string
	rotateErr error
}

func (f *fakeSessions) Generate(_ context.Context, accessID string) (string, error) {
	f.generated = append(f.generated, accessID)
	return "refresh-" + accessID, nil
}

func (f *fakeSessions) Rotate(_ context.Context, oldAccessID, _ string) (string, string, error) {
	if f.rotateErr != nil {
		return "", "", f.rotateErr
	}
	return "rotated-" + oldAccessID, "refresh-rotated", nil
}

func (f *fakeSessions) Revoke(_ context.Context, accessID string) error {
	f.revoked = append(f.revoked, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "kodacard",
		ExpirationMinutes: 30,
	}
}

func newTestService(t *testing.T, repo userRepository, sessions sessionManager) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func seedUser(t *testing.T, repo *fakeUserRepo, email, password string, role enums.SystemRole) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user, err := repo.Create(context.Background(), users.CreateUserDTO{
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Test",
		LastName:     "User",
		SystemRole:   role,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func TestRegisterCreatesUser(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(t, repo, &fakeSessions{})

	dto, err := svc.Register(context.Background(), RegisterRequest{
		FirstName: "Anna",
		LastName:  "Kovacs",
		Email:     "Anna@Example.COM",
		Password:  "correct-horse",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if dto.Email != "anna@example.com" {
		t.Fatalf("expected lowercased email, got %s", dto.Email)
	}
	if dto.SystemRole != enums.SystemRoleUser {
		t.Fatalf("expected user role, got %s", dto.SystemRole)
	}
	if dto.ID == 0 {
		t.Fatal("expected assigned id")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	seedUser(t, repo, "taken@example.com", "pw-12345678", enums.SystemRoleUser)
	svc := newTestService(t, repo, &fakeSessions{})

	_, err := svc.Register(context.Background(), RegisterRequest{
		FirstName: "Other",
		LastName:  "User",
		Email:     "taken@example.com",
		Password:  "pw-12345678",
	})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestLoginSuccess(t *testing.T) {
	repo := newFakeUserRepo()
	user := seedUser(t, repo, "login@example.com", "pw-12345678", enums.SystemRoleUser)
	sessions := &fakeSessions{}
	svc := newTestService(t, repo, sessions)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "Login@Example.com",
		Password: "pw-12345678",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected token pair")
	}
	if resp.User == nil || resp.User.ID != user.ID {
		t.Fatal("expected user payload")
	}
	if len(repo.logins) != 1 || repo.logins[0] != user.ID {
		t.Fatal("expected last login to be recorded")
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("expected user id %d in claims, got %d", user.ID, claims.UserID)
	}
	if len(sessions.generated) != 1 || sessions.generated[0] != claims.ID {
		t.Fatal("expected session keyed by jti")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newFakeUserRepo()
	seedUser(t, repo, "login@example.com", "pw-12345678", enums.SystemRoleUser)
	svc := newTestService(t, repo, &fakeSessions{})

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "login@example.com",
		Password: "wrong",
	})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := newTestService(t, newFakeUserRepo(), &fakeSessions{})

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "nobody@example.com",
		Password: "pw-12345678",
	})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginInactiveUser(t *testing.T) {
	repo := newFakeUserRepo()
	user := seedUser(t, repo, "login@example.com", "pw-12345678", enums.SystemRoleUser)
	user.IsActive = false
	svc := newTestService(t, repo, &fakeSessions{})

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "login@example.com",
		Password: "pw-12345678",
	})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestRefreshRotatesPair(t *testing.T) {
	repo := newFakeUserRepo()
	sessions := &fakeSessions{}
	svc := newTestService(t, repo, sessions)

	accessToken, err := pkgAuth.MintAccessToken(testJWTConfig(), time.Now(), pkgAuth.AccessTokenPayload{
		UserID: 5,
		Role:   enums.SystemRoleUser,
		JTI:    "old-jti",
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	resp, err := svc.Refresh(context.Background(), accessToken, RefreshRequest{RefreshToken: "refresh-old-jti"})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if resp.RefreshToken != "refresh-rotated" {
		t.Fatalf("unexpected refresh token %s", resp.RefreshToken)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 5 {
		t.Fatalf("expected user id preserved, got %d", claims.UserID)
	}
	if claims.ID != "rotated-old-jti" {
		t.Fatalf("expected rotated jti, got %s", claims.ID)
	}
}

func TestRefreshInvalidToken(t *testing.T) {
	svc := newTestService(t, newFakeUserRepo(), &fakeSessions{})

	_, err := svc.Refresh(context.Background(), "garbage", RefreshRequest{RefreshToken: "x"})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	sessions := &fakeSessions{}
	svc := newTestService(t, newFakeUserRepo(), sessions)

	if err := svc.Logout(context.Background(), "jti-1"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "jti-1" {
		t.Fatal("expected session revoked")
	}
}

func TestPermissionsByRole(t *testing.T) {
	svc := newTestService(t, newFakeUserRepo(), &fakeSessions{})

	userPerms := svc.Permissions(context.Background(), enums.SystemRoleUser)
	adminPerms := svc.Permissions(context.Background(), enums.SystemRoleAdmin)

	if len(adminPerms.Permissions) <= len(userPerms.Permissions) {
		t.Fatal("expected admin to hold more permissions than user")
	}
	if userPerms.Role != "user" || adminPerms.Role != "admin" {
		t.Fatalf("unexpected roles %s/%s", userPerms.Role, adminPerms.Role)
	}
}
