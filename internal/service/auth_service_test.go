package service

import (
	"errors"
	"testing"
	"time"

	"github.com/maya-downloads/api/internal/config"
	"github.com/maya-downloads/api/internal/models"
)

type fakeAdminRepo struct {
	admin      *models.Admin
	lastTouch  time.Time
	savedHash  string
	savedForID uint
}

func (r *fakeAdminRepo) GetByID(id uint) (*models.Admin, error) {
	if r.admin != nil && r.admin.ID == id {
		return r.admin, nil
	}
	return nil, nil
}

func (r *fakeAdminRepo) GetByUsername(username string) (*models.Admin, error) {
	if r.admin != nil && r.admin.Username == username {
		return r.admin, nil
	}
	return nil, nil
}

func (r *fakeAdminRepo) UpdatePassword(id uint, passwordHash string) error {
	r.savedForID = id
	r.savedHash = passwordHash
	return nil
}

func (r *fakeAdminRepo) TouchLastLogin(id uint, at time.Time) error {
	r.lastTouch = at
	return nil
}

func newTestAuthService(t *testing.T, password string) (*AuthService, *fakeAdminRepo) {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	repo := &fakeAdminRepo{
		admin: &models.Admin{ID: 1, Username: "admin", PasswordHash: hash},
	}
	svc := NewAuthService(repo, config.JWTConfig{
		SecretKey:   "unit-test-secret-key-0123456789abcdef",
		ExpireHours: 1,
	})
	return svc, repo
}

func TestLoginAndParseJWTRoundTrip(t *testing.T) {
	svc, repo := newTestAuthService(t, "correct-horse")

	token, admin, err := svc.Login("admin", "correct-horse")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if admin.ID != 1 {
		t.Fatalf("admin id want 1 got %d", admin.ID)
	}
	if repo.lastTouch.IsZero() {
		t.Fatalf("last login should be touched")
	}

	claims, err := svc.ParseJWT(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.AdminID != 1 || claims.Username != "admin" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newTestAuthService(t, "correct-horse")

	if _, _, err := svc.Login("admin", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password want ErrInvalidCredentials got %v", err)
	}
	if _, _, err := svc.Login("nobody", "correct-horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user want ErrInvalidCredentials got %v", err)
	}
}

func TestParseJWTRejectsTamperedToken(t *testing.T) {
	svc, _ := newTestAuthService(t, "correct-horse")
	other, _ := newTestAuthService(t, "correct-horse")
	other.jwtCfg.SecretKey = "another-secret-key-different-0123456789"

	token, _, err := svc.Login("admin", "correct-horse")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if _, err := other.ParseJWT(token); err == nil {
		t.Fatalf("token signed with other key should fail")
	}
}

func TestChangePassword(t *testing.T) {
	svc, repo := newTestAuthService(t, "old-password")

	if err := svc.ChangePassword(1, "wrong", "new-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong old password want ErrInvalidCredentials got %v", err)
	}

	if err := svc.ChangePassword(1, "old-password", "new-password"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}
	if repo.savedForID != 1 || repo.savedHash == "" {
		t.Fatalf("new hash should be persisted")
	}
	if !VerifyPassword(repo.savedHash, "new-password") {
		t.Fatalf("persisted hash should match new password")
	}
}
