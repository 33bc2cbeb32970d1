package service

import (
	"context"
	"os"
	"time"

	"clinicpanel/internal/apperror"
	"clinicpanel/internal/model"
	"clinicpanel/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// --- DTOs ---

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UnlockRequest struct {
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// --- Interface ---

type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)
	// UnlockFinance reissues the caller's token with the finance claim set,
	// after checking the shared finance password (FINANCE_PASSWORD env).
	UnlockFinance(ctx context.Context, userID string, req UnlockRequest) (TokenResponse, error)
	// EnsureAdminUser seeds the login from ADMIN_USERNAME / ADMIN_PASSWORD on
	// first boot. No-op when the user already exists or the vars are unset.
	EnsureAdminUser(ctx context.Context) error
}

type authService struct {
	userRepo repository.UserRepository
}

func NewAuthService(userRepo repository.UserRepository) AuthService {
	return &authService{userRepo: userRepo}
}

// --- Implementation ---

func (s *authService) Login(ctx context.Context, req LoginRequest) (TokenResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		return TokenResponse{}, apperror.Validation("invalid username or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return TokenResponse{}, apperror.Validation("invalid username or password")
	}
	return s.issueToken(user.ID.String(), false)
}

func (s *authService) UnlockFinance(ctx context.Context, userID string, req UnlockRequest) (TokenResponse, error) {
	expected := os.Getenv("FINANCE_PASSWORD")
	if expected == "" {
		// No finance password configured: the panel runs without the extra
		// gate, so unlocking always succeeds.
		return s.issueToken(userID, true)
	}
	if req.Password != expected {
		return TokenResponse{}, apperror.Validation("invalid finance password")
	}
	return s.issueToken(userID, true)
}

func (s *authService) EnsureAdminUser(ctx context.Context) error {
	username := os.Getenv("ADMIN_USERNAME")
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || password == "" {
		return nil
	}
	if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.userRepo.Create(ctx, &model.User{Username: username, PasswordHash: string(hash)})
}

func (s *authService) issueToken(userID string, financeUnlocked bool) (TokenResponse, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"fin": financeUnlocked,
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	})

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_super_secret_key"
	}

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return TokenResponse{}, apperror.Integrity("failed to generate token", err)
	}
	return TokenResponse{Token: signed}, nil
}
