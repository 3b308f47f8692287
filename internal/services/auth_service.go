package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/Kamey12/Apex-Inventory-System/internal/models"
	"github.com/Kamey12/Apex-Inventory-System/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultTokenTTL is how long an issued bearer token stays valid.
	DefaultTokenTTL = time.Hour
	// ResetTokenTTL is how long a password reset token can be redeemed.
	ResetTokenTTL = 10 * time.Minute

	resetTokenBytes = 20
)

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo   repositories.UserRepository
	jwtSecret  []byte
	tokenDurat time.Duration
	now        func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: DefaultTokenTTL,
		now:        time.Now,
	}
}

// WithClock replaces the time source used for token issue and reset expiry.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// WithTokenTTL overrides how long issued tokens are valid.
func (s *AuthService) WithTokenTTL(ttl time.Duration) *AuthService {
	if ttl > 0 {
		s.tokenDurat = ttl
	}
	return s
}

// RegisterUser creates an account with a bcrypt-hashed password.
func (s *AuthService) RegisterUser(ctx context.Context, username, password, role string) (*models.User, error) {
	parsedRole, err := models.ParseRole(role)
	if err != nil {
		return nil, ErrInvalidRole
	}

	if existing, err := s.userRepo.GetByUsername(ctx, username); err == nil && existing != nil {
		return nil, fmt.Errorf("username '%s': %w", username, ErrUsernameTaken)
	} else if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username: username,
		Password: string(hashedPassword),
		Role:     parsedRole,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fmt.Errorf("username '%s': %w", username, ErrUsernameTaken)
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return user, nil
}

// LoginUser checks credentials and returns a signed token together with the user.
func (s *AuthService) LoginUser(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if errors.Is(err, repositories.ErrNotFound) {
		// Unknown user and wrong password look the same to the caller
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to load user %s: %w", username, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	tokenString, err := s.issueToken(user)
	if err != nil {
		return "", nil, err
	}
	return tokenString, user, nil
}

func (s *AuthService) issueToken(user *models.User) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     string(user.Role),
		"exp":      now.Add(s.tokenDurat).Unix(),
		"iat":      now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a token and returns the session it carries.
func (s *AuthService) ValidateToken(tokenString string) (*models.Session, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, _ := claims["user_id"].(string)
	username, _ := claims["username"].(string)
	rawRole, _ := claims["role"].(string)
	if userID == "" || rawRole == "" {
		return nil, fmt.Errorf("%w: missing claims", ErrInvalidToken)
	}
	role, err := models.ParseRole(rawRole)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	return &models.Session{UserID: userID, Username: username, Role: role}, nil
}

// ListUsers returns every account. Password and reset fields never leave the models package in JSON.
func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// RequestPasswordReset stores the hash of a fresh reset token and returns the path that redeems it.
// Nothing is mailed; the caller hands the path to the user.
func (s *AuthService) RequestPasswordReset(ctx context.Context, username string) (string, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	raw := make([]byte, resetTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	resetToken := hex.EncodeToString(raw)

	expire := s.now().Add(ResetTokenTTL)
	user.ResetPasswordToken = hashResetToken(resetToken)
	user.ResetPasswordExpire = &expire
	if err := s.userRepo.Update(ctx, user); err != nil {
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}

	log.Info().Str("username", user.Username).Time("expires", expire).Msg("password reset requested")
	return "/reset-password/" + resetToken, nil
}

// ResetPassword redeems a reset token. confirm is optional; when given it must match password.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken, password, confirm string) error {
	if confirm != "" && confirm != password {
		return ErrPasswordMismatch
	}

	user, err := s.userRepo.GetByResetToken(ctx, hashResetToken(rawToken), s.now())
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("failed to look up reset token: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashedPassword)
	user.ClearReset()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	log.Info().Str("username", user.Username).Msg("password reset completed")
	return nil
}

// EnsureDefaultAdmin creates an admin account when none exists yet.
func (s *AuthService) EnsureDefaultAdmin(ctx context.Context, username, password string) (bool, error) {
	admins, err := s.userRepo.CountByRole(ctx, models.RoleAdmin)
	if err != nil {
		return false, fmt.Errorf("failed to count admins: %w", err)
	}
	if admins > 0 {
		return false, nil
	}
	if _, err := s.RegisterUser(ctx, username, password, string(models.RoleAdmin)); err != nil {
		return false, fmt.Errorf("failed to seed default admin: %w", err)
	}
	log.Warn().Str("username", username).Msg("default admin account created; change its password")
	return true, nil
}

func hashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
