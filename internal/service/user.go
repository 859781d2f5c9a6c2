package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aisummit/event-booking/internal/model"
	"github.com/aisummit/event-booking/internal/notify"
	"github.com/aisummit/event-booking/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned when a login fails, without revealing
// whether the username or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ErrNotVerified is returned when an unverified account attempts to login.
var ErrNotVerified = errors.New("email address not verified")

// UserStore is the persistence surface the user service depends on.
// *repository.UserRepository satisfies it.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	Verify(ctx context.Context, token string) error
	Stats(ctx context.Context) (*model.UserStats, error)
}

// UserService handles registration, verification, and authentication.
type UserService struct {
	users     UserStore
	notifier  notify.Notifier
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewUserService constructs a UserService with its dependencies.
func NewUserService(users UserStore, notifier notify.Notifier, jwtSecret []byte, tokenTTL time.Duration) *UserService {
	return &UserService{users: users, notifier: notifier, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

// Register creates an unverified account and signals the notifier with the
// verification token.
func (s *UserService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)

	if req.Username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if !isValidEmail(req.Email) {
		return nil, fmt.Errorf("email is not a valid email address")
	}
	if len(req.Password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}
	if req.FullName == "" {
		return nil, fmt.Errorf("full name is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	token := uuid.New().String()
	user := &model.User{
		Username:          req.Username,
		Email:             req.Email,
		PasswordHash:      string(hash),
		FullName:          req.FullName,
		Phone:             req.Phone,
		Role:              model.RoleUser,
		IsVerified:        false,
		VerificationToken: &token,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("username or email is already registered")
		}
		return nil, fmt.Errorf("register user: %w", err)
	}

	// Delivery failures are not fatal; the token stays valid.
	_ = s.notifier.VerificationRequested(ctx, user.Email, user.FullName, token)

	return user, nil
}

// Verify consumes an emailed verification token.
func (s *UserService) Verify(ctx context.Context, token string) error {
	if token == "" {
		return repository.ErrNotFound
	}
	return s.users.Verify(ctx, token)
}

// Login authenticates credentials and returns a signed JWT carrying the
// identity the auth middleware later reconstructs into a request-scoped
// AuthContext.
func (s *UserService) Login(ctx context.Context, req model.LoginRequest) (string, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return "", ErrInvalidCredentials
	}
	if !user.IsVerified {
		return "", ErrNotVerified
	}

	claims := jwt.MapClaims{
		"sub":      user.ID,
		"role":     user.Role,
		"verified": user.IsVerified,
		"exp":      time.Now().Add(s.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a JWT and reconstructs the auth context.
func (s *UserService) ParseToken(tokenString string) (model.AuthContext, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return model.AuthContext{}, ErrInvalidCredentials
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return model.AuthContext{}, ErrInvalidCredentials
	}
	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	verified, _ := claims["verified"].(bool)
	if sub == "" {
		return model.AuthContext{}, ErrInvalidCredentials
	}
	return model.AuthContext{UserID: sub, Role: role, Verified: verified}, nil
}

// isValidEmail does a minimal structural check.
func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	return len(parts[0]) > 0 && strings.Contains(parts[1], ".")
}
