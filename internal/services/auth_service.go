package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"receiptpanel/internal/models"
	"receiptpanel/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const tokenIssuer = "receiptpanel"

// AdminClaims represents the JWT claims of a panel operator.
type AdminClaims struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthService handles panel logins and admin token management
type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (*models.LoginResponse, error)
	ValidateToken(ctx context.Context, token string) (*AdminClaims, error)
	Profile(ctx context.Context, id uuid.UUID) (*models.AdminProfile, error)
	SeedAdmin(ctx context.Context, username, password, email string) error
}

type authService struct {
	admins    repositories.AdminUserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(admins repositories.AdminUserRepository, jwtSecret string, tokenTTL time.Duration, logger *slog.Logger) AuthService {
	return &authService{
		admins:    admins,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		logger:    logger.With("component", "auth"),
		now:       time.Now,
	}
}

// Login checks the credentials and issues a signed token. Unknown users and
// wrong passwords produce the same error.
func (s *authService) Login(ctx context.Context, req LoginRequest) (*models.LoginResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, validationError("username and password are required")
	}

	user, err := s.admins.GetByUsername(ctx, req.Username)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("load admin: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Info("login rejected", slog.String("username", req.Username))
		return nil, ErrUnauthorized
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	if err := s.admins.TouchLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("failed to record last login", slog.String("admin_id", user.ID.String()), slog.Any("error", err))
	}

	return &models.LoginResponse{
		Success:   true,
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int(s.tokenTTL.Seconds()),
		User:      profileOf(user),
	}, nil
}

func (s *authService) issueToken(user *models.AdminUser) (string, error) {
	now := s.now()
	claims := AdminClaims{
		ID:       user.ID.String(),
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a token string
func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrForbidden, err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("%w: invalid token", ErrForbidden)
	}
	return claims, nil
}

func (s *authService) Profile(ctx context.Context, id uuid.UUID) (*models.AdminProfile, error) {
	user, err := s.admins.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, notFound("admin user")
	}
	if err != nil {
		return nil, err
	}
	profile := profileOf(user)
	return &profile, nil
}

// SeedAdmin creates the bootstrap administrator unless the username exists.
// Without credentials it only warns when the panel has no admin at all.
func (s *authService) SeedAdmin(ctx context.Context, username, password, email string) error {
	if username == "" || password == "" {
		count, err := s.admins.Count(ctx)
		if err != nil {
			return fmt.Errorf("count admins: %w", err)
		}
		if count == 0 {
			s.logger.Warn("no admin users exist; set ADMIN_USERNAME and ADMIN_PASSWORD to create one")
		}
		return nil
	}

	_, err := s.admins.GetByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("look up admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user := &models.AdminUser{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}
	if err := s.admins.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil
		}
		return fmt.Errorf("create admin: %w", err)
	}

	s.logger.Info("bootstrap admin created", slog.String("username", username))
	return nil
}

func profileOf(user *models.AdminUser) models.AdminProfile {
	return models.AdminProfile{
		ID:       user.ID.String(),
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	}
}
