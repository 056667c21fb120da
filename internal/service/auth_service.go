package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zakareajob-cpu/zak-crm/internal/config"
	"github.com/zakareajob-cpu/zak-crm/internal/dto"
	"github.com/zakareajob-cpu/zak-crm/internal/model"
	"github.com/zakareajob-cpu/zak-crm/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	bcryptCost = 12
)

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	// EnsureAdmin creates the admin user when no user with that e-mail exists.
	// It never changes the password of an existing user.
	EnsureAdmin(ctx context.Context, email, password string) (bool, error)
}

type authService struct {
	repo repository.UserRepository
	cfg  *config.Config
}

func NewAuthService(repo repository.UserRepository, cfg *config.Config) AuthService {
	return &authService{repo: repo, cfg: cfg}
}

// HashPassword returns the bcrypt hash stored in users.password_hash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindActiveByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issueTokens(user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("refresh token invalid or expired: %w", ErrInvalidCredentials)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["typ"] != TokenTypeRefresh {
		return nil, fmt.Errorf("not a refresh token: %w", ErrInvalidCredentials)
	}
	userIDStr, _ := claims["user_id"].(string)
	uid, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, fmt.Errorf("malformed token: %w", ErrInvalidCredentials)
	}

	user, err := s.repo.FindByID(ctx, uid)
	if err != nil || !user.Active {
		return nil, fmt.Errorf("user not found or inactive: %w", ErrInvalidCredentials)
	}
	return s.issueTokens(user)
}

func (s *authService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return false, invalid("admin", "ADMIN_EMAIL and ADMIN_PASSWORD are required")
	}
	_, err := s.repo.FindActiveByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return false, err
	}
	user := &model.User{
		Email:        email,
		Name:         "Administrator",
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		Active:       true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if repository.IsDuplicateKey(err) {
			// exists but is disabled; leave it alone
			return false, nil
		}
		return false, err
	}
	log.Info().Str("email", email).Msg("admin user created")
	return true, nil
}

func (s *authService) issueTokens(user *model.User) (*dto.LoginResponse, error) {
	accessToken, err := s.generateToken(user, TokenTypeAccess, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.generateToken(user, TokenTypeRefresh, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User: dto.UserResponse{
			ID:     user.ID.String(),
			Email:  user.Email,
			Name:   user.Name,
			Role:   user.Role,
			Active: user.Active,
		},
	}, nil
}

func (s *authService) generateToken(user *model.User, typ string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"email":   user.Email,
		"role":    user.Role,
		"typ":     typ,
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
