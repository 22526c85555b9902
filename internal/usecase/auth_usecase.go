package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fadilmartias/resume-scanner/internal/config"
	"github.com/fadilmartias/resume-scanner/internal/dto"
	"github.com/fadilmartias/resume-scanner/internal/model"
	"github.com/fadilmartias/resume-scanner/internal/repository"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const bcryptCost = 12

type AuthUsecase struct {
	users *repository.UserRepository
	cfg   *config.AuthConfig
	now   func() time.Time
}

func NewAuthUsecase(users *repository.UserRepository, cfg *config.AuthConfig) *AuthUsecase {
	return &AuthUsecase{users: users, cfg: cfg, now: time.Now}
}

type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

func (uc *AuthUsecase) SignUp(ctx context.Context, req dto.SignUpRequest) (*dto.UserDTO, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := uc.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &model.User{
		Email:    email,
		Password: string(hash),
		Name:     strings.TrimSpace(req.Name),
		Role:     req.Role,
	}
	if err := uc.users.Create(ctx, u); err != nil {
		// a concurrent signup can win between the lookup and the insert
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	out := toUserDTO(u)
	return &out, nil
}

func (uc *AuthUsecase) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	u, err := uc.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := uc.now()
	exp := now.Add(uc.cfg.TokenTTL)
	claims := Claims{
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(uc.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &dto.LoginResponse{Token: token, ExpiresAt: exp.Unix(), User: toUserDTO(u)}, nil
}

// ParseToken verifies an HS256 token and returns its claims.
func (uc *AuthUsecase) ParseToken(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(uc.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func toUserDTO(u *model.User) dto.UserDTO {
	return dto.UserDTO{ID: u.ID.String(), Email: u.Email, Name: u.Name, Role: u.Role}
}
