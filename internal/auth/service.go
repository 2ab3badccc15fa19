package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/memberhub/registry-api/internal/model"
	"github.com/memberhub/registry-api/internal/shared/logger"
	"github.com/memberhub/registry-api/internal/shared/token"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	db           *gorm.DB
	tokenManager token.Manager
}

func NewAuthService(db *gorm.DB, tokenManager token.Manager) *AuthService {
	return &AuthService{
		db:           db,
		tokenManager: tokenManager,
	}
}

func (a *AuthService) Login(ctx context.Context, request *LoginRequest) (*LoginResponse, error) {
	log := logger.FromContext(ctx)

	// 1. Find moderator by email
	var moderator model.Moderator
	err := a.db.WithContext(ctx).Where("email = ?", request.Email).First(&moderator).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("login failed - email not found", "email", logger.MaskEmail(request.Email))
			return nil, fmt.Errorf("error %w", ErrIncorrectEmailPassword) // Security: don't reveal if email exists
		}
		log.Error("login failed - unexpected error", "error", err)
		return nil, fmt.Errorf("login: %w", err)
	}

	// 2. Validate password
	if err := bcrypt.CompareHashAndPassword([]byte(moderator.Password), []byte(request.Password)); err != nil {
		log.Warn("login failed - invalid password", "email", logger.MaskEmail(request.Email))
		return nil, fmt.Errorf("error %w", ErrIncorrectEmailPassword)
	}

	// 3. Generate JWT tokens
	moderatorID := strconv.FormatUint(uint64(moderator.ID), 10)
	accessToken, err := a.tokenManager.GenerateAccessToken(moderatorID, moderator.Email)
	if err != nil {
		log.Error("failed to generate access token", "error", err)
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := a.tokenManager.GenerateRefreshToken(moderatorID, moderator.Email)
	if err != nil {
		log.Error("failed to generate refresh token", "error", err)
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	log.Info("login succeeded", "email", logger.MaskEmail(request.Email))

	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
