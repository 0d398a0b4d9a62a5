package service

import (
	"context"
	"errors"
	"time"

	"github.com/RoyceAzure/lab/marketplace/internal/constants"
	"github.com/RoyceAzure/lab/marketplace/internal/infra/auth"
	"github.com/RoyceAzure/lab/marketplace/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/marketplace/internal/model"
	"github.com/RoyceAzure/lab/marketplace/pkg/er"
	"gorm.io/gorm"
)

type IAuthService interface {
	// Login 驗證帳密並簽發access token
	// 帳號不存在與密碼錯誤回同一個錯誤, 不洩漏哪個欄位錯
	Login(ctx context.Context, email, password string) (string, *model.User, error)
}

type AuthService struct {
	userRepo   db.IUserRepository
	hasher     auth.PasswordHasher
	tokenMaker auth.Maker
}

func NewAuthService(userRepo db.IUserRepository, hasher auth.PasswordHasher, tokenMaker auth.Maker) IAuthService {
	if userRepo == nil || hasher == nil || tokenMaker == nil {
		panic("auth service missing required dependency")
	}
	return &AuthService{
		userRepo:   userRepo,
		hasher:     hasher,
		tokenMaker: tokenMaker,
	}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, er.New(er.UnauthenticatedCode, "invalid email or password")
		}
		return "", nil, er.New(er.InternalErrorCode, err.Error())
	}

	if err := s.hasher.Compare([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, er.New(er.UnauthenticatedCode, "invalid email or password")
	}

	token, err := s.tokenMaker.CreateToken(user.ID, user.Email, time.Duration(constants.AccessTokenDuration)*time.Hour)
	if err != nil {
		return "", nil, er.New(er.InternalErrorCode, err.Error())
	}
	return token, user, nil
}

var _ IAuthService = (*AuthService)(nil)
