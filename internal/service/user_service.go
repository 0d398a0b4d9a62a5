package service

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/marketplace/internal/infra/auth"
	"github.com/RoyceAzure/lab/marketplace/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/marketplace/internal/infra/storage"
	"github.com/RoyceAzure/lab/marketplace/internal/model"
	"github.com/RoyceAzure/lab/marketplace/pkg/er"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Email    string
	Name     string
	Phone    string
	Password string
	Photo    []byte // 可選, 大頭照原始bytes
}

type UpdateProfileInput struct {
	Name  *string
	Phone *string
	Photo []byte // 可選, 有給才換圖
}

type IUserService interface {
	// Register 建立使用者並掛上預設USER角色, 同一筆交易內完成
	// 錯誤:
	//   - er.BadRequestCode 400: email已被註冊
	Register(ctx context.Context, input RegisterInput) (*model.User, error)
	GetUserByID(ctx context.Context, id uint) (*model.User, error)
	GetProfile(ctx context.Context, id uint) (*model.User, error)
	GetAllUsers(ctx context.Context) ([]model.User, error)
	UpdateProfile(ctx context.Context, userID uint, input UpdateProfileInput) (*model.User, error)
	// GrantRole 把角色加到既有使用者上, 重複授予是no-op
	GrantRole(ctx context.Context, userID uint, roleValue model.RoleValue) (*model.User, error)
}

type UserService struct {
	userRepo  db.IUserRepository
	roleRepo  db.IRoleRepository
	hasher    auth.PasswordHasher
	fileStore storage.IFileStore
	logger    *zerolog.Logger
}

func NewUserService(userRepo db.IUserRepository, roleRepo db.IRoleRepository, hasher auth.PasswordHasher, fileStore storage.IFileStore, logger *zerolog.Logger) IUserService {
	if userRepo == nil || roleRepo == nil || hasher == nil || fileStore == nil {
		panic("user service missing required dependency")
	}
	return &UserService{
		userRepo:  userRepo,
		roleRepo:  roleRepo,
		hasher:    hasher,
		fileStore: fileStore,
		logger:    logger,
	}
}

func (s *UserService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	existing, err := s.userRepo.GetUserByEmail(ctx, input.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, er.New(er.InternalErrorCode, err.Error())
	}
	if existing != nil {
		return nil, er.New(er.BadRequestCode, "email is already registered")
	}

	hashed, err := s.hasher.Hash([]byte(input.Password))
	if err != nil {
		return nil, er.New(er.InternalErrorCode, err.Error())
	}

	photo := ""
	if len(input.Photo) > 0 {
		photo, err = s.fileStore.SaveImage(input.Photo)
		if err != nil {
			return nil, er.New(er.InternalErrorCode, err.Error())
		}
	}

	user := &model.User{
		Email:        input.Email,
		Name:         input.Name,
		Phone:        input.Phone,
		PasswordHash: string(hashed),
		Photo:        photo,
	}
	if err := s.userRepo.CreateUserWithRole(ctx, user, model.RoleUser); err != nil {
		if photo != "" {
			if rmErr := s.fileStore.Remove(photo); rmErr != nil && s.logger != nil {
				s.logger.Warn().Err(rmErr).Str("photo", photo).Msg("remove orphan photo failed")
			}
		}
		return nil, er.New(er.InternalErrorCode, err.Error())
	}
	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, er.New(er.NotFoundCode, "user not found")
		}
		return nil, er.New(er.InternalErrorCode, err.Error())
	}
	return user, nil
}

func (s *UserService) GetProfile(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.userRepo.GetUserProfileByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, er.New(er.NotFoundCode, "user not found")
		}
		return nil, er.New(er.InternalErrorCode, err.Error())
	}
	return user, nil
}

func (s *UserService) GetAllUsers(ctx context.Context) ([]model.User, error) {
	return s.userRepo.GetAllUsers(ctx)
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uint, input UpdateProfileInput) (*model.User, error) {
	current, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Phone != nil {
		updates["phone"] = *input.Phone
	}

	oldPhoto := ""
	if len(input.Photo) > 0 {
		photo, err := s.fileStore.SaveImage(input.Photo)
		if err != nil {
			return nil, er.New(er.InternalErrorCode, err.Error())
		}
		updates["photo"] = photo
		oldPhoto = current.Photo
	}

	if len(updates) == 0 {
		return current, nil
	}

	updated, err := s.userRepo.UpdateUserFields(ctx, userID, updates)
	if err != nil {
		return nil, er.New(er.InternalErrorCode, err.Error())
	}

	if oldPhoto != "" {
		if rmErr := s.fileStore.Remove(oldPhoto); rmErr != nil && s.logger != nil {
			s.logger.Warn().Err(rmErr).Str("photo", oldPhoto).Msg("remove replaced photo failed")
		}
	}
	return updated, nil
}

func (s *UserService) GrantRole(ctx context.Context, userID uint, roleValue model.RoleValue) (*model.User, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.HasRole(roleValue) {
		return user, nil
	}

	role, err := s.roleRepo.GetRoleByValue(ctx, roleValue)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, er.New(er.NotFoundCode, "role not found")
		}
		return nil, er.New(er.InternalErrorCode, err.Error())
	}

	if err := s.userRepo.AddUserRole(ctx, userID, role.ID); err != nil {
		return nil, er.New(er.InternalErrorCode, err.Error())
	}
	return s.GetUserByID(ctx, userID)
}

var _ IUserService = (*UserService)(nil)
