package service_test

import (
	"context"
	"testing"

	"github.com/RoyceAzure/lab/marketplace/internal/infra/auth"
	"github.com/RoyceAzure/lab/marketplace/internal/mocks"
	"github.com/RoyceAzure/lab/marketplace/internal/model"
	"github.com/RoyceAzure/lab/marketplace/internal/service"
	"github.com/RoyceAzure/lab/marketplace/pkg/er"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func TestRegisterHashesPasswordAndSeedsUserRole(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	roleRepo := new(mocks.MockRoleRepository)
	fileStore := new(mocks.MockFileStore)

	userRepo.On("GetUserByEmail", mock.Anything, "alice@example.com").Return(nil, gorm.ErrRecordNotFound)
	userRepo.On("CreateUserWithRole", mock.Anything, mock.Anything, model.RoleUser).
		Run(func(args mock.Arguments) {
			args.Get(1).(*model.User).ID = 9
		}).
		Return(nil)

	svc := service.NewUserService(userRepo, roleRepo, auth.BcryptHasher{}, fileStore, nil)
	user, err := svc.Register(context.Background(), service.RegisterInput{
		Email:    "alice@example.com",
		Name:     "alice",
		Phone:    "0912345678",
		Password: "secret123",
	})

	require.NoError(t, err)
	require.Equal(t, uint(9), user.ID)
	require.NotEqual(t, "secret123", user.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret123")))
	fileStore.AssertNotCalled(t, "SaveImage", mock.Anything)
}

func TestRegisterRejectsDuplicatedEmail(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	userRepo.On("GetUserByEmail", mock.Anything, "alice@example.com").
		Return(&model.User{ID: 1, Email: "alice@example.com"}, nil)

	svc := service.NewUserService(userRepo, new(mocks.MockRoleRepository), auth.BcryptHasher{}, new(mocks.MockFileStore), nil)
	_, err := svc.Register(context.Background(), service.RegisterInput{
		Email:    "alice@example.com",
		Password: "secret123",
	})

	require.Error(t, err)
	require.Equal(t, er.BadRequestCode, er.CodeOf(err))
	userRepo.AssertNotCalled(t, "CreateUserWithRole", mock.Anything, mock.Anything, mock.Anything)
}

func TestGrantRoleIsIdempotent(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	roleRepo := new(mocks.MockRoleRepository)

	admin := &model.User{
		ID:    9,
		Roles: []model.Role{{ID: 1, Value: model.RoleUser}, {ID: 2, Value: model.RoleAdmin}},
	}
	userRepo.On("GetUserByID", mock.Anything, uint(9)).Return(admin, nil)

	svc := service.NewUserService(userRepo, roleRepo, auth.BcryptHasher{}, new(mocks.MockFileStore), nil)
	user, err := svc.GrantRole(context.Background(), 9, model.RoleAdmin)

	require.NoError(t, err)
	require.True(t, user.HasRole(model.RoleAdmin))
	userRepo.AssertNotCalled(t, "AddUserRole", mock.Anything, mock.Anything, mock.Anything)
}

func TestGrantRoleAddsMissingRole(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	roleRepo := new(mocks.MockRoleRepository)

	plain := &model.User{ID: 9, Roles: []model.Role{{ID: 1, Value: model.RoleUser}}}
	promoted := &model.User{ID: 9, Roles: []model.Role{{ID: 1, Value: model.RoleUser}, {ID: 2, Value: model.RoleAdmin}}}

	userRepo.On("GetUserByID", mock.Anything, uint(9)).Return(plain, nil).Once()
	roleRepo.On("GetRoleByValue", mock.Anything, model.RoleAdmin).Return(&model.Role{ID: 2, Value: model.RoleAdmin}, nil)
	userRepo.On("AddUserRole", mock.Anything, uint(9), uint(2)).Return(nil)
	userRepo.On("GetUserByID", mock.Anything, uint(9)).Return(promoted, nil).Once()

	svc := service.NewUserService(userRepo, roleRepo, auth.BcryptHasher{}, new(mocks.MockFileStore), nil)
	user, err := svc.GrantRole(context.Background(), 9, model.RoleAdmin)

	require.NoError(t, err)
	require.True(t, user.HasRole(model.RoleAdmin))
}

func TestUpdateProfileReplacesPhoto(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	fileStore := new(mocks.MockFileStore)

	userRepo.On("GetUserByID", mock.Anything, uint(9)).
		Return(&model.User{ID: 9, Photo: "images/old.jpg"}, nil)
	fileStore.On("SaveImage", []byte{0xFF, 0xD8}).Return("images/new.jpg", nil)
	userRepo.On("UpdateUserFields", mock.Anything, uint(9), map[string]any{"photo": "images/new.jpg"}).
		Return(&model.User{ID: 9, Photo: "images/new.jpg"}, nil)
	fileStore.On("Remove", "images/old.jpg").Return(nil)

	svc := service.NewUserService(userRepo, new(mocks.MockRoleRepository), auth.BcryptHasher{}, fileStore, nil)
	user, err := svc.UpdateProfile(context.Background(), 9, service.UpdateProfileInput{Photo: []byte{0xFF, 0xD8}})

	require.NoError(t, err)
	require.Equal(t, "images/new.jpg", user.Photo)
	fileStore.AssertExpectations(t)
}
