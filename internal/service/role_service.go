package service

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/marketplace/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/marketplace/internal/model"
	"github.com/RoyceAzure/lab/marketplace/pkg/er"
	"gorm.io/gorm"
)

type IRoleService interface {
	CreateRole(ctx context.Context, value model.RoleValue, description string) (*model.Role, error)
	GetRoleByValue(ctx context.Context, value model.RoleValue) (*model.Role, error)
	// SeedDefaultRoles 確保ADMIN/USER存在, 重複呼叫是no-op
	SeedDefaultRoles(ctx context.Context) error
}

type RoleService struct {
	roleRepo db.IRoleRepository
}

func NewRoleService(roleRepo db.IRoleRepository) IRoleService {
	if roleRepo == nil {
		panic("role service missing required dependency repo")
	}
	return &RoleService{roleRepo: roleRepo}
}

func (s *RoleService) CreateRole(ctx context.Context, value model.RoleValue, description string) (*model.Role, error) {
	existing, err := s.roleRepo.GetRoleByValue(ctx, value)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, er.New(er.InternalErrorCode, err.Error())
	}
	if existing != nil {
		return nil, er.New(er.BadRequestCode, "role already exists")
	}

	role := &model.Role{Value: value, Description: description}
	if err := s.roleRepo.CreateRole(ctx, role); err != nil {
		return nil, er.New(er.InternalErrorCode, err.Error())
	}
	return role, nil
}

func (s *RoleService) GetRoleByValue(ctx context.Context, value model.RoleValue) (*model.Role, error) {
	role, err := s.roleRepo.GetRoleByValue(ctx, value)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, er.New(er.NotFoundCode, "role not found")
		}
		return nil, er.New(er.InternalErrorCode, err.Error())
	}
	return role, nil
}

func (s *RoleService) SeedDefaultRoles(ctx context.Context) error {
	return s.roleRepo.SeedRoles(ctx, []model.Role{
		{Value: model.RoleAdmin, Description: "administrator"},
		{Value: model.RoleUser, Description: "general user"},
	})
}

var _ IRoleService = (*RoleService)(nil)
