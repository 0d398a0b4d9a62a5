package db

import (
	"context"

	"github.com/RoyceAzure/lab/marketplace/internal/model"
	"gorm.io/gorm"
)

type IRoleRepository interface {
	CreateRole(ctx context.Context, role *model.Role) error
	GetRoleByValue(ctx context.Context, value model.RoleValue) (*model.Role, error)
	CountRoles(ctx context.Context) (int64, error)
	SeedRoles(ctx context.Context, roles []model.Role) error
}

type RoleRepo struct {
	dbDao *DbDao
}

func NewRoleRepo(dbDao *DbDao) *RoleRepo {
	return &RoleRepo{dbDao: dbDao}
}

var _ IRoleRepository = (*RoleRepo)(nil)

func (r *RoleRepo) CreateRole(ctx context.Context, role *model.Role) error {
	return r.dbDao.db.WithContext(ctx).Create(role).Error
}

func (r *RoleRepo) GetRoleByValue(ctx context.Context, value model.RoleValue) (*model.Role, error) {
	var role model.Role
	err := r.dbDao.db.WithContext(ctx).Where("value = ?", value).First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *RoleRepo) CountRoles(ctx context.Context) (int64, error) {
	var count int64
	err := r.dbDao.db.WithContext(ctx).Model(&model.Role{}).Count(&count).Error
	return count, err
}

// SeedRoles 啟動時的冪等初始化, 已有角色則不做事
func (r *RoleRepo) SeedRoles(ctx context.Context, roles []model.Role) error {
	return r.dbDao.ExecTx(ctx, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Role{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		return tx.Create(&roles).Error
	})
}
