package db

import (
	"context"

	"github.com/RoyceAzure/lab/marketplace/internal/model"
	"gorm.io/gorm"
)

type IUserRepository interface {
	CreateUserWithRole(ctx context.Context, user *model.User, role model.RoleValue) error
	GetUserByID(ctx context.Context, id uint) (*model.User, error)
	GetUserProfileByID(ctx context.Context, id uint) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetAllUsers(ctx context.Context) ([]model.User, error)
	UpdateUserFields(ctx context.Context, id uint, updates map[string]any) (*model.User, error)
	AddUserRole(ctx context.Context, userID uint, roleID uint) error
}

type UserRepo struct {
	dbDao *DbDao
}

func NewUserRepo(dbDao *DbDao) *UserRepo {
	return &UserRepo{dbDao: dbDao}
}

var _ IUserRepository = (*UserRepo)(nil)

// CreateUserWithRole 建立使用者並在同一交易內掛上預設角色
func (r *UserRepo) CreateUserWithRole(ctx context.Context, user *model.User, roleValue model.RoleValue) error {
	return r.dbDao.ExecTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}

		var role model.Role
		if err := tx.Where("value = ?", roleValue).First(&role).Error; err != nil {
			return err
		}

		if err := tx.Model(user).Association("Roles").Append(&role); err != nil {
			return err
		}
		user.Roles = []model.Role{role}
		return nil
	})
}

func (r *UserRepo) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := r.dbDao.db.WithContext(ctx).Preload("Roles").First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserProfileByID 取得個人資料, 連同使用者的商品/拍賣/訂單
func (r *UserRepo) GetUserProfileByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := r.dbDao.db.WithContext(ctx).
		Preload("Roles").
		Preload("Products").
		Preload("Auctions").
		Preload("Orders").
		First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.dbDao.db.WithContext(ctx).Preload("Roles").Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepo) GetAllUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.dbDao.db.WithContext(ctx).Preload("Roles").Find(&users).Error
	return users, err
}

// UpdateUserFields 部分更新並回傳更新後的資料
func (r *UserRepo) UpdateUserFields(ctx context.Context, id uint, updates map[string]any) (*model.User, error) {
	res := r.dbDao.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetUserByID(ctx, id)
}

func (r *UserRepo) AddUserRole(ctx context.Context, userID uint, roleID uint) error {
	user := model.User{ID: userID}
	role := model.Role{ID: roleID}
	return r.dbDao.db.WithContext(ctx).Model(&user).Association("Roles").Append(&role)
}
