package db

import (
	"context"

	"github.com/RoyceAzure/lab/marketplace/internal/model"
	"gorm.io/gorm"
)

type IProductRepository interface {
	CreateProduct(ctx context.Context, product *model.Product) error
	GetProductByID(ctx context.Context, id uint) (*model.Product, error)
	GetAllProducts(ctx context.Context, limit, offset int) ([]model.Product, error)
	GetProductsByUserID(ctx context.Context, userID uint, limit, offset int) ([]model.Product, error)
	UpdateProductFields(ctx context.Context, id uint, updates map[string]any) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
}

type ProductRepo struct {
	dbDao *DbDao
}

func NewProductRepo(dbDao *DbDao) *ProductRepo {
	return &ProductRepo{dbDao: dbDao}
}

var _ IProductRepository = (*ProductRepo)(nil)

func (r *ProductRepo) CreateProduct(ctx context.Context, product *model.Product) error {
	return r.dbDao.db.WithContext(ctx).Create(product).Error
}

func (r *ProductRepo) GetProductByID(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	err := r.dbDao.db.WithContext(ctx).Preload("Seller").First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *ProductRepo) GetAllProducts(ctx context.Context, limit, offset int) ([]model.Product, error) {
	var products []model.Product
	err := r.dbDao.db.WithContext(ctx).Limit(limit).Offset(offset).Find(&products).Error
	return products, err
}

func (r *ProductRepo) GetProductsByUserID(ctx context.Context, userID uint, limit, offset int) ([]model.Product, error) {
	var products []model.Product
	err := r.dbDao.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Limit(limit).Offset(offset).
		Find(&products).Error
	return products, err
}

func (r *ProductRepo) UpdateProductFields(ctx context.Context, id uint, updates map[string]any) (*model.Product, error) {
	res := r.dbDao.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetProductByID(ctx, id)
}

func (r *ProductRepo) DeleteProduct(ctx context.Context, id uint) error {
	return r.dbDao.db.WithContext(ctx).Delete(&model.Product{}, id).Error
}
