package service

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/marketplace/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/marketplace/internal/infra/storage"
	"github.com/RoyceAzure/lab/marketplace/internal/model"
	"github.com/RoyceAzure/lab/marketplace/pkg/er"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Quantity    int
	Photo       []byte
}

type UpdateProductInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Quantity    *int
	Photo       []byte
}

type IProductService interface {
	CreateProduct(ctx context.Context, sellerID uint, input CreateProductInput) (*model.Product, error)
	GetProduct(ctx context.Context, id uint) (*model.Product, error)
	GetAllProducts(ctx context.Context, limit, offset int) ([]model.Product, error)
	GetProductsByUserID(ctx context.Context, userID uint, limit, offset int) ([]model.Product, error)
	UpdateProduct(ctx context.Context, id uint, input UpdateProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
}

type ProductService struct {
	productRepo db.IProductRepository
	fileStore   storage.IFileStore
	logger      *zerolog.Logger
}

func NewProductService(productRepo db.IProductRepository, fileStore storage.IFileStore, logger *zerolog.Logger) IProductService {
	if productRepo == nil || fileStore == nil {
		panic("product service missing required dependency")
	}
	return &ProductService{
		productRepo: productRepo,
		fileStore:   fileStore,
		logger:      logger,
	}
}

func (s *ProductService) CreateProduct(ctx context.Context, sellerID uint, input CreateProductInput) (*model.Product, error) {
	photo := ""
	if len(input.Photo) > 0 {
		var err error
		photo, err = s.fileStore.SaveImage(input.Photo)
		if err != nil {
			return nil, er.New(er.InternalErrorCode, err.Error())
		}
	}

	product := &model.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Quantity:    input.Quantity,
		Photo:       photo,
		UserID:      sellerID,
	}
	if err := s.productRepo.CreateProduct(ctx, product); err != nil {
		if photo != "" {
			if rmErr := s.fileStore.Remove(photo); rmErr != nil && s.logger != nil {
				s.logger.Warn().Err(rmErr).Str("photo", photo).Msg("remove orphan photo failed")
			}
		}
		return nil, er.New(er.InternalErrorCode, err.Error())
	}
	return s.GetProduct(ctx, product.ID)
}

func (s *ProductService) GetProduct(ctx context.Context, id uint) (*model.Product, error) {
	product, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, er.New(er.NotFoundCode, "product not found")
		}
		return nil, er.New(er.InternalErrorCode, err.Error())
	}
	return product, nil
}

func (s *ProductService) GetAllProducts(ctx context.Context, limit, offset int) ([]model.Product, error) {
	return s.productRepo.GetAllProducts(ctx, limit, offset)
}

func (s *ProductService) GetProductsByUserID(ctx context.Context, userID uint, limit, offset int) ([]model.Product, error) {
	return s.productRepo.GetProductsByUserID(ctx, userID, limit, offset)
}

func (s *ProductService) UpdateProduct(ctx context.Context, id uint, input UpdateProductInput) (*model.Product, error) {
	current, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Price != nil {
		updates["price"] = *input.Price
	}
	if input.Quantity != nil {
		if *input.Quantity < 0 {
			return nil, er.New(er.BadRequestCode, "quantity cannot be negative")
		}
		updates["quantity"] = *input.Quantity
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

	updated, err := s.productRepo.UpdateProductFields(ctx, id, updates)
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

func (s *ProductService) DeleteProduct(ctx context.Context, id uint) error {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return err
	}

	if err := s.productRepo.DeleteProduct(ctx, id); err != nil {
		return er.New(er.InternalErrorCode, err.Error())
	}

	if product.Photo != "" {
		if rmErr := s.fileStore.Remove(product.Photo); rmErr != nil && s.logger != nil {
			s.logger.Warn().Err(rmErr).Str("photo", product.Photo).Msg("remove deleted product photo failed")
		}
	}
	return nil
}

var _ IProductService = (*ProductService)(nil)
