package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/marketplace/internal/model"
	"gorm.io/gorm"
)

// ErrStockConflict 代表交易內扣庫存時數量已不足
var ErrStockConflict = errors.New("stock conflict")

type IOrderRepository interface {
	CreateOrderWithItems(ctx context.Context, order *model.Order, items []model.OrderItem) error
	GetOrderByID(ctx context.Context, id uint) (*model.Order, error)
	GetOrdersByUserID(ctx context.Context, userID uint, limit, offset int) ([]model.Order, error)
	GetOrderItemByID(ctx context.Context, id uint) (*model.OrderItem, error)
	UpdateOrderItemStatus(ctx context.Context, id uint, status model.OrderItemStatus) (*model.OrderItem, error)
	UpdateOrderTransactionStatus(ctx context.Context, id uint, status model.TransactionStatus) (*model.Order, error)
}

type OrderRepo struct {
	dbDao *DbDao
}

func NewOrderRepo(dbDao *DbDao) *OrderRepo {
	return &OrderRepo{dbDao: dbDao}
}

var _ IOrderRepository = (*OrderRepo)(nil)

// CreateOrderWithItems 在單一交易內建立訂單與明細並扣庫存
// 扣庫存用條件式update重新以資料列當下數量計算, 數量不足時
// RowsAffected為0, 整筆交易rollback, 不會有部分扣庫存
func (r *OrderRepo) CreateOrderWithItems(ctx context.Context, order *model.Order, items []model.OrderItem) error {
	return r.dbDao.ExecTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}

		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}

		for _, item := range items {
			res := tx.Model(&model.Product{}).
				Where("id = ? AND quantity >= ?", item.ProductID, item.Quantity).
				UpdateColumn("quantity", gorm.Expr("quantity - ?", item.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: product %d", ErrStockConflict, item.ProductID)
			}
		}

		order.OrderItems = items
		return nil
	})
}

func (r *OrderRepo) GetOrderByID(ctx context.Context, id uint) (*model.Order, error) {
	var order model.Order
	err := r.dbDao.db.WithContext(ctx).
		Preload("OrderItems").
		Preload("OrderItems.Product").
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepo) GetOrdersByUserID(ctx context.Context, userID uint, limit, offset int) ([]model.Order, error) {
	var orders []model.Order
	err := r.dbDao.db.WithContext(ctx).
		Preload("OrderItems").
		Where("user_id = ?", userID).
		Limit(limit).Offset(offset).
		Find(&orders).Error
	return orders, err
}

// GetOrderItemByID 連同訂單與商品一起回傳, 狀態轉移的授權檢查需要兩者
func (r *OrderRepo) GetOrderItemByID(ctx context.Context, id uint) (*model.OrderItem, error) {
	var item model.OrderItem
	err := r.dbDao.db.WithContext(ctx).
		Preload("Order").
		Preload("Product").
		First(&item, id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *OrderRepo) UpdateOrderItemStatus(ctx context.Context, id uint, status model.OrderItemStatus) (*model.OrderItem, error) {
	res := r.dbDao.db.WithContext(ctx).
		Model(&model.OrderItem{}).
		Where("id = ?", id).
		Update("order_status", status)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetOrderItemByID(ctx, id)
}

func (r *OrderRepo) UpdateOrderTransactionStatus(ctx context.Context, id uint, status model.TransactionStatus) (*model.Order, error) {
	res := r.dbDao.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", id).
		Update("transaction_status", status)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetOrderByID(ctx, id)
}
