package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/marketplace/internal/authz"
	"github.com/RoyceAzure/lab/marketplace/internal/infra/producer"
	"github.com/RoyceAzure/lab/marketplace/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/marketplace/internal/model"
	"github.com/RoyceAzure/lab/marketplace/pkg/er"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderLineItem struct {
	ProductID uint
	Quantity  int
}

type CreateOrderInput struct {
	Country string
	City    string
	Address string
	Phone   string
	Items   []OrderLineItem
}

type IOrderService interface {
	// 錯誤:
	//   - er.BadRequestCode 400: 重複商品/庫存不足/不可購買自己的商品
	//   - er.InternalErrorCode 500: 交易失敗, 已全數rollback
	CreateOrder(ctx context.Context, input CreateOrderInput, buyerID uint) (*model.Order, error)
	GetOrder(ctx context.Context, id uint) (*model.Order, error)
	GetOrdersByUserID(ctx context.Context, userID uint, limit, offset int) ([]model.Order, error)
	GetOrderItem(ctx context.Context, id uint) (*model.OrderItem, error)
	// 錯誤:
	//   - er.BadRequestCode 400: 訂單尚未付款
	//   - er.ForbiddenCode 403: 沒有權限做這個狀態轉移
	//   - er.NotFoundCode 404: 找不到訂單明細
	ChangeOrderItemStatus(ctx context.Context, ability *authz.Ability, itemID uint, status model.OrderItemStatus) (*model.OrderItem, error)
	ChangeOrderStatus(ctx context.Context, ability *authz.Ability, orderID uint, status model.TransactionStatus) (*model.Order, error)
}

type OrderService struct {
	orderRepo   db.IOrderRepository
	productRepo db.IProductRepository
	evtProducer producer.IEventProducer
	logger      *zerolog.Logger
}

func NewOrderService(orderRepo db.IOrderRepository, productRepo db.IProductRepository, evtProducer producer.IEventProducer, logger *zerolog.Logger) IOrderService {
	if orderRepo == nil || productRepo == nil {
		panic("order service missing required dependency repo")
	}
	if evtProducer == nil {
		evtProducer = producer.NoopProducer{}
	}
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		evtProducer: evtProducer,
		logger:      logger,
	}
}

// 驗證後待寫入的訂單明細, price為下單當下的快照
type insertOrderItem struct {
	productID   uint
	productName string
	sellerID    uint
	quantity    int
	price       decimal.Decimal
}

// validateOrderItems 逐項檢查商品存在且庫存足夠
// 同一商品出現兩次視為輸入錯誤, 要求呼叫端先聚合
func (s *OrderService) validateOrderItems(ctx context.Context, items []OrderLineItem) ([]insertOrderItem, error) {
	seen := make(map[uint]bool, len(items))
	result := make([]insertOrderItem, 0, len(items))

	for _, item := range items {
		if seen[item.ProductID] {
			return nil, er.New(er.BadRequestCode, "duplicated product in order items, aggregate them first")
		}
		seen[item.ProductID] = true

		product, err := s.productRepo.GetProductByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, er.Newf(er.BadRequestCode, "product %d not found", item.ProductID)
			}
			return nil, er.New(er.InternalErrorCode, err.Error())
		}

		leftQuantity := product.Quantity - item.Quantity
		if leftQuantity < 0 {
			return nil, er.Newf(er.BadRequestCode, "not enough stock for product %s", product.Name)
		}

		result = append(result, insertOrderItem{
			productID:   product.ID,
			productName: product.Name,
			sellerID:    product.UserID,
			quantity:    item.Quantity,
			price:       product.Price,
		})
	}
	return result, nil
}

func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput, buyerID uint) (*model.Order, error) {
	if len(input.Items) == 0 {
		return nil, er.New(er.BadRequestCode, "order has no items")
	}

	items, err := s.validateOrderItems(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		if item.sellerID == buyerID {
			return nil, er.New(er.BadRequestCode, "cannot buy your own product")
		}
	}

	totalSum := decimal.Zero
	for _, item := range items {
		totalSum = totalSum.Add(item.price.Mul(decimal.NewFromInt(int64(item.quantity))))
	}

	order := &model.Order{
		TotalSum:          totalSum,
		TransactionStatus: model.TransactionPending,
		Country:           input.Country,
		City:              input.City,
		Address:           input.Address,
		Phone:             input.Phone,
		OrderDate:         time.Now().UTC(),
		DeliveryDate:      nil,
		UserID:            buyerID,
	}

	orderItems := make([]model.OrderItem, 0, len(items))
	for _, item := range items {
		orderItems = append(orderItems, model.OrderItem{
			Price:       item.price,
			Quantity:    item.quantity,
			OrderStatus: model.OrderItemPending,
			ProductID:   item.productID,
		})
	}

	err = s.orderRepo.CreateOrderWithItems(ctx, order, orderItems)
	if err != nil {
		// 交易內條件式扣庫存失敗代表同時有別的訂單先搶走庫存
		if errors.Is(err, db.ErrStockConflict) {
			return nil, er.New(er.BadRequestCode, stockConflictMessage(err, items))
		}
		if s.logger != nil {
			s.logger.Error().Err(err).Uint("buyer_id", buyerID).Msg("create order transaction failed")
		}
		return nil, er.New(er.InternalErrorCode, "create order failed")
	}

	if evtErr := s.evtProducer.Publish(ctx, producer.Event{
		Name:       producer.EventOrderCreated,
		Key:        fmt.Sprintf("order-%d", order.ID),
		OccurredAt: time.Now().UTC(),
		Payload:    order,
	}); evtErr != nil && s.logger != nil {
		s.logger.Warn().Err(evtErr).Uint("order_id", order.ID).Msg("publish order created event failed")
	}

	return order, nil
}

func stockConflictMessage(err error, items []insertOrderItem) string {
	var productID uint
	if _, scanErr := fmt.Sscanf(err.Error(), "stock conflict: product %d", &productID); scanErr == nil {
		for _, item := range items {
			if item.productID == productID {
				return fmt.Sprintf("not enough stock for product %s", item.productName)
			}
		}
	}
	return "not enough stock"
}

func (s *OrderService) GetOrder(ctx context.Context, id uint) (*model.Order, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, er.New(er.NotFoundCode, "order not found")
		}
		return nil, er.New(er.InternalErrorCode, err.Error())
	}
	return order, nil
}

func (s *OrderService) GetOrdersByUserID(ctx context.Context, userID uint, limit, offset int) ([]model.Order, error) {
	return s.orderRepo.GetOrdersByUserID(ctx, userID, limit, offset)
}

func (s *OrderService) GetOrderItem(ctx context.Context, id uint) (*model.OrderItem, error) {
	item, err := s.orderRepo.GetOrderItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, er.New(er.NotFoundCode, "order item not found")
		}
		return nil, er.New(er.InternalErrorCode, err.Error())
	}
	return item, nil
}

// ChangeOrderItemStatus 訂單明細狀態轉移
// 規則:
//   - 訂單整體transactionStatus必須是Success, 否則不可動
//   - 離開終態(Complete/Failed)或把狀態設回Pending需要Manage權限
//   - 設成Complete/Failed需要訂單(買家脈絡)或商品(賣家脈絡)的Update權限
func (s *OrderService) ChangeOrderItemStatus(ctx context.Context, ability *authz.Ability, itemID uint, status model.OrderItemStatus) (*model.OrderItem, error) {
	item, err := s.GetOrderItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if item.Order == nil || item.Order.TransactionStatus != model.TransactionSuccess {
		return nil, er.New(er.BadRequestCode, "order is not paid yet")
	}

	if item.OrderStatus.IsTerminal() || status == model.OrderItemPending {
		if !ability.Can(authz.Manage, item) {
			return nil, er.New(er.ForbiddenCode, "leaving a terminal status or resetting to Pending requires manage rights")
		}
		return s.updateItemStatus(ctx, item.ID, status)
	}

	if status == model.OrderItemComplete || status == model.OrderItemFailed {
		if ability.Can(authz.Update, item.Order) || (item.Product != nil && ability.Can(authz.Update, item.Product)) {
			return s.updateItemStatus(ctx, item.ID, status)
		}
		return nil, er.New(er.ForbiddenCode, "you cannot set this status")
	}

	return nil, er.New(er.ForbiddenCode, "you cannot set this status")
}

func (s *OrderService) updateItemStatus(ctx context.Context, itemID uint, status model.OrderItemStatus) (*model.OrderItem, error) {
	item, err := s.orderRepo.UpdateOrderItemStatus(ctx, itemID, status)
	if err != nil {
		return nil, er.New(er.InternalErrorCode, err.Error())
	}
	return item, nil
}

// ChangeOrderStatus 訂單整體狀態轉移, 需要Manage權限
func (s *OrderService) ChangeOrderStatus(ctx context.Context, ability *authz.Ability, orderID uint, status model.TransactionStatus) (*model.Order, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !ability.Can(authz.Manage, order) {
		return nil, er.New(er.ForbiddenCode, "you cannot set this status")
	}

	updated, err := s.orderRepo.UpdateOrderTransactionStatus(ctx, order.ID, status)
	if err != nil {
		return nil, er.New(er.InternalErrorCode, err.Error())
	}
	return updated, nil
}

var _ IOrderService = (*OrderService)(nil)
