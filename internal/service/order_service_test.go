package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/RoyceAzure/lab/marketplace/internal/authz"
	"github.com/RoyceAzure/lab/marketplace/internal/infra/producer"
	"github.com/RoyceAzure/lab/marketplace/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/marketplace/internal/mocks"
	"github.com/RoyceAzure/lab/marketplace/internal/model"
	"github.com/RoyceAzure/lab/marketplace/internal/service"
	"github.com/RoyceAzure/lab/marketplace/pkg/er"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testProduct(id, sellerID uint, name string, price string, quantity int) *model.Product {
	return &model.Product{
		ID:       id,
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Quantity: quantity,
		UserID:   sellerID,
	}
}

func newOrderServiceForTest(orderRepo *mocks.MockOrderRepository, productRepo *mocks.MockProductRepository, evtProducer *mocks.MockEventProducer) service.IOrderService {
	if evtProducer != nil {
		return service.NewOrderService(orderRepo, productRepo, evtProducer, nil)
	}
	return service.NewOrderService(orderRepo, productRepo, nil, nil)
}

func TestCreateOrderRejectsDuplicatedItems(t *testing.T) {
	orderRepo := new(mocks.MockOrderRepository)
	productRepo := new(mocks.MockProductRepository)
	productRepo.On("GetProductByID", mock.Anything, uint(1)).
		Return(testProduct(1, 2, "keyboard", "100", 10), nil)

	svc := newOrderServiceForTest(orderRepo, productRepo, nil)
	_, err := svc.CreateOrder(context.Background(), service.CreateOrderInput{
		Items: []service.OrderLineItem{
			{ProductID: 1, Quantity: 1},
			{ProductID: 1, Quantity: 2},
		},
	}, 9)

	require.Error(t, err)
	require.Equal(t, er.BadRequestCode, er.CodeOf(err))
	orderRepo.AssertNotCalled(t, "CreateOrderWithItems", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateOrderRejectsUnknownProduct(t *testing.T) {
	orderRepo := new(mocks.MockOrderRepository)
	productRepo := new(mocks.MockProductRepository)
	productRepo.On("GetProductByID", mock.Anything, uint(42)).Return(nil, gorm.ErrRecordNotFound)

	svc := newOrderServiceForTest(orderRepo, productRepo, nil)
	_, err := svc.CreateOrder(context.Background(), service.CreateOrderInput{
		Items: []service.OrderLineItem{{ProductID: 42, Quantity: 1}},
	}, 9)

	require.Error(t, err)
	require.Equal(t, er.BadRequestCode, er.CodeOf(err))
}

func TestCreateOrderRejectsInsufficientStock(t *testing.T) {
	orderRepo := new(mocks.MockOrderRepository)
	productRepo := new(mocks.MockProductRepository)
	productRepo.On("GetProductByID", mock.Anything, uint(1)).
		Return(testProduct(1, 2, "keyboard", "100", 3), nil)

	svc := newOrderServiceForTest(orderRepo, productRepo, nil)
	_, err := svc.CreateOrder(context.Background(), service.CreateOrderInput{
		Items: []service.OrderLineItem{{ProductID: 1, Quantity: 4}},
	}, 9)

	require.Error(t, err)
	require.Equal(t, er.BadRequestCode, er.CodeOf(err))
	require.Contains(t, err.Error(), "keyboard")
	orderRepo.AssertNotCalled(t, "CreateOrderWithItems", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateOrderRejectsSelfPurchase(t *testing.T) {
	orderRepo := new(mocks.MockOrderRepository)
	productRepo := new(mocks.MockProductRepository)
	productRepo.On("GetProductByID", mock.Anything, uint(1)).
		Return(testProduct(1, 9, "keyboard", "100", 10), nil)

	svc := newOrderServiceForTest(orderRepo, productRepo, nil)
	_, err := svc.CreateOrder(context.Background(), service.CreateOrderInput{
		Items: []service.OrderLineItem{{ProductID: 1, Quantity: 1}},
	}, 9)

	require.Error(t, err)
	require.Equal(t, er.BadRequestCode, er.CodeOf(err))
	require.Contains(t, err.Error(), "your own product")
}

func TestCreateOrderComputesTotalAndSnapshotsPrice(t *testing.T) {
	orderRepo := new(mocks.MockOrderRepository)
	productRepo := new(mocks.MockProductRepository)
	evtProducer := new(mocks.MockEventProducer)

	productRepo.On("GetProductByID", mock.Anything, uint(1)).
		Return(testProduct(1, 2, "keyboard", "100.50", 10), nil)
	productRepo.On("GetProductByID", mock.Anything, uint(5)).
		Return(testProduct(5, 3, "mouse", "25", 10), nil)
	orderRepo.On("CreateOrderWithItems", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	evtProducer.On("Publish", mock.Anything, mock.MatchedBy(func(evt producer.Event) bool {
		return evt.Name == producer.EventOrderCreated
	})).Return(nil)

	svc := newOrderServiceForTest(orderRepo, productRepo, evtProducer)
	order, err := svc.CreateOrder(context.Background(), service.CreateOrderInput{
		Country: "TW",
		City:    "Taipei",
		Address: "somewhere",
		Phone:   "0912345678",
		Items: []service.OrderLineItem{
			{ProductID: 1, Quantity: 2},
			{ProductID: 5, Quantity: 3},
		},
	}, 9)

	require.NoError(t, err)
	// 2*100.50 + 3*25 = 276
	require.True(t, order.TotalSum.Equal(decimal.RequireFromString("276")))
	require.Equal(t, model.TransactionPending, order.TransactionStatus)
	require.Equal(t, uint(9), order.UserID)
	require.Nil(t, order.DeliveryDate)

	items := orderRepo.Calls[0].Arguments.Get(2).([]model.OrderItem)
	require.Len(t, items, 2)
	require.True(t, items[0].Price.Equal(decimal.RequireFromString("100.50")))
	require.Equal(t, model.OrderItemPending, items[0].OrderStatus)
	evtProducer.AssertExpectations(t)
}

func TestCreateOrderMapsStockConflictToBadRequest(t *testing.T) {
	orderRepo := new(mocks.MockOrderRepository)
	productRepo := new(mocks.MockProductRepository)

	productRepo.On("GetProductByID", mock.Anything, uint(1)).
		Return(testProduct(1, 2, "keyboard", "100", 10), nil)
	// 驗證通過後, 交易內扣庫存輸給了並發的另一張訂單
	orderRepo.On("CreateOrderWithItems", mock.Anything, mock.Anything, mock.Anything).
		Return(fmt.Errorf("%w: product %d", db.ErrStockConflict, 1))

	svc := newOrderServiceForTest(orderRepo, productRepo, nil)
	_, err := svc.CreateOrder(context.Background(), service.CreateOrderInput{
		Items: []service.OrderLineItem{{ProductID: 1, Quantity: 2}},
	}, 9)

	require.Error(t, err)
	require.Equal(t, er.BadRequestCode, er.CodeOf(err))
	require.Contains(t, err.Error(), "keyboard")
}

func paidOrderItem(buyerID, sellerID uint, status model.OrderItemStatus, txStatus model.TransactionStatus) *model.OrderItem {
	return &model.OrderItem{
		ID:          7,
		OrderStatus: status,
		ProductID:   1,
		Product:     testProduct(1, sellerID, "keyboard", "100", 10),
		OrderID:     3,
		Order: &model.Order{
			ID:                3,
			TransactionStatus: txStatus,
			UserID:            buyerID,
		},
	}
}

func adminAbility() *authz.Ability {
	return authz.NewAbility(&authz.Actor{UserID: 1, Roles: []model.RoleValue{model.RoleAdmin}})
}

func userAbility(id uint) *authz.Ability {
	return authz.NewAbility(&authz.Actor{UserID: id, Roles: []model.RoleValue{model.RoleUser}})
}

func TestChangeOrderItemStatusRequiresPaidOrder(t *testing.T) {
	orderRepo := new(mocks.MockOrderRepository)
	orderRepo.On("GetOrderItemByID", mock.Anything, uint(7)).
		Return(paidOrderItem(9, 2, model.OrderItemPending, model.TransactionPending), nil)

	svc := newOrderServiceForTest(orderRepo, new(mocks.MockProductRepository), nil)
	_, err := svc.ChangeOrderItemStatus(context.Background(), adminAbility(), 7, model.OrderItemComplete)

	require.Error(t, err)
	require.Equal(t, er.BadRequestCode, er.CodeOf(err))
}

func TestChangeOrderItemStatusGating(t *testing.T) {
	tests := []struct {
		name     string
		item     *model.OrderItem
		ability  *authz.Ability
		target   model.OrderItemStatus
		wantCode er.Code // 0代表成功
	}{
		{
			name:    "seller completes a pending item",
			item:    paidOrderItem(9, 2, model.OrderItemPending, model.TransactionSuccess),
			ability: userAbility(2),
			target:  model.OrderItemComplete,
		},
		{
			name:    "seller fails a pending item",
			item:    paidOrderItem(9, 2, model.OrderItemPending, model.TransactionSuccess),
			ability: userAbility(2),
			target:  model.OrderItemFailed,
		},
		{
			name:     "buyer cannot complete the item",
			item:     paidOrderItem(9, 2, model.OrderItemPending, model.TransactionSuccess),
			ability:  userAbility(9),
			target:   model.OrderItemComplete,
			wantCode: er.ForbiddenCode,
		},
		{
			name:     "stranger cannot touch the item",
			item:     paidOrderItem(9, 2, model.OrderItemPending, model.TransactionSuccess),
			ability:  userAbility(77),
			target:   model.OrderItemComplete,
			wantCode: er.ForbiddenCode,
		},
		{
			name:    "admin reopens a terminal item",
			item:    paidOrderItem(9, 2, model.OrderItemComplete, model.TransactionSuccess),
			ability: adminAbility(),
			target:  model.OrderItemPending,
		},
		{
			name:     "seller cannot reopen a terminal item",
			item:     paidOrderItem(9, 2, model.OrderItemComplete, model.TransactionSuccess),
			ability:  userAbility(2),
			target:   model.OrderItemPending,
			wantCode: er.ForbiddenCode,
		},
		{
			name:     "seller cannot reset pending back to pending",
			item:     paidOrderItem(9, 2, model.OrderItemPending, model.TransactionSuccess),
			ability:  userAbility(2),
			target:   model.OrderItemPending,
			wantCode: er.ForbiddenCode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orderRepo := new(mocks.MockOrderRepository)
			orderRepo.On("GetOrderItemByID", mock.Anything, tt.item.ID).Return(tt.item, nil)
			updated := *tt.item
			updated.OrderStatus = tt.target
			orderRepo.On("UpdateOrderItemStatus", mock.Anything, tt.item.ID, tt.target).Return(&updated, nil)

			svc := newOrderServiceForTest(orderRepo, new(mocks.MockProductRepository), nil)
			got, err := svc.ChangeOrderItemStatus(context.Background(), tt.ability, tt.item.ID, tt.target)

			if tt.wantCode != 0 {
				require.Error(t, err)
				require.Equal(t, tt.wantCode, er.CodeOf(err))
				orderRepo.AssertNotCalled(t, "UpdateOrderItemStatus", mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.target, got.OrderStatus)
		})
	}
}

func TestChangeOrderStatusRequiresManage(t *testing.T) {
	order := &model.Order{ID: 3, TransactionStatus: model.TransactionPending, UserID: 9}

	orderRepo := new(mocks.MockOrderRepository)
	orderRepo.On("GetOrderByID", mock.Anything, uint(3)).Return(order, nil)
	updated := *order
	updated.TransactionStatus = model.TransactionSuccess
	orderRepo.On("UpdateOrderTransactionStatus", mock.Anything, uint(3), model.TransactionSuccess).Return(&updated, nil)

	svc := newOrderServiceForTest(orderRepo, new(mocks.MockProductRepository), nil)

	// 買家自己也不能改付款狀態
	_, err := svc.ChangeOrderStatus(context.Background(), userAbility(9), 3, model.TransactionSuccess)
	require.Error(t, err)
	require.Equal(t, er.ForbiddenCode, er.CodeOf(err))

	got, err := svc.ChangeOrderStatus(context.Background(), adminAbility(), 3, model.TransactionSuccess)
	require.NoError(t, err)
	require.Equal(t, model.TransactionSuccess, got.TransactionStatus)
}

func TestGetOrderNotFound(t *testing.T) {
	orderRepo := new(mocks.MockOrderRepository)
	orderRepo.On("GetOrderByID", mock.Anything, uint(404)).Return(nil, gorm.ErrRecordNotFound)

	svc := newOrderServiceForTest(orderRepo, new(mocks.MockProductRepository), nil)
	_, err := svc.GetOrder(context.Background(), 404)

	require.Error(t, err)
	require.Equal(t, er.NotFoundCode, er.CodeOf(err))
}
