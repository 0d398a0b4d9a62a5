package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/RoyceAzure/lab/marketplace/internal/constants"
	"github.com/RoyceAzure/lab/marketplace/internal/infra/auth"
	"github.com/RoyceAzure/lab/marketplace/internal/mocks"
	"github.com/RoyceAzure/lab/marketplace/internal/model"
	"github.com/RoyceAzure/lab/marketplace/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func plainUser(id uint) *model.User {
	return &model.User{
		ID:    id,
		Email: "user@example.com",
		Roles: []model.Role{{ID: 1, Value: model.RoleUser}},
	}
}

func withClaims(r *http.Request, userID uint) *http.Request {
	ctx := context.WithValue(r.Context(), constants.AuthorizationPayloadKey, &auth.Claims{UserID: userID})
	return r.WithContext(ctx)
}

func newOrderRouter(orderService service.IOrderService, userService service.IUserService) *chi.Mux {
	h := NewOrderHandler(orderService, userService)
	r := chi.NewRouter()
	r.Post("/orders", h.CreateOrder)
	r.Get("/orders/{id}", h.GetOrder)
	r.Get("/users/{id}/orders", h.ListUserOrders)
	return r
}

func TestCreateOrderHandler(t *testing.T) {
	orderService := new(mocks.MockOrderService)
	userService := new(mocks.MockUserService)

	userService.On("GetUserByID", mock.Anything, uint(9)).Return(plainUser(9), nil)
	orderService.On("CreateOrder", mock.Anything, mock.Anything, uint(9)).
		Return(&model.Order{
			ID:                3,
			TotalSum:          decimal.RequireFromString("276"),
			TransactionStatus: model.TransactionPending,
			UserID:            9,
		}, nil)

	body, _ := json.Marshal(map[string]any{
		"country": "TW",
		"city":    "Taipei",
		"address": "somewhere",
		"phone":   "0912345678",
		"items":   []map[string]any{{"productId": 1, "quantity": 2}},
	})

	req := withClaims(httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader(body)), 9)
	rec := httptest.NewRecorder()
	newOrderRouter(orderService, userService).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			ID       uint   `json:"id"`
			TotalSum string `json:"totalSum"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, uint(3), resp.Data.ID)
	require.Equal(t, "276", resp.Data.TotalSum)
}

func TestCreateOrderHandlerAnonymousForbidden(t *testing.T) {
	orderService := new(mocks.MockOrderService)
	userService := new(mocks.MockUserService)

	body := []byte(`{"country":"TW","city":"Taipei","address":"x","phone":"0912345678","items":[{"productId":1,"quantity":1}]}`)
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	newOrderRouter(orderService, userService).ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	orderService.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateOrderHandlerInvalidBody(t *testing.T) {
	orderService := new(mocks.MockOrderService)
	userService := new(mocks.MockUserService)
	userService.On("GetUserByID", mock.Anything, uint(9)).Return(plainUser(9), nil)

	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: "not json"},
		{name: "no items", body: `{"country":"TW","city":"Taipei","address":"x","phone":"0912345678","items":[]}`},
		{name: "zero quantity", body: `{"country":"TW","city":"Taipei","address":"x","phone":"0912345678","items":[{"productId":1,"quantity":0}]}`},
		{name: "missing address", body: `{"country":"TW","city":"Taipei","phone":"0912345678","items":[{"productId":1,"quantity":1}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withClaims(httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader([]byte(tt.body))), 9)
			rec := httptest.NewRecorder()
			newOrderRouter(orderService, userService).ServeHTTP(rec, req)

			require.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
	orderService.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetOrderHandlerOwnerOnly(t *testing.T) {
	order := &model.Order{ID: 3, UserID: 9, TransactionStatus: model.TransactionPending}

	tests := []struct {
		name       string
		callerID   uint
		wantStatus int
	}{
		{name: "owner reads own order", callerID: 9, wantStatus: http.StatusOK},
		{name: "stranger is rejected", callerID: 7, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orderService := new(mocks.MockOrderService)
			userService := new(mocks.MockUserService)
			userService.On("GetUserByID", mock.Anything, tt.callerID).Return(plainUser(tt.callerID), nil)
			orderService.On("GetOrder", mock.Anything, uint(3)).Return(order, nil)

			req := withClaims(httptest.NewRequest(http.MethodGet, "/orders/3", nil), tt.callerID)
			rec := httptest.NewRecorder()
			newOrderRouter(orderService, userService).ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestGetOrderHandlerAdminReadsAny(t *testing.T) {
	orderService := new(mocks.MockOrderService)
	userService := new(mocks.MockUserService)

	admin := &model.User{ID: 1, Roles: []model.Role{{ID: 2, Value: model.RoleAdmin}}}
	userService.On("GetUserByID", mock.Anything, uint(1)).Return(admin, nil)
	orderService.On("GetOrder", mock.Anything, uint(3)).
		Return(&model.Order{ID: 3, UserID: 9}, nil)

	req := withClaims(httptest.NewRequest(http.MethodGet, "/orders/3", nil), 1)
	rec := httptest.NewRecorder()
	newOrderRouter(orderService, userService).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestListUserOrdersHandlerForbiddenForOthers(t *testing.T) {
	orderService := new(mocks.MockOrderService)
	userService := new(mocks.MockUserService)
	userService.On("GetUserByID", mock.Anything, uint(7)).Return(plainUser(7), nil)

	req := withClaims(httptest.NewRequest(http.MethodGet, "/users/9/orders", nil), 7)
	rec := httptest.NewRecorder()
	newOrderRouter(orderService, userService).ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	orderService.AssertNotCalled(t, "GetOrdersByUserID", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
