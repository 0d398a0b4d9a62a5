package handler

import (
	"encoding/json"
	"net/http"

	"github.com/RoyceAzure/lab/marketplace/internal/api/dto"
	"github.com/RoyceAzure/lab/marketplace/internal/authz"
	"github.com/RoyceAzure/lab/marketplace/internal/model"
	"github.com/RoyceAzure/lab/marketplace/internal/service"
	"github.com/RoyceAzure/lab/marketplace/pkg/api"
)

type OrderHandler struct {
	orderService service.IOrderService
	abilities    abilityResolver
}

func NewOrderHandler(orderService service.IOrderService, userService service.IUserService) *OrderHandler {
	if orderService == nil || userService == nil {
		panic("order handler missing required service")
	}
	return &OrderHandler{
		orderService: orderService,
		abilities:    abilityResolver{userService: userService},
	}
}

// @Summary create an order with items, stock is reserved atomically
// @Tags order
// @Accept json
// @Produce json
// @Param order body dto.CreateOrderDTO true "order content"
// @Success 200 {object} api.Response{data=dto.OrderDTO} "success"
// @Failure 400 {object} api.ResponseError{data=string} "BadRequestCode"
// @Failure 403 {object} api.ResponseError{data=string} "ForbiddenCode"
// @Security ApiKeyAuth
// @Router /orders [post]
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ability, user, err := h.abilities.resolve(ctx)
	if err != nil {
		writeErr(w, err)
		return
	}
	if user == nil || !ability.Can(authz.Create, authz.SubjectOrder) {
		writeForbidden(w)
		return
	}

	var createDTO dto.CreateOrderDTO
	if err := json.NewDecoder(r.Body).Decode(&createDTO); err != nil {
		writeBadRequest(w, nil)
		return
	}
	if err := dto.Validate(createDTO); err != nil {
		writeBadRequest(w, err)
		return
	}

	items := make([]service.OrderLineItem, 0, len(createDTO.Items))
	for _, item := range createDTO.Items {
		items = append(items, service.OrderLineItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	order, err := h.orderService.CreateOrder(ctx, service.CreateOrderInput{
		Country: createDTO.Country,
		City:    createDTO.City,
		Address: createDTO.Address,
		Phone:   createDTO.Phone,
		Items:   items,
	}, user.ID)
	if err != nil {
		writeErr(w, err)
		return
	}
	api.SuccessJSON(w, convertOrderToDTO(order), nil)
}

// @Summary get one order, only owner or admin
// @Tags order
// @Produce json
// @Param id path int true "order id"
// @Success 200 {object} api.Response{data=dto.OrderDTO} "success"
// @Failure 403 {object} api.ResponseError{data=string} "ForbiddenCode"
// @Failure 404 {object} api.ResponseError{data=string} "NotFoundCode"
// @Security ApiKeyAuth
// @Router /orders/{id} [get]
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseUintParam(r, "id")
	if err != nil {
		writeErr(w, err)
		return
	}

	ability, _, err := h.abilities.resolve(ctx)
	if err != nil {
		writeErr(w, err)
		return
	}

	order, err := h.orderService.GetOrder(ctx, id)
	if err != nil {
		writeErr(w, err)
		return
	}
	if !ability.Can(authz.Read, order) {
		writeForbidden(w)
		return
	}
	api.SuccessJSON(w, convertOrderToDTO(order), nil)
}

// @Summary list own orders
// @Tags order
// @Produce json
// @Param id path int true "user id"
// @Param limit query int false "page size"
// @Param offset query int false "page offset"
// @Success 200 {object} api.Response{data=[]dto.OrderDTO} "success"
// @Failure 403 {object} api.ResponseError{data=string} "ForbiddenCode"
// @Security ApiKeyAuth
// @Router /users/{id}/orders [get]
func (h *OrderHandler) ListUserOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseUintParam(r, "id")
	if err != nil {
		writeErr(w, err)
		return
	}
	limit, offset := parsePaging(r)

	ability, _, err := h.abilities.resolve(ctx)
	if err != nil {
		writeErr(w, err)
		return
	}
	// 訂單清單屬於該使用者本人, 用instance層級的owner檢查
	if !ability.Can(authz.Read, &model.Order{UserID: id}) {
		writeForbidden(w)
		return
	}

	orders, err := h.orderService.GetOrdersByUserID(ctx, id, limit, offset)
	if err != nil {
		writeErr(w, err)
		return
	}

	result := make([]dto.OrderDTO, 0, len(orders))
	for i := range orders {
		result = append(result, convertOrderToDTO(&orders[i]))
	}
	api.SuccessJSON(w, result, nil)
}

// @Summary change order transaction status, admin only
// @Tags order
// @Accept json
// @Produce json
// @Param id path int true "order id"
// @Param status body dto.UpdateOrderStatusDTO true "new status"
// @Success 200 {object} api.Response{data=dto.OrderDTO} "success"
// @Failure 403 {object} api.ResponseError{data=string} "ForbiddenCode"
// @Security ApiKeyAuth
// @Router /orders/{id}/status [put]
func (h *OrderHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseUintParam(r, "id")
	if err != nil {
		writeErr(w, err)
		return
	}

	ability, _, err := h.abilities.resolve(ctx)
	if err != nil {
		writeErr(w, err)
		return
	}

	var statusDTO dto.UpdateOrderStatusDTO
	if err := json.NewDecoder(r.Body).Decode(&statusDTO); err != nil {
		writeBadRequest(w, nil)
		return
	}
	if err := dto.Validate(statusDTO); err != nil {
		writeBadRequest(w, err)
		return
	}

	order, err := h.orderService.ChangeOrderStatus(ctx, ability, id, model.TransactionStatus(statusDTO.Status))
	if err != nil {
		writeErr(w, err)
		return
	}
	api.SuccessJSON(w, convertOrderToDTO(order), nil)
}

// @Summary change order item status, gated by payment state and role
// @Tags order
// @Accept json
// @Produce json
// @Param id path int true "order item id"
// @Param status body dto.UpdateOrderItemStatusDTO true "new status"
// @Success 200 {object} api.Response{data=dto.OrderItemDTO} "success"
// @Failure 400 {object} api.ResponseError{data=string} "BadRequestCode"
// @Failure 403 {object} api.ResponseError{data=string} "ForbiddenCode"
// @Security ApiKeyAuth
// @Router /order-items/{id}/status [put]
func (h *OrderHandler) UpdateOrderItemStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseUintParam(r, "id")
	if err != nil {
		writeErr(w, err)
		return
	}

	ability, _, err := h.abilities.resolve(ctx)
	if err != nil {
		writeErr(w, err)
		return
	}

	var statusDTO dto.UpdateOrderItemStatusDTO
	if err := json.NewDecoder(r.Body).Decode(&statusDTO); err != nil {
		writeBadRequest(w, nil)
		return
	}
	if err := dto.Validate(statusDTO); err != nil {
		writeBadRequest(w, err)
		return
	}

	item, err := h.orderService.ChangeOrderItemStatus(ctx, ability, id, model.OrderItemStatus(statusDTO.Status))
	if err != nil {
		writeErr(w, err)
		return
	}
	api.SuccessJSON(w, convertOrderItemToDTO(item), nil)
}
