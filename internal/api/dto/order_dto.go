package dto

import "time"

type OrderItemDTO struct {
	ID          uint        `json:"id"`
	Price       string      `json:"price"` //下單當下的價格快照
	Quantity    int         `json:"quantity"`
	OrderStatus string      `json:"orderStatus"`
	ProductID   uint        `json:"productId"`
	Product     *ProductDTO `json:"product,omitempty"`
	OrderID     uint        `json:"orderId"`
}

type OrderDTO struct {
	ID                uint           `json:"id"`
	TotalSum          string         `json:"totalSum"`
	TransactionStatus string         `json:"transactionStatus"`
	Country           string         `json:"country"`
	City              string         `json:"city"`
	Address           string         `json:"address"`
	Phone             string         `json:"phone"`
	OrderDate         time.Time      `json:"orderDate"`
	DeliveryDate      *time.Time     `json:"deliveryDate"`
	UserID            uint           `json:"userId"`
	OrderItems        []OrderItemDTO `json:"orderItems,omitempty"`
}

type CreateOrderItemDTO struct {
	ProductID uint `json:"productId" validate:"required"`
	Quantity  int  `json:"quantity" validate:"required,gt=0"`
}

type CreateOrderDTO struct {
	Country string               `json:"country" validate:"required,max=100"`
	City    string               `json:"city" validate:"required,max=100"`
	Address string               `json:"address" validate:"required,max=100"`
	Phone   string               `json:"phone" validate:"required,max=50"`
	Items   []CreateOrderItemDTO `json:"items" validate:"required,min=1,dive"`
}

type UpdateOrderStatusDTO struct {
	Status string `json:"status" validate:"required,oneof=Pending Success Failed"`
}

type UpdateOrderItemStatusDTO struct {
	Status string `json:"status" validate:"required,oneof=Pending Complete Failed"`
}
