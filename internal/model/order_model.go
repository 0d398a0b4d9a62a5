package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	TransactionPending TransactionStatus = "Pending"
	TransactionSuccess TransactionStatus = "Success"
	TransactionFailed  TransactionStatus = "Failed"
)

func IsValidTransactionStatus(s string) bool {
	switch TransactionStatus(s) {
	case TransactionPending, TransactionSuccess, TransactionFailed:
		return true
	default:
		return false
	}
}

type OrderItemStatus string

const (
	OrderItemPending  OrderItemStatus = "Pending"
	OrderItemComplete OrderItemStatus = "Complete"
	OrderItemFailed   OrderItemStatus = "Failed"
)

func IsValidOrderItemStatus(s string) bool {
	switch OrderItemStatus(s) {
	case OrderItemPending, OrderItemComplete, OrderItemFailed:
		return true
	default:
		return false
	}
}

// IsTerminal Complete/Failed為終態, 離開終態需要Manage權限
func (s OrderItemStatus) IsTerminal() bool {
	return s == OrderItemComplete || s == OrderItemFailed
}

type Order struct {
	ID                uint              `gorm:"primaryKey" json:"id"`
	TotalSum          decimal.Decimal   `gorm:"not null;type:decimal(10,2)" json:"totalSum"`
	TransactionStatus TransactionStatus `gorm:"not null;type:varchar(20)" json:"transactionStatus"`
	Country           string            `gorm:"not null;type:varchar(100)" json:"country"`
	City              string            `gorm:"not null;type:varchar(100)" json:"city"`
	Address           string            `gorm:"not null;type:varchar(100)" json:"address"`
	Phone             string            `gorm:"not null;type:varchar(50)" json:"phone"`
	OrderDate         time.Time         `gorm:"not null" json:"orderDate"`
	DeliveryDate      *time.Time        `gorm:"null" json:"deliveryDate"`
	UserID            uint              `gorm:"not null;index" json:"userId"` // 外鍵, 買家
	Buyer             *User             `gorm:"foreignKey:UserID" json:"buyer,omitempty"`
	OrderItems        []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"orderItems,omitempty"`
	BaseModel
}

func (o *Order) OwnerID() uint { return o.UserID }

type OrderItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Price       decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"price"` // 下單當下的價格快照
	Quantity    int             `gorm:"not null" json:"quantity"`
	OrderStatus OrderItemStatus `gorm:"not null;type:varchar(20)" json:"orderStatus"`
	ProductID   uint            `gorm:"not null;index" json:"productId"`
	Product     *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	OrderID     uint            `gorm:"not null;index" json:"orderId"`
	Order       *Order          `gorm:"foreignKey:OrderID" json:"-"`
	BaseModel
}
