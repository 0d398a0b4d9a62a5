package model

import (
	"github.com/shopspring/decimal"
)

type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"not null;type:varchar(40)" json:"name"`
	Description string          `gorm:"not null;type:varchar(40)" json:"description"`
	Price       decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"price"`
	Quantity    int             `gorm:"not null;type:int;check:quantity >= 0" json:"quantity"`
	Photo       string          `gorm:"not null;type:varchar(255)" json:"photo"`
	UserID      uint            `gorm:"not null;index" json:"userId"` // 外鍵, 賣家
	Seller      *User           `gorm:"foreignKey:UserID" json:"seller,omitempty"`
	OrderItems  []OrderItem     `gorm:"foreignKey:ProductID" json:"-"`
	BaseModel
}

func (p *Product) OwnerID() uint { return p.UserID }
