package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Auction struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"not null;type:varchar(40)" json:"name"`
	Description string          `gorm:"not null;type:varchar(40)" json:"description"`
	Price       decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"price"` // 起標價
	Photo       string          `gorm:"not null;type:varchar(255)" json:"photo"`
	BidStart    time.Time       `gorm:"not null" json:"bidStart"`
	BidEnd      time.Time       `gorm:"not null" json:"bidEnd"`
	UserID      uint            `gorm:"not null;index" json:"userId"` // 外鍵, 賣家
	Seller      *User           `gorm:"foreignKey:UserID" json:"seller,omitempty"`
	Bids        []Bid           `gorm:"foreignKey:AuctionID" json:"bids,omitempty"`
	BaseModel
}

func (a *Auction) OwnerID() uint { return a.UserID }

// Bid 一旦建立即不可變更, 沒有update/delete路徑
type Bid struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Amount    decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"bid"`
	Time      time.Time       `gorm:"not null" json:"time"`
	UserID    uint            `gorm:"not null;index" json:"userId"` // 外鍵, 出價者
	Bidder    *User           `gorm:"foreignKey:UserID" json:"bidder,omitempty"`
	AuctionID uint            `gorm:"not null;index" json:"auctionId"`
	BaseModel
}
