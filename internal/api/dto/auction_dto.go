package dto

import "time"

type AuctionDTO struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       string    `json:"price"` //起標價
	Photo       string    `json:"photo,omitempty"`
	BidStart    time.Time `json:"bidStart"`
	BidEnd      time.Time `json:"bidEnd"`
	UserID      uint      `json:"userId"`
	Seller      *UserDTO  `json:"seller,omitempty"`
}

type CreateAuctionDTO struct {
	Name        string    `json:"name" validate:"required,max=40"`
	Description string    `json:"description" validate:"required,max=40"`
	Price       string    `json:"price" validate:"required"`
	BidStart    time.Time `json:"bidStart" validate:"required"`
	BidEnd      time.Time `json:"bidEnd" validate:"required,gtfield=BidStart"`
}

type UpdateAuctionDTO struct {
	Name        *string    `json:"name" validate:"omitempty,max=40"`
	Description *string    `json:"description" validate:"omitempty,max=40"`
	Price       *string    `json:"price"`
	BidStart    *time.Time `json:"bidStart"`
	BidEnd      *time.Time `json:"bidEnd"`
}

type BidDTO struct {
	ID        uint      `json:"id"`
	Amount    string    `json:"bid"`
	Time      time.Time `json:"time"`
	UserID    uint      `json:"userId"`
	Bidder    *UserDTO  `json:"bidder,omitempty"`
	AuctionID uint      `json:"auctionId"`
}

type HighBidResponse struct {
	AuctionID uint   `json:"auctionId"`
	HighBid   string `json:"highBid"`
}
