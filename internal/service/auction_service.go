package service

import (
	"context"
	"errors"
	"time"

	"github.com/RoyceAzure/lab/marketplace/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/marketplace/internal/infra/storage"
	"github.com/RoyceAzure/lab/marketplace/internal/model"
	"github.com/RoyceAzure/lab/marketplace/pkg/cache"
	"github.com/RoyceAzure/lab/marketplace/pkg/er"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateAuctionInput struct {
	Name        string
	Description string
	Price       decimal.Decimal // 起標價
	BidStart    time.Time
	BidEnd      time.Time
	Photo       []byte
}

type UpdateAuctionInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	BidStart    *time.Time
	BidEnd      *time.Time
	Photo       []byte
}

type IAuctionService interface {
	CreateAuction(ctx context.Context, sellerID uint, input CreateAuctionInput) (*model.Auction, error)
	GetAuction(ctx context.Context, id uint) (*model.Auction, error)
	GetAllAuctions(ctx context.Context, limit, offset int) ([]model.Auction, error)
	GetAuctionsByUserID(ctx context.Context, userID uint, limit, offset int) ([]model.Auction, error)
	UpdateAuction(ctx context.Context, id uint, input UpdateAuctionInput) (*model.Auction, error)
	DeleteAuction(ctx context.Context, id uint) error
	// GetHighBid 回傳目前最高出價, 優先讀cache, miss則掃DB回填
	// 完全沒有出價時回傳起標價
	GetHighBid(ctx context.Context, auctionID uint) (decimal.Decimal, error)
}

type AuctionService struct {
	auctionRepo db.IAuctionRepository
	fileStore   storage.IFileStore
	highBids    cache.Cache
	logger      *zerolog.Logger
}

func NewAuctionService(auctionRepo db.IAuctionRepository, fileStore storage.IFileStore, highBids cache.Cache, logger *zerolog.Logger) IAuctionService {
	if auctionRepo == nil || fileStore == nil {
		panic("auction service missing required dependency")
	}
	return &AuctionService{
		auctionRepo: auctionRepo,
		fileStore:   fileStore,
		highBids:    highBids,
		logger:      logger,
	}
}

func (s *AuctionService) CreateAuction(ctx context.Context, sellerID uint, input CreateAuctionInput) (*model.Auction, error) {
	if !input.BidEnd.After(input.BidStart) {
		return nil, er.New(er.BadRequestCode, "bidEnd must be after bidStart")
	}

	photo := ""
	if len(input.Photo) > 0 {
		var err error
		photo, err = s.fileStore.SaveImage(input.Photo)
		if err != nil {
			return nil, er.New(er.InternalErrorCode, err.Error())
		}
	}

	auction := &model.Auction{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Photo:       photo,
		BidStart:    input.BidStart,
		BidEnd:      input.BidEnd,
		UserID:      sellerID,
	}
	if err := s.auctionRepo.CreateAuction(ctx, auction); err != nil {
		if photo != "" {
			if rmErr := s.fileStore.Remove(photo); rmErr != nil && s.logger != nil {
				s.logger.Warn().Err(rmErr).Str("photo", photo).Msg("remove orphan photo failed")
			}
		}
		return nil, er.New(er.InternalErrorCode, err.Error())
	}
	return s.GetAuction(ctx, auction.ID)
}

func (s *AuctionService) GetAuction(ctx context.Context, id uint) (*model.Auction, error) {
	auction, err := s.auctionRepo.GetAuctionByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, er.New(er.NotFoundCode, "auction not found")
		}
		return nil, er.New(er.InternalErrorCode, err.Error())
	}
	return auction, nil
}

func (s *AuctionService) GetAllAuctions(ctx context.Context, limit, offset int) ([]model.Auction, error) {
	return s.auctionRepo.GetAllAuctions(ctx, limit, offset)
}

func (s *AuctionService) GetAuctionsByUserID(ctx context.Context, userID uint, limit, offset int) ([]model.Auction, error) {
	return s.auctionRepo.GetAuctionsByUserID(ctx, userID, limit, offset)
}

func (s *AuctionService) UpdateAuction(ctx context.Context, id uint, input UpdateAuctionInput) (*model.Auction, error) {
	current, err := s.GetAuction(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Price != nil {
		updates["price"] = *input.Price
	}
	if input.BidStart != nil {
		updates["bid_start"] = *input.BidStart
	}
	if input.BidEnd != nil {
		updates["bid_end"] = *input.BidEnd
	}

	oldPhoto := ""
	if len(input.Photo) > 0 {
		photo, err := s.fileStore.SaveImage(input.Photo)
		if err != nil {
			return nil, er.New(er.InternalErrorCode, err.Error())
		}
		updates["photo"] = photo
		oldPhoto = current.Photo
	}

	if len(updates) == 0 {
		return current, nil
	}

	updated, err := s.auctionRepo.UpdateAuctionFields(ctx, id, updates)
	if err != nil {
		return nil, er.New(er.InternalErrorCode, err.Error())
	}

	if oldPhoto != "" {
		if rmErr := s.fileStore.Remove(oldPhoto); rmErr != nil && s.logger != nil {
			s.logger.Warn().Err(rmErr).Str("photo", oldPhoto).Msg("remove replaced photo failed")
		}
	}
	return updated, nil
}

func (s *AuctionService) DeleteAuction(ctx context.Context, id uint) error {
	auction, err := s.GetAuction(ctx, id)
	if err != nil {
		return err
	}

	if err := s.auctionRepo.DeleteAuction(ctx, id); err != nil {
		return er.New(er.InternalErrorCode, err.Error())
	}

	if auction.Photo != "" {
		if rmErr := s.fileStore.Remove(auction.Photo); rmErr != nil && s.logger != nil {
			s.logger.Warn().Err(rmErr).Str("photo", auction.Photo).Msg("remove deleted auction photo failed")
		}
	}
	return nil
}

func (s *AuctionService) GetHighBid(ctx context.Context, auctionID uint) (decimal.Decimal, error) {
	if s.highBids != nil {
		cached, err := s.highBids.Get(ctx, highBidCacheKey(auctionID))
		if err == nil && cached != "" {
			if amount, parseErr := decimal.NewFromString(cached); parseErr == nil {
				return amount, nil
			}
		}
	}

	auction, err := s.GetAuction(ctx, auctionID)
	if err != nil {
		return decimal.Zero, err
	}

	high := auction.Price
	bids, err := s.auctionRepo.GetBidsByAuctionID(ctx, auctionID, -1, 0)
	if err != nil {
		return decimal.Zero, er.New(er.InternalErrorCode, err.Error())
	}
	for _, bid := range bids {
		if bid.Amount.GreaterThan(high) {
			high = bid.Amount
		}
	}

	if s.highBids != nil {
		if err := s.highBids.Set(ctx, highBidCacheKey(auctionID), high.String(), highBidCacheTTL); err != nil && s.logger != nil {
			s.logger.Warn().Err(err).Uint("auction_id", auctionID).Msg("backfill high bid cache failed")
		}
	}
	return high, nil
}

var _ IAuctionService = (*AuctionService)(nil)
