package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/marketplace/internal/infra/producer"
	"github.com/RoyceAzure/lab/marketplace/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/marketplace/internal/model"
	"github.com/RoyceAzure/lab/marketplace/pkg/cache"
	"github.com/RoyceAzure/lab/marketplace/pkg/er"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const highBidCacheTTL = 24 * time.Hour

func highBidCacheKey(auctionID uint) string {
	return fmt.Sprintf("auction:%d:highbid", auctionID)
}

type IBidService interface {
	// PlaceBid 寫入出價並回傳帶有出價者資訊的完整紀錄
	// 錯誤:
	//   - er.NotFoundCode 404: 拍賣不存在
	PlaceBid(ctx context.Context, auctionID, userID uint, amount decimal.Decimal) (*model.Bid, error)
	GetBidsByAuctionID(ctx context.Context, auctionID uint, limit, offset int) ([]model.Bid, error)
}

type BidService struct {
	bidRepo     db.IBidRepository
	auctionRepo db.IAuctionRepository
	highBids    cache.Cache
	evtProducer producer.IEventProducer
	logger      *zerolog.Logger
}

// highBids與evtProducer允許nil, 未設定redis/kafka時退化為純DB模式
func NewBidService(bidRepo db.IBidRepository, auctionRepo db.IAuctionRepository, highBids cache.Cache, evtProducer producer.IEventProducer, logger *zerolog.Logger) IBidService {
	if bidRepo == nil || auctionRepo == nil {
		panic("bid service missing required dependency repo")
	}
	if evtProducer == nil {
		evtProducer = producer.NoopProducer{}
	}
	return &BidService{
		bidRepo:     bidRepo,
		auctionRepo: auctionRepo,
		highBids:    highBids,
		evtProducer: evtProducer,
		logger:      logger,
	}
}

func (s *BidService) PlaceBid(ctx context.Context, auctionID, userID uint, amount decimal.Decimal) (*model.Bid, error) {
	if _, err := s.auctionRepo.GetAuctionByID(ctx, auctionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, er.New(er.NotFoundCode, "auction not found")
		}
		return nil, er.New(er.InternalErrorCode, err.Error())
	}

	bid := &model.Bid{
		Amount:    amount,
		Time:      time.Now().UTC(),
		UserID:    userID,
		AuctionID: auctionID,
	}
	if err := s.bidRepo.CreateBid(ctx, bid); err != nil {
		return nil, er.New(er.InternalErrorCode, err.Error())
	}

	// 重新把bidder資料讀回來, 廣播時要帶出價者名稱
	full, err := s.bidRepo.GetBidByID(ctx, bid.ID)
	if err != nil {
		return nil, er.New(er.InternalErrorCode, err.Error())
	}

	s.refreshHighBid(ctx, auctionID, amount)

	if evtErr := s.evtProducer.Publish(ctx, producer.Event{
		Name:       producer.EventBidPlaced,
		Key:        fmt.Sprintf("auction-%d", auctionID),
		OccurredAt: time.Now().UTC(),
		Payload:    full,
	}); evtErr != nil && s.logger != nil {
		s.logger.Warn().Err(evtErr).Uint("bid_id", full.ID).Msg("publish bid placed event failed")
	}

	return full, nil
}

// refreshHighBid 是best effort, cache掛掉不影響出價本身
func (s *BidService) refreshHighBid(ctx context.Context, auctionID uint, amount decimal.Decimal) {
	if s.highBids == nil {
		return
	}

	key := highBidCacheKey(auctionID)
	cached, err := s.highBids.Get(ctx, key)
	if err == nil && cached != "" {
		current, parseErr := decimal.NewFromString(cached)
		if parseErr == nil && current.GreaterThanOrEqual(amount) {
			return
		}
	}

	if err := s.highBids.Set(ctx, key, amount.String(), highBidCacheTTL); err != nil && s.logger != nil {
		s.logger.Warn().Err(err).Uint("auction_id", auctionID).Msg("refresh high bid cache failed")
	}
}

func (s *BidService) GetBidsByAuctionID(ctx context.Context, auctionID uint, limit, offset int) ([]model.Bid, error) {
	return s.auctionRepo.GetBidsByAuctionID(ctx, auctionID, limit, offset)
}

var _ IBidService = (*BidService)(nil)
