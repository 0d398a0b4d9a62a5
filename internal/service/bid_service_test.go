package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/marketplace/internal/infra/producer"
	"github.com/RoyceAzure/lab/marketplace/internal/mocks"
	"github.com/RoyceAzure/lab/marketplace/internal/model"
	"github.com/RoyceAzure/lab/marketplace/internal/service"
	"github.com/RoyceAzure/lab/marketplace/pkg/er"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestPlaceBidUnknownAuction(t *testing.T) {
	bidRepo := new(mocks.MockBidRepository)
	auctionRepo := new(mocks.MockAuctionRepository)
	auctionRepo.On("GetAuctionByID", mock.Anything, uint(404)).Return(nil, gorm.ErrRecordNotFound)

	svc := service.NewBidService(bidRepo, auctionRepo, nil, nil, nil)
	_, err := svc.PlaceBid(context.Background(), 404, 9, decimal.RequireFromString("10"))

	require.Error(t, err)
	require.Equal(t, er.NotFoundCode, er.CodeOf(err))
	bidRepo.AssertNotCalled(t, "CreateBid", mock.Anything, mock.Anything)
}

func TestPlaceBidPersistsAndReloadsBidder(t *testing.T) {
	bidRepo := new(mocks.MockBidRepository)
	auctionRepo := new(mocks.MockAuctionRepository)
	evtProducer := new(mocks.MockEventProducer)

	auctionRepo.On("GetAuctionByID", mock.Anything, uint(5)).
		Return(&model.Auction{ID: 5, UserID: 2}, nil)
	bidRepo.On("CreateBid", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			args.Get(1).(*model.Bid).ID = 33
		}).
		Return(nil)
	bidRepo.On("GetBidByID", mock.Anything, uint(33)).
		Return(&model.Bid{
			ID:        33,
			Amount:    decimal.RequireFromString("10"),
			UserID:    9,
			Bidder:    &model.User{ID: 9, Name: "alice"},
			AuctionID: 5,
		}, nil)
	evtProducer.On("Publish", mock.Anything, mock.MatchedBy(func(evt producer.Event) bool {
		return evt.Name == producer.EventBidPlaced
	})).Return(nil)

	svc := service.NewBidService(bidRepo, auctionRepo, nil, evtProducer, nil)
	bid, err := svc.PlaceBid(context.Background(), 5, 9, decimal.RequireFromString("10"))

	require.NoError(t, err)
	require.Equal(t, uint(33), bid.ID)
	require.NotNil(t, bid.Bidder)
	require.Equal(t, "alice", bid.Bidder.Name)
	evtProducer.AssertExpectations(t)
}

func TestPlaceBidRefreshesHighBidCache(t *testing.T) {
	bidRepo := new(mocks.MockBidRepository)
	auctionRepo := new(mocks.MockAuctionRepository)
	highBids := new(mocks.MockCache)

	auctionRepo.On("GetAuctionByID", mock.Anything, uint(5)).
		Return(&model.Auction{ID: 5, UserID: 2}, nil)
	bidRepo.On("CreateBid", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			args.Get(1).(*model.Bid).ID = 33
		}).
		Return(nil)
	bidRepo.On("GetBidByID", mock.Anything, uint(33)).
		Return(&model.Bid{ID: 33, Amount: decimal.RequireFromString("50"), AuctionID: 5}, nil)

	highBids.On("Get", mock.Anything, "auction:5:highbid").Return("40", nil)
	highBids.On("Set", mock.Anything, "auction:5:highbid", "50", 24*time.Hour).Return(nil)

	svc := service.NewBidService(bidRepo, auctionRepo, highBids, nil, nil)
	_, err := svc.PlaceBid(context.Background(), 5, 9, decimal.RequireFromString("50"))

	require.NoError(t, err)
	highBids.AssertExpectations(t)
}

func TestPlaceBidKeepsHigherCachedBid(t *testing.T) {
	bidRepo := new(mocks.MockBidRepository)
	auctionRepo := new(mocks.MockAuctionRepository)
	highBids := new(mocks.MockCache)

	auctionRepo.On("GetAuctionByID", mock.Anything, uint(5)).
		Return(&model.Auction{ID: 5, UserID: 2}, nil)
	bidRepo.On("CreateBid", mock.Anything, mock.Anything).Return(nil)
	bidRepo.On("GetBidByID", mock.Anything, mock.Anything).
		Return(&model.Bid{ID: 34, Amount: decimal.RequireFromString("30"), AuctionID: 5}, nil)

	// 目前沒有任何出價規則限制, 低於最高價的出價也會落地, 但不應蓋掉cache
	highBids.On("Get", mock.Anything, "auction:5:highbid").Return("40", nil)

	svc := service.NewBidService(bidRepo, auctionRepo, highBids, nil, nil)
	_, err := svc.PlaceBid(context.Background(), 5, 9, decimal.RequireFromString("30"))

	require.NoError(t, err)
	highBids.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPlaceBidCacheFailureDoesNotFailBid(t *testing.T) {
	bidRepo := new(mocks.MockBidRepository)
	auctionRepo := new(mocks.MockAuctionRepository)
	highBids := new(mocks.MockCache)

	auctionRepo.On("GetAuctionByID", mock.Anything, uint(5)).
		Return(&model.Auction{ID: 5, UserID: 2}, nil)
	bidRepo.On("CreateBid", mock.Anything, mock.Anything).Return(nil)
	bidRepo.On("GetBidByID", mock.Anything, mock.Anything).
		Return(&model.Bid{ID: 35, Amount: decimal.RequireFromString("60"), AuctionID: 5}, nil)
	highBids.On("Get", mock.Anything, mock.Anything).Return("", errors.New("redis down"))
	highBids.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down"))

	svc := service.NewBidService(bidRepo, auctionRepo, highBids, nil, nil)
	_, err := svc.PlaceBid(context.Background(), 5, 9, decimal.RequireFromString("60"))

	require.NoError(t, err)
}
