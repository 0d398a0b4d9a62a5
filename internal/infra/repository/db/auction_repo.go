package db

import (
	"context"

	"github.com/RoyceAzure/lab/marketplace/internal/model"
	"gorm.io/gorm"
)

type IAuctionRepository interface {
	CreateAuction(ctx context.Context, auction *model.Auction) error
	GetAuctionByID(ctx context.Context, id uint) (*model.Auction, error)
	GetAllAuctions(ctx context.Context, limit, offset int) ([]model.Auction, error)
	GetAuctionsByUserID(ctx context.Context, userID uint, limit, offset int) ([]model.Auction, error)
	UpdateAuctionFields(ctx context.Context, id uint, updates map[string]any) (*model.Auction, error)
	DeleteAuction(ctx context.Context, id uint) error
	GetBidsByAuctionID(ctx context.Context, auctionID uint, limit, offset int) ([]model.Bid, error)
}

type AuctionRepo struct {
	dbDao *DbDao
}

func NewAuctionRepo(dbDao *DbDao) *AuctionRepo {
	return &AuctionRepo{dbDao: dbDao}
}

var _ IAuctionRepository = (*AuctionRepo)(nil)

func (r *AuctionRepo) CreateAuction(ctx context.Context, auction *model.Auction) error {
	return r.dbDao.db.WithContext(ctx).Create(auction).Error
}

func (r *AuctionRepo) GetAuctionByID(ctx context.Context, id uint) (*model.Auction, error) {
	var auction model.Auction
	err := r.dbDao.db.WithContext(ctx).Preload("Seller").First(&auction, id).Error
	if err != nil {
		return nil, err
	}
	return &auction, nil
}

func (r *AuctionRepo) GetAllAuctions(ctx context.Context, limit, offset int) ([]model.Auction, error) {
	var auctions []model.Auction
	err := r.dbDao.db.WithContext(ctx).Preload("Seller").Limit(limit).Offset(offset).Find(&auctions).Error
	return auctions, err
}

func (r *AuctionRepo) GetAuctionsByUserID(ctx context.Context, userID uint, limit, offset int) ([]model.Auction, error) {
	var auctions []model.Auction
	err := r.dbDao.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Limit(limit).Offset(offset).
		Find(&auctions).Error
	return auctions, err
}

func (r *AuctionRepo) UpdateAuctionFields(ctx context.Context, id uint, updates map[string]any) (*model.Auction, error) {
	res := r.dbDao.db.WithContext(ctx).Model(&model.Auction{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetAuctionByID(ctx, id)
}

func (r *AuctionRepo) DeleteAuction(ctx context.Context, id uint) error {
	return r.dbDao.db.WithContext(ctx).Delete(&model.Auction{}, id).Error
}

// GetBidsByAuctionID 依出價時間排序回傳拍賣的所有出價
func (r *AuctionRepo) GetBidsByAuctionID(ctx context.Context, auctionID uint, limit, offset int) ([]model.Bid, error) {
	var bids []model.Bid
	err := r.dbDao.db.WithContext(ctx).
		Preload("Bidder").
		Where("auction_id = ?", auctionID).
		Order("time ASC").
		Limit(limit).Offset(offset).
		Find(&bids).Error
	return bids, err
}
