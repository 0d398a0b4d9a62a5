package db

import (
	"context"

	"github.com/RoyceAzure/lab/marketplace/internal/model"
)

type IBidRepository interface {
	CreateBid(ctx context.Context, bid *model.Bid) error
	GetBidByID(ctx context.Context, id uint) (*model.Bid, error)
}

type BidRepo struct {
	dbDao *DbDao
}

func NewBidRepo(dbDao *DbDao) *BidRepo {
	return &BidRepo{dbDao: dbDao}
}

var _ IBidRepository = (*BidRepo)(nil)

func (r *BidRepo) CreateBid(ctx context.Context, bid *model.Bid) error {
	return r.dbDao.db.WithContext(ctx).Create(bid).Error
}

// GetBidByID 連同出價者一起回傳, 廣播前要還原denormalized資料
func (r *BidRepo) GetBidByID(ctx context.Context, id uint) (*model.Bid, error) {
	var bid model.Bid
	err := r.dbDao.db.WithContext(ctx).Preload("Bidder").First(&bid, id).Error
	if err != nil {
		return nil, err
	}
	return &bid, nil
}
