package mocks

import (
	"github.com/RoyceAzure/lab/marketplace/internal/infra/producer"
	"github.com/RoyceAzure/lab/marketplace/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/marketplace/internal/infra/storage"
	"github.com/RoyceAzure/lab/marketplace/pkg/cache"
)

var (
	_ db.IUserRepository      = (*MockUserRepository)(nil)
	_ db.IRoleRepository      = (*MockRoleRepository)(nil)
	_ db.IProductRepository   = (*MockProductRepository)(nil)
	_ db.IAuctionRepository   = (*MockAuctionRepository)(nil)
	_ db.IBidRepository       = (*MockBidRepository)(nil)
	_ db.IOrderRepository     = (*MockOrderRepository)(nil)
	_ producer.IEventProducer = (*MockEventProducer)(nil)
	_ storage.IFileStore      = (*MockFileStore)(nil)
	_ cache.Cache             = (*MockCache)(nil)
)
