package db

import (
	"context"
	"fmt"

	"github.com/RoyceAzure/lab/marketplace/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func GetDbConn(dbname, host, port, user, pas string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("user=%s password=%s host=%s port=%s dbname=%s sslmode=disable", user, pas, host, port, dbname)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// DbDao 結構用來管理數據庫連接和交易
type DbDao struct {
	db *gorm.DB
}

func NewDbDao(db *gorm.DB) *DbDao {
	return &DbDao{db: db}
}

func (d *DbDao) DB() *gorm.DB {
	return d.db
}

// InitMigrate 啟動時自動建立/更新資料表
func (d *DbDao) InitMigrate() error {
	return d.db.AutoMigrate(
		&model.User{},
		&model.Role{},
		&model.Product{},
		&model.Auction{},
		&model.Bid{},
		&model.Order{},
		&model.OrderItem{},
	)
}

// ExecTx 執行一個交易, fn回傳錯誤時整筆rollback
func (d *DbDao) ExecTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.db.WithContext(ctx).Transaction(fn)
}
