package appcontext

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/RoyceAzure/lab/marketplace/internal/config"
	"github.com/RoyceAzure/lab/marketplace/internal/infra/auth"
	"github.com/RoyceAzure/lab/marketplace/internal/infra/producer"
	"github.com/RoyceAzure/lab/marketplace/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/marketplace/internal/infra/storage"
	"github.com/RoyceAzure/lab/marketplace/internal/service"
	"github.com/RoyceAzure/lab/marketplace/pkg/cache"
	rediscache "github.com/RoyceAzure/lab/marketplace/pkg/cache/redis"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type ApplicationContext struct {
	Cf     *config.Config
	Logger *zerolog.Logger

	DbConn *gorm.DB
	DbDao  *db.DbDao

	TokenMaker    auth.Maker
	FileStore     storage.IFileStore
	HighBidCache  cache.Cache
	EventProducer producer.IEventProducer

	UserService    service.IUserService
	AuthService    service.IAuthService
	RoleService    service.IRoleService
	ProductService service.IProductService
	AuctionService service.IAuctionService
	BidService     service.IBidService
	OrderService   service.IOrderService
}

func NewApplicationContext(cf *config.Config) (*ApplicationContext, error) {
	app := ApplicationContext{
		Cf: cf,
	}
	if err := app.Init(); err != nil {
		return nil, err
	}
	return &app, nil
}

func (app *ApplicationContext) Init() error {
	app.setUpLogger()

	if err := app.setUpDbConn(); err != nil {
		return err
	}
	if err := app.setUpDbDao(); err != nil {
		return err
	}
	if err := app.setUpTokenMaker(); err != nil {
		return err
	}
	if err := app.setUpFileStore(); err != nil {
		return err
	}
	app.setUpHighBidCache()
	app.setUpEventProducer()

	if err := app.setUpServices(); err != nil {
		return err
	}

	// 初次啟動要有ADMIN/USER兩個角色, 重複啟動是no-op
	log.Printf("seeding default roles...")
	if err := app.RoleService.SeedDefaultRoles(context.Background()); err != nil {
		return err
	}
	log.Printf("seeding default roles successed")

	return nil
}

func (app *ApplicationContext) setUpLogger() {
	logger := zerolog.New(os.Stdout).With().
		Timestamp().
		Str("module", app.Cf.ModulerName).
		Logger()
	app.Logger = &logger
}

func (app *ApplicationContext) setUpDbConn() error {
	log.Printf("Start setup database connection")
	conn, err := db.GetDbConn(app.Cf.DbName, app.Cf.DbHost, app.Cf.DbPort, app.Cf.DbUser, app.Cf.DbPas)
	if err != nil {
		return err
	}
	app.DbConn = conn
	log.Printf("Finish setup database connection")
	return nil
}

func (app *ApplicationContext) setUpDbDao() error {
	log.Printf("Start setup database DAO")
	app.DbDao = db.NewDbDao(app.DbConn)
	if err := app.DbDao.InitMigrate(); err != nil {
		return err
	}
	log.Printf("Finish setup database DAO")
	return nil
}

func (app *ApplicationContext) setUpTokenMaker() error {
	log.Printf("Start setup token maker")
	tokenMaker, err := auth.NewJWTMaker(app.Cf.AuthTokenKey)
	if err != nil {
		return err
	}
	app.TokenMaker = tokenMaker
	log.Printf("Finish setup token maker")
	return nil
}

func (app *ApplicationContext) setUpFileStore() error {
	log.Printf("Start setup file store")
	fileStore, err := storage.NewLocalFileStore(app.Cf.StaticDir)
	if err != nil {
		return err
	}
	app.FileStore = fileStore
	log.Printf("Finish setup file store")
	return nil
}

// redis沒設定就不用cache, 最高出價會退化成掃DB
func (app *ApplicationContext) setUpHighBidCache() {
	if app.Cf.RedisAddr == "" {
		log.Printf("redis address not set, high bid cache disabled")
		return
	}

	client, err := rediscache.GetRedisClient(app.Cf.RedisAddr, rediscache.WithPassword(app.Cf.RedisPas))
	if err != nil {
		log.Printf("setup redis client failed, high bid cache disabled: %v", err)
		return
	}
	app.HighBidCache = rediscache.NewRedisCache(client, app.Cf.ModulerName)
	log.Printf("Finish setup high bid cache")
}

// kafka沒設定就用noop producer, 事件直接丟棄
func (app *ApplicationContext) setUpEventProducer() {
	if app.Cf.KafkaBrokers == "" || app.Cf.KafkaTopic == "" {
		log.Printf("kafka not set, event producer disabled")
		app.EventProducer = producer.NoopProducer{}
		return
	}

	brokers := strings.Split(app.Cf.KafkaBrokers, ",")
	app.EventProducer = producer.NewKafkaEventProducer(brokers, app.Cf.KafkaTopic)
	log.Printf("Finish setup kafka event producer")
}

func (app *ApplicationContext) setUpServices() error {
	log.Printf("Start setup services")

	userRepo := db.NewUserRepo(app.DbDao)
	roleRepo := db.NewRoleRepo(app.DbDao)
	productRepo := db.NewProductRepo(app.DbDao)
	auctionRepo := db.NewAuctionRepo(app.DbDao)
	bidRepo := db.NewBidRepo(app.DbDao)
	orderRepo := db.NewOrderRepo(app.DbDao)

	hasher := auth.BcryptHasher{}

	app.RoleService = service.NewRoleService(roleRepo)
	app.UserService = service.NewUserService(userRepo, roleRepo, hasher, app.FileStore, app.Logger)
	app.AuthService = service.NewAuthService(userRepo, hasher, app.TokenMaker)
	app.ProductService = service.NewProductService(productRepo, app.FileStore, app.Logger)
	app.AuctionService = service.NewAuctionService(auctionRepo, app.FileStore, app.HighBidCache, app.Logger)
	app.BidService = service.NewBidService(bidRepo, auctionRepo, app.HighBidCache, app.EventProducer, app.Logger)
	app.OrderService = service.NewOrderService(orderRepo, productRepo, app.EventProducer, app.Logger)

	log.Printf("Finish setup services")
	return nil
}

func (app *ApplicationContext) Shutdown(ctx context.Context) error {
	log.Printf("Start application shutdown")

	done := make(chan error)
	go func() {
		defer close(done)

		if app.EventProducer != nil {
			log.Printf("Closing event producer...")
			if err := app.EventProducer.Close(); err != nil {
				//有錯誤不結束流程
				log.Printf("event producer shutdown error: %v", err)
			}
		}

		if app.DbConn != nil {
			log.Printf("Closing database connection...")
			if sqlDB, err := app.DbConn.DB(); err == nil {
				sqlDB.Close()
			}
		}

		log.Printf("Application shutdown complete")
		done <- nil
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("shutdown timeout: %v", ctx.Err())
	}
}
