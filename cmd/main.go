package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RoyceAzure/lab/marketplace/internal/api"
	"github.com/RoyceAzure/lab/marketplace/internal/api/handler"
	"github.com/RoyceAzure/lab/marketplace/internal/api/router"
	"github.com/RoyceAzure/lab/marketplace/internal/api/ws"
	"github.com/RoyceAzure/lab/marketplace/internal/appcontext"
	"github.com/RoyceAzure/lab/marketplace/internal/config"
)

// @title marketplace
// @version 1.0
// @description 商城與拍賣後端服務
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey  ApiKeyAuth
// @in                          header
// @name                        Authorization
// @description                 Description for Authorization header: Type "Bearer" followed by a space and the token. Example: "Bearer {token}"

func main() {
	app, err := appcontext.NewApplicationContext(config.GetConfig())
	if err != nil {
		log.Fatal(err)
		return
	}

	// 初始化 handler
	authHandler := handler.NewAuthHandler(app.AuthService, app.UserService)
	userHandler := handler.NewUserHandler(app.UserService, app.RoleService)
	productHandler := handler.NewProductHandler(app.ProductService, app.UserService)
	auctionHandler := handler.NewAuctionHandler(app.AuctionService, app.BidService, app.UserService)
	orderHandler := handler.NewOrderHandler(app.OrderService, app.UserService)
	roleHandler := handler.NewRoleHandler(app.RoleService, app.UserService)

	hub := ws.NewHub(app.BidService, app.Logger)
	wsHandler := ws.NewWSHandler(hub, app.TokenMaker, app.Logger)

	server := api.NewServer(authHandler, userHandler, productHandler, auctionHandler, orderHandler, roleHandler, wsHandler)

	// 設置路由
	r := router.SetupRouter(server, app.TokenMaker, app.Cf.StaticDir, app.Logger)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", app.Cf.ServerPort),
		Handler: r,
	}

	// 設置訊號監聽
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	shutDownCompleted := make(chan struct{}, 1)
	go func() {
		<-sigChan
		log.Println("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}

		if err := app.Shutdown(shutdownCtx); err != nil {
			log.Printf("Application shutdown error: %v", err)
		}

		shutDownCompleted <- struct{}{}
	}()

	// 啟動服務
	log.Printf("Server starting on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal(err)
	}
	<-shutDownCompleted
	log.Printf("closed completed")
}
