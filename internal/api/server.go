package api

import (
	"github.com/RoyceAzure/lab/marketplace/internal/api/handler"
	"github.com/RoyceAzure/lab/marketplace/internal/api/ws"
)

type Server struct {
	AuthHandler    *handler.AuthHandler
	UserHandler    *handler.UserHandler
	ProductHandler *handler.ProductHandler
	AuctionHandler *handler.AuctionHandler
	OrderHandler   *handler.OrderHandler
	RoleHandler    *handler.RoleHandler
	WSHandler      *ws.WSHandler
}

func NewServer(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	productHandler *handler.ProductHandler,
	auctionHandler *handler.AuctionHandler,
	orderHandler *handler.OrderHandler,
	roleHandler *handler.RoleHandler,
	wsHandler *ws.WSHandler,
) *Server {
	return &Server{
		AuthHandler:    authHandler,
		UserHandler:    userHandler,
		ProductHandler: productHandler,
		AuctionHandler: auctionHandler,
		OrderHandler:   orderHandler,
		RoleHandler:    roleHandler,
		WSHandler:      wsHandler,
	}
}
