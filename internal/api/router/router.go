package router

import (
	"net/http"

	_ "github.com/RoyceAzure/lab/marketplace/docs"
	"github.com/RoyceAzure/lab/marketplace/internal/api"
	m "github.com/RoyceAzure/lab/marketplace/internal/api/middleware"
	"github.com/RoyceAzure/lab/marketplace/internal/constants"
	"github.com/RoyceAzure/lab/marketplace/internal/infra/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
)

func SetupRouter(server *api.Server, tokenMaker auth.Maker, staticDir string, logger *zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// 全局中間件
	r.Use(m.RequestIdMiddleware)
	r.Use(m.AuthPayloadMiddleware(tokenMaker))
	r.Use(middleware.RealIP)
	r.Use(m.LoggerMiddleware(logger))

	// Swagger 文檔
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/", http.StatusMovedPermanently)
	})
	r.Get("/swagger/*", httpSwagger.Handler())

	// 靜態圖片
	fileServer := http.StripPrefix(constants.StaticURLPrefix+"/", http.FileServer(http.Dir(staticDir)))
	r.Get(constants.StaticURLPrefix+"/*", fileServer.ServeHTTP)

	// 拍賣即時出價
	r.Get("/ws", server.WSHandler.ServeWS)

	// API 路由
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", server.AuthHandler.Login)
			r.Post("/register", server.AuthHandler.Register)
		})

		r.Route("/users", func(r chi.Router) {
			r.With(m.AuthMiddleware).Get("/", server.UserHandler.ListUsers)
			r.With(m.AuthMiddleware).Get("/{id}", server.UserHandler.GetProfile)
			r.With(m.AuthMiddleware).Put("/{id}", server.UserHandler.UpdateProfile)
			r.With(m.AuthMiddleware).Post("/{id}/roles", server.UserHandler.GrantRole)
			r.Get("/{id}/products", server.ProductHandler.ListUserProducts)
			r.Get("/{id}/auctions", server.AuctionHandler.ListUserAuctions)
			r.With(m.AuthMiddleware).Get("/{id}/orders", server.OrderHandler.ListUserOrders)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", server.ProductHandler.ListProducts)
			r.Get("/{id}", server.ProductHandler.GetProduct)
			r.With(m.AuthMiddleware).Post("/", server.ProductHandler.CreateProduct)
			r.With(m.AuthMiddleware).Put("/{id}", server.ProductHandler.UpdateProduct)
			r.With(m.AuthMiddleware).Put("/{id}/photo", server.ProductHandler.UploadPhoto)
			r.With(m.AuthMiddleware).Delete("/{id}", server.ProductHandler.DeleteProduct)
		})

		r.Route("/auctions", func(r chi.Router) {
			r.Get("/", server.AuctionHandler.ListAuctions)
			r.Get("/{id}", server.AuctionHandler.GetAuction)
			r.Get("/{id}/bids", server.AuctionHandler.ListBids)
			r.Get("/{id}/high-bid", server.AuctionHandler.GetHighBid)
			r.With(m.AuthMiddleware).Post("/", server.AuctionHandler.CreateAuction)
			r.With(m.AuthMiddleware).Put("/{id}", server.AuctionHandler.UpdateAuction)
			r.With(m.AuthMiddleware).Put("/{id}/photo", server.AuctionHandler.UploadPhoto)
			r.With(m.AuthMiddleware).Delete("/{id}", server.AuctionHandler.DeleteAuction)
		})

		r.Route("/orders", func(r chi.Router) {
			r.With(m.AuthMiddleware).Post("/", server.OrderHandler.CreateOrder)
			r.With(m.AuthMiddleware).Get("/{id}", server.OrderHandler.GetOrder)
			r.With(m.AuthMiddleware).Put("/{id}/status", server.OrderHandler.UpdateOrderStatus)
		})

		r.Route("/order-items", func(r chi.Router) {
			r.With(m.AuthMiddleware).Put("/{id}/status", server.OrderHandler.UpdateOrderItemStatus)
		})

		r.Route("/roles", func(r chi.Router) {
			r.With(m.AuthMiddleware).Post("/", server.RoleHandler.CreateRole)
			r.With(m.AuthMiddleware).Get("/{value}", server.RoleHandler.GetRole)
		})
	})

	return r
}
