package server

import (
	"auction-market/internal/metrics"
	handler "auction-market/services/auction/handler"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures all Gin routes for the application
func SetupRouter(auctions handler.AuctionServiceInterface, accounts handler.AccountServiceInterface) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging
	router.Use(metrics.Middleware)

	auctionHandler := handler.NewAuctionHandler(auctions)
	accountHandler := handler.NewAccountHandler(accounts)
	requireAuth := AuthMiddleware(accounts)

	router.GET("/metrics", metrics.Handler())

	router.POST("/register", accountHandler.RegisterHandler)
	router.POST("/login", accountHandler.LoginHandler)

	categories := router.Group("/categories")
	{
		categories.GET("", auctionHandler.ListCategoriesHandler)
		categories.GET("/:category_id/listings", auctionHandler.ListByCategoryHandler)
	}

	listings := router.Group("/listings")
	{
		listings.GET("", auctionHandler.ListActiveHandler)
		listings.GET("/:listing_id", auctionHandler.GetListingHandler)
		listings.POST("", requireAuth, auctionHandler.CreateListingHandler)
		listings.DELETE("/:listing_id", requireAuth, auctionHandler.DeleteListingHandler)
		listings.POST("/:listing_id/bids", requireAuth, auctionHandler.PlaceBidHandler)
		listings.POST("/:listing_id/close", requireAuth, auctionHandler.CloseListingHandler)
		listings.POST("/:listing_id/comments", requireAuth, auctionHandler.AddCommentHandler)
	}

	watchlist := router.Group("/watchlist", requireAuth)
	{
		watchlist.GET("", auctionHandler.ListWatchlistHandler)
		watchlist.POST("/:listing_id", auctionHandler.ToggleWatchHandler)
	}

	users := router.Group("/users", requireAuth)
	{
		users.DELETE("/me", accountHandler.DeleteMeHandler)
	}

	return router
}
