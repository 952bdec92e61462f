package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auction-market/internal/auth"
	auction "auction-market/internal/auctionService"
	"auction-market/internal/cache"
	"auction-market/internal/config"
	"auction-market/internal/database"
	"auction-market/internal/repository"
	"auction-market/internal/server"
	"auction-market/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.Fatal("failed to load configuration", map[string]any{"error": err.Error()})
	}
	utils.SetLevel(cfg.LogLevel)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		utils.Fatal("failed to open database", map[string]any{"error": err.Error()})
	}
	defer database.Close(db)

	repo := repository.NewGormRepo(db)

	redisClient := cache.NewRedisClient(cfg.RedisURL)
	if redisClient != nil {
		defer redisClient.Close()
	}
	categoryCache := cache.NewCategoryCache(redisClient, cfg.CategoryCacheTTL)

	if err := seedCategories(context.Background(), db, categoryCache, cfg.CategoryNames()); err != nil {
		utils.Fatal("failed to seed categories", map[string]any{"error": err.Error()})
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	auctionSvc := auction.NewAuctionService(repo, categoryCache)
	accountSvc := auction.NewAccountService(repo, tokens)

	router := server.SetupRouter(auctionSvc, accountSvc)

	srv := &http.Server{
		Addr:              cfg.Address(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		utils.Info("starting auction server", map[string]any{"addr": srv.Addr, "env": cfg.Env})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Error("server stopped unexpectedly", map[string]any{"error": err.Error()})
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Error("graceful shutdown failed", map[string]any{"error": err.Error()})
	}
	utils.Info("server stopped", nil)
}

// seedCategories inserts the configured categories and drops any cached list
// so the next read sees the seeded rows.
func seedCategories(ctx context.Context, db *gorm.DB, categories *cache.CategoryCache, names []string) error {
	if err := database.SeedCategories(ctx, db, names); err != nil {
		return err
	}
	categories.Invalidate(ctx)
	return nil
}
