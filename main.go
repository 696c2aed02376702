package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/thanghienlanh/web33/config"
	"github.com/thanghienlanh/web33/internal/api"
	"github.com/thanghienlanh/web33/internal/database"
	"github.com/thanghienlanh/web33/internal/ratelimit"
	"github.com/thanghienlanh/web33/internal/services"
	"github.com/thanghienlanh/web33/pkg/logger"
	"go.uber.org/zap"
)

// @title TríTuệMarket API
// @version 1.0
// @description Off-chain registry for AI models minted as NFTs, their transactions and IPFS content.

// @host localhost:3001
// @BasePath /api

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := logger.InitLogger(&logger.Config{
		Level:      cfg.LogLevel,
		Filename:   cfg.LogFilename,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAge,
		Compress:   cfg.LogCompress,
	}); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	gin.SetMode(cfg.GinMode)

	if err := run(cfg); err != nil {
		logger.Log.Error("Server stopped with error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	persisters, err := database.OpenPersisters(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := persisters.Close(); err != nil {
			logger.Log.Warn("Failed to close record store", zap.Error(err))
		}
	}()

	// Both stores are fully loaded before the listener accepts requests.
	modelService := services.NewModelService(persisters.Models)
	if err := modelService.Load(); err != nil {
		return err
	}
	transactionService := services.NewTransactionService(persisters.Transactions)
	if err := transactionService.Load(); err != nil {
		return err
	}

	limiter, sweeper, err := newLimiter(cfg)
	if err != nil {
		return err
	}
	if sweeper != nil {
		defer sweeper.Stop()
	}

	router, err := api.NewRouter(api.Dependencies{
		Config:       cfg,
		Models:       modelService,
		Transactions: transactionService,
		IPFS:         services.NewIPFSService(cfg.IPFSAPIURL, cfg.UpstreamTimeout),
		Images:       services.NewImageService(cfg.AIServiceURL, cfg.UpstreamTimeout),
		Limiter:      limiter,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Log.Info("Server running",
			zap.String("addr", srv.Addr),
			zap.String("store_backend", cfg.StoreBackend),
			zap.String("rate_limit_backend", cfg.RateLimitBackend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newLimiter builds the limiter named by RATE_LIMIT_BACKEND. The memory
// limiter comes with a sweeper the caller must stop.
func newLimiter(cfg *config.Config) (ratelimit.Limiter, *cron.Cron, error) {
	switch cfg.RateLimitBackend {
	case "redis":
		client, err := database.ConnectRedis(cfg)
		if err != nil {
			return nil, nil, err
		}
		return ratelimit.NewRedisLimiter(client), nil, nil
	case "memory", "":
		limiter := ratelimit.NewMemoryLimiter()
		sweeper, err := ratelimit.StartSweeper(limiter, cfg.RateLimitSweepInterval)
		if err != nil {
			return nil, nil, err
		}
		return limiter, sweeper, nil
	default:
		return nil, nil, errors.New("unknown RATE_LIMIT_BACKEND " + cfg.RateLimitBackend + " (want memory or redis)")
	}
}
