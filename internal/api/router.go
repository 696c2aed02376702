package api

import (
	"fmt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/thanghienlanh/web33/config"
	ipfsRoutes "github.com/thanghienlanh/web33/internal/api/v1/ipfs"
	modelRoutes "github.com/thanghienlanh/web33/internal/api/v1/model"
	transactionRoutes "github.com/thanghienlanh/web33/internal/api/v1/transaction"
	"github.com/thanghienlanh/web33/internal/metrics"
	"github.com/thanghienlanh/web33/internal/middleware"
	"github.com/thanghienlanh/web33/internal/ratelimit"
	"github.com/thanghienlanh/web33/internal/services"
)

// Dependencies are the loaded services the HTTP surface is built on.
type Dependencies struct {
	Config       *config.Config
	Models       *services.ModelService
	Transactions *services.TransactionService
	IPFS         *services.IPFSService
	Images       *services.ImageService
	Limiter      ratelimit.Limiter
}

// NewRouter fails only when TrustedProxies holds an entry that is neither an
// IP nor a CIDR.
func NewRouter(deps Dependencies) (*gin.Engine, error) {
	router := gin.New()
	// With no trusted proxies ClientIP is the socket peer, so forwarded
	// headers cannot move a client into a fresh rate-limit bucket.
	if err := router.SetTrustedProxies(deps.Config.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	router.Use(gin.Recovery(), middleware.Logger(), middleware.Metrics())
	router.Use(cors.New(corsConfig(deps.Config.CORSAllowOrigins)))

	router.GET("/health", Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("/api")
	{
		modelRoutes.RegisterRoutes(api, modelRoutes.NewHandler(deps.Models, deps.Images))
		transactionRoutes.RegisterRoutes(api, transactionRoutes.NewHandler(deps.Transactions))
		ipfsRoutes.RegisterRoutes(api, ipfsRoutes.NewHandler(deps.IPFS, deps.Limiter))
	}

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        300, // Maximum age for preflight requests
	}
	for _, origin := range origins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
