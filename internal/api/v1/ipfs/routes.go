package ipfs

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/thanghienlanh/web33/internal/middleware"
)

// Per-client request budgets. Both image routes share one budget.
const (
	uploadLimit   = 5
	metadataLimit = 10
	imageLimit    = 10
	limitWindow   = time.Minute
)

func RegisterRoutes(router *gin.RouterGroup, h *Handler) {
	ipfsGroup := router.Group("/ipfs")
	ipfsGroup.Use(h.RequireNode())
	{
		ipfsGroup.POST("/upload", middleware.RateLimit(h.limiter, "upload", uploadLimit, limitWindow), h.Upload)
		ipfsGroup.POST("/metadata", middleware.RateLimit(h.limiter, "metadata", metadataLimit, limitWindow), h.UploadMetadata)
		ipfsGroup.POST("/image", middleware.RateLimit(h.limiter, "image", imageLimit, limitWindow), h.UploadImage)
		ipfsGroup.POST("/image-base64", middleware.RateLimit(h.limiter, "image", imageLimit, limitWindow), h.UploadImageBase64)
		ipfsGroup.GET("/:hash", h.Get)
	}
}
