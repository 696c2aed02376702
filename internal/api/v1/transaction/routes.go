package transaction

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup, h *Handler) {
	txGroup := router.Group("/transactions")
	{
		txGroup.GET("", h.GetTransactions)
		txGroup.GET("/:txId", h.GetTransactionByID)
		txGroup.GET("/hash/:txHash", h.GetTransactionByHash)
		txGroup.POST("", h.CreateTransaction)
		txGroup.PUT("/:txId/status", h.UpdateTransactionStatus)
	}
}
