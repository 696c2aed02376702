package model

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup, h *Handler) {
	modelGroup := router.Group("/models")
	{
		modelGroup.GET("", h.GetModels)
		modelGroup.GET("/id/:modelId", h.GetModelByID)
		modelGroup.GET("/token/:tokenId", h.GetModelByTokenID)
		modelGroup.GET("/object/:objectId", h.GetModelByObjectID)
		modelGroup.POST("", h.CreateModel)
		modelGroup.PUT("/:modelId", h.UpdateModel)
		modelGroup.POST("/validate", h.ValidateModel)
		modelGroup.POST("/generate-image", h.GenerateImage)
	}
}
