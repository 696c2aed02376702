package model

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thanghienlanh/web33/internal/models"
	"github.com/thanghienlanh/web33/internal/services"
	"github.com/thanghienlanh/web33/internal/utils"
	"github.com/thanghienlanh/web33/internal/validation"
	"github.com/thanghienlanh/web33/pkg/logger"
	"go.uber.org/zap"
)

const generateImageFailedMessage = "Failed to generate image. Make sure AI service is running."

type Handler struct {
	models *services.ModelService
	images *services.ImageService
}

func NewHandler(modelService *services.ModelService, imageService *services.ImageService) *Handler {
	return &Handler{models: modelService, images: imageService}
}

// GetModels godoc
// @Summary List models
// @Description List registered models. owner takes precedence over creator; chain and network narrow the result.
// @Tags models
// @Produce json
// @Param owner query string false "Owner address (case-insensitive)"
// @Param creator query string false "Creator address (case-insensitive)"
// @Param chain query string false "ethereum or sui"
// @Param network query string false "mainnet, testnet, devnet or local"
// @Success 200 {object} ModelListResponse
// @Router /models [get]
func (h *Handler) GetModels(c *gin.Context) {
	list := h.models.FindModels(services.ModelFilter{
		Owner:   c.Query("owner"),
		Creator: c.Query("creator"),
		Chain:   models.Chain(c.Query("chain")),
		Network: models.Network(c.Query("network")),
	})
	c.JSON(http.StatusOK, ModelListResponse{Models: list, Count: len(list)})
}

// GetModelByID godoc
// @Summary Get model by internal ID
// @Tags models
// @Produce json
// @Param modelId path string true "Model ID"
// @Success 200 {object} ModelResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /models/id/{modelId} [get]
func (h *Handler) GetModelByID(c *gin.Context) {
	h.respondModel(c)(h.models.GetModelByID(c.Param("modelId")))
}

// GetModelByTokenID godoc
// @Summary Get model by Ethereum token ID
// @Tags models
// @Produce json
// @Param tokenId path string true "Token ID"
// @Success 200 {object} ModelResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /models/token/{tokenId} [get]
func (h *Handler) GetModelByTokenID(c *gin.Context) {
	h.respondModel(c)(h.models.GetModelByTokenID(c.Param("tokenId")))
}

// GetModelByObjectID godoc
// @Summary Get model by Sui object ID
// @Tags models
// @Produce json
// @Param objectId path string true "Object ID"
// @Success 200 {object} ModelResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /models/object/{objectId} [get]
func (h *Handler) GetModelByObjectID(c *gin.Context) {
	h.respondModel(c)(h.models.GetModelByObjectID(c.Param("objectId")))
}

// CreateModel godoc
// @Summary Register a model
// @Description Record a freshly minted model. network defaults to testnet, modelType to other.
// @Tags models
// @Accept json
// @Produce json
// @Param request body CreateModelRequest true "Model"
// @Success 201 {object} ModelResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /models [post]
func (h *Handler) CreateModel(c *gin.Context) {
	var req CreateModelRequest
	if !utils.BindAndValidate(c, &req, MissingFieldsMessage) {
		return
	}

	model, err := h.models.CreateModel(req.params())
	if err != nil {
		logger.Log.Error("Failed to create model", zap.Error(err))
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusCreated, ModelResponse{Model: model})
}

// UpdateModel godoc
// @Summary Update a model
// @Description Shallow-merge the body over the stored record. modelId, createdAt and updatedAt are ignored.
// @Tags models
// @Accept json
// @Produce json
// @Param modelId path string true "Model ID"
// @Success 200 {object} ModelResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /models/{modelId} [put]
func (h *Handler) UpdateModel(c *gin.Context) {
	patch := map[string]json.RawMessage{}
	if err := c.ShouldBindJSON(&patch); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse{
			Error:  utils.InvalidRequestMessage,
			Errors: []string{"Request body must be a JSON object"},
		})
		return
	}

	model, err := h.models.UpdateModel(c.Param("modelId"), patch)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, ModelResponse{Model: model})
	case errors.Is(err, services.ErrModelNotFound):
		c.JSON(http.StatusNotFound, utils.NewErrorResponse("Model not found"))
	case errors.Is(err, services.ErrInvalidUpdate):
		c.JSON(http.StatusBadRequest, utils.ErrorResponse{Error: "Invalid update", Errors: []string{err.Error()}})
	default:
		logger.Log.Error("Failed to update model", zap.String("model_id", c.Param("modelId")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(err.Error()))
	}
}

// ValidateModel godoc
// @Summary Check a model reference
// @Description Check that modelHash is an IPFS CID and modelType is set.
// @Tags models
// @Accept json
// @Produce json
// @Param request body ValidateModelRequest true "Model reference"
// @Success 200 {object} ValidateModelResponse
// @Failure 400 {object} utils.ErrorResponse
// @Router /models/validate [post]
func (h *Handler) ValidateModel(c *gin.Context) {
	var req ValidateModelRequest
	if !utils.BindAndValidate(c, &req, "") {
		return
	}

	var problems []string
	if req.ModelHash == "" {
		problems = append(problems, "modelHash is required")
	} else if err := validation.ValidateCID(req.ModelHash); err != nil {
		problems = append(problems, "modelHash must be an IPFS CID")
	}
	if req.ModelType == "" {
		problems = append(problems, "modelType is required")
	}

	if len(problems) > 0 {
		c.JSON(http.StatusOK, ValidateModelResponse{Valid: false, Message: "Model is invalid", Errors: problems})
		return
	}
	c.JSON(http.StatusOK, ValidateModelResponse{Valid: true, Message: "Model is valid"})
}

// GenerateImage godoc
// @Summary Generate an image
// @Description Proxy a generation request to the AI service and return its JSON unchanged.
// @Tags models
// @Accept json
// @Produce json
// @Param request body GenerateImageRequest true "Generation parameters"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /models/generate-image [post]
func (h *Handler) GenerateImage(c *gin.Context) {
	var req GenerateImageRequest
	if !utils.BindAndValidate(c, &req, "") {
		return
	}
	if req.Prompt == "" {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse("Prompt is required"))
		return
	}

	result, err := h.images.Generate(c.Request.Context(), services.GenerateImageRequest{
		Prompt:            req.Prompt,
		ModelType:         req.ModelType,
		Width:             req.Width,
		Height:            req.Height,
		NumInferenceSteps: req.NumInferenceSteps,
		GuidanceScale:     req.GuidanceScale,
		Seed:              req.Seed,
	})
	if err != nil {
		logger.Log.Error("AI service error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse{
			Error:   err.Error(),
			Message: generateImageFailedMessage,
		})
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", result)
}

func (h *Handler) respondModel(c *gin.Context) func(models.ModelRecord, error) {
	return func(model models.ModelRecord, err error) {
		if errors.Is(err, services.ErrModelNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse("Model not found"))
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, ModelResponse{Model: model})
	}
}
