package ipfs

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/thanghienlanh/web33/internal/ratelimit"
	"github.com/thanghienlanh/web33/internal/services"
	"github.com/thanghienlanh/web33/internal/utils"
	"github.com/thanghienlanh/web33/internal/validation"
	"github.com/thanghienlanh/web33/pkg/logger"
	"go.uber.org/zap"
)

var dataURLPrefix = regexp.MustCompile(`^data:image/\w+;base64,`)

type Handler struct {
	node    *services.IPFSService
	limiter ratelimit.Limiter
}

func NewHandler(node *services.IPFSService, limiter ratelimit.Limiter) *Handler {
	return &Handler{node: node, limiter: limiter}
}

// RequireNode short-circuits every IPFS route with 503 when no node is configured.
func (h *Handler) RequireNode() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.node.Enabled() {
			utils.AbortWithError(c, http.StatusServiceUnavailable, unavailable())
			return
		}
		c.Next()
	}
}

// Upload godoc
// @Summary Upload a model file
// @Description Pin a model file (.pth .pt .h5 .pb .onnx .pkl, at most 100MB). Limited to 5 requests per minute per client.
// @Tags ipfs
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Model file"
// @Success 200 {object} UploadResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 429 {object} utils.ErrorResponse
// @Failure 503 {object} utils.ErrorResponse
// @Router /ipfs/upload [post]
func (h *Handler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse("No file provided"))
		return
	}
	if result := validation.ValidateFile(file, validation.DefaultModelFileMaxMB); !result.Valid {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(strings.Join(result.Errors, ", ")))
		return
	}

	added, err := h.addFile(c.Request.Context(), file, file.Filename)
	if err != nil {
		h.fail(c, "upload", err)
		return
	}
	c.JSON(http.StatusOK, UploadResponse{Hash: added.Hash, Path: added.Path})
}

// Get godoc
// @Summary Fetch content
// @Tags ipfs
// @Produce octet-stream
// @Param hash path string true "CID"
// @Success 200 {file} binary
// @Failure 400 {object} utils.ErrorResponse
// @Failure 503 {object} utils.ErrorResponse
// @Router /ipfs/{hash} [get]
func (h *Handler) Get(c *gin.Context) {
	hash := c.Param("hash")
	if err := validation.ValidateCID(hash); err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse("Invalid IPFS hash"))
		return
	}

	data, err := h.node.Cat(c.Request.Context(), hash)
	if err != nil {
		h.fail(c, "get", err)
		return
	}
	c.Data(http.StatusOK, "application/octet-stream", data)
}

// UploadMetadata godoc
// @Summary Upload NFT metadata
// @Description Validate and pin a metadata document. Limited to 10 requests per minute per client.
// @Tags ipfs
// @Accept json
// @Produce json
// @Success 200 {object} MetadataResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 429 {object} utils.ErrorResponse
// @Failure 503 {object} utils.ErrorResponse
// @Router /ipfs/metadata [post]
func (h *Handler) UploadMetadata(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(err.Error()))
		return
	}

	var metadata map[string]interface{}
	if err := json.Unmarshal(raw, &metadata); err != nil || metadata == nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse{
			Error:  "Invalid metadata",
			Errors: []string{"Metadata must be a JSON object"},
		})
		return
	}
	if result := validation.ValidateMetadata(metadata); !result.Valid {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse{Error: "Invalid metadata", Errors: result.Errors})
		return
	}

	// Pin the document as sent, keeping the caller's key order.
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(err.Error()))
		return
	}

	added, err := h.node.Add(c.Request.Context(), "", &compact)
	if err != nil {
		h.fail(c, "metadata", err)
		return
	}
	c.JSON(http.StatusOK, MetadataResponse{Hash: added.Hash, URL: "ipfs://" + added.Hash})
}

// UploadImage godoc
// @Summary Upload an image file
// @Description Pin a JPEG, PNG, GIF or WebP image of at most 10MB. Shares a 10 requests per minute budget with image-base64.
// @Tags ipfs
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Image"
// @Success 200 {object} ImageResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 429 {object} utils.ErrorResponse
// @Failure 503 {object} utils.ErrorResponse
// @Router /ipfs/image [post]
func (h *Handler) UploadImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse("No image provided"))
		return
	}
	if result := validation.ValidateImageFile(file, validation.DefaultImageMaxMB); !result.Valid {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(strings.Join(result.Errors, ", ")))
		return
	}

	name := file.Filename
	if name == "" {
		name = DefaultImageFilename
	}
	added, err := h.addFile(c.Request.Context(), file, name)
	if err != nil {
		h.fail(c, "image", err)
		return
	}
	c.JSON(http.StatusOK, ImageResponse{Hash: added.Hash, Path: added.Path, URL: "ipfs://" + added.Hash})
}

// UploadImageBase64 godoc
// @Summary Upload a base64 image
// @Description Pin an image sent as base64 or a data URL, at most 10MB decoded.
// @Tags ipfs
// @Accept json
// @Produce json
// @Param request body ImageBase64Request true "Image"
// @Success 200 {object} ImageResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 429 {object} utils.ErrorResponse
// @Failure 503 {object} utils.ErrorResponse
// @Router /ipfs/image-base64 [post]
func (h *Handler) UploadImageBase64(c *gin.Context) {
	var req ImageBase64Request
	if err := c.ShouldBindJSON(&req); err != nil || req.Base64 == "" {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse("No base64 image provided"))
		return
	}

	data, err := decodeBase64Image(req.Base64)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse("Invalid base64 image"))
		return
	}
	if len(data) > validation.DefaultImageMaxMB*1024*1024 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse("Image size exceeds 10MB limit"))
		return
	}

	name := req.Filename
	if name == "" {
		name = DefaultImageFilename
	}
	added, err := h.node.Add(c.Request.Context(), name, bytes.NewReader(data))
	if err != nil {
		h.fail(c, "image-base64", err)
		return
	}
	c.JSON(http.StatusOK, ImageResponse{Hash: added.Hash, Path: added.Path, URL: "ipfs://" + added.Hash})
}

func (h *Handler) addFile(ctx context.Context, file *multipart.FileHeader, name string) (services.AddResult, error) {
	f, err := file.Open()
	if err != nil {
		return services.AddResult{}, err
	}
	defer f.Close()
	return h.node.Add(ctx, name, f)
}

func (h *Handler) fail(c *gin.Context, op string, err error) {
	if errors.Is(err, services.ErrIPFSUnavailable) {
		c.JSON(http.StatusServiceUnavailable, unavailable())
		return
	}
	logger.Log.Error("IPFS request failed", zap.String("op", op), zap.Error(err))
	c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(err.Error()))
}

func unavailable() utils.ErrorResponse {
	return utils.ErrorResponse{
		Error:   UnavailableError,
		Message: UnavailableMessage,
		Code:    UnavailableCode,
	}
}

func decodeBase64Image(s string) ([]byte, error) {
	s = strings.TrimSpace(dataURLPrefix.ReplaceAllString(s, ""))
	if data, err := base64.StdEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}
