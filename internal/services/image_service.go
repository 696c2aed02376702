package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/thanghienlanh/web33/internal/metrics"
	"github.com/thanghienlanh/web33/internal/utils"
	"github.com/tidwall/gjson"
)

const aiGateway = "ai"

// Defaults applied to generation requests that leave a field out.
const (
	DefaultImageModelType    = "stable-diffusion"
	DefaultImageSize         = 512
	DefaultNumInferenceSteps = 50
	DefaultGuidanceScale     = 7.5
)

var ErrImageGeneration = errors.New("image generation failed")

type GenerateImageRequest struct {
	Prompt            string
	ModelType         string
	Width             int
	Height            int
	NumInferenceSteps int
	GuidanceScale     float64
	Seed              *int64
}

type generatePayload struct {
	Prompt            string  `json:"prompt"`
	ModelType         string  `json:"model_type"`
	Width             int     `json:"width"`
	Height            int     `json:"height"`
	NumInferenceSteps int     `json:"num_inference_steps"`
	GuidanceScale     float64 `json:"guidance_scale"`
	Seed              *int64  `json:"seed"`
}

// ImageService proxies generation requests to the AI service.
type ImageService struct {
	baseURL string
	client  *http.Client
}

func NewImageService(aiServiceURL string, timeout time.Duration) *ImageService {
	return &ImageService{
		baseURL: strings.TrimRight(aiServiceURL, "/"),
		client:  utils.NewHTTPClient(aiGateway, timeout),
	}
}

// Generate forwards req to POST /generate and returns the upstream JSON as is.
func (s *ImageService) Generate(ctx context.Context, req GenerateImageRequest) (json.RawMessage, error) {
	payload := generatePayload{
		Prompt:            req.Prompt,
		ModelType:         req.ModelType,
		Width:             req.Width,
		Height:            req.Height,
		NumInferenceSteps: req.NumInferenceSteps,
		GuidanceScale:     req.GuidanceScale,
		Seed:              req.Seed,
	}
	if payload.ModelType == "" {
		payload.ModelType = DefaultImageModelType
	}
	if payload.Width == 0 {
		payload.Width = DefaultImageSize
	}
	if payload.Height == 0 {
		payload.Height = DefaultImageSize
	}
	if payload.NumInferenceSteps == 0 {
		payload.NumInferenceSteps = DefaultNumInferenceSteps
	}
	if payload.GuidanceScale == 0 {
		payload.GuidanceScale = DefaultGuidanceScale
	}
	if payload.Seed != nil && *payload.Seed == 0 {
		payload.Seed = nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode generate request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build generate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		metrics.UpstreamFailed(aiGateway, "unavailable")
		return nil, fmt.Errorf("%w: %v", ErrImageGeneration, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.UpstreamFailed(aiGateway, "error")
		return nil, fmt.Errorf("%w: read response: %v", ErrImageGeneration, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.UpstreamFailed(aiGateway, "status")
		detail := gjson.GetBytes(raw, "detail").String()
		if detail == "" {
			detail = http.StatusText(resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: AI service returned %d: %s", ErrImageGeneration, resp.StatusCode, detail)
	}
	if !gjson.ValidBytes(raw) {
		metrics.UpstreamFailed(aiGateway, "bad_response")
		return nil, fmt.Errorf("%w: AI service returned invalid JSON", ErrImageGeneration)
	}
	return json.RawMessage(raw), nil
}
