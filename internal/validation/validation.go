// Package validation holds the request-level checks applied before any record
// or IPFS mutation. Every check collects all failures instead of stopping at
// the first one.
package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Result is the outcome of a validation or rate-limit check.
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// OK is a passing Result.
func OK() Result {
	return Result{Valid: true, Errors: []string{}}
}

// Fail builds a failing Result from the collected messages.
func Fail(errs ...string) Result {
	return Result{Valid: false, Errors: errs}
}

func fromErrors(errs []string) Result {
	if len(errs) == 0 {
		return OK()
	}
	return Fail(errs...)
}

const (
	DefaultModelFileMaxMB = 100
	DefaultImageMaxMB     = 10
	MaxRoyaltyBasisPoints = 10000
)

var (
	AllowedModelExtensions = []string{".pth", ".pt", ".h5", ".pb", ".onnx", ".pkl"}
	AllowedImageMimeTypes  = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
	allowedImagePrefixes   = []string{"http://", "https://", "ipfs://", "data:image"}
)

var validate = validator.New()

// ValidateMetadata checks NFT metadata before it is pinned to IPFS.
func ValidateMetadata(metadata map[string]interface{}) Result {
	var errs []string

	if name, ok := metadata["name"].(string); !ok {
		errs = append(errs, "Name is required and must be a string")
	} else if validate.Var(name, "min=1,max=200") != nil {
		errs = append(errs, "Name must be between 1 and 200 characters")
	}

	if description, ok := metadata["description"].(string); !ok {
		errs = append(errs, "Description is required and must be a string")
	} else if validate.Var(description, "min=1,max=2000") != nil {
		errs = append(errs, "Description must be between 1 and 2000 characters")
	}

	if modelType, ok := metadata["modelType"].(string); !ok || modelType == "" {
		errs = append(errs, "Model type is required")
	}

	if raw, present := metadata["royaltyPercentage"]; present {
		royalty, ok := toNumber(raw)
		if !ok || math.IsNaN(royalty) || validate.Var(royalty, fmt.Sprintf("gte=0,lte=%d", MaxRoyaltyBasisPoints)) != nil {
			errs = append(errs, "Royalty percentage must be between 0 and 10000 (0-100%)")
		}
	}

	if image, present := metadata["image"]; present && truthy(image) {
		imageURL := fmt.Sprint(image)
		if !hasAnyPrefix(imageURL, allowedImagePrefixes) {
			errs = append(errs, "Image must be a valid URL, IPFS hash, or base64 data URI")
		}
	}

	return fromErrors(errs)
}

// ValidateFile checks an uploaded model file against the size limit and the
// extension allow-list.
func ValidateFile(file *multipart.FileHeader, maxSizeMB int) Result {
	if file == nil {
		return Fail("File is required")
	}

	var errs []string
	if file.Size > int64(maxSizeMB)*1024*1024 {
		errs = append(errs, fmt.Sprintf("File size exceeds maximum allowed size of %dMB", maxSizeMB))
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !contains(AllowedModelExtensions, ext) {
		errs = append(errs, fmt.Sprintf("File type not allowed. Allowed types: %s", strings.Join(AllowedModelExtensions, ", ")))
	}

	return fromErrors(errs)
}

// ValidateImageFile checks an uploaded image against the size limit and the
// MIME allow-list.
func ValidateImageFile(file *multipart.FileHeader, maxSizeMB int) Result {
	if file == nil {
		return Fail("Image file is required")
	}

	var errs []string
	if file.Size > int64(maxSizeMB)*1024*1024 {
		errs = append(errs, fmt.Sprintf("Image size exceeds maximum allowed size of %dMB", maxSizeMB))
	}

	if !contains(AllowedImageMimeTypes, file.Header.Get("Content-Type")) {
		errs = append(errs, fmt.Sprintf("Image type not allowed. Allowed types: %s", strings.Join(AllowedImageMimeTypes, ", ")))
	}

	return fromErrors(errs)
}

// toNumber mirrors loose numeric coercion of JSON values: numeric strings,
// booleans and null are accepted.
func toNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, true
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	return 0, false
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case float64:
		return t != 0 && !math.IsNaN(t)
	}
	return true
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
