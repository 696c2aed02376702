package utils

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/thanghienlanh/web33/pkg/logger"
	"go.uber.org/zap"
)

const maxLoggedBody = 2000

// LoggingTransport implements http.RoundTripper and logs upstream calls at
// Debug level. Only JSON bodies are captured; uploads and file downloads are
// logged by size alone.
type LoggingTransport struct {
	Transport http.RoundTripper
	Gateway   string
}

func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	transport := t.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	debug := logger.Log.Core().Enabled(zap.DebugLevel)
	fields := []zap.Field{
		zap.String("gateway", t.Gateway),
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
	}
	if debug && isJSON(req.Header.Get("Content-Type")) && req.Body != nil {
		bodyBytes, _ := io.ReadAll(req.Body)
		req.Body.Close()
		req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		fields = append(fields, zap.String("request_body", truncate(bodyBytes)))
	}

	start := time.Now()
	resp, err := transport.RoundTrip(req)
	fields = append(fields, zap.Duration("latency", time.Since(start)))

	if err != nil {
		logger.Log.Debug("upstream request failed", append(fields, zap.Error(err))...)
		return nil, err
	}

	fields = append(fields, zap.Int("status", resp.StatusCode), zap.Int64("content_length", resp.ContentLength))
	if debug && isJSON(resp.Header.Get("Content-Type")) && resp.Body != nil {
		bodyBytes, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		resp.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		if readErr == nil {
			fields = append(fields, zap.String("response_body", truncate(bodyBytes)))
		}
	}
	logger.Log.Debug("upstream request", fields...)

	return resp, nil
}

// NewHTTPClient returns an http.Client whose calls to gateway are logged.
// A zero timeout means no client-side timeout.
func NewHTTPClient(gateway string, timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &LoggingTransport{
			Transport: http.DefaultTransport,
			Gateway:   gateway,
		},
	}
}

func isJSON(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "json")
}

func truncate(body []byte) string {
	if len(body) > maxLoggedBody {
		return string(body[:maxLoggedBody]) + "...(truncated)"
	}
	return string(body)
}
