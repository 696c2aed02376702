package services

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/thanghienlanh/web33/internal/metrics"
	"github.com/thanghienlanh/web33/internal/utils"
	"github.com/thanghienlanh/web33/pkg/logger"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const ipfsGateway = "ipfs"

var ErrIPFSUnavailable = errors.New("IPFS service unavailable")

// AddResult is the node's answer to an add call.
type AddResult struct {
	Hash string
	Path string
	Size int64
}

// IPFSService talks to a Kubo node over its HTTP RPC API.
type IPFSService struct {
	baseURL string
	client  *http.Client

	// unavailableWarn rate-limits the "node is down" warning.
	unavailableWarn rate.Sometimes
}

// NewIPFSService returns a client for the node at apiURL. An empty apiURL
// yields a disabled service whose calls fail with ErrIPFSUnavailable.
func NewIPFSService(apiURL string, timeout time.Duration) *IPFSService {
	s := &IPFSService{
		baseURL:         strings.TrimRight(apiURL, "/"),
		client:          utils.NewHTTPClient(ipfsGateway, timeout),
		unavailableWarn: rate.Sometimes{First: 1, Interval: 10 * time.Minute},
	}
	if s.Enabled() {
		logger.Log.Info("IPFS client initialized", zap.String("api_url", s.baseURL))
	} else {
		logger.Log.Warn("IPFS_API_URL is empty, IPFS features are disabled")
	}
	return s
}

func (s *IPFSService) Enabled() bool {
	return s.baseURL != ""
}

// Add uploads content under name. An empty name stores unnamed content, in
// which case the node reports the hash as the path.
func (s *IPFSService) Add(ctx context.Context, name string, content io.Reader) (AddResult, error) {
	if !s.Enabled() {
		return AddResult{}, ErrIPFSUnavailable
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return AddResult{}, fmt.Errorf("ipfs add: build form: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return AddResult{}, fmt.Errorf("ipfs add: read content: %w", err)
	}
	if err := mw.Close(); err != nil {
		return AddResult{}, fmt.Errorf("ipfs add: build form: %w", err)
	}

	resp, err := s.call(ctx, "add", url.Values{"pin": {"true"}}, &body, mw.FormDataContentType())
	if err != nil {
		return AddResult{}, err
	}
	defer resp.Body.Close()

	// The node streams one JSON object per line; the last one describes the
	// added root.
	var last string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			last = line
		}
	}
	if err := scanner.Err(); err != nil {
		return AddResult{}, fmt.Errorf("ipfs add: read response: %w", err)
	}

	hash := gjson.Get(last, "Hash").String()
	if hash == "" {
		metrics.UpstreamFailed(ipfsGateway, "bad_response")
		return AddResult{}, fmt.Errorf("ipfs add: response has no hash: %q", last)
	}

	result := AddResult{
		Hash: hash,
		Path: gjson.Get(last, "Name").String(),
		Size: gjson.Get(last, "Size").Int(),
	}
	if result.Path == "" {
		result.Path = hash
	}
	return result, nil
}

// Cat returns the full content stored under hash.
func (s *IPFSService) Cat(ctx context.Context, hash string) ([]byte, error) {
	if !s.Enabled() {
		return nil, ErrIPFSUnavailable
	}

	resp, err := s.call(ctx, "cat", url.Values{"arg": {hash}}, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ipfs cat %s: %w", hash, err)
	}
	return data, nil
}

func (s *IPFSService) call(ctx context.Context, command string, query url.Values, body io.Reader, contentType string) (*http.Response, error) {
	endpoint := s.baseURL + "/api/v0/" + command
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("ipfs %s: %w", command, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if isUnavailable(err) {
			metrics.UpstreamFailed(ipfsGateway, "unavailable")
			s.unavailableWarn.Do(func() {
				logger.Log.Warn("IPFS node is not running, IPFS features disabled until it is reachable",
					zap.String("api_url", s.baseURL), zap.Error(err))
			})
			return nil, fmt.Errorf("%w: %v", ErrIPFSUnavailable, err)
		}
		metrics.UpstreamFailed(ipfsGateway, "error")
		return nil, fmt.Errorf("ipfs %s: %w", command, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		metrics.UpstreamFailed(ipfsGateway, "status")
		message := gjson.GetBytes(raw, "Message").String()
		if message == "" {
			message = strings.TrimSpace(string(raw))
		}
		return nil, fmt.Errorf("ipfs %s: node returned %d: %s", command, resp.StatusCode, message)
	}
	return resp, nil
}

// isUnavailable reports whether err means the node could not be reached at all.
func isUnavailable(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}
