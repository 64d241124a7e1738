package vectorindex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"ocean-query-service/internal/platform/obs"
	"strings"
	"time"
)

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

type searchRequest struct {
	Vector [2]float32 `json:"vector"`
	K      int        `json:"k"`
}

type searchResponse struct {
	IDs []int64 `json:"ids"`
}

// HTTPIndex queries a remote nearest-neighbor service:
//
//	POST {baseURL}/search {"vector": [lat, lon], "k": 10} -> {"ids": [...]}
//
// Failed calls are not retried; the resolver falls back to a full scan.
type HTTPIndex struct {
	session *http.Client
	baseURL string
	apiKey  string
	logger  *slog.Logger
}

func NewHTTPIndex(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) (*HTTPIndex, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("new http index: base url is empty")
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = obs.Discard()
	}
	return &HTTPIndex{
		session: &http.Client{Timeout: timeout},
		baseURL: baseURL,
		apiKey:  apiKey,
		logger:  logger,
	}, nil
}

func (h *HTTPIndex) Search(ctx context.Context, vector [2]float32, k int) (_ []int64, err error) {
	defer obs.Time(ctx, h.logger, "http_index.Search")(&err)

	body, err := json.Marshal(searchRequest{Vector: vector, K: k})
	if err != nil {
		return nil, fmt.Errorf("index search: encode request: %w", err)
	}

	req, err := h.newRequest(ctx, http.MethodPost, h.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("index search: %w", err)
	}

	resp, err := h.do(req)
	if err != nil {
		return nil, fmt.Errorf("index search: execute request: %w", err)
	}
	defer resp.Body.Close()

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("index search: decode response: %w", err)
	}

	if len(decoded.IDs) > k {
		decoded.IDs = decoded.IDs[:k]
	}
	return decoded.IDs, nil
}

func (h *HTTPIndex) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if h.apiKey != "" {
		req.Header.Set("Authorization", h.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := obs.RequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	return req, nil
}

func (h *HTTPIndex) do(req *http.Request) (*http.Response, error) {
	resp, err := h.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &httpStatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}
