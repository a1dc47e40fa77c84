package enhance

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
)

// ContentRequest 是 enhance-content 端点的请求体。
type ContentRequest struct {
	Content string `json:"content" binding:"notblank"`
	Type    string `json:"type" binding:"required,oneof=summary experience skills"`
}

// ContentResponse 是 enhance-content 端点的响应体，improved 与 error 二选一。
type ContentResponse struct {
	Improved string `json:"improved,omitempty"`
	Error    string `json:"error,omitempty"`
}

// RemoteEnhancer 调用远端 enhance-content 端点。
type RemoteEnhancer struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// NewRemoteEnhancer 创建远端润色客户端；apiKey 非空时以 Bearer 方式携带。
func NewRemoteEnhancer(endpoint, apiKey string, timeout time.Duration) *RemoteEnhancer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RemoteEnhancer{
		endpoint:   strings.TrimSpace(endpoint),
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Enhance 实现 Enhancer。
func (r *RemoteEnhancer) Enhance(ctx context.Context, text string, kind Kind) (string, error) {
	if r.endpoint == "" {
		return "", errors.New("remote enhance endpoint is not configured")
	}

	body, err := json.Marshal(ContentRequest{Content: text, Type: string(kind)})
	if err != nil {
		return "", fmt.Errorf("encode enhance request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build enhance request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call enhance endpoint: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read enhance response: %w", err)
	}

	var payload ContentResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("decode enhance response (status %d): %w", resp.StatusCode, err)
	}
	if payload.Error != "" {
		return "", fmt.Errorf("enhance endpoint error (status %d): %s", resp.StatusCode, payload.Error)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("enhance endpoint returned status %d", resp.StatusCode)
	}
	return payload.Improved, nil
}
