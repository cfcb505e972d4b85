package live

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Signer 连接签名接口
//
// 推送服务要求每次连接携带按 roomId/uniqueId 计算的签名
type Signer interface {
	Sign(ctx context.Context, roomID, uniqueID string) (string, error)
}

// HTTPSigner 调用外部签名服务的 Signer 实现
type HTTPSigner struct {
	endpoint string
	client   *http.Client
}

// NewHTTPSigner 创建 HTTP 签名客户端
func NewHTTPSigner(endpoint string) *HTTPSigner {
	return &HTTPSigner{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

type signRequest struct {
	RoomID   string `json:"room_id"`
	UniqueID string `json:"unique_id"`
}

type signResponse struct {
	Signature string `json:"signature"`
}

// Sign 请求签名服务
func (s *HTTPSigner) Sign(ctx context.Context, roomID, uniqueID string) (string, error) {
	body, err := json.Marshal(signRequest{RoomID: roomID, UniqueID: uniqueID})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sign: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("sign: status %d", resp.StatusCode)
	}

	var sr signResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return "", fmt.Errorf("sign: %w", err)
	}
	if sr.Signature == "" {
		return "", fmt.Errorf("sign: empty signature")
	}
	return sr.Signature, nil
}

// NoopSigner 返回空签名，仅供测试或无签名校验的自建服务使用
type NoopSigner struct{}

// Sign 实现 Signer
func (NoopSigner) Sign(ctx context.Context, roomID, uniqueID string) (string, error) {
	return "", nil
}
