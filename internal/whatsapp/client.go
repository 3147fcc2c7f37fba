// Package whatsapp sends text messages through a Z-API style WhatsApp gateway.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nikolayk812/pixshop/internal/domain"
	"github.com/nikolayk812/pixshop/internal/port"
)

const (
	DefaultBaseURL = "https://api.z-api.io"
	DefaultTimeout = 30 * time.Second

	maxErrorBodySize = 200
)

type Config struct {
	BaseURL     string
	InstanceID  string
	Token       string
	ClientToken string
	Timeout     time.Duration
}

type Client struct {
	cfg        Config
	httpClient *http.Client
}

var _ port.MessageSender = (*Client)(nil)

func NewClient(cfg Config) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type sendTextRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// SendText delivers message to phone, which must already be normalized.
func (c *Client) SendText(ctx context.Context, phone, message string) error {
	if c.cfg.InstanceID == "" {
		return &domain.ConfigurationError{Setting: "WHATSAPP_INSTANCE_ID"}
	}
	if c.cfg.Token == "" {
		return &domain.ConfigurationError{Setting: "WHATSAPP_TOKEN"}
	}
	if phone == "" {
		return fmt.Errorf("phone is empty")
	}

	body, err := json.Marshal(sendTextRequest{Phone: phone, Message: message})
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	endpoint := fmt.Sprintf("%s/instances/%s/token/%s/send-text",
		c.cfg.BaseURL, url.PathEscape(c.cfg.InstanceID), url.PathEscape(c.cfg.Token))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("http.NewRequestWithContext: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.ClientToken != "" {
		req.Header.Set("Client-Token", c.cfg.ClientToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.ProviderError{Op: "send text", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return &domain.ProviderError{
			Op:         "send text",
			StatusCode: resp.StatusCode,
			Message:    domain.TruncateUTF8(strings.TrimSpace(string(raw)), maxErrorBodySize),
		}
	}

	// drain so the connection can be reused
	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}
