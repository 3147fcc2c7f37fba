package provider

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

const (
	HeaderSignature = "X-Signature"
	HeaderRequestID = "X-Request-Id"
)

// Signature returns the hex HMAC-SHA256 of the webhook manifest.
func Signature(secret, paymentID, requestID, ts string) string {
	manifest := fmt.Sprintf("id:%s;request-id:%s;ts:%s;", paymentID, requestID, ts)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(manifest))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyWebhookSignature checks the "ts=...,v1=..." signature header against
// the manifest for paymentID. Without a configured secret every request passes.
func (c *Client) VerifyWebhookSignature(headers http.Header, paymentID string) bool {
	if c.cfg.WebhookSecret == "" {
		slog.Debug("webhook secret not configured, skipping signature check",
			"method", "Client.VerifyWebhookSignature")
		return true
	}

	ts, v1 := parseSignatureHeader(headers.Get(HeaderSignature))
	if ts == "" || v1 == "" {
		return false
	}

	expected := Signature(c.cfg.WebhookSecret, paymentID, headers.Get(HeaderRequestID), ts)

	return hmac.Equal([]byte(expected), []byte(strings.ToLower(v1)))
}

func parseSignatureHeader(header string) (ts, v1 string) {
	for _, part := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}

		switch strings.ToLower(strings.TrimSpace(key)) {
		case "ts":
			ts = strings.TrimSpace(value)
		case "v1":
			v1 = strings.TrimSpace(value)
		}
	}

	return ts, v1
}
