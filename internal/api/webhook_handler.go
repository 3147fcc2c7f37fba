package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nikolayk812/pixshop/internal/domain"
	"github.com/nikolayk812/pixshop/internal/reconcile"
)

const maxWebhookBody = 64 << 10

type webhookID string

// UnmarshalJSON accepts the id both as a JSON string and as a JSON number.
func (id *webhookID) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = webhookID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = webhookID(n.String())
	return nil
}

type webhookBody struct {
	ID   webhookID `json:"id"`
	Type string    `json:"type"`
	Data struct {
		ID webhookID `json:"id"`
	} `json:"data"`
}

func (s *Server) webhook(c *gin.Context) {
	eventType, paymentID := webhookEvent(c)

	if eventType != "" && eventType != "payment" {
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	order, err := s.deps.Engine.HandleWebhook(c.Request.Context(), c.Request.Header, paymentID)
	if err != nil {
		var (
			providerErr *domain.ProviderError
			configErr   *domain.ConfigurationError
		)

		switch {
		case errors.Is(err, reconcile.ErrInvalidSignature):
			slog.Warn("webhook signature rejected",
				"method", "Server.webhook",
				"payment_id", paymentID)
			writeProblem(c, http.StatusUnauthorized, "Assinatura inválida.")
		case errors.As(err, &providerErr), errors.As(err, &configErr):
			slog.Warn("webhook payment lookup failed",
				"method", "Server.webhook",
				"payment_id", paymentID,
				"error", err)
			writeProblem(c, http.StatusBadRequest, "Pagamento não pôde ser consultado.")
		default:
			writeError(c, "Server.webhook", err)
		}
		return
	}

	if order != nil {
		slog.Info("webhook reconciled",
			"method", "Server.webhook",
			"order_id", order.ID,
			"status", order.Status,
			"is_paid", order.IsPaid)
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// webhookEvent takes the event type and payment id from the query string,
// falling back to the JSON body.
func webhookEvent(c *gin.Context) (string, string) {
	eventType := firstNonEmpty(c.Query("type"), c.Query("topic"))
	paymentID := firstNonEmpty(c.Query("data.id"), c.Query("id"))

	if paymentID != "" && eventType != "" {
		return eventType, paymentID
	}

	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil || len(bytes.TrimSpace(raw)) == 0 {
		return eventType, paymentID
	}

	var body webhookBody
	if err := json.Unmarshal(raw, &body); err != nil {
		slog.Debug("webhook body is not json",
			"method", "Server.webhook",
			"error", err)
		return eventType, paymentID
	}

	if eventType == "" {
		eventType = body.Type
	}
	if paymentID == "" {
		paymentID = firstNonEmpty(string(body.Data.ID), string(body.ID))
	}

	return eventType, paymentID
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
