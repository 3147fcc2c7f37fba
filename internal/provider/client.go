// Package provider talks to the payment provider: Pix charge creation,
// payment lookups and webhook signature checks.
package provider

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

	"github.com/google/uuid"
	"github.com/nikolayk812/pixshop/internal/domain"
	"github.com/nikolayk812/pixshop/internal/port"
)

const (
	DefaultBaseURL = "https://api.mercadopago.com"
	DefaultTimeout = 30 * time.Second

	pixMethod        = "pix"
	maxErrorBodySize = 512
)

type Config struct {
	BaseURL         string
	AccessToken     string
	WebhookSecret   string
	NotificationURL string
	PayerEmail      string
	Timeout         time.Duration
}

type Client struct {
	cfg        Config
	httpClient *http.Client
}

var _ port.PaymentGateway = (*Client)(nil)

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

func (c *Client) Configured() bool {
	return c.cfg.AccessToken != ""
}

type createPaymentRequest struct {
	TransactionAmount json.Number `json:"transaction_amount"`
	Description       string      `json:"description"`
	PaymentMethodID   string      `json:"payment_method_id"`
	ExternalReference string      `json:"external_reference"`
	NotificationURL   string      `json:"notification_url,omitempty"`
	Payer             payer       `json:"payer"`
}

type payer struct {
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

type paymentResponse struct {
	ID                 flexibleID `json:"id"`
	Status             string     `json:"status"`
	StatusDetail       string     `json:"status_detail"`
	ExternalReference  string     `json:"external_reference"`
	PointOfInteraction struct {
		TransactionData struct {
			QRCode       string `json:"qr_code"`
			QRCodeBase64 string `json:"qr_code_base64"`
		} `json:"transaction_data"`
	} `json:"point_of_interaction"`
}

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// CreatePixPayment opens a Pix charge for order. Every call carries a fresh
// idempotency key, so a retry after a timeout may create a second charge.
func (c *Client) CreatePixPayment(ctx context.Context, order domain.Order) (domain.PixPayment, error) {
	var p domain.PixPayment

	if !c.Configured() {
		return p, &domain.ConfigurationError{Setting: "PAYMENT_ACCESS_TOKEN"}
	}
	if order.ID == 0 {
		return p, fmt.Errorf("order.ID is empty")
	}

	reference := order.ExternalReference
	if reference == "" {
		reference = domain.ExternalReference(order.ID)
	}

	body, err := json.Marshal(createPaymentRequest{
		TransactionAmount: json.Number(order.Total.Amount.StringFixed(2)),
		Description:       fmt.Sprintf("Pedido #%d", order.ID),
		PaymentMethodID:   pixMethod,
		ExternalReference: reference,
		NotificationURL:   c.cfg.NotificationURL,
		Payer: payer{
			Email:     c.cfg.PayerEmail,
			FirstName: order.FirstName,
			LastName:  order.LastName,
		},
	})
	if err != nil {
		return p, fmt.Errorf("json.Marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/payments", bytes.NewReader(body))
	if err != nil {
		return p, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Idempotency-Key", uuid.NewString())

	var resp paymentResponse
	if err := c.do(req, "create payment", &resp); err != nil {
		return p, err
	}

	pixCode := resp.PointOfInteraction.TransactionData.QRCode
	if pixCode == "" {
		return p, &domain.ProviderError{Op: "create payment", Message: "response has no pix code"}
	}

	if resp.ExternalReference != "" {
		reference = resp.ExternalReference
	}

	return domain.PixPayment{
		PaymentID:         string(resp.ID),
		ExternalReference: reference,
		Status:            domain.NormalizePaymentStatus(resp.Status),
		StatusDetail:      resp.StatusDetail,
		PixCode:           pixCode,
		QRBase64:          resp.PointOfInteraction.TransactionData.QRCodeBase64,
	}, nil
}

func (c *Client) GetPayment(ctx context.Context, paymentID string) (domain.PaymentInfo, error) {
	var info domain.PaymentInfo

	if !c.Configured() {
		return info, &domain.ConfigurationError{Setting: "PAYMENT_ACCESS_TOKEN"}
	}
	if paymentID == "" {
		return info, fmt.Errorf("paymentID is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/v1/payments/"+url.PathEscape(paymentID), nil)
	if err != nil {
		return info, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}

	var resp paymentResponse
	if err := c.do(req, "get payment", &resp); err != nil {
		return info, err
	}

	id := string(resp.ID)
	if id == "" {
		id = paymentID
	}

	return domain.PaymentInfo{
		ID:                id,
		ExternalReference: resp.ExternalReference,
		Status:            domain.NormalizePaymentStatus(resp.Status),
		StatusDetail:      resp.StatusDetail,
	}, nil
}

// do sends req with the bearer token and decodes a 2xx JSON body into out.
// Transport failures and non-2xx answers become a ProviderError.
func (c *Client) do(req *http.Request, op string, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.ProviderError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.ProviderError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &domain.ProviderError{Op: op, StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &domain.ProviderError{Op: op, StatusCode: resp.StatusCode, Message: "malformed response", Err: err}
	}

	return nil
}

func errorMessage(raw []byte) string {
	var e errorResponse
	if err := json.Unmarshal(raw, &e); err == nil {
		if e.Message != "" {
			return e.Message
		}
		if e.Error != "" {
			return e.Error
		}
	}

	msg := domain.TruncateUTF8(strings.TrimSpace(string(raw)), maxErrorBodySize)
	if msg == "" {
		msg = "empty response"
	}
	return msg
}

// flexibleID accepts payment ids sent either as JSON numbers or strings.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*f = ""
		return nil
	}

	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*f = flexibleID(str)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexibleID(n.String())
	return nil
}
