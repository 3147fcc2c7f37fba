package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nikolayk812/pixshop/internal/api"
	"github.com/nikolayk812/pixshop/internal/cart"
	"github.com/nikolayk812/pixshop/internal/checkout"
	"github.com/nikolayk812/pixshop/internal/domain"
	"github.com/nikolayk812/pixshop/internal/fakes"
	"github.com/nikolayk812/pixshop/internal/notify"
	"github.com/nikolayk812/pixshop/internal/reconcile"
	"github.com/nikolayk812/pixshop/internal/template"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const session = "sess-42"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

type fixture struct {
	orders  *fakes.OrderRepository
	gateway *fakes.PaymentGateway
	sender  *fakes.MessageSender
	handler http.Handler
}

func newFixture(t *testing.T, rl api.RateLimitConfig) fixture {
	t.Helper()

	f := fixture{
		orders:  fakes.NewOrderRepository(),
		gateway: fakes.NewPaymentGateway(),
		sender:  &fakes.MessageSender{},
	}
	f.gateway.CreateResult = domain.PixPayment{
		PaymentID:    "9001",
		Status:       domain.PaymentStatusPending,
		StatusDetail: "pending_waiting_transfer",
		PixCode:      "00020126BR.GOV.BCB.PIX",
	}

	catalog := fakes.NewCatalogRepository([]domain.Product{
		{ID: 1, Name: "Pastel QTO", Price: decimal.RequireFromString("12.00"), Active: true},
		{ID: 2, Name: "Combo", Price: decimal.RequireFromString("15.00"), Active: true},
		{ID: 5, Name: "Antigo", Price: decimal.RequireFromString("9.00"), Active: false},
	}, []domain.Variant{
		{ID: 10, ProductID: 2, Name: "Guarana", Price: decimal.RequireFromString("15.00"), Active: true},
		{ID: 11, ProductID: 1, Name: "Outro", Price: decimal.RequireFromString("1.00"), Active: true},
	})

	carts := cart.NewMemoryStore()

	aggregator, err := cart.NewAggregator(catalog)
	require.NoError(t, err)

	renderer, err := template.NewEngine()
	require.NoError(t, err)

	recipients := &fakes.RecipientRepository{Recipients: []domain.Recipient{
		{ID: 1, Name: "Caixa", Phone: "11988887777", Active: true},
		{ID: 2, Name: "Cozinha", Phone: "11977776666", Active: true},
	}}

	dispatcher, err := notify.NewDispatcher(f.orders, recipients, f.sender, renderer, notify.Config{})
	require.NoError(t, err)

	engine, err := reconcile.NewEngine(f.orders, f.gateway, dispatcher)
	require.NoError(t, err)

	service, err := checkout.NewService(carts, aggregator, f.orders, f.gateway, engine, nil)
	require.NoError(t, err)

	server, err := api.NewServer(api.Deps{
		Carts:      carts,
		Catalog:    catalog,
		Summarizer: aggregator,
		Checkout:   service,
		Engine:     engine,
		RateLimit:  rl,
	})
	require.NoError(t, err)

	f.handler = server.Handler()
	return f
}

func (f fixture) do(t *testing.T, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}

	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("X-Session-ID", session)

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestNewServer_Validation(t *testing.T) {
	_, err := api.NewServer(api.Deps{})
	require.EqualError(t, err, "carts is nil")
}

func TestCart(t *testing.T) {
	t.Run("empty cart issues a session cookie", func(t *testing.T) {
		f := newFixture(t, api.RateLimitConfig{})

		req := httptest.NewRequest(http.MethodGet, "/cart/", nil)
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Set-Cookie"), "session_id=")

		cart := decode(t, rec)["cart"].(map[string]any)
		assert.Equal(t, "0.00", cart["total"])
		assert.EqualValues(t, 0, cart["count"])
	})

	t.Run("add and update lines", func(t *testing.T) {
		f := newFixture(t, api.RateLimitConfig{})

		rec := f.do(t, http.MethodPost, "/cart/add/1/", url.Values{"quantity": {"2"}})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "Item adicionado ao carrinho.", decode(t, rec)["message"])

		rec = f.do(t, http.MethodPost, "/cart/add/2/", url.Values{"variant_id": {"10"}})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		cart := decode(t, rec)["cart"].(map[string]any)
		assert.Equal(t, "39.00", cart["total"])
		assert.EqualValues(t, 3, cart["count"])

		rec = f.do(t, http.MethodPost, "/cart/update/1/", url.Values{"action": {"dec"}})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "27.00", decode(t, rec)["cart"].(map[string]any)["total"])

		rec = f.do(t, http.MethodPost, "/cart/update/2/", url.Values{"action": {"set"}, "quantity": {"0"}, "variant_id": {"10"}})
		require.Equal(t, http.StatusOK, rec.Code)

		cart = decode(t, rec)["cart"].(map[string]any)
		assert.Equal(t, "12.00", cart["total"])
		assert.Len(t, cart["items"], 1)
	})

	tests := []struct {
		name       string
		target     string
		form       url.Values
		wantStatus int
	}{
		{
			name:       "inactive product",
			target:     "/cart/add/5/",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "unknown product",
			target:     "/cart/add/99/",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "variant of another product",
			target:     "/cart/add/2/",
			form:       url.Values{"variant_id": {"11"}},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "malformed product id",
			target:     "/cart/add/abc/",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed variant id",
			target:     "/cart/add/2/",
			form:       url.Values{"variant_id": {"x"}},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, api.RateLimitConfig{})

			form := tt.form
			if form == nil {
				form = url.Values{}
			}

			rec := f.do(t, http.MethodPost, tt.target, form)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

			problem := decode(t, rec)
			assert.NotEmpty(t, problem["error"])
			assert.EqualValues(t, tt.wantStatus, problem["status"])
		})
	}
}

func TestListProducts(t *testing.T) {
	f := newFixture(t, api.RateLimitConfig{})

	rec := f.do(t, http.MethodGet, "/products/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	products := decode(t, rec)["products"].([]any)
	require.Len(t, products, 2)
	assert.Equal(t, "Combo", products[0].(map[string]any)["name"])
	assert.Equal(t, "15.00", products[0].(map[string]any)["price"])
}

func TestCheckoutFlow(t *testing.T) {
	f := newFixture(t, api.RateLimitConfig{})

	rec := f.do(t, http.MethodPost, "/cart/add/2/", url.Values{"variant_id": {"10"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/checkout/finalize/", url.Values{
		"first_name":     {"Ana"},
		"last_name":      {"Souza"},
		"whatsapp":       {"(11) 91234-5678"},
		"payment_method": {"pix"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	result := decode(t, rec)
	assert.EqualValues(t, 1, result["order_id"])
	assert.Equal(t, "00020126BR.GOV.BCB.PIX", result["pix_code"])
	assert.NotEmpty(t, result["qr_code_base64"])
	assert.Equal(t, "Aguardando pagamento", result["status_label"])
	assert.EqualValues(t, 0, result["cart"].(map[string]any)["count"])

	rec = f.do(t, http.MethodGet, "/cart/", nil)
	assert.Equal(t, "0.00", decode(t, rec)["cart"].(map[string]any)["total"])

	f.gateway.SetPayment(domain.PaymentInfo{
		ID:                "9001",
		ExternalReference: "ORDER_1",
		Status:            domain.PaymentStatusApproved,
		StatusDetail:      "accredited",
	})

	rec = f.do(t, http.MethodPost, "/payments/webhook/?data.id=9001&type=payment", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, decode(t, rec)["ok"])

	rec = f.do(t, http.MethodGet, "/checkout/status/1/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	status := decode(t, rec)
	assert.Equal(t, true, status["is_paid"])
	assert.Equal(t, "approved", status["status"])
	assert.Equal(t, "Pagamento aprovado", status["status_label"])

	// a repeated webhook must not notify again
	rec = f.do(t, http.MethodPost, "/payments/webhook/?data.id=9001&type=payment", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	sent := f.sender.Sent()
	require.Len(t, sent, 3)
	assert.Equal(t, []string{"5511912345678", "5511977776666", "5511988887777"}, []string{sent[0].Phone, sent[1].Phone, sent[2].Phone})
	assert.Contains(t, sent[0].Message, "Total: R$ 15.00")
}

func TestFinalize_Errors(t *testing.T) {
	t.Run("validation", func(t *testing.T) {
		f := newFixture(t, api.RateLimitConfig{})

		rec := f.do(t, http.MethodPost, "/checkout/finalize/", url.Values{
			"first_name":     {"Ana"},
			"payment_method": {"pix"},
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Informe seu WhatsApp.", decode(t, rec)["error"])
	})

	t.Run("empty cart", func(t *testing.T) {
		f := newFixture(t, api.RateLimitConfig{})

		rec := f.do(t, http.MethodPost, "/checkout/finalize/", url.Values{
			"first_name":     {"Ana"},
			"whatsapp":       {"11912345678"},
			"payment_method": {"pix"},
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Seu carrinho está vazio.", decode(t, rec)["error"])
	})

	t.Run("payment not configured", func(t *testing.T) {
		f := newFixture(t, api.RateLimitConfig{})
		f.gateway.Token = false

		f.do(t, http.MethodPost, "/cart/add/1/", url.Values{})

		rec := f.do(t, http.MethodPost, "/checkout/finalize/", url.Values{
			"first_name":     {"Ana"},
			"whatsapp":       {"11912345678"},
			"payment_method": {"pix"},
		})
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Zero(t, f.orders.Len())
	})

	t.Run("provider failure deletes the order", func(t *testing.T) {
		f := newFixture(t, api.RateLimitConfig{})
		f.gateway.CreateErr = &domain.ProviderError{Op: "create payment", StatusCode: http.StatusBadRequest, Message: "invalid payer"}

		f.do(t, http.MethodPost, "/cart/add/1/", url.Values{})

		rec := f.do(t, http.MethodPost, "/checkout/finalize/", url.Values{
			"first_name":     {"Ana"},
			"whatsapp":       {"11912345678"},
			"payment_method": {"pix"},
		})
		require.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Zero(t, f.orders.Len())
	})
}

func TestWebhook(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		body       string
		setup      func(f fixture)
		wantStatus int
	}{
		{
			name:       "no payment id is ignored",
			target:     "/payments/webhook/",
			wantStatus: http.StatusOK,
		},
		{
			name:       "other topics are ignored",
			target:     "/payments/webhook/?topic=merchant_order&id=77",
			wantStatus: http.StatusOK,
		},
		{
			name:   "bad signature",
			target: "/payments/webhook/?data.id=9001",
			setup: func(f fixture) {
				f.gateway.SignatureOK = false
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "unknown payment",
			target:     "/payments/webhook/",
			body:       `{"type":"payment","data":{"id":123}}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "payment for an unknown order",
			target: "/payments/webhook/",
			body:   `{"id":"555"}`,
			setup: func(f fixture) {
				f.gateway.SetPayment(domain.PaymentInfo{ID: "555", ExternalReference: "ORDER_404", Status: domain.PaymentStatusApproved})
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, api.RateLimitConfig{})
			if tt.setup != nil {
				tt.setup(f)
			}

			req := httptest.NewRequest(http.MethodPost, tt.target, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			f.handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestOrderStatus(t *testing.T) {
	f := newFixture(t, api.RateLimitConfig{})

	rec := f.do(t, http.MethodGet, "/checkout/status/404/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/checkout/status/x/", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRateLimit(t *testing.T) {
	f := newFixture(t, api.RateLimitConfig{RPS: 0.001, Burst: 2})

	for range 2 {
		rec := f.do(t, http.MethodGet, "/checkout/status/404/", nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	}

	rec := f.do(t, http.MethodGet, "/checkout/status/404/", nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	// cart routes are not limited
	rec = f.do(t, http.MethodGet, "/cart/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
