package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nikolayk812/pixshop/internal/checkout"
	"github.com/nikolayk812/pixshop/internal/domain"
	"github.com/samber/lo"
)

const defaultOrdersWindow = 7 * 24 * time.Hour

type orderResponse struct {
	ID                  int64             `json:"order_id"`
	CustomerName        string            `json:"customer_name"`
	Phone               string            `json:"whatsapp"`
	PaymentMethod       string            `json:"payment_method"`
	Total               string            `json:"total"`
	Items               []domain.LineItem `json:"items"`
	PaymentID           string            `json:"payment_id,omitempty"`
	Status              string            `json:"status"`
	StatusLabel         string            `json:"status_label"`
	StatusDetail        string            `json:"status_detail,omitempty"`
	IsPaid              bool              `json:"is_paid"`
	PaidAt              *time.Time        `json:"paid_at"`
	WhatsAppNotified    bool              `json:"whatsapp_notified"`
	WhatsAppNotifyError string            `json:"whatsapp_notify_error,omitempty"`
	IsDelivered         bool              `json:"is_delivered"`
	DeliveredAt         *time.Time        `json:"delivered_at"`
	CreatedAt           time.Time         `json:"created_at"`
	Message             string            `json:"message,omitempty"`
	PixCode             string            `json:"pix_code,omitempty"`
	QRBase64            string            `json:"qr_code_base64,omitempty"`
}

func newOrderResponse(o domain.Order) orderResponse {
	return orderResponse{
		ID:                  o.ID,
		CustomerName:        o.CustomerName(),
		Phone:               o.Phone,
		PaymentMethod:       string(o.PaymentMethod),
		Total:               o.Total.String(),
		Items:               o.Items,
		PaymentID:           o.PaymentID,
		Status:              string(o.Status),
		StatusLabel:         o.Status.Label(),
		StatusDetail:        o.StatusDetail,
		IsPaid:              o.IsPaid,
		PaidAt:              o.PaidAt,
		WhatsAppNotified:    o.WhatsAppNotified,
		WhatsAppNotifyError: o.WhatsAppNotifyError,
		IsDelivered:         o.IsDelivered,
		DeliveredAt:         o.DeliveredAt,
		CreatedAt:           o.CreatedAt,
	}
}

func (s *Server) listOrders(c *gin.Context) {
	filter, err := s.orderFilter(c)
	if err != nil {
		writeError(c, "Server.listOrders", err)
		return
	}

	orders, err := s.deps.Engine.ListOrders(c.Request.Context(), filter)
	if err != nil {
		writeError(c, "Server.listOrders", fmt.Errorf("engine.ListOrders: %w", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": lo.Map(orders, func(o domain.Order, _ int) orderResponse {
			return newOrderResponse(o)
		}),
	})
}

func (s *Server) markPaid(c *gin.Context) {
	orderID, err := parseOrderID(c)
	if err != nil {
		writeError(c, "Server.markPaid", err)
		return
	}

	order, err := s.deps.Engine.MarkPaid(c.Request.Context(), orderID)
	if err != nil {
		writeError(c, "Server.markPaid", fmt.Errorf("engine.MarkPaid: %w", err))
		return
	}

	resp := newOrderResponse(order)
	resp.Message = "Pagamento confirmado."
	c.JSON(http.StatusOK, resp)
}

func (s *Server) markDelivered(c *gin.Context) {
	orderID, err := parseOrderID(c)
	if err != nil {
		writeError(c, "Server.markDelivered", err)
		return
	}

	order, err := s.deps.Engine.MarkDelivered(c.Request.Context(), orderID)
	if err != nil {
		writeError(c, "Server.markDelivered", fmt.Errorf("engine.MarkDelivered: %w", err))
		return
	}

	resp := newOrderResponse(order)
	resp.Message = "Pedido entregue."
	c.JSON(http.StatusOK, resp)
}

// saleForm accepts both the JSON body and the urlencoded form posted by the
// sales screen, where items arrive JSON-encoded in items_json.
type saleForm struct {
	CustomerName  string              `json:"customer_name" form:"customer_name"`
	FirstName     string              `json:"first_name" form:"first_name"`
	LastName      string              `json:"last_name" form:"last_name"`
	Phone         string              `json:"whatsapp" form:"whatsapp"`
	PaymentMethod string              `json:"payment_method" form:"payment_method"`
	MarkPaidNow   string              `json:"-" form:"mark_paid_now"`
	MarkPaidFlag  bool                `json:"mark_paid_now" form:"-"`
	ItemsJSON     string              `json:"-" form:"items_json"`
	Items         []checkout.SaleItem `json:"items" form:"-"`
}

func (f saleForm) toRequest() (checkout.SaleRequest, error) {
	items := f.Items
	if raw := strings.TrimSpace(f.ItemsJSON); raw != "" {
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			return checkout.SaleRequest{}, domain.NewValidationError("items", "Itens inválidos.")
		}
	}

	firstName, lastName := f.FirstName, f.LastName
	if firstName == "" {
		firstName, lastName, _ = strings.Cut(strings.Join(strings.Fields(f.CustomerName), " "), " ")
	}

	markPaid := f.MarkPaidFlag
	if f.MarkPaidNow != "" {
		markPaid, _ = strconv.ParseBool(f.MarkPaidNow)
		markPaid = markPaid || f.MarkPaidNow == "on"
	}

	return checkout.SaleRequest{
		FirstName:     firstName,
		LastName:      lastName,
		Phone:         f.Phone,
		PaymentMethod: f.PaymentMethod,
		Items:         items,
		MarkPaidNow:   markPaid,
	}, nil
}

func (s *Server) createSale(c *gin.Context) {
	var form saleForm
	if err := c.ShouldBind(&form); err != nil {
		writeProblem(c, http.StatusBadRequest, "Dados inválidos.")
		return
	}

	req, err := form.toRequest()
	if err != nil {
		writeError(c, "Server.createSale", err)
		return
	}

	result, err := s.deps.Checkout.CreateSale(c.Request.Context(), req)
	if err != nil {
		writeError(c, "Server.createSale", err)
		return
	}

	resp := newOrderResponse(result.Order)
	resp.PixCode = result.PixCode
	resp.QRBase64 = result.QRBase64
	resp.Message = "Venda finalizada."
	if result.PixCode != "" {
		resp.Message = "Venda criada. Aguardando pagamento via Pix."
	}

	c.JSON(http.StatusCreated, resp)
}

// orderFilter reads the listing filters from the query string. Without any
// filter the listing covers the last seven days.
func (s *Server) orderFilter(c *gin.Context) (domain.OrderFilter, error) {
	var filter domain.OrderFilter

	for _, raw := range c.QueryArray("id") {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return filter, domain.NewValidationError("id", "Pedido inválido.")
		}
		filter.IDs = append(filter.IDs, id)
	}

	filter.Statuses = lo.FilterMap(c.QueryArray("status"), func(raw string, _ int) (domain.PaymentStatus, bool) {
		status := domain.NormalizePaymentStatus(raw)
		return status, status != ""
	})

	for _, raw := range c.QueryArray("payment_method") {
		method, err := domain.ToPaymentMethod(raw)
		if err != nil {
			return filter, domain.NewValidationError("payment_method", "Forma de pagamento inválida.")
		}
		filter.Methods = append(filter.Methods, method)
	}

	if raw := c.Query("is_paid"); raw != "" {
		isPaid, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, domain.NewValidationError("is_paid", "Filtro inválido.")
		}
		filter.IsPaid = &isPaid
	}

	after, err := parseDateParam(c.Query("from"), false)
	if err != nil {
		return filter, domain.NewValidationError("from", "Data inválida.")
	}
	before, err := parseDateParam(c.Query("to"), true)
	if err != nil {
		return filter, domain.NewValidationError("to", "Data inválida.")
	}
	if after != nil || before != nil {
		filter.CreatedAt = &domain.TimeRange{After: after, Before: before}
	}

	if filter.CreatedAt == nil && len(filter.IDs) == 0 {
		filter.CreatedAt = &domain.TimeRange{After: lo.ToPtr(s.now().UTC().Add(-defaultOrdersWindow))}
	}

	if err := filter.Validate(); err != nil {
		return filter, domain.NewValidationError("to", "Período inválido.")
	}

	return filter, nil
}

// parseDateParam accepts RFC 3339 or a plain YYYY-MM-DD date. A plain end date
// covers the whole day.
func parseDateParam(raw string, endOfDay bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}

	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, fmt.Errorf("time.Parse: %w", err)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}

	return &t, nil
}
