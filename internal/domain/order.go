package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type PaymentMethod string

const (
	PaymentMethodPix  PaymentMethod = "pix"
	PaymentMethodCard PaymentMethod = "card"
	PaymentMethodCash PaymentMethod = "cash"
)

var validPaymentMethods = map[PaymentMethod]struct{}{
	PaymentMethodPix:  {},
	PaymentMethodCard: {},
	PaymentMethodCash: {},
}

func ToPaymentMethod(s string) (PaymentMethod, error) {
	method := PaymentMethod(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := validPaymentMethods[method]; ok {
		return method, nil
	}

	return "", fmt.Errorf("invalid payment method[%s]", s)
}

// Order is the persisted checkout. Items are a snapshot taken at creation and never change.
type Order struct {
	ID            int64
	FirstName     string
	LastName      string
	Phone         string
	PaymentMethod PaymentMethod
	Total         Money
	Items         []LineItem

	PaymentID         string
	ExternalReference string
	Status            PaymentStatus
	StatusDetail      string
	PixCode           string

	IsPaid bool
	PaidAt *time.Time

	WhatsAppNotified    bool
	WhatsAppNotifiedAt  *time.Time
	WhatsAppNotifyError string

	IsDelivered bool
	DeliveredAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (o Order) CustomerName() string {
	return strings.TrimSpace(o.FirstName + " " + o.LastName)
}

type LineItem struct {
	ProductID int64  `json:"product_id"`
	VariantID *int64 `json:"variant_id"`
	Name      string `json:"name"`
	UnitPrice string `json:"price"`
	Quantity  int    `json:"quantity"`
	Subtotal  string `json:"subtotal"`
	ImageURL  string `json:"image_url"`
}

const externalReferencePrefix = "ORDER_"

func ExternalReference(orderID int64) string {
	return externalReferencePrefix + strconv.FormatInt(orderID, 10)
}

// ParseExternalReference extracts the order id from an ORDER_<id> reference.
func ParseExternalReference(ref string) (int64, bool) {
	ref = strings.TrimSpace(ref)
	if !strings.HasPrefix(ref, externalReferencePrefix) {
		return 0, false
	}

	id, err := strconv.ParseInt(strings.TrimPrefix(ref, externalReferencePrefix), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}

	return id, true
}
