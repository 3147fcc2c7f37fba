package domain

// PixPayment is the result of creating a Pix charge at the provider.
type PixPayment struct {
	PaymentID         string
	ExternalReference string
	Status            PaymentStatus
	StatusDetail      string
	PixCode           string
	QRBase64          string
}

// PaymentInfo is the provider's view of a payment, as returned by a status lookup.
type PaymentInfo struct {
	ID                string
	ExternalReference string
	Status            PaymentStatus
	StatusDetail      string
}

// OrderStatusView is what the checkout status poll answers.
type OrderStatusView struct {
	OrderID      int64  `json:"order_id"`
	IsPaid       bool   `json:"is_paid"`
	Status       string `json:"status"`
	StatusDetail string `json:"status_detail"`
	StatusLabel  string `json:"status_label"`
}

func NewOrderStatusView(o Order) OrderStatusView {
	return OrderStatusView{
		OrderID:      o.ID,
		IsPaid:       o.IsPaid,
		Status:       string(o.Status),
		StatusDetail: o.StatusDetail,
		StatusLabel:  o.Status.Label(),
	}
}
