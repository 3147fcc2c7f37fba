package domain

import "strings"

// PaymentStatus is the provider status string as persisted on the order.
// Unknown provider values are kept verbatim.
type PaymentStatus string

// remember to add new statuses to the statusLabels map
const (
	PaymentStatusPending        PaymentStatus = "pending"
	PaymentStatusInProcess      PaymentStatus = "in_process"
	PaymentStatusAuthorized     PaymentStatus = "authorized"
	PaymentStatusApproved       PaymentStatus = "approved"
	PaymentStatusApprovedManual PaymentStatus = "approved_manual"
	PaymentStatusRejected       PaymentStatus = "rejected"
	PaymentStatusCancelled      PaymentStatus = "cancelled"
	PaymentStatusRefunded       PaymentStatus = "refunded"
	PaymentStatusChargedBack    PaymentStatus = "charged_back"
)

var statusLabels = map[PaymentStatus]string{
	PaymentStatusPending:        "Aguardando pagamento",
	PaymentStatusInProcess:      "Pagamento em análise",
	PaymentStatusAuthorized:     "Pagamento autorizado",
	PaymentStatusApproved:       "Pagamento aprovado",
	PaymentStatusApprovedManual: "Pagamento aprovado",
	PaymentStatusRejected:       "Pagamento recusado",
	PaymentStatusCancelled:      "Pagamento cancelado",
	PaymentStatusRefunded:       "Pagamento estornado",
	PaymentStatusChargedBack:    "Pagamento contestado",
}

func NormalizePaymentStatus(s string) PaymentStatus {
	return PaymentStatus(strings.ToLower(strings.TrimSpace(s)))
}

func (s PaymentStatus) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	if s == "" {
		return statusLabels[PaymentStatusPending]
	}

	return "Status: " + string(s)
}

// InFlight reports whether the provider may still move the payment to approved.
func (s PaymentStatus) InFlight() bool {
	return s == "" || s == PaymentStatusPending || s == PaymentStatusInProcess
}

// Reverses reports whether the status undoes a previous approval.
func (s PaymentStatus) Reverses() bool {
	switch s {
	case PaymentStatusRejected, PaymentStatusCancelled, PaymentStatusRefunded, PaymentStatusChargedBack:
		return true
	default:
		return false
	}
}
