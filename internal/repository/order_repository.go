package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/pixshop/internal/db"
	"github.com/nikolayk812/pixshop/internal/domain"
	"github.com/nikolayk812/pixshop/internal/port"
	"github.com/samber/lo"
	"golang.org/x/text/currency"
)

var (
	ErrNotFound = errors.New("order not found")
)

type orderRepository struct {
	q    *db.Queries
	dbtx db.DBTX
}

func NewOrder(pool *pgxpool.Pool) port.OrderRepository {
	return &orderRepository{
		q:    db.New(pool),
		dbtx: pool,
	}
}

func NewOrderWithTx(tx pgx.Tx) port.OrderRepository {
	return &orderRepository{
		q:    db.New(tx),
		dbtx: tx,
	}
}

func (r *orderRepository) GetOrder(ctx context.Context, orderID int64) (domain.Order, error) {
	var o domain.Order

	dbOrder, err := r.q.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return o, fmt.Errorf("q.GetOrder: %w", ErrNotFound)
		}
		return o, fmt.Errorf("q.GetOrder: %w", err)
	}

	order, err := mapDBOrderToDomain(dbOrder)
	if err != nil {
		return o, fmt.Errorf("mapDBOrderToDomain: %w", err)
	}

	return order, nil
}

func (r *orderRepository) GetOrderByPaymentID(ctx context.Context, paymentID string) (domain.Order, error) {
	var o domain.Order

	if paymentID == "" {
		return o, fmt.Errorf("paymentID is empty")
	}

	dbOrder, err := r.q.GetOrderByPaymentID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return o, fmt.Errorf("q.GetOrderByPaymentID: %w", ErrNotFound)
		}
		return o, fmt.Errorf("q.GetOrderByPaymentID: %w", err)
	}

	order, err := mapDBOrderToDomain(dbOrder)
	if err != nil {
		return o, fmt.Errorf("mapDBOrderToDomain: %w", err)
	}

	return order, nil
}

func (r *orderRepository) InsertOrder(ctx context.Context, order domain.Order) (int64, error) {
	if len(order.Items) == 0 {
		return 0, errors.New("no items in order")
	}

	items, err := json.Marshal(order.Items)
	if err != nil {
		return 0, fmt.Errorf("json.Marshal: %w", err)
	}

	status := order.Status
	if status == "" {
		status = domain.PaymentStatusPending
	}

	orderID, err := withTx(ctx, r.dbtx, func(q *db.Queries) (int64, error) {
		orderID, err := q.InsertOrder(ctx, db.InsertOrderParams{
			FirstName:     order.FirstName,
			LastName:      order.LastName,
			Phone:         order.Phone,
			PaymentMethod: string(order.PaymentMethod),
			TotalAmount:   order.Total.Amount,
			TotalCurrency: currencyOrBRL(order.Total.Currency),
			Items:         items,
			Status:        string(status),
		})
		if err != nil {
			return 0, fmt.Errorf("q.InsertOrder: %w", err)
		}

		// the reference needs the generated id
		if _, err := q.UpdateOrderProviderFields(ctx, db.UpdateOrderProviderFieldsParams{
			ID:                orderID,
			ExternalReference: lo.ToPtr(domain.ExternalReference(orderID)),
		}); err != nil {
			return 0, fmt.Errorf("q.UpdateOrderProviderFields: %w", err)
		}

		return orderID, nil
	})
	if err != nil {
		return 0, fmt.Errorf("withTx: %w", err)
	}

	return orderID, nil
}

func (r *orderRepository) SearchOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("filter.Validate: %w", err)
	}

	dbOrders, err := r.q.SearchOrders(ctx, mapDomainOrderFilterToDBFilter(filter))
	if err != nil {
		return nil, fmt.Errorf("q.SearchOrders: %w", err)
	}

	orders := make([]domain.Order, 0, len(dbOrders))
	for _, dbOrder := range dbOrders {
		order, err := mapDBOrderToDomain(dbOrder)
		if err != nil {
			return nil, fmt.Errorf("mapDBOrderToDomain: %w", err)
		}
		orders = append(orders, order)
	}

	return orders, nil
}

func (r *orderRepository) UpdateProviderFields(ctx context.Context, orderID int64, fields port.ProviderFields) error {
	if orderID == 0 {
		return fmt.Errorf("orderID is empty")
	}
	if fields.IsEmpty() {
		return nil
	}

	var status *string
	if fields.Status != nil {
		status = lo.ToPtr(string(*fields.Status))
	}

	cmdTag, err := r.q.UpdateOrderProviderFields(ctx, db.UpdateOrderProviderFieldsParams{
		ID:                orderID,
		PaymentID:         fields.PaymentID,
		ExternalReference: fields.ExternalReference,
		Status:            status,
		StatusDetail:      fields.StatusDetail,
		PixCode:           fields.PixCode,
	})
	if err != nil {
		return fmt.Errorf("q.UpdateOrderProviderFields: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("q.UpdateOrderProviderFields: %w", ErrNotFound)
	}

	return nil
}

func (r *orderRepository) SetPaid(ctx context.Context, orderID int64, paidAt *time.Time) error {
	if orderID == 0 {
		return fmt.Errorf("orderID is empty")
	}

	cmdTag, err := r.q.SetOrderPaid(ctx, orderID, paidAt)
	if err != nil {
		return fmt.Errorf("q.SetOrderPaid: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("q.SetOrderPaid: %w", ErrNotFound)
	}

	return nil
}

func (r *orderRepository) SetDelivered(ctx context.Context, orderID int64, deliveredAt time.Time) (bool, error) {
	if orderID == 0 {
		return false, fmt.Errorf("orderID is empty")
	}

	rowsAffected, err := r.q.SetOrderDelivered(ctx, orderID, deliveredAt)
	if err != nil {
		return false, fmt.Errorf("q.SetOrderDelivered: %w", err)
	}

	return rowsAffected > 0, nil
}

func (r *orderRepository) ClaimNotification(ctx context.Context, orderID int64, at time.Time) (bool, error) {
	if orderID == 0 {
		return false, fmt.Errorf("orderID is empty")
	}

	rowsAffected, err := r.q.ClaimOrderNotification(ctx, orderID, at)
	if err != nil {
		return false, fmt.Errorf("q.ClaimOrderNotification: %w", err)
	}

	return rowsAffected == 1, nil
}

func (r *orderRepository) SetNotifyError(ctx context.Context, orderID int64, notifyErr string) error {
	if orderID == 0 {
		return fmt.Errorf("orderID is empty")
	}

	cmdTag, err := r.q.SetOrderNotifyError(ctx, orderID, notifyErr)
	if err != nil {
		return fmt.Errorf("q.SetOrderNotifyError: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("q.SetOrderNotifyError: %w", ErrNotFound)
	}

	return nil
}

func (r *orderRepository) DeleteOrder(ctx context.Context, orderID int64) error {
	if orderID == 0 {
		return fmt.Errorf("orderID is empty")
	}

	cmdTag, err := r.q.DeleteOrder(ctx, orderID)
	if err != nil {
		return fmt.Errorf("q.DeleteOrder: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("q.DeleteOrder: %w", ErrNotFound)
	}

	return nil
}

func mapDomainOrderFilterToDBFilter(filter domain.OrderFilter) db.SearchOrdersParams {
	statuses := lo.Map(filter.Statuses, func(s domain.PaymentStatus, _ int) string {
		return string(s)
	})
	methods := lo.Map(filter.Methods, func(m domain.PaymentMethod, _ int) string {
		return string(m)
	})

	var createdAfter, createdBefore *time.Time
	if filter.CreatedAt != nil {
		createdAfter = filter.CreatedAt.After
		createdBefore = filter.CreatedAt.Before
	}

	return db.SearchOrdersParams{
		Ids:           nilSliceIfEmpty(filter.IDs),
		Statuses:      nilSliceIfEmpty(statuses),
		Methods:       nilSliceIfEmpty(methods),
		IsPaid:        filter.IsPaid,
		CreatedAfter:  createdAfter,
		CreatedBefore: createdBefore,
	}
}

func mapDBOrderToDomain(dbOrder db.Order) (domain.Order, error) {
	var o domain.Order

	parsedCurrency, err := currency.ParseISO(dbOrder.TotalCurrency)
	if err != nil {
		return o, fmt.Errorf("currency[%s] is not valid: %w", dbOrder.TotalCurrency, err)
	}

	var items []domain.LineItem
	if len(dbOrder.Items) > 0 {
		if err := json.Unmarshal(dbOrder.Items, &items); err != nil {
			return o, fmt.Errorf("json.Unmarshal[items]: %w", err)
		}
	}

	method, err := domain.ToPaymentMethod(dbOrder.PaymentMethod)
	if err != nil {
		return o, fmt.Errorf("domain.ToPaymentMethod: %w", err)
	}

	return domain.Order{
		ID:                  dbOrder.ID,
		FirstName:           dbOrder.FirstName,
		LastName:            dbOrder.LastName,
		Phone:               dbOrder.Phone,
		PaymentMethod:       method,
		Total:               domain.Money{Amount: dbOrder.TotalAmount, Currency: parsedCurrency},
		Items:               items,
		PaymentID:           dbOrder.PaymentID,
		ExternalReference:   dbOrder.ExternalReference,
		Status:              domain.PaymentStatus(dbOrder.Status),
		StatusDetail:        dbOrder.StatusDetail,
		PixCode:             dbOrder.PixCode,
		IsPaid:              dbOrder.IsPaid,
		PaidAt:              dbOrder.PaidAt,
		WhatsAppNotified:    dbOrder.WhatsappNotified,
		WhatsAppNotifiedAt:  dbOrder.WhatsappNotifiedAt,
		WhatsAppNotifyError: dbOrder.WhatsappNotifyError,
		IsDelivered:         dbOrder.IsDelivered,
		DeliveredAt:         dbOrder.DeliveredAt,
		CreatedAt:           dbOrder.CreatedAt,
		UpdatedAt:           dbOrder.UpdatedAt,
	}, nil
}

func currencyOrBRL(u currency.Unit) string {
	if u == (currency.Unit{}) {
		return currency.BRL.String()
	}
	return u.String()
}

func nilSliceIfEmpty[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	return s
}
