package template

import (
	"github.com/nikolayk812/pixshop/internal/domain"
	"github.com/samber/lo"
)

type OrderPaidData struct {
	OrderID      int64
	CustomerName string
	Phone        string
	Total        string
	Items        []OrderPaidItem
}

type OrderPaidItem struct {
	Quantity int
	Name     string
	Subtotal string
}

func BuildOrderPaidData(order domain.Order) OrderPaidData {
	return OrderPaidData{
		OrderID:      order.ID,
		CustomerName: order.CustomerName(),
		Phone:        order.Phone,
		Total:        order.Total.Amount.StringFixed(2),
		Items: lo.Map(order.Items, func(item domain.LineItem, _ int) OrderPaidItem {
			return OrderPaidItem{
				Quantity: item.Quantity,
				Name:     item.Name,
				Subtotal: item.Subtotal,
			}
		}),
	}
}
