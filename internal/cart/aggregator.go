// Package cart resolves session carts against the catalog and stores them per session.
package cart

import (
	"context"
	"fmt"

	"github.com/nikolayk812/pixshop/internal/domain"
	"github.com/nikolayk812/pixshop/internal/port"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type Aggregator struct {
	catalog port.CatalogRepository
}

func NewAggregator(catalog port.CatalogRepository) (*Aggregator, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog is nil")
	}

	return &Aggregator{catalog: catalog}, nil
}

// Summarize loads the products and variants referenced by c and prices it.
func (a *Aggregator) Summarize(ctx context.Context, c domain.Cart) (domain.CartSummary, error) {
	if c.IsEmpty() {
		return Aggregate(c, nil, nil), nil
	}

	productIDs := lo.Map(c.Lines, func(l domain.CartLine, _ int) int64 { return l.Key.ProductID })
	variantIDs := lo.FilterMap(c.Lines, func(l domain.CartLine, _ int) (int64, bool) {
		return l.Key.VariantID, l.Key.HasVariant()
	})

	products, err := a.catalog.GetProducts(ctx, productIDs)
	if err != nil {
		return domain.CartSummary{}, fmt.Errorf("catalog.GetProducts: %w", err)
	}

	variants, err := a.catalog.GetVariants(ctx, variantIDs)
	if err != nil {
		return domain.CartSummary{}, fmt.Errorf("catalog.GetVariants: %w", err)
	}

	return Aggregate(c, products, variants), nil
}

// Aggregate prices every cart line. Lines whose product or variant is unknown,
// inactive, deleted, or mismatched are dropped.
func Aggregate(c domain.Cart, products []domain.Product, variants []domain.Variant) domain.CartSummary {
	productMap := lo.KeyBy(products, func(p domain.Product) int64 { return p.ID })
	variantMap := lo.KeyBy(variants, func(v domain.Variant) int64 { return v.ID })

	items := make([]domain.CartItem, 0, len(c.Lines))
	total := decimal.Zero
	count := 0

	for _, line := range c.Lines {
		if line.Quantity <= 0 {
			continue
		}

		product, ok := productMap[line.Key.ProductID]
		if !ok || !product.Available() {
			continue
		}

		name := product.Name
		unitPrice := product.Price
		var variantID *int64

		if line.Key.HasVariant() {
			variant, ok := variantMap[line.Key.VariantID]
			if !ok || !variant.Available() || variant.ProductID != product.ID {
				continue
			}

			name = product.Name + " - " + variant.Name
			unitPrice = variant.Price
			variantID = lo.ToPtr(variant.ID)
		}

		subtotal := unitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		total = total.Add(subtotal)
		count += line.Quantity

		items = append(items, domain.CartItem{
			ProductID: product.ID,
			VariantID: variantID,
			Name:      name,
			UnitPrice: unitPrice.StringFixed(2),
			Quantity:  line.Quantity,
			ImageURL:  product.ImageURL,
			Subtotal:  subtotal.StringFixed(2),
		})
	}

	return domain.CartSummary{
		Items: items,
		Total: total.StringFixed(2),
		Count: count,
	}
}
