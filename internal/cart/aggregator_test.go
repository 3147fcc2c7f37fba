package cart_test

import (
	"context"
	"errors"
	"testing"

	"github.com/nikolayk812/pixshop/internal/cart"
	"github.com/nikolayk812/pixshop/internal/domain"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate(t *testing.T) {
	pastel := domain.Product{ID: 1, Name: "Pastel QTO", Price: decimal.RequireFromString("12.00"), ImageURL: "pastel.jpg", Active: true}
	combo := domain.Product{ID: 2, Name: "Combo", Price: decimal.RequireFromString("15.00"), Active: true}
	inactive := domain.Product{ID: 5, Name: "Old", Price: decimal.RequireFromString("9.90"), Active: false}
	deleted := domain.Product{ID: 6, Name: "Gone", Price: decimal.RequireFromString("9.90"), Active: true, Deleted: true}
	products := []domain.Product{pastel, combo, inactive, deleted}

	guarana := domain.Variant{ID: 10, ProductID: 2, Name: "Guarana", Price: decimal.RequireFromString("16.50"), Active: true}
	foreign := domain.Variant{ID: 11, ProductID: 1, Name: "Foreign", Price: decimal.RequireFromString("1.00"), Active: true}
	offVariant := domain.Variant{ID: 12, ProductID: 2, Name: "Off", Price: decimal.RequireFromString("1.00"), Active: false}
	variants := []domain.Variant{guarana, foreign, offVariant}

	tests := []struct {
		name      string
		lines     []domain.CartLine
		wantItems []string
		wantTotal string
		wantCount int
	}{
		{
			name:      "empty cart",
			wantTotal: "0.00",
		},
		{
			name:      "inactive product is dropped",
			lines:     []domain.CartLine{{Key: domain.CartKey{ProductID: 5}, Quantity: 2}},
			wantTotal: "0.00",
		},
		{
			name:      "deleted and unknown products are dropped",
			lines:     []domain.CartLine{{Key: domain.CartKey{ProductID: 6}, Quantity: 1}, {Key: domain.CartKey{ProductID: 99}, Quantity: 1}},
			wantTotal: "0.00",
		},
		{
			name: "product price times quantity",
			lines: []domain.CartLine{
				{Key: domain.CartKey{ProductID: 1}, Quantity: 2},
				{Key: domain.CartKey{ProductID: 5}, Quantity: 3},
			},
			wantItems: []string{"Pastel QTO"},
			wantTotal: "24.00",
			wantCount: 2,
		},
		{
			name: "variant price replaces product price",
			lines: []domain.CartLine{
				{Key: domain.CartKey{ProductID: 2, VariantID: 10}, Quantity: 1},
				{Key: domain.CartKey{ProductID: 1}, Quantity: 1},
			},
			wantItems: []string{"Combo - Guarana", "Pastel QTO"},
			wantTotal: "28.50",
			wantCount: 2,
		},
		{
			name: "variant of another product is dropped",
			lines: []domain.CartLine{
				{Key: domain.CartKey{ProductID: 2, VariantID: 11}, Quantity: 1},
			},
			wantTotal: "0.00",
		},
		{
			name: "inactive or unknown variant is dropped",
			lines: []domain.CartLine{
				{Key: domain.CartKey{ProductID: 2, VariantID: 12}, Quantity: 1},
				{Key: domain.CartKey{ProductID: 2, VariantID: 404}, Quantity: 1},
			},
			wantTotal: "0.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := cart.Aggregate(domain.Cart{Lines: tt.lines}, products, variants)

			assert.Equal(t, tt.wantTotal, summary.Total)
			assert.Equal(t, tt.wantCount, summary.Count)
			assert.Equal(t, tt.wantItems, nilIfEmpty(lo.Map(summary.Items, func(i domain.CartItem, _ int) string {
				return i.Name
			})))
		})
	}
}

func TestAggregate_ItemFields(t *testing.T) {
	product := domain.Product{ID: 2, Name: "Combo", Price: decimal.RequireFromString("15.00"), ImageURL: "combo.jpg", Active: true}
	variant := domain.Variant{ID: 10, ProductID: 2, Name: "Suco", Price: decimal.RequireFromString("15.5"), Active: true}

	summary := cart.Aggregate(domain.Cart{Lines: []domain.CartLine{
		{Key: domain.CartKey{ProductID: 2, VariantID: 10}, Quantity: 3},
	}}, []domain.Product{product}, []domain.Variant{variant})

	require.Len(t, summary.Items, 1)
	assert.Equal(t, domain.CartItem{
		ProductID: 2,
		VariantID: lo.ToPtr(int64(10)),
		Name:      "Combo - Suco",
		UnitPrice: "15.50",
		Quantity:  3,
		ImageURL:  "combo.jpg",
		Subtotal:  "46.50",
	}, summary.Items[0])
	assert.Equal(t, "46.50", summary.Total)
	assert.Equal(t, 3, summary.Count)
}

func TestAggregator_Summarize(t *testing.T) {
	catalog := &fakeCatalog{
		products: []domain.Product{{ID: 1, Name: "Pastel", Price: decimal.RequireFromString("12.00"), Active: true}},
	}

	aggregator, err := cart.NewAggregator(catalog)
	require.NoError(t, err)

	summary, err := aggregator.Summarize(t.Context(), domain.Cart{Lines: []domain.CartLine{
		{Key: domain.CartKey{ProductID: 1}, Quantity: 1},
	}})
	require.NoError(t, err)
	assert.Equal(t, "12.00", summary.Total)
	assert.Equal(t, []int64{1}, catalog.requestedProducts)
	assert.Empty(t, catalog.requestedVariants)

	catalog.err = errors.New("db down")
	_, err = aggregator.Summarize(t.Context(), domain.Cart{Lines: []domain.CartLine{
		{Key: domain.CartKey{ProductID: 1}, Quantity: 1},
	}})
	require.EqualError(t, err, "catalog.GetProducts: db down")

	_, err = cart.NewAggregator(nil)
	require.EqualError(t, err, "catalog is nil")
}

type fakeCatalog struct {
	products []domain.Product
	variants []domain.Variant
	err      error

	requestedProducts []int64
	requestedVariants []int64
}

func (f *fakeCatalog) ListActiveProducts(context.Context) ([]domain.Product, error) {
	return f.products, f.err
}

func (f *fakeCatalog) GetProducts(_ context.Context, ids []int64) ([]domain.Product, error) {
	f.requestedProducts = ids
	return f.products, f.err
}

func (f *fakeCatalog) GetVariants(_ context.Context, ids []int64) ([]domain.Variant, error) {
	f.requestedVariants = ids
	return f.variants, f.err
}

func (f *fakeCatalog) UpsertProductByName(context.Context, domain.Product) (int64, error) {
	return 0, errors.New("not implemented")
}

func (f *fakeCatalog) DeactivateAllProducts(context.Context) error {
	return errors.New("not implemented")
}

func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}
