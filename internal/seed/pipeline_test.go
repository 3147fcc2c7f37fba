package seed_test

import (
	"testing"

	"github.com/nikolayk812/pixshop/internal/domain"
	"github.com/nikolayk812/pixshop/internal/fakes"
	"github.com/nikolayk812/pixshop/internal/seed"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipeline_Run(t *testing.T) {
	ctx := t.Context()

	catalog := fakes.NewCatalogRepository([]domain.Product{
		{ID: 1, Name: "Pastel de Carne", Price: decimal.RequireFromString("10.00"), Active: true},
		{ID: 2, Name: "Combo Pastel QTO + Suco", Price: decimal.RequireFromString("14.00"), Active: false},
	}, nil)

	p, err := seed.NewPipeline(catalog)
	require.NoError(t, err)

	require.NoError(t, p.Run(ctx))
	assert.Equal(t, "6", p.Result(seed.UpsertedKey))

	products, err := catalog.ListActiveProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 6)

	names := lo.Map(products, func(p domain.Product, _ int) string { return p.Name })
	assert.NotContains(t, names, "Pastel de Carne")

	combo, ok := lo.Find(products, func(p domain.Product) bool { return p.Name == "Combo Pastel QTO + Suco" })
	require.True(t, ok)
	assert.Equal(t, int64(2), combo.ID)
	assert.True(t, decimal.RequireFromString("15.00").Equal(combo.Price))
	assert.Equal(t, "Cantina Missionaria", combo.Cause)

	// running again changes nothing
	require.NoError(t, p.Run(ctx))

	again, err := catalog.ListActiveProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, again, 6)
}

func TestPipeline_InvalidCatalog(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantError string
	}{
		{
			name:      "not json",
			raw:       "{",
			wantError: "step.Run[0][load_catalog]: json.Unmarshal",
		},
		{
			name:      "no products",
			raw:       "[]",
			wantError: "step.Run[0][load_catalog]: catalog has no products",
		},
		{
			name:      "bad price",
			raw:       `[{"name":"Pastel","price":"doze"}]`,
			wantError: "step.Run[0][load_catalog]: entry[0]: decimal.NewFromString[doze]",
		},
		{
			name:      "zero price",
			raw:       `[{"name":"Pastel","price":"0"}]`,
			wantError: "step.Run[0][load_catalog]: entry[0]: price[0] is not positive",
		},
		{
			name:      "duplicate names",
			raw:       `[{"name":"Pastel","price":"1"},{"name":" Pastel ","price":"2"}]`,
			wantError: "step.Run[0][load_catalog]: duplicate product names: Pastel",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := fakes.NewCatalogRepository([]domain.Product{
				{ID: 1, Name: "Pastel de Carne", Price: decimal.RequireFromString("10.00"), Active: true},
			}, nil)

			p, err := seed.NewPipelineWithCatalog(catalog, []byte(tt.raw))
			require.NoError(t, err)

			err = p.Run(t.Context())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantError)

			// a rejected catalog leaves the current menu alone
			products, err := catalog.ListActiveProducts(t.Context())
			require.NoError(t, err)
			assert.Len(t, products, 1)
		})
	}
}

func TestNewPipeline_Validation(t *testing.T) {
	_, err := seed.NewPipeline(nil)
	require.EqualError(t, err, "catalog is nil")

	_, err = seed.NewPipelineWithCatalog(fakes.NewCatalogRepository(nil, nil), nil)
	require.EqualError(t, err, "buildSteps: steps.NewLoadCatalog: raw catalog is empty")
}
