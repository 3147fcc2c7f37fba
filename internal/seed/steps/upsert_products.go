package steps

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/nikolayk812/pixshop/internal/domain"
	"github.com/nikolayk812/pixshop/internal/port"
	"github.com/shopspring/decimal"
)

// UpsertProducts writes every catalog entry by name, active.
type UpsertProducts struct {
	catalog     port.CatalogRepository
	catalogKey  string
	upsertedKey string
}

func NewUpsertProducts(catalog port.CatalogRepository, catalogKey, upsertedKey string) (UpsertProducts, error) {
	var s UpsertProducts

	if catalog == nil {
		return s, fmt.Errorf("catalog is nil")
	}
	if catalogKey == "" {
		return s, fmt.Errorf("catalogKey is empty")
	}
	if upsertedKey == "" {
		return s, fmt.Errorf("upsertedKey is empty")
	}

	return UpsertProducts{
		catalog:     catalog,
		catalogKey:  catalogKey,
		upsertedKey: upsertedKey,
	}, nil
}

func (s UpsertProducts) Name() string {
	return "upsert_products"
}

func (s UpsertProducts) Run(ctx context.Context, dataCtx DataContext) error {
	data, ok := dataCtx[s.catalogKey]
	if !ok {
		return fmt.Errorf("key[%s] not found in data context", s.catalogKey)
	}

	var entries []CatalogEntry
	if err := json.Unmarshal([]byte(data), &entries); err != nil {
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	for _, entry := range entries {
		price, err := decimal.NewFromString(entry.Price)
		if err != nil {
			return fmt.Errorf("decimal.NewFromString[%s]: %w", entry.Price, err)
		}

		if _, err := s.catalog.UpsertProductByName(ctx, domain.Product{
			Name:        entry.Name,
			Description: entry.Description,
			Cause:       entry.Cause,
			Price:       price,
			ImageURL:    entry.ImageURL,
			Active:      true,
		}); err != nil {
			return fmt.Errorf("catalog.UpsertProductByName[%s]: %w", entry.Name, err)
		}
	}

	dataCtx[s.upsertedKey] = strconv.Itoa(len(entries))

	return nil
}
