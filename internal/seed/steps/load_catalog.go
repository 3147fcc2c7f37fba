package steps

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// LoadCatalog validates the raw catalog and stores it under catalogKey.
type LoadCatalog struct {
	raw        []byte
	catalogKey string
}

func NewLoadCatalog(raw []byte, catalogKey string) (LoadCatalog, error) {
	var s LoadCatalog

	if len(raw) == 0 {
		return s, fmt.Errorf("raw catalog is empty")
	}
	if catalogKey == "" {
		return s, fmt.Errorf("catalogKey is empty")
	}

	return LoadCatalog{
		raw:        raw,
		catalogKey: catalogKey,
	}, nil
}

func (s LoadCatalog) Name() string {
	return "load_catalog"
}

func (s LoadCatalog) Run(_ context.Context, dataCtx DataContext) error {
	var entries []CatalogEntry
	if err := json.Unmarshal(s.raw, &entries); err != nil {
		return fmt.Errorf("json.Unmarshal: %w", err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("catalog has no products")
	}

	for i, entry := range entries {
		entries[i].Name = strings.TrimSpace(entry.Name)
		if entries[i].Name == "" {
			return fmt.Errorf("entry[%d]: name is empty", i)
		}

		price, err := decimal.NewFromString(entry.Price)
		if err != nil {
			return fmt.Errorf("entry[%d]: decimal.NewFromString[%s]: %w", i, entry.Price, err)
		}
		if !price.IsPositive() {
			return fmt.Errorf("entry[%d]: price[%s] is not positive", i, entry.Price)
		}
	}

	names := lo.Map(entries, func(e CatalogEntry, _ int) string { return e.Name })
	if dups := lo.FindDuplicates(names); len(dups) > 0 {
		return fmt.Errorf("duplicate product names: %s", strings.Join(dups, ", "))
	}

	normalized, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	dataCtx[s.catalogKey] = string(normalized)

	return nil
}
