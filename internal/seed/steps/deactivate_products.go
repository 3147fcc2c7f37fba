package steps

import (
	"context"
	"fmt"

	"github.com/nikolayk812/pixshop/internal/port"
)

type DeactivateProducts struct {
	catalog port.CatalogRepository
}

func NewDeactivateProducts(catalog port.CatalogRepository) (DeactivateProducts, error) {
	var s DeactivateProducts

	if catalog == nil {
		return s, fmt.Errorf("catalog is nil")
	}

	return DeactivateProducts{
		catalog: catalog,
	}, nil
}

func (s DeactivateProducts) Name() string {
	return "deactivate_products"
}

func (s DeactivateProducts) Run(ctx context.Context, _ DataContext) error {
	if err := s.catalog.DeactivateAllProducts(ctx); err != nil {
		return fmt.Errorf("catalog.DeactivateAllProducts: %w", err)
	}

	return nil
}
