package port

import (
	"context"

	"github.com/nikolayk812/pixshop/internal/domain"
)

type CatalogRepository interface {
	ListActiveProducts(ctx context.Context) ([]domain.Product, error)
	GetProducts(ctx context.Context, ids []int64) ([]domain.Product, error)
	GetVariants(ctx context.Context, ids []int64) ([]domain.Variant, error)

	UpsertProductByName(ctx context.Context, product domain.Product) (int64, error)
	DeactivateAllProducts(ctx context.Context) error
}

type RecipientRepository interface {
	ListActiveRecipients(ctx context.Context) ([]domain.Recipient, error)
}
