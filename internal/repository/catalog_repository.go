package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/pixshop/internal/db"
	"github.com/nikolayk812/pixshop/internal/domain"
	"github.com/nikolayk812/pixshop/internal/port"
	"github.com/samber/lo"
)

type catalogRepository struct {
	q *db.Queries
}

func NewCatalog(pool *pgxpool.Pool) port.CatalogRepository {
	return &catalogRepository{
		q: db.New(pool),
	}
}

func NewCatalogWithTx(tx pgx.Tx) port.CatalogRepository {
	return &catalogRepository{
		q: db.New(tx),
	}
}

func (r *catalogRepository) ListActiveProducts(ctx context.Context) ([]domain.Product, error) {
	dbProducts, err := r.q.ListActiveProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("q.ListActiveProducts: %w", err)
	}

	return lo.Map(dbProducts, mapDBProductToDomain), nil
}

func (r *catalogRepository) GetProducts(ctx context.Context, ids []int64) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	dbProducts, err := r.q.GetProductsByIDs(ctx, lo.Uniq(ids))
	if err != nil {
		return nil, fmt.Errorf("q.GetProductsByIDs: %w", err)
	}

	return lo.Map(dbProducts, mapDBProductToDomain), nil
}

func (r *catalogRepository) GetVariants(ctx context.Context, ids []int64) ([]domain.Variant, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	dbVariants, err := r.q.GetVariantsByIDs(ctx, lo.Uniq(ids))
	if err != nil {
		return nil, fmt.Errorf("q.GetVariantsByIDs: %w", err)
	}

	return lo.Map(dbVariants, func(v db.ProductVariant, _ int) domain.Variant {
		return domain.Variant{
			ID:        v.ID,
			ProductID: v.ProductID,
			Name:      v.Name,
			Price:     v.Price,
			Active:    v.Active,
			Deleted:   v.Deleted,
		}
	}), nil
}

func (r *catalogRepository) UpsertProductByName(ctx context.Context, product domain.Product) (int64, error) {
	if product.Name == "" {
		return 0, fmt.Errorf("product name is empty")
	}

	id, err := r.q.UpsertProductByName(ctx, db.UpsertProductByNameParams{
		Name:        product.Name,
		Description: product.Description,
		Cause:       product.Cause,
		Price:       product.Price,
		ImageUrl:    product.ImageURL,
		Active:      product.Active,
	})
	if err != nil {
		return 0, fmt.Errorf("q.UpsertProductByName: %w", err)
	}

	return id, nil
}

func (r *catalogRepository) DeactivateAllProducts(ctx context.Context) error {
	if err := r.q.DeactivateAllProducts(ctx); err != nil {
		return fmt.Errorf("q.DeactivateAllProducts: %w", err)
	}

	return nil
}

func mapDBProductToDomain(p db.Product, _ int) domain.Product {
	return domain.Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Cause:       p.Cause,
		Price:       p.Price,
		ImageURL:    p.ImageUrl,
		Active:      p.Active,
		Deleted:     p.Deleted,
		CreatedAt:   p.CreatedAt,
	}
}
