package fakes

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/nikolayk812/pixshop/internal/domain"
	"github.com/nikolayk812/pixshop/internal/port"
)

type CatalogRepository struct {
	mu       sync.Mutex
	products map[int64]domain.Product
	variants map[int64]domain.Variant
	nextID   int64
}

var _ port.CatalogRepository = (*CatalogRepository)(nil)

func NewCatalogRepository(products []domain.Product, variants []domain.Variant) *CatalogRepository {
	r := &CatalogRepository{
		products: make(map[int64]domain.Product),
		variants: make(map[int64]domain.Variant),
	}
	for _, p := range products {
		r.products[p.ID] = p
		r.nextID = max(r.nextID, p.ID)
	}
	for _, v := range variants {
		r.variants[v.ID] = v
	}
	return r
}

func (r *CatalogRepository) ListActiveProducts(context.Context) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var products []domain.Product
	for _, p := range r.products {
		if p.Available() {
			products = append(products, p)
		}
	}
	slices.SortFunc(products, func(a, b domain.Product) int {
		return strings.Compare(a.Name, b.Name)
	})
	return products, nil
}

func (r *CatalogRepository) GetProducts(_ context.Context, ids []int64) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var products []domain.Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok && !slices.ContainsFunc(products, func(x domain.Product) bool { return x.ID == id }) {
			products = append(products, p)
		}
	}
	return products, nil
}

func (r *CatalogRepository) GetVariants(_ context.Context, ids []int64) ([]domain.Variant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var variants []domain.Variant
	for _, id := range ids {
		if v, ok := r.variants[id]; ok && !slices.ContainsFunc(variants, func(x domain.Variant) bool { return x.ID == id }) {
			variants = append(variants, v)
		}
	}
	return variants, nil
}

func (r *CatalogRepository) UpsertProductByName(_ context.Context, product domain.Product) (int64, error) {
	if product.Name == "" {
		return 0, fmt.Errorf("product name is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for id, p := range r.products {
		if p.Name == product.Name {
			product.ID = id
			r.products[id] = product
			return id, nil
		}
	}

	r.nextID++
	product.ID = r.nextID
	r.products[product.ID] = product
	return product.ID, nil
}

func (r *CatalogRepository) DeactivateAllProducts(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, p := range r.products {
		p.Active = false
		r.products[id] = p
	}
	return nil
}
