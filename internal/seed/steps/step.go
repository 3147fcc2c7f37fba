package steps

import (
	"context"
)

type Step interface {
	Name() string
	Run(ctx context.Context, dataCtx DataContext) error
}

type DataContext map[string]string

// CatalogEntry is one product of a seed catalog file.
type CatalogEntry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Cause       string `json:"cause"`
	Price       string `json:"price"`
	ImageURL    string `json:"image_url"`
}
