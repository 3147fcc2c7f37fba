// Package seed resets the storefront catalog to the fixed launch menu.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/nikolayk812/pixshop/internal/port"
	"github.com/nikolayk812/pixshop/internal/seed/steps"
)

//go:embed data/catalog.json
var defaultCatalog []byte

type Pipeline struct {
	steps   []steps.Step
	dataCtx steps.DataContext
}

// NewPipeline seeds the embedded catalog. Every product is deactivated first,
// so only the listed ones stay on sale.
func NewPipeline(catalog port.CatalogRepository) (Pipeline, error) {
	return NewPipelineWithCatalog(catalog, defaultCatalog)
}

func NewPipelineWithCatalog(catalog port.CatalogRepository, rawCatalog []byte) (Pipeline, error) {
	var p Pipeline

	if catalog == nil {
		return p, fmt.Errorf("catalog is nil")
	}

	pSteps, err := buildSteps(catalog, rawCatalog)
	if err != nil {
		return p, fmt.Errorf("buildSteps: %w", err)
	}

	return Pipeline{
		steps:   pSteps,
		dataCtx: make(steps.DataContext),
	}, nil
}

func (p Pipeline) Run(ctx context.Context) error {
	for idx, step := range p.steps {
		if err := step.Run(ctx, p.dataCtx); err != nil {
			return fmt.Errorf("step.Run[%d][%s]: %w", idx, step.Name(), err)
		}

		slog.Debug("seed step done",
			"method", "Pipeline.Run",
			"step", step.Name())
	}

	return nil
}

// Result returns what the steps recorded, such as the number of upserted products.
func (p Pipeline) Result(key string) string {
	return p.dataCtx[key]
}

const (
	catalogKey  = "catalog"
	UpsertedKey = "upserted"
)

func buildSteps(catalog port.CatalogRepository, rawCatalog []byte) ([]steps.Step, error) {
	var results []steps.Step

	step0, err := steps.NewLoadCatalog(rawCatalog, catalogKey)
	if err != nil {
		return nil, fmt.Errorf("steps.NewLoadCatalog: %w", err)
	}
	results = append(results, step0)

	step1, err := steps.NewDeactivateProducts(catalog)
	if err != nil {
		return nil, fmt.Errorf("steps.NewDeactivateProducts: %w", err)
	}
	results = append(results, step1)

	step2, err := steps.NewUpsertProducts(catalog, catalogKey, UpsertedKey)
	if err != nil {
		return nil, fmt.Errorf("steps.NewUpsertProducts: %w", err)
	}
	results = append(results, step2)

	return results, nil
}
