package db

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies every embedded migration in file-name order. Statements are idempotent.
func Migrate(ctx context.Context, dbtx DBTX) error {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("fs.Glob: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		content, err := migrations.ReadFile(name)
		if err != nil {
			return fmt.Errorf("migrations.ReadFile[%s]: %w", name, err)
		}

		if _, err := dbtx.Exec(ctx, string(content)); err != nil {
			return fmt.Errorf("dbtx.Exec[%s]: %w", name, err)
		}
	}

	return nil
}
