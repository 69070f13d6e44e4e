package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/carrierops/chorus/pkg/persistence"
	"github.com/carrierops/chorus/pkg/persistence/file"
	"github.com/carrierops/chorus/pkg/persistence/postgresql"
)

// NewResultStore creates a result store from a database URL. A
// postgres:// or postgresql:// URL selects the PostgreSQL store; anything
// else is treated as a filesystem path for the file store.
func NewResultStore(ctx context.Context, logger *slog.Logger, databaseURL string) persistence.ResultStore {
	switch parseStoreProvider(databaseURL) {
	case "postgresql":
		store, err := postgresql.NewResultStore(ctx, logger, databaseURL)
		if err != nil {
			panic(fmt.Errorf("failed to create PostgreSQL result store: %w", err))
		}

		return store
	default:
		return file.NewResultStore(databaseURL)
	}
}

func parseStoreProvider(databaseURL string) string {
	provider, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	if provider == "postgres" || provider == "postgresql" {
		return "postgresql"
	}

	return "file"
}
