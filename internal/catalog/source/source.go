// Package source opens the catalog a command plays against.
package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/louisbranch/creaturebattle/internal/catalog"
	"github.com/louisbranch/creaturebattle/internal/catalog/storage/sqlite"
)

// Catalog serves creature, move and encounter data.
type Catalog interface {
	catalog.Provider
	catalog.Encounters
}

// cached fronts a store's provider with the singleflight cache and serves
// encounters straight from the store.
type cached struct {
	*catalog.Cache
	catalog.Encounters
}

// Open returns the sqlite catalog at dbPath behind a cache, or the embedded
// dataset when dbPath is blank. The returned close func releases the store.
func Open(ctx context.Context, dbPath string, log logrus.FieldLogger) (Catalog, func() error, error) {
	noop := func() error { return nil }

	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		ds, err := catalog.DefaultDataset()
		if err != nil {
			return nil, noop, fmt.Errorf("load embedded catalog: %w", err)
		}
		return catalog.NewMemory(ds), noop, nil
	}

	store, err := sqlite.Open(ctx, dbPath)
	if err != nil {
		return nil, noop, fmt.Errorf("open catalog store: %w", err)
	}
	return cached{Cache: catalog.NewCache(store, log), Encounters: store}, store.Close, nil
}
