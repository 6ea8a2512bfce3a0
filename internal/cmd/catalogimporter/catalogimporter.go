// Package catalogimporter implements the catalog-importer command: it
// validates a JSON catalog and writes it into the sqlite catalog store.
package catalogimporter

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/louisbranch/creaturebattle/internal/catalog"
	"github.com/louisbranch/creaturebattle/internal/catalog/storage/sqlite"
	"github.com/louisbranch/creaturebattle/internal/platform/cmd"
)

// Config holds catalog-importer configuration.
type Config struct {
	Dir    string `env:"CREATUREBATTLE_CATALOG_DIR"`
	DBPath string `env:"CREATUREBATTLE_CATALOG_DB"  envDefault:"data/catalog.db"`
	DryRun bool   `env:"CREATUREBATTLE_CATALOG_DRY_RUN"`
}

// ParseConfig parses env defaults and then flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := cmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Dir, "dir", cfg.Dir, "directory with moves.json, species.json, wild_pool.json and opponents.json; blank imports the embedded catalog")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "catalog database path")
	fs.BoolVar(&cfg.DryRun, "dry-run", cfg.DryRun, "validate without writing to the database")
	if err := cmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run loads the dataset and imports it.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if out == nil {
		out = io.Discard
	}

	ds, origin, err := loadDataset(cfg.Dir)
	if err != nil {
		return err
	}
	if cfg.DryRun {
		fmt.Fprintf(out, "Validated %s: %d moves, %d species, %d wild pool entries, %d opponents\n",
			origin, len(ds.Moves), len(ds.Species), len(ds.WildPool), len(ds.Opponents))
		return nil
	}

	dbPath := strings.TrimSpace(cfg.DBPath)
	if dbPath == "" {
		return errors.New("db-path is required")
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create db dir: %w", err)
		}
	}
	store, err := sqlite.Open(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("open catalog store: %w", err)
	}
	defer store.Close()

	summary, err := store.Import(ctx, ds)
	if err != nil {
		return fmt.Errorf("import %s: %w", origin, err)
	}
	fmt.Fprintf(out, "Imported %s into %s: %d moves, %d species, %d learnset rows, %d wild pool entries, %d opponents\n",
		origin, dbPath, summary.Moves, summary.Species, summary.Learnset, summary.WildPool, summary.Opponents)
	return nil
}

func loadDataset(dir string) (catalog.Dataset, string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		ds, err := catalog.DefaultDataset()
		if err != nil {
			return catalog.Dataset{}, "", fmt.Errorf("load embedded catalog: %w", err)
		}
		return ds, "embedded catalog", nil
	}
	ds, err := catalog.LoadDataset(os.DirFS(dir))
	if err != nil {
		return catalog.Dataset{}, "", fmt.Errorf("load %s: %w", dir, err)
	}
	return ds, dir, nil
}
