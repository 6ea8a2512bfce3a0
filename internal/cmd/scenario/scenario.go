// Package scenario implements the scenario command, which runs Lua battle
// scripts against an in-process battle service.
package scenario

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/louisbranch/creaturebattle/internal/catalog/source"
	"github.com/louisbranch/creaturebattle/internal/platform/cmd"
	"github.com/louisbranch/creaturebattle/internal/platform/logging"
	"github.com/louisbranch/creaturebattle/internal/scenario"
)

// Config holds scenario command configuration.
type Config struct {
	Scenario   string        `env:"CREATUREBATTLE_SCENARIO_FILE"`
	Dir        string        `env:"CREATUREBATTLE_SCENARIO_DIR"`
	CatalogDB  string        `env:"CREATUREBATTLE_CATALOG_DB"`
	Assertions string        `env:"CREATUREBATTLE_SCENARIO_ASSERTIONS" envDefault:"strict"`
	Verbose    bool          `env:"CREATUREBATTLE_SCENARIO_VERBOSE"`
	Timeout    time.Duration `env:"CREATUREBATTLE_SCENARIO_TIMEOUT"    envDefault:"10s"`

	Log logging.Config
}

// ParseConfig parses env defaults and then flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := cmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Scenario, "scenario", cfg.Scenario, "path to scenario lua file")
	fs.StringVar(&cfg.Dir, "dir", cfg.Dir, "run every .lua file in this directory")
	fs.StringVar(&cfg.CatalogDB, "catalog-db", cfg.CatalogDB, "sqlite catalog path; blank uses the embedded catalog")
	fs.StringVar(&cfg.Assertions, "assertions", cfg.Assertions, "assertion mode (strict|logonly)")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "enable verbose logging")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "timeout per step")
	if err := cmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the configured scenarios, reporting each to out.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	paths, err := scenarioPaths(cfg)
	if err != nil {
		return err
	}
	mode, err := scenario.ParseAssertionMode(cfg.Assertions)
	if err != nil {
		return err
	}

	logger := logging.New(cfg.Log, errOut)
	cat, closeCatalog, err := source.Open(ctx, cfg.CatalogDB, logger)
	if err != nil {
		return err
	}
	defer closeCatalog()

	var failed []string
	for _, path := range paths {
		runCfg := scenario.DefaultConfig()
		if cfg.Timeout > 0 {
			runCfg.Timeout = cfg.Timeout
		}
		runCfg.Assertions = mode
		runCfg.Verbose = cfg.Verbose
		runCfg.Logger = logger.WithField("scenario", filepath.Base(path))
		runner, err := scenario.NewRunner(cat, runCfg)
		if err != nil {
			return err
		}
		loaded, err := scenario.LoadScenarioFromFile(path)
		if err == nil {
			err = runner.RunScenario(ctx, loaded)
		}
		switch {
		case err != nil:
			fmt.Fprintf(out, "FAIL %s: %v\n", path, err)
			failed = append(failed, path)
		case len(runner.Failures()) > 0:
			fmt.Fprintf(out, "WARN %s: %d failed expectations\n", path, len(runner.Failures()))
		default:
			fmt.Fprintf(out, "ok   %s\n", path)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d scenarios failed", len(failed), len(paths))
	}
	return nil
}

func scenarioPaths(cfg Config) ([]string, error) {
	var paths []string
	if file := strings.TrimSpace(cfg.Scenario); file != "" {
		paths = append(paths, file)
	}
	if dir := strings.TrimSpace(cfg.Dir); dir != "" {
		matches, err := filepath.Glob(filepath.Join(dir, "*.lua"))
		if err != nil {
			return nil, fmt.Errorf("list scenarios: %w", err)
		}
		sort.Strings(matches)
		paths = append(paths, matches...)
	}
	if len(paths) == 0 {
		return nil, errors.New("scenario path or dir is required")
	}
	return paths, nil
}
