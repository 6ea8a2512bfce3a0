// Package battle implements the battle command: it starts a battle from
// catalog data, lets the heuristic autopilot play the player side and
// prints the battle log.
package battle

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/louisbranch/creaturebattle/internal/battle/ai"
	"github.com/louisbranch/creaturebattle/internal/battle/encounter"
	"github.com/louisbranch/creaturebattle/internal/battle/service"
	"github.com/louisbranch/creaturebattle/internal/catalog"
	"github.com/louisbranch/creaturebattle/internal/catalog/source"
	"github.com/louisbranch/creaturebattle/internal/platform/cmd"
	i18ncatalog "github.com/louisbranch/creaturebattle/internal/platform/i18n/catalog"
	"github.com/louisbranch/creaturebattle/internal/platform/logging"
)

// Config holds battle command configuration.
type Config struct {
	Seed            string `env:"CREATUREBATTLE_SEED"`
	AI              string `env:"CREATUREBATTLE_AI"                envDefault:"heuristic"`
	Locale          string `env:"CREATUREBATTLE_LOCALE"            envDefault:"en-US"`
	CatalogDB       string `env:"CREATUREBATTLE_CATALOG_DB"`
	KeepStatusMoves bool   `env:"CREATUREBATTLE_KEEP_STATUS_MOVES"`
	Team            string `env:"CREATUREBATTLE_TEAM"              envDefault:"4:12,1:10"`
	Opponent        string `env:"CREATUREBATTLE_OPPONENT"          envDefault:"brock"`
	Wild            bool   `env:"CREATUREBATTLE_WILD"`
	ScalePlayer     bool   `env:"CREATUREBATTLE_SCALE_PLAYER"`
	MaxTurns        int    `env:"CREATUREBATTLE_MAX_TURNS"         envDefault:"500"`

	Log logging.Config
}

// ParseConfig parses env defaults and then flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := cmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Seed, "seed", cfg.Seed, "battle seed; blank draws a random one")
	fs.StringVar(&cfg.AI, "ai", cfg.AI, "opponent strategy (naive|heuristic)")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "battle text locale")
	fs.StringVar(&cfg.CatalogDB, "catalog-db", cfg.CatalogDB, "sqlite catalog path; blank uses the embedded catalog")
	fs.BoolVar(&cfg.KeepStatusMoves, "keep-status-moves", cfg.KeepStatusMoves, "keep non-damaging moves on hydrated creatures")
	fs.StringVar(&cfg.Team, "team", cfg.Team, "player team as species:level pairs, e.g. 25:12,7:10")
	fs.StringVar(&cfg.Opponent, "opponent", cfg.Opponent, "catalog opponent id")
	fs.BoolVar(&cfg.Wild, "wild", cfg.Wild, "fight a creature from the wild pool instead of an opponent")
	fs.BoolVar(&cfg.ScalePlayer, "scale-player", cfg.ScalePlayer, "level the player team to the opponent")
	fs.IntVar(&cfg.MaxTurns, "max-turns", cfg.MaxTurns, "upper bound on autopilot decisions")
	fs.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "log level")
	if err := cmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run plays one battle to the end and writes its log to out. Diagnostics
// go to errOut.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if cfg.MaxTurns <= 0 {
		return errors.New("max-turns must be positive")
	}
	team, err := ParseTeam(cfg.Team)
	if err != nil {
		return err
	}
	strategy, err := ai.ParseKind(cfg.AI)
	if err != nil {
		return err
	}

	log := logging.New(cfg.Log, errOut)
	cat, closeCatalog, err := source.Open(ctx, cfg.CatalogDB, log)
	if err != nil {
		return err
	}
	defer closeCatalog()

	req := service.StartRequest{
		Player:          team,
		Kind:            encounter.KindTrainer,
		OpponentID:      cfg.Opponent,
		ScalePlayer:     cfg.ScalePlayer,
		Seed:            parseSeed(cfg.Seed),
		Strategy:        strategy,
		Locale:          cfg.Locale,
		KeepStatusMoves: cfg.KeepStatusMoves,
	}
	if cfg.Wild {
		req.Kind = encounter.KindWild
		req.OpponentID = ""
	}

	battles := service.New(cat, service.Options{Logger: log})
	started, err := battles.Start(ctx, req)
	if err != nil {
		return fmt.Errorf("start battle: %s: %w", i18ncatalog.ErrorText(cfg.Locale, err), err)
	}
	defer battles.End(context.Background(), started.ID)

	_, state, err := battles.Autoplay(ctx, started.ID, cfg.MaxTurns)
	if err != nil {
		return fmt.Errorf("play battle: %w", err)
	}
	for _, line := range state.Log {
		fmt.Fprintln(out, line)
	}
	if state.Outcome == nil {
		return fmt.Errorf("battle unfinished after %d decisions", cfg.MaxTurns)
	}
	fmt.Fprintf(out, "%s (%s after %d turns)\n", state.Outcome.Message, state.Outcome.Result, state.Turn)
	return nil
}

// ParseTeam reads "species:level" pairs separated by commas.
func ParseTeam(value string) ([]catalog.TeamEntry, error) {
	var team []catalog.TeamEntry
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		speciesText, levelText, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("team entry %q: want species:level", part)
		}
		species, err := strconv.Atoi(strings.TrimSpace(speciesText))
		if err != nil {
			return nil, fmt.Errorf("team entry %q: species: %w", part, err)
		}
		level, err := strconv.Atoi(strings.TrimSpace(levelText))
		if err != nil {
			return nil, fmt.Errorf("team entry %q: level: %w", part, err)
		}
		team = append(team, catalog.TeamEntry{SpeciesID: species, Level: level})
	}
	if len(team) == 0 {
		return nil, errors.New("team is required")
	}
	return team, nil
}

// parseSeed keeps numeric seeds numeric so "42" replays the same battle as
// a scenario seeded with 42. Blank means a random seed.
func parseSeed(value string) any {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return n
	}
	return value
}
