// Package scenario runs Lua battle scripts against the battle service.
//
// A script builds a Scenario through the Scenario.new DSL: it declares the
// seed, strategy and both rosters, starts the battle, drives player
// actions and states expectations about events, log lines and state.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/louisbranch/creaturebattle/internal/battle/ai"
	"github.com/louisbranch/creaturebattle/internal/battle/creature"
	"github.com/louisbranch/creaturebattle/internal/battle/encounter"
	"github.com/louisbranch/creaturebattle/internal/battle/engine"
	"github.com/louisbranch/creaturebattle/internal/battle/service"
	"github.com/louisbranch/creaturebattle/internal/catalog"
	"github.com/louisbranch/creaturebattle/internal/platform/logging"
	"github.com/louisbranch/creaturebattle/internal/platform/timeouts"
)

// Config controls scenario execution.
type Config struct {
	Timeout    time.Duration
	Assertions AssertionMode
	Verbose    bool
	Logger     logrus.FieldLogger
}

// DefaultConfig returns default runner configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:    timeouts.ScenarioStep,
		Assertions: AssertionStrict,
	}
}

// Runner executes scenarios against an in-process battle service.
type Runner struct {
	catalog    service.Catalog
	battles    *service.Service
	hydrator   *catalog.Hydrator
	assertions *Assertions
	logger     logrus.FieldLogger
	verbose    bool
	timeout    time.Duration
}

// NewRunner prepares a runner over cat.
func NewRunner(cat service.Catalog, cfg Config) (*Runner, error) {
	if cat == nil {
		return nil, errors.New("catalog is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = timeouts.ScenarioStep
	}
	return &Runner{
		catalog:    cat,
		battles:    service.New(cat, service.Options{Logger: logger}),
		hydrator:   catalog.NewHydrator(cat, logger),
		assertions: &Assertions{Mode: cfg.Assertions, Logger: logger},
		logger:     logger,
		verbose:    cfg.Verbose,
		timeout:    timeout,
	}, nil
}

// Failures returns the expectations that failed so far. Only log-only runs
// accumulate more than one.
func (r *Runner) Failures() []string {
	return r.assertions.Failures()
}

// RunFile loads and executes a scenario file.
func RunFile(ctx context.Context, cat service.Catalog, cfg Config, path string) error {
	runner, err := NewRunner(cat, cfg)
	if err != nil {
		return err
	}
	scenario, err := LoadScenarioFromFile(path)
	if err != nil {
		return err
	}
	return runner.RunScenario(ctx, scenario)
}

// scenarioState is the battle being assembled or played.
type scenarioState struct {
	seed         any
	strategy     ai.Kind
	locale       string
	keepStatus   bool
	kind         encounter.Kind
	opponentID   string
	opponentName string
	player       []map[string]any
	npc          []map[string]any

	battleID   string
	lastEvents []engine.Event
	lastState  engine.State
}

// RunScenario executes the scenario steps in order.
func (r *Runner) RunScenario(ctx context.Context, scenario *Scenario) error {
	if scenario == nil {
		return errors.New("scenario is required")
	}
	r.logf("scenario start: %s (%d steps)", scenario.Name, len(scenario.Steps))
	state := &scenarioState{seed: scenario.Name, strategy: ai.KindHeuristic}

	for index, step := range scenario.Steps {
		stepNumber := index + 1
		r.logf("step %d/%d start: %s", stepNumber, len(scenario.Steps), step.Kind)
		stepStart := time.Now()
		stepCtx, cancel := context.WithTimeout(ctx, r.timeout)
		err := r.runStep(stepCtx, state, step)
		cancel()
		if err != nil {
			return fmt.Errorf("%s: step %d (%s): %w", scenario.Name, stepNumber, step.Kind, err)
		}
		r.logf("step %d/%d done: %s (%s)", stepNumber, len(scenario.Steps), step.Kind, time.Since(stepStart))
	}
	if state.battleID != "" {
		if _, err := r.battles.End(ctx, state.battleID); err != nil {
			return fmt.Errorf("%s: end battle: %w", scenario.Name, err)
		}
	}
	r.logf("scenario done: %s", scenario.Name)
	return nil
}

func (r *Runner) logf(format string, args ...any) {
	if !r.verbose {
		return
	}
	r.logger.Infof(format, args...)
}

func (r *Runner) buildRoster(ctx context.Context, state *scenarioState, entries []map[string]any) ([]*creature.Creature, error) {
	src, err := rosterSource(state.seed)
	if err != nil {
		return nil, err
	}
	team := make([]*creature.Creature, 0, len(entries))
	for i, fields := range entries {
		c, err := r.buildCreature(ctx, fields, src)
		if err != nil {
			return nil, fmt.Errorf("creature %d: %w", i+1, err)
		}
		if c.SpeciesID > 0 {
			c.ID = catalog.InstanceID(c.SpeciesID, i)
		}
		team = append(team, c)
	}
	return team, nil
}
