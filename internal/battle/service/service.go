// Package service hosts many independent battles keyed by id.
//
// Each battle has its own lock; the registry lock is only held to look a
// battle up, so turns in different battles resolve concurrently.
package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/creaturebattle/internal/battle/ai"
	"github.com/louisbranch/creaturebattle/internal/battle/creature"
	"github.com/louisbranch/creaturebattle/internal/battle/encounter"
	"github.com/louisbranch/creaturebattle/internal/battle/engine"
	"github.com/louisbranch/creaturebattle/internal/battle/rng"
	"github.com/louisbranch/creaturebattle/internal/catalog"
	apperrors "github.com/louisbranch/creaturebattle/internal/platform/errors"
	"github.com/louisbranch/creaturebattle/internal/platform/id"
	"github.com/louisbranch/creaturebattle/internal/platform/logging"
	platformotel "github.com/louisbranch/creaturebattle/internal/platform/otel"
)

// Catalog is the data a service needs to build rosters.
type Catalog interface {
	catalog.Provider
	catalog.Encounters
}

// Options configures a Service.
type Options struct {
	Logger logrus.FieldLogger
	Tracer trace.Tracer
	// NewID overrides battle id generation.
	NewID func() (string, error)
}

// Service hosts battles.
type Service struct {
	catalog  Catalog
	hydrator *catalog.Hydrator
	log      logrus.FieldLogger
	tracer   trace.Tracer
	newID    func() (string, error)

	mu      sync.Mutex
	battles map[string]*session
}

type session struct {
	mu     sync.Mutex
	id     string
	battle *engine.Battle
	log    logrus.FieldLogger

	// team is the player's roster after a victory, with moves learned since.
	team []creature.Creature
	// autopilot drives AutoTurn choices.
	autopilot rng.Source
}

// New returns a service reading rosters from cat.
func New(cat Catalog, opts Options) *Service {
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = platformotel.Tracer("battle")
	}
	newID := opts.NewID
	if newID == nil {
		newID = id.NewID
	}
	return &Service{
		catalog:  cat,
		hydrator: catalog.NewHydrator(cat, log),
		log:      log,
		tracer:   tracer,
		newID:    newID,
		battles:  make(map[string]*session),
	}
}

// StartRequest describes a new battle.
//
// The player roster is PlayerCreatures when set, otherwise Player hydrated
// from the catalog. The NPC roster is NPCCreatures when set; otherwise a
// wild Kind draws a species from the wild pool and any other kind loads
// OpponentID from the catalog.
type StartRequest struct {
	Player          []catalog.TeamEntry
	PlayerCreatures []*creature.Creature

	Kind         encounter.Kind
	OpponentID   string
	OpponentName string
	NPCCreatures []*creature.Creature

	// ScalePlayer levels catalog-hydrated player creatures to the
	// strongest opposing creature.
	ScalePlayer bool

	Seed            any
	Strategy        ai.Kind
	Locale          string
	KeepStatusMoves bool
}

// Started is the result of Start.
type Started struct {
	ID     string
	Events []engine.Event
	State  engine.State
}

// Start builds both rosters and opens a battle.
func (s *Service) Start(ctx context.Context, req StartRequest) (Started, error) {
	ctx, span := s.tracer.Start(ctx, "battle.start", trace.WithAttributes(
		attribute.String("battle.kind", string(req.Kind)),
		attribute.String("battle.opponent_id", req.OpponentID),
		attribute.String("battle.ai", req.Strategy.String()),
	))
	defer span.End()

	started, err := s.start(ctx, req)
	if err != nil {
		recordError(span, err)
		s.log.WithFields(logrus.Fields{
			"code": string(apperrors.GetCode(err)),
			"kind": string(req.Kind),
		}).WithError(err).Warn("battle setup failed")
		return Started{}, err
	}
	span.SetAttributes(attribute.String("battle.id", started.ID))
	return started, nil
}

func (s *Service) start(ctx context.Context, req StartRequest) (Started, error) {
	seed := req.Seed
	if seed == nil {
		generated, err := rng.NewSeed()
		if err != nil {
			return Started{}, apperrors.Wrap(apperrors.CodeBattleInvalidSeed, "generate seed", err)
		}
		seed = generated
	}
	// Rosters draw from a stream derived from the seed. The battle stream
	// starts fresh in engine.Start.
	src, err := rng.Derive(seed, rng.StreamRoster)
	if err != nil {
		return Started{}, apperrors.Wrap(apperrors.CodeBattleInvalidSeed, "invalid seed", err)
	}

	opponent, npc, err := s.npcRoster(ctx, req, src)
	if err != nil {
		return Started{}, err
	}
	player, err := s.playerRoster(ctx, req, npc, src)
	if err != nil {
		return Started{}, err
	}
	if opponent.Kind == encounter.KindWild && len(req.NPCCreatures) == 0 {
		if npc, err = s.wildCreature(ctx, player, src); err != nil {
			return Started{}, err
		}
		opponent.Name = npc[0].Name
		opponent.ID = fmt.Sprint(npc[0].SpeciesID)
	}

	battleID, err := s.newID()
	if err != nil {
		return Started{}, fmt.Errorf("generate battle id: %w", err)
	}
	log := s.log.WithField("battle_id", battleID)

	b, err := engine.Start(player, npc, engine.Config{
		Seed:            seed,
		Strategy:        req.Strategy,
		Opponent:        opponent,
		KeepStatusMoves: req.KeepStatusMoves,
		Locale:          req.Locale,
		Logger:          log,
	})
	if err != nil {
		return Started{}, err
	}

	s.mu.Lock()
	s.battles[battleID] = &session{id: battleID, battle: b, log: log}
	s.mu.Unlock()

	return Started{ID: battleID, Events: b.Events(), State: b.State()}, nil
}

// npcRoster resolves the opponent. Wild encounters are drawn later, once
// the player's levels are known.
func (s *Service) npcRoster(ctx context.Context, req StartRequest, src rng.Source) (encounter.Opponent, []*creature.Creature, error) {
	opponent := encounter.Opponent{Kind: req.Kind, ID: req.OpponentID, Name: req.OpponentName}
	if opponent.Kind == "" {
		opponent.Kind = encounter.KindTrainer
	}
	if len(req.NPCCreatures) > 0 {
		return opponent, req.NPCCreatures, nil
	}
	if opponent.Kind == encounter.KindWild {
		return opponent, nil, nil
	}

	def, err := s.catalog.Opponent(ctx, req.OpponentID)
	if err != nil {
		return encounter.Opponent{}, nil, err
	}
	team, err := s.hydrator.HydrateTeam(ctx, def.Team, src)
	if err != nil {
		return encounter.Opponent{}, nil, err
	}
	opponent = def.Opponent()
	if req.OpponentName != "" {
		opponent.Name = req.OpponentName
	}
	return opponent, team, nil
}

func (s *Service) playerRoster(ctx context.Context, req StartRequest, npc []*creature.Creature, src rng.Source) ([]*creature.Creature, error) {
	if len(req.PlayerCreatures) > 0 {
		return req.PlayerCreatures, nil
	}
	if len(req.Player) == 0 {
		return nil, apperrors.New(apperrors.CodeBattleEmptyRoster, "player roster is empty")
	}
	entries := append([]catalog.TeamEntry(nil), req.Player...)
	if req.ScalePlayer && len(npc) > 0 {
		level, warn := encounter.PlayerLevel(npc)
		if warn != nil {
			s.log.Warn(warn.String())
		}
		for i := range entries {
			entries[i].Level = level
		}
	}
	return s.hydrator.HydrateTeam(ctx, entries, src)
}

func (s *Service) wildCreature(ctx context.Context, player []*creature.Creature, src rng.Source) ([]*creature.Creature, error) {
	pool, err := s.catalog.WildPool(ctx)
	if err != nil {
		return nil, err
	}
	entry, err := pool.Pick(src)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeBattleInvalidConfig, "pick wild creature", err)
	}
	level, warn := encounter.WildLevel(player)
	if warn != nil {
		s.log.WithField("species_id", entry.SpeciesID).Warn(warn.String())
	}
	c, err := s.hydrator.Hydrate(ctx, catalog.TeamEntry{SpeciesID: entry.SpeciesID, Level: level}, src)
	if err != nil {
		return nil, err
	}
	return []*creature.Creature{c}, nil
}

// State returns a snapshot of the battle with id.
func (s *Service) State(ctx context.Context, battleID string) (engine.State, error) {
	sess, err := s.lookup(ctx, battleID)
	if err != nil {
		return engine.State{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.battle.State(), nil
}

// End removes the battle with id and returns its final state. An unfinished
// battle is abandoned first.
func (s *Service) End(ctx context.Context, battleID string) (engine.State, error) {
	sess, err := s.lookup(ctx, battleID)
	if err != nil {
		return engine.State{}, err
	}
	sess.mu.Lock()
	if !sess.battle.IsEnded() && sess.battle.Phase() == engine.PhaseSelect {
		if _, err := sess.battle.Abandon(); err != nil {
			sess.log.WithError(err).Warn("abandon on end failed")
		}
	}
	state := sess.battle.State()
	sess.mu.Unlock()

	s.mu.Lock()
	delete(s.battles, battleID)
	s.mu.Unlock()
	sess.log.WithField("turns", state.Turn).Info("battle removed")
	return state, nil
}

// Len reports how many battles are hosted.
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.battles)
}

func (s *Service) lookup(ctx context.Context, battleID string) (*session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	sess, ok := s.battles[battleID]
	s.mu.Unlock()
	if !ok {
		return nil, apperrors.WithMetadata(apperrors.CodeBattleNotFound,
			fmt.Sprintf("battle %q not found", battleID),
			map[string]string{"battle_id": battleID})
	}
	return sess, nil
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(apperrors.GetCode(err)))
}
