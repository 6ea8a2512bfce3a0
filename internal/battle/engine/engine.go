// Package engine runs a battle between a player roster and an NPC roster one
// turn at a time.
//
// A Battle moves through three phases: select, resolving and ended. Every
// player action is validated in select; a rejected action leaves the battle
// untouched, is logged, and returns a coded error so the caller may retry.
// Accepted actions resolve a full turn synchronously and return the events
// it produced, in order.
//
// Randomness comes from one seeded source owned by the battle. Within a turn
// draws happen in this order: the NPC strategy's choice, then for each actor
// in speed order its status gate, accuracy roll, damage roll and effect
// chance, then capture trials when a ball is thrown. The same seed and the
// same actions always produce the same log.
//
// A Battle is not safe for concurrent use.
package engine

import (
	"errors"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/message"

	"github.com/louisbranch/creaturebattle/internal/battle/ai"
	"github.com/louisbranch/creaturebattle/internal/battle/capture"
	"github.com/louisbranch/creaturebattle/internal/battle/creature"
	"github.com/louisbranch/creaturebattle/internal/battle/encounter"
	"github.com/louisbranch/creaturebattle/internal/battle/rng"
	"github.com/louisbranch/creaturebattle/internal/battle/typechart"
	apperrors "github.com/louisbranch/creaturebattle/internal/platform/errors"
	i18ncatalog "github.com/louisbranch/creaturebattle/internal/platform/i18n/catalog"
	"github.com/louisbranch/creaturebattle/internal/platform/logging"
)

// Config controls how a battle is set up.
type Config struct {
	// Seed is an integer or string. Nil draws a random seed, recorded so
	// the battle can be replayed.
	Seed any
	// Strategy selects the NPC move chooser.
	Strategy ai.Kind
	// Opponent names who the player faces and picks the battle rules.
	Opponent encounter.Opponent
	// KeepStatusMoves disables dropping status-category moves from rosters.
	KeepStatusMoves bool
	// Locale selects the battle log language.
	Locale string
	// Chart overrides the type chart.
	Chart typechart.Chart
	// Logger receives diagnostics. Nil discards them.
	Logger logrus.FieldLogger
}

type roster struct {
	members []*creature.Creature
	active  int
}

func (r *roster) current() *creature.Creature {
	return r.members[r.active]
}

func (r *roster) nextHealthy() (int, bool) {
	for i, c := range r.members {
		if !c.Fainted() {
			return i, true
		}
	}
	return 0, false
}

func (r *roster) healthyBench() []int {
	var out []int
	for i, c := range r.members {
		if i != r.active && !c.Fainted() {
			out = append(out, i)
		}
	}
	return out
}

// Battle is one battle in progress.
type Battle struct {
	machine  *fsm.FSM
	src      rng.Source
	seed     any
	strategy ai.Strategy
	opponent encounter.Opponent
	rules    encounter.Rules
	chart    typechart.Chart
	printer  *message.Printer
	log      logrus.FieldLogger

	turn     int
	player   roster
	npc      roster
	winner   Side
	outcome  *encounter.Outcome
	pending  *SwitchRequest
	captured *creature.Creature

	lastCapture capture.Result

	history []Event
	emitted []Event
}

// Start validates and clones both rosters and opens the battle. Setup
// failures return coded errors and no battle.
func Start(player, npc []*creature.Creature, cfg Config) (*Battle, error) {
	log := cfg.Logger
	if log == nil {
		log = logging.Discard()
	}

	if len(player) == 0 {
		return nil, apperrors.New(apperrors.CodeBattleEmptyRoster, "player roster is empty")
	}
	if len(npc) == 0 {
		return nil, apperrors.New(apperrors.CodeBattleEmptyRoster, "npc roster is empty")
	}

	seed := cfg.Seed
	if seed == nil {
		generated, err := rng.NewSeed()
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeBattleInvalidSeed, "generate seed", err)
		}
		seed = generated
	}
	src, err := rng.FromValue(seed)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeBattleInvalidSeed, "invalid seed", err)
	}

	strategy, err := ai.New(cfg.Strategy)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeBattleInvalidConfig, "invalid strategy", err)
	}

	opponent := cfg.Opponent
	if opponent.Kind == "" {
		opponent.Kind = encounter.KindTrainer
	}

	playerRoster, err := prepareRoster(player, cfg.KeepStatusMoves)
	if err != nil {
		return nil, err
	}
	npcRoster, err := prepareRoster(npc, cfg.KeepStatusMoves)
	if err != nil {
		return nil, err
	}
	if opponent.Name == "" {
		opponent.Name = npcRoster.current().Name
	}

	chart := cfg.Chart
	if chart == nil {
		chart = typechart.Default
	}

	b := &Battle{
		src:      src,
		seed:     seed,
		strategy: strategy,
		opponent: opponent,
		rules:    opponent.Kind.Rules(),
		chart:    chart,
		printer:  i18ncatalog.DefaultPrinter(cfg.Locale),
		log: log.WithFields(logrus.Fields{
			"opponent": opponent.Name,
			"kind":     string(opponent.Kind),
		}),
		turn:   1,
		player: playerRoster,
		npc:    npcRoster,
	}
	b.machine = newPhaseMachine(b.log)

	b.emitted = nil
	b.emit(Event{Kind: EventBattleStarted, Side: SideNPC, Creature: opponent.Name})
	if opponent.Kind != encounter.KindWild {
		b.emit(Event{Kind: EventSentOut, Side: SideNPC, Creature: b.npc.current().Name})
	}
	b.emit(Event{Kind: EventSentOut, Side: SidePlayer, Creature: b.player.current().Name})
	b.log.WithField("seed", fmt.Sprint(seed)).Info("battle started")
	return b, nil
}

func prepareRoster(members []*creature.Creature, keepStatusMoves bool) (roster, error) {
	r := roster{members: make([]*creature.Creature, 0, len(members))}
	for _, m := range members {
		if m == nil {
			return roster{}, apperrors.New(apperrors.CodeBattleInvalidConfig, "roster contains a nil creature")
		}
		c := m.Clone()
		if !keepStatusMoves {
			c.Moves = creature.UsableMoves(c.Moves)
		}
		c.CurrentHP = max(0, min(c.CurrentHP, c.Stats.HP))
		if err := c.Validate(); err != nil {
			return roster{}, setupError(err)
		}
		r.members = append(r.members, c)
	}
	idx, ok := r.nextHealthy()
	if !ok {
		return roster{}, apperrors.New(apperrors.CodeBattleNoHealthyCreature, "every creature in the roster has fainted")
	}
	r.active = idx
	return r, nil
}

func setupError(err error) error {
	switch {
	case errors.Is(err, creature.ErrInvalidLevel):
		return apperrors.Wrap(apperrors.CodeBattleInvalidLevel, "invalid level", err)
	case errors.Is(err, creature.ErrNoMoves):
		return apperrors.Wrap(apperrors.CodeBattleNoMoves, "creature has no usable moves", err)
	default:
		return apperrors.Wrap(apperrors.CodeBattleInvalidConfig, "invalid creature", err)
	}
}

// State is a deep copy of the battle for callers to inspect.
type State struct {
	Turn        int
	Phase       Phase
	PlayerTeam  []creature.Creature
	NPCTeam     []creature.Creature
	PlayerIndex int
	NPCIndex    int
	Winner      Side
	Outcome     *encounter.Outcome
	Pending     *SwitchRequest
	Captured    *creature.Creature
	Log         []string
}

// Player returns the player's active creature.
func (s State) Player() creature.Creature {
	return s.PlayerTeam[s.PlayerIndex]
}

// NPC returns the NPC's active creature.
func (s State) NPC() creature.Creature {
	return s.NPCTeam[s.NPCIndex]
}

// State returns a snapshot of the battle.
func (b *Battle) State() State {
	s := State{
		Turn:        b.turn,
		Phase:       b.phase(),
		PlayerTeam:  snapshotTeam(b.player.members),
		NPCTeam:     snapshotTeam(b.npc.members),
		PlayerIndex: b.player.active,
		NPCIndex:    b.npc.active,
		Winner:      b.winner,
		Log:         b.Log(),
	}
	if b.outcome != nil {
		outcome := *b.outcome
		s.Outcome = &outcome
	}
	if b.pending != nil {
		pending := *b.pending
		pending.Options = append([]int(nil), b.pending.Options...)
		s.Pending = &pending
	}
	if b.captured != nil {
		captured := b.captured.Snapshot()
		s.Captured = &captured
	}
	return s
}

func snapshotTeam(members []*creature.Creature) []creature.Creature {
	out := make([]creature.Creature, len(members))
	for i, c := range members {
		out[i] = c.Snapshot()
	}
	return out
}

// Phase reports the current phase.
func (b *Battle) Phase() Phase {
	return b.phase()
}

// IsEnded reports whether a winner was decided or the battle was abandoned.
func (b *Battle) IsEnded() bool {
	return b.phase() == PhaseEnded
}

// Winner returns the winning side, SideNone while undecided or abandoned.
func (b *Battle) Winner() Side {
	return b.winner
}

// Outcome returns the final outcome once the battle ended.
func (b *Battle) Outcome() (encounter.Outcome, bool) {
	if b.outcome == nil {
		return encounter.Outcome{}, false
	}
	return *b.outcome, true
}

// PendingSwitch returns the switch the player must confirm, if any.
func (b *Battle) PendingSwitch() (SwitchRequest, bool) {
	if b.pending == nil {
		return SwitchRequest{}, false
	}
	req := *b.pending
	req.Options = append([]int(nil), b.pending.Options...)
	return req, true
}

// Seed returns the seed the battle was started with.
func (b *Battle) Seed() any {
	return b.seed
}

// Rules returns the actions the battle allows.
func (b *Battle) Rules() encounter.Rules {
	return b.rules
}

// Opponent returns who the player is facing.
func (b *Battle) Opponent() encounter.Opponent {
	return b.opponent
}

// Events returns every event emitted so far.
func (b *Battle) Events() []Event {
	return append([]Event(nil), b.history...)
}

// Log returns the rendered battle log.
func (b *Battle) Log() []string {
	out := make([]string, len(b.history))
	for i, ev := range b.history {
		out[i] = ev.Text
	}
	return out
}
