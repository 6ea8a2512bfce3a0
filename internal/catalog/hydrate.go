package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/louisbranch/creaturebattle/internal/battle/creature"
	"github.com/louisbranch/creaturebattle/internal/battle/rng"
	"github.com/louisbranch/creaturebattle/internal/battle/scaling"
	apperrors "github.com/louisbranch/creaturebattle/internal/platform/errors"
	"github.com/louisbranch/creaturebattle/internal/platform/logging"
)

var titleCaser = cases.Title(language.English)

// DisplayName turns a catalog slug such as "mr-mime" into "Mr Mime".
func DisplayName(slug string) string {
	return titleCaser.String(strings.ReplaceAll(strings.TrimSpace(slug), "-", " "))
}

// Hydrator builds battle-ready creatures from catalog definitions.
type Hydrator struct {
	provider Provider
	log      logrus.FieldLogger
}

// InstanceID names the creature of speciesID in a roster slot. Slots are
// zero-based.
func InstanceID(speciesID, slot int) string {
	return fmt.Sprintf("creature-%d-%d", speciesID, slot+1)
}

// NewHydrator returns a hydrator reading from provider.
func NewHydrator(provider Provider, log logrus.FieldLogger) *Hydrator {
	if log == nil {
		log = logging.Discard()
	}
	return &Hydrator{provider: provider, log: log}
}

// Hydrate builds one creature at entry.Level with full HP, named for the
// first roster slot.
//
// Its moves are the damaging moves the species has learned by that level,
// shuffled with src and cut to four. A nil src keeps learnset order. A
// species with nothing usable gets Tackle.
func (h *Hydrator) Hydrate(ctx context.Context, entry TeamEntry, src rng.Source) (*creature.Creature, error) {
	if entry.Level < 1 {
		return nil, apperrors.WrapWithMetadata(apperrors.CodeBattleInvalidLevel,
			fmt.Sprintf("species %d requested at level %d", entry.SpeciesID, entry.Level),
			map[string]string{"level": fmt.Sprint(entry.Level)},
			creature.ErrInvalidLevel)
	}
	def, err := h.provider.Creature(ctx, entry.SpeciesID)
	if err != nil {
		return nil, err
	}

	stats, warning := scaling.Stats(def.BaseStats, entry.Level)
	if warning != nil {
		h.log.WithField("species_id", def.ID).Warn(warning.String())
	}

	moves, err := h.learnedMoves(ctx, def, entry.Level)
	if err != nil {
		return nil, err
	}
	if src != nil {
		shuffle(moves, src)
	}
	if len(moves) > creature.MaxMoves {
		moves = moves[:creature.MaxMoves]
	}
	if len(moves) == 0 {
		h.log.WithField("species_id", def.ID).Debug("no damaging moves learned, using tackle")
		moves = []creature.Move{creature.Tackle()}
	}

	return &creature.Creature{
		ID:        InstanceID(def.ID, 0),
		SpeciesID: def.ID,
		Name:      DisplayName(def.Name),
		Types:     append([]creature.Type(nil), def.Types...),
		Level:     entry.Level,
		Stats:     stats,
		CurrentHP: stats.HP,
		Moves:     moves,
		CatchRate: def.CatchRate,
	}, nil
}

// HydrateTeam hydrates entries in order, sharing src. Each creature is named
// for its slot.
func (h *Hydrator) HydrateTeam(ctx context.Context, entries []TeamEntry, src rng.Source) ([]*creature.Creature, error) {
	team := make([]*creature.Creature, 0, len(entries))
	for i, e := range entries {
		c, err := h.Hydrate(ctx, e, src)
		if err != nil {
			return nil, err
		}
		c.ID = InstanceID(c.SpeciesID, i)
		team = append(team, c)
	}
	return team, nil
}

// LearnCandidates returns the damaging moves c's species learns at a level in
// (fromLevel, toLevel] that c does not already know.
func (h *Hydrator) LearnCandidates(ctx context.Context, c *creature.Creature, fromLevel, toLevel int) ([]creature.Move, error) {
	def, err := h.provider.Creature(ctx, c.SpeciesID)
	if err != nil {
		return nil, err
	}
	var out []creature.Move
	for _, l := range def.Learnset {
		if l.Level <= fromLevel || l.Level > toLevel {
			continue
		}
		if _, known := c.Move(l.MoveID); known {
			continue
		}
		mv, err := h.provider.Move(ctx, l.MoveID)
		if err != nil {
			return nil, err
		}
		if mv.Damaging() {
			out = append(out, mv)
		}
	}
	return out, nil
}

func (h *Hydrator) learnedMoves(ctx context.Context, def CreatureDefinition, level int) ([]creature.Move, error) {
	seen := make(map[string]bool, len(def.Learnset))
	var out []creature.Move
	for _, l := range def.Learnset {
		if l.Level > level || seen[l.MoveID] {
			continue
		}
		seen[l.MoveID] = true
		mv, err := h.provider.Move(ctx, l.MoveID)
		if err != nil {
			return nil, err
		}
		if mv.Damaging() {
			out = append(out, mv)
		}
	}
	return out, nil
}

// shuffle is a Fisher-Yates shuffle driven by src.
func shuffle(moves []creature.Move, src rng.Source) {
	for i := len(moves) - 1; i > 0; i-- {
		j := rng.Intn(src, i+1)
		moves[i], moves[j] = moves[j], moves[i]
	}
}
