package catalog

import (
	"context"
	"sort"

	"github.com/louisbranch/creaturebattle/internal/battle/creature"
	"github.com/louisbranch/creaturebattle/internal/battle/encounter"
	"github.com/louisbranch/creaturebattle/internal/catalog/filter"
)

// Memory serves a Dataset from memory.
type Memory struct {
	data Dataset
}

// NewMemory returns a provider over data.
func NewMemory(data Dataset) *Memory {
	return &Memory{data: data}
}

// Creature returns the species with id.
func (m *Memory) Creature(ctx context.Context, id int) (CreatureDefinition, error) {
	if err := ctx.Err(); err != nil {
		return CreatureDefinition{}, err
	}
	def, ok := m.data.Species[id]
	if !ok {
		return CreatureDefinition{}, creatureNotFound(id)
	}
	return cloneDefinition(def), nil
}

// Move returns the move with id.
func (m *Memory) Move(ctx context.Context, id string) (creature.Move, error) {
	if err := ctx.Err(); err != nil {
		return creature.Move{}, err
	}
	mv, ok := m.data.Moves[id]
	if !ok {
		return creature.Move{}, NotFound("move", id)
	}
	return mv.Clone(), nil
}

// Moves returns the moves matching filterStr, ordered by id.
func (m *Memory) Moves(ctx context.Context, filterStr string) ([]creature.Move, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := filter.Parse(filterStr)
	if err != nil {
		return nil, InvalidFilter(filterStr, err)
	}
	var out []creature.Move
	for _, mv := range m.data.Moves {
		ok, err := f.Matches(FilterFields(mv))
		if err != nil {
			return nil, InvalidFilter(filterStr, err)
		}
		if ok {
			out = append(out, mv.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// WildPool returns a copy of the wild pool.
func (m *Memory) WildPool(ctx context.Context) (encounter.Pool, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append(encounter.Pool(nil), m.data.WildPool...), nil
}

// Opponent returns the trainer or gym leader with id.
func (m *Memory) Opponent(ctx context.Context, id string) (OpponentDefinition, error) {
	if err := ctx.Err(); err != nil {
		return OpponentDefinition{}, err
	}
	o, ok := m.data.Opponent(id)
	if !ok {
		return OpponentDefinition{}, NotFound("opponent", id)
	}
	o.Team = append([]TeamEntry(nil), o.Team...)
	return o, nil
}

// FilterFields exposes a move to the filter evaluator.
func FilterFields(m creature.Move) filter.Fields {
	return filter.Fields{
		ID:       m.ID,
		Name:     m.Name,
		Type:     m.Type.String(),
		Category: m.Category.String(),
		Power:    m.Power,
		Accuracy: m.Accuracy,
	}
}

func cloneDefinition(def CreatureDefinition) CreatureDefinition {
	def.Types = append([]creature.Type(nil), def.Types...)
	def.Learnset = append([]LearnableMove(nil), def.Learnset...)
	return def
}
