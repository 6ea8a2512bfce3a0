// Package catalog supplies species and move definitions to battles and turns
// definitions into battle-ready creatures.
package catalog

import (
	"context"
	"fmt"
	"strconv"

	"github.com/louisbranch/creaturebattle/internal/battle/creature"
	"github.com/louisbranch/creaturebattle/internal/battle/encounter"
	apperrors "github.com/louisbranch/creaturebattle/internal/platform/errors"
)

// LearnableMove is a move a species learns on reaching Level.
type LearnableMove struct {
	MoveID string
	Level  int
}

// CreatureDefinition describes a species independent of any level.
type CreatureDefinition struct {
	ID        int
	Name      string
	Types     []creature.Type
	BaseStats creature.Stats
	CatchRate int
	Learnset  []LearnableMove
}

// TeamEntry names a species and the level to hydrate it at.
type TeamEntry struct {
	SpeciesID int
	Level     int
}

// OpponentDefinition is a trainer or gym leader with a fixed team.
type OpponentDefinition struct {
	ID   string
	Kind encounter.Kind
	Name string
	Team []TeamEntry
}

// Opponent returns the battle-facing identity.
func (o OpponentDefinition) Opponent() encounter.Opponent {
	return encounter.Opponent{Kind: o.Kind, ID: o.ID, Name: o.Name}
}

// Provider looks up catalog data. Implementations may block on storage, so
// every call takes a context.
type Provider interface {
	Creature(ctx context.Context, id int) (CreatureDefinition, error)
	Move(ctx context.Context, id string) (creature.Move, error)
	// Moves returns the moves matching an AIP-160 filter, ordered by id.
	Moves(ctx context.Context, filter string) ([]creature.Move, error)
}

// Encounters looks up who a battle can be fought against.
type Encounters interface {
	WildPool(ctx context.Context) (encounter.Pool, error)
	Opponent(ctx context.Context, id string) (OpponentDefinition, error)
}

// NotFound builds the error returned for a missing creature or move. Every
// provider uses it so callers can match a single code.
func NotFound(kind, id string) error {
	return apperrors.WithMetadata(apperrors.CodeCatalogNotFound,
		fmt.Sprintf("%s %q not found", kind, id),
		map[string]string{"kind": kind, "id": id})
}

// InvalidFilter wraps a move filter parse failure.
func InvalidFilter(filter string, err error) error {
	return apperrors.WrapWithMetadata(apperrors.CodeCatalogInvalidFilter,
		"invalid move filter",
		map[string]string{"filter": filter}, err)
}

func creatureNotFound(id int) error {
	return NotFound("creature", strconv.Itoa(id))
}
