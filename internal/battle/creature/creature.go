package creature

import (
	"errors"
	"fmt"
)

// MaxMoves is the number of move slots a creature has.
const MaxMoves = 4

var (
	// ErrInvalidLevel indicates a level below 1.
	ErrInvalidLevel = errors.New("level must be at least 1")
	// ErrInvalidTypes indicates a creature without 1 or 2 valid types.
	ErrInvalidTypes = errors.New("creature must have one or two valid types")
	// ErrNoMoves indicates a creature without usable moves.
	ErrNoMoves = errors.New("creature must know at least one move")
	// ErrTooManyMoves indicates more than MaxMoves moves.
	ErrTooManyMoves = errors.New("creature cannot know more than four moves")
	// ErrInvalidStats indicates a non-positive stat.
	ErrInvalidStats = errors.New("stats must be positive")
)

// Creature is one roster member. Battles work on clones, so the stage and
// status fields only ever describe the battle the clone belongs to.
type Creature struct {
	ID        string
	SpeciesID int
	Name      string
	Types     []Type
	Level     int
	Stats     Stats
	CurrentHP int
	Moves     []Move
	CatchRate int

	Stages StatStages
	Status StatusState
}

// Clone returns a deep copy with stat stages and status reset.
func (c *Creature) Clone() *Creature {
	if c == nil {
		return nil
	}
	out := *c
	out.Types = append([]Type(nil), c.Types...)
	out.Moves = make([]Move, len(c.Moves))
	for i, m := range c.Moves {
		out.Moves[i] = m.Clone()
	}
	out.Stages = StatStages{}
	out.Status = StatusState{}
	return &out
}

// Snapshot returns a deep copy that keeps the battle-scoped fields.
func (c *Creature) Snapshot() Creature {
	out := *c.Clone()
	out.Stages = c.Stages
	out.Status = c.Status
	return out
}

// Fainted reports whether the creature has no HP left.
func (c *Creature) Fainted() bool {
	return c.CurrentHP <= 0
}

// HasType reports whether t is one of the creature's types.
func (c *Creature) HasType(t Type) bool {
	for _, own := range c.Types {
		if own == t {
			return true
		}
	}
	return false
}

// Move looks up a known move by id.
func (c *Creature) Move(id string) (Move, bool) {
	for _, m := range c.Moves {
		if m.ID == id {
			return m, true
		}
	}
	return Move{}, false
}

// HPRatio returns current HP over max HP in [0,1].
func (c *Creature) HPRatio() float64 {
	if c.Stats.HP <= 0 {
		return 0
	}
	return float64(c.CurrentHP) / float64(c.Stats.HP)
}

// ApplyDamage subtracts amount, never dropping below zero, and returns the
// HP actually removed.
func (c *Creature) ApplyDamage(amount int) int {
	if amount <= 0 {
		return 0
	}
	if amount > c.CurrentHP {
		amount = c.CurrentHP
	}
	c.CurrentHP -= amount
	return amount
}

// Validate checks the invariants a creature must hold to enter a battle.
func (c *Creature) Validate() error {
	if c.Level < 1 {
		return fmt.Errorf("%s: %w (got %d)", c.Name, ErrInvalidLevel, c.Level)
	}
	if len(c.Types) < 1 || len(c.Types) > 2 {
		return fmt.Errorf("%s: %w", c.Name, ErrInvalidTypes)
	}
	for _, t := range c.Types {
		if !t.Valid() {
			return fmt.Errorf("%s: %w", c.Name, ErrInvalidTypes)
		}
	}
	s := c.Stats
	if s.HP <= 0 || s.Attack <= 0 || s.Defense <= 0 || s.SpAttack <= 0 || s.SpDefense <= 0 || s.Speed <= 0 {
		return fmt.Errorf("%s: %w", c.Name, ErrInvalidStats)
	}
	if len(c.Moves) == 0 {
		return fmt.Errorf("%s: %w", c.Name, ErrNoMoves)
	}
	if len(c.Moves) > MaxMoves {
		return fmt.Errorf("%s: %w", c.Name, ErrTooManyMoves)
	}
	return nil
}
