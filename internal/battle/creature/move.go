package creature

import (
	"fmt"
	"strings"
)

// Category splits moves into damage formulas.
type Category uint8

const (
	CategoryUnspecified Category = iota
	CategoryPhysical
	CategorySpecial
	CategoryStatus
)

func (c Category) String() string {
	switch c {
	case CategoryPhysical:
		return "physical"
	case CategorySpecial:
		return "special"
	case CategoryStatus:
		return "status"
	default:
		return "unspecified"
	}
}

// ParseCategory resolves a case-insensitive category name.
func ParseCategory(name string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "physical":
		return CategoryPhysical, nil
	case "special":
		return CategorySpecial, nil
	case "status":
		return CategoryStatus, nil
	default:
		return CategoryUnspecified, fmt.Errorf("unknown category %q", name)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	if c == CategoryUnspecified {
		return nil, fmt.Errorf("invalid category")
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// EffectKind discriminates secondary move effects.
type EffectKind uint8

const (
	EffectUnspecified EffectKind = iota
	EffectStatChange
	EffectStatusCondition
	EffectHealing
)

func (k EffectKind) String() string {
	switch k {
	case EffectStatChange:
		return "stat-change"
	case EffectStatusCondition:
		return "status-condition"
	case EffectHealing:
		return "healing"
	default:
		return "unspecified"
	}
}

// ParseEffectKind resolves an effect kind name.
func ParseEffectKind(name string) (EffectKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "stat-change", "stat_change":
		return EffectStatChange, nil
	case "status-condition", "status_condition", "status":
		return EffectStatusCondition, nil
	case "healing", "heal":
		return EffectHealing, nil
	default:
		return EffectUnspecified, fmt.Errorf("unknown effect kind %q", name)
	}
}

// Target selects who receives a move effect.
type Target uint8

const (
	// TargetOpponent is the default target.
	TargetOpponent Target = iota
	TargetSelf
)

func (t Target) String() string {
	if t == TargetSelf {
		return "self"
	}
	return "opponent"
}

// ParseTarget resolves "self" or "opponent"; blank means opponent.
func ParseTarget(name string) (Target, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "opponent", "enemy", "target":
		return TargetOpponent, nil
	case "self", "user":
		return TargetSelf, nil
	default:
		return TargetOpponent, fmt.Errorf("unknown effect target %q", name)
	}
}

// Effect is a move's optional secondary effect.
//
// Chance is a percentage and only gates the effect when HasChance is set.
// An effect without a chance always applies.
type Effect struct {
	Kind      EffectKind
	Target    Target
	Stat      Stat
	Stages    int
	Condition Condition
	Chance    int
	HasChance bool
	Amount    int
}

// EffectiveChance returns the gating percentage in [0,100].
func (e Effect) EffectiveChance() int {
	if !e.HasChance {
		return 100
	}
	return min(max(e.Chance, 0), 100)
}

// Move is an immutable move definition as used in battle.
type Move struct {
	ID       string
	Name     string
	Type     Type
	Power    int
	Accuracy int
	Category Category
	Effect   *Effect
}

// Damaging reports whether the move goes through the damage formula.
func (m Move) Damaging() bool {
	return m.Category == CategoryPhysical || m.Category == CategorySpecial
}

// Clone copies the move including its effect.
func (m Move) Clone() Move {
	if m.Effect != nil {
		effect := *m.Effect
		m.Effect = &effect
	}
	return m
}

// Tackle is the fallback move given to creatures with nothing usable.
func Tackle() Move {
	return Move{
		ID:       "tackle",
		Name:     "Tackle",
		Type:     Normal,
		Power:    40,
		Accuracy: 100,
		Category: CategoryPhysical,
	}
}

// UsableMoves keeps only damaging moves, in order.
func UsableMoves(moves []Move) []Move {
	out := make([]Move, 0, len(moves))
	for _, m := range moves {
		if m.Damaging() {
			out = append(out, m.Clone())
		}
	}
	return out
}
