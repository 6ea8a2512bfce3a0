// Package creature defines the value types shared by every battle component:
// elemental types, moves, stats and the battle-scoped creature record.
package creature

import (
	"fmt"
	"strings"
)

// Type is one of the 18 elemental types.
type Type uint8

const (
	TypeUnspecified Type = iota
	Normal
	Fire
	Water
	Electric
	Grass
	Ice
	Fighting
	Poison
	Ground
	Flying
	Psychic
	Bug
	Rock
	Ghost
	Dragon
	Dark
	Steel
	Fairy
)

var typeNames = [...]string{
	TypeUnspecified: "unspecified",
	Normal:          "normal",
	Fire:            "fire",
	Water:           "water",
	Electric:        "electric",
	Grass:           "grass",
	Ice:             "ice",
	Fighting:        "fighting",
	Poison:          "poison",
	Ground:          "ground",
	Flying:          "flying",
	Psychic:         "psychic",
	Bug:             "bug",
	Rock:            "rock",
	Ghost:           "ghost",
	Dragon:          "dragon",
	Dark:            "dark",
	Steel:           "steel",
	Fairy:           "fairy",
}

// AllTypes lists every valid elemental type in declaration order.
func AllTypes() []Type {
	out := make([]Type, 0, len(typeNames)-1)
	for t := Normal; t <= Fairy; t++ {
		out = append(out, t)
	}
	return out
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("type(%d)", uint8(t))
}

// Valid reports whether t is one of the 18 elemental types.
func (t Type) Valid() bool {
	return t >= Normal && t <= Fairy
}

// ParseType resolves a case-insensitive type name.
func ParseType(name string) (Type, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for t := Normal; t <= Fairy; t++ {
		if typeNames[t] == key {
			return t, nil
		}
	}
	return TypeUnspecified, fmt.Errorf("unknown type %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid type %d", uint8(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
