// Package typechart resolves attacking-type effectiveness against one or two
// defending types.
//
// Effectiveness is quantized to four buckets: 0, 0.5, 1 and 2. A dual
// weakness (a raw 4x product) reports 2 and a dual resistance reports 0.5.
package typechart

import (
	"fmt"

	"github.com/louisbranch/creaturebattle/internal/battle/creature"
)

// Multiplier is a quantized effectiveness value.
type Multiplier float64

const (
	Immune           Multiplier = 0
	NotVeryEffective Multiplier = 0.5
	Neutral          Multiplier = 1
	SuperEffective   Multiplier = 2
)

func (m Multiplier) String() string {
	switch m {
	case Immune:
		return "immune"
	case NotVeryEffective:
		return "not-very-effective"
	case Neutral:
		return "neutral"
	case SuperEffective:
		return "super-effective"
	default:
		return fmt.Sprintf("x%g", float64(m))
	}
}

// Chart maps attacking type to its non-neutral matchups. Missing entries are
// neutral.
type Chart map[creature.Type]map[creature.Type]float64

// Raw returns the unquantized product for the defending types.
func (c Chart) Raw(attacking creature.Type, defending ...creature.Type) float64 {
	product := 1.0
	row := c[attacking]
	for _, d := range defending {
		if v, ok := row[d]; ok {
			product *= v
		}
	}
	return product
}

// Multiplier returns the quantized effectiveness for the defending types.
func (c Chart) Multiplier(attacking creature.Type, defending ...creature.Type) Multiplier {
	return Quantize(c.Raw(attacking, defending...))
}

// Quantize maps a raw product onto the four effectiveness buckets.
func Quantize(product float64) Multiplier {
	switch {
	case product == 0:
		return Immune
	case product <= 0.25:
		return NotVeryEffective
	case product >= 4:
		return SuperEffective
	case product < 1:
		return NotVeryEffective
	case product > 1:
		return SuperEffective
	default:
		return Neutral
	}
}

// Lookup resolves effectiveness against the default chart.
func Lookup(attacking creature.Type, defending ...creature.Type) Multiplier {
	return Default.Multiplier(attacking, defending...)
}
