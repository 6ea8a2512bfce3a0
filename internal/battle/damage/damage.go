// Package damage implements the integer damage formula.
package damage

import (
	"math"

	"github.com/louisbranch/creaturebattle/internal/battle/creature"
	"github.com/louisbranch/creaturebattle/internal/battle/rng"
	"github.com/louisbranch/creaturebattle/internal/battle/stages"
	"github.com/louisbranch/creaturebattle/internal/battle/status"
	"github.com/louisbranch/creaturebattle/internal/battle/typechart"
)

const (
	minRandomFactor  = 0.85
	randomFactorSpan = 0.15
)

// Input carries the values the formula consumes.
type Input struct {
	Level         int
	Power         int
	Attack        int
	Defense       int
	Effectiveness typechart.Multiplier
	// Modifier scales the final damage, e.g. 0.5 for a burned physical
	// attacker. Zero is treated as 1.
	Modifier float64
}

// Result reports the damage and the intermediate values.
type Result struct {
	Damage        int
	Base          int
	RandomFactor  float64
	Effectiveness typechart.Multiplier
}

// Calculate computes damage, drawing one random factor from src. Immune
// matchups return 0 without drawing.
func Calculate(in Input, src rng.Source) Result {
	if in.Effectiveness == typechart.Immune {
		return Result{Effectiveness: typechart.Immune}
	}

	levelFactor := (2*in.Level)/5 + 2
	base := int(math.Floor(float64(levelFactor*in.Power*in.Attack)/float64(max(1, in.Defense))/50)) + 2
	random := minRandomFactor + src.Next()*randomFactorSpan

	modifier := in.Modifier
	if modifier == 0 {
		modifier = 1
	}
	total := int(math.Floor(float64(base) * float64(in.Effectiveness) * random * modifier))
	return Result{
		Damage:        max(0, total),
		Base:          base,
		RandomFactor:  random,
		Effectiveness: in.Effectiveness,
	}
}

// Inputs resolves the formula inputs for attacker using move on defender:
// staged attack or special attack against staged defense or special
// defense, effectiveness from chart and the burn modifier.
func Inputs(attacker, defender *creature.Creature, move creature.Move, chart typechart.Chart) Input {
	atkStat, defStat := creature.StatAttack, creature.StatDefense
	if move.Category == creature.CategorySpecial {
		atkStat, defStat = creature.StatSpAttack, creature.StatSpDefense
	}
	return Input{
		Level:         attacker.Level,
		Power:         move.Power,
		Attack:        stages.Effective(attacker, atkStat),
		Defense:       stages.Effective(defender, defStat),
		Effectiveness: chart.Multiplier(move.Type, defender.Types...),
		Modifier:      status.AttackModifier(attacker, move.Category),
	}
}
