// Package stages manages the -6..+6 stat stage modifiers of a creature.
package stages

import (
	"math"

	"github.com/louisbranch/creaturebattle/internal/battle/creature"
)

const (
	// Min is the lowest stage.
	Min = -6
	// Max is the highest stage.
	Max = 6
	// accuracyBase is the nominal accuracy/evasion value stages scale.
	accuracyBase = 100
)

// Change is the result of applying a stage delta.
type Change struct {
	Stat     creature.Stat
	Previous int
	Current  int
	Delta    int
	Applied  bool
	// Capped is set when the change failed because the stage was already at
	// the bound in the requested direction.
	Capped bool
}

// Apply adds delta to current, saturating at the bounds. The change fails
// with the stage unchanged when current already sits at the bound delta
// pushes towards.
func Apply(current, delta int) (int, bool) {
	if delta == 0 {
		return current, false
	}
	if (delta > 0 && current >= Max) || (delta < 0 && current <= Min) {
		return current, false
	}
	next := current + delta
	if next > Max {
		next = Max
	}
	if next < Min {
		next = Min
	}
	return next, true
}

// ApplyTo changes one stat stage of c.
func ApplyTo(c *creature.Creature, stat creature.Stat, delta int) Change {
	prev := c.Stages.Get(stat)
	next, ok := Apply(prev, delta)
	if ok {
		c.Stages.Set(stat, next)
	}
	return Change{
		Stat:     stat,
		Previous: prev,
		Current:  next,
		Delta:    next - prev,
		Applied:  ok,
		Capped:   !ok && delta != 0,
	}
}

// Multiplier converts a stage to its multiplier. Ordinary stats use
// (2+n)/2 and accuracy/evasion use (3+n)/3, with reciprocals below zero.
func Multiplier(stage int, accuracyOrEvasion bool) float64 {
	stage = max(Min, min(Max, stage))
	base := 2.0
	if accuracyOrEvasion {
		base = 3.0
	}
	if stage >= 0 {
		return (base + float64(stage)) / base
	}
	return base / (base - float64(stage))
}

// EffectiveStat is floor(base * Multiplier(stage)).
func EffectiveStat(base, stage int, accuracyOrEvasion bool) int {
	return int(math.Floor(float64(base) * Multiplier(stage, accuracyOrEvasion)))
}

// Effective returns c's staged value of stat. Accuracy and evasion scale a
// nominal 100.
func Effective(c *creature.Creature, stat creature.Stat) int {
	stage := c.Stages.Get(stat)
	switch stat {
	case creature.StatAttack:
		return EffectiveStat(c.Stats.Attack, stage, false)
	case creature.StatDefense:
		return EffectiveStat(c.Stats.Defense, stage, false)
	case creature.StatSpAttack:
		return EffectiveStat(c.Stats.SpAttack, stage, false)
	case creature.StatSpDefense:
		return EffectiveStat(c.Stats.SpDefense, stage, false)
	case creature.StatSpeed:
		return EffectiveStat(c.Stats.Speed, stage, false)
	case creature.StatAccuracy, creature.StatEvasion:
		return EffectiveStat(accuracyBase, stage, true)
	default:
		return 0
	}
}

// AccuracyMultiplier combines the attacker's accuracy and the defender's
// evasion into one multiplier on the net stage.
func AccuracyMultiplier(attacker, defender *creature.Creature) float64 {
	return Multiplier(attacker.Stages.Accuracy-defender.Stages.Evasion, true)
}

// Reset clears every stage. Called when a creature switches out.
func Reset(c *creature.Creature) {
	c.Stages = creature.StatStages{}
}
