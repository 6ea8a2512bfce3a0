// Package status manages the single persistent status condition a creature
// may carry: applying it, gating actions and dealing end-of-turn damage.
package status

import (
	"github.com/louisbranch/creaturebattle/internal/battle/creature"
	"github.com/louisbranch/creaturebattle/internal/battle/rng"
)

const (
	paralysisBlockChance = 0.25
	freezeThawChance     = 0.2
	maxSleepTurns        = 3
	burnDivisor          = 16
	poisonDivisor        = 8
	toxicDivisor         = 16
)

// Immunities lists, per condition, the types that can never receive it.
var Immunities = map[creature.Condition][]creature.Type{
	creature.ConditionBurn:          {creature.Fire},
	creature.ConditionFreeze:        {creature.Ice},
	creature.ConditionParalysis:     {creature.Electric},
	creature.ConditionPoison:        {creature.Poison, creature.Steel},
	creature.ConditionBadlyPoisoned: {creature.Poison, creature.Steel},
}

// FailReason explains why a condition was not applied.
type FailReason uint8

const (
	FailNone FailReason = iota
	FailAlreadyAffected
	FailImmune
	FailInvalid
)

func (r FailReason) String() string {
	switch r {
	case FailAlreadyAffected:
		return "already-affected"
	case FailImmune:
		return "immune"
	case FailInvalid:
		return "invalid"
	default:
		return "none"
	}
}

// ApplyResult is the outcome of Apply.
type ApplyResult struct {
	Condition creature.Condition
	Applied   bool
	Reason    FailReason
}

// Immune reports whether c's types block cond.
func Immune(c *creature.Creature, cond creature.Condition) bool {
	for _, t := range Immunities[cond] {
		if c.HasType(t) {
			return true
		}
	}
	return false
}

// Apply inflicts cond on c. Sleep draws its 1-3 turn duration from src only
// when the condition lands.
func Apply(c *creature.Creature, cond creature.Condition, src rng.Source) ApplyResult {
	res := ApplyResult{Condition: cond}
	switch {
	case cond == creature.ConditionNone:
		res.Reason = FailInvalid
		return res
	case c.Status.Active():
		res.Reason = FailAlreadyAffected
		return res
	case Immune(c, cond):
		res.Reason = FailImmune
		return res
	}

	state := creature.StatusState{Condition: cond}
	switch cond {
	case creature.ConditionSleep:
		state.TurnsRemaining = rng.Intn(src, maxSleepTurns) + 1
	case creature.ConditionBadlyPoisoned:
		state.PoisonCounter = 1
	}
	c.Status = state
	res.Applied = true
	return res
}

// Clear removes any condition and returns the one removed.
func Clear(c *creature.Creature) creature.Condition {
	prev := c.Status.Condition
	c.Status = creature.StatusState{}
	return prev
}

// ActCheck is the outcome of CheckCanAct.
type ActCheck struct {
	CanAct bool
	// Blocker is the condition that prevented acting.
	Blocker creature.Condition
	// Recovered is set when the creature woke up or thawed this check.
	Recovered creature.Condition
}

// CheckCanAct decides whether c may act this turn.
//
// Paralysis draws once and blocks below 0.25. Sleep never draws: a sleeping
// creature with turns left loses the turn and counts down, and one with none
// left wakes and acts. Freeze draws once and thaws below 0.2.
func CheckCanAct(c *creature.Creature, src rng.Source) ActCheck {
	switch c.Status.Condition {
	case creature.ConditionParalysis:
		if src.Next() < paralysisBlockChance {
			return ActCheck{Blocker: creature.ConditionParalysis}
		}
		return ActCheck{CanAct: true}
	case creature.ConditionSleep:
		if c.Status.TurnsRemaining <= 0 {
			Clear(c)
			return ActCheck{CanAct: true, Recovered: creature.ConditionSleep}
		}
		c.Status.TurnsRemaining--
		return ActCheck{Blocker: creature.ConditionSleep}
	case creature.ConditionFreeze:
		if src.Next() < freezeThawChance {
			Clear(c)
			return ActCheck{CanAct: true, Recovered: creature.ConditionFreeze}
		}
		return ActCheck{Blocker: creature.ConditionFreeze}
	default:
		return ActCheck{CanAct: true}
	}
}

// Tick is the end-of-turn damage dealt by a condition.
type Tick struct {
	Condition creature.Condition
	Damage    int
}

// EndOfTurn applies burn, poison and badly-poisoned damage to c. Each tick
// deals at least 1 HP. The badly-poisoned counter grows after each tick.
func EndOfTurn(c *creature.Creature) Tick {
	maxHP := c.Stats.HP
	var dmg int
	switch c.Status.Condition {
	case creature.ConditionBurn:
		dmg = maxHP / burnDivisor
	case creature.ConditionPoison:
		dmg = maxHP / poisonDivisor
	case creature.ConditionBadlyPoisoned:
		dmg = c.Status.PoisonCounter * maxHP / toxicDivisor
		c.Status.PoisonCounter++
	default:
		return Tick{}
	}
	return Tick{Condition: c.Status.Condition, Damage: c.ApplyDamage(max(1, dmg))}
}

// SpeedModifier halves speed for paralyzed creatures.
func SpeedModifier(c *creature.Creature) float64 {
	if c.Status.Condition == creature.ConditionParalysis {
		return 0.5
	}
	return 1
}

// AttackModifier halves physical damage for burned attackers.
func AttackModifier(c *creature.Creature, category creature.Category) float64 {
	if c.Status.Condition == creature.ConditionBurn && category == creature.CategoryPhysical {
		return 0.5
	}
	return 1
}
