// Package effect dispatches a move's secondary effect to the stage or status
// managers.
package effect

import (
	"github.com/louisbranch/creaturebattle/internal/battle/creature"
	"github.com/louisbranch/creaturebattle/internal/battle/rng"
	"github.com/louisbranch/creaturebattle/internal/battle/stages"
	"github.com/louisbranch/creaturebattle/internal/battle/status"
)

// Reason explains why an effect did not apply.
type Reason uint8

const (
	ReasonNone Reason = iota
	ReasonNoEffect
	ReasonChanceFailed
	ReasonStageCapped
	ReasonStatusFailed
	ReasonUnsupported
)

func (r Reason) String() string {
	switch r {
	case ReasonNoEffect:
		return "no-effect"
	case ReasonChanceFailed:
		return "chance-failed"
	case ReasonStageCapped:
		return "stage-capped"
	case ReasonStatusFailed:
		return "status-failed"
	case ReasonUnsupported:
		return "unsupported"
	default:
		return "none"
	}
}

// Outcome describes what happened when an effect was dispatched.
type Outcome struct {
	Kind    creature.EffectKind
	Target  creature.Target
	Applied bool
	Reason  Reason
	Stage   stages.Change
	Status  status.ApplyResult
}

// Apply resolves effect for attacker against defender. A chance below 100
// costs one draw and fails when the roll exceeds the chance. Healing is
// recognized but never applied.
func Apply(effect *creature.Effect, attacker, defender *creature.Creature, src rng.Source) Outcome {
	if effect == nil {
		return Outcome{Reason: ReasonNoEffect}
	}
	out := Outcome{Kind: effect.Kind, Target: effect.Target}

	if chance := effect.EffectiveChance(); chance < 100 {
		if src.Next()*100 > float64(chance) {
			out.Reason = ReasonChanceFailed
			return out
		}
	}

	target := defender
	if effect.Target == creature.TargetSelf {
		target = attacker
	}

	switch effect.Kind {
	case creature.EffectStatChange:
		out.Stage = stages.ApplyTo(target, effect.Stat, effect.Stages)
		out.Applied = out.Stage.Applied
		if !out.Applied {
			out.Reason = ReasonStageCapped
		}
	case creature.EffectStatusCondition:
		out.Status = status.Apply(target, effect.Condition, src)
		out.Applied = out.Status.Applied
		if !out.Applied {
			out.Reason = ReasonStatusFailed
		}
	default:
		out.Reason = ReasonUnsupported
	}
	return out
}
