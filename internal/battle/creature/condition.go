package creature

import (
	"fmt"
	"strings"
)

// Condition is a persistent status condition.
type Condition uint8

const (
	ConditionNone Condition = iota
	ConditionParalysis
	ConditionSleep
	ConditionFreeze
	ConditionBurn
	ConditionPoison
	ConditionBadlyPoisoned
)

var conditionNames = [...]string{
	ConditionNone:          "none",
	ConditionParalysis:     "paralysis",
	ConditionSleep:         "sleep",
	ConditionFreeze:        "freeze",
	ConditionBurn:          "burn",
	ConditionPoison:        "poison",
	ConditionBadlyPoisoned: "badly-poisoned",
}

func (c Condition) String() string {
	if int(c) < len(conditionNames) {
		return conditionNames[c]
	}
	return fmt.Sprintf("condition(%d)", uint8(c))
}

// ParseCondition resolves a condition name. Blank means none.
func ParseCondition(name string) (Condition, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	switch key {
	case "":
		return ConditionNone, nil
	case "toxic", "badly_poisoned":
		return ConditionBadlyPoisoned, nil
	case "paralyzed":
		return ConditionParalysis, nil
	case "asleep":
		return ConditionSleep, nil
	case "frozen":
		return ConditionFreeze, nil
	case "burned":
		return ConditionBurn, nil
	case "poisoned":
		return ConditionPoison, nil
	}
	for c, conditionName := range conditionNames {
		if conditionName == key {
			return Condition(c), nil
		}
	}
	return ConditionNone, fmt.Errorf("unknown condition %q", name)
}

// StatusState is the single persistent condition a creature may carry.
type StatusState struct {
	Condition      Condition
	TurnsRemaining int
	PoisonCounter  int
}

// Active reports whether any condition is present.
func (s StatusState) Active() bool {
	return s.Condition != ConditionNone
}
