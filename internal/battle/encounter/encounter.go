// Package encounter describes the kind of battle being fought, the rules it
// allows and how its outcome is reported.
package encounter

import (
	"fmt"
	"strings"
)

// Kind is the type of opponent.
type Kind string

const (
	KindWild      Kind = "wild"
	KindTrainer   Kind = "trainer"
	KindGymLeader Kind = "gym_leader"
)

// ParseKind resolves a kind name. Blank means a trainer battle.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "trainer", "npc", "thematic-npc":
		return KindTrainer, nil
	case "wild":
		return KindWild, nil
	case "gym", "gym_leader", "gym-leader":
		return KindGymLeader, nil
	default:
		return "", fmt.Errorf("unknown encounter kind %q", name)
	}
}

// Rules lists the player actions a battle allows beyond using moves.
type Rules struct {
	CanFlee    bool
	CanSwitch  bool
	CanCapture bool
}

// Rules returns the rule set for k.
func (k Kind) Rules() Rules {
	switch k {
	case KindWild:
		return Rules{CanFlee: true, CanSwitch: true, CanCapture: true}
	default:
		return Rules{CanSwitch: true}
	}
}

// Opponent identifies who the player is facing.
type Opponent struct {
	Kind Kind
	ID   string
	Name string
}

// Result is how a battle ended.
type Result string

const (
	ResultNone     Result = ""
	ResultVictory  Result = "victory"
	ResultDefeat   Result = "defeat"
	ResultCaptured Result = "captured"
	ResultFled     Result = "fled"
	ResultForfeit  Result = "forfeit"
)

// Outcome summarizes a finished battle.
type Outcome struct {
	Result   Result
	Opponent Opponent
	Turns    int
	Message  string
}

// MessageKey returns the catalog key of the outcome message. The message
// takes one argument: the opponent name, or the captured creature's name.
func MessageKey(kind Kind, result Result) string {
	switch result {
	case ResultVictory, ResultDefeat:
		if kind == "" {
			kind = KindTrainer
		}
		return fmt.Sprintf("battle.outcome.%s.%s", result, kind)
	case ResultCaptured, ResultFled, ResultForfeit:
		return "battle.outcome." + string(result)
	default:
		return ""
	}
}

// StartKey returns the catalog key announcing the battle.
func StartKey(kind Kind) string {
	if kind == "" {
		kind = KindTrainer
	}
	return "battle.start." + string(kind)
}
