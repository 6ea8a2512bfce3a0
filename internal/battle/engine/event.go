package engine

import (
	"github.com/louisbranch/creaturebattle/internal/battle/capture"
	"github.com/louisbranch/creaturebattle/internal/battle/creature"
	"github.com/louisbranch/creaturebattle/internal/battle/encounter"
	"github.com/louisbranch/creaturebattle/internal/battle/typechart"
)

// Side identifies a participant.
type Side uint8

const (
	SideNone Side = iota
	SidePlayer
	SideNPC
)

func (s Side) String() string {
	switch s {
	case SidePlayer:
		return "player"
	case SideNPC:
		return "npc"
	default:
		return "none"
	}
}

// Opponent returns the other side.
func (s Side) Opponent() Side {
	switch s {
	case SidePlayer:
		return SideNPC
	case SideNPC:
		return SidePlayer
	default:
		return SideNone
	}
}

// EventKind discriminates turn events.
type EventKind string

const (
	EventBattleStarted    EventKind = "battle_started"
	EventSentOut          EventKind = "sent_out"
	EventTurnStarted      EventKind = "turn_started"
	EventMoveUsed         EventKind = "move_used"
	EventMissed           EventKind = "missed"
	EventEffectiveness    EventKind = "effectiveness"
	EventDamage           EventKind = "damage"
	EventFainted          EventKind = "fainted"
	EventCannotAct        EventKind = "cannot_act"
	EventRecovered        EventKind = "recovered"
	EventStatChanged      EventKind = "stat_changed"
	EventStatChangeFailed EventKind = "stat_change_failed"
	EventStatusApplied    EventKind = "status_applied"
	EventStatusFailed     EventKind = "status_failed"
	EventStatusDamage     EventKind = "status_damage"
	EventSwitched         EventKind = "switched"
	EventSwitchRequired   EventKind = "switch_required"
	EventBallThrown       EventKind = "ball_thrown"
	EventBallShake        EventKind = "ball_shake"
	EventCaptured         EventKind = "captured"
	EventBrokeFree        EventKind = "broke_free"
	EventBattleEnded      EventKind = "battle_ended"
)

// Event is one entry of the battle log. Only the fields relevant to Kind
// are set. Text is the rendered log line.
type Event struct {
	Turn          int
	Kind          EventKind
	Side          Side
	Creature      string
	Target        string
	Move          string
	Amount        int
	Effectiveness typechart.Multiplier
	Stat          creature.Stat
	Stages        int
	Condition     creature.Condition
	Ball          capture.Ball
	Index         int
	Result        encounter.Result
	Text          string
}

// SwitchRequest is the pending marker left when the player's active
// creature faints and a replacement must be confirmed.
type SwitchRequest struct {
	Turn    int
	Fainted string
	Options []int
}

func (r *SwitchRequest) allows(index int) bool {
	for _, o := range r.Options {
		if o == index {
			return true
		}
	}
	return false
}
