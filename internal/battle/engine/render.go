package engine

import (
	"github.com/louisbranch/creaturebattle/internal/battle/creature"
	"github.com/louisbranch/creaturebattle/internal/battle/encounter"
	"github.com/louisbranch/creaturebattle/internal/battle/status"
	"github.com/louisbranch/creaturebattle/internal/battle/typechart"
)

// render turns ev into a log line in the battle's locale.
func (b *Battle) render(ev Event) string {
	key, args := b.messageFor(ev)
	if key == "" {
		return ""
	}
	return b.printer.Sprintf(key, args...)
}

func (b *Battle) messageFor(ev Event) (string, []any) {
	switch ev.Kind {
	case EventBattleStarted:
		return encounter.StartKey(b.opponent.Kind), []any{ev.Creature}
	case EventSentOut:
		return "battle.sent_out." + ev.Side.String(), []any{ev.Creature}
	case EventTurnStarted:
		return "battle.turn", []any{ev.Amount}
	case EventMoveUsed:
		return "battle.move_used", []any{ev.Creature, ev.Move}
	case EventMissed:
		return "battle.missed", []any{ev.Creature}
	case EventEffectiveness:
		switch ev.Effectiveness {
		case typechart.SuperEffective:
			return "battle.effectiveness.super", nil
		case typechart.NotVeryEffective:
			return "battle.effectiveness.not_very", nil
		case typechart.Immune:
			return "battle.effectiveness.immune", []any{ev.Target}
		}
	case EventDamage:
		return "battle.damage", []any{ev.Creature, ev.Amount}
	case EventFainted:
		return "battle.fainted", []any{ev.Creature}
	case EventCannotAct:
		return "battle.cannot_act." + ev.Condition.String(), []any{ev.Creature}
	case EventRecovered:
		return "battle.recovered." + ev.Condition.String(), []any{ev.Creature}
	case EventStatChanged, EventStatChangeFailed:
		return statKey(ev), []any{ev.Creature, b.statName(ev.Stat)}
	case EventStatusApplied:
		return "battle.status.applied." + ev.Condition.String(), []any{ev.Creature}
	case EventStatusFailed:
		if status.FailReason(ev.Amount) == status.FailImmune {
			return "battle.status.immune", []any{ev.Creature}
		}
		return "battle.status.already", []any{ev.Creature}
	case EventStatusDamage:
		return "battle.status.damage." + ev.Condition.String(), []any{ev.Creature, ev.Amount}
	case EventSwitched:
		return "battle.switch." + ev.Side.String(), []any{ev.Creature, ev.Target}
	case EventSwitchRequired:
		return "battle.switch.required", []any{ev.Creature}
	case EventBallThrown:
		return "battle.capture.throw", []any{b.ballName(ev)}
	case EventBallShake:
		return "battle.capture.shake", []any{ev.Amount}
	case EventCaptured:
		return "battle.capture.success", []any{ev.Creature}
	case EventBrokeFree:
		return "battle.capture.failed", []any{ev.Creature}
	case EventBattleEnded:
		key := encounter.MessageKey(b.opponent.Kind, ev.Result)
		if ev.Result == encounter.ResultFled {
			return key, nil
		}
		return key, []any{ev.Creature}
	}
	return "", nil
}

func statKey(ev Event) string {
	if ev.Kind == EventStatChangeFailed {
		if ev.Stages < 0 {
			return "battle.stat.capped_low"
		}
		return "battle.stat.capped_high"
	}
	switch {
	case ev.Stages >= 3:
		return "battle.stat.rose_drastically"
	case ev.Stages == 2:
		return "battle.stat.rose_sharply"
	case ev.Stages > 0:
		return "battle.stat.rose"
	case ev.Stages <= -3:
		return "battle.stat.fell_severely"
	case ev.Stages == -2:
		return "battle.stat.fell_harshly"
	default:
		return "battle.stat.fell"
	}
}

func (b *Battle) statName(s creature.Stat) string {
	return b.printer.Sprintf("battle.stat_name." + s.String())
}

func (b *Battle) ballName(ev Event) string {
	return b.printer.Sprintf("battle.ball." + string(ev.Ball))
}
