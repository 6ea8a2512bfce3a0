package engine

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/louisbranch/creaturebattle/internal/battle/capture"
	"github.com/louisbranch/creaturebattle/internal/battle/creature"
	"github.com/louisbranch/creaturebattle/internal/battle/damage"
	"github.com/louisbranch/creaturebattle/internal/battle/effect"
	"github.com/louisbranch/creaturebattle/internal/battle/encounter"
	"github.com/louisbranch/creaturebattle/internal/battle/stages"
	"github.com/louisbranch/creaturebattle/internal/battle/status"
	"github.com/louisbranch/creaturebattle/internal/battle/typechart"
	apperrors "github.com/louisbranch/creaturebattle/internal/platform/errors"
)

type actionKind uint8

const (
	actionMove actionKind = iota
	actionSwitch
	actionCapture
)

type action struct {
	kind   actionKind
	moveID string
	index  int
	ball   capture.Ball
}

// SelectMove resolves a turn in which the player uses moveID.
func (b *Battle) SelectMove(moveID string) ([]Event, error) {
	if err := b.requireSelect("select move"); err != nil {
		return nil, err
	}
	if _, ok := b.player.current().Move(moveID); !ok {
		return nil, b.reject(apperrors.WithMetadata(apperrors.CodeBattleUnknownMove,
			fmt.Sprintf("%s does not know move %q", b.player.current().Name, moveID),
			map[string]string{"move": moveID}))
	}
	return b.resolveTurn(action{kind: actionMove, moveID: moveID})
}

// SelectSwitch resolves a turn in which the player voluntarily swaps in the
// roster member at index. The NPC still attacks.
func (b *Battle) SelectSwitch(index int) ([]Event, error) {
	if err := b.requireSelect("switch"); err != nil {
		return nil, err
	}
	if !b.rules.CanSwitch {
		return nil, b.reject(apperrors.New(apperrors.CodeBattleActionNotAllowed, "switching is not allowed in this battle"))
	}
	if err := b.validateSwitch(index); err != nil {
		return nil, b.reject(err)
	}
	return b.resolveTurn(action{kind: actionSwitch, index: index})
}

// AttemptCapture throws ball at the wild creature. A failed throw costs the
// turn and the NPC attacks; a successful one ends the battle.
func (b *Battle) AttemptCapture(ball capture.Ball) ([]Event, capture.Result, error) {
	if err := b.requireSelect("capture"); err != nil {
		return nil, capture.Result{}, err
	}
	if !b.rules.CanCapture {
		return nil, capture.Result{}, b.reject(apperrors.New(apperrors.CodeBattleActionNotAllowed, "capture is only possible in wild battles"))
	}
	parsed, err := capture.ParseBall(string(ball))
	if err != nil {
		return nil, capture.Result{}, b.reject(apperrors.Wrap(apperrors.CodeBattleActionNotAllowed, "unknown ball", err))
	}
	events, err := b.resolveTurn(action{kind: actionCapture, ball: parsed})
	return events, b.lastCapture, err
}

// Abandon ends the battle from the select phase. Wild battles end with the
// player fleeing; others with a forfeit. It is rejected while a turn is
// resolving, including while a switch confirmation is pending.
func (b *Battle) Abandon() ([]Event, error) {
	if err := b.requireSelect("abandon"); err != nil {
		return nil, err
	}
	b.emitted = nil
	result := encounter.ResultForfeit
	if b.rules.CanFlee {
		result = encounter.ResultFled
	}
	b.finish(result)
	return b.takeEmitted(), nil
}

func (b *Battle) requireSelect(op string) error {
	if phase := b.phase(); phase != PhaseSelect {
		return b.reject(apperrors.WithMetadata(apperrors.CodeBattleWrongPhase,
			fmt.Sprintf("cannot %s during %s phase", op, phase),
			map[string]string{"phase": string(phase)}))
	}
	return nil
}

func (b *Battle) reject(err *apperrors.Error) error {
	b.log.WithFields(logrus.Fields{
		"turn":  b.turn,
		"code":  string(err.Code),
		"phase": string(b.phase()),
	}).Warn(err.Error())
	return err
}

func (b *Battle) validateSwitch(index int) *apperrors.Error {
	meta := map[string]string{"index": fmt.Sprint(index)}
	switch {
	case index < 0 || index >= len(b.player.members):
		return apperrors.WithMetadata(apperrors.CodeBattleInvalidSwitch, fmt.Sprintf("no roster member at index %d", index), meta)
	case index == b.player.active:
		return apperrors.WithMetadata(apperrors.CodeBattleInvalidSwitch, fmt.Sprintf("%s is already active", b.player.members[index].Name), meta)
	case b.player.members[index].Fainted():
		return apperrors.WithMetadata(apperrors.CodeBattleInvalidSwitch, fmt.Sprintf("%s has fainted", b.player.members[index].Name), meta)
	}
	return nil
}

func (b *Battle) resolveTurn(act action) ([]Event, error) {
	npcMoveID, err := b.strategy.ChooseMove(b.npc.current(), b.player.current(), b.src)
	if err != nil {
		return nil, b.reject(apperrors.Wrap(apperrors.CodeBattleNoMoves, "npc cannot choose a move", err))
	}

	b.emitted = nil
	b.lastCapture = capture.Result{}
	b.transition(transitionSubmit)
	b.emit(Event{Kind: EventTurnStarted, Amount: b.turn})

	playerActor := b.player.current()
	npcActor := b.npc.current()
	order := []Side{SideNPC}

	switch act.kind {
	case actionSwitch:
		b.switchIn(SidePlayer, act.index)
	case actionCapture:
		if b.throwBall(act.ball) {
			b.finish(encounter.ResultCaptured)
			return b.takeEmitted(), nil
		}
	default:
		order = b.order()
	}

	for _, side := range order {
		if b.winner != SideNone {
			break
		}
		if side == SidePlayer {
			b.act(SidePlayer, playerActor, act.moveID)
		} else {
			b.act(SideNPC, npcActor, npcMoveID)
		}
	}

	if b.winner == SideNone {
		b.endOfTurn(b.order())
	}
	b.wrapUp()
	return b.takeEmitted(), nil
}

// order returns the sides by effective speed. The player acts first on a tie.
func (b *Battle) order() []Side {
	if b.speed(b.player.current()) >= b.speed(b.npc.current()) {
		return []Side{SidePlayer, SideNPC}
	}
	return []Side{SideNPC, SidePlayer}
}

func (b *Battle) speed(c *creature.Creature) float64 {
	return float64(stages.Effective(c, creature.StatSpeed)) * status.SpeedModifier(c)
}

func (b *Battle) side(s Side) *roster {
	if s == SidePlayer {
		return &b.player
	}
	return &b.npc
}

// act runs one side's move. The actor is the creature that was active when
// the turn began; if it fainted or left the field it does nothing.
func (b *Battle) act(side Side, attacker *creature.Creature, moveID string) {
	if attacker != b.side(side).current() || attacker.Fainted() {
		return
	}
	defender := b.side(side.Opponent()).current()
	if defender.Fainted() {
		return
	}

	check := status.CheckCanAct(attacker, b.src)
	if check.Recovered != creature.ConditionNone {
		b.emit(Event{Kind: EventRecovered, Side: side, Creature: attacker.Name, Condition: check.Recovered})
	}
	if !check.CanAct {
		b.emit(Event{Kind: EventCannotAct, Side: side, Creature: attacker.Name, Condition: check.Blocker})
		return
	}

	move, ok := attacker.Move(moveID)
	if !ok {
		b.log.WithFields(logrus.Fields{"turn": b.turn, "side": side.String(), "move": moveID}).Warn("actor does not know move")
		return
	}
	b.emit(Event{Kind: EventMoveUsed, Side: side, Creature: attacker.Name, Target: defender.Name, Move: move.Name})

	threshold := float64(move.Accuracy) * stages.AccuracyMultiplier(attacker, defender)
	if b.src.Next()*100 >= threshold {
		b.emit(Event{Kind: EventMissed, Side: side, Creature: attacker.Name, Move: move.Name})
		return
	}

	if move.Damaging() {
		res := damage.Calculate(damage.Inputs(attacker, defender, move, b.chart), b.src)
		if res.Effectiveness != typechart.Neutral {
			b.emit(Event{Kind: EventEffectiveness, Side: side, Creature: attacker.Name, Target: defender.Name, Effectiveness: res.Effectiveness})
		}
		if res.Effectiveness == typechart.Immune {
			return
		}
		dealt := defender.ApplyDamage(res.Damage)
		b.emit(Event{Kind: EventDamage, Side: side.Opponent(), Creature: defender.Name, Amount: dealt, Move: move.Name, Effectiveness: res.Effectiveness})
		if defender.Fainted() {
			b.faint(side.Opponent())
			if b.winner != SideNone {
				return
			}
		}
	}

	if move.Effect == nil {
		return
	}
	if move.Effect.Target == creature.TargetOpponent && defender.Fainted() {
		return
	}
	b.applyEffect(side, attacker, defender, move.Effect)
}

func (b *Battle) applyEffect(side Side, attacker, defender *creature.Creature, eff *creature.Effect) {
	out := effect.Apply(eff, attacker, defender, b.src)
	targetSide, target := side.Opponent(), defender
	if out.Target == creature.TargetSelf {
		targetSide, target = side, attacker
	}

	switch out.Kind {
	case creature.EffectStatChange:
		if out.Reason == effect.ReasonChanceFailed {
			return
		}
		kind := EventStatChanged
		if !out.Applied {
			kind = EventStatChangeFailed
		}
		b.emit(Event{Kind: kind, Side: targetSide, Creature: target.Name, Stat: eff.Stat, Stages: stageDirection(out, eff.Stages)})
	case creature.EffectStatusCondition:
		if out.Reason == effect.ReasonChanceFailed {
			return
		}
		if out.Applied {
			b.emit(Event{Kind: EventStatusApplied, Side: targetSide, Creature: target.Name, Condition: eff.Condition})
			return
		}
		b.emit(Event{Kind: EventStatusFailed, Side: targetSide, Creature: target.Name, Condition: eff.Condition, Amount: int(out.Status.Reason)})
	default:
		b.log.WithFields(logrus.Fields{"turn": b.turn, "effect": out.Kind.String()}).Debug("effect not applied")
	}
}

func stageDirection(out effect.Outcome, requested int) int {
	if out.Applied {
		return out.Stage.Delta
	}
	return requested
}

// faint handles a knocked out active creature on side. The NPC swaps in its
// next healthy member at once; the player gets a pending switch. With nobody
// left the other side wins.
func (b *Battle) faint(side Side) {
	r := b.side(side)
	fainted := r.current()
	b.emit(Event{Kind: EventFainted, Side: side, Creature: fainted.Name})

	next, ok := r.nextHealthy()
	if !ok {
		b.winner = side.Opponent()
		b.pending = nil
		return
	}
	if side == SideNPC {
		b.switchIn(SideNPC, next)
		return
	}
	b.pending = &SwitchRequest{Turn: b.turn, Fainted: fainted.Name, Options: r.healthyBench()}
	b.emit(Event{Kind: EventSwitchRequired, Side: SidePlayer, Creature: fainted.Name})
}

// switchIn makes index the active member of side. Stages of the outgoing
// creature reset; its status stays.
func (b *Battle) switchIn(side Side, index int) {
	r := b.side(side)
	outgoing := r.current()
	stages.Reset(outgoing)
	r.active = index
	b.emit(Event{Kind: EventSwitched, Side: side, Creature: outgoing.Name, Target: r.current().Name, Index: index})
}

func (b *Battle) endOfTurn(order []Side) {
	for _, side := range order {
		c := b.side(side).current()
		if c.Fainted() {
			continue
		}
		tick := status.EndOfTurn(c)
		if tick.Damage == 0 {
			continue
		}
		b.emit(Event{Kind: EventStatusDamage, Side: side, Creature: c.Name, Condition: tick.Condition, Amount: tick.Damage})
		if c.Fainted() {
			b.faint(side)
			if b.winner != SideNone {
				return
			}
		}
	}
}

func (b *Battle) throwBall(ball capture.Ball) bool {
	target := b.npc.current()
	res := capture.Throw(capture.SnapshotOf(target), ball, b.src)
	b.lastCapture = res

	b.emit(Event{Kind: EventBallThrown, Side: SidePlayer, Creature: target.Name, Ball: ball})
	for i := 1; i <= min(res.Shakes, capture.MaxDisplayShakes); i++ {
		b.emit(Event{Kind: EventBallShake, Side: SidePlayer, Creature: target.Name, Ball: ball, Amount: i})
	}
	if !res.Success {
		b.emit(Event{Kind: EventBrokeFree, Side: SideNPC, Creature: target.Name, Ball: ball, Amount: res.Shakes})
		return false
	}
	b.captured = target.Clone()
	b.captured.CurrentHP = target.CurrentHP
	b.captured.Status = target.Status
	b.winner = SidePlayer
	b.emit(Event{Kind: EventCaptured, Side: SidePlayer, Creature: target.Name, Ball: ball})
	return true
}

func (b *Battle) wrapUp() {
	switch {
	case b.winner == SidePlayer:
		b.finish(encounter.ResultVictory)
	case b.winner == SideNPC:
		b.finish(encounter.ResultDefeat)
	case b.pending != nil:
		b.log.WithFields(logrus.Fields{"turn": b.turn, "fainted": b.pending.Fainted}).Debug("waiting for switch confirmation")
	default:
		b.turn++
		b.transition(transitionResume)
	}
}

func (b *Battle) finish(result encounter.Result) {
	name := b.opponent.Name
	switch {
	case result == encounter.ResultCaptured && b.captured != nil:
		name = b.captured.Name
	case b.opponent.Kind == encounter.KindWild:
		name = b.npc.current().Name
	}
	outcome := encounter.Outcome{
		Result:   result,
		Opponent: b.opponent,
		Turns:    b.turn,
	}
	ev := b.emit(Event{Kind: EventBattleEnded, Side: b.winner, Creature: name, Result: result, Amount: b.turn})
	outcome.Message = ev.Text
	b.outcome = &outcome
	b.pending = nil
	b.transition(transitionFinish)
	b.log.WithFields(logrus.Fields{"result": string(result), "turns": b.turn}).Info("battle ended")
}

func (b *Battle) emit(ev Event) Event {
	ev.Turn = b.turn
	ev.Text = b.render(ev)
	b.history = append(b.history, ev)
	b.emitted = append(b.emitted, ev)
	b.log.WithFields(logrus.Fields{"turn": ev.Turn, "event": string(ev.Kind)}).Debug(ev.Text)
	return ev
}

func (b *Battle) takeEmitted() []Event {
	out := b.emitted
	b.emitted = nil
	return out
}
