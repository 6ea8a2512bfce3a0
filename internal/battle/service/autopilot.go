package service

import (
	"context"
	"fmt"

	"github.com/louisbranch/creaturebattle/internal/battle/ai"
	"github.com/louisbranch/creaturebattle/internal/battle/engine"
	"github.com/louisbranch/creaturebattle/internal/battle/rng"
	apperrors "github.com/louisbranch/creaturebattle/internal/platform/errors"
)

// AutoTurn plays one player decision with the heuristic strategy: a
// pending switch is confirmed with the first option, otherwise a move is
// chosen for the active creature. The choice draws from its own stream of
// the battle seed so the battle stream stays what manual play would see.
func (s *Service) AutoTurn(ctx context.Context, battleID string) (TurnResult, error) {
	sess, err := s.lookup(ctx, battleID)
	if err != nil {
		return TurnResult{}, err
	}

	sess.mu.Lock()
	if pending, ok := sess.battle.PendingSwitch(); ok {
		sess.mu.Unlock()
		if len(pending.Options) == 0 {
			return TurnResult{}, apperrors.New(apperrors.CodeBattleNoHealthyCreature, "no creature to switch in")
		}
		return s.ConfirmSwitch(ctx, battleID, pending.Options[0])
	}
	if sess.battle.IsEnded() {
		sess.mu.Unlock()
		return TurnResult{}, apperrors.New(apperrors.CodeBattleWrongPhase, "battle has ended")
	}
	if sess.autopilot == nil {
		sess.autopilot = rng.FromString(fmt.Sprintf("%v/autopilot", sess.battle.Seed()))
	}
	state := sess.battle.State()
	player, npc := state.Player(), state.NPC()
	strategy, err := ai.New(ai.KindHeuristic)
	if err != nil {
		sess.mu.Unlock()
		return TurnResult{}, err
	}
	moveID, err := strategy.ChooseMove(&player, &npc, sess.autopilot)
	sess.mu.Unlock()
	if err != nil {
		return TurnResult{}, apperrors.Wrap(apperrors.CodeBattleNoMoves, "autopilot", err)
	}
	return s.SelectMove(ctx, battleID, moveID)
}

// Autoplay runs AutoTurn until the battle ends or maxTurns decisions were
// made, and returns every event produced.
func (s *Service) Autoplay(ctx context.Context, battleID string, maxTurns int) ([]engine.Event, engine.State, error) {
	var events []engine.Event
	for range maxTurns {
		res, err := s.AutoTurn(ctx, battleID)
		if err != nil {
			return events, engine.State{}, err
		}
		events = append(events, res.Events...)
		if res.State.Phase == engine.PhaseEnded {
			return events, res.State, nil
		}
	}
	state, err := s.State(ctx, battleID)
	return events, state, err
}
