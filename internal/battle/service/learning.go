package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/louisbranch/creaturebattle/internal/battle/creature"
	"github.com/louisbranch/creaturebattle/internal/battle/encounter"
	apperrors "github.com/louisbranch/creaturebattle/internal/platform/errors"
)

// MoveLearner is a player creature that unlocks a move after a victory.
type MoveLearner struct {
	Index        int
	Creature     string
	Move         creature.Move
	CurrentMoves []creature.Move
}

// MoveLearners lists, for a won battle, each surviving player creature
// with the damaging moves its species learns at the next level. Any other
// outcome has no learners.
func (s *Service) MoveLearners(ctx context.Context, battleID string) ([]MoveLearner, error) {
	sess, err := s.lookup(ctx, battleID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	team, ok := sess.victoryTeam()
	if !ok {
		return nil, nil
	}
	var out []MoveLearner
	for i := range team {
		c := &team[i]
		if c.Fainted() {
			continue
		}
		candidates, err := s.hydrator.LearnCandidates(ctx, c, c.Level, c.Level+1)
		if err != nil {
			if apperrors.HasCode(err, apperrors.CodeCatalogNotFound) {
				// Creatures built outside the catalog have no learnset.
				continue
			}
			return nil, err
		}
		for _, mv := range candidates {
			out = append(out, MoveLearner{
				Index:        i,
				Creature:     c.Name,
				Move:         mv,
				CurrentMoves: cloneMoves(c.Moves),
			})
		}
	}
	return out, nil
}

// LearnMove teaches moveID to the player creature at index after a
// victory. slot picks the move to forget when the creature already knows
// four, or creature.SkipLearning to decline.
func (s *Service) LearnMove(ctx context.Context, battleID string, index int, moveID string, slot int) ([]creature.Move, creature.LearnResult, error) {
	sess, err := s.lookup(ctx, battleID)
	if err != nil {
		return nil, creature.LearnResult{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	team, ok := sess.victoryTeam()
	if !ok {
		return nil, creature.LearnResult{}, apperrors.New(apperrors.CodeBattleWrongPhase, "moves are learned after a victory")
	}
	if index < 0 || index >= len(team) || team[index].Fainted() {
		return nil, creature.LearnResult{}, apperrors.WithMetadata(apperrors.CodeBattleInvalidConfig,
			fmt.Sprintf("no surviving creature at index %d", index),
			map[string]string{"index": fmt.Sprint(index)})
	}
	c := &team[index]

	candidates, err := s.hydrator.LearnCandidates(ctx, c, c.Level, c.Level+1)
	if err != nil {
		return nil, creature.LearnResult{}, err
	}
	var move *creature.Move
	for i := range candidates {
		if candidates[i].ID == moveID {
			move = &candidates[i]
			break
		}
	}
	if move == nil {
		return nil, creature.LearnResult{}, apperrors.WithMetadata(apperrors.CodeBattleUnknownMove,
			fmt.Sprintf("%s cannot learn %s now", c.Name, moveID),
			map[string]string{"move": moveID})
	}

	moves, result, err := creature.ApplyMoveLearning(c.Moves, *move, slot)
	if err != nil {
		return nil, creature.LearnResult{}, apperrors.Wrap(apperrors.CodeBattleInvalidConfig, "learn move", err)
	}
	c.Moves = moves
	sess.log.WithFields(logrus.Fields{
		"creature": c.Name,
		"move":     moveID,
		"learned":  result.Learned,
		"slot":     result.ReplacedSlot,
	}).Info("move learning applied")
	return cloneMoves(moves), result, nil
}

// victoryTeam returns the player's roster once the battle was won, taking
// it from the final state on first use.
func (sess *session) victoryTeam() ([]creature.Creature, bool) {
	state := sess.battle.State()
	if state.Outcome == nil || state.Outcome.Result != encounter.ResultVictory {
		return nil, false
	}
	if sess.team == nil {
		sess.team = state.PlayerTeam
	}
	return sess.team, true
}

func cloneMoves(moves []creature.Move) []creature.Move {
	out := make([]creature.Move, len(moves))
	for i, m := range moves {
		out[i] = m.Clone()
	}
	return out
}
