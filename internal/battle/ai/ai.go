// Package ai picks the opposing side's move each turn.
//
// Strategies are a closed set selected by Kind. A Strategy is built once per
// battle and stored with it.
package ai

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/louisbranch/creaturebattle/internal/battle/creature"
	"github.com/louisbranch/creaturebattle/internal/battle/rng"
	"github.com/louisbranch/creaturebattle/internal/battle/typechart"
)

// ErrNoMoves indicates the attacker has nothing to choose from.
var ErrNoMoves = errors.New("attacker has no moves")

const (
	lowHPThreshold = 0.3
	coinFlip       = 0.5
)

// Kind names a strategy.
type Kind uint8

const (
	KindHeuristic Kind = iota
	KindNaive
)

func (k Kind) String() string {
	switch k {
	case KindNaive:
		return "naive"
	case KindHeuristic:
		return "heuristic"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseKind resolves a strategy name. Blank selects the heuristic strategy.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "heuristic", "strategic":
		return KindHeuristic, nil
	case "naive", "basic":
		return KindNaive, nil
	default:
		return 0, fmt.Errorf("unknown ai strategy %q", name)
	}
}

// Strategy chooses a move id for an attacker facing a defender.
type Strategy struct {
	kind  Kind
	chart typechart.Chart
}

// New returns the strategy for kind scored against the default type chart.
func New(kind Kind) (Strategy, error) {
	switch kind {
	case KindNaive, KindHeuristic:
		return Strategy{kind: kind, chart: typechart.Default}, nil
	default:
		return Strategy{}, fmt.Errorf("unknown ai strategy %d", uint8(kind))
	}
}

// Kind reports the strategy kind.
func (s Strategy) Kind() Kind {
	return s.kind
}

// ChooseMove returns the id of the move attacker should use.
func (s Strategy) ChooseMove(attacker, defender *creature.Creature, src rng.Source) (string, error) {
	if len(attacker.Moves) == 0 {
		return "", fmt.Errorf("%s: %w", attacker.Name, ErrNoMoves)
	}
	if s.kind == KindNaive {
		return attacker.Moves[0].ID, nil
	}
	return s.heuristic(attacker, defender, src), nil
}

// Score is a move's heuristic value.
type Score struct {
	Move          creature.Move
	Effectiveness typechart.Multiplier
	Value         float64
}

// Rank scores every move of attacker against defender, best first. Ties
// keep move order.
func (s Strategy) Rank(attacker, defender *creature.Creature) []Score {
	chart := s.chart
	if chart == nil {
		chart = typechart.Default
	}
	lowHP := attacker.HPRatio() < lowHPThreshold
	scores := make([]Score, 0, len(attacker.Moves))
	for _, m := range attacker.Moves {
		eff := chart.Multiplier(m.Type, defender.Types...)
		value := float64(eff) + float64(m.Power)/200 + float64(m.Accuracy)/200
		if lowHP {
			value += float64(m.Power) / 300
		}
		scores = append(scores, Score{Move: m, Effectiveness: eff, Value: value})
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Value > scores[j].Value
	})
	return scores
}

// heuristic draws once for the super-effective gate (only when such a move
// exists), once for the top-move gate, and once more to pick between the top
// two.
func (s Strategy) heuristic(attacker, defender *creature.Creature, src rng.Source) string {
	scores := s.Rank(attacker, defender)

	for _, sc := range scores {
		if sc.Effectiveness == typechart.SuperEffective {
			if src.Next() < coinFlip {
				return sc.Move.ID
			}
			break
		}
	}

	if src.Next() < coinFlip || len(scores) == 1 {
		return scores[0].Move.ID
	}
	top := scores[:min(2, len(scores))]
	return top[rng.Intn(src, len(top))].Move.ID
}
