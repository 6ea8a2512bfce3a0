package creature

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyKnown indicates the creature already knows the move.
	ErrAlreadyKnown = errors.New("move already known")
	// ErrInvalidSlot indicates a replacement slot outside the move list.
	ErrInvalidSlot = errors.New("invalid move slot")
)

// SkipLearning declines to learn a move when passed as the replace slot.
const SkipLearning = -1

// LearnResult describes what ApplyMoveLearning did.
type LearnResult struct {
	Learned      bool
	ReplacedSlot int
	Forgotten    *Move
}

// NeedsReplacement reports whether learning requires forgetting a move.
func NeedsReplacement(moves []Move) bool {
	return len(moves) >= MaxMoves
}

// ApplyMoveLearning returns the move list after trying to learn move. With
// free slots the move is appended and slot is ignored unless it is
// SkipLearning. With a full list, slot names the move to forget.
func ApplyMoveLearning(moves []Move, move Move, slot int) ([]Move, LearnResult, error) {
	out := make([]Move, len(moves))
	copy(out, moves)
	if slot == SkipLearning {
		return out, LearnResult{ReplacedSlot: SkipLearning}, nil
	}
	for _, known := range moves {
		if known.ID == move.ID {
			return out, LearnResult{ReplacedSlot: SkipLearning}, fmt.Errorf("%s: %w", move.ID, ErrAlreadyKnown)
		}
	}
	if !NeedsReplacement(moves) {
		out = append(out, move.Clone())
		return out, LearnResult{Learned: true, ReplacedSlot: SkipLearning}, nil
	}
	if slot < 0 || slot >= len(moves) {
		return out, LearnResult{ReplacedSlot: SkipLearning}, fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}
	forgotten := moves[slot].Clone()
	out[slot] = move.Clone()
	return out, LearnResult{Learned: true, ReplacedSlot: slot, Forgotten: &forgotten}, nil
}
