package engine

import (
	"fmt"

	apperrors "github.com/louisbranch/creaturebattle/internal/platform/errors"
)

// ConfirmSwitch answers a pending switch request by sending in the roster
// member at index. The turn then closes and the battle returns to select.
func (b *Battle) ConfirmSwitch(index int) ([]Event, error) {
	if b.pending == nil {
		return nil, b.reject(apperrors.WithMetadata(apperrors.CodeBattleWrongPhase,
			"no switch is pending",
			map[string]string{"phase": string(b.phase())}))
	}
	if !b.pending.allows(index) {
		if err := b.validateSwitch(index); err != nil {
			return nil, b.reject(err)
		}
		return nil, b.reject(apperrors.WithMetadata(apperrors.CodeBattleInvalidSwitch,
			fmt.Sprintf("index %d is not a switch option", index),
			map[string]string{"index": fmt.Sprint(index)}))
	}

	b.emitted = nil
	b.pending = nil
	b.switchIn(SidePlayer, index)
	b.turn++
	b.transition(transitionResume)
	return b.takeEmitted(), nil
}
