package engine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/sirupsen/logrus"
)

// Phase is the battle state machine state.
type Phase string

const (
	// PhaseSelect waits for a player action.
	PhaseSelect Phase = "select"
	// PhaseResolving runs a turn, and stays put while a player switch is
	// pending after a faint.
	PhaseResolving Phase = "resolving"
	// PhaseEnded is terminal.
	PhaseEnded Phase = "ended"
)

const (
	transitionSubmit = "submit"
	transitionResume = "resume"
	transitionFinish = "finish"
)

func newPhaseMachine(log logrus.FieldLogger) *fsm.FSM {
	return fsm.NewFSM(
		string(PhaseSelect),
		fsm.Events{
			{Name: transitionSubmit, Src: []string{string(PhaseSelect)}, Dst: string(PhaseResolving)},
			{Name: transitionResume, Src: []string{string(PhaseResolving)}, Dst: string(PhaseSelect)},
			{Name: transitionFinish, Src: []string{string(PhaseSelect), string(PhaseResolving)}, Dst: string(PhaseEnded)},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				log.WithFields(logrus.Fields{"from": e.Src, "to": e.Dst}).Debug("battle phase changed")
			},
		},
	)
}

func (b *Battle) phase() Phase {
	return Phase(b.machine.Current())
}

// transition moves the phase machine. Every call site checks the source
// phase first, so a failure here is a programming error.
func (b *Battle) transition(name string) {
	if err := b.machine.Event(context.Background(), name); err != nil {
		panic(fmt.Sprintf("battle phase %s via %s: %v", b.machine.Current(), name, err))
	}
}
