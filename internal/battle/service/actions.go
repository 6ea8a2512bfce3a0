package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/creaturebattle/internal/battle/capture"
	"github.com/louisbranch/creaturebattle/internal/battle/engine"
)

// TurnResult is what one accepted action produced.
type TurnResult struct {
	Events []engine.Event
	State  engine.State
}

// CaptureResult adds the ball roll to a TurnResult.
type CaptureResult struct {
	TurnResult
	Capture capture.Result
}

// SelectMove uses moveID for the player's active creature.
func (s *Service) SelectMove(ctx context.Context, battleID, moveID string) (TurnResult, error) {
	return s.act(ctx, battleID, "battle.turn", []attribute.KeyValue{attribute.String("battle.move", moveID)},
		func(b *engine.Battle) ([]engine.Event, error) { return b.SelectMove(moveID) })
}

// SelectSwitch spends the turn sending in the roster member at index.
func (s *Service) SelectSwitch(ctx context.Context, battleID string, index int) (TurnResult, error) {
	return s.act(ctx, battleID, "battle.switch", []attribute.KeyValue{attribute.Int("battle.switch_index", index)},
		func(b *engine.Battle) ([]engine.Event, error) { return b.SelectSwitch(index) })
}

// ConfirmSwitch replaces a fainted creature with the member at index.
func (s *Service) ConfirmSwitch(ctx context.Context, battleID string, index int) (TurnResult, error) {
	return s.act(ctx, battleID, "battle.switch", []attribute.KeyValue{
		attribute.Int("battle.switch_index", index),
		attribute.Bool("battle.forced", true),
	}, func(b *engine.Battle) ([]engine.Event, error) { return b.ConfirmSwitch(index) })
}

// Abandon flees a wild battle or forfeits any other.
func (s *Service) Abandon(ctx context.Context, battleID string) (TurnResult, error) {
	return s.act(ctx, battleID, "battle.abandon", nil,
		func(b *engine.Battle) ([]engine.Event, error) { return b.Abandon() })
}

// AttemptCapture throws ball at the wild creature.
func (s *Service) AttemptCapture(ctx context.Context, battleID, ball string) (CaptureResult, error) {
	var roll capture.Result
	res, err := s.act(ctx, battleID, "battle.capture", []attribute.KeyValue{attribute.String("battle.ball", ball)},
		func(b *engine.Battle) ([]engine.Event, error) {
			events, result, err := b.AttemptCapture(capture.Ball(ball))
			roll = result
			return events, err
		})
	if err != nil {
		return CaptureResult{}, err
	}
	return CaptureResult{TurnResult: res, Capture: roll}, nil
}

func (s *Service) act(ctx context.Context, battleID, spanName string, attrs []attribute.KeyValue, fn func(*engine.Battle) ([]engine.Event, error)) (TurnResult, error) {
	ctx, span := s.tracer.Start(ctx, spanName, trace.WithAttributes(
		append([]attribute.KeyValue{attribute.String("battle.id", battleID)}, attrs...)...,
	))
	defer span.End()

	sess, err := s.lookup(ctx, battleID)
	if err != nil {
		recordError(span, err)
		return TurnResult{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	events, err := fn(sess.battle)
	if err != nil {
		recordError(span, err)
		return TurnResult{}, err
	}
	state := sess.battle.State()
	span.SetAttributes(
		attribute.Int("battle.turn", state.Turn),
		attribute.String("battle.phase", string(state.Phase)),
		attribute.Int("battle.events", len(events)),
	)
	if state.Outcome != nil {
		span.SetAttributes(attribute.String("battle.result", string(state.Outcome.Result)))
	}
	return TurnResult{Events: events, State: state}, nil
}
