package booking

import (
	"context"

	"go.uber.org/zap"
)

type sagaStep struct {
	name string
	undo func(ctx context.Context) error
}

// saga accumulates undo actions as forward steps commit. On a later failure
// unwind runs them in reverse order. A failed undo is logged and the rest of
// the stack still runs.
type saga struct {
	log   *zap.Logger
	steps []sagaStep
}

func newSaga(log *zap.Logger) *saga {
	return &saga{log: log}
}

func (s *saga) push(name string, undo func(ctx context.Context) error) {
	s.steps = append(s.steps, sagaStep{name: name, undo: undo})
}

func (s *saga) unwind(ctx context.Context) {
	for i := len(s.steps) - 1; i >= 0; i-- {
		step := s.steps[i]
		if err := step.undo(ctx); err != nil {
			s.log.Error("compensation failed", zap.String("step", step.name), zap.Error(err))
		}
	}
	s.steps = nil
}
