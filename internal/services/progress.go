package services

import (
	"context"
	"time"
)

// Progress drives the progress bar shown after a submission is accepted. It is
// a UX placeholder: the steps are timed locally and say nothing about remote
// completion, which is observed through StatusWatcher and the history view.
type Progress struct {
	steps    int
	interval time.Duration
}

func NewProgress(steps int, interval time.Duration) *Progress {
	if steps <= 0 {
		steps = 10
	}
	return &Progress{steps: steps, interval: interval}
}

// Play emits steps equal increments ending at exactly 100. It stops early,
// without reaching 100, when ctx is cancelled.
func (p *Progress) Play(ctx context.Context, emit func(percent int)) error {
	var ticker *time.Ticker
	if p.interval > 0 {
		ticker = time.NewTicker(p.interval)
		defer ticker.Stop()
	}

	for i := 1; i <= p.steps; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if ticker != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}

		emit(i * 100 / p.steps)
	}

	return nil
}
