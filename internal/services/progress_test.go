package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"gepay-web/internal/services"
)

func TestProgressEndsAtHundredOnce(t *testing.T) {
	for _, steps := range []int{1, 3, 7, 10} {
		var got []int
		if err := services.NewProgress(steps, 0).Play(context.Background(), func(p int) { got = append(got, p) }); err != nil {
			t.Fatalf("Play failed: %v", err)
		}

		if len(got) != steps {
			t.Errorf("steps=%d: got %d emissions", steps, len(got))
		}
		hundreds := 0
		for i, p := range got {
			if p == 100 {
				hundreds++
			}
			if i > 0 && p <= got[i-1] {
				t.Errorf("steps=%d: progress not increasing: %v", steps, got)
			}
		}
		if hundreds != 1 || got[len(got)-1] != 100 {
			t.Errorf("steps=%d: must end at 100 exactly once: %v", steps, got)
		}
	}
}

func TestProgressStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var got []int
	err := services.NewProgress(10, 5*time.Millisecond).Play(ctx, func(p int) {
		got = append(got, p)
		if p == 30 {
			cancel()
		}
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(got) != 3 {
		t.Errorf("expected emissions to stop at 30, got %v", got)
	}
}
