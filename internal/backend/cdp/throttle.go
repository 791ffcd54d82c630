package cdp

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/xkilldash9x/ghosthand/api/schemas"
	"github.com/xkilldash9x/ghosthand/internal/controller"
	"github.com/xkilldash9x/ghosthand/internal/planner"
)

// Throttled wraps a Backend and caps how fast input events reach it. Some
// pages debounce or outright drop events that arrive faster than hardware
// can produce them, so a ceiling keeps long gestures from degenerating.
type Throttled struct {
	backend controller.Backend
	limiter *rate.Limiter
}

var _ controller.Backend = (*Throttled)(nil)

// NewThrottled wraps backend with an event-rate ceiling. Rates at or below
// zero disable the wrapper and hand the backend straight back.
func NewThrottled(backend controller.Backend, eventsPerSec float64) controller.Backend {
	if eventsPerSec <= 0 {
		return backend
	}
	return &Throttled{
		backend: backend,
		limiter: rate.NewLimiter(rate.Limit(eventsPerSec), 1),
	}
}

func (t *Throttled) MoveTo(ctx context.Context, p planner.Point) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}
	return t.backend.MoveTo(ctx, p)
}

func (t *Throttled) Click(ctx context.Context, p planner.Point, button schemas.MouseButton) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}
	return t.backend.Click(ctx, p, button)
}

func (t *Throttled) DragTo(ctx context.Context, start, end planner.Point, duration time.Duration) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}
	return t.backend.DragTo(ctx, start, end, duration)
}

func (t *Throttled) Scroll(ctx context.Context, at planner.Point, amount int, axis schemas.Axis) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}
	return t.backend.Scroll(ctx, at, amount, axis)
}

func (t *Throttled) SendKeys(ctx context.Context, keys string) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}
	return t.backend.SendKeys(ctx, keys)
}

func (t *Throttled) PressKey(ctx context.Context, key schemas.KeyEventData) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}
	return t.backend.PressKey(ctx, key)
}

// CurrentPosition is a query, not an event, and passes through unthrottled.
func (t *Throttled) CurrentPosition(ctx context.Context) (planner.Point, error) {
	return t.backend.CurrentPosition(ctx)
}

// Sleep already paces the stream; throttling it would double-count.
func (t *Throttled) Sleep(ctx context.Context, d time.Duration) error {
	return t.backend.Sleep(ctx, d)
}
