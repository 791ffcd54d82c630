// Package logsink provides a backend that narrates input events instead of
// performing them. It backs dry runs: the full gesture stream, pacing
// included, is written to the log while nothing touches a browser.
package logsink

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/ghosthand/api/schemas"
	"github.com/xkilldash9x/ghosthand/internal/controller"
	"github.com/xkilldash9x/ghosthand/internal/planner"
)

// Stats summarizes a rehearsed run.
type Stats struct {
	// Events counts dispatched input primitives, pauses excluded.
	Events int
	// Simulated is the wall time the run would have spent pausing.
	Simulated time.Duration
}

// Backend logs every primitive and tracks the pointer locally. Sleeps are
// recorded but not slept, so a rehearsal finishes immediately.
type Backend struct {
	logger *zap.Logger

	mu    sync.Mutex
	pos   planner.Point
	stats Stats
}

var _ controller.Backend = (*Backend)(nil)

func New(logger *zap.Logger) *Backend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backend{logger: logger.Named("logsink")}
}

// Stats returns a snapshot of what the run dispatched so far.
func (b *Backend) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

func (b *Backend) event(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	b.stats.Events++
	b.mu.Unlock()
	return nil
}

func (b *Backend) MoveTo(ctx context.Context, p planner.Point) error {
	if err := b.event(ctx); err != nil {
		return err
	}
	b.logger.Info("move",
		zap.Int("x", p.X),
		zap.Int("y", p.Y),
	)
	b.mu.Lock()
	b.pos = p
	b.mu.Unlock()
	return nil
}

func (b *Backend) Click(ctx context.Context, p planner.Point, button schemas.MouseButton) error {
	if err := b.event(ctx); err != nil {
		return err
	}
	b.logger.Info("click",
		zap.Int("x", p.X),
		zap.Int("y", p.Y),
		zap.String("button", string(button)),
	)
	b.mu.Lock()
	b.pos = p
	b.mu.Unlock()
	return nil
}

func (b *Backend) DragTo(ctx context.Context, start, end planner.Point, duration time.Duration) error {
	if err := b.event(ctx); err != nil {
		return err
	}
	b.logger.Info("drag",
		zap.Int("from_x", start.X),
		zap.Int("from_y", start.Y),
		zap.Int("to_x", end.X),
		zap.Int("to_y", end.Y),
		zap.Duration("duration", duration),
	)
	b.mu.Lock()
	b.pos = end
	b.stats.Simulated += duration
	b.mu.Unlock()
	return nil
}

func (b *Backend) Scroll(ctx context.Context, at planner.Point, amount int, axis schemas.Axis) error {
	if err := b.event(ctx); err != nil {
		return err
	}
	b.logger.Info("scroll",
		zap.Int("x", at.X),
		zap.Int("y", at.Y),
		zap.Int("amount", amount),
		zap.String("axis", string(axis)),
	)
	return nil
}

func (b *Backend) SendKeys(ctx context.Context, keys string) error {
	if err := b.event(ctx); err != nil {
		return err
	}
	b.logger.Info("send keys", zap.String("keys", keys))
	return nil
}

func (b *Backend) PressKey(ctx context.Context, key schemas.KeyEventData) error {
	if err := b.event(ctx); err != nil {
		return err
	}
	b.logger.Info("press key",
		zap.String("key", key.Key),
		zap.Int("modifiers", int(key.Modifiers)),
	)
	return nil
}

func (b *Backend) CurrentPosition(ctx context.Context) (planner.Point, error) {
	if err := ctx.Err(); err != nil {
		return planner.Point{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pos, nil
}

// Sleep accounts for the pause without waiting it out.
func (b *Backend) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.logger.Debug("pause", zap.Duration("duration", d))
	b.mu.Lock()
	b.stats.Simulated += d
	b.mu.Unlock()
	return nil
}
