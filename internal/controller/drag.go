package controller

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/ghosthand/internal/planner"
)

// Drag grabs at start and releases at end. A zero duration lets the behavior
// generator derive one from the drag distance. The dragging flag is visible
// in Statistics for the whole gesture and always clears, even on failure.
func (c *Controller) Drag(ctx context.Context, start, end planner.Point, duration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	start = c.planner.Clamp(start, 0)
	end = c.planner.Clamp(end, 0)

	c.setState(StateApproaching)
	defer c.setState(StateIdle)
	if err := c.approachLocked(ctx, start); err != nil {
		return err
	}

	c.setState(StateExecuting)
	c.dragging = true
	defer func() { c.dragging = false }()

	if duration <= 0 {
		duration = c.behavior.DragDuration(start.DistanceTo(end))
	}

	c.logger.Debug("dragging",
		zap.Int("from_x", start.X), zap.Int("from_y", start.Y),
		zap.Int("to_x", end.X), zap.Int("to_y", end.Y),
		zap.Duration("duration", duration))

	if err := c.backend.DragTo(ctx, start, end, duration); err != nil {
		return backendErr("drag", err)
	}

	c.pos = end
	c.dragCount++
	c.lastMoveTime = time.Now()
	c.behavior.RecordAction()
	return nil
}
