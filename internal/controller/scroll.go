package controller

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/ghosthand/api/schemas"
	"github.com/xkilldash9x/ghosthand/internal/planner"
)

// scrollPositionTolerance is how close, in pixels, the pointer must already
// be to the scroll point before the positioning move is skipped.
const scrollPositionTolerance = 5.0

// ScrollVertical scrolls by roughly amount notches at the given point, or at
// the current pointer position when at is nil. The magnitude varies with the
// persona; the direction never does.
func (c *Controller) ScrollVertical(ctx context.Context, amount int, at *planner.Point) error {
	return c.scroll(ctx, amount, schemas.AxisVertical, at)
}

// ScrollHorizontal is ScrollVertical along the horizontal axis.
func (c *Controller) ScrollHorizontal(ctx context.Context, amount int, at *planner.Point) error {
	return c.scroll(ctx, amount, schemas.AxisHorizontal, at)
}

func (c *Controller) scroll(ctx context.Context, amount int, axis schemas.Axis, at *planner.Point) error {
	if amount == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	target := c.pos
	if at != nil {
		target = c.planner.Clamp(*at, 0)
	}

	if c.pos.DistanceTo(target) >= scrollPositionTolerance {
		c.setState(StateApproaching)
		if err := c.approachLocked(ctx, target); err != nil {
			c.setState(StateIdle)
			return err
		}
	}

	c.setState(StateExecuting)
	defer c.setState(StateIdle)

	varied := c.variedScrollLocked(amount)
	if err := c.backend.Scroll(ctx, target, varied, axis); err != nil {
		return backendErr("scroll", err)
	}

	c.behavior.RecordAction()
	return nil
}

// variedScrollLocked varies the scroll magnitude through the persona while
// preserving the requested direction.
func (c *Controller) variedScrollLocked(amount int) int {
	magnitude := amount
	if magnitude < 0 {
		magnitude = -magnitude
	}
	varied := c.behavior.ScrollAmount(magnitude)
	if amount < 0 {
		return -varied
	}
	return varied
}

// NaturalScroll covers total notches in small bursts with reading pauses in
// between, the way people actually work through a page.
func (c *Controller) NaturalScroll(ctx context.Context, total int, axis schemas.Axis) error {
	if total == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.setState(StateExecuting)
	defer c.setState(StateIdle)

	remaining := total
	direction := 1
	if total < 0 {
		remaining = -total
		direction = -1
	}

	c.logger.Debug("natural scroll",
		zap.Int("total", total), zap.String("axis", string(axis)))

	for remaining > 0 {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		chunk := 1 + c.rng.Intn(5)
		if chunk > remaining {
			chunk = remaining
		}

		if err := c.backend.Scroll(ctx, c.pos, direction*chunk, axis); err != nil {
			return backendErr("scroll", err)
		}
		remaining -= chunk

		if remaining > 0 {
			pause := c.uniformDuration(100*time.Millisecond, 300*time.Millisecond)
			if err := c.backend.Sleep(ctx, pause); err != nil {
				return err
			}
		}
	}

	c.behavior.RecordAction()
	return nil
}
