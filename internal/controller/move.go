package controller

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/ghosthand/internal/planner"
)

const (
	// minStepDelay and maxStepDelay bound the per-point pause while walking
	// a trajectory.
	minStepDelay = 5 * time.Millisecond
	maxStepDelay = 50 * time.Millisecond

	// idleThreshold is the movement, in pixels, below which the pointer
	// counts as settled.
	idleThreshold = 2.0

	idlePollInterval  = 100 * time.Millisecond
	hoverTickInterval = 100 * time.Millisecond
)

// MoveTo moves the pointer to p with a natural curved approach. Points off
// the plane are clamped and logged. If the curved approach fails for a
// non-fatal reason the controller falls back to one direct move.
func (c *Controller) MoveTo(ctx context.Context, p planner.Point) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.moveToLocked(ctx, p)
}

func (c *Controller) moveToLocked(ctx context.Context, p planner.Point) error {
	if !c.planner.Validate(p, 0) {
		clamped := c.planner.Clamp(p, 0)
		c.logger.Warn("move target off plane, clamping",
			zap.Int("x", p.X), zap.Int("y", p.Y),
			zap.Int("clamped_x", clamped.X), zap.Int("clamped_y", clamped.Y))
		p = clamped
	}

	c.setState(StateApproaching)
	defer c.setState(StateIdle)

	return c.approachLocked(ctx, p)
}

// approachLocked walks a curved trajectory to target, falling back to a
// direct move when the walk fails. Only a failed direct move (or a dead
// context) fails the operation.
func (c *Controller) approachLocked(ctx context.Context, target planner.Point) error {
	if err := c.walkTrajectoryLocked(ctx, target); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Warn("natural approach failed, moving directly", zap.Error(err))
		if err := c.backend.MoveTo(ctx, target); err != nil {
			return backendErr("move", err)
		}
	}

	c.pos = target
	c.moveCount++
	c.lastMoveTime = time.Now()
	c.behavior.RecordAction()
	return nil
}

// walkTrajectoryLocked dispatches every point of a fresh natural trajectory,
// pacing the steps on a parabolic profile across the walk.
func (c *Controller) walkTrajectoryLocked(ctx context.Context, target planner.Point) error {
	path := c.planner.NaturalTrajectory(c.pos, target, true)

	for i, pt := range path {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := c.backend.MoveTo(ctx, pt); err != nil {
			return backendErr("move", err)
		}
		c.pos = pt

		if err := c.backend.Sleep(ctx, c.stepDelay(i, len(path))); err != nil {
			return err
		}
	}
	return nil
}

// stepDelay derives the pause after trajectory step i of n.
func (c *Controller) stepDelay(i, n int) time.Duration {
	progress := 0.0
	if n > 1 {
		progress = float64(i) / float64(n-1)
	}
	speedMult := 1 - math.Abs(0.5-progress)
	delay := 0.01 / c.opts.MovementSpeed * (1 + speedMult)

	d := time.Duration(delay * float64(time.Second))
	if d < minStepDelay {
		return minStepDelay
	}
	if d > maxStepDelay {
		return maxStepDelay
	}
	return d
}

// MoveAway parks the pointer at least minDistance pixels from the center of
// avoid. It samples up to ten random plane points and settles for the
// bottom-right corner when none qualifies.
func (c *Controller) MoveAway(ctx context.Context, avoid planner.Region, minDistance float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	target := c.planner.CornerPoint(100)
	for i := 0; i < 10; i++ {
		candidate := c.planner.RandomPoint()
		if avoid.DistanceTo(candidate) >= minDistance {
			target = candidate
			break
		}
	}

	c.setState(StateApproaching)
	defer c.setState(StateIdle)
	return c.approachLocked(ctx, target)
}

// Hover keeps the pointer inside region for roughly duration, with small
// noise-driven micro-movements so it never sits perfectly still.
func (c *Controller) Hover(ctx context.Context, region planner.Region, duration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	target := c.planner.RandomPointIn(region)
	c.setState(StateApproaching)
	if err := c.approachLocked(ctx, target); err != nil {
		c.setState(StateIdle)
		return err
	}

	c.setState(StateExecuting)
	defer c.setState(StateIdle)

	deadline := time.Now().Add(duration)
	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := c.backend.Sleep(ctx, hoverTickInterval); err != nil {
			return err
		}

		if c.rng.Float64() < 0.3 {
			if err := c.microDriftLocked(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

// microDriftLocked nudges the pointer by up to two pixels along a smooth
// noise curve, holding it near its current spot.
func (c *Controller) microDriftLocked(ctx context.Context) error {
	c.noiseTime += 0.1
	dx := int(math.Round(c.noiseX.Noise1D(c.noiseTime) * 2))
	dy := int(math.Round(c.noiseY.Noise1D(c.noiseTime) * 2))
	if dx == 0 && dy == 0 {
		return nil
	}

	next := c.planner.Clamp(c.pos.Add(dx, dy), 0)
	if err := c.backend.MoveTo(ctx, next); err != nil {
		return backendErr("move", err)
	}
	c.pos = next
	return nil
}

// WaitForIdle polls the backend position until it settles (moves less than
// two pixels between polls) or timeout passes. The deadline is advisory:
// running out of time is not an error.
func (c *Controller) WaitForIdle(ctx context.Context, timeout time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev, err := c.backend.CurrentPosition(ctx)
	if err != nil {
		return backendErr("position", err)
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := c.backend.Sleep(ctx, idlePollInterval); err != nil {
			return err
		}

		cur, err := c.backend.CurrentPosition(ctx)
		if err != nil {
			return backendErr("position", err)
		}
		if prev.DistanceTo(cur) < idleThreshold {
			c.pos = cur
			return nil
		}
		prev = cur
	}

	c.logger.Debug("pointer never settled within timeout",
		zap.Duration("timeout", timeout))
	c.pos = prev
	return nil
}

// EmergencyStop aborts whatever gesture state remains and parks the pointer
// in the top-left safe spot. Cancel the in-flight operation's context first;
// EmergencyStop waits for it to release the controller.
func (c *Controller) EmergencyStop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.logger.Warn("emergency stop")
	c.dragging = false
	c.setState(StateIdle)

	safe := planner.Point{X: 10, Y: 10}
	if err := c.backend.MoveTo(ctx, safe); err != nil {
		return backendErr("move", err)
	}
	c.pos = safe
	return nil
}
