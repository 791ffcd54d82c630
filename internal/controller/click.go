package controller

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/ghosthand/api/schemas"
	"github.com/xkilldash9x/ghosthand/internal/behavior"
	"github.com/xkilldash9x/ghosthand/internal/planner"
)

// ClickIn clicks a random point inside region with the given button. The
// region is inset by safeMargin (falling back to the full region when it is
// too small), then the controller walks the full interaction: approach,
// pre-click hesitation and jitter, the click itself, and a post-click settle
// with an occasional double-check glance.
func (c *Controller) ClickIn(ctx context.Context, region planner.Region, button schemas.MouseButton, safeMargin int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clickInLocked(ctx, region, button, safeMargin, 1)
}

// DoubleClick performs two rapid clicks on the same point inside region.
func (c *Controller) DoubleClick(ctx context.Context, region planner.Region, button schemas.MouseButton, safeMargin int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clickInLocked(ctx, region, button, safeMargin, 2)
}

// RightClick clicks a random point inside region with the secondary button.
func (c *Controller) RightClick(ctx context.Context, region planner.Region, safeMargin int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clickInLocked(ctx, region, schemas.MouseRight, safeMargin, 1)
}

func (c *Controller) clickInLocked(ctx context.Context, region planner.Region, button schemas.MouseButton, safeMargin int, clicks int) error {
	if safeMargin < 0 {
		safeMargin = c.opts.SafeMargin
	}
	safe := c.planner.SafeClickArea(region, safeMargin)
	target := c.planner.RandomPointIn(safe)

	// Approach.
	c.setState(StateApproaching)
	defer c.setState(StateIdle)
	if err := c.approachLocked(ctx, target); err != nil {
		return err
	}

	// Pre-click: hesitate, maybe micro-adjust, then the natural click delay.
	c.setState(StatePreClick)
	if c.behavior.ShouldHesitate(behavior.ComplexityNormal) {
		if err := c.backend.Sleep(ctx, c.behavior.NaturalPause(behavior.PauseHesitation)); err != nil {
			return err
		}
	}
	if c.rng.Float64() < 0.3 {
		adjusted := c.planner.Jitter(c.pos, 2, planner.JitterGaussian)
		if adjusted != c.pos {
			if err := c.backend.MoveTo(ctx, adjusted); err != nil {
				return backendErr("move", err)
			}
			c.pos = adjusted
		}
	}
	if err := c.backend.Sleep(ctx, c.behavior.ClickDelay(c.opts.ClickDelayMin, c.opts.ClickDelayMax)); err != nil {
		return err
	}

	// Execute.
	c.setState(StateExecuting)
	for i := 0; i < clicks; i++ {
		if i > 0 {
			if err := c.backend.Sleep(ctx, c.uniformDuration(50*time.Millisecond, 150*time.Millisecond)); err != nil {
				return err
			}
		}
		if err := c.backend.Click(ctx, c.pos, button); err != nil {
			c.logger.Error("click failed",
				zap.Int("x", c.pos.X), zap.Int("y", c.pos.Y),
				zap.String("button", string(button)), zap.Error(err))
			return backendErr("click", err)
		}
		c.clickCount++
		c.lastClickTime = time.Now()
		c.behavior.RecordAction()
	}

	// Post-click settle.
	c.setState(StatePostClick)
	if err := c.backend.Sleep(ctx, c.uniformDuration(50*time.Millisecond, 200*time.Millisecond)); err != nil {
		return err
	}
	if c.behavior.ShouldDoubleCheck() {
		if err := c.doubleCheckLocked(ctx); err != nil {
			return err
		}
	}

	return nil
}

// doubleCheckLocked glances the pointer about twenty pixels away and back,
// the way people verify a click landed.
func (c *Controller) doubleCheckLocked(ctx context.Context) error {
	origin := c.pos
	away := c.planner.Clamp(c.pos.Add(c.checkOffset(), c.checkOffset()), 0)

	if err := c.backend.MoveTo(ctx, away); err != nil {
		return backendErr("move", err)
	}
	c.pos = away
	if err := c.backend.Sleep(ctx, 100*time.Millisecond); err != nil {
		return err
	}
	if err := c.backend.MoveTo(ctx, origin); err != nil {
		return backendErr("move", err)
	}
	c.pos = origin
	return nil
}

// checkOffset draws one axis of the double-check glance: around twenty
// pixels, either direction.
func (c *Controller) checkOffset() int {
	off := 15 + c.rng.Intn(11)
	if c.rng.Intn(2) == 0 {
		return -off
	}
	return off
}

// ClickWithRetry runs ClickIn up to maxRetries times, waiting progressively
// longer between attempts. Pass maxRetries <= 0 for the configured default.
func (c *Controller) ClickWithRetry(ctx context.Context, region planner.Region, button schemas.MouseButton, safeMargin, maxRetries int) error {
	if maxRetries <= 0 {
		maxRetries = c.opts.RetryAttempts
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		lastErr = c.ClickIn(ctx, region, button, safeMargin)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return lastErr
		}

		c.logger.Warn("click attempt failed",
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", maxRetries),
			zap.Error(lastErr))

		if attempt < maxRetries-1 {
			delay := time.Duration((1.0 + 0.5*float64(attempt)) * float64(time.Second))
			if err := c.backend.Sleep(ctx, delay); err != nil {
				return err
			}
		}
	}
	return fmt.Errorf("click failed after %d attempts: %w", maxRetries, lastErr)
}
