// internal/backend/cdp/backend.go
package cdp

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/ghosthand/api/schemas"
	"github.com/xkilldash9x/ghosthand/internal/controller"
	"github.com/xkilldash9x/ghosthand/internal/planner"
)

const (
	// mouseTimeout and keyTimeout bound a single event dispatch.
	mouseTimeout = 10 * time.Second
	keyTimeout   = 10 * time.Second
	// shortcutTimeout bounds a structured keyDown/keyUp pair.
	shortcutTimeout = 5 * time.Second

	// wheelNotchPixels is the scroll distance of one wheel notch.
	wheelNotchPixels = 100.0

	// dragStepInterval paces the intermediate move events inside a drag.
	dragStepInterval = 16 * time.Millisecond
)

// CDP button bitmask values for the "buttons" field of mouse events.
const (
	buttonsNone   int64 = 0
	buttonsLeft   int64 = 1
	buttonsRight  int64 = 2
	buttonsMiddle int64 = 4
)

// Backend implements controller.Backend over the Chrome DevTools Protocol.
// It dispatches raw input events into an existing chromedp tab context and
// tracks the pointer position locally, since CDP offers no way to query it.
type Backend struct {
	mu     sync.Mutex
	logger *zap.Logger
	rng    *rand.Rand

	// runActions executes chromedp actions against the tab, honoring the
	// operational context. Swappable in tests.
	runActions func(ctx context.Context, actions ...chromedp.Action) error

	pos     planner.Point
	buttons int64
}

var _ controller.Backend = (*Backend)(nil)

// New creates a Backend bound to a chromedp tab context (one created by
// chromedp.NewContext or derived from it). The operational context passed to
// each call only bounds that call; the tab context owns the browser.
func New(chromeCtx context.Context, logger *zap.Logger) *Backend {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Backend{
		logger: logger.Named("cdp"),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	b.runActions = func(ctx context.Context, actions ...chromedp.Action) error {
		runCtx, cancel := context.WithCancel(chromeCtx)
		defer cancel()
		stop := context.AfterFunc(ctx, cancel)
		defer stop()

		if err := chromedp.Run(runCtx, actions...); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return err
		}
		return nil
	}
	return b
}

// run dispatches actions with a per-operation timeout.
func (b *Backend) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := b.runActions(opCtx, actions...)
	if err != nil && errors.Is(opCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		b.logger.Debug("input dispatch timed out", zap.Duration("timeout", timeout))
		return fmt.Errorf("input dispatch timed out after %v: %w", timeout, opCtx.Err())
	}
	return err
}

// MoveTo dispatches a single mouseMoved event.
func (b *Backend) MoveTo(ctx context.Context, p planner.Point) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.moveLocked(ctx, p)
}

func (b *Backend) moveLocked(ctx context.Context, p planner.Point) error {
	ev := input.DispatchMouseEvent(input.MouseMoved, float64(p.X), float64(p.Y)).
		WithButton(b.heldButtonLocked()).
		WithButtons(b.buttons)
	if err := b.run(ctx, mouseTimeout, ev); err != nil {
		return err
	}
	b.pos = p
	return nil
}

// Click presses and releases the given button at p, holding it down for a
// realistic beat in between.
func (b *Backend) Click(ctx context.Context, p planner.Point, button schemas.MouseButton) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if p != b.pos {
		if err := b.moveLocked(ctx, p); err != nil {
			return err
		}
	}

	cdpButton := input.MouseButton(string(button))
	bit := buttonBit(button)

	down := input.DispatchMouseEvent(input.MousePressed, float64(p.X), float64(p.Y)).
		WithButton(cdpButton).
		WithButtons(bit).
		WithClickCount(1)
	if err := b.run(ctx, mouseTimeout, down); err != nil {
		return err
	}
	b.buttons = bit

	hold := time.Duration(60+b.rng.NormFloat64()*20) * time.Millisecond
	if hold < 10*time.Millisecond {
		hold = 10 * time.Millisecond
	}
	if err := b.runActions(ctx, chromedp.Sleep(hold)); err != nil {
		b.releaseLocked(context.Background(), p, button)
		return err
	}

	up := input.DispatchMouseEvent(input.MouseReleased, float64(p.X), float64(p.Y)).
		WithButton(cdpButton).
		WithButtons(buttonsNone).
		WithClickCount(1)
	if err := b.run(ctx, mouseTimeout, up); err != nil {
		// Clear held state anyway so a failed release cannot wedge us.
		b.buttons = buttonsNone
		return err
	}
	b.buttons = buttonsNone
	return nil
}

// DragTo presses at start, walks the pointer to end over duration, and
// releases. On a mid-drag failure the button is released with a fresh
// context so it never stays stuck down.
func (b *Backend) DragTo(ctx context.Context, start, end planner.Point, duration time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if start != b.pos {
		if err := b.moveLocked(ctx, start); err != nil {
			return err
		}
	}

	down := input.DispatchMouseEvent(input.MousePressed, float64(start.X), float64(start.Y)).
		WithButton(input.MouseButton(string(schemas.MouseLeft))).
		WithButtons(buttonsLeft).
		WithClickCount(1)
	if err := b.run(ctx, mouseTimeout, down); err != nil {
		return err
	}
	b.buttons = buttonsLeft

	steps := int(duration / dragStepInterval)
	if steps < 4 {
		steps = 4
	}
	if steps > 60 {
		steps = 60
	}
	stepDelay := duration / time.Duration(steps)

	// The expressive curvature happens before the grab; inside it the hand
	// tracks fairly straight toward the drop point.
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		pt := planner.Point{
			X: start.X + int(float64(end.X-start.X)*t),
			Y: start.Y + int(float64(end.Y-start.Y)*t),
		}
		if err := b.moveLocked(ctx, pt); err != nil {
			b.releaseLocked(context.Background(), pt, schemas.MouseLeft)
			return err
		}
		if err := b.runActions(ctx, chromedp.Sleep(stepDelay)); err != nil {
			b.releaseLocked(context.Background(), pt, schemas.MouseLeft)
			return err
		}
	}

	return b.releaseLocked(ctx, end, schemas.MouseLeft)
}

// releaseLocked dispatches a mouseReleased for the held button. State is
// cleared even when the dispatch fails, so the backend never believes a
// button is held forever.
func (b *Backend) releaseLocked(ctx context.Context, at planner.Point, button schemas.MouseButton) error {
	if b.buttons == buttonsNone {
		return nil
	}

	up := input.DispatchMouseEvent(input.MouseReleased, float64(at.X), float64(at.Y)).
		WithButton(input.MouseButton(string(button))).
		WithButtons(buttonsNone).
		WithClickCount(1)
	err := b.run(ctx, mouseTimeout, up)
	if err != nil {
		b.logger.Error("mouse release dispatch failed, clearing held state anyway", zap.Error(err))
	}
	b.buttons = buttonsNone
	b.pos = at
	return err
}

// Scroll dispatches a mouseWheel event at the given point. Positive amounts
// scroll down or right; one unit is one wheel notch.
func (b *Backend) Scroll(ctx context.Context, at planner.Point, amount int, axis schemas.Axis) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	ev := input.DispatchMouseEvent(input.MouseWheel, float64(at.X), float64(at.Y)).
		WithButtons(b.buttons)
	if axis == schemas.AxisHorizontal {
		ev = ev.WithDeltaX(float64(amount) * wheelNotchPixels)
	} else {
		ev = ev.WithDeltaY(float64(amount) * wheelNotchPixels)
	}
	return b.run(ctx, mouseTimeout, ev)
}

// SendKeys types text into the focused element.
func (b *Backend) SendKeys(ctx context.Context, keys string) error {
	return b.run(ctx, keyTimeout, chromedp.KeyEvent(keys))
}

// PressKey dispatches a structured keyDown/keyUp pair with modifiers.
func (b *Backend) PressKey(ctx context.Context, key schemas.KeyEventData) error {
	mods := cdpModifiers(key.Modifiers)

	keyDown := input.DispatchKeyEvent(input.KeyDown).
		WithModifiers(mods).
		WithKey(key.Key)
	keyUp := input.DispatchKeyEvent(input.KeyUp).
		WithModifiers(mods).
		WithKey(key.Key)

	if err := b.run(ctx, shortcutTimeout, keyDown, keyUp); err != nil {
		return fmt.Errorf("dispatching key %q: %w", key.Key, err)
	}
	return nil
}

// CurrentPosition returns the locally tracked pointer position.
func (b *Backend) CurrentPosition(ctx context.Context) (planner.Point, error) {
	if err := ctx.Err(); err != nil {
		return planner.Point{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pos, nil
}

// Sleep pauses inside the tab's action stream, respecting the context.
func (b *Backend) Sleep(ctx context.Context, d time.Duration) error {
	return b.runActions(ctx, chromedp.Sleep(d))
}

// heldButtonLocked names the button for move events while something is held.
func (b *Backend) heldButtonLocked() input.MouseButton {
	switch b.buttons {
	case buttonsLeft:
		return input.MouseButton(string(schemas.MouseLeft))
	case buttonsRight:
		return input.MouseButton(string(schemas.MouseRight))
	case buttonsMiddle:
		return input.MouseButton(string(schemas.MouseMiddle))
	}
	return "none"
}

func buttonBit(button schemas.MouseButton) int64 {
	switch button {
	case schemas.MouseRight:
		return buttonsRight
	case schemas.MouseMiddle:
		return buttonsMiddle
	}
	return buttonsLeft
}

// cdpModifiers converts the schema modifier bitmask to CDP's.
func cdpModifiers(mods schemas.KeyModifier) input.Modifier {
	var out input.Modifier
	if mods&schemas.ModAlt != 0 {
		out |= input.ModifierAlt
	}
	if mods&schemas.ModCtrl != 0 {
		out |= input.ModifierCtrl
	}
	if mods&schemas.ModMeta != 0 {
		out |= input.ModifierMeta
	}
	if mods&schemas.ModShift != 0 {
		out |= input.ModifierShift
	}
	return out
}
