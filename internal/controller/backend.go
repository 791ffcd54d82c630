package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/xkilldash9x/ghosthand/api/schemas"
	"github.com/xkilldash9x/ghosthand/internal/planner"
)

// Backend is the low-level input surface the controller drives. Implementations
// translate plane coordinates into real pointer and keyboard events; the
// controller owns all pacing and delivers it through Sleep so a backend (or a
// test double) observes every pause.
//
// Backends must be safe for sequential use from a single interaction stream.
// A failed call leaves the cursor position undefined; the controller re-syncs
// through CurrentPosition where it matters.
type Backend interface {
	// MoveTo places the pointer at p.
	MoveTo(ctx context.Context, p planner.Point) error
	// Click presses and releases button at p.
	Click(ctx context.Context, p planner.Point, button schemas.MouseButton) error
	// DragTo performs a press-move-release gesture from start to end over the
	// given duration.
	DragTo(ctx context.Context, start, end planner.Point, duration time.Duration) error
	// Scroll dispatches a scroll of amount notches along axis at p. Positive
	// amounts scroll down or right.
	Scroll(ctx context.Context, at planner.Point, amount int, axis schemas.Axis) error
	// SendKeys types the given text verbatim.
	SendKeys(ctx context.Context, keys string) error
	// PressKey dispatches a single structured key press, modifiers included.
	PressKey(ctx context.Context, key schemas.KeyEventData) error
	// CurrentPosition reports where the backend believes the pointer is.
	CurrentPosition(ctx context.Context) (planner.Point, error)
	// Sleep pauses for d, honoring context cancellation.
	Sleep(ctx context.Context, d time.Duration) error
}

// BackendError wraps a failure from a Backend call with the operation that
// produced it.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend %s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// backendErr wraps err unless it is nil or already a BackendError.
func backendErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*BackendError); ok {
		return err
	}
	return &BackendError{Op: op, Err: err}
}
