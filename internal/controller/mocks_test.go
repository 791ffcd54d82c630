package controller

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/xkilldash9x/ghosthand/api/schemas"
	"github.com/xkilldash9x/ghosthand/internal/planner"
)

type clickCall struct {
	Point  planner.Point
	Button schemas.MouseButton
}

type dragCall struct {
	Start, End planner.Point
	Duration   time.Duration
}

type scrollCall struct {
	At     planner.Point
	Amount int
	Axis   schemas.Axis
}

// mockBackend implements Backend for tests. Overrides replace the default
// recording behavior per method; an override can call the corresponding
// Default* method when it still wants the recording.
//
// Mocks must not touch the Controller or its mutex: every public controller
// method holds it while the backend runs.
type mockBackend struct {
	t  *testing.T
	mu sync.Mutex

	moves       []planner.Point
	clicks      []clickCall
	drags       []dragCall
	scrolls     []scrollCall
	sentKeys    []string
	pressedKeys []schemas.KeyEventData
	sleeps      []time.Duration

	position  planner.Point
	positions []planner.Point // queue for CurrentPosition; last entry repeats

	MockMoveTo          func(ctx context.Context, p planner.Point) error
	MockClick           func(ctx context.Context, p planner.Point, button schemas.MouseButton) error
	MockDragTo          func(ctx context.Context, start, end planner.Point, duration time.Duration) error
	MockScroll          func(ctx context.Context, at planner.Point, amount int, axis schemas.Axis) error
	MockSendKeys        func(ctx context.Context, keys string) error
	MockPressKey        func(ctx context.Context, key schemas.KeyEventData) error
	MockCurrentPosition func(ctx context.Context) (planner.Point, error)
	MockSleep           func(ctx context.Context, d time.Duration) error
}

func newMockBackend(t *testing.T) *mockBackend {
	return &mockBackend{t: t}
}

func (m *mockBackend) MoveTo(ctx context.Context, p planner.Point) error {
	if m.MockMoveTo != nil {
		return m.MockMoveTo(ctx, p)
	}
	return m.DefaultMoveTo(ctx, p)
}

func (m *mockBackend) DefaultMoveTo(ctx context.Context, p planner.Point) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.moves = append(m.moves, p)
	m.position = p
	return nil
}

func (m *mockBackend) Click(ctx context.Context, p planner.Point, button schemas.MouseButton) error {
	if m.MockClick != nil {
		return m.MockClick(ctx, p, button)
	}
	return m.DefaultClick(ctx, p, button)
}

func (m *mockBackend) DefaultClick(ctx context.Context, p planner.Point, button schemas.MouseButton) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clicks = append(m.clicks, clickCall{Point: p, Button: button})
	return nil
}

func (m *mockBackend) DragTo(ctx context.Context, start, end planner.Point, duration time.Duration) error {
	if m.MockDragTo != nil {
		return m.MockDragTo(ctx, start, end, duration)
	}
	return m.DefaultDragTo(ctx, start, end, duration)
}

func (m *mockBackend) DefaultDragTo(ctx context.Context, start, end planner.Point, duration time.Duration) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drags = append(m.drags, dragCall{Start: start, End: end, Duration: duration})
	m.position = end
	return nil
}

func (m *mockBackend) Scroll(ctx context.Context, at planner.Point, amount int, axis schemas.Axis) error {
	if m.MockScroll != nil {
		return m.MockScroll(ctx, at, amount, axis)
	}
	return m.DefaultScroll(ctx, at, amount, axis)
}

func (m *mockBackend) DefaultScroll(ctx context.Context, at planner.Point, amount int, axis schemas.Axis) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scrolls = append(m.scrolls, scrollCall{At: at, Amount: amount, Axis: axis})
	return nil
}

func (m *mockBackend) SendKeys(ctx context.Context, keys string) error {
	if m.MockSendKeys != nil {
		return m.MockSendKeys(ctx, keys)
	}
	return m.DefaultSendKeys(ctx, keys)
}

func (m *mockBackend) DefaultSendKeys(ctx context.Context, keys string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sentKeys = append(m.sentKeys, keys)
	return nil
}

func (m *mockBackend) PressKey(ctx context.Context, key schemas.KeyEventData) error {
	if m.MockPressKey != nil {
		return m.MockPressKey(ctx, key)
	}
	return m.DefaultPressKey(ctx, key)
}

func (m *mockBackend) DefaultPressKey(ctx context.Context, key schemas.KeyEventData) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pressedKeys = append(m.pressedKeys, key)
	return nil
}

func (m *mockBackend) CurrentPosition(ctx context.Context) (planner.Point, error) {
	if m.MockCurrentPosition != nil {
		return m.MockCurrentPosition(ctx)
	}
	return m.DefaultCurrentPosition(ctx)
}

func (m *mockBackend) DefaultCurrentPosition(ctx context.Context) (planner.Point, error) {
	if ctx.Err() != nil {
		return planner.Point{}, ctx.Err()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.positions) > 0 {
		p := m.positions[0]
		if len(m.positions) > 1 {
			m.positions = m.positions[1:]
		}
		m.position = p
		return p, nil
	}
	return m.position, nil
}

func (m *mockBackend) Sleep(ctx context.Context, d time.Duration) error {
	if m.MockSleep != nil {
		return m.MockSleep(ctx, d)
	}
	return m.DefaultSleep(ctx, d)
}

func (m *mockBackend) DefaultSleep(ctx context.Context, d time.Duration) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sleeps = append(m.sleeps, d)
	return nil
}

// Snapshot helpers keep assertions race-safe.

func (m *mockBackend) snapshotMoves() []planner.Point {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]planner.Point, len(m.moves))
	copy(out, m.moves)
	return out
}

func (m *mockBackend) snapshotClicks() []clickCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]clickCall, len(m.clicks))
	copy(out, m.clicks)
	return out
}

func (m *mockBackend) snapshotDrags() []dragCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]dragCall, len(m.drags))
	copy(out, m.drags)
	return out
}

func (m *mockBackend) snapshotScrolls() []scrollCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]scrollCall, len(m.scrolls))
	copy(out, m.scrolls)
	return out
}

func (m *mockBackend) snapshotSleeps() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]time.Duration, len(m.sleeps))
	copy(out, m.sleeps)
	return out
}

func (m *mockBackend) snapshotKeys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.sentKeys))
	copy(out, m.sentKeys)
	return out
}

func (m *mockBackend) snapshotPressed() []schemas.KeyEventData {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]schemas.KeyEventData, len(m.pressedKeys))
	copy(out, m.pressedKeys)
	return out
}
