package controller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/ghosthand/internal/planner"
)

func TestDragDerivesDuration(t *testing.T) {
	t.Parallel()

	mock := newMockBackend(t)
	c := NewTestController(mock, 21)
	start := planner.Point{X: 100, Y: 100}
	end := planner.Point{X: 700, Y: 500}

	require.NoError(t, c.Drag(context.Background(), start, end, 0))

	drags := mock.snapshotDrags()
	require.Len(t, drags, 1)
	assert.Equal(t, start, drags[0].Start)
	assert.Equal(t, end, drags[0].End)
	assert.GreaterOrEqual(t, drags[0].Duration, 200*time.Millisecond)
	assert.LessOrEqual(t, drags[0].Duration, 5*time.Second)

	stats := c.Statistics()
	assert.Equal(t, end, stats.Position)
	assert.Equal(t, 1, stats.DragCount)
	assert.False(t, stats.Dragging, "drag must release its flag on completion")
	assert.Equal(t, StateIdle, stats.State)
}

func TestDragExplicitDuration(t *testing.T) {
	t.Parallel()

	mock := newMockBackend(t)
	c := NewTestController(mock, 21)

	want := 750 * time.Millisecond
	require.NoError(t, c.Drag(context.Background(), planner.Point{X: 50, Y: 50}, planner.Point{X: 200, Y: 200}, want))

	drags := mock.snapshotDrags()
	require.Len(t, drags, 1)
	assert.Equal(t, want, drags[0].Duration)
}

func TestDragClampsEndpoints(t *testing.T) {
	t.Parallel()

	mock := newMockBackend(t)
	c := NewTestController(mock, 21)

	require.NoError(t, c.Drag(context.Background(), planner.Point{X: -40, Y: 10}, planner.Point{X: 5000, Y: 5000}, time.Second))

	drags := mock.snapshotDrags()
	require.Len(t, drags, 1)
	assert.Equal(t, planner.Point{X: 0, Y: 10}, drags[0].Start)
	assert.Equal(t, planner.Point{X: 1919, Y: 1079}, drags[0].End)
}

func TestDragBackendFailure(t *testing.T) {
	t.Parallel()

	mock := newMockBackend(t)
	mock.MockDragTo = func(ctx context.Context, start, end planner.Point, duration time.Duration) error {
		return errors.New("button stuck")
	}

	c := NewTestController(mock, 21)
	err := c.Drag(context.Background(), planner.Point{X: 100, Y: 100}, planner.Point{X: 300, Y: 300}, time.Second)

	var be *BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "drag", be.Op)

	stats := c.Statistics()
	assert.False(t, stats.Dragging)
	assert.Equal(t, StateIdle, stats.State)
	assert.Zero(t, stats.DragCount)
}
