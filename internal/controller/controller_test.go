package controller

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/ghosthand/internal/behavior"
	"github.com/xkilldash9x/ghosthand/internal/planner"
)

func TestNewAppliesDefaults(t *testing.T) {
	t.Parallel()

	gen := behavior.NewTestGenerator(behavior.DefaultProfile(), 1)
	pl := planner.NewTestPlanner(1920, 1080, 1)

	c := New(newMockBackend(t), gen, pl, Options{}, nil)
	assert.Equal(t, DefaultOptions(), c.opts)

	broken := Options{
		MovementSpeed: -2,
		SafeMargin:    -1,
		ClickDelayMin: 500 * time.Millisecond,
		ClickDelayMax: 100 * time.Millisecond, // inverted
		RetryAttempts: 0,
	}
	c = New(newMockBackend(t), gen, pl, broken, nil)
	assert.Equal(t, DefaultOptions(), c.opts)
}

func TestNewKeepsExplicitOptions(t *testing.T) {
	t.Parallel()

	gen := behavior.NewTestGenerator(behavior.DefaultProfile(), 1)
	pl := planner.NewTestPlanner(1920, 1080, 1)

	opts := Options{
		MovementSpeed:  2.0,
		SafeMargin:     12,
		MaxOffset:      3,
		ClickDelayMin:  10 * time.Millisecond,
		ClickDelayMax:  20 * time.Millisecond,
		TypingDelayMin: 5 * time.Millisecond,
		TypingDelayMax: 9 * time.Millisecond,
		RetryAttempts:  7,
	}
	c := New(newMockBackend(t), gen, pl, opts, nil)
	assert.Equal(t, opts, c.opts)
}

func TestStatisticsFresh(t *testing.T) {
	t.Parallel()

	c := NewTestController(newMockBackend(t), 5)
	stats := c.Statistics()

	_, err := uuid.Parse(stats.SessionID)
	require.NoError(t, err, "session id must be a UUID")

	assert.Equal(t, StateIdle, stats.State)
	assert.False(t, stats.Dragging)
	assert.Zero(t, stats.ClickCount)
	assert.Zero(t, stats.MoveCount)
	assert.Zero(t, stats.DragCount)
	assert.False(t, stats.SessionStart.IsZero())
}

func TestSessionIDsUnique(t *testing.T) {
	t.Parallel()

	a := NewTestController(newMockBackend(t), 1)
	b := NewTestController(newMockBackend(t), 1)
	assert.NotEqual(t, a.Statistics().SessionID, b.Statistics().SessionID)
}

func TestStepDelayBounds(t *testing.T) {
	t.Parallel()

	c := NewTestController(newMockBackend(t), 1)

	const n = 33
	for i := 0; i < n; i++ {
		d := c.stepDelay(i, n)
		assert.GreaterOrEqual(t, d, minStepDelay)
		assert.LessOrEqual(t, d, maxStepDelay)
	}

	// The ends of the path pace faster than the middle.
	assert.Less(t, c.stepDelay(0, n), c.stepDelay(n/2, n))

	// Extreme speeds pin to the clamp bounds.
	c.opts.MovementSpeed = 0.1
	assert.Equal(t, maxStepDelay, c.stepDelay(n/2, n))
	c.opts.MovementSpeed = 10
	assert.Equal(t, minStepDelay, c.stepDelay(0, n))
}

func TestUniformDuration(t *testing.T) {
	t.Parallel()

	c := NewTestController(newMockBackend(t), 1)
	for i := 0; i < 200; i++ {
		d := c.uniformDuration(50*time.Millisecond, 200*time.Millisecond)
		assert.GreaterOrEqual(t, d, 50*time.Millisecond)
		assert.Less(t, d, 200*time.Millisecond)
	}
	assert.Equal(t, time.Second, c.uniformDuration(time.Second, time.Second))
}
