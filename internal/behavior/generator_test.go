package behavior

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock drives a Generator through session time without sleeping.
type fakeClock struct {
	current time.Time
}

func (c *fakeClock) Now() time.Time { return c.current }

func (c *fakeClock) Advance(d time.Duration) { c.current = c.current.Add(d) }

func newClockedGenerator(profile Profile, seed int64) (*Generator, *fakeClock) {
	clock := &fakeClock{current: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	g := NewTestGenerator(profile, seed)
	g.now = clock.Now
	g.sessionStart = clock.current
	g.lastActionTime = clock.current
	return g, clock
}

func TestFatigueGrowsWithSession(t *testing.T) {
	g, clock := newClockedGenerator(DefaultProfile(), 1)

	start := g.Fatigue()
	assert.Zero(t, start, "fresh session fatigue equals the profile factor")

	var prev float64 = start
	for i := 0; i < 8; i++ {
		clock.Advance(30 * time.Minute)
		f := g.Fatigue()
		assert.GreaterOrEqual(t, f, prev, "fatigue never drops during a session")
		prev = f
	}

	// The session component saturates at 0.3 regardless of how long we run.
	clock.Advance(100 * time.Hour)
	assert.InDelta(t, 0.3, g.Fatigue(), 1e-9)
}

func TestFatigueCapsAtOne(t *testing.T) {
	p := DefaultProfile()
	p.FatigueFactor = 0.9
	g, clock := newClockedGenerator(p, 1)

	clock.Advance(10 * time.Hour)
	assert.InDelta(t, 1.0, g.Fatigue(), 1e-9)
}

func TestAttentionDecaysButHasFloor(t *testing.T) {
	g, clock := newClockedGenerator(DefaultProfile(), 1)

	fresh := g.Attention()
	assert.InDelta(t, 0.8, fresh, 1e-9)

	clock.Advance(90 * time.Minute)
	assert.Less(t, g.Attention(), fresh, "attention erodes as fatigue builds")

	worn := DefaultProfile()
	worn.AttentionSpan = 0.1
	worn.FatigueFactor = 1.0
	g2, _ := newClockedGenerator(worn, 1)
	assert.InDelta(t, 0.1, g2.Attention(), 1e-9, "attention never falls below the floor")
}

func TestActionBookkeeping(t *testing.T) {
	g, clock := newClockedGenerator(DefaultProfile(), 1)

	assert.Zero(t, g.ActionsPerMinute(), "no rate before any time has passed")

	clock.Advance(2 * time.Minute)
	for i := 0; i < 10; i++ {
		g.RecordAction()
	}

	assert.InDelta(t, 5.0, g.ActionsPerMinute(), 1e-9)
	assert.Equal(t, 2*time.Minute, g.SessionDuration())
}

func TestProfileReturnsCopy(t *testing.T) {
	g := NewTestGenerator(TiredProfile(), 7)

	p := g.Profile()
	p.FatigueFactor = 0.99

	assert.InDelta(t, 0.3, g.Profile().FatigueFactor, 1e-9)
}

func TestNewGeneratorNilLogger(t *testing.T) {
	g := NewGenerator(DefaultProfile(), nil)
	require.NotNil(t, g)
	assert.NotPanics(t, func() { g.ClickDelay(100*time.Millisecond, 500*time.Millisecond) })
}
