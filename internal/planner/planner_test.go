package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	pl := NewTestPlanner(1920, 1080, 1)

	assert.True(t, pl.Validate(Point{X: 0, Y: 0}, 0))
	assert.True(t, pl.Validate(Point{X: 1919, Y: 1079}, 0))
	assert.False(t, pl.Validate(Point{X: 1920, Y: 0}, 0))
	assert.False(t, pl.Validate(Point{X: -1, Y: 500}, 0))

	assert.True(t, pl.Validate(Point{X: 10, Y: 10}, 10))
	assert.False(t, pl.Validate(Point{X: 9, Y: 10}, 10))
	assert.False(t, pl.Validate(Point{X: 1910, Y: 500}, 10))
}

func TestClamp(t *testing.T) {
	t.Parallel()

	pl := NewTestPlanner(1920, 1080, 1)

	assert.Equal(t, Point{X: 0, Y: 0}, pl.Clamp(Point{X: -50, Y: -50}, 0))
	assert.Equal(t, Point{X: 1919, Y: 1079}, pl.Clamp(Point{X: 5000, Y: 5000}, 0))
	assert.Equal(t, Point{X: 500, Y: 300}, pl.Clamp(Point{X: 500, Y: 300}, 0))

	assert.Equal(t, Point{X: 20, Y: 20}, pl.Clamp(Point{X: 3, Y: 3}, 20))
}

func TestClampOversizedMarginCollapses(t *testing.T) {
	t.Parallel()

	pl := NewTestPlanner(100, 100, 1)
	assert.Equal(t, Point{X: 99, Y: 99}, pl.Clamp(Point{X: 150, Y: 150}, 60))
}

func TestRandomPointInStaysInside(t *testing.T) {
	t.Parallel()

	pl := NewTestPlanner(1920, 1080, 7)
	region := NewRegion(100, 100, 200, 150)

	seen := map[Point]bool{}
	for i := 0; i < 500; i++ {
		p := pl.RandomPointIn(region)
		assert.True(t, region.Contains(p), "point %v escaped region", p)
		seen[p] = true
	}
	assert.Greater(t, len(seen), 1, "draws must spread over the region")
}

func TestRandomPointInDegenerateRegion(t *testing.T) {
	t.Parallel()

	pl := NewTestPlanner(1920, 1080, 7)
	region := NewRegion(50, 50, 50, 50)

	for i := 0; i < 20; i++ {
		assert.Equal(t, Point{X: 50, Y: 50}, pl.RandomPointIn(region))
	}
}

func TestRandomPointCoversPlane(t *testing.T) {
	t.Parallel()

	pl := NewTestPlanner(640, 480, 11)
	for i := 0; i < 200; i++ {
		assert.True(t, pl.Validate(pl.RandomPoint(), 0))
	}
}

func TestJitterBounds(t *testing.T) {
	t.Parallel()

	pl := NewTestPlanner(1920, 1080, 13)
	origin := Point{X: 500, Y: 500}

	for _, dist := range []JitterDistribution{JitterUniform, JitterGaussian} {
		for i := 0; i < 300; i++ {
			p := pl.Jitter(origin, 5, dist)
			assert.LessOrEqual(t, abs(p.X-origin.X), 5, "dist %s", dist)
			assert.LessOrEqual(t, abs(p.Y-origin.Y), 5, "dist %s", dist)
		}
	}
}

func TestJitterZeroOffset(t *testing.T) {
	t.Parallel()

	pl := NewTestPlanner(1920, 1080, 13)
	p := Point{X: 42, Y: 42}
	assert.Equal(t, p, pl.Jitter(p, 0, JitterUniform))
}

func TestJitterClampedToPlane(t *testing.T) {
	t.Parallel()

	pl := NewTestPlanner(100, 100, 17)
	corner := Point{X: 99, Y: 99}
	for i := 0; i < 100; i++ {
		p := pl.Jitter(corner, 10, JitterUniform)
		assert.True(t, pl.Validate(p, 0), "jitter escaped the plane: %v", p)
	}
}

func TestShrinkRegion(t *testing.T) {
	t.Parallel()

	pl := NewTestPlanner(1920, 1080, 1)

	full := NewRegion(100, 100, 149, 149)
	assert.Equal(t, NewRegion(105, 105, 144, 144), pl.ShrinkRegion(full, 5))
	assert.Equal(t, full, pl.ShrinkRegion(full, 0))

	// A margin that would swallow the region leaves it untouched.
	tiny := NewRegion(10, 10, 18, 18)
	assert.Equal(t, tiny, pl.ShrinkRegion(tiny, 5))

	line := NewRegion(10, 10, 10, 40)
	assert.Equal(t, line, pl.ShrinkRegion(line, 1))
}

func TestSafeClickArea(t *testing.T) {
	t.Parallel()

	pl := NewTestPlanner(1920, 1080, 1)
	r := NewRegion(0, 0, 99, 99)
	assert.Equal(t, pl.ShrinkRegion(r, 8), pl.SafeClickArea(r, 8))
}

func TestCornerPoint(t *testing.T) {
	t.Parallel()

	pl := NewTestPlanner(1920, 1080, 1)
	assert.Equal(t, Point{X: 1820, Y: 980}, pl.CornerPoint(100))
	assert.Equal(t, Point{X: 1919, Y: 1079}, pl.CornerPoint(0))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
