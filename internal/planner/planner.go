package planner

import (
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

// JitterDistribution selects how Jitter spreads offsets around a point.
type JitterDistribution string

const (
	// JitterUniform draws offsets uniformly over [-max, max] per axis.
	JitterUniform JitterDistribution = "uniform"
	// JitterGaussian draws offsets from N(0, max/3) clamped to [-max, max],
	// concentrating them near the original point.
	JitterGaussian JitterDistribution = "gaussian"
)

// Planner produces targets and movement paths on a bounded pixel plane.
// The plane dimensions are fixed at construction; every point a Planner
// hands out lies inside them.
type Planner struct {
	mu     sync.Mutex
	width  int
	height int
	rng    *rand.Rand
	logger *zap.Logger
}

// NewPlanner creates a Planner for a width x height pixel plane. The logger
// may be nil.
func NewPlanner(width, height int, logger *zap.Logger) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{
		width:  width,
		height: height,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		logger: logger.Named("planner"),
	}
}

// NewTestPlanner creates a deterministic Planner for tests.
func NewTestPlanner(width, height int, seed int64) *Planner {
	p := NewPlanner(width, height, zap.NewNop())
	p.rng = rand.New(rand.NewSource(seed))
	return p
}

// Width returns the plane width in pixels.
func (pl *Planner) Width() int { return pl.width }

// Height returns the plane height in pixels.
func (pl *Planner) Height() int { return pl.height }

// Validate reports whether p lies on the plane, at least margin pixels away
// from every edge.
func (pl *Planner) Validate(p Point, margin int) bool {
	return p.X >= margin && p.X < pl.width-margin &&
		p.Y >= margin && p.Y < pl.height-margin
}

// Clamp forces p onto the plane, keeping at least margin pixels from every
// edge. A margin too large for the plane collapses to zero.
func (pl *Planner) Clamp(p Point, margin int) Point {
	if 2*margin >= pl.width || 2*margin >= pl.height {
		margin = 0
	}
	return Point{
		X: clampInt(p.X, margin, pl.width-1-margin),
		Y: clampInt(p.Y, margin, pl.height-1-margin),
	}
}

// RandomPointIn draws a uniform point inside region, clamped to the plane.
func (pl *Planner) RandomPointIn(region Region) Point {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	p := Point{
		X: region.X1 + pl.rng.Intn(region.Width()+1),
		Y: region.Y1 + pl.rng.Intn(region.Height()+1),
	}
	return pl.Clamp(p, 0)
}

// RandomPoint draws a uniform point anywhere on the plane.
func (pl *Planner) RandomPoint() Point {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	return Point{X: pl.rng.Intn(pl.width), Y: pl.rng.Intn(pl.height)}
}

// Jitter displaces p by a random offset of at most maxOffset pixels per axis
// and clamps the result to the plane.
func (pl *Planner) Jitter(p Point, maxOffset int, dist JitterDistribution) Point {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	return pl.jitterLocked(p, maxOffset, dist)
}

func (pl *Planner) jitterLocked(p Point, maxOffset int, dist JitterDistribution) Point {
	if maxOffset <= 0 {
		return pl.Clamp(p, 0)
	}

	var dx, dy int
	switch dist {
	case JitterGaussian:
		stdDev := float64(maxOffset) / 3
		dx = clampInt(int(pl.rng.NormFloat64()*stdDev), -maxOffset, maxOffset)
		dy = clampInt(int(pl.rng.NormFloat64()*stdDev), -maxOffset, maxOffset)
	default:
		dx = pl.rng.Intn(2*maxOffset+1) - maxOffset
		dy = pl.rng.Intn(2*maxOffset+1) - maxOffset
	}

	return pl.Clamp(Point{X: p.X + dx, Y: p.Y + dy}, 0)
}

// RandomOffset displaces p uniformly by at most maxOffset per axis.
func (pl *Planner) RandomOffset(p Point, maxOffset int) Point {
	return pl.Jitter(p, maxOffset, JitterUniform)
}

// ShrinkRegion insets region by margin pixels on every side. If the result
// would have non-positive extent the original region is returned unchanged,
// so tiny targets stay clickable.
func (pl *Planner) ShrinkRegion(region Region, margin int) Region {
	if margin <= 0 {
		return region
	}
	shrunk := Region{
		X1: region.X1 + margin,
		Y1: region.Y1 + margin,
		X2: region.X2 - margin,
		Y2: region.Y2 - margin,
	}
	if shrunk.Width() <= 0 || shrunk.Height() <= 0 {
		pl.logger.Debug("region too small for margin, using full region",
			zap.Int("margin", margin),
			zap.Int("width", region.Width()),
			zap.Int("height", region.Height()))
		return region
	}
	return shrunk
}

// SafeClickArea returns the sub-region of region that keeps clicks margin
// pixels away from its edges.
func (pl *Planner) SafeClickArea(region Region, margin int) Region {
	return pl.ShrinkRegion(region, margin)
}

// CornerPoint returns the bottom-right plane corner inset by the given
// number of pixels, used as a neutral parking spot for the cursor.
func (pl *Planner) CornerPoint(inset int) Point {
	return pl.Clamp(Point{X: pl.width - inset, Y: pl.height - inset}, 0)
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
