package planner

import "math"

// NaturalTrajectory generates a curved movement path from start to end.
// Longer movements get more steps and a more pronounced curve. When humanLike
// is set, every sampled point receives a small gaussian jitter so the path
// never retraces itself exactly. Every point lies on the plane.
func (pl *Planner) NaturalTrajectory(start, end Point, humanLike bool) []Point {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	if start == end {
		return []Point{end}
	}

	dist := start.DistanceTo(end)

	steps := int(dist / 15)
	if steps < 5 {
		steps = 5
	}

	// Short hops barely curve; long sweeps bow visibly.
	var curvature float64
	switch {
	case dist < 50:
		curvature = 0.1
	case dist < 200:
		curvature = 0.2
	default:
		curvature = 0.3
	}

	control := pl.controlPointLocked(start, end, dist, curvature)
	path := pl.sampleBezierLocked(start, control, end, steps)

	if humanLike {
		for i := range path {
			path[i] = pl.jitterLocked(path[i], 2, JitterGaussian)
		}
	}

	return path
}

// SmoothPath generates a quadratic Bezier path with explicit step count and
// curve intensity, for callers that want full control over the shape.
func (pl *Planner) SmoothPath(start, end Point, steps int, intensity float64) []Point {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	if start == end {
		return []Point{end}
	}
	if steps < 2 {
		steps = 2
	}

	dist := start.DistanceTo(end)
	control := pl.controlPointLocked(start, end, dist, intensity)
	return pl.sampleBezierLocked(start, control, end, steps)
}

// controlPointLocked picks a random Bezier control point near the midpoint
// of start and end. The offset range grows with distance and curvature.
func (pl *Planner) controlPointLocked(start, end Point, dist, curvature float64) Point {
	midX := float64(start.X+end.X) / 2
	midY := float64(start.Y+end.Y) / 2

	offsetRange := dist * curvature * 0.5
	offX := (pl.rng.Float64()*2 - 1) * offsetRange
	offY := (pl.rng.Float64()*2 - 1) * offsetRange

	return Point{
		X: int(math.Round(midX + offX)),
		Y: int(math.Round(midY + offY)),
	}
}

// sampleBezierLocked samples the quadratic Bezier through p0, control, p1 at
// steps points, endpoints included, each clamped to the plane.
func (pl *Planner) sampleBezierLocked(p0, control, p1 Point, steps int) []Point {
	path := make([]Point, steps)
	for i := 0; i < steps; i++ {
		t := float64(i) / float64(steps-1)
		omt := 1 - t

		x := omt*omt*float64(p0.X) + 2*omt*t*float64(control.X) + t*t*float64(p1.X)
		y := omt*omt*float64(p0.Y) + 2*omt*t*float64(control.Y) + t*t*float64(p1.Y)

		path[i] = pl.Clamp(Point{X: int(math.Round(x)), Y: int(math.Round(y))}, 0)
	}
	return path
}
