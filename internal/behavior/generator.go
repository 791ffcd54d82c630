package behavior

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Generator produces the timing values and decisions that make an interaction
// stream look human. It owns the session state (start time, action counter)
// the derivations feed on; everything else is a pure function of the profile,
// the call arguments, and fresh randomness.
//
// A Generator is safe for concurrent use, but fatigue and attention accounting
// only make sense when a single interaction stream drives it. Give each
// concurrent stream its own Generator.
type Generator struct {
	mu      sync.Mutex
	profile Profile
	logger  *zap.Logger
	rng     *rand.Rand

	sessionStart   time.Time
	actionCount    int
	lastActionTime time.Time

	// now is swappable so tests can advance the session clock.
	now func() time.Time
}

// NewGenerator creates a Generator for the given persona. The logger may be
// nil, in which case a no-op logger is used.
func NewGenerator(profile Profile, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Generator{
		profile: profile,
		logger:  logger.Named("behavior"),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		now:     time.Now,
	}
	g.sessionStart = g.now()
	g.lastActionTime = g.sessionStart
	return g
}

// NewTestGenerator creates a deterministic Generator for tests, seeded with
// the given value.
func NewTestGenerator(profile Profile, seed int64) *Generator {
	g := NewGenerator(profile, zap.NewNop())
	g.rng = rand.New(rand.NewSource(seed))
	return g
}

// Profile returns the persona this generator simulates.
func (g *Generator) Profile() Profile {
	return g.profile
}

// Fatigue returns the current fatigue level in [0,1]. It starts at the
// profile's fatigue factor and rises with session time, up to +0.3 over the
// first three hours.
func (g *Generator) Fatigue() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fatigueLocked()
}

func (g *Generator) fatigueLocked() float64 {
	sessionHours := g.now().Sub(g.sessionStart).Hours()
	timeFatigue := math.Min(0.3, sessionHours*0.1)
	return math.Min(1.0, g.profile.FatigueFactor+timeFatigue)
}

// Attention returns the current attention level in [0.1,1]. Attention starts
// at the profile's attention span and falls as fatigue rises.
func (g *Generator) Attention() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.attentionLocked()
}

func (g *Generator) attentionLocked() float64 {
	fatigue := g.fatigueLocked()
	attention := g.profile.AttentionSpan * (1 - fatigue*0.5)
	return math.Max(0.1, attention)
}

// RecordAction updates the session statistics; call after each completed action.
func (g *Generator) RecordAction() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.actionCount++
	g.lastActionTime = g.now()
}

// SessionDuration returns how long this generator's session has been running.
func (g *Generator) SessionDuration() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.now().Sub(g.sessionStart)
}

// ActionsPerMinute returns the current action rate for the session.
func (g *Generator) ActionsPerMinute() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	minutes := g.now().Sub(g.sessionStart).Minutes()
	if minutes == 0 {
		return 0
	}
	return float64(g.actionCount) / minutes
}

// activityMultiplier draws a fresh pace multiplier for the profile's activity
// level, resampled on every call rather than fixed per session.
func (g *Generator) activityMultiplier() float64 {
	switch g.profile.ActivityLevel {
	case ActivityTired:
		return g.uniform(1.3, 1.8)
	case ActivityNormal:
		return g.uniform(0.9, 1.1)
	case ActivityEnergetic:
		return g.uniform(0.6, 0.9)
	case ActivityFocused:
		return g.uniform(0.8, 1.0)
	case ActivityDistracted:
		return g.uniform(1.1, 1.6)
	}
	return 1.0
}

// uniform draws from [min, max). Callers must hold g.mu.
func (g *Generator) uniform(min, max float64) float64 {
	return min + g.rng.Float64()*(max-min)
}

// seconds converts a float second count to a Duration.
func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
