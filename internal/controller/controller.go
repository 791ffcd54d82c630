// internal/controller/controller.go
package controller

import (
	"math/rand"
	"sync"
	"time"

	"github.com/aquilax/go-perlin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/ghosthand/internal/behavior"
	"github.com/xkilldash9x/ghosthand/internal/planner"
)

// State names the phase an interaction is currently in. Transitions always
// run Idle -> Approaching -> PreClick -> Executing -> PostClick -> Idle for
// clicks; other operations use the subset that applies to them. The dragging
// flag is tracked separately because a drag spans several phases.
type State string

const (
	StateIdle        State = "idle"
	StateApproaching State = "approaching"
	StatePreClick    State = "pre_click"
	StateExecuting   State = "executing"
	StatePostClick   State = "post_click"
)

// Stats is a snapshot of the controller's session counters.
type Stats struct {
	SessionID    string
	SessionStart time.Time
	Position     planner.Point
	State        State
	Dragging     bool

	ClickCount int
	MoveCount  int
	DragCount  int

	LastClickTime time.Time
	LastMoveTime  time.Time

	ActionsPerMinute float64
}

// Options tune the mechanical side of the controller. Behavioral variation
// comes from the behavior.Generator instead.
type Options struct {
	// MovementSpeed scales approach pacing; 1.0 is the baseline, larger is
	// faster.
	MovementSpeed float64
	// SafeMargin is the default inset, in pixels, kept from target region
	// edges when picking click points.
	SafeMargin int
	// MaxOffset bounds the random jitter applied to pointer targets.
	MaxOffset int
	// ClickDelayMin and ClickDelayMax bound the pre-click delay draw.
	ClickDelayMin time.Duration
	ClickDelayMax time.Duration
	// TypingDelayMin and TypingDelayMax bound the per-character typing delay
	// draw.
	TypingDelayMin time.Duration
	TypingDelayMax time.Duration
	// RetryAttempts is the default attempt count for ClickWithRetry.
	RetryAttempts int
}

// DefaultOptions returns the standard controller tuning.
func DefaultOptions() Options {
	return Options{
		MovementSpeed:  1.0,
		SafeMargin:     5,
		MaxOffset:      5,
		ClickDelayMin:  100 * time.Millisecond,
		ClickDelayMax:  500 * time.Millisecond,
		TypingDelayMin: 50 * time.Millisecond,
		TypingDelayMax: 150 * time.Millisecond,
		RetryAttempts:  3,
	}
}

// Controller walks pointer and keyboard interactions through their phases,
// asking the behavior generator for every pause and the planner for every
// coordinate. All public operations lock for their full duration; a
// Controller serves one interaction stream at a time.
type Controller struct {
	mu       sync.Mutex
	backend  Backend
	behavior *behavior.Generator
	planner  *planner.Planner
	logger   *zap.Logger
	opts     Options

	state    State
	pos      planner.Point
	dragging bool

	sessionID    string
	sessionStart time.Time

	clickCount    int
	moveCount     int
	dragCount     int
	lastClickTime time.Time
	lastMoveTime  time.Time

	rng       *rand.Rand
	noiseX    *perlin.Perlin
	noiseY    *perlin.Perlin
	noiseTime float64
}

// New creates a Controller. Zero or negative Options fields fall back to
// their defaults; a nil logger is replaced with a no-op one.
func New(backend Backend, gen *behavior.Generator, pl *planner.Planner, opts Options, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	def := DefaultOptions()
	if opts.MovementSpeed <= 0 {
		opts.MovementSpeed = def.MovementSpeed
	}
	if opts.SafeMargin < 0 {
		opts.SafeMargin = def.SafeMargin
	}
	if opts.MaxOffset <= 0 {
		opts.MaxOffset = def.MaxOffset
	}
	if opts.ClickDelayMin <= 0 || opts.ClickDelayMax < opts.ClickDelayMin {
		opts.ClickDelayMin = def.ClickDelayMin
		opts.ClickDelayMax = def.ClickDelayMax
	}
	if opts.TypingDelayMin <= 0 || opts.TypingDelayMax < opts.TypingDelayMin {
		opts.TypingDelayMin = def.TypingDelayMin
		opts.TypingDelayMax = def.TypingDelayMax
	}
	if opts.RetryAttempts < 1 {
		opts.RetryAttempts = def.RetryAttempts
	}

	seed := time.Now().UnixNano()
	alpha, beta, n := 2.0, 2.0, int32(3)

	return &Controller{
		backend:      backend,
		behavior:     gen,
		planner:      pl,
		logger:       logger.Named("controller"),
		opts:         opts,
		state:        StateIdle,
		sessionID:    uuid.NewString(),
		sessionStart: time.Now(),
		rng:          rand.New(rand.NewSource(seed)),
		noiseX:       perlin.NewPerlin(alpha, beta, n, seed),
		noiseY:       perlin.NewPerlin(alpha, beta, n, seed+1),
	}
}

// NewTestController creates a deterministic Controller for tests, with a
// seeded generator, planner, and noise sources on a 1920x1080 plane.
func NewTestController(backend Backend, seed int64) *Controller {
	gen := behavior.NewTestGenerator(behavior.DefaultProfile(), seed)
	pl := planner.NewTestPlanner(1920, 1080, seed)
	c := New(backend, gen, pl, DefaultOptions(), zap.NewNop())
	c.rng = rand.New(rand.NewSource(seed))
	c.noiseX = perlin.NewPerlin(2, 2, 3, seed)
	c.noiseY = perlin.NewPerlin(2, 2, 3, seed+1)
	return c
}

// State returns the controller's current phase.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Statistics returns a snapshot of the session counters.
func (c *Controller) Statistics() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		SessionID:        c.sessionID,
		SessionStart:     c.sessionStart,
		Position:         c.pos,
		State:            c.state,
		Dragging:         c.dragging,
		ClickCount:       c.clickCount,
		MoveCount:        c.moveCount,
		DragCount:        c.dragCount,
		LastClickTime:    c.lastClickTime,
		LastMoveTime:     c.lastMoveTime,
		ActionsPerMinute: c.behavior.ActionsPerMinute(),
	}
}

// setState transitions the interaction phase. Callers hold the lock.
func (c *Controller) setState(next State) {
	if c.state == next {
		return
	}
	c.logger.Debug("state transition",
		zap.String("from", string(c.state)),
		zap.String("to", string(next)))
	c.state = next
}

// uniformDuration draws a duration uniformly from [min, max). Callers hold
// the lock.
func (c *Controller) uniformDuration(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(c.rng.Int63n(int64(max-min)))
}
