// internal/sequence/runner.go
package sequence

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/ghosthand/api/schemas"
	"github.com/xkilldash9x/ghosthand/internal/batch"
	"github.com/xkilldash9x/ghosthand/internal/behavior"
	"github.com/xkilldash9x/ghosthand/internal/planner"
)

// Interactor is the slice of the interaction controller the runner drives.
type Interactor interface {
	ClickIn(ctx context.Context, region planner.Region, button schemas.MouseButton, safeMargin int) error
	Type(ctx context.Context, text string) error
	PressKey(ctx context.Context, key schemas.KeyEventData) error
	ScrollVertical(ctx context.Context, amount int, at *planner.Point) error
	ScrollHorizontal(ctx context.Context, amount int, at *planner.Point) error
}

// Runner binds one loaded sequence and its area set to a controller and
// interprets the sequence as a numbered unit of work: each action dispatches
// to the matching controller operation, with a chance of hesitating first
// and an optional post-action wait afterwards.
type Runner struct {
	areas    *schemas.AreaSet
	seq      schemas.Sequence
	ctrl     Interactor
	behavior *behavior.Generator
	vars     TemplateVars
	logger   *zap.Logger

	rng   *rand.Rand
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRunner wires a Runner. The sequence and areas are assumed validated by
// the loader. A nil logger is replaced with a no-op one.
func NewRunner(areas *schemas.AreaSet, seq schemas.Sequence, ctrl Interactor, gen *behavior.Generator, vars TemplateVars, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if gen == nil {
		gen = behavior.NewGenerator(behavior.DefaultProfile(), nil)
	}
	return &Runner{
		areas:    areas,
		seq:      seq,
		ctrl:     ctrl,
		behavior: gen,
		vars:     vars,
		logger:   logger.Named("sequence"),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:    sleepCtx,
	}
}

// NewTestRunner is NewRunner with seeded randomness and a recording-friendly
// sleeper left for the test to replace.
func NewTestRunner(areas *schemas.AreaSet, seq schemas.Sequence, ctrl Interactor, gen *behavior.Generator, vars TemplateVars, seed int64) *Runner {
	r := NewRunner(areas, seq, ctrl, gen, vars, zap.NewNop())
	r.rng = rand.New(rand.NewSource(seed))
	return r
}

// Unit adapts the runner to the batch executor's unit-of-work shape.
func (r *Runner) Unit() batch.Unit {
	return func(ctx context.Context, number int) error {
		return r.RunUnit(ctx, number)
	}
}

// RunUnit interprets the whole sequence once for the given unit number.
func (r *Runner) RunUnit(ctx context.Context, number int) error {
	log := r.logger.With(
		zap.String("sequence", r.seq.Name),
		zap.Int("number", number))
	log.Info("unit starting", zap.Int("actions", len(r.seq.Actions)))

	for i, act := range r.seq.Actions {
		if err := ctx.Err(); err != nil {
			return err
		}

		log.Debug("action", zap.Int("index", i), zap.String("type", string(act.Type)))
		if err := r.execute(ctx, act, number); err != nil {
			return fmt.Errorf("action %d (%s): %w", i, act.Type, err)
		}
		if err := r.postActionWait(ctx, act); err != nil {
			return err
		}
	}

	log.Info("unit complete")
	return nil
}

func (r *Runner) execute(ctx context.Context, act schemas.Action, number int) error {
	if hesitatesBefore(act.Type) && r.behavior.ShouldHesitate(behavior.ComplexityNormal) {
		pause := r.behavior.NaturalPause(behavior.PauseHesitation)
		r.logger.Debug("pre-action hesitation", zap.Duration("pause", pause))
		if err := r.sleep(ctx, pause); err != nil {
			return err
		}
	}

	switch act.Type {
	case schemas.ActionClickArea:
		area, ok := r.areas.Find(act.Area)
		if !ok {
			return fmt.Errorf("unknown area %q", act.Area)
		}
		return r.ctrl.ClickIn(ctx, areaRegion(area), schemas.MouseLeft, -1)

	case schemas.ActionTypeText:
		return r.ctrl.Type(ctx, act.Text)

	case schemas.ActionTypeDynamic:
		return r.ctrl.Type(ctx, r.vars.WithNumber(number).Expand(act.Template))

	case schemas.ActionSelectAll:
		return r.ctrl.PressKey(ctx, schemas.KeySelectAll)

	case schemas.ActionCopy:
		return r.ctrl.PressKey(ctx, schemas.KeyCopy)

	case schemas.ActionPaste:
		return r.ctrl.PressKey(ctx, schemas.KeyPaste)

	case schemas.ActionPressKey:
		return r.ctrl.PressKey(ctx, schemas.KeyEventData{Key: act.Key})

	case schemas.ActionScroll:
		if act.Axis == schemas.AxisHorizontal {
			return r.ctrl.ScrollHorizontal(ctx, act.Amount, nil)
		}
		return r.ctrl.ScrollVertical(ctx, act.Amount, nil)

	case schemas.ActionWait:
		// A configured wait still breathes a little: up to half a second
		// longer, up to a fifth shorter, never under 100ms.
		wait := act.Seconds + (r.rng.Float64()*0.7 - 0.2)
		if wait < 0.1 {
			wait = 0.1
		}
		return r.sleep(ctx, time.Duration(wait*float64(time.Second)))

	default:
		return fmt.Errorf("unknown action type %q", act.Type)
	}
}

// postActionWait draws the optional settle delay declared on the action.
func (r *Runner) postActionWait(ctx context.Context, act schemas.Action) error {
	if act.WaitMax <= 0 {
		return nil
	}
	wait := act.WaitMin + r.rng.Float64()*(act.WaitMax-act.WaitMin)
	return r.sleep(ctx, time.Duration(wait*float64(time.Second)))
}

// hesitatesBefore reports whether the action kind carries a chance of a
// pre-action hesitation pause.
func hesitatesBefore(t schemas.ActionType) bool {
	switch t {
	case schemas.ActionClickArea, schemas.ActionTypeText, schemas.ActionTypeDynamic:
		return true
	}
	return false
}

// areaRegion converts a named area to a planner region, normalizing the
// corner order.
func areaRegion(a schemas.Area) planner.Region {
	c := a.Normalized()
	return planner.NewRegion(c[0], c[1], c[2], c[3])
}

// sleepCtx blocks for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
