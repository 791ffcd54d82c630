// internal/batch/executor.go
package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/ghosthand/api/schemas"
	"github.com/xkilldash9x/ghosthand/internal/behavior"
)

// Unit is one repetition of work over the numbered range. The number is the
// unit's absolute position in the range, not its index. A returned error
// marks the unit failed; it never aborts the batch on its own.
type Unit func(ctx context.Context, number int) error

// DecisionSource answers the one question the executor cannot answer itself:
// after a unit fails, do the remaining units still run? It is consulted
// exactly once per failed unit. Declining, or failing to decide, stops the
// run.
type DecisionSource interface {
	ContinueAfterFailure(ctx context.Context, unitNumber, remaining int) (bool, error)
}

// AutoContinue keeps going after every failed unit.
type AutoContinue struct{}

func (AutoContinue) ContinueAfterFailure(context.Context, int, int) (bool, error) {
	return true, nil
}

// AutoStop stops the run at the first failed unit.
type AutoStop struct{}

func (AutoStop) ContinueAfterFailure(context.Context, int, int) (bool, error) {
	return false, nil
}

// Config describes one batch run.
type Config struct {
	// StartNumber is the first unit number. Units run in increasing order
	// from here.
	StartNumber int
	// Total is how many units the run covers.
	Total int
	// SequenceName labels the run in its summary and logs. Optional.
	SequenceName string
}

// Validate checks the configured range.
func (c Config) Validate() error {
	if c.Total < 1 {
		return fmt.Errorf("batch total must be positive, got %d", c.Total)
	}
	if c.StartNumber < 0 {
		return fmt.Errorf("batch start number must not be negative, got %d", c.StartNumber)
	}
	return nil
}

// EndConfigured returns the last unit number the range covers.
func (c Config) EndConfigured() int {
	return c.StartNumber + c.Total - 1
}

// Executor drives numbered units of work in strictly increasing order with
// human pacing between them. Unit failures are recorded, never fatal; only
// the decision source (or the context) stops a run early.
type Executor struct {
	behavior *behavior.Generator
	decider  DecisionSource
	logger   *zap.Logger

	// sleep and now are swappable for tests.
	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// NewExecutor creates an Executor. A nil decider defaults to AutoContinue;
// a nil generator gets a default persona; a nil logger is replaced with a
// no-op one.
func NewExecutor(gen *behavior.Generator, decider DecisionSource, logger *zap.Logger) *Executor {
	if gen == nil {
		gen = behavior.NewGenerator(behavior.DefaultProfile(), nil)
	}
	if decider == nil {
		decider = AutoContinue{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		behavior: gen,
		decider:  decider,
		logger:   logger.Named("batch"),
		sleep:    sleepCtx,
		now:      time.Now,
	}
}

// Run executes the configured units in order and returns the immutable run
// summary. The summary is produced on every path, including early
// termination: when the returned error is non-nil the summary still
// describes everything that ran before the stop.
func (e *Executor) Run(ctx context.Context, cfg Config, unit Unit) (*schemas.BatchSummary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, fmt.Errorf("batch unit must not be nil")
	}

	runID := uuid.NewString()
	log := e.logger.With(zap.String("run_id", runID))
	log.Info("batch run starting",
		zap.String("sequence", cfg.SequenceName),
		zap.Int("start", cfg.StartNumber),
		zap.Int("total", cfg.Total))

	startedAt := e.now()
	successful, failed := 0, 0
	runErr := error(nil)

	for i := 0; i < cfg.Total; i++ {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		number := cfg.StartNumber + i
		remaining := cfg.Total - i - 1

		log.Info("unit starting",
			zap.Int("number", number),
			zap.Int("position", i+1),
			zap.Int("total", cfg.Total))

		if err := unit(ctx, number); err != nil {
			failed++
			log.Warn("unit failed", zap.Int("number", number), zap.Error(err))

			cont, decErr := e.decider.ContinueAfterFailure(ctx, number, remaining)
			if decErr != nil {
				runErr = fmt.Errorf("continuation decision for unit %d: %w", number, decErr)
				break
			}
			if !cont {
				log.Info("run stopped after failed unit",
					zap.Int("number", number),
					zap.Int("remaining", remaining))
				break
			}
		} else {
			successful++
			log.Debug("unit complete", zap.Int("number", number))
		}

		if remaining > 0 {
			pause := e.behavior.NaturalPause(behavior.PauseGeneral)
			if err := e.sleep(ctx, pause); err != nil {
				runErr = err
				break
			}
		}
	}

	summary := e.summarize(runID, cfg, startedAt, successful, failed)
	log.Info("batch run finished",
		zap.Int("successful", summary.Successful),
		zap.Int("failed", summary.Failed),
		zap.Int("end_actual", summary.EndActual),
		zap.Float64("success_rate", summary.SuccessRate),
		zap.Duration("duration", summary.Duration))
	return summary, runErr
}

// summarize finalizes the run record. Attempted units are exactly
// successful+failed, so the actual end number and the remaining count both
// derive from the counters; successful+failed+remaining always equals the
// configured total.
func (e *Executor) summarize(runID string, cfg Config, startedAt time.Time, successful, failed int) *schemas.BatchSummary {
	attempted := successful + failed
	duration := e.now().Sub(startedAt)

	s := &schemas.BatchSummary{
		RunID:           runID,
		SequenceName:    cfg.SequenceName,
		StartNumber:     cfg.StartNumber,
		TotalConfigured: cfg.Total,
		EndConfigured:   cfg.EndConfigured(),
		EndActual:       cfg.StartNumber + attempted - 1,
		Successful:      successful,
		Failed:          failed,
		StartedAt:       startedAt,
		Duration:        duration,
	}
	if attempted > 0 {
		s.SuccessRate = float64(successful) / float64(attempted) * 100
	}
	if successful > 0 {
		s.AvgPerUnit = duration / time.Duration(successful)
	}
	if s.EndActual < s.EndConfigured {
		s.EarlyTermination = &schemas.EarlyTermination{
			AfterNumber: s.EndActual,
			Remaining:   cfg.Total - attempted,
		}
	}
	return s
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
