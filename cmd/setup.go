// File: cmd/setup.go
package cmd

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/ghosthand/internal/backend/cdp"
	"github.com/xkilldash9x/ghosthand/internal/backend/logsink"
	"github.com/xkilldash9x/ghosthand/internal/behavior"
	"github.com/xkilldash9x/ghosthand/internal/config"
	"github.com/xkilldash9x/ghosthand/internal/controller"
	"github.com/xkilldash9x/ghosthand/internal/planner"
	"github.com/xkilldash9x/ghosthand/internal/sequence"
)

// session bundles everything a run or batch command needs to interact: the
// loaded definitions, the behavior generator, the controller and the runner
// bound to one sequence. Close releases the backend.
type session struct {
	Gen    *behavior.Generator
	Runner *sequence.Runner

	// Sink is non-nil when the backend is the rehearsal log sink.
	Sink *logsink.Backend

	cleanup func()
}

func (s *session) Close() {
	if s.cleanup != nil {
		s.cleanup()
	}
}

// buildSession assembles the interaction stack for one named sequence.
func buildSession(ctx context.Context, cfg *config.Config, sequenceName string, vars sequence.TemplateVars, logger *zap.Logger) (*session, error) {
	if sequenceName == "" {
		return nil, fmt.Errorf("no sequence named; pass --sequence")
	}

	areas, err := sequence.LoadAreas(cfg.Paths.Areas)
	if err != nil {
		return nil, err
	}
	seqs, err := sequence.LoadSequences(cfg.Paths.Sequences, areas)
	if err != nil {
		return nil, err
	}
	seq, ok := seqs.Find(sequenceName)
	if !ok {
		return nil, fmt.Errorf("sequence %q not found in %s", sequenceName, cfg.Paths.Sequences)
	}

	profile, err := profileFromConfig(cfg.Profile)
	if err != nil {
		return nil, err
	}
	gen := behavior.NewGenerator(profile, logger)

	backend, sink, cleanup, err := buildBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	pl := planner.NewPlanner(cfg.Plane.Width, cfg.Plane.Height, logger)
	ctrl := controller.New(backend, gen, pl, optionsFromConfig(cfg), logger)
	runner := sequence.NewRunner(areas, seq, ctrl, gen, vars, logger)

	logger.Info("interaction session ready",
		zap.String("sequence", sequenceName),
		zap.Int("actions", len(seq.Actions)),
		zap.String("backend", cfg.Backend.Kind),
	)

	return &session{
		Gen:     gen,
		Runner:  runner,
		Sink:    sink,
		cleanup: cleanup,
	}, nil
}

// buildBackend constructs the configured input backend. The returned cleanup
// tears down any browser the cdp backend started.
func buildBackend(ctx context.Context, cfg *config.Config, logger *zap.Logger) (controller.Backend, *logsink.Backend, func(), error) {
	switch cfg.Backend.Kind {
	case "", "logsink":
		sink := logsink.New(logger)
		return sink, sink, nil, nil

	case "cdp":
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", cfg.Backend.CDP.Headless),
			chromedp.Flag("disable-gpu", true),
		)
		allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
		tabCtx, cancelTab := chromedp.NewContext(allocCtx)
		cleanup := func() {
			cancelTab()
			cancelAlloc()
		}

		// Starting actions force the browser to actually launch.
		start := []chromedp.Action{}
		if url := cfg.Backend.CDP.StartURL; url != "" {
			start = append(start, chromedp.Navigate(url))
		}
		if err := chromedp.Run(tabCtx, start...); err != nil {
			cleanup()
			return nil, nil, nil, fmt.Errorf("starting browser: %w", err)
		}

		backend := cdp.NewThrottled(cdp.New(tabCtx, logger), cfg.Backend.CDP.EventsPerSecond)
		return backend, nil, cleanup, nil
	}

	return nil, nil, nil, fmt.Errorf("unknown backend kind %q", cfg.Backend.Kind)
}

// profileFromConfig resolves the configured persona. A preset name wins over
// the explicit trait fields.
func profileFromConfig(pc config.ProfileConfig) (behavior.Profile, error) {
	if pc.Preset != "" {
		return behavior.PresetProfile(pc.Preset)
	}

	activity, err := behavior.ParseActivityLevel(pc.ActivityLevel)
	if err != nil {
		return behavior.Profile{}, fmt.Errorf("profile configuration: %w", err)
	}
	style, err := behavior.ParseTypingStyle(pc.TypingStyle)
	if err != nil {
		return behavior.Profile{}, fmt.Errorf("profile configuration: %w", err)
	}

	profile := behavior.Profile{
		ActivityLevel:      activity,
		TypingStyle:        style,
		MistakeProneness:   pc.MistakeProneness,
		HesitationTendency: pc.HesitationTendency,
		MultitaskingLevel:  pc.MultitaskingLevel,
		AttentionSpan:      pc.AttentionSpan,
		FatigueFactor:      pc.FatigueFactor,
		Consistency:        pc.Consistency,
	}
	if err := profile.Validate(); err != nil {
		return behavior.Profile{}, fmt.Errorf("profile configuration: %w", err)
	}
	return profile, nil
}

func optionsFromConfig(cfg *config.Config) controller.Options {
	return controller.Options{
		MovementSpeed:  cfg.Movement.Speed,
		SafeMargin:     cfg.Movement.SafeMargin,
		MaxOffset:      cfg.Movement.MaxOffset,
		ClickDelayMin:  cfg.Timing.ClickDelayMin,
		ClickDelayMax:  cfg.Timing.ClickDelayMax,
		TypingDelayMin: cfg.Timing.TypingDelayMin,
		TypingDelayMax: cfg.Timing.TypingDelayMax,
		RetryAttempts:  cfg.Timing.RetryAttempts,
	}
}
