package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/ghosthand/internal/config"
	"github.com/xkilldash9x/ghosthand/internal/observability"
	"github.com/xkilldash9x/ghosthand/internal/sequence"
)

// newRunCmd creates and configures the `run` command.
func newRunCmd() *cobra.Command {
	var (
		sequenceName string
		number       int
		prefix       string
		suffix       string
		dryRun       bool
	)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Executes one unit of a named interaction sequence",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind flags to their viper keys so command-line values override
			// the config file and environment.
			if err := viper.BindPFlag("paths.areas", cmd.Flags().Lookup("areas")); err != nil {
				return err
			}
			if err := viper.BindPFlag("paths.sequences", cmd.Flags().Lookup("sequences")); err != nil {
				return err
			}
			return viper.BindPFlag("backend.kind", cmd.Flags().Lookup("backend"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Use the signal-aware context passed from main.go.
			ctx := cmd.Context()
			logger := observability.GetLogger()

			// Re-resolve the config now that flags are bound.
			runCfg, err := config.NewConfigFromViper(viper.GetViper())
			if err != nil {
				return err
			}
			if dryRun {
				runCfg.Backend.Kind = "logsink"
			}

			vars := sequence.TemplateVars{Prefix: prefix, Suffix: suffix}
			sess, err := buildSession(ctx, runCfg, sequenceName, vars, logger)
			if err != nil {
				return err
			}
			defer sess.Close()

			logger.Info("Starting run",
				zap.String("sequence", sequenceName),
				zap.Int("number", number),
			)

			if err := runUnit(ctx, sess, number, logger); err != nil {
				if errors.Is(err, context.Canceled) {
					logger.Warn("Run aborted gracefully", zap.String("sequence", sequenceName))
					return fmt.Errorf("run aborted by user signal: %w", err)
				}
				return err
			}

			if sess.Sink != nil {
				stats := sess.Sink.Stats()
				logger.Info("Dry run complete",
					zap.Int("events", stats.Events),
					zap.Duration("simulated_pacing", stats.Simulated),
				)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Run complete. Sequence %q executed for unit %d.\n", sequenceName, number)
			return nil
		},
	}

	runCmd.Flags().StringVar(&sequenceName, "sequence", "", "name of the sequence to execute")
	runCmd.Flags().IntVar(&number, "number", 1, "unit number substituted into dynamic text")
	runCmd.Flags().StringVar(&prefix, "prefix", "", "value for the {prefix} template placeholder")
	runCmd.Flags().StringVar(&suffix, "suffix", "", "value for the {suffix} template placeholder")
	runCmd.Flags().String("areas", "", "path to the named-areas file")
	runCmd.Flags().String("sequences", "", "path to the sequences file")
	runCmd.Flags().String("backend", "", "input backend: logsink or cdp")
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "rehearse against the log sink instead of a browser")

	return runCmd
}

// runUnit executes one unit under an errgroup so a signal or unit failure
// stops both goroutines together.
func runUnit(ctx context.Context, sess *session, number int, logger *zap.Logger) error {
	g, gctx := errgroup.WithContext(ctx)
	done := make(chan struct{})

	g.Go(func() error {
		defer close(done)
		return sess.Runner.RunUnit(gctx, number)
	})
	g.Go(func() error {
		select {
		case <-done:
			return nil
		case <-gctx.Done():
			if ctx.Err() != nil {
				logger.Warn("Interrupt received, stopping")
			}
			return gctx.Err()
		}
	})

	return g.Wait()
}
