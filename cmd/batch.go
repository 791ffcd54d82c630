package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/ghosthand/api/schemas"
	"github.com/xkilldash9x/ghosthand/internal/batch"
	"github.com/xkilldash9x/ghosthand/internal/config"
	"github.com/xkilldash9x/ghosthand/internal/observability"
	"github.com/xkilldash9x/ghosthand/internal/sequence"
	"github.com/xkilldash9x/ghosthand/internal/store"
)

// newBatchCmd creates and configures the `batch` command.
func newBatchCmd() *cobra.Command {
	var (
		sequenceName string
		prefix       string
		suffix       string
		autoYes      bool
		dryRun       bool
	)

	batchCmd := &cobra.Command{
		Use:   "batch",
		Short: "Executes a numbered range of sequence units with operator checkpoints",
		Long: `batch runs the named sequence once per unit number in the configured
range. After a failed unit the operator decides whether the run continues;
--yes answers every checkpoint with yes. The run always ends with an
immutable summary, stopped early or not.`,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := viper.BindPFlag("batch.start_number", cmd.Flags().Lookup("start")); err != nil {
				return err
			}
			if err := viper.BindPFlag("batch.total", cmd.Flags().Lookup("total")); err != nil {
				return err
			}
			if err := viper.BindPFlag("paths.areas", cmd.Flags().Lookup("areas")); err != nil {
				return err
			}
			if err := viper.BindPFlag("paths.sequences", cmd.Flags().Lookup("sequences")); err != nil {
				return err
			}
			if err := viper.BindPFlag("backend.kind", cmd.Flags().Lookup("backend")); err != nil {
				return err
			}
			return viper.BindPFlag("history.dsn", cmd.Flags().Lookup("history-dsn"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

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

			// History persistence is opt-in via a configured DSN.
			var history *store.Store
			if runCfg.History.DSN != "" {
				st, closePool, err := openHistory(ctx, runCfg.History.DSN, logger)
				if err != nil {
					return fmt.Errorf("opening history store: %w", err)
				}
				defer closePool()
				history = st
				logPreviousRun(ctx, history, sequenceName, logger)
			}

			var decider batch.DecisionSource
			if autoYes {
				decider = batch.AutoContinue{}
			} else {
				decider = &stdinDecider{in: bufio.NewReader(cmd.InOrStdin()), out: cmd.OutOrStdout()}
			}

			executor := batch.NewExecutor(sess.Gen, decider, logger)
			batchCfg := batch.Config{
				StartNumber:  runCfg.Batch.StartNumber,
				Total:        runCfg.Batch.Total,
				SequenceName: sequenceName,
			}

			logger.Info("Starting batch",
				zap.String("sequence", sequenceName),
				zap.Int("start", batchCfg.StartNumber),
				zap.Int("total", batchCfg.Total),
			)

			summary, runErr := runBatch(ctx, executor, batchCfg, sess, logger)

			if summary != nil {
				printSummary(cmd.OutOrStdout(), summary)
				if sess.Sink != nil {
					stats := sess.Sink.Stats()
					logger.Info("Dry run complete",
						zap.Int("events", stats.Events),
						zap.Duration("simulated_pacing", stats.Simulated),
					)
				}
				if history != nil {
					// The run context may already be canceled; the summary
					// still deserves its row.
					saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					if err := history.SaveSummary(saveCtx, summary); err != nil {
						logger.Error("Failed to persist batch summary", zap.Error(err))
					}
				}
			}

			if runErr != nil {
				if errors.Is(runErr, context.Canceled) {
					logger.Warn("Batch aborted gracefully", zap.String("sequence", sequenceName))
					return fmt.Errorf("batch aborted by user signal: %w", runErr)
				}
				return runErr
			}
			return nil
		},
	}

	batchCmd.Flags().StringVar(&sequenceName, "sequence", "", "name of the sequence to execute")
	batchCmd.Flags().Int("start", 1, "first unit number")
	batchCmd.Flags().Int("total", 1, "how many units to run")
	batchCmd.Flags().BoolVar(&autoYes, "yes", false, "continue past failed units without asking")
	batchCmd.Flags().StringVar(&prefix, "prefix", "", "value for the {prefix} template placeholder")
	batchCmd.Flags().StringVar(&suffix, "suffix", "", "value for the {suffix} template placeholder")
	batchCmd.Flags().String("areas", "", "path to the named-areas file")
	batchCmd.Flags().String("sequences", "", "path to the sequences file")
	batchCmd.Flags().String("backend", "", "input backend: logsink or cdp")
	batchCmd.Flags().String("history-dsn", "", "postgres DSN for run history persistence")
	batchCmd.Flags().BoolVar(&dryRun, "dry-run", false, "rehearse against the log sink instead of a browser")

	return batchCmd
}

// runBatch executes the batch under an errgroup so an interrupt stops the
// executor and the watcher together. The summary is returned even when the
// run errored partway.
func runBatch(ctx context.Context, executor *batch.Executor, batchCfg batch.Config, sess *session, logger *zap.Logger) (*schemas.BatchSummary, error) {
	var summary *schemas.BatchSummary

	g, gctx := errgroup.WithContext(ctx)
	done := make(chan struct{})

	g.Go(func() error {
		defer close(done)
		var err error
		summary, err = executor.Run(gctx, batchCfg, sess.Runner.Unit())
		return err
	})
	g.Go(func() error {
		select {
		case <-done:
			return nil
		case <-gctx.Done():
			if ctx.Err() != nil {
				logger.Warn("Interrupt received, stopping batch")
			}
			return gctx.Err()
		}
	})

	err := g.Wait()
	return summary, err
}

// stdinDecider asks the operator on the terminal whether a failed run should
// continue. EOF counts as a stop.
type stdinDecider struct {
	in  *bufio.Reader
	out io.Writer
}

func (d *stdinDecider) ContinueAfterFailure(ctx context.Context, unitNumber, remaining int) (bool, error) {
	fmt.Fprintf(d.out, "\nUnit %d failed. %d unit(s) remain. Continue? [y/N]: ", unitNumber, remaining)

	type answer struct {
		line string
		err  error
	}
	ch := make(chan answer, 1)
	go func() {
		line, err := d.in.ReadString('\n')
		ch <- answer{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case a := <-ch:
		if a.err != nil && !errors.Is(a.err, io.EOF) {
			return false, fmt.Errorf("reading continuation decision: %w", a.err)
		}
		switch strings.ToLower(strings.TrimSpace(a.line)) {
		case "y", "yes":
			return true, nil
		}
		return false, nil
	}
}

// openHistory connects the pgx pool, verifies it and makes sure the schema
// exists.
func openHistory(ctx context.Context, dsn string, logger *zap.Logger) (*store.Store, func(), error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to parse history DSN: %w", err)
	}
	poolConfig.MaxConns = 4
	poolConfig.MaxConnLifetime = 1 * time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to create history connection pool: %w", err)
	}

	st, err := store.New(ctx, pool, logger)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	if err := st.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	cleanup := func() {
		logger.Info("Closing history connection pool.")
		pool.Close()
	}
	return st, cleanup, nil
}

// logPreviousRun surfaces where the last run of this sequence ended, which
// helps the operator pick --start.
func logPreviousRun(ctx context.Context, history *store.Store, sequenceName string, logger *zap.Logger) {
	previous, err := history.RecentRuns(ctx, sequenceName, 1)
	if err != nil {
		logger.Warn("Could not read run history", zap.Error(err))
		return
	}
	if len(previous) == 0 {
		return
	}
	last := previous[0]
	logger.Info("Previous run of this sequence",
		zap.String("run_id", last.RunID),
		zap.Int("end_actual", last.EndActual),
		zap.Int("successful", last.Successful),
		zap.Int("failed", last.Failed),
		zap.Time("started_at", last.StartedAt),
	)
}

// printSummary renders the immutable batch summary for the operator.
func printSummary(w io.Writer, s *schemas.BatchSummary) {
	fmt.Fprintf(w, "\nBatch run %s\n", s.RunID)
	if s.SequenceName != "" {
		fmt.Fprintf(w, "  Sequence:   %s\n", s.SequenceName)
	}
	fmt.Fprintf(w, "  Configured: units %d..%d (%d total)\n", s.StartNumber, s.EndConfigured, s.TotalConfigured)
	fmt.Fprintf(w, "  Processed:  %d unit(s), ended at %d\n", s.Attempted(), s.EndActual)
	fmt.Fprintf(w, "  Result:     %d succeeded, %d failed (%.1f%% success)\n", s.Successful, s.Failed, s.SuccessRate)
	fmt.Fprintf(w, "  Duration:   %s", s.Duration.Round(100*time.Millisecond))
	if s.AvgPerUnit > 0 {
		fmt.Fprintf(w, " (avg %s per successful unit)", s.AvgPerUnit.Round(100*time.Millisecond))
	}
	fmt.Fprintln(w)
	if s.EarlyTermination != nil {
		fmt.Fprintf(w, "  Stopped early after unit %d; %d unit(s) never attempted.\n",
			s.EarlyTermination.AfterNumber, s.EarlyTermination.Remaining)
	}
}
