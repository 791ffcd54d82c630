// File: internal/store/store.go
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/ghosthand/api/schemas"
)

// DBPool abstracts the pgxpool.Pool so tests can substitute a mock.
type DBPool interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// Store persists batch run summaries to PostgreSQL.
type Store struct {
	pool DBPool
	log  *zap.Logger
}

// New verifies the connection and returns a Store.
func New(ctx context.Context, pool DBPool, logger *zap.Logger) (*Store, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Store{
		pool: pool,
		log:  logger.Named("store"),
	}, nil
}

const createBatchRunsSQL = `
    CREATE TABLE IF NOT EXISTS batch_runs (
        run_id            TEXT PRIMARY KEY,
        sequence_name     TEXT NOT NULL,
        start_number      INTEGER NOT NULL,
        total_configured  INTEGER NOT NULL,
        end_configured    INTEGER NOT NULL,
        end_actual        INTEGER NOT NULL,
        successful        INTEGER NOT NULL,
        failed            INTEGER NOT NULL,
        success_rate      DOUBLE PRECISION NOT NULL,
        started_at        TIMESTAMPTZ NOT NULL,
        duration_ms       BIGINT NOT NULL,
        avg_per_unit_ms   BIGINT NOT NULL,
        early_termination JSONB
    );
`

// EnsureSchema creates the batch_runs table when it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createBatchRunsSQL); err != nil {
		return fmt.Errorf("failed to create batch_runs table: %w", err)
	}
	return nil
}

const insertBatchRunSQL = `
    INSERT INTO batch_runs (
        run_id, sequence_name, start_number, total_configured, end_configured,
        end_actual, successful, failed, success_rate, started_at,
        duration_ms, avg_per_unit_ms, early_termination
    ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
`

// SaveSummary records one completed batch run. The summary is immutable, so
// this is a plain insert keyed by run ID.
func (s *Store) SaveSummary(ctx context.Context, summary *schemas.BatchSummary) error {
	if summary == nil {
		return fmt.Errorf("cannot save a nil batch summary")
	}

	var termination any
	if summary.EarlyTermination != nil {
		raw, err := json.Marshal(summary.EarlyTermination)
		if err != nil {
			return fmt.Errorf("encoding early termination: %w", err)
		}
		termination = json.RawMessage(raw)
	}

	// Store timestamps in UTC so rows compare cleanly across hosts.
	startedAtUTC := summary.StartedAt.UTC()

	_, err := s.pool.Exec(ctx, insertBatchRunSQL,
		summary.RunID, summary.SequenceName,
		summary.StartNumber, summary.TotalConfigured, summary.EndConfigured,
		summary.EndActual, summary.Successful, summary.Failed,
		summary.SuccessRate, startedAtUTC,
		summary.Duration.Milliseconds(), summary.AvgPerUnit.Milliseconds(),
		termination,
	)
	if err != nil {
		return fmt.Errorf("saving batch summary %s: %w", summary.RunID, err)
	}

	s.log.Debug("batch summary persisted",
		zap.String("run_id", summary.RunID),
		zap.String("sequence", summary.SequenceName),
	)
	return nil
}

const selectRecentRunsSQL = `
    SELECT run_id, sequence_name, start_number, total_configured, end_configured,
           end_actual, successful, failed, success_rate, started_at,
           duration_ms, avg_per_unit_ms, early_termination
    FROM batch_runs
    WHERE sequence_name = $1
    ORDER BY started_at DESC
    LIMIT $2;
`

// RecentRuns returns up to limit summaries for a sequence, newest first.
func (s *Store) RecentRuns(ctx context.Context, sequenceName string, limit int) ([]schemas.BatchSummary, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.pool.Query(ctx, selectRecentRunsSQL, sequenceName, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query batch runs: %w", err)
	}
	defer rows.Close()

	var summaries []schemas.BatchSummary
	for rows.Next() {
		var (
			summary     schemas.BatchSummary
			durationMS  int64
			avgMS       int64
			termination []byte
		)
		err := rows.Scan(
			&summary.RunID, &summary.SequenceName,
			&summary.StartNumber, &summary.TotalConfigured, &summary.EndConfigured,
			&summary.EndActual, &summary.Successful, &summary.Failed,
			&summary.SuccessRate, &summary.StartedAt,
			&durationMS, &avgMS, &termination,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan batch run row: %w", err)
		}

		summary.Duration = time.Duration(durationMS) * time.Millisecond
		summary.AvgPerUnit = time.Duration(avgMS) * time.Millisecond
		if len(termination) > 0 && string(termination) != "null" {
			var et schemas.EarlyTermination
			if err := json.Unmarshal(termination, &et); err != nil {
				return nil, fmt.Errorf("decoding early termination for run %s: %w", summary.RunID, err)
			}
			summary.EarlyTermination = &et
		}

		summaries = append(summaries, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}

	return summaries, nil
}
