// Package database persists priced batches to Postgres and InfluxDB.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/tantralabs/fxpricer/logger"
	"github.com/tantralabs/fxpricer/models"
	"github.com/tantralabs/fxpricer/settings"
)

const schema = `
CREATE TABLE IF NOT EXISTS fx_option_results (
	run_id   TEXT NOT NULL,
	position INTEGER NOT NULL,
	trade_id TEXT NOT NULL,
	pv       DOUBLE PRECISION NOT NULL,
	delta    DOUBLE PRECISION NOT NULL,
	vega     DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (run_id, position)
);
CREATE TABLE IF NOT EXISTS fx_portfolio_summaries (
	run_id        TEXT PRIMARY KEY,
	started_at    TIMESTAMPTZ NOT NULL,
	total_pv      DOUBLE PRECISION NOT NULL,
	total_delta   DOUBLE PRECISION NOT NULL,
	total_vega    DOUBLE PRECISION NOT NULL,
	num_of_trades INTEGER NOT NULL
);`

const insertResult = `insert into fx_option_results(run_id, position, trade_id, pv, delta, vega)
values (:run_id, :position, :trade_id, :pv, :delta, :vega);`

const insertSummary = `insert into fx_portfolio_summaries(run_id, started_at, total_pv, total_delta, total_vega, num_of_trades)
values (:run_id, :started_at, :total_pv, :total_delta, :total_vega, :num_of_trades);`

type resultRecord struct {
	RunID    string `db:"run_id"`
	Position int    `db:"position"`
	models.Result
}

type summaryRecord struct {
	RunID     string    `db:"run_id"`
	StartedAt time.Time `db:"started_at"`
	models.Summary
}

// Connect opens and pings a Postgres connection.
func Connect(cfg settings.Postgres) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect to postgres at %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	return db, nil
}

// PostgresSink stores each batch in a single transaction keyed by its run id.
type PostgresSink struct {
	db *sqlx.DB
}

func NewPostgresSink(db *sqlx.DB) *PostgresSink {
	return &PostgresSink{db: db}
}

func (s *PostgresSink) Name() string {
	return "postgres"
}

func (s *PostgresSink) Write(ctx context.Context, batch models.Batch) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := writeBatch(ctx, tx, batch); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Errorf("Rollback of run %s failed: %v", batch.RunID, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run %s: %w", batch.RunID, err)
	}
	logger.Debugf("Stored run %s (%d results) in postgres", batch.RunID, len(batch.Results))
	return nil
}

func writeBatch(ctx context.Context, tx *sqlx.Tx, batch models.Batch) error {
	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	for i, r := range batch.Results {
		record := resultRecord{RunID: batch.RunID, Position: i, Result: r}
		if _, err := tx.NamedExecContext(ctx, insertResult, record); err != nil {
			return fmt.Errorf("insert result %s: %w", r.ID, err)
		}
	}
	record := summaryRecord{RunID: batch.RunID, StartedAt: batch.StartedAt, Summary: batch.Summary}
	if _, err := tx.NamedExecContext(ctx, insertSummary, record); err != nil {
		return fmt.Errorf("insert summary: %w", err)
	}
	return nil
}

func (s *PostgresSink) Close() error {
	return s.db.Close()
}
