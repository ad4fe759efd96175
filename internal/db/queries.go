package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/lucasnoah/defendercheck/internal/checks"
	"github.com/lucasnoah/defendercheck/internal/report"
)

// HistoryEntry is one recorded verdict of one item.
type HistoryEntry struct {
	RunID       string
	Host        string
	EvaluatedAt time.Time
	Item        string
	State       checks.State
	Summary     string
	MetricValue *float64
}

// LogRun records a run and one check_runs row per result in a single transaction.
func (d *DB) LogRun(ctx context.Context, run *checks.Run) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	issues := run.Issues
	if issues == nil {
		issues = []report.Issue{}
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO defender_runs (id, host, evaluated_at, date_format, issues, unknown_fields)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		run.ID, run.Host, run.EvaluatedAt, run.DateFormat.String(), issues, run.Unknown,
	)
	if err != nil {
		return fmt.Errorf("log run: %w", err)
	}

	batch := &pgx.Batch{}
	for i, res := range run.Results {
		var name *string
		var value, warn, crit *float64
		if m := res.Metric; m != nil {
			name, value, warn, crit = &m.Name, &m.Value, m.Warn, m.Crit
		}
		batch.Queue(
			`INSERT INTO check_runs (run_id, position, item, label, state, summary, details, metric_name, metric_value, metric_warn, metric_crit, future)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			run.ID, i, res.Item, res.Label, res.State.String(), res.Summary, res.Details, name, value, warn, crit, res.Future,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("log check results: %w", err)
	}
	return tx.Commit(ctx)
}

// LatestRun returns the most recent run recorded for host, or nil if there is none.
func (d *DB) LatestRun(ctx context.Context, host string) (*checks.Run, error) {
	var run checks.Run
	var format string
	err := d.pool.QueryRow(ctx,
		`SELECT id, host, evaluated_at, date_format, issues, unknown_fields
		 FROM defender_runs WHERE host = $1 ORDER BY evaluated_at DESC, recorded_at DESC LIMIT 1`,
		host,
	).Scan(&run.ID, &run.Host, &run.EvaluatedAt, &format, &run.Issues, &run.Unknown)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get latest run: %w", err)
	}
	if run.DateFormat, err = report.ParseDateFormat(format); err != nil {
		return nil, fmt.Errorf("get latest run: %w", err)
	}
	if len(run.Issues) == 0 {
		run.Issues = nil
	}

	rows, err := d.pool.Query(ctx,
		`SELECT item, label, state, summary, details, metric_name, metric_value, metric_warn, metric_crit, future
		 FROM check_runs WHERE run_id = $1 ORDER BY position`,
		run.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("get run results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var res checks.Result
		var state string
		var details, name *string
		var value, warn, crit *float64
		if err := rows.Scan(&res.Item, &res.Label, &state, &res.Summary, &details, &name, &value, &warn, &crit, &res.Future); err != nil {
			return nil, fmt.Errorf("scan run result: %w", err)
		}
		if res.State, err = checks.ParseState(state); err != nil {
			return nil, fmt.Errorf("scan run result: %w", err)
		}
		if details != nil {
			res.Details = *details
		}
		if name != nil && value != nil {
			res.Metric = &checks.Metric{Name: *name, Value: *value, Warn: warn, Crit: crit}
		}
		run.Results = append(run.Results, res)
	}
	return &run, rows.Err()
}

// History returns the newest recorded verdicts for host, most recent first.
// An empty item matches every item. limit <= 0 means no limit.
func (d *DB) History(ctx context.Context, host, item string, limit int) ([]HistoryEntry, error) {
	query := `SELECT r.id, r.host, r.evaluated_at, c.item, c.state, c.summary, c.metric_value
		 FROM check_runs c JOIN defender_runs r ON r.id = c.run_id
		 WHERE r.host = $1 AND ($2 = '' OR c.item = $2)
		 ORDER BY r.evaluated_at DESC, c.position`
	args := []any{host, item}
	if limit > 0 {
		query += " LIMIT $3"
		args = append(args, limit)
	}

	rows, err := d.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var state string
		if err := rows.Scan(&e.RunID, &e.Host, &e.EvaluatedAt, &e.Item, &state, &e.Summary, &e.MetricValue); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		if e.State, err = checks.ParseState(state); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
