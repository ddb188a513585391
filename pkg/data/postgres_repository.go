package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ducminhle1904/crypto-wfo-analyzer/pkg/walkforward"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// DefaultQueryTimeout bounds a single candidate query
const DefaultQueryTimeout = 30 * time.Second

// candidatesQuery selects a lab's backtests whose range lies inside the window.
// Rows without a recorded range belong to every window; rows with a single NULL bound never match.
const candidatesQuery = `
	SELECT id, lab_id, roi, win_rate, total_trades, max_drawdown, profit_factor, sharpe_ratio,
	       parameters, window_start, window_end
	FROM lab_backtests
	WHERE lab_id = $1
	  AND ((window_start IS NULL AND window_end IS NULL)
	       OR (window_start >= $2 AND window_end <= $3))
	ORDER BY id`

// candidateRow maps a lab_backtests row; nullable metrics default to zero
type candidateRow struct {
	ID           string          `db:"id"`
	LabID        string          `db:"lab_id"`
	ROI          sql.NullFloat64 `db:"roi"`
	WinRate      sql.NullFloat64 `db:"win_rate"`
	TotalTrades  sql.NullInt64   `db:"total_trades"`
	MaxDrawdown  sql.NullFloat64 `db:"max_drawdown"`
	ProfitFactor sql.NullFloat64 `db:"profit_factor"`
	SharpeRatio  sql.NullFloat64 `db:"sharpe_ratio"`
	Parameters   []byte          `db:"parameters"`
	WindowStart  sql.NullTime    `db:"window_start"`
	WindowEnd    sql.NullTime    `db:"window_end"`
}

func (row candidateRow) toCandidate() (walkforward.Candidate, error) {
	c := walkforward.Candidate{
		ID:    row.ID,
		LabID: row.LabID,
		Metrics: walkforward.Metrics{
			ROI:          row.ROI.Float64,
			WinRate:      row.WinRate.Float64,
			TotalTrades:  int(row.TotalTrades.Int64),
			MaxDrawdown:  row.MaxDrawdown.Float64,
			ProfitFactor: row.ProfitFactor.Float64,
			SharpeRatio:  row.SharpeRatio.Float64,
		},
	}
	if row.WindowStart.Valid {
		c.WindowStart = row.WindowStart.Time
	}
	if row.WindowEnd.Valid {
		c.WindowEnd = row.WindowEnd.Time
	}

	if len(row.Parameters) > 0 {
		if err := json.Unmarshal(row.Parameters, &c.Parameters); err != nil {
			return c, fmt.Errorf("invalid parameters for candidate %s: %w", row.ID, err)
		}
	}

	return c, nil
}

// PostgresRepository serves candidates from the lab_backtests table
type PostgresRepository struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewPostgresRepository creates a PostgreSQL candidate repository
func NewPostgresRepository(db *sqlx.DB, timeout time.Duration) *PostgresRepository {
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return &PostgresRepository{
		db:      db,
		timeout: timeout,
	}
}

// OpenPostgres connects to PostgreSQL and configures the pool
func OpenPostgres(dsn string, maxOpenConns int) (*sqlx.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database DSN is required")
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
		db.SetMaxIdleConns(maxOpenConns / 2)
	}
	db.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// GetCandidates implements walkforward.CandidateRepository
func (r *PostgresRepository) GetCandidates(ctx context.Context, labID string, window walkforward.Window) ([]walkforward.Candidate, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var rows []candidateRow
	if err := r.db.SelectContext(ctx, &rows, candidatesQuery, labID, window.Start, window.End); err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}

	candidates := make([]walkforward.Candidate, 0, len(rows))
	for _, row := range rows {
		c, err := row.toCandidate()
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}

	return candidates, nil
}
