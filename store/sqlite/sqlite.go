/*
Package sqlite provides a SQLite-backed implementation of the run store.

PURPOSE:
  Persists completed simulation runs and their per-period series for
  later inspection. The simulation core itself never touches storage;
  the API layer saves a run after it completes.

KEY TABLES:
  runs:        One row per completed run (terminal state)
  run_periods: One row per recorded period, keyed (run_id, t)

  Monetary columns are stored as TEXT holding exact decimal strings,
  never floats.

APPEND-ONLY:
  Runs are immutable history: there are no UPDATE or DELETE statements.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better
  concurrency: multiple readers don't block, a single writer at a time.

USAGE:
  store, err := sqlite.New("./data/runs.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - simulation/runstore.go: Interface definition
  - simulation/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/debt-engine/simulation"
)

// Store implements simulation.RunStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Compile-time check that Store implements simulation.RunStore.
var _ simulation.RunStore = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id                  TEXT PRIMARY KEY,
		model               TEXT NOT NULL,
		outcome             TEXT NOT NULL,
		t                   INTEGER NOT NULL,
		net_profit          TEXT NOT NULL,
		current_capital     TEXT NOT NULL,
		bank_loan           TEXT NOT NULL,
		within_grace_period INTEGER NOT NULL,
		created_at          TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS run_periods (
		run_id          TEXT NOT NULL REFERENCES runs(id),
		t               INTEGER NOT NULL,
		initial_capital TEXT NOT NULL,
		current_capital TEXT NOT NULL,
		bank_loan       TEXT NOT NULL,
		debt_payment    TEXT NOT NULL,
		net_profit      TEXT NOT NULL,
		PRIMARY KEY (run_id, t)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// =============================================================================
// RUN STORE IMPLEMENTATION
// =============================================================================

// SaveRun records a completed run and its series atomically.
func (s *Store) SaveRun(ctx context.Context, run simulation.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save run: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, model, outcome, t, net_profit, current_capital, bank_loan, within_grace_period, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Model, run.Result.Outcome.String(), run.Result.T,
		run.Result.NetProfit.String(), run.Result.CurrentCapital.String(),
		run.Result.BankLoan.String(), boolInt(run.Result.WithinGracePeriod),
		run.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_periods (run_id, t, initial_capital, current_capital, bank_loan, debt_payment, net_profit)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare periods: %w", err)
	}
	defer stmt.Close()

	for _, rec := range run.Series {
		if _, err := stmt.ExecContext(ctx, run.ID, rec.T,
			rec.InitialCapital.String(), rec.CurrentCapital.String(),
			rec.BankLoan.String(), rec.DebtPayment.String(), rec.NetProfit.String()); err != nil {
			return fmt.Errorf("insert period t=%d: %w", rec.T, err)
		}
	}

	return tx.Commit()
}

// GetRun returns a run with its full series.
func (s *Store) GetRun(ctx context.Context, id string) (*simulation.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, model, outcome, t, net_profit, current_capital, bank_loan, within_grace_period, created_at
		FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, simulation.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load run: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT t, initial_capital, current_capital, bank_loan, debt_payment, net_profit
		FROM run_periods WHERE run_id = ? ORDER BY t`, id)
	if err != nil {
		return nil, fmt.Errorf("load periods: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rec                                                simulation.Record
			initial, current, bankLoan, debtPayment, netProfit string
		)
		if err := rows.Scan(&rec.T, &initial, &current, &bankLoan, &debtPayment, &netProfit); err != nil {
			return nil, fmt.Errorf("scan period: %w", err)
		}
		if rec.InitialCapital, err = decimal.NewFromString(initial); err != nil {
			return nil, fmt.Errorf("parse initial_capital: %w", err)
		}
		if rec.CurrentCapital, err = decimal.NewFromString(current); err != nil {
			return nil, fmt.Errorf("parse current_capital: %w", err)
		}
		if rec.BankLoan, err = decimal.NewFromString(bankLoan); err != nil {
			return nil, fmt.Errorf("parse bank_loan: %w", err)
		}
		if rec.DebtPayment, err = decimal.NewFromString(debtPayment); err != nil {
			return nil, fmt.Errorf("parse debt_payment: %w", err)
		}
		if rec.NetProfit, err = decimal.NewFromString(netProfit); err != nil {
			return nil, fmt.Errorf("parse net_profit: %w", err)
		}
		run.Series = append(run.Series, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate periods: %w", err)
	}
	return run, nil
}

// ListRuns returns run summaries, newest first, without series.
func (s *Store) ListRuns(ctx context.Context) ([]simulation.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, model, outcome, t, net_profit, current_capital, bank_loan, within_grace_period, created_at
		FROM runs ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []simulation.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// =============================================================================
// SCANNING
// =============================================================================

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*simulation.Run, error) {
	var (
		run                          simulation.Run
		outcome                      string
		netProfit, current, bankLoan string
		withinGrace                  int
		createdAt                    string
	)
	if err := row.Scan(&run.ID, &run.Model, &outcome, &run.Result.T,
		&netProfit, &current, &bankLoan, &withinGrace, &createdAt); err != nil {
		return nil, err
	}

	run.Result.Outcome = simulation.ParseOutcome(outcome)
	run.Result.WithinGracePeriod = withinGrace != 0

	var err error
	if run.Result.NetProfit, err = decimal.NewFromString(netProfit); err != nil {
		return nil, fmt.Errorf("parse net_profit: %w", err)
	}
	if run.Result.CurrentCapital, err = decimal.NewFromString(current); err != nil {
		return nil, fmt.Errorf("parse current_capital: %w", err)
	}
	if run.Result.BankLoan, err = decimal.NewFromString(bankLoan); err != nil {
		return nil, fmt.Errorf("parse bank_loan: %w", err)
	}
	if run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &run, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
