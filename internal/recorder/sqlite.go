package recorder

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists the history to a SQLite database.
type SQLiteRecorder struct {
	db *sqlx.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Debug().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS purchases (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			queue         TEXT NOT NULL,
			item          TEXT NOT NULL,
			cost          TEXT NOT NULL,
			forced        INTEGER NOT NULL DEFAULT 0,
			balance_after TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_purchases_ts ON purchases(timestamp)`,

		`CREATE TABLE IF NOT EXISTS budget_changes (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			queue         TEXT NOT NULL,
			amount        TEXT NOT NULL,
			interval_days INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_budget_ts ON budget_changes(timestamp)`,

		`CREATE TABLE IF NOT EXISTS queue_events (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			kind      TEXT NOT NULL,
			queue     TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_queue_events_ts ON queue_events(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordPurchase(evt *PurchaseEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO purchases
		(timestamp, queue, item, cost, forced, balance_after)
		VALUES (?,?,?,?,?,?)`,
		evt.At.Unix(), evt.Queue, evt.Item, evt.Cost.Exact(), evt.Forced, evt.BalanceAfter.Exact(),
	)
	return err
}

func (r *SQLiteRecorder) RecordBudget(evt *BudgetEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO budget_changes
		(timestamp, queue, amount, interval_days)
		VALUES (?,?,?,?)`,
		evt.At.Unix(), evt.Queue, strconv.FormatFloat(evt.Amount, 'f', -1, 64), int64(evt.IntervalInDays),
	)
	return err
}

func (r *SQLiteRecorder) RecordQueueEvent(evt *QueueEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO queue_events (timestamp, kind, queue) VALUES (?,?,?)`,
		evt.At.Unix(), evt.Kind, evt.Queue,
	)
	return err
}

// Recent returns up to limit events across all tables, newest first.
func (r *SQLiteRecorder) Recent(limit int) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var events []Event
	err := r.db.Select(&events, `
		SELECT timestamp, kind, queue, detail, amount FROM (
			SELECT timestamp, id, 'PURCHASE' AS kind, queue, item AS detail, cost AS amount
			FROM purchases
			UNION ALL
			SELECT timestamp, id, 'BUDGET', queue, CAST(interval_days AS TEXT) || ' days', amount
			FROM budget_changes
			UNION ALL
			SELECT timestamp, id, kind, queue, '', ''
			FROM queue_events
		)
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	return events, nil
}

func (r *SQLiteRecorder) Close() error {
	log.Debug().Msg("closing sqlite recorder")
	return r.db.Close()
}
