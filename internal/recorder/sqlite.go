package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"PatternScout/internal/model"
)

// SQLiteRecorder persists scan history to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	logger *zap.Logger
	mu     sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger *zap.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so ad-hoc analysis queries can read while a scan writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scan_runs (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id        TEXT NOT NULL,
			timestamp     INTEGER NOT NULL,
			pattern       TEXT,
			universe_size INTEGER,
			matched       INTEGER,
			failed        INTEGER,
			elapsed_ms    INTEGER,
			output_path   TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON scan_runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS signals (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id        TEXT NOT NULL,
			timestamp     INTEGER NOT NULL,
			code          TEXT,
			name          TEXT,
			close         REAL,
			pct_change    REAL,
			score         INTEGER,
			advice        TEXT,
			support_ma    TEXT,
			proximity_pct REAL,
			stop_loss     REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_run ON signals(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_code ON signals(code)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordScan stores one run row plus one row per emitted signal.
func (r *SQLiteRecorder) RecordScan(rec *ScanRecord, signals []*model.Signal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().Unix()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO scan_runs
		(run_id, timestamp, pattern, universe_size, matched, failed, elapsed_ms, output_path)
		VALUES (?,?,?,?,?,?,?,?)`,
		rec.RunID, now, rec.Pattern, rec.UniverseSize, rec.Matched, rec.Failed,
		rec.Elapsed.Milliseconds(), rec.OutputPath,
	)
	if err != nil {
		return fmt.Errorf("insert scan run: %w", err)
	}

	for _, sig := range signals {
		_, err = tx.Exec(`INSERT INTO signals
			(run_id, timestamp, code, name, close, pct_change, score, advice, support_ma, proximity_pct, stop_loss)
			VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
			rec.RunID, now, sig.Code, sig.Name, sig.Close, sig.PctChange,
			sig.Score, sig.Advice, sig.SupportMA, sig.ProximityPct, sig.StopLoss,
		)
		if err != nil {
			return fmt.Errorf("insert signal %s: %w", sig.Code, err)
		}
	}

	return tx.Commit()
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info("closing sqlite recorder")
	return r.db.Close()
}
