package db

import (
	"database/sql"
	"fmt"
	"path/filepath"

	"refine-arb/internal/logger"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	sql *sql.DB
}

// Open opens (or creates) the SQLite database under dataDir and runs
// migrations.
func Open(dataDir string) (*DB, error) {
	path := filepath.Join(dataDir, "refine-arb.db")
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	d := &DB{sql: sqlDB}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	logger.Success("DB", fmt.Sprintf("Opened %s", path))
	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate() error {
	version := 0
	// Try to read current version
	d.sql.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)

	if version < 1 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

			CREATE TABLE IF NOT EXISTS snapshot_cache (
				date       TEXT NOT NULL,
				region_id  INTEGER NOT NULL,
				payload    TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				PRIMARY KEY (date, region_id)
			);

			CREATE TABLE IF NOT EXISTS day_volume_cache (
				date      TEXT NOT NULL,
				region_id INTEGER NOT NULL,
				type_id   INTEGER NOT NULL,
				volume    INTEGER NOT NULL,
				PRIMARY KEY (date, region_id, type_id)
			);

			CREATE TABLE IF NOT EXISTS scan_runs (
				id           INTEGER PRIMARY KEY AUTOINCREMENT,
				date         TEXT NOT NULL,
				region_id    INTEGER NOT NULL,
				station_id   INTEGER NOT NULL,
				created_at   TEXT NOT NULL,
				opp_count    INTEGER NOT NULL,
				total_gross  TEXT NOT NULL,
				total_cost   TEXT NOT NULL,
				total_profit TEXT NOT NULL,
				duration_ms  INTEGER NOT NULL DEFAULT 0
			);
			CREATE INDEX IF NOT EXISTS idx_scan_runs_date ON scan_runs(date);

			CREATE TABLE IF NOT EXISTS opportunities (
				id        INTEGER PRIMARY KEY AUTOINCREMENT,
				run_id    INTEGER NOT NULL REFERENCES scan_runs(id),
				time      TEXT NOT NULL,
				type_id   INTEGER NOT NULL,
				type_name TEXT NOT NULL,
				gross     TEXT NOT NULL,
				cost      TEXT NOT NULL,
				profit    TEXT NOT NULL,
				margin    REAL NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_opportunities_run ON opportunities(run_id);
			CREATE INDEX IF NOT EXISTS idx_opportunities_type ON opportunities(type_id);

			CREATE TABLE IF NOT EXISTS opportunity_orders (
				id             INTEGER PRIMARY KEY AUTOINCREMENT,
				opportunity_id INTEGER NOT NULL REFERENCES opportunities(id),
				side           TEXT NOT NULL,
				type_id        INTEGER NOT NULL,
				price          TEXT NOT NULL,
				volume         INTEGER NOT NULL,
				is_market      INTEGER NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_opp_orders ON opportunity_orders(opportunity_id);

			INSERT OR IGNORE INTO schema_version (version) VALUES (1);
		`)
		if err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
		logger.Info("DB", "Applied migration v1")
	}

	return nil
}
