package database

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

type DB struct {
	*sql.DB
	logger *zap.Logger
}

func New(storagePath string, logger *zap.Logger) (*DB, error) {
	db, err := sql.Open("sqlite", storagePath+"?_foreign_keys=1&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	database := &DB{
		DB:     db,
		logger: logger,
	}

	if err := database.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Database connection established", zap.String("path", storagePath))
	return database, nil
}

func (db *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		// Shift records
		`CREATE TABLE IF NOT EXISTS timesheets (
			id TEXT PRIMARY KEY,
			team_member_id TEXT NOT NULL,
			team_id TEXT NOT NULL DEFAULT '',
			job_pack_id TEXT,
			clock_in TIMESTAMP NOT NULL,
			clock_out TIMESTAMP,
			clock_in_lat REAL,
			clock_in_lng REAL,
			clock_in_accuracy REAL,
			clock_out_lat REAL,
			clock_out_lng REAL,
			clock_out_accuracy REAL,
			is_gps_verified INTEGER NOT NULL DEFAULT 0,
			break_minutes INTEGER NOT NULL DEFAULT 0,
			notes TEXT,
			rejection_reason TEXT,
			status TEXT NOT NULL,
			approved_by TEXT,
			approved_at TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_timesheets_member ON timesheets(team_member_id)`,
		`CREATE INDEX IF NOT EXISTS idx_timesheets_team ON timesheets(team_id)`,
		`CREATE INDEX IF NOT EXISTS idx_timesheets_status ON timesheets(status)`,
		// GPS breadcrumb trail, append-only
		`CREATE TABLE IF NOT EXISTS gps_breadcrumbs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timesheet_id TEXT NOT NULL REFERENCES timesheets(id),
			lat REAL NOT NULL,
			lng REAL NOT NULL,
			accuracy REAL,
			logged_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_breadcrumbs_timesheet ON gps_breadcrumbs(timesheet_id)`,
		// Local session slot: one active-shift hint per worker
		`CREATE TABLE IF NOT EXISTS session_slots (
			worker_id TEXT PRIMARY KEY,
			active_shift_id TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	db.logger.Info("Database migrations completed")
	return nil
}

func (db *DB) Close() error {
	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	db.logger.Info("Database connection closed")
	return nil
}
