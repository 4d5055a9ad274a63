package session

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Cache is a durable worker-keyed slot holding the id of the currently
// active shift. It survives process restarts and exists only to speed up
// reconciliation; the timesheet store remains the source of truth, so
// callers treat every value here as a hint.
type Cache struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewCache(db *sql.DB, logger *zap.Logger) *Cache {
	return &Cache{
		db:     db,
		logger: logger,
	}
}

// Set records the active shift id for a worker, replacing any previous hint.
func (c *Cache) Set(workerID, shiftID string) error {
	_, err := c.db.Exec(`
		INSERT INTO session_slots (worker_id, active_shift_id, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(worker_id) DO UPDATE SET
			active_shift_id = excluded.active_shift_id,
			updated_at = excluded.updated_at
	`, workerID, shiftID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set session slot: %w", err)
	}

	c.logger.Debug("Session hint stored",
		zap.String("worker_id", workerID),
		zap.String("shift_id", shiftID),
	)
	return nil
}

// Get returns the stored shift id for a worker, or "" when there is none.
func (c *Cache) Get(workerID string) (string, error) {
	var shiftID string
	err := c.db.QueryRow(`
		SELECT active_shift_id FROM session_slots WHERE worker_id = ?
	`, workerID).Scan(&shiftID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get session slot: %w", err)
	}
	return shiftID, nil
}

// Clear removes the worker's hint. Clearing an empty slot is not an error.
func (c *Cache) Clear(workerID string) error {
	_, err := c.db.Exec(`DELETE FROM session_slots WHERE worker_id = ?`, workerID)
	if err != nil {
		return fmt.Errorf("failed to clear session slot: %w", err)
	}

	c.logger.Debug("Session hint cleared", zap.String("worker_id", workerID))
	return nil
}
