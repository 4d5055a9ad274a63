package repository

import (
	"database/sql"
	"fmt"
	"time"

	"fieldtrak/timesheet-agent/internal/models"
)

type BreadcrumbRepository struct {
	db *sql.DB
}

func NewBreadcrumbRepository(db *sql.DB) *BreadcrumbRepository {
	return &BreadcrumbRepository{db: db}
}

// Append records one GPS sample for a shift. Breadcrumbs are append-only.
func (r *BreadcrumbRepository) Append(timesheetID string, lat, lng float64, accuracy *float64, loggedAt time.Time) error {
	_, err := r.db.Exec(`
		INSERT INTO gps_breadcrumbs (timesheet_id, lat, lng, accuracy, logged_at)
		VALUES (?, ?, ?, ?, ?)
	`, timesheetID, lat, lng, accuracy, loggedAt)
	if err != nil {
		return fmt.Errorf("failed to append breadcrumb: %w", err)
	}
	return nil
}

// ListByShift returns a shift's full trail ordered by logged_at ascending.
// Ordering happens here on read; writers are not required to arrive in order.
func (r *BreadcrumbRepository) ListByShift(timesheetID string) ([]*models.Breadcrumb, error) {
	rows, err := r.db.Query(`
		SELECT id, timesheet_id, lat, lng, accuracy, logged_at
		FROM gps_breadcrumbs
		WHERE timesheet_id = ?
		ORDER BY logged_at ASC
	`, timesheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query breadcrumbs: %w", err)
	}
	defer rows.Close()

	var breadcrumbs []*models.Breadcrumb
	for rows.Next() {
		var b models.Breadcrumb
		err := rows.Scan(&b.ID, &b.TimesheetID, &b.Lat, &b.Lng, &b.Accuracy, &b.LoggedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan breadcrumb: %w", err)
		}
		breadcrumbs = append(breadcrumbs, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return breadcrumbs, nil
}
