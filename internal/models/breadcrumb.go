package models

import "time"

// Breadcrumb is one timestamped GPS sample taken while a shift was active.
// Breadcrumbs are append-only and never mutated or deleted.
type Breadcrumb struct {
	ID          int64     `json:"id"`
	TimesheetID string    `json:"timesheet_id"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	Accuracy    *float64  `json:"accuracy,omitempty"`
	LoggedAt    time.Time `json:"logged_at"`
}
