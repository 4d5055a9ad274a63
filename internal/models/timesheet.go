package models

import "time"

// Timesheet status constants. A shift moves active -> submitted ->
// approved/rejected; a rejected shift re-enters submitted on resubmission.
const (
	StatusActive    = "active"
	StatusSubmitted = "submitted"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
)

// Location is a single GPS fix. Accuracy is in meters when the device
// reported one.
type Location struct {
	Lat      float64  `json:"lat"`
	Lng      float64  `json:"lng"`
	Accuracy *float64 `json:"accuracy,omitempty"`
}

// Timesheet represents one clock-in-to-clock-out work session for a field
// worker. ClockOut and the clock-out location are set exactly once, at the
// active -> submitted transition.
type Timesheet struct {
	ID               string     `json:"id"`
	TeamMemberID     string     `json:"team_member_id"`
	TeamID           string     `json:"team_id"`
	JobPackID        *string    `json:"job_pack_id,omitempty"`
	ClockIn          time.Time  `json:"clock_in"`
	ClockOut         *time.Time `json:"clock_out,omitempty"`
	ClockInLocation  *Location  `json:"clock_in_location,omitempty"`
	ClockOutLocation *Location  `json:"clock_out_location,omitempty"`
	IsGpsVerified    bool       `json:"is_gps_verified"`
	BreakMinutes     int        `json:"break_minutes"`
	Notes            *string    `json:"notes,omitempty"`
	RejectionReason  *string    `json:"rejection_reason,omitempty"`
	Status           string     `json:"status"`
	ApprovedBy       *string    `json:"approved_by,omitempty"`
	ApprovedAt       *time.Time `json:"approved_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type CreateShiftRequest struct {
	TeamMemberID string    `json:"team_member_id"`
	TeamID       string    `json:"team_id"`
	JobPackID    *string   `json:"job_pack_id,omitempty"`
	ClockIn      time.Time `json:"clock_in"`
	Location     *Location `json:"location,omitempty"`
}

// UpdateShiftFieldsRequest carries the worker-editable fields. Only non-nil
// fields are applied.
type UpdateShiftFieldsRequest struct {
	BreakMinutes *int    `json:"break_minutes,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}
