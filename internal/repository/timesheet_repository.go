package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fieldtrak/timesheet-agent/internal/models"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a timesheet id matches no record.
var ErrNotFound = errors.New("timesheet not found")

// ErrStatusConflict is returned when a status-guarded update matched no rows,
// meaning the record was not in the status the transition requires.
var ErrStatusConflict = errors.New("timesheet not in expected status")

const timesheetColumns = `id, team_member_id, team_id, job_pack_id, clock_in, clock_out,
	clock_in_lat, clock_in_lng, clock_in_accuracy,
	clock_out_lat, clock_out_lng, clock_out_accuracy,
	is_gps_verified, break_minutes, notes, rejection_reason, status,
	approved_by, approved_at, created_at, updated_at`

type TimesheetRepository struct {
	db *sql.DB
}

func NewTimesheetRepository(db *sql.DB) *TimesheetRepository {
	return &TimesheetRepository{db: db}
}

// Create inserts a new shift with status=active. IsGpsVerified is derived
// from the presence of a clock-in location, computed here once and stored.
func (r *TimesheetRepository) Create(req *models.CreateShiftRequest) (*models.Timesheet, error) {
	id := uuid.NewString()
	now := time.Now()

	var lat, lng, accuracy *float64
	if req.Location != nil {
		lat = &req.Location.Lat
		lng = &req.Location.Lng
		accuracy = req.Location.Accuracy
	}
	gpsVerified := req.Location != nil

	query := `
		INSERT INTO timesheets (
			id, team_member_id, team_id, job_pack_id, clock_in,
			clock_in_lat, clock_in_lng, clock_in_accuracy,
			is_gps_verified, break_minutes, status, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?, ?)
	`

	_, err := r.db.Exec(
		query,
		id,
		req.TeamMemberID,
		req.TeamID,
		req.JobPackID,
		req.ClockIn,
		lat,
		lng,
		accuracy,
		gpsVerified,
		models.StatusActive,
		now,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create timesheet: %w", err)
	}

	return &models.Timesheet{
		ID:              id,
		TeamMemberID:    req.TeamMemberID,
		TeamID:          req.TeamID,
		JobPackID:       req.JobPackID,
		ClockIn:         req.ClockIn,
		ClockInLocation: req.Location,
		IsGpsVerified:   gpsVerified,
		Status:          models.StatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func (r *TimesheetRepository) GetByID(id string) (*models.Timesheet, error) {
	query := fmt.Sprintf(`SELECT %s FROM timesheets WHERE id = ?`, timesheetColumns)

	ts, err := scanTimesheet(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("timesheet %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get timesheet: %w", err)
	}

	return ts, nil
}

// GetActiveShift returns the worker's active shift, or nil when there is
// none.
func (r *TimesheetRepository) GetActiveShift(workerID string) (*models.Timesheet, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM timesheets
		WHERE team_member_id = ? AND status = ?
		ORDER BY clock_in DESC
		LIMIT 1
	`, timesheetColumns)

	ts, err := scanTimesheet(r.db.QueryRow(query, workerID, models.StatusActive))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active shift: %w", err)
	}

	return ts, nil
}

// Close moves an active shift to submitted and sets the clock-out time and
// location. The update is guarded on status=active.
func (r *TimesheetRepository) Close(id string, clockOut time.Time, loc *models.Location) (*models.Timesheet, error) {
	var lat, lng, accuracy *float64
	if loc != nil {
		lat = &loc.Lat
		lng = &loc.Lng
		accuracy = loc.Accuracy
	}

	result, err := r.db.Exec(`
		UPDATE timesheets
		SET status = ?, clock_out = ?, clock_out_lat = ?, clock_out_lng = ?,
			clock_out_accuracy = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`, models.StatusSubmitted, clockOut, lat, lng, accuracy, time.Now(), id, models.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to close timesheet: %w", err)
	}

	if err := requireRow(result); err != nil {
		return nil, err
	}

	return r.GetByID(id)
}

// UpdateFields applies the worker-editable fields. Only non-nil fields are
// written.
func (r *TimesheetRepository) UpdateFields(id string, req *models.UpdateShiftFieldsRequest) (*models.Timesheet, error) {
	setParts := []string{"updated_at = ?"}
	args := []interface{}{time.Now()}

	if req.BreakMinutes != nil {
		if *req.BreakMinutes < 0 {
			return nil, fmt.Errorf("break minutes must be non-negative")
		}
		setParts = append(setParts, "break_minutes = ?")
		args = append(args, *req.BreakMinutes)
	}
	if req.Notes != nil {
		setParts = append(setParts, "notes = ?")
		args = append(args, *req.Notes)
	}

	if len(setParts) == 1 {
		// Nothing to apply
		return r.GetByID(id)
	}

	setClause := setParts[0]
	for i := 1; i < len(setParts); i++ {
		setClause += ", " + setParts[i]
	}

	query := fmt.Sprintf(`UPDATE timesheets SET %s WHERE id = ?`, setClause)
	args = append(args, id)

	result, err := r.db.Exec(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update timesheet fields: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("timesheet %s: %w", id, ErrNotFound)
	}

	return r.GetByID(id)
}

// Approve moves a submitted shift to approved. The update is guarded on
// status=submitted.
func (r *TimesheetRepository) Approve(id, reviewerID string, at time.Time) (*models.Timesheet, error) {
	result, err := r.db.Exec(`
		UPDATE timesheets
		SET status = ?, approved_by = ?, approved_at = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`, models.StatusApproved, reviewerID, at, time.Now(), id, models.StatusSubmitted)
	if err != nil {
		return nil, fmt.Errorf("failed to approve timesheet: %w", err)
	}

	if err := requireRow(result); err != nil {
		return nil, err
	}

	return r.GetByID(id)
}

// Reject moves a submitted shift to rejected and records the reason.
func (r *TimesheetRepository) Reject(id, reason string) (*models.Timesheet, error) {
	result, err := r.db.Exec(`
		UPDATE timesheets
		SET status = ?, rejection_reason = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`, models.StatusRejected, reason, time.Now(), id, models.StatusSubmitted)
	if err != nil {
		return nil, fmt.Errorf("failed to reject timesheet: %w", err)
	}

	if err := requireRow(result); err != nil {
		return nil, err
	}

	return r.GetByID(id)
}

// Resubmit moves a rejected shift back to submitted and clears the rejection
// reason.
func (r *TimesheetRepository) Resubmit(id string) (*models.Timesheet, error) {
	result, err := r.db.Exec(`
		UPDATE timesheets
		SET status = ?, rejection_reason = NULL, updated_at = ?
		WHERE id = ? AND status = ?
	`, models.StatusSubmitted, time.Now(), id, models.StatusRejected)
	if err != nil {
		return nil, fmt.Errorf("failed to resubmit timesheet: %w", err)
	}

	if err := requireRow(result); err != nil {
		return nil, err
	}

	return r.GetByID(id)
}

// ListForWorker returns all of a worker's shifts, newest first.
func (r *TimesheetRepository) ListForWorker(workerID string) ([]*models.Timesheet, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM timesheets
		WHERE team_member_id = ?
		ORDER BY clock_in DESC
	`, timesheetColumns)

	rows, err := r.db.Query(query, workerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query timesheets: %w", err)
	}
	defer rows.Close()

	return collectTimesheets(rows)
}

// ListForTeam returns one team's shifts, optionally filtered by status and
// clock-in date range. Filtering is a display concern, not a state one.
func (r *TimesheetRepository) ListForTeam(teamID string, status *string, dateFrom, dateTo *time.Time) ([]*models.Timesheet, error) {
	query := fmt.Sprintf(`SELECT %s FROM timesheets WHERE team_id = ?`, timesheetColumns)
	args := []interface{}{teamID}

	if status != nil {
		query += " AND status = ?"
		args = append(args, *status)
	}
	if dateFrom != nil {
		query += " AND clock_in >= ?"
		args = append(args, *dateFrom)
	}
	if dateTo != nil {
		query += " AND clock_in <= ?"
		args = append(args, *dateTo)
	}
	query += " ORDER BY clock_in DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query timesheets: %w", err)
	}
	defer rows.Close()

	return collectTimesheets(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTimesheet(row rowScanner) (*models.Timesheet, error) {
	var ts models.Timesheet
	var inLat, inLng, inAcc, outLat, outLng, outAcc *float64

	err := row.Scan(
		&ts.ID,
		&ts.TeamMemberID,
		&ts.TeamID,
		&ts.JobPackID,
		&ts.ClockIn,
		&ts.ClockOut,
		&inLat,
		&inLng,
		&inAcc,
		&outLat,
		&outLng,
		&outAcc,
		&ts.IsGpsVerified,
		&ts.BreakMinutes,
		&ts.Notes,
		&ts.RejectionReason,
		&ts.Status,
		&ts.ApprovedBy,
		&ts.ApprovedAt,
		&ts.CreatedAt,
		&ts.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if inLat != nil && inLng != nil {
		ts.ClockInLocation = &models.Location{Lat: *inLat, Lng: *inLng, Accuracy: inAcc}
	}
	if outLat != nil && outLng != nil {
		ts.ClockOutLocation = &models.Location{Lat: *outLat, Lng: *outLng, Accuracy: outAcc}
	}

	return &ts, nil
}

func collectTimesheets(rows *sql.Rows) ([]*models.Timesheet, error) {
	var timesheets []*models.Timesheet
	for rows.Next() {
		ts, err := scanTimesheet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan timesheet: %w", err)
		}
		timesheets = append(timesheets, ts)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return timesheets, nil
}

func requireRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrStatusConflict
	}
	return nil
}
