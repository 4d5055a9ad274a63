package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fieldtrak/timesheet-agent/internal/models"
	"fieldtrak/timesheet-agent/internal/repository"

	"go.uber.org/zap"
)

// ReviewService drives the submitted -> approved/rejected -> resubmitted
// workflow across the team's shifts. Approved is terminal.
type ReviewService struct {
	timesheets *repository.TimesheetRepository
	teamID     string
	logger     *zap.Logger
}

func NewReviewService(timesheets *repository.TimesheetRepository, teamID string, logger *zap.Logger) *ReviewService {
	return &ReviewService{
		timesheets: timesheets,
		teamID:     teamID,
		logger:     logger,
	}
}

// Approve moves a submitted shift to approved, recording who approved it and
// when. Approving an already-approved shift is a no-op success; approval
// needs no reason because it has no remedial follow-up.
func (rs *ReviewService) Approve(shiftID, reviewerID string) (*models.Timesheet, error) {
	ts, err := rs.timesheets.GetByID(shiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to load shift: %w", err)
	}

	switch ts.Status {
	case models.StatusApproved:
		return ts, nil
	case models.StatusSubmitted:
	default:
		return nil, &InvalidTransitionError{ShiftID: shiftID, From: ts.Status, To: models.StatusApproved}
	}

	approved, err := rs.timesheets.Approve(shiftID, reviewerID, time.Now())
	if errors.Is(err, repository.ErrStatusConflict) {
		return nil, &InvalidTransitionError{ShiftID: shiftID, From: ts.Status, To: models.StatusApproved}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to approve shift: %w", err)
	}

	rs.logger.Info("Shift approved",
		zap.String("shift_id", shiftID),
		zap.String("reviewer_id", reviewerID),
	)
	return approved, nil
}

// Reject moves a submitted shift to rejected. The reason is mandatory: the
// worker's only remedial action is resubmission, which needs context on what
// to fix.
func (rs *ReviewService) Reject(shiftID, reason string) (*models.Timesheet, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrMissingReason
	}

	ts, err := rs.timesheets.GetByID(shiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to load shift: %w", err)
	}
	if ts.Status != models.StatusSubmitted {
		return nil, &InvalidTransitionError{ShiftID: shiftID, From: ts.Status, To: models.StatusRejected}
	}

	rejected, err := rs.timesheets.Reject(shiftID, reason)
	if errors.Is(err, repository.ErrStatusConflict) {
		return nil, &InvalidTransitionError{ShiftID: shiftID, From: ts.Status, To: models.StatusRejected}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to reject shift: %w", err)
	}

	rs.logger.Info("Shift rejected",
		zap.String("shift_id", shiftID),
		zap.String("reason", reason),
	)
	return rejected, nil
}

// Resubmit moves a rejected shift back into the review queue. Edits to
// break minutes and notes are applied first, then the rejection reason is
// cleared. This is the worker's action, not the reviewer's.
func (rs *ReviewService) Resubmit(shiftID string, breakMinutes *int, notes *string) (*models.Timesheet, error) {
	ts, err := rs.timesheets.GetByID(shiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to load shift: %w", err)
	}
	if ts.Status != models.StatusRejected {
		return nil, &InvalidTransitionError{ShiftID: shiftID, From: ts.Status, To: models.StatusSubmitted}
	}

	if breakMinutes != nil || notes != nil {
		if _, err := rs.timesheets.UpdateFields(shiftID, &models.UpdateShiftFieldsRequest{
			BreakMinutes: breakMinutes,
			Notes:        notes,
		}); err != nil {
			return nil, fmt.Errorf("failed to apply shift edits: %w", err)
		}
	}

	resubmitted, err := rs.timesheets.Resubmit(shiftID)
	if errors.Is(err, repository.ErrStatusConflict) {
		return nil, &InvalidTransitionError{ShiftID: shiftID, From: ts.Status, To: models.StatusSubmitted}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resubmit shift: %w", err)
	}

	rs.logger.Info("Shift resubmitted", zap.String("shift_id", shiftID))
	return resubmitted, nil
}

// ListQueue returns the configured team's shifts for review display,
// optionally filtered by status and clock-in date range.
func (rs *ReviewService) ListQueue(status *string, dateFrom, dateTo *time.Time) ([]*models.Timesheet, error) {
	if status != nil {
		switch *status {
		case models.StatusActive, models.StatusSubmitted, models.StatusApproved, models.StatusRejected:
		default:
			return nil, fmt.Errorf("unknown status filter %q", *status)
		}
	}
	return rs.timesheets.ListForTeam(rs.teamID, status, dateFrom, dateTo)
}
