package service_test

import (
	"testing"
	"time"

	"fieldtrak/timesheet-agent/internal/models"
	"fieldtrak/timesheet-agent/internal/repository"
	"fieldtrak/timesheet-agent/internal/service"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// createSubmittedShift creates and closes a shift so it sits in the review
// queue.
func createSubmittedShift(t *testing.T, f *shiftFixture, workerID string) *models.Timesheet {
	t.Helper()

	ts, err := f.timesheets.Create(&models.CreateShiftRequest{
		TeamMemberID: workerID,
		TeamID:       "team-1",
		ClockIn:      time.Now().Add(-8 * time.Hour),
	})
	require.Nil(t, err)

	closed, err := f.timesheets.Close(ts.ID, time.Now(), nil)
	require.Nil(t, err)

	return closed
}

func TestApprove(t *testing.T) {
	t.Run(`approves a submitted shift`, func(t *testing.T) {
		f := newShiftFixture(t)
		rs := service.NewReviewService(f.timesheets, "team-1", zap.NewNop())
		ts := createSubmittedShift(t, f, "worker-1")

		approved, err := rs.Approve(ts.ID, "admin-1")
		require.Nil(t, err)
		require.Equal(t, models.StatusApproved, approved.Status)
		require.NotNil(t, approved.ApprovedBy)
		require.Equal(t, "admin-1", *approved.ApprovedBy)
		require.NotNil(t, approved.ApprovedAt)
	})

	t.Run(`approving twice is a no-op`, func(t *testing.T) {
		f := newShiftFixture(t)
		rs := service.NewReviewService(f.timesheets, "team-1", zap.NewNop())
		ts := createSubmittedShift(t, f, "worker-1")

		first, err := rs.Approve(ts.ID, "admin-1")
		require.Nil(t, err)

		second, err := rs.Approve(ts.ID, "admin-2")
		require.Nil(t, err)
		require.Equal(t, models.StatusApproved, second.Status)
		require.Equal(t, *first.ApprovedBy, *second.ApprovedBy)
	})

	t.Run(`approving an active shift fails`, func(t *testing.T) {
		f := newShiftFixture(t)
		rs := service.NewReviewService(f.timesheets, "team-1", zap.NewNop())

		ts, err := f.timesheets.Create(&models.CreateShiftRequest{
			TeamMemberID: "worker-1",
			ClockIn:      time.Now(),
		})
		require.Nil(t, err)

		_, err = rs.Approve(ts.ID, "admin-1")
		var invalid *service.InvalidTransitionError
		require.ErrorAs(t, err, &invalid)
		require.Equal(t, models.StatusActive, invalid.From)

		// The shift is untouched
		got, err := f.timesheets.GetByID(ts.ID)
		require.Nil(t, err)
		require.Equal(t, models.StatusActive, got.Status)
	})

	t.Run(`missing shift`, func(t *testing.T) {
		f := newShiftFixture(t)
		rs := service.NewReviewService(f.timesheets, "team-1", zap.NewNop())

		_, err := rs.Approve("missing-id", "admin-1")
		require.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestReject(t *testing.T) {
	t.Run(`rejects with a reason`, func(t *testing.T) {
		f := newShiftFixture(t)
		rs := service.NewReviewService(f.timesheets, "team-1", zap.NewNop())
		ts := createSubmittedShift(t, f, "worker-1")

		rejected, err := rs.Reject(ts.ID, "GPS missing")
		require.Nil(t, err)
		require.Equal(t, models.StatusRejected, rejected.Status)
		require.NotNil(t, rejected.RejectionReason)
		require.Equal(t, "GPS missing", *rejected.RejectionReason)
	})

	t.Run(`reason is mandatory`, func(t *testing.T) {
		f := newShiftFixture(t)
		rs := service.NewReviewService(f.timesheets, "team-1", zap.NewNop())
		ts := createSubmittedShift(t, f, "worker-1")

		_, err := rs.Reject(ts.ID, "")
		require.ErrorIs(t, err, service.ErrMissingReason)

		_, err = rs.Reject(ts.ID, "   ")
		require.ErrorIs(t, err, service.ErrMissingReason)

		got, err := f.timesheets.GetByID(ts.ID)
		require.Nil(t, err)
		require.Equal(t, models.StatusSubmitted, got.Status)
	})

	t.Run(`rejecting a rejected shift fails`, func(t *testing.T) {
		f := newShiftFixture(t)
		rs := service.NewReviewService(f.timesheets, "team-1", zap.NewNop())
		ts := createSubmittedShift(t, f, "worker-1")

		_, err := rs.Reject(ts.ID, "GPS missing")
		require.Nil(t, err)

		_, err = rs.Reject(ts.ID, "still missing")
		var invalid *service.InvalidTransitionError
		require.ErrorAs(t, err, &invalid)
	})

	t.Run(`approved is terminal`, func(t *testing.T) {
		f := newShiftFixture(t)
		rs := service.NewReviewService(f.timesheets, "team-1", zap.NewNop())
		ts := createSubmittedShift(t, f, "worker-1")

		_, err := rs.Approve(ts.ID, "admin-1")
		require.Nil(t, err)

		_, err = rs.Reject(ts.ID, "too late")
		var invalid *service.InvalidTransitionError
		require.ErrorAs(t, err, &invalid)
		require.Equal(t, models.StatusApproved, invalid.From)
	})
}

func TestResubmit(t *testing.T) {
	t.Run(`resubmits with edits and clears the reason`, func(t *testing.T) {
		f := newShiftFixture(t)
		rs := service.NewReviewService(f.timesheets, "team-1", zap.NewNop())
		ts := createSubmittedShift(t, f, "worker-1")

		_, err := rs.Reject(ts.ID, "break minutes look wrong")
		require.Nil(t, err)

		breakMinutes := 15
		resubmitted, err := rs.Resubmit(ts.ID, &breakMinutes, nil)
		require.Nil(t, err)
		require.Equal(t, models.StatusSubmitted, resubmitted.Status)
		require.Equal(t, 15, resubmitted.BreakMinutes)
		require.Nil(t, resubmitted.RejectionReason)

		// The corrected shift can go through review again
		approved, err := rs.Approve(ts.ID, "admin-1")
		require.Nil(t, err)
		require.Equal(t, models.StatusApproved, approved.Status)
	})

	t.Run(`only rejected shifts can be resubmitted`, func(t *testing.T) {
		f := newShiftFixture(t)
		rs := service.NewReviewService(f.timesheets, "team-1", zap.NewNop())
		ts := createSubmittedShift(t, f, "worker-1")

		_, err := rs.Resubmit(ts.ID, nil, nil)
		var invalid *service.InvalidTransitionError
		require.ErrorAs(t, err, &invalid)
		require.Equal(t, models.StatusSubmitted, invalid.From)
	})
}

func TestListQueue(t *testing.T) {
	t.Run(`status filter`, func(t *testing.T) {
		f := newShiftFixture(t)
		rs := service.NewReviewService(f.timesheets, "team-1", zap.NewNop())

		submitted := createSubmittedShift(t, f, "worker-1")
		_, err := f.timesheets.Create(&models.CreateShiftRequest{
			TeamMemberID: "worker-2",
			TeamID:       "team-1",
			ClockIn:      time.Now(),
		})
		require.Nil(t, err)

		// Another team's shift never reaches this queue
		_, err = f.timesheets.Create(&models.CreateShiftRequest{
			TeamMemberID: "worker-9",
			TeamID:       "team-2",
			ClockIn:      time.Now(),
		})
		require.Nil(t, err)

		all, err := rs.ListQueue(nil, nil, nil)
		require.Nil(t, err)
		require.Equal(t, 2, len(all))

		status := models.StatusSubmitted
		got, err := rs.ListQueue(&status, nil, nil)
		require.Nil(t, err)
		require.Equal(t, 1, len(got))
		require.Equal(t, submitted.ID, got[0].ID)
	})

	t.Run(`unknown status filter`, func(t *testing.T) {
		f := newShiftFixture(t)
		rs := service.NewReviewService(f.timesheets, "team-1", zap.NewNop())

		status := "archived"
		_, err := rs.ListQueue(&status, nil, nil)
		require.NotNil(t, err)
	})
}
