package service

import (
	"fmt"
	"sync"
	"time"

	"fieldtrak/timesheet-agent/internal/models"
	"fieldtrak/timesheet-agent/internal/position"
	"fieldtrak/timesheet-agent/internal/repository"
	"fieldtrak/timesheet-agent/internal/session"

	"go.uber.org/zap"
)

// ShiftState is the controller's view of the worker's shift.
type ShiftState string

const (
	StateNoActiveShift ShiftState = "no_active_shift"
	StateActive        ShiftState = "active"
)

// ShiftStatus is the display snapshot served to the UI.
type ShiftStatus struct {
	State          ShiftState        `json:"state"`
	Shift          *models.Timesheet `json:"shift,omitempty"`
	ElapsedSeconds int64             `json:"elapsed_seconds"`
}

// ShiftService owns one worker's clock-in/clock-out lifecycle. While a shift
// is active it runs two independent repeating tasks: a local elapsed-time
// tick and a GPS breadcrumb sampler. Both are cancelled together on clock-out
// and on teardown.
type ShiftService struct {
	timesheets  *repository.TimesheetRepository
	breadcrumbs *repository.BreadcrumbRepository
	sessions    *session.Cache
	positions   position.Source
	workerID    string
	teamID      string
	logger      *zap.Logger

	tickInterval       time.Duration
	breadcrumbInterval time.Duration
	onTick             func(elapsed time.Duration) // Optional: display callback

	// opMu serializes clock-in, clock-out and resume so their
	// check-then-act sequences against the store cannot interleave.
	opMu sync.Mutex

	mu       sync.RWMutex
	active   *models.Timesheet
	elapsed  time.Duration
	stopChan chan struct{}
	loopWg   *sync.WaitGroup
}

// NewShiftService creates the controller for one authenticated worker.
// onTick may be nil.
func NewShiftService(
	timesheets *repository.TimesheetRepository,
	breadcrumbs *repository.BreadcrumbRepository,
	sessions *session.Cache,
	positions position.Source,
	workerID string,
	teamID string,
	tickInterval time.Duration,
	breadcrumbInterval time.Duration,
	onTick func(elapsed time.Duration),
	logger *zap.Logger,
) *ShiftService {
	return &ShiftService{
		timesheets:         timesheets,
		breadcrumbs:        breadcrumbs,
		sessions:           sessions,
		positions:          positions,
		workerID:           workerID,
		teamID:             teamID,
		tickInterval:       tickInterval,
		breadcrumbInterval: breadcrumbInterval,
		onTick:             onTick,
		logger:             logger,
	}
}

// Resume reconciles local state with the store after a restart. The session
// cache only provides a hint; the store's answer wins: no active record at
// the store means the hint is stale and gets discarded, an active record
// means the controller resumes with that record's clock-in as timer origin.
func (s *ShiftService) Resume() error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	hint, err := s.sessions.Get(s.workerID)
	if err != nil {
		s.logger.Warn("Failed to read session hint", zap.Error(err))
	}

	active, err := s.timesheets.GetActiveShift(s.workerID)
	if err != nil {
		return fmt.Errorf("failed to query active shift: %w", err)
	}

	if active == nil {
		if hint != "" {
			s.logger.Info("Discarding stale session hint", zap.String("shift_id", hint))
			if err := s.sessions.Clear(s.workerID); err != nil {
				s.logger.Warn("Failed to clear session hint", zap.Error(err))
			}
		}
		s.logger.Info("No active shift to resume", zap.String("worker_id", s.workerID))
		return nil
	}

	if hint != active.ID {
		if err := s.sessions.Set(s.workerID, active.ID); err != nil {
			s.logger.Warn("Failed to refresh session hint", zap.Error(err))
		}
	}

	s.mu.Lock()
	s.active = active
	s.elapsed = time.Since(active.ClockIn)
	s.mu.Unlock()

	s.startLoops(active)
	s.logger.Info("Resumed active shift",
		zap.String("shift_id", active.ID),
		zap.Time("clock_in", active.ClockIn),
	)
	return nil
}

// ClockIn starts a new shift, optionally attributed to a job pack. One
// position fix is requested; failure is non-fatal and the shift is created
// without coordinates.
func (s *ShiftService) ClockIn(jobPackID *string) (*models.Timesheet, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.RLock()
	alreadyActive := s.active != nil
	s.mu.RUnlock()
	if alreadyActive {
		return nil, ErrAlreadyActive
	}

	// Check-then-create against the store. opMu makes this atomic within
	// one controller; two devices racing here is a known gap, the store
	// does not serialize across clients.
	existing, err := s.timesheets.GetActiveShift(s.workerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check for active shift: %w", err)
	}
	if existing != nil {
		return nil, ErrAlreadyActive
	}

	loc := s.requestPosition("clock-in")

	ts, err := s.timesheets.Create(&models.CreateShiftRequest{
		TeamMemberID: s.workerID,
		TeamID:       s.teamID,
		JobPackID:    jobPackID,
		ClockIn:      time.Now(),
		Location:     loc,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create shift: %w", err)
	}

	if err := s.sessions.Set(s.workerID, ts.ID); err != nil {
		// The cache is a hint; reconciliation reads the store anyway.
		s.logger.Warn("Failed to store session hint", zap.Error(err))
	}

	s.mu.Lock()
	s.active = ts
	s.elapsed = 0
	s.mu.Unlock()

	s.startLoops(ts)
	s.logger.Info("Clocked in",
		zap.String("shift_id", ts.ID),
		zap.Bool("gps_verified", ts.IsGpsVerified),
	)
	return ts, nil
}

// ClockOut closes the active shift: timers are cancelled, pending field
// edits are applied, then the shift moves to submitted with clock-out time
// and a best-effort final fix. After this the shift belongs to the review
// workflow.
func (s *ShiftService) ClockOut(breakMinutes *int, notes *string) (*models.Timesheet, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.RLock()
	active := s.active
	s.mu.RUnlock()
	if active == nil {
		return nil, ErrNoActiveShift
	}

	// Cancel the timers before touching the store so no breadcrumb lands
	// after the clock-out timestamp.
	s.stopLoops()

	loc := s.requestPosition("clock-out")

	if breakMinutes != nil || notes != nil {
		if _, err := s.timesheets.UpdateFields(active.ID, &models.UpdateShiftFieldsRequest{
			BreakMinutes: breakMinutes,
			Notes:        notes,
		}); err != nil {
			// The shift is still active at the store; restart the timers so
			// the caller can retry.
			s.startLoops(active)
			return nil, fmt.Errorf("failed to apply shift edits: %w", err)
		}
	}

	ts, err := s.timesheets.Close(active.ID, time.Now(), loc)
	if err != nil {
		s.startLoops(active)
		return nil, fmt.Errorf("failed to close shift: %w", err)
	}

	if err := s.sessions.Clear(s.workerID); err != nil {
		s.logger.Warn("Failed to clear session hint", zap.Error(err))
	}

	s.mu.Lock()
	s.active = nil
	s.elapsed = 0
	s.mu.Unlock()

	s.logger.Info("Clocked out",
		zap.String("shift_id", ts.ID),
		zap.Duration("duration", ts.ClockOut.Sub(ts.ClockIn)),
	)
	return ts, nil
}

// Stop tears down the controller without closing the shift. An active shift
// stays active at the store and is picked up again by Resume.
func (s *ShiftService) Stop() {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.stopLoops()
	s.logger.Info("Shift controller stopped")
}

// Status returns the current display snapshot.
func (s *ShiftService) Status() ShiftStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.active == nil {
		return ShiftStatus{State: StateNoActiveShift}
	}
	return ShiftStatus{
		State:          StateActive,
		Shift:          s.active,
		ElapsedSeconds: int64(s.elapsed.Seconds()),
	}
}

// Elapsed returns the time since clock-in, zero when no shift is active.
func (s *ShiftService) Elapsed() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.elapsed
}

// History returns the worker's shifts, newest first.
func (s *ShiftService) History() ([]*models.Timesheet, error) {
	return s.timesheets.ListForWorker(s.workerID)
}

// Trail returns a shift's breadcrumbs ordered by logged_at ascending.
func (s *ShiftService) Trail(shiftID string) ([]*models.Breadcrumb, error) {
	return s.breadcrumbs.ListByShift(shiftID)
}

// requestPosition asks the source for one fix. Failure is informational
// only; the caller proceeds without coordinates.
func (s *ShiftService) requestPosition(action string) *models.Location {
	loc, err := s.positions.Current()
	if err != nil {
		s.logger.Warn("Position unavailable",
			zap.String("action", action),
			zap.Error(err),
		)
		return nil
	}
	return loc
}

func (s *ShiftService) startLoops(ts *models.Timesheet) {
	stop := make(chan struct{})
	wg := &sync.WaitGroup{}

	s.mu.Lock()
	s.stopChan = stop
	s.loopWg = wg
	s.mu.Unlock()

	wg.Add(2)
	go s.tickLoop(stop, wg, ts.ClockIn)
	go s.breadcrumbLoop(stop, wg, ts.ID)
}

func (s *ShiftService) stopLoops() {
	s.mu.Lock()
	stop := s.stopChan
	wg := s.loopWg
	s.stopChan = nil
	s.loopWg = nil
	s.mu.Unlock()

	if stop == nil {
		return
	}

	select {
	case <-stop:
		// Already stopped
	default:
		close(stop)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		s.logger.Warn("Shift timers did not stop within timeout")
	}
}

// tickLoop updates the elapsed display value. Purely local, no I/O.
func (s *ShiftService) tickLoop(stop chan struct{}, wg *sync.WaitGroup, clockIn time.Time) {
	defer wg.Done()

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			elapsed := time.Since(clockIn)
			s.mu.Lock()
			s.elapsed = elapsed
			s.mu.Unlock()

			if s.onTick != nil {
				s.onTick(elapsed)
			}
		case <-stop:
			return
		}
	}
}

// breadcrumbLoop samples the position on a fixed interval while the shift is
// active.
func (s *ShiftService) breadcrumbLoop(stop chan struct{}, wg *sync.WaitGroup, shiftID string) {
	defer wg.Done()

	ticker := time.NewTicker(s.breadcrumbInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.captureBreadcrumb(stop, shiftID)
		case <-stop:
			return
		}
	}
}

// captureBreadcrumb takes one GPS sample. Every failure here is absorbed:
// breadcrumb capture never interrupts the active shift and never surfaces
// to the worker.
func (s *ShiftService) captureBreadcrumb(stop chan struct{}, shiftID string) {
	loc, err := s.positions.Current()
	if err != nil {
		s.logger.Debug("Breadcrumb skipped, position unavailable", zap.Error(err))
		return
	}

	// Re-check after the position request so nothing is written once the
	// shift closed or the controller tore down.
	select {
	case <-stop:
		return
	default:
	}

	if err := s.breadcrumbs.Append(shiftID, loc.Lat, loc.Lng, loc.Accuracy, time.Now()); err != nil {
		s.logger.Warn("Failed to record breadcrumb",
			zap.String("shift_id", shiftID),
			zap.Error(err),
		)
		return
	}

	s.logger.Debug("Breadcrumb recorded",
		zap.String("shift_id", shiftID),
		zap.Float64("lat", loc.Lat),
		zap.Float64("lng", loc.Lng),
	)
}
