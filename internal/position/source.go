package position

import (
	"errors"

	"fieldtrak/timesheet-agent/internal/models"
)

// ErrPositionUnavailable is returned when no usable fix exists. It is
// informational: clock-in, clock-out and breadcrumb capture all proceed
// without coordinates when they see it.
var ErrPositionUnavailable = errors.New("position unavailable")

// Source returns one best-effort coordinate fix per request. Any timeout is
// enforced by the implementation, never by the caller.
type Source interface {
	Current() (*models.Location, error)
}
