package position

import (
	"sync"
	"time"

	"fieldtrak/timesheet-agent/internal/models"

	"go.uber.org/zap"
)

// BridgeSource holds the last fix pushed by a companion client (mobile app
// or browser bridge). A fix older than the TTL counts as unavailable, so a
// client that stopped reporting degrades to position-denied rather than
// serving stale coordinates.
type BridgeSource struct {
	mu       sync.RWMutex
	last     *models.Location
	pushedAt time.Time
	ttl      time.Duration
	logger   *zap.Logger
}

// NewBridgeSource creates a bridge source with the given fix TTL.
func NewBridgeSource(ttlSeconds int, logger *zap.Logger) *BridgeSource {
	return &BridgeSource{
		ttl:    time.Duration(ttlSeconds) * time.Second,
		logger: logger,
	}
}

// Push stores a fix from the companion client, replacing any previous one.
func (s *BridgeSource) Push(loc models.Location) {
	s.mu.Lock()
	s.last = &loc
	s.pushedAt = time.Now()
	s.mu.Unlock()

	s.logger.Debug("Position fix received",
		zap.Float64("lat", loc.Lat),
		zap.Float64("lng", loc.Lng),
	)
}

// Current returns the last pushed fix if it is still fresh.
func (s *BridgeSource) Current() (*models.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.last == nil {
		return nil, ErrPositionUnavailable
	}
	if time.Since(s.pushedAt) > s.ttl {
		return nil, ErrPositionUnavailable
	}

	loc := *s.last
	return &loc, nil
}
