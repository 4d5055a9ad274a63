package position_test

import (
	"testing"

	"fieldtrak/timesheet-agent/internal/models"
	"fieldtrak/timesheet-agent/internal/position"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBridgeSource(t *testing.T) {
	t.Run(`no fix yet`, func(t *testing.T) {
		source := position.NewBridgeSource(60, zap.NewNop())

		_, err := source.Current()
		require.ErrorIs(t, err, position.ErrPositionUnavailable)
	})

	t.Run(`fresh fix is returned`, func(t *testing.T) {
		source := position.NewBridgeSource(60, zap.NewNop())
		accuracy := 9.0
		source.Push(models.Location{Lat: -36.84, Lng: 174.76, Accuracy: &accuracy})

		loc, err := source.Current()
		require.Nil(t, err)
		require.Equal(t, -36.84, loc.Lat)
		require.Equal(t, 174.76, loc.Lng)
		require.NotNil(t, loc.Accuracy)
		require.Equal(t, 9.0, *loc.Accuracy)
	})

	t.Run(`newer fix replaces older`, func(t *testing.T) {
		source := position.NewBridgeSource(60, zap.NewNop())
		source.Push(models.Location{Lat: 1, Lng: 1})
		source.Push(models.Location{Lat: 2, Lng: 2})

		loc, err := source.Current()
		require.Nil(t, err)
		require.Equal(t, 2.0, loc.Lat)
	})

	t.Run(`expired fix counts as unavailable`, func(t *testing.T) {
		// Zero TTL: every fix is already stale when read
		source := position.NewBridgeSource(0, zap.NewNop())
		source.Push(models.Location{Lat: 1, Lng: 1})

		_, err := source.Current()
		require.ErrorIs(t, err, position.ErrPositionUnavailable)
	})
}
