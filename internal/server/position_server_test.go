package server_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fieldtrak/timesheet-agent/internal/position"
	"fieldtrak/timesheet-agent/internal/server"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) (*server.PositionServer, *position.BridgeSource) {
	t.Helper()

	source := position.NewBridgeSource(60, zap.NewNop())
	return server.NewPositionServer(source, zap.NewNop()), source
}

func TestPositionServer(t *testing.T) {
	t.Run(`valid fix reaches the source`, func(t *testing.T) {
		srv, source := newTestServer(t)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/position-update",
			strings.NewReader(`{"lat": -36.84, "lng": 174.76, "accuracy": 9.0}`))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		loc, err := source.Current()
		require.Nil(t, err)
		require.Equal(t, -36.84, loc.Lat)
		require.Equal(t, 174.76, loc.Lng)
		require.NotNil(t, loc.Accuracy)
		require.Equal(t, 9.0, *loc.Accuracy)
	})

	t.Run(`out-of-range coordinates rejected`, func(t *testing.T) {
		srv, source := newTestServer(t)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/position-update",
			strings.NewReader(`{"lat": 91, "lng": 0}`))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)

		_, err := source.Current()
		require.ErrorIs(t, err, position.ErrPositionUnavailable)
	})

	t.Run(`malformed body rejected`, func(t *testing.T) {
		srv, _ := newTestServer(t)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/position-update",
			strings.NewReader(`not json`))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run(`preflight gets CORS headers`, func(t *testing.T) {
		srv, _ := newTestServer(t)

		req := httptest.NewRequest(http.MethodOptions, "/api/v1/position-update", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run(`only POST accepted`, func(t *testing.T) {
		srv, _ := newTestServer(t)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/position-update", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}
