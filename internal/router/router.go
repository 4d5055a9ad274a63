package router

import (
	"net/http"

	"fieldtrak/timesheet-agent/internal/handler"
	"fieldtrak/timesheet-agent/internal/server"

	"go.uber.org/zap"
)

func New(shiftHandler *handler.ShiftHandler, reviewHandler *handler.ReviewHandler, positionServer *server.PositionServer, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Shift endpoints (the worker's own lifecycle)
	mux.HandleFunc("/api/v1/shifts/clock-in", shiftHandler.ClockIn)
	mux.HandleFunc("/api/v1/shifts/clock-out", shiftHandler.ClockOut)
	mux.HandleFunc("/api/v1/shifts/status", shiftHandler.Status)
	mux.HandleFunc("/api/v1/shifts", shiftHandler.History)
	mux.HandleFunc("/api/v1/shifts/breadcrumbs", shiftHandler.Trail)

	// Position fixes pushed by the companion location client
	mux.Handle("/api/v1/position-update", positionServer)

	// Review endpoints (team admin)
	mux.HandleFunc("/api/v1/review/queue", reviewHandler.Queue)
	mux.HandleFunc("/api/v1/review/approve", reviewHandler.Approve)
	mux.HandleFunc("/api/v1/review/reject", reviewHandler.Reject)
	mux.HandleFunc("/api/v1/review/resubmit", reviewHandler.Resubmit)

	// Logging middleware
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Info("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote_addr", r.RemoteAddr),
		)
		mux.ServeHTTP(w, r)
	})
}
