package server

import (
	"encoding/json"
	"net/http"

	"fieldtrak/timesheet-agent/internal/models"
	"fieldtrak/timesheet-agent/internal/position"

	"go.uber.org/zap"
)

// PositionUpdateRequest represents the request body from the companion
// location client.
type PositionUpdateRequest struct {
	Lat       float64  `json:"lat"`
	Lng       float64  `json:"lng"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
	Timestamp int64    `json:"timestamp"`
}

// PositionServer handles HTTP requests from the companion location client.
type PositionServer struct {
	source *position.BridgeSource
	logger *zap.Logger
}

func NewPositionServer(source *position.BridgeSource, logger *zap.Logger) *PositionServer {
	return &PositionServer{
		source: source,
		logger: logger,
	}
}

// ServeHTTP implements http.Handler. The router mounts this handler at the
// position-update path only.
func (s *PositionServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.setCORSHeaders(w)

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	case http.MethodPost:
		s.handlePositionUpdate(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *PositionServer) setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// handlePositionUpdate processes fixes pushed by the companion client
func (s *PositionServer) handlePositionUpdate(w http.ResponseWriter, r *http.Request) {
	var req PositionUpdateRequest

	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		s.logger.Warn("Failed to decode position update request", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Lat < -90 || req.Lat > 90 || req.Lng < -180 || req.Lng > 180 {
		s.logger.Warn("Rejected out-of-range coordinates",
			zap.Float64("lat", req.Lat),
			zap.Float64("lng", req.Lng),
		)
		http.Error(w, "Invalid coordinates", http.StatusBadRequest)
		return
	}

	s.source.Push(models.Location{
		Lat:      req.Lat,
		Lng:      req.Lng,
		Accuracy: req.Accuracy,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
	})
}
