package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"fieldtrak/timesheet-agent/internal/repository"
	"fieldtrak/timesheet-agent/internal/service"

	"go.uber.org/zap"
)

type ShiftHandler struct {
	service *service.ShiftService
	logger  *zap.Logger
}

func NewShiftHandler(service *service.ShiftService, logger *zap.Logger) *ShiftHandler {
	return &ShiftHandler{
		service: service,
		logger:  logger,
	}
}

type clockInRequest struct {
	JobPackID *string `json:"job_pack_id,omitempty"`
}

type clockOutRequest struct {
	BreakMinutes *int    `json:"break_minutes,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}

func (h *ShiftHandler) ClockIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req clockInRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.logger.Error("Failed to decode request", zap.Error(err))
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	ts, err := h.service.ClockIn(req.JobPackID)
	if err != nil {
		h.logger.Error("Failed to clock in", zap.Error(err))
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(ts)
}

func (h *ShiftHandler) ClockOut(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req clockOutRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.logger.Error("Failed to decode request", zap.Error(err))
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	ts, err := h.service.ClockOut(req.BreakMinutes, req.Notes)
	if err != nil {
		h.logger.Error("Failed to clock out", zap.Error(err))
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ts)
}

func (h *ShiftHandler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.service.Status())
}

func (h *ShiftHandler) History(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	shifts, err := h.service.History()
	if err != nil {
		h.logger.Error("Failed to get shift history", zap.Error(err))
		http.Error(w, "Failed to get shift history", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(shifts)
}

func (h *ShiftHandler) Trail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	shiftID := r.URL.Query().Get("shift_id")
	if shiftID == "" {
		http.Error(w, "Missing shift_id parameter", http.StatusBadRequest)
		return
	}

	breadcrumbs, err := h.service.Trail(shiftID)
	if err != nil {
		h.logger.Error("Failed to get breadcrumb trail", zap.Error(err))
		http.Error(w, "Failed to get breadcrumb trail", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(breadcrumbs)
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	var invalid *service.InvalidTransitionError
	switch {
	case errors.Is(err, service.ErrAlreadyActive),
		errors.Is(err, service.ErrNoActiveShift):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, service.ErrMissingReason):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &invalid):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, repository.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}
