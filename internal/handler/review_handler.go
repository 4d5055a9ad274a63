package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"fieldtrak/timesheet-agent/internal/service"

	"go.uber.org/zap"
)

type ReviewHandler struct {
	service *service.ReviewService
	logger  *zap.Logger
}

func NewReviewHandler(service *service.ReviewService, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		logger:  logger,
	}
}

type approveRequest struct {
	ReviewerID string `json:"reviewer_id"`
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

type resubmitRequest struct {
	BreakMinutes *int    `json:"break_minutes,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}

func (h *ReviewHandler) Queue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var status *string
	if s := r.URL.Query().Get("status"); s != "" {
		status = &s
	}

	dateFrom, err := parseDateParam(r, "date_from")
	if err != nil {
		http.Error(w, "Invalid date_from parameter", http.StatusBadRequest)
		return
	}
	dateTo, err := parseDateParam(r, "date_to")
	if err != nil {
		http.Error(w, "Invalid date_to parameter", http.StatusBadRequest)
		return
	}

	shifts, err := h.service.ListQueue(status, dateFrom, dateTo)
	if err != nil {
		h.logger.Error("Failed to list review queue", zap.Error(err))
		http.Error(w, "Failed to list review queue", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(shifts)
}

func (h *ReviewHandler) Approve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	shiftID := r.URL.Query().Get("id")
	if shiftID == "" {
		http.Error(w, "Missing id parameter", http.StatusBadRequest)
		return
	}

	var req approveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode request", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ReviewerID == "" {
		http.Error(w, "Missing reviewer_id", http.StatusBadRequest)
		return
	}

	ts, err := h.service.Approve(shiftID, req.ReviewerID)
	if err != nil {
		h.logger.Error("Failed to approve shift", zap.Error(err))
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ts)
}

func (h *ReviewHandler) Reject(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	shiftID := r.URL.Query().Get("id")
	if shiftID == "" {
		http.Error(w, "Missing id parameter", http.StatusBadRequest)
		return
	}

	var req rejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode request", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ts, err := h.service.Reject(shiftID, req.Reason)
	if err != nil {
		h.logger.Error("Failed to reject shift", zap.Error(err))
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ts)
}

func (h *ReviewHandler) Resubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	shiftID := r.URL.Query().Get("id")
	if shiftID == "" {
		http.Error(w, "Missing id parameter", http.StatusBadRequest)
		return
	}

	var req resubmitRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.logger.Error("Failed to decode request", zap.Error(err))
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	ts, err := h.service.Resubmit(shiftID, req.BreakMinutes, req.Notes)
	if err != nil {
		h.logger.Error("Failed to resubmit shift", zap.Error(err))
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ts)
}

func parseDateParam(r *http.Request, name string) (*time.Time, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return nil, nil
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		// Fall back to bare dates like 2026-08-23
		t, err = time.Parse("2006-01-02", value)
		if err != nil {
			return nil, err
		}
	}
	return &t, nil
}
