package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"messbook/internal/core"
	"messbook/internal/store"
)

type dutyDaysResponse struct {
	Days []string `json:"days"`
}

type replaceDutyDaysRequest struct {
	Days []string `json:"days"`
}

type toggleDutyDayRequest struct {
	Day string `json:"day"`
}

type nextDutyResponse struct {
	HasDuty bool   `json:"has_duty"`
	Date    string `json:"date,omitempty"`
}

func weekdayNames(days []time.Weekday) []string {
	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, strings.ToLower(d.String()))
	}
	return out
}

func (s *Server) handleGetDuty(w http.ResponseWriter, r *http.Request) {
	days, err := s.duty.DutyDays(r.Context(), ownerFromContext(r.Context()))
	if err != nil {
		s.writeDutyError(w, r, "duty.get", err)
		return
	}
	writeJSON(w, http.StatusOK, dutyDaysResponse{Days: weekdayNames(days)})
}

func (s *Server) handleReplaceDutyDays(w http.ResponseWriter, r *http.Request) {
	var req replaceDutyDaysRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}

	days, err := s.duty.ReplaceDutyDays(r.Context(), ownerFromContext(r.Context()), req.Days)
	if err != nil {
		s.writeDutyError(w, r, "duty.replace", err)
		return
	}
	writeJSON(w, http.StatusOK, dutyDaysResponse{Days: weekdayNames(days)})
}

func (s *Server) handleToggleDutyDay(w http.ResponseWriter, r *http.Request) {
	var req toggleDutyDayRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}

	days, err := s.duty.ToggleDutyDay(r.Context(), ownerFromContext(r.Context()), req.Day)
	if err != nil {
		s.writeDutyError(w, r, "duty.toggle", err)
		return
	}
	writeJSON(w, http.StatusOK, dutyDaysResponse{Days: weekdayNames(days)})
}

func (s *Server) handleNextDuty(w http.ResponseWriter, r *http.Request) {
	next, ok, err := s.duty.NextDuty(r.Context(), ownerFromContext(r.Context()), s.today())
	if err != nil {
		s.writeDutyError(w, r, "duty.next", err)
		return
	}

	resp := nextDutyResponse{HasDuty: ok}
	if ok {
		resp.Date = next.Format(dateLayout)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeDutyError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, core.ErrUnknownWeekday):
		writeError(w, http.StatusBadRequest, "unknown_weekday", "unknown weekday name")
	case errors.Is(err, core.ErrTooManyDutyDays):
		writeError(w, http.StatusUnprocessableEntity, "too_many_duty_days", "at most two duty days per week")
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "profile_not_found", "profile not found")
	case errors.Is(err, store.ErrUnavailable):
		slog.ErrorContext(r.Context(), "Store unavailable", "op", op, "error", err)
		writeError(w, http.StatusServiceUnavailable, "store_unavailable", "storage is temporarily unavailable")
	default:
		slog.ErrorContext(r.Context(), "Duty operation failed", "op", op, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}
