package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"messbook/internal/core"
	"messbook/internal/store"
)

const dateLayout = "2006-01-02"

type createExpenseRequest struct {
	Date        string   `json:"date"`
	Amount      string   `json:"amount"`
	Items       []string `json:"items"`
	Description string   `json:"description"`
}

type createContributionRequest struct {
	Date   string `json:"date"`
	Amount string `json:"amount"`
}

type expenseResponse struct {
	ID          string   `json:"id"`
	Date        string   `json:"date"`
	Amount      string   `json:"amount"`
	Items       []string `json:"items"`
	Description string   `json:"description"`
}

type contributionResponse struct {
	ID     string `json:"id"`
	Date   string `json:"date"`
	Amount string `json:"amount"`
	Status string `json:"status"`
}

// List payloads carry fetch_error when the store could not be refreshed
// and the records are a stale snapshot.
type expenseListResponse struct {
	Expenses   []expenseResponse `json:"expenses"`
	FetchError string            `json:"fetch_error,omitempty"`
}

type contributionListResponse struct {
	Contributions []contributionResponse `json:"contributions"`
	FetchError    string                 `json:"fetch_error,omitempty"`
}

func toExpenseResponse(e core.Expense) expenseResponse {
	items := e.Items
	if items == nil {
		items = []string{}
	}
	return expenseResponse{
		ID:          e.ID,
		Date:        e.Date.Format(dateLayout),
		Amount:      e.Amount.String(),
		Items:       items,
		Description: e.Description,
	}
}

func toContributionResponse(c core.Contribution) contributionResponse {
	return contributionResponse{
		ID:     c.ID,
		Date:   c.Date.Format(dateLayout),
		Amount: c.Amount.String(),
		Status: string(c.Status),
	}
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	owner := ownerFromContext(r.Context())
	snap, err := s.records.ListExpenses(r.Context(), owner)
	if err != nil {
		s.writeRecordError(w, r, "expenses.list", err)
		return
	}

	resp := expenseListResponse{Expenses: make([]expenseResponse, 0, len(snap.Records))}
	for _, e := range snap.Records {
		resp.Expenses = append(resp.Expenses, toExpenseResponse(e))
	}
	if snap.Stale() {
		resp.FetchError = snap.FetchErr.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}

	date, amount, ok := s.parseRecordFields(w, req.Date, req.Amount)
	if !ok {
		return
	}

	owner := ownerFromContext(r.Context())
	e, err := s.records.CreateExpense(r.Context(), owner, date, amount, req.Items, req.Description)
	if err != nil {
		s.writeRecordError(w, r, "expenses.create", err)
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseResponse(e))
}

func (s *Server) handleListContributions(w http.ResponseWriter, r *http.Request) {
	owner := ownerFromContext(r.Context())
	snap, err := s.records.ListContributions(r.Context(), owner)
	if err != nil {
		s.writeRecordError(w, r, "contributions.list", err)
		return
	}

	resp := contributionListResponse{Contributions: make([]contributionResponse, 0, len(snap.Records))}
	for _, c := range snap.Records {
		resp.Contributions = append(resp.Contributions, toContributionResponse(c))
	}
	if snap.Stale() {
		resp.FetchError = snap.FetchErr.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateContribution(w http.ResponseWriter, r *http.Request) {
	var req createContributionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}

	date, amount, ok := s.parseRecordFields(w, req.Date, req.Amount)
	if !ok {
		return
	}

	owner := ownerFromContext(r.Context())
	c, err := s.records.CreateContribution(r.Context(), owner, date, amount)
	if err != nil {
		s.writeRecordError(w, r, "contributions.create", err)
		return
	}
	writeJSON(w, http.StatusCreated, toContributionResponse(c))
}

// parseRecordFields validates the shared date and amount fields. On failure
// the error response has already been written.
func (s *Server) parseRecordFields(w http.ResponseWriter, rawDate, rawAmount string) (core.Date, core.Money, bool) {
	t, err := time.Parse(dateLayout, rawDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
		return core.Date{}, core.Money{}, false
	}

	cents, err := core.ParseDecimalToCents(rawAmount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_amount", "amount must be a non-negative decimal")
		return core.Date{}, core.Money{}, false
	}

	return core.DateOf(t), core.Money{Cents: cents}, true
}

func (s *Server) writeRecordError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidAmount) || errors.Is(err, core.ErrInvalidDate) || errors.Is(err, core.ErrEmptyOwner):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, store.ErrUnavailable):
		slog.ErrorContext(r.Context(), "Store unavailable", "op", op, "error", err)
		writeError(w, http.StatusServiceUnavailable, "store_unavailable", "storage is temporarily unavailable")
	default:
		slog.ErrorContext(r.Context(), "Record operation failed", "op", op, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}
