package http

import (
	"net/http"
)

type trendPointResponse struct {
	Date   string `json:"date"`
	Amount string `json:"amount"`
}

type activityItemResponse struct {
	Kind        string `json:"kind"`
	ID          string `json:"id"`
	Date        string `json:"date"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

type dashboardResponse struct {
	TotalExpenses      string `json:"total_expenses"`
	TotalContributions string `json:"total_contributions"`
	MonthExpenses      string `json:"month_expenses"`
	MonthContributions string `json:"month_contributions"`
	Balance            string `json:"balance"`
	Direction          string `json:"direction"`

	NextDuty string `json:"next_duty,omitempty"`
	HasDuty  bool   `json:"has_duty"`

	Trend    []trendPointResponse   `json:"trend"`
	Activity []activityItemResponse `json:"activity"`

	FetchError string `json:"fetch_error,omitempty"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ov, err := s.dashboard.Overview(r.Context(), ownerFromContext(r.Context()), s.today())
	if err != nil {
		s.writeRecordError(w, r, "dashboard", err)
		return
	}

	resp := dashboardResponse{
		TotalExpenses:      ov.TotalExpenses.String(),
		TotalContributions: ov.TotalContributions.String(),
		MonthExpenses:      ov.MonthExpenses.String(),
		MonthContributions: ov.MonthContributions.String(),
		Balance:            ov.Balance.String(),
		Direction:          ov.Direction,
		HasDuty:            ov.HasNextDuty,
		Trend:              make([]trendPointResponse, 0, len(ov.Trend)),
		Activity:           make([]activityItemResponse, 0, len(ov.Activity)),
	}
	if ov.HasNextDuty {
		resp.NextDuty = ov.NextDuty.Format(dateLayout)
	}
	if ov.FetchErr != nil {
		resp.FetchError = ov.FetchErr.Error()
	}
	for _, p := range ov.Trend {
		resp.Trend = append(resp.Trend, trendPointResponse{
			Date:   p.Date.Format(dateLayout),
			Amount: p.Amount.String(),
		})
	}
	for _, a := range ov.Activity {
		resp.Activity = append(resp.Activity, activityItemResponse{
			Kind:        a.Kind,
			ID:          a.ID,
			Date:        a.Date.Format(dateLayout),
			Amount:      a.Amount.String(),
			Description: a.Description,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}
