package http

import (
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

type spendingResponse struct {
	Month    int                     `json:"month"`
	Year     int                     `json:"year"`
	Spending []core.CategorySpending `json:"spending"`
}

func (s *Server) handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	year, month, err := monthYearOrNow(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	summary, err := s.reports.MonthlySummary(r.Context(), year, month)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Monthly summary failed",
			log.FieldError, err,
			log.FieldOperation, log.OpReport,
			log.FieldYear, year,
			log.FieldMonth, month)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleSpendingByCategory(w http.ResponseWriter, r *http.Request) {
	month, err := queryInt(r, "month")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	year, err := queryInt(r, "year")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if month == nil || year == nil {
		writeError(w, http.StatusUnprocessableEntity, "month and year query parameters are required")
		return
	}
	if err := core.ValidateMonth(*month); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	spending, err := s.reports.SpendingByCategory(r.Context(), *year, *month)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Spending report failed",
			log.FieldError, err,
			log.FieldOperation, log.OpReport,
			log.FieldYear, *year,
			log.FieldMonth, *month)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, spendingResponse{
		Month:    *month,
		Year:     *year,
		Spending: spending,
	})
}
