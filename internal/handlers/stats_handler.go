package handlers

import (
	"net/http"
	"strconv"

	"github.com/fitbalance/fitbalance-backend/internal/services"
	"github.com/fitbalance/fitbalance-backend/pkg/apperrors"
	"github.com/fitbalance/fitbalance-backend/pkg/middleware"
)

// StatsHandler serves the monthly report screens.
type StatsHandler struct {
	Service *services.StatsService
}

// NewStatsHandler creates a new instance of StatsHandler.
func NewStatsHandler(service *services.StatsService) *StatsHandler {
	return &StatsHandler{
		Service: service,
	}
}

// monthsParam reads the ?months= query value; the service clamps it to the
// allowed window sizes.
func monthsParam(r *http.Request) int {
	months, err := strconv.Atoi(r.URL.Query().Get("months"))
	if err != nil {
		return 0
	}
	return months
}

// WeightReportHandler returns the monthly weight rollup.
func (h *StatsHandler) WeightReportHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		writeError(w, apperrors.Auth(apperrors.AuthInvalidCredentials))
		return
	}

	report, err := h.Service.WeightReport(r.Context(), claims.UserID, monthsParam(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// CalorieReportHandler returns the monthly average calorie rollup.
func (h *StatsHandler) CalorieReportHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		writeError(w, apperrors.Auth(apperrors.AuthInvalidCredentials))
		return
	}

	report, err := h.Service.CalorieReport(r.Context(), claims.UserID, monthsParam(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}
