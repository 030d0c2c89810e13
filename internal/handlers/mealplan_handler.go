package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/fitbalance/fitbalance-backend/internal/models"
	"github.com/fitbalance/fitbalance-backend/internal/services"
	"github.com/fitbalance/fitbalance-backend/pkg/apperrors"
	"github.com/fitbalance/fitbalance-backend/pkg/middleware"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// MealPlanHandler handles HTTP requests for the daily meal plan.
type MealPlanHandler struct {
	Service *services.MealPlanService
}

// NewMealPlanHandler creates a new instance of MealPlanHandler.
func NewMealPlanHandler(service *services.MealPlanService) *MealPlanHandler {
	return &MealPlanHandler{
		Service: service,
	}
}

// GetTodayPlanHandler returns today's plan, generating one if needed.
func (h *MealPlanHandler) GetTodayPlanHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		writeError(w, apperrors.Auth(apperrors.AuthInvalidCredentials))
		return
	}

	plan, err := h.Service.GetOrCreateTodayPlan(r.Context(), claims.UserID)
	if err != nil {
		log.WithError(err).WithField("userID", claims.UserID).Error("Failed to get today's plan")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, plan)
}

// GetPlanByDateHandler returns the stored plan for a specific day.
func (h *MealPlanHandler) GetPlanByDateHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		writeError(w, apperrors.Auth(apperrors.AuthInvalidCredentials))
		return
	}

	date := mux.Vars(r)["date"]
	plan, err := h.Service.GetPlanForDate(r.Context(), claims.UserID, date)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, plan)
}

// CanRegenerateHandler reports whether the slot's daily regeneration is
// still available. The client uses this to gray out the button.
func (h *MealPlanHandler) CanRegenerateHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		writeError(w, apperrors.Auth(apperrors.AuthInvalidCredentials))
		return
	}

	slot, err := models.ParseSlot(mux.Vars(r)["slot"])
	if err != nil {
		writeError(w, apperrors.Validation(err.Error(), nil))
		return
	}

	plan, err := h.Service.GetOrCreateTodayPlan(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{
		"can_regenerate": services.CanRegenerateSlot(plan, slot),
	})
}

// RegenerateSlotHandler replaces one slot with a freshly generated meal.
func (h *MealPlanHandler) RegenerateSlotHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	slot, err := models.ParseSlot(vars["slot"])
	if err != nil {
		writeError(w, apperrors.Validation(err.Error(), nil))
		return
	}

	plan, err := h.Service.RegenerateMealSlot(r.Context(), vars["id"], slot)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, plan)
}

// SetCompletionHandler toggles a slot's completed state.
func (h *MealPlanHandler) SetCompletionHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	slot, err := models.ParseSlot(vars["slot"])
	if err != nil {
		writeError(w, apperrors.Validation(err.Error(), nil))
		return
	}

	var body struct {
		Completed bool `json:"completed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, apperrors.Validation("invalid request payload", nil))
		return
	}

	plan, err := h.Service.SetSlotCompletion(r.Context(), vars["id"], slot, body.Completed)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, plan)
}

// EditItemsHandler replaces a slot's item list with user-entered rows.
func (h *MealPlanHandler) EditItemsHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	slot, err := models.ParseSlot(vars["slot"])
	if err != nil {
		writeError(w, apperrors.Validation(err.Error(), nil))
		return
	}

	var body struct {
		Items []services.SlotItemEdit `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, apperrors.Validation("invalid request payload", nil))
		return
	}

	plan, err := h.Service.EditSlotItems(r.Context(), vars["id"], slot, body.Items)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, plan)
}
