package handlers

import (
	"net/http"

	"github.com/fitbalance/fitbalance-backend/internal/services"
	"github.com/fitbalance/fitbalance-backend/pkg/apperrors"
	"github.com/fitbalance/fitbalance-backend/pkg/middleware"
	"github.com/gorilla/mux"
)

// NotificationHandler serves the per-user reminder feed.
type NotificationHandler struct {
	Service *services.NotificationService
}

// NewNotificationHandler creates a new instance of NotificationHandler.
func NewNotificationHandler(service *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		Service: service,
	}
}

// ListHandler returns the user's feed, newest first.
func (h *NotificationHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		writeError(w, apperrors.Auth(apperrors.AuthInvalidCredentials))
		return
	}

	notifications, err := h.Service.ListNotifications(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, notifications)
}

// UnreadCountHandler returns the badge counter.
func (h *NotificationHandler) UnreadCountHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		writeError(w, apperrors.Auth(apperrors.AuthInvalidCredentials))
		return
	}

	count, err := h.Service.UnreadCount(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"unread": count})
}

// MarkAllReadHandler resets the unread counter.
func (h *NotificationHandler) MarkAllReadHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		writeError(w, apperrors.Auth(apperrors.AuthInvalidCredentials))
		return
	}

	if err := h.Service.MarkAllRead(r.Context(), claims.UserID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "All notifications marked as read"})
}

// DeleteHandler removes one entry from the feed.
func (h *NotificationHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		writeError(w, apperrors.Auth(apperrors.AuthInvalidCredentials))
		return
	}

	if err := h.Service.DeleteNotification(r.Context(), claims.UserID, mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Notification deleted"})
}
