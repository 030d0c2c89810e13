package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/fitbalance/fitbalance-backend/internal/config"
	"github.com/fitbalance/fitbalance-backend/internal/services"
	"github.com/fitbalance/fitbalance-backend/pkg/apperrors"
	jwtutil "github.com/fitbalance/fitbalance-backend/pkg/jwt"
	"github.com/fitbalance/fitbalance-backend/pkg/middleware"
	log "github.com/sirupsen/logrus"
)

// UserHandler handles HTTP requests related to accounts and profiles.
type UserHandler struct {
	Service *services.UserService
	Config  *config.Config
}

// NewUserHandler creates a new instance of UserHandler.
func NewUserHandler(service *services.UserService, cfg *config.Config) *UserHandler {
	return &UserHandler{
		Service: service,
		Config:  cfg,
	}
}

// RegisterUserHandler handles user registration.
func (h *UserHandler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		log.WithError(err).Warn("Failed to decode registration request")
		writeError(w, apperrors.Validation("invalid request payload", nil))
		return
	}

	user, err := h.Service.RegisterUser(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := jwtutil.GenerateToken(user.ID.Hex(), user.Email, h.Config.JWTSecret, h.Config.TokenExpiry)
	if err != nil {
		log.WithError(err).Error("Failed to generate JWT token")
		writeError(w, apperrors.Persistence("failed to generate token", err))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// LoginUserHandler handles user login.
func (h *UserHandler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	var credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
		log.WithError(err).Warn("Failed to decode login request")
		writeError(w, apperrors.Validation("invalid request payload", nil))
		return
	}

	user, err := h.Service.AuthenticateUser(r.Context(), credentials.Email, credentials.Password)
	if err != nil {
		log.WithField("email", credentials.Email).Warn("Authentication failed")
		writeError(w, err)
		return
	}

	token, err := jwtutil.GenerateToken(user.ID.Hex(), user.Email, h.Config.JWTSecret, h.Config.TokenExpiry)
	if err != nil {
		log.WithError(err).Error("Failed to generate JWT token")
		writeError(w, apperrors.Persistence("failed to generate token", err))
		return
	}

	log.WithField("userID", user.ID.Hex()).Info("User logged in successfully")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// GetProfileHandler returns the logged-in user's profile.
func (h *UserHandler) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		writeError(w, apperrors.Auth(apperrors.AuthInvalidCredentials))
		return
	}

	user, err := h.Service.GetUser(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// UpdateProfileHandler applies a profile edit for the logged-in user.
func (h *UserHandler) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		writeError(w, apperrors.Auth(apperrors.AuthInvalidCredentials))
		return
	}

	var input services.ProfileInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		log.WithError(err).Warn("Failed to decode profile update request")
		writeError(w, apperrors.Validation("invalid request payload", nil))
		return
	}

	user, err := h.Service.SaveProfile(r.Context(), claims.UserID, input)
	if err != nil {
		writeError(w, err)
		return
	}

	log.WithField("userID", claims.UserID).Info("Profile updated")
	writeJSON(w, http.StatusOK, user)
}

// RequestPasswordResetHandler starts the email-based password reset flow.
func (h *UserHandler) RequestPasswordResetHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, apperrors.Validation("invalid request payload", nil))
		return
	}

	if err := h.Service.RequestPasswordReset(r.Context(), body.Email); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "If the email exists, a reset code has been sent",
	})
}

// ResetPasswordHandler consumes a reset token and sets the new password.
func (h *UserHandler) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, apperrors.Validation("invalid request payload", nil))
		return
	}

	if err := h.Service.ResetPassword(r.Context(), body.Token, body.NewPassword); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password has been reset"})
}
