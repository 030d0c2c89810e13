package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/fitbalance/fitbalance-backend/pkg/apperrors"
)

// errorResponse is the JSON body every failed request returns.
type errorResponse struct {
	Error    string            `json:"error"`
	Code     string            `json:"code"`
	AuthCode string            `json:"auth_code,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeError maps the service error taxonomy onto HTTP statuses and renders
// the structured body, including per-field validation messages.
func writeError(w http.ResponseWriter, err error) {
	appErr, ok := err.(*apperrors.Error)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: "internal server error",
			Code:  string(apperrors.CodePersistence),
		})
		return
	}

	status := http.StatusInternalServerError
	switch appErr.Code {
	case apperrors.CodeNotFound:
		status = http.StatusNotFound
	case apperrors.CodeValidation:
		status = http.StatusUnprocessableEntity
	case apperrors.CodeGeneration:
		status = http.StatusBadGateway
	case apperrors.CodeAuth:
		status = http.StatusUnauthorized
	case apperrors.CodePersistence:
		status = http.StatusInternalServerError
	}

	writeJSON(w, status, errorResponse{
		Error:    appErr.Message,
		Code:     string(appErr.Code),
		AuthCode: string(appErr.AuthCode),
		Fields:   appErr.Fields,
	})
}
