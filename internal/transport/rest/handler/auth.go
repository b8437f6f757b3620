package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"cares/internal/model"
	"cares/internal/service"
	"cares/internal/transport/rest/middleware"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authSvc *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authSvc *service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	resp, err := h.authSvc.Login(req.Username, req.Password)
	if err != nil {
		status, msg := loginErrorStatus(err)
		if status >= http.StatusInternalServerError {
			log.Printf("[%s] login failed: %v", middleware.GetRequestID(r.Context()), err)
		}
		writeError(w, status, msg)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// signing failures stay in the log, the client only sees a generic message
func loginErrorStatus(err error) (int, string) {
	if errors.Is(err, service.ErrInvalidCredentials) {
		return http.StatusUnauthorized, service.ErrInvalidCredentials.Error()
	}
	return http.StatusInternalServerError, "failed to issue token"
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
