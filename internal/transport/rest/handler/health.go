package handler

import (
	"net/http"
	"time"
)

const (
	serviceName = "CARES backend"
	Version     = "0.1.0"
)

// Health handles GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"service":   serviceName,
		"timestamp": float64(time.Now().UnixNano()) / 1e9,
	})
}

// Root handles GET /
func Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": serviceName + " is running",
		"version": Version,
	})
}
