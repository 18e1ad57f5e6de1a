package handler

import (
	"net/http"
	"time"

	"toolforge-rest-api/pkg/response"
)

// Handler handles liveness and status HTTP requests.
type Handler struct {
	appName   string
	version   string
	storeType string
	startTime time.Time
}

// New creates a new status handler.
func New(appName, version, storeType string) *Handler {
	return &Handler{
		appName:   appName,
		version:   version,
		storeType: storeType,
		startTime: time.Now(),
	}
}

// Root handles GET /
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Hello from the server"))
}

// Status handles GET /api/status
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]interface{}{
		"app":            h.appName,
		"version":        h.version,
		"store_type":     h.storeType,
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
		"server_time":    time.Now().Format(time.RFC3339),
	})
}
