package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/gestify/internal/app"
)

// Controller is the part of the detection session the status endpoint drives.
type Controller interface {
	Status() app.Status
	SetEnabled(enabled bool)
}

// StatusHandler reports and toggles detection.
type StatusHandler struct {
	ctrl     Controller
	onToggle func(enabled bool)
}

// NewStatusHandler creates a StatusHandler. onToggle, if not nil, runs after
// a POST changes the enabled flag.
func NewStatusHandler(ctrl Controller, onToggle func(enabled bool)) *StatusHandler {
	return &StatusHandler{ctrl: ctrl, onToggle: onToggle}
}

type setStatusRequest struct {
	Enabled *bool `json:"enabled"`
}

// ServeHTTP handles GET and POST /api/status.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.ctrl.Status())
	case http.MethodPost:
		var req setStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if req.Enabled == nil {
			writeError(w, http.StatusBadRequest, "Enabled is required")
			return
		}

		h.ctrl.SetEnabled(*req.Enabled)
		if h.onToggle != nil {
			h.onToggle(*req.Enabled)
		}
		writeJSON(w, http.StatusOK, h.ctrl.Status())
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
