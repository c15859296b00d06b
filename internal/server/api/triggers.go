package api

import (
	"net/http"
	"strconv"

	"github.com/ayusman/gestify/internal/store"
)

// MaxTriggerLimit caps the limit query parameter.
const MaxTriggerLimit = 500

// TriggerHandler serves the trigger history.
type TriggerHandler struct {
	store *store.Store
}

// NewTriggerHandler creates a TriggerHandler.
func NewTriggerHandler(s *store.Store) *TriggerHandler {
	return &TriggerHandler{store: s}
}

type triggerResponse struct {
	ID         string  `json:"id"`
	Label      string  `json:"label"`
	Action     string  `json:"action"`
	Confidence float64 `json:"confidence"`
	FiredAt    string  `json:"fired_at"`
}

type listTriggersResponse struct {
	Triggers []triggerResponse `json:"triggers"`
	Counts   map[string]int    `json:"counts"`
}

// ServeHTTP handles GET /api/triggers?limit=n.
func (h *TriggerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := store.DefaultRecentLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = min(n, MaxTriggerLimit)
	}

	triggers, err := h.store.Triggers().Recent(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list triggers")
		return
	}
	counts, err := h.store.Triggers().CountByLabel()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count triggers")
		return
	}

	response := listTriggersResponse{
		Triggers: make([]triggerResponse, 0, len(triggers)),
		Counts:   counts,
	}
	for _, t := range triggers {
		response.Triggers = append(response.Triggers, triggerResponse{
			ID:         t.ID,
			Label:      t.Label,
			Action:     t.Action,
			Confidence: t.Confidence,
			FiredAt:    t.FiredAt.Format(timeFormat),
		})
	}

	writeJSON(w, http.StatusOK, response)
}
