package api

import (
	"net/http"

	"github.com/ayusman/gestify/internal/store"
)

// LabelHandler serves the class id to label table.
type LabelHandler struct {
	store *store.Store
}

// NewLabelHandler creates a LabelHandler.
func NewLabelHandler(s *store.Store) *LabelHandler {
	return &LabelHandler{store: s}
}

type listLabelsResponse struct {
	Labels []store.Label `json:"labels"`
}

// ServeHTTP handles GET /api/labels.
func (h *LabelHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	labels, err := h.store.Labels().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list labels")
		return
	}
	if labels == nil {
		labels = []store.Label{}
	}

	writeJSON(w, http.StatusOK, listLabelsResponse{Labels: labels})
}
