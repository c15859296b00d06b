package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/gestify/internal/action"
	"github.com/ayusman/gestify/internal/store"
)

// BindingHandler handles HTTP requests for gesture bindings.
type BindingHandler struct {
	store    *store.Store
	onChange func()
}

// NewBindingHandler creates a BindingHandler. onChange, if not nil, runs
// after every successful create, update or delete.
func NewBindingHandler(s *store.Store, onChange func()) *BindingHandler {
	return &BindingHandler{store: s, onChange: onChange}
}

// ServeHTTP routes /api/bindings and /api/bindings/{id}.
func (h *BindingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/bindings")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type bindingRequest struct {
	Label      string          `json:"label"`
	Action     string          `json:"action"`
	PluginName string          `json:"plugin_name"`
	Config     json.RawMessage `json:"config"`
	Enabled    *bool           `json:"enabled"`
}

type bindingResponse struct {
	ID         string          `json:"id"`
	Label      string          `json:"label"`
	Action     string          `json:"action"`
	PluginName string          `json:"plugin_name"`
	Config     json.RawMessage `json:"config,omitempty"`
	Enabled    bool            `json:"enabled"`
	CreatedAt  string          `json:"created_at"`
}

type listBindingsResponse struct {
	Bindings []bindingResponse `json:"bindings"`
}

func toBindingResponse(b *store.Binding) bindingResponse {
	return bindingResponse{
		ID:         b.ID,
		Label:      b.Label,
		Action:     b.Action,
		PluginName: b.PluginName,
		Config:     b.Config,
		Enabled:    b.Enabled,
		CreatedAt:  b.CreatedAt.Format(timeFormat),
	}
}

// validate checks a binding request and returns a client-facing message.
func (h *BindingHandler) validate(req *bindingRequest) string {
	if req.Label == "" {
		return "Label is required"
	}
	if req.Action == "" {
		return "Action is required"
	}
	if _, err := action.Parse(req.Action); err != nil {
		return "Unknown action: " + req.Action
	}

	// Once the label table is seeded, bindings must target a known label
	labels, err := h.store.Labels().Names()
	if err == nil && len(labels) > 0 {
		for _, l := range labels {
			if l == req.Label {
				return ""
			}
		}
		return "Unknown label: " + req.Label
	}
	return ""
}

func (h *BindingHandler) changed() {
	if h.onChange != nil {
		h.onChange()
	}
}

// list handles GET /api/bindings.
func (h *BindingHandler) list(w http.ResponseWriter, r *http.Request) {
	bindings, err := h.store.Bindings().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list bindings")
		return
	}

	response := listBindingsResponse{Bindings: make([]bindingResponse, 0, len(bindings))}
	for _, b := range bindings {
		response.Bindings = append(response.Bindings, toBindingResponse(b))
	}

	writeJSON(w, http.StatusOK, response)
}

// create handles POST /api/bindings.
func (h *BindingHandler) create(w http.ResponseWriter, r *http.Request) {
	var req bindingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if msg := h.validate(&req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	b := &store.Binding{
		Label:      req.Label,
		Action:     req.Action,
		PluginName: req.PluginName,
		Config:     req.Config,
		Enabled:    req.Enabled == nil || *req.Enabled,
	}

	if err := h.store.Bindings().Create(b); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, http.StatusConflict, "Label already has a binding")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to create binding")
		return
	}

	h.changed()
	writeJSON(w, http.StatusCreated, toBindingResponse(b))
}

// get handles GET /api/bindings/{id}.
func (h *BindingHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	b, err := h.store.Bindings().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Binding not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get binding")
		return
	}

	writeJSON(w, http.StatusOK, toBindingResponse(b))
}

// update handles PUT /api/bindings/{id}. Omitted fields keep their value.
func (h *BindingHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	existing, err := h.store.Bindings().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Binding not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get binding")
		return
	}

	var req bindingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Label == "" {
		req.Label = existing.Label
	}
	if req.Action == "" {
		req.Action = existing.Action
	}
	if msg := h.validate(&req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	existing.Label = req.Label
	existing.Action = req.Action
	if req.PluginName != "" {
		existing.PluginName = req.PluginName
	}
	if req.Config != nil {
		existing.Config = req.Config
	}
	if req.Enabled != nil {
		existing.Enabled = *req.Enabled
	}

	if err := h.store.Bindings().Update(existing); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicate):
			writeError(w, http.StatusConflict, "Label already has a binding")
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "Binding not found")
		default:
			writeError(w, http.StatusInternalServerError, "Failed to update binding")
		}
		return
	}

	h.changed()
	writeJSON(w, http.StatusOK, toBindingResponse(existing))
}

// delete handles DELETE /api/bindings/{id}.
func (h *BindingHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Bindings().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Binding not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete binding")
		return
	}

	h.changed()
	w.WriteHeader(http.StatusNoContent)
}
