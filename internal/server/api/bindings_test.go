package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ayusman/gestify/internal/store"
)

func TestBindingHandler_List(t *testing.T) {
	s := newTestStore(t)
	handler := NewBindingHandler(s, nil)

	if err := s.Bindings().Create(&store.Binding{Label: "like", Action: "volume-up", Enabled: true}); err != nil {
		t.Fatalf("failed to create binding: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/bindings", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	var response listBindingsResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response.Bindings) != 1 {
		t.Fatalf("expected 1 binding, got %d", len(response.Bindings))
	}
	if response.Bindings[0].Label != "like" || response.Bindings[0].Action != "volume-up" {
		t.Errorf("unexpected binding: %+v", response.Bindings[0])
	}
}

func TestBindingHandler_List_Empty(t *testing.T) {
	s := newTestStore(t)
	handler := NewBindingHandler(s, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/bindings", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if body := rec.Body.String(); body != "{\"bindings\":[]}\n" {
		t.Errorf("unexpected body %q", body)
	}
}

func TestBindingHandler_Create(t *testing.T) {
	s := newTestStore(t)
	changes := 0
	handler := NewBindingHandler(s, func() { changes++ })

	body := `{"label": "fist", "action": "mute", "plugin_name": "media-control"}`
	req := httptest.NewRequest(http.MethodPost, "/api/bindings", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var response bindingResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.ID == "" {
		t.Error("expected an ID")
	}
	if !response.Enabled {
		t.Error("bindings should default to enabled")
	}
	if changes != 1 {
		t.Errorf("onChange called %d times, want 1", changes)
	}

	stored, err := s.Bindings().GetByLabel("fist")
	if err != nil {
		t.Fatalf("binding not stored: %v", err)
	}
	if stored.PluginName != "media-control" {
		t.Errorf("PluginName = %q", stored.PluginName)
	}
}

func TestBindingHandler_Create_Validation(t *testing.T) {
	s := newTestStore(t)
	handler := NewBindingHandler(s, nil)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"invalid json", `{`, http.StatusBadRequest},
		{"missing label", `{"action": "play"}`, http.StatusBadRequest},
		{"missing action", `{"label": "one"}`, http.StatusBadRequest},
		{"unknown action", `{"label": "one", "action": "explode"}`, http.StatusBadRequest},
		{"unknown label", `{"label": "wave", "action": "play"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/bindings", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("expected status %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestBindingHandler_Create_Duplicate(t *testing.T) {
	s := newTestStore(t)
	handler := NewBindingHandler(s, nil)

	for i, want := range []int{http.StatusCreated, http.StatusConflict} {
		body := `{"label": "palm", "action": "unmute"}`
		req := httptest.NewRequest(http.MethodPost, "/api/bindings", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != want {
			t.Errorf("request %d: expected status %d, got %d", i, want, rec.Code)
		}
	}
}

func TestBindingHandler_GetUpdateDelete(t *testing.T) {
	s := newTestStore(t)
	changes := 0
	handler := NewBindingHandler(s, func() { changes++ })

	b := &store.Binding{Label: "three", Action: "rewind", Enabled: true}
	if err := s.Bindings().Create(b); err != nil {
		t.Fatalf("failed to create binding: %v", err)
	}

	// Get
	req := httptest.NewRequest(http.MethodGet, "/api/bindings/"+b.ID, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET expected status %d, got %d", http.StatusOK, rec.Code)
	}

	// Update keeps the label and disables the binding
	req = httptest.NewRequest(http.MethodPut, "/api/bindings/"+b.ID, bytes.NewBufferString(`{"action": "skip", "enabled": false}`))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var updated bindingResponse
	if err := json.NewDecoder(rec.Body).Decode(&updated); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if updated.Label != "three" || updated.Action != "skip" || updated.Enabled {
		t.Errorf("unexpected update result: %+v", updated)
	}

	// Delete
	req = httptest.NewRequest(http.MethodDelete, "/api/bindings/"+b.ID, nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("DELETE expected status %d, got %d", http.StatusNoContent, rec.Code)
	}

	if changes != 2 {
		t.Errorf("onChange called %d times, want 2", changes)
	}

	// Gone
	req = httptest.NewRequest(http.MethodGet, "/api/bindings/"+b.ID, nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET after delete expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestBindingHandler_NotFound(t *testing.T) {
	s := newTestStore(t)
	handler := NewBindingHandler(s, nil)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		req := httptest.NewRequest(method, "/api/bindings/missing", bytes.NewBufferString(`{}`))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected status %d, got %d", method, http.StatusNotFound, rec.Code)
		}
	}
}

func TestBindingHandler_MethodNotAllowed(t *testing.T) {
	s := newTestStore(t)
	handler := NewBindingHandler(s, nil)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodDelete, "/api/bindings"},
		{http.MethodPatch, "/api/bindings"},
		{http.MethodPost, "/api/bindings/some-id"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: expected status %d, got %d", tt.method, tt.path, http.StatusMethodNotAllowed, rec.Code)
		}
	}
}
