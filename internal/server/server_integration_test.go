package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"gocv.io/x/gocv"

	"github.com/ayusman/gestify/internal/action"
	"github.com/ayusman/gestify/internal/app"
	"github.com/ayusman/gestify/internal/store"
)

func TestAPI_BindingWorkflow(t *testing.T) {
	// Setup
	tmpDir := t.TempDir()
	s, err := store.New(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	var mu sync.Mutex
	reloads := 0
	srv := New(Config{Store: s, BindingsChanged: func() {
		mu.Lock()
		reloads++
		mu.Unlock()
	}})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	// 1. Create a binding
	createBody := `{"label": "like", "action": "volume-up"}`
	resp, err := client.Post(ts.URL+"/api/bindings", "application/json", bytes.NewBufferString(createBody))
	if err != nil {
		t.Fatalf("POST /api/bindings error = %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	var created struct {
		ID     string `json:"id"`
		Label  string `json:"label"`
		Action string `json:"action"`
	}
	json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()

	if created.Label != "like" {
		t.Errorf("created label = %s, want like", created.Label)
	}

	// 2. The stored table feeds the dispatcher
	dispatcher := action.NewDispatcher(action.NewMockSink(), map[string]action.Action{})
	if _, err := app.ReloadBindings(s.Bindings(), dispatcher); err != nil {
		t.Fatalf("ReloadBindings() error = %v", err)
	}
	if a, _ := dispatcher.ActionFor("like"); a != action.VolumeUp {
		t.Errorf("ActionFor(like) = %q, want volume-up", a)
	}

	// 3. Delete it
	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/bindings/"+created.ID, nil)
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("DELETE error = %v", err)
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("DELETE status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}
	resp.Body.Close()

	mu.Lock()
	defer mu.Unlock()
	if reloads != 2 {
		t.Errorf("BindingsChanged called %d times, want 2", reloads)
	}
}

func TestAPI_HealthCheck(t *testing.T) {
	srv := New(Config{})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var health struct {
		Status string `json:"status"`
		Uptime string `json:"uptime"`
	}
	json.NewDecoder(resp.Body).Decode(&health)

	if health.Status != "ok" {
		t.Errorf("status = %s, want ok", health.Status)
	}
}

func TestEventHub_BroadcastsTriggers(t *testing.T) {
	hub := NewEventHub()
	srv := New(Config{Events: hub})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	// Wait for the hub to register the client
	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client was not registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	firedAt := time.UnixMilli(1700000000000)
	hub.Publish(app.TriggerEvent{
		ID:         "evt-1",
		Label:      "like",
		Action:     action.VolumeUp,
		Confidence: 0.87,
		FiredAt:    firedAt,
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg EventMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}

	if msg.Label != "like" || msg.Action != "volume-up" {
		t.Errorf("unexpected message: %+v", msg)
	}
	if msg.Text != "like (87%)" {
		t.Errorf("text = %q, want %q", msg.Text, "like (87%)")
	}
	if msg.Timestamp != firedAt.UnixMilli() {
		t.Errorf("timestamp = %d, want %d", msg.Timestamp, firedAt.UnixMilli())
	}

	hub.Close()
	if hub.Clients() != 0 {
		t.Errorf("Clients() after Close = %d, want 0", hub.Clients())
	}
}

// staticFrames serves a single blank frame.
type staticFrames struct {
	mat gocv.Mat
}

func (s *staticFrames) Snapshot() (gocv.Mat, bool) {
	return s.mat.Clone(), true
}

func TestStreamHandler_ServesJPEG(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stream test")
	}

	frames := &staticFrames{mat: gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)}
	defer frames.mat.Close()

	ts := httptest.NewServer(New(Config{Frames: frames}))
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/api/stream")
	if err != nil {
		t.Fatalf("GET /api/stream error = %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "multipart/x-mixed-replace") {
		t.Errorf("Content-Type = %q", ct)
	}

	r := bufio.NewReader(resp.Body)
	line, err := r.ReadString('\n')
	if err != nil {
		t.Fatalf("read error = %v", err)
	}
	if line != "--frame\r\n" {
		t.Errorf("first line = %q, want boundary", line)
	}
	line, _ = r.ReadString('\n')
	if line != "Content-Type: image/jpeg\r\n" {
		t.Errorf("part header = %q", line)
	}
}
