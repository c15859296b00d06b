package action

import (
	"context"
	"sync"
	"time"
)

// MockSink records delivered actions for testing.
type MockSink struct {
	mu        sync.Mutex
	connected bool
	err       error
	actions   []Action
	seeks     []time.Duration
}

// NewMockSink creates a connected MockSink.
func NewMockSink() *MockSink {
	return &MockSink{connected: true}
}

// SetConnected sets the value returned by Connected.
func (m *MockSink) SetConnected(connected bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = connected
}

// SetError makes every command return err.
func (m *MockSink) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Actions returns the recorded actions in delivery order.
func (m *MockSink) Actions() []Action {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Action(nil), m.actions...)
}

// Seeks returns the recorded seek offsets.
func (m *MockSink) Seeks() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.seeks...)
}

func (m *MockSink) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *MockSink) Play(ctx context.Context) error       { return m.record(Play) }
func (m *MockSink) Pause(ctx context.Context) error      { return m.record(Pause) }
func (m *MockSink) Skip(ctx context.Context) error       { return m.record(Skip) }
func (m *MockSink) VolumeUp(ctx context.Context) error   { return m.record(VolumeUp) }
func (m *MockSink) VolumeDown(ctx context.Context) error { return m.record(VolumeDown) }
func (m *MockSink) Mute(ctx context.Context) error       { return m.record(Mute) }

func (m *MockSink) Unmute(ctx context.Context, volumePercent int) error {
	return m.record(Unmute)
}

func (m *MockSink) Seek(ctx context.Context, offset time.Duration) error {
	m.mu.Lock()
	m.seeks = append(m.seeks, offset)
	m.mu.Unlock()
	return m.record(Rewind)
}

func (m *MockSink) record(a Action) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actions = append(m.actions, a)
	return m.err
}
