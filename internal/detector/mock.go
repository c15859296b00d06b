package detector

import (
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/gestify/internal/gesture"
)

// MockEngine is a test implementation of the Engine interface.
// It returns queued tensors in order, then repeats the fallback tensor.
type MockEngine struct {
	queue    []*gesture.Tensor
	fallback *gesture.Tensor
	err      error
	calls    int
	closed   bool
	mu       sync.Mutex
}

// NewMockEngine creates a MockEngine that returns nothing until configured.
func NewMockEngine() *MockEngine {
	return &MockEngine{}
}

// SetTensor sets the tensor returned once the queue is drained.
func (m *MockEngine) SetTensor(t *gesture.Tensor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = t
}

// Enqueue appends tensors to be returned by subsequent Infer calls.
func (m *MockEngine) Enqueue(ts ...*gesture.Tensor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, ts...)
}

// SetError sets the error returned by Infer.
func (m *MockEngine) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Infer returns the next configured tensor or error. The frame is ignored.
func (m *MockEngine) Infer(frame *gocv.Mat) (*gesture.Tensor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.closed {
		return nil, ErrEngineClosed
	}
	if m.err != nil {
		return nil, m.err
	}
	if len(m.queue) > 0 {
		t := m.queue[0]
		m.queue = m.queue[1:]
		return t, nil
	}
	return m.fallback, nil
}

// Calls returns how many times Infer has been called.
func (m *MockEngine) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Close marks the engine closed.
func (m *MockEngine) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// GestureTensor returns a tensor with a single anchor scoring classID at
// confidence; every other score is zero.
func GestureTensor(classes, anchors, classID, anchor int, confidence float32) *gesture.Tensor {
	t := gesture.NewTensor(classes, anchors)
	t.SetClassScore(classID, anchor, confidence)
	return t
}
