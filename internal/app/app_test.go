package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/gestify/internal/action"
	"github.com/ayusman/gestify/internal/capture"
	"github.com/ayusman/gestify/internal/detector"
)

func newTestApp(t *testing.T, enabled bool) (*App, *detector.MockEngine, *action.MockSink) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping session test")
	}

	engine := detector.NewMockEngine()
	engine.SetTensor(tensorFor(classLike, 0.9))

	p, sink := newTestPipeline(t, engine)
	a, err := New(Config{
		Camera:   capture.NewMockCamera(nil, true),
		Pipeline: p,
		Enabled:  enabled,
	})
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a, engine, sink
}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)

	_, err = New(Config{Camera: capture.NewMockCamera(nil, false)})
	assert.Error(t, err)
}

func TestApp_SessionFiresTrigger(t *testing.T) {
	a, _, sink := newTestApp(t, true)

	var mu sync.Mutex
	var events []TriggerEvent
	a.Pipeline().OnTrigger(func(e TriggerEvent) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	})

	require.NoError(t, a.Start(context.Background()))
	assert.True(t, a.Running())

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(events) > 0
	}, 2*time.Second, 10*time.Millisecond)

	a.Stop()
	assert.False(t, a.Running())
	assert.False(t, a.Camera().IsOpen())

	// The held gesture fires once until the dwell elapses
	assert.Equal(t, action.VolumeUp, sink.Actions()[0])
	assert.Equal(t, "like", events[0].Label)

	// Stop resets the debouncer
	assert.False(t, a.Pipeline().State().Tracking)
}

func TestApp_DisabledSkipsInference(t *testing.T) {
	a, engine, _ := newTestApp(t, false)

	require.NoError(t, a.Start(context.Background()))
	time.Sleep(300 * time.Millisecond)

	assert.Equal(t, 0, engine.Calls())

	// Frames still reach the preview
	mat, ok := a.Snapshot()
	defer mat.Close()
	assert.True(t, ok)

	a.SetEnabled(true)
	require.Eventually(t, func() bool { return engine.Calls() > 0 }, 2*time.Second, 10*time.Millisecond)
	a.Stop()
}

func TestApp_SetEnabledFalseResetsDebouncer(t *testing.T) {
	a, _, _ := newTestApp(t, true)

	a.Pipeline().ProcessTensor(context.Background(), tensorFor(classLike, 0.9), time.Now())
	require.True(t, a.Pipeline().State().Tracking)

	a.SetEnabled(false)
	assert.False(t, a.IsEnabled())
	assert.False(t, a.Pipeline().State().Tracking)
}

func TestApp_StartStopIdempotent(t *testing.T) {
	a, _, _ := newTestApp(t, true)

	require.NoError(t, a.Start(context.Background()))
	require.NoError(t, a.Start(context.Background()))
	a.Stop()
	a.Stop()

	// A new session can start after Stop
	require.NoError(t, a.Start(context.Background()))
	assert.True(t, a.Running())
	a.Stop()
}

func TestApp_Status(t *testing.T) {
	a, _, _ := newTestApp(t, true)

	s := a.Status()
	assert.True(t, s.Enabled)
	assert.False(t, s.Running)
	assert.InDelta(t, 0.7, s.Threshold, 1e-6)
	assert.Equal(t, "1s", s.Dwell)

	require.NoError(t, a.Start(context.Background()))
	require.Eventually(t, func() bool { return a.Status().Mailbox.Published > 0 }, 2*time.Second, 10*time.Millisecond)
	a.Stop()
}

func TestApp_CloseReleasesEngine(t *testing.T) {
	a, engine, _ := newTestApp(t, true)

	require.NoError(t, a.Close())
	_, err := engine.Infer(nil)
	assert.ErrorIs(t, err, detector.ErrEngineClosed)
}

func TestApp_DisableDuringInferenceDropsFrame(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping session test")
	}

	engine := newBlockingEngine(tensorFor(classLike, 0.9))
	p, sink := newTestPipeline(t, engine)
	a, err := New(Config{
		Camera:   capture.NewMockCamera(nil, true),
		Pipeline: p,
		Enabled:  true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	var mu sync.Mutex
	var events []TriggerEvent
	p.OnTrigger(func(e TriggerEvent) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	})

	require.NoError(t, a.Start(context.Background()))

	select {
	case <-engine.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("engine never called")
	}
	a.SetEnabled(false)
	close(engine.release)

	// Frames keep arriving for the preview while disabled
	time.Sleep(200 * time.Millisecond)
	assert.False(t, p.State().Tracking)

	a.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Empty(t, events)
	assert.Empty(t, sink.Actions())
}

func TestApp_ConcurrentStartStop(t *testing.T) {
	a, _, _ := newTestApp(t, true)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, a.Start(context.Background()))
		}()
		go func() {
			defer wg.Done()
			a.Stop()
		}()
	}
	wg.Wait()

	a.Stop()
	assert.False(t, a.Running())
	assert.False(t, a.Camera().IsOpen())
}
