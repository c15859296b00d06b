// Package app runs the gestify camera session: frame capture, inference,
// gesture debouncing and action dispatch.
package app

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/gestify/internal/capture"
	"github.com/ayusman/gestify/internal/detector"
	"github.com/ayusman/gestify/internal/gesture"
)

// Config holds the collaborators of an App.
type Config struct {
	Camera   capture.Camera
	Pipeline *Pipeline
	// Enabled is the initial detection state.
	Enabled bool
}

// Status is a snapshot of the session for the API and tray.
type Status struct {
	Enabled   bool                  `json:"enabled"`
	Running   bool                  `json:"running"`
	Threshold float32               `json:"threshold"`
	Dwell     string                `json:"dwell"`
	Debounce  gesture.DebounceState `json:"debounce"`
	Mailbox   capture.MailboxStats  `json:"mailbox"`
}

// App owns the camera and the pipeline of one detection session.
type App struct {
	camera   capture.Camera
	pipeline *Pipeline

	// lifeMu serializes Start and Stop.
	lifeMu sync.Mutex

	mu        sync.RWMutex
	enabled   bool
	mailbox   *capture.LatestFrame
	cancel    context.CancelFunc
	captureWG sync.WaitGroup
	workerWG  sync.WaitGroup

	previewMu sync.Mutex
	preview   gocv.Mat
	hasFrame  bool
}

// New creates an App. The camera is opened by Start.
func New(config Config) (*App, error) {
	if config.Camera == nil {
		return nil, errors.New("app: camera is required")
	}
	if config.Pipeline == nil {
		return nil, errors.New("app: pipeline is required")
	}

	config.Pipeline.SetEnabled(config.Enabled)
	return &App{
		camera:   config.Camera,
		pipeline: config.Pipeline,
		enabled:  config.Enabled,
	}, nil
}

// SetEnabled enables or disables gesture detection. Disabled sessions keep
// capturing for the preview but skip inference. A frame already in flight
// when detection is disabled is decoded but never fires.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.enabled = enabled
	a.pipeline.SetEnabled(enabled)
}

// IsEnabled returns whether gesture detection is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// Running reports whether a session is active.
func (a *App) Running() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cancel != nil
}

// Start opens the camera and starts the capture and worker goroutines.
// Starting a running App is a no-op.
func (a *App) Start(ctx context.Context) error {
	a.lifeMu.Lock()
	defer a.lifeMu.Unlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cancel != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.mailbox = capture.NewLatestFrame()

	a.captureWG.Add(1)
	go a.captureLoop(ctx, a.mailbox)

	a.workerWG.Add(1)
	go a.worker(ctx, a.mailbox)

	log.Println("detection session started")
	return nil
}

// Stop ends the session: the capture goroutine stops first, then the
// mailbox is closed and the worker drained. The debouncer is reset so the
// next session starts idle. The engine stays open for a later Start.
func (a *App) Stop() {
	a.lifeMu.Lock()
	defer a.lifeMu.Unlock()

	a.mu.RLock()
	cancel := a.cancel
	mailbox := a.mailbox
	a.mu.RUnlock()

	if cancel == nil {
		return
	}

	cancel()
	a.captureWG.Wait()
	mailbox.Close()
	a.workerWG.Wait()

	a.mu.Lock()
	a.cancel = nil
	a.mu.Unlock()

	a.pipeline.Reset()

	if err := a.camera.Close(); err != nil {
		log.Printf("error closing camera: %v", err)
	}

	a.previewMu.Lock()
	if a.hasFrame {
		a.preview.Close()
		a.hasFrame = false
	}
	a.previewMu.Unlock()

	log.Println("detection session stopped")
}

// Close stops the session and releases the inference engine.
func (a *App) Close() error {
	a.Stop()
	if a.pipeline.engine != nil {
		return a.pipeline.engine.Close()
	}
	return nil
}

// Pipeline returns the session pipeline.
func (a *App) Pipeline() *Pipeline {
	return a.pipeline
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// Status returns a snapshot of the session.
func (a *App) Status() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()

	s := Status{
		Enabled:   a.enabled,
		Running:   a.cancel != nil,
		Threshold: a.pipeline.Threshold(),
		Dwell:     a.pipeline.Dwell().String(),
		Debounce:  a.pipeline.State(),
	}
	if a.mailbox != nil {
		s.Mailbox = a.mailbox.Stats()
	}
	return s
}

// Snapshot returns a copy of the most recent camera frame. The caller must
// close the returned Mat.
func (a *App) Snapshot() (gocv.Mat, bool) {
	a.previewMu.Lock()
	defer a.previewMu.Unlock()

	if !a.hasFrame {
		return gocv.NewMat(), false
	}
	return a.preview.Clone(), true
}

func (a *App) setPreview(mat *gocv.Mat) {
	a.previewMu.Lock()
	defer a.previewMu.Unlock()

	if a.hasFrame {
		a.preview.Close()
	}
	a.preview = mat.Clone()
	a.hasFrame = true
}

// captureLoop reads frames at the camera rate and publishes them to mailbox.
func (a *App) captureLoop(ctx context.Context, mailbox *capture.LatestFrame) {
	defer a.captureWG.Done()

	fps := a.camera.FPS()
	if fps <= 0 {
		fps = capture.DefaultFPS
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	var seq uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		mat, err := a.camera.ReadFrame()
		if err != nil {
			log.Printf("error reading frame: %v", err)
			continue
		}
		capturedAt := time.Now()
		a.setPreview(mat)

		if !a.IsEnabled() {
			mat.Close()
			continue
		}

		seq++
		mailbox.Publish(&capture.Frame{Mat: mat, Seq: seq, CapturedAt: capturedAt})
	}
}

// worker processes frames one at a time until the mailbox closes.
func (a *App) worker(ctx context.Context, mailbox *capture.LatestFrame) {
	defer a.workerWG.Done()

	for {
		frame, err := mailbox.Next(ctx)
		if err != nil {
			if !errors.Is(err, capture.ErrMailboxClosed) && !errors.Is(err, context.Canceled) {
				log.Printf("frame worker stopped: %v", err)
			}
			return
		}

		if !a.IsEnabled() {
			frame.Release()
			continue
		}

		if _, err := a.pipeline.ProcessFrame(ctx, frame); err != nil {
			if errors.Is(err, gesture.ErrMalformedInput) {
				log.Printf("dropping frame %d: %v", frame.Seq, err)
			} else if !errors.Is(err, detector.ErrEngineClosed) {
				log.Printf("error processing frame %d: %v", frame.Seq, err)
			}
		}
		frame.Release()
	}
}
