package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/gestify/internal/action"
	"github.com/ayusman/gestify/internal/capture"
	"github.com/ayusman/gestify/internal/detector"
	"github.com/ayusman/gestify/internal/gesture"
)

// ErrNoEngine is returned by ProcessFrame when the pipeline has no engine.
var ErrNoEngine = errors.New("no inference engine")

// PipelineConfig configures decoding and debouncing.
type PipelineConfig struct {
	Decoder gesture.DecoderConfig
	Dwell   time.Duration
	// Labels maps class ids to gesture labels. Nil uses gesture.DefaultLabels.
	Labels *gesture.Labels
	// LogDetections logs a per-class summary of every frame with detections.
	LogDetections bool
}

// DefaultPipelineConfig returns the stock decoder settings and dwell.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Decoder: gesture.DefaultDecoderConfig(),
		Dwell:   gesture.DefaultDwell,
	}
}

// TriggerEvent is emitted each time the debouncer fires.
type TriggerEvent struct {
	ID         string        `json:"id"`
	Label      string        `json:"label"`
	ClassID    int           `json:"class_id"`
	Action     action.Action `json:"action,omitempty"`
	Confidence float32       `json:"confidence"`
	FiredAt    time.Time     `json:"fired_at"`
}

// Text renders the event the way the overlay shows it, e.g. "like (87%)".
func (e TriggerEvent) Text() string {
	return fmt.Sprintf("%s (%d%%)", e.Label, int(e.Confidence*100))
}

// Result describes what happened to one frame.
type Result struct {
	Detections []gesture.Detection
	Best       gesture.Detection
	Found      bool
	Label      string
	Fired      bool
	Event      *TriggerEvent
	// DispatchErr is set when the fired action could not be delivered.
	DispatchErr error
}

// Pipeline turns raw detection tensors into dispatched actions. It owns the
// decoder and the debouncer of one camera session.
type Pipeline struct {
	decoder    *gesture.Decoder
	labels     *gesture.Labels
	engine     detector.Engine
	dispatcher *action.Dispatcher
	logDets    bool

	mu        sync.Mutex
	debouncer *gesture.Debouncer
	disabled  bool

	obsMu     sync.RWMutex
	observers []func(TriggerEvent)
}

// NewPipeline validates config and builds a Pipeline. engine may be nil when
// only ProcessTensor is used; dispatcher may be nil to fire without actions.
func NewPipeline(config PipelineConfig, engine detector.Engine, dispatcher *action.Dispatcher) (*Pipeline, error) {
	decoder, err := gesture.NewDecoder(config.Decoder)
	if err != nil {
		return nil, err
	}
	debouncer, err := gesture.NewDebouncer(config.Dwell)
	if err != nil {
		return nil, err
	}

	labels := config.Labels
	if labels == nil {
		labels = gesture.DefaultLabels()
	}

	return &Pipeline{
		decoder:    decoder,
		labels:     labels,
		engine:     engine,
		dispatcher: dispatcher,
		logDets:    config.LogDetections,
		debouncer:  debouncer,
	}, nil
}

// OnTrigger registers fn to be called with every fired event.
func (p *Pipeline) OnTrigger(fn func(TriggerEvent)) {
	p.obsMu.Lock()
	defer p.obsMu.Unlock()
	p.observers = append(p.observers, fn)
}

// ProcessFrame runs inference on frame and then ProcessTensor with the
// frame's capture time.
func (p *Pipeline) ProcessFrame(ctx context.Context, frame *capture.Frame) (Result, error) {
	if p.engine == nil {
		return Result{}, ErrNoEngine
	}
	if frame == nil || frame.Mat == nil {
		return Result{}, detector.ErrEmptyFrame
	}

	t, err := p.engine.Infer(frame.Mat)
	if err != nil {
		return Result{}, fmt.Errorf("inference: %w", err)
	}

	at := frame.CapturedAt
	if at.IsZero() {
		at = time.Now()
	}
	return p.ProcessTensor(ctx, t, at)
}

// ProcessTensor decodes t, debounces the best detection observed at time at
// and dispatches the bound action when the debouncer fires. A malformed
// tensor leaves the debouncer untouched.
func (p *Pipeline) ProcessTensor(ctx context.Context, t *gesture.Tensor, at time.Time) (Result, error) {
	dets, err := p.decoder.Decode(t)
	if err != nil {
		return Result{}, err
	}

	res := Result{Detections: dets}
	best, ok := gesture.Best(dets)
	if !ok {
		return res, nil
	}

	if p.logDets {
		p.logDetections(dets, best)
	}

	res.Best = best
	res.Found = true
	res.Label = p.labels.Label(best.ClassID)

	p.mu.Lock()
	if p.disabled {
		p.mu.Unlock()
		return res, nil
	}
	fired := p.debouncer.Observe(res.Label, at)
	p.mu.Unlock()
	if !fired {
		return res, nil
	}
	res.Fired = true

	event := TriggerEvent{
		ID:         uuid.New().String(),
		Label:      res.Label,
		ClassID:    best.ClassID,
		Confidence: best.Confidence,
		FiredAt:    at,
	}

	if p.dispatcher != nil {
		a, err := p.dispatcher.Dispatch(action.WithGesture(ctx, res.Label), res.Label)
		event.Action = a
		switch {
		case errors.Is(err, action.ErrNotConnected):
			log.Printf("sink not connected, skipping %s for %s", a, res.Label)
			res.DispatchErr = err
		case err != nil:
			log.Printf("failed to dispatch %s for %s: %v", a, res.Label, err)
			res.DispatchErr = err
		}
	}

	log.Printf("gesture fired: %s", event.Text())
	res.Event = &event
	p.notify(event)
	return res, nil
}

func (p *Pipeline) logDetections(dets []gesture.Detection, best gesture.Detection) {
	log.Printf("detections: %d total", len(dets))
	for _, s := range gesture.Summarize(dets, p.labels) {
		log.Printf("detections: %s (id %d) x%d max=%.2f avg=%.2f top=%s",
			s.Label, s.ClassID, s.Count, s.MaxConfidence, s.AvgConfidence, formatConfidences(s.Top))
	}
	log.Printf("detections: top %s %.2f", p.labels.Label(best.ClassID), best.Confidence)
}

func formatConfidences(confs []float32) string {
	parts := make([]string, len(confs))
	for i, c := range confs {
		parts[i] = strconv.FormatFloat(float64(c), 'f', 2, 32)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func (p *Pipeline) notify(event TriggerEvent) {
	p.obsMu.RLock()
	observers := append([]func(TriggerEvent)(nil), p.observers...)
	p.obsMu.RUnlock()

	for _, fn := range observers {
		fn(event)
	}
}

// State returns a snapshot of the debouncer.
func (p *Pipeline) State() gesture.DebounceState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.debouncer.State()
}

// Reset returns the debouncer to idle.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.debouncer.Reset()
}

// SetEnabled turns debouncing on or off. Disabling resets the debouncer;
// while disabled, detections are decoded but never observed or dispatched.
func (p *Pipeline) SetEnabled(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !enabled {
		p.debouncer.Reset()
	}
	p.disabled = !enabled
}

// Enabled reports whether detections reach the debouncer.
func (p *Pipeline) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.disabled
}

// Dwell returns the debounce dwell.
func (p *Pipeline) Dwell() time.Duration {
	return p.debouncer.Dwell()
}

// Threshold returns the decoder confidence threshold.
func (p *Pipeline) Threshold() float32 {
	return p.decoder.Config().Threshold
}

// Labels returns the class id to label table.
func (p *Pipeline) Labels() *gesture.Labels {
	return p.labels
}

// Dispatcher returns the action dispatcher, or nil.
func (p *Pipeline) Dispatcher() *action.Dispatcher {
	return p.dispatcher
}
