package gesture

import "fmt"

// Default decoder dimensions for the ten-gesture detection model.
const (
	DefaultClasses   = 10
	DefaultAnchors   = 8400
	DefaultThreshold = 0.7
)

// Detection is the best class found at one anchor.
type Detection struct {
	ClassID    int     `json:"class_id"`
	Confidence float32 `json:"confidence"`
	Anchor     int     `json:"anchor"`
}

// DecoderConfig holds the fixed tensor shape and confidence threshold.
type DecoderConfig struct {
	Classes   int
	Anchors   int
	Threshold float32
}

// DefaultDecoderConfig returns the configuration of the bundled model.
func DefaultDecoderConfig() DecoderConfig {
	return DecoderConfig{
		Classes:   DefaultClasses,
		Anchors:   DefaultAnchors,
		Threshold: DefaultThreshold,
	}
}

// Decoder turns raw tensors into per-anchor detections.
type Decoder struct {
	config DecoderConfig
}

// NewDecoder validates config and returns a Decoder.
// The threshold must lie strictly between 0 and 1.
func NewDecoder(config DecoderConfig) (*Decoder, error) {
	if !(config.Threshold > 0 && config.Threshold < 1) {
		return nil, fmt.Errorf("%w: threshold %v outside (0,1)", ErrInvalidConfiguration, config.Threshold)
	}
	if config.Classes < 0 || config.Anchors < 0 {
		return nil, fmt.Errorf("%w: negative shape %dx%d", ErrInvalidConfiguration, config.Classes, config.Anchors)
	}
	return &Decoder{config: config}, nil
}

// Config returns the decoder configuration.
func (d *Decoder) Config() DecoderConfig {
	return d.config
}

// Decode scans every anchor for its highest class score and keeps the anchors
// whose best score is strictly above the threshold. Classes are scanned in
// index order with a strict comparison, so on equal scores the lower class
// index wins. Detections are returned in anchor order.
func (d *Decoder) Decode(t *Tensor) ([]Detection, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil tensor", ErrMalformedInput)
	}
	if t.Classes != d.config.Classes || t.Anchors != d.config.Anchors {
		return nil, fmt.Errorf("%w: shape [%d, %d], want [%d, %d]",
			ErrMalformedInput, t.Channels(), t.Anchors, BoxChannels+d.config.Classes, d.config.Anchors)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	detections := make([]Detection, 0)
	n := t.Anchors
	for i := 0; i < n; i++ {
		var maxScore float32
		classID := -1
		for c := 0; c < t.Classes; c++ {
			if score := t.Data[(BoxChannels+c)*n+i]; score > maxScore {
				maxScore = score
				classID = c
			}
		}

		if classID >= 0 && maxScore > d.config.Threshold {
			detections = append(detections, Detection{
				ClassID:    classID,
				Confidence: maxScore,
				Anchor:     i,
			})
		}
	}

	return detections, nil
}

// Best returns the detection with the highest confidence. On equal
// confidence the earliest detection in the slice wins. The boolean is false
// when dets is empty.
func Best(dets []Detection) (Detection, bool) {
	if len(dets) == 0 {
		return Detection{}, false
	}

	best := dets[0]
	for _, d := range dets[1:] {
		if d.Confidence > best.Confidence {
			best = d
		}
	}
	return best, true
}
