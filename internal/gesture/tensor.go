// Package gesture decodes detection-head output into labeled gestures and
// debounces the per-frame results into stable action triggers.
package gesture

import "fmt"

// BoxChannels is the number of leading rows holding box geometry (cx, cy, w, h).
const BoxChannels = 4

// Tensor is the raw output of the detection head, laid out row-major with
// shape [BoxChannels+Classes, Anchors]. Row r, anchor i lives at
// Data[r*Anchors+i].
type Tensor struct {
	Data    []float32
	Classes int
	Anchors int
}

// NewTensor allocates a zeroed tensor for the given class and anchor counts.
func NewTensor(classes, anchors int) *Tensor {
	classes = max(classes, 0)
	anchors = max(anchors, 0)
	return &Tensor{
		Data:    make([]float32, (BoxChannels+classes)*anchors),
		Classes: classes,
		Anchors: anchors,
	}
}

// TensorFromData wraps data without copying it.
func TensorFromData(data []float32, classes, anchors int) *Tensor {
	return &Tensor{Data: data, Classes: classes, Anchors: anchors}
}

// Channels returns the number of rows (box channels plus class channels).
func (t *Tensor) Channels() int {
	return BoxChannels + t.Classes
}

// At returns the value at the given row and anchor.
func (t *Tensor) At(row, anchor int) float32 {
	return t.Data[row*t.Anchors+anchor]
}

// Set stores v at the given row and anchor.
func (t *Tensor) Set(row, anchor int, v float32) {
	t.Data[row*t.Anchors+anchor] = v
}

// ClassScore returns the score of class at anchor.
func (t *Tensor) ClassScore(class, anchor int) float32 {
	return t.At(BoxChannels+class, anchor)
}

// SetClassScore stores the score of class at anchor.
func (t *Tensor) SetClassScore(class, anchor int, v float32) {
	t.Set(BoxChannels+class, anchor, v)
}

// Validate checks that the data length agrees with the declared dimensions.
func (t *Tensor) Validate() error {
	if t.Classes < 0 || t.Anchors < 0 {
		return fmt.Errorf("%w: negative dimensions %dx%d", ErrMalformedInput, t.Classes, t.Anchors)
	}
	if want := t.Channels() * t.Anchors; len(t.Data) != want {
		return fmt.Errorf("%w: have %d values, want %d for shape [%d, %d]",
			ErrMalformedInput, len(t.Data), want, t.Channels(), t.Anchors)
	}
	return nil
}
