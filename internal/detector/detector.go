// Package detector runs the gesture detection model on camera frames.
package detector

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"

	"gocv.io/x/gocv"

	"github.com/ayusman/gestify/internal/gesture"
)

// DefaultModelFile is the file name of the bundled ten-gesture model.
const DefaultModelFile = "ten_gestures_full.onnx"

var (
	// ErrEngineClosed is returned by Infer after Close.
	ErrEngineClosed = errors.New("engine is closed")
	// ErrEmptyFrame is returned when Infer receives a nil or empty frame.
	ErrEmptyFrame = errors.New("empty frame")
)

// Engine runs inference on a frame and returns the raw detection tensor.
// An Engine is an owned resource: the caller creates it, passes it to the
// pipeline and closes it when the camera session ends.
type Engine interface {
	// Infer runs the model on frame. The returned tensor belongs to the caller.
	Infer(frame *gocv.Mat) (*gesture.Tensor, error)

	// Close releases the model session and its buffers.
	Close() error
}

// Config holds options for the ONNX engine.
type Config struct {
	// ModelPath is the path to the .onnx model. Empty means search the default locations.
	ModelPath string

	// LibraryPath is the onnxruntime shared library. Empty uses the platform default.
	LibraryPath string

	// InputSize is the square input edge in pixels (default: 640).
	InputSize int

	// Classes and Anchors describe the output tensor [4+Classes, Anchors].
	Classes int
	Anchors int

	// IntraOpThreads limits onnxruntime worker threads; 0 lets onnxruntime decide.
	IntraOpThreads int

	// Mirror flips frames horizontally before inference, for front-facing cameras.
	Mirror bool

	// LogTiming logs the inference time of every frame.
	LogTiming bool
}

// DefaultConfig returns a Config for the bundled model.
func DefaultConfig() Config {
	return Config{
		InputSize:      640,
		Classes:        gesture.DefaultClasses,
		Anchors:        gesture.DefaultAnchors,
		IntraOpThreads: 4,
	}
}

// findModel searches for the model file in common locations.
// It checks ./models, ../models, ../../models and ~/.gestify/models.
func findModel() string {
	candidates := []string{
		filepath.Join("models", DefaultModelFile),
		filepath.Join("..", "models", DefaultModelFile),
		filepath.Join("..", "..", "models", DefaultModelFile),
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".gestify", "models", DefaultModelFile))
	}

	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}

// defaultLibraryPath returns the usual onnxruntime library location for this platform.
func defaultLibraryPath() string {
	if p := os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH"); p != "" {
		return p
	}
	switch runtime.GOOS {
	case "darwin":
		return "/usr/local/lib/libonnxruntime.dylib"
	case "windows":
		return "onnxruntime.dll"
	default:
		return "/usr/local/lib/libonnxruntime.so"
	}
}
