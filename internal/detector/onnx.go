package detector

import (
	"image"
	"log"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
	"gocv.io/x/gocv"

	"github.com/ayusman/gestify/internal/gesture"
)

// Tensor names exported by the detection model.
const (
	inputName  = "images"
	outputName = "output0"
)

// ONNXEngine implements Engine with an onnxruntime session.
type ONNXEngine struct {
	config  Config
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
	ownsEnv bool
	mu      sync.Mutex
}

// NewONNXEngine loads the model and allocates the input and output tensors.
func NewONNXEngine(config Config) (*ONNXEngine, error) {
	if config.InputSize <= 0 || config.Classes <= 0 || config.Anchors <= 0 {
		return nil, errors.Errorf("invalid engine shape: input %d, classes %d, anchors %d",
			config.InputSize, config.Classes, config.Anchors)
	}

	if config.ModelPath == "" {
		config.ModelPath = findModel()
		if config.ModelPath == "" {
			return nil, errors.Errorf("%s not found", DefaultModelFile)
		}
	}
	if _, err := os.Stat(config.ModelPath); err != nil {
		return nil, errors.Wrap(err, "model not available")
	}

	if config.LibraryPath == "" {
		config.LibraryPath = defaultLibraryPath()
	}
	if _, err := os.Stat(config.LibraryPath); err != nil {
		return nil, errors.Wrapf(err, "onnxruntime library not found at %s", config.LibraryPath)
	}

	e := &ONNXEngine{config: config}

	if !ort.IsInitialized() {
		ort.SetSharedLibraryPath(config.LibraryPath)
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, errors.Wrap(err, "initialize onnxruntime")
		}
		e.ownsEnv = true
	}

	size := int64(config.InputSize)
	input, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 3, size, size))
	if err != nil {
		e.destroyEnv()
		return nil, errors.Wrap(err, "create input tensor")
	}

	channels := int64(gesture.BoxChannels + config.Classes)
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, channels, int64(config.Anchors)))
	if err != nil {
		input.Destroy()
		e.destroyEnv()
		return nil, errors.Wrap(err, "create output tensor")
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		input.Destroy()
		output.Destroy()
		e.destroyEnv()
		return nil, errors.Wrap(err, "create session options")
	}
	defer options.Destroy()

	if config.IntraOpThreads > 0 {
		if err := options.SetIntraOpNumThreads(config.IntraOpThreads); err != nil {
			log.Printf("ignoring intra-op thread setting: %v", err)
		}
	}

	session, err := ort.NewAdvancedSession(
		config.ModelPath,
		[]string{inputName},
		[]string{outputName},
		[]ort.ArbitraryTensor{input},
		[]ort.ArbitraryTensor{output},
		options,
	)
	if err != nil {
		input.Destroy()
		output.Destroy()
		e.destroyEnv()
		return nil, errors.Wrap(err, "create session")
	}

	e.session = session
	e.input = input
	e.output = output

	log.Printf("Loaded gesture model %s", config.ModelPath)
	return e, nil
}

// Infer resizes frame to the model input, runs the session and returns a copy
// of the output tensor.
func (e *ONNXEngine) Infer(frame *gocv.Mat) (*gesture.Tensor, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil {
		return nil, ErrEngineClosed
	}
	if frame == nil || frame.Empty() {
		return nil, ErrEmptyFrame
	}

	src := *frame
	if e.config.Mirror {
		flipped := gocv.NewMat()
		defer flipped.Close()
		gocv.Flip(*frame, &flipped, 1)
		src = flipped
	}

	// BGR -> RGB, scaled to [0,1], NCHW
	size := image.Pt(e.config.InputSize, e.config.InputSize)
	blob := gocv.BlobFromImage(src, 1.0/255.0, size, gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	data, err := blob.DataPtrFloat32()
	if err != nil {
		return nil, errors.Wrap(err, "read input blob")
	}
	in := e.input.GetData()
	if len(data) != len(in) {
		return nil, errors.Errorf("input blob has %d values, want %d", len(data), len(in))
	}
	copy(in, data)

	start := time.Now()
	if err := e.session.Run(); err != nil {
		return nil, errors.Wrap(err, "run inference")
	}
	if e.config.LogTiming {
		log.Printf("inference took %v", time.Since(start))
	}

	out := make([]float32, len(e.output.GetData()))
	copy(out, e.output.GetData())

	return gesture.TensorFromData(out, e.config.Classes, e.config.Anchors), nil
}

// Close destroys the session and tensors. The onnxruntime environment is torn
// down only if this engine created it.
func (e *ONNXEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil {
		return nil
	}

	var firstErr error
	if err := e.session.Destroy(); err != nil {
		firstErr = errors.Wrap(err, "destroy session")
	}
	if err := e.input.Destroy(); err != nil && firstErr == nil {
		firstErr = errors.Wrap(err, "destroy input tensor")
	}
	if err := e.output.Destroy(); err != nil && firstErr == nil {
		firstErr = errors.Wrap(err, "destroy output tensor")
	}
	e.session = nil
	e.input = nil
	e.output = nil

	if err := e.destroyEnv(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func (e *ONNXEngine) destroyEnv() error {
	if !e.ownsEnv {
		return nil
	}
	e.ownsEnv = false
	return errors.Wrap(ort.DestroyEnvironment(), "destroy onnxruntime environment")
}
