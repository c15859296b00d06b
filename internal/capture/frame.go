package capture

import (
	"time"

	"gocv.io/x/gocv"
)

// Frame is a captured image stamped with its capture time.
type Frame struct {
	Mat        *gocv.Mat
	Seq        uint64
	CapturedAt time.Time
}

// Release closes the underlying Mat. It is safe to call more than once.
func (f *Frame) Release() {
	if f == nil || f.Mat == nil {
		return
	}
	f.Mat.Close()
	f.Mat = nil
}
