package action

import (
	"context"
	"log"
	"time"
)

// Sink receives media-control commands.
type Sink interface {
	// Connected reports whether commands can currently be delivered.
	Connected() bool

	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	Skip(ctx context.Context) error
	Seek(ctx context.Context, offset time.Duration) error
	VolumeUp(ctx context.Context) error
	VolumeDown(ctx context.Context) error
	Mute(ctx context.Context) error
	Unmute(ctx context.Context, volumePercent int) error
}

// invoke runs a on sink.
func invoke(ctx context.Context, sink Sink, a Action) error {
	switch a {
	case Play:
		return sink.Play(ctx)
	case Pause:
		return sink.Pause(ctx)
	case Skip:
		return sink.Skip(ctx)
	case Rewind:
		return sink.Seek(ctx, RewindOffset)
	case VolumeUp:
		return sink.VolumeUp(ctx)
	case VolumeDown:
		return sink.VolumeDown(ctx)
	case Mute:
		return sink.Mute(ctx)
	case Unmute:
		return sink.Unmute(ctx, UnmuteVolume)
	default:
		return ErrUnknownAction
	}
}

// LogSink only logs the commands it receives. It is used when no media
// plugin is installed.
type LogSink struct{}

// NewLogSink creates a LogSink.
func NewLogSink() *LogSink {
	return &LogSink{}
}

func (s *LogSink) Connected() bool { return true }

func (s *LogSink) Play(ctx context.Context) error       { return s.log(Play) }
func (s *LogSink) Pause(ctx context.Context) error      { return s.log(Pause) }
func (s *LogSink) Skip(ctx context.Context) error       { return s.log(Skip) }
func (s *LogSink) VolumeUp(ctx context.Context) error   { return s.log(VolumeUp) }
func (s *LogSink) VolumeDown(ctx context.Context) error { return s.log(VolumeDown) }
func (s *LogSink) Mute(ctx context.Context) error       { return s.log(Mute) }

func (s *LogSink) Seek(ctx context.Context, offset time.Duration) error {
	log.Printf("action: seek %v", offset)
	return nil
}

func (s *LogSink) Unmute(ctx context.Context, volumePercent int) error {
	log.Printf("action: unmute (volume %d%%)", volumePercent)
	return nil
}

func (s *LogSink) log(a Action) error {
	log.Printf("action: %s", a)
	return nil
}
