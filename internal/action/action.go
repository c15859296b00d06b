// Package action maps fired gesture labels to media-control actions and
// delivers them to a Sink.
package action

import (
	"errors"
	"fmt"
	"time"
)

// Action is a media-control command.
type Action string

const (
	Play       Action = "play"
	Pause      Action = "pause"
	Skip       Action = "skip"
	Rewind     Action = "rewind"
	VolumeUp   Action = "volume-up"
	VolumeDown Action = "volume-down"
	Mute       Action = "mute"
	Unmute     Action = "unmute"
)

// RewindOffset is how far Rewind seeks.
const RewindOffset = -5 * time.Second

// UnmuteVolume is the volume percentage restored by Unmute.
const UnmuteVolume = 50

var (
	// ErrUnknownAction is returned for an action name outside All.
	ErrUnknownAction = errors.New("unknown action")
	// ErrNotConnected is returned when the sink cannot accept commands.
	ErrNotConnected = errors.New("sink not connected")
)

// All returns every supported action.
func All() []Action {
	return []Action{Play, Pause, Skip, Rewind, VolumeUp, VolumeDown, Mute, Unmute}
}

// Valid reports whether a is a supported action.
func (a Action) Valid() bool {
	for _, x := range All() {
		if x == a {
			return true
		}
	}
	return false
}

func (a Action) String() string {
	return string(a)
}

// Parse converts s to an Action.
func Parse(s string) (Action, error) {
	a := Action(s)
	if !a.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
	return a, nil
}

// DefaultBindings returns the stock label to action table.
func DefaultBindings() map[string]Action {
	return map[string]Action{
		"like":    VolumeUp,
		"dislike": VolumeDown,
		"three":   Rewind,
		"four":    Skip,
		"one":     Play,
		"two_up":  Pause,
		"fist":    Mute,
		"palm":    Unmute,
	}
}

// StringBindings converts a binding table to the stored label to action form.
func StringBindings(m map[string]Action) map[string]string {
	out := make(map[string]string, len(m))
	for label, a := range m {
		out[label] = string(a)
	}
	return out
}
