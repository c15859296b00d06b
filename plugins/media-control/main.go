// Package main provides a media control plugin.
// It handles playback and volume actions via playerctl and pactl on Linux
// and via AppleScript on macOS.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strconv"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action  string          `json:"action"`
	Gesture string          `json:"gesture"`
	Config  json.RawMessage `json:"config"`
	Params  json.RawMessage `json:"params"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// params carries the optional rewind offset and unmute volume.
type params struct {
	OffsetMs int `json:"offset_ms"`
	Volume   int `json:"volume"`
}

const (
	defaultRewindMs = -5000
	volumeStep      = 10
	unmuteVolume    = 50
)

// commandRunner executes an external command.
type commandRunner func(name string, args ...string) error

// backend implements each action for one platform.
type backend interface {
	play() error
	pause() error
	skip() error
	seek(offsetMs int) error
	volume(deltaPercent int) error
	mute() error
	unmute(percent int) error
}

func main() {
	b, err := newBackend(runtime.GOOS, runCommand)
	if err != nil {
		writeResponse(os.Stdout, Response{Success: false, Error: err.Error()})
		return
	}
	handle(os.Stdin, os.Stdout, b)
}

// handle decodes one request from r, runs it on b and writes the response to w.
func handle(r io.Reader, w io.Writer, b backend) {
	var req Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		writeResponse(w, Response{Success: false, Error: fmt.Sprintf("failed to decode request: %v", err)})
		return
	}

	if err := dispatch(b, req); err != nil {
		writeResponse(w, Response{Success: false, Error: err.Error()})
		return
	}

	data, _ := json.Marshal(map[string]string{"action": req.Action})
	writeResponse(w, Response{Success: true, Data: data})
}

func dispatch(b backend, req Request) error {
	var p params
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return fmt.Errorf("invalid params: %v", err)
		}
	}

	var err error
	switch req.Action {
	case "play":
		err = b.play()
	case "pause":
		err = b.pause()
	case "skip":
		err = b.skip()
	case "rewind":
		offset := defaultRewindMs
		if p.OffsetMs != 0 {
			offset = p.OffsetMs
		}
		err = b.seek(offset)
	case "volume-up":
		err = b.volume(volumeStep)
	case "volume-down":
		err = b.volume(-volumeStep)
	case "mute":
		err = b.mute()
	case "unmute":
		volume := unmuteVolume
		if p.Volume > 0 && p.Volume <= 100 {
			volume = p.Volume
		}
		err = b.unmute(volume)
	default:
		return fmt.Errorf("unknown action: %s", req.Action)
	}
	if err != nil {
		return fmt.Errorf("action %s failed: %v", req.Action, err)
	}
	return nil
}

func newBackend(goos string, run commandRunner) (backend, error) {
	switch goos {
	case "linux":
		return linuxBackend{run: run}, nil
	case "darwin":
		return darwinBackend{run: run}, nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}

func writeResponse(w io.Writer, resp Response) {
	json.NewEncoder(w).Encode(resp)
}

// runCommand executes a command and folds its output into the error.
func runCommand(name string, args ...string) error {
	output, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}

// linuxBackend drives MPRIS players through playerctl and PulseAudio/PipeWire
// through pactl.
type linuxBackend struct {
	run commandRunner
}

func (l linuxBackend) play() error  { return l.run("playerctl", "play") }
func (l linuxBackend) pause() error { return l.run("playerctl", "pause") }
func (l linuxBackend) skip() error  { return l.run("playerctl", "next") }

func (l linuxBackend) seek(offsetMs int) error {
	seconds := strconv.FormatFloat(float64(abs(offsetMs))/1000, 'f', -1, 64)
	sign := "+"
	if offsetMs < 0 {
		sign = "-"
	}
	return l.run("playerctl", "position", seconds+sign)
}

func (l linuxBackend) volume(delta int) error {
	return l.run("pactl", "set-sink-volume", "@DEFAULT_SINK@", fmt.Sprintf("%+d%%", delta))
}

func (l linuxBackend) mute() error {
	return l.run("pactl", "set-sink-mute", "@DEFAULT_SINK@", "1")
}

func (l linuxBackend) unmute(percent int) error {
	if err := l.run("pactl", "set-sink-mute", "@DEFAULT_SINK@", "0"); err != nil {
		return err
	}
	return l.run("pactl", "set-sink-volume", "@DEFAULT_SINK@", fmt.Sprintf("%d%%", percent))
}

// darwinBackend uses AppleScript media keys and volume settings.
type darwinBackend struct {
	run commandRunner
}

func (d darwinBackend) script(s string) error {
	return d.run("osascript", "-e", s)
}

// Play and pause set the Music player state instead of toggling it.
func (d darwinBackend) play() error {
	return d.script(`tell application "Music" to play`)
}

func (d darwinBackend) pause() error {
	return d.script(`tell application "Music" to pause`)
}

func (d darwinBackend) skip() error {
	return d.script(`tell application "System Events" to key code 101`)
}

func (d darwinBackend) seek(offsetMs int) error {
	seconds := strconv.FormatFloat(float64(offsetMs)/1000, 'f', -1, 64)
	return d.script(fmt.Sprintf(`tell application "Music" to set player position to (player position + (%s))`, seconds))
}

func (d darwinBackend) volume(delta int) error {
	return d.script(fmt.Sprintf(`set volume output volume ((output volume of (get volume settings)) + (%d))`, delta))
}

func (d darwinBackend) mute() error {
	return d.script(`set volume with output muted`)
}

func (d darwinBackend) unmute(percent int) error {
	return d.script(fmt.Sprintf(`set volume output volume %d without output muted`, percent))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
