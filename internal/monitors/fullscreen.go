package monitors

import (
	"strings"

	"github.com/frostdev-ops/kbd-backlight-go/pkg/errors"
)

// FullscreenDetector samples whether the focused window is fullscreen.
// A failed sample yields false.
type FullscreenDetector struct {
	runner func(command string) (string, error)
}

// NewFullscreenDetector returns a detector, or nil when no window tool
// is available. A nil detector is a non-fatal startup degradation.
func NewFullscreenDetector() *FullscreenDetector {
	if !haveCommand("xdotool") || !haveCommand("xprop") {
		return nil
	}
	return &FullscreenDetector{
		runner: func(command string) (string, error) {
			return execWithTimeout(command, probeTimeout)
		},
	}
}

// Sample reports whether the active window carries the fullscreen state
func (d *FullscreenDetector) Sample() (bool, error) {
	out, err := d.runner("xprop -id $(xdotool getactivewindow) _NET_WM_STATE")
	if err != nil {
		return false, errors.Newf(errors.KindSignal, "fullscreen probe failed: %v", err)
	}
	return strings.Contains(out, "_NET_WM_STATE_FULLSCREEN"), nil
}

// VideoDetector samples whether any MPRIS media player is currently
// playing. A failed sample yields false.
type VideoDetector struct {
	runner func(command string) (string, error)
}

// NewVideoDetector returns a detector, or nil when playerctl is not
// installed.
func NewVideoDetector() *VideoDetector {
	if !haveCommand("playerctl") {
		return nil
	}
	return &VideoDetector{
		runner: func(command string) (string, error) {
			return execWithTimeout(command, probeTimeout)
		},
	}
}

// Sample reports whether any media player reports Playing
func (d *VideoDetector) Sample() (bool, error) {
	out, err := d.runner("playerctl --all-players status")
	if err != nil {
		// playerctl exits non-zero when no players are running.
		return false, nil
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "Playing" {
			return true, nil
		}
	}
	return false, nil
}
