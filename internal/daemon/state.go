package daemon

import (
	"sync"
	"time"
)

// daemonState is the long-lived mutable aggregate shared between the
// orchestration loop and the control channel handler. Each logical
// field group has its own reader/writer lock, and no lock is held
// across hardware or persistence I/O.
type daemonState struct {
	overrideMu sync.RWMutex
	override   *int

	brightnessMu sync.RWMutex
	brightness   int

	ssidMu   sync.RWMutex
	lastSSID string

	idleMu         sync.RWMutex
	armedIdle      time.Duration
	lastIdle       bool
	lastFullscreen bool
}

func (s *daemonState) overrideValue() *int {
	s.overrideMu.RLock()
	defer s.overrideMu.RUnlock()
	if s.override == nil {
		return nil
	}
	v := *s.override
	return &v
}

func (s *daemonState) setOverride(v int) {
	s.overrideMu.Lock()
	defer s.overrideMu.Unlock()
	s.override = &v
}

func (s *daemonState) clearOverride() {
	s.overrideMu.Lock()
	defer s.overrideMu.Unlock()
	s.override = nil
}

func (s *daemonState) currentBrightness() int {
	s.brightnessMu.RLock()
	defer s.brightnessMu.RUnlock()
	return s.brightness
}

func (s *daemonState) setBrightness(v int) {
	s.brightnessMu.Lock()
	defer s.brightnessMu.Unlock()
	s.brightness = v
}

func (s *daemonState) lastObservedSSID() string {
	s.ssidMu.RLock()
	defer s.ssidMu.RUnlock()
	return s.lastSSID
}

func (s *daemonState) setLastSSID(ssid string) {
	s.ssidMu.Lock()
	defer s.ssidMu.Unlock()
	s.lastSSID = ssid
}

func (s *daemonState) idleTimeout() time.Duration {
	s.idleMu.RLock()
	defer s.idleMu.RUnlock()
	return s.armedIdle
}

func (s *daemonState) setIdleTimeout(t time.Duration) {
	s.idleMu.Lock()
	defer s.idleMu.Unlock()
	s.armedIdle = t
}

// invalidateIdleTimeout forces the next tick to re-arm the idle probe,
// used after profile switches where the new profile may carry a
// different timeout.
func (s *daemonState) invalidateIdleTimeout() {
	s.idleMu.Lock()
	defer s.idleMu.Unlock()
	s.armedIdle = 0
}

func (s *daemonState) setSignals(idle, fullscreen bool) {
	s.idleMu.Lock()
	defer s.idleMu.Unlock()
	s.lastIdle = idle
	s.lastFullscreen = fullscreen
}

func (s *daemonState) signals() (idle, fullscreen bool) {
	s.idleMu.RLock()
	defer s.idleMu.RUnlock()
	return s.lastIdle, s.lastFullscreen
}
