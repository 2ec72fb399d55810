package monitors

import (
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/frostdev-ops/kbd-backlight-go/pkg/errors"
	"github.com/frostdev-ops/kbd-backlight-go/pkg/logger"
)

// IdleMonitor tracks user idleness on a background worker so the
// orchestration loop can read the flag without blocking. The worker
// polls an idle-time source and compares it against the configured
// timeout. Monitors are long-lived; the daemon replaces one only when
// the active profile's idle timeout changes.
type IdleMonitor struct {
	timeout time.Duration
	logger  *logger.Logger

	mu           sync.RWMutex
	isIdle       bool
	lastActivity time.Time

	stop     chan struct{}
	stopped  sync.Once
	sampler  func() (time.Duration, error)
	interval time.Duration
}

// NewIdleMonitor starts a monitor for the given idle timeout
func NewIdleMonitor(timeout time.Duration, log *logger.Logger) *IdleMonitor {
	m := &IdleMonitor{
		timeout:      timeout,
		logger:       log,
		lastActivity: time.Now(),
		stop:         make(chan struct{}),
		interval:     500 * time.Millisecond,
	}
	m.sampler = m.defaultSampler()
	go m.run()
	return m
}

// newIdleMonitorWithSampler is the test seam
func newIdleMonitorWithSampler(timeout time.Duration, log *logger.Logger, sampler func() (time.Duration, error), interval time.Duration) *IdleMonitor {
	m := &IdleMonitor{
		timeout:      timeout,
		logger:       log,
		lastActivity: time.Now(),
		stop:         make(chan struct{}),
		sampler:      sampler,
		interval:     interval,
	}
	go m.run()
	return m
}

// Timeout returns the idle timeout this monitor was armed with
func (m *IdleMonitor) Timeout() time.Duration {
	return m.timeout
}

// IsIdle reports the last observed idle state without blocking
func (m *IdleMonitor) IsIdle() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.isIdle
}

// LastActivity returns the most recent observed user activity time
func (m *IdleMonitor) LastActivity() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastActivity
}

// Stop terminates the background worker
func (m *IdleMonitor) Stop() {
	m.stopped.Do(func() { close(m.stop) })
}

func (m *IdleMonitor) run() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			idleFor, err := m.sampler()
			m.mu.Lock()
			if err != nil {
				// Fail open: an unavailable idle source must never
				// darken the backlight unexpectedly.
				m.isIdle = false
			} else {
				if idleFor < m.interval {
					m.lastActivity = time.Now().Add(-idleFor)
				}
				m.isIdle = idleFor >= m.timeout
			}
			m.mu.Unlock()
		}
	}
}

// defaultSampler prefers xprintidle and falls back to input device
// activity timestamps.
func (m *IdleMonitor) defaultSampler() func() (time.Duration, error) {
	if haveCommand("xprintidle") {
		return sampleXprintidle
	}
	m.logger.Debug("xprintidle not available, using input device fallback")
	return sampleInputDevices
}

func sampleXprintidle() (time.Duration, error) {
	out, err := execWithTimeout("xprintidle", probeTimeout)
	if err != nil {
		return 0, errors.Newf(errors.KindSignal, "xprintidle failed: %v", err)
	}
	ms, err := strconv.ParseInt(out, 10, 64)
	if err != nil {
		return 0, errors.Newf(errors.KindSignal, "unexpected xprintidle output %q", out)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// sampleInputDevices approximates idle time from the newest modification
// time across /dev/input event devices.
func sampleInputDevices() (time.Duration, error) {
	matches, err := filepath.Glob("/dev/input/event*")
	if err != nil || len(matches) == 0 {
		return 0, errors.New(errors.KindSignal, "no input devices found")
	}

	var newest time.Time
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if info.ModTime().After(newest) {
			newest = info.ModTime()
		}
	}
	if newest.IsZero() {
		return 0, errors.New(errors.KindSignal, "no readable input devices")
	}
	return time.Since(newest), nil
}
