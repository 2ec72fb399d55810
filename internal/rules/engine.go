package rules

import (
	"time"

	"github.com/frostdev-ops/kbd-backlight-go/internal/profiles"
)

// Snapshot is the immutable set of sampled signal values used for one
// decision evaluation. Constructed fresh each tick, never retained.
type Snapshot struct {
	IsIdle              bool
	IsFullscreenOrVideo bool
	Now                 time.Time
	PreviousBrightness  int
}

// Evaluate returns the brightness for a snapshot, active profile and
// optional manual override. Pure and deterministic: no I/O, no side
// effects. Rules are checked in priority order and the first match wins:
//
//  1. manual override
//  2. fullscreen window or video playback -> 0
//  3. user idle -> 0
//  4. latest time schedule at or before the current time of day
//  5. no schedule yet today -> 0
//
// The AC-always-on exception is applied by the orchestration loop after
// this function returns, never here.
func Evaluate(snap Snapshot, profile *profiles.Profile, override *int) int {
	if override != nil {
		return *override
	}
	if snap.IsFullscreenOrVideo {
		return 0
	}
	if snap.IsIdle {
		return 0
	}
	if b, ok := scheduleBrightness(profile.TimeSchedules, snap.Now); ok {
		return b
	}
	return 0
}

// scheduleBrightness selects, among the schedules whose time of day is at
// or before now, the one with the largest minutes-since-midnight value.
// When two schedules share the same time of day the last one in list
// order wins, a deliberate deterministic tie-break.
func scheduleBrightness(schedules []profiles.TimeSchedule, now time.Time) (int, bool) {
	current := now.Hour()*60 + now.Minute()

	best := -1
	brightness := 0
	for _, s := range schedules {
		m := s.MinutesSinceMidnight()
		if m <= current && m >= best {
			best = m
			brightness = s.Brightness
		}
	}
	if best < 0 {
		return 0, false
	}
	return brightness, true
}
