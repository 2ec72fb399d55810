package rules

import (
	"testing"
	"time"

	"github.com/frostdev-ops/kbd-backlight-go/internal/profiles"
	"github.com/stretchr/testify/assert"
)

func testProfile() *profiles.Profile {
	return &profiles.Profile{
		Name:            "test",
		IdleTimeoutSecs: 30,
		TimeSchedules: []profiles.TimeSchedule{
			{Hour: 9, Minute: 0, Brightness: 2},
			{Hour: 14, Minute: 30, Brightness: 3},
			{Hour: 22, Minute: 0, Brightness: 1},
		},
	}
}

func at(hour, minute int) time.Time {
	return time.Date(2026, 8, 28, hour, minute, 0, 0, time.Local)
}

func intPtr(v int) *int { return &v }

func TestEvaluatePriorityOrder(t *testing.T) {
	profile := testProfile()

	tests := []struct {
		name     string
		snap     Snapshot
		override *int
		expected int
	}{
		{
			name:     "manual override wins over everything",
			snap:     Snapshot{IsIdle: true, IsFullscreenOrVideo: true, Now: at(10, 0)},
			override: intPtr(3),
			expected: 3,
		},
		{
			name:     "override of zero is still an override",
			snap:     Snapshot{Now: at(10, 0)},
			override: intPtr(0),
			expected: 0,
		},
		{
			name:     "fullscreen beats idle and schedule",
			snap:     Snapshot{IsIdle: true, IsFullscreenOrVideo: true, Now: at(10, 0)},
			expected: 0,
		},
		{
			name:     "idle beats schedule",
			snap:     Snapshot{IsIdle: true, Now: at(10, 0)},
			expected: 0,
		},
		{
			name:     "schedule applies when active and awake",
			snap:     Snapshot{Now: at(10, 0)},
			expected: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Evaluate(tt.snap, profile, tt.override))
		})
	}
}

func TestEvaluateTimeSchedules(t *testing.T) {
	profile := testProfile()

	tests := []struct {
		name     string
		hour     int
		minute   int
		expected int
	}{
		{"before any schedule", 8, 0, 0},
		{"exactly at first schedule", 9, 0, 2},
		{"between first and second", 12, 0, 2},
		{"one minute before second", 14, 29, 2},
		{"exactly at second schedule", 14, 30, 3},
		{"between second and third", 18, 0, 3},
		{"exactly at third schedule", 22, 0, 1},
		{"after last schedule", 23, 30, 1},
		{"midnight, nothing yet", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := Snapshot{Now: at(tt.hour, tt.minute)}
			assert.Equal(t, tt.expected, Evaluate(snap, profile, nil))
		})
	}
}

func TestEvaluateEmptySchedules(t *testing.T) {
	profile := &profiles.Profile{Name: "empty", IdleTimeoutSecs: 30}
	snap := Snapshot{Now: at(12, 0)}
	assert.Equal(t, 0, Evaluate(snap, profile, nil))
}

func TestEvaluateScenarioA(t *testing.T) {
	profile := &profiles.Profile{
		Name:            "home",
		IdleTimeoutSecs: 30,
		TimeSchedules: []profiles.TimeSchedule{
			{Hour: 9, Minute: 0, Brightness: 1},
			{Hour: 22, Minute: 0, Brightness: 0},
		},
	}

	assert.Equal(t, 1, Evaluate(Snapshot{Now: at(10, 0)}, profile, nil))
	assert.Equal(t, 0, Evaluate(Snapshot{Now: at(23, 0)}, profile, nil))
	assert.Equal(t, 0, Evaluate(Snapshot{Now: at(8, 0)}, profile, nil))
}

func TestEvaluateBoundarySchedules(t *testing.T) {
	profile := &profiles.Profile{
		Name:            "boundary",
		IdleTimeoutSecs: 30,
		TimeSchedules: []profiles.TimeSchedule{
			{Hour: 0, Minute: 0, Brightness: 2},
			{Hour: 23, Minute: 59, Brightness: 3},
		},
	}

	assert.Equal(t, 2, Evaluate(Snapshot{Now: at(0, 0)}, profile, nil))
	assert.Equal(t, 2, Evaluate(Snapshot{Now: at(23, 58)}, profile, nil))
	assert.Equal(t, 3, Evaluate(Snapshot{Now: at(23, 59)}, profile, nil))
}

func TestEvaluateDuplicateTimesLastWins(t *testing.T) {
	profile := &profiles.Profile{
		Name:            "dup",
		IdleTimeoutSecs: 30,
		TimeSchedules: []profiles.TimeSchedule{
			{Hour: 9, Minute: 0, Brightness: 1},
			{Hour: 9, Minute: 0, Brightness: 2},
		},
	}

	assert.Equal(t, 2, Evaluate(Snapshot{Now: at(9, 30)}, profile, nil))
}

func TestEvaluateProfileSwitchChangesDecision(t *testing.T) {
	day := &profiles.Profile{
		Name:            "day",
		IdleTimeoutSecs: 30,
		TimeSchedules:   []profiles.TimeSchedule{{Hour: 8, Minute: 0, Brightness: 3}},
	}
	night := &profiles.Profile{
		Name:            "night",
		IdleTimeoutSecs: 30,
		TimeSchedules:   []profiles.TimeSchedule{{Hour: 8, Minute: 0, Brightness: 1}},
	}

	snap := Snapshot{Now: at(12, 0)}
	assert.Equal(t, 3, Evaluate(snap, day, nil))
	assert.Equal(t, 1, Evaluate(snap, night, nil))
}
