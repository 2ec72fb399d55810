package profiles

import (
	"fmt"
	"strings"
)

// TimeSchedule sets a brightness level starting at a time of day.
// Duplicate times are legal; the last one in list order wins.
type TimeSchedule struct {
	Hour       uint8 `yaml:"hour" json:"hour"`
	Minute     uint8 `yaml:"minute" json:"minute"`
	Brightness int   `yaml:"brightness" json:"brightness"`
}

// MinutesSinceMidnight returns the schedule's time of day in minutes
func (s TimeSchedule) MinutesSinceMidnight() int {
	return int(s.Hour)*60 + int(s.Minute)
}

// Validate checks the schedule's time of day and brightness
func (s TimeSchedule) Validate() error {
	if s.Hour > 23 {
		return fmt.Errorf("invalid hour %d (must be 0-23)", s.Hour)
	}
	if s.Minute > 59 {
		return fmt.Errorf("invalid minute %d (must be 0-59)", s.Minute)
	}
	if s.Brightness < 0 {
		return fmt.Errorf("invalid brightness %d (must be non-negative)", s.Brightness)
	}
	return nil
}

// Profile is a named bundle of automation rules selectable by location
// or manual command.
type Profile struct {
	Name                  string         `yaml:"name" json:"name"`
	IdleTimeoutSecs       uint64         `yaml:"idle_timeout" json:"idle_timeout"`
	TimeSchedules         []TimeSchedule `yaml:"time_schedules" json:"time_schedules"`
	VideoDetectionEnabled bool           `yaml:"video_detection_enabled" json:"video_detection_enabled"`
	WiFiNetworks          []string       `yaml:"wifi_networks" json:"wifi_networks"`
	ACAlwaysOn            bool           `yaml:"ac_always_on" json:"ac_always_on"`
}

// Validate checks the profile's invariants
func (p *Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("profile name must not be empty")
	}
	if p.IdleTimeoutSecs == 0 {
		return fmt.Errorf("profile '%s': idle_timeout must be greater than zero", p.Name)
	}
	for i, s := range p.TimeSchedules {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("profile '%s' schedule %d: %w", p.Name, i, err)
		}
	}
	return nil
}

// Clone returns a deep copy of the profile
func (p *Profile) Clone() *Profile {
	c := *p
	c.TimeSchedules = append([]TimeSchedule(nil), p.TimeSchedules...)
	c.WiFiNetworks = append([]string(nil), p.WiFiNetworks...)
	return &c
}

// DefaultProfile returns the profile written on first run
func DefaultProfile() *Profile {
	return &Profile{
		Name:            "home",
		IdleTimeoutSecs: 30,
		TimeSchedules: []TimeSchedule{
			{Hour: 9, Minute: 0, Brightness: 1},
			{Hour: 22, Minute: 0, Brightness: 0},
		},
	}
}
