package daemon

import (
	"fmt"

	"github.com/frostdev-ops/kbd-backlight-go/internal/ipc"
	"github.com/frostdev-ops/kbd-backlight-go/internal/metrics"
	"github.com/frostdev-ops/kbd-backlight-go/internal/profiles"
	"github.com/sirupsen/logrus"
)

// handleRequest performs one control request's effect on shared state
// and returns the response. It runs on the event loop goroutine, so
// every mutation is atomic with respect to ticks. A nil response means
// the connection gets no reply (Shutdown).
func (d *Daemon) handleRequest(req ipc.Request) ipc.Response {
	switch r := req.(type) {
	case ipc.GetStatus:
		metrics.IPCRequestsTotal.WithLabelValues("get_status").Inc()
		return d.handleGetStatus()
	case ipc.SetProfile:
		metrics.IPCRequestsTotal.WithLabelValues("set_profile").Inc()
		return d.handleSetProfile(r)
	case ipc.SetManualBrightness:
		metrics.IPCRequestsTotal.WithLabelValues("set_manual_brightness").Inc()
		return d.handleSetManualBrightness(r)
	case ipc.ClearManualOverride:
		metrics.IPCRequestsTotal.WithLabelValues("clear_manual_override").Inc()
		d.state.clearOverride()
		d.logger.Info("Manual override cleared")
		return ipc.OK{}
	case ipc.ListProfiles:
		metrics.IPCRequestsTotal.WithLabelValues("list_profiles").Inc()
		return ipc.ProfileList{Profiles: d.store.Names()}
	case ipc.AddTimeSchedule:
		metrics.IPCRequestsTotal.WithLabelValues("add_time_schedule").Inc()
		return d.handleAddTimeSchedule(r)
	case ipc.Shutdown:
		metrics.IPCRequestsTotal.WithLabelValues("shutdown").Inc()
		close(d.shutdown)
		return nil
	default:
		return ipc.Error{Message: fmt.Sprintf("unsupported request %T", req)}
	}
}

func (d *Daemon) handleGetStatus() ipc.Response {
	active, _ := d.store.Active()
	idle, fullscreen := d.state.signals()
	return ipc.Status{
		ActiveProfile:  active,
		Brightness:     d.state.currentBrightness(),
		IsIdle:         idle,
		IsFullscreen:   fullscreen,
		ManualOverride: d.state.overrideValue(),
	}
}

func (d *Daemon) handleSetProfile(r ipc.SetProfile) ipc.Response {
	// SetActive validates existence, persists the selection and rolls
	// the in-memory swap back if persistence fails.
	if err := d.store.SetActive(r.Name); err != nil {
		return ipc.Error{Message: err.Error()}
	}

	d.state.invalidateIdleTimeout()
	d.forceEvaluation()

	d.logger.WithField("profile", r.Name).Info("Active profile changed")
	return ipc.ProfileChanged{Name: r.Name}
}

func (d *Daemon) handleSetManualBrightness(r ipc.SetManualBrightness) ipc.Response {
	if r.Brightness < 0 || r.Brightness > d.hw.Max() {
		return ipc.Error{Message: fmt.Sprintf(
			"brightness %d out of range [0, %d]", r.Brightness, d.hw.Max())}
	}

	d.state.setOverride(r.Brightness)

	// The override is applied immediately, not on the next tick.
	previous := d.state.currentBrightness()
	if previous != r.Brightness {
		if err := d.hw.Set(r.Brightness); err != nil {
			metrics.HardwareWriteFailuresTotal.Inc()
			return ipc.Error{Message: fmt.Sprintf("failed to apply brightness: %v", err)}
		}
		d.state.setBrightness(r.Brightness)
		metrics.HardwareWritesTotal.Inc()
		metrics.Brightness.Set(float64(r.Brightness))

		active, _ := d.store.Active()
		d.recordTransition(r.Brightness, previous, "override", active)
	}

	d.logger.WithField("brightness", r.Brightness).Info("Manual override set")
	return ipc.BrightnessSet{Brightness: r.Brightness}
}

func (d *Daemon) handleAddTimeSchedule(r ipc.AddTimeSchedule) ipc.Response {
	schedule := profiles.TimeSchedule{Hour: r.Hour, Minute: r.Minute, Brightness: r.Brightness}
	if err := d.store.AppendSchedule(r.Profile, schedule); err != nil {
		return ipc.Error{Message: err.Error()}
	}

	d.logger.WithFields(logrus.Fields{
		"profile": r.Profile,
		"time":    fmt.Sprintf("%02d:%02d", r.Hour, r.Minute),
		"level":   r.Brightness,
	}).Info("Time schedule added")
	return ipc.ScheduleAdded{}
}
