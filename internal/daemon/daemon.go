package daemon

import (
	"context"
	"time"

	"github.com/frostdev-ops/kbd-backlight-go/internal/config"
	"github.com/frostdev-ops/kbd-backlight-go/internal/hardware"
	"github.com/frostdev-ops/kbd-backlight-go/internal/history"
	"github.com/frostdev-ops/kbd-backlight-go/internal/ipc"
	"github.com/frostdev-ops/kbd-backlight-go/internal/metrics"
	"github.com/frostdev-ops/kbd-backlight-go/internal/monitors"
	"github.com/frostdev-ops/kbd-backlight-go/internal/profiles"
	"github.com/frostdev-ops/kbd-backlight-go/internal/rules"
	"github.com/frostdev-ops/kbd-backlight-go/pkg/logger"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// PowerSampler samples the AC/battery state
type PowerSampler interface {
	Sample() (monitors.PowerState, error)
}

// SSIDSampler samples the connected WiFi network name
type SSIDSampler interface {
	Sample() (string, error)
}

// BoolSampler samples a boolean signal (fullscreen, video playback)
type BoolSampler interface {
	Sample() (bool, error)
}

// IdleProbe is a long-lived idleness source armed for one timeout
type IdleProbe interface {
	IsIdle() bool
	Timeout() time.Duration
	Stop()
}

// Probes bundles the signal sources handed to the daemon. Fullscreen
// and Video may be nil when the desktop tooling is unavailable; those
// capabilities then contribute false to every snapshot.
type Probes struct {
	Power      PowerSampler
	Location   SSIDSampler
	Fullscreen BoolSampler
	Video      BoolSampler
	NewIdle    func(timeout time.Duration) IdleProbe
}

// Daemon owns the shared state and drives the evaluate-and-apply loop
type Daemon struct {
	cfg     *config.Config
	logger  *logger.Logger
	store   *profiles.Store
	hw      hardware.Brightness
	probes  Probes
	history *history.Store

	server *ipc.Server
	cron   *cron.Cron

	state daemonState

	idle IdleProbe

	forceEval chan struct{}
	shutdown  chan struct{}
}

// New wires the daemon together and binds the control socket. The
// initial brightness is read from the device so the first tick's
// difference check starts from reality.
func New(cfg *config.Config, log *logger.Logger, store *profiles.Store, hw hardware.Brightness, probes Probes, hist *history.Store) (*Daemon, error) {
	server, err := ipc.NewServer(cfg.IPC.SocketPath, log)
	if err != nil {
		return nil, err
	}

	current, err := hw.Current()
	if err != nil {
		server.Close()
		return nil, err
	}

	d := &Daemon{
		cfg:     cfg,
		logger:  log,
		store:   store,
		hw:      hw,
		probes:  probes,
		history: hist,
		server:  server,
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger), cron.Recover(cron.DefaultLogger)),
		),
		forceEval: make(chan struct{}, 1),
		shutdown:  make(chan struct{}),
	}
	d.state.brightness = current
	metrics.Brightness.Set(float64(current))

	return d, nil
}

// Run drives the event loop until ctx is cancelled or a Shutdown
// request arrives. Timers, control connections and forced evaluations
// are multiplexed onto this single goroutine, so control mutations are
// atomic with respect to ticks.
func (d *Daemon) Run(ctx context.Context) error {
	slowTick := make(chan time.Time, 1)
	if _, err := d.cron.AddFunc(d.cfg.Loop.SlowTickSpec, func() {
		select {
		case slowTick <- time.Now():
		default:
		}
	}); err != nil {
		return err
	}
	d.cron.Start()

	fast := time.NewTicker(d.cfg.Loop.FastTick)
	defer fast.Stop()

	conns := d.server.Connections()

	d.logger.WithFields(logrus.Fields{
		"fast_tick": d.cfg.Loop.FastTick.String(),
		"slow_tick": d.cfg.Loop.SlowTickSpec,
	}).Info("Daemon started")

	// Apply the rules once before the first timer fires.
	d.tick("startup")

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Shutdown signal received")
			return nil
		case <-d.shutdown:
			d.logger.Info("Shutdown requested over control channel")
			return nil
		case <-fast.C:
			d.tick("fast")
		case <-slowTick:
			d.tick("slow")
		case <-d.forceEval:
			d.tick("forced")
		case conn, ok := <-conns:
			if !ok {
				return nil
			}
			d.server.Serve(conn, d.handleRequest)
		}
	}
}

// Close releases the daemon's resources after Run returns
func (d *Daemon) Close() {
	d.cron.Stop()
	if d.idle != nil {
		d.idle.Stop()
	}
	if err := d.server.Close(); err != nil {
		d.logger.WithError(err).Warn("Failed to close control channel")
	}
	if d.history != nil {
		if err := d.history.Close(); err != nil {
			d.logger.WithError(err).Warn("Failed to close history store")
		}
	}
}

// tick runs one full sample-evaluate-apply pass
func (d *Daemon) tick(cadence string) {
	metrics.TicksTotal.WithLabelValues(cadence).Inc()

	if d.store.AutoSwitchLocation() {
		d.checkLocationSwitch()
	}

	power := d.samplePower()

	activeName, profile := d.store.Active()
	d.rearmIdleProbe(profile)

	isIdle := d.idle.IsIdle()
	fullscreenOrVideo := d.sampleFullscreenOrVideo(profile)

	d.state.setSignals(isIdle, fullscreenOrVideo)

	override := d.state.overrideValue()
	previous := d.state.currentBrightness()

	snap := rules.Snapshot{
		IsIdle:              isIdle,
		IsFullscreenOrVideo: fullscreenOrVideo,
		Now:                 time.Now(),
		PreviousBrightness:  previous,
	}

	target := rules.Evaluate(snap, profile, override)
	reason := decisionReason(snap, profile, override)

	// AC-always-on pins the backlight to a dim level while plugged in,
	// unless video is playing or the operator overrode the brightness.
	// It replaces the decision in both directions: an idle 0 is raised
	// and a schedule value above 1 is dimmed.
	if profile.ACAlwaysOn && power == monitors.PowerAC && !fullscreenOrVideo && override == nil {
		target = 1
		reason = "ac_always_on"
	}

	if target == previous {
		return
	}

	if err := d.hw.Set(target); err != nil {
		// Fatal to this tick only. The cached brightness is left
		// untouched so the next difference check retries the write.
		metrics.HardwareWriteFailuresTotal.Inc()
		d.logger.WithError(err).WithField("brightness", target).Error("Failed to apply brightness")
		return
	}

	d.state.setBrightness(target)
	metrics.HardwareWritesTotal.Inc()
	metrics.Brightness.Set(float64(target))

	d.logger.WithFields(logrus.Fields{
		"from":   previous,
		"to":     target,
		"idle":   isIdle,
		"video":  fullscreenOrVideo,
		"power":  power.String(),
		"reason": reason,
	}).Info("Brightness changed")

	d.recordTransition(target, previous, reason, activeName)
}

// checkLocationSwitch swaps the active profile when the WiFi network
// changes and maps to a different profile. SSID sampling failures are
// treated as no change.
func (d *Daemon) checkLocationSwitch() {
	ssid, err := d.probes.Location.Sample()
	if err != nil {
		metrics.ProbeFailuresTotal.WithLabelValues("location").Inc()
		return
	}

	if ssid == "" || ssid == d.state.lastObservedSSID() {
		d.state.setLastSSID(ssid)
		return
	}

	d.state.setLastSSID(ssid)

	target, ok := d.store.SSIDMap()[ssid]
	if !ok {
		return
	}
	active, _ := d.store.Active()
	if target == active {
		return
	}

	if err := d.store.SetActive(target); err != nil {
		d.logger.WithError(err).WithField("profile", target).Warn("Location profile switch failed")
		return
	}

	d.state.invalidateIdleTimeout()
	d.logger.WithFields(logrus.Fields{
		"ssid":    ssid,
		"profile": target,
	}).Info("Switched profile for location")
}

func (d *Daemon) samplePower() monitors.PowerState {
	state, err := d.probes.Power.Sample()
	if err != nil {
		metrics.ProbeFailuresTotal.WithLabelValues("power").Inc()
		return monitors.PowerUnknown
	}
	return state
}

// rearmIdleProbe replaces the idle probe when the active profile's
// timeout differs from the armed one. Probes are long-lived; recreating
// them every tick would leak subscriptions.
func (d *Daemon) rearmIdleProbe(profile *profiles.Profile) {
	timeout := time.Duration(profile.IdleTimeoutSecs) * time.Second
	if d.idle != nil && d.state.idleTimeout() == timeout {
		return
	}

	if d.idle != nil {
		d.idle.Stop()
	}
	d.idle = d.probes.NewIdle(timeout)
	d.state.setIdleTimeout(timeout)

	d.logger.WithField("timeout", timeout.String()).Debug("Idle probe armed")
}

// sampleFullscreenOrVideo uses the video-playback signal when the
// profile enables video detection, and the fullscreen-window signal
// only when it does not. A profile asking for video detection without a
// video probe available contributes false rather than falling back.
func (d *Daemon) sampleFullscreenOrVideo(profile *profiles.Profile) bool {
	if profile.VideoDetectionEnabled {
		if d.probes.Video == nil {
			return false
		}
		playing, err := d.probes.Video.Sample()
		if err != nil {
			metrics.ProbeFailuresTotal.WithLabelValues("video").Inc()
			return false
		}
		return playing
	}

	if d.probes.Fullscreen == nil {
		return false
	}
	full, err := d.probes.Fullscreen.Sample()
	if err != nil {
		metrics.ProbeFailuresTotal.WithLabelValues("fullscreen").Inc()
		return false
	}
	return full
}

func (d *Daemon) recordTransition(brightness, previous int, reason, profile string) {
	if d.history == nil {
		return
	}
	err := d.history.Record(history.Transition{
		Timestamp:  time.Now().UTC(),
		Brightness: brightness,
		Previous:   previous,
		Reason:     reason,
		Profile:    profile,
	})
	if err != nil {
		d.logger.WithError(err).Debug("Failed to record brightness transition")
	}
}

// decisionReason names the rule that produced the decision, for logs
// and the transition history.
func decisionReason(snap rules.Snapshot, profile *profiles.Profile, override *int) string {
	switch {
	case override != nil:
		return "override"
	case snap.IsFullscreenOrVideo:
		return "video"
	case snap.IsIdle:
		return "idle"
	}
	for _, s := range profile.TimeSchedules {
		if s.MinutesSinceMidnight() <= snap.Now.Hour()*60+snap.Now.Minute() {
			return "schedule"
		}
	}
	return "default"
}

// forceEvaluation schedules an immediate out-of-band tick
func (d *Daemon) forceEvaluation() {
	select {
	case d.forceEval <- struct{}{}:
	default:
	}
}
