package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frostdev-ops/kbd-backlight-go/internal/config"
	"github.com/frostdev-ops/kbd-backlight-go/internal/daemon"
	"github.com/frostdev-ops/kbd-backlight-go/internal/hardware"
	"github.com/frostdev-ops/kbd-backlight-go/internal/history"
	"github.com/frostdev-ops/kbd-backlight-go/internal/metrics"
	"github.com/frostdev-ops/kbd-backlight-go/internal/monitors"
	"github.com/frostdev-ops/kbd-backlight-go/internal/profiles"
	"github.com/frostdev-ops/kbd-backlight-go/pkg/logger"
	"github.com/frostdev-ops/kbd-backlight-go/pkg/version"
)

func main() {
	// Initialize logger
	log := logger.New()
	log.WithField("version", version.GetVersion()).Info("Starting keyboard backlight daemon...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	// Load profile store
	store, err := profiles.Load(cfg.Profiles.Dir, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to load profiles")
	}

	// Initialize backlight device; a missing or unwritable device is a
	// fatal startup error.
	hw, err := hardware.New(cfg.Hardware.Path, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize backlight device")
	}

	// Optional transition history
	var hist *history.Store
	if cfg.History.Path != "" {
		hist, err = history.Open(cfg.History.Path, log)
		if err != nil {
			log.WithError(err).Warn("History disabled: database unavailable")
			hist = nil
		}
	}

	// Desktop probes degrade to nil when the tooling is missing.
	probes := daemon.Probes{
		Power:    monitors.NewPowerDetector(),
		Location: monitors.NewLocationDetector(),
		NewIdle: func(timeout time.Duration) daemon.IdleProbe {
			return monitors.NewIdleMonitor(timeout, log)
		},
	}
	if fs := monitors.NewFullscreenDetector(); fs != nil {
		probes.Fullscreen = fs
	} else {
		log.Warn("Fullscreen detection unavailable")
	}
	if v := monitors.NewVideoDetector(); v != nil {
		probes.Video = v
	} else {
		log.Warn("Video detection unavailable")
	}

	d, err := daemon.New(cfg, log, store, hw, probes, hist)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize daemon")
	}

	// Optional metrics listener
	go metrics.Serve(cfg.Metrics.ListenAddress, log)

	// Graceful shutdown on interrupt or termination
	ctx, cancel := context.WithCancel(context.Background())
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		cancel()
	}()

	if err := d.Run(ctx); err != nil {
		d.Close()
		log.WithError(err).Fatal("Daemon loop failed")
	}

	d.Close()
	log.Info("Daemon exited")
}
