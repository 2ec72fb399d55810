package metrics

import (
	"net/http"
	"time"

	"github.com/frostdev-ops/kbd-backlight-go/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// TicksTotal counts evaluation passes by cadence (fast, slow, forced)
	TicksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kbd_ticks_total",
		Help: "Number of evaluation ticks by cadence",
	}, []string{"cadence"})

	// HardwareWritesTotal counts applied brightness writes
	HardwareWritesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kbd_hw_writes_total",
		Help: "Number of brightness values written to the device",
	})

	// HardwareWriteFailuresTotal counts failed brightness writes
	HardwareWriteFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kbd_hw_write_failures_total",
		Help: "Number of failed brightness writes",
	})

	// IPCRequestsTotal counts control channel requests by type
	IPCRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kbd_ipc_requests_total",
		Help: "Number of control channel requests by type",
	}, []string{"type"})

	// ProbeFailuresTotal counts recoverable signal probe failures
	ProbeFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kbd_probe_failures_total",
		Help: "Number of recoverable signal probe failures",
	}, []string{"probe"})

	// Brightness reports the currently applied brightness
	Brightness = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kbd_brightness",
		Help: "Currently applied keyboard backlight brightness",
	})
)

// Serve exposes /metrics on the given address. It blocks, so callers
// run it on its own goroutine; an empty address disables the listener.
func Serve(address string, log *logger.Logger) {
	if address == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.WithField("address", address).Info("Metrics listener started")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Warn("Metrics listener stopped")
	}
}
