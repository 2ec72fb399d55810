package monitors

import (
	"strings"

	"github.com/frostdev-ops/kbd-backlight-go/pkg/errors"
)

// LocationDetector samples the currently connected WiFi SSID. It tries
// NetworkManager first and falls back to iw. A failed sample is reported
// as an error and callers treat it as "no change".
type LocationDetector struct {
	runner func(command string) (string, error)
}

// NewLocationDetector creates an SSID detector using the system tools
func NewLocationDetector() *LocationDetector {
	return &LocationDetector{
		runner: func(command string) (string, error) {
			return execWithTimeout(command, probeTimeout)
		},
	}
}

// Sample returns the active SSID, or empty when not connected to WiFi
func (d *LocationDetector) Sample() (string, error) {
	if ssid, err := d.sampleNmcli(); err == nil {
		return ssid, nil
	}
	return d.sampleIw()
}

func (d *LocationDetector) sampleNmcli() (string, error) {
	out, err := d.runner("nmcli -t -f active,ssid dev wifi")
	if err != nil {
		return "", errors.Newf(errors.KindSignal, "nmcli failed: %v", err)
	}
	return parseNmcliSSID(out), nil
}

func (d *LocationDetector) sampleIw() (string, error) {
	out, err := d.runner("iw dev $(iw dev | awk '/Interface/{print $2; exit}') link")
	if err != nil {
		return "", errors.Newf(errors.KindSignal, "iw failed: %v", err)
	}
	return parseIwSSID(out), nil
}

// parseNmcliSSID extracts the SSID from terse nmcli output, lines of the
// form "yes:MyNetwork" or "no:Other".
func parseNmcliSSID(out string) string {
	for _, line := range strings.Split(out, "\n") {
		if rest, ok := strings.CutPrefix(line, "yes:"); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}

// parseIwSSID extracts the SSID from "iw dev <if> link" output
func parseIwSSID(out string) string {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(line, "SSID: "); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}
