package monitors

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/frostdev-ops/kbd-backlight-go/pkg/errors"
)

// PowerState is the sampled AC/battery condition
type PowerState int

const (
	PowerUnknown PowerState = iota
	PowerAC
	PowerBattery
)

func (s PowerState) String() string {
	switch s {
	case PowerAC:
		return "AC"
	case PowerBattery:
		return "Battery"
	default:
		return "Unknown"
	}
}

// PowerDetector samples the AC/battery state from the kernel power
// supply class. A failed sample yields PowerUnknown, which callers treat
// as not-AC.
type PowerDetector struct {
	basePath string
}

// NewPowerDetector creates a detector over /sys/class/power_supply
func NewPowerDetector() *PowerDetector {
	return &PowerDetector{basePath: "/sys/class/power_supply"}
}

// NewPowerDetectorAt creates a detector over an alternate supply tree
func NewPowerDetectorAt(basePath string) *PowerDetector {
	return &PowerDetector{basePath: basePath}
}

// Sample scans the supply entries. A mains supply reporting online=1
// wins; otherwise the battery charging status decides.
func (d *PowerDetector) Sample() (PowerState, error) {
	entries, err := os.ReadDir(d.basePath)
	if err != nil {
		return PowerUnknown, errors.Newf(errors.KindSignal, "cannot read power supply tree: %v", err)
	}

	sawBattery := PowerUnknown
	for _, e := range entries {
		dir := filepath.Join(d.basePath, e.Name())
		typ, err := readTrimmed(filepath.Join(dir, "type"))
		if err != nil {
			continue
		}

		switch typ {
		case "Mains":
			online, err := readTrimmed(filepath.Join(dir, "online"))
			if err == nil && online == "1" {
				return PowerAC, nil
			}
		case "Battery":
			status, err := readTrimmed(filepath.Join(dir, "status"))
			if err != nil {
				continue
			}
			switch status {
			case "Charging", "Full":
				sawBattery = PowerAC
			case "Discharging":
				if sawBattery == PowerUnknown {
					sawBattery = PowerBattery
				}
			}
		}
	}

	if sawBattery != PowerUnknown {
		return sawBattery, nil
	}
	return PowerUnknown, errors.New(errors.KindSignal, "no usable power supply entry found")
}

func readTrimmed(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
