package hardware

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/frostdev-ops/kbd-backlight-go/pkg/errors"
	"github.com/frostdev-ops/kbd-backlight-go/pkg/logger"
	"github.com/sirupsen/logrus"
)

// Brightness is the narrow interface the daemon needs from the backlight
// device.
type Brightness interface {
	Max() int
	Current() (int, error)
	Set(value int) error
}

// Controller drives a sysfs LED backlight device, e.g.
// /sys/class/leds/platform::kbd_backlight.
type Controller struct {
	brightnessPath string
	maxPath        string
	max            int
	logger         *logger.Logger
}

// New opens the device, reads its maximum brightness and verifies write
// access by rewriting the current value. Any failure here is fatal to
// startup.
func New(devicePath string, log *logger.Logger) (*Controller, error) {
	c := &Controller{
		brightnessPath: filepath.Join(devicePath, "brightness"),
		maxPath:        filepath.Join(devicePath, "max_brightness"),
		logger:         log,
	}

	max, err := c.readInt(c.maxPath)
	if err != nil {
		return nil, errors.Newf(errors.KindStartup, "cannot read max brightness: %v", err)
	}
	c.max = max

	// Verify both read and write access before the loop starts.
	current, err := c.readInt(c.brightnessPath)
	if err != nil {
		return nil, errors.Newf(errors.KindStartup, "cannot read brightness: %v", err)
	}
	if err := c.writeInt(c.brightnessPath, current); err != nil {
		return nil, errors.Newf(errors.KindStartup, "cannot write brightness (permissions?): %v", err)
	}

	log.WithFields(logrus.Fields{
		"device": devicePath,
		"max":    max,
	}).Info("Backlight device initialized")

	return c, nil
}

// Max returns the device's maximum brightness value
func (c *Controller) Max() int {
	return c.max
}

// Current reads the currently applied brightness from the device
func (c *Controller) Current() (int, error) {
	v, err := c.readInt(c.brightnessPath)
	if err != nil {
		return 0, errors.Newf(errors.KindHardware, "failed to read brightness: %v", err)
	}
	return v, nil
}

// Set writes a brightness value in [0, max]. A value outside the bound is
// a caller error. A failed write is retried once after a short delay
// before reporting failure.
func (c *Controller) Set(value int) error {
	if value < 0 || value > c.max {
		return errors.Newf(errors.KindConfig,
			"brightness %d out of range [0, %d]", value, c.max)
	}

	if err := c.writeInt(c.brightnessPath, value); err == nil {
		return nil
	}

	time.Sleep(10 * time.Millisecond)
	if err := c.writeInt(c.brightnessPath, value); err != nil {
		return errors.Newf(errors.KindHardware, "failed to write brightness %d: %v", value, err)
	}
	return nil
}

func (c *Controller) readInt(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func (c *Controller) writeInt(path string, value int) error {
	return os.WriteFile(path, []byte(strconv.Itoa(value)), 0o644)
}
