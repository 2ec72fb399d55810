package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the daemon configuration
type Config struct {
	Hardware HardwareConfig `mapstructure:"hardware"`
	IPC      IPCConfig      `mapstructure:"ipc"`
	Loop     LoopConfig     `mapstructure:"loop"`
	Profiles ProfilesConfig `mapstructure:"profiles"`
	History  HistoryConfig  `mapstructure:"history"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// HardwareConfig holds the sysfs backlight device settings
type HardwareConfig struct {
	Path string `mapstructure:"path"`
}

// IPCConfig holds the control channel settings
type IPCConfig struct {
	SocketPath string `mapstructure:"socket_path"`
}

// LoopConfig holds the orchestration loop cadence settings
type LoopConfig struct {
	FastTick time.Duration `mapstructure:"fast_tick"`
	// SlowTickSpec is a 6-field cron expression fired on minute boundaries
	// so time-schedule transitions are never missed.
	SlowTickSpec string `mapstructure:"slow_tick_spec"`
}

// ProfilesConfig holds the profile store location
type ProfilesConfig struct {
	Dir string `mapstructure:"dir"`
}

// HistoryConfig holds the transition history database settings.
// An empty path disables history recording.
type HistoryConfig struct {
	Path string `mapstructure:"path"`
}

// MetricsConfig holds the optional Prometheus listener settings.
// An empty address disables the listener; metrics are still collected.
type MetricsConfig struct {
	ListenAddress string `mapstructure:"listen_address"`
}

// Load reads configuration from file and environment
func Load() (*Config, error) {
	viper.SetConfigName("daemon")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/etc/kbd-backlight")
	viper.AddConfigPath("$HOME/.config/kbd-backlight")
	viper.AddConfigPath(".")

	// Set defaults
	setDefaults()

	// Environment variables
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Bind environment variables to config keys
	viper.BindEnv("hardware.path", "KBD_HARDWARE_PATH")
	viper.BindEnv("ipc.socket_path", "KBD_SOCKET_PATH")
	viper.BindEnv("profiles.dir", "KBD_PROFILES_DIR")
	viper.BindEnv("history.path", "KBD_HISTORY_PATH")
	viper.BindEnv("metrics.listen_address", "KBD_METRICS_ADDRESS")

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; rely on defaults and environment
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("hardware.path", "/sys/class/leds/platform::kbd_backlight")
	viper.SetDefault("ipc.socket_path", "/tmp/kbd-backlight-daemon.sock")
	viper.SetDefault("loop.fast_tick", time.Second)
	viper.SetDefault("loop.slow_tick_spec", "0 * * * * *")
	viper.SetDefault("profiles.dir", defaultProfilesDir())
	viper.SetDefault("history.path", "")
	viper.SetDefault("metrics.listen_address", "")
}

func defaultProfilesDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "/etc/kbd-backlight/profiles"
	}
	return filepath.Join(home, ".config", "kbd-backlight", "profiles")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errors []string

	if c.Hardware.Path == "" {
		errors = append(errors, "hardware path is required")
	}
	if c.IPC.SocketPath == "" {
		errors = append(errors, "IPC socket path is required")
	}
	if c.Loop.FastTick <= 0 {
		errors = append(errors, "fast tick interval must be positive")
	}
	if len(strings.Fields(c.Loop.SlowTickSpec)) != 6 {
		errors = append(errors, "slow tick spec must be a 6-field cron expression")
	}
	if c.Profiles.Dir == "" {
		errors = append(errors, "profiles directory is required")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}
