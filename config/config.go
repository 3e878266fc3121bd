/*
Package config loads service configuration.

SOURCES (later wins):
  1. Defaults below
  2. Optional YAML file (--config)
  3. DISPENSE_* environment variables, "." mapped to "_"
     e.g. DISPENSE_SERVER_PORT=9090, DISPENSE_SCHEDULE_WINDOW_POLICY=same_day_clipped

EXAMPLE FILE:
  server:
    port: 8080
    cors_origins: ["http://localhost:3000"]
  log:
    level: debug
    format: console
  schedule:
    window_policy: fixed_checkpoint_day
    window_months: 6
    checkpoint_day: 25
    max_iterations: 50
*/
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/warp/dispense/dosing"
	"github.com/warp/dispense/logging"
)

const envPrefix = "DISPENSE"

// =============================================================================
// CONFIG TYPES
// =============================================================================

// Config is the whole service configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      logging.Config `mapstructure:"log"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr is the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// ScheduleConfig holds the generator defaults used when a request does not
// choose its own window.
type ScheduleConfig struct {
	WindowPolicy  string `mapstructure:"window_policy"`
	WindowMonths  int    `mapstructure:"window_months"`
	CheckpointDay int    `mapstructure:"checkpoint_day"`
	MaxIterations int    `mapstructure:"max_iterations"`
}

// Window converts the defaults to a dosing.WindowConfig.
func (s ScheduleConfig) Window() dosing.WindowConfig {
	return dosing.WindowConfig{
		Policy:        dosing.BoundaryPolicy(s.WindowPolicy),
		Months:        s.WindowMonths,
		CheckpointDay: s.CheckpointDay,
	}
}

// =============================================================================
// LOADING
// =============================================================================

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000", "http://localhost:5173"})
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output_paths", []string{"stdout"})

	v.SetDefault("schedule.window_policy", string(dosing.BoundaryLastDayOfNthMonth))
	v.SetDefault("schedule.window_months", dosing.DefaultWindowMonths)
	v.SetDefault("schedule.checkpoint_day", dosing.DefaultCheckpointDay)
	v.SetDefault("schedule.max_iterations", dosing.MaxIterations)
}

// Load reads the optional YAML file at path, applies DISPENSE_* overrides and
// validates the result. An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration with nothing but defaults applied.
func Default() *Config {
	cfg := &Config{}
	// Defaults always unmarshal.
	_ = newViper().Unmarshal(cfg)
	return cfg
}

// =============================================================================
// VALIDATION
// =============================================================================

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid service configuration")

// Validate checks ranges and that the schedule defaults form a usable window.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalidConfig, c.Server.Port)
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("%w: server.shutdown_timeout must not be negative", ErrInvalidConfig)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalidConfig, err)
	}
	if err := c.Schedule.Window().Validate(); err != nil {
		return fmt.Errorf("%w: schedule: %v", ErrInvalidConfig, err)
	}
	if c.Schedule.MaxIterations < 1 {
		return fmt.Errorf("%w: schedule.max_iterations must be at least 1", ErrInvalidConfig)
	}
	return nil
}
