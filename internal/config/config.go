// Package config handles the clock's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"dclock/hal"
	"dclock/internal/logging"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level configuration.
type Config struct {
	Display DisplayConfig `yaml:"display"`
	Clock   ClockConfig   `yaml:"clock"`
	Logging LoggingConfig `yaml:"logging"`
}

// DisplayConfig selects the panel.
type DisplayConfig struct {
	Class  string `yaml:"class"`  // "mono" or "color"
	Width  int    `yaml:"width"`  // pixels
	Height int    `yaml:"height"` // pixels
	Driver string `yaml:"driver"` // "memory", "ssd1306-i2c", "ssd1306-spi"
	Bus    string `yaml:"bus"`    // periph bus name, "" for the first one
	DCPin  string `yaml:"dc_pin"` // SPI data/command GPIO

	BufferBytes  int  `yaml:"buffer_bytes"`  // per draw buffer, 0 = default
	SingleBuffer bool `yaml:"single_buffer"` // color panels only
}

// ClockConfig tunes the clock face and display task.
type ClockConfig struct {
	Timezone    string `yaml:"timezone"` // IANA name or "Local"
	Layout      string `yaml:"layout"`   // Go time layout
	InitialText string `yaml:"initial_text"`

	Quantum         time.Duration `yaml:"quantum"`
	TickPeriod      time.Duration `yaml:"tick_period"`
	RefreshPeriod   time.Duration `yaml:"refresh_period"`
	PostTimeout     time.Duration `yaml:"post_timeout"`
	DispatchTimeout time.Duration `yaml:"dispatch_timeout"`
	QueueSize       int           `yaml:"queue_size"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`       // "debug", "info", "warn", "error"
	Serial     string `yaml:"serial"`      // serial device for log lines, "" = stdout
	SerialBaud int    `yaml:"serial_baud"` // default 115200
}

// DefaultConfig returns the default configuration: an SSD1306-sized
// monochrome panel kept in memory.
func DefaultConfig() *Config {
	return &Config{
		Display: DisplayConfig{
			Class:  "mono",
			Width:  128,
			Height: 64,
			Driver: hal.DriverMemory,
		},
		Clock: ClockConfig{
			Timezone:        "Local",
			Layout:          "02.01.2006\n15:04:05",
			InitialText:     "Hello, there!",
			Quantum:         10 * time.Millisecond,
			TickPeriod:      time.Millisecond,
			RefreshPeriod:   30 * time.Millisecond,
			PostTimeout:     time.Second,
			DispatchTimeout: time.Second,
			QueueSize:       2,
		},
		Logging: LoggingConfig{
			Level:      "info",
			SerialBaud: 115200,
		},
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error

	if _, ok := hal.ParseDisplayClass(c.Display.Class); !ok {
		errs = append(errs, fmt.Errorf("display.class: unknown class %q", c.Display.Class))
	}
	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		errs = append(errs, fmt.Errorf("display: invalid size %dx%d", c.Display.Width, c.Display.Height))
	}
	switch c.Display.Driver {
	case "", hal.DriverMemory, hal.DriverSSD1306I2C:
	case hal.DriverSSD1306SPI:
		if c.Display.DCPin == "" {
			errs = append(errs, errors.New("display.dc_pin: required for ssd1306-spi"))
		}
	default:
		errs = append(errs, fmt.Errorf("display.driver: unknown driver %q", c.Display.Driver))
	}
	if c.Display.BufferBytes < 0 {
		errs = append(errs, fmt.Errorf("display.buffer_bytes: %d is negative", c.Display.BufferBytes))
	} else if c.Display.BufferBytes > 0 && c.Display.Width > 0 {
		if need := c.minBufferBytes(); c.Display.BufferBytes < need {
			errs = append(errs, fmt.Errorf("display.buffer_bytes: %d is below one render chunk (%d)", c.Display.BufferBytes, need))
		}
	}

	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Errorf("clock.timezone: %w", err))
	}
	if c.Clock.Quantum < time.Millisecond {
		errs = append(errs, fmt.Errorf("clock.quantum: %v is below 1ms", c.Clock.Quantum))
	}
	if c.Clock.TickPeriod < time.Millisecond {
		errs = append(errs, fmt.Errorf("clock.tick_period: %v is below 1ms", c.Clock.TickPeriod))
	}
	if c.Clock.QueueSize <= 0 {
		errs = append(errs, fmt.Errorf("clock.queue_size: %d must be positive", c.Clock.QueueSize))
	}
	if c.Clock.PostTimeout < 0 || c.Clock.DispatchTimeout < 0 || c.Clock.RefreshPeriod < 0 {
		errs = append(errs, errors.New("clock: timeouts must not be negative"))
	}

	if !logging.ValidLevel(c.Logging.Level) {
		errs = append(errs, fmt.Errorf("logging.level: unknown level %q", c.Logging.Level))
	}
	return errors.Join(errs...)
}

// Location resolves Clock.Timezone.
func (c *Config) Location() (*time.Location, error) {
	switch c.Clock.Timezone {
	case "", "Local":
		return time.Local, nil
	default:
		return time.LoadLocation(c.Clock.Timezone)
	}
}

// DisplayClass returns the parsed display class, or monochrome when the
// value is invalid.
func (c *Config) DisplayClass() hal.DisplayClass {
	class, ok := hal.ParseDisplayClass(c.Display.Class)
	if !ok {
		return hal.ClassMonochrome
	}
	return class
}

// minBufferBytes is one page of the panel on monochrome and one RGB565
// row on color.
func (c *Config) minBufferBytes() int {
	if c.DisplayClass() == hal.ClassMonochrome {
		return c.Display.Width
	}
	return c.Display.Width * 2
}
