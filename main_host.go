//go:build !tinygo

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync/atomic"

	"dclock/app"
	"dclock/hal"
	"dclock/internal/config"
)

// overrides are command line values that win over the config file.
type overrides struct {
	class     string
	width     int
	height    int
	driver    string
	bus       string
	dcPin     string
	tz        string
	layout    string
	level     string
	serialLog string
}

func (o overrides) apply(cfg *config.Config) {
	if o.class != "" {
		cfg.Display.Class = o.class
		if class, ok := hal.ParseDisplayClass(o.class); ok && class == hal.ClassColor && o.width == 0 && o.height == 0 {
			cfg.Display.Width, cfg.Display.Height = 160, 128
		}
	}
	if o.width > 0 {
		cfg.Display.Width = o.width
	}
	if o.height > 0 {
		cfg.Display.Height = o.height
	}
	if o.driver != "" {
		cfg.Display.Driver = o.driver
	}
	if o.bus != "" {
		cfg.Display.Bus = o.bus
	}
	if o.dcPin != "" {
		cfg.Display.DCPin = o.dcPin
	}
	if o.tz != "" {
		cfg.Clock.Timezone = o.tz
	}
	if o.layout != "" {
		cfg.Clock.Layout = o.layout
	}
	if o.level != "" {
		cfg.Logging.Level = o.level
	}
	if o.serialLog != "" {
		cfg.Logging.Serial = o.serialLog
	}
}

func main() {
	if err := run(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var hc hal.HeadlessConfig
	var o overrides
	var configPath string
	flag.BoolVar(&hc.Enabled, "headless", false, "Run without a window.")
	flag.IntVar(&hc.Hz, "hz", 60, "Step rate in headless mode.")
	flag.Uint64Var(&hc.Ticks, "ticks", 0, "Stop after N steps in headless mode (0 = run forever).")
	flag.StringVar(&configPath, "config", "", "YAML config file, reloaded when it changes.")
	flag.StringVar(&o.class, "class", "", "Display class: mono or color.")
	flag.IntVar(&o.width, "width", 0, "Panel width in pixels.")
	flag.IntVar(&o.height, "height", 0, "Panel height in pixels.")
	flag.StringVar(&o.driver, "driver", "", "Panel driver: memory, ssd1306-i2c or ssd1306-spi.")
	flag.StringVar(&o.bus, "bus", "", "I2C/SPI bus name for hardware panels.")
	flag.StringVar(&o.dcPin, "dc-pin", "", "Data/command GPIO for SPI panels.")
	flag.StringVar(&o.tz, "tz", "", "IANA timezone, e.g. Europe/Berlin.")
	flag.StringVar(&o.layout, "layout", "", "Go time layout for the clock face.")
	flag.StringVar(&o.level, "log-level", "", "Log level: debug, info, warn or error.")
	flag.StringVar(&o.serialLog, "log-serial", "", "Serial device to send log lines to.")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	o.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	h, err := hal.New(hal.Options{
		Class:      cfg.DisplayClass(),
		Width:      cfg.Display.Width,
		Height:     cfg.Display.Height,
		Driver:     cfg.Display.Driver,
		Bus:        cfg.Display.Bus,
		DCPin:      cfg.Display.DCPin,
		SerialLog:  cfg.Logging.Serial,
		SerialBaud: cfg.Logging.SerialBaud,
	})
	if err != nil {
		return err
	}
	if c, ok := h.(io.Closer); ok {
		defer c.Close()
	}

	var sys atomic.Pointer[app.System]
	var watcher *config.Watcher
	newApp := func(h hal.HAL) func() error {
		s, step := app.New(h, cfg)
		if s == nil {
			return step
		}
		sys.Store(s)
		if configPath == "" {
			return step
		}
		// The watcher starts after the system so reload messages go through
		// the configured log sink.
		w, err := config.NewWatcher(configPath, config.WatchOptions{
			Logger:   s.Logger(),
			Adjust:   o.apply,
			OnChange: s.Apply,
		})
		if err != nil {
			return func() error { return fmt.Errorf("watch config: %w", err) }
		}
		watcher = w
		return step
	}
	defer func() {
		if s := sys.Load(); s != nil {
			s.Close()
		}
	}()
	defer func() {
		if watcher != nil {
			watcher.Close()
		}
	}()

	if hc.Enabled {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		return hal.RunHeadless(ctx, h, newApp, hc)
	}
	return hal.RunWindow(h, newApp)
}
