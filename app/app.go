package app

import (
	"fmt"
	"log/slog"
	"sync"

	"dclock/clock"
	"dclock/event"
	"dclock/hal"
	"dclock/internal/config"
	"dclock/internal/logging"
)

// System is a running clock: the handle, its clock face and the logger
// they share.
type System struct {
	h     hal.HAL
	log   *slog.Logger
	level *slog.LevelVar

	mu  sync.Mutex
	cfg *config.Config

	clock *clock.Handle
	face  *clock.TimeLabelHandler
	reg   event.Registration
}

// Start prints the boot banner, creates the clock handle on the HAL's
// panel and registers the time label handler.
func Start(h hal.HAL, cfg *config.Config) (*System, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	bootDiagStart(h)
	bootDiagSetStep("logging")

	log, level := logging.Setup(h.Logger(), cfg.Logging.Level)
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}
	logBanner(log, loc)

	bootDiagSetStep("clock")
	hd, err := clock.New(h.Panel(), clockOptions(cfg, log))
	if err != nil {
		return nil, err
	}

	s := &System{
		h:     h,
		log:   log,
		level: level,
		cfg:   cfg,
		clock: hd,
	}
	s.face = clock.NewTimeLabelHandler(hd, loc, cfg.Clock.Layout, log)
	s.reg, err = hd.RegisterHandler(s.face.Handle, nil)
	if err != nil {
		hd.Close()
		return nil, err
	}

	bootDiagSetStep("running")
	log.Info("main loop")
	return s, nil
}

func clockOptions(cfg *config.Config, log *slog.Logger) clock.Options {
	return clock.Options{
		BufferBytes:     cfg.Display.BufferBytes,
		SingleBuffer:    cfg.Display.SingleBuffer,
		QueueSize:       cfg.Clock.QueueSize,
		Quantum:         cfg.Clock.Quantum,
		TickPeriod:      cfg.Clock.TickPeriod,
		PostTimeout:     cfg.Clock.PostTimeout,
		DispatchTimeout: cfg.Clock.DispatchTimeout,
		RefreshPeriod:   cfg.Clock.RefreshPeriod,
		InitialText:     cfg.Clock.InitialText,
		Logger:          log.With("component", "clock"),
	}
}

// Apply takes the settings that can change while running from a reloaded
// config: log level, timezone and time layout. Display and task settings
// need a restart.
func (s *System) Apply(cfg *config.Config) {
	loc, err := cfg.Location()
	if err != nil {
		s.log.Warn("ignoring config", "err", err)
		return
	}

	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()

	s.level.Set(logging.ParseLevel(cfg.Logging.Level))
	s.face.SetLocation(loc)
	s.face.SetLayout(cfg.Clock.Layout)
	s.log.Info("config applied", "level", cfg.Logging.Level, "timezone", loc.String())
}

// Logger returns the system logger, which writes to the HAL log sink.
func (s *System) Logger() *slog.Logger { return s.log }

// Clock returns the clock handle.
func (s *System) Clock() *clock.Handle { return s.clock }

// Step is called by the host runners once per frame. The clock runs on
// its own goroutines, so it only reports whether the task is still alive.
func (s *System) Step() error {
	if st := s.clock.State(); st != clock.TaskRunning {
		return fmt.Errorf("clock task %s", st)
	}
	return nil
}

// Close unregisters the clock face and releases the handle.
func (s *System) Close() error {
	if err := s.clock.UnregisterHandler(s.reg); err != nil {
		s.log.Warn("unregister clock face", "err", err)
	}
	return s.clock.Close()
}

// New starts the clock and returns a step function for the host runners.
// A start failure is reported by the first step.
func New(h hal.HAL, cfg *config.Config) (*System, func() error) {
	s, err := Start(h, cfg)
	if err != nil {
		h.Logger().WriteLineString("dclock: " + err.Error())
		return nil, func() error { return err }
	}
	return s, guardStep(h.Logger(), s.Step)
}

// Run starts the clock and blocks forever (TinyGo entrypoint).
func Run(h hal.HAL, cfg *config.Config) {
	if _, err := Start(h, cfg); err != nil {
		h.Logger().WriteLineString("dclock: " + err.Error())
	}
	select {}
}
