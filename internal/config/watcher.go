//go:build !tinygo

package config

import (
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// WatchOptions configure a Watcher.
type WatchOptions struct {
	// Logger receives reload diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
	// Adjust runs on every loaded file before it is validated.
	Adjust func(*Config)
	// OnChange receives every valid reloaded config.
	OnChange func(*Config)
}

// Watcher reloads a config file when it changes on disk and hands every
// valid new version to OnChange.
type Watcher struct {
	path     string
	log      *slog.Logger
	adjust   func(*Config)
	onChange func(*Config)

	mu     sync.RWMutex
	config *Config

	watcher *fsnotify.Watcher
	done    chan struct{}
	exited  chan struct{}
	once    sync.Once
}

// NewWatcher loads and validates path, then starts watching it.
func NewWatcher(path string, opts WatchOptions) (*Watcher, error) {
	cfg, err := loadAdjusted(path, opts.Adjust)
	if err != nil {
		return nil, err
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: editors often replace the file instead of
	// writing it in place.
	if err := fsWatcher.Add(filepath.Dir(path)); err != nil {
		fsWatcher.Close()
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	w := &Watcher{
		path:     path,
		log:      log,
		adjust:   opts.Adjust,
		onChange: opts.OnChange,
		config:   cfg,
		watcher:  fsWatcher,
		done:     make(chan struct{}),
		exited:   make(chan struct{}),
	}
	go w.watch()
	return w, nil
}

// Config returns the current configuration.
func (w *Watcher) Config() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.config
}

func (w *Watcher) watch() {
	defer close(w.exited)
	filename := filepath.Base(w.path)

	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != filename {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.reload()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watcher error", "err", err)
		}
	}
}

func loadAdjusted(path string, adjust func(*Config)) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if adjust != nil {
		adjust(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (w *Watcher) reload() {
	cfg, err := loadAdjusted(w.path, w.adjust)
	if err != nil {
		w.log.Error("config reload rejected", "path", w.path, "err", err)
		return
	}

	w.mu.Lock()
	w.config = cfg
	w.mu.Unlock()

	w.log.Info("config reloaded", "path", w.path)
	if w.onChange != nil {
		w.onChange(cfg)
	}
}

// Close stops watching and waits for the watch goroutine.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		<-w.exited
	})
	return err
}
