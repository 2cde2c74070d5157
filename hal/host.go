//go:build !tinygo

package hal

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Panel drivers selectable on the host.
const (
	DriverMemory     = "memory"
	DriverSSD1306I2C = "ssd1306-i2c"
	DriverSSD1306SPI = "ssd1306-spi"
)

// Options selects the host panel and log sink.
type Options struct {
	Class  DisplayClass
	Width  int
	Height int

	// Driver is one of DriverMemory, DriverSSD1306I2C, DriverSSD1306SPI.
	Driver string
	// Bus names the periph I2C/SPI bus ("" picks the first one).
	Bus string
	// DCPin is the data/command GPIO for SPI panels.
	DCPin string

	// SerialLog routes log lines to a serial device instead of stdout.
	SerialLog  string
	SerialBaud int
}

type hostHAL struct {
	logger Logger
	panel  Panel
	closer io.Closer
}

// New returns a host HAL implementation.
func New(opts Options) (HAL, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("hal: invalid panel size %dx%d", opts.Width, opts.Height)
	}

	h := &hostHAL{logger: &hostLogger{w: os.Stdout}}
	if opts.SerialLog != "" {
		sl, err := openSerialLogger(opts.SerialLog, opts.SerialBaud)
		if err != nil {
			return nil, err
		}
		h.logger = sl
		h.closer = sl
	}

	switch opts.Driver {
	case "", DriverMemory:
		switch opts.Class {
		case ClassMonochrome:
			h.panel = newHostMono(opts.Width, opts.Height)
		case ClassColor:
			h.panel = newHostFramebuffer(opts.Width, opts.Height)
		default:
			h.close()
			return nil, fmt.Errorf("hal: unknown display class %d", opts.Class)
		}
	case DriverSSD1306I2C, DriverSSD1306SPI:
		if opts.Class != ClassMonochrome {
			h.close()
			return nil, fmt.Errorf("hal: %s requires the monochrome class", opts.Driver)
		}
		h.panel = newSSD1306Panel(opts)
	default:
		h.close()
		return nil, fmt.Errorf("hal: unknown panel driver %q", opts.Driver)
	}
	return h, nil
}

func (h *hostHAL) Logger() Logger { return h.logger }
func (h *hostHAL) Panel() Panel   { return h.panel }

// Close releases the log sink. The panel is owned by whoever initialized it.
func (h *hostHAL) Close() error {
	return h.close()
}

func (h *hostHAL) close() error {
	if h.closer == nil {
		return nil
	}
	err := h.closer.Close()
	h.closer = nil
	return err
}

type hostLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}
