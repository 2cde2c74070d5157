package hal

import (
	"errors"
	"image"
)

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

var ErrNotImplemented = errors.New("not implemented")

// DisplayClass selects how the graphics library lays out draw buffers and
// which driver callbacks it needs.
type DisplayClass uint8

const (
	// ClassMonochrome is a 1bpp panel with 8-row pages (SSD1306 family).
	// Draw buffer sizes are counted in bytes*8 pixels and the panel must
	// implement PixelRounder.
	ClassMonochrome DisplayClass = iota + 1
	// ClassColor is a 16bpp RGB565 little-endian panel.
	ClassColor
)

func (c DisplayClass) String() string {
	switch c {
	case ClassMonochrome:
		return "monochrome"
	case ClassColor:
		return "color"
	default:
		return "unknown"
	}
}

// ParseDisplayClass maps a config value to a DisplayClass.
func ParseDisplayClass(s string) (DisplayClass, bool) {
	switch s {
	case "mono", "monochrome":
		return ClassMonochrome, true
	case "color", "colour", "rgb565":
		return ClassColor, true
	default:
		return 0, false
	}
}

// Panel is the display/bus driver: it owns the bus and pushes rendered
// areas to the controller.
//
// Flush receives pixels for area packed the way the panel's class
// dictates. The slice is only valid for the duration of the call.
type Panel interface {
	Class() DisplayClass
	Width() int
	Height() int
	Init() error
	Flush(area image.Rectangle, px []byte) error
	Close() error
}

// PixelRounder is implemented by monochrome panels whose controller
// addresses memory in pages.
type PixelRounder interface {
	// Round widens area to the controller's addressable granularity.
	Round(area image.Rectangle) image.Rectangle
	// SetPixel writes one pixel into buf, which holds the rounded area
	// starting at (0,0) and bufWidth pixels wide.
	SetPixel(buf []byte, bufWidth int, x, y int, on bool)
}

// Previewer is implemented by host panels that can be shown in a window.
type Previewer interface {
	Snapshot(dst *image.RGBA)
}

// HAL provides the only contact point between the clock and the outside world.
type HAL interface {
	Logger() Logger
	Panel() Panel
}
