package gfx

import (
	"image"

	"dclock/hal"
)

// DrawBuffer describes the memory the library renders into. When Buf2 is
// set the two buffers are used alternately.
type DrawBuffer struct {
	Buf1   []byte
	Buf2   []byte
	SizePx int

	next int
}

// NewDrawBuffer wraps caller-owned buffers. sizePx is the capacity of each
// buffer counted in pixels of the display class.
func NewDrawBuffer(buf1, buf2 []byte, sizePx int) *DrawBuffer {
	return &DrawBuffer{Buf1: buf1, Buf2: buf2, SizePx: sizePx}
}

// PixelsFor converts a buffer size in bytes to pixels: 1bpp for
// monochrome, RGB565 for color.
func PixelsFor(class hal.DisplayClass, bytes int) int {
	switch class {
	case hal.ClassMonochrome:
		return bytes * 8
	case hal.ClassColor:
		return bytes / 2
	default:
		return 0
	}
}

// MinBufferPixels is the smallest draw buffer that holds one render chunk
// of a display horRes pixels wide: a page of 8 rows on monochrome, a
// single row on color.
func MinBufferPixels(class hal.DisplayClass, horRes int) int {
	if class == hal.ClassMonochrome {
		return horRes * 8
	}
	return horRes
}

func (b *DrawBuffer) take() []byte {
	if b.Buf2 == nil {
		return b.Buf1
	}
	buf := b.Buf1
	if b.next == 1 {
		buf = b.Buf2
	}
	b.next ^= 1
	return buf
}

// FlushFunc pushes a rendered area to the panel.
type FlushFunc func(area image.Rectangle, px []byte) error

// DriverDesc is what a display driver registers with the library.
type DriverDesc struct {
	HorRes  int
	VerRes  int
	Class   hal.DisplayClass
	DrawBuf *DrawBuffer
	Flush   FlushFunc

	// Rounder and SetPixel are required for monochrome displays.
	Rounder  func(area image.Rectangle) image.Rectangle
	SetPixel func(buf []byte, bufWidth int, x, y int, on bool)
}

// Display is a registered driver and its screen.
type Display struct {
	lib    *Library
	desc   DriverDesc
	screen *Screen
	inv    image.Rectangle
}

// RegisterDriver makes desc the active display. The whole screen is
// invalidated so the first refresh paints the background.
func (l *Library) RegisterDriver(desc DriverDesc) (*Display, error) {
	if !l.inited {
		return nil, ErrNotInitialized
	}
	if l.disp != nil {
		return nil, ErrDriverBusy
	}
	if desc.HorRes <= 0 || desc.VerRes <= 0 || desc.Flush == nil || desc.DrawBuf == nil || desc.DrawBuf.Buf1 == nil {
		return nil, ErrInvalidDriver
	}
	switch desc.Class {
	case hal.ClassMonochrome:
		if desc.Rounder == nil || desc.SetPixel == nil {
			return nil, ErrInvalidDriver
		}
	case hal.ClassColor:
	default:
		return nil, ErrInvalidDriver
	}
	if desc.DrawBuf.SizePx < MinBufferPixels(desc.Class, desc.HorRes) {
		return nil, ErrBufferTooSmall
	}

	d := &Display{lib: l, desc: desc}
	d.screen = &Screen{disp: d, bounds: image.Rect(0, 0, desc.HorRes, desc.VerRes)}
	d.invalidate(d.screen.bounds)
	l.disp = d
	return d, nil
}

// UnregisterDriver detaches d. Its screen and labels stay valid objects
// but are no longer rendered.
func (l *Library) UnregisterDriver(d *Display) {
	if d == nil || l.disp != d {
		return
	}
	d.lib = nil
	l.disp = nil
}

// ActiveScreen returns the screen of the registered display, or nil.
func (l *Library) ActiveScreen() *Screen {
	if l.disp == nil {
		return nil
	}
	return l.disp.screen
}

// Screen returns the display's root object.
func (d *Display) Screen() *Screen { return d.screen }

func (d *Display) invalidate(area image.Rectangle) {
	area = area.Intersect(d.screen.bounds)
	if area.Empty() {
		return
	}
	d.inv = d.inv.Union(area)
}

// Invalid returns the area waiting to be redrawn.
func (d *Display) Invalid() image.Rectangle { return d.inv }
