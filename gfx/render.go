package gfx

import (
	"image"
	"image/color"

	"dclock/hal"

	"tinygo.org/x/tinyfont"
)

// Foreground is the text color. The background is black / pixels off.
var Foreground = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}

// RunPending redraws the invalidated area of the active display, unless
// the previous refresh happened less than the refresh period ago. It
// returns the number of flush calls made.
func (l *Library) RunPending() (int, error) {
	if !l.inited {
		return 0, ErrNotInitialized
	}
	d := l.disp
	if d == nil || d.inv.Empty() {
		return 0, nil
	}
	now := l.TickCount()
	if l.refreshed && now-l.lastRefresh < l.refreshPeriod {
		return 0, nil
	}

	area := d.inv
	if d.desc.Class == hal.ClassMonochrome {
		area = d.desc.Rounder(area)
	}

	rows := d.desc.DrawBuf.SizePx / area.Dx()
	if d.desc.Class == hal.ClassMonochrome {
		rows &^= 7
	}
	if rows <= 0 {
		return 0, ErrBufferTooSmall
	}

	flushes := 0
	for y := area.Min.Y; y < area.Max.Y; y += rows {
		chunk := image.Rect(area.Min.X, y, area.Max.X, min(y+rows, area.Max.Y))
		if d.desc.Class == hal.ClassMonochrome {
			chunk = d.desc.Rounder(chunk)
		}
		px, err := d.chunkBuffer(chunk)
		if err != nil {
			return flushes, err
		}
		d.draw(&canvas{d: d, area: chunk, px: px})
		if err := d.desc.Flush(chunk, px); err != nil {
			return flushes, err
		}
		flushes++
	}

	d.inv = image.Rectangle{}
	l.lastRefresh = now
	l.refreshed = true
	l.stats.Refreshes++
	l.stats.Flushes += uint64(flushes)
	return flushes, nil
}

func (d *Display) chunkBuffer(chunk image.Rectangle) ([]byte, error) {
	var n int
	switch d.desc.Class {
	case hal.ClassMonochrome:
		n = chunk.Dx() * ((chunk.Dy() + 7) / 8)
	default:
		n = chunk.Dx() * chunk.Dy() * 2
	}
	buf := d.desc.DrawBuf.take()
	if n > len(buf) {
		return nil, ErrBufferTooSmall
	}
	px := buf[:n]
	clear(px)
	return px, nil
}

func (d *Display) draw(c *canvas) {
	for _, lb := range d.screen.labels {
		if !lb.area.Overlaps(c.area) {
			continue
		}
		for i, line := range lb.lines {
			x, y := lb.lineOrigin(i)
			tinyfont.WriteLine(c, lb.font.Face, int16(x), int16(y), line, Foreground)
		}
	}
}

// canvas adapts one chunk of a draw buffer to drivers.Displayer. Screen
// coordinates outside the chunk are dropped.
type canvas struct {
	d    *Display
	area image.Rectangle
	px   []byte
}

func (c *canvas) Size() (x, y int16) {
	return int16(c.d.desc.HorRes), int16(c.d.desc.VerRes)
}

func (c *canvas) SetPixel(x, y int16, col color.RGBA) {
	p := image.Pt(int(x), int(y))
	if !p.In(c.area) {
		return
	}
	lx, ly := p.X-c.area.Min.X, p.Y-c.area.Min.Y
	if c.d.desc.Class == hal.ClassMonochrome {
		c.d.desc.SetPixel(c.px, c.area.Dx(), lx, ly, col.R|col.G|col.B != 0)
		return
	}
	off := (ly*c.area.Dx() + lx) * 2
	v := rgb565(col)
	c.px[off] = byte(v)
	c.px[off+1] = byte(v >> 8)
}

func (c *canvas) Display() error { return nil }

func rgb565(c color.RGBA) uint16 {
	return uint16(c.R>>3)<<11 | uint16(c.G>>2)<<5 | uint16(c.B>>3)
}
