package hal

import "image"

func rgb565(r, g, b uint8) uint16 {
	rr := uint16(r>>3) & 0x1F
	gg := uint16(g>>2) & 0x3F
	bb := uint16(b>>3) & 0x1F
	return (rr << 11) | (gg << 5) | bb
}

func rgb888From565(p uint16) (r, g, b uint8) {
	rr := (p >> 11) & 0x1F
	gg := (p >> 5) & 0x3F
	bb := p & 0x1F

	r = uint8((rr * 255) / 31)
	g = uint8((gg * 255) / 63)
	b = uint8((bb * 255) / 31)
	return r, g, b
}

// RoundToPages widens area vertically to whole 8-row pages.
func RoundToPages(area image.Rectangle) image.Rectangle {
	area.Min.Y &^= 7
	area.Max.Y = (area.Max.Y + 7) &^ 7
	return area
}

// SetPagedPixel sets or clears one pixel in an SSD1306-style page buffer:
// one byte per column per page, LSB at the top row of the page.
func SetPagedPixel(buf []byte, bufWidth int, x, y int, on bool) {
	if x < 0 || y < 0 || x >= bufWidth {
		return
	}
	idx := x + (y>>3)*bufWidth
	if idx >= len(buf) {
		return
	}
	bit := byte(1) << uint(y&7)
	if on {
		buf[idx] |= bit
	} else {
		buf[idx] &^= bit
	}
}

// PagedPixel reports whether a pixel is set in a page buffer.
func PagedPixel(buf []byte, bufWidth int, x, y int) bool {
	if x < 0 || y < 0 || x >= bufWidth {
		return false
	}
	idx := x + (y>>3)*bufWidth
	if idx >= len(buf) {
		return false
	}
	return buf[idx]&(1<<uint(y&7)) != 0
}
