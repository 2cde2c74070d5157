//go:build !tinygo

package hal

import (
	"errors"
	"image"
	"sync"
)

// hostMono emulates an SSD1306-class controller: GDDRAM is organised in
// 8-row pages and writes must cover whole pages.
type hostMono struct {
	mu     sync.Mutex
	width  int
	height int
	gddram []byte

	inited  bool
	flushes int
}

func newHostMono(width, height int) *hostMono {
	return &hostMono{
		width:  width,
		height: height,
		gddram: make([]byte, width*((height+7)/8)),
	}
}

func (m *hostMono) Class() DisplayClass { return ClassMonochrome }
func (m *hostMono) Width() int          { return m.width }
func (m *hostMono) Height() int         { return m.height }

func (m *hostMono) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inited = true
	clear(m.gddram)
	return nil
}

func (m *hostMono) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inited = false
	return nil
}

func (m *hostMono) Round(area image.Rectangle) image.Rectangle {
	return RoundToPages(area)
}

func (m *hostMono) SetPixel(buf []byte, bufWidth int, x, y int, on bool) {
	SetPagedPixel(buf, bufWidth, x, y, on)
}

func (m *hostMono) Flush(area image.Rectangle, px []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.inited {
		return errors.New("mono: not initialized")
	}
	if area.Min.Y%8 != 0 || area.Max.Y%8 != 0 {
		return errors.New("mono: area not page aligned")
	}
	w := area.Dx()
	pages := area.Dy() / 8
	if len(px) < w*pages {
		return errors.New("mono: short pixel buffer")
	}
	for p := 0; p < pages; p++ {
		page := area.Min.Y/8 + p
		if page*8 >= m.height {
			break
		}
		for x := 0; x < w; x++ {
			col := area.Min.X + x
			if col < 0 || col >= m.width {
				continue
			}
			m.gddram[page*m.width+col] = px[p*w+x]
		}
	}
	m.flushes++
	return nil
}

// Pixel reports whether a pixel is lit in controller memory.
func (m *hostMono) Pixel(x, y int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return PagedPixel(m.gddram, m.width, x, y)
}

func (m *hostMono) Snapshot(dst *image.RGBA) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			var v uint8
			if PagedPixel(m.gddram, m.width, x, y) {
				v = 0xFF
			}
			j := dst.PixOffset(x, y)
			if j < 0 || j+3 >= len(dst.Pix) {
				continue
			}
			dst.Pix[j+0] = v
			dst.Pix[j+1] = v
			dst.Pix[j+2] = v
			dst.Pix[j+3] = 0xFF
		}
	}
}
