//go:build !tinygo

package hal

import (
	"errors"
	"image"
	"sync"
)

// hostFramebuffer is a color-class panel backed by an RGB565 framebuffer in
// memory. Flushed areas are copied in; the window runner reads snapshots.
type hostFramebuffer struct {
	mu     sync.Mutex
	width  int
	height int
	stride int
	buf    []byte

	inited  bool
	flushes int
}

func newHostFramebuffer(width, height int) *hostFramebuffer {
	stride := width * 2
	return &hostFramebuffer{
		width:  width,
		height: height,
		stride: stride,
		buf:    make([]byte, stride*height),
	}
}

func (f *hostFramebuffer) Class() DisplayClass { return ClassColor }
func (f *hostFramebuffer) Width() int          { return f.width }
func (f *hostFramebuffer) Height() int         { return f.height }

func (f *hostFramebuffer) Init() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inited = true
	f.clearRGB(0, 0, 0)
	return nil
}

func (f *hostFramebuffer) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inited = false
	return nil
}

func (f *hostFramebuffer) Flush(area image.Rectangle, px []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.inited {
		return errors.New("framebuffer: not initialized")
	}
	area = area.Intersect(image.Rect(0, 0, f.width, f.height))
	if area.Empty() {
		return nil
	}
	rowBytes := area.Dx() * 2
	if len(px) < rowBytes*area.Dy() {
		return errors.New("framebuffer: short pixel buffer")
	}
	for y := 0; y < area.Dy(); y++ {
		dst := (area.Min.Y+y)*f.stride + area.Min.X*2
		copy(f.buf[dst:dst+rowBytes], px[y*rowBytes:(y+1)*rowBytes])
	}
	f.flushes++
	return nil
}

func (f *hostFramebuffer) clearRGB(r, g, b uint8) {
	pixel := rgb565(r, g, b)
	lo := byte(pixel)
	hi := byte(pixel >> 8)
	for i := 0; i < len(f.buf); i += 2 {
		f.buf[i] = lo
		f.buf[i+1] = hi
	}
}

func (f *hostFramebuffer) Snapshot(dst *image.RGBA) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for y := 0; y < f.height; y++ {
		for x := 0; x < f.width; x++ {
			off := y*f.stride + x*2
			r, g, b := rgb888From565(uint16(f.buf[off]) | uint16(f.buf[off+1])<<8)
			j := dst.PixOffset(x, y)
			if j < 0 || j+3 >= len(dst.Pix) {
				continue
			}
			dst.Pix[j+0] = r
			dst.Pix[j+1] = g
			dst.Pix[j+2] = b
			dst.Pix[j+3] = 0xFF
		}
	}
}
