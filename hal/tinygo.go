//go:build tinygo && baremetal && !picocalc

package hal

import (
	"errors"
	"image"
	"image/color"

	"machine"

	"tinygo.org/x/drivers/ssd1306"
)

// New returns the firmware HAL: UART console plus a 128x64 SSD1306 on the
// default I2C bus.
func New() HAL {
	return &tinyGoHAL{
		logger: newUARTLogger(),
		panel:  &i2cSSD1306{w: 128, h: 64},
	}
}

type i2cSSD1306 struct {
	w, h int
	dev  *ssd1306.Device
}

func (p *i2cSSD1306) Class() DisplayClass { return ClassMonochrome }
func (p *i2cSSD1306) Width() int          { return p.w }
func (p *i2cSSD1306) Height() int         { return p.h }

func (p *i2cSSD1306) Init() error {
	if p.dev != nil {
		return nil
	}
	if err := machine.I2C0.Configure(machine.I2CConfig{Frequency: 400 * machine.KHz}); err != nil {
		return err
	}
	dev := ssd1306.NewI2C(machine.I2C0)
	dev.Configure(ssd1306.Config{
		Width:    int16(p.w),
		Height:   int16(p.h),
		Address:  0x3C,
		VccState: ssd1306.SWITCHCAPVCC,
	})
	dev.ClearDisplay()
	p.dev = &dev
	return nil
}

func (p *i2cSSD1306) Round(area image.Rectangle) image.Rectangle {
	return RoundToPages(area)
}

func (p *i2cSSD1306) SetPixel(buf []byte, bufWidth int, x, y int, on bool) {
	SetPagedPixel(buf, bufWidth, x, y, on)
}

func (p *i2cSSD1306) Flush(area image.Rectangle, px []byte) error {
	if p.dev == nil {
		return errors.New("ssd1306: not initialized")
	}
	on := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	off := color.RGBA{A: 255}
	w := area.Dx()
	for y := 0; y < area.Dy(); y++ {
		for x := 0; x < w; x++ {
			c := off
			if PagedPixel(px, w, x, y) {
				c = on
			}
			p.dev.SetPixel(int16(area.Min.X+x), int16(area.Min.Y+y), c)
		}
	}
	return p.dev.Display()
}

func (p *i2cSSD1306) Close() error {
	if p.dev != nil {
		p.dev.ClearDisplay()
		p.dev = nil
	}
	return nil
}
