//go:build !tinygo

package hal

import (
	"errors"
	"fmt"
	"image"
	"io"
	"sync"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"
)

// ssd1306Panel drives a real SSD1306/SH1106 over I2C or SPI through periph.
// The bus is opened in Init, so constructing it never touches hardware.
type ssd1306Panel struct {
	mu   sync.Mutex
	opts Options

	bus io.Closer
	dev *ssd1306.Dev
}

func newSSD1306Panel(opts Options) *ssd1306Panel {
	return &ssd1306Panel{opts: opts}
}

func (p *ssd1306Panel) Class() DisplayClass { return ClassMonochrome }
func (p *ssd1306Panel) Width() int          { return p.opts.Width }
func (p *ssd1306Panel) Height() int         { return p.opts.Height }

func (p *ssd1306Panel) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.dev != nil {
		return nil
	}
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("ssd1306: host init: %w", err)
	}

	devOpts := &ssd1306.Opts{W: p.opts.Width, H: p.opts.Height}
	switch p.opts.Driver {
	case DriverSSD1306I2C:
		bus, err := i2creg.Open(p.opts.Bus)
		if err != nil {
			return fmt.Errorf("ssd1306: open i2c %q: %w", p.opts.Bus, err)
		}
		dev, err := ssd1306.NewI2C(bus, devOpts)
		if err != nil {
			bus.Close()
			return fmt.Errorf("ssd1306: %w", err)
		}
		p.bus, p.dev = bus, dev

	case DriverSSD1306SPI:
		dc := gpioreg.ByName(p.opts.DCPin)
		if dc == nil {
			return fmt.Errorf("ssd1306: GPIO pin %s not found", p.opts.DCPin)
		}
		port, err := spireg.Open(p.opts.Bus)
		if err != nil {
			return fmt.Errorf("ssd1306: open spi %q: %w", p.opts.Bus, err)
		}
		dev, err := ssd1306.NewSPI(port, dc, devOpts)
		if err != nil {
			port.Close()
			return fmt.Errorf("ssd1306: %w", err)
		}
		p.bus, p.dev = port, dev

	default:
		return fmt.Errorf("ssd1306: unsupported driver %q", p.opts.Driver)
	}
	return nil
}

func (p *ssd1306Panel) Round(area image.Rectangle) image.Rectangle {
	return RoundToPages(area)
}

func (p *ssd1306Panel) SetPixel(buf []byte, bufWidth int, x, y int, on bool) {
	SetPagedPixel(buf, bufWidth, x, y, on)
}

func (p *ssd1306Panel) Flush(area image.Rectangle, px []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.dev == nil {
		return errors.New("ssd1306: not initialized")
	}
	img := image1bit.NewVerticalLSB(area)
	w := area.Dx()
	for y := 0; y < area.Dy(); y++ {
		for x := 0; x < w; x++ {
			if PagedPixel(px, w, x, y) {
				img.SetBit(area.Min.X+x, area.Min.Y+y, image1bit.On)
			}
		}
	}
	return p.dev.Draw(area, img, area.Min)
}

func (p *ssd1306Panel) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	if p.dev != nil {
		errs = append(errs, p.dev.Halt())
		p.dev = nil
	}
	if p.bus != nil {
		errs = append(errs, p.bus.Close())
		p.bus = nil
	}
	return errors.Join(errs...)
}
