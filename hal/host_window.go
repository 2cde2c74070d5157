//go:build !tinygo && cgo

package hal

import (
	"errors"
	"image"

	"dclock/internal/buildinfo"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunWindow starts a desktop window that mirrors the panel contents.
// It blocks until the window closes or step fails.
func RunWindow(h HAL, newApp func(HAL) func() error) error {
	panel := h.Panel()
	if panel == nil {
		return errors.New("window: no panel")
	}
	preview, ok := panel.(Previewer)
	if !ok {
		return errors.New("window: panel cannot be previewed")
	}

	step := newApp(h)

	g := &hostGame{panel: panel, preview: preview, step: step}
	ebiten.SetWindowTitle("dclock (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(panel.Width()*4, panel.Height()*4)
	ebiten.SetTPS(30)
	return ebiten.RunGame(g)
}

type hostGame struct {
	panel   Panel
	preview Previewer
	img     *image.RGBA
	fbImg   *ebiten.Image
	step    func() error
}

func (g *hostGame) Update() error {
	if g.step != nil {
		if err := g.step(); err != nil {
			return err
		}
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	w, h := g.panel.Width(), g.panel.Height()
	if g.img == nil || g.img.Bounds().Dx() != w || g.img.Bounds().Dy() != h {
		g.img = image.NewRGBA(image.Rect(0, 0, w, h))
		if g.fbImg != nil {
			g.fbImg.Deallocate()
		}
		g.fbImg = ebiten.NewImage(w, h)
	}

	g.preview.Snapshot(g.img)
	g.fbImg.WritePixels(g.img.Pix)
	screen.DrawImage(g.fbImg, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.panel.Width(), g.panel.Height()
}
