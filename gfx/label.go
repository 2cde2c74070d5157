package gfx

import (
	"image"
	"strings"
)

// Screen is the root object of a display.
type Screen struct {
	disp   *Display
	bounds image.Rectangle
	labels []*Label
}

// Bounds returns the screen rectangle.
func (s *Screen) Bounds() image.Rectangle { return s.bounds }

// Label is a multi-line text object centered on its screen.
type Label struct {
	screen *Screen
	font   Font
	text   string
	lines  []string
	area   image.Rectangle
	rev    uint64
}

// CreateLabel adds an empty, centered label to screen. It returns nil when
// screen is nil.
func (l *Library) CreateLabel(screen *Screen) *Label {
	if screen == nil {
		return nil
	}
	lb := &Label{screen: screen, font: l.font}
	screen.labels = append(screen.labels, lb)
	return lb
}

// SetLabelText replaces the label text and invalidates the old and new
// text areas. Setting the current text again does nothing.
func (l *Library) SetLabelText(lb *Label, text string) {
	if lb == nil || lb.text == text {
		return
	}
	lb.text = text
	lb.rev++
	lb.layout()
}

// Text returns the label text.
func (lb *Label) Text() string { return lb.text }

// Revision counts effective text changes.
func (lb *Label) Revision() uint64 { return lb.rev }

// Area returns the rectangle the text occupies.
func (lb *Label) Area() image.Rectangle { return lb.area }

func (lb *Label) layout() {
	d := lb.screen.disp
	old := lb.area

	if d != nil && d.lib != nil {
		lb.font = d.lib.font
	}
	lb.lines = strings.Split(lb.text, "\n")
	if lb.text == "" {
		lb.lines = nil
	}

	sb := lb.screen.bounds
	h := len(lb.lines) * int(lb.font.Height)
	w := 0
	for _, line := range lb.lines {
		if lw := lb.font.lineWidth(line); lw > w {
			w = lw
		}
	}
	x0 := sb.Min.X + (sb.Dx()-w)/2
	y0 := sb.Min.Y + (sb.Dy()-h)/2
	lb.area = image.Rect(x0, y0, x0+w, y0+h)

	if d != nil && d.lib != nil {
		d.invalidate(old)
		d.invalidate(lb.area)
	}
}

// lineOrigin returns the pen position of line i: its left edge and
// baseline.
func (lb *Label) lineOrigin(i int) (x, y int) {
	sb := lb.screen.bounds
	w := lb.font.lineWidth(lb.lines[i])
	x = sb.Min.X + (sb.Dx()-w)/2
	y = lb.area.Min.Y + i*int(lb.font.Height) + int(lb.font.Baseline)
	return x, y
}
