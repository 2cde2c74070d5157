package gfx

import (
	"errors"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

// Font is a tinyfont face plus the line metrics labels are laid out with.
type Font struct {
	Face tinyfont.Fonter
	// Height is the distance between two lines.
	Height int16
	// Baseline is the offset from the top of a line to its baseline.
	Baseline int16
}

// metricRunes covers the ascenders and descenders a clock face uses.
const metricRunes = "0123456789.:ABCgjpqy|"

// NewFont derives line metrics for face from its glyph boxes.
func NewFont(face tinyfont.Fonter) (Font, error) {
	if face == nil {
		return Font{}, errors.New("gfx: nil font")
	}
	minY, maxY := 0, 0
	first := true
	for _, r := range metricRunes {
		info := face.GetGlyph(r).Info()
		top := int(info.YOffset)
		bottom := top + int(info.Height)
		if first {
			minY, maxY = top, bottom
			first = false
			continue
		}
		if top < minY {
			minY = top
		}
		if bottom > maxY {
			maxY = bottom
		}
	}

	height := maxY - minY
	if adv := int(face.GetYAdvance()); adv > height {
		height = adv
	}
	if height <= 0 || minY > 0 {
		return Font{}, errors.New("gfx: font has no usable glyphs")
	}
	return Font{Face: face, Height: int16(height), Baseline: int16(-minY)}, nil
}

// DefaultFont returns the small proggy face, which fits two clock lines
// on a 128x64 panel.
func DefaultFont() (Font, error) {
	return NewFont(&proggy.TinySZ8pt7b)
}

func (f Font) lineWidth(s string) int {
	_, outbox := tinyfont.LineWidth(f.Face, s)
	return int(outbox)
}
