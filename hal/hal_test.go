package hal

import (
	"image"
	"testing"
)

func TestParseDisplayClass(t *testing.T) {
	tests := []struct {
		in   string
		want DisplayClass
		ok   bool
	}{
		{"mono", ClassMonochrome, true},
		{"monochrome", ClassMonochrome, true},
		{"color", ClassColor, true},
		{"rgb565", ClassColor, true},
		{"eink", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseDisplayClass(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("ParseDisplayClass(%q) = %v, %v, want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
	if s := ClassColor.String(); s != "color" {
		t.Fatalf("ClassColor.String() = %q, want color", s)
	}
}

func TestRoundToPages(t *testing.T) {
	tests := []struct {
		in, want image.Rectangle
	}{
		{image.Rect(0, 0, 128, 64), image.Rect(0, 0, 128, 64)},
		{image.Rect(10, 3, 20, 9), image.Rect(10, 0, 20, 16)},
		{image.Rect(0, 8, 5, 15), image.Rect(0, 8, 5, 16)},
	}
	for _, tt := range tests {
		if got := RoundToPages(tt.in); got != tt.want {
			t.Fatalf("RoundToPages(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPagedPixel(t *testing.T) {
	buf := make([]byte, 4*2)

	SetPagedPixel(buf, 4, 1, 0, true)
	SetPagedPixel(buf, 4, 2, 9, true)
	if buf[1] != 0x01 {
		t.Fatalf("buf[1] = %#x, want 0x01", buf[1])
	}
	if buf[4+2] != 0x02 {
		t.Fatalf("buf[6] = %#x, want 0x02", buf[6])
	}
	if !PagedPixel(buf, 4, 2, 9) || PagedPixel(buf, 4, 2, 8) {
		t.Fatalf("PagedPixel mismatch")
	}

	SetPagedPixel(buf, 4, 2, 9, false)
	if PagedPixel(buf, 4, 2, 9) {
		t.Fatalf("pixel still set after clear")
	}

	// Out of range writes are ignored.
	SetPagedPixel(buf, 4, 4, 0, true)
	SetPagedPixel(buf, 4, 0, 16, true)
	SetPagedPixel(buf, 4, -1, 0, true)
	for i, b := range buf {
		if b != 0 && i != 1 {
			t.Fatalf("buf[%d] = %#x after out of range writes", i, b)
		}
	}
}

func TestRGB565RoundTrip(t *testing.T) {
	r, g, b := rgb888From565(rgb565(255, 255, 255))
	if r != 255 || g != 255 || b != 255 {
		t.Fatalf("white round trip = %d,%d,%d", r, g, b)
	}
	r, g, b = rgb888From565(rgb565(0, 0, 0))
	if r != 0 || g != 0 || b != 0 {
		t.Fatalf("black round trip = %d,%d,%d", r, g, b)
	}
}
