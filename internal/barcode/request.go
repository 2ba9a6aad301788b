package barcode

import "image"

// Options tweak how a RenderRequest is laid out.
type Options struct {
	// AllowFallback renders a placeholder payload when the real one
	// cannot be encoded. The result is then marked invalid.
	AllowFallback bool
	// RoundedCorners reserves room for the rounded card frame.
	RoundedCorners bool
	// Fullscreen always scales to the screen width.
	Fullscreen bool
}

// RenderRequest is immutable; build a new one to change anything.
// Width and Height are device-independent pixels.
type RenderRequest struct {
	Payload   string
	Symbology Symbology
	Width     int
	Height    int
	Options   Options
}

// RenderResult carries the rendered image, or a nil Image on failure.
type RenderResult struct {
	Image     image.Image
	Symbology Symbology
	// Valid is false when the image shows a fallback payload or is missing.
	Valid bool
	// Padding in pixels reserved for rounded corners.
	Padding int
	// WidthPadding reports that Padding was taken from the width
	// instead of the height.
	WidthPadding bool
}

// Failed reports whether no image could be produced.
func (r RenderResult) Failed() bool { return r.Image == nil }

// Display describes the screen the barcode is rendered for.
type Display struct {
	// Density converts device-independent pixels to pixels.
	Density float64
	// WidthPx is the physical screen width.
	WidthPx int
}

// DefaultDisplay is a mdpi-like 1080 px wide screen.
var DefaultDisplay = Display{Density: 1, WidthPx: 1080}

func (d Display) px(dip int) int {
	density := d.Density
	if density <= 0 {
		density = 1
	}
	return int(float64(dip)*density + 0.5)
}
