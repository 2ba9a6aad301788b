package barcode

import (
	"context"
	"errors"
	"fmt"
	"image"
)

// roundedCornerPaddingDIP is reserved around symbologies without their own margin.
const roundedCornerPaddingDIP = 10

// Renderer renders barcodes for one display. It is immutable and safe for
// concurrent use.
type Renderer struct {
	display Display
}

func NewRenderer(display Display) *Renderer {
	return &Renderer{display: display}
}

// Render is RenderContext without cancellation.
func (r *Renderer) Render(req RenderRequest) RenderResult {
	res, _ := r.RenderContext(context.Background(), req)
	return res
}

// RenderContext renders req. Encoding problems never surface as errors: they
// yield a result without image, or a fallback image marked invalid when
// req.Options.AllowFallback is set. The returned error is non-nil only when
// ctx was cancelled before the work completed.
func (r *Renderer) RenderContext(ctx context.Context, req RenderRequest) (RenderResult, error) {
	res := RenderResult{Symbology: req.Symbology}

	if req.Payload == "" {
		return res, nil
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	p, err := r.plan(req)
	if err != nil {
		return res, nil
	}
	res.Padding = p.padding
	res.WidthPadding = p.widthPadding

	img, err := generate(ctx, req.Payload, req.Symbology, p.width, p.height)
	if err == nil {
		res.Image = img
		res.Valid = true
		return res, nil
	}
	if isCancellation(err) {
		return res, err
	}

	if !req.Options.AllowFallback {
		return res, nil
	}
	fallback, ok := req.Symbology.FallbackPayload()
	if !ok {
		return res, nil
	}

	img, err = generate(ctx, fallback, req.Symbology, p.width, p.height)
	if isCancellation(err) {
		return res, err
	}
	if err == nil {
		res.Image = img
	}
	return res, nil
}

type plan struct {
	width        int
	height       int
	padding      int
	widthPadding bool
}

// plan converts the viewport into target pixel dimensions.
func (r *Renderer) plan(req RenderRequest) (plan, error) {
	s := req.Symbology
	if !s.Valid() {
		return plan{}, fmt.Errorf("unsupported barcode type %v", s)
	}

	viewW := r.display.px(req.Width)
	viewH := r.display.px(req.Height)
	if viewW <= 0 || viewH <= 0 {
		return plan{}, fmt.Errorf("invalid viewport %dx%d", viewW, viewH)
	}
	w, h := viewW, viewH

	var p plan
	if req.Options.RoundedCorners && !s.HasInternalPadding() {
		p.padding = r.display.px(roundedCornerPaddingDIP)
	}
	if s.IsSquare() && w > h {
		w -= p.padding
		p.widthPadding = true
	} else {
		h -= p.padding
	}
	if w <= 0 || h <= 0 {
		return plan{}, fmt.Errorf("viewport %dx%d too small for padding %d", w, h, p.padding)
	}

	maxWidth := s.MaxWidth()
	switch {
	case s.IsSquare():
		size := min(h, min(maxWidth, w))
		p.width, p.height = size, size
	case viewW < maxWidth && !req.Options.Fullscreen:
		p.width, p.height = w, h
	default:
		scaled := maxWidth
		if r.display.WidthPx > 0 {
			scaled = min(maxWidth, r.display.WidthPx)
		}
		p.width = scaled
		// the ratio applies to the whole viewport, padding included
		p.height = int(float64(viewH) * float64(scaled) / float64(viewW))
	}

	if p.width <= 0 || p.height <= 0 {
		return plan{}, fmt.Errorf("invalid target %dx%d", p.width, p.height)
	}
	if int64(p.width)*int64(p.height) > MaxRasterPixels {
		return plan{}, fmt.Errorf("%w: %dx%d", errTooLarge, p.width, p.height)
	}
	return p, nil
}

// generate runs encode, layout, rasterize and upscale for one payload.
// Panics inside the encoders are turned into errors.
func generate(ctx context.Context, payload string, s Symbology, width, height int) (img *image.Gray, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			img = nil
			err = fmt.Errorf("barcode generation panicked: %v", rec)
		}
	}()

	native, err := encodeNative(payload, s)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m, err := layout(native, s, width, height)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img = rasterize(m)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return upscaleNearest(img, upscaleFactor(m.width, m.height, width, height))
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
