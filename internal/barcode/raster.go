package barcode

import (
	"fmt"
	"image"
	"image/color"
)

var (
	black = color.Gray{Y: 0}
	white = color.Gray{Y: 0xff}
)

// rasterize draws m at one pixel per module, dark modules black.
func rasterize(m *bitMatrix) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.width, m.height))
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			if m.get(x, y) {
				img.SetGray(x, y, black)
			} else {
				img.SetGray(x, y, white)
			}
		}
	}
	return img
}

// upscaleFactor is the largest whole factor that fits the native size into
// the target on both axes, or 1 when that factor is below 2.
func upscaleFactor(nativeW, nativeH, targetW, targetH int) int {
	f := min(targetW/nativeW, targetH/nativeH)
	if f < 2 {
		return 1
	}
	return f
}

// upscaleNearest repeats every pixel factor times along both axes.
func upscaleNearest(src *image.Gray, factor int) (*image.Gray, error) {
	if factor <= 1 {
		return src, nil
	}
	b := src.Bounds()
	w, h := b.Dx()*factor, b.Dy()*factor
	if int64(w)*int64(h) > MaxRasterPixels {
		return nil, fmt.Errorf("%w: %dx%d", errTooLarge, w, h)
	}

	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		srcRow := src.Pix[(y/factor)*src.Stride:]
		dstRow := dst.Pix[y*dst.Stride : y*dst.Stride+w]
		for x := range dstRow {
			dstRow[x] = srcRow[x/factor]
		}
	}
	return dst, nil
}
