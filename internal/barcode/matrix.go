package barcode

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/boombuler/barcode"
)

// MaxRasterPixels caps every intermediate matrix and image.
const MaxRasterPixels = 16 << 20

var errTooLarge = errors.New("barcode exceeds raster budget")

// bitMatrix is a grid of on (dark) and off modules.
type bitMatrix struct {
	width  int
	height int
	bits   []bool
}

func newBitMatrix(width, height int) (*bitMatrix, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid matrix size %dx%d", width, height)
	}
	if int64(width)*int64(height) > MaxRasterPixels {
		return nil, fmt.Errorf("%w: %dx%d", errTooLarge, width, height)
	}
	return &bitMatrix{width: width, height: height, bits: make([]bool, width*height)}, nil
}

func (m *bitMatrix) get(x, y int) bool {
	return m.bits[y*m.width+x]
}

func (m *bitMatrix) set(x, y int) {
	m.bits[y*m.width+x] = true
}

func (m *bitMatrix) setRegion(left, top, w, h int) {
	for y := top; y < top+h; y++ {
		row := m.bits[y*m.width : (y+1)*m.width]
		for x := left; x < left+w; x++ {
			row[x] = true
		}
	}
}

// rowMatrix builds a one-row matrix from a linear module sequence.
func rowMatrix(modules []bool) (*bitMatrix, error) {
	m, err := newBitMatrix(len(modules), 1)
	if err != nil {
		return nil, err
	}
	copy(m.bits, modules)
	return m, nil
}

func fromBarcode(bc barcode.Barcode) (*bitMatrix, error) {
	b := bc.Bounds()
	m, err := newBitMatrix(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			if isDark(bc.At(b.Min.X+x, b.Min.Y+y)) {
				m.set(x, y)
			}
		}
	}
	return m, nil
}

func isDark(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return (r+g+b)/3 < 0x8000
}
