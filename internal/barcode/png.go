package barcode

import (
	"fmt"
	"image/png"
	"io"

	"github.com/dmitrijs2005/cardkeeper/internal/common"
)

// EncodePNG writes the result image as PNG.
func EncodePNG(w io.Writer, res RenderResult) error {
	if res.Image == nil {
		return fmt.Errorf("%w: no image for %v", common.ErrRenderFailed, res.Symbology)
	}
	if err := png.Encode(w, res.Image); err != nil {
		return fmt.Errorf("png encode: %w", err)
	}
	return nil
}
