package barcode

const (
	linearQuietZone = 10
	qrQuietZone     = 4
)

// layout places a native matrix into the requested pixel box. Encoders that
// honour a requested size are scaled by a whole number of pixels per module
// and centered; DataMatrix keeps its native size and relies on upscaling.
func layout(native *bitMatrix, s Symbology, width, height int) (*bitMatrix, error) {
	switch {
	case s.isLinear():
		return layoutLinear(native, width, height, linearQuietZone)
	case s == QRCode:
		return layoutPrecise(native, width, height, qrQuietZone)
	case s == Aztec || s == PDF417:
		return layoutPrecise(native, width, height, 0)
	default:
		return native, nil
	}
}

func layoutLinear(row *bitMatrix, width, height, quiet int) (*bitMatrix, error) {
	codeWidth := row.width
	fullWidth := codeWidth + 2*quiet
	outWidth := max(width, fullWidth)
	outHeight := max(1, height)

	multiple := outWidth / fullWidth
	left := (outWidth - codeWidth*multiple) / 2

	out, err := newBitMatrix(outWidth, outHeight)
	if err != nil {
		return nil, err
	}
	for x := 0; x < codeWidth; x++ {
		if row.get(x, 0) {
			out.setRegion(left+x*multiple, 0, multiple, outHeight)
		}
	}
	return out, nil
}

func layoutPrecise(in *bitMatrix, width, height, quiet int) (*bitMatrix, error) {
	inWidth := in.width + 2*quiet
	inHeight := in.height + 2*quiet
	outWidth := max(width, inWidth)
	outHeight := max(height, inHeight)

	multiple := min(outWidth/inWidth, outHeight/inHeight)
	left := (outWidth - in.width*multiple) / 2
	top := (outHeight - in.height*multiple) / 2

	out, err := newBitMatrix(outWidth, outHeight)
	if err != nil {
		return nil, err
	}
	for y := 0; y < in.height; y++ {
		for x := 0; x < in.width; x++ {
			if in.get(x, y) {
				out.setRegion(left+x*multiple, top+y*multiple, multiple, multiple)
			}
		}
	}
	return out, nil
}
