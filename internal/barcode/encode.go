package barcode

import (
	"fmt"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/aztec"
	"github.com/boombuler/barcode/codabar"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/code39"
	"github.com/boombuler/barcode/code93"
	"github.com/boombuler/barcode/datamatrix"
	"github.com/boombuler/barcode/ean"
	"github.com/boombuler/barcode/pdf417"
	"github.com/boombuler/barcode/qr"
	"github.com/boombuler/barcode/twooffive"
)

const pdf417SecurityLevel = 2

// encodeNative encodes payload at the symbology's native module resolution.
// Linear codes come back as a single row without quiet zone.
func encodeNative(payload string, s Symbology) (*bitMatrix, error) {
	var (
		bc  barcode.Barcode
		err error
	)

	switch s {
	case Aztec:
		bc, err = aztec.Encode([]byte(payload), aztec.DEFAULT_EC_PERCENT, aztec.DEFAULT_LAYERS)
	case Codabar:
		bc, err = codabar.Encode(strings.ToUpper(payload))
	case Code39:
		bc, err = code39.Encode(payload, false, true)
	case Code93:
		bc, err = code93.Encode(payload, true, true)
	case Code128:
		bc, err = code128.Encode(payload)
	case DataMatrix:
		bc, err = datamatrix.Encode(payload)
	case EAN8:
		bc, err = encodeEAN(payload, 7)
	case EAN13:
		bc, err = encodeEAN(payload, 12)
	case ITF:
		if err = requireDigits(payload); err == nil {
			bc, err = twooffive.Encode(payload, true)
		}
	case PDF417:
		bc, err = pdf417.Encode(payload, pdf417SecurityLevel)
	case QRCode:
		bc, err = qr.Encode(payload, qr.L, qr.Auto)
	case UPCA:
		bc, err = encodeUPCA(payload)
	case UPCE:
		modules, err := upceModules(payload)
		if err != nil {
			return nil, err
		}
		return rowMatrix(modules)
	default:
		return nil, fmt.Errorf("unsupported barcode type %v", s)
	}

	if err != nil {
		return nil, fmt.Errorf("encode %v: %w", s, err)
	}
	return fromBarcode(bc)
}

// encodeEAN accepts dataLen digits (check digit computed) or dataLen+1
// digits (check digit verified).
func encodeEAN(payload string, dataLen int) (barcode.Barcode, error) {
	if err := requireDigits(payload); err != nil {
		return nil, err
	}
	if len(payload) != dataLen && len(payload) != dataLen+1 {
		return nil, fmt.Errorf("need %d or %d digits, got %d", dataLen, dataLen+1, len(payload))
	}
	return ean.Encode(payload)
}

// encodeUPCA draws UPC-A as the equivalent EAN-13 with number system 0.
func encodeUPCA(payload string) (barcode.Barcode, error) {
	if err := requireDigits(payload); err != nil {
		return nil, err
	}
	if len(payload) != 11 && len(payload) != 12 {
		return nil, fmt.Errorf("need 11 or 12 digits, got %d", len(payload))
	}
	return ean.Encode("0" + payload)
}

func requireDigits(s string) error {
	if s == "" {
		return fmt.Errorf("empty content")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return fmt.Errorf("only digits can be encoded, got %q", r)
		}
	}
	return nil
}
