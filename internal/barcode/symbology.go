// Package barcode turns a card identifier into a scannable barcode image
// sized for a viewport. Rendering is synchronous, holds no shared mutable
// state and is safe to call from any goroutine.
package barcode

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/cardkeeper/internal/common"
)

type Symbology int

const (
	Aztec Symbology = iota + 1
	Codabar
	Code39
	Code93
	Code128
	DataMatrix
	EAN8
	EAN13
	ITF
	PDF417
	QRCode
	UPCA
	UPCE
)

const (
	// MaxWidth1D bounds linear codes and generators that ignore the requested size.
	MaxWidth1D = 1500
	// MaxWidth2D bounds fine-grained 2D codes.
	MaxWidth2D = 500
)

type symbologyInfo struct {
	name            string
	square          bool
	internalPadding bool
	precise2D       bool
	fallback        string
}

var symbologies = map[Symbology]symbologyInfo{
	Aztec:      {name: "AZTEC", square: true, precise2D: true, fallback: "AZTEC"},
	Codabar:    {name: "CODABAR", fallback: "C0C"},
	Code39:     {name: "CODE_39", fallback: "CODE_39"},
	Code93:     {name: "CODE_93", fallback: "CODE_93"},
	Code128:    {name: "CODE_128", fallback: "CODE_128"},
	DataMatrix: {name: "DATA_MATRIX", square: true, fallback: "DATA_MATRIX"},
	EAN8:       {name: "EAN_8", fallback: "32123456"},
	EAN13:      {name: "EAN_13", fallback: "5901234123457"},
	ITF:        {name: "ITF", fallback: "1003"},
	PDF417:     {name: "PDF_417", internalPadding: true, precise2D: true, fallback: "PDF_417"},
	QRCode:     {name: "QR_CODE", square: true, internalPadding: true, precise2D: true, fallback: "QR_CODE"},
	UPCA:       {name: "UPC_A", fallback: "123456789012"},
	UPCE:       {name: "UPC_E", fallback: "0123456"},
}

// All returns every supported symbology in declaration order.
func All() []Symbology {
	out := make([]Symbology, 0, len(symbologies))
	for s := Aztec; s <= UPCE; s++ {
		out = append(out, s)
	}
	return out
}

// ParseSymbology accepts canonical names such as "QR_CODE" or "UPC_A".
// Matching ignores case and treats '-' like '_'.
func ParseSymbology(name string) (Symbology, error) {
	n := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), "-", "_"))
	for s, info := range symbologies {
		if info.name == n {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown barcode type %q", common.ErrParse, name)
}

func (s Symbology) String() string {
	if info, ok := symbologies[s]; ok {
		return info.name
	}
	return fmt.Sprintf("Symbology(%d)", int(s))
}

func (s Symbology) Valid() bool {
	_, ok := symbologies[s]
	return ok
}

// IsSquare reports whether the symbology is always drawn with equal sides.
func (s Symbology) IsSquare() bool { return symbologies[s].square }

// HasInternalPadding reports whether the encoded symbol already carries
// whitespace around it, so no rounded-corner padding is added.
func (s Symbology) HasInternalPadding() bool { return symbologies[s].internalPadding }

// MaxWidth is the largest pixel width rendered for s.
func (s Symbology) MaxWidth() int {
	if symbologies[s].precise2D {
		return MaxWidth2D
	}
	return MaxWidth1D
}

// FallbackPayload is a known-good value that always encodes for s.
func (s Symbology) FallbackPayload() (string, bool) {
	info, ok := symbologies[s]
	if !ok || info.fallback == "" {
		return "", false
	}
	return info.fallback, true
}

func (s Symbology) isLinear() bool {
	info, ok := symbologies[s]
	return ok && !info.square && !info.precise2D
}
