package session

import (
	"github.com/dmitrijs2005/cardkeeper/internal/barcode"
	"github.com/dmitrijs2005/cardkeeper/internal/client/models"
)

// CardLoadState is one of CardLoading, CardLoaded or CardLoadFailed.
type CardLoadState interface {
	isCardLoadState()
}

// CardLoading is the state before the first load completes.
type CardLoading struct{}

// CardLoaded carries copies of the edited card and its groups.
type CardLoaded struct {
	Card      models.Card
	Groups    []models.Group
	AllGroups []models.Group
	Barcode   BarcodeState
}

type CardLoadFailed struct {
	Err error
}

func (CardLoading) isCardLoadState()    {}
func (CardLoaded) isCardLoadState()     {}
func (CardLoadFailed) isCardLoadState() {}

// BarcodeState is one of BarcodeNone, BarcodeGenerating, BarcodeGenerated
// or BarcodeFailed.
type BarcodeState interface {
	isBarcodeState()
}

// BarcodeNone means there is no payload or no symbology to render.
type BarcodeNone struct{}

type BarcodeGenerating struct {
	Request barcode.RenderRequest
}

// BarcodeGenerated holds a result with an image. Result.Valid is false
// when a fallback payload was drawn instead of the card's.
type BarcodeGenerated struct {
	Result barcode.RenderResult
}

type BarcodeFailed struct {
	Err error
}

func (BarcodeNone) isBarcodeState()       {}
func (BarcodeGenerating) isBarcodeState() {}
func (BarcodeGenerated) isBarcodeState()  {}
func (BarcodeFailed) isBarcodeState()     {}

// SaveState is one of SaveIdle, Saving, Saved or SaveFailed.
type SaveState interface {
	isSaveState()
}

type SaveIdle struct{}

type Saving struct{}

// Saved reports the identity assigned by the gateway.
type Saved struct {
	ID int64
}

// SaveFailed holds a *ValidationError or an error wrapping
// common.ErrPersistence.
type SaveFailed struct {
	Err error
}

func (SaveIdle) isSaveState()   {}
func (Saving) isSaveState()     {}
func (Saved) isSaveState()      {}
func (SaveFailed) isSaveState() {}

// Tab is the part of the edit screen the user is on.
type Tab int

const (
	TabCard Tab = iota
	TabOptions
	TabPhotos
)

func (t Tab) String() string {
	switch t {
	case TabCard:
		return "card"
	case TabOptions:
		return "options"
	case TabPhotos:
		return "photos"
	}
	return "unknown"
}
