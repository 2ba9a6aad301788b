// Package models defines the loyalty card wallet's data types.
package models

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"

	"github.com/dmitrijs2005/cardkeeper/internal/barcode"
)

// NewCardID marks a card that has not been persisted yet.
const NewCardID int64 = -1

// Card is an editable loyalty card.
type Card struct {
	// ID is the database identity, or NewCardID (any value <= 0) for new cards.
	ID int64

	StoreName string
	Note      string

	ValidFrom *time.Time
	Expiry    *time.Time

	Balance decimal.Decimal
	// BalanceType is the balance currency; nil means points.
	BalanceType *currency.Unit

	// CardID is the identifier printed on the card.
	CardID string
	// BarcodeID is encoded instead of CardID when set.
	BarcodeID   *string
	BarcodeType *barcode.Symbology

	// HeaderColor is an ARGB color; nil lets the UI pick one.
	HeaderColor *uint32

	Starred  bool
	Archived bool

	ImageFront []byte
	ImageBack  []byte
	ImageIcon  []byte

	LastUsed time.Time
}

// NewCard returns a blank, unsaved card.
func NewCard() Card {
	return Card{ID: NewCardID, Balance: decimal.Zero}
}

func (c Card) IsNew() bool { return c.ID <= 0 }

// EffectiveBarcodeID is the value that goes into the barcode: BarcodeID when
// set, CardID otherwise.
func (c Card) EffectiveBarcodeID() string {
	if c.BarcodeID != nil {
		return *c.BarcodeID
	}
	return c.CardID
}

// Image returns the image stored at loc.
func (c Card) Image(loc ImageLocation) []byte {
	switch loc {
	case ImageFront:
		return c.ImageFront
	case ImageBack:
		return c.ImageBack
	case ImageIcon:
		return c.ImageIcon
	}
	return nil
}

// SetImage replaces the image at loc; nil removes it.
func (c *Card) SetImage(loc ImageLocation, data []byte) {
	switch loc {
	case ImageFront:
		c.ImageFront = data
	case ImageBack:
		c.ImageBack = data
	case ImageIcon:
		c.ImageIcon = data
	}
}

// Clone returns a deep copy that shares no memory with c.
func (c Card) Clone() Card {
	out := c
	out.ValidFrom = clonePtr(c.ValidFrom)
	out.Expiry = clonePtr(c.Expiry)
	out.BalanceType = clonePtr(c.BalanceType)
	out.BarcodeID = clonePtr(c.BarcodeID)
	out.BarcodeType = clonePtr(c.BarcodeType)
	out.HeaderColor = clonePtr(c.HeaderColor)
	out.ImageFront = cloneBytes(c.ImageFront)
	out.ImageBack = cloneBytes(c.ImageBack)
	out.ImageIcon = cloneBytes(c.ImageIcon)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
