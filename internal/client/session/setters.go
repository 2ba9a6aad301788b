package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	xcurrency "golang.org/x/text/currency"

	"github.com/dmitrijs2005/cardkeeper/internal/barcode"
	"github.com/dmitrijs2005/cardkeeper/internal/client/models"
	"github.com/dmitrijs2005/cardkeeper/internal/common"
	"github.com/dmitrijs2005/cardkeeper/internal/currency"
)

// edit applies fn to the loaded card, marks the session dirty and publishes
// the new snapshot.
func (s *Session) edit(fn func(c *models.Card)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editLocked(fn)
}

func (s *Session) editLocked(fn func(c *models.Card)) error {
	if s.closed {
		return common.ErrSessionClosed
	}
	if !s.loaded {
		return common.ErrNotLoaded
	}
	fn(&s.card)
	s.rev++
	s.dirty = true
	s.publishCardLocked()
	return nil
}

func (s *Session) SetStoreName(name string) error {
	return s.edit(func(c *models.Card) { c.StoreName = name })
}

func (s *Session) SetNote(note string) error {
	return s.edit(func(c *models.Card) { c.Note = note })
}

// SetValidFrom sets the start of validity; nil clears it.
func (s *Session) SetValidFrom(t *time.Time) error {
	return s.edit(func(c *models.Card) { c.ValidFrom = clonePtr(t) })
}

func (s *Session) SetExpiry(t *time.Time) error {
	return s.edit(func(c *models.Card) { c.Expiry = clonePtr(t) })
}

// SetBalance sets an already parsed balance.
func (s *Session) SetBalance(d decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editLocked(func(c *models.Card) {
		c.Balance = d
		s.balanceValid = true
	})
}

// SetBalanceText parses user input for the balance in the card's currency.
// On error the balance is kept, and saving is refused until valid text or
// a balance is set.
func (s *Session) SetBalanceText(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var parseErr error
	err := s.editLocked(func(c *models.Card) {
		d, err := currency.ParseBalance(text, c.BalanceType)
		if err != nil {
			parseErr = err
			s.balanceValid = false
			return
		}
		c.Balance = d
		s.balanceValid = true
	})
	if err != nil {
		return err
	}
	return parseErr
}

// SetBalanceType sets the balance currency; nil means points.
func (s *Session) SetBalanceType(u *xcurrency.Unit) error {
	return s.edit(func(c *models.Card) {
		c.BalanceType = clonePtr(u)
		if u != nil {
			c.Balance = c.Balance.Round(currency.Scale(u))
		}
	})
}

// SetBalanceCurrency resolves symbol, such as "€" or "EUR", through the
// currency service. An empty symbol selects points.
func (s *Session) SetBalanceCurrency(symbol string) error {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return s.SetBalanceType(nil)
	}
	u, ok := s.currencies.FromSymbol(symbol)
	if !ok {
		return fmt.Errorf("%w: currency %q", common.ErrParse, symbol)
	}
	return s.SetBalanceType(&u)
}

// SetHeaderColor sets an ARGB header color; nil lets the UI choose.
func (s *Session) SetHeaderColor(argb *uint32) error {
	return s.edit(func(c *models.Card) { c.HeaderColor = clonePtr(argb) })
}

func (s *Session) SetStarred(starred bool) error {
	return s.edit(func(c *models.Card) { c.Starred = starred })
}

func (s *Session) SetArchived(archived bool) error {
	return s.edit(func(c *models.Card) { c.Archived = archived })
}

// SetImage replaces the image at loc; nil removes it.
func (s *Session) SetImage(loc models.ImageLocation, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	if data == nil {
		cp = nil
	}
	return s.edit(func(c *models.Card) { c.SetImage(loc, cp) })
}

// SetCardID changes the card id and regenerates the barcode. When a separate
// barcode id is set, its value from before the first edit is remembered so
// that the user can be asked whether it should follow the new card id.
func (s *Session) SetCardID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.editBarcodeLocked(func(c *models.Card) {
		if c.BarcodeID != nil && s.pendingBarcodeID == nil && id != c.CardID {
			s.pendingBarcodeID = clonePtr(c.BarcodeID)
		}
		c.CardID = id
	})
}

// SetBarcodeID sets the value encoded in the barcode; nil makes it follow
// the card id. An explicit choice settles any pending sync question.
func (s *Session) SetBarcodeID(id *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.editBarcodeLocked(func(c *models.Card) {
		c.BarcodeID = clonePtr(id)
		s.pendingBarcodeID = nil
		s.prompting = false
		s.deferred = nil
	})
}

// SetBarcodeType selects the symbology. nil switches to BarcodeNone at
// once and cancels a running generation.
func (s *Session) SetBarcodeType(t *barcode.Symbology) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.editBarcodeLocked(func(c *models.Card) { c.BarcodeType = clonePtr(t) })
}

func (s *Session) editBarcodeLocked(fn func(c *models.Card)) error {
	if err := s.editLocked(fn); err != nil {
		return err
	}
	if s.card.BarcodeType == nil || s.card.EffectiveBarcodeID() == "" {
		s.cancelGenerationLocked()
		s.setBarcodeLocked(BarcodeNone{})
		return nil
	}
	s.refreshLocked()
	return nil
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
