package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/cardkeeper/internal/client/models"
	"github.com/dmitrijs2005/cardkeeper/internal/common"
)

// SaveCard validates the card and hands it to the gateway with groups.
//
// It returns common.ErrSaveInProgress without contacting the gateway while
// another save runs, and a *ValidationError when required fields are
// missing. If the barcode id sync question is open, the save waits for
// ResolveBarcodeSync and SaveCard returns nil. The outcome of the gateway
// call is published on the save stream.
func (s *Session) SaveCard(groups []models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return common.ErrSessionClosed
	}
	if !s.loaded {
		return common.ErrNotLoaded
	}
	if s.saving {
		return common.ErrSaveInProgress
	}

	groups = models.CloneGroups(groups)
	if s.gateLocked(func() { _ = s.SaveCard(groups) }) {
		return nil
	}

	s.saveStates.Publish(Saving{})

	if err := s.validateLocked(); err != nil {
		s.saveStates.Publish(SaveFailed{Err: err})
		return err
	}

	s.saving = true
	card := s.card.Clone()

	// The save outlives Close so a write that reached the gateway is not
	// torn in half.
	ctx := context.WithoutCancel(s.ctx)
	go s.save(ctx, card, groups, s.loadSeq, s.rev)
	return nil
}

// save runs the gateway call. Edits made while it runs stay in the session
// and keep it dirty; only the assigned id is taken from the result then.
func (s *Session) save(ctx context.Context, card models.Card, groups []models.Group, loadSeq, rev uint64) {
	saved, err := s.gateway.Save(ctx, card, groups)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.saving = false
	if s.closed {
		return
	}

	if err != nil {
		err = fmt.Errorf("%w: %w", common.ErrPersistence, err)
		s.logger.Error(ctx, "card save failed", "id", card.ID, "error", err)
		s.saveStates.Publish(SaveFailed{Err: err})
		s.emitLocked(EventToast{Message: err.Error()})
		return
	}

	s.logger.Info(ctx, "card saved", "id", saved.ID)
	switch {
	case s.loadSeq != loadSeq:
		// another card was loaded meanwhile
	case s.rev != rev:
		s.card.ID = saved.ID
		s.groups = groups
		s.publishCardLocked()
	default:
		s.card = saved.Clone()
		s.groups = groups
		s.dirty = false
		s.balanceValid = true
		s.publishCardLocked()
	}
	s.saveStates.Publish(Saved{ID: saved.ID})
	s.emitLocked(EventSaved{ID: saved.ID})
}

func (s *Session) validateLocked() error {
	var fields []FieldError
	if strings.TrimSpace(s.card.StoreName) == "" {
		fields = append(fields, FieldError{Field: FieldStoreName, Err: common.ErrFieldEmpty})
	}
	if strings.TrimSpace(s.card.CardID) == "" {
		fields = append(fields, FieldError{Field: FieldCardID, Err: common.ErrFieldEmpty})
	}
	if !s.balanceValid {
		fields = append(fields, FieldError{Field: FieldBalance, Err: common.ErrBalanceInvalid})
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// gateLocked holds back action while the barcode id sync question is open
// and reports whether it did. A remembered barcode id that already equals
// the card id is settled without asking.
func (s *Session) gateLocked(action func()) bool {
	if s.pendingBarcodeID == nil {
		return false
	}

	if *s.pendingBarcodeID == s.card.CardID {
		s.card.BarcodeID = nil
		s.rev++
		s.pendingBarcodeID = nil
		s.prompting = false
		s.deferred = nil
		s.publishCardLocked()
		return false
	}

	s.deferred = action
	if !s.prompting {
		s.prompting = true
		s.emitLocked(EventAskSyncBarcodeID{BarcodeID: *s.pendingBarcodeID, CardID: s.card.CardID})
	}
	return true
}

// ResolveBarcodeSync answers EventAskSyncBarcodeID. accept makes the
// barcode id follow the card id; otherwise the remembered barcode id is
// kept. The action that raised the question then proceeds.
func (s *Session) ResolveBarcodeSync(accept bool) error {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return common.ErrSessionClosed
	}
	if s.pendingBarcodeID == nil {
		s.mu.Unlock()
		return common.ErrNoPendingPrompt
	}

	previous := s.pendingBarcodeID
	action := s.deferred
	s.pendingBarcodeID = nil
	s.prompting = false
	s.deferred = nil

	err := s.editBarcodeLocked(func(c *models.Card) {
		if accept {
			c.BarcodeID = nil
		} else {
			c.BarcodeID = previous
		}
	})
	s.mu.Unlock()

	if err != nil {
		return err
	}
	if action != nil {
		action()
	}
	return nil
}

// SetTab switches tabs. Leaving the card tab waits for the barcode id sync
// question.
func (s *Session) SetTab(t Tab) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tab == TabCard && t != TabCard && s.gateLocked(func() { s.SetTab(t) }) {
		return
	}
	s.tab = t
}

// RequestExit asks to end the session. After the barcode id sync question
// it emits EventConfirmDiscard when there are unsaved changes and
// EventExit otherwise.
func (s *Session) RequestExit() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if s.loaded && s.gateLocked(s.RequestExit) {
		return
	}
	if s.dirty {
		s.emitLocked(EventConfirmDiscard{})
		return
	}
	s.emitLocked(EventExit{})
}
