package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/cardkeeper/internal/barcode"
	"github.com/dmitrijs2005/cardkeeper/internal/common"
)

// GenerateBarcode renders payload as symbology into a width x height DIP
// viewport and remembers the viewport for later refreshes. An empty payload
// or nil symbology sets BarcodeNone without rendering. Any generation still
// running is cancelled and its result discarded.
func (s *Session) GenerateBarcode(payload string, symbology *barcode.Symbology, width, height int, opts barcode.Options) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return common.ErrSessionClosed
	}

	s.viewport = &viewport{width: width, height: height, opts: opts}
	s.generateLocked(payload, symbology)
	return nil
}

// RefreshBarcode regenerates the card's barcode with the last viewport.
func (s *Session) RefreshBarcode() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return common.ErrSessionClosed
	}
	if !s.loaded {
		return common.ErrNotLoaded
	}
	s.refreshLocked()
	return nil
}

// CancelBarcodeGeneration stops a running generation and resets the
// barcode state to BarcodeNone.
func (s *Session) CancelBarcodeGeneration() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.cancelGenerationLocked()
	s.setBarcodeLocked(BarcodeNone{})
}

func (s *Session) refreshLocked() {
	if s.viewport == nil {
		return
	}
	s.generateLocked(s.card.EffectiveBarcodeID(), s.card.BarcodeType)
}

// cancelGenerationLocked invalidates the running generation, if any.
func (s *Session) cancelGenerationLocked() {
	s.genSeq++
	if s.genCancel != nil {
		s.genCancel()
		s.genCancel = nil
	}
}

func (s *Session) generateLocked(payload string, symbology *barcode.Symbology) {
	s.cancelGenerationLocked()

	if payload == "" || symbology == nil {
		s.setBarcodeLocked(BarcodeNone{})
		return
	}

	vp := s.viewport
	req := barcode.RenderRequest{
		Payload:   payload,
		Symbology: *symbology,
		Width:     vp.width,
		Height:    vp.height,
		Options:   vp.opts,
	}

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if s.renderTimeout > 0 {
		ctx, cancel = context.WithTimeout(s.ctx, s.renderTimeout)
	} else {
		ctx, cancel = context.WithCancel(s.ctx)
	}
	s.genCancel = cancel
	seq := s.genSeq

	s.setBarcodeLocked(BarcodeGenerating{Request: req})

	s.wg.Add(1)
	go s.render(ctx, cancel, seq, req)
}

func (s *Session) render(ctx context.Context, cancel context.CancelFunc, seq uint64, req barcode.RenderRequest) {
	defer s.wg.Done()
	defer cancel()

	res, err := s.renderBounded(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || seq != s.genSeq {
		s.logger.Debug(ctx, "superseded barcode discarded", "symbology", req.Symbology.String())
		return
	}
	s.genCancel = nil

	switch {
	case errors.Is(err, context.Canceled):
		return
	case err != nil:
		s.logger.Warn(ctx, "barcode generation timed out", "symbology", req.Symbology.String(), "error", err)
		s.setBarcodeLocked(BarcodeFailed{Err: fmt.Errorf("%w: %w", common.ErrRenderFailed, err)})
	case res.Failed():
		s.logger.Warn(ctx, "barcode generation failed", "symbology", req.Symbology.String())
		s.setBarcodeLocked(BarcodeFailed{Err: common.ErrRenderFailed})
	default:
		if !res.Valid {
			s.logger.Warn(ctx, "barcode rendered with fallback payload", "symbology", req.Symbology.String())
		}
		s.setBarcodeLocked(BarcodeGenerated{Result: res})
	}
}

// renderBounded waits for a free render slot before rendering.
func (s *Session) renderBounded(ctx context.Context, req barcode.RenderRequest) (barcode.RenderResult, error) {
	if err := s.renderSlots.Acquire(ctx, 1); err != nil {
		return barcode.RenderResult{Symbology: req.Symbology}, err
	}
	defer s.renderSlots.Release(1)

	return s.renderer.RenderContext(ctx, req)
}

func (s *Session) setBarcodeLocked(state BarcodeState) {
	if s.closed {
		return
	}
	s.barcode = state
	s.barcodeStates.Publish(state)
	s.publishCardLocked()
}
