package session

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/cardkeeper/internal/barcode"
	"github.com/dmitrijs2005/cardkeeper/internal/client/models"
	"github.com/dmitrijs2005/cardkeeper/internal/common"
)

const waitFor = 2 * time.Second

type fakeGateway struct {
	mu        sync.Mutex
	cards     map[int64]models.Card
	loadGates map[int64]chan struct{}
	saveGate  chan struct{}
	saveErr   error
	saves     []models.Card
	nextID    int64
}

func newFakeGateway(cards ...models.Card) *fakeGateway {
	g := &fakeGateway{cards: map[int64]models.Card{}, loadGates: map[int64]chan struct{}{}, nextID: 100}
	for _, c := range cards {
		g.cards[c.ID] = c
	}
	return g
}

func (g *fakeGateway) Load(ctx context.Context, req models.LoadRequest) (*models.LoadedCard, error) {
	g.mu.Lock()
	gate := g.loadGates[req.ID]
	g.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	all := []models.Group{{Name: "Food", Order: 0}}
	if req.ID <= 0 {
		return &models.LoadedCard{Card: models.NewCard(), AllGroups: all}, nil
	}
	card, ok := g.cards[req.ID]
	if !ok {
		return nil, common.ErrNotFound
	}
	if req.Duplicate {
		card.ID = models.NewCardID
		return &models.LoadedCard{Card: card.Clone(), AllGroups: all}, nil
	}
	return &models.LoadedCard{Card: card.Clone(), Groups: all, AllGroups: all}, nil
}

func (g *fakeGateway) Save(_ context.Context, card models.Card, _ []models.Group) (*models.Card, error) {
	g.mu.Lock()
	g.saves = append(g.saves, card.Clone())
	gate := g.saveGate
	g.mu.Unlock()

	if gate != nil {
		<-gate
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.saveErr != nil {
		return nil, g.saveErr
	}
	if card.IsNew() {
		g.nextID++
		card.ID = g.nextID
	}
	g.cards[card.ID] = card.Clone()
	return &card, nil
}

func (g *fakeGateway) saveCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.saves)
}

func (g *fakeGateway) lastSave() models.Card {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.saves[len(g.saves)-1]
}

// gatedRenderer delegates to a real renderer but holds payloads listed in
// gates until their channel is closed.
type gatedRenderer struct {
	real  *barcode.Renderer
	gates map[string]chan struct{}
	// ignoreCancel finishes gated renders even after cancellation.
	ignoreCancel bool
	calls        atomic.Int32
}

func newGatedRenderer() *gatedRenderer {
	return &gatedRenderer{real: barcode.NewRenderer(barcode.DefaultDisplay), gates: map[string]chan struct{}{}}
}

func (r *gatedRenderer) RenderContext(ctx context.Context, req barcode.RenderRequest) (barcode.RenderResult, error) {
	r.calls.Add(1)

	gate, ok := r.gates[req.Payload]
	if !ok {
		return r.real.RenderContext(ctx, req)
	}

	if r.ignoreCancel {
		<-gate
		return r.real.RenderContext(context.Background(), req)
	}

	select {
	case <-gate:
		return r.real.RenderContext(ctx, req)
	case <-ctx.Done():
		return barcode.RenderResult{Symbology: req.Symbology}, ctx.Err()
	}
}

func newSession(t *testing.T, g *fakeGateway, r Renderer) *Session {
	t.Helper()
	if r == nil {
		r = barcode.NewRenderer(barcode.DefaultDisplay)
	}
	s := New(g, r, Options{Workers: 2})
	t.Cleanup(s.Close)
	return s
}

func loadCard(t *testing.T, s *Session, req models.LoadRequest) CardLoaded {
	t.Helper()
	require.NoError(t, s.LoadCard(req))
	require.Eventually(t, func() bool {
		_, ok := s.CardState().(CardLoaded)
		return ok
	}, waitFor, 5*time.Millisecond)
	return s.CardState().(CardLoaded)
}

func waitBarcode[T BarcodeState](t *testing.T, s *Session) T {
	t.Helper()
	require.Eventually(t, func() bool {
		_, ok := s.BarcodeState().(T)
		return ok
	}, waitFor, 5*time.Millisecond)
	return s.BarcodeState().(T)
}

func waitSave[T SaveState](t *testing.T, s *Session) T {
	t.Helper()
	require.Eventually(t, func() bool {
		_, ok := s.SaveState().(T)
		return ok
	}, waitFor, 5*time.Millisecond)
	return s.SaveState().(T)
}

func nextEvent(t *testing.T, s *Session) Event {
	t.Helper()
	select {
	case e, ok := <-s.Events():
		require.True(t, ok, "event channel closed")
		return e
	case <-time.After(waitFor):
		t.Fatal("timed out waiting for event")
	}
	return nil
}

func noEvent(t *testing.T, s *Session) {
	t.Helper()
	select {
	case e := <-s.Events():
		t.Fatalf("unexpected event %#v", e)
	case <-time.After(50 * time.Millisecond):
	}
}

func sym(s barcode.Symbology) *barcode.Symbology { return &s }

func str(s string) *string { return &s }

func storedCard(id int64, cardID string, barcodeID *string) models.Card {
	c := models.NewCard()
	c.ID = id
	c.StoreName = "Store"
	c.CardID = cardID
	c.BarcodeID = barcodeID
	c.BarcodeType = sym(barcode.Code128)
	return c
}
