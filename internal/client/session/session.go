package session

import (
	"context"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/dmitrijs2005/cardkeeper/internal/barcode"
	"github.com/dmitrijs2005/cardkeeper/internal/client/models"
	"github.com/dmitrijs2005/cardkeeper/internal/common"
	"github.com/dmitrijs2005/cardkeeper/internal/currency"
	"github.com/dmitrijs2005/cardkeeper/internal/logging"
	"github.com/dmitrijs2005/cardkeeper/internal/observe"
)

// Gateway loads and persists cards. services.CardService implements it.
type Gateway interface {
	Load(ctx context.Context, req models.LoadRequest) (*models.LoadedCard, error)
	Save(ctx context.Context, card models.Card, groups []models.Group) (*models.Card, error)
}

// Renderer is satisfied by *barcode.Renderer.
type Renderer interface {
	RenderContext(ctx context.Context, req barcode.RenderRequest) (barcode.RenderResult, error)
}

type Options struct {
	// Workers bounds concurrent renders; zero means runtime.NumCPU.
	Workers int
	// RenderTimeout fails a render that takes longer; zero disables it.
	RenderTimeout time.Duration
	// Currencies resolves balance currencies; nil builds a new service.
	Currencies *currency.Service
	Logger     logging.Logger
}

type viewport struct {
	width, height int
	opts          barcode.Options
}

type Session struct {
	gateway    Gateway
	renderer   Renderer
	currencies *currency.Service
	logger     logging.Logger

	renderSlots   *semaphore.Weighted
	renderTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu sync.Mutex

	closed       bool
	loaded       bool
	card         models.Card
	groups       []models.Group
	allGroups    []models.Group
	barcode      BarcodeState
	dirty        bool
	balanceValid bool
	tab          Tab

	loadSeq   uint64
	genSeq    uint64
	genCancel context.CancelFunc
	viewport  *viewport
	saving    bool
	// rev counts card edits; a save only settles the edits it carried.
	rev uint64

	// pendingBarcodeID is the barcode id from before the card id edit that
	// still awaits the sync decision. It is a single slot: later card id
	// edits do not replace it.
	pendingBarcodeID *string
	prompting        bool
	deferred         func()

	cardStates    *observe.Stream[CardLoadState]
	barcodeStates *observe.Stream[BarcodeState]
	saveStates    *observe.Stream[SaveState]
	events        *observe.Events[Event]
}

func New(gateway Gateway, renderer Renderer, opts Options) *Session {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	currencies := opts.Currencies
	if currencies == nil {
		currencies = currency.NewService()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Session{
		gateway:       gateway,
		renderer:      renderer,
		currencies:    currencies,
		logger:        logger,
		renderSlots:   semaphore.NewWeighted(int64(workers)),
		renderTimeout: opts.RenderTimeout,
		ctx:           ctx,
		cancel:        cancel,
		barcode:       BarcodeNone{},
		balanceValid:  true,
		cardStates:    observe.NewStream[CardLoadState](CardLoading{}),
		barcodeStates: observe.NewStream[BarcodeState](BarcodeNone{}),
		saveStates:    observe.NewStream[SaveState](SaveIdle{}),
		events:        observe.NewEvents[Event](),
	}
}

// LoadCard starts loading req and returns immediately. A later LoadCard
// supersedes this one.
func (s *Session) LoadCard(req models.LoadRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return common.ErrSessionClosed
	}

	s.loadSeq++
	seq := s.loadSeq
	s.loaded = false
	s.cancelGenerationLocked()
	s.barcode = BarcodeNone{}
	s.barcodeStates.Publish(s.barcode)
	s.cardStates.Publish(CardLoading{})

	s.wg.Add(1)
	go s.load(seq, req)
	return nil
}

func (s *Session) load(seq uint64, req models.LoadRequest) {
	defer s.wg.Done()

	loaded, err := s.gateway.Load(s.ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || seq != s.loadSeq {
		s.logger.Debug(s.ctx, "superseded load discarded", "id", req.ID)
		return
	}

	if err != nil {
		s.logger.Error(s.ctx, "card load failed", "id", req.ID, "error", err)
		s.cardStates.Publish(CardLoadFailed{Err: err})
		return
	}

	s.loaded = true
	s.card = loaded.Card.Clone()
	s.groups = models.CloneGroups(loaded.Groups)
	s.allGroups = models.CloneGroups(loaded.AllGroups)
	s.dirty = false
	s.balanceValid = true
	s.pendingBarcodeID = nil
	s.prompting = false
	s.deferred = nil
	s.tab = TabCard
	s.saveStates.Publish(SaveIdle{})

	s.logger.Debug(s.ctx, "card loaded", "id", s.card.ID)
	s.publishCardLocked()

	if s.viewport != nil {
		s.refreshLocked()
	}
}

// publishCardLocked publishes a fresh snapshot of the loaded card.
func (s *Session) publishCardLocked() {
	if !s.loaded || s.closed {
		return
	}
	s.cardStates.Publish(CardLoaded{
		Card:      s.card.Clone(),
		Groups:    models.CloneGroups(s.groups),
		AllGroups: models.CloneGroups(s.allGroups),
		Barcode:   s.barcode,
	})
}

func (s *Session) emitLocked(e Event) {
	if s.closed {
		return
	}
	s.events.Emit(e)
}

// Close cancels outstanding loads and renders and ends every stream. It
// never saves. An in-flight save still completes, but its outcome is not
// published.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.cancelGenerationLocked()
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()

	s.cardStates.Close()
	s.barcodeStates.Close()
	s.saveStates.Close()
	s.events.Close()
}

// Card returns a copy of the edited card.
func (s *Session) Card() (models.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return models.Card{}, common.ErrNotLoaded
	}
	return s.card.Clone(), nil
}

func (s *Session) CardState() CardLoadState { return s.cardStates.Value() }

func (s *Session) BarcodeState() BarcodeState { return s.barcodeStates.Value() }

func (s *Session) SaveState() SaveState { return s.saveStates.Value() }

// CardStates streams card load states, starting with the current one.
func (s *Session) CardStates(ctx context.Context) <-chan CardLoadState {
	return s.cardStates.Subscribe(ctx)
}

func (s *Session) BarcodeStates(ctx context.Context) <-chan BarcodeState {
	return s.barcodeStates.Subscribe(ctx)
}

func (s *Session) SaveStates(ctx context.Context) <-chan SaveState {
	return s.saveStates.Subscribe(ctx)
}

// Events returns the one-shot event channel. It closes after Close, and
// events not received by then are dropped.
func (s *Session) Events() <-chan Event {
	return s.events.C()
}

// Dirty reports unsaved changes.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

func (s *Session) Tab() Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tab
}

// PendingBarcodeSync returns the barcode id awaiting the sync decision.
func (s *Session) PendingBarcodeSync() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pendingBarcodeID == nil {
		return "", false
	}
	return *s.pendingBarcodeID, true
}

// Currencies returns the currency service used for balances.
func (s *Session) Currencies() *currency.Service {
	return s.currencies
}
