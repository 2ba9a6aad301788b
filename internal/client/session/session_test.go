package session

import (
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/cardkeeper/internal/client/models"
	"github.com/dmitrijs2005/cardkeeper/internal/common"
)

func TestLoad_Failure(t *testing.T) {
	s := newSession(t, newFakeGateway(), nil)

	require.NoError(t, s.LoadCard(models.LoadRequest{ID: 42}))
	require.Eventually(t, func() bool {
		_, ok := s.CardState().(CardLoadFailed)
		return ok
	}, waitFor, 5*time.Millisecond)

	failed := s.CardState().(CardLoadFailed)
	assert.ErrorIs(t, failed.Err, common.ErrNotFound)
	assert.ErrorIs(t, s.SetStoreName("x"), common.ErrNotLoaded)
}

func TestLoad_LastRequestWins(t *testing.T) {
	g := newFakeGateway(storedCard(1, "one", nil), storedCard(2, "two", nil))
	gate := make(chan struct{})
	g.loadGates[1] = gate
	s := newSession(t, g, nil)

	require.NoError(t, s.LoadCard(models.LoadRequest{ID: 1}))
	assert.IsType(t, CardLoading{}, s.CardState())
	loaded := loadCard(t, s, models.LoadRequest{ID: 2})
	assert.Equal(t, "two", loaded.Card.CardID)

	close(gate)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, "two", s.CardState().(CardLoaded).Card.CardID)
}

func TestLoad_Duplicate(t *testing.T) {
	s := newSession(t, newFakeGateway(storedCard(1, "one", nil)), nil)

	loaded := loadCard(t, s, models.LoadRequest{ID: 1, Duplicate: true})
	assert.True(t, loaded.Card.IsNew())
	assert.Equal(t, "one", loaded.Card.CardID)
	assert.Empty(t, loaded.Groups)
	assert.Len(t, loaded.AllGroups, 1)
}

func TestSetters_PublishCopiesAndMarkDirty(t *testing.T) {
	s := newSession(t, newFakeGateway(storedCard(1, "one", nil)), nil)
	loadCard(t, s, models.LoadRequest{ID: 1})
	assert.False(t, s.Dirty())

	img := []byte{1, 2, 3}
	require.NoError(t, s.SetImage(models.ImageFront, img))
	require.NoError(t, s.SetNote("note"))
	require.NoError(t, s.SetStarred(true))
	assert.True(t, s.Dirty())

	img[0] = 9
	card, err := s.Card()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, card.ImageFront)

	card.ImageFront[0] = 7
	published := s.CardState().(CardLoaded)
	assert.Equal(t, []byte{1, 2, 3}, published.Card.ImageFront)
	assert.Equal(t, "note", published.Card.Note)
	assert.True(t, published.Card.Starred)
}

func TestSetBalance(t *testing.T) {
	s := newSession(t, newFakeGateway(storedCard(1, "one", nil)), nil)
	loadCard(t, s, models.LoadRequest{ID: 1})

	require.NoError(t, s.SetBalanceCurrency("EUR"))
	require.NoError(t, s.SetBalanceText("1.234,567"))
	card, _ := s.Card()
	require.NotNil(t, card.BalanceType)
	assert.Equal(t, "EUR", card.BalanceType.String())
	assert.True(t, decimal.RequireFromString("1234.57").Equal(card.Balance))

	require.ErrorIs(t, s.SetBalanceCurrency("???"), common.ErrParse)

	require.ErrorIs(t, s.SetBalanceText("abc"), common.ErrBalanceInvalid)
	err := s.SaveCard(nil)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, verr.Field(FieldBalance), common.ErrBalanceInvalid)
	assert.Nil(t, verr.Field(FieldStoreName))

	require.NoError(t, s.SetBalance(decimal.NewFromInt(5)))
	require.NoError(t, s.SaveCard(nil))
	waitSave[Saved](t, s)
}

func TestSave_ValidationSkipsGateway(t *testing.T) {
	g := newFakeGateway()
	s := newSession(t, g, nil)
	loadCard(t, s, models.LoadRequest{})

	err := s.SaveCard(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.ErrorIs(t, err, common.ErrFieldEmpty)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Fields, 2)

	failed, ok := s.SaveState().(SaveFailed)
	require.True(t, ok)
	assert.ErrorIs(t, failed.Err, common.ErrValidation)
	assert.Zero(t, g.saveCount())
}

func TestSave_Success(t *testing.T) {
	g := newFakeGateway()
	s := newSession(t, g, nil)
	loadCard(t, s, models.LoadRequest{})

	require.NoError(t, s.SetStoreName("Bakery"))
	require.NoError(t, s.SetCardID("42"))
	require.NoError(t, s.SaveCard([]models.Group{{Name: "Food"}}))

	saved := waitSave[Saved](t, s)
	assert.Equal(t, int64(101), saved.ID)
	assert.Equal(t, EventSaved{ID: 101}, nextEvent(t, s))

	loaded := s.CardState().(CardLoaded)
	assert.Equal(t, int64(101), loaded.Card.ID)
	require.Len(t, loaded.Groups, 1)
	assert.False(t, s.Dirty())
}

func TestSave_SecondSaveWhileInFlightIsRejected(t *testing.T) {
	g := newFakeGateway(storedCard(1, "one", nil))
	g.saveGate = make(chan struct{})
	s := newSession(t, g, nil)
	loadCard(t, s, models.LoadRequest{ID: 1})

	require.NoError(t, s.SaveCard(nil))
	assert.IsType(t, Saving{}, s.SaveState())
	require.ErrorIs(t, s.SaveCard(nil), common.ErrSaveInProgress)

	close(g.saveGate)
	waitSave[Saved](t, s)
	assert.Equal(t, 1, g.saveCount())
}

func TestSave_EditDuringSaveStaysDirty(t *testing.T) {
	g := newFakeGateway()
	g.saveGate = make(chan struct{})
	s := newSession(t, g, nil)
	loadCard(t, s, models.LoadRequest{})

	require.NoError(t, s.SetStoreName("Bakery"))
	require.NoError(t, s.SetCardID("42"))
	require.NoError(t, s.SaveCard(nil))
	require.NoError(t, s.SetNote("typed while saving"))

	close(g.saveGate)
	saved := waitSave[Saved](t, s)
	assert.Equal(t, EventSaved{ID: saved.ID}, nextEvent(t, s))

	card, err := s.Card()
	require.NoError(t, err)
	assert.Equal(t, saved.ID, card.ID)
	assert.Equal(t, "typed while saving", card.Note)
	assert.Empty(t, g.lastSave().Note)
	assert.True(t, s.Dirty())

	s.RequestExit()
	assert.Equal(t, EventConfirmDiscard{}, nextEvent(t, s))

	// the next save updates the stored card instead of inserting another
	require.NoError(t, s.SaveCard(nil))
	require.Eventually(t, func() bool { return g.saveCount() == 2 }, waitFor, 5*time.Millisecond)
	waitSave[Saved](t, s)
	assert.Equal(t, saved.ID, g.lastSave().ID)
	assert.False(t, s.Dirty())
}

func TestSave_GatewayFailure(t *testing.T) {
	g := newFakeGateway(storedCard(1, "one", nil))
	g.saveErr = errors.New("disk full")
	s := newSession(t, g, nil)
	loadCard(t, s, models.LoadRequest{ID: 1})
	require.NoError(t, s.SetNote("changed"))

	require.NoError(t, s.SaveCard(nil))
	failed := waitSave[SaveFailed](t, s)
	assert.ErrorIs(t, failed.Err, common.ErrPersistence)
	assert.ErrorContains(t, failed.Err, "disk full")

	toast, ok := nextEvent(t, s).(EventToast)
	require.True(t, ok)
	assert.Contains(t, toast.Message, "disk full")

	loaded := s.CardState().(CardLoaded)
	assert.Equal(t, int64(1), loaded.Card.ID)
	assert.Equal(t, "changed", loaded.Card.Note)
	assert.True(t, s.Dirty())

	g.mu.Lock()
	g.saveErr = nil
	g.mu.Unlock()
	require.NoError(t, s.SaveCard(nil))
	waitSave[Saved](t, s)
}

func TestSyncPrompt_AcceptBeforeSave(t *testing.T) {
	g := newFakeGateway(storedCard(1, "X", str("X")))
	s := newSession(t, g, nil)
	loadCard(t, s, models.LoadRequest{ID: 1})

	require.NoError(t, s.SetCardID("Y"))
	pending, ok := s.PendingBarcodeSync()
	require.True(t, ok)
	assert.Equal(t, "X", pending)

	require.NoError(t, s.SaveCard(nil))
	assert.Equal(t, EventAskSyncBarcodeID{BarcodeID: "X", CardID: "Y"}, nextEvent(t, s))
	assert.Zero(t, g.saveCount(), "save must wait for the prompt")
	assert.IsType(t, SaveIdle{}, s.SaveState())

	require.NoError(t, s.ResolveBarcodeSync(true))
	waitSave[Saved](t, s)

	saved := g.lastSave()
	assert.Nil(t, saved.BarcodeID)
	assert.Equal(t, "Y", saved.EffectiveBarcodeID())
	_, ok = s.PendingBarcodeSync()
	assert.False(t, ok)
}

func TestSyncPrompt_DeclineKeepsStoredBarcodeID(t *testing.T) {
	g := newFakeGateway(storedCard(1, "X", str("X")))
	s := newSession(t, g, nil)
	loadCard(t, s, models.LoadRequest{ID: 1})

	require.NoError(t, s.SetCardID("Y"))
	require.NoError(t, s.SaveCard(nil))
	assert.IsType(t, EventAskSyncBarcodeID{}, nextEvent(t, s))

	require.NoError(t, s.ResolveBarcodeSync(false))
	waitSave[Saved](t, s)

	saved := g.lastSave()
	require.NotNil(t, saved.BarcodeID)
	assert.Equal(t, "X", *saved.BarcodeID)
	assert.Equal(t, "Y", saved.CardID)
}

func TestSyncPrompt_SingleSlot(t *testing.T) {
	s := newSession(t, newFakeGateway(storedCard(1, "X", str("X"))), nil)
	loadCard(t, s, models.LoadRequest{ID: 1})

	require.NoError(t, s.SetCardID("Y"))
	require.NoError(t, s.SetCardID("Z"))

	pending, ok := s.PendingBarcodeSync()
	require.True(t, ok)
	assert.Equal(t, "X", pending)

	require.NoError(t, s.SaveCard(nil))
	require.NoError(t, s.SaveCard(nil))
	assert.Equal(t, EventAskSyncBarcodeID{BarcodeID: "X", CardID: "Z"}, nextEvent(t, s))
	noEvent(t, s)
}

func TestSyncPrompt_CollapsesWhenEqual(t *testing.T) {
	g := newFakeGateway(storedCard(1, "X", str("Y")))
	s := newSession(t, g, nil)
	loadCard(t, s, models.LoadRequest{ID: 1})

	require.NoError(t, s.SetCardID("Y"))
	require.NoError(t, s.SaveCard(nil))
	waitSave[Saved](t, s)

	assert.Nil(t, g.lastSave().BarcodeID)
	assert.Equal(t, EventSaved{ID: 1}, nextEvent(t, s))
}

func TestSyncPrompt_NoPromptWithoutBarcodeID(t *testing.T) {
	s := newSession(t, newFakeGateway(storedCard(1, "X", nil)), nil)
	loadCard(t, s, models.LoadRequest{ID: 1})

	require.NoError(t, s.SetCardID("Y"))
	_, ok := s.PendingBarcodeSync()
	assert.False(t, ok)
	require.ErrorIs(t, s.ResolveBarcodeSync(true), common.ErrNoPendingPrompt)
}

func TestSyncPrompt_ExplicitBarcodeIDSettlesIt(t *testing.T) {
	s := newSession(t, newFakeGateway(storedCard(1, "X", str("X"))), nil)
	loadCard(t, s, models.LoadRequest{ID: 1})

	require.NoError(t, s.SetCardID("Y"))
	require.NoError(t, s.SetBarcodeID(str("B")))
	_, ok := s.PendingBarcodeSync()
	assert.False(t, ok)

	s.SetTab(TabOptions)
	assert.Equal(t, TabOptions, s.Tab())
}

func TestSetTab_GatedBySyncPrompt(t *testing.T) {
	s := newSession(t, newFakeGateway(storedCard(1, "X", str("X"))), nil)
	loadCard(t, s, models.LoadRequest{ID: 1})

	require.NoError(t, s.SetCardID("Y"))
	s.SetTab(TabPhotos)
	assert.Equal(t, TabCard, s.Tab())
	assert.IsType(t, EventAskSyncBarcodeID{}, nextEvent(t, s))

	require.NoError(t, s.ResolveBarcodeSync(true))
	assert.Equal(t, TabPhotos, s.Tab())
}

func TestRequestExit(t *testing.T) {
	s := newSession(t, newFakeGateway(storedCard(1, "X", str("X"))), nil)
	loadCard(t, s, models.LoadRequest{ID: 1})

	s.RequestExit()
	assert.Equal(t, EventExit{}, nextEvent(t, s))

	require.NoError(t, s.SetCardID("Y"))
	s.RequestExit()
	assert.IsType(t, EventAskSyncBarcodeID{}, nextEvent(t, s))
	noEvent(t, s)

	require.NoError(t, s.ResolveBarcodeSync(false))
	assert.Equal(t, EventConfirmDiscard{}, nextEvent(t, s))
}

func TestClose_DropsUnreadEvents(t *testing.T) {
	before := runtime.NumGoroutine()

	for range 20 {
		g := newFakeGateway()
		s := New(g, nil, Options{})
		loadCard(t, s, models.LoadRequest{})
		require.NoError(t, s.SetStoreName("Bakery"))
		require.NoError(t, s.SetCardID("42"))
		require.NoError(t, s.SaveCard(nil))
		waitSave[Saved](t, s)
		s.Close()
	}

	require.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before+2
	}, waitFor, 10*time.Millisecond)
}

func TestClose_StopsStreams(t *testing.T) {
	s := New(newFakeGateway(), nil, Options{})
	loadCard(t, s, models.LoadRequest{})
	s.Close()
	s.Close()

	assert.ErrorIs(t, s.LoadCard(models.LoadRequest{}), common.ErrSessionClosed)
	assert.ErrorIs(t, s.SetNote("x"), common.ErrSessionClosed)
	assert.ErrorIs(t, s.SaveCard(nil), common.ErrSessionClosed)
}
