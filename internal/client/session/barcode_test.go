package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/cardkeeper/internal/barcode"
	"github.com/dmitrijs2005/cardkeeper/internal/client/models"
	"github.com/dmitrijs2005/cardkeeper/internal/common"
)

func TestNewCard_GenerateUPCA(t *testing.T) {
	s := newSession(t, newFakeGateway(), nil)

	loaded := loadCard(t, s, models.LoadRequest{ID: models.NewCardID})
	assert.Empty(t, loaded.Card.StoreName)
	assert.Empty(t, loaded.Card.CardID)
	assert.IsType(t, BarcodeNone{}, loaded.Barcode)

	require.NoError(t, s.SetCardID("123456789012"))
	require.NoError(t, s.SetBarcodeType(sym(barcode.UPCA)))
	assert.IsType(t, BarcodeNone{}, s.BarcodeState(), "no viewport yet, nothing rendered")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	states := s.BarcodeStates(ctx)
	assert.IsType(t, BarcodeNone{}, <-states)

	require.NoError(t, s.GenerateBarcode("123456789012", sym(barcode.UPCA), 400, 150, barcode.Options{}))

	generating, ok := (<-states).(BarcodeGenerating)
	require.True(t, ok)
	assert.Equal(t, "123456789012", generating.Request.Payload)

	generated, ok := (<-states).(BarcodeGenerated)
	require.True(t, ok)
	assert.True(t, generated.Result.Valid)
	assert.Equal(t, barcode.UPCA, generated.Result.Symbology)
	require.NotNil(t, generated.Result.Image)

	card := s.CardState().(CardLoaded)
	assert.IsType(t, BarcodeGenerated{}, card.Barcode)
}

func TestGenerate_FallbackForNonNumericPayload(t *testing.T) {
	s := newSession(t, newFakeGateway(), nil)
	loadCard(t, s, models.LoadRequest{})

	require.NoError(t, s.GenerateBarcode("not-a-number", sym(barcode.EAN13), 300, 150, barcode.Options{AllowFallback: true}))
	generated := waitBarcode[BarcodeGenerated](t, s)
	assert.False(t, generated.Result.Valid)
	assert.NotNil(t, generated.Result.Image)

	require.NoError(t, s.GenerateBarcode("not-a-number", sym(barcode.EAN13), 300, 150, barcode.Options{}))
	failed := waitBarcode[BarcodeFailed](t, s)
	assert.ErrorIs(t, failed.Err, common.ErrRenderFailed)
}

func TestGenerate_EmptyPayloadOrSymbologyIsNone(t *testing.T) {
	r := newGatedRenderer()
	s := newSession(t, newFakeGateway(), r)

	require.NoError(t, s.GenerateBarcode("", sym(barcode.QRCode), 200, 200, barcode.Options{}))
	assert.IsType(t, BarcodeNone{}, s.BarcodeState())

	require.NoError(t, s.GenerateBarcode("abc", nil, 200, 200, barcode.Options{}))
	assert.IsType(t, BarcodeNone{}, s.BarcodeState())
	assert.Zero(t, r.calls.Load())
}

func TestGenerate_Idempotent(t *testing.T) {
	s := newSession(t, newFakeGateway(), nil)

	require.NoError(t, s.GenerateBarcode("card-0042", sym(barcode.QRCode), 250, 250, barcode.Options{}))
	first := waitBarcode[BarcodeGenerated](t, s)

	require.NoError(t, s.GenerateBarcode("card-0042", sym(barcode.QRCode), 250, 250, barcode.Options{}))
	second := waitBarcode[BarcodeGenerated](t, s)

	assert.Equal(t, first.Result.Image.Bounds(), second.Result.Image.Bounds())
	assert.Equal(t, first.Result, second.Result)
}

func TestGenerate_LastRequestWins(t *testing.T) {
	r := newGatedRenderer()
	r.ignoreCancel = true
	gateA := make(chan struct{})
	r.gates["A"] = gateA
	s := newSession(t, newFakeGateway(), r)

	require.NoError(t, s.GenerateBarcode("A", sym(barcode.QRCode), 200, 200, barcode.Options{}))
	// A is inside the renderer before B supersedes it.
	require.Eventually(t, func() bool { return r.calls.Load() == 1 }, waitFor, 5*time.Millisecond)
	require.NoError(t, s.GenerateBarcode("B", sym(barcode.Code128), 300, 100, barcode.Options{}))

	generated := waitBarcode[BarcodeGenerated](t, s)
	assert.Equal(t, barcode.Code128, generated.Result.Symbology)

	// A completes after B and must not overwrite it.
	close(gateA)
	require.Eventually(t, func() bool { return r.calls.Load() == 2 }, waitFor, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	generated = waitBarcode[BarcodeGenerated](t, s)
	assert.Equal(t, barcode.Code128, generated.Result.Symbology)
}

func TestSetBarcodeTypeNil_IsImmediateNone(t *testing.T) {
	r := newGatedRenderer()
	r.ignoreCancel = true
	gate := make(chan struct{})
	r.gates["12345"] = gate
	s := newSession(t, newFakeGateway(storedCard(1, "12345", nil)), r)
	loadCard(t, s, models.LoadRequest{ID: 1})

	require.NoError(t, s.GenerateBarcode("12345", sym(barcode.Code128), 300, 100, barcode.Options{}))
	assert.IsType(t, BarcodeGenerating{}, s.BarcodeState())

	require.NoError(t, s.SetBarcodeType(nil))
	assert.IsType(t, BarcodeNone{}, s.BarcodeState())

	close(gate)
	time.Sleep(50 * time.Millisecond)
	assert.IsType(t, BarcodeNone{}, s.BarcodeState())
	assert.IsType(t, BarcodeNone{}, s.CardState().(CardLoaded).Barcode)
}

func TestCancelBarcodeGeneration(t *testing.T) {
	r := newGatedRenderer()
	r.gates["slow"] = make(chan struct{})
	s := newSession(t, newFakeGateway(), r)

	require.NoError(t, s.GenerateBarcode("slow", sym(barcode.QRCode), 200, 200, barcode.Options{}))
	s.CancelBarcodeGeneration()
	assert.IsType(t, BarcodeNone{}, s.BarcodeState())

	time.Sleep(50 * time.Millisecond)
	assert.IsType(t, BarcodeNone{}, s.BarcodeState())
}

func TestSetters_RegenerateWithLastViewport(t *testing.T) {
	s := newSession(t, newFakeGateway(storedCard(1, "12345", nil)), nil)
	loadCard(t, s, models.LoadRequest{ID: 1})

	require.NoError(t, s.GenerateBarcode("12345", sym(barcode.Code128), 300, 100, barcode.Options{}))
	waitBarcode[BarcodeGenerated](t, s)

	require.NoError(t, s.SetBarcodeType(sym(barcode.QRCode)))
	generated := waitBarcode[BarcodeGenerated](t, s)
	assert.Equal(t, barcode.QRCode, generated.Result.Symbology)

	require.NoError(t, s.SetCardID(""))
	assert.IsType(t, BarcodeNone{}, s.BarcodeState())

	require.NoError(t, s.RefreshBarcode())
	assert.IsType(t, BarcodeNone{}, s.BarcodeState())
}

type slowRenderer struct{}

func (slowRenderer) RenderContext(ctx context.Context, req barcode.RenderRequest) (barcode.RenderResult, error) {
	<-ctx.Done()
	return barcode.RenderResult{Symbology: req.Symbology}, ctx.Err()
}

func TestGenerate_TimeoutIsFailure(t *testing.T) {
	s := New(newFakeGateway(), slowRenderer{}, Options{RenderTimeout: 20 * time.Millisecond})
	t.Cleanup(s.Close)

	require.NoError(t, s.GenerateBarcode("x", sym(barcode.QRCode), 100, 100, barcode.Options{}))
	failed := waitBarcode[BarcodeFailed](t, s)
	assert.ErrorIs(t, failed.Err, common.ErrRenderFailed)
	assert.True(t, errors.Is(failed.Err, context.DeadlineExceeded))
}

func TestClose_CancelsGenerationSilently(t *testing.T) {
	s := New(newFakeGateway(), slowRenderer{}, Options{})

	require.NoError(t, s.GenerateBarcode("x", sym(barcode.QRCode), 100, 100, barcode.Options{}))
	s.Close()

	assert.IsType(t, BarcodeGenerating{}, s.BarcodeState())
	_, ok := <-s.Events()
	assert.False(t, ok)
	assert.ErrorIs(t, s.GenerateBarcode("x", sym(barcode.QRCode), 100, 100, barcode.Options{}), common.ErrSessionClosed)
}
