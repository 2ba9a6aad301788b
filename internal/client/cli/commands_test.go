package cli

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/cardkeeper/internal/client/importuri"
	"github.com/dmitrijs2005/cardkeeper/internal/client/models"
	"github.com/dmitrijs2005/cardkeeper/internal/common"
)

func TestList_Empty(t *testing.T) {
	app, out := newTestApp(t, "")

	require.NoError(t, app.List(context.Background()))
	assert.Equal(t, "No cards yet.\n", out.String())
}

func TestList(t *testing.T) {
	app, out := newTestApp(t, "")
	saveCard(t, app, "Coffee", "111", func(c *models.Card) {
		c.Starred = true
		c.Balance = decimal.NewFromInt(12)
	})
	saveCard(t, app, "Books", "222", func(c *models.Card) { c.Archived = true })

	require.NoError(t, app.List(context.Background()))

	s := out.String()
	assert.Contains(t, s, "STORE")
	assert.Contains(t, s, "* Coffee")
	assert.Contains(t, s, "111")
	assert.Contains(t, s, "12 points")
	assert.Contains(t, s, "Books (archived)")
}

func TestGroups(t *testing.T) {
	app, out := newTestApp(t, "")
	ctx := context.Background()

	require.NoError(t, app.AddGroup(ctx, " Food "))
	require.NoError(t, app.AddGroup(ctx, "Travel"))
	out.Reset()

	require.NoError(t, app.Groups(ctx))
	assert.Equal(t, "Food\nTravel\n", out.String())
}

func TestAddGroup_Empty(t *testing.T) {
	app, _ := newTestApp(t, "")

	err := app.AddGroup(context.Background(), "  ")
	assert.ErrorIs(t, err, common.ErrFieldEmpty)
}

func TestRender_WritesPNG(t *testing.T) {
	app, out := newTestApp(t, "")
	path := filepath.Join(t.TempDir(), "code.png")

	err := app.Render(context.Background(), RenderOptions{
		Payload: "12345", Symbology: "qr_code", Width: 200, Height: 200, Output: path,
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "QR_CODE")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, img.Bounds().Dx(), img.Bounds().Dy())
}

func TestRender_Errors(t *testing.T) {
	app, _ := newTestApp(t, "")
	ctx := context.Background()
	out := filepath.Join(t.TempDir(), "code.png")

	err := app.Render(ctx, RenderOptions{Payload: "1", Symbology: "NOPE", Width: 100, Height: 100, Output: out})
	assert.ErrorIs(t, err, common.ErrParse)

	err = app.Render(ctx, RenderOptions{Payload: "abc", Symbology: "EAN_13", Width: 300, Height: 100, Output: out})
	assert.ErrorIs(t, err, common.ErrRenderFailed)
	assert.NoFileExists(t, out)
}

func TestRender_Fallback(t *testing.T) {
	app, out := newTestApp(t, "")
	path := filepath.Join(t.TempDir(), "code.png")

	err := app.Render(context.Background(), RenderOptions{
		Payload: "abc", Symbology: "EAN_13", Width: 300, Height: 100, Fallback: true, Output: path,
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "placeholder")
	assert.FileExists(t, path)
}

func TestShare(t *testing.T) {
	app, out := newTestApp(t, "")
	c := saveCard(t, app, "Coffee", "111", nil)

	require.NoError(t, app.Share(context.Background(), c.ID))

	parsed, err := importuri.Parse(out.String()[:out.Len()-1])
	require.NoError(t, err)
	assert.Equal(t, "Coffee", parsed.StoreName)
	assert.Equal(t, "111", parsed.CardID)
}

func TestShare_NotFound(t *testing.T) {
	app, _ := newTestApp(t, "")

	err := app.Share(context.Background(), 42)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRecent(t *testing.T) {
	app, out := newTestApp(t, "")
	ctx := context.Background()

	require.NoError(t, app.Recent(ctx))
	assert.Equal(t, "No recent cards.\n", out.String())

	a := saveCard(t, app, "Coffee", "111", nil)
	b := saveCard(t, app, "Books", "222", nil)
	out.Reset()

	require.NoError(t, app.Recent(ctx))
	assert.Regexp(t, `(?s)^\d+\tBooks\n\d+\tCoffee\n$`, out.String())
	assert.NotEqual(t, a.ID, b.ID)
}
