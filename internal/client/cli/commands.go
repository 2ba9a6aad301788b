package cli

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/cardkeeper/internal/barcode"
	"github.com/dmitrijs2005/cardkeeper/internal/client/importuri"
	"github.com/dmitrijs2005/cardkeeper/internal/client/models"
	"github.com/dmitrijs2005/cardkeeper/internal/common"
	"github.com/dmitrijs2005/cardkeeper/internal/filex"
)

// List prints every card, starred first.
func (a *App) List(ctx context.Context) error {
	cards, err := a.cards.ListCards(ctx)
	if err != nil {
		return err
	}
	if len(cards) == 0 {
		fmt.Fprintln(a.out, "No cards yet.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTORE\tCARD ID\tBALANCE\tEXPIRY\t")
	for _, c := range cards {
		store := c.StoreName
		if c.Starred {
			store = "* " + store
		}
		if c.Archived {
			store += " (archived)"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t\n",
			c.ID, store, c.CardID, a.currencies.Format(c.Balance, c.BalanceType), formatDate(c.Expiry))
	}
	return tw.Flush()
}

// Groups prints the group names in their configured order.
func (a *App) Groups(ctx context.Context) error {
	groups, err := a.cards.ListGroups(ctx)
	if err != nil {
		return err
	}
	for _, g := range groups {
		fmt.Fprintln(a.out, g.Name)
	}
	return nil
}

func (a *App) AddGroup(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: group name", common.ErrFieldEmpty)
	}
	g, err := a.cards.CreateGroup(ctx, name)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Group %s created.\n", g.Name)
	return nil
}

// RenderOptions configure a one-shot render.
type RenderOptions struct {
	Payload    string
	Symbology  string
	Width      int
	Height     int
	Fallback   bool
	Fullscreen bool
	Output     string
}

// Render draws a single barcode and writes it as PNG to opts.Output.
func (a *App) Render(ctx context.Context, opts RenderOptions) error {
	sym, err := barcode.ParseSymbology(opts.Symbology)
	if err != nil {
		return fmt.Errorf("%w (one of %s)", err, symbologyNames())
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.RenderTimeout)
	defer cancel()

	res, err := a.renderer.RenderContext(ctx, barcode.RenderRequest{
		Payload:   opts.Payload,
		Symbology: sym,
		Width:     opts.Width,
		Height:    opts.Height,
		Options: barcode.Options{
			AllowFallback: opts.Fallback,
			Fullscreen:    opts.Fullscreen,
		},
	})
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrRenderFailed, err)
	}
	if res.Failed() {
		return fmt.Errorf("%w: %q cannot be encoded as %s", common.ErrRenderFailed, opts.Payload, sym)
	}

	var buf bytes.Buffer
	if err := barcode.EncodePNG(&buf, res); err != nil {
		return err
	}
	if err := filex.WriteFileAtomic(opts.Output, buf.Bytes()); err != nil {
		return err
	}

	b := res.Image.Bounds()
	fmt.Fprintf(a.out, "Wrote %s (%s %dx%d).\n", opts.Output, sym, b.Dx(), b.Dy())
	if !res.Valid {
		fmt.Fprintln(a.out, "The value cannot be encoded; the image shows a placeholder.")
	}
	return nil
}

// Share prints the import link of a stored card.
func (a *App) Share(ctx context.Context, id int64) error {
	loaded, err := a.cards.Load(ctx, models.LoadRequest{ID: id})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, importuri.Build(loaded.Card))
	return nil
}

// Recent prints the most recently saved cards, newest first.
func (a *App) Recent(ctx context.Context) error {
	ids, err := a.recent.Recent(ctx)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Fprintln(a.out, "No recent cards.")
		return nil
	}

	cards, err := a.cards.ListCards(ctx)
	if err != nil {
		return err
	}
	names := make(map[int64]string, len(cards))
	for _, c := range cards {
		names[c.ID] = c.StoreName
	}
	for _, id := range ids {
		if name, ok := names[id]; ok {
			fmt.Fprintf(a.out, "%d\t%s\n", id, name)
		}
	}
	return nil
}
