package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/cardkeeper/internal/barcode"
	"github.com/dmitrijs2005/cardkeeper/internal/client/models"
	"github.com/dmitrijs2005/cardkeeper/internal/client/session"
	"github.com/dmitrijs2005/cardkeeper/internal/currency"
)

const dateLayout = "2006-01-02"

func describeCard(w io.Writer, c models.Card, groups []models.Group, cur *currency.Service) {
	id := "new"
	if !c.IsNew() {
		id = fmt.Sprint(c.ID)
	}

	fmt.Fprintf(w, "Card:       %s\n", id)
	fmt.Fprintf(w, "Store:      %s\n", c.StoreName)
	if c.Note != "" {
		fmt.Fprintf(w, "Note:       %s\n", c.Note)
	}
	fmt.Fprintf(w, "Valid from: %s\n", formatDate(c.ValidFrom))
	fmt.Fprintf(w, "Expiry:     %s\n", formatDate(c.Expiry))
	fmt.Fprintf(w, "Balance:    %s\n", cur.Format(c.Balance, c.BalanceType))
	fmt.Fprintf(w, "Card ID:    %s\n", c.CardID)

	barcodeID := "same as card ID"
	if c.BarcodeID != nil {
		barcodeID = *c.BarcodeID
	}
	fmt.Fprintf(w, "Barcode ID: %s\n", barcodeID)

	barcodeType := "none"
	if c.BarcodeType != nil {
		barcodeType = c.BarcodeType.String()
	}
	fmt.Fprintf(w, "Barcode:    %s\n", barcodeType)

	if c.HeaderColor != nil {
		fmt.Fprintf(w, "Color:      #%08X\n", *c.HeaderColor)
	}

	var flags []string
	if c.Starred {
		flags = append(flags, "starred")
	}
	if c.Archived {
		flags = append(flags, "archived")
	}
	for _, loc := range models.ImageLocations {
		if img := c.Image(loc); len(img) > 0 {
			flags = append(flags, fmt.Sprintf("%s image %dB", loc, len(img)))
		}
	}
	if len(flags) > 0 {
		fmt.Fprintf(w, "Flags:      %s\n", strings.Join(flags, ", "))
	}

	if len(groups) > 0 {
		names := make([]string, len(groups))
		for i, g := range groups {
			names[i] = g.Name
		}
		fmt.Fprintf(w, "Groups:     %s\n", strings.Join(names, ", "))
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(dateLayout)
}

func describeBarcode(state session.BarcodeState) string {
	switch st := state.(type) {
	case session.BarcodeNone:
		return "no barcode"
	case session.BarcodeGenerating:
		return fmt.Sprintf("generating %s", st.Request.Symbology)
	case session.BarcodeGenerated:
		b := st.Result.Image.Bounds()
		s := fmt.Sprintf("%s %dx%d", st.Result.Symbology, b.Dx(), b.Dy())
		if !st.Result.Valid {
			s += " (value cannot be encoded, showing placeholder)"
		}
		return s
	case session.BarcodeFailed:
		return fmt.Sprintf("barcode failed: %v", st.Err)
	}
	return "unknown"
}

func symbologyNames() string {
	all := barcode.All()
	names := make([]string, len(all))
	for i, s := range all {
		names[i] = s.String()
	}
	return strings.Join(names, ", ")
}
