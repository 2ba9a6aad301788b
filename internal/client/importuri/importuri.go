// Package importuri reads and writes card share links such as
//
//	https://catima.app/share#store=Coffee&cardid=1234&barcodetype=QR_CODE
//
// Parameters may be carried in the fragment or, for older links, the query.
package importuri

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"

	"github.com/dmitrijs2005/cardkeeper/internal/barcode"
	"github.com/dmitrijs2005/cardkeeper/internal/client/models"
	"github.com/dmitrijs2005/cardkeeper/internal/common"
)

const (
	Host = "catima.app"
	Path = "/share"
)

var hosts = map[string]struct{}{
	"catima.app":               {},
	"thelastproject.github.io": {},
	"brarcher.github.io":       {},
}

const (
	paramStore       = "store"
	paramNote        = "note"
	paramValidFrom   = "validfrom"
	paramExpiry      = "expiry"
	paramBalance     = "balance"
	paramBalanceType = "balancetype"
	paramCardID      = "cardid"
	paramBarcodeID   = "barcodeid"
	paramBarcodeType = "barcodetype"
	paramHeaderColor = "headercolor"
)

// Parse turns a share link into a new, unsaved card. Every failure wraps
// common.ErrParse.
func Parse(raw string) (models.Card, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return models.Card{}, fmt.Errorf("%w: %w", common.ErrParse, err)
	}
	if _, ok := hosts[strings.ToLower(u.Hostname())]; !ok || !strings.HasSuffix(u.Path, Path) {
		return models.Card{}, fmt.Errorf("%w: not a share link: %s", common.ErrParse, raw)
	}

	encoded := u.EscapedFragment()
	if encoded == "" {
		encoded = u.RawQuery
	}
	q, err := url.ParseQuery(encoded)
	if err != nil {
		return models.Card{}, fmt.Errorf("%w: %w", common.ErrParse, err)
	}

	c := models.NewCard()
	c.StoreName = q.Get(paramStore)
	c.CardID = q.Get(paramCardID)
	if c.StoreName == "" {
		return models.Card{}, fmt.Errorf("%w: missing %s", common.ErrParse, paramStore)
	}
	if c.CardID == "" {
		return models.Card{}, fmt.Errorf("%w: missing %s", common.ErrParse, paramCardID)
	}
	c.Note = q.Get(paramNote)

	if c.ValidFrom, err = parseMillis(q, paramValidFrom); err != nil {
		return models.Card{}, err
	}
	if c.Expiry, err = parseMillis(q, paramExpiry); err != nil {
		return models.Card{}, err
	}

	if v := q.Get(paramBalance); v != "" {
		if c.Balance, err = decimal.NewFromString(v); err != nil {
			return models.Card{}, fmt.Errorf("%w: %s: %w", common.ErrParse, paramBalance, err)
		}
	}
	if v := q.Get(paramBalanceType); v != "" {
		unit, err := currency.ParseISO(v)
		if err != nil {
			return models.Card{}, fmt.Errorf("%w: %s: %w", common.ErrParse, paramBalanceType, err)
		}
		c.BalanceType = &unit
	}

	if q.Has(paramBarcodeID) {
		v := q.Get(paramBarcodeID)
		if v != "" && v != c.CardID {
			c.BarcodeID = &v
		}
	}
	if v := q.Get(paramBarcodeType); v != "" {
		s, err := barcode.ParseSymbology(v)
		if err != nil {
			return models.Card{}, err
		}
		c.BarcodeType = &s
	}
	if v := q.Get(paramHeaderColor); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return models.Card{}, fmt.Errorf("%w: %s: %w", common.ErrParse, paramHeaderColor, err)
		}
		color := uint32(n)
		c.HeaderColor = &color
	}

	return c, nil
}

// Build returns the share link for c. Images, groups and flags are not shared.
func Build(c models.Card) string {
	q := url.Values{}
	q.Set(paramStore, c.StoreName)
	q.Set(paramCardID, c.CardID)
	if c.Note != "" {
		q.Set(paramNote, c.Note)
	}
	if c.ValidFrom != nil {
		q.Set(paramValidFrom, strconv.FormatInt(c.ValidFrom.UnixMilli(), 10))
	}
	if c.Expiry != nil {
		q.Set(paramExpiry, strconv.FormatInt(c.Expiry.UnixMilli(), 10))
	}
	if !c.Balance.IsZero() {
		q.Set(paramBalance, c.Balance.String())
	}
	if c.BalanceType != nil {
		q.Set(paramBalanceType, c.BalanceType.String())
	}
	if c.BarcodeID != nil {
		q.Set(paramBarcodeID, *c.BarcodeID)
	}
	if c.BarcodeType != nil {
		q.Set(paramBarcodeType, c.BarcodeType.String())
	}
	if c.HeaderColor != nil {
		q.Set(paramHeaderColor, strconv.FormatInt(int64(int32(*c.HeaderColor)), 10))
	}

	return "https://" + Host + Path + "#" + q.Encode()
}

func parseMillis(q url.Values, key string) (*time.Time, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", common.ErrParse, key, err)
	}
	t := time.UnixMilli(ms)
	return &t, nil
}
