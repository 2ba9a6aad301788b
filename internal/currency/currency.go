// Package currency looks up currencies by ISO code or display symbol and
// parses and formats card balances.
//
// A Service is built once and shared; it is read-only after construction.
package currency

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"

	"github.com/dmitrijs2005/cardkeeper/internal/common"
)

type Service struct {
	units    []currency.Unit
	byCode   map[string]currency.Unit
	bySymbol map[string]currency.Unit
	symbols  map[currency.Unit]string
}

// NewService indexes every currency currently in tender. Units are visited
// in ISO code order and the first unit claiming a symbol keeps it.
func NewService() *Service {
	seen := make(map[currency.Unit]struct{})
	var units []currency.Unit
	for it := currency.Query(); it.Next(); {
		u := it.Unit()
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		units = append(units, u)
	}
	sort.Slice(units, func(i, j int) bool { return units[i].String() < units[j].String() })

	s := &Service{
		units:    units,
		byCode:   make(map[string]currency.Unit, len(units)),
		bySymbol: make(map[string]currency.Unit, len(units)),
		symbols:  make(map[currency.Unit]string, len(units)),
	}
	for _, u := range units {
		code := u.String()
		sym := fmt.Sprint(currency.Symbol(u))
		s.byCode[code] = u
		s.symbols[u] = sym
		if _, taken := s.bySymbol[sym]; !taken {
			s.bySymbol[sym] = u
		}
	}
	for _, u := range units {
		narrow := fmt.Sprint(currency.NarrowSymbol(u))
		if _, taken := s.bySymbol[narrow]; !taken {
			s.bySymbol[narrow] = u
		}
	}
	return s
}

// Units returns all known currencies ordered by ISO code.
func (s *Service) Units() []currency.Unit {
	out := make([]currency.Unit, len(s.units))
	copy(out, s.units)
	return out
}

// FromISO resolves a three letter ISO 4217 code.
func (s *Service) FromISO(code string) (currency.Unit, error) {
	if u, ok := s.byCode[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return u, nil
	}
	u, err := currency.ParseISO(code)
	if err != nil {
		return currency.Unit{}, fmt.Errorf("%w: currency %q: %w", common.ErrParse, code, err)
	}
	return u, nil
}

// FromSymbol resolves a display symbol such as "€" or an ISO code.
func (s *Service) FromSymbol(symbol string) (currency.Unit, bool) {
	symbol = strings.TrimSpace(symbol)
	if u, ok := s.bySymbol[symbol]; ok {
		return u, true
	}
	u, ok := s.byCode[strings.ToUpper(symbol)]
	return u, ok
}

// Symbol returns the display symbol for u, falling back to its ISO code.
func (s *Service) Symbol(u currency.Unit) string {
	if sym, ok := s.symbols[u]; ok {
		return sym
	}
	return u.String()
}

// Symbols lists display symbols: pure symbols first, then those that
// contain letters, each group sorted.
func (s *Service) Symbols() []string {
	out := make([]string, 0, len(s.symbols))
	seen := make(map[string]struct{}, len(s.symbols))
	for _, sym := range s.symbols {
		if _, ok := seen[sym]; ok {
			continue
		}
		seen[sym] = struct{}{}
		out = append(out, sym)
	}
	sort.Slice(out, func(i, j int) bool {
		li, lj := hasLetter(out[i]), hasLetter(out[j])
		if li != lj {
			return !li
		}
		return out[i] < out[j]
	})
	return out
}

func hasLetter(s string) bool {
	for _, r := range s {
		if ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') {
			return true
		}
	}
	return false
}

// Scale is the number of minor unit digits for u; nil means points.
func Scale(u *currency.Unit) int32 {
	if u == nil {
		return 0
	}
	scale, _ := currency.Standard.Rounding(*u)
	return int32(scale)
}

// ParseBalance parses user input such as "1.234,50", "1,234.50" or "12,5".
// When both separators occur the last one is the decimal separator; a
// single comma is taken as decimal separator, repeated ones as grouping.
// Currency balances are rounded to the currency's minor units. Empty input
// is a zero balance.
func ParseBalance(text string, u *currency.Unit) (decimal.Decimal, error) {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '\'' {
			return -1
		}
		return r
	}, text)
	if clean == "" {
		return decimal.Zero, nil
	}

	lastComma := strings.LastIndex(clean, ",")
	lastDot := strings.LastIndex(clean, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			clean = strings.ReplaceAll(clean, ".", "")
			clean = strings.Replace(clean, ",", ".", 1)
		} else {
			clean = strings.ReplaceAll(clean, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(clean, ",") == 1 {
			clean = strings.Replace(clean, ",", ".", 1)
		} else {
			clean = strings.ReplaceAll(clean, ",", "")
		}
	case strings.Count(clean, ".") > 1:
		clean = strings.ReplaceAll(clean, ".", "")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", common.ErrBalanceInvalid, text)
	}
	if u != nil {
		d = d.Round(Scale(u))
	}
	return d, nil
}

// FormatBalance renders d without a currency symbol using the currency's
// minor units, or as a plain number for points.
func FormatBalance(d decimal.Decimal, u *currency.Unit) string {
	if u == nil {
		return d.String()
	}
	return d.StringFixed(Scale(u))
}

// Format renders d with its currency symbol, or with a "points" suffix.
func (s *Service) Format(d decimal.Decimal, u *currency.Unit) string {
	if u == nil {
		return FormatBalance(d, nil) + " points"
	}
	return s.Symbol(*u) + " " + FormatBalance(d, u)
}
