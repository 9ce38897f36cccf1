package models

import (
	"strings"
)

// CurrencyPair is an FX pair where spot is quoted as quote units per one base unit.
type CurrencyPair struct {
	Base  string
	Quote string
}

// ParseCurrencyPair splits "BASE/QUOTE" (e.g. "EUR/USD"). Codes are upper-cased and trimmed.
func ParseCurrencyPair(s string) (CurrencyPair, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return CurrencyPair{}, &ValidationError{Field: "underlying", Value: s, Err: ErrMalformedPair}
	}
	base := normalizeCurrency(parts[0])
	quote := normalizeCurrency(parts[1])
	if base == "" || quote == "" || base == quote {
		return CurrencyPair{}, &ValidationError{Field: "underlying", Value: s, Err: ErrMalformedPair}
	}
	return CurrencyPair{Base: base, Quote: quote}, nil
}

func (p CurrencyPair) String() string {
	return p.Base + "/" + p.Quote
}

// Contains reports whether ccy is the base or the quote leg of the pair.
func (p CurrencyPair) Contains(ccy string) bool {
	ccy = normalizeCurrency(ccy)
	return ccy != "" && (ccy == p.Base || ccy == p.Quote)
}

func normalizeCurrency(ccy string) string {
	return strings.ToUpper(strings.TrimSpace(ccy))
}
