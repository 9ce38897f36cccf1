package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

type OptionType uint8

const (
	Call = OptionType(1)
	Put  = OptionType(2)
)

func (t OptionType) String() string {
	switch t {
	case Call:
		return "Call"
	case Put:
		return "Put"
	}
	return fmt.Sprintf("OptionType(%d)", uint8(t))
}

func (t OptionType) Valid() bool {
	return t == Call || t == Put
}

// ParseOptionType accepts "Call"/"Put" in any case.
func ParseOptionType(s string) (OptionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call":
		return Call, nil
	case "put":
		return Put, nil
	}
	return 0, &ValidationError{Field: "option_type", Value: s, Err: ErrInvalidOptionType}
}

// OptionParams holds raw contract terms as read from a trade sheet, before validation.
type OptionParams struct {
	ID               string
	OptionType       OptionType
	Strike           float64
	SpotPrice        float64
	Volatility       float64
	TimeToMaturity   float64 // years
	DomesticRate     float64 // applies to the quote currency
	ForeignRate      float64 // applies to the base currency
	Underlying       string  // "BASE/QUOTE"
	Notional         float64
	NotionalCurrency string
}

// Option is the validated terms of one FX vanilla option trade. The zero value is not a valid
// option; build one with NewOption.
type Option struct {
	id               string
	optionType       OptionType
	strike           float64
	spotPrice        float64
	volatility       float64
	timeToMaturity   float64
	domesticRate     float64
	foreignRate      float64
	pair             CurrencyPair
	notional         float64
	notionalCurrency string
}

// NewOption validates p and returns the option. Every violated field is reported, joined into one
// error.
func NewOption(p OptionParams) (Option, error) {
	pair, errs := checkParams(p)
	if len(errs) > 0 {
		return Option{}, errors.Join(errs...)
	}
	return Option{
		id:               strings.TrimSpace(p.ID),
		optionType:       p.OptionType,
		strike:           p.Strike,
		spotPrice:        p.SpotPrice,
		volatility:       p.Volatility,
		timeToMaturity:   p.TimeToMaturity,
		domesticRate:     p.DomesticRate,
		foreignRate:      p.ForeignRate,
		pair:             pair,
		notional:         p.Notional,
		notionalCurrency: normalizeCurrency(p.NotionalCurrency),
	}, nil
}

// Validate re-checks the invariants, returning the first violation.
func (o Option) Validate() error {
	_, errs := checkParams(o.Params())
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

func checkParams(p OptionParams) (CurrencyPair, []error) {
	var errs []error
	if strings.TrimSpace(p.ID) == "" {
		errs = append(errs, &ValidationError{Field: "id", Value: p.ID, Err: ErrRequired})
	}
	if !p.OptionType.Valid() {
		errs = append(errs, &ValidationError{Field: "option_type", Value: p.OptionType, Err: ErrInvalidOptionType})
	}
	positive := []struct {
		field string
		value float64
	}{
		{"strike", p.Strike},
		{"spot_price", p.SpotPrice},
		{"volatility", p.Volatility},
		{"notional", p.Notional},
	}
	for _, f := range positive {
		if err := checkPositive(f.field, f.value); err != nil {
			errs = append(errs, err)
		}
	}
	if math.IsNaN(p.TimeToMaturity) || math.IsInf(p.TimeToMaturity, 0) {
		errs = append(errs, &ValidationError{Field: "time_to_maturity", Value: p.TimeToMaturity, Err: ErrMustBeFinite})
	} else if p.TimeToMaturity < 0 {
		errs = append(errs, &ValidationError{Field: "time_to_maturity", Value: p.TimeToMaturity, Err: ErrMustBeNonNegative})
	}
	if err := checkFinite("domestic_rate", p.DomesticRate); err != nil {
		errs = append(errs, err)
	}
	if err := checkFinite("foreign_rate", p.ForeignRate); err != nil {
		errs = append(errs, err)
	}

	pair, err := ParseCurrencyPair(p.Underlying)
	if err != nil {
		errs = append(errs, err)
		return pair, errs
	}
	if strings.TrimSpace(p.NotionalCurrency) == "" {
		errs = append(errs, &ValidationError{Field: "notional_currency", Value: p.NotionalCurrency, Err: ErrRequired})
	} else if !pair.Contains(p.NotionalCurrency) {
		errs = append(errs, &InvalidCurrencyError{Currency: p.NotionalCurrency, Pair: pair})
	}
	return pair, errs
}

func checkPositive(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &ValidationError{Field: field, Value: v, Err: ErrMustBeFinite}
	}
	if v <= 0 {
		return &ValidationError{Field: field, Value: v, Err: ErrMustBePositive}
	}
	return nil
}

func checkFinite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &ValidationError{Field: field, Value: v, Err: ErrMustBeFinite}
	}
	return nil
}

func (o Option) ID() string               { return o.id }
func (o Option) Type() OptionType         { return o.optionType }
func (o Option) Strike() float64          { return o.strike }
func (o Option) SpotPrice() float64       { return o.spotPrice }
func (o Option) Volatility() float64      { return o.volatility }
func (o Option) TimeToMaturity() float64  { return o.timeToMaturity }
func (o Option) DomesticRate() float64    { return o.domesticRate }
func (o Option) ForeignRate() float64     { return o.foreignRate }
func (o Option) Pair() CurrencyPair       { return o.pair }
func (o Option) Notional() float64        { return o.notional }
func (o Option) NotionalCurrency() string { return o.notionalCurrency }

// Params returns the terms of o, e.g. to build a variant of the same trade.
func (o Option) Params() OptionParams {
	underlying := ""
	if o.pair != (CurrencyPair{}) {
		underlying = o.pair.String()
	}
	return OptionParams{
		ID:               o.id,
		OptionType:       o.optionType,
		Strike:           o.strike,
		SpotPrice:        o.spotPrice,
		Volatility:       o.volatility,
		TimeToMaturity:   o.timeToMaturity,
		DomesticRate:     o.domesticRate,
		ForeignRate:      o.foreignRate,
		Underlying:       underlying,
		Notional:         o.notional,
		NotionalCurrency: o.notionalCurrency,
	}
}

func (o Option) String() string {
	return fmt.Sprintf("%s %s %s K=%v S=%v vol=%v T=%v N=%v %s",
		o.id, o.pair, o.optionType, o.strike, o.spotPrice, o.volatility, o.timeToMaturity, o.notional, o.notionalCurrency)
}
