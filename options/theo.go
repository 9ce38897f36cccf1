package options

import (
	"fmt"
	"math"

	"github.com/tantralabs/fxpricer/models"
)

// CalcGreeksAndPV prices one option. Live trades use the analytic formulas with a single d1 and
// notional multiplier; trades at or past expiry are worth their intrinsic value.
func CalcGreeksAndPV(o models.Option) (models.Result, error) {
	if err := o.Validate(); err != nil {
		return models.Result{}, err
	}
	multiplier, err := ConvertNotional(o)
	if err != nil {
		return models.Result{}, err
	}
	if o.TimeToMaturity() <= 0 {
		value, delta := expiryValue(o)
		return models.Result{
			ID:    o.ID(),
			PV:    value * multiplier,
			Delta: delta * multiplier,
			Vega:  0,
		}, nil
	}
	d1, d2 := D1D2(o)
	return models.Result{
		ID:    o.ID(),
		PV:    Price(o, d1, d2, multiplier),
		Delta: Delta(o, d1, multiplier),
		Vega:  Vega(o, d1, multiplier),
	}, nil
}

// expiryValue returns the per-unit payoff and delta of an expired option.
func expiryValue(o models.Option) (value, delta float64) {
	spot, strike := o.SpotPrice(), o.Strike()
	switch o.Type() {
	case models.Call:
		value = math.Max(spot-strike, 0)
		if spot > strike {
			delta = 1
		}
	case models.Put:
		value = math.Max(strike-spot, 0)
		if strike > spot {
			delta = -1
		}
	default:
		panic(fmt.Sprintf("options: unknown option type %v", o.Type()))
	}
	return value, delta
}
