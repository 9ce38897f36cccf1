// Package options prices FX vanilla options under Garman-Kohlhagen.
package options

import (
	"fmt"
	"math"

	"github.com/tantralabs/fxpricer/models"
	"gonum.org/v1/gonum/stat/distuv"
)

// VegaScale reports vega per one percentage point of volatility instead of per unit.
const VegaScale = 0.01

var norm = distuv.UnitNormal

// D1D2 requires TimeToMaturity > 0; expired trades go through the intrinsic path.
func D1D2(o models.Option) (d1, d2 float64) {
	t := o.TimeToMaturity()
	volSqrtT := o.Volatility() * math.Sqrt(t)
	d1 = (math.Log(o.SpotPrice()/o.Strike()) + (o.DomesticRate()-o.ForeignRate()+o.Volatility()*o.Volatility()/2)*t) / volSqrtT
	d2 = d1 - volSqrtT
	return d1, d2
}

// discountFactors returns e^(-r_dom*T) and e^(-r_for*T).
func discountFactors(o models.Option) (dr, fr float64) {
	t := o.TimeToMaturity()
	return math.Exp(-o.DomesticRate() * t), math.Exp(-o.ForeignRate() * t)
}

// Price returns the present value in base currency scaled by multiplier.
func Price(o models.Option, d1, d2, multiplier float64) float64 {
	dr, fr := discountFactors(o)
	spot, strike := o.SpotPrice(), o.Strike()
	var unit float64
	switch o.Type() {
	case models.Call:
		unit = spot*fr*norm.CDF(d1) - strike*dr*norm.CDF(d2)
	case models.Put:
		unit = strike*dr*norm.CDF(-d2) - spot*fr*norm.CDF(-d1)
	default:
		panic(fmt.Sprintf("options: unknown option type %v", o.Type()))
	}
	return unit * multiplier
}

func Delta(o models.Option, d1, multiplier float64) float64 {
	_, fr := discountFactors(o)
	switch o.Type() {
	case models.Call:
		return fr * norm.CDF(d1) * multiplier
	case models.Put:
		return fr * (norm.CDF(d1) - 1) * multiplier
	default:
		panic(fmt.Sprintf("options: unknown option type %v", o.Type()))
	}
}

// Vega is the same for calls and puts.
func Vega(o models.Option, d1, multiplier float64) float64 {
	_, fr := discountFactors(o)
	return fr * o.SpotPrice() * math.Sqrt(o.TimeToMaturity()) * norm.Prob(d1) * VegaScale * multiplier
}
