package options

import "github.com/tantralabs/fxpricer/models"

// ConvertNotional returns the trade notional in base-currency units. Spot is quote per base, so a
// quote-denominated notional is divided by spot.
func ConvertNotional(o models.Option) (float64, error) {
	pair := o.Pair()
	switch o.NotionalCurrency() {
	case "":
	case pair.Base:
		return o.Notional(), nil
	case pair.Quote:
		return o.Notional() / o.SpotPrice(), nil
	}
	return 0, &models.InvalidCurrencyError{Currency: o.NotionalCurrency(), Pair: pair}
}
