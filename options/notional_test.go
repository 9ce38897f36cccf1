package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tantralabs/fxpricer/models"
)

func TestConvertNotional(t *testing.T) {
	// 1,100,000 USD / 1.1 = 1,000,000 EUR
	callUSD := eurusd(t, models.Call, 1.1, 1.12, 0.11, 0.25)
	callUSD = withParams(t, callUSD, func(p *models.OptionParams) {
		p.Notional = 1100000
		p.NotionalCurrency = "USD"
	})
	callEUR := withParams(t, callUSD, func(p *models.OptionParams) {
		p.Notional = 1000000
		p.NotionalCurrency = "EUR"
	})

	multQuote, err := ConvertNotional(callUSD)
	require.NoError(t, err)
	assert.InDelta(t, 1000000.0, multQuote, 1e-6, "USD conversion failed: got %v", multQuote)

	multBase, err := ConvertNotional(callEUR)
	require.NoError(t, err)
	assert.Equal(t, 1000000.0, multBase, "Base currency should not be divided: got %v", multBase)
}

func TestConvertNotionalLowerCaseCurrency(t *testing.T) {
	o := withParams(t, eurusd(t, models.Call, 1.25, 1.2, 0.1, 1), func(p *models.OptionParams) {
		p.Underlying = "gbp/usd"
		p.Notional = 250000
		p.NotionalCurrency = " usd "
	})
	mult, err := ConvertNotional(o)
	require.NoError(t, err)
	assert.InDelta(t, 200000.0, mult, 1e-9)
}

func TestConvertNotionalUnknownCurrency(t *testing.T) {
	_, err := ConvertNotional(models.Option{})
	var currencyErr *models.InvalidCurrencyError
	require.True(t, errors.As(err, &currencyErr), "expected InvalidCurrencyError, got %v", err)
}

func TestConvertNotionalByCurrency(t *testing.T) {
	tests := []struct {
		underlying string
		currency   string
		want       float64
		valid      bool
	}{
		{"EUR/USD", "EUR", 1100000, true},
		{"EUR/USD", "USD", 1000000, true},
		{"EUR/USD", "GBP", 0, false},
		{"EUR/USD", "JPY", 0, false},
		{"USD/JPY", "EUR", 0, false},
		{"USD/JPY", "JPY", 1100000 / 1.1, true},
	}
	for _, tt := range tests {
		o, err := models.NewOption(models.OptionParams{
			ID: "N1", OptionType: models.Call, SpotPrice: 1.1, Strike: 1.1, Volatility: 0.1,
			TimeToMaturity: 0.5, Underlying: tt.underlying, Notional: 1100000, NotionalCurrency: tt.currency,
		})
		if !tt.valid {
			var currencyErr *models.InvalidCurrencyError
			require.True(t, errors.As(err, &currencyErr), "%s in %s: got %v", tt.currency, tt.underlying, err)
			assert.Equal(t, tt.currency, currencyErr.Currency)
			assert.Equal(t, tt.underlying, currencyErr.Pair.String())

			_, err = ConvertNotional(o)
			assert.True(t, errors.As(err, &currencyErr), "converter accepted %s in %s", tt.currency, tt.underlying)
			continue
		}
		require.NoError(t, err)
		mult, err := ConvertNotional(o)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, mult, 1e-6, "%s in %s", tt.currency, tt.underlying)
	}
}
