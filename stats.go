package fxpricer

import (
	"github.com/tantralabs/fxpricer/models"
	"gonum.org/v1/gonum/floats"
)

// Aggregate folds per-trade results into portfolio totals. An empty slice gives a zero Summary.
func Aggregate(results []models.Result) models.Summary {
	pv := make([]float64, len(results))
	delta := make([]float64, len(results))
	vega := make([]float64, len(results))
	for i, r := range results {
		pv[i] = r.PV
		delta[i] = r.Delta
		vega[i] = r.Vega
	}
	return models.Summary{
		TotalPV:     floats.Sum(pv),
		TotalDelta:  floats.Sum(delta),
		TotalVega:   floats.Sum(vega),
		NumOfTrades: len(results),
	}
}
