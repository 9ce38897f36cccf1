package models

import "time"

// Result is the priced output of one option. PV is in base currency; Delta and Vega are scaled by
// the base-currency notional, Vega per one percentage point of volatility.
type Result struct {
	ID    string  `csv:"id" db:"trade_id" structs:"-"`
	PV    float64 `csv:"pv" db:"pv" structs:"pv"`
	Delta float64 `csv:"delta" db:"delta" structs:"delta"`
	Vega  float64 `csv:"vega" db:"vega" structs:"vega"`
}

// Summary holds portfolio totals over the Results of one run.
type Summary struct {
	TotalPV     float64 `csv:"total_pv" db:"total_pv" structs:"total_pv"`
	TotalDelta  float64 `csv:"total_delta" db:"total_delta" structs:"total_delta"`
	TotalVega   float64 `csv:"total_vega" db:"total_vega" structs:"total_vega"`
	NumOfTrades int     `csv:"num_of_trades" db:"num_of_trades" structs:"num_of_trades"`
}

// Batch is everything one pricing run produced, in input order.
type Batch struct {
	RunID     string
	StartedAt time.Time
	Results   []Result
	Summary   Summary
}
