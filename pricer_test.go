package fxpricer

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tantralabs/fxpricer/data"
	"github.com/tantralabs/fxpricer/models"
	"github.com/tantralabs/fxpricer/options"
	"github.com/tantralabs/fxpricer/settings"
)

const book = `TradeID,Underlying,Notional,NotionalCurrency,Spot,Strike,Vol,RateDomestic,RateForeign,Expiry,OptionType
CALL001,EUR/USD,1000000,USD,1.1,1.12,0.15,0.02,0.01,0.25,Call
PUT001,EUR/USD,500000,USD,1.1,1.15,0.12,0.02,0.01,0.5,Put
BAD001,EUR/USD,500000,CHF,1.1,1.15,0.12,0.02,0.01,0.5,Put
EXP001,EUR/USD,1,EUR,1.2,1.1,0.1,0.02,0.01,0,Call
`

type recordingSink struct {
	name    string
	batches []models.Batch
	err     error
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Write(_ context.Context, batch models.Batch) error {
	s.batches = append(s.batches, batch)
	return s.err
}

func (s *recordingSink) Close() error { return nil }

func runConfig(t *testing.T, skipInvalid bool) settings.Config {
	t.Helper()
	dir := t.TempDir()
	input := filepath.Join(dir, "trades.csv")
	require.NoError(t, os.WriteFile(input, []byte(book), 0644))

	cfg := settings.Default()
	cfg.Input = input
	cfg.Output = filepath.Join(dir, "greeks.csv")
	cfg.Workers = 2
	cfg.SkipInvalid = skipInvalid
	return cfg
}

func TestPrice(t *testing.T) {
	cfg := runConfig(t, true)
	opts, _, err := data.LoadOptions(cfg.Input, true)
	require.NoError(t, err)

	batch, failed := Price(opts, 4)
	assert.Empty(t, failed)
	_, err = uuid.Parse(batch.RunID)
	assert.NoError(t, err)
	assert.False(t, batch.StartedAt.IsZero())

	require.Len(t, batch.Results, 3)
	for i, o := range opts {
		want, err := options.CalcGreeksAndPV(o)
		require.NoError(t, err)
		assert.Equal(t, want, batch.Results[i])
	}
	assert.Equal(t, Aggregate(batch.Results), batch.Summary)

	expired := batch.Results[2]
	assert.InDelta(t, 0.1, expired.PV, 1e-12)
	assert.Equal(t, 1.0, expired.Delta)
	assert.Equal(t, 0.0, expired.Vega)
}

func TestPriceReportsFailures(t *testing.T) {
	cfg := runConfig(t, true)
	opts, _, err := data.LoadOptions(cfg.Input, true)
	require.NoError(t, err)

	batch, failed := Price(append(opts, models.Option{}), 1)
	require.Len(t, failed, 1)
	assert.Equal(t, 3, failed[0].Index)
	assert.Len(t, batch.Results, 3)
	assert.Equal(t, 3, batch.Summary.NumOfTrades)
}

func TestRun(t *testing.T) {
	cfg := runConfig(t, true)
	sink := &recordingSink{name: "recording"}

	report, err := Run(context.Background(), cfg, sink)
	require.NoError(t, err)
	require.Len(t, report.Rejected, 1)
	assert.Equal(t, "BAD001", report.Rejected[0].TradeID)
	assert.Empty(t, report.Failed)
	assert.Equal(t, 3, report.Batch.Summary.NumOfTrades)

	require.Len(t, sink.batches, 1)
	assert.Equal(t, report.Batch, sink.batches[0])

	file, err := os.Open(cfg.Output)
	require.NoError(t, err)
	defer file.Close()
	var written []models.Result
	require.NoError(t, gocsv.UnmarshalFile(file, &written))
	assert.Equal(t, report.Batch.Results, written)
	assert.FileExists(t, data.SummaryPath(cfg.Output))
}

func TestRunAbortsOnInvalidRow(t *testing.T) {
	cfg := runConfig(t, false)
	sink := &recordingSink{name: "recording"}

	_, err := Run(context.Background(), cfg, sink)
	require.Error(t, err)
	var currencyErr *models.InvalidCurrencyError
	assert.True(t, errors.As(err, &currencyErr))
	assert.Empty(t, sink.batches)
	assert.NoFileExists(t, cfg.Output)
}

func TestRunTriesEverySink(t *testing.T) {
	cfg := runConfig(t, true)
	broken := &recordingSink{name: "broken", err: errors.New("connection refused")}
	healthy := &recordingSink{name: "healthy"}

	_, err := Run(context.Background(), cfg, broken, healthy)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken sink")
	assert.Len(t, healthy.batches, 1)
	assert.FileExists(t, cfg.Output)
}

func TestRunBatchValidatesConfig(t *testing.T) {
	_, err := RunBatch(context.Background(), settings.Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input path is required")
}

func TestRunBatchWithoutSinks(t *testing.T) {
	cfg := runConfig(t, true)
	report, err := RunBatch(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Batch.Summary.NumOfTrades)
}

func TestRenderSummary(t *testing.T) {
	report := Report{
		Batch: models.Batch{
			RunID:   "run-42",
			Summary: models.Summary{TotalPV: 1234567.891, TotalDelta: -50000, TotalVega: 12.5, NumOfTrades: 2},
		},
		Rejected: []data.RowError{{Row: 3, TradeID: "X"}},
	}

	var buf bytes.Buffer
	RenderSummary(&buf, report)
	out := buf.String()
	assert.Contains(t, out, "run-42")
	assert.Contains(t, out, "1,234,567.89")
	assert.Contains(t, out, "-50,000.00")
	assert.Contains(t, out, "12.50")
}

func fakeSecret(t *testing.T, secret settings.Secret) *[]string {
	t.Helper()
	var requested []string
	orig := loadSecret
	loadSecret = func(name, region string) (settings.Secret, error) {
		requested = append(requested, name)
		return secret, nil
	}
	t.Cleanup(func() { loadSecret = orig })
	return &requested
}

func TestRunBatchTakesInfluxAddrFromSecret(t *testing.T) {
	requested := fakeSecret(t, settings.Secret{InfluxURL: "http://127.0.0.1:1"})
	cfg := runConfig(t, true)
	cfg.SecretName = "fxpricer/sinks"
	cfg.Influx.Enabled = true

	report, err := RunBatch(context.Background(), cfg)
	assert.Equal(t, []string{"fxpricer/sinks"}, *requested)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "influx sink")
	assert.NotContains(t, err.Error(), "influx.addr is required")
	assert.Equal(t, 3, report.Batch.Summary.NumOfTrades)
	assert.FileExists(t, cfg.Output)
}

func TestOpenSinksNeedsInfluxAddr(t *testing.T) {
	requested := fakeSecret(t, settings.Secret{DBUser: "pricer"})
	cfg := settings.Default()
	cfg.SecretName = "fxpricer/sinks"
	cfg.Influx.Enabled = true

	_, err := OpenSinks(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "influx.addr is required")
	assert.Equal(t, []string{"fxpricer/sinks"}, *requested)
	assert.Equal(t, "pricer", cfg.Postgres.User)
}
