// Package fxpricer prices books of FX vanilla options and publishes the results.
package fxpricer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tantralabs/fxpricer/data"
	"github.com/tantralabs/fxpricer/database"
	"github.com/tantralabs/fxpricer/logger"
	"github.com/tantralabs/fxpricer/models"
	"github.com/tantralabs/fxpricer/options"
	"github.com/tantralabs/fxpricer/settings"
)

var loadSecret = settings.LoadSecret

// Sink receives every successfully priced batch after the output file is written.
type Sink interface {
	Name() string
	Write(ctx context.Context, batch models.Batch) error
	Close() error
}

// Report describes one run: what was priced and what was left out.
type Report struct {
	Batch    models.Batch
	Rejected []data.RowError
	Failed   []options.TradeError
}

// Price prices opts over workers goroutines and aggregates whatever priced successfully.
func Price(opts []models.Option, workers int) (models.Batch, []options.TradeError) {
	batch := models.Batch{RunID: uuid.NewString(), StartedAt: time.Now().UTC()}
	results, failed := options.NewTheoEngine(workers).Price(opts)
	for _, f := range failed {
		logger.WithFields(logger.Fields{"run_id": batch.RunID, "trade_id": f.ID}).Warnf("Could not price trade: %v", f.Err)
	}
	batch.Results = results
	batch.Summary = Aggregate(results)
	return batch, failed
}

// Run loads cfg.Input, prices it, writes cfg.Output and hands the batch to each sink. Sink
// failures are logged and returned after every sink has been tried.
func Run(ctx context.Context, cfg settings.Config, sinks ...Sink) (Report, error) {
	opts, rejected, err := data.LoadOptions(cfg.Input, cfg.SkipInvalid)
	if err != nil {
		return Report{}, err
	}

	batch, failed := Price(opts, cfg.Workers)
	report := Report{Batch: batch, Rejected: rejected, Failed: failed}
	if len(failed) > 0 && !cfg.SkipInvalid {
		return report, fmt.Errorf("run %s: %w", batch.RunID, failed[0])
	}

	if err := data.WriteBatch(cfg.Output, batch); err != nil {
		return report, err
	}

	var errs []error
	for _, sink := range sinks {
		if err := sink.Write(ctx, batch); err != nil {
			logger.WithFields(logger.Fields{"run_id": batch.RunID, "sink": sink.Name()}).Errorf("Sink write failed: %v", err)
			errs = append(errs, fmt.Errorf("%s sink: %w", sink.Name(), err))
		}
	}

	logger.WithFields(logger.Fields{"run_id": batch.RunID}).Infof("Successfully processed %d trades.", batch.Summary.NumOfTrades)
	return report, errors.Join(errs...)
}

// OpenSinks connects the sinks enabled in cfg, pulling their credentials from Secrets Manager
// first when a secret name is configured.
func OpenSinks(cfg *settings.Config) ([]Sink, error) {
	if !cfg.Postgres.Enabled && !cfg.Influx.Enabled {
		return nil, nil
	}
	if cfg.SecretName != "" {
		secret, err := loadSecret(cfg.SecretName, cfg.AWSRegion)
		if err != nil {
			return nil, err
		}
		secret.Apply(cfg)
	}
	if err := cfg.ValidateSinks(); err != nil {
		return nil, err
	}

	var sinks []Sink
	if cfg.Postgres.Enabled {
		db, err := database.Connect(cfg.Postgres)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, database.NewPostgresSink(db))
	}
	if cfg.Influx.Enabled {
		influx, err := database.NewInfluxSink(cfg.Influx)
		if err != nil {
			CloseSinks(sinks)
			return nil, err
		}
		sinks = append(sinks, influx)
	}
	return sinks, nil
}

func CloseSinks(sinks []Sink) {
	for _, sink := range sinks {
		if err := sink.Close(); err != nil {
			logger.Warnf("Closing %s sink: %v", sink.Name(), err)
		}
	}
}

// RunBatch validates cfg, opens its sinks and runs one pricing batch.
func RunBatch(ctx context.Context, cfg settings.Config) (Report, error) {
	if err := cfg.Validate(); err != nil {
		return Report{}, err
	}
	sinks, err := OpenSinks(&cfg)
	if err != nil {
		return Report{}, err
	}
	defer CloseSinks(sinks)
	return Run(ctx, cfg, sinks...)
}
