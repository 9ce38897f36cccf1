package database

import (
	"context"
	"fmt"

	"github.com/fatih/structs"
	client "github.com/influxdata/influxdb1-client/v2"
	"github.com/tantralabs/fxpricer/logger"
	"github.com/tantralabs/fxpricer/models"
	"github.com/tantralabs/fxpricer/settings"
)

const (
	ResultMeasurement  = "fx_option_result"
	SummaryMeasurement = "fx_portfolio_summary"
)

type pointWriter interface {
	Write(bp client.BatchPoints) error
	Close() error
}

// InfluxSink writes one point per trade and one portfolio point per run, all stamped with the
// run start time.
type InfluxSink struct {
	client    pointWriter
	database  string
	precision string
}

func NewInfluxSink(cfg settings.Influx) (*InfluxSink, error) {
	influx, err := client.NewHTTPClient(client.HTTPConfig{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("influx client for %s: %w", cfg.Addr, err)
	}
	return newInfluxSink(influx, cfg), nil
}

func newInfluxSink(w pointWriter, cfg settings.Influx) *InfluxSink {
	return &InfluxSink{client: w, database: cfg.Database, precision: cfg.Precision}
}

func (s *InfluxSink) Name() string {
	return "influx"
}

func (s *InfluxSink) Write(_ context.Context, batch models.Batch) error {
	bp, err := client.NewBatchPoints(client.BatchPointsConfig{
		Database:  s.database,
		Precision: s.precision,
	})
	if err != nil {
		return err
	}

	for _, r := range batch.Results {
		tags := map[string]string{"run_id": batch.RunID, "trade_id": r.ID}
		pt, err := client.NewPoint(ResultMeasurement, tags, structs.Map(r), batch.StartedAt)
		if err != nil {
			return fmt.Errorf("point for %s: %w", r.ID, err)
		}
		bp.AddPoint(pt)
	}

	pt, err := client.NewPoint(SummaryMeasurement, map[string]string{"run_id": batch.RunID}, structs.Map(batch.Summary), batch.StartedAt)
	if err != nil {
		return fmt.Errorf("summary point: %w", err)
	}
	bp.AddPoint(pt)

	if err := s.client.Write(bp); err != nil {
		return fmt.Errorf("influx write: %w", err)
	}
	logger.Debugf("Wrote %d points for run %s to influx", len(bp.Points()), batch.RunID)
	return nil
}

func (s *InfluxSink) Close() error {
	return s.client.Close()
}
