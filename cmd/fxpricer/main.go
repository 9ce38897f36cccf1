package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/tantralabs/fxpricer"
	"github.com/tantralabs/fxpricer/logger"
	"github.com/tantralabs/fxpricer/settings"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fxpricer [INPUT] [OUTPUT]",
		Short: "Prices a book of FX vanilla options and writes PV, delta and vega per trade plus portfolio totals.",
		Example: "fxpricer trades.xlsx greeks.xlsx\n" +
			"fxpricer --config fxpricer.json --skip-invalid --postgres trades.csv greeks.csv",
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	flags := cmd.Flags()
	flags.String("config", "", "JSON config file")
	flags.String("env-file", ".env", "dotenv file loaded before FXPRICER_* variables are read")
	flags.Int("workers", 0, "pricing goroutines, 0 for one per CPU")
	flags.Bool("skip-invalid", false, "log and skip invalid trades instead of aborting")
	flags.String("log-level", "", "debug, info, warn or error")
	flags.String("log-format", "", "text or json")
	flags.Bool("postgres", false, "store results in postgres")
	flags.Bool("influx", false, "write results to influxdb")
	return cmd
}

func loadConfig(cmd *cobra.Command, args []string) (settings.Config, error) {
	flags := cmd.Flags()
	configFile, _ := flags.GetString("config")
	envFile, _ := flags.GetString("env-file")

	cfg, err := settings.LoadConfig(configFile)
	if err != nil {
		return cfg, err
	}
	if err := cfg.LoadEnv(envFile); err != nil {
		return cfg, err
	}

	var overrides settings.Config
	if len(args) > 0 {
		overrides.Input = args[0]
	}
	if len(args) > 1 {
		overrides.Output = args[1]
	}
	overrides.Workers, _ = flags.GetInt("workers")
	overrides.LogLevel, _ = flags.GetString("log-level")
	overrides.LogFormat, _ = flags.GetString("log-format")
	if err := cfg.Merge(overrides); err != nil {
		return cfg, fmt.Errorf("apply flags: %w", err)
	}

	// Bools are set only when given so an explicit false can switch a setting off.
	if flags.Changed("skip-invalid") {
		cfg.SkipInvalid, _ = flags.GetBool("skip-invalid")
	}
	if flags.Changed("postgres") {
		cfg.Postgres.Enabled, _ = flags.GetBool("postgres")
	}
	if flags.Changed("influx") {
		cfg.Influx.Enabled, _ = flags.GetBool("influx")
	}
	return cfg, nil
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	logger.SetFormat(cfg.LogFormat)

	report, err := fxpricer.RunBatch(cmd.Context(), cfg)
	if report.Batch.RunID != "" {
		fxpricer.RenderSummary(cmd.OutOrStdout(), report)
	}
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		logger.Errorf("Error: %v", err)
		os.Exit(1)
	}
}
