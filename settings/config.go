package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/jinzhu/copier"
	"github.com/joho/godotenv"
)

// Config describes one pricing run: where trades come from, where results go and which optional
// sinks receive them.
type Config struct {
	Input       string   `json:"input"`
	Output      string   `json:"output"`
	Workers     int      `json:"workers"`
	SkipInvalid bool     `json:"skip_invalid"`
	LogLevel    string   `json:"log_level"`
	LogFormat   string   `json:"log_format"`
	Postgres    Postgres `json:"postgres"`
	Influx      Influx   `json:"influx"`
	SecretName  string   `json:"secret_name"`
	AWSRegion   string   `json:"aws_region"`
}

type Postgres struct {
	Enabled  bool   `json:"enabled"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"`
}

// DSN returns a lib/pq connection string.
func (p Postgres) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

type Influx struct {
	Enabled   bool   `json:"enabled"`
	Addr      string `json:"addr"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Database  string `json:"database"`
	Precision string `json:"precision"`
}

func Default() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "text",
		AWSRegion: "us-west-1",
		Postgres: Postgres{
			Host:    "localhost",
			Port:    5432,
			User:    "fxpricer",
			DBName:  "fxpricer",
			SSLMode: "disable",
		},
		Influx: Influx{
			Database:  "fxpricer",
			Precision: "us",
		},
	}
}

// LoadConfig reads a JSON config file over the defaults. An empty file name returns the defaults.
func LoadConfig(fileName string) (Config, error) {
	config := Default()
	if fileName == "" {
		return config, nil
	}
	file, err := os.ReadFile(fileName)
	if err != nil {
		return config, fmt.Errorf("read config %s: %w", fileName, err)
	}
	if err := json.Unmarshal(file, &config); err != nil {
		return config, fmt.Errorf("parse config %s: %w", fileName, err)
	}
	return config, nil
}

// LoadEnv loads envFile (when it exists) into the process environment, then applies FXPRICER_*
// variables to the config.
func (c *Config) LoadEnv(envFile string) error {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return fmt.Errorf("load %s: %w", envFile, err)
			}
		}
	}

	setString(&c.Input, "FXPRICER_INPUT")
	setString(&c.Output, "FXPRICER_OUTPUT")
	setString(&c.LogLevel, "FXPRICER_LOG_LEVEL")
	setString(&c.LogFormat, "FXPRICER_LOG_FORMAT")
	setString(&c.SecretName, "FXPRICER_SECRET_NAME")
	setString(&c.AWSRegion, "FXPRICER_AWS_REGION")
	setString(&c.Postgres.Host, "FXPRICER_DB_HOST")
	setString(&c.Postgres.User, "FXPRICER_DB_USER")
	setString(&c.Postgres.Password, "FXPRICER_DB_PASSWORD")
	setString(&c.Postgres.DBName, "FXPRICER_DB_NAME")
	setString(&c.Influx.Addr, "FXPRICER_INFLUX_URL")
	setString(&c.Influx.Username, "FXPRICER_INFLUX_USER")
	setString(&c.Influx.Password, "FXPRICER_INFLUX_PASSWORD")

	if err := setInt(&c.Workers, "FXPRICER_WORKERS"); err != nil {
		return err
	}
	if err := setInt(&c.Postgres.Port, "FXPRICER_DB_PORT"); err != nil {
		return err
	}
	return setBool(&c.SkipInvalid, "FXPRICER_SKIP_INVALID")
}

// Merge copies the non-zero fields of overrides into c. A false bool cannot switch off a setting
// enabled by the file or environment.
func (c *Config) Merge(overrides Config) error {
	return copier.CopyWithOption(c, &overrides, copier.Option{IgnoreEmpty: true, DeepCopy: true})
}

func (c Config) Validate() error {
	var errs []error
	if c.Input == "" {
		errs = append(errs, errors.New("input path is required"))
	}
	if c.Output == "" {
		errs = append(errs, errors.New("output path is required"))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	// A secret may still supply sink addresses; OpenSinks checks them once it is applied.
	if c.SecretName == "" {
		errs = append(errs, c.ValidateSinks())
	}
	return errors.Join(errs...)
}

// ValidateSinks checks the settings an enabled sink cannot start without.
func (c Config) ValidateSinks() error {
	if c.Influx.Enabled && c.Influx.Addr == "" {
		return errors.New("influx.addr is required when influx is enabled")
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}
