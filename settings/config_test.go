package settings

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	fileName := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(fileName, []byte(`{
		"input": "trades.xlsx",
		"output": "greeks.xlsx",
		"workers": 4,
		"postgres": {"enabled": true, "host": "db.internal"}
	}`), 0644))

	config, err := LoadConfig(fileName)
	require.NoError(t, err)
	assert.Equal(t, "trades.xlsx", config.Input)
	assert.Equal(t, "greeks.xlsx", config.Output)
	assert.Equal(t, 4, config.Workers)
	assert.True(t, config.Postgres.Enabled)
	assert.Equal(t, "db.internal", config.Postgres.Host)
	assert.Equal(t, 5432, config.Postgres.Port)
	assert.Equal(t, "info", config.LogLevel)
	assert.NoError(t, config.Validate())
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)

	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, Default(), config)
}

func TestLoadEnv(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("FXPRICER_DB_PASSWORD=s3cret\n"), 0644))
	t.Setenv("FXPRICER_DB_PASSWORD", "")
	os.Unsetenv("FXPRICER_DB_PASSWORD")
	t.Setenv("FXPRICER_WORKERS", "3")
	t.Setenv("FXPRICER_SKIP_INVALID", "true")
	t.Setenv("FXPRICER_INFLUX_URL", "http://influx:8086")

	config := Default()
	require.NoError(t, config.LoadEnv(envFile))
	assert.Equal(t, "s3cret", config.Postgres.Password)
	assert.Equal(t, 3, config.Workers)
	assert.True(t, config.SkipInvalid)
	assert.Equal(t, "http://influx:8086", config.Influx.Addr)
}

func TestLoadEnvRejectsBadNumbers(t *testing.T) {
	t.Setenv("FXPRICER_WORKERS", "many")
	config := Default()
	assert.Error(t, config.LoadEnv(""))
}

func TestMerge(t *testing.T) {
	config := Default()
	config.Input = "file.csv"
	config.Workers = 2

	require.NoError(t, config.Merge(Config{Output: "out.csv", Workers: 8, LogLevel: "debug"}))
	assert.Equal(t, "file.csv", config.Input)
	assert.Equal(t, "out.csv", config.Output)
	assert.Equal(t, 8, config.Workers)
	assert.Equal(t, "debug", config.LogLevel)
	assert.Equal(t, "text", config.LogFormat)
}

func TestValidate(t *testing.T) {
	config := Default()
	config.Workers = -1
	config.Influx.Enabled = true
	err := config.Validate()
	require.Error(t, err)
	for _, msg := range []string{"input", "output", "workers", "influx.addr"} {
		assert.Contains(t, err.Error(), msg)
	}
}

func TestValidateLeavesSinkAddrToSecret(t *testing.T) {
	config := Default()
	config.Input = "trades.csv"
	config.Output = "greeks.csv"
	config.Influx.Enabled = true
	assert.Error(t, config.Validate())

	config.SecretName = "fxpricer/sinks"
	assert.NoError(t, config.Validate())
	assert.Error(t, config.ValidateSinks())

	config.Influx.Addr = "http://influx:8086"
	assert.NoError(t, config.ValidateSinks())
}

type fakeSecrets struct {
	output *secretsmanager.GetSecretValueOutput
	err    error
	input  *secretsmanager.GetSecretValueInput
}

func (f *fakeSecrets) GetSecretValue(in *secretsmanager.GetSecretValueInput) (*secretsmanager.GetSecretValueOutput, error) {
	f.input = in
	return f.output, f.err
}

func TestLoadSecret(t *testing.T) {
	svc := &fakeSecrets{output: &secretsmanager.GetSecretValueOutput{
		SecretString: aws.String(`{"db_user": "pricer", "db_password": "pw", "influx_url": "http://influx:8086"}`),
	}}
	secret, err := loadSecret(svc, "fxpricer/prod")
	require.NoError(t, err)
	assert.Equal(t, "fxpricer/prod", aws.StringValue(svc.input.SecretId))

	config := Default()
	secret.Apply(&config)
	assert.Equal(t, "pricer", config.Postgres.User)
	assert.Equal(t, "pw", config.Postgres.Password)
	assert.Equal(t, "localhost", config.Postgres.Host)
	assert.Equal(t, "http://influx:8086", config.Influx.Addr)
}

func TestLoadSecretBinary(t *testing.T) {
	raw := []byte(`{"db_host": "db.internal"}`)
	encoded := make([]byte, base64.StdEncoding.EncodedLen(len(raw)))
	base64.StdEncoding.Encode(encoded, raw)

	secret, err := loadSecret(&fakeSecrets{output: &secretsmanager.GetSecretValueOutput{SecretBinary: encoded}}, "bin")
	require.NoError(t, err)
	assert.Equal(t, "db.internal", secret.DBHost)
}

func TestLoadSecretError(t *testing.T) {
	svc := &fakeSecrets{err: awserr.New(secretsmanager.ErrCodeResourceNotFoundException, "missing", errors.New("404"))}
	_, err := loadSecret(svc, "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), secretsmanager.ErrCodeResourceNotFoundException)
}
