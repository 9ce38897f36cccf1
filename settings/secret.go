package settings

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
)

// Secret holds sink credentials kept in AWS Secrets Manager as a JSON document.
type Secret struct {
	DBHost         string `json:"db_host"`
	DBUser         string `json:"db_user"`
	DBPassword     string `json:"db_password"`
	InfluxURL      string `json:"influx_url"`
	InfluxUser     string `json:"influx_user"`
	InfluxPassword string `json:"influx_password"`
}

type secretsAPI interface {
	GetSecretValue(*secretsmanager.GetSecretValueInput) (*secretsmanager.GetSecretValueOutput, error)
}

// LoadSecret fetches secretName from Secrets Manager in region.
func LoadSecret(secretName string, region string) (Secret, error) {
	sess, err := session.NewSession(aws.NewConfig().WithRegion(region))
	if err != nil {
		return Secret{}, fmt.Errorf("aws session: %w", err)
	}
	return loadSecret(secretsmanager.New(sess), secretName)
}

func loadSecret(svc secretsAPI, secretName string) (Secret, error) {
	input := &secretsmanager.GetSecretValueInput{
		SecretId:     aws.String(secretName),
		VersionStage: aws.String("AWSCURRENT"),
	}
	result, err := svc.GetSecretValue(input)
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok {
			return Secret{}, fmt.Errorf("get secret %s: %s: %w", secretName, aerr.Code(), err)
		}
		return Secret{}, fmt.Errorf("get secret %s: %w", secretName, err)
	}

	// Depending on whether the secret is a string or binary, one of these fields will be populated.
	var raw []byte
	if result.SecretString != nil {
		raw = []byte(*result.SecretString)
	} else {
		raw = make([]byte, base64.StdEncoding.DecodedLen(len(result.SecretBinary)))
		n, err := base64.StdEncoding.Decode(raw, result.SecretBinary)
		if err != nil {
			return Secret{}, fmt.Errorf("decode secret %s: %w", secretName, err)
		}
		raw = raw[:n]
	}

	var secret Secret
	if err := json.Unmarshal(raw, &secret); err != nil {
		return Secret{}, fmt.Errorf("parse secret %s: %w", secretName, err)
	}
	return secret, nil
}

// Apply fills sink credentials from s. Empty secret fields leave the config unchanged.
func (s Secret) Apply(c *Config) {
	if s.DBHost != "" {
		c.Postgres.Host = s.DBHost
	}
	if s.DBUser != "" {
		c.Postgres.User = s.DBUser
	}
	if s.DBPassword != "" {
		c.Postgres.Password = s.DBPassword
	}
	if s.InfluxURL != "" {
		c.Influx.Addr = s.InfluxURL
	}
	if s.InfluxUser != "" {
		c.Influx.Username = s.InfluxUser
	}
	if s.InfluxPassword != "" {
		c.Influx.Password = s.InfluxPassword
	}
}
