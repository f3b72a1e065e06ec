package conf

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// LoadAWS returns the SDK configuration for the configured region.
func (c Config) LoadAWS(ctx context.Context) (aws.Config, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(c.AWS.Region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load aws config: %w", err)
	}
	return cfg, nil
}

// ConnString builds a libpq connection string. A local database takes the
// password from the configuration; anything else reads it from Secrets
// Manager unless a password is given explicitly.
func (c Config) ConnString(ctx context.Context) (string, error) {
	pg := c.Postgres
	pw, err := c.pgPassword(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		pg.Host, pg.Port, pg.User, pw, pg.DB, pg.SSLMode), nil
}

// MigrateURL is the same connection as a URL with the given scheme, the form
// golang-migrate drivers expect.
func (c Config) MigrateURL(ctx context.Context, scheme string) (string, error) {
	pg := c.Postgres
	pw, err := c.pgPassword(ctx)
	if err != nil {
		return "", err
	}
	u := url.URL{
		Scheme:   scheme,
		User:     url.UserPassword(pg.User, pw),
		Host:     net.JoinHostPort(pg.Host, pg.Port),
		Path:     "/" + pg.DB,
		RawQuery: url.Values{"sslmode": {pg.SSLMode}}.Encode(),
	}
	return u.String(), nil
}

func (c Config) pgPassword(ctx context.Context) (string, error) {
	pg := c.Postgres
	if pg.Password != "" || pg.Host == "localhost" || pg.PasswordSecretName == "" {
		return pg.Password, nil
	}
	awsCfg, err := c.LoadAWS(ctx)
	if err != nil {
		return "", err
	}
	pw, err := getPgPasswordFromAWS(ctx, secretsmanager.NewFromConfig(awsCfg), pg.PasswordSecretName)
	if err != nil {
		return "", fmt.Errorf("failed to get postgres password from AWS: %w", err)
	}
	return pw, nil
}

func getPgPasswordFromAWS(ctx context.Context, svc *secretsmanager.Client, secretName string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	result, err := svc.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretName),
	})
	if err != nil {
		return "", err
	}
	if result.SecretString == nil {
		return "", fmt.Errorf("secret %s has no string value", secretName)
	}
	return parsePgSecret(*result.SecretString)
}

func parsePgSecret(secretValue string) (string, error) {
	var secret struct {
		Password string `json:"password"`
	}
	if err := json.Unmarshal([]byte(secretValue), &secret); err != nil {
		return "", fmt.Errorf("failed to parse postgres password secret: %w", err)
	}
	return secret.Password, nil
}
