// Package conf loads the server configuration from an optional TOML file
// overlaid by environment variables.
package conf

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

const (
	// PathEnvVar names the TOML file to read instead of DefaultPath.
	PathEnvVar  = "DEADLINR_CONFIG"
	DefaultPath = "deadlinr.toml"
)

type RateLimitStore string

const (
	RateLimitPostgres RateLimitStore = "postgres"
	RateLimitDynamoDb RateLimitStore = "dynamodb"
)

type Config struct {
	HttpAddr    string   `toml:"http_addr"`
	CorsOrigins []string `toml:"cors_origins"`
	JwtKey      string   `toml:"jwt_key"`
	// AppURL is the public address of the web app, used in emailed links.
	AppURL   string `toml:"app_url"`
	LogLevel string `toml:"log_level"`

	Postgres  PostgresConf  `toml:"postgres"`
	AWS       AWSConf       `toml:"aws"`
	RateLimit RateLimitConf `toml:"rate_limit"`
	Mail      MailConf      `toml:"mail"`
}

type PostgresConf struct {
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	// PasswordSecretName is read from AWS Secrets Manager when Password is
	// empty and the host is not local.
	PasswordSecretName string `toml:"password_secret_name"`
	DB                 string `toml:"db"`
	SSLMode            string `toml:"sslmode"`
}

type AWSConf struct {
	Region   string `toml:"region"`
	S3Bucket string `toml:"s3_bucket"`
	// NotifQueueURL is optional; without it notifications stay in-app.
	NotifQueueURL string `toml:"notif_queue_url"`
}

type RateLimitConf struct {
	Store       RateLimitStore `toml:"store"`
	DynamoTable string         `toml:"dynamo_table"`
}

type MailConf struct {
	// SendgridKey is optional; without it emails are logged.
	SendgridKey string `toml:"sendgrid_key"`
	FromName    string `toml:"from_name"`
	FromAddress string `toml:"from_address"`
}

func defaults() Config {
	return Config{
		HttpAddr:    ":8080",
		CorsOrigins: []string{"http://localhost:3000"},
		AppURL:      "http://localhost:3000",
		LogLevel:    "info",
		Postgres: PostgresConf{
			Host:    "localhost",
			Port:    "5432",
			User:    "deadlinr",
			DB:      "deadlinr",
			SSLMode: "disable",
		},
		AWS:       AWSConf{Region: "eu-central-1"},
		RateLimit: RateLimitConf{Store: RateLimitPostgres},
		Mail: MailConf{
			FromName:    "Deadlinr",
			FromAddress: "noreply@deadlinr.app",
		},
	}
}

// Load reads .env if present, then the TOML file, then the environment.
func Load() (Config, error) {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	path := os.Getenv(PathEnvVar)
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		content, err = nil, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(content, os.Getenv)
}

// Parse decodes tomlContent over the defaults and applies the environment
// variables returned by getenv.
func Parse(tomlContent []byte, getenv func(string) string) (Config, error) {
	c := defaults()
	if len(tomlContent) > 0 {
		if err := toml.Unmarshal(tomlContent, &c); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	c.applyEnv(getenv)
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	str := map[string]*string{
		"HTTP_ADDR":                     &c.HttpAddr,
		"JWT_KEY":                       &c.JwtKey,
		"APP_URL":                       &c.AppURL,
		"LOG_LEVEL":                     &c.LogLevel,
		"POSTGRES_HOST":                 &c.Postgres.Host,
		"POSTGRES_PORT":                 &c.Postgres.Port,
		"POSTGRES_USER":                 &c.Postgres.User,
		"POSTGRES_PW":                   &c.Postgres.Password,
		"POSTGRES_PASSWORD_SECRET_NAME": &c.Postgres.PasswordSecretName,
		"POSTGRES_DB":                   &c.Postgres.DB,
		"POSTGRES_SSLMODE":              &c.Postgres.SSLMode,
		"AWS_REGION":                    &c.AWS.Region,
		"S3_BUCKET":                     &c.AWS.S3Bucket,
		"NOTIF_QUEUE_URL":               &c.AWS.NotifQueueURL,
		"RATE_LIMIT_TABLE":              &c.RateLimit.DynamoTable,
		"SENDGRID_API_KEY":              &c.Mail.SendgridKey,
		"MAIL_FROM_NAME":                &c.Mail.FromName,
		"MAIL_FROM_ADDRESS":             &c.Mail.FromAddress,
	}
	for key, dst := range str {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	if v := getenv("RATE_LIMIT_STORE"); v != "" {
		c.RateLimit.Store = RateLimitStore(v)
	}
	if v := getenv("CORS_ORIGINS"); v != "" {
		c.CorsOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.CorsOrigins = append(c.CorsOrigins, o)
			}
		}
	}
}

func (c Config) validate() error {
	if c.JwtKey == "" {
		return errors.New("JWT_KEY is not set")
	}
	switch c.RateLimit.Store {
	case RateLimitPostgres:
	case RateLimitDynamoDb:
		if c.RateLimit.DynamoTable == "" {
			return errors.New("rate_limit.dynamo_table is required for the dynamodb store")
		}
	default:
		return fmt.Errorf("unknown rate limit store %q", c.RateLimit.Store)
	}
	return nil
}
