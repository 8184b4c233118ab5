package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Env                 string        `env:"ENV"                   envDefault:"dev"`  // dev, staging, prod
	LogLevel            string        `env:"LOG_LEVEL"             envDefault:"info"` // debug, info, warn, error
	LogFormat           string        `env:"LOG_FORMAT"            envDefault:"json"` // json, text
	Port                int           `env:"PORT"                  envDefault:"8080"`
	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	CORSOrigins         []string      `env:"CORS_ORIGINS"          envSeparator:","`

	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	DatabaseDSN    string `env:"DATABASE_DSN"    envDefault:"file:invites.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"`

	// Token verification. Keys come from the identity provider's JWKS, or
	// from a single static Ed25519 public key (PEM inline or on disk).
	Issuer              string        `env:"AUTH_ISSUER,required,notEmpty"`
	Audience            []string      `env:"AUTH_AUDIENCE"               envSeparator:","`
	JWKSURL             string        `env:"AUTH_JWKS_URL"`
	JWKSRefreshInterval time.Duration `env:"AUTH_JWKS_REFRESH_INTERVAL"  envDefault:"15m"`
	PublicKey           string        `env:"AUTH_PUBLIC_KEY"`
	PublicKeyFile       string        `env:"AUTH_PUBLIC_KEY_FILE"`
	PublicKeyID         string        `env:"AUTH_PUBLIC_KEY_ID"          envDefault:"static"`
	TokenLeeway         time.Duration `env:"AUTH_TOKEN_LEEWAY"           envDefault:"30s"`

	InvitationTTL time.Duration `env:"INVITATION_TTL"        envDefault:"168h"`
	AcceptURL     string        `env:"INVITATION_ACCEPT_URL" envDefault:"http://localhost:3000/accept-invitation"`
	SweepSecret   string        `env:"SWEEP_SECRET"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL"        envDefault:"5m"`

	// Notifications go to a webhook when set, otherwise only to the log.
	WebhookURL    string `env:"NOTIFY_WEBHOOK_URL"`
	WebhookSecret string `env:"NOTIFY_WEBHOOK_SECRET"`

	OTLPEndpoint     string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	TraceSampleRatio float64 `env:"OTEL_TRACES_SAMPLE_RATIO" envDefault:"1"`
}

// LoadConfig reads Config from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	switch c.DatabaseDriver {
	case DriverSQLite, DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("DATABASE_DRIVER must be %q or %q, got %q", DriverSQLite, DriverPostgres, c.DatabaseDriver))
	}
	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("DATABASE_DSN is required"))
	}

	keySources := 0
	for _, s := range []string{c.JWKSURL, c.PublicKey, c.PublicKeyFile} {
		if s != "" {
			keySources++
		}
	}
	if keySources != 1 {
		errs = append(errs, errors.New("exactly one of AUTH_JWKS_URL, AUTH_PUBLIC_KEY, AUTH_PUBLIC_KEY_FILE must be set"))
	}

	if c.InvitationTTL <= 0 {
		errs = append(errs, errors.New("INVITATION_TTL must be positive"))
	}
	if c.TraceSampleRatio < 0 || c.TraceSampleRatio > 1 {
		errs = append(errs, errors.New("OTEL_TRACES_SAMPLE_RATIO must be within [0, 1]"))
	}

	return errors.Join(errs...)
}
