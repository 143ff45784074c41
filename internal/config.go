package internal

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	DatabaseDriverPostgres = "postgres"
	DatabaseDriverSQLite   = "sqlite"
)

type Config struct {
	Env           string              `mapstructure:"env" env:"APP_ENV, default=development"`
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Security      SecurityConfig      `mapstructure:"security"`
	Integration   IntegrationConfig   `mapstructure:"integration"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port" env:"HTTP_PORT, default=8080"`
	BaseURL           string        `mapstructure:"base_url" env:"HTTP_BASE_URL"`
	AllowedOrigins    string        `mapstructure:"allowed_origins" env:"HTTP_ALLOWED_ORIGINS, default=*"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" env:"HTTP_READ_HEADER_TIMEOUT, default=5s"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout" env:"HTTP_READ_TIMEOUT, default=30s"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout" env:"HTTP_IDLE_TIMEOUT, default=60s"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout" env:"HTTP_WRITE_TIMEOUT, default=30s"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver" env:"DB_DRIVER, default=postgres"`
	Source          string        `mapstructure:"source" env:"DB_SOURCE"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" env:"DB_MAX_OPEN_CONNS, default=20"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" env:"DB_MAX_IDLE_CONNS, default=5"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME, default=30m"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" env:"DB_CONN_MAX_IDLE_TIME, default=5m"`
}

type SecurityConfig struct {
	JWTSecret              string        `mapstructure:"jwt_secret" env:"JWT_SECRET"`
	AccessTokenDuration    time.Duration `mapstructure:"access_token_duration" env:"ACCESS_TOKEN_DURATION, default=15m"`
	RefreshTokenDuration   time.Duration `mapstructure:"refresh_token_duration" env:"REFRESH_TOKEN_DURATION, default=168h"`
	ChallengeTokenDuration time.Duration `mapstructure:"challenge_token_duration" env:"CHALLENGE_TOKEN_DURATION, default=5m"`
	BCryptCost             int           `mapstructure:"bcrypt_cost" env:"BCRYPT_COST, default=12"`
	TOTPIssuer             string        `mapstructure:"totp_issuer" env:"TOTP_ISSUER, default=Inventario Pro"`
	BootstrapAdminPassword string        `mapstructure:"bootstrap_admin_password" env:"BOOTSTRAP_ADMIN_PASSWORD"`
}

type IntegrationConfig struct {
	Provider     string        `mapstructure:"provider" env:"INTEGRATION_PROVIDER, default=absolute"`
	SyncInterval time.Duration `mapstructure:"sync_interval" env:"INTEGRATION_SYNC_INTERVAL, default=0s"`
	SyncTimeout  time.Duration `mapstructure:"sync_timeout" env:"INTEGRATION_SYNC_TIMEOUT, default=2m"`
}

type ObservabilityConfig struct {
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" env:"METRICS_ENABLED, default=true"`
	Path    string `mapstructure:"path" env:"METRICS_PATH, default=/metrics"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" env:"LOG_LEVEL, default=info"`
	Format string `mapstructure:"format" env:"LOG_FORMAT, default=json"`
}

// LoadConfigFromEnv builds the configuration from environment variables only.
func LoadConfigFromEnv(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("process env config: %w", err)
	}
	return &cfg, nil
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if err := c.Integration.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("integration config: %v", err))
	}

	if err := c.Observability.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("logging config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	for _, origin := range c.Origins() {
		if origin == "*" {
			continue
		}
		if _, err := url.Parse(origin); err != nil {
			return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *ServerConfig) Origins() []string {
	if c.AllowedOrigins == "" {
		return nil
	}
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func (c *DatabaseConfig) Validate() error {
	if c.Driver != DatabaseDriverPostgres && c.Driver != DatabaseDriverSQLite {
		return fmt.Errorf("unsupported driver %q", c.Driver)
	}
	if c.Source == "" {
		return errors.New("source is required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *SecurityConfig) Validate() error {
	if len(c.JWTSecret) < 32 {
		return errors.New("jwt_secret must be at least 32 characters")
	}
	if c.AccessTokenDuration < time.Minute || c.AccessTokenDuration > time.Hour {
		return errors.New("access_token_duration must be between 1m and 1h")
	}
	if c.RefreshTokenDuration < time.Hour {
		return errors.New("refresh_token_duration must be at least 1h")
	}
	if c.ChallengeTokenDuration <= 0 {
		return errors.New("challenge_token_duration must be positive")
	}
	if c.BCryptCost < 10 || c.BCryptCost > 15 {
		return errors.New("bcrypt_cost must be between 10 and 15")
	}
	if c.TOTPIssuer == "" {
		return errors.New("totp_issuer is required")
	}
	if len(c.BootstrapAdminPassword) < 8 {
		return errors.New("bootstrap_admin_password must be at least 8 characters")
	}
	return nil
}

func (c *IntegrationConfig) Validate() error {
	if c.SyncInterval < 0 {
		return errors.New("sync_interval cannot be negative")
	}
	if c.SyncInterval > 0 && c.SyncInterval < time.Minute {
		return errors.New("sync_interval must be 0 (disabled) or at least 1m")
	}
	return nil
}

func (c *LoggingConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid level %q", c.Level)
	}
	switch c.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid format %q", c.Format)
	}
	return nil
}
