package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. SHOP_DATABASE_PASSWORD
const EnvPrefix = "SHOP"

// Config is the full service configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Polar     PolarConfig
	Sync      SyncConfig
	Swagger   SwaggerConfig
	Telemetry TelemetryConfig
}

type AppConfig struct {
	Name string
	Env  string
	Port string
}

// IsProduction reports whether the stricter production checks apply
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	LogLevel        string        `mapstructure:"log_level"` // silent, error, warn, info
	SlowThreshold   time.Duration `mapstructure:"slow_threshold"`
}

// DSN renders a postgres URL. Credentials are percent-escaped.
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.DBName,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

// RedisConfig addresses the coordination store. When disabled, sync locks,
// webhook dedup and token revocation live in process memory.
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig validates access tokens minted by the storefront session service
type JWTConfig struct {
	Secret    string
	Issuer    string
	AdminRole string `mapstructure:"admin_role"`
}

type LogConfig struct {
	Level  string
	Format string
	Output string
}

type HTTPConfig struct {
	ReadTimeout      time.Duration `mapstructure:"read_timeout"`
	WriteTimeout     time.Duration `mapstructure:"write_timeout"`
	IdleTimeout      time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout  time.Duration `mapstructure:"shutdown_timeout"`
	MaxHeaderBytes   int           `mapstructure:"max_header_bytes"`
	MaxBodySize      int64         `mapstructure:"max_body_size"`
	RateLimitEnabled bool          `mapstructure:"rate_limit_enabled"`
	RateLimitRPS     float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst   int           `mapstructure:"rate_limit_burst"`
	CORSAllowOrigins []string      `mapstructure:"cors_allow_origins"`
	TrustedProxies   []string      `mapstructure:"trusted_proxies"`
}

// PolarConfig configures the checkout provider client and webhook verifier
type PolarConfig struct {
	AccessToken   string `mapstructure:"access_token"`
	WebhookSecret string `mapstructure:"webhook_secret"`
	Sandbox       bool
	BaseURL       string `mapstructure:"base_url"` // wins over the sandbox/production default
	Timeout       time.Duration
}

type SyncConfig struct {
	LockTTL time.Duration `mapstructure:"lock_ttl"`
}

type SwaggerConfig struct {
	Enabled    bool
	AllowedIPs []string `mapstructure:"allowed_ips"` // IPs or CIDRs; empty allows everyone
}

type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string        `mapstructure:"collector_endpoint"`
	Insecure          bool
	SamplingRatio     float64       `mapstructure:"sampling_ratio"`
	ServiceName       string        `mapstructure:"service_name"` // App.Name when empty
	DBTraceEnabled    bool          `mapstructure:"db_trace_enabled"`
	MetricsInterval   time.Duration `mapstructure:"metrics_interval"`
	LogsEnabled       bool          `mapstructure:"logs_enabled"`
	ProfilingEnabled  bool          `mapstructure:"profiling_enabled"`
	PyroscopeEndpoint string        `mapstructure:"pyroscope_endpoint"`
}

// defaults lists every key. Viper only maps SHOP_* variables onto keys it
// already knows, so secrets are registered with empty values.
var defaults = map[string]any{
	"app.name": "storefront-payments",
	"app.env":  "development",
	"app.port": "8080",

	"database.host":               "localhost",
	"database.port":               5432,
	"database.user":               "postgres",
	"database.password":           "",
	"database.dbname":             "storefront",
	"database.sslmode":            "disable",
	"database.max_open_conns":     20,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  time.Hour,
	"database.conn_max_idle_time": 30 * time.Minute,
	"database.log_level":          "warn",
	"database.slow_threshold":     200 * time.Millisecond,

	"redis.enabled":  false,
	"redis.host":     "localhost",
	"redis.port":     6379,
	"redis.password": "",
	"redis.db":       0,

	"jwt.secret":     "",
	"jwt.issuer":     "storefront",
	"jwt.admin_role": "ADMIN",

	"log.level":  "info",
	"log.format": "console",
	"log.output": "stdout",

	"http.read_timeout":       15 * time.Second,
	"http.write_timeout":      30 * time.Second,
	"http.idle_timeout":       time.Minute,
	"http.shutdown_timeout":   30 * time.Second,
	"http.max_header_bytes":   1 << 20,
	"http.max_body_size":      1 << 20,
	"http.rate_limit_enabled": false,
	"http.rate_limit_rps":     10.0,
	"http.rate_limit_burst":   20,
	"http.cors_allow_origins": []string{},
	"http.trusted_proxies":    []string{},

	"polar.access_token":   "",
	"polar.webhook_secret": "",
	"polar.sandbox":        false,
	"polar.base_url":       "",
	"polar.timeout":        15 * time.Second,

	"sync.lock_ttl": 30 * time.Second,

	"swagger.enabled":     false,
	"swagger.allowed_ips": []string{},

	"telemetry.enabled":            false,
	"telemetry.collector_endpoint": "localhost:4317",
	"telemetry.insecure":           false,
	"telemetry.sampling_ratio":     1.0,
	"telemetry.service_name":       "",
	"telemetry.db_trace_enabled":   false,
	"telemetry.metrics_interval":   time.Minute,
	"telemetry.logs_enabled":       false,
	"telemetry.profiling_enabled":  false,
	"telemetry.pyroscope_endpoint": "http://localhost:4040",
}

// Load resolves configuration, highest priority first:
//  1. SHOP_* environment variables, after loading an optional .env file
//  2. config.toml in the working directory or /app
//  3. defaults
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config.toml: %w", err)
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Database.MaxOpenConns > 0, "database.max_open_conns must be positive")
	check(c.Database.MaxIdleConns <= c.Database.MaxOpenConns,
		"database.max_idle_conns (%d) exceeds database.max_open_conns (%d)", c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	check(c.Telemetry.SamplingRatio >= 0 && c.Telemetry.SamplingRatio <= 1,
		"telemetry.sampling_ratio must be within [0, 1], got %g", c.Telemetry.SamplingRatio)
	check(c.HTTP.RateLimitBurst >= 1, "http.rate_limit_burst must be at least 1")

	if c.App.IsProduction() {
		check(len(c.JWT.Secret) >= 32, "jwt.secret needs at least 32 characters in production")
		check(c.Database.Password != "", "database.password is required in production")
		check(c.Database.SSLMode != "disable", "database.sslmode must not be disable in production")
		check(c.Polar.AccessToken != "", "polar.access_token is required in production")
		check(c.Polar.WebhookSecret != "", "polar.webhook_secret is required in production")
		check(!slices.Contains(c.HTTP.CORSAllowOrigins, "*"), "http.cors_allow_origins must not contain * in production")
	}
	return errors.Join(errs...)
}
