package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrConfiguration marks configuration that cannot be run. The server refuses
// to start when Load returns it.
var ErrConfiguration = errors.New("configuration error")

// Config holds all application configuration
type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Log          LogConfig
	HTTP         HTTPConfig
	Auth         AuthConfig
	WhatsApp     WhatsAppConfig
	Notification NotificationConfig
	Metrics      MetricsConfig
	Telemetry    TelemetryConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name    string
	Env     string
	Port    string
	SiteURL string // public storefront URL, used for tracking links in messages
}

// IsProduction reports whether the app runs in a production context
func (a AppConfig) IsProduction() bool {
	return strings.EqualFold(a.Env, "production")
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver          string // postgres or sqlite
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	Path            string // sqlite file path
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings. Redis backs the idempotency
// store when enabled; otherwise an in-memory store is used.
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
}

// AuthConfig holds the shared secret for service tokens on /api/v1
type AuthConfig struct {
	ServiceTokenSecret string
	Issuer             string
}

// WhatsAppConfig holds WhatsApp Cloud API settings
type WhatsAppConfig struct {
	AccessToken       string
	PhoneNumberID     string
	APIBaseURL        string
	VerifyToken       string
	Timeout           time.Duration
	CountryCode       string
	LocalNumberLength int
}

// HasCredentials reports whether live sending is possible
func (w WhatsAppConfig) HasCredentials() bool {
	return w.AccessToken != "" && w.PhoneNumberID != ""
}

// NotificationConfig holds notification behavior settings
type NotificationConfig struct {
	DefaultLocale  string
	IdempotencyTTL time.Duration
	MaxBodyLength  int
}

// MetricsConfig holds Prometheus exposition settings
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// TelemetryConfig holds OpenTelemetry tracing settings
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	Insecure          bool
	DBTracing         bool
}

// TestMode reports whether outbound messages are simulated. Outside
// production, missing credentials silently select test mode; in production
// validate has already rejected them.
func (c *Config) TestMode() bool {
	return !c.App.IsProduction() || !c.WhatsApp.HasCredentials()
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with ORDERNOW_ prefix (e.g., ORDERNOW_DATABASE_PASSWORD)
// 2. Conventional provider variables (WHATSAPP_ACCESS_TOKEN, SITE_URL, ...)
// 3. config.toml
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("ORDERNOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindConventionalEnv(v); err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Name:    v.GetString("app.name"),
			Env:     v.GetString("app.env"),
			Port:    v.GetString("app.port"),
			SiteURL: v.GetString("app.site_url"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			Path:            v.GetString("database.path"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		Auth: AuthConfig{
			ServiceTokenSecret: v.GetString("auth.service_token_secret"),
			Issuer:             v.GetString("auth.issuer"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:       strings.TrimSpace(v.GetString("whatsapp.access_token")),
			PhoneNumberID:     strings.TrimSpace(v.GetString("whatsapp.phone_number_id")),
			APIBaseURL:        v.GetString("whatsapp.api_url"),
			VerifyToken:       v.GetString("whatsapp.verify_token"),
			Timeout:           v.GetDuration("whatsapp.timeout"),
			CountryCode:       v.GetString("whatsapp.country_code"),
			LocalNumberLength: v.GetInt("whatsapp.local_number_length"),
		},
		Notification: NotificationConfig{
			DefaultLocale:  v.GetString("notification.default_locale"),
			IdempotencyTTL: v.GetDuration("notification.idempotency_ttl"),
			MaxBodyLength:  v.GetInt("notification.max_body_length"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("metrics.enabled"),
			Path:    v.GetString("metrics.path"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			Insecure:          v.GetBool("telemetry.insecure"),
			DBTracing:         v.GetBool("telemetry.db_tracing"),
		},
	}
	if !v.IsSet("telemetry.sampling_ratio") {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if !v.IsSet("metrics.enabled") {
		cfg.Metrics.Enabled = true
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// bindConventionalEnv lets the provider settings be set with the variable
// names used by hosting dashboards, next to the prefixed form.
func bindConventionalEnv(v *viper.Viper) error {
	bindings := map[string][]string{
		"app.env":                  {"ORDERNOW_APP_ENV", "APP_ENV"},
		"app.site_url":             {"ORDERNOW_APP_SITE_URL", "SITE_URL"},
		"whatsapp.access_token":    {"ORDERNOW_WHATSAPP_ACCESS_TOKEN", "WHATSAPP_ACCESS_TOKEN"},
		"whatsapp.phone_number_id": {"ORDERNOW_WHATSAPP_PHONE_NUMBER_ID", "WHATSAPP_PHONE_NUMBER_ID"},
		"whatsapp.api_url":         {"ORDERNOW_WHATSAPP_API_URL", "WHATSAPP_API_URL"},
		"whatsapp.verify_token":    {"ORDERNOW_WHATSAPP_VERIFY_TOKEN", "WHATSAPP_VERIFY_TOKEN"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "order-notifications"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	cfg.App.SiteURL = strings.TrimRight(cfg.App.SiteURL, "/")
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "ordernow"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "ordernow.db"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		if cfg.App.IsProduction() {
			cfg.Log.Format = "json"
		} else {
			cfg.Log.Format = "console"
		}
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 30 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	if cfg.Auth.Issuer == "" {
		cfg.Auth.Issuer = "order-now"
	}
	if cfg.WhatsApp.APIBaseURL == "" {
		cfg.WhatsApp.APIBaseURL = "https://graph.facebook.com/v18.0"
	}
	if cfg.WhatsApp.Timeout == 0 {
		cfg.WhatsApp.Timeout = 10 * time.Second
	}
	if cfg.WhatsApp.CountryCode == "" {
		cfg.WhatsApp.CountryCode = "52"
	}
	if cfg.WhatsApp.LocalNumberLength == 0 {
		cfg.WhatsApp.LocalNumberLength = 10
	}
	if cfg.Notification.DefaultLocale == "" {
		cfg.Notification.DefaultLocale = "en"
	}
	if cfg.Notification.IdempotencyTTL == 0 {
		cfg.Notification.IdempotencyTTL = 7 * 24 * time.Hour
	}
	if cfg.Notification.MaxBodyLength == 0 {
		cfg.Notification.MaxBodyLength = 4096
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("%w: database.driver must be postgres or sqlite, got %q", ErrConfiguration, c.Database.Driver)
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("%w: database.max_open_conns must be positive", ErrConfiguration)
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("%w: database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			ErrConfiguration, c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.Notification.MaxBodyLength <= 0 || c.Notification.MaxBodyLength > 4096 {
		return fmt.Errorf("%w: notification.max_body_length must be between 1 and 4096", ErrConfiguration)
	}
	if c.Telemetry.SamplingRatio < 0 || c.Telemetry.SamplingRatio > 1 {
		return fmt.Errorf("%w: telemetry.sampling_ratio must be between 0 and 1", ErrConfiguration)
	}
	if _, err := url.ParseRequestURI(c.WhatsApp.APIBaseURL); err != nil {
		return fmt.Errorf("%w: whatsapp.api_url is not a valid URL: %v", ErrConfiguration, err)
	}

	if c.App.IsProduction() {
		if c.WhatsApp.AccessToken == "" {
			return fmt.Errorf("%w: whatsapp.access_token is required in production", ErrConfiguration)
		}
		if c.WhatsApp.PhoneNumberID == "" {
			return fmt.Errorf("%w: whatsapp.phone_number_id is required in production", ErrConfiguration)
		}
		if c.Auth.ServiceTokenSecret == "" {
			return fmt.Errorf("%w: auth.service_token_secret is required in production", ErrConfiguration)
		}
		if len(c.Auth.ServiceTokenSecret) < 32 {
			return fmt.Errorf("%w: auth.service_token_secret must be at least 32 characters in production", ErrConfiguration)
		}
		if c.Database.Driver == "postgres" && c.Database.Password == "" {
			return fmt.Errorf("%w: database.password is required in production", ErrConfiguration)
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("%w: cors_allow_origins cannot be '*' in production", ErrConfiguration)
			}
		}
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
