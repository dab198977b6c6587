package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App       AppConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Catalog   CatalogConfig
	Storage   StorageConfig
	Webhook   WebhookConfig
	Notion    NotionConfig
	Session   SessionConfig
	Telemetry TelemetryConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level      string
	Format     string
	Output     string
	TimeFormat string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	MaxHeaderBytes    int
	MaxBodySize       int64
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	CORSAllowOrigins  []string
	CORSAllowMethods  []string
	CORSAllowHeaders  []string
	TrustedProxies    []string
}

// CatalogConfig holds catalog source configuration
type CatalogConfig struct {
	// Source is a file path, an http(s) URL or an s3://bucket/key URI
	Source      string
	LoadOnStart bool
	// Sanitize strips markup from scraped text fields
	Sanitize     bool
	FetchTimeout time.Duration
	MaxSize      int64
}

// StorageConfig holds S3-compatible object storage configuration
type StorageConfig struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// WebhookConfig holds outbound n8n configuration
type WebhookConfig struct {
	Timeout         time.Duration
	MaxResponseSize int64
	// N8NAPIBaseURL is the default base for the executions API
	N8NAPIBaseURL string
}

// NotionConfig holds Notion API configuration
type NotionConfig struct {
	BaseURL string
	Version string
	Timeout time.Duration
}

// SessionConfig holds view session store configuration
type SessionConfig struct {
	Backend string
	TTL     time.Duration
	Redis   RedisConfig
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	Insecure          bool
	MetricsEnabled    bool
	MetricsInterval   time.Duration
	LogsEnabled       bool
	LogsLevel         string
}

// Session backends
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom reads configuration from the given file, or from config.toml on
// the default search paths when file is empty
func LoadFrom(file string) (*Config, error) {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/app")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("CATALOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:      v.GetString("log.level"),
			Format:     v.GetString("log.format"),
			Output:     v.GetString("log.output"),
			TimeFormat: v.GetString("log.time_format"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			ShutdownTimeout:   v.GetDuration("http.shutdown_timeout"),
			MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
			MaxBodySize:       v.GetInt64("http.max_body_size"),
			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
			CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:  v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:  v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
		},
		Catalog: CatalogConfig{
			Source:       v.GetString("catalog.source"),
			LoadOnStart:  v.GetBool("catalog.load_on_start"),
			Sanitize:     v.GetBool("catalog.sanitize"),
			FetchTimeout: v.GetDuration("catalog.fetch_timeout"),
			MaxSize:      v.GetInt64("catalog.max_size"),
		},
		Storage: StorageConfig{
			Endpoint:        v.GetString("storage.endpoint"),
			Region:          v.GetString("storage.region"),
			AccessKeyID:     v.GetString("storage.access_key_id"),
			SecretAccessKey: v.GetString("storage.secret_access_key"),
			UsePathStyle:    v.GetBool("storage.use_path_style"),
		},
		Webhook: WebhookConfig{
			Timeout:         v.GetDuration("webhook.timeout"),
			MaxResponseSize: v.GetInt64("webhook.max_response_size"),
			N8NAPIBaseURL:   v.GetString("webhook.n8n_api_base_url"),
		},
		Notion: NotionConfig{
			BaseURL: v.GetString("notion.base_url"),
			Version: v.GetString("notion.version"),
			Timeout: v.GetDuration("notion.timeout"),
		},
		Session: SessionConfig{
			Backend: v.GetString("session.backend"),
			TTL:     v.GetDuration("session.ttl"),
			Redis: RedisConfig{
				Host:     v.GetString("session.redis.host"),
				Port:     v.GetInt("session.redis.port"),
				Password: v.GetString("session.redis.password"),
				DB:       v.GetInt("session.redis.db"),
			},
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			LogsLevel:         v.GetString("telemetry.logs_level"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setDefaults registers booleans whose zero value is not the default
func setDefaults(v *viper.Viper) {
	v.SetDefault("catalog.load_on_start", true)
	v.SetDefault("catalog.sanitize", true)
	v.SetDefault("storage.use_path_style", true)
	v.SetDefault("telemetry.sampling_ratio", 1.0)
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "coupang-catalog"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}

	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	// WriteTimeout stays 0 unless configured; SSE streams outlive any fixed bound.
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 30 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 10 << 20 // 10MB
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 100
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	// No default origins: cross-origin requests stay blocked until configured.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "X-Request-ID", "Accept", "Origin", "Cache-Control"}
	}

	if cfg.Catalog.Source == "" {
		cfg.Catalog.Source = "data/coupang_products.json"
	}
	if cfg.Catalog.FetchTimeout == 0 {
		cfg.Catalog.FetchTimeout = 30 * time.Second
	}
	if cfg.Catalog.MaxSize == 0 {
		cfg.Catalog.MaxSize = 32 << 20 // 32MB
	}

	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}

	if cfg.Webhook.Timeout == 0 {
		cfg.Webhook.Timeout = 30 * time.Second
	}
	if cfg.Webhook.MaxResponseSize == 0 {
		cfg.Webhook.MaxResponseSize = 1 << 20 // 1MB
	}

	if cfg.Notion.BaseURL == "" {
		cfg.Notion.BaseURL = "https://api.notion.com"
	}
	if cfg.Notion.Version == "" {
		cfg.Notion.Version = "2022-06-28"
	}
	if cfg.Notion.Timeout == 0 {
		cfg.Notion.Timeout = 30 * time.Second
	}

	if cfg.Session.Backend == "" {
		cfg.Session.Backend = SessionBackendMemory
	}
	if cfg.Session.TTL == 0 {
		cfg.Session.TTL = 24 * time.Hour
	}
	if cfg.Session.Redis.Host == "" {
		cfg.Session.Redis.Host = "localhost"
	}
	if cfg.Session.Redis.Port == 0 {
		cfg.Session.Redis.Port = 6379
	}

	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317" // Default gRPC endpoint
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
	if cfg.Telemetry.LogsLevel == "" {
		cfg.Telemetry.LogsLevel = "info"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.HTTP.MaxBodySize < 0 {
		return fmt.Errorf("http.max_body_size cannot be negative")
	}
	if c.HTTP.RateLimitEnabled && c.HTTP.RateLimitRequests <= 0 {
		return fmt.Errorf("http.rate_limit_requests must be positive when rate limiting is enabled")
	}

	if c.Webhook.Timeout < 0 {
		return fmt.Errorf("webhook.timeout cannot be negative")
	}
	if c.Webhook.MaxResponseSize < 0 {
		return fmt.Errorf("webhook.max_response_size cannot be negative")
	}

	switch c.Session.Backend {
	case SessionBackendMemory, SessionBackendRedis:
	default:
		return fmt.Errorf("session.backend must be %q or %q, got %q",
			SessionBackendMemory, SessionBackendRedis, c.Session.Backend)
	}
	if c.Session.TTL < 0 {
		return fmt.Errorf("session.ttl cannot be negative")
	}

	if strings.HasPrefix(c.Catalog.Source, "s3://") && c.Storage.Region == "" {
		return fmt.Errorf("storage.region is required for s3 catalog sources")
	}

	if c.App.Env == "production" {
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// IsProduction reports whether the app runs in production
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
