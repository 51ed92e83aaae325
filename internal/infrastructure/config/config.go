package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Log        LogConfig
	HTTP       HTTPConfig
	Channel    ChannelConfig
	Resilience ResilienceConfig
	Scheduler  SchedulerConfig
	Telemetry  TelemetryConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// ChannelConfig holds sales channel simulation settings
type ChannelConfig struct {
	// FailureRate is the base probability (0.0-1.0) of a simulated channel failure
	FailureRate float64
	// AmazonOrders / FlipkartOrders / WebsiteOrders are the number of orders
	// each channel returns per fetch
	AmazonOrders   int
	FlipkartOrders int
	WebsiteOrders  int
}

// ResilienceConfig holds the per-channel resilience decorator settings
type ResilienceConfig struct {
	RetryAttempts    int           // max fetch attempts per call
	RetryBackoff     time.Duration // base backoff between attempts (doubles each retry)
	FailureThreshold float64       // breaker opens at this failure ratio within the window
	MinimumCalls     int           // minimum calls in the window before the breaker can open
	Window           time.Duration // rolling failure-count window
	CooldownPeriod   time.Duration // how long the breaker stays OPEN before probing
	HalfOpenProbes   int           // probe calls allowed in HALF-OPEN
	MaxConcurrent    int           // bulkhead: max in-flight calls per channel
}

// SchedulerConfig holds the channel sync trigger settings
type SchedulerConfig struct {
	Enabled      bool
	SyncInterval time.Duration
}

// TelemetryConfig holds metrics configuration
type TelemetryConfig struct {
	Enabled           bool
	ServiceName       string
	CollectorEndpoint string
	Insecure          bool
	ExportInterval    time.Duration
}

// Load loads configuration from TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with CRM_ prefix (e.g. CRM_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
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
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("CRM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:  v.GetDuration("http.read_timeout"),
			WriteTimeout: v.GetDuration("http.write_timeout"),
			IdleTimeout:  v.GetDuration("http.idle_timeout"),
		},
		Channel: ChannelConfig{
			FailureRate:    v.GetFloat64("channel.failure_rate"),
			AmazonOrders:   v.GetInt("channel.amazon_orders"),
			FlipkartOrders: v.GetInt("channel.flipkart_orders"),
			WebsiteOrders:  v.GetInt("channel.website_orders"),
		},
		Resilience: ResilienceConfig{
			RetryAttempts:    v.GetInt("resilience.retry_attempts"),
			RetryBackoff:     v.GetDuration("resilience.retry_backoff"),
			FailureThreshold: v.GetFloat64("resilience.failure_threshold"),
			MinimumCalls:     v.GetInt("resilience.minimum_calls"),
			Window:           v.GetDuration("resilience.window"),
			CooldownPeriod:   v.GetDuration("resilience.cooldown_period"),
			HalfOpenProbes:   v.GetInt("resilience.half_open_probes"),
			MaxConcurrent:    v.GetInt("resilience.max_concurrent"),
		},
		Scheduler: SchedulerConfig{
			Enabled:      v.GetBool("scheduler.enabled"),
			SyncInterval: v.GetDuration("scheduler.sync_interval"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			ServiceName:       v.GetString("telemetry.service_name"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			Insecure:          v.GetBool("telemetry.insecure"),
			ExportInterval:    v.GetDuration("telemetry.export_interval"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults fills in defaults for values not set via file or environment
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "omnicrm"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
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
		cfg.Database.DBName = "omnicrm"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 30
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 10
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		if cfg.App.Env == "production" {
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
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.Channel.FailureRate == 0 {
		cfg.Channel.FailureRate = 0.1
	}
	if cfg.Channel.AmazonOrders == 0 {
		cfg.Channel.AmazonOrders = 3
	}
	if cfg.Channel.FlipkartOrders == 0 {
		cfg.Channel.FlipkartOrders = 3
	}
	if cfg.Channel.WebsiteOrders == 0 {
		cfg.Channel.WebsiteOrders = 2
	}
	if cfg.Resilience.RetryAttempts == 0 {
		cfg.Resilience.RetryAttempts = 3
	}
	if cfg.Resilience.RetryBackoff == 0 {
		cfg.Resilience.RetryBackoff = 100 * time.Millisecond
	}
	if cfg.Resilience.FailureThreshold == 0 {
		cfg.Resilience.FailureThreshold = 0.5
	}
	if cfg.Resilience.MinimumCalls == 0 {
		cfg.Resilience.MinimumCalls = 4
	}
	if cfg.Resilience.Window == 0 {
		cfg.Resilience.Window = time.Minute
	}
	if cfg.Resilience.CooldownPeriod == 0 {
		cfg.Resilience.CooldownPeriod = 30 * time.Second
	}
	if cfg.Resilience.HalfOpenProbes == 0 {
		cfg.Resilience.HalfOpenProbes = 2
	}
	if cfg.Resilience.MaxConcurrent == 0 {
		cfg.Resilience.MaxConcurrent = 5
	}
	if cfg.Scheduler.SyncInterval == 0 {
		cfg.Scheduler.SyncInterval = 5 * time.Minute
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.ExportInterval == 0 {
		cfg.Telemetry.ExportInterval = 60 * time.Second
	}
}

// Validate checks configuration invariants
func (c *Config) Validate() error {
	if c.Channel.FailureRate < 0 || c.Channel.FailureRate > 1 {
		return fmt.Errorf("channel.failure_rate must be in [0, 1], got %v", c.Channel.FailureRate)
	}
	if c.Resilience.FailureThreshold <= 0 || c.Resilience.FailureThreshold > 1 {
		return fmt.Errorf("resilience.failure_threshold must be in (0, 1], got %v", c.Resilience.FailureThreshold)
	}
	if c.Resilience.RetryAttempts < 1 {
		return fmt.Errorf("resilience.retry_attempts must be at least 1, got %d", c.Resilience.RetryAttempts)
	}
	if c.Resilience.MaxConcurrent < 1 {
		return fmt.Errorf("resilience.max_concurrent must be at least 1, got %d", c.Resilience.MaxConcurrent)
	}
	if c.Scheduler.SyncInterval < time.Second {
		return fmt.Errorf("scheduler.sync_interval must be at least 1s, got %v", c.Scheduler.SyncInterval)
	}
	return nil
}

// DSN returns the PostgreSQL connection string
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, url.QueryEscape(d.Password), d.DBName, d.SSLMode,
	)
}

// IsProduction returns true if the app runs in production mode
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
