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
	App       AppConfig
	Database  DatabaseConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Monitor   MonitorConfig
	Session   SessionConfig
	Points    PointsConfig
	WebSocket WebSocketConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings. Driver selects the
// backing engine: "sqlite" (Path) or "postgres" (Host/Port/User/...).
type DatabaseConfig struct {
	Driver          string
	Path            string // sqlite file path
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
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
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
}

// MonitorConfig holds print-spool monitor settings
type MonitorConfig struct {
	Enabled              bool
	Path                 string
	Debounce             time.Duration
	HousekeepingInterval time.Duration
	ProcessedCapacity    int
	ProcessedRetain      int
	QueueSize            int
}

// SessionConfig holds scan/receipt session timing settings
type SessionConfig struct {
	MatchWindow         time.Duration
	FormTimeout         time.Duration
	ConfirmationDisplay time.Duration
	CustomerInfoDisplay time.Duration
	ErrorDisplay        time.Duration
}

// PointsConfig holds loyalty points accrual settings
type PointsConfig struct {
	PerDollar int
	Bonus100  int
	Bonus250  int
	Bonus500  int
}

// WebSocketConfig holds websocket transport settings
type WebSocketConfig struct {
	ReadLimit    int64
	WriteTimeout time.Duration
	PingInterval time.Duration
	PongTimeout  time.Duration
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with LOYALTY_ prefix (e.g., LOYALTY_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	// Set config file settings
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	// Enable environment variable override
	v.SetEnvPrefix("LOYALTY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Build config struct
	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			Path:            v.GetString("database.path"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
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
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		Monitor: MonitorConfig{
			Enabled:              v.GetBool("monitor.enabled"),
			Path:                 v.GetString("monitor.path"),
			Debounce:             v.GetDuration("monitor.debounce"),
			HousekeepingInterval: v.GetDuration("monitor.housekeeping_interval"),
			ProcessedCapacity:    v.GetInt("monitor.processed_capacity"),
			ProcessedRetain:      v.GetInt("monitor.processed_retain"),
			QueueSize:            v.GetInt("monitor.queue_size"),
		},
		Session: SessionConfig{
			MatchWindow:         v.GetDuration("session.match_window"),
			FormTimeout:         v.GetDuration("session.form_timeout"),
			ConfirmationDisplay: v.GetDuration("session.confirmation_display"),
			CustomerInfoDisplay: v.GetDuration("session.customer_info_display"),
			ErrorDisplay:        v.GetDuration("session.error_display"),
		},
		Points: PointsConfig{
			PerDollar: v.GetInt("points.per_dollar"),
			Bonus100:  v.GetInt("points.bonus_100"),
			Bonus250:  v.GetInt("points.bonus_250"),
			Bonus500:  v.GetInt("points.bonus_500"),
		},
		WebSocket: WebSocketConfig{
			ReadLimit:    v.GetInt64("websocket.read_limit"),
			WriteTimeout: v.GetDuration("websocket.write_timeout"),
			PingInterval: v.GetDuration("websocket.ping_interval"),
			PongTimeout:  v.GetDuration("websocket.pong_timeout"),
		},
	}

	// Apply defaults for empty values
	applyDefaults(cfg)

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "loyalty-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8765"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "loyalty.db"
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
		cfg.Database.DBName = "loyalty"
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
		cfg.Database.ConnMaxLifetime = 60
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
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	if cfg.Monitor.Path == "" {
		cfg.Monitor.Path = "C:/spool/receipts"
	}
	if cfg.Monitor.Debounce == 0 {
		cfg.Monitor.Debounce = 500 * time.Millisecond
	}
	if cfg.Monitor.HousekeepingInterval == 0 {
		cfg.Monitor.HousekeepingInterval = 5 * time.Second
	}
	if cfg.Monitor.ProcessedCapacity == 0 {
		cfg.Monitor.ProcessedCapacity = 1000
	}
	if cfg.Monitor.ProcessedRetain == 0 {
		cfg.Monitor.ProcessedRetain = 500
	}
	if cfg.Monitor.QueueSize == 0 {
		cfg.Monitor.QueueSize = 64
	}
	if cfg.Session.MatchWindow == 0 {
		cfg.Session.MatchWindow = 30 * time.Second
	}
	if cfg.Session.FormTimeout == 0 {
		cfg.Session.FormTimeout = 2 * time.Minute
	}
	if cfg.Session.ConfirmationDisplay == 0 {
		cfg.Session.ConfirmationDisplay = 5 * time.Second
	}
	if cfg.Session.CustomerInfoDisplay == 0 {
		cfg.Session.CustomerInfoDisplay = 10 * time.Second
	}
	if cfg.Session.ErrorDisplay == 0 {
		cfg.Session.ErrorDisplay = 3 * time.Second
	}
	if cfg.Points.PerDollar == 0 {
		cfg.Points.PerDollar = 1
	}
	if cfg.Points.Bonus100 == 0 {
		cfg.Points.Bonus100 = 10
	}
	if cfg.Points.Bonus250 == 0 {
		cfg.Points.Bonus250 = 25
	}
	if cfg.Points.Bonus500 == 0 {
		cfg.Points.Bonus500 = 50
	}
	if cfg.WebSocket.ReadLimit == 0 {
		cfg.WebSocket.ReadLimit = 64 << 10 // 64KB
	}
	if cfg.WebSocket.WriteTimeout == 0 {
		cfg.WebSocket.WriteTimeout = 10 * time.Second
	}
	if cfg.WebSocket.PingInterval == 0 {
		cfg.WebSocket.PingInterval = 30 * time.Second
	}
	if cfg.WebSocket.PongTimeout == 0 {
		cfg.WebSocket.PongTimeout = 60 * time.Second
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("database.driver must be 'sqlite' or 'postgres', got %q", c.Database.Driver)
	}

	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.Points.PerDollar < 0 {
		return fmt.Errorf("points.per_dollar cannot be negative")
	}
	if c.Monitor.ProcessedRetain > c.Monitor.ProcessedCapacity {
		return fmt.Errorf("monitor.processed_retain (%d) cannot exceed monitor.processed_capacity (%d)",
			c.Monitor.ProcessedRetain, c.Monitor.ProcessedCapacity)
	}

	// Production-specific validations
	if c.App.Env == "production" {
		if c.Database.Driver == "postgres" {
			if c.Database.Password == "" {
				return fmt.Errorf("database.password is required in production")
			}
			if c.Database.SSLMode == "disable" {
				return fmt.Errorf("database.sslmode cannot be 'disable' in production")
			}
		}
		// CORS must not use wildcard with credentials
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	return nil
}

// DSN returns the postgres connection string with properly escaped values
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
