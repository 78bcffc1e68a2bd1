package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Log       LogConfig       `mapstructure:"log"`
	Kakao     KakaoConfig     `mapstructure:"kakao"`
	ORS       ORSConfig       `mapstructure:"ors"`
	Routing   RoutingConfig   `mapstructure:"routing"`
	Audit     AuditConfig     `mapstructure:"audit"`
}

type ServerConfig struct {
	Port           int    `mapstructure:"port"`
	ReadTimeout    int    `mapstructure:"read_timeout"`
	WriteTimeout   int    `mapstructure:"write_timeout"`
	RequestTimeout int    `mapstructure:"request_timeout"`
	AllowOrigins   string `mapstructure:"allow_origins"`
	RateLimit      int    `mapstructure:"rate_limit"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// KakaoConfig configures the Kakao Mobility directions and Kakao Local APIs.
type KakaoConfig struct {
	APIKey         string `mapstructure:"api_key"`
	DirectionsBase string `mapstructure:"directions_base"`
	LocalBase      string `mapstructure:"local_base"`
	Timeout        int    `mapstructure:"timeout"`
}

// ORSConfig configures the openrouteservice directions API.
type ORSConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"`
}

type RoutingConfig struct {
	CirclePoints        int `mapstructure:"circle_points"`
	DefaultAvoidRadiusM int `mapstructure:"default_avoid_radius_m"`
	MatchMaxDistanceM   int `mapstructure:"match_max_distance_m"`
}

// AuditConfig selects where route audit entries go: "postgres" or "nats".
type AuditConfig struct {
	Sink        string `mapstructure:"sink"`
	MetricsAddr string `mapstructure:"metrics_addr"` // auditor /metrics listener
}

// KakaoTimeout returns the per-request timeout for Kakao calls.
func (c *Config) KakaoTimeout() time.Duration {
	return time.Duration(c.Kakao.Timeout) * time.Second
}

// ORSTimeout returns the per-request timeout for openrouteservice calls.
func (c *Config) ORSTimeout() time.Duration {
	return time.Duration(c.ORS.Timeout) * time.Second
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.request_timeout", 20)
	v.SetDefault("server.allow_origins", "http://localhost:3000, http://localhost:5173")
	v.SetDefault("server.rate_limit", 120)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "saferoute")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "saferoute")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("kakao.api_key", "")
	v.SetDefault("kakao.directions_base", "https://apis-navi.kakaomobility.com")
	v.SetDefault("kakao.local_base", "https://dapi.kakao.com")
	v.SetDefault("kakao.timeout", 10)
	v.SetDefault("ors.api_key", "")
	v.SetDefault("ors.base_url", "https://api.openrouteservice.org")
	v.SetDefault("ors.timeout", 15)
	v.SetDefault("routing.circle_points", 16)
	v.SetDefault("routing.default_avoid_radius_m", 200)
	v.SetDefault("routing.match_max_distance_m", 500)
	v.SetDefault("audit.sink", "postgres")
	v.SetDefault("audit.metrics_addr", ":9101")

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: SAFEROUTE_KAKAO_API_KEY → kakao.api_key
	v.SetEnvPrefix("SAFEROUTE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
// Missing provider keys are not an error here: the provider is left
// unregistered, requests for it fail with an UpstreamError and /v1/ready
// reports it as not configured.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Database.Host == "" {
		errs = append(errs, "database.host is required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
	}
	if c.Database.User == "" {
		errs = append(errs, "database.user is required")
	}
	if c.Database.DBName == "" {
		errs = append(errs, "database.dbname is required")
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, "server.request_timeout must be positive")
	}
	if c.Kakao.DirectionsBase == "" || c.Kakao.LocalBase == "" {
		errs = append(errs, "kakao.directions_base and kakao.local_base are required")
	}
	if c.Kakao.Timeout <= 0 {
		errs = append(errs, "kakao.timeout must be positive")
	}
	if c.ORS.BaseURL == "" {
		errs = append(errs, "ors.base_url is required")
	}
	if c.ORS.Timeout <= 0 {
		errs = append(errs, "ors.timeout must be positive")
	}
	if c.Routing.CirclePoints < 3 {
		errs = append(errs, fmt.Sprintf("routing.circle_points must be at least 3, got %d", c.Routing.CirclePoints))
	}
	if c.Routing.DefaultAvoidRadiusM <= 0 {
		errs = append(errs, "routing.default_avoid_radius_m must be positive")
	}
	if c.Routing.MatchMaxDistanceM <= 0 {
		errs = append(errs, "routing.match_max_distance_m must be positive")
	}
	switch c.Audit.Sink {
	case "postgres", "nats":
	default:
		errs = append(errs, fmt.Sprintf("audit.sink must be postgres or nats, got %q", c.Audit.Sink))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
