package config

import (
	"time"
)

// Handler types understood by the route-table builder.
const (
	HandlerLogging      = "logging"
	HandlerRequestID    = "request_id"
	HandlerRecovery     = "recovery"
	HandlerTracing      = "tracing"
	HandlerMetrics      = "metrics"
	HandlerRateLimit    = "rate_limit"
	HandlerParseBody    = "parse_body"
	HandlerStatic       = "static"
	HandlerText         = "text"
	HandlerTemplate     = "template"
	HandlerHTMLTemplate = "html_template"
	HandlerSetAttribute = "set_attribute"
	HandlerHitCounter   = "hit_counter"
	HandlerCountHits    = "count_hits"
)

// Counter backends.
const (
	CounterMemory = "memory"
	CounterRedis  = "redis"
)

// Default values.
const (
	DefaultAddress         = ":8080"
	DefaultMetricsAddress  = ":9090"
	DefaultMetricsPath     = "/metrics"
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultShutdownTimeout = 15 * time.Second
)

// Config is the root of the route-table configuration file.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Tracing    TracingConfig    `yaml:"tracing"`
	Counter    CounterConfig    `yaml:"counter"`
	RateLimit  *RateLimitConfig `yaml:"rateLimit,omitempty"`
	Middleware []HandlerConfig  `yaml:"middleware,omitempty"`
	Routes     []RouteConfig    `yaml:"routes"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Address         string   `yaml:"address"`
	ReadTimeout     Duration `yaml:"readTimeout,omitempty"`
	WriteTimeout    Duration `yaml:"writeTimeout,omitempty"`
	ShutdownTimeout Duration `yaml:"shutdownTimeout,omitempty"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output,omitempty"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Address   string `yaml:"address,omitempty"`
	Path      string `yaml:"path,omitempty"`
	Namespace string `yaml:"namespace,omitempty"`
}

// TracingConfig configures OpenTelemetry. A zero SamplingRate samples
// every trace; disable tracing to record none.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	ServiceName  string  `yaml:"serviceName,omitempty"`
	OTLPEndpoint string  `yaml:"otlpEndpoint,omitempty"`
	SamplingRate float64 `yaml:"samplingRate,omitempty"`
}

// CounterConfig selects the hit counter backend.
type CounterConfig struct {
	Backend string       `yaml:"backend"`
	Start   int64        `yaml:"start,omitempty"`
	Redis   *RedisConfig `yaml:"redis,omitempty"`
}

// RedisConfig configures the Redis hit counter.
type RedisConfig struct {
	Address     string   `yaml:"address"`
	Password    string   `yaml:"password,omitempty"`
	DB          int      `yaml:"db,omitempty"`
	Key         string   `yaml:"key,omitempty"`
	DialTimeout Duration `yaml:"dialTimeout,omitempty"`

	// BreakerThreshold is the number of requests in a window after which
	// a failure ratio of one half opens the circuit.
	BreakerThreshold int      `yaml:"breakerThreshold,omitempty"`
	BreakerTimeout   Duration `yaml:"breakerTimeout,omitempty"`
}

// RateLimitConfig configures the shared token bucket used by
// rate_limit handlers.
type RateLimitConfig struct {
	Enabled           bool     `yaml:"enabled"`
	RequestsPerSecond float64  `yaml:"requestsPerSecond"`
	Burst             int      `yaml:"burst"`
	KeyHeader         string   `yaml:"keyHeader,omitempty"`
	ClientTTL         Duration `yaml:"clientTTL,omitempty"`
}

// RouteConfig is one entry of the ordered route table. Exactly one of
// Path, Prefix, or Regex selects the pattern. A Prefix route with
// nested Routes mounts a sub-router whose patterns match the remainder.
type RouteConfig struct {
	Name     string          `yaml:"name,omitempty"`
	Methods  []string        `yaml:"methods,omitempty"`
	Path     string          `yaml:"path,omitempty"`
	Prefix   string          `yaml:"prefix,omitempty"`
	Regex    string          `yaml:"regex,omitempty"`
	Handlers []HandlerConfig `yaml:"handlers,omitempty"`
	Routes   []RouteConfig   `yaml:"routes,omitempty"`
}

// IsMount reports whether the route mounts a sub-router.
func (r *RouteConfig) IsMount() bool {
	return r.Prefix != "" && len(r.Routes) > 0
}

// HandlerConfig declares one handler of a chain. Type selects the
// handler; the remaining fields are its arguments.
type HandlerConfig struct {
	Type     string `yaml:"type"`
	Name     string `yaml:"name,omitempty"`
	Status   int    `yaml:"status,omitempty"`
	Body     string `yaml:"body,omitempty"`
	Format   string `yaml:"format,omitempty"`
	Root     string `yaml:"root,omitempty"`
	Key      string `yaml:"key,omitempty"`
	Value    string `yaml:"value,omitempty"`
	MaxBytes int64  `yaml:"maxBytes,omitempty"`
}

// DefaultConfig returns a configuration with defaults and no routes.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address:         DefaultAddress,
			ReadTimeout:     Duration(DefaultReadTimeout),
			WriteTimeout:    Duration(DefaultWriteTimeout),
			ShutdownTimeout: Duration(DefaultShutdownTimeout),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Address: DefaultMetricsAddress,
			Path:    DefaultMetricsPath,
		},
		Tracing: TracingConfig{
			SamplingRate: 1,
		},
		Counter: CounterConfig{
			Backend: CounterMemory,
		},
	}
}

// applyDefaults fills zero values from DefaultConfig.
func (c *Config) applyDefaults() {
	d := DefaultConfig()

	if c.Server.Address == "" {
		c.Server.Address = d.Server.Address
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = d.Server.ReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = d.Server.WriteTimeout
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = d.Server.ShutdownTimeout
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = d.Logging.Format
	}
	if c.Logging.Output == "" {
		c.Logging.Output = d.Logging.Output
	}
	if c.Metrics.Address == "" {
		c.Metrics.Address = d.Metrics.Address
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = d.Metrics.Path
	}
	if c.Counter.Backend == "" {
		c.Counter.Backend = d.Counter.Backend
	}
	if c.Tracing.SamplingRate == 0 {
		c.Tracing.SamplingRate = d.Tracing.SamplingRate
	}
}
