// Package config loads contextrank configuration from defaults, an optional
// YAML file and CONTEXTRANK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds the complete contextrank configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	LexRank   LexRankConfig   `koanf:"lexrank"`
	Ranker    RankerConfig    `koanf:"ranker"`
	Service   ServiceConfig   `koanf:"service"`
	Logging   LoggingConfig   `koanf:"logging"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string   `koanf:"host"`
	Port            int      `koanf:"port"`
	RequestTimeout  Duration `koanf:"request_timeout"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
	// RateLimit is requests per second per client IP; 0 disables.
	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`
	BodyLimit string  `koanf:"body_limit"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LexRankConfig holds sentence ranking parameters.
type LexRankConfig struct {
	Threshold     float64 `koanf:"threshold"`
	Epsilon       float64 `koanf:"epsilon"`
	MaxIterations int     `koanf:"max_iterations"`
	Stem          bool    `koanf:"stem"`
}

// RankerConfig holds context ranking options.
type RankerConfig struct {
	DefaultLanguage string `koanf:"default_language"`
	// Features overrides per-language feature flags by name.
	Features map[string]bool `koanf:"features"`
}

// ServiceConfig bounds the input accepted by the rank service.
type ServiceConfig struct {
	MaxTextBytes int `koanf:"max_text_bytes"`
	MaxContexts  int `koanf:"max_contexts"`
}

// LoggingConfig selects level and encoder.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	Enabled        bool     `koanf:"enabled"`
	Endpoint       string   `koanf:"endpoint"`
	Protocol       string   `koanf:"protocol"`
	ServiceName    string   `koanf:"service_name"`
	Insecure       bool     `koanf:"insecure"`
	SamplingRate   float64  `koanf:"sampling_rate"`
	ExportInterval Duration `koanf:"export_interval"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8420,
			RequestTimeout:  Duration(30 * time.Second),
			ShutdownTimeout: Duration(10 * time.Second),
			RateLimit:       50,
			RateBurst:       100,
			BodyLimit:       "4M",
		},
		LexRank: LexRankConfig{
			Threshold:     0.1,
			Epsilon:       0.1,
			MaxIterations: 100,
		},
		Ranker: RankerConfig{
			DefaultLanguage: "en",
		},
		Service: ServiceConfig{
			MaxTextBytes: 2 << 20,
			MaxContexts:  2000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Telemetry: TelemetryConfig{
			Enabled:        false,
			Endpoint:       "localhost:4317",
			Protocol:       "grpc",
			ServiceName:    "contextrank",
			Insecure:       true,
			SamplingRate:   1.0,
			ExportInterval: Duration(15 * time.Second),
		},
	}
}

// Validate checks every section and returns all problems found.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, errors.New("server.request_timeout must be positive"))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must be positive"))
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("server.rate_limit cannot be negative, got %v", c.Server.RateLimit))
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst < 1 {
		errs = append(errs, errors.New("server.rate_burst must be at least 1 when rate limiting"))
	}

	if c.LexRank.Threshold < 0 || c.LexRank.Threshold >= 1 {
		errs = append(errs, fmt.Errorf("lexrank.threshold must be in [0, 1), got %v", c.LexRank.Threshold))
	}
	if c.LexRank.Epsilon <= 0 {
		errs = append(errs, fmt.Errorf("lexrank.epsilon must be positive, got %v", c.LexRank.Epsilon))
	}
	if c.LexRank.MaxIterations < 1 {
		errs = append(errs, fmt.Errorf("lexrank.max_iterations must be at least 1, got %d", c.LexRank.MaxIterations))
	}

	if c.Service.MaxTextBytes < 1 {
		errs = append(errs, errors.New("service.max_text_bytes must be positive"))
	}
	if c.Service.MaxContexts < 1 {
		errs = append(errs, errors.New("service.max_contexts must be positive"))
	}

	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		errs = append(errs, fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format))
	}

	if c.Telemetry.Enabled {
		if c.Telemetry.Endpoint == "" {
			errs = append(errs, errors.New("telemetry.endpoint required when telemetry is enabled"))
		}
		if c.Telemetry.ServiceName == "" {
			errs = append(errs, errors.New("telemetry.service_name required when telemetry is enabled"))
		}
		if c.Telemetry.Protocol != "grpc" && c.Telemetry.Protocol != "http/protobuf" {
			errs = append(errs, fmt.Errorf("telemetry.protocol must be grpc or http/protobuf, got %q", c.Telemetry.Protocol))
		}
		if c.Telemetry.SamplingRate < 0 || c.Telemetry.SamplingRate > 1 {
			errs = append(errs, fmt.Errorf("telemetry.sampling_rate must be in [0, 1], got %v", c.Telemetry.SamplingRate))
		}
		if c.Telemetry.ExportInterval <= 0 {
			errs = append(errs, errors.New("telemetry.export_interval must be positive"))
		}
	}

	return errors.Join(errs...)
}
