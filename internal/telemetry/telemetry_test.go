package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fyrsmithlabs/contextrank/internal/config"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"disabled defaults", func(*Config) {}, ""},
		{"disabled ignores bad values", func(c *Config) { c.Protocol = "udp"; c.SamplingRate = 3 }, ""},
		{"enabled local grpc", func(c *Config) { c.Enabled = true }, ""},
		{"enabled local http", func(c *Config) { c.Enabled = true; c.Protocol = ProtocolHTTP; c.Endpoint = "http://127.0.0.1:4318" }, ""},
		{"missing endpoint", func(c *Config) { c.Enabled = true; c.Endpoint = "" }, "endpoint is required"},
		{"missing service", func(c *Config) { c.Enabled = true; c.ServiceName = "" }, "service_name"},
		{"bad protocol", func(c *Config) { c.Enabled = true; c.Protocol = "udp" }, "protocol must be"},
		{"insecure remote", func(c *Config) { c.Enabled = true; c.Endpoint = "otel.example.com:4317" }, "insecure export"},
		{"secure remote", func(c *Config) { c.Enabled = true; c.Insecure = false; c.Endpoint = "otel.example.com:4317" }, ""},
		{"sampling", func(c *Config) { c.Enabled = true; c.SamplingRate = -0.5 }, "sampling rate"},
		{"interval", func(c *Config) { c.Enabled = true; c.ExportInterval = 0 }, "export interval"},
		{"shutdown", func(c *Config) { c.Enabled = true; c.ShutdownTimeout = 0 }, "shutdown timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestIsLocalEndpoint(t *testing.T) {
	tests := map[string]bool{
		"localhost:4317":        true,
		"127.0.0.1:4317":        true,
		"[::1]:4317":            true,
		"http://localhost:4318": true,
		"10.0.0.5:4317":         false,
		"collector:4317":        false,
		"https://otel.io":       false,
	}
	for endpoint, want := range tests {
		assert.Equal(t, want, isLocalEndpoint(endpoint), endpoint)
	}
}

func TestFromSettings(t *testing.T) {
	s := config.Default().Telemetry
	s.Enabled = true
	s.Protocol = ProtocolHTTP
	s.Endpoint = "localhost:4318"
	s.SamplingRate = 0.5

	cfg := FromSettings(s, "1.2.3")
	assert.True(t, cfg.Enabled)
	assert.Equal(t, ProtocolHTTP, cfg.Protocol)
	assert.Equal(t, "localhost:4318", cfg.Endpoint)
	assert.Equal(t, 0.5, cfg.SamplingRate)
	assert.Equal(t, "1.2.3", cfg.ServiceVersion)
	assert.Equal(t, 15*time.Second, cfg.ExportInterval)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "dev", FromSettings(s, "").ServiceVersion)
}

func TestNew_Disabled(t *testing.T) {
	tel, err := New(context.Background(), NewDefaultConfig())
	require.NoError(t, err)

	assert.False(t, tel.Enabled())
	assert.False(t, tel.Degraded())
	assert.NotNil(t, tel.Tracer("test"))
	assert.NotNil(t, tel.Meter("test"))
	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Enabled = true
	cfg.Protocol = "udp"

	_, err := New(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid telemetry config")
}

func TestNew_EnabledWithoutCollector(t *testing.T) {
	// Exporters connect lazily, so a missing collector does not fail startup.
	for _, protocol := range []string{ProtocolGRPC, ProtocolHTTP} {
		t.Run(protocol, func(t *testing.T) {
			cfg := NewDefaultConfig()
			cfg.Enabled = true
			cfg.Protocol = protocol
			cfg.Endpoint = "127.0.0.1:1"

			tel, err := New(context.Background(), cfg)
			require.NoError(t, err)
			assert.True(t, tel.Enabled())

			ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
			defer cancel()
			_ = tel.Shutdown(ctx)
		})
	}
}

func TestNilTelemetry(t *testing.T) {
	var tel *Telemetry
	assert.False(t, tel.Enabled())
	assert.False(t, tel.Degraded())
	assert.Nil(t, tel.Problems())
	assert.NotNil(t, tel.Tracer("test"))
	assert.NotNil(t, tel.Meter("test"))
	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestSetDegraded(t *testing.T) {
	tel := &Telemetry{config: NewDefaultConfig()}
	tel.setDegraded(assert.AnError)
	assert.True(t, tel.Degraded())
	assert.Equal(t, []error{assert.AnError}, tel.Problems())
}

func TestNewSampler(t *testing.T) {
	assert.Contains(t, newSampler(1).Description(), "AlwaysOnSampler")
	assert.Contains(t, newSampler(0).Description(), "AlwaysOffSampler")
	assert.Contains(t, newSampler(0.25).Description(), "TraceIDRatioBased")
}

func TestTestTelemetry(t *testing.T) {
	tel := NewTestTelemetry()
	ctx := context.Background()

	_, span := tel.Tracer("test").Start(ctx, "rank")
	span.SetAttributes(
		attribute.String("rank.language", "en"),
		attribute.Int("rank.sentences", 3),
	)
	span.End()

	tel.AssertSpanExists(t, "rank")
	tel.AssertSpanAttribute(t, "rank", "rank.language", "en")
	tel.AssertSpanAttribute(t, "rank", "rank.sentences", int64(3))
	assert.Nil(t, tel.SpanByName("absent"))

	counter, err := tel.Meter("test").Int64Counter("contextrank.test_total")
	require.NoError(t, err)
	counter.Add(ctx, 2)
	counter.Add(ctx, 3)

	m, ok := Metric(tel.Collect(t), "contextrank.test_total")
	require.True(t, ok)
	assert.Equal(t, int64(5), CounterTotal(m))

	_, ok = Metric(tel.Collect(t), "absent")
	assert.False(t, ok)
}
