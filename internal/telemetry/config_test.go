package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/reqlog/internal/config"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, "localhost:4317", cfg.Endpoint)
	assert.Equal(t, ProtocolGRPC, cfg.Protocol)
	assert.Equal(t, "reqlogd", cfg.ServiceName)
	assert.True(t, cfg.Insecure)
	assert.Equal(t, 1.0, cfg.Sampling.Rate)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 15*time.Second, cfg.Metrics.ExportInterval.Duration())
	assert.Equal(t, 5*time.Second, cfg.Shutdown.Timeout.Duration())
}

func TestConfig_Validate(t *testing.T) {
	enabled := func(mutate func(*Config)) *Config {
		cfg := NewDefaultConfig()
		cfg.Enabled = true
		if mutate != nil {
			mutate(cfg)
		}
		return cfg
	}

	tests := []struct {
		name   string
		config *Config
		errMsg string
	}{
		{name: "valid default config", config: NewDefaultConfig()},
		{name: "disabled config skips validation", config: &Config{}},
		{name: "enabled defaults", config: enabled(nil)},
		{
			name:   "missing endpoint",
			config: enabled(func(c *Config) { c.Endpoint = "" }),
			errMsg: "endpoint is required",
		},
		{
			name:   "unknown protocol",
			config: enabled(func(c *Config) { c.Protocol = "udp" }),
			errMsg: "protocol must be",
		},
		{
			name:   "http protocol",
			config: enabled(func(c *Config) { c.Protocol = ProtocolHTTP; c.Endpoint = "http://localhost:4318" }),
		},
		{
			name:   "missing service name",
			config: enabled(func(c *Config) { c.ServiceName = "" }),
			errMsg: "service_name is required",
		},
		{
			name:   "missing service version",
			config: enabled(func(c *Config) { c.ServiceVersion = "" }),
			errMsg: "service_version is required",
		},
		{
			name:   "sampling rate too low",
			config: enabled(func(c *Config) { c.Sampling.Rate = -0.1 }),
			errMsg: "sampling.rate must be between 0 and 1",
		},
		{
			name:   "sampling rate too high",
			config: enabled(func(c *Config) { c.Sampling.Rate = 1.1 }),
			errMsg: "sampling.rate must be between 0 and 1",
		},
		{
			name:   "invalid metrics export interval",
			config: enabled(func(c *Config) { c.Metrics.ExportInterval = 0 }),
			errMsg: "metrics.export_interval must be positive",
		},
		{
			name:   "export interval ignored when metrics disabled",
			config: enabled(func(c *Config) { c.Metrics = MetricsConfig{} }),
		},
		{
			name:   "invalid shutdown timeout",
			config: enabled(func(c *Config) { c.Shutdown.Timeout = config.Duration(0) }),
			errMsg: "shutdown.timeout must be positive",
		},
		{
			name: "remote endpoint with TLS",
			config: enabled(func(c *Config) {
				c.Endpoint = "collector.prod:4317"
				c.Insecure = false
				c.TLSSkipVerify = true
			}),
		},
		{
			name:   "insecure not allowed for remote endpoint",
			config: enabled(func(c *Config) { c.Endpoint = "collector.prod:4317" }),
			errMsg: "insecure connections to remote endpoints are not allowed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestConfig_IsLocalEndpoint(t *testing.T) {
	tests := []struct {
		endpoint string
		isLocal  bool
	}{
		{"localhost:4317", true},
		{"localhost", true},
		{"http://localhost:4318", true},
		{"127.0.0.1:4317", true},
		{"127.0.1.1:4317", true},
		{"[::1]:4317", true},
		{"::1", true},
		{"collector.prod:4317", false},
		{"https://otel.example.com:4318", false},
		{"10.0.0.1:4317", false},
	}

	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			cfg := &Config{Endpoint: tt.endpoint}
			assert.Equal(t, tt.isLocal, cfg.isLocalEndpoint())
		})
	}
}
