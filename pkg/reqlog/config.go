package reqlog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/reqlog/pkg/logging"
	"github.com/fyrsmithlabs/reqlog/pkg/reqlog/format"
)

// ErrInvalidConfig is wrapped by every configuration error.
var ErrInvalidConfig = errors.New("invalid reqlog config")

// Request id generators.
const (
	GeneratorUUID = "uuid"
	GeneratorULID = "ulid"
)

const (
	// DefaultName names the default sink.
	DefaultName = "http"
	// DefaultRequestIDField is the correlation field on the child logger.
	DefaultRequestIDField = "req_id"
	// DefaultBodyLimit bounds request body capture.
	DefaultBodyLimit = 64 << 10
)

// Config holds middleware configuration.
type Config struct {
	Name                 string          `koanf:"name"`
	Format               string          `koanf:"format"`
	ParseUA              bool            `koanf:"parse_ua"`
	Immediate            bool            `koanf:"immediate"`
	Excludes             []string        `koanf:"excludes"`
	Obfuscate            []string        `koanf:"obfuscate"`
	ObfuscatePlaceholder string          `koanf:"obfuscate_placeholder"`
	SkipPaths            []string        `koanf:"skip_paths"`
	RequestID            RequestIDConfig `koanf:"request_id"`
	Body                 BodyConfig      `koanf:"body"`
}

// RequestIDConfig controls request id generation.
type RequestIDConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Generator string `koanf:"generator"`
	// Header, when set, echoes the id in this response header.
	Header string `koanf:"header"`
	Field  string `koanf:"field"`
}

// BodyConfig controls request body capture.
type BodyConfig struct {
	Enabled  bool  `koanf:"enabled"`
	MaxBytes int64 `koanf:"max_bytes"`
}

// NewDefaultConfig returns config with defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Name:                 DefaultName,
		Format:               format.DefaultTemplate,
		ParseUA:              true,
		ObfuscatePlaceholder: logging.DefaultPlaceholder,
		RequestID: RequestIDConfig{
			Enabled:   true,
			Generator: GeneratorUUID,
			Field:     DefaultRequestIDField,
		},
		Body: BodyConfig{
			Enabled:  true,
			MaxBytes: DefaultBodyLimit,
		},
	}
}

// Validate checks config for errors.
func (c *Config) Validate() error {
	if c.Format == "" {
		return fmt.Errorf("%w: format cannot be empty", ErrInvalidConfig)
	}
	if len(c.Obfuscate) > 0 && c.ObfuscatePlaceholder == "" {
		return fmt.Errorf("%w: obfuscate_placeholder cannot be empty when obfuscate is set", ErrInvalidConfig)
	}
	for _, p := range c.Obfuscate {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("%w: obfuscate paths cannot be empty", ErrInvalidConfig)
		}
	}
	if c.RequestID.Enabled {
		switch strings.ToLower(c.RequestID.Generator) {
		case "", GeneratorUUID, GeneratorULID:
		default:
			return fmt.Errorf("%w: unknown request_id.generator %q (want %s or %s)",
				ErrInvalidConfig, c.RequestID.Generator, GeneratorUUID, GeneratorULID)
		}
		if c.RequestID.Field == "" {
			return fmt.Errorf("%w: request_id.field cannot be empty", ErrInvalidConfig)
		}
	}
	if c.Body.MaxBytes < 0 {
		return fmt.Errorf("%w: body.max_bytes must be >= 0, got %d", ErrInvalidConfig, c.Body.MaxBytes)
	}
	return nil
}
