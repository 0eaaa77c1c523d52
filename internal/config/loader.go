// Package config loads layered service configuration with koanf.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	maxConfigFileSize = 1024 * 1024 // 1MB
)

// ErrInsecureFile is returned for config files writable by group or others.
var ErrInsecureFile = errors.New("insecure config file permissions")

// Load fills target from layered sources. target must be a pointer to a
// koanf-tagged struct that already holds the defaults.
//
// Precedence (highest to lowest):
//  1. Environment variables starting with prefix
//  2. YAML file at path (skipped when path is empty)
//  3. Values already in target
//
// # Environment Variable Mapping
//
// The prefix is stripped, the name is lower-cased and the first underscore
// separates section from field. A double underscore marks a deeper level:
//
//	REQLOGD_SERVER_PORT                   -> server.port
//	REQLOGD_LOGGING_LEVEL                 -> logging.level
//	REQLOGD_REQLOG_REQUEST_ID__GENERATOR  -> reqlog.request_id.generator
//	REQLOGD_REQLOG_EXCLUDES=req,res       -> reqlog.excludes [req res]
//
// Comma-separated values decode into slice fields.
//
// # Security Considerations
//
// Files writable by group or others are rejected, as are files over 1MB. The
// file is opened once and validated through the open descriptor.
func Load(path, prefix string, target any) error {
	k := koanf.New(".")

	if path != "" {
		content, err := readConfigFile(path)
		if err != nil {
			return err
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(prefix, ".", EnvKey(prefix)), nil); err != nil {
		return fmt.Errorf("failed to load environment variables: %w", err)
	}

	err := k.UnmarshalWithConf("", target, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
				mapstructure.TextUnmarshallerHookFunc(),
			),
			Result:           target,
			TagName:          "koanf",
			WeaklyTypedInput: true,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return nil
}

// EnvKey returns the koanf key transformer for env vars under prefix.
func EnvKey(prefix string) func(string) string {
	return func(s string) string {
		lower := strings.ToLower(strings.TrimPrefix(s, prefix))

		// Strategy: split on first underscore only (section.field_name pattern)
		parts := strings.SplitN(lower, "_", 2)
		if len(parts) == 1 {
			return lower
		}
		return parts[0] + "." + strings.ReplaceAll(parts[1], "__", ".")
	}
}

func readConfigFile(path string) ([]byte, error) {
	// Open file once and validate using file descriptor to avoid TOCTOU race
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if err := validateConfigFileProperties(info); err != nil {
		return nil, fmt.Errorf("config file validation failed: %w", err)
	}

	content, err := io.ReadAll(io.LimitReader(f, maxConfigFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if len(content) > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large (max %d bytes)", maxConfigFileSize)
	}
	return content, nil
}

// validateConfigFileProperties checks file permissions and size.
// Takes FileInfo from an already-opened file descriptor to avoid TOCTOU race.
func validateConfigFileProperties(info os.FileInfo) error {
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", info.Name())
	}

	// Skip on Windows (different permission model)
	if runtime.GOOS != "windows" {
		if perm := info.Mode().Perm(); perm&0o022 != 0 {
			return fmt.Errorf("%w: %v (must not be group or world writable)", ErrInsecureFile, perm)
		}
	}

	if info.Size() > maxConfigFileSize {
		return fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	return nil
}
