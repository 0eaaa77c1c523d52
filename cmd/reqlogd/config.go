package main

import (
	"errors"
	"fmt"

	"github.com/fyrsmithlabs/reqlog/internal/config"
	httpserver "github.com/fyrsmithlabs/reqlog/internal/http"
	"github.com/fyrsmithlabs/reqlog/internal/telemetry"
	"github.com/fyrsmithlabs/reqlog/pkg/logging"
	"github.com/fyrsmithlabs/reqlog/pkg/reqlog"
)

const envPrefix = "REQLOGD_"

// AppConfig is the reqlogd configuration file layout.
type AppConfig struct {
	Server    httpserver.Config `koanf:"server"`
	Logging   logging.Config    `koanf:"logging"`
	Reqlog    reqlog.Config     `koanf:"reqlog"`
	Telemetry telemetry.Config  `koanf:"telemetry"`
}

func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Server:    *httpserver.NewDefaultConfig(),
		Logging:   *logging.NewDefaultConfig(),
		Reqlog:    *reqlog.NewDefaultConfig(),
		Telemetry: *telemetry.NewDefaultConfig(),
	}
}

// loadConfig layers path and REQLOGD_* variables over the defaults.
func loadConfig(path string) (*AppConfig, error) {
	cfg := defaultAppConfig()
	if err := config.Load(path, envPrefix, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every section and reports all failures.
func (c *AppConfig) Validate() error {
	var errs []error
	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("server: %w", err))
	}
	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}
	if err := c.Reqlog.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("reqlog: %w", err))
	}
	if err := c.Telemetry.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("telemetry: %w", err))
	}
	return errors.Join(errs...)
}
