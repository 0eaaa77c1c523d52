package logging

import (
	"fmt"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/log"
	"go.uber.org/zap/zapcore"
)

// defaultInstrumentationName names the otel logger when Config.Name is empty.
const defaultInstrumentationName = "reqlog"

// newDualCore creates core with stdout/stderr and/or OTEL outputs.
func newDualCore(cfg *Config, otelProvider log.LoggerProvider) (zapcore.Core, error) {
	cores := make([]zapcore.Core, 0, 3)

	for _, out := range []struct {
		enabled bool
		file    *os.File
	}{
		{cfg.Output.Stdout, os.Stdout},
		{cfg.Output.Stderr, os.Stderr},
	} {
		if !out.enabled {
			continue
		}
		encoder, err := NewRedactingEncoder(newEncoder(cfg.Format), cfg.Redaction)
		if err != nil {
			return nil, fmt.Errorf("failed to create redacting encoder: %w", err)
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.Lock(out.file), cfg.Level))
	}

	if cfg.Output.OTEL && otelProvider != nil {
		name := cfg.Name
		if name == "" {
			name = defaultInstrumentationName
		}
		cores = append(cores, otelzap.NewCore(name, otelzap.WithLoggerProvider(otelProvider)))
	}

	if len(cores) == 0 {
		return nil, fmt.Errorf("at least one output must be enabled and available")
	}

	var core zapcore.Core
	if len(cores) == 1 {
		core = cores[0]
	} else {
		core = zapcore.NewTee(cores...)
	}

	// Wrap with sampling if enabled
	core = newSampledCore(core, cfg.Sampling)

	return core, nil
}
