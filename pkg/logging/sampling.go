package logging

import (
	"sort"

	"go.uber.org/zap/zapcore"
)

// newSampledCore wraps core with per-level sampling. Each configured level
// below Error gets its own sampler; every other level passes through.
func newSampledCore(core zapcore.Core, cfg SamplingConfig) zapcore.Core {
	if !cfg.Enabled || len(cfg.Levels) == 0 {
		return core
	}

	levels := make([]zapcore.Level, 0, len(cfg.Levels))
	for lvl := range cfg.Levels {
		if lvl < zapcore.ErrorLevel {
			levels = append(levels, lvl)
		}
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })

	sampled := make(map[zapcore.Level]bool, len(levels))
	cores := make([]zapcore.Core, 0, len(levels)+1)
	for _, lvl := range levels {
		lvl := lvl
		sampled[lvl] = true
		lc := cfg.Levels[lvl]
		only := &levelFilterCore{
			Core:    core,
			enabled: func(l zapcore.Level) bool { return l == lvl },
		}
		cores = append(cores, zapcore.NewSamplerWithOptions(only, cfg.Tick, lc.Initial, lc.Thereafter))
	}

	// Unsampled levels, including Error and above
	cores = append(cores, &levelFilterCore{
		Core:    core,
		enabled: func(l zapcore.Level) bool { return !sampled[l] },
	})

	return zapcore.NewTee(cores...)
}

// levelFilterCore restricts an underlying core to the levels accepted by
// enabled.
type levelFilterCore struct {
	zapcore.Core
	enabled func(zapcore.Level) bool
}

func (c *levelFilterCore) Enabled(lvl zapcore.Level) bool {
	return c.enabled(lvl) && c.Core.Enabled(lvl)
}

func (c *levelFilterCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.enabled(e.Level) {
		return ce
	}
	return c.Core.Check(e, ce)
}

// With creates a child logger that preserves level filtering.
func (c *levelFilterCore) With(fields []zapcore.Field) zapcore.Core {
	return &levelFilterCore{
		Core:    c.Core.With(fields),
		enabled: c.enabled,
	}
}
