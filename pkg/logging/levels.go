package logging

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// TraceLevel is a custom level below Debug for ultra-verbose logging.
// Value: -2 (Debug is -1, Info is 0)
const TraceLevel = zapcore.Level(-2)

// LevelFromString parses a level name, accepting "trace" and "warning" in
// addition to the names zap understands. Matching is case-insensitive.
func LevelFromString(level string) (zapcore.Level, error) {
	name := strings.ToLower(strings.TrimSpace(level))
	switch name {
	case "trace":
		return TraceLevel, nil
	case "warning":
		return zapcore.WarnLevel, nil
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return zapcore.InfoLevel, err
	}
	return l, nil
}

// LevelName is the inverse of LevelFromString.
func LevelName(level zapcore.Level) string {
	if level == TraceLevel {
		return "trace"
	}
	return level.String()
}

func encodeLevel(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(LevelName(level))
}
