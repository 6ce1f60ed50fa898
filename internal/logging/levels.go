package logging

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// TraceLevel is a custom level below Debug (-2). Used for per-sentence and
// per-feature scoring detail; almost always filtered.
const TraceLevel = zapcore.Level(-2)

// LevelFromString parses a level name. It accepts "trace" and "warning" in
// addition to the zapcore names, case-insensitively.
func LevelFromString(level string) (zapcore.Level, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	switch level {
	case "trace":
		return TraceLevel, nil
	case "warning":
		return zapcore.WarnLevel, nil
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel, err
	}
	return l, nil
}
