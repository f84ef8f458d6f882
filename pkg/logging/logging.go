// Package logging constructs the process-wide logger. The logger is built
// once at startup and passed by reference into every component; there is no
// package-level singleton and no reinitialization mid-run.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap logger at the given level. The returned AtomicLevel can
// be adjusted at runtime (used by config hot reload in serve --watch).
func New(level string, development bool) (*zap.Logger, zap.AtomicLevel, error) {
	atom := zap.NewAtomicLevel()
	if err := setLevel(atom, level); err != nil {
		return nil, atom, err
	}

	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	cfg.Level = atom

	logger, err := cfg.Build()
	if err != nil {
		return nil, atom, fmt.Errorf("building logger: %w", err)
	}
	return logger, atom, nil
}

// SetLevel adjusts an atomic level from a config string.
func SetLevel(atom zap.AtomicLevel, level string) error {
	return setLevel(atom, level)
}

func setLevel(atom zap.AtomicLevel, level string) error {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("unknown log level %q", level)
	}
	atom.SetLevel(l)
	return nil
}
