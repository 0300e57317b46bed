// Package log builds the zap logger of the pfy command.
package log

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a logger writing to stderr, stdout being left to reports.
// encoding is "console" or "json".
func New(level, encoding string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	encoder, err := getEncoder(encoding)
	if err != nil {
		return nil, err
	}
	return newLogger(encoder, lvl, zapcore.Lock(os.Stderr), zapcore.Lock(os.Stderr)), nil
}

// newLogger tees entries at or above lvl: errors go to errs, the rest to out.
func newLogger(encoder zapcore.Encoder, lvl zapcore.Level, out, errs zapcore.WriteSyncer) *zap.Logger {
	return zap.New(zapcore.NewTee(
		zapcore.NewCore(
			encoder,
			out,
			zap.LevelEnablerFunc(func(level zapcore.Level) bool {
				return level >= lvl && level < zapcore.ErrorLevel
			}),
		),
		zapcore.NewCore(
			encoder,
			errs,
			zap.LevelEnablerFunc(func(level zapcore.Level) bool {
				return level >= lvl && level >= zapcore.ErrorLevel
			}),
		),
	), zap.AddCaller())
}

func getEncoder(encoding string) (zapcore.Encoder, error) {
	encoderConfig := zapcore.EncoderConfig{
		MessageKey: "message",

		LevelKey:    "level",
		EncodeLevel: zapcore.CapitalLevelEncoder,

		TimeKey:    "time",
		EncodeTime: zapcore.ISO8601TimeEncoder,

		CallerKey:      "caller",
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
	}

	switch encoding {
	case "json":
		return zapcore.NewJSONEncoder(encoderConfig), nil
	case "console", "":
		return zapcore.NewConsoleEncoder(encoderConfig), nil
	default:
		return nil, fmt.Errorf("failed to find encoder: %q", encoding)
	}
}
