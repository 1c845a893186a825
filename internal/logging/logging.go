// Package logging provides structured logging setup for pagecomments.
package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var encoderCfg = zapcore.EncoderConfig{
	MessageKey: "msg",
	NameKey:    "name",

	LevelKey:    "level",
	EncodeLevel: zapcore.CapitalLevelEncoder,

	CallerKey:    "caller",
	EncodeCaller: zapcore.ShortCallerEncoder,

	TimeKey:    "time",
	EncodeTime: zapcore.RFC3339TimeEncoder,

	EncodeDuration: zapcore.StringDurationEncoder,
}

// New builds the application logger.
// Dev mode uses human-readable console output at debug level; prod uses JSON at info level.
func New(devMode bool) *zap.Logger {
	if devMode {
		return NewWithWriter(os.Stdout, zapcore.DebugLevel, true)
	}
	return NewWithWriter(os.Stdout, zapcore.InfoLevel, false)
}

// NewWithWriter builds a logger writing to w.
func NewWithWriter(w io.Writer, level zapcore.Level, console bool) *zap.Logger {
	var enc zapcore.Encoder
	if console {
		cfg := encoderCfg
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(cfg)
	} else {
		enc = zapcore.NewJSONEncoder(encoderCfg)
	}
	return zap.New(
		zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(w)), level),
		zap.AddCaller(),
	)
}
