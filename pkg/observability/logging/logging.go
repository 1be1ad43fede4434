// Package logging wraps zap with the small surface the classification
// engine needs: a globally installed structured logger plus printf-style
// helpers for call sites migrating from log.Printf.
package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logger configuration.
type Config struct {
	// Level is one of: debug, info, warn, error, fatal
	Level string
	// Encoding is one of: json, console
	Encoding string
	// Development enables dev-friendly output (stacktraces on error, etc.)
	Development bool
}

// InitLogger builds a zap logger from cfg, installs it as the global
// logger, and redirects the standard library logger to it.
func InitLogger(cfg Config) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}

	zcfg.Level = zap.NewAtomicLevelAt(parseLevel(cfg.Level))

	if strings.EqualFold(strings.TrimSpace(cfg.Encoding), "console") {
		zcfg.Encoding = "console"
	} else {
		zcfg.Encoding = "json"
	}

	zcfg.EncoderConfig.TimeKey = "ts"
	zcfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02T15:04:05")
	zcfg.EncoderConfig.MessageKey = "msg"
	zcfg.EncoderConfig.LevelKey = "level"
	zcfg.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder

	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}

	zap.ReplaceGlobals(logger)
	_ = zap.RedirectStdLog(logger)
	return logger, nil
}

// InitLoggerFromEnv builds a logger from environment variables.
// Supported:
//
//	HAZMAT_LOG_LEVEL       (debug|info|warn|error|fatal) default: info
//	HAZMAT_LOG_ENCODING    (json|console) default: json
//	HAZMAT_LOG_DEVELOPMENT (true|false) default: false
func InitLoggerFromEnv() (*zap.Logger, error) {
	return InitLogger(Config{
		Level:       envOr("HAZMAT_LOG_LEVEL", "info"),
		Encoding:    envOr("HAZMAT_LOG_ENCODING", "json"),
		Development: isTruthy(os.Getenv("HAZMAT_LOG_DEVELOPMENT")),
	})
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func isTruthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// LogEvent emits a structured info-level record with a standard envelope.
// Caller-provided fields take precedence over the envelope.
func LogEvent(event string, fields map[string]interface{}) {
	zfields := make([]zap.Field, 0, len(fields)+1)
	if _, ok := fields["event"]; !ok {
		zfields = append(zfields, zap.String("event", event))
	}
	for k, v := range fields {
		zfields = append(zfields, zap.Any(k, v))
	}
	zap.L().Info(event, zfields...)
}

// Printf-style helpers.
func Infof(format string, args ...interface{})  { zap.S().Infof(format, args...) }
func Warnf(format string, args ...interface{})  { zap.S().Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { zap.S().Errorf(format, args...) }
func Debugf(format string, args ...interface{}) { zap.S().Debugf(format, args...) }
