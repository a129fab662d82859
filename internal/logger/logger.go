// Package logger builds the zap logger shared by every component.
package logger

import (
    "os"

    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"
)

// New returns a logger at level ("debug", "info", "warn", "error"; default
// info).  format "console" gives the human readable development encoder,
// anything else JSON on stdout.  service is attached to every entry.
func New(level, format, service string) (*zap.Logger, error) {
    lvl := parseLevel(level)

    var cfg zap.Config
    if format == "console" {
        cfg = zap.NewDevelopmentConfig()
    } else {
        cfg = zap.NewProductionConfig()
        cfg.EncoderConfig.TimeKey = "timestamp"
        cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
        cfg.OutputPaths = []string{"stdout"}
        cfg.ErrorOutputPaths = []string{"stderr"}
    }
    cfg.Level = zap.NewAtomicLevelAt(lvl)

    l, err := cfg.Build()
    if err != nil {
        return nil, err
    }
    if service != "" {
        l = l.With(zap.String("service", service))
    }
    if host, err := os.Hostname(); err == nil && host != "" {
        l = l.With(zap.String("hostname", host))
    }
    return l, nil
}

func parseLevel(s string) zapcore.Level {
    switch s {
    case "debug":
        return zapcore.DebugLevel
    case "warn":
        return zapcore.WarnLevel
    case "error":
        return zapcore.ErrorLevel
    default:
        return zapcore.InfoLevel
    }
}
