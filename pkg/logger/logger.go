// Package logger builds the logr loggers used by the CLI and embedders,
// backed by zap.
package logger

import (
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls logger construction; zero value is the CLI default.
type Config struct {
	// Verbosity raises the enabled V-level; -v on the command line.
	Verbosity int
	// DisableColor switches the level encoder to plain lowercase.
	DisableColor bool
	// JSON emits structured machine-readable lines instead of console
	// output.
	JSON bool
}

// AddFlags registers the logging flags on a pflag set.
func (c *Config) AddFlags(fs *pflag.FlagSet) {
	fs.CountVarP(&c.Verbosity, "verbose", "v", "raise log verbosity; repeatable")
	fs.BoolVar(&c.DisableColor, "no-color", false, "disable colored log levels")
}

var cliEncoderConfig = zapcore.EncoderConfig{
	TimeKey:        "",
	LevelKey:       "level",
	NameKey:        "logger",
	MessageKey:     "msg",
	LineEnding:     zapcore.DefaultLineEnding,
	EncodeLevel:    zapcore.LowercaseColorLevelEncoder,
	EncodeTime:     zapcore.ISO8601TimeEncoder,
	EncodeDuration: zapcore.SecondsDurationEncoder,
}

var jsonEncoderConfig = zapcore.EncoderConfig{
	TimeKey:        "ts",
	LevelKey:       "level",
	NameKey:        "logger",
	MessageKey:     "msg",
	LineEnding:     zapcore.DefaultLineEnding,
	EncodeLevel:    zapcore.LowercaseLevelEncoder,
	EncodeTime:     zapcore.ISO8601TimeEncoder,
	EncodeDuration: zapcore.SecondsDurationEncoder,
}

// New builds a logr.Logger from the config.
func New(c *Config) (logr.Logger, error) {
	zapCfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(zapcore.Level(-c.Verbosity)),
		Encoding:          "console",
		DisableStacktrace: true,
		DisableCaller:     true,
		EncoderConfig:     cliEncoderConfig,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
	}
	if c.JSON {
		zapCfg.Encoding = "json"
		zapCfg.EncoderConfig = jsonEncoderConfig
	} else if c.DisableColor {
		zapCfg.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
	}

	zapLog, err := zapCfg.Build()
	if err != nil {
		return logr.Logger{}, err
	}
	return zapr.NewLogger(zapLog), nil
}
