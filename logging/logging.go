// Package logging builds zap loggers from presets or configuration files.
package logging

import (
	"fmt"
	"os"

	"github.com/database64128/regdomain/jsoncfg"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewZapLogger returns a new [*zap.Logger] with the given preset and log level.
//
// The available presets are:
//
//   - "console" (default): Reasonable defaults for running in a console environment.
//   - "console-nocolor": Same as "console", but without color.
//   - "console-notime": Same as "console", but without timestamps.
//   - "systemd": Reasonable defaults for running as a systemd service. Same as "console", but without color and timestamps.
//   - "production": Zap's built-in production preset.
//   - "development": Zap's built-in development preset.
//
// If the preset is not recognized, it is treated as a path to a JSON configuration file.
//
// The log level does not apply to the "production", "development", or custom presets.
func NewZapLogger(preset string, level zapcore.Level) (*zap.Logger, error) {
	switch preset {
	case "console", "":
		return NewProductionConsoleZapLogger(level, false, false, false)
	case "console-nocolor":
		return NewProductionConsoleZapLogger(level, true, false, false)
	case "console-notime":
		return NewProductionConsoleZapLogger(level, false, true, false)
	case "systemd":
		return NewProductionConsoleZapLogger(level, true, true, false)
	case "production":
		return zap.NewProduction()
	case "development":
		return zap.NewDevelopment()
	default:
		return NewZapLoggerFromConfig(preset)
	}
}

// NewZapLoggerFromConfig returns a new [*zap.Logger] built from the JSON configuration file at path.
func NewZapLoggerFromConfig(path string) (*zap.Logger, error) {
	var zc zap.Config
	if err := jsoncfg.Open(path, &zc); err != nil {
		return nil, fmt.Errorf("failed to load zap logger config from %q: %w", path, err)
	}
	return zc.Build()
}

// NewProductionConsoleZapLogger creates a new [*zap.Logger] with reasonable defaults for production console environments.
//
// See [NewProductionConsoleEncoderConfig] for information on the default encoder configuration.
func NewProductionConsoleZapLogger(level zapcore.Level, noColor, noTime, addCaller bool) (*zap.Logger, error) {
	cfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       false,
		DisableCaller:     !addCaller,
		DisableStacktrace: true,
		Encoding:          "console",
		EncoderConfig:     NewProductionConsoleEncoderConfig(noColor, noTime),
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
	}
	return cfg.Build()
}

// NewProductionConsoleEncoderConfig returns an opinionated [zapcore.EncoderConfig] for production console environments.
//
// If noColor is true, the encoder config does not use color.
// If noTime is true, the encoder config does not include timestamps.
func NewProductionConsoleEncoderConfig(noColor, noTime bool) zapcore.EncoderConfig {
	ec := zapcore.EncoderConfig{
		TimeKey:        "T",
		LevelKey:       "L",
		NameKey:        "N",
		CallerKey:      "C",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "M",
		StacktraceKey:  "S",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	if noColor {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	if noTime {
		ec.TimeKey = zapcore.OmitKey
		ec.EncodeTime = nil
	}

	return ec
}

// FileConfig configures a rotating JSON log file.
type FileConfig struct {
	// Filename is the file to write logs to.
	// Backups are kept in the same directory.
	Filename string `json:"filename"`

	// MaxSize is the maximum size in megabytes before the file is rotated.
	// Zero selects lumberjack's default of 100 megabytes.
	MaxSize int `json:"maxSize"`

	// MaxDays is the maximum number of days to retain old files.
	// Zero retains them regardless of age.
	MaxDays int `json:"maxDays"`

	// MaxBackups is the maximum number of old files to retain.
	// Zero retains all of them.
	MaxBackups int `json:"maxBackups"`

	// Compress controls whether rotated files are gzipped.
	Compress bool `json:"compress"`
}

// TeeFile returns a logger that writes to both the core of logger and
// a rotating JSON file, and a function that closes the file.
//
// Entries below level are not written to the file.
func (fc FileConfig) TeeFile(logger *zap.Logger, level zapcore.Level) (*zap.Logger, func() error, error) {
	if fc.Filename == "" {
		return nil, nil, fmt.Errorf("empty log file name")
	}
	if fc.MaxSize < 0 || fc.MaxDays < 0 || fc.MaxBackups < 0 {
		return nil, nil, fmt.Errorf("negative rotation limit in log file config for %q", fc.Filename)
	}

	if err := checkFileWritable(fc.Filename); err != nil {
		return nil, nil, err
	}

	lj := &lumberjack.Logger{
		Filename:   fc.Filename,
		MaxSize:    fc.MaxSize,
		MaxAge:     fc.MaxDays,
		MaxBackups: fc.MaxBackups,
		LocalTime:  false,
		Compress:   fc.Compress,
	}

	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(lj),
		level,
	)

	teed := logger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, fileCore)
	}))
	return teed, lj.Close, nil
}

// checkFileWritable reports whether the log file can be created or appended to.
// lumberjack only opens the file on first write.
func checkFileWritable(name string) error {
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	return f.Close()
}
