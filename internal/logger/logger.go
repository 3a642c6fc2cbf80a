// Package logger builds the zap logger handed to the generation pipeline.
// There is no package-level logger: callers construct one with New and pass
// it down.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Standard field names for structured logging.
const (
	FieldRunID    = "run_id"
	FieldSource   = "source"
	FieldTemplate = "template"
	FieldFile     = "file"
	FieldCount    = "count"
	FieldError    = "error"
	FieldPath     = "path"
	FieldVersion  = "version"
	FieldWarning  = "warning"
)

// Verbosity levels for the -v flag count.
const (
	VerbosityQuiet = 0 // warnings and errors only
	VerbosityInfo  = 1 // -v: progress per source and unit
	VerbosityDebug = 2 // -vv: every written file
)

type Options struct {
	// JSON selects the production JSON encoder instead of the console one.
	JSON      bool
	Verbosity int
}

// VerbosityToLevel maps a -v flag count to a zap level.
func VerbosityToLevel(verbosity int) zapcore.Level {
	switch {
	case verbosity <= VerbosityQuiet:
		return zapcore.WarnLevel
	case verbosity == VerbosityInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// New builds a logger writing to stderr, so that generated output printed on
// stdout stays clean.
func New(opts Options) (*zap.SugaredLogger, error) {
	level := VerbosityToLevel(opts.Verbosity)

	if opts.JSON {
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(level)
		config.OutputPaths = []string{"stderr"}
		config.ErrorOutputPaths = []string{"stderr"}
		l, err := config.Build()
		if err != nil {
			return nil, err
		}
		return l.Sugar(), nil
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.TimeKey = ""
	encoderConfig.CallerKey = ""
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stderr),
		level,
	)
	return zap.New(core).Sugar(), nil
}

// Nop returns a logger that discards everything.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
