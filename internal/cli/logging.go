package cli

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/codalotl/podmunge/internal/simplelogger"
)

// newLogger returns a console logger writing to w. Only warnings and errors are shown unless verbose.
func newLogger(w io.Writer, verbose bool) *zap.Logger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	encCfg.CallerKey = ""
	encCfg.StacktraceKey = ""
	encCfg.EncodeLevel = zapcore.LowercaseLevelEncoder

	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), zap.NewAtomicLevelAt(level))
	return zap.New(core)
}

// diagnostics forwards podmunger diagnostics to zap as warnings, and to the PODMUNGE_LOG_FILE log.
type diagnostics struct {
	log  *zap.Logger
	file simplelogger.Logger
}

func newDiagnostics(log *zap.Logger, filename string) diagnostics {
	return diagnostics{
		log:  log.With(zap.String("file", filename)),
		file: simplelogger.Logger{Prefix: "podmunge"},
	}
}

func (d diagnostics) Log(msg string) {
	d.log.Warn(msg)
	d.file.Log(msg)
}
