// Package logger provides logging APIs for the whole tool.
//
// By default only warnings and errors are written, to os.Stderr. SetOutput
// redirects everything, including debug lines, to the passed writer. It is
// intended to be enabled by the --verbose flag.
package logger

import (
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu            sync.Mutex
	defaultLogger = newLogger(os.Stderr, zapcore.WarnLevel)
)

func newLogger(w io.Writer, level zapcore.Level) *zap.SugaredLogger {
	cfg := zapcore.EncoderConfig{
		MessageKey:  "message",
		LevelKey:    "level",
		NameKey:     "name",
		EncodeLevel: zapcore.LowercaseLevelEncoder,
		EncodeName:  zapcore.FullNameEncoder,
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.AddSync(w), level)
	return zap.New(core).Named("bridgen").Sugar()
}

// SetOutput enables debug logging and writes all log lines to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	defaultLogger = newLogger(w, zapcore.DebugLevel)
}

// Reset restores the default state: warnings and errors to os.Stderr.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	defaultLogger = newLogger(os.Stderr, zapcore.WarnLevel)
}

func get() *zap.SugaredLogger {
	mu.Lock()
	defer mu.Unlock()
	return defaultLogger
}

func Println(v ...interface{}) {
	get().Debug(v...)
}

func Printf(format string, v ...interface{}) {
	get().Debugf(format, v...)
}

func Warnf(format string, v ...interface{}) {
	get().Warnf(format, v...)
}

func Errorf(format string, v ...interface{}) {
	get().Errorf(format, v...)
}
