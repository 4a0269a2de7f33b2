package logging

import (
	"log"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger writes to two sinks: a coarse console line (stdlib log, one line per
// event) and a detailed structured entry (zap, JSON, full fields). Critical
// configuration failures must reach both so operators see the headline on the
// console and the full context in the file.
type Logger struct {
	detail *zap.Logger
}

var (
	defaultLogger *Logger
	defaultOnce   sync.Once
)

// Default returns a process-wide logger. The detailed sink goes to the file
// named by SQLBRIDGE_DETAIL_LOG, or to stderr when unset.
func Default() *Logger {
	defaultOnce.Do(func() {
		defaultLogger = New(os.Getenv("SQLBRIDGE_DETAIL_LOG"))
	})
	return defaultLogger
}

// New builds a Logger whose detailed sink is a rotating JSON file.
// An empty path sends detailed entries to stderr instead.
func New(detailPath string) *Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var sink zapcore.WriteSyncer
	if detailPath != "" {
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:   detailPath,
			MaxSize:    20, // megabytes
			MaxBackups: 3,
			MaxAge:     14, // days
		})
	} else {
		sink = zapcore.Lock(zapcore.AddSync(logWriter{}))
	}

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), sink, zap.DebugLevel)
	return &Logger{detail: zap.New(core)}
}

type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) {
	log.Print(string(p))
	return len(p), nil
}

// Critical logs a fatal-to-the-operation failure: coarse line plus detailed
// entry carrying the causing error.
func (l *Logger) Critical(msg string, err error, fields ...zap.Field) {
	log.Printf("❌ %s: %v", msg, err)
	l.detail.Error(msg, append(fields, zap.Error(err))...)
}

// Warn logs a recoverable condition to both sinks.
func (l *Logger) Warn(msg string, fields ...zap.Field) {
	log.Printf("⚠️  %s", msg)
	l.detail.Warn(msg, fields...)
}

// Info logs a routine event. Coarse sink stays quiet; detail only.
func (l *Logger) Info(msg string, fields ...zap.Field) {
	l.detail.Info(msg, fields...)
}

// Debug logs diagnostic detail to the detailed sink only.
func (l *Logger) Debug(msg string, fields ...zap.Field) {
	l.detail.Debug(msg, fields...)
}

// Sync flushes the detailed sink. Safe to call at shutdown.
func (l *Logger) Sync() error {
	return l.detail.Sync()
}
