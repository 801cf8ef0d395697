package logger

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	serviceName = "default"
	sugar       *zap.SugaredLogger
)

func SetServiceName(newName string) string {
	oldName := serviceName
	serviceName = newName

	return oldName
}

// New собирает production JSON-логгер нужного уровня.
func New(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "log level %q", level)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := cfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}
	return l, nil
}

// Init вешает на логгер поле service и подключает к нему printf-хелперы.
// Возвращает логгер с полем, его и раздаём компонентам.
func Init(l *zap.Logger) *zap.Logger {
	if l == nil {
		sugar = nil
		return nil
	}
	l = l.With(zap.String("service", serviceName))
	sugar = l.Sugar()
	return l
}

func std() *zap.SugaredLogger {
	if sugar == nil {
		panic("logger is not initialized")
	}
	return sugar
}

func Info(format string, args ...interface{}) {
	std().Infof(format, args...)
}

func Error(format string, args ...interface{}) {
	std().Errorf(format, args...)
}

func Fatal(format string, args ...interface{}) {
	std().Fatalf(format, args...)
}
