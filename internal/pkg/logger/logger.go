package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ServiceName добавляется в каждую запись
const ServiceName = "nearby-places"

// New создает логгер. Уровень debug включает цветной консольный вывод,
// остальные уровни пишут JSON в stdout.
func New(level, env string) (*zap.Logger, error) {
	config := buildConfig(level)
	return config.Build(zap.Fields(
		zap.String("service", ServiceName),
		zap.String("env", env),
	))
}

func buildConfig(level string) zap.Config {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	if zapLevel == zapcore.DebugLevel {
		config := zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return config
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapLevel)
	config.EncoderConfig.TimeKey = "time"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	// Сэмплирование отключено: каждая ошибка провайдера должна попасть в лог
	config.Sampling = nil
	return config
}
