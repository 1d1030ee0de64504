package logger

import (
	"go.uber.org/zap"
)

var log, _ = zap.NewProduction()

func Info(msg string, fields ...zap.Field) {
	log.Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	log.Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	log.Error(msg, fields...)
}

// NotifyFailure records a swallowed notification error. Notification
// delivery is best effort: the order update stays authoritative and the
// caller never sees this error.
func NotifyFailure(channel string, err error, fields ...zap.Field) {
	all := append([]zap.Field{zap.String("channel", channel), zap.Error(err)}, fields...)
	log.Error("notification_failed", all...)
}
