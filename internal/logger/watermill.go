package logger

import (
	"github.com/ThreeDotsLabs/watermill"
	"go.uber.org/zap"
)

// WatermillAdapter routes watermill's internal logging into zap.
type WatermillAdapter struct {
	l *zap.Logger
}

func NewWatermillAdapter(l *zap.Logger) watermill.LoggerAdapter {
	return &WatermillAdapter{l: l.With(zap.String("component", "watermill"))}
}

func (a *WatermillAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.l.Error(msg, append(toZap(fields), zap.Error(err))...)
}

func (a *WatermillAdapter) Info(msg string, fields watermill.LogFields) {
	a.l.Info(msg, toZap(fields)...)
}

func (a *WatermillAdapter) Debug(msg string, fields watermill.LogFields) {
	a.l.Debug(msg, toZap(fields)...)
}

// Trace is mapped to debug; zap has no lower level.
func (a *WatermillAdapter) Trace(msg string, fields watermill.LogFields) {
	a.l.Debug(msg, toZap(fields)...)
}

func (a *WatermillAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &WatermillAdapter{l: a.l.With(toZap(fields)...)}
}

func toZap(fields watermill.LogFields) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		out = append(out, zap.Any(k, v))
	}
	return out
}
