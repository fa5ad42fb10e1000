package events

import (
	"context"

	"go.uber.org/zap"
)

var Emit = func(ctx context.Context, name string, evt ChatEvent) {}

// EnableLogEmitter routes events to the application logger. Token events are
// logged at debug level so streaming does not flood the output.
func EnableLogEmitter(logger *zap.Logger) {
	Emit = func(ctx context.Context, name string, evt ChatEvent) {
		if evt.SessionKey == "" {
			if session := SessionFromContext(ctx); session != "" {
				evt.SessionKey = session
			}
		}

		fields := []zap.Field{
			zap.String("event", name),
			zap.String("sessionKey", evt.SessionKey),
		}
		switch {
		case evt.Type == EventError:
			logger.Error(evt.Message, fields...)
		case name == ChatEventToken:
			logger.Debug(evt.Message, fields...)
		case evt.Type == EventWarn:
			logger.Warn(evt.Message, fields...)
		default:
			logger.Info(evt.Message, fields...)
		}
	}
}

func SetCustomEmitter(f func(ctx context.Context, name string, evt ChatEvent)) {
	if f == nil {
		Emit = func(context.Context, string, ChatEvent) {}
		return
	}
	Emit = func(ctx context.Context, name string, evt ChatEvent) {
		if evt.SessionKey == "" {
			if session := SessionFromContext(ctx); session != "" {
				evt.SessionKey = session
			}
		}
		f(ctx, name, evt)
	}
}
