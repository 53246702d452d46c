package activity

import (
	"context"
	"errors"
	"log/slog"
)

// Hook receives normalized activity events.
type Hook interface {
	Notify(ctx context.Context, evt Event) error
}

// HookFunc adapts a function into a Hook.
type HookFunc func(ctx context.Context, evt Event) error

// Notify calls f.
func (f HookFunc) Notify(ctx context.Context, evt Event) error {
	return f(ctx, evt)
}

// Hooks fans an event out to every hook. Invalid events are dropped.
type Hooks []Hook

// Notify normalizes evt and delivers it to each hook, joining their errors.
func (hs Hooks) Notify(ctx context.Context, evt Event) error {
	evt = NormalizeEvent(evt)
	if !evt.Valid() {
		return nil
	}
	var errs []error
	for _, h := range hs {
		if h == nil {
			continue
		}
		if err := h.Notify(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LoggerHook writes events to a structured logger.
type LoggerHook struct {
	Logger *slog.Logger
	Level  slog.Level
}

// Notify logs the event.
func (h LoggerHook) Notify(ctx context.Context, evt Event) error {
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attrs := []slog.Attr{
		slog.String("verb", evt.Verb),
		slog.String("object_type", evt.ObjectType),
		slog.String("object_id", evt.ObjectID),
		slog.String("channel", evt.Channel),
	}
	if evt.ActorID != "" {
		attrs = append(attrs, slog.String("actor_id", evt.ActorID))
	}
	if len(evt.Metadata) > 0 {
		attrs = append(attrs, slog.Any("metadata", evt.Metadata))
	}
	logger.LogAttrs(ctx, h.Level, "activity", attrs...)
	return nil
}
