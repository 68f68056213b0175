package panggil

import (
	"log/slog"
	"time"
)

// Logger is the diagnostic logging interface used for debug traces.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// EventType tags a LogEvent.
type EventType string

const (
	EventRequest  EventType = "request"
	EventResponse EventType = "response"
	EventError    EventType = "error"
)

// LogEvent is one attempt-level lifecycle event. Request events carry
// method, url, attempt and correlation id; response events add status and
// duration; error events add the error value.
type LogEvent struct {
	Type          EventType
	Method        string
	URL           string
	Attempt       int
	CorrelationID string
	Status        int
	Duration      time.Duration
	Err           error
}

// EventSink consumes every LogEvent the engine produces.
type EventSink interface {
	Emit(LogEvent)
}

// PerfTracker receives one sample per successful response, labelled
// "{method}:{url}".
type PerfTracker interface {
	Track(label string, duration time.Duration)
}

// BusyIndicator is a reference-counted in-flight signal, incremented once
// per logical call and decremented once at settlement.
type BusyIndicator interface {
	Increment()
	Decrement()
}

type slogLogger struct {
	l *slog.Logger
}

// NewSlogLogger adapts a slog.Logger to the Logger interface.
func NewSlogLogger(l *slog.Logger) Logger {
	return &slogLogger{l: l}
}

func (s *slogLogger) Debug(msg string, kv ...any) { s.l.Debug(msg, kv...) }
func (s *slogLogger) Info(msg string, kv ...any)  { s.l.Info(msg, kv...) }
func (s *slogLogger) Warn(msg string, kv ...any)  { s.l.Warn(msg, kv...) }
func (s *slogLogger) Error(msg string, kv ...any) { s.l.Error(msg, kv...) }

type slogEventSink struct {
	l *slog.Logger
}

// NewSlogEventSink emits LogEvents as structured slog records.
func NewSlogEventSink(l *slog.Logger) EventSink {
	return &slogEventSink{l: l}
}

func (s *slogEventSink) Emit(ev LogEvent) {
	attrs := []any{
		slog.String("method", ev.Method),
		slog.String("url", ev.URL),
		slog.Int("attempt", ev.Attempt),
		slog.String("correlation_id", ev.CorrelationID),
	}
	switch ev.Type {
	case EventRequest:
		s.l.Info("request started", attrs...)
	case EventResponse:
		attrs = append(attrs,
			slog.Int("status", ev.Status),
			slog.Duration("duration", ev.Duration),
		)
		s.l.Info("request completed", attrs...)
	case EventError:
		attrs = append(attrs, slog.String("error", ev.Err.Error()))
		s.l.Error("request failed", attrs...)
	}
}

type nopEventSink struct{}

func (nopEventSink) Emit(LogEvent) {}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
