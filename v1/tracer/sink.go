package tracer

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	traceSpan "go.opentelemetry.io/otel/trace"

	"github.com/Aleph-Alpha/tlog/v1/flatten"
	"github.com/Aleph-Alpha/tlog/v1/tlog"
)

// LogEventName is the name of the span events written by EventSink.
const LogEventName = "log"

// EventSink decorates a tlog.Sink. Every write is forwarded to the wrapped
// sink and, when ctx carries a recording span, also added to that span as a
// "log" event with the level, the message and the flattened payload
// (keys prefixed with "payload.").
//
// Passing assertions, groupEnd and timer or counter bookkeeping calls
// (time, countReset) produce no event.
//
// EventSink adds one stack frame to every write. A wrapped logger.ZapSink
// should be built with logger.WithCallerSkip(1).
type EventSink struct {
	ctx  context.Context
	next tlog.Sink
}

// NewEventSink returns an EventSink forwarding to next.
func NewEventSink(ctx context.Context, next tlog.Sink) *EventSink {
	return &EventSink{ctx: ctx, next: next}
}

var _ tlog.Sink = (*EventSink)(nil)

// Resolve implements tlog.Sink. A level the wrapped sink lacks stays missing.
func (s *EventSink) Resolve(level tlog.Level) (tlog.SinkFunc, bool) {
	fn, ok := s.next.Resolve(level)
	if !ok || fn == nil {
		return nil, false
	}
	return func(args ...any) {
		s.record(level, args)
		fn(args...)
	}, true
}

// Sync flushes the wrapped sink if it buffers output.
func (s *EventSink) Sync() error {
	if syncer, ok := s.next.(tlog.Syncer); ok {
		return syncer.Sync()
	}
	return nil
}

func (s *EventSink) record(level tlog.Level, args []any) {
	span := traceSpan.SpanFromContext(s.ctx)
	if !span.IsRecording() {
		return
	}

	var (
		msg     string
		payload any
	)
	switch level {
	case tlog.LevelGroupEnd, tlog.LevelTime, tlog.LevelCountReset:
		return
	case tlog.LevelTable:
		if len(args) > 0 {
			payload = args[0]
		}
	case tlog.LevelAssert:
		if len(args) == 0 {
			return
		}
		if passed, _ := args[0].(bool); passed {
			return
		}
		msg, payload = messageAndPayload(args[1:])
	default:
		msg, payload = messageAndPayload(args)
	}

	attrs := []attribute.KeyValue{
		attribute.String("tlog.level", level.String()),
	}
	if msg != "" {
		attrs = append(attrs, attribute.String("tlog.message", msg))
	}
	attrs = append(attrs, payloadAttributes(payload)...)
	span.AddEvent(LogEventName, traceSpan.WithAttributes(attrs...))
}

func messageAndPayload(args []any) (string, any) {
	if len(args) == 0 {
		return "", nil
	}
	msg := strings.TrimPrefix(fmt.Sprint(args[0]), tlog.StyleToken)
	if len(args) > 2 {
		return msg, args[2]
	}
	return msg, nil
}

func payloadAttributes(payload any) []attribute.KeyValue {
	if payload == nil {
		return nil
	}
	if _, ok := flatten.Entries(payload); !ok {
		return []attribute.KeyValue{toAttribute("payload", payload)}
	}
	flat := flatten.Flatten(payload, flatten.Options{Prefix: "payload."})
	out := make([]attribute.KeyValue, 0, len(flat))
	for k, v := range flat {
		out = append(out, toAttribute(k, v))
	}
	return out
}
