package tracer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/mock/gomock"

	"github.com/Aleph-Alpha/tlog/v1/logger"
	"github.com/Aleph-Alpha/tlog/v1/tlog"
)

type countingSink struct {
	calls map[tlog.Level]int
}

func (c *countingSink) Resolve(level tlog.Level) (tlog.SinkFunc, bool) {
	return func(...any) { c.calls[level]++ }, true
}

func newRecordedTracer(t *testing.T) (*Tracer, *tracetest.SpanRecorder) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return &Tracer{tracer: tp, logger: logger.NewMockLogger(gomock.NewController(t))}, sr
}

func attrMap(kvs []attribute.KeyValue) map[string]string {
	out := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		out[string(kv.Key)] = kv.Value.Emit()
	}
	return out
}

func TestStartSpanAndRecordError(t *testing.T) {
	tr, sr := newRecordedTracer(t)

	_, span := tr.StartSpan(context.Background(), "charge")
	tr.SetAttributes(span, map[string]interface{}{
		"invoice.id": "inv-1",
		"amount":     12.5,
		"retries":    2,
		"paid":       true,
		"tags":       []string{"a"},
	})
	tr.RecordErrorOnSpan(span, errors.New("declined"))
	span.End()

	ended := sr.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "charge", ended[0].Name())
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "declined", ended[0].Status().Description)

	attrs := attrMap(ended[0].Attributes())
	assert.Equal(t, "inv-1", attrs["invoice.id"])
	assert.Equal(t, "12.5", attrs["amount"])
	assert.Equal(t, "2", attrs["retries"])
	assert.Equal(t, "true", attrs["paid"])
	assert.Equal(t, `["a"]`, attrs["tags"])
}

func TestCarrierRoundTrip(t *testing.T) {
	tr, _ := newRecordedTracer(t)

	ctx, span := tr.StartSpan(context.Background(), "send")
	defer span.End()

	carrier := tr.GetCarrier(ctx)
	require.Contains(t, carrier, "traceparent")

	remote := tr.SetCarrierOnContext(context.Background(), carrier)
	_, child := tr.StartSpan(remote, "receive")
	defer child.End()

	assert.Equal(t, span.SpanContext().TraceID(), child.SpanContext().TraceID())
}

func TestEventSinkRecordsLogCalls(t *testing.T) {
	tr, sr := newRecordedTracer(t)
	ctx, span := tr.StartSpan(context.Background(), "charge")

	next := &countingSink{calls: map[tlog.Level]int{}}
	l, err := tlog.New(tlog.Config{Enabled: tlog.Ptr(true)}, tlog.WithSink(NewEventSink(ctx, next)))
	require.NoError(t, err)

	l.Info([]string{"charging ", ""}, map[string]any{"invoice": map[string]any{"id": "inv-1"}})
	l.Assert([]string{"ok"}, true)
	l.Assert([]string{"balance ", " is positive"}, 0)
	l.Time([]string{"charge"})
	span.End()

	assert.Equal(t, 1, next.calls[tlog.LevelInfo])
	assert.Equal(t, 2, next.calls[tlog.LevelAssert])
	assert.Equal(t, 1, next.calls[tlog.LevelTime])

	ended := sr.Ended()
	require.Len(t, ended, 1)
	events := ended[0].Events()
	require.Len(t, events, 2)

	info := attrMap(events[0].Attributes)
	assert.Equal(t, LogEventName, events[0].Name)
	assert.Equal(t, "info", info["tlog.level"])
	assert.Equal(t, "charging ", info["tlog.message"])
	assert.Equal(t, "inv-1", info["payload.invoice.id"])

	failed := attrMap(events[1].Attributes)
	assert.Equal(t, "assert", failed["tlog.level"])
	assert.Equal(t, "balance 0 is positive", failed["tlog.message"])
}

func TestEventSinkSelfReferencingPayload(t *testing.T) {
	tr, sr := newRecordedTracer(t)
	ctx, span := tr.StartSpan(context.Background(), "loop")

	self := map[string]any{"k": 1}
	self["m"] = self
	list := []any{"a", nil}
	list[1] = list

	next := &countingSink{calls: map[tlog.Level]int{}}
	l, err := tlog.New(tlog.Config{Enabled: tlog.Ptr(true)}, tlog.WithSink(NewEventSink(ctx, next)))
	require.NoError(t, err)

	require.NotPanics(t, func() {
		l.Info([]string{"state"}, self)
		l.Info([]string{"list"}, list)
	})
	span.End()

	events := sr.Ended()[0].Events()
	require.Len(t, events, 2)
	state := attrMap(events[0].Attributes)
	assert.Equal(t, "1", state["payload.k"])
	assert.Equal(t, "[Circular]", state["payload.m"])
	assert.Equal(t, `{"0":"a","1":"[Circular]"}`, attrMap(events[1].Attributes)["payload"])
}

func TestEventSinkWithoutSpan(t *testing.T) {
	next := &countingSink{calls: map[tlog.Level]int{}}
	l, err := tlog.New(tlog.Config{Enabled: tlog.Ptr(true)}, tlog.WithSink(NewEventSink(context.Background(), next)))
	require.NoError(t, err)

	l.Warn([]string{"no span"})
	assert.Equal(t, 1, next.calls[tlog.LevelWarn])
	assert.NoError(t, l.Sync())
}

func TestFXModuleShutsDownTracer(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLog := logger.NewMockLogger(ctrl)
	mockLog.EXPECT().Info("shutting down tracer...", gomock.Nil(), gomock.Nil())

	var tr *Tracer
	app := fxtest.New(t,
		FXModule,
		fx.Provide(
			func() Config { return Config{ServiceName: "fx", AppEnv: "test"} },
			func() logger.Logger { return mockLog },
		),
		fx.Populate(&tr),
	)
	app.RequireStart()
	require.NotNil(t, tr)

	_, span := tr.StartSpan(context.Background(), "op")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	app.RequireStop()
}
