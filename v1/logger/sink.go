package logger

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Aleph-Alpha/tlog/v1/flatten"
	"github.com/Aleph-Alpha/tlog/v1/tlog"
)

// ZapSink routes template log calls into zap. It implements tlog.Sink.
//
// Level mapping:
//   - debug → Debug
//   - info, log, table, timeLog, timeEnd, timeStamp, count, group → Info
//   - warn → Warn; trace → Warn with a "stack" field
//   - error → Error; assert → Error, only when the assertion fails
//   - time, countReset, groupEnd only update sink state
//
// Map and struct payloads become one zap field per key; any other payload is
// written under "payload". While groups are open their labels are attached as
// "groups". Timers and counters live in the sink, so loggers sharing a sink
// share them.
//
// The caller of an entry is the code that called the tlog.Logger method.
// A sink wrapped by a decorating sink needs WithCallerSkip for that to hold.
type ZapSink struct {
	client *LoggerClient
	log    *zap.Logger
	ctx    context.Context
	now    func() time.Time
	skip   int

	mu       sync.Mutex
	groups   []string
	timers   map[string]time.Time
	counters map[string]int
}

// sinkCallerSkip is the number of frames between ZapSink.write and the
// caller of a tlog.Logger method: the sink operation, the SinkFunc closure,
// the tlog dispatcher and the Logger method.
const sinkCallerSkip = 5

// SinkOption customizes a ZapSink.
type SinkOption func(*ZapSink)

// WithCallerSkip adds n frames to the caller lookup, one for each sink
// decorator (such as tracer.EventSink) standing between tlog and the ZapSink.
func WithCallerSkip(n int) SinkOption {
	return func(s *ZapSink) {
		s.skip += n
	}
}

// Sink returns a tlog sink writing through this client.
func (l *LoggerClient) Sink(opts ...SinkOption) *ZapSink {
	return l.SinkWithContext(context.Background(), opts...)
}

// SinkWithContext returns a tlog sink whose entries carry the trace_id and
// span_id of the span in ctx when tracing is enabled.
func (l *LoggerClient) SinkWithContext(ctx context.Context, opts ...SinkOption) *ZapSink {
	s := &ZapSink{
		client:   l,
		ctx:      ctx,
		now:      time.Now,
		skip:     sinkCallerSkip - l.callerSkip,
		timers:   make(map[string]time.Time),
		counters: make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = l.Zap.WithOptions(zap.AddCallerSkip(s.skip))
	return s
}

var _ tlog.Sink = (*ZapSink)(nil)

// Resolve implements tlog.Sink.
func (s *ZapSink) Resolve(level tlog.Level) (tlog.SinkFunc, bool) {
	switch level {
	case tlog.LevelDebug:
		return func(args ...any) { s.message(zapcore.DebugLevel, false, args) }, true
	case tlog.LevelInfo, tlog.LevelLog:
		return func(args ...any) { s.message(zapcore.InfoLevel, false, args) }, true
	case tlog.LevelWarn:
		return func(args ...any) { s.message(zapcore.WarnLevel, false, args) }, true
	case tlog.LevelError:
		return func(args ...any) { s.message(zapcore.ErrorLevel, false, args) }, true
	case tlog.LevelTrace:
		return func(args ...any) { s.message(zapcore.WarnLevel, true, args) }, true
	case tlog.LevelTable:
		return func(args ...any) { s.table(args) }, true
	case tlog.LevelGroup, tlog.LevelGroupCollapsed:
		return func(args ...any) { s.group(args) }, true
	case tlog.LevelGroupEnd:
		return func(...any) { s.groupEnd() }, true
	case tlog.LevelTime:
		return func(args ...any) { s.time(args) }, true
	case tlog.LevelTimeEnd:
		return func(args ...any) { s.timeEnd(args) }, true
	case tlog.LevelTimeLog:
		return func(args ...any) { s.timeLog(args) }, true
	case tlog.LevelCount:
		return func(args ...any) { s.count(args) }, true
	case tlog.LevelCountReset:
		return func(args ...any) { s.countReset(args) }, true
	case tlog.LevelTimeStamp:
		return func(args ...any) { s.timeStamp(args) }, true
	case tlog.LevelAssert:
		return func(args ...any) { s.assert(args) }, true
	}
	return nil, false
}

// Sync flushes the underlying zap logger.
func (s *ZapSink) Sync() error {
	return s.client.Sync()
}

// write is the only place entries leave the sink; sinkCallerSkip counts from
// here.
func (s *ZapSink) write(level zapcore.Level, msg string, fields []zap.Field) {
	s.log.Log(level, msg, fields...)
}

func (s *ZapSink) message(level zapcore.Level, withStack bool, args []any) {
	msg, payload, ok := splitArgs(args)
	fields := s.baseFields()
	if ok {
		fields = append(fields, payloadFields(payload)...)
	}
	if withStack {
		fields = append(fields, zap.Stack("stack"))
	}
	s.write(level, msg, fields)
}

// table writes one entry per call; an empty or missing payload writes nothing.
func (s *ZapSink) table(args []any) {
	if len(args) == 0 || args[0] == nil {
		return
	}
	if entries, ok := flatten.Entries(args[0]); ok && len(entries) == 0 {
		return
	}
	s.write(zapcore.InfoLevel, "table", append(s.baseFields(), payloadFields(args[0])...))
}

func (s *ZapSink) assert(args []any) {
	if len(args) == 0 {
		return
	}
	if ok, _ := args[0].(bool); ok {
		return
	}
	msg, payload, ok := splitArgs(args[1:])
	fields := s.baseFields()
	if ok {
		fields = append(fields, payloadFields(payload)...)
	}
	if msg == "" {
		s.write(zapcore.ErrorLevel, "Assertion failed", fields)
		return
	}
	s.write(zapcore.ErrorLevel, "Assertion failed: "+msg, fields)
}

func (s *ZapSink) group(args []any) {
	label, _, _ := splitArgs(args)
	s.write(zapcore.InfoLevel, label, append(s.baseFields(), zap.Bool("group_start", true)))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups = append(s.groups, label)
}

func (s *ZapSink) groupEnd() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.groups) > 0 {
		s.groups = s.groups[:len(s.groups)-1]
	}
}

func (s *ZapSink) time(args []any) {
	label := labelOf(args)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.timers[label]; exists {
		s.write(zapcore.WarnLevel, fmt.Sprintf("Timer '%s' already exists", label), s.baseFieldsLocked())
		return
	}
	s.timers[label] = s.now()
}

func (s *ZapSink) timeEnd(args []any) {
	label := labelOf(args)

	s.mu.Lock()
	started, exists := s.timers[label]
	delete(s.timers, label)
	fields := s.baseFieldsLocked()
	s.mu.Unlock()

	if !exists {
		s.write(zapcore.WarnLevel, fmt.Sprintf("Timer '%s' does not exist", label), fields)
		return
	}
	s.write(zapcore.InfoLevel, label, append(fields, zap.Duration("elapsed", s.now().Sub(started))))
}

func (s *ZapSink) timeLog(args []any) {
	label := labelOf(args)
	_, payload, ok := splitArgs(args)

	s.mu.Lock()
	started, exists := s.timers[label]
	fields := s.baseFieldsLocked()
	s.mu.Unlock()

	if !exists {
		s.write(zapcore.WarnLevel, fmt.Sprintf("Timer '%s' does not exist", label), fields)
		return
	}
	fields = append(fields, zap.Duration("elapsed", s.now().Sub(started)))
	if ok {
		fields = append(fields, payloadFields(payload)...)
	}
	s.write(zapcore.InfoLevel, label, fields)
}

func (s *ZapSink) count(args []any) {
	label := labelOf(args)

	s.mu.Lock()
	s.counters[label]++
	n := s.counters[label]
	fields := s.baseFieldsLocked()
	s.mu.Unlock()

	s.write(zapcore.InfoLevel, label, append(fields, zap.Int("count", n)))
}

func (s *ZapSink) countReset(args []any) {
	label := labelOf(args)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.counters[label]; !exists {
		s.write(zapcore.WarnLevel, fmt.Sprintf("Count for '%s' does not exist", label), s.baseFieldsLocked())
		return
	}
	s.counters[label] = 0
}

func (s *ZapSink) timeStamp(args []any) {
	label := labelOf(args)
	s.write(zapcore.InfoLevel, label, append(s.baseFields(), zap.Time("marked_at", s.now())))
}

func (s *ZapSink) baseFields() []zap.Field {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseFieldsLocked()
}

// baseFieldsLocked returns the trace and group fields. The caller holds s.mu.
func (s *ZapSink) baseFieldsLocked() []zap.Field {
	fields := s.client.traceFields(s.ctx)
	if len(s.groups) > 0 {
		fields = append(fields, zap.Strings("groups", append([]string(nil), s.groups...)))
	}
	return fields
}

// splitArgs reads (message, style[, payload]). The style token is removed
// from the message; the style itself has no meaning for structured output.
func splitArgs(args []any) (msg string, payload any, hasPayload bool) {
	if len(args) == 0 {
		return "", nil, false
	}
	msg = strings.TrimPrefix(fmt.Sprint(args[0]), tlog.StyleToken)
	if len(args) > 2 {
		return msg, args[2], true
	}
	return msg, nil, false
}

func labelOf(args []any) string {
	label, _, _ := splitArgs(args)
	if label == "" {
		return "default"
	}
	return label
}

func payloadFields(payload any) []zap.Field {
	entries, ok := flatten.Entries(payload)
	if !ok {
		return []zap.Field{zap.Any("payload", payload)}
	}
	fields := make([]zap.Field, 0, len(entries))
	for _, e := range entries {
		fields = append(fields, zap.Any(e.Key, e.Value))
	}
	return fields
}
