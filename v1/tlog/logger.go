package tlog

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Aleph-Alpha/tlog/v1/flatten"
)

// LogFunc is the callable bound to one level: literal segments followed by
// the interpolated values.
type LogFunc func(segments []string, values ...any)

// Option customizes a Logger built by New.
type Option func(*Logger)

// WithSink sets the sink that receives every dispatched call. The default is
// the process-wide console sink returned by DefaultSink.
func WithSink(s Sink) Option {
	return func(l *Logger) {
		l.sink = s
	}
}

// WithObserver registers an observer that is notified after every call.
func WithObserver(o Observer) Option {
	return func(l *Logger) {
		l.observer = o
	}
}

// WithFlattener replaces flatten.Flatten as the function used when
// FlattenOutputObject is enabled.
func WithFlattener(fn FlattenFunc) Option {
	return func(l *Logger) {
		l.flatten = fn
	}
}

// Logger is a leveled template logger. It exposes one method per canonical
// level and per alias; each takes the literal segments of a message and the
// values interpolated between them:
//
//	log.Info([]string{"user ", " signed in from ", ""}, userID, addr)
//
// A Logger is safe for concurrent use. Every call reads one immutable
// configuration snapshot, so a concurrent Configure is seen either entirely or
// not at all by that call. Sink writes happen on the caller's goroutine, in
// call order for any single goroutine.
type Logger struct {
	mu  sync.Mutex
	cfg atomic.Pointer[LoggerConfig]

	sink     Sink
	writers  [numLevels]SinkFunc
	funcs    [numLevels]LogFunc
	observer Observer
	flatten  FlattenFunc
}

// New builds a Logger from cfg merged over DefaultConfig. Every canonical
// level is resolved against the sink here; a missing one, an unknown level or
// an unknown primitive kind fails with ErrConfiguration.
func New(cfg Config, opts ...Option) (*Logger, error) {
	resolved, err := merge(DefaultConfig(), cfg)
	if err != nil {
		return nil, err
	}

	l := &Logger{flatten: flatten.Flatten}
	for _, opt := range opts {
		opt(l)
	}
	if l.sink == nil {
		l.sink = DefaultSink()
	}
	if l.flatten == nil {
		l.flatten = flatten.Flatten
	}

	for _, lvl := range Levels() {
		fn, ok := l.sink.Resolve(lvl)
		if !ok || fn == nil {
			return nil, fmt.Errorf("%w: sink has no %s operation", ErrConfiguration, lvl)
		}
		l.writers[lvl] = fn
		l.funcs[lvl] = l.bind(lvl)
	}

	l.cfg.Store(&resolved)
	return l, nil
}

// MustNew is like New but panics on error. It is meant for package-level
// loggers whose configuration is fixed at compile time.
func MustNew(cfg Config, opts ...Option) *Logger {
	l, err := New(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return l
}

func (l *Logger) bind(level Level) LogFunc {
	return func(segments []string, values ...any) {
		l.dispatch(level, segments, values)
	}
}

// Configure merges cfg over the current configuration, one level deep under
// Options. Calls already in flight finish with the configuration they
// started with. On error the configuration is left unchanged.
func (l *Logger) Configure(cfg Config) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	next, err := merge(*l.cfg.Load(), cfg)
	if err != nil {
		return err
	}
	l.cfg.Store(&next)
	return nil
}

// Snapshot returns a copy of the current configuration.
func (l *Logger) Snapshot() LoggerConfig {
	return l.cfg.Load().clone()
}

// Inspect returns the whole configuration for an empty key, or one top-level
// field for "enabled", "prefix", "minLevel" or "options". Other keys yield nil.
func (l *Logger) Inspect(key string) any {
	cfg := l.Snapshot()
	switch key {
	case "":
		return cfg
	case "enabled":
		return cfg.Enabled
	case "prefix":
		return cfg.Prefix
	case "minLevel":
		return cfg.MinLevel
	case "options":
		return cfg.Options
	}
	return nil
}

// Func returns the callable bound to a canonical level name or alias.
func (l *Logger) Func(name string) (LogFunc, error) {
	lvl, err := ParseLevel(name)
	if err != nil {
		return nil, err
	}
	return l.funcs[lvl], nil
}

// Sync flushes the sink if it buffers output.
func (l *Logger) Sync() error {
	if s, ok := l.sink.(Syncer); ok {
		return s.Sync()
	}
	return nil
}

func (c *LoggerConfig) shouldLog(level Level) bool {
	return c.Enabled && level.Ordinal() >= c.MinLevel.Ordinal()
}

func (l *Logger) dispatch(level Level, segments []string, values []any) {
	var start time.Time
	if l.observer != nil {
		start = time.Now()
	}

	cfg := l.cfg.Load()
	if !cfg.shouldLog(level) {
		l.observe(DispatchContext{Level: level}, start)
		return
	}
	opts := cfg.Options

	inline := make([]any, 0, len(values))
	for _, v := range values {
		if matchesKinds(v, opts.PrimitivesAllowedInTemplateString) {
			inline = append(inline, v)
		}
	}
	message := prefixMessage(cfg.Prefix, FormatMessage(segments, inline))

	var style string
	if len(opts.Style) > 0 {
		message = StyleToken + message
		style = EncodeStyle(opts.Style)
	}

	payload, _ := composePayload(values, opts, l.flatten)
	fields := payloadSize(payload)

	write := l.writers[level]
	switch level {
	case LevelTable:
		write(payload)
	case LevelAssert:
		if fields > 0 {
			write(truthy(first(values)), message, style, payload)
		} else {
			write(truthy(first(values)), message, style)
		}
	case LevelGroupEnd:
		write()
		fields = 0
	case LevelTime, LevelTimeEnd, LevelTimeStamp, LevelGroup, LevelGroupCollapsed, LevelCount, LevelCountReset:
		write(message)
		fields = 0
	default:
		if fields > 0 {
			write(message, style, payload)
		} else {
			write(message, style)
		}
	}

	l.observe(DispatchContext{Level: level, Dispatched: true, PayloadFields: fields}, start)
}

func (l *Logger) observe(ctx DispatchContext, start time.Time) {
	if l.observer == nil {
		return
	}
	ctx.Duration = time.Since(start)
	l.observer.ObserveDispatch(ctx)
}

func first(values []any) any {
	if len(values) == 0 {
		return nil
	}
	return values[0]
}

// payloadSize returns the number of keys or elements of a payload, or zero
// when it is not an object worth writing.
func payloadSize(v any) int {
	if !isNonEmptyObject(v) {
		return 0
	}
	if entries, ok := flatten.Entries(v); ok {
		return len(entries)
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		rv = rv.Elem()
	}
	return rv.Len()
}

// Debug logs at the debug level.
func (l *Logger) Debug(segments []string, values ...any) { l.dispatch(LevelDebug, segments, values) }

// Info logs at the info level.
func (l *Logger) Info(segments []string, values ...any) { l.dispatch(LevelInfo, segments, values) }

// Warn logs at the warn level.
func (l *Logger) Warn(segments []string, values ...any) { l.dispatch(LevelWarn, segments, values) }

// Error logs at the error level.
func (l *Logger) Error(segments []string, values ...any) { l.dispatch(LevelError, segments, values) }

// Table hands the payload alone to the sink's table operation.
func (l *Logger) Table(segments []string, values ...any) { l.dispatch(LevelTable, segments, values) }

// Group opens a group labelled with the message.
func (l *Logger) Group(segments []string, values ...any) { l.dispatch(LevelGroup, segments, values) }

// GroupCollapsed opens a collapsed group labelled with the message.
func (l *Logger) GroupCollapsed(segments []string, values ...any) {
	l.dispatch(LevelGroupCollapsed, segments, values)
}

// GroupEnd closes the innermost group. Segments and values are ignored.
func (l *Logger) GroupEnd(segments []string, values ...any) {
	l.dispatch(LevelGroupEnd, segments, values)
}

// Time starts a timer named by the message.
func (l *Logger) Time(segments []string, values ...any) { l.dispatch(LevelTime, segments, values) }

// TimeEnd stops the timer named by the message.
func (l *Logger) TimeEnd(segments []string, values ...any) { l.dispatch(LevelTimeEnd, segments, values) }

// TimeLog reports the elapsed time of a running timer.
func (l *Logger) TimeLog(segments []string, values ...any) { l.dispatch(LevelTimeLog, segments, values) }

// Count increments the counter named by the message.
func (l *Logger) Count(segments []string, values ...any) { l.dispatch(LevelCount, segments, values) }

// CountReset resets the counter named by the message.
func (l *Logger) CountReset(segments []string, values ...any) {
	l.dispatch(LevelCountReset, segments, values)
}

// TimeStamp writes a timestamp marker labelled with the message.
func (l *Logger) TimeStamp(segments []string, values ...any) {
	l.dispatch(LevelTimeStamp, segments, values)
}

// Trace logs at the trace level; sinks attach a stack.
func (l *Logger) Trace(segments []string, values ...any) { l.dispatch(LevelTrace, segments, values) }

// Log logs at the log level.
func (l *Logger) Log(segments []string, values ...any) { l.dispatch(LevelLog, segments, values) }

// Assert writes the message only when the first value is falsy. The first
// value is coerced with JavaScript truthiness, so any type is accepted.
func (l *Logger) Assert(segments []string, values ...any) { l.dispatch(LevelAssert, segments, values) }

// Default logs at the log level.
func (l *Logger) Default(segments []string, values ...any) { l.dispatch(LevelLog, segments, values) }

// I is an alias of Info.
func (l *Logger) I(segments []string, values ...any) { l.dispatch(LevelInfo, segments, values) }

// T is an alias of Time.
func (l *Logger) T(segments []string, values ...any) { l.dispatch(LevelTime, segments, values) }

// Err is an alias of Error.
func (l *Logger) Err(segments []string, values ...any) { l.dispatch(LevelError, segments, values) }

// Dbg is an alias of Debug.
func (l *Logger) Dbg(segments []string, values ...any) { l.dispatch(LevelDebug, segments, values) }

// Tab is an alias of Table.
func (l *Logger) Tab(segments []string, values ...any) { l.dispatch(LevelTable, segments, values) }
