// Package tlog provides a leveled, structured template logger.
//
// A call names a level and passes the literal segments of a message together
// with the values interpolated between them. The logger decides whether the
// level passes the configured threshold, builds the message text from the
// segments and the inline-printable values, composes a structured payload
// from all values, and writes the result to a sink in the call shape of that
// level. Nothing is formatted for a suppressed call.
//
// # Levels
//
// The canonical levels mirror the operations of a browser console:
//
//	debug info warn error table group groupCollapsed groupEnd time timeEnd
//	timeLog count countReset timeStamp trace log assert
//
// with the aliases i (info), t (time), err (error), dbg (debug) and tab
// (table). Thresholds compare ordinals: debug is 0; info, log, table, assert
// and the time, count and group families are 1; warn and trace are 2; error
// is 3. A level fires when its ordinal is at least that of MinLevel.
//
// # Basic Usage
//
//	log, err := tlog.New(tlog.Config{
//		Enabled:  tlog.Ptr(true),
//		Prefix:   tlog.Ptr("[billing]"),
//		MinLevel: tlog.Ptr(tlog.LevelInfo),
//	})
//	if err != nil {
//		return err
//	}
//
//	log.Info([]string{"charged ", " for order ", ""}, 42.5, 1234)
//	// sink.info("[billing] charged 42.5 for order 1234", "", {arg0: 42.5, arg1: 1234})
//
//	log.Warn([]string{"retrying"}, map[string]any{"attempt": 3})
//	// sink.warn("[billing] retrying", "", {attempt: 3})
//
// Only values whose kind is listed in PrimitivesAllowedInTemplateString are
// interpolated into the text; by default those are numbers, booleans,
// strings and big numbers. Every value still reaches the payload.
//
// # Payloads
//
// A single value is the payload itself. Several values are folded into one
// map: strings are keyed by themselves, maps and structs contribute their
// keys, and anything else is stored as arg<index>. FlattenOutputObject turns
// the result into a single-level map (see package flatten);
// ExcludeOutputObject drops it. A payload is only written when it has at
// least one key or element.
//
// # Configuration
//
// Config is partial: nil fields keep their current value. New merges it over
// DefaultConfig and Configure merges it over the live configuration, in both
// cases one level deep under Options. Configurations can also be read from
// YAML (LoadConfig), from the environment (FromEnv) or from a generic map
// (ConfigFromMap).
//
// # Sinks
//
// A Sink resolves one SinkFunc per canonical level when the logger is built.
// DefaultSink writes colored lines to the terminal; SinkTable adapts plain
// functions; package logger provides a zap-backed sink.
//
// # FX Module Integration
//
//	app := fx.New(
//		logger.FXModule,  // optional: zap sink
//		metrics.FXModule, // optional: dispatch observer
//		tlog.FXModule,
//		fx.Provide(func() tlog.Config { return tlog.Config{Enabled: tlog.Ptr(true)} }),
//	)
//
// # Thread Safety
//
// A Logger may be used from many goroutines. Each call works on one immutable
// configuration snapshot; Configure publishes a new snapshot atomically.
// ConsoleSink serializes its writes and keeps timers, counters and group
// depth under a mutex.
package tlog
