// Package logger provides the zap backend for template logging.
//
// It wraps a configured zap.Logger in a LoggerClient, which offers plain
// structured logging (Info, Debug, Warn, Error and their *WithContext forms)
// and a ZapSink that plugs into tlog so template log calls end up as JSON
// entries instead of console output.
//
// # Architecture
//
// This package follows the "accept interfaces, return structs" design pattern:
//   - Logger interface: Defines the contract for structured logging operations
//   - LoggerClient struct: Concrete implementation of the Logger interface
//   - ZapSink struct: tlog.Sink writing through a LoggerClient
//   - FX module: Provides *LoggerClient, the Logger interface and a tlog.Sink
//
// # Direct Usage (Without FX)
//
//	import (
//		"github.com/Aleph-Alpha/tlog/v1/logger"
//		"github.com/Aleph-Alpha/tlog/v1/tlog"
//	)
//
//	client := logger.NewLoggerClient(logger.Config{
//		Level:         logger.Info,
//		ServiceName:   "billing",
//		EnableTracing: true,
//	})
//	defer client.Sync()
//
//	log, err := tlog.New(tlog.Config{Enabled: tlog.Ptr(true)}, tlog.WithSink(client.Sink()))
//	if err != nil {
//		return err
//	}
//	log.Info([]string{"invoice ", " paid"}, invoiceID, invoice)
//
// The invoice struct is not interpolated into the message; its fields are
// written as zap fields of the entry.
//
// # Level Mapping
//
// The sink maps template levels onto zap:
//
//	debug                          → Debug
//	info, log, table               → Info
//	timeLog, timeEnd, timeStamp    → Info (with elapsed / marked_at)
//	count, group, groupCollapsed   → Info (with count / group_start)
//	warn                           → Warn
//	trace                          → Warn with a "stack" field
//	error                          → Error
//	assert                         → Error, only when the assertion fails
//	time, countReset, groupEnd     → sink state only
//
// Messages below the zap level configured in Config.Level are dropped by zap
// after tlog has already accepted them, so both thresholds apply.
//
// # FX Module Integration
//
//	app := fx.New(
//		logger.FXModule, // *LoggerClient, logger.Logger, tlog.Sink
//		tlog.FXModule,   // *tlog.Logger using the sink above
//		fx.Provide(func() logger.Config {
//			return logger.Config{Level: logger.Info, ServiceName: "billing"}
//		}),
//		fx.Provide(func() tlog.Config {
//			return tlog.Config{Enabled: tlog.Ptr(true)}
//		}),
//	)
//	app.Run()
//
// # Configuration
//
// The logger can be configured via environment variables:
//
//	ZAP_LOGGER_LEVEL=debug          # Log level (debug, info, warning, error)
//	ZAP_LOGGER_SERVICE_NAME=billing # Value of the "service" field
//	LOGGER_ENABLE_TRACING=true      # Enable distributed tracing integration
//
// # Tracing Integration
//
// When tracing is enabled, the *WithContext methods and sinks built with
// SinkWithContext add the following fields for a context carrying a valid
// OpenTelemetry span:
//   - trace_id: The OpenTelemetry trace ID
//   - span_id: The OpenTelemetry span ID
//
// # Caller
//
// Entries written by a ZapSink report the code that called the tlog.Logger
// method as their caller. Sinks that wrap a ZapSink add frames; pass
// WithCallerSkip with one per wrapper:
//
//	sink := tracer.NewEventSink(ctx, client.SinkWithContext(ctx, logger.WithCallerSkip(1)))
//
// # Thread Safety
//
// LoggerClient and ZapSink are safe for concurrent use. Timers, counters and
// open groups are kept per sink and guarded by a mutex.
package logger
