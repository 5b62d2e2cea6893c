package logger

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/tlog/v1/tlog"
)

// FXModule defines the Fx module for the logger package.
// This module integrates the logger into an Fx-based application by providing
// the logger factory and registering its lifecycle hooks.
//
// The module:
//  1. Provides NewLoggerClient as *LoggerClient
//  2. Provides the same instance as the Logger interface
//  3. Provides a tlog.Sink backed by the client, so tlog.FXModule writes
//     template log calls through zap
//  4. Invokes RegisterLoggerLifecycle to flush buffered entries on shutdown
//
// Usage:
//
//	app := fx.New(
//	    logger.FXModule,
//	    tlog.FXModule,
//	    // other modules...
//	)
//
// Dependencies required by this module:
// - A logger.Config instance must be available in the dependency injection container
var FXModule = fx.Module("logger",
	fx.Provide(
		NewLoggerClient,
		fx.Annotate(
			func(l *LoggerClient) Logger { return l },
			fx.As(new(Logger)),
		),
		ProvideSink,
	),
	fx.Invoke(RegisterLoggerLifecycle),
)

// ProvideSink exposes the client's zap-backed sink as a tlog.Sink.
func ProvideSink(l *LoggerClient) tlog.Sink {
	return l.Sink()
}

// RegisterLoggerLifecycle handles cleanup (sync) of the Zap logger.
// This function registers a shutdown hook with the Fx lifecycle system that
// ensures any buffered log entries are flushed when the application terminates.
//
// Parameters:
//   - lc: The Fx lifecycle controller
//   - client: The logger instance to be managed
//
// Note: This function is automatically invoked by the FXModule and does not need
// to be called directly in application code.
func RegisterLoggerLifecycle(lc fx.Lifecycle, client *LoggerClient) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Sync()
		},
	})
}
