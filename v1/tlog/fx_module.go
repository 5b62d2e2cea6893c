package tlog

import (
	"context"

	"go.uber.org/fx"
)

// FXModule defines the Fx module for the tlog package.
// This module integrates a template logger into an Fx-based application by
// providing the *Logger built from the container's tlog.Config and
// registering its lifecycle hooks.
//
// The module:
//  1. Provides NewWithDI, which builds a *Logger from Params
//  2. Invokes RegisterLoggerLifecycle to flush the sink on shutdown
//
// Usage:
//
//	app := fx.New(
//	    tlog.FXModule,
//	    fx.Provide(func() tlog.Config {
//	        return tlog.Config{Enabled: tlog.Ptr(true), MinLevel: tlog.Ptr(tlog.LevelInfo)}
//	    }),
//	)
//
// Dependencies required by this module:
//   - A tlog.Config instance must be available in the dependency injection container
//   - A tlog.Sink is optional; without one the console sink is used
//   - A tlog.Observer is optional (metrics.FXModule provides one)
var FXModule = fx.Module("tlog",
	fx.Provide(NewWithDI),
	fx.Invoke(RegisterLoggerLifecycle),
)

// Params holds the dependencies NewWithDI takes from the container.
type Params struct {
	fx.In

	Config   Config
	Sink     Sink     `optional:"true"`
	Observer Observer `optional:"true"`
}

// NewWithDI builds a Logger from injected dependencies. Construction errors
// abort application startup.
func NewWithDI(p Params) (*Logger, error) {
	var opts []Option
	if p.Sink != nil {
		opts = append(opts, WithSink(p.Sink))
	}
	if p.Observer != nil {
		opts = append(opts, WithObserver(p.Observer))
	}
	return New(p.Config, opts...)
}

// RegisterLoggerLifecycle flushes the logger's sink when the application
// stops.
//
// Note: This function is automatically invoked by the FXModule and does not
// need to be called directly in application code.
func RegisterLoggerLifecycle(lc fx.Lifecycle, l *Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return l.Sync()
		},
	})
}
