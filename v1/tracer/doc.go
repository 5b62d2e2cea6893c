// Package tracer provides distributed tracing functionality using OpenTelemetry.
//
// The tracer package offers a simplified interface for creating and managing
// spans, and connects them with template logging in two ways:
//   - logger.SinkWithContext adds trace_id and span_id of the span in a
//     context to every zap entry;
//   - EventSink records every template log call as a "log" event on the span
//     in its context, in addition to forwarding it to another sink.
//
// Core Features:
//   - Simple span creation and management
//   - Error recording and status tracking
//   - Customizable span attributes
//   - Cross-service trace context propagation (W3C trace context and baggage)
//   - Optional OTLP/HTTP export
//
// Basic Usage:
//
//	import (
//		"github.com/Aleph-Alpha/tlog/v1/logger"
//		"github.com/Aleph-Alpha/tlog/v1/tlog"
//		"github.com/Aleph-Alpha/tlog/v1/tracer"
//	)
//
//	client := logger.NewLoggerClient(logger.Config{Level: logger.Info, EnableTracing: true})
//	tr, err := tracer.NewClient(tracer.Config{ServiceName: "billing"}, client)
//	if err != nil {
//		return err
//	}
//	defer tr.Shutdown(context.Background())
//
//	ctx, span := tr.StartSpan(context.Background(), "charge")
//	defer span.End()
//
//	sink := tracer.NewEventSink(ctx, client.SinkWithContext(ctx, logger.WithCallerSkip(1)))
//	log, _ := tlog.New(tlog.Config{Enabled: tlog.Ptr(true)}, tlog.WithSink(sink))
//	log.Info([]string{"charging ", ""}, invoice)
//
// Distributed Tracing Across Services:
//
//	// In the sending service
//	for key, value := range tr.GetCarrier(ctx) {
//		req.Header.Set(key, value)
//	}
//
//	// In the receiving service
//	ctx := tr.SetCarrierOnContext(r.Context(), headers)
//	ctx, span := tr.StartSpan(ctx, "handle-request")
//	defer span.End()
//
// FX Module Integration:
//
//	app := fx.New(
//		logger.FXModule,
//		tracer.FXModule,
//		fx.Provide(func() tracer.Config {
//			return tracer.Config{ServiceName: "billing", AppEnv: "production", EnableExport: true}
//		}),
//	)
//
// NewClient installs its provider and propagator as the OpenTelemetry globals.
package tracer
