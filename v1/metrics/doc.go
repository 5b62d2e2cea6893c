// Package metrics provides Prometheus metrics for template logging.
//
// A *Metrics is a tlog.Observer: attached to a tlog.Logger it counts every
// call by level and outcome, and records payload sizes and dispatch latency.
// It also owns an isolated registry and the HTTP server exposing it.
//
// # Architecture
//
// This package follows the "accept interfaces, return structs" design pattern:
//   - MetricsCollector interface: tlog.Observer plus the metric factories
//   - Metrics struct: Concrete implementation of the MetricsCollector interface
//   - NewMetrics constructor: Returns *Metrics (concrete type)
//   - FX module: Provides *Metrics, MetricsCollector and tlog.Observer
//
// Exposed metrics (all carrying service="<ServiceName>"):
//
//	tlog_calls_total{level,outcome}          outcome is "dispatched" or "suppressed"
//	tlog_payload_fields{level}               histogram of payload keys per call
//	tlog_dispatch_duration_seconds{level}    histogram of dispatch latency
//
// # Direct Usage (Without FX)
//
//	import (
//		"github.com/Aleph-Alpha/tlog/v1/metrics"
//		"github.com/Aleph-Alpha/tlog/v1/tlog"
//	)
//
//	m := metrics.NewMetrics(metrics.Config{
//		Address:     ":9090",
//		ServiceName: "billing",
//	})
//	go m.Server.ListenAndServe()
//
//	log, err := tlog.New(tlog.Config{Enabled: tlog.Ptr(true)}, tlog.WithObserver(m))
//
// # FX Module Integration
//
//	app := fx.New(
//		logger.FXModule,  // logger.Logger for lifecycle messages
//		metrics.FXModule, // *Metrics, MetricsCollector, tlog.Observer
//		tlog.FXModule,    // *tlog.Logger observed by the metrics above
//		fx.Provide(func() metrics.Config {
//			return metrics.Config{Address: ":9090", ServiceName: "billing"}
//		}),
//	)
//	app.Run()
//
// # Configuration
//
// The metrics server can be configured via environment variables:
//
//	METRICS_ADDRESS=:9090                      # Port and address for /metrics endpoint
//	METRICS_ENABLE_DEFAULT_COLLECTORS=true     # Enable runtime and process metrics
//	METRICS_NAMESPACE=billing                  # Optional prefix for all metric names
//	METRICS_SERVICE_NAME=billing               # Adds service label to all metrics
//
// # Custom Metrics
//
// CreateCounter, CreateHistogram and CreateGauge register additional
// collectors with the same namespace and service label.
//
// # Thread Safety
//
// All methods on the Metrics struct and Prometheus collectors are safe for
// concurrent use by multiple goroutines.
package metrics
