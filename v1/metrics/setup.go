package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values of tlog_calls_total.
const (
	OutcomeDispatched = "dispatched"
	OutcomeSuppressed = "suppressed"
)

// Metrics encapsulates the Prometheus registry and HTTP server responsible
// for exposing template logger metrics.
//
// This structure provides the components needed to register metrics collectors
// and serve them via the /metrics HTTP endpoint for Prometheus scraping.
type Metrics struct {
	// Server defines the HTTP server used to expose the /metrics endpoint.
	Server *http.Server

	// Registry is the Prometheus registry where all metrics are registered.
	// Each service maintains its own isolated registry to prevent metric name collisions.
	Registry *prometheus.Registry

	// registerer adds the service label to everything registered through it.
	registerer prometheus.Registerer
	namespace  string

	// Core built-in metrics
	callsTotal       *prometheus.CounterVec
	payloadFields    *prometheus.HistogramVec
	dispatchDuration *prometheus.HistogramVec
}

// NewMetrics initializes and returns a new instance of the Metrics struct.
// It sets up a dedicated Prometheus registry, registers the dispatch metrics
// and optionally the default system collectors, wraps all metrics with a
// constant `service` label, and creates an HTTP server exposing the /metrics
// endpoint.
//
// The dispatch metrics are:
//   - tlog_calls_total{level,outcome}: every call, dispatched or suppressed
//   - tlog_payload_fields{level}: payload keys written per dispatched call
//   - tlog_dispatch_duration_seconds{level}: time spent in dispatch
//
// Example:
//
//	m := metrics.NewMetrics(metrics.Config{
//	    Address:     ":9090",
//	    ServiceName: "billing",
//	})
//	log, _ := tlog.New(cfg, tlog.WithObserver(m))
//	go m.Server.ListenAndServe()
//
// Access metrics at: http://localhost:9090/metrics
func NewMetrics(cfg Config) *Metrics {
	// Create a new isolated Prometheus registry for this service.
	registry := prometheus.NewRegistry()

	// All metrics emitted by this service carry service="<cfg.ServiceName>".
	wrappedRegistry := prometheus.WrapRegistererWith(
		prometheus.Labels{"service": cfg.ServiceName},
		registry,
	)

	m := &Metrics{
		Registry:   registry,
		registerer: wrappedRegistry,
		namespace:  cfg.Namespace,
	}

	m.callsTotal = createCounterVec(cfg.Namespace, "tlog_calls_total",
		"Total number of template log calls by level and outcome", []string{"level", "outcome"})
	m.payloadFields = createHistogramVec(cfg.Namespace, "tlog_payload_fields",
		"Number of payload fields written per dispatched call", []string{"level"},
		prometheus.ExponentialBuckets(1, 2, 8))
	m.dispatchDuration = createHistogramVec(cfg.Namespace, "tlog_dispatch_duration_seconds",
		"Time spent dispatching a template log call in seconds", []string{"level"},
		prometheus.ExponentialBuckets(1e-6, 4, 10))

	wrappedRegistry.MustRegister(
		m.callsTotal,
		m.payloadFields,
		m.dispatchDuration,
	)

	// Register standard collectors if enabled.
	//   - GoCollector: Memory usage, goroutines, GC stats
	//   - ProcessCollector: CPU, file descriptors, memory stats
	//   - BuildInfoCollector: Binary version/build info
	if cfg.EnableDefaultCollectors {
		wrappedRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	addr := cfg.Address
	if addr == "" {
		addr = DefaultMetricsAddress
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	m.Server = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return m
}
