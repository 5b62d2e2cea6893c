package metrics

// DefaultMetricsAddress is where the /metrics endpoint listens when
// Config.Address is empty.
const DefaultMetricsAddress = ":9090"

// Config controls the dispatch metrics recorded for template loggers and the
// HTTP server that exposes them.
type Config struct {
	// Address is the listen address of the /metrics endpoint.
	// RegisterMetricsLifecycle starts the server on it; with NewMetrics alone
	// nothing listens until Server.ListenAndServe is called.
	//
	// Example values:
	//   - ":9090"          → all interfaces, port 9090
	//   - "127.0.0.1:0"    → localhost, any free port (tests)
	//
	// Env: METRICS_ADDRESS. Default: ":9090"
	Address string `yaml:"address" envconfig:"METRICS_ADDRESS"`

	// EnableDefaultCollectors adds the Go runtime, process and build-info
	// collectors to the registry next to the tlog_* metrics.
	//
	// Env: METRICS_ENABLE_DEFAULT_COLLECTORS. Default: false
	EnableDefaultCollectors bool `yaml:"enable_default_collectors" envconfig:"METRICS_ENABLE_DEFAULT_COLLECTORS"`

	// Namespace prefixes the name of every metric created by this package,
	// the tlog_* dispatch metrics and those from CreateCounter and friends.
	//
	//   Namespace: "billing" → billing_tlog_calls_total
	//
	// Env: METRICS_NAMESPACE
	Namespace string `yaml:"namespace" envconfig:"METRICS_NAMESPACE"`

	// ServiceName is attached as a constant service="..." label to every
	// metric in the registry, including the default collectors.
	//
	// Env: METRICS_SERVICE_NAME
	ServiceName string `yaml:"service_name" envconfig:"METRICS_SERVICE_NAME"`
}
