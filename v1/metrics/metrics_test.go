package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/mock/gomock"

	"github.com/Aleph-Alpha/tlog/v1/logger"
	"github.com/Aleph-Alpha/tlog/v1/tlog"
)

type nopSink struct{}

func (nopSink) Resolve(tlog.Level) (tlog.SinkFunc, bool) {
	return func(...any) {}, true
}

func TestNewMetricsDefaults(t *testing.T) {
	m := NewMetrics(Config{ServiceName: "billing"})

	assert.Equal(t, DefaultMetricsAddress, m.Server.Addr)
	require.NotNil(t, m.Registry)

	count, err := testutil.GatherAndCount(m.Registry, "go_goroutines")
	require.NoError(t, err)
	assert.Zero(t, count, "default collectors are opt-in")
}

func TestNamespacePrefixesMetrics(t *testing.T) {
	m := NewMetrics(Config{ServiceName: "billing", Namespace: "acme"})
	m.ObserveDispatch(tlog.DispatchContext{Level: tlog.LevelInfo, Dispatched: true, PayloadFields: 1})
	m.CreateCounter("invoices_total", "Invoices", []string{"state"}).WithLabelValues("paid").Inc()

	families, err := m.Registry.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
	for _, mf := range families {
		assert.True(t, strings.HasPrefix(mf.GetName(), "acme_"), mf.GetName())
	}
}

func TestObserveDispatch(t *testing.T) {
	m := NewMetrics(Config{ServiceName: "billing"})

	m.ObserveDispatch(tlog.DispatchContext{Level: tlog.LevelInfo, Dispatched: true, PayloadFields: 3, Duration: time.Microsecond})
	m.ObserveDispatch(tlog.DispatchContext{Level: tlog.LevelInfo, Dispatched: true})
	m.ObserveDispatch(tlog.DispatchContext{Level: tlog.LevelDebug})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.callsTotal.WithLabelValues("info", OutcomeDispatched)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.callsTotal.WithLabelValues("debug", OutcomeSuppressed)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.callsTotal.WithLabelValues("debug", OutcomeDispatched)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.payloadFields))
	assert.Equal(t, 1, testutil.CollectAndCount(m.dispatchDuration))
}

func TestMetricsObserveLogger(t *testing.T) {
	m := NewMetrics(Config{ServiceName: "billing"})
	l, err := tlog.New(
		tlog.Config{Enabled: tlog.Ptr(true), MinLevel: tlog.Ptr(tlog.LevelWarn)},
		tlog.WithSink(nopSink{}),
		tlog.WithObserver(m),
	)
	require.NoError(t, err)

	l.Debug([]string{"dropped"})
	l.Warn([]string{"kept ", ""}, map[string]any{"a": 1, "b": 2})
	l.Error([]string{"kept"})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.callsTotal.WithLabelValues("debug", OutcomeSuppressed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.callsTotal.WithLabelValues("warn", OutcomeDispatched)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.callsTotal.WithLabelValues("error", OutcomeDispatched)))
}

func TestMetricsEndpoint(t *testing.T) {
	m := NewMetrics(Config{ServiceName: "billing", Namespace: "acme"})
	m.ObserveDispatch(tlog.DispatchContext{Level: tlog.LevelLog, Dispatched: true})

	rec := httptest.NewRecorder()
	m.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body,
		`acme_tlog_calls_total{level="log",outcome="dispatched",service="billing"} 1`), body)
}

func TestCreateCustomMetrics(t *testing.T) {
	m := NewMetrics(Config{ServiceName: "billing"})

	counter := m.CreateCounter("invoices_total", "Invoices processed", []string{"state"})
	counter.WithLabelValues("paid").Inc()
	gauge := m.CreateGauge("queue_depth", "Pending invoices", nil)
	gauge.WithLabelValues().Set(4)
	hist := m.CreateHistogram("invoice_amount", "Invoice amounts", []string{"currency"}, []float64{1, 10, 100})
	hist.WithLabelValues("eur").Observe(12)

	count, err := testutil.GatherAndCount(m.Registry, "invoices_total", "queue_depth", "invoice_amount")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestDefaultCollectors(t *testing.T) {
	m := NewMetrics(Config{ServiceName: "billing", EnableDefaultCollectors: true})

	count, err := testutil.GatherAndCount(m.Registry, "go_goroutines")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestFXModuleLifecycle(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLog := logger.NewMockLogger(ctrl)

	started := make(chan struct{})
	mockLog.EXPECT().
		Info("Starting Prometheus metrics server", gomock.Nil(), gomock.Any()).
		Do(func(string, error, ...map[string]interface{}) { close(started) })
	mockLog.EXPECT().
		Info("Shutting down Prometheus metrics server", gomock.Nil(), gomock.Nil())

	var (
		m        *Metrics
		observer tlog.Observer
		l        *tlog.Logger
	)
	app := fxtest.New(t,
		FXModule,
		tlog.FXModule,
		fx.Provide(
			func() Config { return Config{Address: "127.0.0.1:0", ServiceName: "fx"} },
			func() logger.Logger { return mockLog },
			func() tlog.Config { return tlog.Config{Enabled: tlog.Ptr(true)} },
			func() tlog.Sink { return nopSink{} },
		),
		fx.Populate(&m, &observer, &l),
	)
	app.RequireStart()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("metrics server did not start")
	}

	assert.Same(t, m, observer)
	l.Info([]string{"hello"})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.callsTotal.WithLabelValues("info", OutcomeDispatched)))

	app.RequireStop()
}
