package tlog

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Aleph-Alpha/tlog/v1/flatten"
)

type sinkCall struct {
	level Level
	args  []any
}

// recordingSink captures every sink write in order.
type recordingSink struct {
	mu    sync.Mutex
	calls []sinkCall
}

func (r *recordingSink) Resolve(level Level) (SinkFunc, bool) {
	return func(args ...any) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.calls = append(r.calls, sinkCall{level: level, args: args})
	}, true
}

func (r *recordingSink) Calls() []sinkCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]sinkCall, len(r.calls))
	copy(out, r.calls)
	return out
}

func (r *recordingSink) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

func newTestLogger(t *testing.T, cfg Config, opts ...Option) (*Logger, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	l, err := New(cfg, append([]Option{WithSink(sink)}, opts...)...)
	require.NoError(t, err)
	return l, sink
}

func enabled() Config {
	return Config{Enabled: Ptr(true)}
}

func TestDisabledLoggerNeverWrites(t *testing.T) {
	l, sink := newTestLogger(t, Config{})

	for _, lvl := range Levels() {
		fn, err := l.Func(lvl.String())
		require.NoError(t, err)
		fn([]string{"msg ", ""}, 1, map[string]any{"a": 1})
	}
	for alias := range Aliases() {
		fn, err := l.Func(alias)
		require.NoError(t, err)
		fn([]string{"msg"})
	}
	l.Default([]string{"msg"})

	assert.Empty(t, sink.Calls())
}

func TestThresholdIsOrdinalMonotone(t *testing.T) {
	for _, minLevel := range Levels() {
		l, sink := newTestLogger(t, Config{Enabled: Ptr(true), MinLevel: Ptr(minLevel)})

		for _, lvl := range Levels() {
			sink.Reset()
			l.funcs[lvl]([]string{"x"})
			fired := len(sink.Calls()) == 1
			assert.Equal(t, lvl.Ordinal() >= minLevel.Ordinal(), fired, "level %s under %s", lvl, minLevel)
		}
	}
}

func TestCallShapes(t *testing.T) {
	l, sink := newTestLogger(t, enabled())
	payload := map[string]any{"a": 1}

	tests := []struct {
		level Level
		want  []any
	}{
		{LevelDebug, []any{"m", "", payload}},
		{LevelInfo, []any{"m", "", payload}},
		{LevelWarn, []any{"m", "", payload}},
		{LevelError, []any{"m", "", payload}},
		{LevelTrace, []any{"m", "", payload}},
		{LevelLog, []any{"m", "", payload}},
		{LevelTimeLog, []any{"m", "", payload}},
		{LevelTable, []any{payload}},
		{LevelAssert, []any{true, "m", "", payload}},
		{LevelGroupEnd, nil},
		{LevelTime, []any{"m"}},
		{LevelTimeEnd, []any{"m"}},
		{LevelTimeStamp, []any{"m"}},
		{LevelGroup, []any{"m"}},
		{LevelGroupCollapsed, []any{"m"}},
		{LevelCount, []any{"m"}},
		{LevelCountReset, []any{"m"}},
	}
	require.Len(t, tests, int(numLevels))

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			sink.Reset()
			l.funcs[tt.level]([]string{"m"}, payload)

			calls := sink.Calls()
			require.Len(t, calls, 1)
			assert.Equal(t, tt.level, calls[0].level)
			assert.Equal(t, len(tt.want), len(calls[0].args))
			for i := range tt.want {
				assert.Equal(t, tt.want[i], calls[0].args[i])
			}
		})
	}
}

func TestPayloadOmittedWhenEmpty(t *testing.T) {
	l, sink := newTestLogger(t, enabled())

	l.Info([]string{"no values"})
	l.Info([]string{"scalar ", ""}, 5)
	l.Info([]string{"empty ", ""}, map[string]any{})
	l.Assert([]string{"assert"}, 0)

	calls := sink.Calls()
	require.Len(t, calls, 4)
	assert.Equal(t, []any{"no values", ""}, calls[0].args)
	assert.Equal(t, []any{"scalar 5", ""}, calls[1].args)
	assert.Equal(t, []any{"empty ", ""}, calls[2].args)
	assert.Equal(t, []any{false, "assert", ""}, calls[3].args)
}

func TestTableWithoutPayload(t *testing.T) {
	l, sink := newTestLogger(t, Config{
		Enabled: Ptr(true),
		Options: &OptionsConfig{ExcludeOutputObject: Ptr(true)},
	})

	l.Table([]string{"ignored"}, map[string]any{"a": 1})
	calls := sink.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, []any{nil}, calls[0].args)
}

func TestMessageUsesOnlyInlineValues(t *testing.T) {
	l, sink := newTestLogger(t, enabled())

	l.Info([]string{"user ", " did ", ""}, 7, map[string]any{"ip": "::1"}, "login")

	calls := sink.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "user 7 did login", calls[0].args[0])
	assert.Equal(t, map[string]any{"arg0": 7, "ip": "::1", "login": "login"}, calls[0].args[2])
}

func TestPrefixAndStyle(t *testing.T) {
	l, sink := newTestLogger(t, Config{
		Enabled: Ptr(true),
		Prefix:  Ptr("[svc]"),
		Options: &OptionsConfig{Style: map[string]string{"fontWeight": "bold", "color": "red"}},
	})

	l.Warn([]string{"careful"})
	l.Time([]string{"load"})

	calls := sink.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, []any{"%c[svc] careful", "color:red;font-weight:bold;"}, calls[0].args)
	assert.Equal(t, []any{"%c[svc] load"}, calls[1].args)
}

func TestAssertCoercion(t *testing.T) {
	l, sink := newTestLogger(t, enabled())

	l.Assert([]string{"a"}, "non-empty")
	l.Assert([]string{"b"}, "")
	l.Assert([]string{"c"})
	l.Assert([]string{"d"}, nil, map[string]any{"k": "v"})

	calls := sink.Calls()
	require.Len(t, calls, 4)
	assert.Equal(t, true, calls[0].args[0])
	assert.Equal(t, false, calls[1].args[0])
	assert.Equal(t, false, calls[2].args[0])
	assert.Equal(t, []any{false, "d", "", map[string]any{"arg0": nil, "k": "v"}}, calls[3].args)
}

func TestAliasesMatchCanonicalMethods(t *testing.T) {
	l, sink := newTestLogger(t, enabled())
	pairs := map[string][2]LogFunc{
		"i":       {l.I, l.Info},
		"t":       {l.T, l.Time},
		"err":     {l.Err, l.Error},
		"dbg":     {l.Dbg, l.Debug},
		"tab":     {l.Tab, l.Table},
		"default": {l.Default, l.Log},
	}

	for name, p := range pairs {
		sink.Reset()
		p[0]([]string{"x ", ""}, 1, map[string]any{"a": 1})
		p[1]([]string{"x ", ""}, 1, map[string]any{"a": 1})
		calls := sink.Calls()
		require.Len(t, calls, 2, name)
		assert.Equal(t, calls[1], calls[0], name)
	}
}

func TestConfigureKeepsUnrelatedFields(t *testing.T) {
	l, _ := newTestLogger(t, Config{
		Prefix:  Ptr("[svc]"),
		Options: &OptionsConfig{TableIndexPrefix: Ptr("@")},
	})

	require.NoError(t, l.Configure(Config{Options: &OptionsConfig{Style: map[string]string{"color": "red"}}}))

	cfg := l.Snapshot()
	assert.Equal(t, "[svc]", cfg.Prefix)
	assert.Equal(t, "@", cfg.Options.TableIndexPrefix)
	assert.Equal(t, map[string]string{"color": "red"}, cfg.Options.Style)
}

func TestConfigureErrorKeepsConfig(t *testing.T) {
	l, _ := newTestLogger(t, enabled())
	before := l.Snapshot()

	err := l.Configure(Config{Prefix: Ptr("[new]"), Options: &OptionsConfig{PrimitivesAllowedInTemplateString: []Kind{"date"}}})
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Equal(t, before, l.Snapshot())
}

func TestConfigureTakesEffect(t *testing.T) {
	l, sink := newTestLogger(t, Config{})

	l.Info([]string{"dropped"})
	require.NoError(t, l.Configure(enabled()))
	l.Info([]string{"kept"})
	require.NoError(t, l.Configure(Config{MinLevel: Ptr(LevelError)}))
	l.Warn([]string{"dropped"})

	calls := sink.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "kept", calls[0].args[0])
}

func TestSnapshotIsACopy(t *testing.T) {
	l, _ := newTestLogger(t, Config{Options: &OptionsConfig{Style: map[string]string{"color": "red"}}})

	snap := l.Snapshot()
	snap.Options.Style["color"] = "blue"
	snap.Options.PrimitivesAllowedInTemplateString[0] = KindObject

	assert.Equal(t, "red", l.Snapshot().Options.Style["color"])
	assert.Equal(t, KindBigint, l.Snapshot().Options.PrimitivesAllowedInTemplateString[0])
}

func TestInspect(t *testing.T) {
	l, _ := newTestLogger(t, Config{Enabled: Ptr(true), Prefix: Ptr("p"), MinLevel: Ptr(LevelWarn)})

	assert.Equal(t, l.Snapshot(), l.Inspect(""))
	assert.Equal(t, true, l.Inspect("enabled"))
	assert.Equal(t, "p", l.Inspect("prefix"))
	assert.Equal(t, LevelWarn, l.Inspect("minLevel"))
	assert.Equal(t, l.Snapshot().Options, l.Inspect("options"))
	assert.Nil(t, l.Inspect("colour"))
}

func TestNewRejectsIncompleteSink(t *testing.T) {
	table := SinkTable{}
	for _, lvl := range Levels() {
		if lvl == LevelCountReset {
			continue
		}
		table[lvl] = func(...any) {}
	}

	_, err := New(Config{}, WithSink(table))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Contains(t, err.Error(), "countReset")

	table[LevelCountReset] = nil
	_, err = New(Config{}, WithSink(table))
	assert.ErrorIs(t, err, ErrConfiguration)

	table[LevelCountReset] = func(...any) {}
	_, err = New(Config{}, WithSink(table))
	assert.NoError(t, err)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(Config{MinLevel: Ptr(Level(-3))}, WithSink(&recordingSink{}))
	assert.ErrorIs(t, err, ErrConfiguration)

	assert.Panics(t, func() {
		MustNew(Config{Options: &OptionsConfig{Type: Ptr(LogType("x"))}})
	})
}

func TestFuncUnknownLevel(t *testing.T) {
	l, _ := newTestLogger(t, enabled())
	_, err := l.Func("shout")
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestWithFlattener(t *testing.T) {
	calledWith := flatten.Options{}
	l, sink := newTestLogger(t, Config{
		Enabled: Ptr(true),
		Options: &OptionsConfig{
			FlattenOutputObject: Ptr(true),
			TableIndexPrefix:    Ptr("#"),
			TableIndexDelimeter: Ptr(":"),
		},
	}, WithFlattener(func(v any, opts flatten.Options) map[string]any {
		calledWith = opts
		return flatten.Flatten(v, opts)
	}))

	l.Log([]string{"nested"}, map[string]any{"a": map[string]any{"b": 1}})

	calls := sink.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, map[string]any{"#a:b": 1}, calls[0].args[2])
	assert.Equal(t, flatten.Options{Prefix: "#", Delimiter: ":"}, calledWith)
}

func TestObserverNotifications(t *testing.T) {
	ctrl := gomock.NewController(t)
	obs := NewMockObserver(ctrl)

	var seen []DispatchContext
	obs.EXPECT().ObserveDispatch(gomock.Any()).Do(func(ctx DispatchContext) {
		seen = append(seen, ctx)
	}).Times(4)

	l, _ := newTestLogger(t, Config{Enabled: Ptr(true), MinLevel: Ptr(LevelInfo)}, WithObserver(obs))

	l.Debug([]string{"suppressed"})
	l.Info([]string{"with payload"}, "a", map[string]any{"b": 1, "c": 2})
	l.Count([]string{"counter"}, map[string]any{"x": 1})
	l.GroupEnd(nil)

	require.Len(t, seen, 4)
	assert.Equal(t, LevelDebug, seen[0].Level)
	assert.False(t, seen[0].Dispatched)

	assert.Equal(t, LevelInfo, seen[1].Level)
	assert.True(t, seen[1].Dispatched)
	assert.Equal(t, 3, seen[1].PayloadFields)

	assert.Equal(t, LevelCount, seen[2].Level)
	assert.Equal(t, 0, seen[2].PayloadFields)

	assert.Equal(t, LevelGroupEnd, seen[3].Level)
	assert.True(t, seen[3].Dispatched)
}

func TestObserverFunc(t *testing.T) {
	var got DispatchContext
	l, _ := newTestLogger(t, enabled(), WithObserver(ObserverFunc(func(ctx DispatchContext) { got = ctx })))

	l.Tab(nil, []int{1, 2, 3})
	assert.Equal(t, LevelTable, got.Level)
	assert.Equal(t, 3, got.PayloadFields)
}

func TestConcurrentCallsAndConfigure(t *testing.T) {
	l, sink := newTestLogger(t, enabled())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				l.Info([]string{"worker ", " step ", ""}, i, j)
			}
		}(i)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 100; j++ {
			_ = l.Configure(Config{Prefix: Ptr("[p]"), Options: &OptionsConfig{Style: map[string]string{"color": "red"}}})
			_ = l.Configure(Config{Prefix: Ptr(""), Options: &OptionsConfig{Style: map[string]string{}}})
		}
	}()
	wg.Wait()

	calls := sink.Calls()
	assert.Len(t, calls, 800)
	for _, c := range calls {
		msg := c.args[0].(string)
		style := c.args[1].(string)
		// prefix and style always come from the same snapshot
		if style == "" {
			assert.NotContains(t, msg, "%c")
		} else {
			assert.Contains(t, msg, "%c")
		}
	}
}

func TestSelfReferencingObjectInMessage(t *testing.T) {
	l, sink := newTestLogger(t, Config{
		Enabled: Ptr(true),
		Options: &OptionsConfig{PrimitivesAllowedInTemplateString: []Kind{KindString, KindObject}},
	})

	require.NotPanics(t, func() {
		l.Info([]string{"state: ", ""}, selfMap())
	})
	calls := sink.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, `state: {"k":1,"m":"[Circular]"}`, calls[0].args[0])
}

func TestNumbersFoldUnderArgKeys(t *testing.T) {
	l, sink := newTestLogger(t, Config{Enabled: Ptr(true), Prefix: Ptr("[billing]")})

	l.Info([]string{"charged ", " for order ", ""}, 42.5, 1234)
	calls := sink.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, []any{
		"[billing] charged 42.5 for order 1234",
		"",
		map[string]any{"arg0": 42.5, "arg1": 1234},
	}, calls[0].args)
}
