package tlog

import "sort"

// Management member names recognized by IsKnownMember and Accessor.Get in
// addition to the level names and aliases.
const (
	MemberConfigure = "configure"
	MemberInspect   = "inspect"
	MemberSnapshot  = "snapshot"
	MemberDefault   = "default"
	MemberFunc      = "func"
)

var managementMembers = map[string]bool{
	MemberConfigure: true,
	MemberInspect:   true,
	MemberSnapshot:  true,
	MemberDefault:   true,
	MemberFunc:      true,
}

// Prefixed returns a logger on the default sink whose only non-default
// setting is prefix. Like any logger built from defaults it starts disabled.
func Prefixed(prefix string) *Logger {
	return MustNew(Config{Prefix: &prefix})
}

// CreateLog builds a logger from cfg and returns the callable for one level.
// An empty level selects "log". Aliases are accepted.
func CreateLog(cfg Config, level string, opts ...Option) (LogFunc, error) {
	if level == "" {
		level = LevelLog.String()
	}
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	l, err := New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return l.funcs[lvl], nil
}

// Selector maps a level name or alias to the callable of a shared logger.
type Selector func(level string) (LogFunc, error)

// CreateSelector builds one logger from cfg and returns a Selector over it.
// All callables handed out by the selector share that logger's configuration.
func CreateSelector(cfg Config, opts ...Option) (Selector, error) {
	l, err := New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return l.Func, nil
}

// IsKnownMember reports whether name is a level, an alias, or one of the
// management members (configure, inspect, snapshot, default, func).
func IsKnownMember(name string) bool {
	if _, err := ParseLevel(name); err == nil {
		return true
	}
	return managementMembers[name]
}

// KnownMembers returns every name IsKnownMember accepts, sorted.
func KnownMembers() []string {
	names := make([]string, 0, int(numLevels)+len(aliases)+len(managementMembers))
	for _, lvl := range Levels() {
		names = append(names, lvl.String())
	}
	names = append(names, aliasNames()...)
	for name := range managementMembers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Accessor looks up a logger's members by name. Looking up any name that is
// not a known member yields the configuration snapshot instead of nothing.
type Accessor struct {
	logger *Logger
}

// Wrap returns an Accessor over l.
func Wrap(l *Logger) *Accessor {
	return &Accessor{logger: l}
}

// Logger returns the wrapped logger.
func (a *Accessor) Logger() *Logger {
	return a.logger
}

// Get returns the member called name:
//
//   - a level name or alias yields its LogFunc;
//   - "configure" yields func(Config) error;
//   - "inspect" yields func(string) any;
//   - "snapshot" yields func() LoggerConfig;
//   - "default" yields a LogFunc dispatching at log;
//   - "func" yields func(string) (LogFunc, error);
//   - any other name yields the current LoggerConfig.
func (a *Accessor) Get(name string) any {
	l := a.logger
	if lvl, err := ParseLevel(name); err == nil {
		return l.funcs[lvl]
	}
	switch name {
	case MemberConfigure:
		return l.Configure
	case MemberInspect:
		return l.Inspect
	case MemberSnapshot:
		return l.Snapshot
	case MemberDefault:
		return LogFunc(l.Default)
	case MemberFunc:
		return l.Func
	}
	return l.Snapshot()
}
