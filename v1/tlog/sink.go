package tlog

// SinkFunc is one sink operation. Its arguments follow the call shape of the
// level it is bound to:
//
//	table                                    (payload)
//	assert                                   (assertion bool, message, style[, payload])
//	groupEnd                                 ()
//	time, timeEnd, timeStamp, group,
//	groupCollapsed, count, countReset        (message)
//	everything else                          (message, style[, payload])
//
// message and style are strings. payload is only present when it carries at
// least one key or element.
type SinkFunc func(args ...any)

// Sink supplies one operation per canonical level. Resolve is called once for
// every level when a Logger is built; a level it cannot resolve makes New fail.
type Sink interface {
	Resolve(level Level) (SinkFunc, bool)
}

// SinkTable is a Sink backed by a map, convenient for tests and for adapting
// a handful of functions.
type SinkTable map[Level]SinkFunc

// Resolve implements Sink.
func (t SinkTable) Resolve(level Level) (SinkFunc, bool) {
	fn, ok := t[level]
	return fn, ok && fn != nil
}

// Syncer is implemented by sinks that buffer output. Logger.Sync forwards to
// it.
type Syncer interface {
	Sync() error
}
