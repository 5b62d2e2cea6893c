package tlog

import "time"

// DispatchContext describes one level-method call after it has completed.
type DispatchContext struct {
	// Level is the canonical level the call resolved to.
	Level Level

	// Dispatched is false when the call was suppressed by the enabled flag or
	// the minimum level.
	Dispatched bool

	// PayloadFields is the number of keys or elements in the payload handed to
	// the sink. It is zero when no payload was written.
	PayloadFields int

	// Duration covers formatting, payload composition and the sink write.
	Duration time.Duration
}

// Observer is notified after every level-method call, whether or not the
// call reached the sink. Implementations must be safe for concurrent use and
// should return quickly; they run on the caller's goroutine.
//
//go:generate mockgen -source=observer.go -destination=mock_observer.go -package=tlog
type Observer interface {
	ObserveDispatch(ctx DispatchContext)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(ctx DispatchContext)

// ObserveDispatch implements Observer.
func (f ObserverFunc) ObserveDispatch(ctx DispatchContext) {
	f(ctx)
}
