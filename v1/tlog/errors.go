package tlog

import "errors"

// ErrConfiguration is returned when a logger cannot be built or reconfigured:
// an unknown level or alias name, an unknown primitive kind, a sink that does
// not provide every canonical level, or a config source that cannot be parsed.
//
// Emitting a log entry never returns an error; every configuration problem
// surfaces at construction or in Configure.
var ErrConfiguration = errors.New("tlog: configuration error")

// IsConfigurationError checks if the error is a configuration error.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}
