package tlog

import (
	"strconv"

	"github.com/Aleph-Alpha/tlog/v1/flatten"
)

// FlattenFunc converts a composed payload into a single-level map.
type FlattenFunc func(v any, opts flatten.Options) map[string]any

// ComposePayload builds the structured side-object of a call from its
// interpolated values. The second result is false when no payload is produced.
//
// Rules, in order:
//   - ExcludeOutputObject: no payload.
//   - a single value is the payload itself, without a wrapping key.
//   - otherwise values fold into one map: with SkipPrimitivesIncludedInMessage,
//     values whose kind is in PrimitivesAllowedInTemplateString are dropped;
//     strings are stored under themselves; maps and structs merge their own
//     keys, later values winning; anything else is stored as "arg<index>".
//   - FlattenOutputObject: the result goes through flatten.Flatten using
//     TableIndexPrefix and TableIndexDelimeter.
//
// ComposePayload accepts values of any type and never fails.
func ComposePayload(values []any, opts Options) (any, bool) {
	return composePayload(values, opts, flatten.Flatten)
}

func composePayload(values []any, opts Options, flattenFn FlattenFunc) (any, bool) {
	if opts.ExcludeOutputObject {
		return nil, false
	}

	var payload any
	if len(values) == 1 {
		payload = values[0]
	} else {
		payload = foldValues(values, opts)
	}

	if opts.FlattenOutputObject && isNonEmptyObject(payload) {
		payload = flattenFn(payload, flatten.Options{
			Prefix:    opts.TableIndexPrefix,
			Delimiter: opts.TableIndexDelimeter,
		})
	}
	return payload, true
}

func foldValues(values []any, opts Options) map[string]any {
	acc := make(map[string]any, len(values))
	for i, v := range values {
		if opts.SkipPrimitivesIncludedInMessage && matchesKinds(v, opts.PrimitivesAllowedInTemplateString) {
			continue
		}
		if s, ok := v.(string); ok {
			acc[s] = s
			continue
		}
		if entries, ok := flatten.Entries(v); ok {
			for _, e := range entries {
				acc[e.Key] = e.Value
			}
			continue
		}
		acc["arg"+strconv.Itoa(i)] = v
	}
	return acc
}
