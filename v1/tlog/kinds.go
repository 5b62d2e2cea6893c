package tlog

import (
	"fmt"
	"math"
	"math/big"
	"reflect"

	"github.com/Aleph-Alpha/tlog/v1/flatten"
)

// Kind is the primitive-kind tag of an interpolated value. The names follow
// the JavaScript typeof vocabulary so that configs written for browser-side
// loggers keep working, plus the pseudo-kind KindNullish.
type Kind string

const (
	KindBigint    Kind = "bigint"
	KindBoolean   Kind = "boolean"
	KindNumber    Kind = "number"
	KindString    Kind = "string"
	KindFunction  Kind = "function"
	KindObject    Kind = "object"
	KindSymbol    Kind = "symbol"
	KindUndefined Kind = "undefined"

	// KindNullish matches nil, empty slices and arrays, and objects without
	// own keys. Zero, "" and false are not nullish.
	KindNullish Kind = "nullish"
)

var knownKinds = map[Kind]bool{
	KindBigint:    true,
	KindBoolean:   true,
	KindNumber:    true,
	KindString:    true,
	KindFunction:  true,
	KindObject:    true,
	KindSymbol:    true,
	KindUndefined: true,
	KindNullish:   true,
}

// Valid reports whether k is a known kind tag.
func (k Kind) Valid() bool {
	return knownKinds[k]
}

var (
	bigIntType   = reflect.TypeOf(big.Int{})
	bigFloatType = reflect.TypeOf(big.Float{})
	bigRatType   = reflect.TypeOf(big.Rat{})
)

// Classify returns the primitive kind of v and whether v is nullish.
//
// Go values map onto kinds as follows: strings → string, bools → boolean,
// integers, floats and complex numbers → number, math/big values → bigint,
// funcs → function, everything else → object. Pointers and interfaces are
// followed. Nothing classifies as symbol or undefined; those tags are only
// accepted in configuration.
func Classify(v any) (kind Kind, nullish bool) {
	return classifyValue(reflect.ValueOf(v))
}

func classifyValue(rv reflect.Value) (Kind, bool) {
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return KindObject, true
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return KindObject, true
	}

	switch rv.Type() {
	case bigIntType, bigFloatType, bigRatType:
		return KindBigint, false
	}

	switch rv.Kind() {
	case reflect.String:
		return KindString, false
	case reflect.Bool:
		return KindBoolean, false
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return KindNumber, false
	case reflect.Func:
		if rv.IsNil() {
			return KindObject, true
		}
		return KindFunction, false
	case reflect.Slice:
		return KindObject, rv.IsNil() || rv.Len() == 0
	case reflect.Array:
		return KindObject, rv.Len() == 0
	case reflect.Map, reflect.Struct:
		entries, ok := flatten.Entries(rv.Interface())
		return KindObject, !ok || len(entries) == 0
	case reflect.Chan, reflect.UnsafePointer:
		return KindObject, rv.IsNil()
	}
	return KindObject, false
}

// matchesKinds reports whether v's kind, or KindNullish for a nullish v, is in
// the allowed set.
func matchesKinds(v any, allowed []Kind) bool {
	kind, nullish := Classify(v)
	for _, k := range allowed {
		if k == kind || (nullish && k == KindNullish) {
			return true
		}
	}
	return false
}

// isNonEmptyObject reports whether a payload carries at least one key or
// element. Only such payloads are handed to the sink.
func isNonEmptyObject(v any) bool {
	if entries, ok := flatten.Entries(v); ok {
		return len(entries) > 0
	}
	rv := reflect.ValueOf(v)
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return false
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv.Len() > 0
	}
	return false
}

// truthy applies JavaScript truthiness to v: nil, false, zero, NaN and "" are
// falsy, nil pointers, maps, slices, funcs and channels are falsy, everything
// else is truthy.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case *big.Int:
		return x != nil && x.Sign() != 0
	case *big.Float:
		return x != nil && x.Sign() != 0
	case *big.Rat:
		return x != nil && x.Sign() != 0
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f != 0 && !math.IsNaN(f)
	case reflect.Complex64, reflect.Complex128:
		return rv.Complex() != 0
	case reflect.String:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface, reflect.UnsafePointer:
		return !rv.IsNil()
	}
	return true
}

// stringify renders an interpolated value for the message text. nil renders
// as "null". Values with an Error or String method and scalars go through
// fmt, which recovers from panics inside those methods. Maps, slices, arrays
// and structs render as JSON with cycles cut.
func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case error, fmt.Stringer:
		return fmt.Sprint(v)
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		return flatten.JSON(v)
	}
	return fmt.Sprint(v)
}
