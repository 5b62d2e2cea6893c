package flatten

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// DefaultDelimiter joins path segments when Options.Delimiter is empty.
const DefaultDelimiter = "."

// circular is stored in place of a value that was already visited on the
// current path.
const circular = "[Circular]"

// Options controls how flattened keys are built.
type Options struct {
	// Prefix is prepended verbatim to every key.
	Prefix string

	// Delimiter joins the path segments of a key.
	// Default: "."
	Delimiter string
}

// Entry is one own key/value pair of an object.
type Entry struct {
	Key   string
	Value any
}

// Flatten converts nested maps, structs, slices and arrays into a single-level
// map. Each key is Prefix followed by the Delimiter-joined path to a leaf:
//
//	Flatten(map[string]any{"a": map[string]any{"b": 1}}, Options{Prefix: "@", Delimiter: "."})
//	// map[string]any{"@a.b": 1}
//
// Leaves are scalars, nil values, empty containers, and structs without
// exported fields (such as time.Time), which are kept as they are. Slice and
// array elements are keyed by their index. A value reached again through a
// pointer or map cycle is recorded as "[Circular]".
//
// Flatten never panics. A scalar input yields a one-entry map keyed by Prefix.
func Flatten(v any, opts Options) map[string]any {
	if opts.Delimiter == "" {
		opts.Delimiter = DefaultDelimiter
	}
	out := make(map[string]any)
	w := walker{opts: opts, out: out, seen: make(map[visit]bool)}
	w.walk(nil, reflect.ValueOf(v))
	return out
}

type walker struct {
	opts Options
	out  map[string]any
	seen map[visit]bool
}

type visit struct {
	ptr uintptr
	len int
	typ reflect.Type
}

func (w *walker) key(path []string) string {
	return w.opts.Prefix + strings.Join(path, w.opts.Delimiter)
}

func (w *walker) leaf(path []string, v reflect.Value) {
	if !v.IsValid() {
		w.out[w.key(path)] = nil
		return
	}
	w.out[w.key(path)] = v.Interface()
}

func (w *walker) walk(path []string, v reflect.Value) {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			w.leaf(path, reflect.Value{})
			return
		}
		if v.Kind() == reflect.Pointer {
			if !w.enter(v) {
				w.out[w.key(path)] = circular
				return
			}
			defer w.leave(v)
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		w.leaf(path, v)
		return
	}

	switch v.Kind() {
	case reflect.Map, reflect.Struct:
		if v.Kind() == reflect.Map {
			if !w.enter(v) {
				w.out[w.key(path)] = circular
				return
			}
			defer w.leave(v)
		}
		entries := entriesOf(v)
		if len(entries) == 0 {
			w.leaf(path, v)
			return
		}
		for _, e := range entries {
			w.walk(appendPath(path, e.Key), reflect.ValueOf(e.Value))
		}
	case reflect.Slice, reflect.Array:
		if v.Len() == 0 {
			w.leaf(path, v)
			return
		}
		if v.Kind() == reflect.Slice {
			if !w.enter(v) {
				w.out[w.key(path)] = circular
				return
			}
			defer w.leave(v)
		}
		for i := 0; i < v.Len(); i++ {
			w.walk(appendPath(path, strconv.Itoa(i)), v.Index(i))
		}
	default:
		w.leaf(path, v)
	}
}

// enter marks a pointer, map or slice as being on the current path. It
// returns false when the value is already there.
func (w *walker) enter(v reflect.Value) bool {
	k := visitOf(v)
	if w.seen[k] {
		return false
	}
	w.seen[k] = true
	return true
}

func (w *walker) leave(v reflect.Value) {
	delete(w.seen, visitOf(v))
}

// visitOf identifies a reference value. Slices sharing a backing array are
// told apart by length.
func visitOf(v reflect.Value) visit {
	k := visit{ptr: v.Pointer(), typ: v.Type()}
	if v.Kind() == reflect.Slice {
		k.len = v.Len()
	}
	return k
}

// JSON renders v as JSON text. When encoding/json rejects v, for instance
// because a map contains itself, v is flattened first so that cycles read
// "[Circular]", and leaves that still cannot be encoded (channels, funcs,
// NaN) are replaced by a plain description. JSON never recurses without bound.
func JSON(v any) string {
	if data, err := json.Marshal(v); err == nil {
		return string(data)
	}

	flat := Flatten(v, Options{})
	if leaf, ok := flat[""]; ok && len(flat) == 1 {
		return describe(leaf)
	}
	for k, leaf := range flat {
		if _, err := json.Marshal(leaf); err != nil {
			flat[k] = describe(leaf)
		}
	}
	data, err := json.Marshal(flat)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// describe renders a leaf that encoding/json rejected. Scalars print their
// value; anything else prints its type.
func describe(v any) string {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Invalid:
		return "null"
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return fmt.Sprint(v)
	}
	return rv.Type().String()
}

// indirect follows pointers and interfaces down to a concrete value. A nil
// pointer or interface yields the zero reflect.Value.
func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func appendPath(path []string, seg string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, seg)
}

// Entries returns the own key/value pairs of v when v is an object: a non-nil
// map or a struct, possibly behind pointers. Map keys are rendered with
// fmt.Sprint and sorted; struct keys are the exported field names, renamed by
// a json tag when present, in declaration order. Embedded structs without a
// tag name contribute their fields directly.
func Entries(v any) ([]Entry, bool) {
	rv := indirect(reflect.ValueOf(v))
	if !rv.IsValid() {
		return nil, false
	}
	if rv.Kind() != reflect.Map && rv.Kind() != reflect.Struct {
		return nil, false
	}
	if rv.Kind() == reflect.Map && rv.IsNil() {
		return nil, false
	}
	return entriesOf(rv), true
}

func entriesOf(v reflect.Value) []Entry {
	switch v.Kind() {
	case reflect.Map:
		entries := make([]Entry, 0, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			entries = append(entries, Entry{Key: mapKey(iter.Key()), Value: iter.Value().Interface()})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
		return entries
	case reflect.Struct:
		return structEntries(v, nil)
	}
	return nil
}

func mapKey(k reflect.Value) string {
	if k.Kind() == reflect.String {
		return k.String()
	}
	return fmt.Sprint(k.Interface())
}

func structEntries(v reflect.Value, into []Entry) []Entry {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, skip := jsonName(f)
		if skip {
			continue
		}
		fv := v.Field(i)
		if f.Anonymous && name == "" {
			if inner := indirect(fv); inner.IsValid() && inner.Kind() == reflect.Struct {
				into = structEntries(inner, into)
				continue
			}
		}
		if name == "" {
			name = f.Name
		}
		into = append(into, Entry{Key: name, Value: fv.Interface()})
	}
	return into
}

func jsonName(f reflect.StructField) (name string, skip bool) {
	tag, ok := f.Tag.Lookup("json")
	if !ok {
		return "", false
	}
	if tag == "-" {
		return "", true
	}
	name, _, _ = strings.Cut(tag, ",")
	return name, false
}
