package tlog

import (
	"sort"
	"strings"
)

// StyleToken marks a message that is followed by a style argument. Console
// sinks replace it with the rendered style.
const StyleToken = "%c"

// FormatMessage interpolates values into the literal segments of a template
// call. Segment i is followed by value i; whichever list is longer simply
// contributes its remaining items, so a mismatch never fails:
//
//	FormatMessage([]string{"Hello ", ""}, []any{"World"}) // "Hello World"
//	FormatMessage([]string{"a"}, []any{1, 2})             // "a12"
//
// Without segments, the values are concatenated. Without values, the segments
// are concatenated.
func FormatMessage(segments []string, values []any) string {
	var b strings.Builder
	if len(segments) == 0 {
		for _, v := range values {
			b.WriteString(stringify(v))
		}
		return b.String()
	}
	if len(values) == 0 {
		return strings.Join(segments, "")
	}

	n := max(len(segments), len(values))
	for i := 0; i < n; i++ {
		if i < len(segments) {
			b.WriteString(segments[i])
		}
		if i < len(values) {
			b.WriteString(stringify(values[i]))
		}
	}
	return b.String()
}

func prefixMessage(prefix, message string) string {
	if prefix == "" {
		return message
	}
	return prefix + " " + message
}

// EncodeStyle renders a CSS-like style map as "key:value;" pairs with keys in
// kebab-case and sorted order:
//
//	EncodeStyle(map[string]string{"fontWeight": "bold", "color": "red"})
//	// "color:red;font-weight:bold;"
func EncodeStyle(style map[string]string) string {
	if len(style) == 0 {
		return ""
	}
	keys := make([]string, 0, len(style))
	for k := range style {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(camelToKebab(k))
		b.WriteByte(':')
		b.WriteString(style[k])
		b.WriteByte(';')
	}
	return b.String()
}

// camelToKebab inserts a hyphen between an ASCII lowercase letter or digit and
// a following ASCII uppercase letter, then lowercases the result.
func camelToKebab(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if i > 0 && isUpper(c) && (isLower(s[i-1]) || isDigit(s[i-1])) {
			b.WriteByte('-')
		}
		b.WriteByte(c)
	}
	return strings.ToLower(b.String())
}

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }
func isLower(c byte) bool { return c >= 'a' && c <= 'z' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }
