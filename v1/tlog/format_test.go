package tlog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatMessage(t *testing.T) {
	tests := []struct {
		name     string
		segments []string
		values   []any
		want     string
	}{
		{"interleaved", []string{"Hello ", ""}, []any{"World"}, "Hello World"},
		{"no segments", []string{}, []any{1, 2}, "12"},
		{"nil segments", nil, []any{"a", true}, "atrue"},
		{"no values", []string{"plain ", "text"}, nil, "plain text"},
		{"more values than segments", []string{"a"}, []any{1, 2}, "a12"},
		{"more segments than values", []string{"a", "b", "c"}, []any{1}, "a1bc"},
		{"nil value", []string{"v=", ""}, []any{nil}, "v=null"},
		{"error value", []string{"failed: ", ""}, []any{errors.New("boom")}, "failed: boom"},
		{"slice value", []string{"ids ", ""}, []any{[]int{1, 2}}, "ids [1,2]"},
		{"map value", []string{"user ", ""}, []any{map[string]any{"id": 7}}, `user {"id":7}`},
		{"nothing", nil, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatMessage(tt.segments, tt.values))
		})
	}
}

// selfMap returns a map that contains itself under "m".
func selfMap() map[string]any {
	m := map[string]any{"k": 1}
	m["m"] = m
	return m
}

func TestFormatMessageSelfReferencingValues(t *testing.T) {
	loop := []any{"a", nil}
	loop[1] = loop

	assert.NotPanics(t, func() {
		assert.Equal(t, `state: {"k":1,"m":"[Circular]"}`, FormatMessage([]string{"state: ", ""}, []any{selfMap()}))
		assert.Equal(t, `list: {"0":"a","1":"[Circular]"}`, FormatMessage([]string{"list: ", ""}, []any{loop}))
	})
}

func TestEncodeStyle(t *testing.T) {
	assert.Equal(t, "", EncodeStyle(nil))
	assert.Equal(t, "", EncodeStyle(map[string]string{}))
	assert.Equal(t, "color:red;", EncodeStyle(map[string]string{"color": "red"}))
	assert.Equal(t,
		"background-color:#fff;color:red;font-weight:bold;",
		EncodeStyle(map[string]string{"fontWeight": "bold", "color": "red", "backgroundColor": "#fff"}),
	)
}

func TestCamelToKebab(t *testing.T) {
	cases := map[string]string{
		"color":           "color",
		"fontWeight":      "font-weight",
		"backgroundColor": "background-color",
		"h1Size":          "h1-size",
		"Color":           "color",
		"URLPath":         "urlpath",
		"":                "",
	}
	for in, want := range cases {
		assert.Equal(t, want, camelToKebab(in), in)
	}
}

func TestPrefixMessage(t *testing.T) {
	assert.Equal(t, "msg", prefixMessage("", "msg"))
	assert.Equal(t, "[app] msg", prefixMessage("[app]", "msg"))
}
