package tlog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStyle(t *testing.T) {
	assert.Equal(t,
		map[string]string{"color": "red", "font-weight": "bold"},
		ParseStyle("color:red; Font-Weight : bold;;junk;"),
	)
	assert.Empty(t, ParseStyle(""))
}

func TestParseHex(t *testing.T) {
	r, g, b, ok := parseHex("#ff8000")
	assert.True(t, ok)
	assert.Equal(t, []int{255, 128, 0}, []int{r, g, b})

	r, g, b, ok = parseHex("#0f0")
	assert.True(t, ok)
	assert.Equal(t, []int{0, 255, 0}, []int{r, g, b})

	for _, bad := range []string{"red", "#12", "#gggggg", ""} {
		_, _, _, ok = parseHex(bad)
		assert.False(t, ok, bad)
	}
}

func TestStyleColor(t *testing.T) {
	render := func(style string) string {
		c := styleColor(style)
		c.EnableColor()
		return c.Sprint("x")
	}

	assert.True(t, strings.HasPrefix(render("color:red;font-weight:bold;"), "\x1b[31;1mx"))
	assert.True(t, strings.HasPrefix(render("background-color:blue;"), "\x1b[44mx"))
	assert.True(t, strings.HasPrefix(render("font-style:italic;text-decoration:underline;"), "\x1b[3;4mx"))
	assert.True(t, strings.HasPrefix(render("color:#f00;"), "\x1b[38;2;255;0;0mx"))
}
