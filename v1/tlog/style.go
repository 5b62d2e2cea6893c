package tlog

import (
	"strconv"
	"strings"

	"github.com/fatih/color"
)

var foregrounds = map[string]color.Attribute{
	"black":   color.FgBlack,
	"red":     color.FgRed,
	"green":   color.FgGreen,
	"yellow":  color.FgYellow,
	"blue":    color.FgBlue,
	"magenta": color.FgMagenta,
	"purple":  color.FgMagenta,
	"cyan":    color.FgCyan,
	"white":   color.FgWhite,
	"gray":    color.FgHiBlack,
	"grey":    color.FgHiBlack,
	"orange":  color.FgHiYellow,
}

var backgrounds = map[string]color.Attribute{
	"black":   color.BgBlack,
	"red":     color.BgRed,
	"green":   color.BgGreen,
	"yellow":  color.BgYellow,
	"blue":    color.BgBlue,
	"magenta": color.BgMagenta,
	"purple":  color.BgMagenta,
	"cyan":    color.BgCyan,
	"white":   color.BgWhite,
	"gray":    color.BgHiBlack,
	"grey":    color.BgHiBlack,
	"orange":  color.BgHiYellow,
}

// ParseStyle splits an encoded style string ("color:red;font-weight:bold;")
// into its declarations. Empty declarations and entries without a colon are
// skipped; keys and values are trimmed.
func ParseStyle(style string) map[string]string {
	out := make(map[string]string)
	for _, decl := range strings.Split(style, ";") {
		key, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if key == "" {
			continue
		}
		out[key] = value
	}
	return out
}

// styleColor maps the CSS properties a terminal can express onto a
// fatih/color value: color and background(-color) by name or #rrggbb,
// font-weight bold, font-style italic, text-decoration underline or
// line-through. Everything else is ignored.
func styleColor(style string) *color.Color {
	decls := ParseStyle(style)
	c := color.New()

	if v, ok := decls["color"]; ok {
		if attr, ok := foregrounds[strings.ToLower(v)]; ok {
			c.Add(attr)
		} else if r, g, b, ok := parseHex(v); ok {
			c.AddRGB(r, g, b)
		}
	}
	for _, key := range []string{"background-color", "background"} {
		v, ok := decls[key]
		if !ok {
			continue
		}
		if attr, ok := backgrounds[strings.ToLower(v)]; ok {
			c.Add(attr)
		} else if r, g, b, ok := parseHex(v); ok {
			c.AddBgRGB(r, g, b)
		}
		break
	}

	switch strings.ToLower(decls["font-weight"]) {
	case "bold", "bolder", "600", "700", "800", "900":
		c.Add(color.Bold)
	case "lighter", "100", "200", "300":
		c.Add(color.Faint)
	}
	if strings.EqualFold(decls["font-style"], "italic") {
		c.Add(color.Italic)
	}
	for _, deco := range strings.Fields(strings.ToLower(decls["text-decoration"])) {
		switch deco {
		case "underline":
			c.Add(color.Underline)
		case "line-through":
			c.Add(color.CrossedOut)
		}
	}
	return c
}

// parseHex reads #rgb or #rrggbb.
func parseHex(s string) (r, g, b int, ok bool) {
	s, found := strings.CutPrefix(s, "#")
	if !found {
		return 0, 0, 0, false
	}
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff), true
}
