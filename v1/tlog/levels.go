package tlog

import (
	"fmt"
	"sort"
)

// Level is a canonical log level. Each level names exactly one sink operation,
// mirroring the methods of a browser-style console.
type Level int

// Canonical levels, in registry order.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelTable
	LevelGroup
	LevelGroupCollapsed
	LevelGroupEnd
	LevelTime
	LevelTimeEnd
	LevelTimeLog
	LevelCount
	LevelCountReset
	LevelTimeStamp
	LevelTrace
	LevelLog
	LevelAssert

	numLevels = iota
)

var levelNames = [numLevels]string{
	LevelDebug:          "debug",
	LevelInfo:           "info",
	LevelWarn:           "warn",
	LevelError:          "error",
	LevelTable:          "table",
	LevelGroup:          "group",
	LevelGroupCollapsed: "groupCollapsed",
	LevelGroupEnd:       "groupEnd",
	LevelTime:           "time",
	LevelTimeEnd:        "timeEnd",
	LevelTimeLog:        "timeLog",
	LevelCount:          "count",
	LevelCountReset:     "countReset",
	LevelTimeStamp:      "timeStamp",
	LevelTrace:          "trace",
	LevelLog:            "log",
	LevelAssert:         "assert",
}

// ordinals holds the severity used for threshold comparison. Ties are allowed.
var ordinals = [numLevels]int{
	LevelDebug:          0,
	LevelInfo:           1,
	LevelLog:            1,
	LevelTable:          1,
	LevelAssert:         1,
	LevelTime:           1,
	LevelTimeEnd:        1,
	LevelTimeLog:        1,
	LevelTimeStamp:      1,
	LevelCount:          1,
	LevelCountReset:     1,
	LevelGroup:          1,
	LevelGroupCollapsed: 1,
	LevelGroupEnd:       1,
	LevelWarn:           2,
	LevelTrace:          2,
	LevelError:          3,
}

// aliases maps each short name to the canonical level it dispatches to.
var aliases = map[string]Level{
	"i":   LevelInfo,
	"t":   LevelTime,
	"err": LevelError,
	"dbg": LevelDebug,
	"tab": LevelTable,
}

var canonicalByName = func() map[string]Level {
	m := make(map[string]Level, numLevels)
	for lvl, name := range levelNames {
		m[name] = Level(lvl)
	}
	return m
}()

// String returns the canonical name of the level.
func (l Level) String() string {
	if !l.Valid() {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

// Valid reports whether l is one of the canonical levels.
func (l Level) Valid() bool {
	return l >= 0 && l < numLevels
}

// Ordinal returns the severity of l. Invalid levels sort below debug.
func (l Level) Ordinal() int {
	if !l.Valid() {
		return -1
	}
	return ordinals[l]
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("%w: invalid level %d", ErrConfiguration, int(l))
	}
	return []byte(levelNames[l]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Aliases are accepted and
// stored as their canonical level.
func (l *Level) UnmarshalText(text []byte) error {
	lvl, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = lvl
	return nil
}

// ParseLevel resolves a canonical level name or an alias.
func ParseLevel(name string) (Level, error) {
	if lvl, ok := canonicalByName[name]; ok {
		return lvl, nil
	}
	if lvl, ok := aliases[name]; ok {
		return lvl, nil
	}
	return 0, fmt.Errorf("%w: unknown level %q", ErrConfiguration, name)
}

// Ordinal returns the severity of a level given by canonical name or alias.
func Ordinal(name string) (int, error) {
	lvl, err := ParseLevel(name)
	if err != nil {
		return 0, err
	}
	return lvl.Ordinal(), nil
}

// Levels returns all canonical levels in registry order.
func Levels() []Level {
	out := make([]Level, numLevels)
	for i := range out {
		out[i] = Level(i)
	}
	return out
}

// Aliases returns a copy of the alias table.
func Aliases() map[string]Level {
	out := make(map[string]Level, len(aliases))
	for name, lvl := range aliases {
		out[name] = lvl
	}
	return out
}

// aliasNames returns the alias names in a stable order.
func aliasNames() []string {
	names := make([]string, 0, len(aliases))
	for name := range aliases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
