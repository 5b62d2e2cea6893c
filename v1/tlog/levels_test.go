package tlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrdinals(t *testing.T) {
	expected := map[string]int{
		"debug": 0,
		"info":  1, "log": 1, "table": 1, "assert": 1,
		"time": 1, "timeEnd": 1, "timeLog": 1, "timeStamp": 1,
		"count": 1, "countReset": 1,
		"group": 1, "groupCollapsed": 1, "groupEnd": 1,
		"warn": 2, "trace": 2,
		"error": 3,
	}
	require.Len(t, expected, len(Levels()))

	for name, want := range expected {
		got, err := Ordinal(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
}

func TestAliasesResolveToCanonicalLevels(t *testing.T) {
	expected := map[string]Level{
		"i":   LevelInfo,
		"t":   LevelTime,
		"err": LevelError,
		"dbg": LevelDebug,
		"tab": LevelTable,
	}
	assert.Equal(t, expected, Aliases())

	for alias, lvl := range expected {
		got, err := ParseLevel(alias)
		require.NoError(t, err)
		assert.Equal(t, lvl, got)

		ord, err := Ordinal(alias)
		require.NoError(t, err)
		assert.Equal(t, lvl.Ordinal(), ord)
	}
}

func TestParseLevelUnknown(t *testing.T) {
	_, err := ParseLevel("verbose")
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))

	_, err = Ordinal("")
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestLevelNamesRoundTrip(t *testing.T) {
	for _, lvl := range Levels() {
		text, err := lvl.MarshalText()
		require.NoError(t, err)
		assert.Equal(t, lvl.String(), string(text))

		var back Level
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, lvl, back)
	}

	var lvl Level
	require.NoError(t, lvl.UnmarshalText([]byte("dbg")))
	assert.Equal(t, LevelDebug, lvl)

	_, err := Level(99).MarshalText()
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Equal(t, "Level(99)", Level(99).String())
	assert.Equal(t, -1, Level(-1).Ordinal())
}

func TestLevelsOrder(t *testing.T) {
	names := make([]string, 0, numLevels)
	for _, lvl := range Levels() {
		names = append(names, lvl.String())
	}
	assert.Equal(t, []string{
		"debug", "info", "warn", "error", "table", "group", "groupCollapsed",
		"groupEnd", "time", "timeEnd", "timeLog", "count", "countReset",
		"timeStamp", "trace", "log", "assert",
	}, names)
}
