package tlog

import (
	"fmt"
	"io"
	"reflect"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/Aleph-Alpha/tlog/v1/flatten"
)

// ColorMode controls whether ConsoleSink emits ANSI colors for styled
// messages.
type ColorMode int

const (
	// ColorAuto follows fatih/color's terminal detection and the NO_COLOR
	// convention.
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

const groupIndent = "  "

// ConsoleSink is a Sink that writes human-readable lines, modelled on a
// browser console. Styled messages are colored with fatih/color; payloads are
// rendered as JSON; warn, error, trace and failed assertions go to the error
// writer. Timers, counters and group depth are kept per sink and guarded by
// a mutex.
type ConsoleSink struct {
	mu       sync.Mutex
	out      io.Writer
	errOut   io.Writer
	mode     ColorMode
	now      func() time.Time
	depth    int
	timers   map[string]time.Time
	counters map[string]int
}

// ConsoleOption configures a ConsoleSink.
type ConsoleOption func(*ConsoleSink)

// WithErrorWriter sets the writer for warn, error, trace and assert output.
// By default everything goes to the main writer.
func WithErrorWriter(w io.Writer) ConsoleOption {
	return func(c *ConsoleSink) {
		c.errOut = w
	}
}

// WithColorMode sets the color mode. Default: ColorAuto.
func WithColorMode(mode ColorMode) ConsoleOption {
	return func(c *ConsoleSink) {
		c.mode = mode
	}
}

// WithClock replaces time.Now for timers and timestamps.
func WithClock(now func() time.Time) ConsoleOption {
	return func(c *ConsoleSink) {
		c.now = now
	}
}

// NewConsoleSink returns a console sink writing to out.
func NewConsoleSink(out io.Writer, opts ...ConsoleOption) *ConsoleSink {
	c := &ConsoleSink{
		out:      out,
		now:      time.Now,
		timers:   make(map[string]time.Time),
		counters: make(map[string]int),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.errOut == nil {
		c.errOut = out
	}
	return c
}

var (
	defaultSinkOnce sync.Once
	defaultSink     *ConsoleSink
)

// DefaultSink returns the process-wide console sink used by loggers built
// without WithSink. It writes to color.Output and color.Error, so timers,
// counters and groups are shared by all such loggers, as with a single
// browser console.
func DefaultSink() *ConsoleSink {
	defaultSinkOnce.Do(func() {
		defaultSink = NewConsoleSink(color.Output, WithErrorWriter(color.Error))
	})
	return defaultSink
}

// Resolve implements Sink.
func (c *ConsoleSink) Resolve(level Level) (SinkFunc, bool) {
	switch level {
	case LevelDebug, LevelInfo, LevelLog:
		return func(args ...any) { c.print(c.out, "", args) }, true
	case LevelWarn, LevelError:
		return func(args ...any) { c.print(c.errOut, "", args) }, true
	case LevelTrace:
		return c.trace, true
	case LevelTable:
		return c.table, true
	case LevelGroup, LevelGroupCollapsed:
		return c.group, true
	case LevelGroupEnd:
		return c.groupEnd, true
	case LevelTime:
		return c.time, true
	case LevelTimeEnd:
		return c.timeEnd, true
	case LevelTimeLog:
		return c.timeLog, true
	case LevelCount:
		return c.count, true
	case LevelCountReset:
		return c.countReset, true
	case LevelTimeStamp:
		return c.timeStamp, true
	case LevelAssert:
		return c.assert, true
	}
	return nil, false
}

func (c *ConsoleSink) print(w io.Writer, lead string, args []any) {
	text, payload, ok := c.messageArgs(args)
	line := lead + text
	if ok {
		line = joinNonEmpty(line, renderPayload(payload))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeLines(w, line)
}

func (c *ConsoleSink) trace(args ...any) {
	text, payload, ok := c.messageArgs(args)
	line := "Trace: " + text
	if ok {
		line = joinNonEmpty(line, renderPayload(payload))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeLines(c.errOut, line+"\n"+strings.TrimRight(string(debug.Stack()), "\n"))
}

func (c *ConsoleSink) assert(args ...any) {
	if len(args) == 0 {
		return
	}
	if ok, _ := args[0].(bool); ok {
		return
	}
	text, payload, hasPayload := c.messageArgs(args[1:])
	line := "Assertion failed"
	if text != "" {
		line += ": " + text
	}
	if hasPayload {
		line = joinNonEmpty(line, renderPayload(payload))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeLines(c.errOut, line)
}

func (c *ConsoleSink) group(args ...any) {
	label, _, _ := c.messageArgs(args)

	c.mu.Lock()
	defer c.mu.Unlock()
	if label != "" {
		c.writeLines(c.out, label)
	}
	c.depth++
}

func (c *ConsoleSink) groupEnd(...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.depth > 0 {
		c.depth--
	}
}

func (c *ConsoleSink) time(args ...any) {
	label := c.label(args)

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.timers[label]; exists {
		c.writeLines(c.errOut, fmt.Sprintf("Timer '%s' already exists", label))
		return
	}
	c.timers[label] = c.now()
}

func (c *ConsoleSink) timeEnd(args ...any) {
	label := c.label(args)

	c.mu.Lock()
	defer c.mu.Unlock()
	started, exists := c.timers[label]
	if !exists {
		c.writeLines(c.errOut, fmt.Sprintf("Timer '%s' does not exist", label))
		return
	}
	delete(c.timers, label)
	c.writeLines(c.out, fmt.Sprintf("%s: %s", label, c.now().Sub(started)))
}

func (c *ConsoleSink) timeLog(args ...any) {
	label := c.label(args)
	_, payload, ok := c.messageArgs(args)

	c.mu.Lock()
	defer c.mu.Unlock()
	started, exists := c.timers[label]
	if !exists {
		c.writeLines(c.errOut, fmt.Sprintf("Timer '%s' does not exist", label))
		return
	}
	line := fmt.Sprintf("%s: %s", label, c.now().Sub(started))
	if ok {
		line = joinNonEmpty(line, renderPayload(payload))
	}
	c.writeLines(c.out, line)
}

func (c *ConsoleSink) count(args ...any) {
	label := c.label(args)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters[label]++
	c.writeLines(c.out, label+": "+strconv.Itoa(c.counters[label]))
}

func (c *ConsoleSink) countReset(args ...any) {
	label := c.label(args)

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.counters[label]; !exists {
		c.writeLines(c.errOut, fmt.Sprintf("Count for '%s' does not exist", label))
		return
	}
	c.counters[label] = 0
}

func (c *ConsoleSink) timeStamp(args ...any) {
	label := c.label(args)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeLines(c.out, joinNonEmpty("["+c.now().Format(time.RFC3339Nano)+"]", label))
}

func (c *ConsoleSink) table(args ...any) {
	if len(args) == 0 || args[0] == nil {
		return
	}
	rendered := renderTable(args[0])

	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeLines(c.out, rendered)
}

// label returns the plain message text, or "default" when it is empty.
func (c *ConsoleSink) label(args []any) string {
	text := plainText(args)
	if text == "" {
		return "default"
	}
	return text
}

// messageArgs splits (message, style[, payload]) and renders the message with
// its style applied.
func (c *ConsoleSink) messageArgs(args []any) (text string, payload any, hasPayload bool) {
	if len(args) == 0 {
		return "", nil, false
	}
	msg := argString(args[0])
	var style string
	if len(args) > 1 {
		style = argString(args[1])
	}
	if len(args) > 2 {
		payload, hasPayload = args[2], true
	}

	if !strings.HasPrefix(msg, StyleToken) {
		return msg, payload, hasPayload
	}
	msg = strings.TrimPrefix(msg, StyleToken)
	if style == "" {
		return msg, payload, hasPayload
	}
	return c.colorFor(style).Sprint(msg), payload, hasPayload
}

func (c *ConsoleSink) colorFor(style string) *color.Color {
	col := styleColor(style)
	switch c.mode {
	case ColorAlways:
		col.EnableColor()
	case ColorNever:
		col.DisableColor()
	}
	return col
}

// writeLines writes s with the current group indentation applied to each
// line. The caller holds c.mu.
func (c *ConsoleSink) writeLines(w io.Writer, s string) {
	indent := strings.Repeat(groupIndent, c.depth)
	var b strings.Builder
	for _, line := range strings.Split(s, "\n") {
		b.WriteString(indent)
		b.WriteString(line)
		b.WriteByte('\n')
	}
	_, _ = io.WriteString(w, b.String())
}

// plainText returns the message argument without the style token.
func plainText(args []any) string {
	if len(args) == 0 {
		return ""
	}
	return strings.TrimPrefix(argString(args[0]), StyleToken)
}

func argString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return stringify(v)
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + " " + b
}

func renderPayload(v any) string {
	return flatten.JSON(v)
}

// renderTable lays out a payload as rows keyed by map key, field name or
// index. Rows that are objects get one column per key; other rows go into a
// "Values" column.
func renderTable(v any) string {
	rows, ok := tableRows(v)
	if !ok {
		return renderPayload(v)
	}

	var columns []string
	seen := make(map[string]bool)
	hasValues := false
	cells := make([]map[string]any, len(rows))
	for i, row := range rows {
		entries, isObject := flatten.Entries(row.Value)
		if !isObject {
			hasValues = true
			continue
		}
		cells[i] = make(map[string]any, len(entries))
		for _, e := range entries {
			cells[i][e.Key] = e.Value
			if !seen[e.Key] {
				seen[e.Key] = true
				columns = append(columns, e.Key)
			}
		}
	}

	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	header := append([]string{"(index)"}, columns...)
	if hasValues {
		header = append(header, "Values")
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for i, row := range rows {
		line := []string{row.Key}
		for _, col := range columns {
			cell := ""
			if cells[i] != nil {
				if val, ok := cells[i][col]; ok {
					cell = tableCell(val)
				}
			}
			line = append(line, cell)
		}
		if hasValues {
			cell := ""
			if cells[i] == nil {
				cell = tableCell(row.Value)
			}
			line = append(line, cell)
		}
		fmt.Fprintln(tw, strings.Join(line, "\t"))
	}
	_ = tw.Flush()

	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.Join(lines, "\n")
}

func tableRows(v any) ([]flatten.Entry, bool) {
	if entries, ok := flatten.Entries(v); ok {
		return entries, len(entries) > 0
	}
	rv := reflect.ValueOf(v)
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) || rv.Len() == 0 {
		return nil, false
	}
	rows := make([]flatten.Entry, rv.Len())
	for i := range rows {
		rows[i] = flatten.Entry{Key: strconv.Itoa(i), Value: rv.Index(i).Interface()}
	}
	return rows, true
}

func tableCell(v any) string {
	switch x := v.(type) {
	case string:
		return strconv.Quote(x)
	case nil:
		return "null"
	}
	if _, ok := flatten.Entries(v); ok {
		return renderPayload(v)
	}
	return stringify(v)
}
