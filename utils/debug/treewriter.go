// Package debug has helpers to render parsed structures for debug reports.
package debug

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// maxTextRunes limits how much of a text node ends up in the dump.
const maxTextRunes = 120

// TreeWriter renders indented tree, two spaces per level.
type TreeWriter struct {
	b strings.Builder
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{}
}

func (tw *TreeWriter) String() string {
	return tw.b.String()
}

func (tw *TreeWriter) indent(depth int) {
	tw.b.WriteString(strings.Repeat("  ", max(depth, 0)))
}

// Line writes formatted line at depth.
func (tw *TreeWriter) Line(depth int, format string, args ...any) {
	tw.indent(depth)
	fmt.Fprintf(&tw.b, format, args...)
	tw.b.WriteByte('\n')
}

// Text writes quoted value, long values are cut and marked with ellipsis.
// Empty value is written as is.
func (tw *TreeWriter) Text(depth int, label, value string) {
	tw.indent(depth)
	tw.b.WriteString(label)
	tw.b.WriteString(": ")
	tw.b.WriteString(quote(value))
	tw.b.WriteByte('\n')
}

// Fields writes key=value pairs on a single line, keys are expected in pairs
// with values. Pairs with empty values are omitted.
func (tw *TreeWriter) Fields(depth int, label string, kv ...string) {
	tw.indent(depth)
	tw.b.WriteString(label)
	for i := 0; i+1 < len(kv); i += 2 {
		if len(kv[i+1]) == 0 {
			continue
		}
		tw.b.WriteByte(' ')
		tw.b.WriteString(kv[i])
		tw.b.WriteByte('=')
		tw.b.WriteString(strconv.Quote(kv[i+1]))
	}
	tw.b.WriteByte('\n')
}

func quote(raw string) string {
	if len(raw) == 0 {
		return raw
	}
	if utf8.RuneCountInString(raw) <= maxTextRunes {
		return strconv.Quote(raw)
	}
	runes := []rune(raw)
	return strconv.Quote(string(runes[:maxTextRunes])) + "..."
}
