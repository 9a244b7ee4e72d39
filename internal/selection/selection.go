// Package selection implements mouse-driven text selection over a
// session's screen buffer and clipboard copy/paste (spec.md §4.9), using
// github.com/atotto/clipboard for the system clipboard since no example
// repo in the corpus exercises one directly.
package selection

import (
	"strings"

	"github.com/atotto/clipboard"
)

// Point is a (row, col) cell coordinate inside a pane's screen buffer.
type Point struct {
	Row, Col int
}

// Selection tracks an in-progress or completed mouse selection within one
// pane. Start is set on mouse press; End follows drag events; the
// selection remains visible after release until cleared or replaced.
type Selection struct {
	Active bool
	Start  Point
	End    Point
}

// Begin starts a new selection at a mouse-press location.
func Begin(p Point) Selection {
	return Selection{Active: true, Start: p, End: p}
}

// Extend updates the selection's end point on drag.
func (s Selection) Extend(p Point) Selection {
	s.End = p
	return s
}

// Normalized returns (start, end) ordered so Start is never after End in
// row-major order, regardless of drag direction.
func (s Selection) Normalized() (Point, Point) {
	if s.Start.Row < s.End.Row || (s.Start.Row == s.End.Row && s.Start.Col <= s.End.Col) {
		return s.Start, s.End
	}
	return s.End, s.Start
}

// CellReader reads one rendered line of a screen buffer, used so this
// package stays decoupled from the concrete screen.Buffer type.
type CellReader interface {
	Line(row int) string
}

// ExtractText reads the selected cells row-major, trims trailing
// whitespace per line, and joins with "\n" (spec.md §4.9 "Copy").
func ExtractText(buf CellReader, sel Selection) string {
	start, end := sel.Normalized()
	var lines []string
	for row := start.Row; row <= end.Row; row++ {
		line := buf.Line(row)
		from, to := 0, len(line)
		if row == start.Row {
			from = clamp(start.Col, 0, len(line))
		}
		if row == end.Row {
			to = clamp(end.Col+1, 0, len(line))
		}
		if from > to {
			from = to
		}
		lines = append(lines, strings.TrimRight(line[from:to], " \t"))
	}
	return strings.Join(lines, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Copy writes text to the system clipboard.
func Copy(text string) error {
	return clipboard.WriteAll(text)
}

// ReadClipboard returns the current system clipboard contents.
func ReadClipboard() (string, error) {
	return clipboard.ReadAll()
}

// BracketedPaste wraps text in the terminal bracketed-paste markers so the
// target program can distinguish pasted input from typed input (spec.md
// §4.9 "Paste").
func BracketedPaste(text string) []byte {
	const start = "\x1b[200~"
	const end = "\x1b[201~"
	return []byte(start + text + end)
}
