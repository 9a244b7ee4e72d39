package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeBuffer struct{ lines []string }

func (b fakeBuffer) Line(row int) string {
	if row < 0 || row >= len(b.lines) {
		return ""
	}
	return b.lines[row]
}

func TestExtractText_SingleLine(t *testing.T) {
	buf := fakeBuffer{lines: []string{"hello world   "}}
	sel := Begin(Point{Row: 0, Col: 0}).Extend(Point{Row: 0, Col: 4})
	assert.Equal(t, "hello", ExtractText(buf, sel))
}

func TestExtractText_MultiLineTrimsTrailingWhitespace(t *testing.T) {
	buf := fakeBuffer{lines: []string{"first line   ", "second line  "}}
	sel := Begin(Point{Row: 0, Col: 0}).Extend(Point{Row: 1, Col: 5})
	assert.Equal(t, "first line\nsecond", ExtractText(buf, sel))
}

func TestNormalized_HandlesReverseDrag(t *testing.T) {
	sel := Begin(Point{Row: 2, Col: 5}).Extend(Point{Row: 0, Col: 1})
	start, end := sel.Normalized()
	assert.Equal(t, Point{Row: 0, Col: 1}, start)
	assert.Equal(t, Point{Row: 2, Col: 5}, end)
}

func TestBracketedPaste_WrapsMarkers(t *testing.T) {
	out := BracketedPaste("hi")
	assert.Equal(t, "\x1b[200~hi\x1b[201~", string(out))
}
