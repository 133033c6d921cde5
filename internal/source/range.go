package source

import "encoding/json"

// Span is a resolved pair of coordinates, the form diagnostics are reported in.
type Span struct {
	Start Coordinate `json:"start"`
	End   Coordinate `json:"end"`
}

// Range is a start/end pair of positions into the same text.
type Range struct {
	Start *Position
	End   *Position
}

// NewRange builds a range over src. It panics with a *RangeError when the
// offsets are inverted or fall outside the text.
func NewRange(src Text, start, end int) Range {
	if n := len(src.Text()); start < 0 || end > n || start > end {
		panic(&RangeError{Op: "range", Start: start, End: end, Len: n})
	}
	return Range{Start: NewPosition(src, start), End: NewPosition(src, end)}
}

// Span resolves both ends to coordinates.
func (r Range) Span() Span {
	return Span{Start: r.Start.Coordinate(), End: r.End.Coordinate()}
}

// Len returns the length of the range in bytes.
func (r Range) Len() int {
	return r.End.Offset() - r.Start.Offset()
}

// TrimTrailingWhitespace moves End backwards over whitespace so that the
// range ends right after its last non-whitespace byte. It never moves past
// Start.
func (r Range) TrimTrailingWhitespace() {
	text := r.End.src.Text()
	start, end := r.Start.Offset(), r.End.Offset()
	if end > len(text) || start > end {
		panic(&RangeError{Op: "trim", Start: start, End: end, Len: len(text)})
	}
	for end > start && isSpace(text[end-1]) {
		end--
	}
	if end != r.End.Offset() {
		r.End.SetOffset(end)
	}
}

func (r Range) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Start *Position `json:"start"`
		End   *Position `json:"end"`
	}{r.Start, r.End})
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
