// Package source converts between byte offsets into a file's text and 0-based
// line/character coordinates.
//
// Offsets are authoritative for positions created by the parser. Coordinates
// are derived on first access and cached; setting a coordinate re-derives the
// offset from the text as it is at the time of the call.
package source

import (
	"fmt"
	"math"
	"strings"
)

// EndOfLine is the character value for a coordinate that extends to the end
// of its line.
const EndOfLine = math.MaxInt32

// Text is implemented by anything owning the source text a position points into.
type Text interface {
	Text() string
}

// Coordinate is a 0-based line/character pair. Characters count bytes.
type Coordinate struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

func (c Coordinate) String() string {
	if c.Character == EndOfLine {
		return fmt.Sprintf("%d:$", c.Line+1)
	}
	return fmt.Sprintf("%d:%d", c.Line+1, c.Character+1)
}

// OffsetToCoordinate scans text from the start up to offset, counting line breaks.
func OffsetToCoordinate(text string, offset int) Coordinate {
	if offset < 0 || offset > len(text) {
		panic(&RangeError{Op: "coordinate", Start: offset, End: offset, Len: len(text)})
	}
	prefix := text[:offset]
	line := strings.Count(prefix, "\n")
	lineStart := strings.LastIndexByte(prefix, '\n') + 1
	return Coordinate{Line: line, Character: offset - lineStart}
}

// CoordinateToOffset is the inverse of OffsetToCoordinate over unmodified text.
// Lines past the end of the text map to len(text); characters past the end
// of a line are clamped to the line break.
func CoordinateToOffset(text string, c Coordinate) int {
	offset := 0
	for line := 0; line < c.Line; line++ {
		nl := strings.IndexByte(text[offset:], '\n')
		if nl < 0 {
			return len(text)
		}
		offset += nl + 1
	}
	lineEnd := strings.IndexByte(text[offset:], '\n')
	if lineEnd < 0 {
		lineEnd = len(text) - offset
	}
	if c.Character > lineEnd {
		return offset + lineEnd
	}
	if c.Character < 0 {
		return offset
	}
	return offset + c.Character
}

// Position is a byte offset into the text owned by src, with a lazily
// computed coordinate.
type Position struct {
	src    Text
	offset int
	coord  *Coordinate
}

// NewPosition wraps offset. The coordinate is not computed until needed.
func NewPosition(src Text, offset int) *Position {
	return &Position{src: src, offset: offset}
}

// Offset returns the byte offset.
func (p *Position) Offset() int {
	return p.offset
}

// SetOffset moves the position and drops the cached coordinate.
func (p *Position) SetOffset(offset int) {
	p.offset = offset
	p.coord = nil
}

// Coordinate returns the line/character of the position, computing it on first use.
func (p *Position) Coordinate() Coordinate {
	if p.coord == nil {
		c := OffsetToCoordinate(p.src.Text(), p.offset)
		p.coord = &c
	}
	return *p.coord
}

// Line returns the 0-based line.
func (p *Position) Line() int {
	return p.Coordinate().Line
}

// Character returns the 0-based byte column.
func (p *Position) Character() int {
	return p.Coordinate().Character
}

// SetLine overwrites the line and re-derives the offset.
func (p *Position) SetLine(line int) {
	c := p.Coordinate()
	c.Line = line
	p.setCoordinate(c)
}

// SetCharacter overwrites the character and re-derives the offset.
func (p *Position) SetCharacter(character int) {
	c := p.Coordinate()
	c.Character = character
	p.setCoordinate(c)
}

func (p *Position) setCoordinate(c Coordinate) {
	p.coord = &c
	p.offset = CoordinateToOffset(p.src.Text(), c)
}

// MarshalJSON emits the coordinate, as the tree export expects.
func (p *Position) MarshalJSON() ([]byte, error) {
	c := p.Coordinate()
	return []byte(fmt.Sprintf(`{"offset":%d,"line":%d,"character":%d}`, p.offset, c.Line, c.Character)), nil
}

// RangeError reports an offset outside the text or an inverted range. It is
// raised with panic: ranges come from the parser and are assumed consistent.
type RangeError struct {
	Op    string
	Start int
	End   int
	Len   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("source: invalid range for %s: [%d, %d) in text of length %d", e.Op, e.Start, e.End, e.Len)
}
