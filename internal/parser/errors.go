package parser

import (
	"fmt"

	"github.com/robert-at-pretension-io/vhdl-sema/internal/source"
)

// Error is a syntax error in a design file.
type Error struct {
	Path       string
	Offset     int
	Coordinate source.Coordinate
	Msg        string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Coordinate.Line+1, e.Coordinate.Character+1, e.Msg)
}

func newError(path, text string, offset int, msg string) *Error {
	if offset < 0 {
		offset = 0
	}
	if offset > len(text) {
		offset = len(text)
	}
	return &Error{
		Path:       path,
		Offset:     offset,
		Coordinate: source.OffsetToCoordinate(text, offset),
		Msg:        msg,
	}
}

func describe(t token) string {
	if t.kind == tEOF {
		return "end of file"
	}
	return fmt.Sprintf("%q", t.text)
}
