package parser

import (
	"errors"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// vhdlLexer defines the lexical structure of VHDL source. Keywords are lexed
// as identifiers and recognised by the parser, since VHDL is case-insensitive.
var vhdlLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Comments: -- to end of line, and VHDL-2008 block comments
	{Name: "Comment", Pattern: `--[^\n]*|/\*(?s:.)*?\*/`},
	{Name: "Whitespace", Pattern: `[ \t\r\n\f\v]+`},

	// Bit string literals (X"FF", b"0101", 8ux"0F")
	{Name: "BitString", Pattern: `(?i)[0-9]*[us]?[bodx]"[0-9a-z_ ]*"`},
	{Name: "String", Pattern: `"(?:[^"\n]|"")*"`},
	{Name: "Char", Pattern: `'[^\n]'`},

	// Decimal, real and based literals (16#FF#, 1.0e-9)
	{Name: "Number", Pattern: `[0-9][0-9_]*(?:#[0-9a-fA-F_.]+#)?(?:\.[0-9_]+)?(?:[eE][-+]?[0-9]+)?`},

	{Name: "Ident", Pattern: `[a-zA-Z][a-zA-Z0-9_]*|\\[^\\\n]+\\`},

	// Compound delimiters before single ones
	{Name: "Op", Pattern: `<=|>=|:=|=>|/=|\*\*|<>|\?\?|\?/=|\?<=|\?>=|\?=|\?<|\?>|<<|>>`},
	{Name: "Tick", Pattern: `'`},
	{Name: "Punct", Pattern: `[-+*/&(),.;:<>=|\[\]@^?]`},
})

type tokenKind int

const (
	tEOF tokenKind = iota
	tIdent
	tNumber
	tString
	tBitString
	tChar
	tTick
	tDelim
)

var (
	symbols  = vhdlLexer.Symbols()
	kindOf   = map[lexer.TokenType]tokenKind{}
	skipType = map[lexer.TokenType]bool{
		symbols["Comment"]:    true,
		symbols["Whitespace"]: true,
	}
)

func init() {
	kindOf[symbols["Ident"]] = tIdent
	kindOf[symbols["Number"]] = tNumber
	kindOf[symbols["String"]] = tString
	kindOf[symbols["BitString"]] = tBitString
	kindOf[symbols["Char"]] = tChar
	kindOf[symbols["Tick"]] = tTick
	kindOf[symbols["Op"]] = tDelim
	kindOf[symbols["Punct"]] = tDelim
}

type token struct {
	kind   tokenKind
	text   string
	lower  string
	offset int
}

func (t token) end() int { return t.offset + len(t.text) }

// tokenize lexes text into significant tokens, ending with an EOF token.
// A character literal directly after a name or closing bracket is an
// attribute or qualified expression, as in x'('0') or s'high, so the tick
// is split off and lexing resumes right after it.
func tokenize(path, text string) ([]token, error) {
	var toks []token
	base := 0
	for {
		restart := -1
		lex, err := vhdlLexer.LexString(path, text[base:])
		if err != nil {
			return nil, lexError(path, text, base, err)
		}
		for {
			t, err := lex.Next()
			if err != nil {
				return nil, lexError(path, text, base, err)
			}
			if t.EOF() {
				break
			}
			if skipType[t.Type] {
				continue
			}
			tok := token{
				kind:   kindOf[t.Type],
				text:   t.Value,
				lower:  strings.ToLower(t.Value),
				offset: base + t.Pos.Offset,
			}
			if tok.kind == tChar && len(toks) > 0 && attributePrefix(toks[len(toks)-1], tok) {
				toks = append(toks, token{kind: tTick, text: "'", lower: "'", offset: tok.offset})
				restart = tok.offset + 1
				break
			}
			toks = append(toks, tok)
		}
		if restart < 0 {
			break
		}
		base = restart
	}
	toks = append(toks, token{kind: tEOF, offset: len(text)})
	return toks, nil
}

func attributePrefix(prev, char token) bool {
	if prev.end() != char.offset {
		return false
	}
	if prev.kind == tIdent {
		return !keywords[prev.lower] || prev.lower == "all"
	}
	return prev.text == ")" || prev.text == "]"
}

func lexError(path, text string, base int, err error) error {
	var lerr *lexer.Error
	if errors.As(err, &lerr) {
		return newError(path, text, base+lerr.Pos.Offset, lerr.Msg)
	}
	return newError(path, text, base, err.Error())
}
