// Package parser implements the recursive-descent grammar that turns a
// token stream from lexer into primitive.Object values: arrays, (possibly
// relaxed) dictionaries, streams headers, and the "id gen R" indirect
// reference form that requires a 3-token lookahead to disambiguate from a
// bare pair of integers.
package parser

import (
	"fmt"

	"github.com/corvid-labs/pdfread/lexer"
	"github.com/corvid-labs/pdfread/primitive"
)

// Parser consumes tokens from a Lexer and builds primitive.Object values.
type Parser struct {
	lex *lexer.Lexer
	// ContentStreamMode switches bareword tokens from being a hard parse
	// error to being accepted as primitive.Command operators, the way
	// content-stream operand/operator sequences are structured.
	ContentStreamMode bool
}

// New returns a Parser reading from a freshly created Lexer over buf.
func New(buf []byte) *Parser { return &Parser{lex: lexer.New(buf)} }

// NewFromLexer returns a Parser sharing an existing Lexer's cursor, for
// parsing an object that starts at the lexer's current position (used by
// the xref resolver to parse one indirect object out of a larger file
// buffer without recopying it).
func NewFromLexer(l *lexer.Lexer) *Parser { return &Parser{lex: l} }

// Lexer returns the underlying lexer, e.g. to inspect its position after a
// parse completes.
func (p *Parser) Lexer() *lexer.Lexer { return p.lex }

// ParseObject parses one PDF object starting at the current cursor
// position and returns it.
func (p *Parser) ParseObject() (primitive.Object, error) {
	tok, err := p.lex.Next()
	if err != nil {
		return nil, err
	}
	return p.parseFrom(tok)
}

func (p *Parser) parseFrom(tok lexer.Token) (primitive.Object, error) {
	switch tok.Kind {
	case lexer.Integer:
		return p.parseNumericOrReference(tok)
	case lexer.Real:
		f, err := tok.Float()
		if err != nil {
			return nil, fmt.Errorf("parser: invalid real %q: %w", tok.Value, err)
		}
		return primitive.Real(f), nil
	case lexer.NameTok:
		return primitive.Name(tok.Value), nil
	case lexer.StringLit:
		return primitive.String{Value: []byte(tok.Value), Hex: false}, nil
	case lexer.HexString:
		return primitive.String{Value: []byte(tok.Value), Hex: true}, nil
	case lexer.ArrayStart:
		return p.parseArray()
	case lexer.DictStart:
		return p.parseDict(false)
	case lexer.Null:
		return primitive.Null{}, nil
	case lexer.True:
		return primitive.Bool(true), nil
	case lexer.False:
		return primitive.Bool(false), nil
	case lexer.Other:
		if p.ContentStreamMode {
			return primitive.Command(tok.Value), nil
		}
		return nil, fmt.Errorf("parser: unexpected token %q at offset %d", tok.Value, tok.Pos)
	default:
		return nil, fmt.Errorf("parser: unexpected token kind %s (%q) at offset %d", tok.Kind, tok.Value, tok.Pos)
	}
}

// parseNumericOrReference disambiguates a bare Integer from the start of
// an "id gen R" indirect reference by looking two tokens ahead: if the
// next two tokens are (Integer, Ref), this is a reference; otherwise the
// lookahead is rewound and the Integer stands alone. This mirrors the
// 3-token lookahead the teacher's own parser performs for the same
// ambiguity.
func (p *Parser) parseNumericOrReference(first lexer.Token) (primitive.Object, error) {
	save := p.lex.Pos()
	second, err := p.lex.Next()
	if err == nil && second.Kind == lexer.Integer {
		third, err2 := p.lex.Next()
		if err2 == nil && third.Kind == lexer.Ref {
			num, _ := first.Int()
			gen, _ := second.Int()
			return primitive.Reference{Number: int(num), Generation: int(gen)}, nil
		}
	}
	p.lex.SetPos(save)
	n, err := first.Int()
	if err != nil {
		return nil, fmt.Errorf("parser: invalid integer %q: %w", first.Value, err)
	}
	return primitive.Integer(n), nil
}

func (p *Parser) parseArray() (primitive.Object, error) {
	var out primitive.Array
	for {
		tok, err := p.lex.Next()
		if err != nil {
			return nil, fmt.Errorf("parser: unterminated array: %w", err)
		}
		if tok.Kind == lexer.ArrayEnd {
			return out, nil
		}
		obj, err := p.parseFrom(tok)
		if err != nil {
			return nil, err
		}
		out = append(out, obj)
	}
}

// parseDict parses a dictionary body up to the closing ">>". A dangling
// trailing key followed directly by ">>" is dropped in either mode. When
// strict parsing of a malformed dictionary fails, the caller may retry
// with relaxed=true, which skips non-name tokens in key position and
// entries whose value fails to parse -- shapes some PDF producers are
// known to emit, and which the teacher's parser works around the same way.
func (p *Parser) parseDict(relaxed bool) (primitive.Object, error) {
	d := primitive.NewDict()
	for {
		keyTok, err := p.lex.Next()
		if err != nil {
			return nil, fmt.Errorf("parser: unterminated dict: %w", err)
		}
		if keyTok.Kind == lexer.DictEnd {
			return d, nil
		}
		if keyTok.Kind != lexer.NameTok {
			if relaxed {
				continue
			}
			return nil, fmt.Errorf("parser: expected dict key name, got %s %q at offset %d", keyTok.Kind, keyTok.Value, keyTok.Pos)
		}
		key := primitive.Name(keyTok.Value)
		valTok, err := p.lex.Next()
		if err != nil {
			return nil, fmt.Errorf("parser: dict %q missing value: %w", key, err)
		}
		if valTok.Kind == lexer.DictEnd {
			// A dangling key with no value: treat the entry as absent.
			return d, nil
		}
		val, err := p.parseFrom(valTok)
		if err != nil {
			if !relaxed {
				return nil, err
			}
			continue
		}
		if !primitive.IsNull(val) {
			d.Set(key, val)
		}
	}
}

// ParseDict is the public, top-level entry point for parsing a
// dictionary, trying a strict parse first and falling back to a relaxed
// one if that fails -- the same two-pass strategy the teacher's parser
// uses to recover from the handful of malformed-dictionary shapes real
// PDF producers are known to emit.
func (p *Parser) ParseDict() (primitive.Dict, error) {
	save := p.lex.Pos()
	tok, err := p.lex.Next()
	if err != nil {
		return primitive.Dict{}, err
	}
	if tok.Kind != lexer.DictStart {
		return primitive.Dict{}, fmt.Errorf("parser: expected dict, got %s at offset %d", tok.Kind, tok.Pos)
	}
	bodyStart := p.lex.Pos()
	obj, err := p.parseDict(false)
	if err == nil {
		return obj.(primitive.Dict), nil
	}
	p.lex.SetPos(bodyStart)
	obj, err2 := p.parseDict(true)
	if err2 != nil {
		p.lex.SetPos(save)
		return primitive.Dict{}, err
	}
	return obj.(primitive.Dict), nil
}

// ParseIndirectObject parses the "id gen obj ... endobj" wrapper starting
// at the lexer's current position and returns the object number,
// generation, and the wrapped object. If the wrapped object is a
// dictionary immediately followed by the "stream" keyword, the returned
// object is a primitive.Stream instead (with Raw left nil: extracting the
// stream body requires resolving /Length, possibly itself an indirect
// reference, which this package has no cross-reference table to do), and
// streamBodyOffset gives the byte offset at which the raw content begins.
func (p *Parser) ParseIndirectObject() (number, generation int, obj primitive.Object, streamBodyOffset int, isStream bool, err error) {
	numTok, err := p.lex.Expect(lexer.Integer)
	if err != nil {
		return 0, 0, nil, 0, false, fmt.Errorf("parser: object declaration: %w", err)
	}
	genTok, err := p.lex.Expect(lexer.Integer)
	if err != nil {
		return 0, 0, nil, 0, false, fmt.Errorf("parser: object declaration: %w", err)
	}
	if _, err := p.lex.Expect(lexer.Obj); err != nil {
		return 0, 0, nil, 0, false, fmt.Errorf("parser: object declaration: %w", err)
	}
	n, _ := numTok.Int()
	g, _ := genTok.Int()
	obj, err = p.ParseObject()
	if err != nil {
		return 0, 0, nil, 0, false, err
	}
	if d, ok := obj.(primitive.Dict); ok {
		if streamTok, perr := p.lex.Peek(); perr == nil && streamTok.Kind == lexer.Stream {
			p.lex.Next()
			off := streamContentStart(p.lex)
			return int(n), int(g), primitive.Stream{Dict: d, Raw: nil}, off, true, nil
		}
	}
	return int(n), int(g), obj, 0, false, nil
}

// streamContentStart skips the single EOL required by PDF 1.7 §7.3.8.1
// between the "stream" keyword and the raw byte content (CRLF, or a lone
// LF; a lone CR is nonconforming but tolerated) and returns the resulting
// offset.
func streamContentStart(l *lexer.Lexer) int {
	pos := l.Pos()
	rest := l.ReadN(2)
	switch {
	case len(rest) >= 2 && rest[0] == '\r' && rest[1] == '\n':
		return pos + 2
	case len(rest) >= 1 && rest[0] == '\n':
		l.SetPos(pos + 1)
		return pos + 1
	case len(rest) >= 1 && rest[0] == '\r':
		l.SetPos(pos + 1)
		return pos + 1
	default:
		l.SetPos(pos)
		return pos
	}
}
