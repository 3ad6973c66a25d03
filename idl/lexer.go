package idl

import "fmt"

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenIdent
	tokenString
	tokenNumber
	tokenPunct
)

type token struct {
	kind tokenKind
	text string
	line int
}

func (t token) String() string {
	switch t.kind {
	case tokenEOF:
		return "end of file"
	case tokenString:
		return fmt.Sprintf("%q", t.text)
	default:
		return t.text
	}
}

// lexer scans proto source into tokens. It never fails: malformed input
// degrades into punct tokens the parser will refuse and skip.
type lexer struct {
	src  []byte
	pos  int
	line int
}

func newLexer(src []byte) *lexer {
	return &lexer{src: src, line: 1}
}

func (l *lexer) next() token {
	l.skipSpaceAndComments()
	if l.pos >= len(l.src) {
		return token{kind: tokenEOF, line: l.line}
	}

	c := l.src[l.pos]
	switch {
	case isIdentStart(c):
		return l.scanIdent()
	case c >= '0' && c <= '9':
		return l.scanNumber()
	case c == '"' || c == '\'':
		return l.scanString(c)
	case c == '-' && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1]):
		return l.scanNumber()
	default:
		l.pos++
		return token{kind: tokenPunct, text: string(c), line: l.line}
	}
}

func (l *lexer) skipSpaceAndComments() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\n':
			l.line++
			l.pos++
		case c == ' ' || c == '\t' || c == '\r':
			l.pos++
		case c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		case c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '*':
			l.pos += 2
			for l.pos < len(l.src) {
				if l.src[l.pos] == '\n' {
					l.line++
				}
				if l.src[l.pos] == '*' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/' {
					l.pos += 2
					break
				}
				l.pos++
			}
		default:
			return
		}
	}
}

func (l *lexer) scanIdent() token {
	start := l.pos
	for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
		l.pos++
	}
	return token{kind: tokenIdent, text: string(l.src[start:l.pos]), line: l.line}
}

// scanNumber consumes an integer or float literal. The parser only keeps
// integer field numbers; anything else ends up inside skipped statements.
func (l *lexer) scanNumber() token {
	start := l.pos
	if l.src[l.pos] == '-' {
		l.pos++
	}
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if isDigit(c) || c == '.' || c == 'e' || c == 'E' || c == 'x' || c == '+' || c == '-' ||
			(c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') {
			l.pos++
			continue
		}
		break
	}
	return token{kind: tokenNumber, text: string(l.src[start:l.pos]), line: l.line}
}

func (l *lexer) scanString(quote byte) token {
	line := l.line
	l.pos++
	var buf []byte
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == quote {
			l.pos++
			break
		}
		if c == '\n' {
			// Unterminated literal, give back what we have.
			break
		}
		if c == '\\' && l.pos+1 < len(l.src) {
			l.pos++
			c = l.src[l.pos]
		}
		buf = append(buf, c)
		l.pos++
	}
	return token{kind: tokenString, text: string(buf), line: line}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
