// Package scanner implements the lexer that turns nano source text into a
// stream of tokens for the parser to consume.
package scanner

import (
	"fmt"
	"go/scanner"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/nanolang/nano/lang/token"
)

// Error and ErrorList are reused from the standard library's go/scanner
// package: they already provide exactly the shape spec.md asks for — an
// error tagged with a source position, accumulated into a sorted,
// error-compatible list. This mirrors the teacher's own choice for this
// concern (lang/scanner aliases the same types).
type (
	Error     = scanner.Error
	ErrorList = scanner.ErrorList
)

// PrintError writes each error in err (a single error or an ErrorList) to w,
// one per line.
func PrintError(w io.Writer, err error) {
	scanner.PrintError(w, err)
}

// TokenValue carries the full scanned information for a single token: its
// kind, the raw lexeme, its source position and (for literals) the decoded
// value.
type TokenValue struct {
	Token token.Token
	Lit   string
	Pos   token.Position
	Num   float64
	Str   string
}

// Scanner tokenizes nano source text.
type Scanner struct {
	filename string
	src      []byte
	errs     ErrorList

	cur  rune // current character, -1 at EOF
	off  int  // byte offset of cur
	roff int  // byte offset right after cur
	line int  // 1-based current line
	col  int  // 1-based current column (of cur)
}

// Init initializes the scanner to tokenize src. filename is used only in
// reported error positions.
func (s *Scanner) Init(filename string, src []byte) {
	s.filename = filename
	s.src = src
	s.errs = nil
	s.off = 0
	s.roff = 0
	s.line = 1
	s.col = 0
	s.advance()
}

// Errors returns the accumulated error list, or nil if scanning the whole
// file produced no errors.
func (s *Scanner) Errors() error { return s.errs.Err() }

func (s *Scanner) pos() token.Position { return token.Position{Line: s.line, Col: s.col} }

func (s *Scanner) error(pos token.Position, msg string) {
	s.errs.Add(scanner.Position{Filename: s.filename, Line: pos.Line, Column: pos.Col}, msg)
}

func (s *Scanner) advance() {
	if s.roff >= len(s.src) {
		s.off = len(s.src)
		s.cur = -1
		s.col++
		return
	}
	if s.cur == '\n' {
		s.line++
		s.col = 0
	}
	s.off = s.roff
	r, w := rune(s.src[s.roff]), 1
	if r >= utf8.RuneSelf {
		r, w = utf8.DecodeRune(s.src[s.roff:])
	}
	s.roff += w
	s.cur = r
	s.col++
}

func (s *Scanner) peek() byte {
	if s.roff < len(s.src) {
		return s.src[s.roff]
	}
	return 0
}

// Scan returns the next token in the source. Reaching the end of input
// always returns token.EOF, repeatedly if called again.
func (s *Scanner) Scan() TokenValue {
	s.skipWhitespaceAndComments()

	pos := s.pos()
	start := s.off

	switch {
	case s.cur == -1:
		return TokenValue{Token: token.EOF, Pos: pos}

	case isLetter(s.cur):
		for isLetter(s.cur) || isDigit(s.cur) {
			s.advance()
		}
		lit := string(s.src[start:s.off])
		return TokenValue{Token: token.Lookup(lit), Lit: lit, Pos: pos}

	case isDigit(s.cur) || (s.cur == '.' && isDigit(rune(s.peek()))):
		return s.number(pos, start)

	case s.cur == '"' || s.cur == '\'':
		return s.string(pos)
	}

	cur := s.cur
	s.advance()
	mk := func(tok token.Token) TokenValue {
		return TokenValue{Token: tok, Lit: string(s.src[start:s.off]), Pos: pos}
	}
	switch cur {
	case '+':
		return mk(token.PLUS)
	case '-':
		return mk(token.MINUS)
	case '*':
		return mk(token.STAR)
	case '/':
		return mk(token.SLASH)
	case '%':
		return mk(token.PERCENT)
	case ';':
		return mk(token.SEMI)
	case ',':
		return mk(token.COMMA)
	case '(':
		return mk(token.LPAREN)
	case ')':
		return mk(token.RPAREN)
	case '{':
		return mk(token.LBRACE)
	case '}':
		return mk(token.RBRACE)
	case '=':
		if s.cur == '=' {
			s.advance()
			return mk(token.EQL)
		}
		return mk(token.ASSIGN)
	case '!':
		if s.cur == '=' {
			s.advance()
			return mk(token.NEQ)
		}
		s.error(pos, fmt.Sprintf("unexpected character %#U", cur))
		return mk(token.ILLEGAL)
	case '<':
		if s.cur == '=' {
			s.advance()
			return mk(token.LE)
		}
		return mk(token.LT)
	case '>':
		if s.cur == '=' {
			s.advance()
			return mk(token.GE)
		}
		return mk(token.GT)
	case '&':
		if s.cur == '&' {
			s.advance()
			return mk(token.AND)
		}
		s.error(pos, fmt.Sprintf("unexpected character %#U", cur))
		return mk(token.ILLEGAL)
	case '|':
		if s.cur == '|' {
			s.advance()
			return mk(token.OR)
		}
		s.error(pos, fmt.Sprintf("unexpected character %#U", cur))
		return mk(token.ILLEGAL)
	default:
		s.error(pos, fmt.Sprintf("unexpected character %#U", cur))
		return mk(token.ILLEGAL)
	}
}

func (s *Scanner) skipWhitespaceAndComments() {
	for {
		for isSpace(s.cur) {
			s.advance()
		}
		if s.cur == '/' && s.peek() == '/' {
			for s.cur != '\n' && s.cur != -1 {
				s.advance()
			}
			continue
		}
		if s.cur == '/' && s.peek() == '*' {
			startPos := s.pos()
			s.advance()
			s.advance()
			closed := false
			for s.cur != -1 {
				if s.cur == '*' && s.peek() == '/' {
					s.advance()
					s.advance()
					closed = true
					break
				}
				s.advance()
			}
			if !closed {
				s.error(startPos, "unterminated block comment")
			}
			continue
		}
		return
	}
}

func (s *Scanner) number(pos token.Position, start int) TokenValue {
	for isDigit(s.cur) {
		s.advance()
	}
	if s.cur == '.' && isDigit(rune(s.peek())) {
		s.advance()
		for isDigit(s.cur) {
			s.advance()
		}
	}
	lit := string(s.src[start:s.off])
	n, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		s.error(pos, fmt.Sprintf("invalid number literal %q: %s", lit, err))
	}
	return TokenValue{Token: token.NUMBER, Lit: lit, Pos: pos, Num: n}
}

func (s *Scanner) string(pos token.Position) TokenValue {
	quote := s.cur
	s.advance()

	var sb strings.Builder
	for {
		if s.cur == -1 || s.cur == '\n' {
			s.error(pos, "unterminated string literal")
			break
		}
		if s.cur == quote {
			s.advance()
			break
		}
		if s.cur == '\\' {
			s.advance()
			switch s.cur {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '\\':
				sb.WriteByte('\\')
			case '"':
				sb.WriteByte('"')
			case '\'':
				sb.WriteByte('\'')
			default:
				s.error(s.pos(), fmt.Sprintf("invalid escape sequence \\%c", s.cur))
				sb.WriteRune(s.cur)
			}
			s.advance()
			continue
		}
		sb.WriteRune(s.cur)
		s.advance()
	}

	raw := string(quote) + sb.String() + string(quote)
	return TokenValue{Token: token.STRING, Lit: raw, Pos: pos, Str: sb.String()}
}

func isSpace(r rune) bool { return r == ' ' || r == '\t' || r == '\r' || r == '\n' }

func isLetter(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// ScanAll tokenizes the whole source in one call, returning every token
// (including the trailing EOF) and the accumulated errors, if any.
func ScanAll(filename string, src []byte) ([]TokenValue, error) {
	var s Scanner
	s.Init(filename, src)
	var toks []TokenValue
	for {
		tv := s.Scan()
		toks = append(toks, tv)
		if tv.Token == token.EOF {
			break
		}
	}
	return toks, s.Errors()
}
