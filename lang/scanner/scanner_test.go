package scanner_test

import (
	"testing"

	"github.com/nanolang/nano/lang/scanner"
	"github.com/nanolang/nano/lang/token"
	"github.com/stretchr/testify/require"
)

func scanTokens(t *testing.T, src string) []scanner.TokenValue {
	t.Helper()
	toks, err := scanner.ScanAll("test.nano", []byte(src))
	require.NoError(t, err)
	return toks
}

func TestScanBasics(t *testing.T) {
	toks := scanTokens(t, `let x = 5 + 3; print(x);`)

	var kinds []token.Token
	for _, tv := range toks {
		kinds = append(kinds, tv.Token)
	}
	require.Equal(t, []token.Token{
		token.LET, token.IDENT, token.ASSIGN, token.NUMBER, token.PLUS, token.NUMBER, token.SEMI,
		token.IDENT, token.LPAREN, token.IDENT, token.RPAREN, token.SEMI,
		token.EOF,
	}, kinds)
}

func TestScanEndsWithSingleEOF(t *testing.T) {
	toks := scanTokens(t, "")
	require.Len(t, toks, 1)
	require.Equal(t, token.EOF, toks[0].Token)
}

func TestScanMultiCharOperatorsLongestMatch(t *testing.T) {
	toks := scanTokens(t, "== = <= < >= > != &&  ||")
	var kinds []token.Token
	for _, tv := range toks {
		kinds = append(kinds, tv.Token)
	}
	require.Equal(t, []token.Token{
		token.EQL, token.ASSIGN, token.LE, token.LT, token.GE, token.GT, token.NEQ, token.AND, token.OR, token.EOF,
	}, kinds)
}

func TestScanStringEscapes(t *testing.T) {
	toks := scanTokens(t, `"a\nb\tc\\d\"e"`)
	require.Equal(t, "a\nb\tc\\d\"e", toks[0].Str)
}

func TestScanSingleQuoteString(t *testing.T) {
	toks := scanTokens(t, `'hello'`)
	require.Equal(t, token.STRING, toks[0].Token)
	require.Equal(t, "hello", toks[0].Str)
}

func TestScanNumberFractional(t *testing.T) {
	toks := scanTokens(t, "3.14 0.5 42")
	require.Equal(t, 3.14, toks[0].Num)
	require.Equal(t, 0.5, toks[1].Num)
	require.Equal(t, 42.0, toks[2].Num)
}

func TestScanKeywords(t *testing.T) {
	toks := scanTokens(t, "let function if else while for return true false")
	var kinds []token.Token
	for _, tv := range toks {
		kinds = append(kinds, tv.Token)
	}
	require.Equal(t, []token.Token{
		token.LET, token.FUNCTION, token.IF, token.ELSE, token.WHILE, token.FOR,
		token.RETURN, token.TRUE, token.FALSE, token.EOF,
	}, kinds)
}

func TestScanLineAndBlockComments(t *testing.T) {
	toks := scanTokens(t, "let x = 1; // comment\n/* block\ncomment */ let y = 2;")
	require.Len(t, toks, 11) // let x = 1 ; let y = 2 ; EOF
}

func TestUnterminatedString(t *testing.T) {
	_, err := scanner.ScanAll("t.nano", []byte(`"abc`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "unterminated string")
}

func TestUnterminatedBlockComment(t *testing.T) {
	_, err := scanner.ScanAll("t.nano", []byte("/* never closed"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "unterminated block comment")
}

func TestIllegalCharacter(t *testing.T) {
	_, err := scanner.ScanAll("t.nano", []byte("let x = @;"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "unexpected character")
}

func TestPositionsTrackLineAndColumn(t *testing.T) {
	toks := scanTokens(t, "let x\n  = 5;")
	// "=" is on line 2, column 3
	var eq scanner.TokenValue
	for _, tv := range toks {
		if tv.Token == token.ASSIGN {
			eq = tv
		}
	}
	require.Equal(t, 2, eq.Pos.Line)
	require.Equal(t, 3, eq.Pos.Col)
}
