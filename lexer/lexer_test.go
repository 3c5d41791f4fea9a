package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivet-lang/rivetc/lexer"
	"github.com/rivet-lang/rivetc/report"
	"github.com/rivet-lang/rivetc/token"
)

// scanAll drains a Stream into a slice, including its trailing EOF token.
func scanAll(t *testing.T, src string) []token.Token {
	t.Helper()
	h := report.NewHandler(nil)
	s := lexer.Lex(h, "test.rv", []byte(src))
	require.Zero(t, h.NumErrors(), "unexpected lexical errors")

	var toks []token.Token
	for {
		tok := s.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

func kinds(toks []token.Token) []token.Kind {
	ks := make([]token.Kind, len(toks))
	for i, tok := range toks {
		ks[i] = tok.Kind
	}
	return ks
}

func TestLexIdentifiersAndKeywords(t *testing.T) {
	t.Parallel()
	toks := scanAll(t, "foo pub fn mut self Self i32 errtype")
	assert.Equal(t, []token.Kind{
		token.Name, token.KeyPub, token.KeyFn, token.KeyMut,
		token.KeySelf, token.KeySelfTy, token.KeyI32, token.KeyErrType, token.EOF,
	}, kinds(toks))
	assert.Equal(t, "foo", toks[0].Lexeme)
}

func TestLexNumbers(t *testing.T) {
	t.Parallel()
	toks := scanAll(t, "42 3.14 0x2A 1_000 1e10 .5")
	want := []string{"42", "3.14", "0x2A", "1_000", "1e10", ".5"}
	require.Len(t, toks, len(want)+1)
	for i, w := range want {
		assert.Equal(t, token.Number, toks[i].Kind)
		assert.Equal(t, w, toks[i].Lexeme)
	}
}

func TestLexStringEscapes(t *testing.T) {
	t.Parallel()
	toks := scanAll(t, `"a\nb\tc\"d"`)
	require.Len(t, toks, 2)
	assert.Equal(t, token.String, toks[0].Kind)
	assert.Equal(t, "a\nb\tc\"d", toks[0].Lexeme)
}

func TestLexCharLiteral(t *testing.T) {
	t.Parallel()
	toks := scanAll(t, `'x' '\n'`)
	require.Len(t, toks, 3)
	assert.Equal(t, token.Char, toks[0].Kind)
	assert.Equal(t, "x", toks[0].Lexeme)
	assert.Equal(t, "\n", toks[1].Lexeme)
}

func TestLexBytePrefixProducesSeparateIdent(t *testing.T) {
	t.Parallel()
	// The parser glues a `b`/`r` Name token to the literal that follows it
	// (see parser.parseCharLiteral/parseStringLiteral); the lexer must not
	// fuse them itself.
	toks := scanAll(t, `b'x' r"raw"`)
	require.Len(t, toks, 5)
	assert.Equal(t, []token.Kind{token.Name, token.Char, token.Name, token.String, token.EOF}, kinds(toks))
	assert.Equal(t, "b", toks[0].Lexeme)
	assert.Equal(t, "r", toks[2].Lexeme)
}

func TestLexComments(t *testing.T) {
	t.Parallel()
	toks := scanAll(t, "// skip me\nfoo /* block\ncomment */ bar /// a doc\nbaz")
	assert.Equal(t, []token.Kind{
		token.Name, token.Name, token.DocComment, token.Name, token.EOF,
	}, kinds(toks))
	assert.Equal(t, "a doc", toks[2].Lexeme)
}

func TestLexPunctuation(t *testing.T) {
	t.Parallel()
	toks := scanAll(t, ":: . .. == != <= >= => ++ --")
	assert.Equal(t, []token.Kind{
		token.DoubleColon, token.Dot, token.DotDot, token.Eq, token.Ne,
		token.Le, token.Ge, token.Arrow, token.Inc, token.Dec, token.EOF,
	}, kinds(toks))
}

// `<<`/`>>` must surface as two adjacent Lt/Gt tokens: parser.parseShiftExpr
// assembles them itself, using the token offsets to tell a shift from two
// separate comparison operators.
func TestLexShiftIsTwoTokens(t *testing.T) {
	t.Parallel()
	toks := scanAll(t, "a << b")
	require.Len(t, toks, 5)
	assert.Equal(t, []token.Kind{token.Name, token.Lt, token.Lt, token.Name, token.EOF}, kinds(toks))
	assert.Equal(t, toks[1].Pos.Offset+1, toks[2].Pos.Offset)
}

func TestLexPositions(t *testing.T) {
	t.Parallel()
	toks := scanAll(t, "foo\nbar")
	assert.Equal(t, 1, toks[0].Pos.Line)
	assert.Equal(t, 2, toks[1].Pos.Line)
	assert.Equal(t, 1, toks[1].Pos.Col)
}

func TestLexUnterminatedStringReportsError(t *testing.T) {
	t.Parallel()
	h := report.NewHandler(nil)
	s := lexer.Lex(h, "test.rv", []byte(`"unterminated`))
	for tok := s.Next(); tok.Kind != token.EOF; tok = s.Next() {
	}
	assert.True(t, h.HasErrors())
}
