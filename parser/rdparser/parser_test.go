package rdparser

import (
	"strings"
	"testing"

	"github.com/opsit-io/opsit-explang-core-sub000/parser/ast"
	"github.com/opsit-io/opsit-explang-core-sub000/parser/lexer"
	"github.com/opsit-io/opsit-explang-core-sub000/parser/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser(t *testing.T) {
	tests := []struct {
		name   string
		source string
		result []string
	}{
		{"empty", "", nil},
		{"comments", "; one\n;two", nil},
		{"atoms", `1 -2 3.5 "a\nb" """raw\n""" sym :key`, []string{"1", "-2", "3.5", `"a\nb"`, `"raw\\n"`, "sym", ":key"}},
		{"lists", "(a (b c) [1 2])", []string{"(a (b c) [1 2])"}},
		{"quote", "'x #'f", []string{"(quote x)", "(function f)"}},
		{"markers", "(lambda (a &optional (b 1 sb) &rest r) b)", []string{"(lambda (a &optional (b 1 sb) &rest r) b)"}},
		{"arrows", "(-> x f) (- 1 2)", []string{"(-> x f)", "(- 1 2)"}},
		{"keyword args", "(f :a 1)", []string{"(f :a 1)"}},
		{"qualified", "(math:sqrt 2)", []string{"(math:sqrt 2)"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			exprs, err := NewReader().Read(test.name, strings.NewReader(test.source))
			require.NoError(t, err)
			var result []string
			for _, expr := range exprs {
				result = append(result, expr.String())
			}
			assert.Equal(t, test.result, result)
		})
	}
}

func TestParserErrors(t *testing.T) {
	tests := []struct {
		name       string
		source     string
		msg        string
		incomplete bool
	}{
		{"unmatched", "(a (b c)", "test:1:1: unmatched (", true},
		{"unmatched literal", "[a", "test:1:1: unmatched [", true},
		{"close", ")", "test:1:1: unexpected )", false},
		{"meta", "#x", "test:1:1: invalid meta character 'x'", false},
		{"unterminated", "\"abc\n\"", "test:1:1: unterminated string literal", false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := NewReader().Read("test", strings.NewReader(test.source))
			require.Error(t, err)
			serr, ok := err.(*SyntaxError)
			require.True(t, ok, "%T", err)
			assert.Equal(t, test.msg, serr.Error())
			assert.Equal(t, test.incomplete, serr.Incomplete)
		})
	}
}

func TestLeafProblems(t *testing.T) {
	exprs, err := NewReader().Read("test", strings.NewReader("99999999999999999999999 007 \"\\q\""))
	require.NoError(t, err)
	require.Len(t, exprs, 3)
	for _, expr := range exprs {
		assert.Error(t, expr.Problem(), expr.String())
	}
}

func TestLocations(t *testing.T) {
	exprs, err := NewReader().Read("test", strings.NewReader("(a\n  (b c))\n\n:d"))
	require.NoError(t, err)
	require.Len(t, exprs, 2)
	list := exprs[0].(*ast.List)
	assert.Equal(t, "test:1:1", list.Loc().String())
	inner := list.Children[1].(*ast.List)
	assert.Equal(t, "test:2:3", inner.Loc().String())
	assert.Equal(t, "test:2:6", inner.Children[1].Loc().String())
	assert.Equal(t, "test:4:1", exprs[1].Loc().String())
}

func TestInteractive(t *testing.T) {
	lines := []string{"(+ 1", " 2)", "x y"}
	var prompts []bool
	var p *Interactive
	p = NewInteractive(func() []*token.Token {
		prompts = append(prompts, p.IsParsing())
		if len(lines) == 0 {
			return []*token.Token{{Type: token.EOF}}
		}
		line := lines[0]
		lines = lines[1:]
		lex := lexer.New(token.NewScanner("stdin", strings.NewReader(line)))
		var toks []*token.Token
		for tok := lex.NextToken(); tok.Type != token.EOF; tok = lex.NextToken() {
			toks = append(toks, tok)
		}
		return toks
	})
	for _, want := range []string{"(+ 1 2)", "x", "y"} {
		expr, err := p.ParseExpression()
		require.NoError(t, err)
		assert.Equal(t, want, expr.String())
	}
	_, err := p.ParseExpression()
	require.Error(t, err)
	assert.True(t, err.(*SyntaxError).Incomplete)
	assert.Equal(t, []bool{false, true, false, false}, prompts)
}
