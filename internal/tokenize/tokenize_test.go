package tokenize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"char", "body", "ma"}, Tokens("char_body.ma"))
	assert.Equal(t, []string{"projects", "char", "body", "ma"}, Tokens("/projects/char_body.ma"))
	assert.Equal(t, []string{"a", "b", "c"}, Tokens(`a\b-c`))
	assert.Equal(t, []string{"charbody"}, Tokens("CharBody"))
	assert.Empty(t, Tokens("  /_-. "))
	assert.Empty(t, Tokens(""))
}

func TestTokenSet(t *testing.T) {
	set := TokenSet("/projects/char_char.ma")
	assert.Len(t, set, 3)
	assert.Contains(t, set, "char")
	assert.Contains(t, set, "projects")
	assert.Contains(t, set, "ma")
}

func TestMatchExpr(t *testing.T) {
	assert.Equal(t, `"char"*`, MatchExpr([]string{"char"}))
	assert.Equal(t, `"char"* AND "bo"*`, MatchExpr([]string{"char", "bo"}))
	assert.Equal(t, "", MatchExpr(nil))
}

func TestMatchExprEscapesQuotes(t *testing.T) {
	assert.Equal(t, `"a""b"*`, MatchExpr([]string{`a"b`}))
}
