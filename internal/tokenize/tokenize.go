// Package tokenize splits paths, names, and query text into the tokens the
// full-text index matches on.
package tokenize

import (
	"strings"
	"unicode"
)

// isDelim reports whether r separates tokens. Path separators and the common
// name delimiters all split, so "char_body.ma" yields [char body ma].
func isDelim(r rune) bool {
	switch r {
	case '/', '\\', '_', '-', '.', ' ':
		return true
	}
	return unicode.IsSpace(r)
}

// Tokens splits text into lower-cased tokens.
func Tokens(text string) []string {
	fields := strings.FieldsFunc(text, isDelim)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, strings.ToLower(f))
	}
	return out
}

// TokenSet returns the tokens of text as a set for exact-match lookups.
func TokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range Tokens(text) {
		set[tok] = struct{}{}
	}
	return set
}

// MatchExpr builds an FTS5 MATCH expression where every token must be present
// as a prefix of some indexed token: `"char"* AND "bo"*`. Embedded quotes are
// doubled so user input cannot alter the expression structure.
func MatchExpr(tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}
	parts := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		parts = append(parts, `"`+strings.ReplaceAll(tok, `"`, `""`)+`"*`)
	}
	return strings.Join(parts, " AND ")
}
