// Package search implements the film roll search query language.
//
// A query is a space-separated list of terms, each either plain text
// ("portra", matched against several text attributes) or a field term
// ("format:120", "stars:>=4", "chemistry:c41"). Parsing produces tokens;
// compilation splits the tokens into SQL filters executable by the store
// and computed filters that must be evaluated in memory against derived
// attributes (status, total cost).
package search

import (
	"regexp"
	"strings"
)

// Operator is a comparison operator attached to a token or filter.
type Operator string

const (
	OpEquals    = Operator("=")
	OpGreater   = Operator(">")
	OpLess      = Operator("<")
	OpGreaterEq = Operator(">=")
	OpLessEq    = Operator("<=")
	OpContains  = Operator("contains")
)

// Token is one parsed search term. An empty Field means unscoped text
// search; such tokens always carry OpContains.
type Token struct {
	Field    string
	Operator Operator
	Value    string
}

var (
	comparisonTermPattern = regexp.MustCompile(`^(\w+):(>=|<=|>|<|=)(.+)$`)
	plainTermPattern      = regexp.MustCompile(`^(\w+):(.+)$`)
)

// Parse splits a raw query string into tokens. Empty and whitespace-only
// queries yield no tokens. Double quotes group spaces into a single term;
// the quote characters themselves are dropped.
func Parse(query string) []Token {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	var tokens []Token

	for _, part := range splitRespectingQuotes(query) {
		if strings.Contains(part, ":") {
			token, ok := parseFieldTerm(part)
			if ok {
				tokens = append(tokens, token)
			}
		} else {
			tokens = append(tokens, Token{Operator: OpContains, Value: part})
		}
	}

	return tokens
}

// splitRespectingQuotes splits on spaces outside double quotes. Quotes act
// as a toggle rather than a balanced pair: an unclosed quote makes every
// remaining space literal until end of input.
func splitRespectingQuotes(query string) []string {
	var parts []string
	var current []rune
	inQuotes := false

	for _, char := range query {
		switch {
		case char == '"':
			inQuotes = !inQuotes
		case char == ' ' && !inQuotes:
			if len(current) > 0 {
				parts = append(parts, string(current))
				current = nil
			}
		default:
			current = append(current, char)
		}
	}

	if len(current) > 0 {
		parts = append(parts, string(current))
	}

	return parts
}

// parseFieldTerm parses a part containing a colon, e.g. "format:120" or
// "stars:>=4". A field name not present in the alias table degrades to an
// unscoped contains token over the whole original part.
func parseFieldTerm(part string) (Token, bool) {
	var fieldName string
	var operator Operator
	var value string

	if m := comparisonTermPattern.FindStringSubmatch(part); m != nil {
		fieldName = strings.ToLower(m[1])
		operator = Operator(m[2])
		value = strings.Trim(m[3], `"`)
	} else if m := plainTermPattern.FindStringSubmatch(part); m != nil {
		fieldName = strings.ToLower(m[1])
		operator = OpEquals
		value = strings.Trim(m[2], `"`)
	} else {
		return Token{}, false
	}

	if _, known := fieldAliases[fieldName]; !known {
		return Token{Operator: OpContains, Value: part}, true
	}

	return Token{Field: fieldName, Operator: operator, Value: value}, true
}
