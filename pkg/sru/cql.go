package sru

import "strings"

// QuotePhrase wraps a term in double quotes for use as a CQL phrase,
// escaping embedded quotes and backslashes.
func QuotePhrase(term string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range term {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}

// And joins non-empty clauses with the CQL "and" operator.
func And(clauses ...string) string {
	var kept []string
	for _, c := range clauses {
		if strings.TrimSpace(c) != "" {
			kept = append(kept, c)
		}
	}
	return strings.Join(kept, " and ")
}

// Index builds an "index relation value" clause, e.g.
// Index("dcterms.title", "any", QuotePhrase("dwaling")).
func Index(index, relation, value string) string {
	return index + " " + relation + " " + value
}
