package lookup

import (
	"strings"

	"github.com/lexhulp/lookup-cli/internal/dict"
)

// Stage is one query-construction strategy in the cascade. Stages are tried
// strictly in order; each is less specific than the one before it.
type Stage struct {
	Name     string
	Query    string
	Discount float64 // intrinsic quality discount for this strategy; zero means none
}

// BuildStages produces the relaxation cascade for one term:
//
//  1. term plus all context tokens
//  2. term plus the legal-domain subset of the context tokens
//  3. the bare term
//  4. one stage per weighted synonym, in table order
//
// Stages that would repeat the previous query are skipped.
func BuildStages(term string, contextTokens []string, legalTokens map[string]struct{}, synonyms []dict.Synonym) []Stage {
	term = strings.TrimSpace(term)
	var stages []Stage
	seen := make(map[string]struct{})

	add := func(name, query string, discount float64) {
		query = strings.TrimSpace(query)
		if query == "" {
			return
		}
		key := strings.ToLower(query)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		stages = append(stages, Stage{Name: name, Query: query, Discount: discount})
	}

	if len(contextTokens) > 0 {
		add("full_context", term+" "+strings.Join(contextTokens, " "), 0)
	}

	var legal []string
	for _, tok := range contextTokens {
		if _, ok := legalTokens[strings.ToLower(strings.TrimSpace(tok))]; ok {
			legal = append(legal, tok)
		}
	}
	if len(legal) > 0 && len(legal) < len(contextTokens) {
		add("legal_context", term+" "+strings.Join(legal, " "), 0)
	}

	add("term_only", term, 0)

	for _, syn := range synonyms {
		add("synonym:"+syn.Term, syn.Term, syn.Weight)
	}

	return stages
}
