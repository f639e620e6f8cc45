// Package dict loads the static synonym and keyword lookup tables. Both are
// curated externally, read once at startup, and immutable afterwards.
package dict

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Synonym is one weighted alternative for a term. Weight scales the raw
// confidence of results found through the synonym.
type Synonym struct {
	Term   string  `yaml:"term"`
	Weight float64 `yaml:"weight"`
}

// Tables holds both lookup tables.
type Tables struct {
	synonyms map[string][]Synonym
	keywords map[string][]string
}

// Empty returns tables with no entries. Lookups degrade gracefully: no
// synonym stage, no keyword boosts.
func Empty() *Tables {
	return &Tables{
		synonyms: map[string][]Synonym{},
		keywords: map[string][]string{},
	}
}

// Load reads the synonym and keyword tables from YAML files. A missing file
// is not an error; that table is simply empty.
func Load(synonymsPath, keywordsPath string) (*Tables, error) {
	t := Empty()

	if synonymsPath != "" {
		raw, err := os.ReadFile(synonymsPath)
		switch {
		case os.IsNotExist(err):
			// optional
		case err != nil:
			return nil, eris.Wrapf(err, "dict: read synonyms %s", synonymsPath)
		default:
			var syn map[string][]Synonym
			if err := yaml.Unmarshal(raw, &syn); err != nil {
				return nil, eris.Wrapf(err, "dict: parse synonyms %s", synonymsPath)
			}
			for term, list := range syn {
				t.synonyms[normalize(term)] = list
			}
		}
	}

	if keywordsPath != "" {
		raw, err := os.ReadFile(keywordsPath)
		switch {
		case os.IsNotExist(err):
			// optional
		case err != nil:
			return nil, eris.Wrapf(err, "dict: read keywords %s", keywordsPath)
		default:
			var kw map[string][]string
			if err := yaml.Unmarshal(raw, &kw); err != nil {
				return nil, eris.Wrapf(err, "dict: parse keywords %s", keywordsPath)
			}
			t.keywords = kw
		}
	}

	return t, nil
}

// Synonyms returns the ordered weighted synonyms for a term, or nil.
func (t *Tables) Synonyms(term string) []Synonym {
	return t.synonyms[normalize(term)]
}

// Keywords returns the keyword list for a category, or nil.
func (t *Tables) Keywords(category string) []string {
	return t.keywords[category]
}

// AllKeywords returns every keyword across all categories.
func (t *Tables) AllKeywords() []string {
	var out []string
	for _, list := range t.keywords {
		out = append(out, list...)
	}
	return out
}

// Categories returns the keyword category names.
func (t *Tables) Categories() []string {
	out := make([]string, 0, len(t.keywords))
	for c := range t.keywords {
		out = append(out, c)
	}
	return out
}

func normalize(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}
