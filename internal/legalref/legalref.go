// Package legalref extracts structured legal references (statute articles,
// ECLI case identifiers) from free text using regex heuristics.
package legalref

import (
	"regexp"
	"strings"
)

var (
	// ECLI:NL:HR:2019:1278 and EU variants.
	ecliRe = regexp.MustCompile(`\bECLI:[A-Z]{2}:[A-Z0-9]{1,7}:\d{4}:[A-Z0-9.]{1,25}\b`)

	// Dutch statute references: "artikel 6:162 BW", "art. 3 lid 2 Awb",
	// "artikel 162a". The trailing code list covers the common statute
	// abbreviations.
	articleRe = regexp.MustCompile(`(?i)\bart(?:ikel|\.)?\s*\d+[a-z]?(?::\d+[a-z]?)?(?:\s+lid\s+\d+)?(?:\s+(?:BW|Sr|Sv|Rv|Awb|Gw|Fw|WVW|AWR|Wft))?`)
)

// ECLIs returns the distinct ECLI identifiers found in text, in order of
// first appearance.
func ECLIs(text string) []string {
	return dedupe(ecliRe.FindAllString(text, -1))
}

// Articles returns the distinct statute/article references found in text.
func Articles(text string) []string {
	matches := articleRe.FindAllString(text, -1)
	for i, m := range matches {
		matches[i] = strings.Join(strings.Fields(m), " ")
	}
	return dedupe(matches)
}

// Count returns the total number of distinct references (articles + ECLIs)
// in text.
func Count(text string) int {
	return len(Articles(text)) + len(ECLIs(text))
}

func dedupe(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}
