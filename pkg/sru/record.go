package sru

import (
	"bytes"
	"encoding/xml"
	"strings"
)

// Fields holds the Dublin Core style metadata commonly present in SRU record
// payloads, regardless of the repository-specific wrapper schema.
type Fields struct {
	Title        string
	Identifier   string
	Abstract     string
	Creator      string
	Date         string
	Type         string
	Subjects     []string
	PreferredURL string
}

// ExtractFields scans the record payload for known metadata elements by
// local name, at any nesting depth. Repository schemas (gzd, OP, BWB) differ
// in wrapping but share these Dublin Core terms.
func (r Record) ExtractFields() Fields {
	var f Fields
	var explicitURL, identifierURL string

	dec := xml.NewDecoder(bytes.NewReader(r.Data.Inner))
	// Record payloads reuse namespace prefixes declared on the envelope;
	// decode leniently rather than resolving them.
	dec.Strict = false

	var current string
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			current = strings.ToLower(t.Name.Local)
		case xml.CharData:
			text := strings.TrimSpace(string(t))
			if text == "" {
				continue
			}
			switch current {
			case "title":
				if f.Title == "" {
					f.Title = text
				}
			case "identifier":
				if f.Identifier == "" {
					f.Identifier = text
				}
				if identifierURL == "" && strings.HasPrefix(text, "http") {
					identifierURL = text
				}
			case "abstract", "description":
				if f.Abstract == "" {
					f.Abstract = text
				}
			case "creator":
				if f.Creator == "" {
					f.Creator = text
				}
			case "date", "issued", "modified":
				if f.Date == "" {
					f.Date = text
				}
			case "type":
				if f.Type == "" {
					f.Type = text
				}
			case "subject":
				f.Subjects = append(f.Subjects, text)
			case "preferredurl", "itemurl":
				if explicitURL == "" {
					explicitURL = text
				}
			}
		case xml.EndElement:
			current = ""
		}
	}

	f.PreferredURL = explicitURL
	if f.PreferredURL == "" {
		f.PreferredURL = identifierURL
	}
	return f
}
