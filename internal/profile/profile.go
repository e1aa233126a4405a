// Package profile holds the user's stated preferences and the free-text normalization
// applied while they are collected.
package profile

import (
	"regexp"
	"strconv"
	"strings"
)

// None is the answer that clears an axis.
const None = "none"

// UserProfile is built one field per dialogue stage. Empty values mean no preference.
type UserProfile struct {
	Qualification string   `json:"qualification,omitempty"`
	Skills        []string `json:"skills,omitempty"`
	Fields        []string `json:"fields,omitempty"`
	MinSalary     *int     `json:"min_salary,omitempty"`
}

// HasQualification reports whether a qualification preference is set.
func (p UserProfile) HasQualification() bool {
	return p.Qualification != ""
}

// Clone returns a deep copy.
func (p UserProfile) Clone() UserProfile {
	out := p
	out.Skills = append([]string(nil), p.Skills...)
	out.Fields = append([]string(nil), p.Fields...)
	if p.MinSalary != nil {
		v := *p.MinSalary
		out.MinSalary = &v
	}
	return out
}

// DefaultSynonyms maps common aliases to canonical terms.
var DefaultSynonyms = map[string]string{
	"developer":  "software engineer",
	"programmer": "software engineer",
	"coder":      "software engineer",
	"web dev":    "web developer",
	"bsc":        "bachelors",
	"msc":        "masters",
}

// Normalizer maps free-text terms to canonical ones.
type Normalizer struct {
	synonyms map[string]string
}

// NewNormalizer builds a normalizer from DefaultSynonyms with extra entries layered on top.
func NewNormalizer(extra map[string]string) *Normalizer {
	synonyms := make(map[string]string, len(DefaultSynonyms)+len(extra))
	for k, v := range DefaultSynonyms {
		synonyms[k] = v
	}
	for k, v := range extra {
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.ToLower(strings.TrimSpace(v))
		if k == "" || v == "" {
			continue
		}
		synonyms[k] = v
	}
	return &Normalizer{synonyms: synonyms}
}

// Term lowercases a term and replaces it with its canonical form when one is known.
func (n *Normalizer) Term(term string) string {
	term = strings.ToLower(strings.TrimSpace(term))
	if canonical, ok := n.synonyms[term]; ok {
		return canonical
	}
	return term
}

// Qualification normalizes a qualification answer. "none" and blank input yield "".
func (n *Normalizer) Qualification(text string) string {
	if isNone(text) {
		return ""
	}
	return n.Term(text)
}

// List splits a comma separated answer into normalized terms. Duplicates are dropped,
// first occurrence wins.
func (n *Normalizer) List(text string) []string {
	if isNone(text) {
		return nil
	}

	seen := make(map[string]struct{})
	var out []string
	for _, part := range strings.Split(text, ",") {
		term := n.Term(part)
		if term == "" {
			continue
		}
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		out = append(out, term)
	}
	return out
}

var firstNumber = regexp.MustCompile(`\d+`)

// ParseSalary reads a minimum salary answer. Any mention of "skip" yields 0; otherwise the
// first integer wins, with thousands separators ignored. No digits yields nil.
func ParseSalary(text string) *int {
	text = strings.ToLower(text)
	if strings.Contains(text, "skip") {
		zero := 0
		return &zero
	}

	match := firstNumber.FindString(strings.ReplaceAll(text, ",", ""))
	if match == "" {
		return nil
	}

	n, err := strconv.Atoi(match)
	if err != nil {
		return nil
	}
	return &n
}

func isNone(text string) bool {
	text = strings.ToLower(strings.TrimSpace(text))
	return text == "" || text == None
}
