package chunking

import (
	"regexp"
	"strings"
)

// Up to three words on one line.
const conceptPhrase = `\b([A-Za-z][\w-]*(?:[ \t]+[A-Za-z][\w-]*){0,2})`

type conceptPattern struct {
	pattern *regexp.Regexp
	// leading reports whether the concept precedes the cue ("X is a ...").
	leading bool
}

var (
	conceptPatterns = []conceptPattern{
		{regexp.MustCompile(conceptPhrase + `\s+(?:is|are)\s+(?:a|an|the)\s`), true},
		{regexp.MustCompile(`(?i)\bdefine[sd]?\s+as\s+` + conceptPhrase), false},
		{regexp.MustCompile(`(?i)\b(?:concept|term|notion)\s+of\s+` + conceptPhrase), false},
		{regexp.MustCompile(conceptPhrase + `\s+(?:refers\s+to|means|denotes)\b`), true},
	}

	capitalizedWordPattern = regexp.MustCompile(`\b[A-Z][a-z]{4,}\b`)
)

const minConceptFrequency = 3

var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "this": true, "that": true, "these": true,
	"those": true, "it": true, "its": true, "is": true, "are": true, "was": true,
	"were": true, "be": true, "been": true, "of": true, "in": true, "on": true,
	"at": true, "to": true, "for": true, "with": true, "by": true, "from": true,
	"and": true, "or": true, "but": true, "not": true, "as": true, "which": true,
	"what": true, "who": true, "how": true, "why": true, "when": true, "where": true,
	"there": true, "their": true, "they": true, "them": true, "then": true,
	"than": true, "also": true, "such": true, "each": true, "some": true,
	"about": true, "after": true, "before": true, "while": true, "other": true,
	"into": true, "over": true, "under": true, "between": true, "because": true,
	"however": true, "therefore": true, "thus": true, "here": true, "we": true,
	"our": true, "you": true, "your": true, "can": true, "will": true, "would": true,
	"should": true, "could": true, "first": true, "second": true, "finally": true,
	"example": true, "chapter": true, "section": true, "figure": true,
}

// extractConcepts returns up to MaxConcepts lowercase concepts in order of
// first appearance: cue-phrase matches first, then frequent capitalized words.
func extractConcepts(text string) []string {
	seen := make(map[string]bool)
	concepts := make([]string, 0)

	add := func(concept string) {
		if concept == "" || seen[concept] || len(concepts) >= MaxConcepts {
			return
		}
		seen[concept] = true
		concepts = append(concepts, concept)
	}

	for _, cp := range conceptPatterns {
		for _, m := range cp.pattern.FindAllStringSubmatch(text, -1) {
			add(cleanConcept(m[1], cp.leading))
		}
	}

	counts := make(map[string]int)
	order := make([]string, 0)
	for _, word := range capitalizedWordPattern.FindAllString(text, -1) {
		lower := strings.ToLower(word)
		if counts[lower] == 0 {
			order = append(order, lower)
		}
		counts[lower]++
	}
	for _, word := range order {
		if counts[word] >= minConceptFrequency && !stopWords[word] {
			add(word)
		}
	}

	return concepts
}

// cleanConcept lowercases a captured phrase and cuts it at stop words. A
// leading phrase keeps the words after its last stop word, a trailing one
// keeps the words before its first.
func cleanConcept(phrase string, leading bool) string {
	words := strings.Fields(strings.ToLower(phrase))
	kept := make([]string, 0, len(words))

	if leading {
		for i := len(words) - 1; i >= 0; i-- {
			if stopWords[words[i]] {
				break
			}
			kept = append([]string{words[i]}, kept...)
		}
	} else {
		for _, w := range words {
			if stopWords[w] {
				break
			}
			kept = append(kept, w)
		}
	}

	concept := strings.Trim(strings.Join(kept, " "), "-_")
	if len(concept) < 3 {
		return ""
	}
	return concept
}
