// FILE: pkg/retrieval/concepts.go
// PURPOSE: Stage 4. Query-relevant concepts, highlights, token totals and overall relevance

package retrieval

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

const (
	minConceptRelevance = 0.3
	maxConcepts         = 10
	maxHighlights       = 3
	intentMatchBoost    = 1.2
	intentBoostMinConf  = 0.7
	noDefinitionFound   = "No definition found"
)

var (
	sentenceSplitPattern = regexp.MustCompile(`[^.!?\n]+[.!?]*`)
	definitionCuePattern = regexp.MustCompile(`(?i)\b(?:is|are|means|refers to|defined as)\b`)

	intentPatterns = map[IntentType]*regexp.Regexp{
		IntentDefinition:  regexp.MustCompile(`(?i)\b(?:is a|is an|are|means|refers to|defined as|definition)\b`),
		IntentComparison:  regexp.MustCompile(`(?i)\b(?:whereas|unlike|compared|versus|vs|differ|differs|difference|similar|similarly|contrast)\b`),
		IntentExample:     regexp.MustCompile(`(?i)\b(?:for example|for instance|such as|e\.g|example|consider)\b`),
		IntentSummary:     regexp.MustCompile(`(?i)\b(?:in summary|to summarize|overall|in conclusion|key points?)\b`),
		IntentExplanation: regexp.MustCompile(`(?i)\b(?:because|therefore|thus|since|as a result|due to|leads to)\b`),
	}
)

// EnrichWithConcepts assembles the RelevantContent for already ranked
// chunks: concepts relevant to the query, per-chunk related concepts and
// highlights, total tokens and the overall relevance score.
func (e *Engine) EnrichWithConcepts(eq *ExpandedQuery, chunks []EnhancedChunk) *RelevantContent {
	keywords := queryKeywords(eq)

	order := make([]string, 0)
	byTerm := make(map[string]*ConceptInfo)
	for _, ch := range chunks {
		for _, concept := range ch.Metadata.Concepts {
			rel := conceptRelevance(concept, keywords)
			if rel <= minConceptRelevance {
				continue
			}
			info, ok := byTerm[concept]
			if !ok {
				info = &ConceptInfo{Term: concept}
				byTerm[concept] = info
				order = append(order, concept)
			}
			info.Relevance = math.Max(info.Relevance, rel)
			if !contains(info.SourceChunks, ch.ID) {
				info.SourceChunks = append(info.SourceChunks, ch.ID)
			}
		}
	}

	concepts := make([]ConceptInfo, 0, len(order))
	for _, term := range order {
		concepts = append(concepts, *byTerm[term])
	}
	sort.SliceStable(concepts, func(i, j int) bool { return concepts[i].Relevance > concepts[j].Relevance })
	if len(concepts) > maxConcepts {
		concepts = concepts[:maxConcepts]
	}

	contentByID := make(map[string]string, len(chunks))
	for _, ch := range chunks {
		contentByID[ch.ID] = ch.Content
	}
	for i := range concepts {
		concepts[i].Definition = findDefinition(concepts[i], contentByID)
	}

	total := 0
	for i := range chunks {
		chunks[i].RelatedConcepts = nil
		for _, c := range concepts {
			if contains(c.SourceChunks, chunks[i].ID) {
				chunks[i].RelatedConcepts = append(chunks[i].RelatedConcepts, c.Term)
			}
		}
		chunks[i].Highlights = highlights(chunks[i].Content, keywords)
		total += chunks[i].Tokens
	}

	return &RelevantContent{
		Chunks:         chunks,
		Concepts:       concepts,
		TotalTokens:    total,
		RelevanceScore: relevanceScore(eq.Intent, chunks),
	}
}

func queryKeywords(eq *ExpandedQuery) []string {
	seen := make(map[string]bool)
	keywords := make([]string, 0)
	add := func(list []string) {
		for _, kw := range list {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" && !seen[kw] {
				seen[kw] = true
				keywords = append(keywords, kw)
			}
		}
	}
	add(eq.Intent.Keywords)
	add(eq.ExpandedTerms)
	add(extractKeywords(eq.Original))
	return keywords
}

// conceptRelevance is 1 for an exact keyword match, 0.7 when one contains
// the other and otherwise the share of the concept's words found among the
// keywords.
func conceptRelevance(concept string, keywords []string) float64 {
	concept = strings.ToLower(concept)
	contained := false
	words := make(map[string]bool)
	for _, kw := range keywords {
		if concept == kw {
			return 1.0
		}
		if strings.Contains(concept, kw) || strings.Contains(kw, concept) {
			contained = true
		}
		for _, w := range strings.Fields(kw) {
			words[w] = true
		}
	}
	if contained {
		return 0.7
	}

	conceptWords := strings.Fields(concept)
	if len(conceptWords) == 0 {
		return 0
	}
	hits := 0
	for _, w := range conceptWords {
		if words[w] {
			hits++
		}
	}
	return float64(hits) / float64(len(conceptWords))
}

func findDefinition(info ConceptInfo, contentByID map[string]string) string {
	term := strings.ToLower(info.Term)
	for _, id := range info.SourceChunks {
		for _, sentence := range sentenceSplitPattern.FindAllString(contentByID[id], -1) {
			if strings.Contains(strings.ToLower(sentence), term) && definitionCuePattern.MatchString(sentence) {
				return strings.TrimSpace(sentence)
			}
		}
	}
	return noDefinitionFound
}

func highlights(content string, keywords []string) []string {
	out := make([]string, 0, maxHighlights)
	for _, sentence := range sentenceSplitPattern.FindAllString(content, -1) {
		lower := strings.ToLower(sentence)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				out = append(out, strings.TrimSpace(sentence))
				break
			}
		}
		if len(out) == maxHighlights {
			break
		}
	}
	return out
}

// relevanceScore averages the top three chunk scores, boosted by 1.2 when a
// confident intent is reflected in the text, and caps the result at 1.
func relevanceScore(intent QueryIntent, chunks []EnhancedChunk) float64 {
	if len(chunks) == 0 {
		return 0
	}

	n := min(3, len(chunks))
	sum := 0.0
	for _, ch := range chunks[:n] {
		sum += ch.Score
	}
	avg := sum / float64(n)

	boost := 1.0
	if pattern, ok := intentPatterns[intent.Type]; ok && intent.Confidence > intentBoostMinConf {
		for _, ch := range chunks {
			if pattern.MatchString(ch.Content) {
				boost = intentMatchBoost
				break
			}
		}
	}
	return math.Min(1.0, avg*boost)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
