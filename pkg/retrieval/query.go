// FILE: pkg/retrieval/query.go
// PURPOSE: Stage 1. Intent, term expansion, target sections and query embeddings

package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/chunking"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/embedding"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/llm"

	"golang.org/x/sync/errgroup"
)

const (
	maxKeywords              = 5
	maxExpansionTerms        = 8
	fallbackIntentConfidence = 0.5
)

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true, "not": true,
	"you": true, "all": true, "any": true, "can": true, "had": true, "her": true,
	"was": true, "one": true, "our": true, "out": true, "has": true, "him": true,
	"his": true, "how": true, "its": true, "may": true, "new": true, "now": true,
	"old": true, "see": true, "two": true, "who": true, "did": true, "does": true,
	"what": true, "when": true, "where": true, "which": true, "while": true,
	"with": true, "this": true, "that": true, "these": true, "those": true,
	"from": true, "into": true, "about": true, "there": true, "their": true,
	"them": true, "they": true, "then": true, "than": true, "have": true,
	"been": true, "were": true, "will": true, "would": true, "should": true,
	"could": true, "explain": true, "describe": true, "tell": true, "give": true,
	"please": true, "between": true, "some": true, "much": true, "many": true,
	"why": true, "whom": true, "whose": true, "also": true, "just": true,
}

var synonyms = map[string][]string{
	"algorithm":  {"method", "procedure", "process"},
	"function":   {"method", "routine", "procedure"},
	"definition": {"meaning", "explanation"},
	"define":     {"meaning", "definition"},
	"example":    {"instance", "illustration", "sample"},
	"difference": {"comparison", "contrast", "distinction"},
	"compare":    {"contrast", "differentiate"},
	"summary":    {"overview", "recap", "synopsis"},
	"summarize":  {"overview", "recap"},
	"theorem":    {"proposition", "result"},
	"proof":      {"derivation", "demonstration"},
	"cause":      {"reason", "origin"},
	"effect":     {"result", "consequence", "impact"},
	"structure":  {"organization", "arrangement"},
	"important":  {"significant", "key"},
	"problem":    {"issue", "question"},
	"solution":   {"answer", "approach"},
}

// UnderstandAndExpandQuery builds the ExpandedQuery for one retrieval call.
// Only embedding failures are returned; every LLM step has a local fallback.
func (e *Engine) UnderstandAndExpandQuery(ctx context.Context, query, documentID string) (*ExpandedQuery, error) {
	intent := e.classifyIntent(ctx, query)

	terms := []string{}
	if e.cfg.QueryExpansion {
		terms = e.expandTerms(ctx, query, intent.Keywords)
	}

	eq := &ExpandedQuery{
		Original:       query,
		DocumentID:     documentID,
		Intent:         intent,
		ExpandedTerms:  terms,
		TargetSections: e.identifyTargetSections(ctx, query, documentID),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		vec, err := e.embed(gctx, query)
		eq.Embeddings.Original = vec
		return err
	})
	if len(terms) > 0 {
		g.Go(func() error {
			vec, err := e.embed(gctx, query+" "+strings.Join(terms, " "))
			eq.Embeddings.Expanded = vec
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if eq.Embeddings.Expanded == nil {
		eq.Embeddings.Expanded = eq.Embeddings.Original
	}

	e.log.Debug("retrieval", "Query understood", map[string]interface{}{
		"intent":          intent.Type,
		"confidence":      intent.Confidence,
		"keywords":        intent.Keywords,
		"expanded_terms":  terms,
		"target_sections": eq.TargetSections,
	})
	return eq, nil
}

func (e *Engine) embed(ctx context.Context, text string) ([]float32, error) {
	res, err := e.embedder.Generate(ctx, text, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, err
	}
	if res == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("empty embedding")
	}
	return res.Embedding.Values, nil
}

func (e *Engine) classifyIntent(ctx context.Context, query string) QueryIntent {
	fallback := QueryIntent{
		Type:       IntentUnknown,
		Confidence: fallbackIntentConfidence,
		Keywords:   extractKeywords(query),
	}
	if e.llm == nil {
		return fallback
	}

	resp, err := e.llm.Generate(ctx, fmt.Sprintf(intentClassificationPrompt, query),
		llm.WithTemperature(0.1), llm.WithMaxTokens(150))
	if err == nil {
		var intent QueryIntent
		intent, err = parseIntentResponse(resp)
		if err == nil {
			if len(intent.Keywords) == 0 {
				intent.Keywords = fallback.Keywords
			}
			return intent
		}
	}

	e.log.Warn("retrieval", "Intent classification failed, using keyword fallback", map[string]interface{}{
		"error": err.Error(),
	})
	return fallback
}

func parseIntentResponse(response string) (QueryIntent, error) {
	var raw struct {
		Type       string   `json:"type"`
		Confidence float64  `json:"confidence"`
		Keywords   []string `json:"keywords"`
	}
	if err := decodeLLMJSON(response, '{', '}', &raw); err != nil {
		return QueryIntent{}, err
	}

	intent := QueryIntent{
		Type:       IntentType(strings.ToLower(strings.TrimSpace(raw.Type))),
		Confidence: math.Max(0, math.Min(1, raw.Confidence)),
		Keywords:   make([]string, 0, len(raw.Keywords)),
	}
	if !intent.Type.Valid() {
		return QueryIntent{}, fmt.Errorf("unknown intent type %q", raw.Type)
	}

	seen := make(map[string]bool)
	for _, kw := range raw.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || seen[kw] || len(intent.Keywords) == maxKeywords {
			continue
		}
		seen[kw] = true
		intent.Keywords = append(intent.Keywords, kw)
	}
	return intent, nil
}

// extractKeywords keeps the five longest distinct words of the query that
// are longer than two letters, alphabetic and not stop words.
func extractKeywords(query string) []string {
	seen := make(map[string]bool)
	words := make([]string, 0)

	for _, word := range strings.Fields(strings.ToLower(query)) {
		word = strings.Trim(word, ".,?!;:\"'()[]")
		if len(word) <= 2 || stopWords[word] || seen[word] || !isAlpha(word) {
			continue
		}
		seen[word] = true
		words = append(words, word)
	}

	sort.SliceStable(words, func(i, j int) bool { return len(words[i]) > len(words[j]) })
	if len(words) > maxKeywords {
		words = words[:maxKeywords]
	}
	return words
}

func isAlpha(word string) bool {
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func (e *Engine) expandTerms(ctx context.Context, query string, keywords []string) []string {
	if e.llm == nil {
		return basicQueryExpansion(keywords)
	}

	resp, err := e.llm.Generate(ctx, fmt.Sprintf(queryExpansionPrompt, strings.Join(keywords, ", "), query),
		llm.WithTemperature(0.3), llm.WithMaxTokens(120))
	if err == nil {
		var terms []string
		if err = decodeLLMJSON(resp, '[', ']', &terms); err == nil {
			return cleanTerms(terms, query)
		}
	}

	e.log.Warn("retrieval", "Query expansion failed, using local synonyms", map[string]interface{}{
		"error": err.Error(),
	})
	return basicQueryExpansion(keywords)
}

func cleanTerms(terms []string, query string) []string {
	lowerQuery := strings.ToLower(query)
	seen := make(map[string]bool)
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" || seen[term] || strings.Contains(lowerQuery, term) {
			continue
		}
		seen[term] = true
		out = append(out, term)
		if len(out) == maxExpansionTerms {
			break
		}
	}
	return out
}

// basicQueryExpansion adds naive singular/plural variants and table synonyms.
func basicQueryExpansion(keywords []string) []string {
	seen := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		seen[kw] = true
	}

	terms := make([]string, 0)
	add := func(term string) {
		if term == "" || seen[term] || len(terms) >= maxExpansionTerms {
			return
		}
		seen[term] = true
		terms = append(terms, term)
	}

	for _, kw := range keywords {
		singular := singularize(kw)
		if singular != kw {
			add(singular)
		} else {
			add(pluralize(kw))
		}
		for _, syn := range synonyms[singular] {
			add(syn)
		}
	}
	return terms
}

func singularize(word string) string {
	switch {
	case strings.HasSuffix(word, "ies") && len(word) > 4:
		return strings.TrimSuffix(word, "ies") + "y"
	case strings.HasSuffix(word, "ss"), strings.HasSuffix(word, "us"), strings.HasSuffix(word, "is"):
		return word
	case strings.HasSuffix(word, "s") && len(word) > 3:
		return strings.TrimSuffix(word, "s")
	}
	return word
}

func pluralize(word string) string {
	switch {
	case strings.HasSuffix(word, "y") && len(word) > 2 && !strings.ContainsRune("aeiou", rune(word[len(word)-2])):
		return strings.TrimSuffix(word, "y") + "ies"
	case strings.HasSuffix(word, "s"), strings.HasSuffix(word, "x"), strings.HasSuffix(word, "ch"), strings.HasSuffix(word, "sh"):
		return word + "es"
	}
	return word + "s"
}

// identifyTargetSections matches the query against chapter and section
// titles. A missing or unreadable structure yields no targets.
func (e *Engine) identifyTargetSections(ctx context.Context, query, documentID string) []string {
	targets := []string{}
	if e.structures == nil {
		return targets
	}

	structure, err := e.structures.DocumentStructure(ctx, documentID)
	if err != nil || structure == nil {
		if err != nil {
			e.log.Warn("retrieval", "Document structure lookup failed", map[string]interface{}{
				"document_id": documentID,
				"error":       err.Error(),
			})
		}
		return targets
	}

	seen := make(map[string]bool)
	add := func(id, title string) {
		if id == "" || seen[id] || !titleMatchesQuery(title, query) {
			return
		}
		seen[id] = true
		targets = append(targets, id)
	}
	for _, ch := range structure.Chapters {
		add(ch.ID, ch.Title)
		for _, sec := range ch.Sections {
			add(sec.ID, sec.Title)
		}
	}
	return targets
}

func titleMatchesQuery(title, query string) bool {
	t := strings.ToLower(strings.TrimSpace(title))
	q := strings.ToLower(strings.TrimSpace(query))
	if t == "" || q == "" || t == strings.ToLower(chunking.UntitledHeading) {
		return false
	}
	if strings.Contains(q, t) || strings.Contains(t, q) {
		return true
	}

	titleWords := strings.Fields(t)
	queryWords := make(map[string]bool)
	for _, w := range strings.Fields(q) {
		queryWords[strings.Trim(w, ".,?!;:\"'()")] = true
	}

	shared := 0
	for _, w := range titleWords {
		w = strings.Trim(w, ".,?!;:\"'()")
		if len(w) > 2 && !stopWords[w] && queryWords[w] {
			shared++
		}
	}
	return shared >= 2 || (shared == 1 && len(titleWords) <= 3)
}
