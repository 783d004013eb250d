package chunking

import "regexp"

var technicalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:algorithm|theorem|proof|lemma|corollary|equation|function|variable|matrix|vector|derivative|integral|formula|hypothesis|coefficient|complexity)s?\b`),
	regexp.MustCompile(`\b[A-Za-z_]\w*\([^)]*\)`),
	regexp.MustCompile(`\b[A-Za-z_]\w*\s*=\s*[\w(]`),
	regexp.MustCompile(`\d+\s*[+\-*/^]\s*\d+`),
}

func isTechnicalText(text string) bool {
	for _, p := range technicalPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// isTechnical treats code, equations and tables as technical by type and
// paragraphs by pattern. Headings and lists never count.
func isTechnical(seg TextSegment) bool {
	switch seg.Type {
	case SegmentCode, SegmentEquation, SegmentTable:
		return true
	case SegmentParagraph:
		return isTechnicalText(seg.Content)
	default:
		return false
	}
}

// AnalyzeContent computes token totals, per-type counts and the share of
// technical segments across the whole document.
func (c *Chunker) AnalyzeContent(segments []TextSegment) ContentAnalysis {
	analysis := ContentAnalysis{
		SegmentCounts: make(map[SegmentType]int),
	}

	for _, seg := range segments {
		analysis.TotalTokens += seg.Tokens
		analysis.SegmentCounts[seg.Type]++
		if isTechnical(seg) {
			analysis.TechnicalSegments++
		}
	}

	if len(segments) > 0 {
		analysis.SemanticDensity = float64(analysis.TechnicalSegments) / float64(len(segments))
	}
	return analysis
}
