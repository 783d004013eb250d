// FILE: pkg/chunking/segment.go
// PURPOSE: Split raw document text into typed segments in a single pass

package chunking

import (
	"regexp"
	"strings"
	"unicode"
)

type headingRule struct {
	pattern *regexp.Regexp
	level   int
}

var (
	markdownHeadingPattern = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	listItemPattern        = regexp.MustCompile(`^(?:[-*+]|\d+\.)\s+`)

	// Evaluated top to bottom; the first match wins.
	headingRules = []headingRule{
		{regexp.MustCompile(`^(?:[Cc]hapter|CHAPTER|[Pp]art|PART)\s+(?:\d+|[IVXLC]+)\b`), 1},
		{regexp.MustCompile(`^(?:[Ss]ection|SECTION)\s+\d+`), 2},
		{regexp.MustCompile(`^\d+\.\d+(?:\.\d+)*\.?\s+\S`), 3},
		{regexp.MustCompile(`^\d+\s+[A-Z]`), 2},
	}
)

const (
	maxHeadingLength  = 100
	maxAllCapsHeading = 60
)

// ParseTextSegments classifies text line by line and merges consecutive
// lines of the same type. A blank line ends the current segment, except
// inside a fenced code block.
func ParseTextSegments(text string) []TextSegment {
	p := &segmentParser{}
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		p.feed(line)
	}
	p.flush()
	return p.segments
}

type segmentParser struct {
	segments []TextSegment

	kind     SegmentType
	lines    []string
	language string

	inCode        bool
	inEquation    bool
	equationClose string
}

func (p *segmentParser) feed(raw string) {
	line := strings.TrimSpace(raw)

	if p.inCode {
		p.lines = append(p.lines, strings.TrimRight(raw, " \t"))
		if strings.HasPrefix(line, "```") {
			p.flush()
		}
		return
	}

	if p.inEquation {
		if line == "" {
			p.flush()
			return
		}
		p.lines = append(p.lines, line)
		if strings.HasSuffix(line, p.equationClose) {
			p.flush()
		}
		return
	}

	if line == "" {
		p.flush()
		return
	}

	if level, title, ok := headingLevel(line); ok {
		p.flush()
		p.segments = append(p.segments, TextSegment{
			Content: title,
			Type:    SegmentHeading,
			Level:   level,
		})
		return
	}

	switch {
	case strings.HasPrefix(line, "```"):
		p.start(SegmentCode, line)
		p.inCode = true
		p.language = strings.TrimSpace(strings.TrimPrefix(line, "```"))
	case strings.HasPrefix(line, "$$") || strings.HasPrefix(line, `\[`):
		closing := "$$"
		if strings.HasPrefix(line, `\[`) {
			closing = `\]`
		}
		p.start(SegmentEquation, line)
		if len(line) > 2 && strings.HasSuffix(line[2:], closing) {
			p.flush()
			return
		}
		p.inEquation = true
		p.equationClose = closing
	case strings.HasPrefix(line, "|"):
		p.continueOrStart(SegmentTable, line)
	case listItemPattern.MatchString(line):
		p.continueOrStart(SegmentList, line)
	default:
		p.continueOrStart(SegmentParagraph, line)
	}
}

func (p *segmentParser) start(kind SegmentType, line string) {
	p.flush()
	p.kind = kind
	p.lines = []string{line}
}

func (p *segmentParser) continueOrStart(kind SegmentType, line string) {
	if p.kind == kind && len(p.lines) > 0 {
		p.lines = append(p.lines, line)
		return
	}
	p.start(kind, line)
}

func (p *segmentParser) flush() {
	if len(p.lines) > 0 {
		sep := "\n"
		if p.kind == SegmentParagraph {
			sep = " "
		}
		seg := TextSegment{
			Content: strings.Join(p.lines, sep),
			Type:    p.kind,
		}
		if p.kind == SegmentCode && p.language != "" {
			seg.Metadata = map[string]string{"language": p.language}
		}
		p.segments = append(p.segments, seg)
	}

	p.kind = ""
	p.lines = nil
	p.language = ""
	p.inCode = false
	p.inEquation = false
	p.equationClose = ""
}

// headingLevel reports whether line is a heading, returning its depth and
// display title.
func headingLevel(line string) (int, string, bool) {
	if m := markdownHeadingPattern.FindStringSubmatch(line); m != nil {
		return len(m[1]), strings.TrimSpace(strings.TrimRight(m[2], "# ")), true
	}

	if len(line) > maxHeadingLength || strings.HasSuffix(line, ".") {
		return 0, "", false
	}

	for _, rule := range headingRules {
		if rule.pattern.MatchString(line) {
			return rule.level, line, true
		}
	}

	if isAllCapsHeading(line) {
		return 2, line, true
	}
	return 0, "", false
}

func isAllCapsHeading(line string) bool {
	if len(line) > maxAllCapsHeading || startsBlock(line) {
		return false
	}
	letters := 0
	for _, r := range line {
		if unicode.IsLetter(r) {
			if !unicode.IsUpper(r) {
				return false
			}
			letters++
		}
	}
	return letters >= 3
}

func startsBlock(line string) bool {
	for _, prefix := range []string{"```", "$$", `\[`, "|"} {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return listItemPattern.MatchString(line)
}
