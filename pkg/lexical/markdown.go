// FILE: pkg/lexical/markdown.go
// PURPOSE: Rich-text editor JSON -> markdown that the chunking segmenter understands

package lexical

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ToMarkdown renders an editor document as block markdown: one block per
// heading, paragraph, list, quote, code block or table, separated by blank
// lines so each becomes its own segment.
func ToMarkdown(jsonContent string) (string, error) {
	var doc Document
	if err := json.Unmarshal([]byte(jsonContent), &doc); err != nil {
		return "", fmt.Errorf("failed to parse lexical json: %w", err)
	}
	if doc.Root.Type != "root" {
		return "", fmt.Errorf("lexical json has no root node")
	}

	blocks := make([]string, 0, len(doc.Root.Children))
	for _, child := range doc.Root.Children {
		if block := strings.TrimRight(renderBlock(child), "\n "); strings.TrimSpace(block) != "" {
			blocks = append(blocks, block)
		}
	}
	return strings.Join(blocks, "\n\n"), nil
}

// Normalize returns the markdown form of content when it is editor JSON and
// content unchanged otherwise.
func Normalize(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "{") || !strings.Contains(trimmed, `"root"`) {
		return content
	}
	md, err := ToMarkdown(trimmed)
	if err != nil {
		return content
	}
	return md
}

func renderBlock(node Node) string {
	switch node.Type {
	case "heading":
		return strings.Repeat("#", headingDepth(node.Tag)) + " " + inline(node.Children)
	case "paragraph":
		return inline(node.Children)
	case "quote":
		return "> " + inline(node.Children)
	case "code":
		return "```" + node.Language + "\n" + codeText(node.Children) + "\n```"
	case "list":
		var sb strings.Builder
		renderList(node, &sb, 0)
		return sb.String()
	case "table":
		return renderTable(node)
	case "horizontalrule":
		return ""
	}

	parts := make([]string, 0, len(node.Children))
	for _, child := range node.Children {
		if block := renderBlock(child); block != "" {
			parts = append(parts, block)
		}
	}
	if len(parts) == 0 {
		return inline([]Node{node})
	}
	return strings.Join(parts, "\n\n")
}

func headingDepth(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' {
		if n, err := strconv.Atoi(tag[1:]); err == nil && n >= 1 && n <= 6 {
			return n
		}
	}
	return 1
}

func inline(nodes []Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		switch n.Type {
		case "text", "code-highlight":
			sb.WriteString(formatText(n))
		case "linebreak":
			sb.WriteString("\n")
		case "link", "autolink":
			sb.WriteString("[" + inline(n.Children) + "](" + n.URL + ")")
		default:
			sb.WriteString(inline(n.Children))
		}
	}
	return sb.String()
}

// formatText keeps emphasis that changes meaning for retrieval (code,
// bold, italic, strikethrough). Underline has no markdown form and is
// dropped.
func formatText(n Node) string {
	bits := 0
	if f, ok := n.Format.(float64); ok {
		bits = int(f)
	}
	text := n.Text
	if text == "" {
		return ""
	}
	wrap := func(mark string) { text = mark + text + mark }
	if bits&FormatCode != 0 {
		wrap("`")
	}
	if bits&FormatStrikethrough != 0 {
		wrap("~~")
	}
	if bits&FormatItalic != 0 {
		wrap("_")
	}
	if bits&FormatBold != 0 {
		wrap("**")
	}
	return text
}

func codeText(nodes []Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		if n.Type == "linebreak" {
			sb.WriteString("\n")
			continue
		}
		if n.Text != "" {
			sb.WriteString(n.Text)
		}
		sb.WriteString(codeText(n.Children))
	}
	return sb.String()
}

func renderList(node Node, sb *strings.Builder, depth int) {
	index := 1
	if node.Start > 0 {
		index = node.Start
	}
	for _, item := range node.Children {
		if item.Type != "listitem" {
			continue
		}

		var nested []Node
		content := make([]Node, 0, len(item.Children))
		for _, child := range item.Children {
			if child.Type == "list" {
				nested = append(nested, child)
				continue
			}
			content = append(content, child)
		}

		if len(content) > 0 {
			sb.WriteString(strings.Repeat("  ", depth))
			switch node.ListType {
			case "number":
				sb.WriteString(strconv.Itoa(index) + ". ")
				index++
			case "check":
				if item.Checked {
					sb.WriteString("- [x] ")
				} else {
					sb.WriteString("- [ ] ")
				}
			default:
				sb.WriteString("- ")
			}
			sb.WriteString(inline(content))
			sb.WriteString("\n")
		}
		for _, list := range nested {
			renderList(list, sb, depth+1)
		}
	}
}

// renderTable writes a pipe table; the first row is the header.
func renderTable(node Node) string {
	var rows [][]string
	cols := 0
	for _, row := range node.Children {
		if row.Type != "tablerow" {
			continue
		}
		cells := make([]string, 0, len(row.Children))
		for _, cell := range row.Children {
			parts := make([]string, 0, len(cell.Children))
			for _, c := range cell.Children {
				parts = append(parts, strings.TrimSpace(renderBlock(c)))
			}
			cells = append(cells, strings.ReplaceAll(strings.Join(parts, " "), "\n", " "))
		}
		rows = append(rows, cells)
		cols = max(cols, len(cells))
	}
	if len(rows) == 0 {
		return ""
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		sb.WriteString("|")
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			sb.WriteString(" " + cell + " |")
		}
		sb.WriteString("\n")
	}

	writeRow(rows[0])
	sb.WriteString("|" + strings.Repeat("---|", cols) + "\n")
	for _, row := range rows[1:] {
		writeRow(row)
	}
	return sb.String()
}
