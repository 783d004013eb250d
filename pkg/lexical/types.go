package lexical

// Document is the serialized editor state: {"root": {...}}.
type Document struct {
	Root Node `json:"root"`
}

// Node is any node of the editor tree. Only the fields that carry text or
// structure are decoded; styling and alignment are ignored.
type Node struct {
	Type     string `json:"type"`
	Children []Node `json:"children,omitempty"`

	Text string `json:"text,omitempty"`
	// Format is a bitmask on text nodes and an alignment string on blocks.
	Format interface{} `json:"format,omitempty"`

	// heading: h1..h6
	Tag string `json:"tag,omitempty"`
	// code block language
	Language string `json:"language,omitempty"`

	URL string `json:"url,omitempty"`

	ListType string `json:"listType,omitempty"` // bullet, number, check
	Start    int    `json:"start,omitempty"`
	Checked  bool   `json:"checked,omitempty"`
}

// Text format bits.
const (
	FormatBold          = 1
	FormatItalic        = 2
	FormatStrikethrough = 4
	FormatUnderline     = 8
	FormatCode          = 16
)
