// FILE: cmd/trace_chunking/main.go
// PURPOSE: Print every stage of the chunking pipeline for a local text file

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/pkg/logger"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/chunking"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/tokenizer"
)

type traceOptions struct {
	maxTokens     int
	overlapTokens int
	contextWindow int
	encoding      string
	approximate   bool
	asJSON        bool
	preview       int
}

type traceReport struct {
	Segments []chunking.TextSegment  `json:"segments"`
	Analysis chunking.ContentAnalysis `json:"analysis"`
	Raw      []chunking.Chunk         `json:"raw"`
	Chunks   []chunking.SmartChunk    `json:"chunks"`
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	def := chunking.DefaultConfig()
	opts := &traceOptions{}

	cmd := &cobra.Command{
		Use:   "trace_chunking [file]",
		Short: "Trace how a document is segmented and chunked",
		Long: `Runs the chunking pipeline on a local text file and prints the segments,
chunk boundaries, overlap windows, concepts and chunk relations.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			report := runTrace(string(text), opts)
			if opts.asJSON {
				data, err := json.MarshalIndent(report, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal trace: %w", err)
				}
				cmd.Println(string(data))
				return nil
			}
			printTrace(report, opts.preview)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.maxTokens, "max-tokens", def.MaxTokens, "chunk token budget")
	cmd.Flags().IntVar(&opts.overlapTokens, "overlap", def.OverlapTokens, "overlap token budget")
	cmd.Flags().IntVar(&opts.contextWindow, "context-window", def.ContextWindowTokens, "preceding/following context budget")
	cmd.Flags().StringVar(&opts.encoding, "encoding", tokenizer.DefaultEncoding, "tiktoken encoding")
	cmd.Flags().BoolVar(&opts.approximate, "approximate", false, "count tokens as chars/4 instead of tiktoken")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "output the trace as JSON")
	cmd.Flags().IntVar(&opts.preview, "preview", 80, "characters of content shown per segment or chunk")
	return cmd
}

func runTrace(text string, opts *traceOptions) traceReport {
	var tok tokenizer.Tokenizer
	if !opts.approximate {
		tok = tokenizer.NewTiktoken(opts.encoding)
	}
	cfg := chunking.DefaultConfig()
	cfg.MaxTokens = opts.maxTokens
	cfg.OverlapTokens = opts.overlapTokens
	cfg.ContextWindowTokens = opts.contextWindow
	chunker := chunking.NewChunker(cfg, tok, logger.NewNopLogger())

	report := traceReport{
		Segments: chunker.Segment(text),
		Raw:      []chunking.Chunk{},
		Chunks:   []chunking.SmartChunk{},
	}
	report.Analysis = chunker.AnalyzeContent(report.Segments)
	if len(report.Segments) == 0 {
		return report
	}
	report.Raw = chunker.CreateSemanticChunks(report.Segments, report.Analysis)
	report.Chunks = chunker.EnhanceChunks(report.Raw)
	chunking.AddChunkRelationships(report.Chunks)
	return report
}

func printTrace(r traceReport, preview int) {
	color.Cyan("=== SEGMENTS (%d) ===", len(r.Segments))
	for i, seg := range r.Segments {
		label := string(seg.Type)
		if seg.Type == chunking.SegmentHeading {
			label = fmt.Sprintf("heading/%d", seg.Level)
		}
		fmt.Printf("[%3d] %-12s %5d tok  %s\n", i, label, seg.Tokens, snippet(seg.Content, preview))
	}

	color.Cyan("\n=== ANALYSIS ===")
	fmt.Printf("total tokens: %d\n", r.Analysis.TotalTokens)
	fmt.Printf("technical segments: %d (density %.2f)\n", r.Analysis.TechnicalSegments, r.Analysis.SemanticDensity)
	for kind, n := range r.Analysis.SegmentCounts {
		fmt.Printf("  %-10s %d\n", kind, n)
	}

	color.Cyan("\n=== CHUNKS (%d) ===", len(r.Chunks))
	for i, ch := range r.Chunks {
		raw := r.Raw[i]
		color.Green("%s  segments %d..%d  %d tok", ch.ID, raw.StartIndex, raw.EndIndex, ch.Tokens)
		if raw.OverlapSegments > 0 {
			color.Yellow("  overlap: %d segment(s) carried from previous chunk", raw.OverlapSegments)
		}
		m := ch.Metadata
		fmt.Printf("  chapter=%q section=%q subsection=%q level=%s type=%s density=%.2f\n",
			m.Chapter, m.Section, m.Subsection, m.StructuralLevel, m.ContentType, m.SemanticDensity)
		if len(m.Concepts) > 0 {
			fmt.Printf("  concepts: %s\n", strings.Join(m.Concepts, ", "))
		}
		if len(m.RelatedChunks) > 0 {
			color.Magenta("  related: %s", strings.Join(m.RelatedChunks, ", "))
		}
		fmt.Printf("  before: %s\n", snippet(m.PrecedingContext, preview))
		fmt.Printf("  after:  %s\n", snippet(m.FollowingContext, preview))
		fmt.Printf("  %s\n", snippet(ch.Content, preview))
	}
}

func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
