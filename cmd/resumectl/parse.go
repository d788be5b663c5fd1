package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"resume-match-go/internal/types"
)

var parseWithEmbedding bool

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a resume into a structured profile",
	Long:  "Extracts text from a PDF, DOCX or text resume and prints the structured candidate profile as JSON.",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().BoolVar(&parseWithEmbedding, "with-embedding", false, "Include the embedding vector in the output")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	pl, err := newPipeline(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	text := pl.extractor.Extract(ctx, args[0])
	profile := pl.builder.Build(ctx, text, "")
	if profile.ParseFailed() {
		return fmt.Errorf("no usable text extracted from %s", args[0])
	}
	return writeJSON(cmd.OutOrStdout(), profileOutput(profile, parseWithEmbedding))
}

// profileOutput 输出时不带原始文本
func profileOutput(p *types.CandidateProfile, withEmbedding bool) *types.CandidateProfile {
	out := p.Redacted()
	if !withEmbedding {
		out.Embedding = nil
	}
	return out
}
