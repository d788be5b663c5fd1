package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"resume-match-go/internal/export"
	"resume-match-go/internal/types"
)

var (
	rankTitle       string
	rankDescription string
	rankXLSX        string
)

var rankCmd = &cobra.Command{
	Use:   "rank <files...>",
	Short: "Rank resumes against a job description",
	Long:  "Parses every resume file, ranks the candidates against the given job title and description, and prints the ranked results as JSON.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRank,
}

func init() {
	rankCmd.Flags().StringVarP(&rankTitle, "title", "t", "", "Job title (required)")
	rankCmd.Flags().StringVarP(&rankDescription, "description", "d", "", "Job description (required)")
	rankCmd.Flags().StringVar(&rankXLSX, "xlsx", "", "Also write an Excel workbook to this path")

	if err := rankCmd.MarkFlagRequired("title"); err != nil {
		panic(fmt.Sprintf("failed to mark title flag as required: %v", err))
	}
	if err := rankCmd.MarkFlagRequired("description"); err != nil {
		panic(fmt.Sprintf("failed to mark description flag as required: %v", err))
	}
	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	pl, err := newPipeline(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	job := &types.JobDescription{
		ID:          "cli",
		Title:       rankTitle,
		Description: rankDescription,
		IsPublic:    true,
	}
	profiles := make([]*types.CandidateProfile, 0, len(args))
	for _, path := range args {
		profile := pl.builder.Build(ctx, pl.extractor.Extract(ctx, path), "")
		if profile.ParseFailed() {
			fmt.Fprintf(cmd.ErrOrStderr(), "skipping %s: no usable text\n", filepath.Base(path))
			continue
		}
		job.ProcessedCandidateIDs = append(job.ProcessedCandidateIDs, profile.ID)
		profiles = append(profiles, profile)
	}
	if len(profiles) == 0 {
		return fmt.Errorf("no resumes could be parsed")
	}

	results := pl.ranker.Rank(ctx, job, profiles)
	for i := range results {
		results[i].CandidateProfile.Embedding = nil
	}
	if rankXLSX != "" {
		saved, err := export.SaveAs(rankXLSX, job, results, time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "workbook written to %s\n", saved)
	}
	return writeJSON(cmd.OutOrStdout(), results)
}
