package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-optimizer/internal/cache"
	"github.com/jonathan/resume-optimizer/internal/logger"
	"github.com/jonathan/resume-optimizer/internal/pipeline"
	"github.com/jonathan/resume-optimizer/internal/rendering"
	"github.com/jonathan/resume-optimizer/internal/types"
)

var renderCommand = &cobra.Command{
	Use:   "render",
	Short: "Render cached results to PDF without calling the provider",
	Long: `Reads the tailored resume and cover letter produced by a previous run from the cache directory and prints them to PDF with a headless browser.

Contact details come from the most recently structured resume in the cache. Requires Chrome or Chromium (CHROME_PATH overrides discovery).`,
	RunE: renderCmd,
}

var (
	renderCacheDir  string
	renderOutputDir string
)

func init() {
	renderCommand.Flags().StringVar(&renderCacheDir, "cache-dir", ".resume_cache", "Directory holding a previous run's cache")
	renderCommand.Flags().StringVarP(&renderOutputDir, "output-dir", "o", "output", "Directory for rendered PDFs")

	rootCmd.AddCommand(renderCommand)
}

func renderCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	log, err := logger.New(false, false)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	store, err := cache.NewStore(renderCacheDir, log)
	if err != nil {
		return err
	}

	// Contact details come from the latest structured resume.
	resumeDoc, err := store.MostRecent(cache.TypeResume)
	if err != nil {
		return fmt.Errorf("no structured resume in cache, run the pipeline first: %w", err)
	}
	var resume types.StructuredResume
	if err := json.Unmarshal(resumeDoc, &resume); err != nil {
		return fmt.Errorf("failed to decode cached resume: %w", err)
	}

	tailoredDoc, err := store.ReadDocument(pipeline.DocTailoredResume)
	if err != nil {
		return fmt.Errorf("no tailored resume in cache, run the pipeline first: %w", err)
	}
	var tailored types.TailoredResume
	if err := json.Unmarshal(tailoredDoc, &tailored); err != nil {
		return fmt.Errorf("failed to decode tailored resume: %w", err)
	}

	letterDoc, err := store.ReadDocument(pipeline.DocCoverLetter)
	if err != nil {
		return fmt.Errorf("no cover letter in cache, run the pipeline first: %w", err)
	}
	var letter types.CoverLetter
	if err := json.Unmarshal(letterDoc, &letter); err != nil {
		return fmt.Errorf("failed to decode cover letter: %w", err)
	}

	renderer := rendering.NewPDFRenderer()

	resumeHTML, err := rendering.RenderResumeHTML(&resume, &tailored)
	if err != nil {
		return err
	}
	resumePDF := filepath.Join(renderOutputDir, "tailored_resume.pdf")
	if err := renderer.WritePDF(ctx, resumeHTML, resumePDF); err != nil {
		return err
	}
	cmd.Printf("Wrote %s\n", resumePDF)

	letterHTML, err := rendering.RenderCoverLetterHTML(resume.Name, &letter)
	if err != nil {
		return err
	}
	letterPDF := filepath.Join(renderOutputDir, "cover_letter.pdf")
	if err := renderer.WritePDF(ctx, letterHTML, letterPDF); err != nil {
		return err
	}
	cmd.Printf("Wrote %s\n", letterPDF)

	return nil
}
