// Package pipeline provides the high-level orchestration for the resume
// optimization process: structure both inputs, analyze, tailor, and
// generate the cover letter. Stages run sequentially and any failure
// aborts the run.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/jonathan/resume-optimizer/internal/cache"
	"github.com/jonathan/resume-optimizer/internal/completion"
	"github.com/jonathan/resume-optimizer/internal/db"
	"github.com/jonathan/resume-optimizer/internal/ingestion"
	"github.com/jonathan/resume-optimizer/internal/observability"
	"github.com/jonathan/resume-optimizer/internal/stages"
	"github.com/jonathan/resume-optimizer/internal/types"
)

// Stage names recorded in run history and progress events.
const (
	StageStructureResume = "structure_resume"
	StageStructureJob    = "structure_job"
	StageAnalyze         = "analyze"
	StageTailor          = "tailor"
	StageCoverLetter     = "cover_letter"
)

// Document names written to the cache directory for the render command.
const (
	DocAnalysis       = "analysis.json"
	DocTailoredResume = "tailored_resume.json"
	DocCoverLetter    = "cover_letter.json"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
	RunID   string `json:"run_id,omitempty"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// RunOptions holds configuration for running the pipeline
type RunOptions struct {
	ResumePath  string
	JobPath     string
	JobURL      string
	CacheDir    string
	APIKey      string
	Model       string
	Stream      bool
	Verbose     bool
	DatabaseURL string
	OnProgress  ProgressCallback

	// Out receives verbose stage summaries; defaults to stdout.
	Out io.Writer
	// Completer overrides the Gemini-backed client. Used by tests and
	// the render path.
	Completer completion.Completer
	Log       *zap.Logger
}

// emitProgress calls the progress callback if configured
func emitProgress(opts *RunOptions, stage, message, runID string, content any) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{
			Stage:   stage,
			Message: message,
			RunID:   runID,
			Content: content,
		})
	}
}

// Run orchestrates the full resume optimization pipeline.
func Run(ctx context.Context, opts RunOptions) error {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	printer := observability.NewPrinter(out)

	store, err := cache.NewStore(opts.CacheDir, log)
	if err != nil {
		return err
	}

	client := opts.Completer
	if client == nil {
		client, err = newCompleter(ctx, opts, out, log)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()
	}

	// Run history is best-effort: a missing or unreachable database
	// never blocks an optimization run.
	var database *db.DB
	if opts.DatabaseURL != "" {
		database, err = db.Connect(ctx, opts.DatabaseURL)
		if err != nil {
			log.Warn("failed to connect to database, continuing without run history", zap.Error(err))
			database = nil
		} else {
			defer database.Close()
		}
	}

	resumeText, err := ingestion.ReadTextFile(opts.ResumePath)
	if err != nil {
		return fmt.Errorf("resume ingestion failed: %w", err)
	}

	var jobText string
	var jobSource string
	if opts.JobURL != "" {
		jobSource = opts.JobURL
		jobText, err = ingestion.FetchJobPosting(ctx, opts.JobURL)
	} else {
		jobSource = opts.JobPath
		jobText, err = ingestion.ReadTextFile(opts.JobPath)
	}
	if err != nil {
		return fmt.Errorf("job ingestion failed: %w", err)
	}

	st := stages.New(store, client, log)
	run := &runRecorder{log: log}
	if database != nil {
		run.store = database
	}

	resume, err := timeStage(ctx, run, StageStructureResume, func() (*types.StructuredResume, error) {
		return st.StructureResume(ctx, resumeText)
	})
	if err != nil {
		return run.fail(ctx, fmt.Errorf("resume structuring failed: %w", err))
	}
	emitProgress(&opts, StageStructureResume, "Structured resume for "+resume.Name, run.id(), nil)
	if opts.Verbose {
		printer.PrintStructuredResume(resume)
	}

	job, err := timeStage(ctx, run, StageStructureJob, func() (*types.StructuredJob, error) {
		return st.StructureJob(ctx, jobText)
	})
	if err != nil {
		return run.fail(ctx, fmt.Errorf("job structuring failed: %w", err))
	}
	emitProgress(&opts, StageStructureJob, "Structured job: "+job.Title, run.id(), nil)
	if opts.Verbose {
		printer.PrintStructuredJob(job)
	}

	run.create(ctx, resume.Name, job.Title, jobSource)

	analysis, err := timeStage(ctx, run, StageAnalyze, func() (*types.AnalysisResult, error) {
		return st.Analyze(ctx, resume, job)
	})
	if err != nil {
		return run.fail(ctx, fmt.Errorf("semantic analysis failed: %w", err))
	}
	emitProgress(&opts, StageAnalyze,
		fmt.Sprintf("Alignment score %.0f%% with %d matches and %d gaps",
			analysis.OverallAlignmentScore*100, len(analysis.Matches), len(analysis.Gaps)),
		run.id(), analysis)
	if opts.Verbose {
		printer.PrintAnalysis(analysis)
	}

	tailored, err := timeStage(ctx, run, StageTailor, func() (*types.TailoredResume, error) {
		return st.TailorResume(ctx, resume, analysis, job)
	})
	if err != nil {
		return run.fail(ctx, fmt.Errorf("resume tailoring failed: %w", err))
	}
	emitProgress(&opts, StageTailor,
		fmt.Sprintf("Tailored resume keeps %d experiences and %d projects",
			len(tailored.TailoredWorkHistory), len(tailored.TailoredProjects)),
		run.id(), nil)
	if opts.Verbose {
		printer.PrintTailoredResume(tailored)
	}

	letter, err := timeStage(ctx, run, StageCoverLetter, func() (*types.CoverLetter, error) {
		return st.CoverLetter(ctx, resume, job, analysis)
	})
	if err != nil {
		return run.fail(ctx, fmt.Errorf("cover letter generation failed: %w", err))
	}
	emitProgress(&opts, StageCoverLetter, "Generated cover letter", run.id(), nil)
	if opts.Verbose {
		printer.PrintCoverLetter(letter)
	}

	// The render command reads these back from the cache directory.
	if err := store.WriteDocument(DocAnalysis, analysis); err != nil {
		return run.fail(ctx, err)
	}
	if err := store.WriteDocument(DocTailoredResume, tailored); err != nil {
		return run.fail(ctx, err)
	}
	if err := store.WriteDocument(DocCoverLetter, letter); err != nil {
		return run.fail(ctx, err)
	}

	run.saveArtifact(ctx, "analysis", analysis)
	run.saveArtifact(ctx, "tailored_resume", tailored)
	run.saveArtifact(ctx, "cover_letter", letter)
	run.complete(ctx)

	log.Info("pipeline run complete",
		zap.String("candidate", resume.Name),
		zap.String("job", job.Title),
		zap.Float64("alignment_score", analysis.OverallAlignmentScore))
	return nil
}

// newCompleter builds the Gemini client, streaming when requested.
func newCompleter(ctx context.Context, opts RunOptions, out io.Writer, log *zap.Logger) (completion.Completer, error) {
	cfg := completion.DefaultConfig()
	if opts.Model != "" {
		cfg.Model = opts.Model
	}

	if opts.Stream {
		onProgress := func(description string, bytes int, bytesPerSecond float64) {
			fmt.Fprintf(out, "\r%s: %d bytes (%.0f B/s)", description, bytes, bytesPerSecond)
		}
		return completion.NewStreamingClient(ctx, cfg, opts.APIKey, log, onProgress)
	}
	return completion.NewGeminiClient(ctx, cfg, opts.APIKey, log)
}
