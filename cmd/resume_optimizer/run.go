package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-optimizer/internal/config"
	"github.com/jonathan/resume-optimizer/internal/logger"
	"github.com/jonathan/resume-optimizer/internal/pipeline"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the full resume optimization pipeline end-to-end",
	Long: `Orchestrates the entire optimization process: ingestion -> structuring -> semantic analysis -> tailoring -> cover letter.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runPipelineCmd,
}

var (
	runConfigPath  string
	runResume      string
	runJob         string
	runJobURL      string
	runCacheDir    string
	runOutputDir   string
	runAPIKey      string
	runModel       string
	runStream      bool
	runVerbose     bool
	runJSONLogs    bool
	runDebug       bool
	runDatabaseURL string
)

func init() {
	// Config file flag (processed first)
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	runCommand.Flags().StringVarP(&runResume, "resume", "r", "", "Path to raw resume text file")
	runCommand.Flags().StringVarP(&runJob, "job", "j", "", "Path to job posting text file (mutually exclusive with --job-url)")
	runCommand.Flags().StringVar(&runJobURL, "job-url", "", "URL to fetch job posting from (mutually exclusive with --job)")
	runCommand.Flags().StringVar(&runCacheDir, "cache-dir", ".resume_cache", "Directory for the content cache")
	runCommand.Flags().StringVarP(&runOutputDir, "output-dir", "o", "output", "Directory for rendered documents")
	runCommand.Flags().StringVar(&runModel, "model", "", "Gemini model name (default gemini-2.5-flash)")
	runCommand.Flags().BoolVar(&runStream, "stream", false, "Stream completions with byte-rate progress output")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed stage summaries")
	runCommand.Flags().BoolVar(&runJSONLogs, "json-logs", false, "Emit logs as JSON")
	runCommand.Flags().BoolVar(&runDebug, "debug", false, "Enable debug logging (cache hit/miss traces)")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	runCommand.Flags().StringVar(&runAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	// Database URL for run history
	runCommand.Flags().StringVar(&runDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	// Step 1: Load config file if provided
	var cfg config.Config
	if runConfigPath != "" {
		loadedCfg, err := config.Load(runConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := loadedCfg.Validate(); err != nil {
			return err
		}
		cfg = *loadedCfg
	}

	// Step 2: Apply CLI overrides (command-line args take priority).
	// Only override if the flag was explicitly set.
	if cmd.Flags().Changed("resume") {
		cfg.Resume = runResume
	}
	if cmd.Flags().Changed("job") {
		cfg.Job = runJob
	}
	if cmd.Flags().Changed("job-url") {
		cfg.JobURL = runJobURL
	}
	if cmd.Flags().Changed("cache-dir") {
		cfg.CacheDir = runCacheDir
	}
	if cmd.Flags().Changed("output-dir") {
		cfg.OutputDir = runOutputDir
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = runAPIKey
	}
	if cmd.Flags().Changed("model") {
		cfg.Model = runModel
	}
	if cmd.Flags().Changed("stream") {
		cfg.Stream = runStream
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = runVerbose
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = runDatabaseURL
	}

	// Step 3: Apply defaults and environment fallbacks
	cfg = cfg.MergeWithDefaults(config.Config{
		CacheDir:    runCacheDir,
		OutputDir:   runOutputDir,
		APIKey:      os.Getenv("GEMINI_API_KEY"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
	})

	// Step 4: Validate required inputs after merging
	if cfg.Resume == "" {
		return fmt.Errorf("a resume file is required (--resume or config 'resume')")
	}
	if cfg.Job == "" && cfg.JobURL == "" {
		return fmt.Errorf("a job posting is required (--job, --job-url, or config)")
	}
	if cfg.Job != "" && cfg.JobURL != "" {
		return fmt.Errorf("--job and --job-url are mutually exclusive")
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("an API key is required (--api-key or GEMINI_API_KEY)")
	}

	log, err := logger.New(runJSONLogs, runDebug)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	return pipeline.Run(ctx, pipeline.RunOptions{
		ResumePath:  cfg.Resume,
		JobPath:     cfg.Job,
		JobURL:      cfg.JobURL,
		CacheDir:    cfg.CacheDir,
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		Stream:      cfg.Stream,
		Verbose:     cfg.Verbose,
		DatabaseURL: cfg.DatabaseURL,
		Log:         log,
	})
}
