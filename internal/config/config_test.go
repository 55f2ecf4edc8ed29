package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadParsesConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.json", `{
		"resume": "resume.txt",
		"job_url": "https://example.com/job",
		"cache_dir": ".cache",
		"stream": true,
		"verbose": true
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "resume.txt", cfg.Resume)
	assert.Equal(t, "https://example.com/job", cfg.JobURL)
	assert.Equal(t, ".cache", cfg.CacheDir)
	assert.True(t, cfg.Stream)
	assert.True(t, cfg.Verbose)
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.json", `{not json`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsEmptyPath(t *testing.T) {
	_, err := Load("")
	assert.Error(t, err)
}

func TestValidateMutuallyExclusiveJobSources(t *testing.T) {
	cfg := &Config{Job: "job.txt", JobURL: "https://example.com/job"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestValidateMissingFiles(t *testing.T) {
	cfg := &Config{Resume: "/nonexistent/resume.txt"}
	assert.Error(t, cfg.Validate())

	cfg = &Config{Job: "/nonexistent/job.txt"}
	assert.Error(t, cfg.Validate())
}

func TestValidateAcceptsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	resume := writeFile(t, dir, "resume.txt", "raw resume")
	job := writeFile(t, dir, "job.txt", "raw job")

	cfg := &Config{Resume: resume, Job: job}
	assert.NoError(t, cfg.Validate())
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{Resume: "mine.txt", Stream: true}
	merged := cfg.MergeWithDefaults(Config{
		Resume:    "default.txt",
		CacheDir:  ".cache",
		OutputDir: "out",
		Model:     "gemini-2.5-flash",
	})

	assert.Equal(t, "mine.txt", merged.Resume, "explicit values win over defaults")
	assert.Equal(t, ".cache", merged.CacheDir)
	assert.Equal(t, "out", merged.OutputDir)
	assert.Equal(t, "gemini-2.5-flash", merged.Model)
	assert.True(t, merged.Stream)
}
