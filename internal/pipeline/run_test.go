package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-optimizer/internal/types"
)

type fakeCompleter struct {
	responses map[string]string
	calls     map[string]int
	failOn    string
}

func newFakeCompleter(responses map[string]string) *fakeCompleter {
	return &fakeCompleter{responses: responses, calls: make(map[string]int)}
}

func (f *fakeCompleter) Complete(_ context.Context, _, description string) (json.RawMessage, error) {
	f.calls[description]++
	if f.failOn == description {
		return nil, errors.New("provider unavailable")
	}
	doc, ok := f.responses[description]
	if !ok {
		doc = "{}"
	}
	return json.RawMessage(doc), nil
}

func (f *fakeCompleter) Close() error { return nil }

func fullRunResponses() map[string]string {
	return map[string]string{
		"Structuring Resume": `{
			"name": "Jane Doe",
			"skills": {"Languages": ["Go"]},
			"work_history": [{"company": "Acme", "role": "Engineer", "duration": "2020-2023",
				"description": ["Built billing pipeline"]}],
			"projects": [],
			"education": []
		}`,
		"Structuring Job Description": `{
			"title": "Backend Engineer",
			"required_skills": ["Go", "Postgres"],
			"responsibilities": ["Design APIs"]
		}`,
		"Analyzing Semantic Matches": `{"matches": [
			{"resume_item": "Go", "job_requirement": "Go", "match_score": 0.9, "reasoning": "", "match_type": "exact"}
		]}`,
		"Identifying Keyword Gaps": `{"gaps": [
			{"missing_keyword": "Postgres", "importance": "high", "suggested_section": "skills", "integration_suggestion": ""}
		]}`,
		"Tailoring Acme":   `{"relevant": true, "tailored_bullet_points": ["Shipped Go billing pipeline"]}`,
		"Tailoring Skills": `{"Languages": ["Go"], "Databases": ["Postgres"]}`,
		"Generating Cover Letter": `{
			"greeting": "Dear Hiring Manager,",
			"opening_paragraph": "Opening.",
			"body_paragraphs": ["Body."],
			"closing_paragraph": "Closing.",
			"sign_off": "Sincerely, Jane Doe"
		}`,
	}
}

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunFullPipeline(t *testing.T) {
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "cache")
	client := newFakeCompleter(fullRunResponses())

	var events []ProgressEvent
	var out bytes.Buffer
	err := Run(context.Background(), RunOptions{
		ResumePath: writeInput(t, dir, "resume.txt", "Jane Doe raw resume"),
		JobPath:    writeInput(t, dir, "job.txt", "Backend Engineer job posting"),
		CacheDir:   cacheDir,
		Verbose:    true,
		Out:        &out,
		Completer:  client,
		OnProgress: func(e ProgressEvent) { events = append(events, e) },
	})
	require.NoError(t, err)

	// Every stage ran exactly once.
	for _, description := range []string{
		"Structuring Resume", "Structuring Job Description",
		"Analyzing Semantic Matches", "Identifying Keyword Gaps",
		"Tailoring Acme", "Tailoring Skills", "Generating Cover Letter",
	} {
		assert.Equal(t, 1, client.calls[description], description)
	}

	// Output documents landed in the cache directory.
	for _, doc := range []string{DocAnalysis, DocTailoredResume, DocCoverLetter} {
		_, err := os.Stat(filepath.Join(cacheDir, doc))
		assert.NoError(t, err, doc)
	}

	var tailored types.TailoredResume
	data, err := os.ReadFile(filepath.Join(cacheDir, DocTailoredResume))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &tailored))
	require.Len(t, tailored.TailoredWorkHistory, 1)
	assert.Equal(t, "Acme", tailored.TailoredWorkHistory[0].Company)

	// Progress events cover all five stages in order.
	require.Len(t, events, 5)
	assert.Equal(t, StageStructureResume, events[0].Stage)
	assert.Equal(t, StageCoverLetter, events[4].Stage)

	// Verbose mode printed stage summaries.
	assert.Contains(t, out.String(), "SEMANTIC ANALYSIS")
	assert.Contains(t, out.String(), "TAILORED RESUME")
}

func TestRunSecondRunServedFromCache(t *testing.T) {
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "cache")
	resume := writeInput(t, dir, "resume.txt", "Jane Doe raw resume")
	job := writeInput(t, dir, "job.txt", "Backend Engineer job posting")

	client := newFakeCompleter(fullRunResponses())
	opts := RunOptions{ResumePath: resume, JobPath: job, CacheDir: cacheDir, Completer: client}

	require.NoError(t, Run(context.Background(), opts))
	firstTotal := 0
	for _, n := range client.calls {
		firstTotal += n
	}

	require.NoError(t, Run(context.Background(), opts))
	secondTotal := 0
	for _, n := range client.calls {
		secondTotal += n
	}
	assert.Equal(t, firstTotal, secondTotal, "identical inputs must not trigger provider calls")
}

func TestRunAbortsOnStageFailure(t *testing.T) {
	dir := t.TempDir()
	client := newFakeCompleter(fullRunResponses())
	client.failOn = "Analyzing Semantic Matches"

	err := Run(context.Background(), RunOptions{
		ResumePath: writeInput(t, dir, "resume.txt", "Jane Doe raw resume"),
		JobPath:    writeInput(t, dir, "job.txt", "Backend Engineer job posting"),
		CacheDir:   filepath.Join(dir, "cache"),
		Completer:  client,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "semantic analysis failed")
	assert.Zero(t, client.calls["Tailoring Acme"], "later stages must not run after a failure")
	assert.Zero(t, client.calls["Generating Cover Letter"])
}

func TestRunMissingResumeFile(t *testing.T) {
	dir := t.TempDir()
	err := Run(context.Background(), RunOptions{
		ResumePath: filepath.Join(dir, "missing.txt"),
		JobPath:    writeInput(t, dir, "job.txt", "job text"),
		CacheDir:   filepath.Join(dir, "cache"),
		Completer:  newFakeCompleter(nil),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resume ingestion failed")
}
