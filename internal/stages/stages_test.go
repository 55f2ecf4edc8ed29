package stages

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/resume-optimizer/internal/cache"
	"github.com/jonathan/resume-optimizer/internal/types"
)

// fakeCompleter returns canned documents keyed by the human-readable
// operation description and counts every call.
type fakeCompleter struct {
	responses map[string]string
	calls     map[string]int
	total     int
}

func newFakeCompleter(responses map[string]string) *fakeCompleter {
	return &fakeCompleter{responses: responses, calls: make(map[string]int)}
}

func (f *fakeCompleter) Complete(_ context.Context, _, description string) (json.RawMessage, error) {
	f.calls[description]++
	f.total++
	doc, ok := f.responses[description]
	if !ok {
		doc = "{}"
	}
	return json.RawMessage(doc), nil
}

func (f *fakeCompleter) Close() error { return nil }

func newTestStages(t *testing.T, responses map[string]string) (*Stages, *fakeCompleter) {
	t.Helper()
	store, err := cache.NewStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	client := newFakeCompleter(responses)
	return New(store, client, zap.NewNop()), client
}

const structuredResumeDoc = `{
	"name": "Jane Doe",
	"skills": {"Languages": ["Go", "Python"], "Tools": ["Docker"]},
	"work_history": [
		{"company": "Acme", "role": "Engineer", "duration": "2020-2023",
		 "description": ["Built billing pipeline", "Led migration to Go"]}
	],
	"projects": [],
	"education": []
}`

const structuredJobDoc = `{
	"title": "Backend Engineer",
	"required_skills": ["Go", "Postgres", "Kubernetes"],
	"responsibilities": ["Design APIs", "Operate services"]
}`

func testResume(t *testing.T) *types.StructuredResume {
	t.Helper()
	var resume types.StructuredResume
	require.NoError(t, json.Unmarshal([]byte(structuredResumeDoc), &resume))
	return &resume
}

func testJob(t *testing.T) *types.StructuredJob {
	t.Helper()
	var job types.StructuredJob
	require.NoError(t, json.Unmarshal([]byte(structuredJobDoc), &job))
	return &job
}

func TestStructureResumeCachesResult(t *testing.T) {
	stages, client := newTestStages(t, map[string]string{
		"Structuring Resume": structuredResumeDoc,
	})

	first, err := stages.StructureResume(context.Background(), "jane's raw resume text")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", first.Name)
	assert.Equal(t, 1, client.total)

	second, err := stages.StructureResume(context.Background(), "jane's raw resume text")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, client.total, "identical input must be served from cache")
}

func TestStructureResumeDifferentInputsRecompute(t *testing.T) {
	stages, client := newTestStages(t, map[string]string{
		"Structuring Resume": structuredResumeDoc,
	})

	_, err := stages.StructureResume(context.Background(), "resume one")
	require.NoError(t, err)
	_, err = stages.StructureResume(context.Background(), "resume two")
	require.NoError(t, err)
	assert.Equal(t, 2, client.total)
}

func TestStructureResumeFlatSkillsNormalized(t *testing.T) {
	stages, _ := newTestStages(t, map[string]string{
		"Structuring Resume": `{
			"name": "Jane Doe",
			"skills": ["Go", "Python"],
			"work_history": [{"company": "Acme", "role": "Engineer", "duration": "", "description": []}]
		}`,
	})

	resume, err := stages.StructureResume(context.Background(), "raw text")
	require.NoError(t, err)
	assert.Equal(t, types.SkillGroups{"General": {"Go", "Python"}}, resume.Skills)
}

func TestStructureResumeRejectsMissingName(t *testing.T) {
	stages, _ := newTestStages(t, map[string]string{
		"Structuring Resume": `{"skills": [], "work_history": []}`,
	})

	_, err := stages.StructureResume(context.Background(), "raw text")
	require.Error(t, err)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestStructureJobCachesResult(t *testing.T) {
	stages, client := newTestStages(t, map[string]string{
		"Structuring Job Description": structuredJobDoc,
	})

	job, err := stages.StructureJob(context.Background(), "job posting text")
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", job.Title)
	assert.Equal(t, 5, job.TotalRequirements())

	_, err = stages.StructureJob(context.Background(), "job posting text")
	require.NoError(t, err)
	assert.Equal(t, 1, client.total)
}

func TestSemanticMatchesDropsUnanchoredEntries(t *testing.T) {
	stages, client := newTestStages(t, map[string]string{
		"Analyzing Semantic Matches": `{"matches": [
			{"resume_item": "Go", "job_requirement": "Go", "match_score": 0.95, "reasoning": "exact", "match_type": "exact"},
			{"resume_item": "orphan", "job_requirement": "", "match_score": 0.4, "reasoning": "", "match_type": "semantic"}
		]}`,
	})

	matches, err := stages.SemanticMatches(context.Background(), testResume(t), testJob(t))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Go", matches[0].JobRequirement)

	// The cached raw list is unfiltered but replay filters again.
	matches, err = stages.SemanticMatches(context.Background(), testResume(t), testJob(t))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
	assert.Equal(t, 1, client.total)
}

func TestKeywordGapsCachedSeparatelyFromMatches(t *testing.T) {
	stages, client := newTestStages(t, map[string]string{
		"Analyzing Semantic Matches": `{"matches": []}`,
		"Identifying Keyword Gaps": `{"gaps": [
			{"missing_keyword": "Kubernetes", "importance": "high", "context_in_job": "Operate services",
			 "suggested_section": "skills", "integration_suggestion": "Add to tools"}
		]}`,
	})

	matches, err := stages.SemanticMatches(context.Background(), testResume(t), testJob(t))
	require.NoError(t, err)

	gaps, err := stages.KeywordGaps(context.Background(), testResume(t), testJob(t), matches)
	require.NoError(t, err)
	require.Len(t, gaps, 1)
	assert.Equal(t, "Kubernetes", gaps[0].MissingKeyword)

	_, err = stages.KeywordGaps(context.Background(), testResume(t), testJob(t), matches)
	require.NoError(t, err)
	assert.Equal(t, 1, client.calls["Identifying Keyword Gaps"])
}

func TestAlignmentScore(t *testing.T) {
	assert.InDelta(t, 0.7, AlignmentScore(7, 10), 1e-9)
	assert.Equal(t, 1.0, AlignmentScore(12, 10), "score is capped at 1.0")
	assert.Equal(t, 0.0, AlignmentScore(0, 10))
	assert.Equal(t, 0.0, AlignmentScore(5, 0), "a job with no requirements scores zero")
}

func TestAnalyzeBuildsStrengthsAndRecommendations(t *testing.T) {
	stages, _ := newTestStages(t, map[string]string{
		"Analyzing Semantic Matches": `{"matches": [
			{"resume_item": "Go services", "job_requirement": "Go", "match_score": 0.9, "reasoning": "", "match_type": "exact"},
			{"resume_item": "Ops scripting", "job_requirement": "Operate services", "match_score": 0.6, "reasoning": "", "match_type": "transferable"}
		]}`,
		"Identifying Keyword Gaps": `{"gaps": [
			{"missing_keyword": "Kubernetes", "importance": "high", "context_in_job": "", "suggested_section": "skills", "integration_suggestion": ""}
		]}`,
	})

	analysis, err := stages.Analyze(context.Background(), testResume(t), testJob(t))
	require.NoError(t, err)

	assert.InDelta(t, 0.4, analysis.OverallAlignmentScore, 1e-9)
	require.NotEmpty(t, analysis.Strengths)
	assert.Equal(t, "Go services aligns with Go (score: 0.90)", analysis.Strengths[0])
	assert.Contains(t, analysis.Recommendations[0], "Kubernetes")
	assert.Contains(t, analysis.Recommendations[1], "tailoring your experience descriptions")
	assert.Contains(t, analysis.Recommendations[2], "Ops scripting")
}

func TestTailorExperienceDropsIrrelevantEntries(t *testing.T) {
	stages, client := newTestStages(t, map[string]string{
		"Tailoring Acme": `{"relevant": false, "tailored_bullet_points": ["kept anyway"]}`,
	})

	analysis := &types.AnalysisResult{}
	tailored, err := stages.tailorExperience(context.Background(), testResume(t).WorkHistory[0], analysis, testJob(t), false)
	require.NoError(t, err)
	assert.Nil(t, tailored)

	// The irrelevant verdict is cached and honored on replay.
	tailored, err = stages.tailorExperience(context.Background(), testResume(t).WorkHistory[0], analysis, testJob(t), false)
	require.NoError(t, err)
	assert.Nil(t, tailored)
	assert.Equal(t, 1, client.total)

	// forceKeep overrides the cached verdict without another provider call.
	tailored, err = stages.tailorExperience(context.Background(), testResume(t).WorkHistory[0], analysis, testJob(t), true)
	require.NoError(t, err)
	require.NotNil(t, tailored)
	assert.Equal(t, []string{"kept anyway"}, tailored.TailoredBulletPoints)
	assert.Equal(t, 1, client.total)
}

func TestTailorResumeForceKeepsMostRecentExperiences(t *testing.T) {
	resume := testResume(t)
	resume.WorkHistory = []types.Experience{
		{Company: "Acme", Role: "Engineer", Duration: "2022-2023", Description: []string{"a"}},
		{Company: "Globex", Role: "Engineer", Duration: "2020-2022", Description: []string{"b"}},
		{Company: "Initech", Role: "Intern", Duration: "2019", Description: []string{"c"}},
	}

	stages, _ := newTestStages(t, map[string]string{
		"Tailoring Acme":    `{"relevant": false, "tailored_bullet_points": ["acme bullet"]}`,
		"Tailoring Globex":  `{"relevant": false, "tailored_bullet_points": ["globex bullet"]}`,
		"Tailoring Initech": `{"relevant": false, "tailored_bullet_points": ["initech bullet"]}`,
		"Tailoring Skills":  `{"Languages": ["Go"]}`,
	})

	tailored, err := stages.TailorResume(context.Background(), resume, &types.AnalysisResult{}, testJob(t))
	require.NoError(t, err)

	require.Len(t, tailored.TailoredWorkHistory, 2, "the two most recent entries are force-kept")
	assert.Equal(t, "Acme", tailored.TailoredWorkHistory[0].Company)
	assert.Equal(t, "Globex", tailored.TailoredWorkHistory[1].Company)
}

func TestTailorResumeForceKeepFallsBackToOriginalBullets(t *testing.T) {
	resume := testResume(t)
	resume.WorkHistory = []types.Experience{
		{Company: "Acme", Role: "Engineer", Duration: "2022-2023", Description: []string{"built acme things"}},
		{Company: "Globex", Role: "Engineer", Duration: "2020-2022", Description: []string{"built globex things"}},
		{Company: "Initech", Role: "Intern", Duration: "2019", Description: []string{"built initech things"}},
	}

	// Irrelevant verdicts with no bullets at all: the force-keep pass must
	// still produce work history, standing in the original bullets.
	stages, _ := newTestStages(t, map[string]string{
		"Tailoring Acme":    `{"relevant": false, "tailored_bullet_points": []}`,
		"Tailoring Globex":  `{"relevant": false, "tailored_bullet_points": []}`,
		"Tailoring Initech": `{"relevant": false, "tailored_bullet_points": []}`,
		"Tailoring Skills":  `{"Languages": ["Go"]}`,
	})

	tailored, err := stages.TailorResume(context.Background(), resume, &types.AnalysisResult{}, testJob(t))
	require.NoError(t, err)

	require.NotEmpty(t, tailored.TailoredWorkHistory)
	require.LessOrEqual(t, len(tailored.TailoredWorkHistory), 2)
	assert.Equal(t, "Acme", tailored.TailoredWorkHistory[0].Company)
	assert.Equal(t, []string{"built acme things"}, tailored.TailoredWorkHistory[0].TailoredBulletPoints)
}

func TestTailorResumeKeepsRelevantEntries(t *testing.T) {
	stages, _ := newTestStages(t, map[string]string{
		"Tailoring Acme":   `{"relevant": true, "tailored_bullet_points": ["Shipped Go billing pipeline"]}`,
		"Tailoring Skills": `{"Languages": ["Go"], "Platforms": ["Kubernetes"]}`,
	})

	tailored, err := stages.TailorResume(context.Background(), testResume(t), &types.AnalysisResult{}, testJob(t))
	require.NoError(t, err)

	require.Len(t, tailored.TailoredWorkHistory, 1)
	assert.Equal(t, []string{"Shipped Go billing pipeline"}, tailored.TailoredWorkHistory[0].TailoredBulletPoints)
	assert.Equal(t, types.SkillGroups{"Languages": {"Go"}, "Platforms": {"Kubernetes"}}, tailored.UpdatedSkills)
}

func TestTailorSkillsFallsBackToOriginalOnNonMapping(t *testing.T) {
	resume := testResume(t)
	stages, _ := newTestStages(t, map[string]string{
		"Tailoring Skills": `["Go", "Python"]`,
	})

	skills, err := stages.tailorSkills(context.Background(), resume.Skills, testJob(t), nil)
	require.NoError(t, err)
	assert.Equal(t, resume.Skills, skills, "a non-mapping result keeps the original skills")
}

func TestTailorSkillsFallsBackToOriginalOnEmptyMapping(t *testing.T) {
	resume := testResume(t)
	stages, _ := newTestStages(t, map[string]string{
		"Tailoring Skills": `{}`,
	})

	skills, err := stages.tailorSkills(context.Background(), resume.Skills, testJob(t), []string{"Kubernetes"})
	require.NoError(t, err)
	assert.Equal(t, resume.Skills, skills)
}

func TestTailorProjectDefaultsTechStackToOriginal(t *testing.T) {
	url := "https://example.com/proj"
	project := types.Project{
		Name:        "Sideproj",
		Description: []string{"built a thing"},
		TechStack:   []string{"Go", "Postgres"},
		URL:         &url,
	}

	stages, _ := newTestStages(t, map[string]string{
		"Tailoring Project Sideproj": `{"relevant": true, "tailored_bullet_points": ["Built a focused thing"]}`,
	})

	tailored, err := stages.tailorProject(context.Background(), project, testJob(t))
	require.NoError(t, err)
	require.NotNil(t, tailored)
	assert.Equal(t, []string{"Go", "Postgres"}, tailored.TechStack)
	assert.Equal(t, &url, tailored.URL)
}

func TestFilterEducationKeepsDegreesWithFallback(t *testing.T) {
	degree := types.Education{Institution: "State U", Degree: "BSc", EntryType: types.EducationDegree}
	cert := types.Education{Institution: "Vendor", Degree: "Cert", EntryType: types.EducationCertification}

	assert.Equal(t, []types.Education{degree}, filterEducation([]types.Education{degree, cert}))
	assert.Equal(t, []types.Education{cert}, filterEducation([]types.Education{cert}),
		"when no degrees exist the full list is kept")
}

func TestCoverLetterCachesResult(t *testing.T) {
	stages, client := newTestStages(t, map[string]string{
		"Generating Cover Letter": `{
			"greeting": "Dear Hiring Manager,",
			"opening_paragraph": "I am excited to apply.",
			"body_paragraphs": ["First.", "Second."],
			"closing_paragraph": "Thank you.",
			"sign_off": "Sincerely, Jane Doe"
		}`,
	})

	analysis := &types.AnalysisResult{Strengths: []string{"Go aligns with Go (score: 0.90)"}}
	letter, err := stages.CoverLetter(context.Background(), testResume(t), testJob(t), analysis)
	require.NoError(t, err)
	assert.Equal(t, "Dear Hiring Manager,", letter.Greeting)
	assert.Len(t, letter.BodyParagraphs, 2)

	_, err = stages.CoverLetter(context.Background(), testResume(t), testJob(t), analysis)
	require.NoError(t, err)
	assert.Equal(t, 1, client.total)
}
