package stages

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/resume-optimizer/internal/cache"
	"github.com/jonathan/resume-optimizer/internal/canon"
	"github.com/jonathan/resume-optimizer/internal/prompts"
	"github.com/jonathan/resume-optimizer/internal/types"
)

// Stage-identifying key suffixes. Bumping a suffix orphans entries written
// under older stage semantics.
const (
	experienceKeySuffix = "tailored_exp_v2"
	projectKeySuffix    = "tailored_proj"
	skillsKeySuffix     = "tailored_skills"
)

// forcedKeepLimit is how many of the most recent work-history entries are
// regenerated with relevance-checking disabled when every entry was
// filtered out.
const forcedKeepLimit = 2

// experienceDocument is the raw stage document for a single tailored
// experience or project. The relevant flag is a valid generation outcome,
// not an error; it is cached alongside the bullets so a cached
// "irrelevant" verdict is honored on later runs.
type experienceDocument struct {
	Relevant             *bool    `json:"relevant"`
	TailoredBulletPoints []string `json:"tailored_bullet_points"`
	TechStack            []string `json:"tech_stack,omitempty"`
}

// isRelevant treats a missing flag as relevant, matching the provider's
// habit of omitting it for kept entries.
func (d *experienceDocument) isRelevant() bool {
	return d.Relevant == nil || *d.Relevant
}

// cleanBullets trims bullets and drops empties.
func cleanBullets(bullets []string) []string {
	cleaned := make([]string, 0, len(bullets))
	for _, b := range bullets {
		if strings.TrimSpace(b) == "" {
			continue
		}
		cleaned = append(cleaned, b)
	}
	return cleaned
}

// TailorResume rewrites resume content to align with the job description.
// Work-history entries and projects judged irrelevant are dropped from
// the tailored set; skills are recategorized wholesale with a fallback to
// the originals; education is filtered to degree entries.
func (s *Stages) TailorResume(ctx context.Context, resume *types.StructuredResume, analysis *types.AnalysisResult, job *types.StructuredJob) (*types.TailoredResume, error) {
	tailoredHistory := make([]types.TailoredExperience, 0, len(resume.WorkHistory))
	for _, exp := range resume.WorkHistory {
		tailored, err := s.tailorExperience(ctx, exp, analysis, job, false)
		if err != nil {
			return nil, err
		}
		if tailored != nil {
			tailoredHistory = append(tailoredHistory, *tailored)
		}
	}

	// Safety net: a tailored resume is never left with zero work history.
	// If every entry was filtered, regenerate the most recent entries with
	// relevance-checking disabled.
	if len(tailoredHistory) == 0 && len(resume.WorkHistory) > 0 {
		s.log.Warn("all experiences were filtered as irrelevant, forcing the most recent to be kept")
		for _, exp := range resume.WorkHistory[:minInt(forcedKeepLimit, len(resume.WorkHistory))] {
			tailored, err := s.tailorExperience(ctx, exp, analysis, job, true)
			if err != nil {
				return nil, err
			}
			if tailored != nil {
				tailoredHistory = append(tailoredHistory, *tailored)
			}
		}
	}

	gapKeywords := make([]string, 0)
	for _, g := range analysis.Gaps {
		if g.SuggestedSection == "skills" {
			gapKeywords = append(gapKeywords, g.MissingKeyword)
		}
	}
	updatedSkills, err := s.tailorSkills(ctx, resume.Skills, job, gapKeywords)
	if err != nil {
		return nil, err
	}

	tailoredProjects := make([]types.TailoredProject, 0, len(resume.Projects))
	for _, project := range resume.Projects {
		tailored, err := s.tailorProject(ctx, project, job)
		if err != nil {
			return nil, err
		}
		if tailored != nil {
			tailoredProjects = append(tailoredProjects, *tailored)
		}
	}

	return &types.TailoredResume{
		TailoredWorkHistory: tailoredHistory,
		UpdatedSkills:       updatedSkills,
		TailoredProjects:    tailoredProjects,
		TailoredEducation:   filterEducation(resume.Education),
	}, nil
}

// tailorExperience rewrites a single work experience. It returns nil when
// the entry is judged irrelevant to the target job (unless forceKeep is
// set) or when no usable bullets come back.
func (s *Stages) tailorExperience(ctx context.Context, exp types.Experience, analysis *types.AnalysisResult, job *types.StructuredJob, forceKeep bool) (*types.TailoredExperience, error) {
	const stage = "tailor_experience"

	canonical, err := canon.Join(experienceKeySuffix, exp, job)
	if err != nil {
		return nil, err
	}

	buildEntity := func(doc *experienceDocument) *types.TailoredExperience {
		bullets := cleanBullets(doc.TailoredBulletPoints)
		if len(bullets) == 0 {
			if !forceKeep {
				return nil
			}
			// A force-kept entry must survive even when the provider
			// produced no bullets for it, so the original bullets stand in.
			bullets = cleanBullets(exp.Description)
			if len(bullets) == 0 {
				return nil
			}
			s.log.Warn("force-kept experience has no tailored bullets, keeping original bullets",
				zap.String("company", exp.Company))
		}
		return &types.TailoredExperience{
			Company:              exp.Company,
			Role:                 exp.Role,
			Duration:             exp.Duration,
			TailoredBulletPoints: bullets,
		}
	}

	if raw, ok := s.store.Get(cache.TypeTailoredExperience, canonical); ok {
		var doc experienceDocument
		if err := json.Unmarshal(raw, &doc); err == nil {
			s.log.Info("loaded tailored experience from cache", zap.String("company", exp.Company))
			if !doc.isRelevant() && !forceKeep {
				return nil, nil
			}
			return buildEntity(&doc), nil
		}
		s.log.Warn("cached tailored experience has unexpected shape, recomputing",
			zap.String("company", exp.Company))
	}

	prompt := prompts.Format(prompts.MustGet(promptFile, "tailor-experience"), map[string]string{
		"Role":                exp.Role,
		"Company":             exp.Company,
		"Duration":            exp.Duration,
		"OriginalBullets":     formatBulletPoints(exp.Description),
		"JobKeywords":         strings.Join(capStrings(job.RequiredSkills, maxJobKeywords), ", "),
		"JobResponsibilities": formatBulletPoints(capStrings(job.Responsibilities, maxJobResponsibilities)),
		"SemanticMatches":     formatSemanticMatches(analysis.Matches),
		"KeywordGaps":         formatKeywordGaps(analysis.Gaps),
	})

	raw, err := s.client.Complete(ctx, prompt, "Tailoring "+exp.Company)
	if err != nil {
		return nil, err
	}

	var doc experienceDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &ValidationError{
			Stage:   stage,
			Message: "document does not match the tailored-experience shape",
			Cause:   err,
		}
	}

	s.store.Put(cache.TypeTailoredExperience, canonical, raw)

	if !doc.isRelevant() && !forceKeep {
		s.log.Info("filtered out experience as irrelevant", zap.String("company", exp.Company))
		return nil, nil
	}

	return buildEntity(&doc), nil
}

// tailorProject rewrites a single project with the same relevance-drop
// semantics as experiences, independently per project.
func (s *Stages) tailorProject(ctx context.Context, project types.Project, job *types.StructuredJob) (*types.TailoredProject, error) {
	const stage = "tailor_project"

	canonical, err := canon.Join(projectKeySuffix, project, job)
	if err != nil {
		return nil, err
	}

	buildEntity := func(doc *experienceDocument) *types.TailoredProject {
		bullets := cleanBullets(doc.TailoredBulletPoints)
		if len(bullets) == 0 {
			return nil
		}
		techStack := doc.TechStack
		if len(techStack) == 0 {
			techStack = project.TechStack
		}
		return &types.TailoredProject{
			Name:                 project.Name,
			TailoredBulletPoints: bullets,
			TechStack:            techStack,
			URL:                  project.URL,
		}
	}

	if raw, ok := s.store.Get(cache.TypeTailoredProject, canonical); ok {
		var doc experienceDocument
		if err := json.Unmarshal(raw, &doc); err == nil {
			s.log.Info("loaded tailored project from cache", zap.String("project", project.Name))
			if !doc.isRelevant() {
				return nil, nil
			}
			return buildEntity(&doc), nil
		}
		s.log.Warn("cached tailored project has unexpected shape, recomputing",
			zap.String("project", project.Name))
	}

	url := "N/A"
	if project.URL != nil {
		url = *project.URL
	}

	prompt := prompts.Format(prompts.MustGet(promptFile, "tailor-project"), map[string]string{
		"Name":            project.Name,
		"TechStack":       strings.Join(project.TechStack, ", "),
		"URL":             url,
		"OriginalBullets": formatBulletPoints(project.Description),
		"JobKeywords":     strings.Join(capStrings(job.RequiredSkills, maxJobKeywords), ", "),
	})

	raw, err := s.client.Complete(ctx, prompt, "Tailoring Project "+project.Name)
	if err != nil {
		return nil, err
	}

	var doc experienceDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &ValidationError{
			Stage:   stage,
			Message: "document does not match the tailored-project shape",
			Cause:   err,
		}
	}

	s.store.Put(cache.TypeTailoredProject, canonical, raw)

	if !doc.isRelevant() {
		s.log.Info("filtered out project as irrelevant", zap.String("project", project.Name))
		return nil, nil
	}

	return buildEntity(&doc), nil
}

// tailorSkills asks for a wholesale recategorized/filtered skills mapping,
// integrating gap keywords. An empty or non-mapping result falls back to
// the untailored original skills unchanged.
func (s *Stages) tailorSkills(ctx context.Context, skills types.SkillGroups, job *types.StructuredJob, gapKeywords []string) (types.SkillGroups, error) {
	canonical, err := canon.Join(skillsKeySuffix, skills, job, gapKeywords)
	if err != nil {
		return nil, err
	}

	if raw, ok := s.store.Get(cache.TypeTailoredSkills, canonical); ok {
		var cached map[string][]string
		if err := json.Unmarshal(raw, &cached); err == nil && len(cached) > 0 {
			s.log.Info("loaded tailored skills from cache")
			return cached, nil
		}
		s.log.Warn("cached tailored skills empty or malformed, using original skills")
		return skills, nil
	}

	currentSkills, err := json.MarshalIndent(skills, "", "  ")
	if err != nil {
		return nil, err
	}

	prompt := prompts.Format(prompts.MustGet(promptFile, "tailor-skills"), map[string]string{
		"CurrentSkills":    string(currentSkills),
		"GapKeywords":      jsonList(gapKeywords),
		"RequiredSkills":   jsonList(job.RequiredSkills),
		"Responsibilities": strings.Join(capStrings(job.Responsibilities, maxSkillsResponsibil), ", "),
	})

	raw, err := s.client.Complete(ctx, prompt, "Tailoring Skills")
	if err != nil {
		return nil, err
	}

	// A strict mapping is required here: a flat list is not auto-wrapped
	// because the stage asked for categories.
	var tailored map[string][]string
	if err := json.Unmarshal(raw, &tailored); err != nil || len(tailored) == 0 {
		s.log.Warn("skills tailoring returned an empty or non-mapping result, keeping original skills")
		return skills, nil
	}

	s.store.Put(cache.TypeTailoredSkills, canonical, tailored)
	return tailored, nil
}

// filterEducation keeps degree-type entries, falling back to the full
// list when the filter empties it.
func filterEducation(education []types.Education) []types.Education {
	degrees := make([]types.Education, 0, len(education))
	for _, edu := range education {
		if edu.EntryType == types.EducationDegree {
			degrees = append(degrees, edu)
		}
	}
	if len(degrees) == 0 {
		return education
	}
	return degrees
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
