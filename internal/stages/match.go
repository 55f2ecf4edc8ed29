package stages

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/jonathan/resume-optimizer/internal/cache"
	"github.com/jonathan/resume-optimizer/internal/canon"
	"github.com/jonathan/resume-optimizer/internal/prompts"
	"github.com/jonathan/resume-optimizer/internal/types"
)

// matchesDocument is the raw provider document shape for the semantic
// match stage. Only the list is cached.
type matchesDocument struct {
	Matches []types.SemanticMatch `json:"matches"`
}

// SemanticMatches analyzes semantic connections between the resume and the
// job requirements: exact matches, semantic matches, and transferable
// skills. Entries missing a job-requirement field are dropped silently;
// they are provider noise, not errors.
func (s *Stages) SemanticMatches(ctx context.Context, resume *types.StructuredResume, job *types.StructuredJob) ([]types.SemanticMatch, error) {
	const stage = "semantic_matches"

	canonical, err := canon.Join("", resume, job)
	if err != nil {
		return nil, err
	}

	if doc, ok := s.store.Get(cache.TypeSemanticMatches, canonical); ok {
		var cached []types.SemanticMatch
		if err := json.Unmarshal(doc, &cached); err == nil {
			s.log.Info("loaded semantic matches from cache", zap.Int("matches", len(cached)))
			return dropUnanchoredMatches(cached), nil
		}
		s.log.Warn("cached semantic matches have unexpected shape, recomputing")
	}

	prompt := prompts.Format(prompts.MustGet(promptFile, "semantic-matches"), map[string]string{
		"ResumeSkills":      jsonList(resume.Skills.Flatten()),
		"ResumeExperiences": jsonList(capStrings(experienceBullets(resume.WorkHistory), maxExperienceBullets)),
		"RequiredSkills":    jsonList(job.RequiredSkills),
		"Responsibilities":  jsonList(job.Responsibilities),
	})

	doc, err := s.client.Complete(ctx, prompt, "Analyzing Semantic Matches")
	if err != nil {
		return nil, err
	}

	var parsed matchesDocument
	if err := json.Unmarshal(doc, &parsed); err != nil {
		return nil, &ValidationError{
			Stage:   stage,
			Message: "document does not carry a matches list",
			Cause:   err,
		}
	}

	// The raw list is cached, not the wrapping object.
	s.store.Put(cache.TypeSemanticMatches, canonical, parsed.Matches)

	matches := dropUnanchoredMatches(parsed.Matches)
	s.log.Info("analyzed semantic matches", zap.Int("matches", len(matches)))
	return matches, nil
}

// dropUnanchoredMatches removes entries with no job requirement to anchor
// them.
func dropUnanchoredMatches(matches []types.SemanticMatch) []types.SemanticMatch {
	kept := make([]types.SemanticMatch, 0, len(matches))
	for _, m := range matches {
		if m.JobRequirement == "" {
			continue
		}
		kept = append(kept, m)
	}
	return kept
}
