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

// gapsDocument is the raw provider document shape for the gap-detection
// stage. Only the list is cached.
type gapsDocument struct {
	Gaps []types.KeywordGap `json:"gaps"`
}

// gapKeySuffix identifies the gap stage inside the composite canonical
// key.
const gapKeySuffix = "gaps"

// KeywordGaps identifies important job-description keywords missing from
// the resume. The already-computed matches are passed so covered
// requirements are not re-flagged.
func (s *Stages) KeywordGaps(ctx context.Context, resume *types.StructuredResume, job *types.StructuredJob, existing []types.SemanticMatch) ([]types.KeywordGap, error) {
	const stage = "keyword_gaps"

	canonical, err := canon.Join(gapKeySuffix, resume, job)
	if err != nil {
		return nil, err
	}

	if doc, ok := s.store.Get(cache.TypeKeywordGaps, canonical); ok {
		var cached []types.KeywordGap
		if err := json.Unmarshal(doc, &cached); err == nil {
			s.log.Info("loaded keyword gaps from cache", zap.Int("gaps", len(cached)))
			return cached, nil
		}
		s.log.Warn("cached keyword gaps have unexpected shape, recomputing")
	}

	matched := make([]string, 0, len(existing))
	for _, m := range existing {
		matched = append(matched, m.JobRequirement)
	}

	workHistory := make([]string, 0, len(resume.WorkHistory))
	for _, exp := range resume.WorkHistory {
		workHistory = append(workHistory, exp.Description...)
	}

	prompt := prompts.Format(prompts.MustGet(promptFile, "keyword-gaps"), map[string]string{
		"ResumeSkills":        jsonList(resume.Skills.Flatten()),
		"WorkHistory":         jsonList(capStrings(workHistory, maxWorkHistoryEntries)),
		"RequiredSkills":      jsonList(job.RequiredSkills),
		"Responsibilities":    jsonList(job.Responsibilities),
		"MatchedRequirements": jsonList(matched),
	})

	doc, err := s.client.Complete(ctx, prompt, "Identifying Keyword Gaps")
	if err != nil {
		return nil, err
	}

	var parsed gapsDocument
	if err := json.Unmarshal(doc, &parsed); err != nil {
		return nil, &ValidationError{
			Stage:   stage,
			Message: "document does not carry a gaps list",
			Cause:   err,
		}
	}

	s.store.Put(cache.TypeKeywordGaps, canonical, parsed.Gaps)
	s.log.Info("identified keyword gaps", zap.Int("gaps", len(parsed.Gaps)))
	return parsed.Gaps, nil
}
