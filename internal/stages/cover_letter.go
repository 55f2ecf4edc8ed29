package stages

import (
	"context"

	"go.uber.org/zap"

	"github.com/jonathan/resume-optimizer/internal/cache"
	"github.com/jonathan/resume-optimizer/internal/canon"
	"github.com/jonathan/resume-optimizer/internal/prompts"
	"github.com/jonathan/resume-optimizer/internal/types"
)

// coverLetterKeySuffix identifies the cover-letter stage inside the
// composite canonical key.
const coverLetterKeySuffix = "cover_letter"

// CoverLetter generates a personalized cover letter from the structured
// resume, the structured job, and the analysis strengths.
func (s *Stages) CoverLetter(ctx context.Context, resume *types.StructuredResume, job *types.StructuredJob, analysis *types.AnalysisResult) (*types.CoverLetter, error) {
	const stage = "cover_letter"

	canonical, err := canon.Join(coverLetterKeySuffix, resume, job)
	if err != nil {
		return nil, err
	}

	if doc, ok := s.store.Get(cache.TypeCoverLetter, canonical); ok {
		var letter types.CoverLetter
		if err := s.decodeEntity(stage, doc, &letter); err == nil {
			s.log.Info("loaded cover letter from cache")
			return &letter, nil
		}
		s.log.Warn("cached cover letter has unexpected shape, recomputing")
	}

	matches := analysis.Matches
	if len(matches) > maxMatchesInPrompt {
		matches = types.SortMatchesByScore(matches)[:maxMatchesInPrompt]
	}

	prompt := prompts.Format(prompts.MustGet(promptFile, "cover-letter"), map[string]string{
		"Name":             resume.Name,
		"Skills":           jsonList(resume.Skills.Flatten()),
		"WorkHistory":      formatWorkHistory(resume.WorkHistory),
		"Title":            job.Title,
		"RequiredSkills":   jsonList(job.RequiredSkills),
		"Responsibilities": jsonList(job.Responsibilities),
		"Strengths":        formatBulletPoints(analysis.Strengths),
		"SemanticMatches":  formatSemanticMatches(matches),
	})

	doc, err := s.client.Complete(ctx, prompt, "Generating Cover Letter")
	if err != nil {
		return nil, err
	}

	var letter types.CoverLetter
	if err := s.decodeEntity(stage, doc, &letter); err != nil {
		return nil, err
	}

	s.store.Put(cache.TypeCoverLetter, canonical, doc)
	s.log.Info("generated cover letter", zap.Int("body_paragraphs", len(letter.BodyParagraphs)))

	return &letter, nil
}
