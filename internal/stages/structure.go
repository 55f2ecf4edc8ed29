package stages

import (
	"context"

	"go.uber.org/zap"

	"github.com/jonathan/resume-optimizer/internal/cache"
	"github.com/jonathan/resume-optimizer/internal/canon"
	"github.com/jonathan/resume-optimizer/internal/prompts"
	"github.com/jonathan/resume-optimizer/internal/types"
)

// StructureResume turns raw resume text into a StructuredResume. Flat-list
// skills are normalized into the grouped-mapping shape at the decode
// boundary so internal logic never branches on shape again.
func (s *Stages) StructureResume(ctx context.Context, rawText string) (*types.StructuredResume, error) {
	const stage = "structure_resume"

	canonical, err := canon.String(rawText)
	if err != nil {
		return nil, err
	}

	if doc, ok := s.store.Get(cache.TypeResume, canonical); ok {
		var resume types.StructuredResume
		if err := s.decodeEntity(stage, doc, &resume); err == nil {
			s.log.Info("loaded resume from cache")
			return &resume, nil
		}
		s.log.Warn("cached resume has unexpected shape, recomputing")
	}

	prompt := prompts.Format(prompts.MustGet(promptFile, "structure-resume"), map[string]string{
		"RawText": rawText,
	})

	doc, err := s.client.Complete(ctx, prompt, "Structuring Resume")
	if err != nil {
		return nil, err
	}

	if err := validateSchema(stage, "resume.schema.json", doc); err != nil {
		return nil, err
	}

	var resume types.StructuredResume
	if err := s.decodeEntity(stage, doc, &resume); err != nil {
		return nil, err
	}

	s.store.Put(cache.TypeResume, canonical, doc)
	s.log.Info("structured resume", zap.String("name", resume.Name),
		zap.Int("work_history", len(resume.WorkHistory)))

	return &resume, nil
}

// StructureJob turns raw job description text into a StructuredJob.
func (s *Stages) StructureJob(ctx context.Context, rawText string) (*types.StructuredJob, error) {
	const stage = "structure_job"

	canonical, err := canon.String(rawText)
	if err != nil {
		return nil, err
	}

	if doc, ok := s.store.Get(cache.TypeJobDescription, canonical); ok {
		var job types.StructuredJob
		if err := s.decodeEntity(stage, doc, &job); err == nil {
			s.log.Info("loaded job description from cache")
			return &job, nil
		}
		s.log.Warn("cached job description has unexpected shape, recomputing")
	}

	prompt := prompts.Format(prompts.MustGet(promptFile, "structure-job"), map[string]string{
		"RawText": rawText,
	})

	doc, err := s.client.Complete(ctx, prompt, "Structuring Job Description")
	if err != nil {
		return nil, err
	}

	if err := validateSchema(stage, "job.schema.json", doc); err != nil {
		return nil, err
	}

	var job types.StructuredJob
	if err := s.decodeEntity(stage, doc, &job); err != nil {
		return nil, err
	}

	s.store.Put(cache.TypeJobDescription, canonical, doc)
	s.log.Info("structured job description", zap.String("title", job.Title),
		zap.Int("requirements", job.TotalRequirements()))

	return &job, nil
}
