package stages

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/resume-optimizer/internal/types"
)

// Alignment bands used for recommendation wording.
const (
	lowAlignmentThreshold    = 0.5
	strongAlignmentThreshold = 0.75
)

// AlignmentScore computes the overall alignment:
// min(1, matches / max(1, total job requirements)). A job with no
// requirements scores 0.
func AlignmentScore(matchCount, totalRequirements int) float64 {
	if totalRequirements <= 0 {
		return 0.0
	}
	score := float64(matchCount) / float64(totalRequirements)
	if score > 1.0 {
		return 1.0
	}
	return score
}

// Analyze runs the full semantic analysis: matches, then gaps, then the
// deterministic aggregate (alignment score, strengths, recommendations).
func (s *Stages) Analyze(ctx context.Context, resume *types.StructuredResume, job *types.StructuredJob) (*types.AnalysisResult, error) {
	matches, err := s.SemanticMatches(ctx, resume, job)
	if err != nil {
		return nil, err
	}

	gaps, err := s.KeywordGaps(ctx, resume, job, matches)
	if err != nil {
		return nil, err
	}

	score := AlignmentScore(len(matches), job.TotalRequirements())

	result := &types.AnalysisResult{
		Matches:               matches,
		Gaps:                  gaps,
		OverallAlignmentScore: score,
		Strengths:             buildStrengths(matches),
		Recommendations:       buildRecommendations(matches, gaps, score),
	}

	s.log.Info("semantic analysis complete",
		zap.Int("matches", len(matches)),
		zap.Int("gaps", len(gaps)),
		zap.Float64("alignment_score", score))

	return result, nil
}

// buildStrengths formats the top-scoring matches as strength statements.
func buildStrengths(matches []types.SemanticMatch) []string {
	sorted := types.SortMatchesByScore(matches)
	if len(sorted) > maxStrengths {
		sorted = sorted[:maxStrengths]
	}

	strengths := make([]string, 0, len(sorted))
	for _, m := range sorted {
		strengths = append(strengths,
			fmt.Sprintf("%s aligns with %s (score: %.2f)", m.ResumeItem, m.JobRequirement, m.MatchScore))
	}
	return strengths
}

// buildRecommendations derives high-level recommendations from the gaps
// and the alignment band.
func buildRecommendations(matches []types.SemanticMatch, gaps []types.KeywordGap, score float64) []string {
	var recommendations []string

	var highPriority []string
	for _, g := range gaps {
		if g.Importance == types.ImportanceHigh {
			highPriority = append(highPriority, g.MissingKeyword)
		}
	}
	if len(highPriority) > 0 {
		recommendations = append(recommendations, fmt.Sprintf(
			"Add %d high-priority keywords: %s",
			len(highPriority), strings.Join(capStrings(highPriority, 3), ", ")))
	}

	switch {
	case score < lowAlignmentThreshold:
		recommendations = append(recommendations,
			"Consider tailoring your experience descriptions to better match job responsibilities")
	case score >= strongAlignmentThreshold:
		recommendations = append(recommendations,
			"Strong alignment with job requirements - focus on highlighting relevant projects")
	}

	var transferable []string
	for _, m := range matches {
		if m.MatchType == types.MatchTransferable {
			transferable = append(transferable, m.ResumeItem)
		}
	}
	if len(transferable) > 0 {
		recommendations = append(recommendations, fmt.Sprintf(
			"Emphasize transferable skills: %s", strings.Join(capStrings(transferable, 2), ", ")))
	}

	return recommendations
}
