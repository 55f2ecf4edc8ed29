package types

import "sort"

// Match types classify how a resume item satisfies a job requirement.
// The type roughly brackets the score (exact ≈ 1.0, semantic 0.7-0.9,
// transferable 0.5-0.7) but that is a generation guideline, not an
// enforced constraint.
const (
	MatchExact        = "exact"
	MatchSemantic     = "semantic"
	MatchTransferable = "transferable"
)

// SemanticMatch connects a resume item to a job requirement with a
// confidence score and reasoning.
type SemanticMatch struct {
	ResumeItem     string  `json:"resume_item"`
	JobRequirement string  `json:"job_requirement" validate:"required"`
	MatchScore     float64 `json:"match_score"`
	Reasoning      string  `json:"reasoning"`
	MatchType      string  `json:"match_type"`
}

// Gap importance levels, ordered high > medium > low for display.
const (
	ImportanceHigh   = "high"
	ImportanceMedium = "medium"
	ImportanceLow    = "low"
)

// importanceRank orders gap importance for sorting.
var importanceRank = map[string]int{
	ImportanceHigh:   3,
	ImportanceMedium: 2,
	ImportanceLow:    1,
}

// KeywordGap describes a job-description keyword missing from the resume.
type KeywordGap struct {
	MissingKeyword        string `json:"missing_keyword" validate:"required"`
	Importance            string `json:"importance"`
	ContextInJob          string `json:"context_in_job,omitempty"`
	SuggestedSection      string `json:"suggested_section"`
	IntegrationSuggestion string `json:"integration_suggestion"`
}

// AnalysisResult aggregates the semantic analysis of a resume against a
// job description.
type AnalysisResult struct {
	Matches               []SemanticMatch `json:"matches"`
	Gaps                  []KeywordGap    `json:"gaps"`
	OverallAlignmentScore float64         `json:"overall_alignment_score"`
	Strengths             []string        `json:"strengths"`
	Recommendations       []string        `json:"recommendations"`
}

// SortMatchesByScore returns the matches ordered by score descending.
// The input slice is not modified.
func SortMatchesByScore(matches []SemanticMatch) []SemanticMatch {
	sorted := make([]SemanticMatch, len(matches))
	copy(sorted, matches)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MatchScore > sorted[j].MatchScore
	})
	return sorted
}

// SortGapsByImportance returns the gaps ordered high > medium > low.
// The input slice is not modified.
func SortGapsByImportance(gaps []KeywordGap) []KeywordGap {
	sorted := make([]KeywordGap, len(gaps))
	copy(sorted, gaps)
	sort.SliceStable(sorted, func(i, j int) bool {
		return importanceRank[sorted[i].Importance] > importanceRank[sorted[j].Importance]
	})
	return sorted
}
