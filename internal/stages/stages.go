// Package stages implements the ordered pipeline transformation units.
// Every stage follows the same shape: check cache, on miss build a
// stage-specific prompt, call the completion port, repair/parse, validate
// into the stage's strict entity shape, write the cache, return the
// entity. A cache hit short-circuits all network and repair logic.
package stages

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jonathan/resume-optimizer/internal/cache"
	"github.com/jonathan/resume-optimizer/internal/completion"
	"github.com/jonathan/resume-optimizer/internal/types"
)

// promptFile is the embedded template file all stage prompts live in.
const promptFile = "stages.json"

// Prompt-size limits carried over from the original prompt construction.
const (
	maxExperienceBullets   = 20
	maxWorkHistoryEntries  = 15
	maxJobKeywords         = 15
	maxJobResponsibilities = 10
	maxSkillsResponsibil   = 8
	maxStrengths           = 5
	maxMatchesInPrompt     = 5
)

// Stages bundles the collaborators every pipeline stage composes: the
// content cache, the completion port, and a logger. The cache store is an
// explicit value, never ambient process state.
type Stages struct {
	store    *cache.Store
	client   completion.Completer
	log      *zap.Logger
	validate *validator.Validate
}

// New creates the stage set.
func New(store *cache.Store, client completion.Completer, log *zap.Logger) *Stages {
	if log == nil {
		log = zap.NewNop()
	}
	return &Stages{
		store:    store,
		client:   client,
		log:      log,
		validate: validator.New(),
	}
}

// decodeEntity unmarshals a stage document into its entity and runs
// struct-level required-field validation.
func (s *Stages) decodeEntity(stage string, doc json.RawMessage, entity any) error {
	if err := json.Unmarshal(doc, entity); err != nil {
		return &ValidationError{
			Stage:   stage,
			Message: "document does not match the stage's entity shape",
			Cause:   err,
		}
	}
	if err := s.validate.Struct(entity); err != nil {
		return &ValidationError{
			Stage:   stage,
			Message: "entity is missing required fields",
			Cause:   err,
		}
	}
	return nil
}

// jsonList renders a slice as a JSON array for prompt injection.
func jsonList(items []string) string {
	data, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// capStrings returns at most n items.
func capStrings(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}

// formatBulletPoints renders bullets one per line with a leading dash.
func formatBulletPoints(bullets []string) string {
	lines := make([]string, 0, len(bullets))
	for _, b := range bullets {
		lines = append(lines, "- "+b)
	}
	return strings.Join(lines, "\n")
}

// formatWorkHistory renders work-history entries with indented bullets.
func formatWorkHistory(history []types.Experience) string {
	lines := make([]string, 0, len(history))
	for _, exp := range history {
		entry := fmt.Sprintf("- %s at %s (%s):\n  %s",
			exp.Role, exp.Company, exp.Duration, strings.Join(exp.Description, "\n  "))
		lines = append(lines, entry)
	}
	return strings.Join(lines, "\n")
}

// formatSemanticMatches renders matches as rephrasing guidance.
func formatSemanticMatches(matches []types.SemanticMatch) string {
	lines := make([]string, 0, len(matches))
	for _, m := range matches {
		lines = append(lines, fmt.Sprintf("- '%s' can be rephrased to match '%s'", m.ResumeItem, m.JobRequirement))
	}
	return strings.Join(lines, "\n")
}

// formatKeywordGaps renders gaps with their importance.
func formatKeywordGaps(gaps []types.KeywordGap) string {
	lines := make([]string, 0, len(gaps))
	for _, g := range gaps {
		lines = append(lines, fmt.Sprintf("- The resume is missing the keyword '%s' which is of %s importance.", g.MissingKeyword, g.Importance))
	}
	return strings.Join(lines, "\n")
}

// experienceBullets collects all work-history bullet texts.
func experienceBullets(history []types.Experience) []string {
	var bullets []string
	for _, exp := range history {
		bullets = append(bullets, exp.Description...)
	}
	return bullets
}
