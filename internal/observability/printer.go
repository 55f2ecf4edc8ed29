// Package observability provides formatted output utilities for verbose
// CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-optimizer/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintStructuredResume outputs a summary of the structured resume.
func (p *Printer) PrintStructuredResume(resume *types.StructuredResume) {
	if resume == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:         %s\n", resume.Name))
	sb.WriteString(fmt.Sprintf("Skills:       %d across %d categories\n",
		len(resume.Skills.Flatten()), len(resume.Skills)))
	sb.WriteString(fmt.Sprintf("Work history: %d entries\n", len(resume.WorkHistory)))
	sb.WriteString(fmt.Sprintf("Projects:     %d\n", len(resume.Projects)))
	sb.WriteString(fmt.Sprintf("Education:    %d", len(resume.Education)))

	p.printBox("STRUCTURED RESUME", sb.String())
}

// PrintStructuredJob outputs a summary of the structured job description.
func (p *Printer) PrintStructuredJob(job *types.StructuredJob) {
	if job == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Title: %s\n\n", job.Title))

	if len(job.RequiredSkills) > 0 {
		sb.WriteString("Required skills:\n")
		appendItems(&sb, job.RequiredSkills, maxItemsToShow)
	}
	if len(job.Responsibilities) > 0 {
		sb.WriteString("Responsibilities:\n")
		appendItems(&sb, job.Responsibilities, maxItemsToShow)
	}

	p.printBox("STRUCTURED JOB DESCRIPTION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintAnalysis outputs the alignment score, strengths, and gaps.
func (p *Printer) PrintAnalysis(analysis *types.AnalysisResult) {
	if analysis == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Alignment score: %.0f%%\n", analysis.OverallAlignmentScore*100))
	sb.WriteString(fmt.Sprintf("Matches: %d  Gaps: %d\n", len(analysis.Matches), len(analysis.Gaps)))

	if len(analysis.Strengths) > 0 {
		sb.WriteString("\nStrengths:\n")
		appendItems(&sb, analysis.Strengths, maxItemsToShow)
	}

	gaps := types.SortGapsByImportance(analysis.Gaps)
	if len(gaps) > 0 {
		sb.WriteString("\nTop gaps:\n")
		count := len(gaps)
		if count > maxItemsToShow {
			count = maxItemsToShow
		}
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s (%s)\n", gaps[i].MissingKeyword, gaps[i].Importance))
		}
		if len(gaps) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(gaps)-maxItemsToShow))
		}
	}

	if len(analysis.Recommendations) > 0 {
		sb.WriteString("\nRecommendations:\n")
		appendItems(&sb, analysis.Recommendations, maxItemsToShow)
	}

	p.printBox("SEMANTIC ANALYSIS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintTailoredResume outputs what survived tailoring.
func (p *Printer) PrintTailoredResume(tailored *types.TailoredResume) {
	if tailored == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Work history kept: %d entries\n", len(tailored.TailoredWorkHistory)))
	for _, exp := range tailored.TailoredWorkHistory {
		sb.WriteString(fmt.Sprintf("  • %s at %s (%d bullets)\n",
			exp.Role, exp.Company, len(exp.TailoredBulletPoints)))
	}

	sb.WriteString(fmt.Sprintf("Projects kept: %d\n", len(tailored.TailoredProjects)))
	sb.WriteString(fmt.Sprintf("Skill categories: %d", len(tailored.UpdatedSkills)))

	p.printBox("TAILORED RESUME", sb.String())
}

// PrintCoverLetter outputs the generated cover letter in full.
func (p *Printer) PrintCoverLetter(letter *types.CoverLetter) {
	if letter == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(letter.Greeting)
	sb.WriteString("\n\n")
	sb.WriteString(letter.OpeningParagraph)
	for _, paragraph := range letter.BodyParagraphs {
		sb.WriteString("\n\n")
		sb.WriteString(paragraph)
	}
	sb.WriteString("\n\n")
	sb.WriteString(letter.ClosingParagraph)
	sb.WriteString("\n\n")
	sb.WriteString(letter.SignOff)

	p.printBox("COVER LETTER", sb.String())
}

// appendItems writes up to max items as bullets with an overflow line.
func appendItems(sb *strings.Builder, items []string, max int) {
	count := len(items)
	if count > max {
		count = max
	}
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > max {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-max))
	}
}
