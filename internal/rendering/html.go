// Package rendering turns tailored entities into HTML documents and
// prints them to PDF with a headless browser.
package rendering

import (
	"embed"
	"html/template"
	"sort"
	"strings"

	"github.com/jonathan/resume-optimizer/internal/types"
)

//go:embed templates/*.tmpl
var templateFiles embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFiles, "templates/*.tmpl"))

// resumePage is the view model for the resume template. Contact fields
// come from the structured resume; content sections come from the
// tailored resume.
type resumePage struct {
	Name        string
	Email       string
	Phone       string
	Location    string
	Links       []string
	Skills      []skillRow
	WorkHistory []types.TailoredExperience
	Projects    []projectRow
	Education   []types.Education
}

type skillRow struct {
	Category string
	Items    string
}

type projectRow struct {
	Name                 string
	URL                  string
	TechStack            string
	TailoredBulletPoints []string
}

// RenderResumeHTML renders the tailored resume as a standalone HTML
// document, with contact details taken from the structured resume.
func RenderResumeHTML(resume *types.StructuredResume, tailored *types.TailoredResume) (string, error) {
	page := resumePage{
		Name:        resume.Name,
		Links:       resume.Links,
		Skills:      skillRows(tailored.UpdatedSkills),
		WorkHistory: tailored.TailoredWorkHistory,
		Education:   tailored.TailoredEducation,
	}
	if resume.Email != nil {
		page.Email = *resume.Email
	}
	if resume.Phone != nil {
		page.Phone = *resume.Phone
	}
	if resume.Location != nil {
		page.Location = *resume.Location
	}

	for _, project := range tailored.TailoredProjects {
		row := projectRow{
			Name:                 project.Name,
			TechStack:            strings.Join(project.TechStack, ", "),
			TailoredBulletPoints: project.TailoredBulletPoints,
		}
		if project.URL != nil {
			row.URL = *project.URL
		}
		page.Projects = append(page.Projects, row)
	}

	var sb strings.Builder
	if err := pageTemplates.ExecuteTemplate(&sb, "resume.html.tmpl", page); err != nil {
		return "", &Error{Document: "resume", Message: "template execution failed", Cause: err}
	}
	return sb.String(), nil
}

// RenderCoverLetterHTML renders the cover letter as a standalone HTML
// document.
func RenderCoverLetterHTML(name string, letter *types.CoverLetter) (string, error) {
	data := struct {
		Name   string
		Letter *types.CoverLetter
	}{Name: name, Letter: letter}

	var sb strings.Builder
	if err := pageTemplates.ExecuteTemplate(&sb, "cover_letter.html.tmpl", data); err != nil {
		return "", &Error{Document: "cover_letter", Message: "template execution failed", Cause: err}
	}
	return sb.String(), nil
}

// skillRows flattens the skills mapping into rows with categories in
// sorted order so output is deterministic.
func skillRows(skills types.SkillGroups) []skillRow {
	categories := make([]string, 0, len(skills))
	for category := range skills {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	rows := make([]skillRow, 0, len(categories))
	for _, category := range categories {
		rows = append(rows, skillRow{
			Category: category,
			Items:    strings.Join(skills[category], ", "),
		})
	}
	return rows
}
