package rendering

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-optimizer/internal/types"
)

func strptr(s string) *string { return &s }

func TestRenderResumeHTML(t *testing.T) {
	resume := &types.StructuredResume{
		Name:     "Jane Doe",
		Email:    strptr("jane@example.com"),
		Location: strptr("Berlin"),
		Links:    []string{"github.com/janedoe"},
	}
	tailored := &types.TailoredResume{
		TailoredWorkHistory: []types.TailoredExperience{
			{Company: "Acme", Role: "Engineer", Duration: "2020-2023",
				TailoredBulletPoints: []string{"Shipped Go billing pipeline"}},
		},
		UpdatedSkills: types.SkillGroups{
			"Languages": {"Go", "Python"},
			"Cloud":     {"AWS"},
		},
		TailoredProjects: []types.TailoredProject{
			{Name: "Sideproj", TailoredBulletPoints: []string{"Built a thing"},
				TechStack: []string{"Go", "Postgres"}, URL: strptr("https://example.com")},
		},
		TailoredEducation: []types.Education{
			{Institution: "State U", Degree: "BSc Computer Science", GraduationDate: "2019"},
		},
	}

	html, err := RenderResumeHTML(resume, tailored)
	require.NoError(t, err)

	assert.Contains(t, html, "Jane Doe")
	assert.Contains(t, html, "jane@example.com")
	assert.Contains(t, html, "Berlin")
	assert.Contains(t, html, "github.com/janedoe")
	assert.Contains(t, html, "Shipped Go billing pipeline")
	assert.Contains(t, html, "Go, Python")
	assert.Contains(t, html, "Go, Postgres")
	assert.Contains(t, html, "State U")
	// Skill categories render in sorted order.
	assert.Less(t, strings.Index(html, "Cloud"), strings.Index(html, "Languages"))
}

func TestRenderResumeHTMLEscapesContent(t *testing.T) {
	resume := &types.StructuredResume{Name: "Jane <script>alert(1)</script>"}
	tailored := &types.TailoredResume{}

	html, err := RenderResumeHTML(resume, tailored)
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>alert(1)</script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestRenderResumeHTMLOmitsEmptySections(t *testing.T) {
	resume := &types.StructuredResume{Name: "Jane Doe"}
	tailored := &types.TailoredResume{}

	html, err := RenderResumeHTML(resume, tailored)
	require.NoError(t, err)
	assert.NotContains(t, html, "<h2>Projects</h2>")
	assert.NotContains(t, html, "<h2>Education</h2>")
}

func TestRenderCoverLetterHTML(t *testing.T) {
	letter := &types.CoverLetter{
		Greeting:         "Dear Hiring Manager,",
		OpeningParagraph: "I am excited to apply.",
		BodyParagraphs:   []string{"First paragraph.", "Second paragraph."},
		ClosingParagraph: "Thank you for your consideration.",
		SignOff:          "Sincerely,\nJane Doe",
	}

	html, err := RenderCoverLetterHTML("Jane Doe", letter)
	require.NoError(t, err)
	assert.Contains(t, html, "Dear Hiring Manager,")
	assert.Contains(t, html, "First paragraph.")
	assert.Contains(t, html, "Second paragraph.")
	assert.Contains(t, html, "Thank you for your consideration.")
	assert.Contains(t, html, "Jane Doe - Cover Letter")
}
