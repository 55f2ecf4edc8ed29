package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkillGroupsUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		jsonText string
		expected SkillGroups
		wantErr  bool
	}{
		{
			name:     "Grouped mapping decodes as-is",
			jsonText: `{"Languages": ["Python", "Go"], "Tools": ["Docker"]}`,
			expected: SkillGroups{
				"Languages": {"Python", "Go"},
				"Tools":     {"Docker"},
			},
		},
		{
			name:     "Flat list is wrapped into General",
			jsonText: `["Python", "Go", "SQL"]`,
			expected: SkillGroups{GeneralSkillCategory: {"Python", "Go", "SQL"}},
		},
		{
			name:     "Empty mapping",
			jsonText: `{}`,
			expected: SkillGroups{},
		},
		{
			name:     "Non-container value fails",
			jsonText: `"Python"`,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got SkillGroups
			err := json.Unmarshal([]byte(tt.jsonText), &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSkillGroupsFlattenIsDeterministic(t *testing.T) {
	groups := SkillGroups{
		"Tools":     {"Docker", "Git"},
		"Languages": {"Python", "Go"},
		"Cloud":     {"AWS"},
	}

	first := groups.Flatten()
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, groups.Flatten())
	}
	// Categories visited in sorted order: Cloud, Languages, Tools.
	assert.Equal(t, []string{"AWS", "Python", "Go", "Docker", "Git"}, first)
}

func TestStructuredResumeRoundTrip(t *testing.T) {
	url := "github.com/jane/ecommerce"
	email := "jane@example.com"
	resume := StructuredResume{
		Name:  "Jane Smith",
		Email: &email,
		Links: []string{"github.com/janesmith"},
		Skills: SkillGroups{
			"Languages": {"Python", "JavaScript"},
		},
		WorkHistory: []Experience{
			{Company: "Tech Corp", Role: "Software Engineer", Duration: "2020-2023", Description: []string{"Built things"}},
		},
		Projects: []Project{
			{Name: "E-Commerce Platform", Description: []string{"Built a store"}, TechStack: []string{"React"}, URL: &url},
		},
		Education: []Education{
			{Institution: "University of Texas", Degree: "B.S. Computer Science", GraduationDate: "2020", EntryType: EducationDegree},
		},
	}

	data, err := json.Marshal(resume)
	require.NoError(t, err)

	var decoded StructuredResume
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, resume, decoded)
	assert.Nil(t, decoded.Phone)
}
