package types

// TailoredExperience pairs a work-history entry's identity fields with a
// freshly generated bullet list. An entry judged irrelevant to the target
// job produces no TailoredExperience at all.
type TailoredExperience struct {
	Company              string   `json:"company"`
	Role                 string   `json:"role"`
	Duration             string   `json:"duration"`
	TailoredBulletPoints []string `json:"tailored_bullet_points"`
}

// TailoredProject pairs a project's identity fields with regenerated
// bullets and a possibly narrowed tech stack.
type TailoredProject struct {
	Name                 string   `json:"name"`
	TailoredBulletPoints []string `json:"tailored_bullet_points"`
	TechStack            []string `json:"tech_stack"`
	URL                  *string  `json:"url"`
}

// TailoredResume is the fully tailored output assembled from the
// per-entry tailoring stages.
type TailoredResume struct {
	TailoredWorkHistory []TailoredExperience `json:"tailored_work_history"`
	UpdatedSkills       SkillGroups          `json:"updated_skills"`
	TailoredProjects    []TailoredProject    `json:"tailored_projects"`
	TailoredEducation   []Education          `json:"tailored_education"`
}
