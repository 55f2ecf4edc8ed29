package types

// StructuredJob represents a job description extracted from raw text
type StructuredJob struct {
	Title            string   `json:"title" validate:"required"`
	RequiredSkills   []string `json:"required_skills"`
	Responsibilities []string `json:"responsibilities"`
}

// TotalRequirements returns the number of discrete requirements the job
// carries, used as the denominator of the alignment score.
func (j *StructuredJob) TotalRequirements() int {
	return len(j.RequiredSkills) + len(j.Responsibilities)
}
