// Package types provides type definitions for structured data used throughout the resume-optimizer system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"sort"
)

// GeneralSkillCategory is the category skills are wrapped into when the
// source data arrives as a flat list instead of a grouped mapping.
const GeneralSkillCategory = "General"

// SkillGroups maps a category name (e.g. "Languages", "Tools") to an
// ordered list of skill strings. It decodes from either a grouped mapping
// or a flat list; a flat list is wrapped into the "General" category so
// downstream logic never branches on shape.
type SkillGroups map[string][]string

// UnmarshalJSON accepts both the grouped-mapping shape and the legacy
// flat-list shape.
func (s *SkillGroups) UnmarshalJSON(data []byte) error {
	var grouped map[string][]string
	if err := json.Unmarshal(data, &grouped); err == nil {
		*s = grouped
		return nil
	}

	var flat []string
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	*s = SkillGroups{GeneralSkillCategory: flat}
	return nil
}

// Flatten returns all skills across categories as a single list, with
// categories visited in sorted order so the result is deterministic.
func (s SkillGroups) Flatten() []string {
	categories := make([]string, 0, len(s))
	for category := range s {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var flat []string
	for _, category := range categories {
		flat = append(flat, s[category]...)
	}
	return flat
}

// StructuredResume represents a resume extracted from raw text
type StructuredResume struct {
	Name        string       `json:"name" validate:"required"`
	Email       *string      `json:"email"`
	Phone       *string      `json:"phone"`
	Location    *string      `json:"location"`
	Links       []string     `json:"links"`
	Skills      SkillGroups  `json:"skills"`
	WorkHistory []Experience `json:"work_history"`
	Projects    []Project    `json:"projects"`
	Education   []Education  `json:"education"`
}

// Experience represents a single work-history entry
type Experience struct {
	Company     string   `json:"company" validate:"required"`
	Role        string   `json:"role" validate:"required"`
	Duration    string   `json:"duration"`
	Description []string `json:"description"`
}

// Project represents a personal or side project
type Project struct {
	Name        string   `json:"name" validate:"required"`
	Description []string `json:"description"`
	TechStack   []string `json:"tech_stack"`
	URL         *string  `json:"url"`
}

// Education entry types classify how an entry was earned.
const (
	EducationDegree        = "degree"
	EducationCertification = "certification"
	EducationBootcamp      = "bootcamp"
)

// Education represents a single education entry
type Education struct {
	Institution    string `json:"institution"`
	Degree         string `json:"degree"`
	GraduationDate string `json:"graduation_date"`
	EntryType      string `json:"entry_type"`
}
