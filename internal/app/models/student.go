package models

import "strings"

// Student is a student profile
type Student struct {
	Meta
	Name          string    `json:"name" validate:"max=120" example:"Asha Rao"`
	Roll          string    `json:"roll" validate:"max=32" example:"21CS042"`                   // Institution roll number, unique
	Email         string    `json:"email" validate:"omitempty,email" example:"asha@campus.edu"` // Unique
	Department    string    `json:"department" example:"CSE"`
	TechStack     []string  `json:"techStack" example:"go,react"`
	ProfileImage  *string   `json:"profileImage,omitempty" validate:"omitempty,uri"`
	FaceEmbedding []float64 `json:"faceEmbedding,omitempty"`
	Active        bool      `json:"active" example:"true"` // False once deactivated
}

// StudentPatch carries the fields an update may change
type StudentPatch struct {
	Name          *string    `json:"name,omitempty"`
	Roll          *string    `json:"roll,omitempty"`
	Email         *string    `json:"email,omitempty"`
	Department    *string    `json:"department,omitempty"`
	TechStack     *[]string  `json:"techStack,omitempty"`
	ProfileImage  *string    `json:"profileImage,omitempty"`
	FaceEmbedding *[]float64 `json:"faceEmbedding,omitempty"`
	Active        *bool      `json:"active,omitempty"`
}

// ApplyDefaults implements Defaulter
func (s *Student) ApplyDefaults() {
	s.Active = true
}

// Normalize implements Normalizer
func (s *Student) Normalize() error {
	s.Email = NormalizeEmail(s.Email)
	s.Roll = strings.TrimSpace(s.Roll)
	s.TechStack = dedupe(s.TechStack)
	return nil
}

// StudentProfile is a student with the records it owns
type StudentProfile struct {
	Student      *Student      `json:"student"`
	Internships  []Internship  `json:"internships"`
	Competitions []Competition `json:"competitions"`
	Certificates []Certificate `json:"certificates"`
	Projects     []Project     `json:"projects"`
}

func dedupe(items []string) []string {
	if items == nil {
		return []string{}
	}
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}
