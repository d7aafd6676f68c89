package models

// Internship is an internship a student completed or is doing
type Internship struct {
	Meta
	StudentID       string `json:"studentId" example:"6f1b7c2e-8d7a-4f0e-9d55-2c4a1f0e6b11"`
	Company         string `json:"company" example:"Acme Robotics"`
	Position        string `json:"position" example:"Backend Intern"`
	StartDate       string `json:"startDate" validate:"omitempty,datetime=2006-01-02" example:"2024-05-01"`
	EndDate         string `json:"endDate,omitempty" validate:"omitempty,datetime=2006-01-02" example:"2024-07-31"`
	CertificateLink string `json:"certificateLink,omitempty" validate:"omitempty,url"`
	Verified        bool   `json:"verified"`
}

// InternshipPatch carries the fields an update may change
type InternshipPatch struct {
	Company         *string `json:"company,omitempty"`
	Position        *string `json:"position,omitempty"`
	StartDate       *string `json:"startDate,omitempty"`
	EndDate         *string `json:"endDate,omitempty"`
	CertificateLink *string `json:"certificateLink,omitempty"`
}

func (i *Internship) OwnerID() string    { return i.StudentID }
func (i *Internship) SetVerified(v bool) { i.Verified = v }

// Competition is a contest a student took part in
type Competition struct {
	Meta
	StudentID       string `json:"studentId"`
	Name            string `json:"name" example:"Smart India Hackathon"`
	Organizer       string `json:"organizer" example:"AICTE"`
	Date            string `json:"date" validate:"omitempty,datetime=2006-01-02" example:"2024-09-14"`
	Position        string `json:"position,omitempty" example:"Finalist"`
	CertificateLink string `json:"certificateLink,omitempty" validate:"omitempty,url"`
	Verified        bool   `json:"verified"`
}

// CompetitionPatch carries the fields an update may change
type CompetitionPatch struct {
	Name            *string `json:"name,omitempty"`
	Organizer       *string `json:"organizer,omitempty"`
	Date            *string `json:"date,omitempty"`
	Position        *string `json:"position,omitempty"`
	CertificateLink *string `json:"certificateLink,omitempty"`
}

func (c *Competition) OwnerID() string    { return c.StudentID }
func (c *Competition) SetVerified(v bool) { c.Verified = v }

// Certificate is a course or skill certification
type Certificate struct {
	Meta
	StudentID      string `json:"studentId"`
	Title          string `json:"title" example:"AWS Cloud Practitioner"`
	Organization   string `json:"organization" example:"Amazon Web Services"`
	IssueDate      string `json:"issueDate" validate:"omitempty,datetime=2006-01-02" example:"2024-02-10"`
	CredentialLink string `json:"credentialLink,omitempty" validate:"omitempty,url"`
	Verified       bool   `json:"verified"`
}

// CertificatePatch carries the fields an update may change
type CertificatePatch struct {
	Title          *string `json:"title,omitempty"`
	Organization   *string `json:"organization,omitempty"`
	IssueDate      *string `json:"issueDate,omitempty"`
	CredentialLink *string `json:"credentialLink,omitempty"`
}

func (c *Certificate) OwnerID() string    { return c.StudentID }
func (c *Certificate) SetVerified(v bool) { c.Verified = v }

// Project is a student project
type Project struct {
	Meta
	StudentID   string   `json:"studentId"`
	Title       string   `json:"title" example:"Attendance via face match"`
	Description string   `json:"description,omitempty"`
	TechStack   []string `json:"techStack"`
	RepoLink    string   `json:"repoLink,omitempty" validate:"omitempty,url"`
	Verified    bool     `json:"verified"`
}

// ProjectPatch carries the fields an update may change
type ProjectPatch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	TechStack   *[]string `json:"techStack,omitempty"`
	RepoLink    *string   `json:"repoLink,omitempty"`
}

func (p *Project) OwnerID() string    { return p.StudentID }
func (p *Project) SetVerified(v bool) { p.Verified = v }

// Normalize implements Normalizer
func (p *Project) Normalize() error {
	p.TechStack = dedupe(p.TechStack)
	return nil
}
