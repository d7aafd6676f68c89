package models

import "strings"

// Collection names
const (
	CollectionStudents     = "students"
	CollectionFaculty      = "faculty"
	CollectionInternships  = "internships"
	CollectionCompetitions = "competitions"
	CollectionCertificates = "certificates"
	CollectionProjects     = "projects"
	CollectionPosts        = "posts"
)

var StudentKind = Kind{
	Name:       "Student",
	Plural:     "Students",
	Collection: CollectionStudents,
	Fields: []Field{
		{Name: "name", Type: FieldString, Required: true, Filterable: true, Searchable: true},
		{Name: "roll", Type: FieldString, Required: true, Unique: true, Filterable: true, Normalize: strings.TrimSpace},
		{Name: "email", Type: FieldString, Required: true, Unique: true, Filterable: true, Normalize: NormalizeEmail},
		{Name: "department", Type: FieldString, Required: true, Filterable: true},
		{Name: "techStack", Type: FieldStringList, Filterable: true},
		{Name: "profileImage", Type: FieldString},
		{Name: "faceEmbedding", Type: FieldFloatList},
		{Name: "active", Type: FieldBool, Filterable: true},
	},
}

var FacultyKind = Kind{
	Name:       "Faculty",
	Plural:     "Faculties",
	Collection: CollectionFaculty,
	Fields: []Field{
		{Name: "firstName", Type: FieldString, Required: true, Filterable: true, Searchable: true},
		{Name: "lastName", Type: FieldString, Required: true, Filterable: true, Searchable: true},
		{Name: "email", Type: FieldString, Required: true, Unique: true, Filterable: true, Normalize: NormalizeEmail},
		{Name: "phone", Type: FieldString, Required: true, Unique: true, Filterable: true, Normalize: strings.TrimSpace},
		{Name: "department", Type: FieldString, Required: true, Filterable: true},
		{Name: "designation", Type: FieldString, Filterable: true},
		{Name: "qualification", Type: FieldString, Filterable: true},
		{Name: "experience", Type: FieldInt, Filterable: true},
		{Name: "subjects", Type: FieldStringList, Filterable: true},
		{Name: "skills", Type: FieldStringList, Filterable: true},
		{Name: "headOf", Type: FieldStringList, Filterable: true},
		{Name: "roles", Type: FieldStringList, Filterable: true},
	},
}

var InternshipKind = Kind{
	Name:       "Internship",
	Plural:     "Internships",
	Collection: CollectionInternships,
	OwnerField: "studentId",
	Fields: []Field{
		{Name: "studentId", Type: FieldString, Required: true, Filterable: true, Ref: CollectionStudents},
		{Name: "company", Type: FieldString, Required: true, Filterable: true, Searchable: true},
		{Name: "position", Type: FieldString, Required: true, Filterable: true},
		{Name: "startDate", Type: FieldDate, Required: true, Filterable: true},
		{Name: "endDate", Type: FieldDate, Filterable: true},
		{Name: "certificateLink", Type: FieldString},
		{Name: "verified", Type: FieldBool, Filterable: true},
	},
}

var CompetitionKind = Kind{
	Name:       "Competition",
	Plural:     "Competitions",
	Collection: CollectionCompetitions,
	OwnerField: "studentId",
	Fields: []Field{
		{Name: "studentId", Type: FieldString, Required: true, Filterable: true, Ref: CollectionStudents},
		{Name: "name", Type: FieldString, Required: true, Filterable: true, Searchable: true},
		{Name: "organizer", Type: FieldString, Required: true, Filterable: true},
		{Name: "date", Type: FieldDate, Required: true, Filterable: true},
		{Name: "position", Type: FieldString, Filterable: true},
		{Name: "certificateLink", Type: FieldString},
		{Name: "verified", Type: FieldBool, Filterable: true},
	},
}

var CertificateKind = Kind{
	Name:       "Certificate",
	Plural:     "Certificates",
	Collection: CollectionCertificates,
	OwnerField: "studentId",
	Fields: []Field{
		{Name: "studentId", Type: FieldString, Required: true, Filterable: true, Ref: CollectionStudents},
		{Name: "title", Type: FieldString, Required: true, Filterable: true, Searchable: true},
		{Name: "organization", Type: FieldString, Required: true, Filterable: true},
		{Name: "issueDate", Type: FieldDate, Required: true, Filterable: true},
		{Name: "credentialLink", Type: FieldString},
		{Name: "verified", Type: FieldBool, Filterable: true},
	},
}

var ProjectKind = Kind{
	Name:       "Project",
	Plural:     "Projects",
	Collection: CollectionProjects,
	OwnerField: "studentId",
	Fields: []Field{
		{Name: "studentId", Type: FieldString, Required: true, Filterable: true, Ref: CollectionStudents},
		{Name: "title", Type: FieldString, Required: true, Filterable: true, Searchable: true},
		{Name: "description", Type: FieldString},
		{Name: "techStack", Type: FieldStringList, Filterable: true},
		{Name: "repoLink", Type: FieldString},
		{Name: "verified", Type: FieldBool, Filterable: true},
	},
}

var PostKind = Kind{
	Name:       "Post",
	Plural:     "Posts",
	Collection: CollectionPosts,
	Fields: []Field{
		{Name: "authorId", Type: FieldString, Required: true, Filterable: true},
		{Name: "authorRole", Type: FieldString, Required: true, Filterable: true},
		{Name: "content", Type: FieldString, Required: true, Searchable: true, Filterable: true},
		{Name: "likes", Type: FieldStringList, Filterable: true},
		{Name: "comments", Type: FieldObjectList},
	},
}

// Kinds returns every stored kind
func Kinds() []Kind {
	return []Kind{StudentKind, FacultyKind, InternshipKind, CompetitionKind, CertificateKind, ProjectKind, PostKind}
}

// OwnedKinds returns the kinds whose records belong to a student
func OwnedKinds() []Kind {
	return []Kind{InternshipKind, CompetitionKind, CertificateKind, ProjectKind}
}
