package models

// CatalogTeacher is a teacher as seen by the timetable engine.
type CatalogTeacher struct {
	ID                  string   `db:"id" json:"id" yaml:"id"`
	Name                string   `db:"full_name" json:"name" yaml:"name"`
	QualifiedSubjectIDs []string `db:"-" json:"qualifiedSubjectIds" yaml:"qualifiedSubjectIds"`
}

// Qualified reports whether the teacher may teach subjectID.
func (t CatalogTeacher) Qualified(subjectID string) bool {
	for _, id := range t.QualifiedSubjectIDs {
		if id == subjectID {
			return true
		}
	}
	return false
}

// CatalogClass is a class/section with its headcount.
type CatalogClass struct {
	ID            string `db:"id" json:"id" yaml:"id"`
	Name          string `db:"name" json:"name" yaml:"name"`
	Abbreviation  string `db:"abbreviation" json:"abbreviation" yaml:"abbreviation"`
	GradeID       string `db:"grade_id" json:"gradeId" yaml:"gradeId"`
	Capacity      int    `db:"capacity" json:"capacity" yaml:"capacity"`
	EnrolledCount int    `db:"enrolled_count" json:"enrolledCount" yaml:"enrolledCount"`
}

// CatalogRoom is a bookable classroom.
type CatalogRoom struct {
	ID       string `db:"id" json:"id" yaml:"id"`
	Name     string `db:"name" json:"name" yaml:"name"`
	Capacity int    `db:"capacity" json:"capacity" yaml:"capacity"`
	Building string `db:"building" json:"building" yaml:"building"`
}

// CatalogSubject is a taught subject.
type CatalogSubject struct {
	ID   string `db:"id" json:"id" yaml:"id"`
	Name string `db:"name" json:"name" yaml:"name"`
}

// CatalogGrade is a year level grouping classes.
type CatalogGrade struct {
	ID   string `db:"id" json:"id" yaml:"id"`
	Name string `db:"name" json:"name" yaml:"name"`
}

// TeacherSubject links a teacher to a subject they are qualified for.
type TeacherSubject struct {
	TeacherID string `db:"teacher_id"`
	SubjectID string `db:"subject_id"`
}

// CatalogSnapshot is the serialisable form of the entity catalog.
type CatalogSnapshot struct {
	Teachers []CatalogTeacher `json:"teachers" yaml:"teachers"`
	Classes  []CatalogClass   `json:"classes" yaml:"classes"`
	Rooms    []CatalogRoom    `json:"rooms" yaml:"rooms"`
	Subjects []CatalogSubject `json:"subjects" yaml:"subjects"`
	Grades   []CatalogGrade   `json:"grades" yaml:"grades"`
}
