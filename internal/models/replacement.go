package models

// SolutionKind classifies a remedy for a teacher absence.
type SolutionKind string

const (
	SolutionSubstitution SolutionKind = "internal_substitution"
	SolutionSplit        SolutionKind = "split"
	SolutionCancel       SolutionKind = "cancel"
	SolutionNoAction     SolutionKind = "no_action"
)

// Impact rates how disruptive a solution is for students.
type Impact string

const (
	ImpactLow    Impact = "low"
	ImpactMedium Impact = "medium"
	ImpactHigh   Impact = "high"
)

// Rank orders impacts from least to most disruptive.
func (i Impact) Rank() int {
	switch i {
	case ImpactLow:
		return 0
	case ImpactMedium:
		return 1
	default:
		return 2
	}
}

// AssignmentMode describes how one affected lesson is covered.
type AssignmentMode string

const (
	AssignmentSubstitute AssignmentMode = "substitute"
	AssignmentMerge      AssignmentMode = "merge"
	AssignmentSupervise  AssignmentMode = "supervise"
	AssignmentCancel     AssignmentMode = "cancel"
)

// LessonAssignment is the proposed handling of one affected lesson.
type LessonAssignment struct {
	LessonID       string         `json:"lessonId" yaml:"lessonId"`
	Mode           AssignmentMode `json:"mode" yaml:"mode"`
	TeacherID      *string        `json:"teacherId,omitempty" yaml:"teacherId,omitempty"`
	MergedLessonID *string        `json:"mergedLessonId,omitempty" yaml:"mergedLessonId,omitempty"`
}

// SolutionSource tells whether a solution was template-generated or advisor-proposed.
type SolutionSource string

const (
	SourceTemplate SolutionSource = "template"
	SourceAdvisor  SolutionSource = "advisor"
)

// ReplacementSolution is a proposed remedy for an absent teacher. It is never persisted.
type ReplacementSolution struct {
	Kind                 SolutionKind       `json:"kind" yaml:"kind"`
	Description          string             `json:"description" yaml:"description"`
	Impact               Impact             `json:"impact" yaml:"impact"`
	Conflicts            []string           `json:"conflicts" yaml:"conflicts"`
	ReplacementTeacherID *string            `json:"replacementTeacherId,omitempty" yaml:"replacementTeacherId,omitempty"`
	AffectedLessons      []Lesson           `json:"affectedLessons" yaml:"affectedLessons"`
	Assignments          []LessonAssignment `json:"assignments" yaml:"assignments"`
	Source               SolutionSource     `json:"source" yaml:"source"`
}
