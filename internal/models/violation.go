package models

// ViolationKind tags the hard constraint a placement breaks.
type ViolationKind string

const (
	ViolationTeacherConflict ViolationKind = "TEACHER_CONFLICT"
	ViolationClassConflict   ViolationKind = "CLASS_CONFLICT"
	ViolationRoomConflict    ViolationKind = "ROOM_CONFLICT"
	ViolationUnqualified     ViolationKind = "UNQUALIFIED"
	ViolationOverCapacity    ViolationKind = "OVER_CAPACITY"
	ViolationOutOfWindow     ViolationKind = "OUT_OF_WINDOW"
)

// ConstraintViolation explains why a proposed placement is not allowed.
type ConstraintViolation struct {
	Kind                 ViolationKind `json:"kind" yaml:"kind"`
	Message              string        `json:"message" yaml:"message"`
	LessonID             string        `json:"lessonId,omitempty" yaml:"lessonId,omitempty"`
	EntityID             string        `json:"entityId,omitempty" yaml:"entityId,omitempty"`
	ConflictingLessonIDs []string      `json:"conflictingLessonIds,omitempty" yaml:"conflictingLessonIds,omitempty"`
}

// HasViolation reports whether any violation in the list has the given kind.
func HasViolation(list []ConstraintViolation, kind ViolationKind) bool {
	for _, v := range list {
		if v.Kind == kind {
			return true
		}
	}
	return false
}
