package dto

import "github.com/noah-isme/sma-timetable-api/internal/models"

// LessonInput describes a lesson placement.
type LessonInput struct {
	Day       models.Day       `json:"day" validate:"required"`
	StartTime models.ClockTime `json:"startTime"`
	EndTime   models.ClockTime `json:"endTime"`
	ClassID   string           `json:"classId" validate:"required"`
	SubjectID *string          `json:"subjectId"`
	TeacherID string           `json:"teacherId" validate:"required"`
	RoomID    *string          `json:"roomId"`
}

// Lesson converts the input to a model without id or draft.
func (in LessonInput) Lesson() models.Lesson {
	return models.Lesson{
		Day:       in.Day,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		ClassID:   in.ClassID,
		SubjectID: emptyToNil(in.SubjectID),
		TeacherID: in.TeacherID,
		RoomID:    emptyToNil(in.RoomID),
	}
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

// AddLessonRequest places a new lesson in a draft.
type AddLessonRequest struct {
	Revision int64 `json:"revision" validate:"min=0"`
	LessonInput
}

// MoveLessonRequest moves a lesson to another day or interval.
type MoveLessonRequest struct {
	Revision  int64            `json:"revision" validate:"min=0"`
	Day       models.Day       `json:"day" validate:"required"`
	StartTime models.ClockTime `json:"startTime"`
	EndTime   models.ClockTime `json:"endTime"`
}

// ReassignRoomRequest changes or clears a lesson's room.
type ReassignRoomRequest struct {
	Revision int64   `json:"revision" validate:"min=0"`
	RoomID   *string `json:"roomId"`
}

// ReplaceLessonsRequest swaps a draft's lesson set atomically.
type ReplaceLessonsRequest struct {
	Revision int64         `json:"revision" validate:"min=0"`
	Lessons  []LessonInput `json:"lessons" validate:"dive"`
}

// MutationResponse is returned by every single-lesson mutation. Accepted false carries violations.
type MutationResponse struct {
	Accepted   bool                         `json:"accepted"`
	Lesson     *models.Lesson               `json:"lesson,omitempty"`
	Violations []models.ConstraintViolation `json:"violations"`
	Revision   int64                        `json:"revision"`
}
