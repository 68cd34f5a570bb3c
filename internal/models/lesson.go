package models

import "time"

// Lesson is one weekly occupation of a time interval by a class, subject, teacher and optional room.
// A nil DraftID places the lesson in the live schedule.
type Lesson struct {
	ID        string    `db:"id" json:"id" yaml:"id"`
	DraftID   *string   `db:"draft_id" json:"draftId,omitempty" yaml:"draftId,omitempty"`
	Day       Day       `db:"day_of_week" json:"day" yaml:"day"`
	StartTime ClockTime `db:"start_time" json:"startTime" yaml:"startTime"`
	EndTime   ClockTime `db:"end_time" json:"endTime" yaml:"endTime"`
	ClassID   string    `db:"class_id" json:"classId" yaml:"classId"`
	SubjectID *string   `db:"subject_id" json:"subjectId,omitempty" yaml:"subjectId,omitempty"`
	TeacherID string    `db:"teacher_id" json:"teacherId" yaml:"teacherId"`
	RoomID    *string   `db:"room_id" json:"roomId,omitempty" yaml:"roomId,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt" yaml:"-"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt" yaml:"-"`
}

// Duration returns the lesson length in minutes.
func (l Lesson) Duration() int {
	return int(l.EndTime - l.StartTime)
}

// Live reports whether the lesson belongs to the committed schedule.
func (l Lesson) Live() bool {
	return l.DraftID == nil
}

// Subject returns the subject id or "" for placeholder blocks.
func (l Lesson) Subject() string {
	if l.SubjectID == nil {
		return ""
	}
	return *l.SubjectID
}

// Room returns the room id or "" when unassigned.
func (l Lesson) Room() string {
	if l.RoomID == nil {
		return ""
	}
	return *l.RoomID
}

// LessonFilter narrows lesson listings.
type LessonFilter struct {
	DraftID   *string
	TeacherID string
	ClassID   string
	Day       Day
}

// StringPtr returns a pointer to s, or nil for an empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
