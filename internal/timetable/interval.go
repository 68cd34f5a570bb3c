// Package timetable holds the placement-validation engine: the availability index, the constraint
// checker, the draft session that mutates a lesson set, and the replacement finder.
//
// Nothing in this package performs I/O or logging. Types are not safe for concurrent use; callers
// serialise access per draft.
package timetable

import (
	"fmt"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

// Interval is a half-open [Start, End) span within a day.
type Interval struct {
	Start models.ClockTime
	End   models.ClockTime
}

// Overlaps reports whether two half-open intervals intersect. Touching endpoints do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start < other.End && other.Start < i.End
}

// Within reports whether i lies inside outer.
func (i Interval) Within(outer Interval) bool {
	return i.Start >= outer.Start && i.End <= outer.End
}

func (i Interval) String() string {
	return fmt.Sprintf("%s-%s", i.Start, i.End)
}

// LessonInterval returns the lesson's time span.
func LessonInterval(l models.Lesson) Interval {
	return Interval{Start: l.StartTime, End: l.EndTime}
}

// checkShape rejects lessons that cannot be placed at all.
func checkShape(l models.Lesson) error {
	if l.ClassID == "" {
		return appErrors.Clone(appErrors.ErrMalformedLesson, "lesson class id is required")
	}
	if l.TeacherID == "" {
		return appErrors.Clone(appErrors.ErrMalformedLesson, "lesson teacher id is required")
	}
	if !l.Day.Valid() {
		return appErrors.Clone(appErrors.ErrMalformedLesson, fmt.Sprintf("unknown day %q", l.Day))
	}
	if l.EndTime <= l.StartTime {
		return appErrors.Clone(appErrors.ErrMalformedLesson, fmt.Sprintf("lesson %s ends at %s, not after its start %s", l.ID, l.EndTime, l.StartTime))
	}
	return nil
}
