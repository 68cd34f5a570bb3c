package timetable

import (
	"fmt"
	"sort"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

// DefaultMaxViolations caps how many violations a bulk validation reports.
const DefaultMaxViolations = 50

// ValidationReport is the outcome of validating a whole lesson set.
type ValidationReport struct {
	Violations []models.ConstraintViolation `json:"violations"`
	// Truncated is set when more violations exist than were reported.
	Truncated bool `json:"truncated"`
	// Checked counts lessons evaluated before the report was cut off.
	Checked int `json:"checked"`
}

// Valid reports whether the set had no violations.
func (r *ValidationReport) Valid() bool {
	return r != nil && len(r.Violations) == 0
}

// ValidateSet checks every lesson against every other lesson and the single-lesson rules.
//
// Lessons are evaluated in (day, start, id) order against an index of the lessons already seen, so a
// conflicting pair is reported once, on the later lesson. Structural problems in any lesson fail the
// whole call before constraint evaluation begins.
func ValidateSet(checker *Checker, lessons []models.Lesson, maxViolations int) (*ValidationReport, error) {
	if maxViolations <= 0 {
		maxViolations = DefaultMaxViolations
	}

	ordered := sortedLessons(lessons)
	resolvedByID := make(map[string]resolved, len(ordered))
	for _, lesson := range ordered {
		if lesson.ID == "" {
			return nil, appErrors.Clone(appErrors.ErrMalformedLesson, "lesson id is required")
		}
		if _, dup := resolvedByID[lesson.ID]; dup {
			return nil, appErrors.Clone(appErrors.ErrMalformedLesson, fmt.Sprintf("lesson id %s appears more than once", lesson.ID))
		}
		r, err := checker.resolve(lesson)
		if err != nil {
			return nil, err
		}
		resolvedByID[lesson.ID] = r
	}

	idx := NewIndex()
	report := &ValidationReport{}
	for _, lesson := range ordered {
		violations := checker.evaluate(idx, lesson, resolvedByID[lesson.ID], "")
		report.Checked++
		if room := maxViolations - len(report.Violations); len(violations) > room {
			report.Violations = append(report.Violations, violations[:room]...)
			report.Truncated = true
			return report, nil
		}
		report.Violations = append(report.Violations, violations...)
		if err := idx.Apply(lesson, OpAdd); err != nil {
			return nil, err
		}
	}
	return report, nil
}

func sortedLessons(lessons []models.Lesson) []models.Lesson {
	out := append([]models.Lesson(nil), lessons...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Day.Index() != b.Day.Index() {
			return a.Day.Index() < b.Day.Index()
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.ID < b.ID
	})
	return out
}
