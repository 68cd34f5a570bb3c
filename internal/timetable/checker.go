package timetable

import (
	"fmt"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

// Checker evaluates hard constraints for a proposed placement against an index and catalog.
type Checker struct {
	catalog *Catalog
	config  models.DraftConfig
}

// NewChecker binds a catalog and configuration snapshot.
func NewChecker(catalog *Catalog, config models.DraftConfig) *Checker {
	return &Checker{catalog: catalog, config: config}
}

// Catalog returns the catalog the checker resolves ids against.
func (c *Checker) Catalog() *Catalog {
	return c.catalog
}

// Config returns the configuration snapshot.
func (c *Checker) Config() models.DraftConfig {
	return c.config
}

type resolved struct {
	teacher models.CatalogTeacher
	class   models.CatalogClass
	room    *models.CatalogRoom
}

// resolve looks up every id the lesson references. Unknown ids are structural errors.
func (c *Checker) resolve(l models.Lesson) (resolved, error) {
	var r resolved
	if err := checkShape(l); err != nil {
		return r, err
	}
	teacher, ok := c.catalog.Teacher(l.TeacherID)
	if !ok {
		return r, unknownEntity("teacher", l.TeacherID)
	}
	class, ok := c.catalog.Class(l.ClassID)
	if !ok {
		return r, unknownEntity("class", l.ClassID)
	}
	if subject := l.Subject(); subject != "" {
		if _, ok := c.catalog.Subject(subject); !ok {
			return r, unknownEntity("subject", subject)
		}
	}
	r.teacher = teacher
	r.class = class
	if roomID := l.Room(); roomID != "" {
		room, ok := c.catalog.Room(roomID)
		if !ok {
			return r, unknownEntity("room", roomID)
		}
		r.room = &room
	}
	return r, nil
}

func unknownEntity(kind, id string) error {
	return appErrors.Clone(appErrors.ErrUnknownEntity, fmt.Sprintf("%s %s is not in the catalog", kind, id))
}

// Check returns every violated constraint for placing l. excludeID names a lesson whose current
// placement is ignored, normally l's own id when moving it.
func (c *Checker) Check(idx *AvailabilityIndex, l models.Lesson, excludeID string) ([]models.ConstraintViolation, error) {
	r, err := c.resolve(l)
	if err != nil {
		return nil, err
	}
	return c.evaluate(idx, l, r, excludeID), nil
}

func (c *Checker) evaluate(idx *AvailabilityIndex, l models.Lesson, r resolved, excludeID string) []models.ConstraintViolation {
	var violations []models.ConstraintViolation
	violations = append(violations, c.teacherConflict(idx, l, excludeID)...)
	violations = append(violations, c.classConflict(idx, l, excludeID)...)
	violations = append(violations, c.roomConflict(idx, l, excludeID)...)
	violations = append(violations, c.qualification(l, r.teacher)...)
	violations = append(violations, c.capacity(l, r)...)
	violations = append(violations, c.window(l)...)
	return violations
}

// CheckRoom evaluates only the room constraints, for room reassignment.
func (c *Checker) CheckRoom(idx *AvailabilityIndex, l models.Lesson, excludeID string) ([]models.ConstraintViolation, error) {
	r, err := c.resolve(l)
	if err != nil {
		return nil, err
	}
	var violations []models.ConstraintViolation
	violations = append(violations, c.roomConflict(idx, l, excludeID)...)
	violations = append(violations, c.capacity(l, r)...)
	return violations, nil
}

// CheckTeacher evaluates teacher availability and qualification, for substitutions.
func (c *Checker) CheckTeacher(idx *AvailabilityIndex, l models.Lesson, excludeID string) ([]models.ConstraintViolation, error) {
	r, err := c.resolve(l)
	if err != nil {
		return nil, err
	}
	var violations []models.ConstraintViolation
	violations = append(violations, c.teacherConflict(idx, l, excludeID)...)
	violations = append(violations, c.qualification(l, r.teacher)...)
	return violations, nil
}

func (c *Checker) teacherConflict(idx *AvailabilityIndex, l models.Lesson, excludeID string) []models.ConstraintViolation {
	ids := idx.Conflicts(EntityTeacher, l.TeacherID, l.Day, LessonInterval(l), excludeID)
	if len(ids) == 0 {
		return nil
	}
	return []models.ConstraintViolation{{
		Kind:                 models.ViolationTeacherConflict,
		Message:              fmt.Sprintf("teacher %s is already teaching on %s %s", l.TeacherID, l.Day, LessonInterval(l)),
		LessonID:             l.ID,
		EntityID:             l.TeacherID,
		ConflictingLessonIDs: ids,
	}}
}

func (c *Checker) classConflict(idx *AvailabilityIndex, l models.Lesson, excludeID string) []models.ConstraintViolation {
	ids := idx.Conflicts(EntityClass, l.ClassID, l.Day, LessonInterval(l), excludeID)
	if len(ids) == 0 {
		return nil
	}
	return []models.ConstraintViolation{{
		Kind:                 models.ViolationClassConflict,
		Message:              fmt.Sprintf("class %s already has a lesson on %s %s", l.ClassID, l.Day, LessonInterval(l)),
		LessonID:             l.ID,
		EntityID:             l.ClassID,
		ConflictingLessonIDs: ids,
	}}
}

func (c *Checker) roomConflict(idx *AvailabilityIndex, l models.Lesson, excludeID string) []models.ConstraintViolation {
	room := l.Room()
	if room == "" {
		return nil
	}
	ids := idx.Conflicts(EntityRoom, room, l.Day, LessonInterval(l), excludeID)
	if len(ids) == 0 {
		return nil
	}
	return []models.ConstraintViolation{{
		Kind:                 models.ViolationRoomConflict,
		Message:              fmt.Sprintf("room %s is booked on %s %s", room, l.Day, LessonInterval(l)),
		LessonID:             l.ID,
		EntityID:             room,
		ConflictingLessonIDs: ids,
	}}
}

func (c *Checker) qualification(l models.Lesson, teacher models.CatalogTeacher) []models.ConstraintViolation {
	subject := l.Subject()
	if subject == "" || teacher.Qualified(subject) {
		return nil
	}
	return []models.ConstraintViolation{{
		Kind:     models.ViolationUnqualified,
		Message:  fmt.Sprintf("teacher %s is not qualified to teach subject %s", teacher.ID, subject),
		LessonID: l.ID,
		EntityID: teacher.ID,
	}}
}

func (c *Checker) capacity(l models.Lesson, r resolved) []models.ConstraintViolation {
	if r.room == nil || r.room.Capacity >= r.class.EnrolledCount {
		return nil
	}
	return []models.ConstraintViolation{{
		Kind:     models.ViolationOverCapacity,
		Message:  fmt.Sprintf("room %s seats %d but class %s has %d students", r.room.ID, r.room.Capacity, r.class.ID, r.class.EnrolledCount),
		LessonID: l.ID,
		EntityID: r.room.ID,
	}}
}

func (c *Checker) window(l models.Lesson) []models.ConstraintViolation {
	var violations []models.ConstraintViolation
	if len(c.config.SchoolDays) > 0 && !c.config.IsSchoolDay(l.Day) {
		violations = append(violations, models.ConstraintViolation{
			Kind:     models.ViolationOutOfWindow,
			Message:  fmt.Sprintf("%s is not a school day", l.Day),
			LessonID: l.ID,
		})
	}
	window := Interval{Start: c.config.DayStart, End: c.config.DayEnd}
	if window.End > window.Start && !LessonInterval(l).Within(window) {
		violations = append(violations, models.ConstraintViolation{
			Kind:     models.ViolationOutOfWindow,
			Message:  fmt.Sprintf("lesson %s falls outside the school day %s", LessonInterval(l), window),
			LessonID: l.ID,
		})
	}
	return violations
}
