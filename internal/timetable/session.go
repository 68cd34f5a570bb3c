package timetable

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

// Outcome is the result of a single-lesson mutation. A non-empty Violations list means the mutation was
// rejected and nothing changed.
type Outcome struct {
	Lesson     *models.Lesson               `json:"lesson,omitempty"`
	Violations []models.ConstraintViolation `json:"violations,omitempty"`
	Revision   int64                        `json:"revision"`
}

// Accepted reports whether the mutation was applied.
func (o *Outcome) Accepted() bool {
	return o != nil && len(o.Violations) == 0
}

// Session owns one draft's lesson set together with its incrementally maintained availability index.
// It is the only place draft lessons change; every mutation is all-or-nothing.
type Session struct {
	draftID       string
	revision      int64
	checker       *Checker
	lessons       map[string]models.Lesson
	index         *AvailabilityIndex
	newID         func() string
	now           func() time.Time
	maxViolations int
}

// SessionOption customises a Session.
type SessionOption func(*Session)

// WithIDGenerator overrides lesson id generation.
func WithIDGenerator(fn func() string) SessionOption {
	return func(s *Session) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(fn func() time.Time) SessionOption {
	return func(s *Session) {
		if fn != nil {
			s.now = fn
		}
	}
}

// WithMaxViolations caps violations reported by bulk validation.
func WithMaxViolations(n int) SessionOption {
	return func(s *Session) {
		if n > 0 {
			s.maxViolations = n
		}
	}
}

// NewSession loads a draft's lessons. The lesson set is indexed as-is; it is not required to be
// conflict-free, since drafts may hold invalid states until validated.
func NewSession(draftID string, revision int64, catalog *Catalog, config models.DraftConfig, lessons []models.Lesson, opts ...SessionOption) (*Session, error) {
	s := &Session{
		draftID:       draftID,
		revision:      revision,
		checker:       NewChecker(catalog, config),
		lessons:       make(map[string]models.Lesson, len(lessons)),
		newID:         func() string { return uuid.NewString() },
		now:           time.Now,
		maxViolations: DefaultMaxViolations,
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, lesson := range lessons {
		if lesson.ID == "" {
			return nil, appErrors.Clone(appErrors.ErrMalformedLesson, "lesson id is required")
		}
		if _, dup := s.lessons[lesson.ID]; dup {
			return nil, appErrors.Clone(appErrors.ErrMalformedLesson, fmt.Sprintf("lesson id %s appears more than once", lesson.ID))
		}
		s.lessons[lesson.ID] = lesson
	}
	idx, err := Build(lessons)
	if err != nil {
		return nil, err
	}
	s.index = idx
	return s, nil
}

// DraftID returns the draft the session belongs to.
func (s *Session) DraftID() string { return s.draftID }

// Revision returns the current optimistic-concurrency token.
func (s *Session) Revision() int64 { return s.revision }

// Checker exposes the constraint checker bound to this session.
func (s *Session) Checker() *Checker { return s.checker }

// Index returns the live index. Callers must not mutate it.
func (s *Session) Index() *AvailabilityIndex { return s.index }

// Lessons returns the lesson set ordered by day, start time and id.
func (s *Session) Lessons() []models.Lesson {
	out := make([]models.Lesson, 0, len(s.lessons))
	for _, l := range s.lessons {
		out = append(out, l)
	}
	return sortedLessons(out)
}

// Lesson looks up a lesson by id.
func (s *Session) Lesson(id string) (models.Lesson, bool) {
	l, ok := s.lessons[id]
	return l, ok
}

// IsFree answers an availability query against the current lesson set.
func (s *Session) IsFree(kind EntityKind, id string, day models.Day, start, end models.ClockTime) bool {
	return s.index.IsFree(kind, id, day, start, end)
}

func (s *Session) expect(revision int64) error {
	if revision != s.revision {
		return appErrors.Clone(appErrors.ErrRevisionConflict, fmt.Sprintf("draft %s is at revision %d, not %d", s.draftID, s.revision, revision))
	}
	return nil
}

func (s *Session) lookup(id string) (models.Lesson, error) {
	l, ok := s.lessons[id]
	if !ok {
		return models.Lesson{}, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("lesson %s not found in draft %s", id, s.draftID))
	}
	return l, nil
}

func (s *Session) rejected(violations []models.ConstraintViolation) *Outcome {
	return &Outcome{Violations: violations, Revision: s.revision}
}

func (s *Session) accepted(lesson models.Lesson) *Outcome {
	s.revision++
	return &Outcome{Lesson: &lesson, Revision: s.revision}
}

// AddLesson places a new lesson. On success the lesson receives a fresh id.
func (s *Session) AddLesson(revision int64, proposed models.Lesson) (*Outcome, error) {
	if err := s.expect(revision); err != nil {
		return nil, err
	}
	proposed.ID = ""
	violations, err := s.checker.Check(s.index, proposed, "")
	if err != nil {
		return nil, err
	}
	if len(violations) > 0 {
		return s.rejected(violations), nil
	}

	lesson := proposed
	lesson.ID = s.newID()
	lesson.DraftID = models.StringPtr(s.draftID)
	lesson.CreatedAt = s.now()
	lesson.UpdatedAt = lesson.CreatedAt
	if err := s.index.Apply(lesson, OpAdd); err != nil {
		return nil, err
	}
	s.lessons[lesson.ID] = lesson
	return s.accepted(lesson), nil
}

// MoveLesson changes a lesson's day and interval. The lesson's own current placement never counts as
// a conflict.
func (s *Session) MoveLesson(revision int64, lessonID string, day models.Day, start, end models.ClockTime) (*Outcome, error) {
	if err := s.expect(revision); err != nil {
		return nil, err
	}
	current, err := s.lookup(lessonID)
	if err != nil {
		return nil, err
	}
	moved := current
	moved.Day = day
	moved.StartTime = start
	moved.EndTime = end

	violations, err := s.checker.Check(s.index, moved, lessonID)
	if err != nil {
		return nil, err
	}
	if len(violations) > 0 {
		return s.rejected(violations), nil
	}
	moved.UpdatedAt = s.now()
	if err := s.replace(current, moved); err != nil {
		return nil, err
	}
	return s.accepted(moved), nil
}

// ReassignRoom sets or clears a lesson's room. Only room conflicts and capacity are evaluated.
func (s *Session) ReassignRoom(revision int64, lessonID string, roomID *string) (*Outcome, error) {
	if err := s.expect(revision); err != nil {
		return nil, err
	}
	current, err := s.lookup(lessonID)
	if err != nil {
		return nil, err
	}
	updated := current
	updated.RoomID = nil
	if roomID != nil && *roomID != "" {
		room := *roomID
		updated.RoomID = &room
	}

	violations, err := s.checker.CheckRoom(s.index, updated, lessonID)
	if err != nil {
		return nil, err
	}
	if len(violations) > 0 {
		return s.rejected(violations), nil
	}
	updated.UpdatedAt = s.now()
	if err := s.replace(current, updated); err != nil {
		return nil, err
	}
	return s.accepted(updated), nil
}

// RemoveLesson deletes a lesson. Removal never creates conflicts.
func (s *Session) RemoveLesson(revision int64, lessonID string) (*Outcome, error) {
	if err := s.expect(revision); err != nil {
		return nil, err
	}
	current, err := s.lookup(lessonID)
	if err != nil {
		return nil, err
	}
	if err := s.index.Apply(current, OpRemove); err != nil {
		return nil, err
	}
	delete(s.lessons, lessonID)
	return s.accepted(current), nil
}

// ReplaceAll swaps the whole lesson set after validating it pairwise. Lessons without an id get one.
// A report with violations means nothing was replaced.
func (s *Session) ReplaceAll(revision int64, lessons []models.Lesson) (*ValidationReport, error) {
	if err := s.expect(revision); err != nil {
		return nil, err
	}
	now := s.now()
	batch := make([]models.Lesson, len(lessons))
	for i, l := range lessons {
		if l.ID == "" {
			l.ID = s.newID()
			l.CreatedAt = now
		}
		l.DraftID = models.StringPtr(s.draftID)
		l.UpdatedAt = now
		batch[i] = l
	}

	report, err := ValidateSet(s.checker, batch, s.maxViolations)
	if err != nil {
		return nil, err
	}
	if !report.Valid() {
		return report, nil
	}
	idx, err := Build(batch)
	if err != nil {
		return nil, err
	}
	s.index = idx
	s.lessons = make(map[string]models.Lesson, len(batch))
	for _, l := range batch {
		s.lessons[l.ID] = l
	}
	s.revision++
	return report, nil
}

// Validate runs full pairwise validation over the current lesson set without changing it.
func (s *Session) Validate() (*ValidationReport, error) {
	return ValidateSet(s.checker, s.Lessons(), s.maxViolations)
}

// replace swaps one lesson's placement in both the index and the lesson map. The removal is
// checked before anything is written.
func (s *Session) replace(current, next models.Lesson) error {
	if err := s.index.Apply(current, OpRemove); err != nil {
		return err
	}
	if err := s.index.Apply(next, OpAdd); err != nil {
		// restore so the index still matches the lesson map
		_ = s.index.Apply(current, OpAdd)
		return err
	}
	s.lessons[next.ID] = next
	return nil
}

