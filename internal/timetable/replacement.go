package timetable

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

// AdvisorRequest is the context handed to an external replacement advisor.
type AdvisorRequest struct {
	AbsentTeacher models.CatalogTeacher
	Date          time.Time
	Day           models.Day
	Lessons       []models.Lesson
	// Candidates maps an affected lesson id to the ranked ids of qualified, free teachers.
	Candidates map[string][]string
	Teachers   []models.CatalogTeacher
}

// AdvisorProposal is one externally generated solution. It is untrusted until re-validated.
type AdvisorProposal struct {
	Description string                    `json:"description"`
	Impact      models.Impact             `json:"impact"`
	Assignments []models.LessonAssignment `json:"assignments"`
}

// Advisor proposes additional replacement solutions, typically backed by a language model.
type Advisor interface {
	Propose(ctx context.Context, req AdvisorRequest) ([]AdvisorProposal, error)
}

// RejectedProposal records an advisor proposal that failed re-validation.
type RejectedProposal struct {
	Proposal   AdvisorProposal              `json:"proposal"`
	Reason     string                       `json:"reason"`
	Violations []models.ConstraintViolation `json:"violations,omitempty"`
}

// LessonCandidates lists the ranked substitutes for one affected lesson.
type LessonCandidates struct {
	LessonID   string   `json:"lessonId"`
	TeacherIDs []string `json:"teacherIds"`
}

// FindRequest names an absent teacher and the date of the absence.
type FindRequest struct {
	AbsentTeacherID string
	Date            time.Time
}

// FindResult carries the ranked solutions for an absence.
type FindResult struct {
	AbsentTeacherID string                       `json:"absentTeacherId"`
	Date            string                       `json:"date"`
	Day             models.Day                   `json:"day"`
	Solutions       []models.ReplacementSolution `json:"solutions"`
	Candidates      []LessonCandidates           `json:"candidates"`
	Rejected        []RejectedProposal           `json:"rejected,omitempty"`
	// AdvisorErr is set when the advisor failed; template solutions are still returned.
	AdvisorErr error `json:"-"`
}

// Finder answers replacement queries over a fixed lesson set.
type Finder struct {
	checker *Checker
	lessons []models.Lesson
	index   *AvailabilityIndex
	minutes map[string]int
	advisor Advisor
}

// FinderOption customises a Finder.
type FinderOption func(*Finder)

// WithAdvisor consults an external advisor after template solutions are built.
func WithAdvisor(advisor Advisor) FinderOption {
	return func(f *Finder) {
		f.advisor = advisor
	}
}

// NewFinder indexes the lesson set the replacement queries run against.
func NewFinder(catalog *Catalog, config models.DraftConfig, lessons []models.Lesson, opts ...FinderOption) (*Finder, error) {
	idx, err := Build(lessons)
	if err != nil {
		return nil, err
	}
	f := &Finder{
		checker: NewChecker(catalog, config),
		lessons: sortedLessons(lessons),
		index:   idx,
		minutes: make(map[string]int),
	}
	for _, l := range lessons {
		f.minutes[l.TeacherID] += l.Duration()
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

var kindOrder = map[models.SolutionKind]int{
	models.SolutionNoAction:     0,
	models.SolutionSubstitution: 1,
	models.SolutionSplit:        2,
	models.SolutionCancel:       3,
}

// Find resolves the weekday of the absence and builds ranked solutions covering every lesson the
// absent teacher has on that weekday.
func (f *Finder) Find(ctx context.Context, req FindRequest) (*FindResult, error) {
	if req.Date.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "absence date is required")
	}
	absent, ok := f.checker.catalog.Teacher(req.AbsentTeacherID)
	if !ok {
		return nil, unknownEntity("teacher", req.AbsentTeacherID)
	}

	day := models.DayOf(req.Date)
	result := &FindResult{
		AbsentTeacherID: absent.ID,
		Date:            req.Date.Format("2006-01-02"),
		Day:             day,
	}

	var affected []models.Lesson
	for _, l := range f.lessons {
		if l.TeacherID == absent.ID && l.Day == day {
			affected = append(affected, l)
		}
	}
	if len(affected) == 0 {
		result.Solutions = []models.ReplacementSolution{{
			Kind:            models.SolutionNoAction,
			Description:     fmt.Sprintf("%s has no lessons on %s; no action needed", teacherLabel(absent), day),
			Impact:          models.ImpactLow,
			Conflicts:       []string{},
			AffectedLessons: []models.Lesson{},
			Assignments:     []models.LessonAssignment{},
			Source:          models.SourceTemplate,
		}}
		result.Candidates = []LessonCandidates{}
		return result, nil
	}

	// A lesson whose class, subject or room is outside the catalog cannot be ranked meaningfully.
	for _, l := range affected {
		if _, err := f.checker.resolve(l); err != nil {
			return nil, err
		}
	}

	candidates := make(map[string][]string, len(affected))
	for _, l := range affected {
		ranked := f.rankCandidates(f.index, l, absent.ID, f.minutes, true)
		candidates[l.ID] = ranked
		result.Candidates = append(result.Candidates, LessonCandidates{LessonID: l.ID, TeacherIDs: nonNil(ranked)})
	}

	if sol, ok := f.substitution(affected, absent); ok {
		result.Solutions = append(result.Solutions, sol)
	}
	if sol, ok := f.split(affected, absent); ok {
		result.Solutions = append(result.Solutions, sol)
	}
	result.Solutions = append(result.Solutions, f.cancel(affected, absent))

	if f.advisor != nil {
		f.consultAdvisor(ctx, req, absent, affected, candidates, result)
	}

	sort.SliceStable(result.Solutions, func(i, j int) bool {
		a, b := result.Solutions[i], result.Solutions[j]
		if a.Impact.Rank() != b.Impact.Rank() {
			return a.Impact.Rank() < b.Impact.Rank()
		}
		return kindOrder[a.Kind] < kindOrder[b.Kind]
	})
	return result, nil
}

// rankCandidates returns teachers able to take over l, fewest weekly minutes first, ties by id.
// When qualified is false any free teacher counts, as for a supervised study period. l must already
// resolve against the catalog; candidates come from the catalog, so CheckTeacher cannot fail on them.
func (f *Finder) rankCandidates(idx *AvailabilityIndex, l models.Lesson, absentID string, load map[string]int, qualified bool) []string {
	probe := l
	if !qualified {
		probe.SubjectID = nil
	}
	var ids []string
	for _, t := range f.checker.catalog.Teachers() {
		if t.ID == absentID {
			continue
		}
		probe.TeacherID = t.ID
		violations, err := f.checker.CheckTeacher(idx, probe, l.ID)
		if err != nil || len(violations) > 0 {
			continue
		}
		ids = append(ids, t.ID)
	}
	sort.SliceStable(ids, func(i, j int) bool {
		if load[ids[i]] != load[ids[j]] {
			return load[ids[i]] < load[ids[j]]
		}
		return ids[i] < ids[j]
	})
	return ids
}

// reassign swaps l's teacher on a hypothetical index.
func reassign(idx *AvailabilityIndex, l models.Lesson, teacherID string, keepSubject bool) (*AvailabilityIndex, error) {
	next, err := idx.WithLessonApplied(l, OpRemove)
	if err != nil {
		return nil, err
	}
	covered := l
	covered.TeacherID = teacherID
	if !keepSubject {
		covered.SubjectID = nil
	}
	return next.WithLessonApplied(covered, OpAdd)
}

func copyLoad(src map[string]int) map[string]int {
	out := make(map[string]int, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func (f *Finder) substitution(affected []models.Lesson, absent models.CatalogTeacher) (models.ReplacementSolution, bool) {
	idx := f.index
	load := copyLoad(f.minutes)
	var (
		assignments []models.LessonAssignment
		conflicts   []string
		parts       []string
		used        = map[string]struct{}{}
		covered     int
	)
	for _, l := range affected {
		ranked := f.rankCandidates(idx, l, absent.ID, load, true)
		if len(ranked) == 0 {
			assignments = append(assignments, models.LessonAssignment{LessonID: l.ID, Mode: models.AssignmentCancel})
			conflicts = append(conflicts, fmt.Sprintf("no qualified teacher is free for %s; lesson cancelled", lessonLabel(l)))
			continue
		}
		pick := ranked[0]
		next, err := reassign(idx, l, pick, true)
		if err != nil {
			conflicts = append(conflicts, err.Error())
			continue
		}
		idx = next
		load[pick] += l.Duration()
		used[pick] = struct{}{}
		covered++
		assignments = append(assignments, models.LessonAssignment{LessonID: l.ID, Mode: models.AssignmentSubstitute, TeacherID: models.StringPtr(pick)})
		parts = append(parts, fmt.Sprintf("%s covers %s", f.teacherName(pick), lessonLabel(l)))
	}
	if covered == 0 {
		return models.ReplacementSolution{}, false
	}

	sol := models.ReplacementSolution{
		Kind:            models.SolutionSubstitution,
		Description:     fmt.Sprintf("Internal substitution for %s: %s", teacherLabel(absent), strings.Join(parts, "; ")),
		Impact:          models.ImpactLow,
		Conflicts:       nonNil(conflicts),
		AffectedLessons: affected,
		Assignments:     assignments,
		Source:          models.SourceTemplate,
	}
	if covered < len(affected) {
		sol.Impact = models.ImpactMedium
	}
	if len(used) == 1 && covered == len(affected) {
		for id := range used {
			sol.ReplacementTeacherID = models.StringPtr(id)
		}
	}
	return sol, true
}

// split merges each lesson into a same-grade class taking the same subject at the same time, or falls
// back to a supervised study period.
func (f *Finder) split(affected []models.Lesson, absent models.CatalogTeacher) (models.ReplacementSolution, bool) {
	idx := f.index
	load := copyLoad(f.minutes)
	var (
		assignments []models.LessonAssignment
		conflicts   []string
		parts       []string
		handled     int
	)
	for _, l := range affected {
		if partner, ok := f.mergePartner(l, absent.ID); ok {
			handled++
			assignments = append(assignments, models.LessonAssignment{
				LessonID:       l.ID,
				Mode:           models.AssignmentMerge,
				TeacherID:      models.StringPtr(partner.TeacherID),
				MergedLessonID: models.StringPtr(partner.ID),
			})
			parts = append(parts, fmt.Sprintf("%s joins class %s under %s", lessonLabel(l), partner.ClassID, f.teacherName(partner.TeacherID)))
			continue
		}
		ranked := f.rankCandidates(idx, l, absent.ID, load, false)
		if len(ranked) == 0 {
			assignments = append(assignments, models.LessonAssignment{LessonID: l.ID, Mode: models.AssignmentCancel})
			conflicts = append(conflicts, fmt.Sprintf("no teacher is free to supervise %s; lesson cancelled", lessonLabel(l)))
			continue
		}
		pick := ranked[0]
		next, err := reassign(idx, l, pick, false)
		if err != nil {
			conflicts = append(conflicts, err.Error())
			continue
		}
		idx = next
		load[pick] += l.Duration()
		handled++
		assignments = append(assignments, models.LessonAssignment{LessonID: l.ID, Mode: models.AssignmentSupervise, TeacherID: models.StringPtr(pick)})
		parts = append(parts, fmt.Sprintf("%s becomes a study period supervised by %s", lessonLabel(l), f.teacherName(pick)))
		conflicts = append(conflicts, fmt.Sprintf("%s is supervised, not taught", lessonLabel(l)))
	}
	if handled == 0 {
		return models.ReplacementSolution{}, false
	}
	return models.ReplacementSolution{
		Kind:            models.SolutionSplit,
		Description:     fmt.Sprintf("Split cover for %s: %s", teacherLabel(absent), strings.Join(parts, "; ")),
		Impact:          models.ImpactMedium,
		Conflicts:       nonNil(conflicts),
		AffectedLessons: affected,
		Assignments:     assignments,
		Source:          models.SourceTemplate,
	}, true
}

// mergePartner finds a lesson of the same subject and interval in another class of the same grade whose
// room, if any, seats both classes.
func (f *Finder) mergePartner(l models.Lesson, absentID string) (models.Lesson, bool) {
	subject := l.Subject()
	if subject == "" {
		return models.Lesson{}, false
	}
	class, ok := f.checker.catalog.Class(l.ClassID)
	if !ok || class.GradeID == "" {
		return models.Lesson{}, false
	}
	for _, other := range f.lessons {
		if other.ID == l.ID || other.TeacherID == absentID || other.ClassID == l.ClassID {
			continue
		}
		if other.Day != l.Day || other.StartTime != l.StartTime || other.EndTime != l.EndTime || other.Subject() != subject {
			continue
		}
		otherClass, ok := f.checker.catalog.Class(other.ClassID)
		if !ok || otherClass.GradeID != class.GradeID {
			continue
		}
		if roomID := other.Room(); roomID != "" {
			room, ok := f.checker.catalog.Room(roomID)
			if !ok || room.Capacity < class.EnrolledCount+otherClass.EnrolledCount {
				continue
			}
		}
		return other, true
	}
	return models.Lesson{}, false
}

func (f *Finder) cancel(affected []models.Lesson, absent models.CatalogTeacher) models.ReplacementSolution {
	assignments := make([]models.LessonAssignment, 0, len(affected))
	classes := make([]string, 0, len(affected))
	seen := map[string]struct{}{}
	for _, l := range affected {
		assignments = append(assignments, models.LessonAssignment{LessonID: l.ID, Mode: models.AssignmentCancel})
		if _, ok := seen[l.ClassID]; !ok {
			seen[l.ClassID] = struct{}{}
			classes = append(classes, l.ClassID)
		}
	}
	return models.ReplacementSolution{
		Kind:            models.SolutionCancel,
		Description:     fmt.Sprintf("Cancel %d lesson(s) taught by %s", len(affected), teacherLabel(absent)),
		Impact:          models.ImpactHigh,
		Conflicts:       []string{fmt.Sprintf("classes %s lose teaching time", strings.Join(classes, ", "))},
		AffectedLessons: affected,
		Assignments:     assignments,
		Source:          models.SourceTemplate,
	}
}

func (f *Finder) consultAdvisor(ctx context.Context, req FindRequest, absent models.CatalogTeacher, affected []models.Lesson, candidates map[string][]string, result *FindResult) {
	proposals, err := f.advisor.Propose(ctx, AdvisorRequest{
		AbsentTeacher: absent,
		Date:          req.Date,
		Day:           result.Day,
		Lessons:       affected,
		Candidates:    candidates,
		Teachers:      f.checker.catalog.Teachers(),
	})
	if err != nil {
		result.AdvisorErr = err
		return
	}
	for _, p := range proposals {
		sol, rejection := f.revalidate(p, absent, affected)
		if rejection != nil {
			result.Rejected = append(result.Rejected, *rejection)
			continue
		}
		result.Solutions = append(result.Solutions, sol)
	}
}

// revalidate replays an advisor proposal on a hypothetical index through the constraint checker.
func (f *Finder) revalidate(p AdvisorProposal, absent models.CatalogTeacher, affected []models.Lesson) (models.ReplacementSolution, *RejectedProposal) {
	reject := func(reason string, violations []models.ConstraintViolation) (models.ReplacementSolution, *RejectedProposal) {
		return models.ReplacementSolution{}, &RejectedProposal{Proposal: p, Reason: reason, Violations: violations}
	}

	byID := make(map[string]models.Lesson, len(affected))
	for _, l := range affected {
		byID[l.ID] = l
	}
	if len(p.Assignments) == 0 {
		return reject("proposal has no assignments", nil)
	}

	idx := f.index
	covered := map[string]struct{}{}
	modes := map[models.AssignmentMode]int{}
	var conflicts []string
	for _, a := range p.Assignments {
		l, ok := byID[a.LessonID]
		if !ok {
			return reject(fmt.Sprintf("lesson %s is not an affected lesson of %s", a.LessonID, absent.ID), nil)
		}
		if _, dup := covered[a.LessonID]; dup {
			return reject(fmt.Sprintf("lesson %s is assigned more than once", a.LessonID), nil)
		}
		covered[a.LessonID] = struct{}{}
		modes[a.Mode]++

		switch a.Mode {
		case models.AssignmentCancel:
			conflicts = append(conflicts, fmt.Sprintf("%s cancelled", lessonLabel(l)))
		case models.AssignmentSubstitute, models.AssignmentSupervise:
			if a.TeacherID == nil || *a.TeacherID == "" || *a.TeacherID == absent.ID {
				return reject(fmt.Sprintf("lesson %s needs a teacher other than %s", l.ID, absent.ID), nil)
			}
			probe := l
			probe.TeacherID = *a.TeacherID
			keepSubject := a.Mode == models.AssignmentSubstitute
			if !keepSubject {
				probe.SubjectID = nil
			}
			violations, err := f.checker.CheckTeacher(idx, probe, l.ID)
			if err != nil {
				return reject(err.Error(), nil)
			}
			if len(violations) > 0 {
				return reject(fmt.Sprintf("teacher %s cannot take %s", *a.TeacherID, lessonLabel(l)), violations)
			}
			next, err := reassign(idx, l, *a.TeacherID, keepSubject)
			if err != nil {
				return reject(err.Error(), nil)
			}
			idx = next
		case models.AssignmentMerge:
			if a.MergedLessonID == nil {
				return reject(fmt.Sprintf("merge for lesson %s names no partner lesson", l.ID), nil)
			}
			partner, ok := f.mergePartner(l, absent.ID)
			if !ok || partner.ID != *a.MergedLessonID {
				return reject(fmt.Sprintf("lesson %s cannot merge into %s", l.ID, *a.MergedLessonID), nil)
			}
		default:
			return reject(fmt.Sprintf("unknown assignment mode %q", a.Mode), nil)
		}
	}
	if len(covered) != len(affected) {
		return reject(fmt.Sprintf("proposal covers %d of %d lessons", len(covered), len(affected)), nil)
	}

	kind := models.SolutionSplit
	switch {
	case modes[models.AssignmentSubstitute] == len(affected):
		kind = models.SolutionSubstitution
	case modes[models.AssignmentCancel] == len(affected):
		kind = models.SolutionCancel
	}
	impact := p.Impact
	switch impact {
	case models.ImpactLow, models.ImpactMedium, models.ImpactHigh:
	default:
		impact = models.ImpactMedium
	}
	return models.ReplacementSolution{
		Kind:            kind,
		Description:     p.Description,
		Impact:          impact,
		Conflicts:       nonNil(conflicts),
		AffectedLessons: affected,
		Assignments:     p.Assignments,
		Source:          models.SourceAdvisor,
	}, nil
}

func (f *Finder) teacherName(id string) string {
	if t, ok := f.checker.catalog.Teacher(id); ok {
		return teacherLabel(t)
	}
	return id
}

func teacherLabel(t models.CatalogTeacher) string {
	if t.Name == "" {
		return t.ID
	}
	return t.Name
}

func lessonLabel(l models.Lesson) string {
	if subject := l.Subject(); subject != "" {
		return fmt.Sprintf("%s %s %s", l.ClassID, subject, LessonInterval(l))
	}
	return fmt.Sprintf("%s %s", l.ClassID, LessonInterval(l))
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
