package timetable

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

// 2024-07-15 is a Monday.
var monday = time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)

func TestFinderSubstitutesQualifiedFreeTeacher(t *testing.T) {
	finder, err := NewFinder(fixtureCatalog(), fixtureConfig(), []models.Lesson{
		lesson("m1", models.DayMonday, "08:00", "09:00", "C1", "T1", "math", ""),
	})
	require.NoError(t, err)

	result, err := finder.Find(context.Background(), FindRequest{AbsentTeacherID: "T1", Date: monday})
	require.NoError(t, err)
	assert.Equal(t, models.DayMonday, result.Day)
	assert.Equal(t, "2024-07-15", result.Date)

	require.NotEmpty(t, result.Solutions)
	best := result.Solutions[0]
	assert.Equal(t, models.SolutionSubstitution, best.Kind)
	assert.Equal(t, models.ImpactLow, best.Impact)
	require.NotNil(t, best.ReplacementTeacherID)
	assert.Equal(t, "T2", *best.ReplacementTeacherID)
	require.Len(t, best.Assignments, 1)
	assert.Equal(t, models.AssignmentSubstitute, best.Assignments[0].Mode)
	assert.Equal(t, "T2", *best.Assignments[0].TeacherID)
	assert.Equal(t, []string{"m1"}, lessonIDs(best.AffectedLessons))

	assert.Contains(t, solutionKinds(result.Solutions), models.SolutionCancel)
	assert.Equal(t, []LessonCandidates{{LessonID: "m1", TeacherIDs: []string{"T2"}}}, result.Candidates)
}

func TestFinderNoLessonsMeansNoAction(t *testing.T) {
	finder, err := NewFinder(fixtureCatalog(), fixtureConfig(), []models.Lesson{
		lesson("m1", models.DayTuesday, "08:00", "09:00", "C1", "T1", "math", ""),
	})
	require.NoError(t, err)

	result, err := finder.Find(context.Background(), FindRequest{AbsentTeacherID: "T1", Date: monday})
	require.NoError(t, err)
	require.Len(t, result.Solutions, 1)
	assert.Equal(t, models.SolutionNoAction, result.Solutions[0].Kind)
}

func TestFinderRanksByWeeklyLoad(t *testing.T) {
	catalog := NewCatalog(models.CatalogSnapshot{
		Teachers: []models.CatalogTeacher{
			{ID: "T1", QualifiedSubjectIDs: []string{"math"}},
			{ID: "T2", QualifiedSubjectIDs: []string{"math"}},
			{ID: "T3", QualifiedSubjectIDs: []string{"math"}},
		},
		Classes:  []models.CatalogClass{{ID: "C1"}, {ID: "C2"}, {ID: "C3"}},
		Subjects: []models.CatalogSubject{{ID: "math"}},
	})
	finder, err := NewFinder(catalog, fixtureConfig(), []models.Lesson{
		lesson("a", models.DayMonday, "08:00", "09:00", "C1", "T1", "math", ""),
		lesson("b", models.DayMonday, "09:00", "10:00", "C2", "T1", "math", ""),
		// T2 carries more weekly load than T3
		lesson("busy", models.DayFriday, "08:00", "08:30", "C3", "T2", "math", ""),
	})
	require.NoError(t, err)

	result, err := finder.Find(context.Background(), FindRequest{AbsentTeacherID: "T1", Date: monday})
	require.NoError(t, err)
	assert.Equal(t, []string{"T3", "T2"}, result.Candidates[0].TeacherIDs)

	sub := result.Solutions[0]
	require.Equal(t, models.SolutionSubstitution, sub.Kind)
	require.Len(t, sub.Assignments, 2)
	// T3 takes the first lesson and is then heavier than T2, which gets the second.
	assert.Equal(t, "T3", *sub.Assignments[0].TeacherID)
	assert.Equal(t, "T2", *sub.Assignments[1].TeacherID)
	assert.Nil(t, sub.ReplacementTeacherID)
}

func TestFinderPartialSubstitutionIsMediumImpact(t *testing.T) {
	finder, err := NewFinder(fixtureCatalog(), fixtureConfig(), []models.Lesson{
		lesson("m1", models.DayMonday, "08:00", "09:00", "C1", "T1", "math", ""),
		lesson("p1", models.DayMonday, "09:00", "10:00", "C2", "T1", "physics", ""),
		lesson("t3", models.DayMonday, "09:00", "10:00", "C3", "T3", "physics", ""),
	})
	require.NoError(t, err)

	result, err := finder.Find(context.Background(), FindRequest{AbsentTeacherID: "T1", Date: monday})
	require.NoError(t, err)

	var sub *models.ReplacementSolution
	for i := range result.Solutions {
		if result.Solutions[i].Kind == models.SolutionSubstitution {
			sub = &result.Solutions[i]
		}
	}
	require.NotNil(t, sub)
	assert.Equal(t, models.ImpactMedium, sub.Impact)
	assert.Equal(t, models.AssignmentCancel, sub.Assignments[1].Mode)
	assert.NotEmpty(t, sub.Conflicts)
}

func TestFinderSplitMergesSameGradeClass(t *testing.T) {
	finder, err := NewFinder(fixtureCatalog(), fixtureConfig(), []models.Lesson{
		lesson("mine", models.DayMonday, "10:00", "11:00", "C1", "T1", "physics", ""),
		lesson("theirs", models.DayMonday, "10:00", "11:00", "C2", "T3", "physics", ""),
	})
	require.NoError(t, err)

	result, err := finder.Find(context.Background(), FindRequest{AbsentTeacherID: "T1", Date: monday})
	require.NoError(t, err)

	var split *models.ReplacementSolution
	for i := range result.Solutions {
		if result.Solutions[i].Kind == models.SolutionSplit {
			split = &result.Solutions[i]
		}
	}
	require.NotNil(t, split)
	require.Len(t, split.Assignments, 1)
	assert.Equal(t, models.AssignmentMerge, split.Assignments[0].Mode)
	assert.Equal(t, "theirs", *split.Assignments[0].MergedLessonID)
	assert.Equal(t, "T3", *split.Assignments[0].TeacherID)
}

func TestFinderSolutionsOrderedByImpact(t *testing.T) {
	finder, err := NewFinder(fixtureCatalog(), fixtureConfig(), []models.Lesson{
		lesson("m1", models.DayMonday, "08:00", "09:00", "C1", "T1", "math", ""),
	})
	require.NoError(t, err)

	result, err := finder.Find(context.Background(), FindRequest{AbsentTeacherID: "T1", Date: monday})
	require.NoError(t, err)
	assert.Equal(t, []models.SolutionKind{models.SolutionSubstitution, models.SolutionSplit, models.SolutionCancel}, solutionKinds(result.Solutions))
}

func TestFinderRevalidatesAdvisorProposals(t *testing.T) {
	advisor := &advisorStub{proposals: []AdvisorProposal{
		{
			Description: "Sari covers math",
			Impact:      models.ImpactLow,
			Assignments: []models.LessonAssignment{{LessonID: "m1", Mode: models.AssignmentSubstitute, TeacherID: models.StringPtr("T2")}},
		},
		{
			Description: "Andi covers math",
			Impact:      models.ImpactLow,
			Assignments: []models.LessonAssignment{{LessonID: "m1", Mode: models.AssignmentSubstitute, TeacherID: models.StringPtr("T3")}},
		},
		{
			Description: "Invented lesson",
			Assignments: []models.LessonAssignment{{LessonID: "ghost", Mode: models.AssignmentCancel}},
		},
	}}
	finder, err := NewFinder(fixtureCatalog(), fixtureConfig(), []models.Lesson{
		lesson("m1", models.DayMonday, "08:00", "09:00", "C1", "T1", "math", ""),
	}, WithAdvisor(advisor))
	require.NoError(t, err)

	result, err := finder.Find(context.Background(), FindRequest{AbsentTeacherID: "T1", Date: monday})
	require.NoError(t, err)
	assert.Equal(t, "T1", advisor.got.AbsentTeacher.ID)
	assert.Equal(t, []string{"T2"}, advisor.got.Candidates["m1"])

	var fromAdvisor []models.ReplacementSolution
	for _, s := range result.Solutions {
		if s.Source == models.SourceAdvisor {
			fromAdvisor = append(fromAdvisor, s)
		}
	}
	require.Len(t, fromAdvisor, 1)
	assert.Equal(t, "Sari covers math", fromAdvisor[0].Description)
	assert.Equal(t, models.SolutionSubstitution, fromAdvisor[0].Kind)

	require.Len(t, result.Rejected, 2)
	assert.True(t, models.HasViolation(result.Rejected[0].Violations, models.ViolationUnqualified))
	assert.Contains(t, result.Rejected[1].Reason, "ghost")
}

func TestFinderAdvisorFailureKeepsTemplates(t *testing.T) {
	advisor := &advisorStub{err: errors.New("upstream timeout")}
	finder, err := NewFinder(fixtureCatalog(), fixtureConfig(), []models.Lesson{
		lesson("m1", models.DayMonday, "08:00", "09:00", "C1", "T1", "math", ""),
	}, WithAdvisor(advisor))
	require.NoError(t, err)

	result, err := finder.Find(context.Background(), FindRequest{AbsentTeacherID: "T1", Date: monday})
	require.NoError(t, err)
	assert.EqualError(t, result.AdvisorErr, "upstream timeout")
	assert.Len(t, result.Solutions, 3)
}

func TestFinderRejectsUnknownTeacherAndMissingDate(t *testing.T) {
	finder, err := NewFinder(fixtureCatalog(), fixtureConfig(), nil)
	require.NoError(t, err)

	_, err = finder.Find(context.Background(), FindRequest{AbsentTeacherID: "T9", Date: monday})
	assert.True(t, errors.Is(err, appErrors.ErrUnknownEntity))

	_, err = finder.Find(context.Background(), FindRequest{AbsentTeacherID: "T1"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestFinderReportsLessonOutsideRestrictedCatalog(t *testing.T) {
	catalog := fixtureCatalog().Restrict(models.DraftRoster{ClassIDs: []string{"C2"}})
	finder, err := NewFinder(catalog, fixtureConfig(), []models.Lesson{
		lesson("m1", models.DayMonday, "08:00", "09:00", "C1", "T1", "math", ""),
	})
	require.NoError(t, err)

	result, err := finder.Find(context.Background(), FindRequest{AbsentTeacherID: "T1", Date: monday})
	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrUnknownEntity))
	assert.Contains(t, err.Error(), "class C1")
}

type advisorStub struct {
	proposals []AdvisorProposal
	err       error
	got       AdvisorRequest
}

func (a *advisorStub) Propose(ctx context.Context, req AdvisorRequest) ([]AdvisorProposal, error) {
	a.got = req
	return a.proposals, a.err
}

func lessonIDs(lessons []models.Lesson) []string {
	ids := make([]string, 0, len(lessons))
	for _, l := range lessons {
		ids = append(ids, l.ID)
	}
	return ids
}

func solutionKinds(solutions []models.ReplacementSolution) []models.SolutionKind {
	kinds := make([]models.SolutionKind, 0, len(solutions))
	for _, s := range solutions {
		kinds = append(kinds, s.Kind)
	}
	return kinds
}
