package timetable

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

func TestIntervalOverlapIsSymmetric(t *testing.T) {
	var spans []Interval
	for start := 0; start < 6; start++ {
		for end := start + 1; end <= 6; end++ {
			spans = append(spans, Interval{Start: models.ClockTime(start * 30), End: models.ClockTime(end * 30)})
		}
	}
	for _, a := range spans {
		for _, b := range spans {
			assert.Equal(t, a.Overlaps(b), b.Overlaps(a), "%s vs %s", a, b)
		}
	}
}

func TestIntervalTouchingEndpointsDoNotOverlap(t *testing.T) {
	first := Interval{Start: models.Clock(8, 0), End: models.Clock(9, 0)}
	second := Interval{Start: models.Clock(9, 0), End: models.Clock(10, 0)}
	assert.False(t, first.Overlaps(second))
	assert.True(t, first.Overlaps(Interval{Start: models.Clock(8, 59), End: models.Clock(9, 30)}))
}

func TestBuildRejectsMalformedLesson(t *testing.T) {
	_, err := Build([]models.Lesson{
		lesson("ok", models.DayMonday, "08:00", "09:00", "C1", "T1", "math", ""),
		lesson("bad", models.DayMonday, "10:00", "10:00", "C1", "T1", "math", ""),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrMalformedLesson))
}

func TestIndexConflictsAndIsFree(t *testing.T) {
	idx, err := Build([]models.Lesson{
		lesson("b", models.DayMonday, "10:00", "11:00", "C1", "T1", "math", "R1"),
		lesson("a", models.DayMonday, "08:00", "09:00", "C1", "T1", "math", "R1"),
		lesson("c", models.DayTuesday, "08:00", "09:00", "C2", "T1", "math", ""),
	})
	require.NoError(t, err)

	assert.False(t, idx.IsFree(EntityTeacher, "T1", models.DayMonday, models.Clock(8, 30), models.Clock(10, 30)))
	assert.True(t, idx.IsFree(EntityTeacher, "T1", models.DayMonday, models.Clock(9, 0), models.Clock(10, 0)))
	assert.True(t, idx.IsFree(EntityRoom, "R1", models.DayTuesday, models.Clock(8, 0), models.Clock(9, 0)))
	assert.False(t, idx.IsFree(EntityClass, "C2", models.DayTuesday, models.Clock(8, 0), models.Clock(9, 0)))

	span := Interval{Start: models.Clock(8, 30), End: models.Clock(10, 30)}
	assert.Equal(t, []string{"a", "b"}, idx.Conflicts(EntityRoom, "R1", models.DayMonday, span, ""))
	assert.Equal(t, []string{"b"}, idx.Conflicts(EntityRoom, "R1", models.DayMonday, span, "a"))

	assert.Equal(t, []Interval{
		{Start: models.Clock(8, 0), End: models.Clock(9, 0)},
		{Start: models.Clock(10, 0), End: models.Clock(11, 0)},
	}, idx.Busy(EntityTeacher, "T1", models.DayMonday))
}

func TestWithLessonAppliedLeavesReceiverUntouched(t *testing.T) {
	base, err := Build([]models.Lesson{lesson("a", models.DayMonday, "08:00", "09:00", "C1", "T1", "math", "")})
	require.NoError(t, err)
	snapshot := base.Clone()

	added := lesson("b", models.DayMonday, "09:00", "10:00", "C1", "T1", "math", "")
	next, err := base.WithLessonApplied(added, OpAdd)
	require.NoError(t, err)

	assert.True(t, base.Equal(snapshot))
	assert.False(t, next.IsFree(EntityTeacher, "T1", models.DayMonday, models.Clock(9, 0), models.Clock(10, 0)))
	assert.True(t, base.IsFree(EntityTeacher, "T1", models.DayMonday, models.Clock(9, 0), models.Clock(10, 0)))

	// writes to either index after sharing must not leak into the other
	require.NoError(t, base.Apply(lesson("c", models.DayMonday, "11:00", "12:00", "C1", "T1", "math", ""), OpAdd))
	assert.True(t, next.IsFree(EntityTeacher, "T1", models.DayMonday, models.Clock(11, 0), models.Clock(12, 0)))
	require.NoError(t, next.Apply(lesson("a", models.DayMonday, "08:00", "09:00", "C1", "T1", "math", ""), OpRemove))
	assert.False(t, base.IsFree(EntityTeacher, "T1", models.DayMonday, models.Clock(8, 0), models.Clock(9, 0)))
}

func TestApplyRemoveMissingLessonLeavesIndexUnchanged(t *testing.T) {
	idx, err := Build([]models.Lesson{lesson("a", models.DayMonday, "08:00", "09:00", "C1", "T1", "math", "R1")})
	require.NoError(t, err)
	snapshot := idx.Clone()

	// same teacher and class but a different room: the room bucket lookup fails
	err = idx.Apply(lesson("a", models.DayMonday, "08:00", "09:00", "C1", "T1", "math", "R2"), OpRemove)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.True(t, idx.Equal(snapshot))
}

func TestIndexEqualDetectsDifferences(t *testing.T) {
	a, err := Build([]models.Lesson{lesson("a", models.DayMonday, "08:00", "09:00", "C1", "T1", "", "")})
	require.NoError(t, err)
	b, err := Build([]models.Lesson{lesson("b", models.DayMonday, "08:00", "09:00", "C1", "T1", "", "")})
	require.NoError(t, err)

	assert.False(t, a.Equal(b))
	assert.True(t, a.Equal(a.Clone()))
	assert.True(t, NewIndex().Equal(NewIndex()))
}
