package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var lessonRowColumns = []string{"id", "draft_id", "day_of_week", "start_time", "end_time", "class_id", "subject_id", "teacher_id", "room_id", "created_at", "updated_at"}

func TestLessonRepositoryListByDraft(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(lessonRowColumns).
		AddRow("l-1", "draft-1", "MONDAY", "08:00:00", "09:00:00", "C1", "math", "T1", nil, now, now).
		AddRow("l-2", "draft-1", "TUESDAY", "10:00:00", "10:45:00", "C2", nil, "T2", "R1", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + lessonColumns + " FROM lessons WHERE draft_id = $1 ORDER BY day_of_week, start_time, id")).
		WithArgs("draft-1").
		WillReturnRows(rows)

	lessons, err := repo.ListByDraft(context.Background(), "draft-1")
	require.NoError(t, err)
	require.Len(t, lessons, 2)
	assert.Equal(t, models.DayMonday, lessons[0].Day)
	assert.Equal(t, models.Clock(8, 0), lessons[0].StartTime)
	assert.Equal(t, "math", lessons[0].Subject())
	assert.Nil(t, lessons[0].RoomID)
	assert.Equal(t, models.Clock(10, 45), lessons[1].EndTime)
	assert.Nil(t, lessons[1].SubjectID)
	assert.Equal(t, "R1", lessons[1].Room())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryListLiveWithFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM lessons WHERE draft_id IS NULL AND teacher_id = $1 AND day_of_week = $2")).
		WithArgs("T1", "FRIDAY").
		WillReturnRows(sqlmock.NewRows(lessonRowColumns))

	lessons, err := repo.List(context.Background(), models.LessonFilter{TeacherID: "T1", Day: models.DayFriday})
	require.NoError(t, err)
	assert.Empty(t, lessons)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryUpdateMissingRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE lessons SET day_of_week")).
		WithArgs("TUESDAY", "08:00:00", "09:00:00", "C1", sqlmock.AnyArg(), "T1", sqlmock.AnyArg(), sqlmock.AnyArg(), "l-1", "draft-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	draftID := "draft-1"
	err := repo.Update(context.Background(), nil, &models.Lesson{
		ID:        "l-1",
		DraftID:   &draftID,
		Day:       models.DayTuesday,
		StartTime: models.Clock(8, 0),
		EndTime:   models.Clock(9, 0),
		ClassID:   "C1",
		TeacherID: "T1",
	})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryReplaceDraft(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM lessons WHERE draft_id = $1")).
		WithArgs("draft-1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO lessons")).
		WithArgs("l-1", "draft-1", "MONDAY", "08:00:00", "09:00:00", "C1", sqlmock.AnyArg(), "T1", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.ReplaceDraft(context.Background(), nil, "draft-1", []models.Lesson{{
		ID:        "l-1",
		Day:       models.DayMonday,
		StartTime: models.Clock(8, 0),
		EndTime:   models.Clock(9, 0),
		ClassID:   "C1",
		TeacherID: "T1",
	}})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryReplaceLiveAssignsFreshIDs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM lessons WHERE draft_id IS NULL")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO lessons")).
		WithArgs(sqlmock.AnyArg(), nil, "MONDAY", "08:00:00", "09:00:00", "C1", sqlmock.AnyArg(), "T1", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	draftID := "draft-1"
	source := []models.Lesson{{
		ID:        "draft-lesson",
		DraftID:   &draftID,
		Day:       models.DayMonday,
		StartTime: models.Clock(8, 0),
		EndTime:   models.Clock(9, 0),
		ClassID:   "C1",
		TeacherID: "T1",
	}}
	require.NoError(t, repo.ReplaceLive(context.Background(), nil, source))
	assert.Equal(t, "draft-lesson", source[0].ID, "caller's slice must not be modified")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryDeleteNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM lessons WHERE id = $1 AND draft_id = $2")).
		WithArgs("l-9", "draft-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), nil, "draft-1", "l-9"), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
