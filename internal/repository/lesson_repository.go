package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

const lessonColumns = `id, draft_id, day_of_week, start_time, end_time, class_id, subject_id, teacher_id, room_id, created_at, updated_at`

const insertLessonQuery = `INSERT INTO lessons (id, draft_id, day_of_week, start_time, end_time, class_id, subject_id, teacher_id, room_id, created_at, updated_at)
VALUES (:id, :draft_id, :day_of_week, :start_time, :end_time, :class_id, :subject_id, :teacher_id, :room_id, :created_at, :updated_at)`

// LessonRepository persists draft and live lessons. A NULL draft_id marks a live lesson.
type LessonRepository struct {
	db *sqlx.DB
}

// NewLessonRepository creates a new lesson repository.
func NewLessonRepository(db *sqlx.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

func (r *LessonRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// List returns lessons of one schedule context with optional filters. A nil DraftID selects live lessons.
func (r *LessonRepository) List(ctx context.Context, filter models.LessonFilter) ([]models.Lesson, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.DraftID != nil {
		args = append(args, *filter.DraftID)
		conditions = append(conditions, fmt.Sprintf("draft_id = $%d", len(args)))
	} else {
		conditions = append(conditions, "draft_id IS NULL")
	}
	if filter.TeacherID != "" {
		args = append(args, filter.TeacherID)
		conditions = append(conditions, fmt.Sprintf("teacher_id = $%d", len(args)))
	}
	if filter.ClassID != "" {
		args = append(args, filter.ClassID)
		conditions = append(conditions, fmt.Sprintf("class_id = $%d", len(args)))
	}
	if filter.Day != "" {
		args = append(args, string(filter.Day))
		conditions = append(conditions, fmt.Sprintf("day_of_week = $%d", len(args)))
	}

	query := fmt.Sprintf("SELECT %s FROM lessons WHERE %s ORDER BY day_of_week, start_time, id", lessonColumns, strings.Join(conditions, " AND "))
	var lessons []models.Lesson
	if err := r.db.SelectContext(ctx, &lessons, query, args...); err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	return lessons, nil
}

// ListByDraft returns every lesson of a draft.
func (r *LessonRepository) ListByDraft(ctx context.Context, draftID string) ([]models.Lesson, error) {
	return r.List(ctx, models.LessonFilter{DraftID: &draftID})
}

// ListLive returns the committed schedule.
func (r *LessonRepository) ListLive(ctx context.Context) ([]models.Lesson, error) {
	return r.List(ctx, models.LessonFilter{})
}

// Insert stores one lesson.
func (r *LessonRepository) Insert(ctx context.Context, exec sqlx.ExtContext, lesson *models.Lesson) error {
	prepareLesson(lesson, time.Now().UTC())
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), insertLessonQuery, lesson); err != nil {
		return fmt.Errorf("insert lesson: %w", err)
	}
	return nil
}

// Update rewrites a lesson's placement within its draft.
func (r *LessonRepository) Update(ctx context.Context, exec sqlx.ExtContext, lesson *models.Lesson) error {
	if lesson.UpdatedAt.IsZero() {
		lesson.UpdatedAt = time.Now().UTC()
	}
	const query = `UPDATE lessons SET day_of_week = :day_of_week, start_time = :start_time, end_time = :end_time, class_id = :class_id,
subject_id = :subject_id, teacher_id = :teacher_id, room_id = :room_id, updated_at = :updated_at
WHERE id = :id AND draft_id = :draft_id`
	result, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, lesson)
	if err != nil {
		return fmt.Errorf("update lesson: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("lesson rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a lesson from a draft.
func (r *LessonRepository) Delete(ctx context.Context, exec sqlx.ExtContext, draftID, id string) error {
	result, err := r.exec(exec).ExecContext(ctx, `DELETE FROM lessons WHERE id = $1 AND draft_id = $2`, id, draftID)
	if err != nil {
		return fmt.Errorf("delete lesson: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("lesson rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ReplaceDraft swaps a draft's whole lesson set.
func (r *LessonRepository) ReplaceDraft(ctx context.Context, exec sqlx.ExtContext, draftID string, lessons []models.Lesson) error {
	target := r.exec(exec)
	if _, err := target.ExecContext(ctx, `DELETE FROM lessons WHERE draft_id = $1`, draftID); err != nil {
		return fmt.Errorf("clear draft lessons: %w", err)
	}
	id := draftID
	return r.bulkInsert(ctx, target, lessons, func(l *models.Lesson) { l.DraftID = &id })
}

// ReplaceLive replaces the committed schedule with copies of the given lessons under fresh ids.
func (r *LessonRepository) ReplaceLive(ctx context.Context, exec sqlx.ExtContext, lessons []models.Lesson) error {
	target := r.exec(exec)
	if _, err := target.ExecContext(ctx, `DELETE FROM lessons WHERE draft_id IS NULL`); err != nil {
		return fmt.Errorf("clear live lessons: %w", err)
	}
	return r.bulkInsert(ctx, target, lessons, func(l *models.Lesson) {
		l.ID = ""
		l.DraftID = nil
		l.CreatedAt = time.Time{}
	})
}

// DeleteByDraft removes every lesson of a draft.
func (r *LessonRepository) DeleteByDraft(ctx context.Context, exec sqlx.ExtContext, draftID string) error {
	if _, err := r.exec(exec).ExecContext(ctx, `DELETE FROM lessons WHERE draft_id = $1`, draftID); err != nil {
		return fmt.Errorf("delete draft lessons: %w", err)
	}
	return nil
}

func (r *LessonRepository) bulkInsert(ctx context.Context, exec sqlx.ExtContext, lessons []models.Lesson, mutate func(*models.Lesson)) error {
	now := time.Now().UTC()
	for i := range lessons {
		payload := lessons[i]
		mutate(&payload)
		prepareLesson(&payload, now)
		if _, err := sqlx.NamedExecContext(ctx, exec, insertLessonQuery, &payload); err != nil {
			return fmt.Errorf("bulk insert lesson: %w", err)
		}
	}
	return nil
}

func prepareLesson(lesson *models.Lesson, now time.Time) {
	if lesson.ID == "" {
		lesson.ID = uuid.NewString()
	}
	if lesson.CreatedAt.IsZero() {
		lesson.CreatedAt = now
	}
	if lesson.UpdatedAt.IsZero() {
		lesson.UpdatedAt = now
	}
}
