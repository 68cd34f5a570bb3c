package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

const activeEnrollmentStatus = "ACTIVE"

// CatalogRepository reads the entity snapshot the timetable engine validates against.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository constructs repository.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// LoadSnapshot reads teachers with their qualifications, classes with active enrolment counts, rooms,
// subjects and grades. Qualifications come from teaching assignments.
func (r *CatalogRepository) LoadSnapshot(ctx context.Context) (*models.CatalogSnapshot, error) {
	snapshot := &models.CatalogSnapshot{}

	if err := r.db.SelectContext(ctx, &snapshot.Teachers, `SELECT id, full_name FROM teachers WHERE active = TRUE ORDER BY id`); err != nil {
		return nil, fmt.Errorf("load catalog teachers: %w", err)
	}

	var links []models.TeacherSubject
	if err := r.db.SelectContext(ctx, &links, `SELECT DISTINCT teacher_id, subject_id FROM teacher_assignments ORDER BY teacher_id, subject_id`); err != nil {
		return nil, fmt.Errorf("load catalog qualifications: %w", err)
	}
	qualified := make(map[string][]string, len(snapshot.Teachers))
	for _, link := range links {
		qualified[link.TeacherID] = append(qualified[link.TeacherID], link.SubjectID)
	}
	for i := range snapshot.Teachers {
		snapshot.Teachers[i].QualifiedSubjectIDs = qualified[snapshot.Teachers[i].ID]
	}

	const classQuery = `SELECT c.id, c.name, COALESCE(c.abbreviation, '') AS abbreviation, c.grade AS grade_id, COALESCE(c.capacity, 0) AS capacity,
(SELECT COUNT(*) FROM enrollments e WHERE e.class_id = c.id AND e.status = $1) AS enrolled_count
FROM classes c ORDER BY c.id`
	if err := r.db.SelectContext(ctx, &snapshot.Classes, classQuery, activeEnrollmentStatus); err != nil {
		return nil, fmt.Errorf("load catalog classes: %w", err)
	}

	if err := r.db.SelectContext(ctx, &snapshot.Rooms, `SELECT id, name, capacity, COALESCE(building, '') AS building FROM rooms ORDER BY id`); err != nil {
		return nil, fmt.Errorf("load catalog rooms: %w", err)
	}
	if err := r.db.SelectContext(ctx, &snapshot.Subjects, `SELECT id, name FROM subjects ORDER BY id`); err != nil {
		return nil, fmt.Errorf("load catalog subjects: %w", err)
	}
	if err := r.db.SelectContext(ctx, &snapshot.Grades, `SELECT DISTINCT grade AS id, grade AS name FROM classes ORDER BY 1`); err != nil {
		return nil, fmt.Errorf("load catalog grades: %w", err)
	}
	return snapshot, nil
}
