package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// RosterRepository stores which classes, subjects, teachers, rooms and grades a draft considers.
type RosterRepository struct {
	db *sqlx.DB
}

// NewRosterRepository constructs repository.
func NewRosterRepository(db *sqlx.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

// ListByDraft returns the roster rows of a draft.
func (r *RosterRepository) ListByDraft(ctx context.Context, draftID string) ([]models.RosterEntry, error) {
	const query = `SELECT draft_id, entity_kind, entity_id FROM schedule_draft_roster WHERE draft_id = $1 ORDER BY entity_kind, entity_id`
	var entries []models.RosterEntry
	if err := r.db.SelectContext(ctx, &entries, query, draftID); err != nil {
		return nil, fmt.Errorf("list draft roster: %w", err)
	}
	return entries, nil
}

// Replace rewrites a draft's roster.
func (r *RosterRepository) Replace(ctx context.Context, exec sqlx.ExtContext, draftID string, entries []models.RosterEntry) error {
	if exec == nil {
		exec = r.db
	}
	if _, err := exec.ExecContext(ctx, `DELETE FROM schedule_draft_roster WHERE draft_id = $1`, draftID); err != nil {
		return fmt.Errorf("clear draft roster: %w", err)
	}
	const insert = `INSERT INTO schedule_draft_roster (draft_id, entity_kind, entity_id) VALUES (:draft_id, :entity_kind, :entity_id)`
	for i := range entries {
		entry := entries[i]
		entry.DraftID = draftID
		if _, err := sqlx.NamedExecContext(ctx, exec, insert, &entry); err != nil {
			return fmt.Errorf("insert draft roster entry: %w", err)
		}
	}
	return nil
}
