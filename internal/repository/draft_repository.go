package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// ErrStaleRevision signals that a draft moved past the expected revision.
var ErrStaleRevision = errors.New("stale draft revision")

const draftColumns = `id, owner_id, name, revision, is_active, school_days, day_start, day_end, session_minutes, committed_at, created_at, updated_at`

// DraftRepository persists schedule drafts and their revision counters.
type DraftRepository struct {
	db *sqlx.DB
}

// NewDraftRepository constructs repository.
func NewDraftRepository(db *sqlx.DB) *DraftRepository {
	return &DraftRepository{db: db}
}

func (r *DraftRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create inserts a draft at revision 0.
func (r *DraftRepository) Create(ctx context.Context, exec sqlx.ExtContext, draft *models.ScheduleDraft) error {
	if draft == nil {
		return fmt.Errorf("draft payload is nil")
	}
	if draft.OwnerID == "" {
		return fmt.Errorf("owner_id is required")
	}
	if draft.ID == "" {
		draft.ID = uuid.NewString()
	}
	draft.SyncColumnsFromConfig()
	now := time.Now().UTC()
	if draft.CreatedAt.IsZero() {
		draft.CreatedAt = now
	}
	draft.UpdatedAt = now

	const query = `INSERT INTO schedule_drafts (id, owner_id, name, revision, is_active, school_days, day_start, day_end, session_minutes, committed_at, created_at, updated_at)
VALUES (:id, :owner_id, :name, :revision, :is_active, :school_days, :day_start, :day_end, :session_minutes, :committed_at, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, draft); err != nil {
		return fmt.Errorf("insert schedule draft: %w", err)
	}
	return nil
}

// FindByID loads a draft without its roster.
func (r *DraftRepository) FindByID(ctx context.Context, id string) (*models.ScheduleDraft, error) {
	query := fmt.Sprintf("SELECT %s FROM schedule_drafts WHERE id = $1", draftColumns)
	var draft models.ScheduleDraft
	if err := r.db.GetContext(ctx, &draft, query, id); err != nil {
		return nil, err
	}
	draft.SyncConfigFromColumns()
	return &draft, nil
}

// ListByOwner returns an owner's drafts, most recently updated first.
func (r *DraftRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.ScheduleDraft, error) {
	query := fmt.Sprintf("SELECT %s FROM schedule_drafts WHERE owner_id = $1 ORDER BY updated_at DESC", draftColumns)
	var drafts []models.ScheduleDraft
	if err := r.db.SelectContext(ctx, &drafts, query, ownerID); err != nil {
		return nil, fmt.Errorf("list schedule drafts: %w", err)
	}
	for i := range drafts {
		drafts[i].SyncConfigFromColumns()
	}
	return drafts, nil
}

// BumpRevision advances the revision by one when it still equals expected.
func (r *DraftRepository) BumpRevision(ctx context.Context, exec sqlx.ExtContext, id string, expected int64) (int64, error) {
	const query = `UPDATE schedule_drafts SET revision = revision + 1, updated_at = $1 WHERE id = $2 AND revision = $3 RETURNING revision`
	var next int64
	if err := sqlx.GetContext(ctx, r.exec(exec), &next, query, time.Now().UTC(), id, expected); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrStaleRevision
		}
		return 0, fmt.Errorf("bump schedule draft revision: %w", err)
	}
	return next, nil
}

// Activate marks one draft active and clears the flag on the owner's other drafts.
func (r *DraftRepository) Activate(ctx context.Context, exec sqlx.ExtContext, ownerID, id string) error {
	target := r.exec(exec)
	now := time.Now().UTC()
	if _, err := target.ExecContext(ctx, `UPDATE schedule_drafts SET is_active = FALSE, updated_at = $1 WHERE owner_id = $2 AND id <> $3 AND is_active`, now, ownerID, id); err != nil {
		return fmt.Errorf("deactivate schedule drafts: %w", err)
	}
	result, err := target.ExecContext(ctx, `UPDATE schedule_drafts SET is_active = TRUE, updated_at = $1 WHERE id = $2 AND owner_id = $3`, now, id, ownerID)
	if err != nil {
		return fmt.Errorf("activate schedule draft: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("schedule draft rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// MarkCommitted records when a draft was copied into the live schedule. It fails with ErrStaleRevision
// when the draft is missing or no longer at expected.
func (r *DraftRepository) MarkCommitted(ctx context.Context, exec sqlx.ExtContext, id string, expected int64, at time.Time) error {
	const query = `UPDATE schedule_drafts SET committed_at = $1, updated_at = $1 WHERE id = $2 AND revision = $3`
	result, err := r.exec(exec).ExecContext(ctx, query, at, id, expected)
	if err != nil {
		return fmt.Errorf("mark schedule draft committed: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("schedule draft rows affected: %w", err)
	}
	if affected == 0 {
		return ErrStaleRevision
	}
	return nil
}

// Delete removes a draft. Lessons and roster rows are removed by the caller in the same transaction.
func (r *DraftRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id string) error {
	result, err := r.exec(exec).ExecContext(ctx, `DELETE FROM schedule_drafts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete schedule draft: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("schedule draft rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
