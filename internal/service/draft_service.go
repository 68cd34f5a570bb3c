package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/repository"
	"github.com/noah-isme/sma-timetable-api/internal/timetable"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type draftRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, draft *models.ScheduleDraft) error
	FindByID(ctx context.Context, id string) (*models.ScheduleDraft, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.ScheduleDraft, error)
	BumpRevision(ctx context.Context, exec sqlx.ExtContext, id string, expected int64) (int64, error)
	Activate(ctx context.Context, exec sqlx.ExtContext, ownerID, id string) error
	MarkCommitted(ctx context.Context, exec sqlx.ExtContext, id string, expected int64, at time.Time) error
	Delete(ctx context.Context, exec sqlx.ExtContext, id string) error
}

type lessonRepository interface {
	List(ctx context.Context, filter models.LessonFilter) ([]models.Lesson, error)
	ListByDraft(ctx context.Context, draftID string) ([]models.Lesson, error)
	ListLive(ctx context.Context) ([]models.Lesson, error)
	Insert(ctx context.Context, exec sqlx.ExtContext, lesson *models.Lesson) error
	Update(ctx context.Context, exec sqlx.ExtContext, lesson *models.Lesson) error
	Delete(ctx context.Context, exec sqlx.ExtContext, draftID, id string) error
	ReplaceDraft(ctx context.Context, exec sqlx.ExtContext, draftID string, lessons []models.Lesson) error
	ReplaceLive(ctx context.Context, exec sqlx.ExtContext, lessons []models.Lesson) error
	DeleteByDraft(ctx context.Context, exec sqlx.ExtContext, draftID string) error
}

type rosterRepository interface {
	ListByDraft(ctx context.Context, draftID string) ([]models.RosterEntry, error)
	Replace(ctx context.Context, exec sqlx.ExtContext, draftID string, entries []models.RosterEntry) error
}

type catalogProvider interface {
	Catalog(ctx context.Context) (*timetable.Catalog, error)
}

// Actor is the authenticated caller. Admins may open any draft, everyone else only their own.
type Actor struct {
	ID    string
	Admin bool
}

// ActorFromClaims derives the caller from access token claims.
func ActorFromClaims(claims *models.JWTClaims) Actor {
	if claims == nil {
		return Actor{}
	}
	return Actor{
		ID:    claims.UserID,
		Admin: claims.Role == models.RoleAdmin || claims.Role == models.RoleSuperAdmin,
	}
}

func (a Actor) canAccess(ownerID string) bool {
	return a.Admin || (a.ID != "" && a.ID == ownerID)
}

// DraftServiceConfig governs draft defaults and session handling.
type DraftServiceConfig struct {
	Defaults      models.DraftConfig
	SessionTTL    time.Duration
	MaxViolations int
	// LockTimeout bounds how long a request queues behind another writer of the same draft. Zero
	// waits until the request context ends.
	LockTimeout time.Duration
}

// DraftService owns draft lifecycles and serialises mutations per draft.
type DraftService struct {
	drafts    draftRepository
	lessons   lessonRepository
	rosters   rosterRepository
	catalog   catalogProvider
	tx        txProvider
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       DraftServiceConfig
	sessions  *sessionStore
	locks     *draftLocks
	newID     func() string
	now       func() time.Time
}

// NewDraftService wires the draft service.
func NewDraftService(
	drafts draftRepository,
	lessons lessonRepository,
	rosters rosterRepository,
	catalog catalogProvider,
	tx txProvider,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg DraftServiceConfig,
) *DraftService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * time.Minute
	}
	if cfg.MaxViolations <= 0 {
		cfg.MaxViolations = timetable.DefaultMaxViolations
	}
	now := func() time.Time { return time.Now().UTC() }
	svc := &DraftService{
		drafts:    drafts,
		lessons:   lessons,
		rosters:   rosters,
		catalog:   catalog,
		tx:        tx,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		sessions:  newSessionStore(cfg.SessionTTL, now),
		locks:     newDraftLocks(),
		newID:     uuid.NewString,
		now:       now,
	}
	metrics.TrackSessions(svc.sessions.Len)
	return svc
}

// Create stores an empty draft owned by the actor.
func (s *DraftService) Create(ctx context.Context, actor Actor, req dto.CreateDraftRequest) (*models.ScheduleDraft, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid draft payload")
	}
	config := s.cfg.Defaults
	if req.Config != nil {
		config = *req.Config
	}
	if err := validateDraftConfig(config); err != nil {
		return nil, err
	}

	draft := &models.ScheduleDraft{
		OwnerID: actor.ID,
		Name:    strings.TrimSpace(req.Name),
		Config:  config,
		Roster:  req.Roster,
	}
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.drafts.Create(ctx, tx, draft); err != nil {
			return err
		}
		return s.rosters.Replace(ctx, tx, draft.ID, req.Roster.Entries(draft.ID))
	})
	if err != nil {
		s.logger.Error("create draft", zap.String("owner_id", actor.ID), zap.Error(err))
		return nil, s.translate(err, "failed to create draft")
	}
	return draft, nil
}

// CloneLive creates a draft holding a copy of the live schedule.
func (s *DraftService) CloneLive(ctx context.Context, actor Actor, req dto.CloneDraftRequest) (*models.ScheduleDraft, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid draft payload")
	}
	live, err := s.lessons.ListLive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load live schedule")
	}

	draft := &models.ScheduleDraft{
		OwnerID: actor.ID,
		Name:    strings.TrimSpace(req.Name),
		Config:  s.cfg.Defaults,
		Roster:  req.Roster,
	}
	copies := make([]models.Lesson, len(live))
	for i, l := range live {
		l.ID = s.newID()
		l.CreatedAt = time.Time{}
		copies[i] = l
	}
	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.drafts.Create(ctx, tx, draft); err != nil {
			return err
		}
		if err := s.rosters.Replace(ctx, tx, draft.ID, req.Roster.Entries(draft.ID)); err != nil {
			return err
		}
		return s.lessons.ReplaceDraft(ctx, tx, draft.ID, copies)
	})
	if err != nil {
		s.logger.Error("clone live schedule", zap.String("owner_id", actor.ID), zap.Error(err))
		return nil, s.translate(err, "failed to clone live schedule")
	}
	s.logger.Info("draft cloned from live schedule", zap.String("draft_id", draft.ID), zap.Int("lessons", len(copies)))
	return draft, nil
}

// Get returns a draft with its roster.
func (s *DraftService) Get(ctx context.Context, actor Actor, draftID string) (*models.ScheduleDraft, error) {
	draft, err := s.loadDraft(ctx, actor, draftID)
	if err != nil {
		return nil, err
	}
	entries, err := s.rosters.ListByDraft(ctx, draftID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load draft roster")
	}
	draft.Roster = models.RosterFromEntries(entries)
	return draft, nil
}

// List returns the actor's drafts.
func (s *DraftService) List(ctx context.Context, actor Actor) ([]models.ScheduleDraft, error) {
	drafts, err := s.drafts.ListByOwner(ctx, actor.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list drafts")
	}
	return drafts, nil
}

// Delete removes a draft with its lessons and roster.
func (s *DraftService) Delete(ctx context.Context, actor Actor, draftID string) error {
	release, err := s.acquire(ctx, draftID)
	if err != nil {
		return err
	}
	defer release()

	if _, err := s.loadDraft(ctx, actor, draftID); err != nil {
		return err
	}
	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.lessons.DeleteByDraft(ctx, tx, draftID); err != nil {
			return err
		}
		if err := s.rosters.Replace(ctx, tx, draftID, nil); err != nil {
			return err
		}
		return s.drafts.Delete(ctx, tx, draftID)
	})
	s.sessions.Delete(draftID)
	if err != nil {
		s.logger.Error("delete draft", zap.String("draft_id", draftID), zap.Error(err))
		return s.translate(err, "failed to delete draft")
	}
	return nil
}

// Activate marks the draft active and deactivates the owner's other drafts.
func (s *DraftService) Activate(ctx context.Context, actor Actor, draftID string) (*models.ScheduleDraft, error) {
	draft, err := s.loadDraft(ctx, actor, draftID)
	if err != nil {
		return nil, err
	}
	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		return s.drafts.Activate(ctx, tx, draft.OwnerID, draftID)
	})
	if err != nil {
		return nil, s.translate(err, "failed to activate draft")
	}
	draft.IsActive = true
	return draft, nil
}

// Lessons lists a draft's lessons from storage.
func (s *DraftService) Lessons(ctx context.Context, actor Actor, draftID string) ([]models.Lesson, error) {
	if _, err := s.loadDraft(ctx, actor, draftID); err != nil {
		return nil, err
	}
	lessons, err := s.lessons.ListByDraft(ctx, draftID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list lessons")
	}
	return lessons, nil
}

// LiveLessons lists the committed schedule.
func (s *DraftService) LiveLessons(ctx context.Context, filter models.LessonFilter) ([]models.Lesson, error) {
	filter.DraftID = nil
	lessons, err := s.lessons.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list live lessons")
	}
	return lessons, nil
}

// AddLesson places a new lesson in the draft.
func (s *DraftService) AddLesson(ctx context.Context, actor Actor, draftID string, req dto.AddLessonRequest) (*dto.MutationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson payload")
	}
	return s.mutate(ctx, actor, draftID, "add",
		func(sess *timetable.Session) (*timetable.Outcome, error) {
			return sess.AddLesson(req.Revision, req.Lesson())
		},
		func(ctx context.Context, tx *sqlx.Tx, lesson *models.Lesson) error {
			return s.lessons.Insert(ctx, tx, lesson)
		})
}

// MoveLesson changes a lesson's day or interval.
func (s *DraftService) MoveLesson(ctx context.Context, actor Actor, draftID, lessonID string, req dto.MoveLessonRequest) (*dto.MutationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid move payload")
	}
	return s.mutate(ctx, actor, draftID, "move",
		func(sess *timetable.Session) (*timetable.Outcome, error) {
			return sess.MoveLesson(req.Revision, lessonID, req.Day, req.StartTime, req.EndTime)
		},
		func(ctx context.Context, tx *sqlx.Tx, lesson *models.Lesson) error {
			return s.lessons.Update(ctx, tx, lesson)
		})
}

// ReassignRoom sets or clears a lesson's room.
func (s *DraftService) ReassignRoom(ctx context.Context, actor Actor, draftID, lessonID string, req dto.ReassignRoomRequest) (*dto.MutationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid room payload")
	}
	return s.mutate(ctx, actor, draftID, "reassign_room",
		func(sess *timetable.Session) (*timetable.Outcome, error) {
			return sess.ReassignRoom(req.Revision, lessonID, req.RoomID)
		},
		func(ctx context.Context, tx *sqlx.Tx, lesson *models.Lesson) error {
			return s.lessons.Update(ctx, tx, lesson)
		})
}

// RemoveLesson deletes a lesson from the draft.
func (s *DraftService) RemoveLesson(ctx context.Context, actor Actor, draftID, lessonID string, revision int64) (*dto.MutationResponse, error) {
	return s.mutate(ctx, actor, draftID, "remove",
		func(sess *timetable.Session) (*timetable.Outcome, error) {
			return sess.RemoveLesson(revision, lessonID)
		},
		func(ctx context.Context, tx *sqlx.Tx, lesson *models.Lesson) error {
			return s.lessons.Delete(ctx, tx, draftID, lesson.ID)
		})
}

// ReplaceLessons swaps the draft's whole lesson set. Nothing changes unless the new set is valid.
func (s *DraftService) ReplaceLessons(ctx context.Context, actor Actor, draftID string, req dto.ReplaceLessonsRequest) (*dto.ValidationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lessons payload")
	}
	release, err := s.acquire(ctx, draftID)
	if err != nil {
		return nil, err
	}
	defer release()

	sess, err := s.session(ctx, actor, draftID)
	if err != nil {
		return nil, err
	}
	expected := sess.Revision()
	batch := make([]models.Lesson, len(req.Lessons))
	for i, in := range req.Lessons {
		batch[i] = in.Lesson()
	}
	report, err := sess.ReplaceAll(req.Revision, batch)
	if err != nil {
		s.metrics.RecordMutation("replace_all", OutcomeError, nil)
		return nil, err
	}
	if !report.Valid() {
		s.metrics.RecordMutation("replace_all", OutcomeRejected, report.Violations)
		s.logger.Debug("lesson set rejected", zap.String("draft_id", draftID), zap.Int("violations", len(report.Violations)))
		return validationResponse(report, sess.Revision()), nil
	}

	lessons := sess.Lessons()
	err = s.persist(ctx, draftID, expected, sess, func(ctx context.Context, tx *sqlx.Tx) error {
		return s.lessons.ReplaceDraft(ctx, tx, draftID, lessons)
	})
	if err != nil {
		s.metrics.RecordMutation("replace_all", OutcomeError, nil)
		return nil, err
	}
	s.metrics.RecordMutation("replace_all", OutcomeAccepted, nil)
	return validationResponse(report, sess.Revision()), nil
}

// Validate runs full pairwise validation of the draft.
func (s *DraftService) Validate(ctx context.Context, actor Actor, draftID string) (*dto.ValidationResponse, error) {
	release, err := s.acquire(ctx, draftID)
	if err != nil {
		return nil, err
	}
	defer release()

	sess, err := s.session(ctx, actor, draftID)
	if err != nil {
		return nil, err
	}
	started := time.Now()
	report, err := sess.Validate()
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveValidation(time.Since(started), report.Violations)
	return validationResponse(report, sess.Revision()), nil
}

// Commit validates the draft at the given revision and replaces the live schedule with its lessons.
// An invalid draft yields a report and no commit.
func (s *DraftService) Commit(ctx context.Context, actor Actor, draftID string, revision int64) (*dto.CommitResponse, *dto.ValidationResponse, error) {
	release, err := s.acquire(ctx, draftID)
	if err != nil {
		return nil, nil, err
	}
	defer release()

	sess, err := s.session(ctx, actor, draftID)
	if err != nil {
		return nil, nil, err
	}
	if sess.Revision() != revision {
		return nil, nil, appErrors.Clone(appErrors.ErrRevisionConflict, fmt.Sprintf("draft %s is at revision %d, not %d", draftID, sess.Revision(), revision))
	}
	report, err := sess.Validate()
	if err != nil {
		return nil, nil, err
	}
	if !report.Valid() {
		return nil, validationResponse(report, revision), nil
	}

	lessons := sess.Lessons()
	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		// the stored revision must still match the session, or the cached lessons are stale
		if err := s.drafts.MarkCommitted(ctx, tx, draftID, revision, s.now()); err != nil {
			return err
		}
		return s.lessons.ReplaceLive(ctx, tx, lessons)
	})
	if err != nil {
		s.sessions.Delete(draftID)
		s.logger.Error("commit draft", zap.String("draft_id", draftID), zap.Int64("revision", revision), zap.Error(err))
		return nil, nil, s.translate(err, "failed to commit draft")
	}
	s.logger.Info("draft committed to live schedule", zap.String("draft_id", draftID), zap.Int("lessons", len(lessons)))
	return &dto.CommitResponse{DraftID: draftID, LessonCount: len(lessons), Revision: revision}, nil, nil
}

// Availability answers whether an entity is free in a draft for an interval.
func (s *DraftService) Availability(ctx context.Context, actor Actor, draftID string, q dto.AvailabilityQuery) (*dto.AvailabilityResponse, error) {
	if err := s.validator.Struct(q); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability query")
	}
	kind, err := timetable.ParseEntityKind(strings.ToLower(q.Kind))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	day, err := models.ParseDay(q.Day)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	start, err := models.ParseClock(q.StartTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	end, err := models.ParseClock(q.EndTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	if end <= start {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end must be after start")
	}

	release, err := s.acquire(ctx, draftID)
	if err != nil {
		return nil, err
	}
	defer release()

	sess, err := s.session(ctx, actor, draftID)
	if err != nil {
		return nil, err
	}
	busy := sess.Index().Busy(kind, q.EntityID, day)
	spans := make([]string, len(busy))
	for i, b := range busy {
		spans[i] = b.String()
	}
	return &dto.AvailabilityResponse{
		Free: sess.IsFree(kind, q.EntityID, day, start, end),
		Busy: spans,
	}, nil
}

// EvictAll drops every cached session so the next request rebuilds it against the current catalog.
// In-flight requests finish on the session they already hold.
func (s *DraftService) EvictAll() int {
	n := s.sessions.Clear()
	if n > 0 {
		s.logger.Info("draft sessions evicted", zap.Int("sessions", n))
	}
	return n
}

type lessonPersister func(ctx context.Context, tx *sqlx.Tx, lesson *models.Lesson) error

func (s *DraftService) mutate(ctx context.Context, actor Actor, draftID, op string, apply func(*timetable.Session) (*timetable.Outcome, error), save lessonPersister) (*dto.MutationResponse, error) {
	release, err := s.acquire(ctx, draftID)
	if err != nil {
		return nil, err
	}
	defer release()

	sess, err := s.session(ctx, actor, draftID)
	if err != nil {
		return nil, err
	}
	expected := sess.Revision()
	outcome, err := apply(sess)
	if err != nil {
		s.metrics.RecordMutation(op, OutcomeError, nil)
		return nil, err
	}
	if !outcome.Accepted() {
		s.metrics.RecordMutation(op, OutcomeRejected, outcome.Violations)
		s.logger.Debug("draft mutation rejected",
			zap.String("draft_id", draftID),
			zap.String("operation", op),
			zap.Int("violations", len(outcome.Violations)))
		return mutationResponse(outcome), nil
	}

	lesson := *outcome.Lesson
	err = s.persist(ctx, draftID, expected, sess, func(ctx context.Context, tx *sqlx.Tx) error {
		return save(ctx, tx, &lesson)
	})
	if err != nil {
		s.metrics.RecordMutation(op, OutcomeError, nil)
		return nil, err
	}
	s.metrics.RecordMutation(op, OutcomeAccepted, nil)
	return mutationResponse(outcome), nil
}

// persist writes an accepted change and advances the stored revision from expected. The session was
// already changed in memory, so any failure evicts it and the next request reloads from storage.
func (s *DraftService) persist(ctx context.Context, draftID string, expected int64, sess *timetable.Session, write func(ctx context.Context, tx *sqlx.Tx) error) error {
	err := ctx.Err()
	if err == nil {
		err = s.inTx(ctx, func(tx *sqlx.Tx) error {
			if err := write(ctx, tx); err != nil {
				return err
			}
			next, err := s.drafts.BumpRevision(ctx, tx, draftID, expected)
			if err != nil {
				return err
			}
			if next != sess.Revision() {
				return fmt.Errorf("%w: stored %d, session %d", repository.ErrStaleRevision, next, sess.Revision())
			}
			return nil
		})
	}
	if err != nil {
		s.sessions.Delete(draftID)
		s.logger.Error("persist draft change", zap.String("draft_id", draftID), zap.Int64("revision", expected), zap.Error(err))
		return s.translate(err, "failed to save draft change")
	}
	return nil
}

func (s *DraftService) acquire(ctx context.Context, draftID string) (func(), error) {
	waitCtx := ctx
	if s.cfg.LockTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, s.cfg.LockTimeout)
		defer cancel()
	}
	release, err := s.locks.acquire(waitCtx, draftID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrDraftBusy.Code, appErrors.ErrDraftBusy.Status, fmt.Sprintf("draft %s is being modified by another request", draftID))
	}
	return release, nil
}

// session returns the cached session or loads it. Callers hold the draft lock.
func (s *DraftService) session(ctx context.Context, actor Actor, draftID string) (*timetable.Session, error) {
	if entry, ok := s.sessions.Get(draftID); ok {
		if !actor.canAccess(entry.ownerID) {
			return nil, draftNotFound(draftID)
		}
		return entry.session, nil
	}

	draft, err := s.loadDraft(ctx, actor, draftID)
	if err != nil {
		return nil, err
	}
	entries, err := s.rosters.ListByDraft(ctx, draftID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load draft roster")
	}
	lessons, err := s.lessons.ListByDraft(ctx, draftID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load draft lessons")
	}
	catalog, err := s.catalog.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	sess, err := timetable.NewSession(draft.ID, draft.Revision, catalog.Restrict(models.RosterFromEntries(entries)), draft.Config, lessons,
		timetable.WithIDGenerator(s.newID),
		timetable.WithClock(s.now),
		timetable.WithMaxViolations(s.cfg.MaxViolations),
	)
	if err != nil {
		s.logger.Error("stored draft is inconsistent", zap.String("draft_id", draftID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "stored draft is inconsistent")
	}
	s.sessions.Save(draftID, draft.OwnerID, sess)
	return sess, nil
}

func (s *DraftService) loadDraft(ctx context.Context, actor Actor, draftID string) (*models.ScheduleDraft, error) {
	draft, err := s.drafts.FindByID(ctx, draftID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, draftNotFound(draftID)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load draft")
	}
	if !actor.canAccess(draft.OwnerID) {
		return nil, draftNotFound(draftID)
	}
	return draft, nil
}

func (s *DraftService) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	if s.tx == nil {
		return appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *DraftService) translate(err error, message string) error {
	var appErr *appErrors.Error
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, repository.ErrStaleRevision):
		return appErrors.Wrap(err, appErrors.ErrRevisionConflict.Code, appErrors.ErrRevisionConflict.Status, "draft changed concurrently; reload and retry")
	case errors.Is(err, sql.ErrNoRows):
		return appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "draft or lesson no longer exists")
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
	}
}

func draftNotFound(draftID string) error {
	return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("draft %s not found", draftID))
}

func validateDraftConfig(cfg models.DraftConfig) error {
	if len(cfg.SchoolDays) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "at least one school day is required")
	}
	for _, d := range cfg.SchoolDays {
		if !d.Valid() {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown school day %q", d))
		}
	}
	if cfg.DayEnd <= cfg.DayStart {
		return appErrors.Clone(appErrors.ErrValidation, "day end must be after day start")
	}
	if cfg.SessionMinutes <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "session length must be positive")
	}
	return nil
}

func mutationResponse(o *timetable.Outcome) *dto.MutationResponse {
	violations := o.Violations
	if violations == nil {
		violations = []models.ConstraintViolation{}
	}
	return &dto.MutationResponse{
		Accepted:   o.Accepted(),
		Lesson:     o.Lesson,
		Violations: violations,
		Revision:   o.Revision,
	}
}

func validationResponse(r *timetable.ValidationReport, revision int64) *dto.ValidationResponse {
	violations := r.Violations
	if violations == nil {
		violations = []models.ConstraintViolation{}
	}
	return &dto.ValidationResponse{
		Valid:      r.Valid(),
		Violations: violations,
		Truncated:  r.Truncated,
		Checked:    r.Checked,
		Revision:   revision,
	}
}
