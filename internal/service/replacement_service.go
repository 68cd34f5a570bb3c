package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/timetable"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type liveLessonReader interface {
	ListLive(ctx context.Context) ([]models.Lesson, error)
}

type draftReader interface {
	Get(ctx context.Context, actor Actor, draftID string) (*models.ScheduleDraft, error)
	Lessons(ctx context.Context, actor Actor, draftID string) ([]models.Lesson, error)
}

// ReplacementService answers teacher-absence queries over the live schedule or a draft.
type ReplacementService struct {
	catalog   catalogProvider
	live      liveLessonReader
	drafts    draftReader
	advisor   timetable.Advisor
	defaults  models.DraftConfig
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewReplacementService constructs the service. A nil advisor disables advisor proposals.
func NewReplacementService(catalog catalogProvider, live liveLessonReader, drafts draftReader, advisor timetable.Advisor, defaults models.DraftConfig, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ReplacementService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReplacementService{
		catalog:   catalog,
		live:      live,
		drafts:    drafts,
		advisor:   advisor,
		defaults:  defaults,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// Find returns the ranked solutions for the absence. Nothing is persisted.
func (s *ReplacementService) Find(ctx context.Context, actor Actor, req dto.ReplacementRequest) (*dto.ReplacementResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid replacement query")
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "date must be YYYY-MM-DD")
	}

	catalog, err := s.catalog.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	config := s.defaults
	var lessons []models.Lesson
	if req.DraftID != "" {
		draft, err := s.drafts.Get(ctx, actor, req.DraftID)
		if err != nil {
			return nil, err
		}
		config = draft.Config
		catalog = catalog.Restrict(draft.Roster)
		if lessons, err = s.drafts.Lessons(ctx, actor, req.DraftID); err != nil {
			return nil, err
		}
	} else if lessons, err = s.live.ListLive(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load live schedule")
	}

	var opts []timetable.FinderOption
	if req.UseAdvisor && s.advisor != nil {
		opts = append(opts, timetable.WithAdvisor(s.advisor))
	}
	finder, err := timetable.NewFinder(catalog, config, lessons, opts...)
	if err != nil {
		s.logger.Error("stored schedule is inconsistent", zap.String("draft_id", req.DraftID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "stored schedule is inconsistent")
	}
	result, err := finder.Find(ctx, timetable.FindRequest{AbsentTeacherID: req.AbsentTeacherID, Date: date})
	if err != nil {
		return nil, err
	}

	resp := &dto.ReplacementResponse{
		AbsentTeacherID: result.AbsentTeacherID,
		Date:            result.Date,
		Day:             result.Day,
		Solutions:       result.Solutions,
		Candidates:      make([]dto.LessonCandidatesResponse, 0, len(result.Candidates)),
	}
	for _, c := range result.Candidates {
		resp.Candidates = append(resp.Candidates, dto.LessonCandidatesResponse{LessonID: c.LessonID, TeacherIDs: c.TeacherIDs})
	}
	for _, r := range result.Rejected {
		resp.Rejected = append(resp.Rejected, dto.RejectedProposalResponse{
			Description: r.Proposal.Description,
			Reason:      r.Reason,
			Violations:  r.Violations,
		})
	}
	if result.AdvisorErr != nil {
		s.logger.Warn("replacement advisor failed", zap.String("teacher_id", req.AbsentTeacherID), zap.Error(result.AdvisorErr))
		resp.AdvisorError = "advisor unavailable; template solutions only"
	}
	if len(result.Rejected) > 0 {
		s.logger.Info("advisor proposals rejected", zap.String("teacher_id", req.AbsentTeacherID), zap.Int("rejected", len(result.Rejected)))
	}
	s.metrics.RecordReplacement(result.Solutions)
	return resp, nil
}
