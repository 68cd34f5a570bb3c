package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	"github.com/noah-isme/sma-timetable-api/pkg/response"
)

type draftManager interface {
	Create(ctx context.Context, actor service.Actor, req dto.CreateDraftRequest) (*models.ScheduleDraft, error)
	CloneLive(ctx context.Context, actor service.Actor, req dto.CloneDraftRequest) (*models.ScheduleDraft, error)
	Get(ctx context.Context, actor service.Actor, draftID string) (*models.ScheduleDraft, error)
	List(ctx context.Context, actor service.Actor) ([]models.ScheduleDraft, error)
	Delete(ctx context.Context, actor service.Actor, draftID string) error
	Activate(ctx context.Context, actor service.Actor, draftID string) (*models.ScheduleDraft, error)
	Validate(ctx context.Context, actor service.Actor, draftID string) (*dto.ValidationResponse, error)
	Commit(ctx context.Context, actor service.Actor, draftID string, revision int64) (*dto.CommitResponse, *dto.ValidationResponse, error)
	Availability(ctx context.Context, actor service.Actor, draftID string, q dto.AvailabilityQuery) (*dto.AvailabilityResponse, error)
}

// DraftHandler exposes draft lifecycle endpoints.
type DraftHandler struct {
	service draftManager
}

// NewDraftHandler constructs the handler.
func NewDraftHandler(svc draftManager) *DraftHandler {
	return &DraftHandler{service: svc}
}

// List godoc
// @Summary List the caller's drafts
// @Tags Drafts
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /drafts [get]
func (h *DraftHandler) List(c *gin.Context) {
	drafts, err := h.service.List(c.Request.Context(), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if drafts == nil {
		drafts = []models.ScheduleDraft{}
	}
	response.JSON(c, http.StatusOK, drafts, nil)
}

// Create godoc
// @Summary Create an empty draft
// @Tags Drafts
// @Accept json
// @Produce json
// @Param payload body dto.CreateDraftRequest true "Draft payload"
// @Success 201 {object} response.Envelope
// @Router /drafts [post]
func (h *DraftHandler) Create(c *gin.Context) {
	var req dto.CreateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid draft payload"))
		return
	}
	draft, err := h.service.Create(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, draft)
}

// Clone godoc
// @Summary Create a draft holding a copy of the live schedule
// @Tags Drafts
// @Accept json
// @Produce json
// @Param payload body dto.CloneDraftRequest true "Clone payload"
// @Success 201 {object} response.Envelope
// @Router /drafts/clone [post]
func (h *DraftHandler) Clone(c *gin.Context) {
	var req dto.CloneDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid clone payload"))
		return
	}
	draft, err := h.service.CloneLive(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, draft)
}

// Get godoc
// @Summary Get a draft
// @Tags Drafts
// @Produce json
// @Param id path string true "Draft ID"
// @Success 200 {object} response.Envelope
// @Router /drafts/{id} [get]
func (h *DraftHandler) Get(c *gin.Context) {
	draft, err := h.service.Get(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, draft, nil)
}

// Delete godoc
// @Summary Delete a draft and its lessons
// @Tags Drafts
// @Param id path string true "Draft ID"
// @Success 204
// @Router /drafts/{id} [delete]
func (h *DraftHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), actorFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Activate godoc
// @Summary Mark a draft active
// @Tags Drafts
// @Produce json
// @Param id path string true "Draft ID"
// @Success 200 {object} response.Envelope
// @Router /drafts/{id}/activate [post]
func (h *DraftHandler) Activate(c *gin.Context) {
	draft, err := h.service.Activate(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, draft, nil)
}

// Validate godoc
// @Summary Validate every lesson pair of a draft
// @Tags Drafts
// @Produce json
// @Param id path string true "Draft ID"
// @Success 200 {object} response.Envelope
// @Router /drafts/{id}/validate [post]
func (h *DraftHandler) Validate(c *gin.Context) {
	report, err := h.service.Validate(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Commit godoc
// @Summary Replace the live schedule with a valid draft
// @Description Admins only.
// @Tags Drafts
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param payload body dto.RevisionRequest true "Expected revision"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /drafts/{id}/commit [post]
func (h *DraftHandler) Commit(c *gin.Context) {
	var req dto.RevisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid commit payload"))
		return
	}
	result, report, err := h.service.Commit(c.Request.Context(), actorFromContext(c), c.Param("id"), req.Revision)
	if err != nil {
		response.Error(c, err)
		return
	}
	if report != nil {
		response.Rejected(c, report)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Availability godoc
// @Summary Check whether a teacher, class or room is free in a draft
// @Tags Drafts
// @Produce json
// @Param id path string true "Draft ID"
// @Param kind query string true "teacher, class or room"
// @Param entityId query string true "Entity ID"
// @Param day query string true "Day, e.g. MONDAY"
// @Param start query string true "HH:MM"
// @Param end query string true "HH:MM"
// @Success 200 {object} response.Envelope
// @Router /drafts/{id}/availability [get]
func (h *DraftHandler) Availability(c *gin.Context) {
	var q dto.AvailabilityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, bindError(err, "invalid availability query"))
		return
	}
	result, err := h.service.Availability(c.Request.Context(), actorFromContext(c), c.Param("id"), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
