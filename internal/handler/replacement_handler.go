package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	"github.com/noah-isme/sma-timetable-api/pkg/response"
)

type replacementFinder interface {
	Find(ctx context.Context, actor service.Actor, req dto.ReplacementRequest) (*dto.ReplacementResponse, error)
}

// ReplacementHandler answers teacher-absence queries.
type ReplacementHandler struct {
	service replacementFinder
}

// NewReplacementHandler constructs the handler.
func NewReplacementHandler(svc replacementFinder) *ReplacementHandler {
	return &ReplacementHandler{service: svc}
}

// Find godoc
// @Summary Propose replacements for an absent teacher
// @Description Solutions are ordered by impact and never persisted. Set useAdvisor to include advisor proposals.
// @Tags Replacements
// @Accept json
// @Produce json
// @Param payload body dto.ReplacementRequest true "Absence"
// @Success 200 {object} response.Envelope
// @Router /replacements [post]
func (h *ReplacementHandler) Find(c *gin.Context) {
	var req dto.ReplacementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid replacement query"))
		return
	}
	result, err := h.service.Find(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	var meta map[string]interface{}
	if result.AdvisorError != "" {
		meta = map[string]interface{}{"advisor": "unavailable"}
	}
	response.JSON(c, http.StatusOK, result, nil, meta)
}
