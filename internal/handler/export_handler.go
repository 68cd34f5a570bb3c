package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	"github.com/noah-isme/sma-timetable-api/pkg/response"
)

type timetableExporter interface {
	ExportDraft(ctx context.Context, actor service.Actor, draftID string, q dto.ExportQuery) (*service.ExportResult, error)
	ExportLive(ctx context.Context, q dto.ExportQuery) (*service.ExportResult, error)
}

// ExportHandler streams timetable downloads.
type ExportHandler struct {
	service timetableExporter
}

// NewExportHandler constructs the handler.
func NewExportHandler(svc timetableExporter) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Draft godoc
// @Summary Download a draft as csv, pdf, xlsx or ics
// @Tags Exports
// @Produce octet-stream
// @Param id path string true "Draft ID"
// @Param format query string true "csv, pdf, xlsx or ics"
// @Param from query string false "First date of the ics recurrence (YYYY-MM-DD)"
// @Param weeks query int false "ics recurrence count"
// @Success 200 {file} binary
// @Router /drafts/{id}/export [get]
func (h *ExportHandler) Draft(c *gin.Context) {
	var q dto.ExportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, bindError(err, "invalid export query"))
		return
	}
	result, err := h.service.ExportDraft(c.Request.Context(), actorFromContext(c), c.Param("id"), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, result.Filename, result.ContentType, result.Payload)
}

// Live godoc
// @Summary Download the committed schedule
// @Tags Exports
// @Produce octet-stream
// @Param format query string true "csv, pdf, xlsx or ics"
// @Success 200 {file} binary
// @Router /timetable/live/export [get]
func (h *ExportHandler) Live(c *gin.Context) {
	var q dto.ExportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, bindError(err, "invalid export query"))
		return
	}
	result, err := h.service.ExportLive(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, result.Filename, result.ContentType, result.Payload)
}
