package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/pkg/response"
)

type catalogReader interface {
	Snapshot(ctx context.Context) (*models.CatalogSnapshot, error)
	Invalidate(ctx context.Context) error
}

type sessionFlusher interface {
	EvictAll() int
}

// CatalogHandler exposes the teacher, class, room and subject catalog the engine checks against.
type CatalogHandler struct {
	service  catalogReader
	sessions sessionFlusher
}

// NewCatalogHandler constructs the handler. sessions may be nil.
func NewCatalogHandler(svc catalogReader, sessions sessionFlusher) *CatalogHandler {
	return &CatalogHandler{service: svc, sessions: sessions}
}

// Get godoc
// @Summary Current catalog snapshot
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /catalog [get]
func (h *CatalogHandler) Get(c *gin.Context) {
	snapshot, err := h.service.Snapshot(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot, nil)
}

// Refresh godoc
// @Summary Drop the cached catalog so the next read reloads it
// @Description Cached draft sessions are dropped as well and rebuilt against the new catalog.
// @Tags Catalog
// @Success 204
// @Router /catalog/refresh [post]
func (h *CatalogHandler) Refresh(c *gin.Context) {
	if err := h.service.Invalidate(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	if h.sessions != nil {
		h.sessions.EvictAll()
	}
	response.NoContent(c)
}
