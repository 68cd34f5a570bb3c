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

type lessonMutator interface {
	Lessons(ctx context.Context, actor service.Actor, draftID string) ([]models.Lesson, error)
	LiveLessons(ctx context.Context, filter models.LessonFilter) ([]models.Lesson, error)
	AddLesson(ctx context.Context, actor service.Actor, draftID string, req dto.AddLessonRequest) (*dto.MutationResponse, error)
	MoveLesson(ctx context.Context, actor service.Actor, draftID, lessonID string, req dto.MoveLessonRequest) (*dto.MutationResponse, error)
	ReassignRoom(ctx context.Context, actor service.Actor, draftID, lessonID string, req dto.ReassignRoomRequest) (*dto.MutationResponse, error)
	RemoveLesson(ctx context.Context, actor service.Actor, draftID, lessonID string, revision int64) (*dto.MutationResponse, error)
	ReplaceLessons(ctx context.Context, actor service.Actor, draftID string, req dto.ReplaceLessonsRequest) (*dto.ValidationResponse, error)
}

// LessonHandler exposes lesson mutations inside drafts and the live schedule listing.
type LessonHandler struct {
	service lessonMutator
}

// NewLessonHandler constructs the handler.
func NewLessonHandler(svc lessonMutator) *LessonHandler {
	return &LessonHandler{service: svc}
}

// List godoc
// @Summary List lessons of a draft
// @Tags Lessons
// @Produce json
// @Param id path string true "Draft ID"
// @Success 200 {object} response.Envelope
// @Router /drafts/{id}/lessons [get]
func (h *LessonHandler) List(c *gin.Context) {
	lessons, err := h.service.Lessons(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, nonNilLessons(lessons), nil, map[string]interface{}{"count": len(lessons)})
}

// Live godoc
// @Summary List the committed schedule
// @Tags Lessons
// @Produce json
// @Param teacherId query string false "Teacher ID"
// @Param classId query string false "Class ID"
// @Param day query string false "Day, e.g. MONDAY"
// @Success 200 {object} response.Envelope
// @Router /timetable/live [get]
func (h *LessonHandler) Live(c *gin.Context) {
	filter := models.LessonFilter{
		TeacherID: c.Query("teacherId"),
		ClassID:   c.Query("classId"),
	}
	if raw := c.Query("day"); raw != "" {
		day, err := models.ParseDay(raw)
		if err != nil {
			response.Error(c, bindError(err, err.Error()))
			return
		}
		filter.Day = day
	}
	lessons, err := h.service.LiveLessons(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, nonNilLessons(lessons), nil, map[string]interface{}{"count": len(lessons)})
}

// Add godoc
// @Summary Place a lesson in a draft
// @Tags Lessons
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param payload body dto.AddLessonRequest true "Lesson payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /drafts/{id}/lessons [post]
func (h *LessonHandler) Add(c *gin.Context) {
	var req dto.AddLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid lesson payload"))
		return
	}
	result, err := h.service.AddLesson(c.Request.Context(), actorFromContext(c), c.Param("id"), req)
	writeMutation(c, result, err, http.StatusCreated)
}

// Replace godoc
// @Summary Replace every lesson of a draft
// @Tags Lessons
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param payload body dto.ReplaceLessonsRequest true "Lesson set"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /drafts/{id}/lessons [put]
func (h *LessonHandler) Replace(c *gin.Context) {
	var req dto.ReplaceLessonsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid lessons payload"))
		return
	}
	report, err := h.service.ReplaceLessons(c.Request.Context(), actorFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !report.Valid {
		response.Rejected(c, report)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Move godoc
// @Summary Move a lesson to another day or time
// @Tags Lessons
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param lessonId path string true "Lesson ID"
// @Param payload body dto.MoveLessonRequest true "Move payload"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /drafts/{id}/lessons/{lessonId}/move [patch]
func (h *LessonHandler) Move(c *gin.Context) {
	var req dto.MoveLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid move payload"))
		return
	}
	result, err := h.service.MoveLesson(c.Request.Context(), actorFromContext(c), c.Param("id"), c.Param("lessonId"), req)
	writeMutation(c, result, err, http.StatusOK)
}

// ReassignRoom godoc
// @Summary Set or clear a lesson's room
// @Tags Lessons
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param lessonId path string true "Lesson ID"
// @Param payload body dto.ReassignRoomRequest true "Room payload"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /drafts/{id}/lessons/{lessonId}/room [patch]
func (h *LessonHandler) ReassignRoom(c *gin.Context) {
	var req dto.ReassignRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid room payload"))
		return
	}
	result, err := h.service.ReassignRoom(c.Request.Context(), actorFromContext(c), c.Param("id"), c.Param("lessonId"), req)
	writeMutation(c, result, err, http.StatusOK)
}

// Remove godoc
// @Summary Remove a lesson from a draft
// @Tags Lessons
// @Produce json
// @Param id path string true "Draft ID"
// @Param lessonId path string true "Lesson ID"
// @Param revision query int true "Expected revision"
// @Success 200 {object} response.Envelope
// @Router /drafts/{id}/lessons/{lessonId} [delete]
func (h *LessonHandler) Remove(c *gin.Context) {
	revision, err := revisionQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.RemoveLesson(c.Request.Context(), actorFromContext(c), c.Param("id"), c.Param("lessonId"), revision)
	writeMutation(c, result, err, http.StatusOK)
}

func writeMutation(c *gin.Context, result *dto.MutationResponse, err error, okStatus int) {
	if err != nil {
		response.Error(c, err)
		return
	}
	if !result.Accepted {
		response.Rejected(c, result)
		return
	}
	response.JSON(c, okStatus, result, nil)
}

func nonNilLessons(lessons []models.Lesson) []models.Lesson {
	if lessons == nil {
		return []models.Lesson{}
	}
	return lessons
}
