package dto

import "github.com/noah-isme/sma-timetable-api/internal/models"

// CreateDraftRequest creates an empty draft. A nil config uses the school defaults.
type CreateDraftRequest struct {
	Name   string              `json:"name" validate:"required,max=120"`
	Config *models.DraftConfig `json:"config"`
	Roster models.DraftRoster  `json:"roster"`
}

// CloneDraftRequest creates a draft pre-filled with the live schedule.
type CloneDraftRequest struct {
	Name   string             `json:"name" validate:"required,max=120"`
	Roster models.DraftRoster `json:"roster"`
}

// RevisionRequest carries the revision token for operations without further payload.
type RevisionRequest struct {
	Revision int64 `json:"revision" validate:"min=0"`
}

// ValidationResponse reports a full validation of a draft.
type ValidationResponse struct {
	Valid      bool                         `json:"valid"`
	Violations []models.ConstraintViolation `json:"violations"`
	Truncated  bool                         `json:"truncated"`
	Checked    int                          `json:"checked"`
	Revision   int64                        `json:"revision"`
}

// CommitResponse summarises a draft promoted to the live schedule.
type CommitResponse struct {
	DraftID     string `json:"draftId"`
	LessonCount int    `json:"lessonCount"`
	Revision    int64  `json:"revision"`
}

// AvailabilityQuery asks whether an entity is free for an interval.
type AvailabilityQuery struct {
	Kind      string `form:"kind" validate:"required,oneof=teacher class room TEACHER CLASS ROOM"`
	EntityID  string `form:"entityId" validate:"required"`
	Day       string `form:"day" validate:"required"`
	StartTime string `form:"start" validate:"required"`
	EndTime   string `form:"end" validate:"required"`
}

// AvailabilityResponse answers an AvailabilityQuery.
type AvailabilityResponse struct {
	Free bool     `json:"free"`
	Busy []string `json:"busy"`
}

// ExportQuery selects the export format and, for ics, the recurrence window.
type ExportQuery struct {
	Format string `form:"format" validate:"required,oneof=csv pdf xlsx ics"`
	From   string `form:"from" validate:"omitempty,datetime=2006-01-02"`
	Weeks  int    `form:"weeks" validate:"omitempty,min=1,max=52"`
}
