package dto

import "github.com/noah-isme/sma-timetable-api/internal/models"

// ReplacementRequest asks for remedies for an absent teacher on a date. DraftID selects a draft
// instead of the live schedule.
type ReplacementRequest struct {
	AbsentTeacherID string `json:"absentTeacherId" validate:"required"`
	Date            string `json:"date" validate:"required,datetime=2006-01-02"`
	DraftID         string `json:"draftId"`
	UseAdvisor      bool   `json:"useAdvisor"`
}

// RejectedProposalResponse explains why an advisor proposal was dropped.
type RejectedProposalResponse struct {
	Description string                       `json:"description"`
	Reason      string                       `json:"reason"`
	Violations  []models.ConstraintViolation `json:"violations,omitempty"`
}

// LessonCandidatesResponse lists ranked substitutes for one lesson.
type LessonCandidatesResponse struct {
	LessonID   string   `json:"lessonId"`
	TeacherIDs []string `json:"teacherIds"`
}

// ReplacementResponse lists solutions ordered by impact.
type ReplacementResponse struct {
	AbsentTeacherID string                       `json:"absentTeacherId"`
	Date            string                       `json:"date"`
	Day             models.Day                   `json:"day"`
	Solutions       []models.ReplacementSolution `json:"solutions"`
	Candidates      []LessonCandidatesResponse   `json:"candidates"`
	Rejected        []RejectedProposalResponse   `json:"rejected,omitempty"`
	AdvisorError    string                       `json:"advisorError,omitempty"`
}
