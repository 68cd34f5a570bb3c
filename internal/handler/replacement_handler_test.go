package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type replacementFinderMock struct {
	resp    *dto.ReplacementResponse
	err     error
	lastReq dto.ReplacementRequest
	actor   service.Actor
}

func (m *replacementFinderMock) Find(ctx context.Context, actor service.Actor, req dto.ReplacementRequest) (*dto.ReplacementResponse, error) {
	m.actor, m.lastReq = actor, req
	return m.resp, m.err
}

func TestReplacementHandlerFind(t *testing.T) {
	mock := &replacementFinderMock{resp: &dto.ReplacementResponse{
		AbsentTeacherID: "T1",
		Date:            "2026-10-19",
		Day:             models.DayMonday,
		Solutions:       []models.ReplacementSolution{{Kind: models.SolutionCancel, Impact: models.ImpactHigh}},
	}}
	h := NewReplacementHandler(mock)

	w := performRequest(t, http.MethodPost, "/replacements", `{"absentTeacherId":"T1","date":"2026-10-19","useAdvisor":true}`, nil, h.Find)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mock.lastReq.UseAdvisor)
	assert.Equal(t, "user-1", mock.actor.ID)
	envelope := decodeEnvelope(t, w)
	assert.Nil(t, envelope["meta"])
	solutions := envelope["data"].(map[string]interface{})["solutions"].([]interface{})
	assert.Len(t, solutions, 1)
}

func TestReplacementHandlerFlagsAdvisorFailure(t *testing.T) {
	mock := &replacementFinderMock{resp: &dto.ReplacementResponse{AbsentTeacherID: "T1", AdvisorError: "advisor unavailable; template solutions only"}}
	h := NewReplacementHandler(mock)

	w := performRequest(t, http.MethodPost, "/replacements", `{"absentTeacherId":"T1","date":"2026-10-19","useAdvisor":true}`, nil, h.Find)

	require.Equal(t, http.StatusOK, w.Code)
	meta := decodeEnvelope(t, w)["meta"].(map[string]interface{})
	assert.Equal(t, "unavailable", meta["advisor"])
}

func TestReplacementHandlerErrors(t *testing.T) {
	h := NewReplacementHandler(&replacementFinderMock{})
	w := performRequest(t, http.MethodPost, "/replacements", `[]`, nil, h.Find)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	h = NewReplacementHandler(&replacementFinderMock{err: appErrors.Clone(appErrors.ErrValidation, "unknown teacher T9")})
	w = performRequest(t, http.MethodPost, "/replacements", `{"absentTeacherId":"T9","date":"2026-10-19"}`, nil, h.Find)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
