package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/middleware"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/response"
)

type draftManagerMock struct {
	draft       *models.ScheduleDraft
	drafts      []models.ScheduleDraft
	err         error
	report      *dto.ValidationResponse
	commit      *dto.CommitResponse
	commitFail  *dto.ValidationResponse
	avail       *dto.AvailabilityResponse
	lastActor   service.Actor
	lastID      string
	lastRev     int64
	lastQuery   dto.AvailabilityQuery
	lastCreate  dto.CreateDraftRequest
	deleteCalls int
}

func (m *draftManagerMock) Create(ctx context.Context, actor service.Actor, req dto.CreateDraftRequest) (*models.ScheduleDraft, error) {
	m.lastActor = actor
	m.lastCreate = req
	return m.draft, m.err
}

func (m *draftManagerMock) CloneLive(ctx context.Context, actor service.Actor, req dto.CloneDraftRequest) (*models.ScheduleDraft, error) {
	m.lastActor = actor
	return m.draft, m.err
}

func (m *draftManagerMock) Get(ctx context.Context, actor service.Actor, draftID string) (*models.ScheduleDraft, error) {
	m.lastActor, m.lastID = actor, draftID
	return m.draft, m.err
}

func (m *draftManagerMock) List(ctx context.Context, actor service.Actor) ([]models.ScheduleDraft, error) {
	m.lastActor = actor
	return m.drafts, m.err
}

func (m *draftManagerMock) Delete(ctx context.Context, actor service.Actor, draftID string) error {
	m.lastID = draftID
	m.deleteCalls++
	return m.err
}

func (m *draftManagerMock) Activate(ctx context.Context, actor service.Actor, draftID string) (*models.ScheduleDraft, error) {
	m.lastID = draftID
	return m.draft, m.err
}

func (m *draftManagerMock) Validate(ctx context.Context, actor service.Actor, draftID string) (*dto.ValidationResponse, error) {
	m.lastID = draftID
	return m.report, m.err
}

func (m *draftManagerMock) Commit(ctx context.Context, actor service.Actor, draftID string, revision int64) (*dto.CommitResponse, *dto.ValidationResponse, error) {
	m.lastID, m.lastRev = draftID, revision
	return m.commit, m.commitFail, m.err
}

func (m *draftManagerMock) Availability(ctx context.Context, actor service.Actor, draftID string, q dto.AvailabilityQuery) (*dto.AvailabilityResponse, error) {
	m.lastID, m.lastQuery = draftID, q
	return m.avail, m.err
}

var teacherClaims = &models.JWTClaims{UserID: "user-1", Role: models.RoleTeacher}

func performRequest(t *testing.T, method, target string, body interface{}, params gin.Params, fn gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		payload, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = params
	c.Set(middleware.ContextUserKey, teacherClaims)

	fn(c)
	// gin's engine flushes the pending status after the handler chain; mirror it here.
	c.Writer.WriteHeaderNow()
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func idParam(id string) gin.Params {
	return gin.Params{{Key: "id", Value: id}}
}

func TestDraftHandlerCreate(t *testing.T) {
	mock := &draftManagerMock{draft: &models.ScheduleDraft{ID: "draft-1", Name: "Semester 1"}}
	h := NewDraftHandler(mock)

	w := performRequest(t, http.MethodPost, "/drafts", dto.CreateDraftRequest{Name: "Semester 1"}, nil, h.Create)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "user-1", mock.lastActor.ID)
	assert.False(t, mock.lastActor.Admin)
	assert.Equal(t, "Semester 1", mock.lastCreate.Name)
	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "draft-1", data["id"])
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestDraftHandlerCreateMalformedBody(t *testing.T) {
	h := NewDraftHandler(&draftManagerMock{})

	w := performRequest(t, http.MethodPost, "/drafts", `{"name":`, nil, h.Create)

	require.Equal(t, http.StatusBadRequest, w.Code)
	errBody := decodeEnvelope(t, w)["error"].(map[string]interface{})
	assert.Equal(t, appErrors.ErrValidation.Code, errBody["code"])
}

func TestDraftHandlerListNeverReturnsNull(t *testing.T) {
	h := NewDraftHandler(&draftManagerMock{})

	w := performRequest(t, http.MethodGet, "/drafts", nil, nil, h.List)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[]}`, w.Body.String())
}

func TestDraftHandlerGetNotFound(t *testing.T) {
	mock := &draftManagerMock{err: appErrors.Clone(appErrors.ErrNotFound, "draft not found")}
	h := NewDraftHandler(mock)

	w := performRequest(t, http.MethodGet, "/drafts/draft-9", nil, idParam("draft-9"), h.Get)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "draft-9", mock.lastID)
}

func TestDraftHandlerDelete(t *testing.T) {
	mock := &draftManagerMock{}
	h := NewDraftHandler(mock)

	w := performRequest(t, http.MethodDelete, "/drafts/draft-1", nil, idParam("draft-1"), h.Delete)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 1, mock.deleteCalls)
}

func TestDraftHandlerValidateReportsViolationsWithOK(t *testing.T) {
	mock := &draftManagerMock{report: &dto.ValidationResponse{
		Valid:      false,
		Violations: []models.ConstraintViolation{{Kind: models.ViolationTeacherConflict, LessonID: "l-2"}},
		Checked:    2,
		Revision:   3,
	}}
	h := NewDraftHandler(mock)

	w := performRequest(t, http.MethodPost, "/drafts/draft-1/validate", nil, idParam("draft-1"), h.Validate)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, false, data["valid"])
	assert.Len(t, data["violations"], 1)
}

func TestDraftHandlerCommit(t *testing.T) {
	mock := &draftManagerMock{commit: &dto.CommitResponse{DraftID: "draft-1", LessonCount: 12, Revision: 4}}
	h := NewDraftHandler(mock)

	w := performRequest(t, http.MethodPost, "/drafts/draft-1/commit", dto.RevisionRequest{Revision: 4}, idParam("draft-1"), h.Commit)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(4), mock.lastRev)
}

func TestDraftHandlerCommitRejectsInvalidDraft(t *testing.T) {
	mock := &draftManagerMock{commitFail: &dto.ValidationResponse{
		Valid:      false,
		Violations: []models.ConstraintViolation{{Kind: models.ViolationRoomConflict, LessonID: "l-2"}},
	}}
	h := NewDraftHandler(mock)

	w := performRequest(t, http.MethodPost, "/drafts/draft-1/commit", dto.RevisionRequest{Revision: 2}, idParam("draft-1"), h.Commit)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	assert.Equal(t, appErrors.ErrConstraintViolation.Code, body.Error.Code)
	assert.NotNil(t, body.Data)
}

func TestDraftHandlerCommitRevisionConflict(t *testing.T) {
	mock := &draftManagerMock{err: appErrors.Clone(appErrors.ErrRevisionConflict, "draft revision is 5")}
	h := NewDraftHandler(mock)

	w := performRequest(t, http.MethodPost, "/drafts/draft-1/commit", dto.RevisionRequest{Revision: 2}, idParam("draft-1"), h.Commit)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDraftHandlerAvailabilityBindsQuery(t *testing.T) {
	mock := &draftManagerMock{avail: &dto.AvailabilityResponse{Free: false, Busy: []string{"l-1"}}}
	h := NewDraftHandler(mock)

	w := performRequest(t, http.MethodGet, "/drafts/draft-1/availability?kind=teacher&entityId=T1&day=MONDAY&start=08:00&end=08:45", nil, idParam("draft-1"), h.Availability)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.AvailabilityQuery{Kind: "teacher", EntityID: "T1", Day: "MONDAY", StartTime: "08:00", EndTime: "08:45"}, mock.lastQuery)
	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, false, data["free"])
}
