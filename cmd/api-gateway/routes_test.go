package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/handler"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	"github.com/noah-isme/sma-timetable-api/pkg/config"
)

func newTestRouter(t *testing.T) (*gin.Engine, *service.TokenService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens := service.NewTokenService(service.TokenConfig{Secret: "route-secret"})
	r := gin.New()
	registerRoutes(r, &config.Config{Env: config.EnvProduction, APIPrefix: "/api/v1"}, routeHandlers{
		drafts:       handler.NewDraftHandler(nil),
		lessons:      handler.NewLessonHandler(nil),
		replacements: handler.NewReplacementHandler(nil),
		exports:      handler.NewExportHandler(nil),
		catalog:      handler.NewCatalogHandler(nil, nil),
		metrics:      handler.NewMetricsHandler(service.NewMetricsService(), nil),
	}, tokens)
	return r, tokens
}

func bearer(t *testing.T, tokens *service.TokenService, role models.UserRole) string {
	t.Helper()
	token, _, err := tokens.Issue("user-1", role, "Test User")
	require.NoError(t, err)
	return "Bearer " + token
}

func TestRoutesOpsAreUnauthenticated(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, path := range []string{"/health", "/ready"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/docs/index.html", nil))
	assert.Equal(t, http.StatusNotFound, w.Code, "docs are hidden in production")
}

func TestRoutesRequireToken(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/drafts", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoutesEnforceRoles(t *testing.T) {
	r, tokens := newTestRouter(t)

	cases := []struct {
		method string
		path   string
		role   models.UserRole
	}{
		{http.MethodGet, "/api/v1/drafts", models.RoleStudent},
		{http.MethodPost, "/api/v1/drafts/draft-1/lessons", models.RoleStudent},
		{http.MethodPost, "/api/v1/drafts/draft-1/commit", models.RoleTeacher},
		{http.MethodPost, "/api/v1/replacements", models.RoleTeacher},
		{http.MethodPost, "/api/v1/catalog/refresh", models.RoleTeacher},
		{http.MethodGet, "/api/v1/metrics/summary", models.RoleTeacher},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(tc.method, tc.path, nil)
		req.Header.Set("Authorization", bearer(t, tokens, tc.role))
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code, "%s %s as %s", tc.method, tc.path, tc.role)
	}
}

func TestRoutesAdminReachesSummary(t *testing.T) {
	r, tokens := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/metrics/summary", nil)
	req.Header.Set("Authorization", bearer(t, tokens, models.RoleAdmin))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
