package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/middleware"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

func actorFromContext(c *gin.Context) service.Actor {
	return service.ActorFromClaims(middleware.Claims(c))
}

func bindError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message)
}

func revisionQuery(c *gin.Context) (int64, error) {
	raw := c.Query("revision")
	if raw == "" {
		return 0, appErrors.Clone(appErrors.ErrValidation, "revision query parameter is required")
	}
	rev, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || rev < 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "revision must be a non-negative integer")
	}
	return rev, nil
}
