package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClonedSentinelMatchesByCode(t *testing.T) {
	err := fmt.Errorf("commit draft-1: %w", Clone(ErrRevisionConflict, "draft revision is 4, not 3"))

	assert.True(t, errors.Is(err, ErrRevisionConflict))
	assert.False(t, errors.Is(err, ErrDraftBusy))
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	wrapped := Wrap(sql.ErrNoRows, ErrNotFound.Code, ErrNotFound.Status, "draft not found")
	got := FromError(fmt.Errorf("load: %w", wrapped))
	assert.Equal(t, http.StatusNotFound, got.Status)
	assert.True(t, errors.Is(got, sql.ErrNoRows))

	internal := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, internal.Code)
	assert.Equal(t, "internal server error: boom", internal.Error())
}
