package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDayDecodesAnyCase(t *testing.T) {
	var lesson Lesson
	require.NoError(t, json.Unmarshal([]byte(`{"id":"l-1","day":"monday","startTime":"08:00","endTime":"09:00"}`), &lesson))
	assert.Equal(t, DayMonday, lesson.Day)

	var cfg DraftConfig
	require.NoError(t, yaml.Unmarshal([]byte("schoolDays: [Tuesday, FRIDAY]\n"), &cfg))
	assert.Equal(t, []Day{DayTuesday, DayFriday}, cfg.SchoolDays)
}

func TestDayKeepsUnknownNames(t *testing.T) {
	var lesson Lesson
	require.NoError(t, json.Unmarshal([]byte(`{"day":"funday"}`), &lesson))
	assert.Equal(t, Day("funday"), lesson.Day)
	assert.False(t, lesson.Day.Valid())
}

func TestParseClock(t *testing.T) {
	c, err := ParseClock("07:45")
	require.NoError(t, err)
	assert.Equal(t, Clock(7, 45), c)
	assert.Equal(t, "07:45", c.String())

	_, err = ParseClock("25:00")
	assert.Error(t, err)
}
