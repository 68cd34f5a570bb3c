package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleTable() Table {
	return Table{
		Title:   "Draft A",
		Headers: []string{"Day", "Time", "Class"},
		Rows: [][]string{
			{"MONDAY", "08:00-08:45", "X IPA 1"},
			{"TUESDAY", "09:00-09:45"},
		},
	}
}

func TestCSVExporterPadsShortRows(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleTable())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Day,Time,Class", lines[0])
	assert.Equal(t, "TUESDAY,09:00-09:45,", lines[2])
}

func TestRenderersRejectMissingHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Table{})
	assert.Error(t, err)
	_, err = NewPDFExporter().Render(Table{})
	assert.Error(t, err)
	_, err = NewXLSXExporter().Render(Table{Headers: []string{"a"}, Rows: [][]string{{"1", "2"}}})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleTable())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestXLSXExporterRender(t *testing.T) {
	out, err := NewXLSXExporter().Render(sampleTable())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue(xlsxSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Draft A", title)
	header, err := f.GetCellValue(xlsxSheet, "C2")
	require.NoError(t, err)
	assert.Equal(t, "Class", header)
	value, err := f.GetCellValue(xlsxSheet, "A4")
	require.NoError(t, err)
	assert.Equal(t, "TUESDAY", value)
}

func TestICSExporterAnchorsWeekday(t *testing.T) {
	from := time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC) // Wednesday
	out, err := NewICSExporter("").Render([]WeeklyEvent{{
		UID:      "lesson-1@timetable",
		Summary:  "Math X IPA 1",
		Location: "R1",
		Weekday:  time.Monday,
		Start:    8 * 60,
		End:      8*60 + 45,
	}}, from, 18)
	require.NoError(t, err)

	body := string(out)
	assert.Contains(t, body, "BEGIN:VEVENT")
	assert.Contains(t, body, "20260720T080000Z")
	assert.Contains(t, body, "FREQ=WEEKLY;COUNT=18")
	assert.Contains(t, body, "LOCATION:R1")
}

func TestICSExporterRejectsBadInput(t *testing.T) {
	_, err := NewICSExporter("").Render(nil, time.Now(), 0)
	assert.Error(t, err)
	_, err = NewICSExporter("").Render([]WeeklyEvent{{UID: "x", Start: 60, End: 60}}, time.Now(), 1)
	assert.Error(t, err)
}
