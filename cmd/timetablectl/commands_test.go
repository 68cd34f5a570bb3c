package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureHeader = `
config:
  schoolDays: [MONDAY, TUESDAY, WEDNESDAY, THURSDAY, FRIDAY]
  dayStart: "07:00"
  dayEnd: "15:00"
  sessionMinutes: 45
catalog:
  teachers:
    - {id: T1, name: Budi, qualifiedSubjectIds: [math]}
    - {id: T2, name: Sari, qualifiedSubjectIds: [math]}
  classes:
    - {id: C1, name: X IPA 1, gradeId: X, capacity: 36, enrolledCount: 30}
    - {id: C2, name: X IPA 2, gradeId: X, capacity: 36, enrolledCount: 25}
  rooms:
    - {id: R1, name: Lab, capacity: 40}
  subjects:
    - {id: math, name: Matematika}
  grades:
    - {id: X, name: Kelas X}
`

func writeFixture(t *testing.T, lessons string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "week.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fixtureHeader+lessons), 0o600))
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestValidateCleanFixture(t *testing.T) {
	path := writeFixture(t, `
lessons:
  - {id: l-1, day: MONDAY, startTime: "08:00", endTime: "08:45", classId: C1, subjectId: math, teacherId: T1, roomId: R1}
  - {id: l-2, day: MONDAY, startTime: "08:45", endTime: "09:30", classId: C1, subjectId: math, teacherId: T1, roomId: R1}
`)

	out, err := runCommand(t, "validate", "--file", path, "-o", "json")
	require.NoError(t, err)

	var report struct {
		Violations []map[string]interface{} `json:"violations"`
		Checked    int                      `json:"checked"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Empty(t, report.Violations)
	assert.Equal(t, 2, report.Checked)
}

func TestValidateReportsConflicts(t *testing.T) {
	path := writeFixture(t, `
lessons:
  - {id: l-1, day: MONDAY, startTime: "08:00", endTime: "08:45", classId: C1, subjectId: math, teacherId: T1}
  - {id: l-2, day: MONDAY, startTime: "08:30", endTime: "09:15", classId: C2, subjectId: math, teacherId: T1}
`)

	out, err := runCommand(t, "validate", "--file", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 violation(s)")
	assert.Contains(t, out, "TEACHER_CONFLICT")
	assert.Contains(t, out, "l-2")
}

func TestValidateNamesMissingLessonIDs(t *testing.T) {
	path := writeFixture(t, `
lessons:
  - {day: MONDAY, startTime: "08:00", endTime: "08:45", classId: C1, subjectId: math, teacherId: T1}
  - {day: MONDAY, startTime: "08:00", endTime: "08:45", classId: C1, subjectId: math, teacherId: T2}
`)

	out, err := runCommand(t, "validate", "--file", path)
	require.Error(t, err)
	assert.Contains(t, out, "CLASS_CONFLICT")
	assert.Contains(t, out, "lesson-2")
}

func TestValidateUnknownTeacherIsStructural(t *testing.T) {
	path := writeFixture(t, `
lessons:
  - {id: l-1, day: MONDAY, startTime: "08:00", endTime: "08:45", classId: C1, teacherId: T9}
`)

	_, err := runCommand(t, "validate", "--file", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "T9")
}

func TestReplacementsFromFixture(t *testing.T) {
	path := writeFixture(t, `
lessons:
  - {id: l-1, day: MONDAY, startTime: "08:00", endTime: "08:45", classId: C1, subjectId: math, teacherId: T1}
absence:
  teacherId: T1
  date: "2026-10-19"
`)

	out, err := runCommand(t, "replacements", "--file", path, "-o", "json")
	require.NoError(t, err)

	var result struct {
		Day       string `json:"day"`
		Solutions []struct {
			Kind                 string  `json:"kind"`
			ReplacementTeacherID *string `json:"replacementTeacherId"`
		} `json:"solutions"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "MONDAY", result.Day)
	require.NotEmpty(t, result.Solutions)
	assert.Equal(t, "internal_substitution", result.Solutions[0].Kind)
	require.NotNil(t, result.Solutions[0].ReplacementTeacherID)
	assert.Equal(t, "T2", *result.Solutions[0].ReplacementTeacherID)
	assert.Equal(t, "cancel", result.Solutions[len(result.Solutions)-1].Kind)
}

func TestReplacementsFlagsOverrideFixture(t *testing.T) {
	path := writeFixture(t, `
lessons:
  - {id: l-1, day: MONDAY, startTime: "08:00", endTime: "08:45", classId: C1, subjectId: math, teacherId: T1}
absence:
  teacherId: T1
  date: "2026-10-19"
`)

	out, err := runCommand(t, "replacements", "--file", path, "--date", "2026-10-20")
	require.NoError(t, err)
	assert.Contains(t, out, "no_action")
	assert.Contains(t, out, "day: TUESDAY")
}

func TestReplacementsRequiresAbsence(t *testing.T) {
	path := writeFixture(t, "lessons: []\n")

	_, err := runCommand(t, "replacements", "--file", path)
	require.Error(t, err)

	_, err = runCommand(t, "replacements", "--file", path, "--teacher", "T1", "--date", "19-10-2026")
	require.Error(t, err)
}

func TestUnknownOutputFormat(t *testing.T) {
	path := writeFixture(t, "lessons: []\n")

	_, err := runCommand(t, "validate", "--file", path, "-o", "xml")
	assert.Error(t, err)
}

func TestTokenCommand(t *testing.T) {
	chdirForTest(t, t.TempDir())
	t.Setenv("JWT_SECRET", "cli-secret")

	out, err := runCommand(t, "token", "--user", "admin-1", "-o", "json")
	require.NoError(t, err)

	var body map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.NotEmpty(t, body["accessToken"])
	assert.NotEmpty(t, body["expiresAt"])

	t.Setenv("ENV", "production")
	_, err = runCommand(t, "token")
	assert.Error(t, err)
}
