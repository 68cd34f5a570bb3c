package models

import (
	"time"

	"github.com/lib/pq"
)

// DraftConfig is the configuration snapshot a draft is validated against.
type DraftConfig struct {
	SchoolDays     []Day     `json:"schoolDays" yaml:"schoolDays"`
	DayStart       ClockTime `json:"dayStart" yaml:"dayStart"`
	DayEnd         ClockTime `json:"dayEnd" yaml:"dayEnd"`
	SessionMinutes int       `json:"sessionMinutes" yaml:"sessionMinutes"`
}

// IsSchoolDay reports whether day is configured as a teaching day.
func (c DraftConfig) IsSchoolDay(day Day) bool {
	for _, d := range c.SchoolDays {
		if d == day {
			return true
		}
	}
	return false
}

// DraftRoster lists the entities a draft considers. An empty list means every entity of that kind.
type DraftRoster struct {
	ClassIDs   []string `json:"classIds" yaml:"classIds"`
	SubjectIDs []string `json:"subjectIds" yaml:"subjectIds"`
	TeacherIDs []string `json:"teacherIds" yaml:"teacherIds"`
	RoomIDs    []string `json:"roomIds" yaml:"roomIds"`
	GradeIDs   []string `json:"gradeIds" yaml:"gradeIds"`
}

// RosterKind tags roster rows in storage.
type RosterKind string

const (
	RosterClass   RosterKind = "CLASS"
	RosterSubject RosterKind = "SUBJECT"
	RosterTeacher RosterKind = "TEACHER"
	RosterRoom    RosterKind = "ROOM"
	RosterGrade   RosterKind = "GRADE"
)

// RosterEntry is one persisted roster row.
type RosterEntry struct {
	DraftID  string     `db:"draft_id" json:"draftId"`
	Kind     RosterKind `db:"entity_kind" json:"kind"`
	EntityID string     `db:"entity_id" json:"entityId"`
}

// Entries flattens the roster into storage rows.
func (r DraftRoster) Entries(draftID string) []RosterEntry {
	var entries []RosterEntry
	add := func(kind RosterKind, ids []string) {
		for _, id := range ids {
			entries = append(entries, RosterEntry{DraftID: draftID, Kind: kind, EntityID: id})
		}
	}
	add(RosterClass, r.ClassIDs)
	add(RosterSubject, r.SubjectIDs)
	add(RosterTeacher, r.TeacherIDs)
	add(RosterRoom, r.RoomIDs)
	add(RosterGrade, r.GradeIDs)
	return entries
}

// RosterFromEntries rebuilds a roster from storage rows.
func RosterFromEntries(entries []RosterEntry) DraftRoster {
	var roster DraftRoster
	for _, e := range entries {
		switch e.Kind {
		case RosterClass:
			roster.ClassIDs = append(roster.ClassIDs, e.EntityID)
		case RosterSubject:
			roster.SubjectIDs = append(roster.SubjectIDs, e.EntityID)
		case RosterTeacher:
			roster.TeacherIDs = append(roster.TeacherIDs, e.EntityID)
		case RosterRoom:
			roster.RoomIDs = append(roster.RoomIDs, e.EntityID)
		case RosterGrade:
			roster.GradeIDs = append(roster.GradeIDs, e.EntityID)
		}
	}
	return roster
}

// ScheduleDraft is a user-owned candidate timetable isolated from the live schedule.
type ScheduleDraft struct {
	ID             string         `db:"id" json:"id"`
	OwnerID        string         `db:"owner_id" json:"ownerId"`
	Name           string         `db:"name" json:"name"`
	Revision       int64          `db:"revision" json:"revision"`
	IsActive       bool           `db:"is_active" json:"isActive"`
	SchoolDays     pq.StringArray `db:"school_days" json:"-"`
	DayStart       ClockTime      `db:"day_start" json:"-"`
	DayEnd         ClockTime      `db:"day_end" json:"-"`
	SessionMinutes int            `db:"session_minutes" json:"-"`
	Config         DraftConfig    `db:"-" json:"config"`
	Roster         DraftRoster    `db:"-" json:"roster"`
	CommittedAt    *time.Time     `db:"committed_at" json:"committedAt,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updatedAt"`
}

// SyncConfigFromColumns populates Config from the flat storage columns.
func (d *ScheduleDraft) SyncConfigFromColumns() {
	days := make([]Day, 0, len(d.SchoolDays))
	for _, raw := range d.SchoolDays {
		days = append(days, Day(raw))
	}
	d.Config = DraftConfig{
		SchoolDays:     days,
		DayStart:       d.DayStart,
		DayEnd:         d.DayEnd,
		SessionMinutes: d.SessionMinutes,
	}
}

// SyncColumnsFromConfig flattens Config into storage columns.
func (d *ScheduleDraft) SyncColumnsFromConfig() {
	days := make(pq.StringArray, 0, len(d.Config.SchoolDays))
	for _, day := range d.Config.SchoolDays {
		days = append(days, string(day))
	}
	d.SchoolDays = days
	d.DayStart = d.Config.DayStart
	d.DayEnd = d.Config.DayEnd
	d.SessionMinutes = d.Config.SessionMinutes
}
