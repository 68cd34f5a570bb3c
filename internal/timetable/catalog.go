package timetable

import (
	"sort"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// Catalog is an immutable lookup view over classes, teachers, rooms, subjects and grades.
type Catalog struct {
	teachers map[string]models.CatalogTeacher
	classes  map[string]models.CatalogClass
	rooms    map[string]models.CatalogRoom
	subjects map[string]models.CatalogSubject
	grades   map[string]models.CatalogGrade
}

// NewCatalog indexes a snapshot by id.
func NewCatalog(snapshot models.CatalogSnapshot) *Catalog {
	c := &Catalog{
		teachers: make(map[string]models.CatalogTeacher, len(snapshot.Teachers)),
		classes:  make(map[string]models.CatalogClass, len(snapshot.Classes)),
		rooms:    make(map[string]models.CatalogRoom, len(snapshot.Rooms)),
		subjects: make(map[string]models.CatalogSubject, len(snapshot.Subjects)),
		grades:   make(map[string]models.CatalogGrade, len(snapshot.Grades)),
	}
	for _, t := range snapshot.Teachers {
		c.teachers[t.ID] = t
	}
	for _, cl := range snapshot.Classes {
		c.classes[cl.ID] = cl
	}
	for _, r := range snapshot.Rooms {
		c.rooms[r.ID] = r
	}
	for _, s := range snapshot.Subjects {
		c.subjects[s.ID] = s
	}
	for _, g := range snapshot.Grades {
		c.grades[g.ID] = g
	}
	return c
}

// Restrict narrows the catalog to a draft roster. Empty roster lists keep every entity of that kind.
func (c *Catalog) Restrict(roster models.DraftRoster) *Catalog {
	out := &Catalog{
		teachers: filterByID(c.teachers, roster.TeacherIDs),
		classes:  filterByID(c.classes, roster.ClassIDs),
		rooms:    filterByID(c.rooms, roster.RoomIDs),
		subjects: filterByID(c.subjects, roster.SubjectIDs),
		grades:   filterByID(c.grades, roster.GradeIDs),
	}
	if len(roster.GradeIDs) > 0 {
		for id, class := range out.classes {
			if _, ok := out.grades[class.GradeID]; !ok {
				delete(out.classes, id)
			}
		}
	}
	return out
}

func filterByID[T any](src map[string]T, ids []string) map[string]T {
	if len(ids) == 0 {
		out := make(map[string]T, len(src))
		for k, v := range src {
			out[k] = v
		}
		return out
	}
	out := make(map[string]T, len(ids))
	for _, id := range ids {
		if v, ok := src[id]; ok {
			out[id] = v
		}
	}
	return out
}

// Teacher looks up a teacher by id.
func (c *Catalog) Teacher(id string) (models.CatalogTeacher, bool) {
	t, ok := c.teachers[id]
	return t, ok
}

// Class looks up a class by id.
func (c *Catalog) Class(id string) (models.CatalogClass, bool) {
	cl, ok := c.classes[id]
	return cl, ok
}

// Room looks up a room by id.
func (c *Catalog) Room(id string) (models.CatalogRoom, bool) {
	r, ok := c.rooms[id]
	return r, ok
}

// Subject looks up a subject by id.
func (c *Catalog) Subject(id string) (models.CatalogSubject, bool) {
	s, ok := c.subjects[id]
	return s, ok
}

// Teachers returns every teacher ordered by id.
func (c *Catalog) Teachers() []models.CatalogTeacher {
	out := make([]models.CatalogTeacher, 0, len(c.teachers))
	for _, t := range c.teachers {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Snapshot returns the catalog contents ordered by id.
func (c *Catalog) Snapshot() models.CatalogSnapshot {
	snap := models.CatalogSnapshot{Teachers: c.Teachers()}
	for _, cl := range c.classes {
		snap.Classes = append(snap.Classes, cl)
	}
	for _, r := range c.rooms {
		snap.Rooms = append(snap.Rooms, r)
	}
	for _, s := range c.subjects {
		snap.Subjects = append(snap.Subjects, s)
	}
	for _, g := range c.grades {
		snap.Grades = append(snap.Grades, g)
	}
	sort.Slice(snap.Classes, func(i, j int) bool { return snap.Classes[i].ID < snap.Classes[j].ID })
	sort.Slice(snap.Rooms, func(i, j int) bool { return snap.Rooms[i].ID < snap.Rooms[j].ID })
	sort.Slice(snap.Subjects, func(i, j int) bool { return snap.Subjects[i].ID < snap.Subjects[j].ID })
	sort.Slice(snap.Grades, func(i, j int) bool { return snap.Grades[i].ID < snap.Grades[j].ID })
	return snap
}
