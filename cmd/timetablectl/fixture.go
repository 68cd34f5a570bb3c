package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/timetable"
)

// fixture is a self-contained school week: the catalog, the draft config and a lesson set.
type fixture struct {
	Config  models.DraftConfig     `yaml:"config"`
	Catalog models.CatalogSnapshot `yaml:"catalog"`
	Lessons []models.Lesson        `yaml:"lessons"`
	Absence *fixtureAbsence        `yaml:"absence,omitempty"`
}

type fixtureAbsence struct {
	TeacherID string `yaml:"teacherId"`
	Date      string `yaml:"date"`
}

func loadFixture(path string) (*fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var f fixture
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode fixture %s: %w", path, err)
	}
	if len(f.Config.SchoolDays) == 0 {
		return nil, fmt.Errorf("fixture %s: config.schoolDays is empty", path)
	}
	for i := range f.Lessons {
		if f.Lessons[i].ID == "" {
			f.Lessons[i].ID = fmt.Sprintf("lesson-%d", i+1)
		}
	}
	return &f, nil
}

func (f *fixture) catalog() *timetable.Catalog {
	return timetable.NewCatalog(f.Catalog)
}

func (f *fixture) absence(teacherID, date string) (timetable.FindRequest, error) {
	if f.Absence != nil {
		if teacherID == "" {
			teacherID = f.Absence.TeacherID
		}
		if date == "" {
			date = f.Absence.Date
		}
	}
	if teacherID == "" || date == "" {
		return timetable.FindRequest{}, fmt.Errorf("an absent teacher and a date are required")
	}
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return timetable.FindRequest{}, fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}
	return timetable.FindRequest{AbsentTeacherID: teacherID, Date: day}, nil
}
