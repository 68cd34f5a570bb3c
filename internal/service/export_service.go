package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/timetable"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/export"
)

type tableRenderer interface {
	Render(t export.Table) ([]byte, error)
}

type calendarRenderer interface {
	Render(events []export.WeeklyEvent, from time.Time, weeks int) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	// CalendarWeeks is the default recurrence count for ics exports.
	CalendarWeeks int
	Location      *time.Location
}

// ExportResult is a rendered file ready to stream.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders drafts and the live schedule as csv, pdf, xlsx or ics.
type ExportService struct {
	drafts  draftReader
	live    liveLessonReader
	catalog catalogProvider
	csv     tableRenderer
	pdf     tableRenderer
	xlsx    tableRenderer
	ics     calendarRenderer
	logger  *zap.Logger
	cfg     ExportConfig
	now     func() time.Time
}

// NewExportService constructs an ExportService with the default renderers.
func NewExportService(drafts draftReader, live liveLessonReader, catalog catalogProvider, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CalendarWeeks <= 0 {
		cfg.CalendarWeeks = 18
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &ExportService{
		drafts:  drafts,
		live:    live,
		catalog: catalog,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		xlsx:    export.NewXLSXExporter(),
		ics:     export.NewICSExporter(""),
		logger:  logger,
		cfg:     cfg,
		now:     time.Now,
	}
}

// ExportDraft renders a draft the actor may read.
func (s *ExportService) ExportDraft(ctx context.Context, actor Actor, draftID string, q dto.ExportQuery) (*ExportResult, error) {
	draft, err := s.drafts.Get(ctx, actor, draftID)
	if err != nil {
		return nil, err
	}
	lessons, err := s.drafts.Lessons(ctx, actor, draftID)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, draft.Name, lessons, q)
}

// ExportLive renders the committed schedule.
func (s *ExportService) ExportLive(ctx context.Context, q dto.ExportQuery) (*ExportResult, error) {
	lessons, err := s.live.ListLive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load live schedule")
	}
	return s.render(ctx, "live schedule", lessons, q)
}

func (s *ExportService) render(ctx context.Context, title string, lessons []models.Lesson, q dto.ExportQuery) (*ExportResult, error) {
	catalog, err := s.catalog.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	lessons = sortForExport(lessons)
	filename := fmt.Sprintf("timetable_%s_%s.%s", sanitizeFilename(title), s.now().UTC().Format("20060102_150405"), q.Format)

	var (
		payload     []byte
		contentType string
	)
	switch q.Format {
	case "csv":
		payload, err = s.csv.Render(lessonTable(title, lessons, catalog))
		contentType = "text/csv"
	case "pdf":
		payload, err = s.pdf.Render(lessonTable(title, lessons, catalog))
		contentType = "application/pdf"
	case "xlsx":
		payload, err = s.xlsx.Render(lessonTable(title, lessons, catalog))
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "ics":
		from := s.now().In(s.cfg.Location)
		if q.From != "" {
			if from, err = time.ParseInLocation("2006-01-02", q.From, s.cfg.Location); err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "from must be YYYY-MM-DD")
			}
		}
		weeks := q.Weeks
		if weeks <= 0 {
			weeks = s.cfg.CalendarWeeks
		}
		payload, err = s.ics.Render(lessonEvents(lessons, catalog), from, weeks)
		contentType = "text/calendar"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", q.Format))
	}
	if err != nil {
		s.logger.Error("render export", zap.String("format", q.Format), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return &ExportResult{Filename: filename, ContentType: contentType, Payload: payload}, nil
}

func sortForExport(lessons []models.Lesson) []models.Lesson {
	out := append([]models.Lesson(nil), lessons...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Day.Index() != b.Day.Index() {
			return a.Day.Index() < b.Day.Index()
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.ClassID < b.ClassID
	})
	return out
}

func lessonTable(title string, lessons []models.Lesson, catalog *timetable.Catalog) export.Table {
	table := export.Table{
		Title:   title,
		Headers: []string{"Day", "Time", "Class", "Subject", "Teacher", "Room"},
		Rows:    make([][]string, 0, len(lessons)),
	}
	for _, l := range lessons {
		table.Rows = append(table.Rows, []string{
			string(l.Day),
			timetable.LessonInterval(l).String(),
			className(catalog, l.ClassID),
			subjectName(catalog, l.Subject()),
			teacherName(catalog, l.TeacherID),
			roomName(catalog, l.Room()),
		})
	}
	return table
}

func lessonEvents(lessons []models.Lesson, catalog *timetable.Catalog) []export.WeeklyEvent {
	events := make([]export.WeeklyEvent, 0, len(lessons))
	for _, l := range lessons {
		summary := className(catalog, l.ClassID)
		if subject := subjectName(catalog, l.Subject()); subject != "" {
			summary = subject + " - " + summary
		}
		events = append(events, export.WeeklyEvent{
			UID:         l.ID + "@sma-timetable",
			Summary:     summary,
			Location:    roomName(catalog, l.Room()),
			Description: "Teacher: " + teacherName(catalog, l.TeacherID),
			Weekday:     time.Weekday(l.Day.Index() % 7),
			Start:       int(l.StartTime),
			End:         int(l.EndTime),
		})
	}
	return events
}

func className(c *timetable.Catalog, id string) string {
	if cl, ok := c.Class(id); ok && cl.Name != "" {
		return cl.Name
	}
	return id
}

func subjectName(c *timetable.Catalog, id string) string {
	if id == "" {
		return ""
	}
	if s, ok := c.Subject(id); ok && s.Name != "" {
		return s.Name
	}
	return id
}

func teacherName(c *timetable.Catalog, id string) string {
	if t, ok := c.Teacher(id); ok && t.Name != "" {
		return t.Name
	}
	return id
}

func roomName(c *timetable.Catalog, id string) string {
	if id == "" {
		return ""
	}
	if r, ok := c.Room(id); ok && r.Name != "" {
		return r.Name
	}
	return id
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := strings.ToLower(replacer.Replace(raw))
	if len(result) > 60 {
		return result[:60]
	}
	return result
}
