package export

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
)

// WeeklyEvent is a recurring slot on a weekday between two clock times (minutes since midnight).
type WeeklyEvent struct {
	UID         string
	Summary     string
	Location    string
	Description string
	Weekday     time.Weekday
	Start       int
	End         int
}

// ICSExporter renders weekly events as an iCalendar feed.
type ICSExporter struct {
	ProductID string
}

// NewICSExporter constructs an iCalendar exporter.
func NewICSExporter(productID string) *ICSExporter {
	if productID == "" {
		productID = "-//sma-timetable-api//timetable//EN"
	}
	return &ICSExporter{ProductID: productID}
}

// Render anchors every event on its first weekday on or after from and repeats it weekly for weeks
// occurrences.
func (e *ICSExporter) Render(events []WeeklyEvent, from time.Time, weeks int) ([]byte, error) {
	if weeks <= 0 {
		return nil, fmt.Errorf("ics requires a positive week count")
	}
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(e.ProductID)

	stamp := time.Now().UTC()
	for _, ev := range events {
		if ev.End <= ev.Start {
			return nil, fmt.Errorf("event %s ends before it starts", ev.UID)
		}
		day := firstWeekday(from, ev.Weekday)
		start := day.Add(time.Duration(ev.Start) * time.Minute)
		end := day.Add(time.Duration(ev.End) * time.Minute)

		vevent := cal.AddEvent(ev.UID)
		vevent.SetDtStampTime(stamp)
		vevent.SetStartAt(start)
		vevent.SetEndAt(end)
		vevent.SetSummary(ev.Summary)
		if ev.Location != "" {
			vevent.SetLocation(ev.Location)
		}
		if ev.Description != "" {
			vevent.SetDescription(ev.Description)
		}
		vevent.AddProperty(ics.ComponentPropertyRrule, fmt.Sprintf("FREQ=WEEKLY;COUNT=%d", weeks))
	}
	return []byte(cal.Serialize()), nil
}

func firstWeekday(from time.Time, weekday time.Weekday) time.Time {
	base := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	shift := (int(weekday) - int(base.Weekday()) + 7) % 7
	return base.AddDate(0, 0, shift)
}
