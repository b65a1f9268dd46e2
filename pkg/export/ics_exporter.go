package export

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
)

// Event is one calendar entry for the ICS exporter.
type Event struct {
	UID         string
	Summary     string
	Description string
	Location    string
	Start       time.Time
	Duration    time.Duration
}

// ICSExporter renders events as an iCalendar feed.
type ICSExporter struct {
	productID string
	now       func() time.Time
}

// NewICSExporter constructs an ICS exporter.
func NewICSExporter(productID string) *ICSExporter {
	if productID == "" {
		productID = "-//timetable-admin-api//EN"
	}
	return &ICSExporter{productID: productID, now: time.Now}
}

// ContentType of the rendered document.
func (e *ICSExporter) ContentType() string { return "text/calendar; charset=utf-8" }

// Extension used for download file names.
func (e *ICSExporter) Extension() string { return "ics" }

// Render serializes the events into a PUBLISH calendar named name.
func (e *ICSExporter) Render(name string, events []Event) ([]byte, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(e.productID)
	if name != "" {
		cal.SetName(name)
		cal.SetXWRCalName(name)
	}

	stamp := e.now()
	for _, ev := range events {
		if ev.UID == "" {
			return nil, fmt.Errorf("event %q has no uid", ev.Summary)
		}
		if ev.Start.IsZero() {
			return nil, fmt.Errorf("event %s has no start", ev.UID)
		}
		duration := ev.Duration
		if duration <= 0 {
			duration = time.Hour
		}
		event := cal.AddEvent(ev.UID)
		event.SetDtStampTime(stamp)
		event.SetStartAt(ev.Start)
		event.SetEndAt(ev.Start.Add(duration))
		event.SetSummary(ev.Summary)
		if ev.Location != "" {
			event.SetLocation(ev.Location)
		}
		if ev.Description != "" {
			event.SetDescription(ev.Description)
		}
	}
	return []byte(cal.Serialize()), nil
}
