package ics

import (
	"time"

	ical "github.com/arran4/golang-ical"

	"lifeman/internal/model"
)

// ProductName is written into PRODID as "-//lifeman//Golang ICS Library".
const ProductName = "lifeman"

// Encode serializes the whole aggregate as an iCalendar document.
//
// Timestamps are written in UTC with second precision; DTSTAMP is set to
// stamp on every component. Events are written before todos, each group in
// collection order.
func Encode(cal *model.Calendar, stamp time.Time) string {
	return build(cal, stamp).Serialize()
}

func build(cal *model.Calendar, stamp time.Time) *ical.Calendar {
	out := ical.NewCalendarFor(ProductName)

	for _, ev := range cal.Events {
		ve := out.AddEvent(ev.UID)
		ve.SetDtStampTime(stamp)
		ve.SetSummary(ev.Summary)
		ve.SetStartAt(ev.Start)
		ve.SetEndAt(ev.End)
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}
		if ev.Location != "" {
			ve.SetLocation(ev.Location)
		}
	}

	for _, td := range cal.Todos {
		vt := out.AddTodo(td.UID)
		vt.SetDtStampTime(stamp)
		vt.SetSummary(td.Summary)
		if !td.Due.IsZero() {
			vt.SetDueAt(td.Due)
		}
		if td.Description != "" {
			vt.SetDescription(td.Description)
		}
		if td.Completed != nil {
			vt.SetCompletedAt(*td.Completed)
			vt.SetStatus(ical.ObjectStatusCompleted)
		}
	}

	return out
}
