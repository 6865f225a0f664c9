package ics

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "lifeman/internal/log"
	"lifeman/internal/model"
)

// ParseError reports a calendar document that is not well-formed, or a
// component inside it that cannot be mapped onto the model.
type ParseError struct {
	Component string // "VCALENDAR", "VEVENT" or "VTODO"
	UID       string
	Err       error
}

func (e *ParseError) Error() string {
	if e.UID != "" {
		return fmt.Sprintf("ics: parse %s %q: %v", e.Component, e.UID, e.Err)
	}
	return fmt.Sprintf("ics: parse %s: %v", e.Component, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Decode parses a full iCalendar document into a Calendar aggregate.
//
//   - VEVENT components become model.Event, VTODO components model.Todo.
//   - Any other component (VJOURNAL, VTIMEZONE, ...) is ignored.
//   - Unlike a feed reader, a single bad component fails the whole decode:
//     the file is rewritten on every mutation and silently dropping an
//     item would delete it from disk.
//   - Floating date-times (no Z, no TZID) are read in loc; nil means
//     time.Local.
//
// Components and properties the model cannot hold are reported in a single
// info line, since the next save will not write them back.
func Decode(body []byte, loc *time.Location) (*model.Calendar, error) {
	if loc == nil {
		loc = time.Local
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, &ParseError{Component: "VCALENDAR", Err: errors.New("empty document")}
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, &ParseError{Component: "VCALENDAR", Err: err}
	}

	out := model.NewCalendar()

	for _, ve := range cal.Events() {
		ev, perr := parseVEvent(ve, loc)
		if perr != nil {
			return nil, perr
		}
		if err := out.AddEvent(ev); err != nil {
			return nil, &ParseError{Component: "VEVENT", UID: ev.UID, Err: err}
		}
	}

	for _, vt := range cal.Todos() {
		td, perr := parseVTodo(vt, loc)
		if perr != nil {
			return nil, perr
		}
		if err := out.AddTodo(td); err != nil {
			return nil, &ParseError{Component: "VTODO", UID: td.UID, Err: err}
		}
	}

	if dropped := unsupported(cal); len(dropped) > 0 {
		appLog.Info("ics data will not be kept on save", "dropped", strings.Join(dropped, ","))
	}

	appLog.Debug("ics decode completed", "events", len(out.Events), "todos", len(out.Todos))
	return out, nil
}

func parseVEvent(ve *ical.VEvent, loc *time.Location) (model.Event, error) {
	var out model.Event

	uid, err := requireUID(&ve.ComponentBase)
	if err != nil {
		return out, &ParseError{Component: "VEVENT", Err: err}
	}
	out.UID = uid

	out.Summary = textProp(&ve.ComponentBase, ical.ComponentPropertySummary)
	out.Description = textProp(&ve.ComponentBase, ical.ComponentPropertyDescription)
	out.Location = textProp(&ve.ComponentBase, ical.ComponentPropertyLocation)

	// GetStartAt/GetEndAt handle TZID, UTC and floating forms.
	start, err := ve.GetStartAt()
	if err != nil {
		return out, &ParseError{Component: "VEVENT", UID: uid, Err: fmt.Errorf("DTSTART: %w", err)}
	}
	out.Start = inZone(&ve.ComponentBase, ical.ComponentPropertyDtStart, start, loc)

	if ve.HasProperty(ical.ComponentPropertyDtEnd) {
		end, err := ve.GetEndAt()
		if err != nil {
			return out, &ParseError{Component: "VEVENT", UID: uid, Err: fmt.Errorf("DTEND: %w", err)}
		}
		out.End = inZone(&ve.ComponentBase, ical.ComponentPropertyDtEnd, end, loc)
	} else {
		// RFC 5545: no DTEND means the event ends where it starts.
		out.End = out.Start
	}

	return out, nil
}

func parseVTodo(vt *ical.VTodo, loc *time.Location) (model.Todo, error) {
	var out model.Todo

	uid, err := requireUID(&vt.ComponentBase)
	if err != nil {
		return out, &ParseError{Component: "VTODO", Err: err}
	}
	out.UID = uid

	out.Summary = textProp(&vt.ComponentBase, ical.ComponentPropertySummary)
	out.Description = textProp(&vt.ComponentBase, ical.ComponentPropertyDescription)

	// DUE is optional in RFC 5545; a todo without one keeps a zero Due.
	if vt.HasProperty(ical.ComponentPropertyDue) {
		due, err := vt.GetDueAt()
		if err != nil {
			return out, &ParseError{Component: "VTODO", UID: uid, Err: fmt.Errorf("DUE: %w", err)}
		}
		out.Due = inZone(&vt.ComponentBase, ical.ComponentPropertyDue, due, loc)
	}

	if p := vt.GetProperty(ical.ComponentPropertyCompleted); p != nil && p.Value != "" {
		completed, err := parseICSTime(p.Value, loc)
		if err != nil {
			return out, &ParseError{Component: "VTODO", UID: uid, Err: fmt.Errorf("COMPLETED: %w", err)}
		}
		out.Completed = &completed
	}

	return out, nil
}

func requireUID(cb *ical.ComponentBase) (string, error) {
	p := cb.GetProperty(ical.ComponentPropertyUniqueId)
	if p == nil || strings.TrimSpace(p.Value) == "" {
		return "", errors.New("missing UID")
	}
	return p.Value, nil
}

func textProp(cb *ical.ComponentBase, prop ical.ComponentProperty) string {
	if p := cb.GetProperty(prop); p != nil {
		return p.Value
	}
	return ""
}

// inZone moves a floating value that golang-ical read in time.Local onto
// the same wall clock in loc. UTC and TZID values are returned unchanged.
func inZone(cb *ical.ComponentBase, prop ical.ComponentProperty, t time.Time, loc *time.Location) time.Time {
	p := cb.GetProperty(prop)
	if p == nil || loc == time.Local || strings.HasSuffix(strings.TrimSpace(p.Value), "Z") {
		return t
	}
	if _, ok := p.ICalParameters["TZID"]; ok {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

var (
	keptEventProps = propSet(ical.ComponentPropertyUniqueId, ical.ComponentPropertyDtstamp,
		ical.ComponentPropertySummary, ical.ComponentPropertyDescription, ical.ComponentPropertyLocation,
		ical.ComponentPropertyDtStart, ical.ComponentPropertyDtEnd)
	keptTodoProps = propSet(ical.ComponentPropertyUniqueId, ical.ComponentPropertyDtstamp,
		ical.ComponentPropertySummary, ical.ComponentPropertyDescription, ical.ComponentPropertyDue,
		ical.ComponentPropertyCompleted, ical.ComponentPropertyStatus)
)

func propSet(props ...ical.ComponentProperty) map[string]bool {
	m := make(map[string]bool, len(props))
	for _, p := range props {
		m[string(p)] = true
	}
	return m
}

// unsupported lists, sorted and deduplicated, the components and the
// VEVENT/VTODO properties that Encode does not write back.
func unsupported(cal *ical.Calendar) []string {
	seen := map[string]bool{}
	props := func(owner string, cb *ical.ComponentBase, kept map[string]bool) {
		for _, p := range cb.Properties {
			if !kept[strings.ToUpper(p.IANAToken)] {
				seen[owner+"."+strings.ToUpper(p.IANAToken)] = true
			}
		}
		for _, sub := range cb.Components {
			seen[owner+"."+componentName(sub)] = true
		}
	}

	for _, c := range cal.Components {
		switch v := c.(type) {
		case *ical.VEvent:
			props("VEVENT", &v.ComponentBase, keptEventProps)
		case *ical.VTodo:
			props("VTODO", &v.ComponentBase, keptTodoProps)
		default:
			seen[componentName(c)] = true
		}
	}

	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func componentName(c ical.Component) string {
	switch v := c.(type) {
	case *ical.VEvent:
		return "VEVENT"
	case *ical.VTodo:
		return "VTODO"
	case *ical.VJournal:
		return "VJOURNAL"
	case *ical.VBusy:
		return "VFREEBUSY"
	case *ical.VTimezone:
		return "VTIMEZONE"
	case *ical.VAlarm:
		return "VALARM"
	case *ical.GeneralComponent:
		return strings.ToUpper(v.Token)
	default:
		return fmt.Sprintf("%T", c)
	}
}

// parseICSTime parses a basic ICS date/date-time string into time.Time.
// COMPLETED is always UTC per RFC 5545, but floating and date-only values
// written by other clients are accepted too and read in loc.
func parseICSTime(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, errors.New("empty time value")
	}

	// UTC form, e.g., 20250101T090000Z
	if strings.HasSuffix(v, "Z") {
		const layout = "20060102T150405Z"
		return time.Parse(layout, v)
	}

	// Local date-time, e.g., 20250101T090000
	if strings.Contains(v, "T") {
		const layout = "20060102T150405"
		return time.ParseInLocation(layout, v, loc)
	}

	// Date-only, e.g., 20250101
	const layoutDate = "20060102"
	return time.ParseInLocation(layoutDate, v, loc)
}
