package seed

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/teambition/rrule-go"

	appLog "lifeman/internal/log"
	"lifeman/internal/model"
)

const defaultEventDuration = 15 * time.Minute

// Profile names a built-in seeding policy.
type Profile string

const (
	ProfileNone   Profile = "none"
	ProfileTodos  Profile = "todos"
	ProfileFull   Profile = "full"
	ProfileCustom Profile = "custom"
)

// Item is one default entry added to an empty calendar.
type Item struct {
	Name string `yaml:"name" json:"name"`

	// Schedule is either a standard 5-field cron spec ("30 12 * * *") or an
	// RFC 5545 recurrence rule ("FREQ=DAILY;BYHOUR=12;BYMINUTE=30"). Only
	// the next occurrence is materialized; nothing recurring is stored.
	Schedule string `yaml:"schedule" json:"schedule"`

	// Duration applies to events only. Zero means 15 minutes.
	Duration time.Duration `yaml:"duration,omitempty" json:"duration,omitempty"`
}

// Policy lists the default todos and events for a fresh store.
type Policy struct {
	Todos  []Item
	Events []Item
}

// IsZero reports whether the policy would add nothing.
func (p Policy) IsZero() bool {
	return len(p.Todos) == 0 && len(p.Events) == 0
}

var defaultTodos = []Item{
	{Name: "Breakfast", Schedule: "0 8 * * *"},
	{Name: "Drink water", Schedule: "0 10 * * *"},
	{Name: "Lunch", Schedule: "30 12 * * *"},
	{Name: "Drink water", Schedule: "0 15 * * *"},
	{Name: "Take a break", Schedule: "FREQ=DAILY;BYHOUR=16;BYMINUTE=0;BYSECOND=0"},
	{Name: "Dinner", Schedule: "0 19 * * *"},
}

var defaultEvents = []Item{
	{Name: "Breakfast", Schedule: "0 8 * * *", Duration: 30 * time.Minute},
	{Name: "Lunch", Schedule: "30 12 * * *", Duration: time.Hour},
	{Name: "Dinner", Schedule: "0 19 * * *", Duration: time.Hour},
}

// ForProfile returns the policy for a named profile. custom takes its items
// from the caller (usually the config file).
func ForProfile(p Profile, customTodos, customEvents []Item) (Policy, error) {
	switch p {
	case "", ProfileNone:
		return Policy{}, nil
	case ProfileTodos:
		return Policy{Todos: clone(defaultTodos)}, nil
	case ProfileFull:
		return Policy{Todos: clone(defaultTodos), Events: clone(defaultEvents)}, nil
	case ProfileCustom:
		return Policy{Todos: clone(customTodos), Events: clone(customEvents)}, nil
	default:
		return Policy{}, fmt.Errorf("seed: unknown profile %q", p)
	}
}

func clone(items []Item) []Item {
	if len(items) == 0 {
		return nil
	}
	out := make([]Item, len(items))
	copy(out, items)
	return out
}

// Validate checks that every item has a name and a parseable schedule.
func (p Policy) Validate() error {
	var errs []error
	for _, it := range append(clone(p.Todos), p.Events...) {
		if strings.TrimSpace(it.Name) == "" {
			errs = append(errs, fmt.Errorf("seed: item with schedule %q has no name", it.Schedule))
			continue
		}
		if _, err := Next(it.Schedule, time.Now()); err != nil {
			errs = append(errs, fmt.Errorf("seed: item %q: %w", it.Name, err))
		}
	}
	return errors.Join(errs...)
}

// Apply adds one todo per Todos item and one event per Events item to cal,
// each at the next occurrence of its schedule strictly after now (evaluated
// in loc). newUID supplies identifiers. It returns the number of items added.
func (p Policy) Apply(cal *model.Calendar, now time.Time, loc *time.Location, newUID func() string) (int, error) {
	if p.IsZero() {
		return 0, nil
	}
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)
	added := 0

	for _, it := range p.Todos {
		due, err := Next(it.Schedule, now)
		if err != nil {
			return added, fmt.Errorf("seed: todo %q: %w", it.Name, err)
		}
		if err := cal.AddTodo(model.Todo{UID: newUID(), Summary: it.Name, Due: due}); err != nil {
			return added, err
		}
		added++
	}

	for _, it := range p.Events {
		start, err := Next(it.Schedule, now)
		if err != nil {
			return added, fmt.Errorf("seed: event %q: %w", it.Name, err)
		}
		dur := it.Duration
		if dur <= 0 {
			dur = defaultEventDuration
		}
		ev := model.Event{UID: newUID(), Summary: it.Name, Start: start, End: start.Add(dur)}
		if err := cal.AddEvent(ev); err != nil {
			return added, err
		}
		added++
	}

	appLog.Info("seeded empty calendar", "todos", len(p.Todos), "events", len(p.Events))
	return added, nil
}

// Next returns the first occurrence of schedule strictly after now, in
// now's location.
func Next(schedule string, now time.Time) (time.Time, error) {
	schedule = strings.TrimSpace(schedule)
	if schedule == "" {
		return time.Time{}, errors.New("empty schedule")
	}
	if isRRule(schedule) {
		return nextRRule(schedule, now)
	}

	sched, err := cron.ParseStandard(schedule)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse cron %q: %w", schedule, err)
	}
	next := sched.Next(now)
	if next.IsZero() {
		return time.Time{}, fmt.Errorf("cron %q never fires", schedule)
	}
	return next, nil
}

func isRRule(s string) bool {
	u := strings.ToUpper(s)
	return strings.HasPrefix(u, "RRULE:") || strings.HasPrefix(u, "FREQ=")
}

func nextRRule(raw string, now time.Time) (time.Time, error) {
	if strings.HasPrefix(strings.ToUpper(raw), "RRULE:") {
		raw = raw[len("RRULE:"):]
	}
	r, err := rrule.StrToRRule(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse rrule %q: %w", raw, err)
	}

	// Anchor at local midnight so BYHOUR/BYMINUTE resolve in now's zone.
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	r.DTStart(midnight)

	next := r.After(now, false)
	if next.IsZero() {
		return time.Time{}, fmt.Errorf("rrule %q has no occurrence after %s", raw, now.Format(time.RFC3339))
	}
	return next, nil
}
