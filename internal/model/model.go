package model

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound matches any NotFoundError via errors.Is.
	ErrNotFound = errors.New("item not found")

	ErrDuplicateUID = errors.New("duplicate uid")
)

// Kind names a collection inside the Calendar.
type Kind string

const (
	KindEvent Kind = "event"
	KindTodo  Kind = "todo"
)

// NotFoundError reports a UID that is not present in a collection.
type NotFoundError struct {
	Kind Kind
	UID  string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.UID)
}

func (e NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Event is a scheduled occurrence (VEVENT) with a start and end time.
type Event struct {
	UID string // iCalendar UID, immutable once assigned

	Summary     string
	Description string
	Location    string

	// Start <= End is expected but not checked.
	Start time.Time
	End   time.Time
}

// Todo is an action item (VTODO). Completed is nil while the todo is open.
type Todo struct {
	UID string

	Summary     string
	Description string

	Due       time.Time
	Completed *time.Time
}

// IsCompleted reports whether a completion timestamp is set.
func (t Todo) IsCompleted() bool {
	return t.Completed != nil
}

// Calendar is the in-memory aggregate of one calendar file. Slice order is
// the order items were read or added; callers must not rely on it.
type Calendar struct {
	Events []Event
	Todos  []Todo
}

// NewCalendar returns an empty aggregate.
func NewCalendar() *Calendar {
	return &Calendar{
		Events: []Event{},
		Todos:  []Todo{},
	}
}

// IsEmpty reports whether the calendar holds neither events nor todos.
func (c *Calendar) IsEmpty() bool {
	return len(c.Events) == 0 && len(c.Todos) == 0
}

func (c *Calendar) FindEvent(uid string) (int, bool) {
	for i := range c.Events {
		if c.Events[i].UID == uid {
			return i, true
		}
	}
	return -1, false
}

func (c *Calendar) FindTodo(uid string) (int, bool) {
	for i := range c.Todos {
		if c.Todos[i].UID == uid {
			return i, true
		}
	}
	return -1, false
}

// AddEvent appends ev, rejecting an empty or already used UID.
func (c *Calendar) AddEvent(ev Event) error {
	if ev.UID == "" {
		return errors.New("event uid is empty")
	}
	if _, ok := c.FindEvent(ev.UID); ok {
		return fmt.Errorf("%w: event %q", ErrDuplicateUID, ev.UID)
	}
	c.Events = append(c.Events, ev)
	return nil
}

// AddTodo appends td, rejecting an empty or already used UID.
func (c *Calendar) AddTodo(td Todo) error {
	if td.UID == "" {
		return errors.New("todo uid is empty")
	}
	if _, ok := c.FindTodo(td.UID); ok {
		return fmt.Errorf("%w: todo %q", ErrDuplicateUID, td.UID)
	}
	c.Todos = append(c.Todos, td)
	return nil
}

// RemoveEvent deletes the event with the given UID and returns it.
// The collection is untouched when no event matches.
func (c *Calendar) RemoveEvent(uid string) (Event, error) {
	i, ok := c.FindEvent(uid)
	if !ok {
		return Event{}, NotFoundError{Kind: KindEvent, UID: uid}
	}
	removed := c.Events[i]
	c.Events = append(c.Events[:i], c.Events[i+1:]...)
	return removed, nil
}

// RemoveTodo deletes the todo with the given UID and returns it.
func (c *Calendar) RemoveTodo(uid string) (Todo, error) {
	i, ok := c.FindTodo(uid)
	if !ok {
		return Todo{}, NotFoundError{Kind: KindTodo, UID: uid}
	}
	removed := c.Todos[i]
	c.Todos = append(c.Todos[:i], c.Todos[i+1:]...)
	return removed, nil
}

// CompleteTodo stamps the todo's completion time with at. Completing an
// already completed todo overwrites the previous timestamp.
func (c *Calendar) CompleteTodo(uid string, at time.Time) (Todo, error) {
	i, ok := c.FindTodo(uid)
	if !ok {
		return Todo{}, NotFoundError{Kind: KindTodo, UID: uid}
	}
	c.Todos[i].Completed = &at
	return c.Todos[i], nil
}
