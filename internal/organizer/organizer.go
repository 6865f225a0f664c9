package organizer

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	appLog "lifeman/internal/log"
	"lifeman/internal/model"
	"lifeman/internal/render"
)

// ErrInvalidItem is returned by Add* for input that cannot form an item.
var ErrInvalidItem = errors.New("invalid item")

// ErrUIDExhausted is returned when the UID generator keeps yielding empty
// or already used identifiers.
var ErrUIDExhausted = errors.New("could not generate a unique uid")

const maxUIDAttempts = 100

// Group is a command group label. Reminders and chores are two names for
// the same todo collection.
type Group string

const (
	GroupEvents    Group = "events"
	GroupReminders Group = "reminders"
	GroupChores    Group = "chores"
)

// Persister writes the whole calendar back to its backing file.
type Persister interface {
	Save(cal *model.Calendar) error
}

// Organizer applies show/add/remove/complete to one loaded calendar and
// persists after every successful mutation. A failed lookup never writes.
type Organizer struct {
	cal       *model.Calendar
	persister Persister

	now    func() time.Time
	newUID func() string
	view   render.Options
}

// Options tune an Organizer. Zero fields fall back to time.Now, UUIDv4 ids
// and the render defaults.
type Options struct {
	// Now stamps completion times.
	Now func() time.Time
	// NewUID generates identifiers for added items.
	NewUID func() string
	// View controls timezone and layout for show.
	View render.Options
}

func New(cal *model.Calendar, p Persister, opts Options) *Organizer {
	if cal == nil {
		cal = model.NewCalendar()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewUID == nil {
		opts.NewUID = uuid.NewString
	}
	return &Organizer{
		cal:       cal,
		persister: p,
		now:       opts.Now,
		newUID:    opts.NewUID,
		view:      opts.View,
	}
}

// Calendar exposes the aggregate the organizer operates on.
func (o *Organizer) Calendar() *model.Calendar { return o.cal }

// Persist writes the current aggregate.
func (o *Organizer) Persist() error {
	if o.persister == nil {
		return errors.New("organizer: no persister configured")
	}
	return o.persister.Save(o.cal)
}

// EventInput carries the fields for a new event.
type EventInput struct {
	Name        string
	Begin       time.Time
	End         time.Time
	Description string
	Location    string
}

// TodoInput carries the fields for a new reminder/chore.
type TodoInput struct {
	Name        string
	Due         time.Time
	Description string
}

// ShowEvents renders every event in collection order.
func (o *Organizer) ShowEvents(w io.Writer) {
	render.Events(w, o.cal.Events, o.view)
}

// ShowTodos renders every todo; group only changes the caption.
func (o *Organizer) ShowTodos(w io.Writer, group Group) {
	render.Todos(w, o.cal.Todos, string(group), o.view)
}

// AddEvent creates an event with a fresh UID and persists. Begin after End
// is accepted as-is.
func (o *Organizer) AddEvent(in EventInput) (model.Event, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Event{}, fmt.Errorf("%w: event name is empty", ErrInvalidItem)
	}
	if in.Begin.IsZero() || in.End.IsZero() {
		return model.Event{}, fmt.Errorf("%w: event needs begin and end", ErrInvalidItem)
	}

	uid, err := o.freshUID(func(uid string) bool { _, ok := o.cal.FindEvent(uid); return ok })
	if err != nil {
		return model.Event{}, err
	}
	ev := model.Event{
		UID:         uid,
		Summary:     name,
		Description: in.Description,
		Location:    in.Location,
		Start:       in.Begin,
		End:         in.End,
	}
	if err := o.cal.AddEvent(ev); err != nil {
		return model.Event{}, err
	}
	if err := o.Persist(); err != nil {
		return model.Event{}, err
	}
	appLog.Info("event added", "uid", ev.UID, "name", ev.Summary)
	return ev, nil
}

// AddTodo creates a todo with a fresh UID and persists.
func (o *Organizer) AddTodo(in TodoInput) (model.Todo, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Todo{}, fmt.Errorf("%w: todo name is empty", ErrInvalidItem)
	}
	if in.Due.IsZero() {
		return model.Todo{}, fmt.Errorf("%w: todo needs a time", ErrInvalidItem)
	}

	uid, err := o.freshUID(func(uid string) bool { _, ok := o.cal.FindTodo(uid); return ok })
	if err != nil {
		return model.Todo{}, err
	}
	td := model.Todo{
		UID:         uid,
		Summary:     name,
		Description: in.Description,
		Due:         in.Due,
	}
	if err := o.cal.AddTodo(td); err != nil {
		return model.Todo{}, err
	}
	if err := o.Persist(); err != nil {
		return model.Todo{}, err
	}
	appLog.Info("todo added", "uid", td.UID, "name", td.Summary)
	return td, nil
}

// RemoveEvent deletes the event and persists. A missing UID returns a
// model.NotFoundError and leaves the file untouched.
func (o *Organizer) RemoveEvent(uid string) (model.Event, error) {
	ev, err := o.cal.RemoveEvent(uid)
	if err != nil {
		return model.Event{}, err
	}
	if err := o.Persist(); err != nil {
		return model.Event{}, err
	}
	appLog.Info("event removed", "uid", uid)
	return ev, nil
}

// RemoveTodo deletes the todo and persists.
func (o *Organizer) RemoveTodo(uid string) (model.Todo, error) {
	td, err := o.cal.RemoveTodo(uid)
	if err != nil {
		return model.Todo{}, err
	}
	if err := o.Persist(); err != nil {
		return model.Todo{}, err
	}
	appLog.Info("todo removed", "uid", uid)
	return td, nil
}

// CompleteTodo stamps the todo as completed now and persists. Completing an
// already completed todo moves the timestamp forward.
func (o *Organizer) CompleteTodo(uid string) (model.Todo, error) {
	td, err := o.cal.CompleteTodo(uid, o.now())
	if err != nil {
		return model.Todo{}, err
	}
	if err := o.Persist(); err != nil {
		return model.Todo{}, err
	}
	appLog.Info("todo completed", "uid", uid, "at", td.Completed.Format(time.RFC3339))
	return td, nil
}

// freshUID draws from the generator until it yields an unused UID, giving
// up after maxUIDAttempts.
func (o *Organizer) freshUID(taken func(string) bool) (string, error) {
	for i := 0; i < maxUIDAttempts; i++ {
		uid := o.newUID()
		if uid != "" && !taken(uid) {
			return uid, nil
		}
		appLog.Debug("uid collision, regenerating", "uid", uid)
	}
	return "", fmt.Errorf("%w after %d attempts", ErrUIDExhausted, maxUIDAttempts)
}
