package render

import (
	"io"
	"time"

	"github.com/olekukonko/tablewriter"

	"lifeman/internal/model"
)

const emptyCell = "-"

// Options control how timestamps are shown.
type Options struct {
	// Location is the display timezone. Nil means time.Local.
	Location *time.Location
	// Layout is a Go time layout. Empty means "2006-01-02 15:04".
	Layout string
}

func (o Options) format(t time.Time) string {
	if t.IsZero() {
		return emptyCell
	}
	loc := o.Location
	if loc == nil {
		loc = time.Local
	}
	layout := o.Layout
	if layout == "" {
		layout = "2006-01-02 15:04"
	}
	return t.In(loc).Format(layout)
}

// Events writes the event listing as a table:
// UID | Name | Begin | End | Description.
func Events(w io.Writer, events []model.Event, opts Options) {
	t := newTable(w, []string{"UID", "Name", "Begin", "End", "Description"})
	for _, ev := range events {
		t.Append([]string{
			ev.UID,
			ev.Summary,
			opts.format(ev.Start),
			opts.format(ev.End),
			orEmpty(ev.Description),
		})
	}
	t.Render()
}

// Todos writes the todo listing as a table: UID | Name | Due | Completed.
// caption is printed under the table (e.g. "reminders", "chores").
func Todos(w io.Writer, todos []model.Todo, caption string, opts Options) {
	t := newTable(w, []string{"UID", "Name", "Due", "Completed"})
	for _, td := range todos {
		completed := emptyCell
		if td.Completed != nil {
			completed = opts.format(*td.Completed)
		}
		t.Append([]string{td.UID, td.Summary, opts.format(td.Due), completed})
	}
	if caption != "" {
		t.SetCaption(true, caption)
	}
	t.Render()
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoFormatHeaders(false)
	t.SetAutoWrapText(false)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	return t
}

func orEmpty(s string) string {
	if s == "" {
		return emptyCell
	}
	return s
}
