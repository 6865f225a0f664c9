package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"lifeman/internal/ics"
	"lifeman/internal/model"
	"lifeman/internal/seed"
)

func TestOpenMissingCreatesEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cal.ics")

	s, cal, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !cal.IsEmpty() {
		t.Fatalf("expected empty calendar, got %+v", cal)
	}
	if s.Path() != path || s.Seeded {
		t.Fatalf("unexpected store: %+v", s)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("file not created: %v", err)
	}
	if info.Size() != 0 {
		t.Fatalf("created file should be empty, size %d", info.Size())
	}
}

func TestOpenEmptyFileSeeds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cal.ics")
	if err := os.WriteFile(path, []byte("\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	policy, _ := seed.ForProfile(seed.ProfileTodos, nil, nil)
	n := 0

	s, cal, err := Open(path, Options{
		Seeder:   policy,
		Location: time.UTC,
		Now:      func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) },
		NewUID: func() string {
			n++
			return fmt.Sprintf("uid-%d", n)
		},
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !s.Seeded || len(cal.Todos) != len(policy.Todos) {
		t.Fatalf("seeded=%v todos=%d, want %d", s.Seeded, len(cal.Todos), len(policy.Todos))
	}

	// Seeding happens in memory only.
	data, _ := os.ReadFile(path)
	if strings.TrimSpace(string(data)) != "" {
		t.Fatalf("file should still be empty, got %q", data)
	}
}

func TestOpenNonEmptyFileDoesNotSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cal.ics")
	cal := model.NewCalendar()
	cal.Todos = append(cal.Todos, model.Todo{UID: "abc", Summary: "water", Due: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)})
	if err := Save(path, cal); err != nil {
		t.Fatalf("Save: %v", err)
	}

	policy, _ := seed.ForProfile(seed.ProfileFull, nil, nil)
	s, got, err := Open(path, Options{Seeder: policy})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.Seeded || len(got.Todos) != 1 || len(got.Events) != 0 {
		t.Fatalf("seeded=%v, %d todos, %d events", s.Seeded, len(got.Todos), len(got.Events))
	}
}

func TestOpenMalformedIsParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cal.ics")
	if err := os.WriteFile(path, []byte("this is not a calendar\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, _, err := Open(path, Options{})
	var perr *ics.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("got %v, want *ics.ParseError", err)
	}
}

func TestOpenFileAccessErrors(t *testing.T) {
	dir := t.TempDir()

	// Reading a directory fails with a read error.
	_, _, err := Open(dir, Options{})
	var ferr *FileAccessError
	if !errors.As(err, &ferr) || ferr.Op != "read" {
		t.Fatalf("got %v, want read FileAccessError", err)
	}

	// Parent directory does not exist: cannot create.
	_, _, err = Open(filepath.Join(dir, "missing", "cal.ics"), Options{})
	if !errors.As(err, &ferr) || ferr.Op != "create" {
		t.Fatalf("got %v, want create FileAccessError", err)
	}

	if _, _, err := Open("", Options{}); !errors.As(err, &ferr) {
		t.Fatalf("got %v, want FileAccessError for empty path", err)
	}
}

func TestSaveOverwritesWholeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cal.ics")
	s, cal, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	cal.Events = append(cal.Events,
		model.Event{UID: "e1", Summary: "CS101", Start: start, End: start.Add(time.Hour)},
		model.Event{UID: "e2", Summary: "CS102", Start: start, End: start.Add(time.Hour)},
	)
	if err := s.Save(cal); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if _, err := cal.RemoveEvent("e1"); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(cal); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(string(data), "BEGIN:VCALENDAR") != 1 {
		t.Fatalf("file should hold exactly one calendar:\n%s", data)
	}
	if strings.Contains(string(data), "CS101") {
		t.Fatalf("removed event still on disk:\n%s", data)
	}

	_, reloaded, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if len(reloaded.Events) != 1 || reloaded.Events[0].UID != "e2" {
		t.Fatalf("reloaded events = %+v", reloaded.Events)
	}

	// No temp files left behind.
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("expected only cal.ics in dir, got %d entries", len(entries))
	}
}

func TestSaveKeepsFileMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cal.ics")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if err := Save(path, model.NewCalendar()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("mode = %o, want 600", info.Mode().Perm())
	}
}

func TestSaveIntoMissingDirIsFileAccessError(t *testing.T) {
	err := Save(filepath.Join(t.TempDir(), "nope", "cal.ics"), model.NewCalendar())
	var ferr *FileAccessError
	if !errors.As(err, &ferr) || ferr.Op != "write" {
		t.Fatalf("got %v, want write FileAccessError", err)
	}
}
