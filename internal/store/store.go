package store

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"lifeman/internal/ics"
	appLog "lifeman/internal/log"
	"lifeman/internal/model"
)

// FileAccessError reports a failure to create, read or write the calendar
// file itself (as opposed to a malformed document, see ics.ParseError).
type FileAccessError struct {
	Op   string // "create", "read" or "write"
	Path string
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("store: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileAccessError) Unwrap() error { return e.Err }

// Seeder fills an empty calendar with default items.
type Seeder interface {
	Apply(cal *model.Calendar, now time.Time, loc *time.Location, newUID func() string) (int, error)
}

// Options tune Open. The zero value loads without seeding.
type Options struct {
	Seeder   Seeder
	Location *time.Location
	Now      func() time.Time
	NewUID   func() string
}

// Store ties a calendar file path to its loaded aggregate.
type Store struct {
	path string

	// Seeded is true when the file was empty and the seeder added items.
	Seeded bool
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Open guarantees a Calendar for path:
//
//   - missing file: an empty file is created and an empty (possibly seeded)
//     calendar returned;
//   - empty or whitespace-only file: empty (possibly seeded) calendar;
//   - otherwise the whole file is read and decoded; malformed content
//     returns *ics.ParseError.
func Open(path string, opts Options) (*Store, *model.Calendar, error) {
	if path == "" {
		return nil, nil, &FileAccessError{Op: "read", Path: path, Err: errors.New("path is empty")}
	}
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := createEmpty(path); err != nil {
			return nil, nil, err
		}
		appLog.Info("created calendar file", "path", path)
		data = nil
	case err != nil:
		return nil, nil, &FileAccessError{Op: "read", Path: path, Err: err}
	}

	if len(bytes.TrimSpace(data)) > 0 {
		cal, err := ics.Decode(data, opts.Location)
		if err != nil {
			return nil, nil, err
		}
		appLog.Debug("calendar loaded", "path", path, "events", len(cal.Events), "todos", len(cal.Todos))
		return s, cal, nil
	}

	cal := model.NewCalendar()
	if opts.Seeder != nil {
		now := time.Now
		if opts.Now != nil {
			now = opts.Now
		}
		newUID := uuid.NewString
		if opts.NewUID != nil {
			newUID = opts.NewUID
		}
		n, err := opts.Seeder.Apply(cal, now(), opts.Location, newUID)
		if err != nil {
			return nil, nil, fmt.Errorf("store: seed %s: %w", path, err)
		}
		s.Seeded = n > 0
	}
	return s, cal, nil
}

func createEmpty(path string) error {
	// O_EXCL: never truncate a file that appeared since the read.
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil
		}
		return &FileAccessError{Op: "create", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &FileAccessError{Op: "create", Path: path, Err: err}
	}
	return nil
}

// Save serializes the whole calendar and replaces the file contents.
//
// The document is written to a temp file in the same directory and renamed
// over path. The original file mode is kept when the file already exists.
func (s *Store) Save(cal *model.Calendar) error {
	return Save(s.path, cal)
}

// Save is the package-level form of Store.Save.
func Save(path string, cal *model.Calendar) error {
	if cal == nil {
		return errors.New("store: calendar is nil")
	}
	body := ics.Encode(cal, time.Now())

	mode := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".lifeman-*.ics.tmp")
	if err != nil {
		return &FileAccessError{Op: "write", Path: path, Err: err}
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.WriteString(body); err != nil {
		tmp.Close()
		return &FileAccessError{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &FileAccessError{Op: "write", Path: path, Err: err}
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return &FileAccessError{Op: "write", Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		return &FileAccessError{Op: "write", Path: path, Err: err}
	}

	appLog.Debug("calendar saved", "path", path, "events", len(cal.Events), "todos", len(cal.Todos), "bytes", len(body))
	return nil
}
