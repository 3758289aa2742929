// Package runlock guards a project against two concurrent deploy runs.
//
// Two runs against the same package would each open an edit, and the
// second commit would fail or silently discard the first upload. The lock
// is a file created with O_CREATE|O_EXCL whose JSON body identifies the
// holder; it is removed when the run finishes.
package runlock

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// ErrLocked is returned by Acquire when another run holds the lock.
var ErrLocked = errors.New("another deploy is in progress")

// Holder is the metadata written into the lock file.
type Holder struct {
	RunID     string    `json:"run_id"`
	PID       int       `json:"pid"`
	Package   string    `json:"package"`
	CreatedAt time.Time `json:"created_at"`
}

// Lock is a held run lock.
type Lock struct {
	path   string
	holder Holder
}

// NewRunID returns a fresh identifier for one deploy run.
func NewRunID() string {
	return uuid.NewString()
}

// Acquire creates the lock file at path. When the file already exists it
// returns an error wrapping ErrLocked that describes the current holder.
func Acquire(path, runID, packageName string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("prepare lock directory: %w", err)
	}

	// #nosec G304 -- path comes from the deploy configuration.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, lockedError(path)
		}
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}

	holder := Holder{
		RunID:     runID,
		PID:       os.Getpid(),
		Package:   packageName,
		CreatedAt: time.Now().UTC(),
	}
	encoded, err := json.Marshal(holder)
	if err == nil {
		_, err = f.Write(append(encoded, '\n'))
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("write lock %s: %w", path, err)
	}

	return &Lock{path: path, holder: holder}, nil
}

// Release removes the lock file. Releasing a nil lock or releasing twice
// is a no-op.
func (l *Lock) Release() error {
	if l == nil || l.path == "" {
		return nil
	}
	path := l.path
	l.path = ""
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("release lock %s: %w", path, err)
	}
	return nil
}

// Holder returns the metadata this lock was acquired with.
func (l *Lock) Holder() Holder {
	return l.holder
}

// ReadHolder parses the lock file at path.
func ReadHolder(path string) (*Holder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var h Holder
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("parse lock %s: %w", path, err)
	}
	return &h, nil
}

// lockedError builds the contention error, naming the holder when the
// lock file is readable.
func lockedError(path string) error {
	h, err := ReadHolder(path)
	if err != nil {
		return fmt.Errorf("%w: lock file %s exists (remove it if no deploy is running)", ErrLocked, path)
	}
	return fmt.Errorf("%w: run %s (pid %d) for %s since %s; remove %s if it is no longer running",
		ErrLocked, h.RunID, h.PID, h.Package, h.CreatedAt.Format(time.RFC3339), path)
}
