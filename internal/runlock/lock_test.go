package runlock

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAcquire_WritesHolder verifies the lock file content.
func TestAcquire_WritesHolder(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".play-deploy.lock")
	runID := NewRunID()

	lock, err := Acquire(path, runID, "com.example.app")
	require.NoError(t, err)
	t.Cleanup(func() { _ = lock.Release() })

	h, err := ReadHolder(path)
	require.NoError(t, err)
	assert.Equal(t, runID, h.RunID)
	assert.Equal(t, os.Getpid(), h.PID)
	assert.Equal(t, "com.example.app", h.Package)
	assert.Equal(t, lock.Holder().CreatedAt.Unix(), h.CreatedAt.Unix())
}

// TestAcquire_Contention verifies that a second acquire fails with
// ErrLocked and names the first run.
func TestAcquire_Contention(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".play-deploy.lock")

	first, err := Acquire(path, "run-one", "com.example.app")
	require.NoError(t, err)

	_, err = Acquire(path, "run-two", "com.example.app")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLocked))
	assert.Contains(t, err.Error(), "run-one")

	require.NoError(t, first.Release())

	second, err := Acquire(path, "run-two", "com.example.app")
	require.NoError(t, err, "lock must be reusable after release")
	require.NoError(t, second.Release())
}

// TestAcquire_UnreadableHolder verifies contention on a foreign or
// corrupted lock file still reports ErrLocked.
func TestAcquire_UnreadableHolder(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".play-deploy.lock")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	_, err := Acquire(path, "run-two", "com.example.app")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLocked))
	assert.Contains(t, err.Error(), path)
}

// TestRelease_Idempotent verifies double release and nil release.
func TestRelease_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ".play-deploy.lock")

	lock, err := Acquire(path, NewRunID(), "com.example.app")
	require.NoError(t, err)

	require.NoError(t, lock.Release())
	require.NoError(t, lock.Release())
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))

	var nilLock *Lock
	assert.NoError(t, nilLock.Release())
}

// TestNewRunID returns parseable, distinct UUIDs.
func TestNewRunID(t *testing.T) {
	a, b := NewRunID(), NewRunID()
	assert.NotEqual(t, a, b)
	_, err := uuid.Parse(a)
	assert.NoError(t, err)
}
