// Package projectroot locates the directory that relative deploy paths
// are anchored to.
//
// The project root is the top level of the Git working tree containing
// the current directory. Outside a Git checkout (for example in a CI
// workspace restored from an archive) the start directory itself is used.
//
// We shell out to `git` rather than using a Go Git library because only
// two read-only plumbing commands are needed.
package projectroot

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Info describes where a deploy runs from.
type Info struct {
	// Root is the absolute project root directory.
	Root string

	// InGit reports whether Root is a Git working tree top level.
	InGit bool

	// Commit is the abbreviated HEAD commit, empty outside Git or in a
	// repository without commits.
	Commit string
}

// Locator resolves project roots. The zero value uses the `git` binary
// from PATH.
type Locator struct {
	// GitBinary overrides the git executable (default "git").
	GitBinary string
}

// NewLocator creates a Locator using the git binary from PATH.
func NewLocator() *Locator {
	return &Locator{}
}

// Find returns the project root for start. A failing or missing git is
// not an error; the absolute start directory is returned instead.
func (l *Locator) Find(start string) (*Info, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", start, err)
	}

	top, err := l.runGit(abs, "rev-parse", "--show-toplevel")
	if err != nil {
		return &Info{Root: abs}, nil
	}

	info := &Info{Root: filepath.Clean(top), InGit: true}

	// A freshly initialized repository has no HEAD yet.
	if commit, err := l.runGit(abs, "rev-parse", "--short", "HEAD"); err == nil {
		info.Commit = commit
	}
	return info, nil
}

// runGit executes a git command in dir and returns its trimmed stdout.
//
// The dir parameter is passed to git via the -C flag, which causes git
// to change to that directory before doing anything else.
func (l *Locator) runGit(dir string, args ...string) (string, error) {
	bin := l.GitBinary
	if bin == "" {
		bin = "git"
	}
	fullArgs := append([]string{"-C", dir}, args...)

	// #nosec G204 -- args are constructed internally, not from user input
	cmd := exec.Command(bin, fullArgs...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		message := fmt.Sprintf("git %s failed", strings.Join(args, " "))
		if s := strings.TrimSpace(stderr.String()); s != "" {
			message = fmt.Sprintf("%s: %s", message, s)
		}
		return "", fmt.Errorf("%s: %w", message, err)
	}

	return strings.TrimSpace(stdout.String()), nil
}
