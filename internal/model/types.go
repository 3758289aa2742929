// Package model defines the domain types for the play-deploy CLI.
//
// All entities in this package describe one publishing run against the
// Google Play Developer API. Nothing here is persisted locally: an edit
// session lives on the backend until it is committed or abandoned, and
// every other value is derived from configuration or backend responses
// during a single run.
package model

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// ReleaseStatus is the lifecycle status of a release on a track.
// Google Play accepts a small closed set of values; the publisher itself
// only ever submits StatusCompleted and, as a fallback, StatusDraft.
type ReleaseStatus string

const (
	// StatusDraft marks a release that is stored on the track but not
	// rolled out. It is the only status accepted for draft applications.
	StatusDraft ReleaseStatus = "draft"

	// StatusCompleted marks a release that is rolled out to every user
	// of the track.
	StatusCompleted ReleaseStatus = "completed"

	// StatusInProgress marks a staged rollout.
	StatusInProgress ReleaseStatus = "inProgress"

	// StatusHalted marks a rollout that has been stopped.
	StatusHalted ReleaseStatus = "halted"
)

// String returns the wire representation of the status.
func (s ReleaseStatus) String() string {
	return string(s)
}

// IsValid reports whether s is one of the statuses Google Play accepts.
func (s ReleaseStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusCompleted, StatusInProgress, StatusHalted:
		return true
	default:
		return false
	}
}

// ArtifactKind identifies the upload endpoint an artifact goes to.
type ArtifactKind string

const (
	// KindBundle is an Android App Bundle (.aab).
	KindBundle ArtifactKind = "bundle"

	// KindAPK is a plain Android package (.apk).
	KindAPK ArtifactKind = "apk"
)

// String returns the string representation of ArtifactKind.
func (k ArtifactKind) String() string {
	return string(k)
}

// DetectArtifactKind derives the artifact kind from the file extension.
// The comparison ignores case because Gradle output names are not always
// lower-case on case-insensitive filesystems.
func DetectArtifactKind(path string) (ArtifactKind, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".aab":
		return KindBundle, nil
	case ".apk":
		return KindAPK, nil
	default:
		return "", fmt.Errorf("unsupported artifact %q: expected an .aab or .apk file", path)
	}
}

// PublishSession is the opaque identifier of an edit opened on the backend.
// It is valid only for the run that opened it.
type PublishSession string

// String returns the edit id.
func (s PublishSession) String() string {
	return string(s)
}

// ArtifactVersion is the version code Google Play assigns to an uploaded
// artifact. It is known only after a complete upload.
type ArtifactVersion int64

// String returns the decimal version code.
func (v ArtifactVersion) String() string {
	return fmt.Sprintf("%d", int64(v))
}

// Artifact is an immutable build output that will be uploaded.
type Artifact struct {
	// Path is the absolute path to the artifact file.
	Path string `json:"path"`

	// PackageName is the application id the artifact belongs to
	// (e.g., "com.example.app").
	PackageName string `json:"packageName"`

	// Kind selects the bundle or APK upload endpoint.
	Kind ArtifactKind `json:"kind"`
}

// LocalizedText is one release note in a single language.
type LocalizedText struct {
	// Language is a BCP-47 tag such as "en-US".
	Language string `json:"language" yaml:"language"`

	// Text is the note shown to users on the Play Store.
	Text string `json:"text" yaml:"text"`
}

// ReleaseAssignment binds a set of artifact versions to a track with a
// given status. It is the body of a track update.
type ReleaseAssignment struct {
	// Track is the release channel name (e.g., "internal", "beta").
	Track string `json:"track"`

	// VersionCodes lists the artifact versions included in the release.
	VersionCodes []ArtifactVersion `json:"versionCodes"`

	// Status is the release status to request.
	Status ReleaseStatus `json:"status"`

	// Name is an optional release name shown in the Play Console.
	// Google Play derives one from the version name when empty.
	Name string `json:"name,omitempty"`

	// Notes holds optional per-language release notes.
	Notes []LocalizedText `json:"notes,omitempty"`
}

// WithStatus returns a copy of the assignment with a different status.
// The version code and notes slices are shared; callers treat them as
// read-only.
func (a ReleaseAssignment) WithStatus(status ReleaseStatus) ReleaseAssignment {
	a.Status = status
	return a
}

// packageNameRegex follows the Android application id rules: at least two
// dot-separated segments, each starting with a letter.
var packageNameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*(\.[a-zA-Z][a-zA-Z0-9_]*)+$`)

// ValidatePackageName checks that name is a syntactically valid Android
// application id.
func ValidatePackageName(name string) error {
	if name == "" {
		return fmt.Errorf("package name must not be empty")
	}
	if !packageNameRegex.MatchString(name) {
		return fmt.Errorf("invalid package name %q: expected a dotted application id such as com.example.app", name)
	}
	return nil
}

// ExitCode defines the process exit codes of the CLI.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitBackendError indicates an unspecified or backend-side failure:
	// authentication, network, invalid request or a business-rule rejection
	// that was not handled by the draft fallback.
	ExitBackendError ExitCode = 1

	// ExitConfigError indicates a local configuration problem such as a
	// missing or malformed credentials file, an invalid setting or an
	// artifact that cannot be read. Most are detected before any remote
	// call; an artifact that becomes unreadable during upload is reported
	// after the edit was opened.
	ExitConfigError ExitCode = 2

	// ExitLocked indicates another run holds the project's lock file.
	ExitLocked ExitCode = 3
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
