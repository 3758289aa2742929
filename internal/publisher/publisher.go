// Package publisher drives one build artifact through the Google Play
// publishing workflow: open an edit, upload the artifact, assign it to a
// track and commit the edit.
//
// The workflow is a strictly sequential state machine (see State). Its
// only recovery path is the draft fallback: when the backend refuses a
// completed release because the application has never been published,
// the assignment is re-submitted as a draft and the commit proceeds.
// Every other failure aborts the run with the backend's error unchanged;
// an edit opened before the failure is left to expire on the backend.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/ifautofab/play-deploy/internal/model"
	"github.com/ifautofab/play-deploy/internal/play"
)

// Config is everything one run needs. Paths must already be absolute or
// relative to the process working directory.
type Config struct {
	PackageName             string
	CredentialsPath         string
	ArtifactPath            string
	Track                   string
	ReleaseName             string
	ReleaseNotes            []model.LocalizedText
	UploadChunkSize         int
	ChangesNotSentForReview bool
}

// Outcome classifies how a run ended.
type Outcome string

const (
	OutcomeSucceeded    Outcome = "succeeded"
	OutcomeConfigError  Outcome = "config-error"
	OutcomeBackendError Outcome = "backend-error"
)

// Result describes a finished run, successful or not.
type Result struct {
	Outcome Outcome `json:"outcome"`

	// Session is the edit id, empty if the run failed before opening one.
	Session model.PublishSession `json:"session,omitempty"`

	// Version is the uploaded artifact's version code, zero if the
	// upload did not complete.
	Version model.ArtifactVersion `json:"version,omitempty"`

	// Assignment is the last release assignment the backend accepted.
	Assignment *model.ReleaseAssignment `json:"assignment,omitempty"`

	// FellBackToDraft is set when the completed assignment was rejected
	// for a draft app and re-submitted as a draft.
	FellBackToDraft bool `json:"fellBackToDraft"`

	// States lists every state the run entered, in order.
	States []State `json:"states"`

	// Err is the error that ended the run, nil on success.
	Err error `json:"-"`
}

// Option customizes a Publisher.
type Option func(*Publisher)

// WithDraftAppClassifier replaces the function deciding whether an
// assignment error is the draft-app rejection.
func WithDraftAppClassifier(fn func(error) bool) Option {
	return func(p *Publisher) {
		p.isDraftAppRejection = fn
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// Publisher runs the workflow once. It is not safe for concurrent use
// and cannot be reused after Run returns.
type Publisher struct {
	cfg                 Config
	dial                Dialer
	out                 io.Writer
	logger              *slog.Logger
	isDraftAppRejection func(error) bool

	state     State
	committed bool
	result    *Result
}

// New creates a Publisher. Progress lines are written to out.
func New(cfg Config, dial Dialer, out io.Writer, opts ...Option) *Publisher {
	p := &Publisher{
		cfg:                 cfg,
		dial:                dial,
		out:                 out,
		logger:              slog.New(slog.NewTextHandler(io.Discard, nil)),
		isDraftAppRejection: play.IsDraftAppRejection,
		state:               StateIdle,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("package", cfg.PackageName)
	return p
}

// State returns the current workflow state.
func (p *Publisher) State() State {
	return p.state
}

// Run executes the workflow. The returned Result is never nil; the error
// is the one that ended the run (a CLIError for local configuration
// problems, the backend's error otherwise).
func (p *Publisher) Run(ctx context.Context) (*Result, error) {
	if p.state != StateIdle {
		err := fmt.Errorf("%w: publisher already ran (state %s)", ErrInvalidTransition, p.state)
		return &Result{Outcome: OutcomeBackendError, Err: err}, err
	}
	p.result = &Result{States: []State{StateIdle}}
	res := p.result

	// Step 1: Local preconditions. Nothing remote happens before these pass.
	artifact, err := CheckPreconditions(p.cfg)
	if err != nil {
		return p.abort(err)
	}

	// An interrupt during the local checks stops the run before dialing.
	if err := ctx.Err(); err != nil {
		return p.abort(err)
	}

	backend, err := p.dial(ctx, p.cfg.CredentialsPath)
	if err != nil {
		return p.abort(err)
	}

	// Step 2: Open an edit.
	if err := p.enter(StateOpening); err != nil {
		return p.abort(err)
	}
	p.printf("Starting deployment for %s...", p.cfg.PackageName)
	session, err := backend.OpenEdit(ctx, p.cfg.PackageName)
	if err != nil {
		return p.abort(err)
	}
	res.Session = session
	p.printf("Created edit with ID: %s", session)

	// Step 3: Upload the artifact.
	if err := p.enter(StateUploading); err != nil {
		return p.abort(err)
	}
	p.printf("Uploading %s...", artifact.Path)
	version, err := backend.UploadArtifact(ctx, p.cfg.PackageName, session, artifact, p.cfg.UploadChunkSize)
	if err != nil {
		return p.abort(err)
	}
	res.Version = version
	p.printf("Successfully uploaded %s version %d", artifact.Kind, version)

	// Step 4: Assign the version to the track, optimistically as completed.
	assignment := model.ReleaseAssignment{
		Track:        p.cfg.Track,
		VersionCodes: []model.ArtifactVersion{version},
		Status:       model.StatusCompleted,
		Name:         p.cfg.ReleaseName,
		Notes:        p.cfg.ReleaseNotes,
	}
	if err := p.enter(StateAssigningCompleted); err != nil {
		return p.abort(err)
	}
	if err := p.assign(ctx, backend, session, assignment); err != nil {
		if !p.isDraftAppRejection(err) {
			return p.abort(err)
		}

		// Step 4b: The app has never been published; only drafts are allowed.
		p.logger.Info("completed release rejected for draft app, retrying as draft",
			"session", session, "version", version, "error", err)
		p.printf("Google Play rejected the completed release: %s is still a draft app", p.cfg.PackageName)
		res.FellBackToDraft = true

		assignment = assignment.WithStatus(model.StatusDraft)
		if err := p.enter(StateAssigningDraft); err != nil {
			return p.abort(err)
		}
		if err := p.assign(ctx, backend, session, assignment); err != nil {
			return p.abort(err)
		}
	}
	res.Assignment = &assignment

	// Step 5: Commit the edit.
	if err := p.enter(StateCommitting); err != nil {
		return p.abort(err)
	}
	if err := p.commit(ctx, backend, session); err != nil {
		return p.abort(err)
	}

	if err := p.enter(StateDone); err != nil {
		return p.abort(err)
	}
	res.Outcome = OutcomeSucceeded
	p.printf("Deployment successful! Check the Google Play Console to review and roll out.")
	return res, nil
}

// assign submits one track update. Statuses Google Play does not know are
// rejected locally.
func (p *Publisher) assign(ctx context.Context, backend Backend, session model.PublishSession, assignment model.ReleaseAssignment) error {
	if !assignment.Status.IsValid() {
		return model.NewCLIError(model.ExitConfigError, fmt.Sprintf("invalid release status %q", assignment.Status))
	}
	p.printf("Assigning version %s to %s track as %s...",
		joinVersions(assignment.VersionCodes), assignment.Track, assignment.Status)
	return backend.UpdateTrack(ctx, p.cfg.PackageName, session, assignment)
}

// commit finalizes the session. It refuses to run outside the committing
// state or after a previous commit.
func (p *Publisher) commit(ctx context.Context, backend Backend, session model.PublishSession) error {
	if p.state != StateCommitting || p.committed {
		return fmt.Errorf("%w: commit in state %s", ErrInvalidTransition, p.state)
	}
	p.printf("Committing changes to Google Play...")
	if err := backend.CommitEdit(ctx, p.cfg.PackageName, session, p.cfg.ChangesNotSentForReview); err != nil {
		return err
	}
	p.committed = true
	return nil
}

// enter moves the workflow to next and records it in the result.
func (p *Publisher) enter(next State) error {
	if err := p.state.checkTransition(next); err != nil {
		return err
	}
	p.logger.Debug("state transition", "from", p.state, "to", next)
	p.state = next
	p.result.States = append(p.result.States, next)
	return nil
}

// abort ends the run in StateFailed with err.
func (p *Publisher) abort(err error) (*Result, error) {
	res := p.result
	failedIn := p.state
	if !p.state.IsTerminal() {
		p.state = StateFailed
		res.States = append(res.States, StateFailed)
	}

	res.Err = err
	res.Outcome = OutcomeBackendError
	var cliErr *model.CLIError
	if errors.As(err, &cliErr) && cliErr.Code == model.ExitConfigError {
		res.Outcome = OutcomeConfigError
	}

	attrs := []any{"state", failedIn, "outcome", res.Outcome, "error", err}
	if status, ok := play.HTTPStatus(err); ok {
		attrs = append(attrs, "http_status", status)
	}
	p.logger.Debug("run aborted", attrs...)
	return res, err
}

// printf writes one progress line.
func (p *Publisher) printf(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// joinVersions renders version codes as "42" or "42, 43".
func joinVersions(versions []model.ArtifactVersion) string {
	s := ""
	for i, v := range versions {
		if i > 0 {
			s += ", "
		}
		s += v.String()
	}
	return s
}
