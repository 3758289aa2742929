// Package cli: deploy.go implements the "play-deploy deploy" command.
//
// Orchestration steps:
//  1. Resolve the project root and load the layered configuration
//  2. Acquire the run lock (unless --no-lock)
//  3. Run the publisher: preconditions, open edit, upload, assign, commit
//  4. Output the result (text or JSON) and map it to an exit code
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ifautofab/play-deploy/internal/model"
	"github.com/ifautofab/play-deploy/internal/publisher"
	"github.com/ifautofab/play-deploy/internal/runlock"
)

// dialBackend creates the Google Play backend. Tests replace it with a fake.
var dialBackend publisher.Dialer = publisher.DialPlay

// deployFlags holds the deploy-only flag values.
type deployFlags struct {
	noLock bool // --no-lock: skip the project lock file
}

// deployOutput is the JSON document written by deploy --json.
type deployOutput struct {
	RunID   string `json:"runId"`
	Package string `json:"package"`
	Track   string `json:"track"`
	Commit  string `json:"commit,omitempty"`
	*publisher.Result
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NewDeployCommand creates the "deploy" cobra command.
func NewDeployCommand() *cobra.Command {
	flags := &deployFlags{}

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Upload the release artifact and assign it to a track",
		Long: `Upload the release bundle (or APK) to Google Play, assign the new version
to the configured track and commit the edit.

The release is first submitted as completed. If Google Play answers that
only draft releases may be created on a draft app, it is re-submitted as a
draft before committing.

Examples:
  play-deploy deploy
  play-deploy deploy --track beta --release-notes notes.yaml
  play-deploy deploy --artifact app/build/outputs/apk/release/app-release.apk
  play-deploy deploy --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDeploy(cmd, flags)
		},
	}

	addConfigFlags(cmd.Flags())
	cmd.Flags().BoolVar(&flags.noLock, "no-lock", false, "Do not create the project lock file")

	return cmd
}

// runDeploy is the main orchestration function for the deploy command.
func runDeploy(cmd *cobra.Command, flags *deployFlags) error {
	runID := runlock.NewRunID()
	logger := newLogger(cmd.ErrOrStderr(), runID)
	progress := progressWriter(cmd)

	// Step 1: Configuration.
	s, err := loadSettings(cmd, logger)
	if err != nil {
		return err
	}
	cfg := s.Config

	// Step 2: One deploy per project at a time.
	if !flags.noLock && cfg.LockFile != "" {
		lock, lockErr := runlock.Acquire(cfg.LockFile, runID, cfg.PackageName)
		if lockErr != nil {
			if errors.Is(lockErr, runlock.ErrLocked) {
				return model.WrapCLIError(model.ExitLocked, "another deploy holds the project lock", lockErr)
			}
			return model.WrapCLIError(model.ExitConfigError, "failed to create lock file", lockErr)
		}
		defer func() {
			if releaseErr := lock.Release(); releaseErr != nil {
				logger.Warn("failed to release lock", "error", releaseErr)
			}
		}()
		logger.Debug("lock acquired", "path", cfg.LockFile)
	}

	// Step 3: Publish.
	p := publisher.New(s.publisherConfig(), dialBackend, progress, publisher.WithLogger(logger))
	res, runErr := p.Run(cmd.Context())

	out := deployOutput{
		RunID:   runID,
		Package: cfg.PackageName,
		Track:   cfg.Track,
		Commit:  s.Project.Commit,
		Result:  res,
	}

	// A missing key or artifact is reported but tolerated when allowed.
	// Anything that got as far as opening an edit is never skipped.
	if cfg.AllowMissingInputs && isMissingInput(runErr, res) {
		out.Skipped = true
		out.Error = runErr.Error()
		if IsJSONOutput() {
			return writeJSON(cmd.OutOrStdout(), out)
		}
		fmt.Fprintln(progress, warningStyle.Render(runErr.Error()))
		fmt.Fprintln(progress, mutedStyle.Render("Deployment skipped (--allow-missing)."))
		return nil
	}

	// Step 4: Output.
	if IsJSONOutput() {
		if runErr != nil {
			out.Error = runErr.Error()
		}
		if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
			return err
		}
	} else if runErr == nil {
		printDeploySummary(progress, cfg.PackageName, cfg.Track, res)
	}

	return runErr
}

// isMissingInput reports whether a run stopped on a missing local file
// before any edit was opened.
func isMissingInput(runErr error, res *publisher.Result) bool {
	return errors.Is(runErr, publisher.ErrMissingInput) && res != nil && res.Session == ""
}

// printDeploySummary writes the closing lines of a successful run. The
// success line is always last.
func printDeploySummary(w io.Writer, packageName, track string, res *publisher.Result) {
	status := model.StatusCompleted
	if res.Assignment != nil {
		status = res.Assignment.Status
	}
	if res.FellBackToDraft {
		fmt.Fprintln(w, mutedStyle.Render("The app is still a draft; promote the release in the Play Console once the store listing is complete."))
	}
	line := fmt.Sprintf("%s version %d is on the %s track (%s)", packageName, res.Version, track, status)
	fmt.Fprintln(w, successStyle.Render(line))
}
