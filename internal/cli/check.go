package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ifautofab/play-deploy/internal/publisher"
	"github.com/ifautofab/play-deploy/internal/runlock"
)

// checkOutput is the JSON document written by check --json.
type checkOutput struct {
	Valid        bool   `json:"valid"`
	ProjectRoot  string `json:"projectRoot"`
	ConfigFile   string `json:"configFile,omitempty"`
	Package      string `json:"package"`
	Credentials  string `json:"credentials"`
	Artifact     string `json:"artifact"`
	ArtifactKind string `json:"artifactKind,omitempty"`
	Track        string `json:"track"`
	ReleaseNotes int    `json:"releaseNotes"`
	Error        string `json:"error,omitempty"`
}

// NewCheckCommand creates the "check" cobra command. It runs every local
// step of a deploy and stops before contacting Google Play.
func NewCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate configuration and local inputs without deploying",
		Long: `Load and validate the configuration, parse the release notes and check
that the service account key and the release artifact exist.

No request is sent to Google Play.

Examples:
  play-deploy check
  play-deploy check --artifact app/build/outputs/apk/release/app-release.apk
  play-deploy check --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd)
		},
	}

	addConfigFlags(cmd.Flags())

	return cmd
}

// runCheck performs the local part of a deploy and reports the outcome.
func runCheck(cmd *cobra.Command) error {
	logger := newLogger(cmd.ErrOrStderr(), runlock.NewRunID())

	s, err := loadSettings(cmd, logger)
	if err != nil {
		return err
	}
	cfg := s.Config

	out := checkOutput{
		ProjectRoot:  s.Project.Root,
		ConfigFile:   s.ConfigFile,
		Package:      cfg.PackageName,
		Credentials:  cfg.CredentialsFile,
		Artifact:     cfg.ArtifactPath,
		Track:        cfg.Track,
		ReleaseNotes: len(s.Notes),
	}

	artifact, checkErr := publisher.CheckPreconditions(s.publisherConfig())
	if checkErr == nil {
		out.Valid = true
		out.ArtifactKind = artifact.Kind.String()
	} else {
		out.Error = checkErr.Error()
	}

	if IsJSONOutput() {
		if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
			return err
		}
	} else {
		printCheckReport(cmd.OutOrStdout(), out)
	}

	if cfg.AllowMissingInputs && errors.Is(checkErr, publisher.ErrMissingInput) {
		return nil
	}
	return checkErr
}

// printCheckReport renders the check result as aligned text.
func printCheckReport(w io.Writer, out checkOutput) {
	configFile := out.ConfigFile
	if configFile == "" {
		configFile = "(none, using defaults)"
	}

	fmt.Fprintf(w, "%-14s %s\n", "Project root:", out.ProjectRoot)
	fmt.Fprintf(w, "%-14s %s\n", "Config file:", configFile)
	fmt.Fprintf(w, "%-14s %s\n", "Package:", out.Package)
	fmt.Fprintf(w, "%-14s %s\n", "Credentials:", out.Credentials)
	fmt.Fprintf(w, "%-14s %s\n", "Artifact:", out.Artifact)
	fmt.Fprintf(w, "%-14s %s\n", "Track:", out.Track)
	fmt.Fprintf(w, "%-14s %d\n", "Release notes:", out.ReleaseNotes)

	if out.Valid {
		fmt.Fprintln(w, successStyle.Render(fmt.Sprintf("Ready to deploy %s %s.", out.ArtifactKind, out.Package)))
		return
	}
	fmt.Fprintln(w, warningStyle.Render("Not ready to deploy: "+out.Error))
}
