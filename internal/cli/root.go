// Package cli implements the cobra-based CLI commands for play-deploy.
//
// Each subcommand (deploy, check, init) is defined in its own file within
// this package. This file defines the root command that serves as the
// parent for all subcommands and handles global flags and exit codes.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ifautofab/play-deploy/internal/model"
)

// Global flag variables shared across all subcommands.
// These are bound to cobra persistent flags on the root command,
// which makes them available to every subcommand automatically.
var (
	// jsonOutput controls whether command output is formatted as JSON.
	// When true, stdout carries only the JSON result and progress lines
	// move to stderr.
	jsonOutput bool

	// verbose enables debug-level diagnostics on stderr.
	verbose bool

	// configFile is an explicit config file path. Empty means search the
	// project root for one of config.ConfigFileNames.
	configFile string
)

// version, commit, and date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// NewRootCommand creates and configures the root cobra command.
// This is the entry point for the entire CLI application.
//
// The root command itself does not perform any action; it only provides
// help text and global flags. Actual functionality is provided by
// subcommands (deploy, check, init).
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "play-deploy",
		Short: "Publish Android release builds to Google Play",
		Long: `play-deploy uploads a release bundle or APK to Google Play and assigns it
to a release track in a single edit.

Apps that have never had a production release only accept draft releases;
play-deploy detects that rejection and re-submits the release as a draft.`,

		// SilenceUsage prevents cobra from printing usage on every error.
		SilenceUsage: true,

		// SilenceErrors prevents cobra from printing errors automatically.
		// We format errors ourselves (text or JSON based on --json flag).
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: .play-deploy.{yaml,yml,json,jsonc} in the project root)")

	rootCmd.AddCommand(NewDeployCommand())
	rootCmd.AddCommand(NewCheckCommand())
	rootCmd.AddCommand(NewInitCommand())

	return rootCmd
}

// Execute runs the root command with ctx and handles exit codes.
// This is the main entry point called from main.go.
//
// Commands observe ctx, so cancelling it (Ctrl-C) aborts in-flight Google
// Play calls and lets deferred cleanup such as lock release run before the
// process exits. CLIError types carry their own exit codes; any other
// error is treated as a backend failure and exits with code 1.
func Execute(ctx context.Context, rootCmd *cobra.Command) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError(os.Stderr, err)
		os.Exit(int(exitCodeFor(err)))
	}
}

// exitCodeFor maps an error returned by a command to the process exit code.
func exitCodeFor(err error) model.ExitCode {
	if err == nil {
		return model.ExitSuccess
	}
	var cliErr *model.CLIError
	if errors.As(err, &cliErr) {
		return cliErr.Code
	}
	return model.ExitBackendError
}

// printError writes err in the appropriate format (JSON or text) based on
// the --json global flag. The underlying error text is always included
// unchanged.
func printError(w io.Writer, err error) {
	message := err.Error()
	var underlying error
	var cliErr *model.CLIError
	if errors.As(err, &cliErr) {
		message = cliErr.Message
		underlying = cliErr.Err
	}

	if jsonOutput {
		errObj := map[string]any{
			"error": map[string]any{
				"code":    int(exitCodeFor(err)),
				"message": message,
			},
		}
		if underlying != nil {
			if errMap, ok := errObj["error"].(map[string]any); ok {
				errMap["detail"] = underlying.Error()
			}
		}
		// Errors go to stderr even in JSON mode; stdout is reserved for
		// the command result.
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(w, string(data))
		return
	}

	if underlying != nil {
		message = fmt.Sprintf("%s: %v", message, underlying)
	}
	fmt.Fprintln(w, errorStyle.Render("Error: "+message))
}

// newLogger builds the diagnostic logger for one run. Every record carries
// the run id so lines from concurrent CI jobs can be told apart.
func newLogger(w io.Writer, runID string) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With("run_id", runID)
}

// progressWriter returns where human-readable progress lines go: stdout,
// or stderr when --json reserves stdout for the result.
func progressWriter(cmd *cobra.Command) io.Writer {
	if jsonOutput {
		return cmd.ErrOrStderr()
	}
	return cmd.OutOrStdout()
}

// writeJSON encodes v as indented JSON followed by a newline.
func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// IsJSONOutput returns whether the --json flag is set.
// Subcommands use this to decide their output format.
func IsJSONOutput() bool {
	return jsonOutput
}
