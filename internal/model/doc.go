// Package model defines the domain types and value objects for the
// play-deploy CLI.
//
// This package contains pure data structures with no external dependencies:
// the release status enum, artifacts and their versions, track assignments,
// and the exit codes (ExitCode) carried by CLIError for process exit handling.
package model
