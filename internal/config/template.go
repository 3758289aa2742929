package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ifautofab/play-deploy/internal/model"
)

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# play-deploy configuration
#
# Every key can also be set through the environment (PLAY_DEPLOY_<KEY>,
# e.g. PLAY_DEPLOY_TRACK=beta) or a command line flag.
# Relative paths are resolved against the project root.

# Application id on Google Play
package_name: com.ifautofab

# Service account key with access to the Google Play Developer API
credentials_file: play-store-key.json

# Build output to upload (.aab or .apk)
artifact_path: app/build/outputs/bundle/release/app-release.aab

# Release track: internal, alpha, beta, production or a custom track
track: internal

# Release name shown in the Play Console (default: derived by Google Play)
# release_name: "1.0.0"

# YAML file mapping language tags to release notes, e.g.
#   en-US: Bug fixes and performance improvements.
# release_notes_file: release-notes.yaml

# Resumable upload chunk size in bytes (multiple of 262144, 0 = single request)
upload_chunk_size: 16777216

# Commit without sending the changes for review
changes_not_sent_for_review: false

# Treat a missing key or artifact as "nothing to deploy" (exit 0)
allow_missing_inputs: false

# Lock file preventing concurrent runs ("" disables locking)
lock_file: .play-deploy.lock
`
}

// WriteDefaultConfig creates a config file at the given path with default
// settings and comments. An existing file is only replaced when force is set.
func WriteDefaultConfig(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return model.NewCLIError(
			model.ExitConfigError,
			fmt.Sprintf("%s already exists (use --force to overwrite)", configPath),
		)
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
