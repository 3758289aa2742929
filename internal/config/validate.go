// validate.go checks a loaded Config before anything touches the
// filesystem or the network. File existence is not checked here; the
// publisher's preconditions own that so they can name the missing file.
package config

import (
	"fmt"
	"strings"

	"github.com/ifautofab/play-deploy/internal/model"
)

// ValidationError represents a specific validation failure in the config.
type ValidationError struct {
	// Field is the config key that failed validation (e.g., "track").
	Field string

	// Message describes what's wrong with the value.
	Message string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation error: %s: %s", e.Field, e.Message)
}

// Validate returns every problem found in c (empty list = valid).
//
// Checks performed:
//   - package_name is a valid Android application id
//   - credentials_file, artifact_path and track are set
//   - artifact_path ends in .aab or .apk
//   - upload_chunk_size is zero or a positive multiple of 256 KiB
func (c Config) Validate() []ValidationError {
	var errs []ValidationError

	if err := model.ValidatePackageName(c.PackageName); err != nil {
		errs = append(errs, ValidationError{Field: KeyPackageName, Message: err.Error()})
	}

	if strings.TrimSpace(c.CredentialsFile) == "" {
		errs = append(errs, ValidationError{Field: KeyCredentialsFile, Message: "must not be empty"})
	}

	if strings.TrimSpace(c.ArtifactPath) == "" {
		errs = append(errs, ValidationError{Field: KeyArtifactPath, Message: "must not be empty"})
	} else if _, err := model.DetectArtifactKind(c.ArtifactPath); err != nil {
		errs = append(errs, ValidationError{Field: KeyArtifactPath, Message: err.Error()})
	}

	if strings.TrimSpace(c.Track) == "" {
		errs = append(errs, ValidationError{Field: KeyTrack, Message: "must not be empty"})
	}

	if c.UploadChunkSize < 0 || c.UploadChunkSize%UploadChunkAlignment != 0 {
		errs = append(errs, ValidationError{
			Field:   KeyUploadChunkSize,
			Message: fmt.Sprintf("%d is not a multiple of %d bytes", c.UploadChunkSize, UploadChunkAlignment),
		})
	}

	return errs
}

// ValidationFailure folds a list of validation errors into a single
// CLIError with ExitConfigError, or returns nil for an empty list.
func ValidationFailure(errs []ValidationError) error {
	if len(errs) == 0 {
		return nil
	}

	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Field+": "+e.Message)
	}
	return model.NewCLIError(
		model.ExitConfigError,
		"invalid configuration: "+strings.Join(parts, "; "),
	)
}
