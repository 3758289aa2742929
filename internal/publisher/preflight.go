package publisher

import (
	"errors"
	"fmt"
	"os"

	"github.com/ifautofab/play-deploy/internal/model"
)

// ErrMissingInput matches precondition failures caused by a credentials
// file or artifact that does not exist (or is not a regular file). Other
// configuration errors, such as an unsupported artifact extension or a
// malformed key, do not match it.
var ErrMissingInput = errors.New("missing local input")

// missingInputError keeps the underlying error text while matching
// ErrMissingInput.
type missingInputError struct {
	err error
}

func (e *missingInputError) Error() string { return e.err.Error() }

func (e *missingInputError) Unwrap() error { return e.err }

func (e *missingInputError) Is(target error) bool { return target == ErrMissingInput }

// CheckPreconditions verifies the local inputs of a run without touching
// the network: the credentials file first, then the artifact. The returned
// error is a CLIError with ExitConfigError that names the missing path and
// how to produce it; a missing file additionally matches ErrMissingInput.
func CheckPreconditions(cfg Config) (model.Artifact, error) {
	if err := requireFile(cfg.CredentialsPath); err != nil {
		return model.Artifact{}, model.WrapCLIError(
			model.ExitConfigError,
			fmt.Sprintf("%s not found in project root; create a service account key under Play Console > Setup > API access", cfg.CredentialsPath),
			err,
		)
	}

	kind, err := model.DetectArtifactKind(cfg.ArtifactPath)
	if err != nil {
		return model.Artifact{}, model.WrapCLIError(model.ExitConfigError, "unsupported artifact", err)
	}

	if err := requireFile(cfg.ArtifactPath); err != nil {
		return model.Artifact{}, model.WrapCLIError(
			model.ExitConfigError,
			fmt.Sprintf("%s not found. Did you run '%s'?", cfg.ArtifactPath, buildHint(kind)),
			err,
		)
	}

	return model.Artifact{
		Path:        cfg.ArtifactPath,
		PackageName: cfg.PackageName,
		Kind:        kind,
	}, nil
}

// requireFile fails unless path names an existing regular file.
func requireFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return &missingInputError{err: err}
	}
	if info.IsDir() {
		return &missingInputError{err: fmt.Errorf("%s is a directory", path)}
	}
	return nil
}

// buildHint returns the Gradle task that produces an artifact of kind.
func buildHint(kind model.ArtifactKind) string {
	if kind == model.KindAPK {
		return "./gradlew :app:assembleRelease"
	}
	return "./gradlew :app:bundleRelease"
}
