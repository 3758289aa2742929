package cli

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ifautofab/play-deploy/internal/config"
	"github.com/ifautofab/play-deploy/internal/model"
	"github.com/ifautofab/play-deploy/internal/projectroot"
	"github.com/ifautofab/play-deploy/internal/publisher"
)

// flagBindings maps command line flags to configuration keys. A flag only
// overrides the lower layers when it was set explicitly.
var flagBindings = map[string]string{
	"package":                     config.KeyPackageName,
	"credentials":                 config.KeyCredentialsFile,
	"artifact":                    config.KeyArtifactPath,
	"track":                       config.KeyTrack,
	"release-name":                config.KeyReleaseName,
	"release-notes":               config.KeyReleaseNotesFile,
	"chunk-size":                  config.KeyUploadChunkSize,
	"changes-not-sent-for-review": config.KeyChangesNotSentForReview,
	"allow-missing":               config.KeyAllowMissingInputs,
}

// addConfigFlags registers the flags shared by deploy and check. Their
// zero defaults are never used; viper supplies the real defaults.
func addConfigFlags(fs *pflag.FlagSet) {
	fs.String("package", "", "Application id (default: "+config.DefaultPackageName+")")
	fs.String("credentials", "", "Service account key file (default: "+config.DefaultCredentialsFile+")")
	fs.String("artifact", "", "Bundle (.aab) or APK to upload (default: "+config.DefaultArtifactPath+")")
	fs.String("track", "", "Release track (default: "+config.DefaultTrack+")")
	fs.String("release-name", "", "Release name shown in the Play Console")
	fs.String("release-notes", "", "YAML file mapping language tags to release notes")
	fs.Int("chunk-size", 0, "Upload chunk size in bytes, a multiple of 256 KiB (default: 16 MiB)")
	fs.Bool("changes-not-sent-for-review", false, "Commit without sending the changes for review")
	fs.Bool("allow-missing", false, "Report a missing key or artifact and exit 0 instead of failing")
}

// settings is the fully resolved input of a deploy or check run.
type settings struct {
	Project    *projectroot.Info
	ConfigFile string
	Config     config.Config
	Notes      []model.LocalizedText
}

// loadSettings layers defaults, the config file, environment and flags,
// resolves paths against the project root, validates the result and
// loads the release notes.
func loadSettings(cmd *cobra.Command, logger *slog.Logger) (*settings, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError, "failed to get current directory", err)
	}

	project, err := projectroot.NewLocator().Find(cwd)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError, "failed to locate project root", err)
	}
	logger.Debug("project root", "root", project.Root, "git", project.InGit, "commit", project.Commit)

	v := config.NewViper()
	for flagName, key := range flagBindings {
		if f := cmd.Flags().Lookup(flagName); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, model.WrapCLIError(model.ExitConfigError, "failed to bind flag --"+flagName, err)
			}
		}
	}

	path := configFile
	if path == "" {
		path = config.FindConfigFile(project.Root)
	} else if !filepath.IsAbs(path) {
		path = filepath.Join(cwd, path)
	}
	if path != "" {
		logger.Debug("loading config file", "path", path)
	}

	cfg, err := config.Load(v, path)
	if err != nil {
		return nil, err
	}
	resolved := cfg.ResolvePaths(project.Root)

	if err := config.ValidationFailure(resolved.Validate()); err != nil {
		return nil, err
	}

	var notes []model.LocalizedText
	if resolved.ReleaseNotesFile != "" {
		notes, err = config.LoadReleaseNotes(resolved.ReleaseNotesFile)
		if err != nil {
			return nil, err
		}
	}

	return &settings{
		Project:    project,
		ConfigFile: path,
		Config:     resolved,
		Notes:      notes,
	}, nil
}

// publisherConfig converts resolved settings into the publisher's input.
func (s *settings) publisherConfig() publisher.Config {
	return publisher.Config{
		PackageName:             s.Config.PackageName,
		CredentialsPath:         s.Config.CredentialsFile,
		ArtifactPath:            s.Config.ArtifactPath,
		Track:                   s.Config.Track,
		ReleaseName:             s.Config.ReleaseName,
		ReleaseNotes:            s.Notes,
		UploadChunkSize:         s.Config.UploadChunkSize,
		ChangesNotSentForReview: s.Config.ChangesNotSentForReview,
	}
}
