// Package config loads the deploy configuration for play-deploy.
//
// Values are layered, lowest precedence first: built-in defaults, the
// project config file, PLAY_DEPLOY_* environment variables and command
// line flags. Layering is delegated to github.com/spf13/viper. JSON config
// files may contain comments (JSONC), so they are normalized with
// github.com/tidwall/jsonc before viper parses them.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/tidwall/jsonc"

	"github.com/ifautofab/play-deploy/internal/model"
)

// Configuration keys. They double as config file keys and, upper-cased
// with the EnvPrefix, as environment variable names.
const (
	KeyPackageName             = "package_name"
	KeyCredentialsFile         = "credentials_file"
	KeyArtifactPath            = "artifact_path"
	KeyTrack                   = "track"
	KeyReleaseName             = "release_name"
	KeyReleaseNotesFile        = "release_notes_file"
	KeyUploadChunkSize         = "upload_chunk_size"
	KeyChangesNotSentForReview = "changes_not_sent_for_review"
	KeyAllowMissingInputs      = "allow_missing_inputs"
	KeyLockFile                = "lock_file"
)

// EnvPrefix is prepended to every key to form its environment variable,
// e.g. PLAY_DEPLOY_TRACK.
const EnvPrefix = "PLAY_DEPLOY"

// Built-in defaults match the layout of a standard Gradle Android project
// with the service-account key checked out next to it.
const (
	DefaultPackageName     = "com.ifautofab"
	DefaultCredentialsFile = "play-store-key.json"
	DefaultArtifactPath    = "app/build/outputs/bundle/release/app-release.aab"
	DefaultTrack           = "internal"
	DefaultLockFile        = ".play-deploy.lock"

	// DefaultUploadChunkSize mirrors the Google API client default of 16 MiB.
	DefaultUploadChunkSize = 16 << 20

	// UploadChunkAlignment is the granularity the resumable upload
	// protocol requires for chunk sizes.
	UploadChunkAlignment = 256 << 10
)

// ConfigFileNames lists the file names searched in the project root, in
// order of preference.
var ConfigFileNames = []string{
	".play-deploy.yaml",
	".play-deploy.yml",
	".play-deploy.json",
	".play-deploy.jsonc",
}

// Config holds every option of a deploy run.
type Config struct {
	// PackageName is the application id on Google Play.
	PackageName string `mapstructure:"package_name"`

	// CredentialsFile is the service-account key (JSON).
	CredentialsFile string `mapstructure:"credentials_file"`

	// ArtifactPath is the .aab or .apk to upload.
	ArtifactPath string `mapstructure:"artifact_path"`

	// Track is the release track to assign the upload to.
	Track string `mapstructure:"track"`

	// ReleaseName is shown in the Play Console. Empty lets Google Play
	// derive it from the version name.
	ReleaseName string `mapstructure:"release_name"`

	// ReleaseNotesFile is an optional YAML file of per-language notes.
	ReleaseNotesFile string `mapstructure:"release_notes_file"`

	// UploadChunkSize is the resumable upload chunk size in bytes.
	// Zero uploads the artifact in a single request.
	UploadChunkSize int `mapstructure:"upload_chunk_size"`

	// ChangesNotSentForReview commits the edit without sending the
	// changes for review.
	ChangesNotSentForReview bool `mapstructure:"changes_not_sent_for_review"`

	// AllowMissingInputs turns a missing credentials or artifact file
	// into a reported no-op (exit 0) instead of a configuration error.
	AllowMissingInputs bool `mapstructure:"allow_missing_inputs"`

	// LockFile guards against concurrent runs. Empty disables locking.
	LockFile string `mapstructure:"lock_file"`
}

// Defaults returns a Config with the built-in default values.
func Defaults() Config {
	return Config{
		PackageName:     DefaultPackageName,
		CredentialsFile: DefaultCredentialsFile,
		ArtifactPath:    DefaultArtifactPath,
		Track:           DefaultTrack,
		UploadChunkSize: DefaultUploadChunkSize,
		LockFile:        DefaultLockFile,
	}
}

// NewViper returns a viper instance with defaults and environment
// variables registered. Callers bind their flags to it before Load.
func NewViper() *viper.Viper {
	v := viper.New()

	d := Defaults()
	v.SetDefault(KeyPackageName, d.PackageName)
	v.SetDefault(KeyCredentialsFile, d.CredentialsFile)
	v.SetDefault(KeyArtifactPath, d.ArtifactPath)
	v.SetDefault(KeyTrack, d.Track)
	v.SetDefault(KeyReleaseName, d.ReleaseName)
	v.SetDefault(KeyReleaseNotesFile, d.ReleaseNotesFile)
	v.SetDefault(KeyUploadChunkSize, d.UploadChunkSize)
	v.SetDefault(KeyChangesNotSentForReview, d.ChangesNotSentForReview)
	v.SetDefault(KeyAllowMissingInputs, d.AllowMissingInputs)
	v.SetDefault(KeyLockFile, d.LockFile)

	// AutomaticEnv only consults keys viper already knows about, which
	// is why every key has a default above.
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	return v
}

// FindConfigFile returns the first config file present in root, or an
// empty string when there is none.
func FindConfigFile(root string) string {
	for _, name := range ConfigFileNames {
		candidate := filepath.Join(root, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

// Load reads the config file at path (if any) into v and unmarshals the
// merged result. An empty path skips the file layer.
//
// Returns a CLIError with ExitConfigError if the file cannot be read or
// parsed.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		if err := readConfigFile(v, path); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError, "failed to decode configuration", err)
	}
	return &cfg, nil
}

// readConfigFile feeds one file into viper, normalizing JSONC first.
func readConfigFile(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.WrapCLIError(
				model.ExitConfigError,
				fmt.Sprintf("config file not found: %s", path),
				err,
			)
		}
		return model.WrapCLIError(model.ExitConfigError, fmt.Sprintf("failed to read config file %s", path), err)
	}

	var configType string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		configType = "yaml"
	case ".json", ".jsonc":
		// Strip // and /* */ comments and trailing commas.
		data = jsonc.ToJSON(data)
		configType = "json"
	default:
		return model.NewCLIError(
			model.ExitConfigError,
			fmt.Sprintf("unsupported config file %s: use .yaml, .yml, .json or .jsonc", path),
		)
	}

	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return model.WrapCLIError(model.ExitConfigError, fmt.Sprintf("failed to parse config file %s", path), err)
	}
	return nil
}

// ResolvePaths returns a copy of c with every relative path made absolute
// against root. Empty paths stay empty.
func (c Config) ResolvePaths(root string) Config {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(root, p)
	}

	c.CredentialsFile = resolve(c.CredentialsFile)
	c.ArtifactPath = resolve(c.ArtifactPath)
	c.ReleaseNotesFile = resolve(c.ReleaseNotesFile)
	c.LockFile = resolve(c.LockFile)
	return c
}
