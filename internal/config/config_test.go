package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ifautofab/play-deploy/internal/model"
)

// writeFile writes content to name inside a fresh temp dir and returns the path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// --- Load tests ---

// TestLoad_Defaults verifies that without a file the built-in defaults apply.
func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(NewViper(), "")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), *cfg)
}

// TestLoad_YAML verifies a YAML config overrides the defaults it names and
// leaves the rest alone.
func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, ".play-deploy.yaml", `
package_name: com.example.app
track: beta
release_name: "2.0.0"
changes_not_sent_for_review: true
`)

	cfg, err := Load(NewViper(), path)
	require.NoError(t, err)

	assert.Equal(t, "com.example.app", cfg.PackageName)
	assert.Equal(t, "beta", cfg.Track)
	assert.Equal(t, "2.0.0", cfg.ReleaseName)
	assert.True(t, cfg.ChangesNotSentForReview)
	assert.Equal(t, DefaultArtifactPath, cfg.ArtifactPath, "unset keys keep their default")
	assert.Equal(t, DefaultCredentialsFile, cfg.CredentialsFile)
}

// TestLoad_JSONC verifies that comments and trailing commas are accepted
// in JSON config files.
func TestLoad_JSONC(t *testing.T) {
	path := writeFile(t, ".play-deploy.jsonc", `{
	// Production app
	"package_name": "com.example.app",
	/* upload straight to the closed testing track */
	"track": "alpha",
	"upload_chunk_size": 0,
}`)

	cfg, err := Load(NewViper(), path)
	require.NoError(t, err)

	assert.Equal(t, "com.example.app", cfg.PackageName)
	assert.Equal(t, "alpha", cfg.Track)
	assert.Equal(t, 0, cfg.UploadChunkSize)
}

// TestLoad_EnvOverridesFile verifies PLAY_DEPLOY_* variables win over the file.
func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("PLAY_DEPLOY_TRACK", "production")
	t.Setenv("PLAY_DEPLOY_UPLOAD_CHUNK_SIZE", "524288")

	path := writeFile(t, ".play-deploy.yaml", "track: beta\n")

	cfg, err := Load(NewViper(), path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Track)
	assert.Equal(t, 524288, cfg.UploadChunkSize)
}

// TestLoad_FlagOverridesEnv verifies that a changed flag bound to the
// viper instance takes precedence over the environment.
func TestLoad_FlagOverridesEnv(t *testing.T) {
	t.Setenv("PLAY_DEPLOY_TRACK", "production")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("track", "", "")
	fs.String("package", "", "")
	require.NoError(t, fs.Parse([]string{"--track", "internal"}))

	v := NewViper()
	require.NoError(t, v.BindPFlag(KeyTrack, fs.Lookup("track")))
	require.NoError(t, v.BindPFlag(KeyPackageName, fs.Lookup("package")))

	cfg, err := Load(v, "")
	require.NoError(t, err)

	assert.Equal(t, "internal", cfg.Track)
	assert.Equal(t, DefaultPackageName, cfg.PackageName, "unchanged flags must not clobber defaults")
}

// TestLoad_NotFound verifies a configuration error for an explicit missing file.
func TestLoad_NotFound(t *testing.T) {
	_, err := Load(NewViper(), filepath.Join(t.TempDir(), ".play-deploy.yaml"))
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitConfigError, cliErr.Code)
	assert.Contains(t, err.Error(), "config file not found")
}

// TestLoad_UnsupportedExtension rejects formats viper could parse but the
// tool does not document.
func TestLoad_UnsupportedExtension(t *testing.T) {
	path := writeFile(t, "play-deploy.toml", "track = \"beta\"\n")

	_, err := Load(NewViper(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config file")
}

// TestLoad_MalformedYAML reports parse errors as configuration errors.
func TestLoad_MalformedYAML(t *testing.T) {
	path := writeFile(t, ".play-deploy.yaml", "track: [unterminated\n")

	_, err := Load(NewViper(), path)
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitConfigError, cliErr.Code)
}

// TestFindConfigFile checks discovery order and the no-file case.
func TestFindConfigFile(t *testing.T) {
	root := t.TempDir()
	assert.Empty(t, FindConfigFile(root))

	require.NoError(t, os.WriteFile(filepath.Join(root, ".play-deploy.json"), []byte("{}"), 0644))
	assert.Equal(t, filepath.Join(root, ".play-deploy.json"), FindConfigFile(root))

	require.NoError(t, os.WriteFile(filepath.Join(root, ".play-deploy.yaml"), []byte(""), 0644))
	assert.Equal(t, filepath.Join(root, ".play-deploy.yaml"), FindConfigFile(root),
		"YAML is preferred over JSON")
}

// TestResolvePaths verifies relative paths are anchored to the root while
// absolute and empty paths are left alone.
func TestResolvePaths(t *testing.T) {
	cfg := Defaults()
	cfg.ReleaseNotesFile = ""
	cfg.CredentialsFile = "/etc/keys/play.json"

	resolved := cfg.ResolvePaths("/work/app")

	assert.Equal(t, "/etc/keys/play.json", resolved.CredentialsFile)
	assert.Equal(t, filepath.Join("/work/app", DefaultArtifactPath), resolved.ArtifactPath)
	assert.Equal(t, filepath.Join("/work/app", DefaultLockFile), resolved.LockFile)
	assert.Empty(t, resolved.ReleaseNotesFile)

	assert.Equal(t, DefaultArtifactPath, cfg.ArtifactPath, "receiver must not be modified")
}

// --- Validate tests ---

// TestValidate covers each validation rule in isolation.
func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"defaults are valid", func(c *Config) {}, ""},
		{"bad package name", func(c *Config) { c.PackageName = "not a package" }, KeyPackageName},
		{"empty credentials", func(c *Config) { c.CredentialsFile = " " }, KeyCredentialsFile},
		{"empty artifact", func(c *Config) { c.ArtifactPath = "" }, KeyArtifactPath},
		{"unsupported artifact", func(c *Config) { c.ArtifactPath = "app.zip" }, KeyArtifactPath},
		{"apk artifact", func(c *Config) { c.ArtifactPath = "app-release.apk" }, ""},
		{"empty track", func(c *Config) { c.Track = "" }, KeyTrack},
		{"single-request upload", func(c *Config) { c.UploadChunkSize = 0 }, ""},
		{"negative chunk size", func(c *Config) { c.UploadChunkSize = -UploadChunkAlignment }, KeyUploadChunkSize},
		{"unaligned chunk size", func(c *Config) { c.UploadChunkSize = 1000 }, KeyUploadChunkSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)

			errs := cfg.Validate()
			if tt.field == "" {
				assert.Empty(t, errs)
				return
			}
			require.Len(t, errs, 1)
			assert.Equal(t, tt.field, errs[0].Field)
		})
	}
}

// TestValidationFailure verifies the folded error message and exit code.
func TestValidationFailure(t *testing.T) {
	assert.NoError(t, ValidationFailure(nil))

	err := ValidationFailure([]ValidationError{
		{Field: KeyTrack, Message: "must not be empty"},
		{Field: KeyPackageName, Message: "bad"},
	})
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitConfigError, cliErr.Code)
	assert.Equal(t, "invalid configuration: track: must not be empty; package_name: bad", err.Error())
}

// --- Template tests ---

// TestDefaultConfigTemplate_RoundTrip verifies the template written by
// "init" loads back to exactly the built-in defaults.
func TestDefaultConfigTemplate_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".play-deploy.yaml")
	require.NoError(t, WriteDefaultConfig(path, false))

	cfg, err := Load(NewViper(), path)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), *cfg)
}

// TestWriteDefaultConfig_NoOverwrite verifies an existing file is preserved
// unless force is set.
func TestWriteDefaultConfig_NoOverwrite(t *testing.T) {
	path := writeFile(t, ".play-deploy.yaml", "track: beta\n")

	err := WriteDefaultConfig(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, "track: beta\n", string(data))

	require.NoError(t, WriteDefaultConfig(path, true))
	data, readErr = os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, DefaultConfigTemplate(), string(data))
}
