package projectroot

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRepo creates a temporary directory with an initialized Git
// repository containing a single commit and a nested app/ directory.
//
// It configures a local user.name and user.email so that `git commit`
// works in CI environments where global git config may not be set.
func setupTestRepo(t *testing.T) string {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := t.TempDir()
	runTestGit(t, dir, "init")
	runTestGit(t, dir, "config", "user.email", "test@example.com")
	runTestGit(t, dir, "config", "user.name", "Test User")

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "app", "src"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.gradle"), []byte("include ':app'\n"), 0644))

	runTestGit(t, dir, "add", ".")
	runTestGit(t, dir, "commit", "-m", "initial commit")

	return dir
}

// runTestGit runs git in dir and fails the test on a non-zero exit.
func runTestGit(t *testing.T, dir string, args ...string) string {
	t.Helper()

	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v failed: %s", args, string(output))
	return string(output)
}

// canonical resolves symlinks so that temp dirs under /var vs /private/var
// (macOS) compare equal to what git reports.
func canonical(t *testing.T, path string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)
	return resolved
}

// TestFind_FromSubdirectory verifies that a nested start directory resolves
// to the repository top level.
func TestFind_FromSubdirectory(t *testing.T) {
	repo := setupTestRepo(t)

	info, err := NewLocator().Find(filepath.Join(repo, "app", "src"))
	require.NoError(t, err)

	assert.True(t, info.InGit)
	assert.Equal(t, canonical(t, repo), canonical(t, info.Root))
	assert.NotEmpty(t, info.Commit, "HEAD commit should be reported")
}

// TestFind_OutsideGit verifies the fallback to the start directory.
func TestFind_OutsideGit(t *testing.T) {
	dir := t.TempDir()

	info, err := (&Locator{GitBinary: filepath.Join(dir, "no-such-git")}).Find(dir)
	require.NoError(t, err)

	assert.False(t, info.InGit)
	assert.Equal(t, dir, info.Root)
	assert.Empty(t, info.Commit)
}

// TestFind_RepositoryWithoutCommits verifies that an empty repository is
// still a project root, just without a commit.
func TestFind_RepositoryWithoutCommits(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	runTestGit(t, dir, "init")

	info, err := NewLocator().Find(dir)
	require.NoError(t, err)

	assert.True(t, info.InGit)
	assert.Empty(t, info.Commit)
}
