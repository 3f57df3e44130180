package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sylang/sycheck/internal/config"
)

func TestLoad_MissingDefaultFileFallsBackToDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	// An empty path with no .sycheck.yaml in the working directory must
	// yield the built-in defaults without error.
	cfg, err := config.Load("")
	require.NoError(t, err)

	def := config.Default()
	assert.Equal(t, def.Compiler, cfg.Compiler)
	assert.Equal(t, def.TestDirs, cfg.TestDirs)
	assert.Equal(t, 10*time.Second, cfg.Timeout.Duration())
}

func TestLoad_MissingExplicitFileIsAnError(t *testing.T) {
	t.Parallel()

	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoad_YAMLOverlaysDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sycheck.yaml")
	yaml := `
compiler: build/compiler
build_dir: out/tmp
test_dirs:
  - corpus/basic
timeout: 30s
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "build/compiler", cfg.Compiler)
	assert.Equal(t, "out/tmp", cfg.BuildDir)
	assert.Equal(t, []string{"corpus/basic"}, cfg.TestDirs)
	assert.Equal(t, 30*time.Second, cfg.Timeout.Duration())

	// Fields absent from the file keep their defaults.
	assert.Equal(t, "koopac", cfg.Koopac)
	assert.Equal(t, ".sy", cfg.SourceExt)
	assert.Equal(t, "CDE_LIBRARY_PATH", cfg.LibPathEnv)
}

func TestLoad_MalformedYAMLIsAnError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("compiler: [unclosed"), 0o644))

	_, err := config.Load(path)
	require.Error(t, err)
}

func TestDuration_RejectsGarbage(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "dur.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timeout: shortly"), 0o644))

	_, err := config.Load(path)
	require.Error(t, err)
}
