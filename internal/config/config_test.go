package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "train.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
	assert.Equal(t, 10, Default().Epochs)
	assert.Equal(t, 128, Default().BatchSize)
	assert.InDelta(t, 1e-3, Default().LR, 1e-12)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, "epochs: 3\nlr: 0.01\nnormalize: true\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Epochs)
	assert.InDelta(t, 0.01, cfg.LR, 1e-12)
	assert.True(t, cfg.Normalize)
	// Untouched keys keep their defaults.
	assert.Equal(t, 128, cfg.BatchSize)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "epochs: 3\nbatchsize: 64\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := writeConfig(t, "epochs: 0\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, "epochs")

	path = writeConfig(t, "lr: -1\n")
	_, err = Load(path)
	assert.ErrorContains(t, err, "learning rate")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
