package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunReturnsStartupErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o600))
	t.Setenv("CONFIG_PATH", path)

	err := run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize server")
}
