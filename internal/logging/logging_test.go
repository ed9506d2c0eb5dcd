package logging

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_ConsoleOnly(t *testing.T) {
	var console bytes.Buffer
	logger := log.New(&bytes.Buffer{}, "", 0)

	closer := setup(logger, &console, "")
	logger.Print("[upload] hello")

	assert.Contains(t, console.String(), "[upload] hello")
	assert.NoError(t, closer.Close())
}

func TestSetup_WritesFile(t *testing.T) {
	var console bytes.Buffer
	logger := log.New(&bytes.Buffer{}, "", 0)
	path := filepath.Join(t.TempDir(), "logs", "server.log")

	closer := setup(logger, &console, path)
	logger.Print("[rate-limit] exceeded")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[rate-limit] exceeded")
	assert.Contains(t, console.String(), "[rate-limit] exceeded")
}
