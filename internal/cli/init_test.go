package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupLogger("warn", "json", &buf)

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"component":"app"`)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("QUICKSPEND_CLI_TEST_VALUE=from-dotenv\n"), 0o644))
	t.Setenv("QUICKSPEND_CLI_TEST_VALUE", "")
	os.Unsetenv("QUICKSPEND_CLI_TEST_VALUE")

	LoadEnvFile(path)
	assert.Equal(t, "from-dotenv", os.Getenv("QUICKSPEND_CLI_TEST_VALUE"))

	LoadEnvFile(filepath.Join(t.TempDir(), "missing.env"))
}
