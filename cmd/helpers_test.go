// File: cmd/helpers_test.go
package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/ghosthand/internal/observability"
)

// resetForTest clears the shared viper instance and the package state left by
// a previous execution. Logger output is routed into the test's temp dir
// because every root command execution re-initializes the global logger from
// the resolved config.
func resetForTest(t *testing.T) {
	t.Helper()

	viper.Reset()
	cfgFile = ""
	verbose = false
	cfg = nil

	observability.ResetForTest()
	t.Cleanup(observability.ResetForTest)
	t.Setenv("GHOSTHAND_LOGGER_LOG_FILE", filepath.Join(t.TempDir(), "ghosthand.log"))
	t.Setenv("GHOSTHAND_LOGGER_LEVEL", "error")
}

// executeCommand runs a pristine root command with the given args and returns
// the combined output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := NewRootCommand()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

// writeDefinitionFixtures writes a small valid areas/sequences pair into a
// temp dir and returns both paths.
func writeDefinitionFixtures(t *testing.T) (areasPath, sequencesPath string) {
	t.Helper()

	dir := t.TempDir()
	areasPath = filepath.Join(dir, "areas.json")
	sequencesPath = filepath.Join(dir, "sequences.json")

	areas := `{
  "areas": [
    {"name": "editor", "coordinates": [100, 100, 400, 300], "description": "main text input"},
    {"name": "save_button", "coordinates": [420, 100, 520, 140]}
  ]
}`
	sequences := `{
  "sequences": {
    "smoke": [
      {"type": "click_area", "area": "editor"},
      {"type": "type_dynamic_text", "template": "note {number}"},
      {"type": "wait", "seconds": 0.05},
      {"type": "click_area", "area": "save_button"}
    ],
    "scroll_only": [
      {"type": "scroll", "amount": 3, "axis": "vertical"}
    ]
  }
}`
	require.NoError(t, os.WriteFile(areasPath, []byte(areas), 0o644))
	require.NoError(t, os.WriteFile(sequencesPath, []byte(sequences), 0o644))
	return areasPath, sequencesPath
}

// writeTempConfig writes YAML config content to a temp file and returns its
// path.
func writeTempConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "ghosthand.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
