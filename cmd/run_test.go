// File: cmd/run_test.go
package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/xkilldash9x/ghosthand/internal/config"
	"github.com/xkilldash9x/ghosthand/internal/sequence"
)

func TestRunCmd_DryRunExecutesSequence(t *testing.T) {
	resetForTest(t)
	areasPath, sequencesPath := writeDefinitionFixtures(t)

	out, err := executeCommand(t,
		"run", "--dry-run",
		"--sequence", "smoke",
		"--number", "42",
		"--areas", areasPath,
		"--sequences", sequencesPath,
	)

	require.NoError(t, err)
	assert.Contains(t, out, `Run complete. Sequence "smoke" executed for unit 42.`)
}

func TestRunCmd_RequiresSequenceName(t *testing.T) {
	resetForTest(t)

	_, err := executeCommand(t, "run", "--dry-run")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no sequence named")
}

func TestRunCmd_UnknownSequence(t *testing.T) {
	resetForTest(t)
	areasPath, sequencesPath := writeDefinitionFixtures(t)

	_, err := executeCommand(t,
		"run", "--dry-run",
		"--sequence", "does-not-exist",
		"--areas", areasPath,
		"--sequences", sequencesPath,
	)

	require.Error(t, err)
	assert.Contains(t, err.Error(), `sequence "does-not-exist" not found`)
}

func TestRunCmd_RejectsUnknownBackend(t *testing.T) {
	resetForTest(t)
	areasPath, sequencesPath := writeDefinitionFixtures(t)

	_, err := executeCommand(t,
		"run",
		"--sequence", "smoke",
		"--backend", "teleport",
		"--areas", areasPath,
		"--sequences", sequencesPath,
	)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend.kind must be logsink or cdp")
}

func TestRunCmd_MissingDefinitionFiles(t *testing.T) {
	resetForTest(t)

	_, err := executeCommand(t,
		"run", "--dry-run",
		"--sequence", "smoke",
		"--areas", "/nonexistent/areas.json",
		"--sequences", "/nonexistent/sequences.json",
	)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading areas file")
}

// TestRunUnitLeavesNoWatcherBehind verifies the signal watcher goroutine
// exits once the unit finishes.
func TestRunUnitLeavesNoWatcherBehind(t *testing.T) {
	defer goleak.VerifyNone(t)

	areasPath, sequencesPath := writeDefinitionFixtures(t)
	cfg := config.NewDefaultConfig()
	cfg.Paths.Areas = areasPath
	cfg.Paths.Sequences = sequencesPath
	cfg.Backend.Kind = "logsink"

	sess, err := buildSession(context.Background(), cfg, "smoke", sequence.TemplateVars{}, zap.NewNop())
	require.NoError(t, err)
	defer sess.Close()

	require.NoError(t, runUnit(context.Background(), sess, 1, zap.NewNop()))
}
