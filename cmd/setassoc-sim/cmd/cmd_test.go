package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jedisct1/dlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dlog.UseSyslog(false)
	os.Exit(m.Run())
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var (
		out     bytes.Buffer
		rootCmd = newRootCmd()
	)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestPatterns(t *testing.T) {
	out, err := execute(t, "patterns")
	require.NoError(t, err)
	for _, name := range []string{"sequential", "loop", "zipf", "uniform", "4way", "tinylfu"} {
		assert.Contains(t, out, name)
	}
}

func TestRunPatterns(t *testing.T) {
	metricsFile := filepath.Join(t.TempDir(), "sim.prom")
	out, err := execute(t, "run",
		"--capacity", "64",
		"--policies", "direct,4way",
		"--patterns", "loop",
		"--metrics-file", metricsFile,
	)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "policy=direct pattern=loop")
	assert.Contains(t, lines[1], "policy=4way pattern=loop")

	metrics, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), `setassoc_sim_accesses_total{outcome="hit",pattern="loop",policy="4way"}`)
}

func TestRunTraceFromConfig(t *testing.T) {
	var (
		dir        = t.TempDir()
		traceFile  = filepath.Join(dir, "keys.txt")
		configFile = filepath.Join(dir, "sim.toml")
		reportFile = filepath.Join(dir, "report.log")
	)
	require.NoError(t, os.WriteFile(traceFile, []byte("1\n2\n1\n2\nmesh\nmesh\n"), 0o644))
	require.NoError(t, os.WriteFile(configFile, []byte(
		"capacity = 4\n"+
			"policies = [\"lru\"]\n"+
			"trace_file = \""+filepath.ToSlash(traceFile)+"\"\n"+
			"report_file = \""+filepath.ToSlash(reportFile)+"\"\n",
	), 0o644))

	out, err := execute(t, "--config", configFile, "run")
	require.NoError(t, err)
	assert.Empty(t, out, "results go to the report file")

	report, err := os.ReadFile(reportFile)
	require.NoError(t, err)
	assert.Contains(t, string(report), "policy=lru pattern=keys.txt accesses=6 hit_pct=50.00")
}

func TestRunEnvOverride(t *testing.T) {
	t.Setenv("SETASSOC_POLICIES", "arc")
	t.Setenv("SETASSOC_PATTERNS", "uniform")
	out, err := execute(t, "run", "--capacity", "16")
	require.NoError(t, err)
	assert.Contains(t, out, "policy=arc pattern=uniform")
	assert.NotContains(t, out, "policy=direct")
}

func TestRunInvalid(t *testing.T) {
	_, err := execute(t, "run", "--capacity", "12")
	assert.ErrorContains(t, err, "power of two")

	_, err = execute(t, "run", "--policies", "clock")
	assert.ErrorContains(t, err, "unknown policy")

	_, err = execute(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "run")
	assert.Error(t, err)
}
