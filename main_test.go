package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crillab/plugdep/catalog"
	"github.com/crillab/plugdep/resolve"
)

// run executes plugdep with the given arguments, isolated from any user configuration.
func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func lines(s string) []string {
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

func TestResolve(t *testing.T) {
	out, _, err := run(t, "resolve", "--local", "testdata/catalog.yaml", "testdata/request.yaml")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"App@1.0.0",
		"Sql@2.0.0",
		"Threads@2.0.0",
		"Http@4.0.0",
		"StdLib@4.0.0",
	}, lines(out))
}

func TestResolveInstalled(t *testing.T) {
	out, _, err := run(t, "resolve",
		"--local", "testdata/catalog.yaml",
		"--installed", "testdata/installed.yaml",
		"testdata/request.yaml")
	require.NoError(t, err)
	assert.Contains(t, lines(out), "Http@3.0.0 (installed)")
	assert.NotContains(t, out, "Http@4.0.0")
}

func TestResolveRemote(t *testing.T) {
	out, _, err := run(t, "resolve", "--catalog", "testdata/catalog.yaml", "testdata/request.yaml")
	require.NoError(t, err)
	assert.Contains(t, lines(out), "Sql@2.0.0 [testdata/catalog.yaml]")
}

func TestResolveConflict(t *testing.T) {
	out, _, err := run(t, "resolve", "--color=false", "--local", "testdata/conflict.yaml", "testdata/request.yaml")
	require.Error(t, err)
	var conflict *resolve.ConflictDetected
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, 2, exitCode(err))
	assert.Contains(t, out, "1 conflict prevents resolution\nConflictingDependency\n  App ⇒ =1.0.0\n  Sql ⇒ =2.0.0\n")
	assert.NotContains(t, out, "Minimal set")
}

func TestResolveConflictCore(t *testing.T) {
	out, _, err := run(t, "resolve", "--color=false", "--core",
		"--local", "testdata/conflict.yaml", "testdata/request.yaml")
	require.Error(t, err)
	assert.Contains(t, out, "Minimal set of incompatible constraints:\n")
	assert.Contains(t, out, "ConflictingDependency@1.0.0")
}

func TestResolveMissing(t *testing.T) {
	dir := t.TempDir()
	req := filepath.Join(dir, "request.yaml")
	require.NoError(t, os.WriteFile(req, []byte("dependencies:\n  - name: Nope\n"), 0o644))
	_, _, err := run(t, "resolve", "--local", "testdata/catalog.yaml", req)
	require.Error(t, err)
	var missing *catalog.MissingDependenciesError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"Nope"}, missing.Names)
	assert.Equal(t, 1, exitCode(err))
}

func TestResolveNoCatalog(t *testing.T) {
	_, _, err := run(t, "resolve", "testdata/request.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no catalog configured")
}

func TestResolveLogs(t *testing.T) {
	_, stderr, err := run(t, "resolve", "--log-level", "info", "--local", "testdata/catalog.yaml", "testdata/request.yaml")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Collected candidate versions")
	assert.Contains(t, stderr, "Search over")
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("log:\n  level: verbose\n"), 0o644))
	_, _, err := run(t, "--config", cfg, "resolve", "--local", "testdata/catalog.yaml", "testdata/request.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
	assert.Contains(t, err.Error(), "log.level")
}

func TestFormula(t *testing.T) {
	out, _, err := run(t, "formula", "--local", "testdata/conflict.yaml", "testdata/request.yaml")
	require.NoError(t, err)
	l := lines(out)
	require.NotEmpty(t, l)
	assert.Equal(t, "$Root@1.0.0", l[0])
	assert.Contains(t, out, "ConflictingDependency@1.0.0")
}

func TestDimacs(t *testing.T) {
	out, _, err := run(t, "dimacs", "--local", "testdata/conflict.yaml", "testdata/request.yaml")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "p cnf "), "unexpected output %q", out)
}

func TestSolve(t *testing.T) {
	out, _, err := run(t, "solve", "testdata/sat.bf")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"c solving testdata/sat.bf",
		"SATISFIABLE",
		"App@1.0.0: true",
		"Sql@1.0.0: false",
		"Sql@2.0.0: true",
	}, lines(out))
}

func TestSolveUnsat(t *testing.T) {
	out, _, err := run(t, "solve", "-v", "testdata/unsat.bf")
	require.NoError(t, err)
	assert.Contains(t, out, "c nb decisions: ")
	assert.True(t, strings.HasSuffix(out, "UNSATISFIABLE\n"), "unexpected output %q", out)
}

func TestSolveErrors(t *testing.T) {
	_, _, err := run(t, "solve", "testdata/nope.bf")
	assert.Error(t, err)
	_, _, err = run(t, "solve", "testdata/request.yaml")
	assert.Error(t, err)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 2, exitCode(errors.Wrap(&resolve.ConflictDetected{}, "resolution failed")))
	assert.Equal(t, 1, exitCode(errors.New("boom")))
}
