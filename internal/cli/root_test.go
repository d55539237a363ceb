package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMapping = `
macros:
  '*.sql':
    '${MACRO_1}': 'my_table'
    '%MACRO_2%': 'macro_replacement_2'
  '2.sql':
    'templated_column': 'replacing_column'
`

// chdirT is t.Chdir for Go versions before 1.24.
func chdirT(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func setupProject(t *testing.T) (dir, macros, input string) {
	t.Helper()
	dir = t.TempDir()
	chdirT(t, dir)

	macros = filepath.Join(dir, "macros.yaml")
	require.NoError(t, os.WriteFile(macros, []byte(testMapping), 0o644))

	input = filepath.Join(dir, "input")
	require.NoError(t, os.MkdirAll(input, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(input, "1.sql"),
		[]byte("SELECT %MACRO_2% FROM t"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(input, "2.sql"),
		[]byte("SELECT templated_column FROM ${MACRO_1}"), 0o644))
	return dir, macros, input
}

func TestPreprocessCommand(t *testing.T) {
	dir, macros, input := setupProject(t)
	out := filepath.Join(dir, "preprocessed")

	stdout, err := execute(t, "preprocess", "-m", macros, "-i", input, "-o", out)
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(out, "2.sql"))
	require.NoError(t, err)
	assert.Equal(t, "SELECT replacing_column FROM my_table", string(content))

	assert.Contains(t, stdout, "2.sql")
	assert.Contains(t, stdout, "TOTAL")
}

func TestPreprocessCommand_JSONReport(t *testing.T) {
	dir, macros, input := setupProject(t)
	out := filepath.Join(dir, "preprocessed")

	stdout, err := execute(t, "preprocess", "-m", macros, "-i", input, "-o", out, "-f", "json")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"run_id"`)
	assert.Contains(t, stdout, `"total_expanded": 3`)
}

func TestRunCommand_DryRunRoundTrip(t *testing.T) {
	dir, macros, input := setupProject(t)
	out := filepath.Join(dir, "output")

	_, err := execute(t, "run", "--dry-run", "-m", macros, "-i", input, "-o", out)
	require.NoError(t, err)

	// Dry run is a no-op translation, so the round trip is exact.
	content, err := os.ReadFile(filepath.Join(out, "2.sql"))
	require.NoError(t, err)
	assert.Equal(t, "SELECT templated_column FROM ${MACRO_1}", string(content))
}

func TestRunCommand_RequiresEndpoint(t *testing.T) {
	dir, macros, input := setupProject(t)

	_, err := execute(t, "run", "-m", macros, "-i", input, "-o", filepath.Join(dir, "out"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "endpoint")
}

func TestPostprocessCommand(t *testing.T) {
	dir, macros, _ := setupProject(t)

	translated := filepath.Join(dir, "translated")
	require.NoError(t, os.MkdirAll(translated, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(translated, "2.sql"),
		[]byte("SELECT replacing_column FROM my_table"), 0o644))

	out := filepath.Join(dir, "postprocessed")
	_, err := execute(t, "postprocess", "-m", macros, "-i", translated, "-o", out)
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(out, "2.sql"))
	require.NoError(t, err)
	assert.Equal(t, "SELECT templated_column FROM ${MACRO_1}", string(content))
}

func TestPreprocessCommand_MissingMapping(t *testing.T) {
	dir := t.TempDir()
	chdirT(t, dir)

	_, err := execute(t, "preprocess", "-i", dir, "-o", filepath.Join(dir, "out"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "macro mapping")
}

func TestPreprocessCommand_MalformedMappingFailsFast(t *testing.T) {
	dir := t.TempDir()
	chdirT(t, dir)

	macros := filepath.Join(dir, "macros.yaml")
	require.NoError(t, os.WriteFile(macros, []byte("macros: [broken]\n"), 0o644))
	input := filepath.Join(dir, "input")
	require.NoError(t, os.MkdirAll(input, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(input, "1.sql"), []byte("SELECT 1"), 0o644))

	out := filepath.Join(dir, "out")
	_, err := execute(t, "preprocess", "-m", macros, "-i", input, "-o", out)
	require.Error(t, err)

	// Fail fast: no partial output.
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "no output should be written on config error")
}

func TestVersionSubcommand(t *testing.T) {
	chdirT(t, t.TempDir())

	stdout, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "sqlshift v")
}
