package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	tsv := filepath.Join(dir, "words.tsv")
	data := "hello\t<b>world</b>\nhi\t@@@LINK=hello\n"
	require.NoError(t, os.WriteFile(tsv, []byte(data), 0o644))

	cfg := "dictionaries:\n" +
		"  - id: words\n" +
		"    path: " + tsv + "\n" +
		"  - id: broken\n" +
		"    type: tsv\n" +
		"    path: " + filepath.Join(dir, "missing.tsv") + "\n"
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := newApp(&out, &errOut).RunContext(context.Background(), append([]string{"mdxctl"}, args...))
	return out.String(), err
}

func TestIndexQueryList(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, "--config", cfg, "index")
	require.ErrorIs(t, err, ErrIndexFailed)
	assert.Contains(t, out, "built    words")
	assert.Contains(t, out, "failed   broken")

	out, err = run(t, "--config", cfg, "index")
	require.ErrorIs(t, err, ErrIndexFailed)
	assert.Contains(t, out, "skipped  words")

	out, err = run(t, "--config", cfg, "query", "hi")
	require.NoError(t, err)
	assert.Equal(t, "<b>world</b>", strings.TrimSpace(out))

	out, err = run(t, "--config", cfg, "query", "--plain", "hi")
	require.NoError(t, err)
	assert.Equal(t, "world", strings.TrimSpace(out))

	out, err = run(t, "--config", cfg, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "words")
	assert.Contains(t, out, "broken")
}

func TestQueryRequiresWord(t *testing.T) {
	cfg := writeConfig(t)
	_, err := run(t, "--config", cfg, "query")
	assert.ErrorIs(t, err, ErrUsage)
}
