package filedict

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagerenn/mdxlookup/internal/dict"
)

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func collect(t *testing.T, s dict.Scanner) []dict.Entry {
	t.Helper()
	defer s.Close()
	var out []dict.Entry
	for s.Scan() {
		out = append(out, s.Entry())
	}
	require.NoError(t, s.Err())
	return out
}

func TestTSVKeepsOrderAndDuplicates(t *testing.T) {
	path := writeFile(t, "d.tsv", "# comment\nrun\tto move fast\n\nwalk\tslow\nrun\t@@@LINK=sprint\nbroken line\nx\t\n")
	s, err := OpenTSV(path, "")
	require.NoError(t, err)

	got := collect(t, s)
	assert.Equal(t, []dict.Entry{
		{Word: "run", Definition: "to move fast"},
		{Word: "walk", Definition: "slow"},
		{Word: "run", Definition: "@@@LINK=sprint"},
	}, got)
	assert.Equal(t, int64(2), s.Skipped())
}

func TestTSVKeepsDefinitionBytes(t *testing.T) {
	path := writeFile(t, "d.tsv", " run \t  <b>run</b>\t \r\n")
	s, err := OpenTSV(path, "")
	require.NoError(t, err)

	got := collect(t, s)
	assert.Equal(t, []dict.Entry{{Word: "run", Definition: "  <b>run</b>\t "}}, got)
}

func TestTSVCustomDelimiter(t *testing.T) {
	path := writeFile(t, "d.txt", "a|one|more\nb|two\n")
	s, err := Open(path, "tsv", "|")
	require.NoError(t, err)

	got := collect(t, s)
	assert.Equal(t, []dict.Entry{
		{Word: "a", Definition: "one|more"},
		{Word: "b", Definition: "two"},
	}, got)
}

func TestJSONStream(t *testing.T) {
	path := writeFile(t, "d.json", `[
		{"word": "b", "definition": " bee\n"},
		{"word": "", "definition": "skipped"},
		{"word": "a", "definition": "@@@LINK=b"}
	]`)
	s, err := OpenJSON(path)
	require.NoError(t, err)

	got := collect(t, s)
	assert.Equal(t, []dict.Entry{
		{Word: "b", Definition: " bee\n"},
		{Word: "a", Definition: "@@@LINK=b"},
	}, got)
	assert.Equal(t, int64(1), s.Skipped())
}

func TestJSONRejectsObject(t *testing.T) {
	path := writeFile(t, "d.json", `{"word": "a"}`)
	_, err := OpenJSON(path)
	assert.Error(t, err)
}

func TestJSONMalformedEntry(t *testing.T) {
	path := writeFile(t, "d.json", `[{"word": "a", "definition": "1"}, {"word": 3}]`)
	s, err := OpenJSON(path)
	require.NoError(t, err)
	defer s.Close()

	assert.True(t, s.Scan())
	assert.False(t, s.Scan())
	assert.Error(t, s.Err())
}

func TestOpenUnsupported(t *testing.T) {
	_, err := Open("x.bin", "bin", "")
	assert.Error(t, err)
}
