package filesystem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return filepath.ToSlash(p)
}

func TestPropertiesCounts(t *testing.T) {
	dir := t.TempDir()
	// Three lines: "a b", an empty line, "cd". The empty line contributes
	// zero words, so the total is 2 + 0 + 1.
	p := writeFile(t, dir, "sample.txt", "a b\n\ncd\n")

	props, err := PropertiesOf(p)
	require.NoError(t, err)

	assert.Equal(t, "sample.txt", props.Name)
	assert.Equal(t, int64(3), props.LineCount)
	assert.Equal(t, int64(3), props.WordCount)
	assert.Equal(t, int64(8), props.CharCount)
	assert.Equal(t, "8 B", props.Size)
	assert.True(t, props.Readable)
	assert.True(t, props.Writable)
}

func TestPropertiesUnterminatedLastLine(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "sample.txt", "one two\nthree")

	props, err := PropertiesOf(p)
	require.NoError(t, err)

	assert.Equal(t, int64(2), props.LineCount)
	assert.Equal(t, int64(3), props.WordCount)
}

func TestPropertiesConsecutiveSpaces(t *testing.T) {
	dir := t.TempDir()
	// Single-space splitting counts the empty segment between two spaces.
	p := writeFile(t, dir, "sample.txt", "a  b\n")

	props, err := PropertiesOf(p)
	require.NoError(t, err)

	assert.Equal(t, int64(1), props.LineCount)
	assert.Equal(t, int64(3), props.WordCount)
}

func TestPropertiesCRLFContent(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "sample.txt", "a b\r\n\r\ncd\r\n")

	props, err := PropertiesOf(p)
	require.NoError(t, err)

	assert.Equal(t, int64(3), props.LineCount)
	assert.Equal(t, int64(3), props.WordCount)
}

func TestPropertiesDirectoryCountsUnknown(t *testing.T) {
	dir := t.TempDir()

	props, err := PropertiesOf(filepath.ToSlash(dir))
	require.NoError(t, err)

	assert.Equal(t, int64(CountUnknown), props.LineCount)
	assert.Equal(t, int64(CountUnknown), props.WordCount)
	assert.Equal(t, int64(CountUnknown), props.CharCount)
}

func TestPropertiesDirectorySizeIsRecursive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "12345")
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	writeFile(t, sub, "b.txt", "123")

	props, err := PropertiesOf(filepath.ToSlash(dir))
	require.NoError(t, err)
	assert.Equal(t, "8 B", props.Size)
}

func TestPropertiesBinaryCountsUnknown(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "blob.bin")
	require.NoError(t, os.WriteFile(p, []byte{0x00, 0x01, 0x02, 0xFF, 0xFE, 0x00}, 0o644))

	props, err := PropertiesOf(filepath.ToSlash(p))
	require.NoError(t, err)

	assert.Equal(t, int64(CountUnknown), props.LineCount)
	assert.Equal(t, int64(CountUnknown), props.WordCount)
	assert.Equal(t, int64(CountUnknown), props.CharCount)
}

func TestPropertiesEmptyTextFile(t *testing.T) {
	dir := t.TempDir()
	// "Unknown, not zero" cuts both ways: a truly empty text file reports
	// zero counts, not the sentinel.
	p := writeFile(t, dir, "empty.txt", "\n")

	props, err := PropertiesOf(p)
	require.NoError(t, err)

	assert.Equal(t, int64(1), props.LineCount)
	assert.Equal(t, int64(0), props.WordCount)
	assert.Equal(t, int64(1), props.CharCount)
}

func TestPropertiesMissing(t *testing.T) {
	_, err := PropertiesOf(filepath.ToSlash(filepath.Join(t.TempDir(), "gone.txt")))
	assert.Equal(t, CodeNotFound, CodeOf(err))
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "0 B", formatBytes(0))
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.00 KB", formatBytes(1024))
	assert.Equal(t, "1.50 MB", formatBytes(1536*1024))
	assert.Equal(t, "1.00 GB", formatBytes(1<<30))
}

func TestCountLinesAndWordsEmpty(t *testing.T) {
	lines, words := countLinesAndWords("")
	assert.Equal(t, int64(0), lines)
	assert.Equal(t, int64(0), words)
}
