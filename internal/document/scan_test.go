package document

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanSources(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Alpha.sgml"), "<!doctype linuxdoc system>")
	writeFile(t, filepath.Join(root, "Beta", "Beta.xml"), "<book/>")
	writeFile(t, filepath.Join(root, "README"), "not a document")
	writeFile(t, filepath.Join(root, "Notes.txt"), "ignored extension")
	require.NoError(t, os.Mkdir(filepath.Join(root, "EmptyDir"), 0o755))
	writeFile(t, filepath.Join(root, "Amb", "Amb.xml"), "<book/>")
	writeFile(t, filepath.Join(root, "Amb", "Amb.sgml"), "<!doctype linuxdoc system>")

	docs, err := ScanSources(testGuesser, root)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Beta"}, docs.Keys())
	assert.True(t, docs["Alpha"].SingleFile)
	assert.False(t, docs["Beta"].SingleFile)
}

func TestScanSources_FirstRootWins(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	want := writeFile(t, filepath.Join(first, "Alpha.sgml"), "one")
	writeFile(t, filepath.Join(second, "Alpha.xml"), "two")
	writeFile(t, filepath.Join(second, "Gamma.xml"), "three")

	docs, err := ScanSources(testGuesser, first, second)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Gamma"}, docs.Keys())
	assert.Equal(t, want, docs["Alpha"].Filename)
}

func TestScanSources_MissingRoot(t *testing.T) {
	_, err := ScanSources(testGuesser, t.TempDir(), filepath.Join(t.TempDir(), "gone"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, IsNotFound(err))
}

func TestScanOutputs(t *testing.T) {
	pub := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(pub, "Alpha"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(pub, "Beta"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(pub, ".Alpha.old-1234"), 0o755))
	writeFile(t, filepath.Join(pub, "stray.html"), "x")

	outs, err := ScanOutputs(pub)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Beta"}, outs.Keys())
	assert.Equal(t, filepath.Join(pub, "Alpha"), outs["Alpha"].Dirname)
}

func TestScanOutputs_MissingRoot(t *testing.T) {
	_, err := ScanOutputs(filepath.Join(t.TempDir(), "gone"))
	require.ErrorIs(t, err, ErrNotFound)
}
