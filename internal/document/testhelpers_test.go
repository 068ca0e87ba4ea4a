package document

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// extGuesser maps extensions straight to doctype names.
type extGuesser map[string]string

func (g extGuesser) Extensions() []string {
	exts := make([]string, 0, len(g))
	for ext := range g {
		exts = append(exts, ext)
	}
	SortStems(exts)
	return exts
}

func (g extGuesser) Guess(path string) string { return g[strings.ToLower(filepath.Ext(path))] }

var testGuesser = extGuesser{".sgml": "Linuxdoc", ".xml": "Docbook4XML"}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
