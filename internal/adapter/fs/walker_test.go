package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func relPaths(t *testing.T, root string, w *Walker) []string {
	t.Helper()
	files, err := w.Walk(root)
	require.NoError(t, err)

	absRoot, err := filepath.Abs(root)
	require.NoError(t, err)

	var out []string
	for _, f := range files {
		rel, err := filepath.Rel(absRoot, f.Path)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestWalker_IncludesAndExcludes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/payroll.cbl", "x")
	writeFile(t, root, "src/billing.COB", "x")
	writeFile(t, root, "src/readme.md", "x")
	writeFile(t, root, "copybooks/defs.cbl", "x")
	writeFile(t, root, ".cobolscan/cache.cbl", "x")

	w := NewWalker(
		[]string{"**/*.cbl", "**/*.COB"},
		[]string{"**/copybooks/**", "**/.cobolscan/**"},
	)

	assert.Equal(t, []string{"src/billing.COB", "src/payroll.cbl"}, relPaths(t, root, w))
}

func TestWalker_DefaultIncludesEverything(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "x")
	writeFile(t, root, "b/c.cbl", "x")

	assert.Equal(t, []string{"a.txt", "b/c.cbl"}, relPaths(t, root, NewWalker(nil, nil)))
}

func TestWalker_FileInfo(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "p.cbl", "12345")

	files, err := NewWalker([]string{"*.cbl"}, nil).Walk(root)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, int64(5), files[0].Size)
	assert.NotZero(t, files[0].ModTime)
}

func TestReader(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "p.cbl", "MAIN.\n")

	content, err := Reader{}.ReadFile(filepath.Join(root, "p.cbl"))
	require.NoError(t, err)
	assert.Equal(t, "MAIN.\n", content)

	_, err = Reader{}.ReadFile(filepath.Join(root, "missing.cbl"))
	assert.Error(t, err)
}
