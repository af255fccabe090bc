package documents

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, root, rel string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.pdf")
	touch(t, root, "notes.txt")
	touch(t, root, "reports/2024/q1.pdf")
	touch(t, root, "reports/draft/q2.pdf")
	touch(t, root, ".git/objects/x.pdf")
	touch(t, root, ".docchat/cache.pdf")

	paths, err := Scan(root, []string{"**/*.pdf"}, []string{"reports/draft/**"})
	require.NoError(t, err)

	var rels []string
	for _, p := range paths {
		rel, err := filepath.Rel(root, p)
		require.NoError(t, err)
		rels = append(rels, filepath.ToSlash(rel))
	}
	assert.Equal(t, []string{"a.pdf", "reports/2024/q1.pdf"}, rels)
}

func TestScanNoInclude(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.pdf")
	touch(t, root, "b.md")

	paths, err := Scan(root, nil, nil)
	require.NoError(t, err)
	assert.Len(t, paths, 2)
}
