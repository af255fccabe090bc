package extract

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestExtractPlainText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("refund policy: 30 days"), 0o644))

	got := New(nil).Extract(context.Background(), path)
	assert.Equal(t, "refund policy: 30 days", got)
}

func TestExtractFailuresYieldEmpty(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	e := New(zap.New(core))
	dir := t.TempDir()

	broken := filepath.Join(dir, "broken.pdf")
	require.NoError(t, os.WriteFile(broken, []byte("%PDF-1.4 this is not really a pdf"), 0o644))

	unsupported := filepath.Join(dir, "image.png")
	require.NoError(t, os.WriteFile(unsupported, []byte{0x89, 'P', 'N', 'G'}, 0o644))

	for _, path := range []string{broken, unsupported, filepath.Join(dir, "missing.pdf")} {
		assert.Empty(t, e.Extract(context.Background(), path), path)
	}
	assert.Equal(t, 3, logs.FilterMessage("text extraction failed").Len())
}

func TestExtractCancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("# hi"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Empty(t, New(nil).Extract(ctx, path))
}
