package logger

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"wastescanner/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_CreatesLevelFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	l, err := NewLogger(&config.Config{LogDirectory: dir})
	require.NoError(t, err)
	defer l.Close()

	l.Info("scanned %d images", 3)
	l.Warning("slow detector")
	l.Error("boom: %v", "detector closed")

	info, err := os.ReadFile(filepath.Join(dir, "info.log"))
	require.NoError(t, err)
	assert.Contains(t, string(info), "scanned 3 images")

	errs, err := os.ReadFile(filepath.Join(dir, "error.log"))
	require.NoError(t, err)
	assert.Contains(t, string(errs), "boom: detector closed")
	assert.NotContains(t, string(errs), "slow detector")
}

func TestWith_TagsEntries(t *testing.T) {
	var buf bytes.Buffer
	base := NewWriterLogger(&buf)

	base.With("req-1").Info("detected %s", "bottle")
	base.Info("untagged")

	out := buf.String()
	assert.Contains(t, out, "[req-1] detected bottle")
	assert.Contains(t, out, "INFO    ")
	assert.NotContains(t, out, "[req-1] untagged")
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	base := NewWriterLogger(&buf)
	tagged := base.With("abc")

	ctx := NewContext(context.Background(), tagged)

	assert.Same(t, tagged, FromContext(ctx, base))
	assert.Same(t, base, FromContext(context.Background(), base))
}
