package blob

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/impression-go/internal/store"
	"github.com/raphaelgruber/impression-go/internal/store/storetest"
)

func newTestFS(t *testing.T) *LocalFS {
	t.Helper()
	l, err := NewLocalFS(t.TempDir(), "impression-uploads", "impression-output")
	require.NoError(t, err)
	return l
}

func TestLocalFSContract(t *testing.T) {
	storetest.RunFileStore(t, newTestFS(t))
}

func TestLocalFSLayout(t *testing.T) {
	l := newTestFS(t)
	src := filepath.Join(t.TempDir(), "a.sdf")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))

	require.NoError(t, store.UploadOutput(context.Background(), l, src, ""))
	_, err := os.Stat(filepath.Join(l.Root, "impression-output", "a.sdf"))
	assert.NoError(t, err)
}

func TestLocalFSRejectsEscapingNames(t *testing.T) {
	l := newTestFS(t)
	for _, name := range []string{"../x", "/etc/passwd", "..", ""} {
		_, err := l.Exists(context.Background(), store.BucketInput, name)
		assert.Error(t, err, name)
	}
}
