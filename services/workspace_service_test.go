package services_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"actuarial-runner-server/services"

	"github.com/stretchr/testify/require"
)

func TestWorkspaceAllocateIsNamespaced(t *testing.T) {
	t.Parallel()

	ws, err := services.NewWorkspaceService(t.TempDir())
	require.NoError(t, err)

	in1, out1 := ws.Allocate("exec-a")
	in2, out2 := ws.Allocate("exec-b")

	require.NotEqual(t, in1, in2)
	require.NotEqual(t, out1, out2)
	require.NotEqual(t, in1, out1)
	require.Contains(t, in1, "exec-a")
	require.Contains(t, out2, "exec-b")
}

func TestWorkspaceReleaseIsIdempotent(t *testing.T) {
	t.Parallel()

	ws, err := services.NewWorkspaceService(t.TempDir())
	require.NoError(t, err)

	in, out := ws.Allocate("exec-c")
	require.NoError(t, os.WriteFile(in, []byte("{}"), 0644))

	ws.Release(in, out)
	require.NoFileExists(t, in)

	// Releasing already-gone files must not panic or error out.
	ws.Release(in, out)
	ws.Release("")
}

func TestWorkspacePurgeOlderThan(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ws, err := services.NewWorkspaceService(dir)
	require.NoError(t, err)

	stale := filepath.Join(dir, "input_stale.json")
	fresh := filepath.Join(dir, "input_fresh.json")
	require.NoError(t, os.WriteFile(stale, []byte("{}"), 0644))
	require.NoError(t, os.WriteFile(fresh, []byte("{}"), 0644))

	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	removed := ws.PurgeOlderThan(24 * time.Hour)
	require.Equal(t, 1, removed)
	require.NoFileExists(t, stale)
	require.FileExists(t, fresh)
}
