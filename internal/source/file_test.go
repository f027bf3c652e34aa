package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/threadfeed/threadfeed/internal/conversation"
)

func transcript(thread string, n int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "workspaceId: ws\nthreadId: %s\nitems:\n", thread)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "  - kind: message\n    id: m%d\n    role: user\n    text: message %d\n", i, i)
	}
	return b.String()
}

func writeTranscript(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func ids(snap *conversation.Snapshot) []string {
	out := make([]string, 0, len(snap.Items))
	for _, it := range snap.Items {
		out = append(out, it.ItemID())
	}
	return out
}

func receive(t *testing.T, ch <-chan *conversation.Snapshot) *conversation.Snapshot {
	t.Helper()
	select {
	case snap := <-ch:
		return snap
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func TestFileSource_WindowAndLoadOlder(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "thread.yml")
	writeTranscript(t, path, transcript("t1", 5))

	src, err := NewFileSource(path, 2)
	require.NoError(t, err)
	require.Equal(t, []string{"m3", "m4"}, ids(src.Current()))

	ctx := context.Background()
	more, err := src.LoadOlder(ctx)
	require.NoError(t, err)
	require.True(t, more)
	require.Equal(t, []string{"m1", "m2", "m3", "m4"}, ids(receive(t, src.Snapshots())))

	more, err = src.LoadOlder(ctx)
	require.NoError(t, err)
	require.True(t, more)
	require.Len(t, src.Current().Items, 5)

	more, err = src.LoadOlder(ctx)
	require.NoError(t, err)
	require.False(t, more, "nothing left to load")
}

func TestFileSource_LoadOlderCanceled(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "thread.yml")
	writeTranscript(t, path, transcript("t1", 5))
	src, err := NewFileSource(path, 2)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.LoadOlder(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestFileSource_EmitKeepsLatest(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "thread.yml")
	writeTranscript(t, path, transcript("t1", 6))
	src, err := NewFileSource(path, 2)
	require.NoError(t, err)

	_, err = src.LoadOlder(context.Background())
	require.NoError(t, err)
	_, err = src.LoadOlder(context.Background())
	require.NoError(t, err)

	snap := receive(t, src.Snapshots())
	require.Len(t, snap.Items, 6, "older undelivered snapshot is replaced")
}

func TestFileSource_ReloadsOnWrite(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "thread.yml")
	writeTranscript(t, path, transcript("t1", 2))

	src, err := NewFileSource(path, 0)
	require.NoError(t, err)
	require.NoError(t, src.Start())
	defer func() { require.NoError(t, src.Stop()) }()

	require.Len(t, receive(t, src.Snapshots()).Items, 2)

	writeTranscript(t, path, transcript("t1", 3))
	require.Eventually(t, func() bool {
		select {
		case snap := <-src.Snapshots():
			return len(snap.Items) == 3
		default:
			return false
		}
	}, 3*time.Second, 20*time.Millisecond)
}

func TestFileSource_ThreadChangeResetsWindow(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "thread.yml")
	writeTranscript(t, path, transcript("t1", 5))
	src, err := NewFileSource(path, 2)
	require.NoError(t, err)

	_, err = src.LoadOlder(context.Background())
	require.NoError(t, err)
	require.Len(t, src.Current().Items, 4)

	writeTranscript(t, path, transcript("t2", 5))
	require.NoError(t, src.Reload())
	require.Len(t, src.Current().Items, 2)
	require.Equal(t, "t2", src.Current().ThreadID)
}

func TestNewFileSource_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := NewFileSource(filepath.Join(t.TempDir(), "missing.yml"), 10)
	require.Error(t, err)
}
