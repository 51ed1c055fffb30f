package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/lexrag/internal/repository/source/file"
	"github.com/kailas-cloud/lexrag/internal/usecase/store"
)

type countingRefresher struct {
	calls atomic.Int32
}

func (r *countingRefresher) Refresh(context.Context) store.Report {
	n := r.calls.Add(1)
	return store.Report{SnapshotID: "snap", Documents: int(n)}
}

type staticTarget struct {
	dirs []string
	err  error
}

func (s staticTarget) WatchDirs() ([]string, error) { return s.dirs, s.err }
func (s staticTarget) Matches(string) bool          { return true }

func startWatcher(t *testing.T, target Target, r Refresher) (*Watcher, <-chan store.Report) {
	t.Helper()
	w, err := New(target, r, 20*time.Millisecond, nil)
	require.NoError(t, err)

	ch := make(chan store.Report, 16)
	w.refreshed = ch

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return w, ch
}

func waitReport(t *testing.T, ch <-chan store.Report) store.Report {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for refresh")
		return store.Report{}
	}
}

func TestWatcher_RefreshOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "documents.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o600))

	r := &countingRefresher{}
	_, ch := startWatcher(t, file.New(path), r)

	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"d1","title":"t","content":"c"}]`), 0o600))

	report := waitReport(t, ch)
	assert.Equal(t, "snap", report.SnapshotID)
	assert.GreaterOrEqual(t, r.calls.Load(), int32(1))
}

func TestWatcher_IgnoresUnmatchedFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "documents.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o600))

	r := &countingRefresher{}
	_, ch := startWatcher(t, file.New(path), r)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))

	select {
	case <-ch:
		t.Fatal("unexpected refresh for unrelated file")
	case <-time.After(200 * time.Millisecond):
	}
	assert.Equal(t, int32(0), r.calls.Load())
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "documents.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o600))

	r := &countingRefresher{}
	w, err := New(file.New(path), r, 300*time.Millisecond, nil)
	require.NoError(t, err)
	ch := make(chan store.Report, 16)
	w.refreshed = ch

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o600))
		time.Sleep(10 * time.Millisecond)
	}

	waitReport(t, ch)
	select {
	case <-ch:
		t.Fatal("burst should collapse into a single refresh")
	case <-time.After(500 * time.Millisecond):
	}
	assert.Equal(t, int32(1), r.calls.Load())
}

func TestWatcher_GlobPicksUpNewDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte(`[]`), 0o600))

	r := &countingRefresher{}
	w, ch := startWatcher(t, file.New(filepath.Join(dir, "**", "*.json")), r)

	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	require.Eventually(t, func() bool {
		for _, d := range w.Dirs() {
			if d == sub {
				return true
			}
		}
		return false
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(sub, "b.json"), []byte(`[]`), 0o600))
	waitReport(t, ch)
}

func TestNew_NoDirs(t *testing.T) {
	_, err := New(staticTarget{}, &countingRefresher{}, 0, nil)
	assert.Error(t, err)
}

func TestNew_MissingDir(t *testing.T) {
	_, err := New(staticTarget{dirs: []string{filepath.Join(t.TempDir(), "absent")}}, &countingRefresher{}, 0, nil)
	assert.Error(t, err)
}

func TestWatcher_StopsOnCancel(t *testing.T) {
	w, err := New(staticTarget{dirs: []string{t.TempDir()}}, &countingRefresher{}, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultDebounce, w.debounce)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
