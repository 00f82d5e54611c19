package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willibrandon/gocsx/project"
)

func newTestWatcher(t *testing.T, manifest string) (*Watcher, string) {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "App.csproj"), manifest)

	s := NewSyncer(WithDefaultAction(project.BuildActionCompile))
	w, err := NewWatcher(root, s, WithDebounce(time.Hour))
	require.NoError(t, err)
	return w, root
}

func TestWatcher_SyncsCreatedFiles(t *testing.T) {
	root := t.TempDir()
	manifest := filepath.Join(root, "App.csproj")
	writeFile(t, manifest, "<Project>\n</Project>\n")

	batches := make(chan *BatchResult, 4)
	s := NewSyncer(WithDefaultAction(project.BuildActionCompile))
	w, err := NewWatcher(root, s, WithDebounce(20*time.Millisecond), WithBatchHandler(func(r *BatchResult) { batches <- r }))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// Give Run a moment to start reading events.
	time.Sleep(20 * time.Millisecond)
	writeFile(t, filepath.Join(root, "A.cs"), "")
	writeFile(t, filepath.Join(root, "B.cs"), "")

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(manifest)
		return err == nil &&
			strings.Contains(string(data), `Include="A.cs"`) &&
			strings.Contains(string(data), `Include="B.cs"`)
	}, 5*time.Second, 20*time.Millisecond)

	select {
	case r := <-batches:
		assert.NotEmpty(t, r.Added[manifest])
	case <-time.After(5 * time.Second):
		t.Fatal("no batch reported")
	}
}

func TestWatcher_RenameFollowedByCreateIsRename(t *testing.T) {
	w, root := newTestWatcher(t, `<Project>
  <ItemGroup>
    <Compile Include="Old.cs" />
  </ItemGroup>
</Project>
`)
	ctx := context.Background()
	w.start(ctx)
	t.Cleanup(w.stop)

	oldPath := filepath.Join(root, "Old.cs")
	newPath := filepath.Join(root, "New.cs")
	writeFile(t, newPath, "")

	w.handle(ctx, fsnotify.Event{Name: oldPath, Op: fsnotify.Rename})
	w.handle(ctx, fsnotify.Event{Name: newPath, Op: fsnotify.Create})

	assert.Equal(t, `<Project>
  <ItemGroup>
    <Compile Include="New.cs" />
  </ItemGroup>
</Project>
`, readFile(t, filepath.Join(root, "App.csproj")))
	assert.Equal(t, 0, w.creates.Pending())
}

func TestWatcher_MoveIntoSubdirectoryPairsByName(t *testing.T) {
	w, root := newTestWatcher(t, `<Project>
  <ItemGroup>
    <Compile Include="User.cs" />
  </ItemGroup>
</Project>
`)
	ctx := context.Background()
	w.start(ctx)
	t.Cleanup(w.stop)

	newPath := filepath.Join(root, "Models", "User.cs")
	writeFile(t, newPath, "")

	w.handle(ctx, fsnotify.Event{Name: filepath.Join(root, "Unrelated.cs"), Op: fsnotify.Rename})
	w.handle(ctx, fsnotify.Event{Name: filepath.Join(root, "User.cs"), Op: fsnotify.Rename})
	w.handle(ctx, fsnotify.Event{Name: newPath, Op: fsnotify.Create})

	assert.Contains(t, readFile(t, filepath.Join(root, "App.csproj")), `<Compile Include="Models/User.cs" />`)
}

func TestWatcher_UnpairedRenameIsDelete(t *testing.T) {
	w, root := newTestWatcher(t, `<Project>
  <ItemGroup>
    <Compile Include="Gone.cs" />
    <Compile Include="Kept.cs" />
  </ItemGroup>
</Project>
`)
	ctx := context.Background()
	w.start(ctx)
	t.Cleanup(w.stop)

	gone := filepath.Join(root, "Gone.cs")
	w.handle(ctx, fsnotify.Event{Name: gone, Op: fsnotify.Rename})
	w.expire(ctx, gone)

	assert.Equal(t, `<Project>
  <ItemGroup>
    <Compile Include="Kept.cs" />
  </ItemGroup>
</Project>
`, readFile(t, filepath.Join(root, "App.csproj")))
}

func TestWatcher_RemoveOfWatchedDirectoryCascades(t *testing.T) {
	root := t.TempDir()
	manifest := filepath.Join(root, "App.csproj")
	writeFile(t, manifest, `<Project>
  <ItemGroup>
    <Compile Include="Models/User.cs" />
    <Compile Include="Program.cs" />
  </ItemGroup>
</Project>
`)
	models := filepath.Join(root, "Models")
	require.NoError(t, os.Mkdir(models, 0755))

	w, err := NewWatcher(root, NewSyncer())
	require.NoError(t, err)
	ctx := context.Background()
	w.start(ctx)
	t.Cleanup(w.stop)

	require.NoError(t, os.RemoveAll(models))
	w.handle(ctx, fsnotify.Event{Name: models, Op: fsnotify.Remove})

	assert.NotContains(t, readFile(t, manifest), "Models/User.cs")
	assert.Contains(t, readFile(t, manifest), "Program.cs")
}

func TestWatcher_IgnoresBuildOutput(t *testing.T) {
	w, root := newTestWatcher(t, "<Project>\n</Project>\n")
	ctx := context.Background()
	w.start(ctx)
	t.Cleanup(w.stop)

	w.handle(ctx, fsnotify.Event{Name: filepath.Join(root, "obj", "Debug", "App.dll"), Op: fsnotify.Create})
	w.handle(ctx, fsnotify.Event{Name: filepath.Join(root, "bin", "App.dll"), Op: fsnotify.Create})
	assert.Equal(t, 0, w.creates.Pending())

	w.handle(ctx, fsnotify.Event{Name: filepath.Join(root, "src", "A.cs"), Op: fsnotify.Create})
	assert.Equal(t, 1, w.creates.Pending())
}

func TestWatcher_AtomicCreateIsClassified(t *testing.T) {
	w, root := newTestWatcher(t, "<Project>\n</Project>\n")
	ctx := context.Background()
	w.start(ctx)
	t.Cleanup(w.stop)

	tmp := filepath.Join(root, ".Foo.cs.tmp")
	final := filepath.Join(root, "Foo.cs")
	writeFile(t, tmp, "")
	w.handle(ctx, fsnotify.Event{Name: tmp, Op: fsnotify.Create})
	require.NoError(t, os.Rename(tmp, final))
	w.handle(ctx, fsnotify.Event{Name: tmp, Op: fsnotify.Rename})
	w.handle(ctx, fsnotify.Event{Name: final, Op: fsnotify.Create})
	assert.Equal(t, 1, w.creates.Pending())

	w.creates.Flush()
	manifest := readFile(t, filepath.Join(root, "App.csproj"))
	assert.Contains(t, manifest, `<Compile Include="Foo.cs" />`)
	assert.NotContains(t, manifest, ".Foo.cs.tmp")
}
