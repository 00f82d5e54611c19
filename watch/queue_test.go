package watch

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPathQueue_SerializesSamePath(t *testing.T) {
	q := NewPathQueue()
	var running, maxRunning atomic.Int32

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = q.Do("/repo/App.csproj", func() error {
				n := running.Add(1)
				for {
					m := maxRunning.Load()
					if n <= m || maxRunning.CompareAndSwap(m, n) {
						break
					}
				}
				time.Sleep(2 * time.Millisecond)
				running.Add(-1)
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxRunning.Load())
	assert.Equal(t, 0, q.Len())
}

func TestPathQueue_DifferentPathsRunConcurrently(t *testing.T) {
	q := NewPathQueue()
	release := make(chan struct{})
	started := make(chan struct{})

	go func() {
		_ = q.Do("/a/A.csproj", func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	done := make(chan struct{})
	go func() {
		_ = q.Do("/b/B.csproj", func() error { return nil })
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second path was blocked by the first")
	}
	assert.Equal(t, 1, q.Len())
	close(release)
}

func TestPathQueue_ReturnsError(t *testing.T) {
	q := NewPathQueue()
	want := errors.New("boom")
	assert.ErrorIs(t, q.Do("/a/../a/A.csproj", func() error { return want }), want)
	assert.Equal(t, 0, q.Len())
}
