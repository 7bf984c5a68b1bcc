package jobmgr

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartStop(t *testing.T) {
	jm := NewManager()
	stopped := make(chan struct{})

	require.NoError(t, jm.StartAsync("a", func(ctx context.Context) error {
		<-ctx.Done()
		close(stopped)
		return nil
	}))
	assert.Error(t, jm.StartAsync("a", func(ctx context.Context) error { return nil }))
	assert.Equal(t, []string{"a"}, jm.List())
	assert.Equal(t, "Running jobs: a", jm.Status())

	require.NoError(t, jm.Stop("a"))
	<-stopped
	assert.Empty(t, jm.List())
	assert.Equal(t, "No jobs are running.", jm.Status())
	assert.Error(t, jm.Stop("a"))
}

func TestFinishedJobsAreForgotten(t *testing.T) {
	jm := NewManager()
	require.NoError(t, jm.StartAsync("once", func(ctx context.Context) error { return nil }))
	assert.Eventually(t, func() bool { return len(jm.List()) == 0 }, time.Second, 5*time.Millisecond)
}

func TestEvery(t *testing.T) {
	jm := NewManager()
	var n atomic.Int32
	require.NoError(t, jm.StartAsync("tick", Every(5*time.Millisecond, func(ctx context.Context) { n.Add(1) })))

	assert.Eventually(t, func() bool { return n.Load() >= 3 }, time.Second, 5*time.Millisecond)
	jm.StopAll()
	assert.Empty(t, jm.List())
}
