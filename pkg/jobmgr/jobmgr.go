// Package jobmgr runs named background jobs and stops them on request.
//
//	jm := jobmgr.NewManager()
//	_ = jm.StartAsync("expiry-sweep", jobmgr.Every(30*time.Second, sweep))
//	defer jm.StopAll()
package jobmgr

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type job struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Manager tracks running jobs by name. It is safe for concurrent use.
type Manager struct {
	mu   sync.Mutex
	jobs map[string]*job
}

func NewManager() *Manager {
	return &Manager{jobs: make(map[string]*job)}
}

// StartAsync runs runner in its own goroutine until it returns or the job is
// stopped. Names are unique among running jobs.
func (m *Manager) StartAsync(name string, runner func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.jobs[name]; exists {
		return fmt.Errorf("job %q is already running", name)
	}

	ctx, cancel := context.WithCancel(context.Background())
	j := &job{cancel: cancel, done: make(chan struct{})}
	m.jobs[name] = j

	go func() {
		defer close(j.done)
		log.Debug().Str("job", name).Msg("job started")

		if err := runner(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Str("job", name).Msg("job failed")
		} else {
			log.Debug().Str("job", name).Msg("job finished")
		}

		m.mu.Lock()
		if m.jobs[name] == j {
			delete(m.jobs, name)
		}
		m.mu.Unlock()
	}()
	return nil
}

// Stop cancels the named job and waits for it to return.
func (m *Manager) Stop(name string) error {
	m.mu.Lock()
	j, ok := m.jobs[name]
	if ok {
		delete(m.jobs, name)
	}
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("job %q not running", name)
	}
	j.cancel()
	<-j.done
	return nil
}

// StopAll cancels every job and waits for all of them.
func (m *Manager) StopAll() {
	for _, name := range m.List() {
		_ = m.Stop(name)
	}
}

// List returns the running job names, sorted.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.jobs))
	for k := range m.jobs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Status is a one-line summary, e.g. "Running jobs: expiry-sweep, purge-sweep".
func (m *Manager) Status() string {
	active := m.List()
	if len(active) == 0 {
		return "No jobs are running."
	}
	return "Running jobs: " + strings.Join(active, ", ")
}

// Every builds a runner that calls fn once per interval until cancelled. The
// first call happens one interval after start.
func Every(interval time.Duration, fn func(ctx context.Context)) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				fn(ctx)
			}
		}
	}
}
