package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/server-warden/pkg/jobmgr"
)

func TestProbe(t *testing.T) {
	h := New("0", nil).Handler()

	for _, path := range []string{"/", "/healthz"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "Discord bot is running!\n", rec.Body.String(), path)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain", path)
	}
}

func TestUnknownPath(t *testing.T) {
	rec := httptest.NewRecorder()
	New("0", nil).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthzReportsJobs(t *testing.T) {
	jobs := jobmgr.NewManager()
	defer jobs.StopAll()
	require.NoError(t, jobs.StartAsync("expiry-sweep", func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	}))
	h := New("0", jobs).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Discord bot is running!\nRunning jobs: expiry-sweep\n", rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "Discord bot is running!\n", rec.Body.String())
}
