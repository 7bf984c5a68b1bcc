// Package health serves the liveness probe used by the hosting platform.
package health

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/keshon/server-warden/pkg/jobmgr"
)

const (
	aliveText       = "Discord bot is running!\n"
	shutdownTimeout = 5 * time.Second
)

type Server struct {
	srv *http.Server
}

// New builds the probe server. /healthz also reports the background jobs
// when jobs is not nil.
func New(port string, jobs *jobmgr.Manager) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, aliveText) })
	r.GET("/healthz", func(c *gin.Context) {
		if jobs == nil {
			c.String(http.StatusOK, aliveText)
			return
		}
		c.String(http.StatusOK, aliveText+jobs.Status()+"\n")
	})

	return &Server{srv: &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Run serves until ctx is done, then shuts the listener down.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.srv.Addr).Msg("health server listening")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}
