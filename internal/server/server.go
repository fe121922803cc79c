// Package server is a read-only HTTP surface over the output store.
package server

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"ftl-go/internal/ftl"
	"ftl-go/internal/model"
)

const shutdownTimeout = 10 * time.Second

// Backend is the part of the engine the server reads from.
type Backend interface {
	Resolve(ctx context.Context, route, ref string) (*ftl.Artifact, error)
	ListRevisions() ([]*ftl.RevisionInfo, error)
	InspectRevision(ref string) (*ftl.RevisionInfo, error)
}

// Server serves the current revision at / and any stable revision below
// /_ftl/revisions/<ref>/.
type Server struct {
	echo    *echo.Echo
	backend Backend
	logger  ftl.Logger
}

func New(backend Backend, logger ftl.Logger) *Server {
	s := &Server{
		echo:    echo.New(),
		backend: backend,
		logger:  logger,
	}
	s.setupRoutes()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", addr)
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

func (s *Server) setupRoutes() {
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Debug("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))

	s.echo.GET("/_ftl/revisions", s.listRevisions)
	s.echo.GET("/_ftl/revisions/:ref", s.inspectRevision)
	s.echo.GET("/_ftl/revisions/:ref/*", s.serveRevision)
	s.echo.GET("/*", s.serveCurrent)
}

type revisionJSON struct {
	ID           string     `json:"id"`
	Name         string     `json:"name,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	StabilizedAt *time.Time `json:"stabilized_at,omitempty"`
	Stable       bool       `json:"stable"`
	Pinned       bool       `json:"pinned"`
	Current      bool       `json:"current"`
	Files        int64      `json:"files"`
	Pages        int64      `json:"pages"`
	Routes       int64      `json:"routes"`
	Outputs      int64      `json:"outputs"`
}

func toJSON(info *ftl.RevisionInfo) revisionJSON {
	r := revisionJSON{
		ID:           info.Revision.ID,
		Name:         info.Revision.Name,
		CreatedAt:    info.Revision.CreatedAt,
		StabilizedAt: info.Revision.StabilizedAt,
		Stable:       info.Revision.Stable,
		Pinned:       info.Revision.Pinned,
		Current:      info.Current,
	}
	if info.Stats != nil {
		r.Files = info.Stats.Files
		r.Pages = info.Stats.Pages
		r.Routes = info.Stats.Routes
		r.Outputs = info.Stats.Outputs
	}
	return r
}

func (s *Server) listRevisions(c echo.Context) error {
	infos, err := s.backend.ListRevisions()
	if err != nil {
		return s.fail(c, err)
	}
	out := make([]revisionJSON, len(infos))
	for i, info := range infos {
		out[i] = toJSON(info)
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) inspectRevision(c echo.Context) error {
	info, err := s.backend.InspectRevision(c.Param("ref"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, toJSON(info))
}

func (s *Server) serveCurrent(c echo.Context) error {
	return s.serve(c, "/"+c.Param("*"), c.QueryParam("revision"), "")
}

func (s *Server) serveRevision(c echo.Context) error {
	ref := c.Param("ref")
	return s.serve(c, "/"+c.Param("*"), ref, "/_ftl/revisions/"+ref)
}

// serve writes the artifact at route. Aliases redirect to their canonical
// route under the same prefix.
func (s *Server) serve(c echo.Context, route, ref, prefix string) error {
	a, err := s.backend.Resolve(c.Request().Context(), route, ref)
	if err != nil {
		return s.fail(c, err)
	}

	if a.Redirect != "" {
		target := prefix + a.Redirect
		if q := c.QueryString(); q != "" {
			target += "?" + q
		}
		return c.Redirect(http.StatusMovedPermanently, target)
	}

	etag := `"` + ftl.ShortID(ftl.ContentHash(a.Content)) + `"`
	c.Response().Header().Set("ETag", etag)
	c.Response().Header().Set("X-Ftl-Revision", a.Revision)
	if match := c.Request().Header.Get("If-None-Match"); match == etag {
		return c.NoContent(http.StatusNotModified)
	}
	return c.Blob(http.StatusOK, contentType(a), a.Content)
}

func contentType(a *ftl.Artifact) string {
	if a.Kind != model.RouteAsset {
		return echo.MIMETextHTMLCharsetUTF8
	}
	if t := mime.TypeByExtension(path.Ext(a.Route)); t != "" {
		return t
	}
	return http.DetectContentType(a.Content)
}

func (s *Server) fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, ftl.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, ftl.ErrNotStable):
		return c.JSON(http.StatusConflict, map[string]string{"error": "revision is not stable"})
	case errors.Is(err, ftl.ErrAmbiguous):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		s.logger.Error("request failed", "uri", c.Request().RequestURI, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
