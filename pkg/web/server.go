// Package web serves treemap renders and snapshots over HTTP.
//
// The server is a thin layer over pipeline.Runner and snapshot.Store: every
// endpoint parses parameters, runs the shared pipeline and writes the
// result. Rendering twice with the same parameters is served from the
// runner's cache, so the server stays stateless.
//
// # Endpoints
//
//	GET    /healthz                       liveness probe
//	GET    /treemap.png?path=&w=&h=       render a filesystem path
//	GET    /layout.json?path=&w=&h=       layout rectangles as JSON
//	POST   /snapshots?path=               scan a path and persist it
//	GET    /snapshots                     list snapshots
//	GET    /snapshots/{id}                one snapshot's metadata
//	DELETE /snapshots/{id}                remove a snapshot
//	GET    /snapshots/{id}/treemap.png    render a snapshot
package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/spacelens/spacelens/pkg/pipeline"
	"github.com/spacelens/spacelens/pkg/scan"
	"github.com/spacelens/spacelens/pkg/snapshot"
	"github.com/spacelens/spacelens/pkg/xerrors"
)

// Server handles treemap HTTP requests.
type Server struct {
	runner    *pipeline.Runner
	snapshots snapshot.Store
	logger    *log.Logger
}

// NewServer creates a server. A nil store disables the snapshot routes; a
// nil logger falls back to the default.
func NewServer(runner *pipeline.Runner, snapshots snapshot.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, snapshots: snapshots, logger: logger}
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/treemap.png", s.handleTreemapPNG)
	r.Get("/layout.json", s.handleLayoutJSON)

	if s.snapshots != nil {
		r.Route("/snapshots", func(r chi.Router) {
			r.Post("/", s.handleSnapshotCreate)
			r.Get("/", s.handleSnapshotList)
			r.Get("/{id}", s.handleSnapshotGet)
			r.Delete("/{id}", s.handleSnapshotDelete)
			r.Get("/{id}/treemap.png", s.handleSnapshotPNG)
		})
	}
	return r
}

// logRequests logs one line per request with duration and status.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start))
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// renderOptions builds pipeline options from query parameters.
func renderOptions(r *http.Request) (pipeline.Options, error) {
	opts := pipeline.Options{
		Root:    r.URL.Query().Get("path"),
		Refresh: r.URL.Query().Get("refresh") == "true",
	}
	var err error
	if opts.Width, err = intParam(r, "w", 0); err != nil {
		return opts, err
	}
	if opts.Height, err = intParam(r, "h", 0); err != nil {
		return opts, err
	}
	return opts, nil
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, xerrors.New(xerrors.ErrCodeInvalidFormat, "parameter %s=%q is not a valid size", name, raw)
	}
	return v, nil
}

func (s *Server) handleTreemapPNG(w http.ResponseWriter, r *http.Request) {
	opts, err := renderOptions(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Tree-Hash", res.TreeHash)
	_, _ = w.Write(res.PNG)
}

func (s *Server) handleLayoutJSON(w http.ResponseWriter, r *http.Request) {
	opts, err := renderOptions(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tree_hash":   res.TreeHash,
		"layout_hash": res.LayoutHash,
		"rects":       res.Layout.Rects,
	})
}

func (s *Server) handleSnapshotCreate(w http.ResponseWriter, r *http.Request) {
	root := r.URL.Query().Get("path")
	if root == "" {
		s.writeError(w, xerrors.New(xerrors.ErrCodeInvalidPath, "missing path parameter"))
		return
	}
	entries, err := scan.Walk(r.Context(), root, s.logger)
	if err != nil {
		s.writeError(w, xerrors.Wrap(xerrors.ErrCodeInvalidPath, err, "scan %s", root))
		return
	}
	snap := snapshot.New(root, entries)
	if err := s.snapshots.Put(r.Context(), snap); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap.Describe())
}

func (s *Server) handleSnapshotList(w http.ResponseWriter, r *http.Request) {
	infos, err := s.snapshots.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if infos == nil {
		infos = []snapshot.Info{}
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleSnapshotGet(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshots.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap.Describe())
}

func (s *Server) handleSnapshotDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.snapshots.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSnapshotPNG(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshots.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	opts := pipeline.Options{Snapshot: snap}
	if opts.Width, err = intParam(r, "w", 0); err != nil {
		s.writeError(w, err)
		return
	}
	if opts.Height, err = intParam(r, "h", 0); err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(res.PNG)
}

// writeError maps structured error codes to HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch xerrors.CodeOf(err) {
	case xerrors.ErrCodeInvalidPath, xerrors.ErrCodeInvalidFormat, xerrors.ErrCodeInvalidConfig:
		status = http.StatusBadRequest
	case xerrors.ErrCodeNotFound, xerrors.ErrCodeSnapshotNotFound:
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, map[string]string{
		"error": err.Error(),
		"code":  string(xerrors.CodeOf(err)),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
