// Package server exposes banner creation over HTTP.
//
// The API is deliberately small: one endpoint that runs the pipeline and
// returns artifact URLs, a health probe, and static serving of the output
// directory so returned URLs resolve.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bannerlord/bannerlord/pkg/buildinfo"
	apperrors "github.com/bannerlord/bannerlord/pkg/errors"
	"github.com/bannerlord/bannerlord/pkg/pipeline"
)

// Server is the HTTP front end for the banner pipeline.
type Server struct {
	runner    *pipeline.Runner
	logger    *log.Logger
	outputDir string
	http      *http.Server
}

// New creates a server that executes banners with runner and serves
// artifacts out of outputDir.
func New(addr, outputDir string, runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		runner:    runner,
		logger:    logger,
		outputDir: outputDir,
	}

	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Post("/api/v1/banners", s.handleCreate)
	r.Handle("/outputs/*", http.StripPrefix("/outputs/", http.FileServer(http.Dir(outputDir))))

	s.http = &http.Server{
		Addr:        addr,
		Handler:     r,
		ReadTimeout: 30 * time.Second,
		// Banner creation waits on the advisor and possibly a diffusion
		// service, so the write timeout is generous.
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Start listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.http.Addr)
		errc <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.http.Handler }

type ctxKey string

const requestIDKey ctxKey = "request_id"

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		id, _ := r.Context().Value(requestIDKey).(string)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", id,
			"duration", time.Since(start))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// createResponse is the API shape for a finished banner.
type createResponse struct {
	ID       string         `json:"id"`
	Concept  string         `json:"concept"`
	Colors   []string       `json:"colors"`
	PNG      string         `json:"png"`
	SVG      string         `json:"svg"`
	Metadata string         `json:"metadata"`
	Control  string         `json:"control"`
	Cached   bool           `json:"advisor_cached"`
	Stats    pipeline.Stats `json:"stats"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "decode request"))
		return
	}

	// Artifacts get a per-request name so concurrent requests never
	// clobber each other, and the client-supplied name is ignored.
	id, _ := r.Context().Value(requestIDKey).(string)
	if id == "" {
		id = uuid.NewString()
	}
	opts.OutputName = id
	opts.OutputDir = s.outputDir
	opts.Logger = s.logger

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, createResponse{
		ID:       id,
		Concept:  result.Guidance.Concept,
		Colors:   result.Guidance.Colors,
		PNG:      "/outputs/" + id + ".png",
		SVG:      "/outputs/" + id + ".svg",
		Metadata: "/outputs/" + id + "_metadata.json",
		Control:  "/outputs/" + id + "_control.png",
		Cached:   result.CacheInfo.AdviseHit,
		Stats:    result.Stats,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps application error codes onto HTTP statuses and never
// leaks wrapped internals to the client.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeInvalidInput, apperrors.ErrCodeInvalidDimensions,
		apperrors.ErrCodeInvalidPosition, apperrors.ErrCodeInvalidStyle,
		apperrors.ErrCodeInvalidColor, apperrors.ErrCodeInvalidOutput,
		apperrors.ErrCodeUnrenderableText, apperrors.ErrCodeMalformedMetadata:
		status = http.StatusBadRequest
	case apperrors.ErrCodeUnauthorized:
		status = http.StatusUnauthorized
	case apperrors.ErrCodeNetwork, apperrors.ErrCodeTimeout:
		status = http.StatusBadGateway
	}

	writeJSON(w, status, map[string]string{
		"error": apperrors.UserMessage(err),
		"code":  string(apperrors.GetCode(err)),
	})
}
