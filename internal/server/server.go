// Package server exposes the engine over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/twiced-technology-gmbh/taskrank/internal/clierr"
	"github.com/twiced-technology-gmbh/taskrank/internal/ctxlog"
	"github.com/twiced-technology-gmbh/taskrank/internal/engine"
	"github.com/twiced-technology-gmbh/taskrank/internal/output"
	"github.com/twiced-technology-gmbh/taskrank/internal/task"
)

// Routes.
const (
	AnalyzePath = "/api/tasks/analyze/"
	SuggestPath = "/api/tasks/suggest/"
	HealthPath  = "/health"
)

const suggestFirstMessage = "No analyzed tasks found. Call " + AnalyzePath + " first."

// Options configures a Server. Zero values fall back to the defaults below.
type Options struct {
	Addr            string
	ReadTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64
}

const (
	defaultAddr            = "127.0.0.1:8000"
	defaultReadTimeout     = 10 * time.Second
	defaultShutdownTimeout = 5 * time.Second
	defaultMaxBodyBytes    = 1 << 20
)

// Server serves the analyze and suggest endpoints.
type Server struct {
	engine *engine.Engine
	opts   Options
}

// New creates a Server backed by e.
func New(e *engine.Engine, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = defaultAddr
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = defaultReadTimeout
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = defaultShutdownTimeout
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	return &Server{engine: e, opts: opts}
}

// Handler returns the routed handler wrapped in request logging. Requests
// inherit the logger carried by base.
func (s *Server) Handler(base context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+AnalyzePath+"{$}", s.handleAnalyze)
	mux.HandleFunc("GET "+SuggestPath+"{$}", s.handleSuggest)
	mux.HandleFunc("GET "+HealthPath, handleHealth)
	return logRequests(ctxlog.FromContext(base), mux)
}

// Run listens on the configured address until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	logger := ctxlog.FromContext(ctx)
	srv := &http.Server{
		Handler:           s.Handler(ctx),
		ReadHeaderTimeout: s.opts.ReadTimeout,
		ReadTimeout:       s.opts.ReadTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("API server starting.", "address", "http://"+ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving HTTP: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down API server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down HTTP server: %w", err)
		}
		logger.Debug("API server shut down gracefully.")
		return nil
	})
	return g.Wait()
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge,
				clierr.Newf(clierr.InvalidInput, "request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, clierr.Newf(clierr.InvalidInput, "reading request body: %v", err))
		return
	}

	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] != '{' {
		errs := &task.ValidationErrors{}
		errs.Add("non_field_errors", "Invalid data. Expected a dictionary.")
		writeErr(w, errs.CLIError())
		return
	}

	batch, err := task.DecodeBatch(body, task.FormatJSON)
	if err != nil {
		writeErr(w, err)
		return
	}

	res, err := s.engine.Analyze(r.Context(), engine.Request{Strategy: batch.Strategy, Tasks: batch.Tasks})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	sug, err := s.engine.Suggest(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sug)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	ctxlog.FromContext(r.Context()).Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// writeErr maps err onto the error envelope. Unstructured errors become
// INTERNAL_ERROR.
func writeErr(w http.ResponseWriter, err error) {
	var ve *task.ValidationErrors
	if errors.As(err, &ve) {
		err = ve.CLIError()
	}

	var ce *clierr.Error
	if !errors.As(err, &ce) {
		ce = clierr.New(clierr.InternalError, err.Error())
	}
	if ce.Code == clierr.NoPriorAnalysis {
		ce = clierr.New(clierr.NoPriorAnalysis, suggestFirstMessage).WithDetails(ce.Details)
	}
	writeError(w, ce.HTTPStatus(), ce)
}

func writeError(w http.ResponseWriter, status int, ce *clierr.Error) {
	writeJSON(w, status, output.NewErrorResponse(ce))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
