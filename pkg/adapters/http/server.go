package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/aretw0/dslhost/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const (
	// InitialDataPath serves the form-description script.
	InitialDataPath = "/get-initial-data"
	// SubmitPattern accepts submissions on any path.
	SubmitPattern = "/*"
)

// Server holds the values served by the two endpoints.
type Server struct {
	Data   domain.InitialData
	Reply  any
	logger *slog.Logger
}

// Option configures the handler built by NewHandler.
type Option func(*options)

type options struct {
	logger      *slog.Logger
	reply       any
	middlewares []func(http.Handler) http.Handler
}

// WithLogger sets the structured logger used for request and failure logs.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithSubmissionReply replaces the value returned by the submission endpoint.
func WithSubmissionReply(reply any) Option {
	return func(o *options) {
		o.reply = reply
	}
}

// WithMiddleware appends a middleware to the router, after CORS and logging.
func WithMiddleware(mw func(http.Handler) http.Handler) Option {
	return func(o *options) {
		o.middlewares = append(o.middlewares, mw)
	}
}

// NewHandler creates the HTTP handler serving data.
func NewHandler(data domain.InitialData, opts ...Option) (http.Handler, error) {
	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("invalid initial data: %w", err)
	}

	o := options{
		logger: slog.Default(),
		reply:  domain.SubmissionReply,
	}
	for _, opt := range opts {
		opt(&o)
	}

	server := &Server{
		Data:   data,
		Reply:  o.reply,
		logger: o.logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(corsOptions()))
	r.Use(requestLogger(o.logger))
	for _, mw := range o.middlewares {
		r.Use(mw)
	}

	r.Get(InitialDataPath, server.GetInitialData)
	r.With(server.recoverer).Post(SubmitPattern, server.Submit)

	return r, nil
}

// corsOptions allows any origin, mirroring an unrestricted CORS setup.
func corsOptions() cors.Options {
	return cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}
}

// GetInitialData handles the GET /get-initial-data request.
func (s *Server) GetInitialData(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, s.Data)
}

// Submit handles POST requests on any non-root path.
// The request body is never read.
func (s *Server) Submit(w http.ResponseWriter, r *http.Request) {
	if chi.URLParam(r, "*") == "" {
		http.NotFound(w, r)
		return
	}
	s.writeJSON(w, r, http.StatusOK, s.Reply)
}

// writeJSON encodes v before touching the response so that an encoding
// failure can still be reported as an error envelope.
func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("Response encode failed", "error", err, "path", r.URL.Path)
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	body, _ := json.Marshal(domain.NewErrorEnvelope(err))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	w.Write(append(body, '\n'))
}

// recoverer turns a panic inside the wrapped handler into the 500 envelope.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			s.logger.Error("Handler panicked", "panic", rec, "path", r.URL.Path, "stack", string(debug.Stack()))
			err, ok := rec.(error)
			if !ok {
				err = fmt.Errorf("%v", rec)
			}
			s.writeError(w, err)
		}()
		next.ServeHTTP(w, r)
	})
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Debug("Request served",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
