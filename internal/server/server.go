// seehuhn.de/go/vectorize - trace raster images into vector paths
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package server implements the HTTP API of the vectorize command.
//
// POST /api/vectorize accepts a JSON object
//
//	{"image": "data:image/png;base64,...", "options": {...}}
//
// and answers {"svg": "..."}. The options are optional and override the
// configured tracing defaults field by field.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"seehuhn.de/go/vectorize"
	"seehuhn.de/go/vectorize/internal/cache"
	"seehuhn.de/go/vectorize/internal/config"
	"seehuhn.de/go/vectorize/internal/logger"
	"seehuhn.de/go/vectorize/internal/payload"
)

// Response messages which are part of the API.
const (
	msgImageRequired   = "Image data is required."
	msgInternalError   = "Internal server error."
	msgInvalidBody     = "Invalid request body."
	msgBodyTooLarge    = "Request body too large."
	msgTooManyRequests = "Too many requests."
)

// Server serves the HTTP API.
type Server struct {
	cfg     config.Server
	trace   vectorize.Options
	cache   *cache.Cache
	limiter *rate.Limiter
	mux     *http.ServeMux
}

// New creates a server for the given configuration. The cache is
// optional and may be nil.
func New(cfg *config.Config, c *cache.Cache) *Server {
	s := &Server{
		cfg:   cfg.Server,
		trace: cfg.Trace,
		cache: c,
		mux:   http.NewServeMux(),
	}
	if cfg.Server.RequestsPerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.Server.RequestsPerSecond), cfg.Server.Burst)
	}

	s.mux.HandleFunc("POST /api/vectorize", s.handleVectorize)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	return s
}

// Handler returns the HTTP handler of the server, including request ID
// and rate limiting middleware.
func (s *Server) Handler() http.Handler {
	return s.withRequestID(s.withRateLimit(s.mux))
}

// Run listens on the configured address and serves requests.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.cache != nil && s.cfg.CacheMaxAgeHours > 0 {
		maxAge := time.Duration(s.cfg.CacheMaxAgeHours) * time.Hour
		expireCtx, stop := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			defer close(done)
			s.cache.Expire(expireCtx, maxAge, time.Hour)
		}()
		defer func() {
			stop()
			<-done
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	logger.Info("listening on %s", s.cfg.Addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.New().String()
		w.Header().Set("X-Request-ID", id)
		logger.Debug("%s %s %s", id, r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withRateLimit(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, msgTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// vectorizeRequest is the body of POST /api/vectorize.
type vectorizeRequest struct {
	Image   string          `json:"image"`
	Options json.RawMessage `json:"options,omitempty"`
}

type vectorizeResponse struct {
	SVG string `json:"svg"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleVectorize(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)

	var req vectorizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
		} else {
			writeError(w, http.StatusBadRequest, msgInvalidBody)
		}
		return
	}
	if req.Image == "" {
		writeError(w, http.StatusBadRequest, msgImageRequired)
		return
	}

	opts := s.trace
	if len(req.Options) > 0 {
		if err := json.Unmarshal(req.Options, &opts); err != nil {
			writeError(w, http.StatusBadRequest, msgInvalidBody)
			return
		}
	}

	svg, err := s.vectorize(r.Context(), req.Image, opts)
	if err != nil {
		if isClientError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		logger.Warn("%s: %v", w.Header().Get("X-Request-ID"), err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	writeJSON(w, http.StatusOK, vectorizeResponse{SVG: svg})
}

// vectorize traces the encoded image and returns the SVG output,
// consulting the cache if one is configured.
func (s *Server) vectorize(ctx context.Context, image string, opts vectorize.Options) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", err
	}
	data, err := payload.Decode(image)
	if err != nil {
		return "", err
	}
	if err := payload.CheckSize(data, s.cfg.MaxPixels); err != nil {
		return "", err
	}

	var key string
	if s.cache != nil {
		key = cache.Key(data, opts)
		svg, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			logger.Warn("cache: %v", err)
		} else if ok {
			logger.Debug("cache hit %s", key[:12])
			return svg, nil
		}
	}

	img, err := vectorize.DecodeBytes(data)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.TimeoutSeconds)*time.Second)
	defer cancel()

	done := logger.Timed("trace")
	doc, err := vectorize.Trace(ctx, img, opts)
	done()
	if err != nil {
		return "", err
	}

	buf := &bytes.Buffer{}
	if err := vectorize.WriteSVG(buf, doc, opts.Precision); err != nil {
		return "", err
	}
	svg := buf.String()

	if s.cache != nil {
		if err := s.cache.Put(ctx, key, svg); err != nil {
			logger.Warn("cache: %v", err)
		}
	}
	return svg, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// isClientError reports whether err is caused by the request contents.
func isClientError(err error) bool {
	return errors.Is(err, vectorize.ErrInvalidInput) ||
		errors.Is(err, vectorize.ErrUnsupportedFormat) ||
		errors.Is(err, vectorize.ErrConfig)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

const shutdownTimeout = 5 * time.Second
