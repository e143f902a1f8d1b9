// Copyright 2024 The spahost Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package server hosts an http.Handler on its own listener, adding request
// ids, real client addresses, request logging and panic recovery.
package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Options configures a Server.
type Options struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// Server serves a single handler on all methods and paths.
type Server struct {
	srv             *http.Server
	log             logrus.FieldLogger
	shutdownTimeout time.Duration
}

// New returns a new Server passing every request to handler.
func New(opts Options, handler http.Handler, logger logrus.FieldLogger) *Server {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	// chi would otherwise answer unknown methods and unrouted paths on its
	// own.
	r.Handle("/", handler)
	r.Handle("/*", handler)
	r.NotFound(handler.ServeHTTP)
	r.MethodNotAllowed(handler.ServeHTTP)

	return &Server{
		srv: &http.Server{
			Addr:              opts.Addr,
			Handler:           r,
			ReadHeaderTimeout: opts.ReadHeaderTimeout,
			IdleTimeout:       120 * time.Second,
		},
		log:             logger,
		shutdownTimeout: opts.ShutdownTimeout,
	}
}

// Handler returns the handler with all middleware in place.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Run listens on the configured address and serves until Shutdown gets
// called. It returns nil after a clean shutdown.
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.srv.Addr)
	if err != nil {
		return errors.Wrapf(err, "listening on %s", s.srv.Addr)
	}
	return s.Serve(ln)
}

// Serve serves on the specified listener until Shutdown gets called. It
// returns nil after a clean shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.log.WithField("addr", ln.Addr().String()).Info("serving http")
	err := s.srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return errors.Wrap(err, "serving http")
}

// Shutdown gracefully stops the server, waiting at most the configured
// shutdown timeout for active requests to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.shutdownTimeout)
		defer cancel()
	}
	return errors.Wrap(s.srv.Shutdown(ctx), "shutting down http")
}

// requestLogger logs a single structured line per request after it has been
// served.
func requestLogger(logger logrus.FieldLogger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.WithFields(logrus.Fields{
					"method":      r.Method,
					"path":        r.URL.Path,
					"status":      ww.Status(),
					"bytes":       ww.BytesWritten(),
					"duration_ms": time.Since(start).Milliseconds(),
					"remote":      r.RemoteAddr,
					"request_id":  middleware.GetReqID(r.Context()),
				}).Info("http request")
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
