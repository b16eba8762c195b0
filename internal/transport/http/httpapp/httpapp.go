package httpapp

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"go.uber.org/zap"
)

// HTTPApp owns the HTTP server lifecycle around an already-populated mux.
type HTTPApp struct {
	log    *zap.Logger
	server *http.Server
	addr   string
}

func New(log *zap.Logger, host string, port int, handler http.Handler, readTimeout, writeTimeout time.Duration) *HTTPApp {
	addr := fmt.Sprintf("%s:%d", host, port)

	server := &http.Server{
		Addr:         addr,
		Handler:      recoveryMiddleware(log, loggingMiddleware(log, handler)),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	return &HTTPApp{
		log:    log,
		server: server,
		addr:   addr,
	}
}

func (a *HTTPApp) Run() error {
	const op = "httpapp.Run"

	a.log.Info("HTTP server started", zap.String("addr", a.addr))

	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (a *HTTPApp) Stop(ctx context.Context) {
	a.log.Info("stopping HTTP server", zap.String("addr", a.addr))
	if err := a.server.Shutdown(ctx); err != nil {
		a.log.Error("http shutdown error", zap.Error(err))
	}
}

func loggingMiddleware(log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		log.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", sw.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func recoveryMiddleware(log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("path", r.URL.Path),
					zap.ByteString("stack", debug.Stack()),
				)
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
