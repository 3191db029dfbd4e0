// internal/infra/health/server.go
package health

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const statusText = "Bot is running"

// Server answers the hosting platform's port check. It shares no state with the broadcaster.
type Server struct {
	http   *http.Server
	logger *logrus.Entry
}

func NewServer(port int, logger *logrus.Entry) *Server {
	s := &Server{logger: logger}

	r := mux.NewRouter()
	r.HandleFunc("/", s.status).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/healthz", s.status).Methods(http.MethodGet, http.MethodHead)

	s.http = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(statusText))
}

// Start blocks serving until Shutdown; it returns http.ErrServerClosed after a clean stop.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.http.Addr).Info("Health server listening")
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}
