package statusapi

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"

	"github.com/five82/logcollector/internal/state"
)

// Paths served by Server.
const (
	StatusPath  = "/api/status"
	MetricsPath = "/metrics"
)

const shutdownTimeout = 3 * time.Second

// StatusFunc reports the current collector status.
type StatusFunc func() state.Status

// Server exposes the collector status as JSON and its metrics in the
// Prometheus text format.
type Server struct {
	log    logr.Logger
	status StatusFunc
	srv    *http.Server
	ln     net.Listener
}

// NewServer binds addr and prepares the handlers. metrics may be nil, in
// which case /metrics is not served.
func NewServer(addr string, status StatusFunc, metrics http.Handler, log logr.Logger) (*Server, error) {
	if status == nil {
		return nil, errors.New("status func is nil")
	}
	if addr == "" {
		addr = defaultAPIBind
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "listen on %s", addr)
	}
	s := &Server{log: log.WithName("statusapi"), status: status, ln: ln}
	s.srv = &http.Server{
		Handler:           s.Handler(metrics),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s, nil
}

// Handler returns the mux used by the server.
func (s *Server) Handler(metrics http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(StatusPath, s.handleStatus)
	if metrics != nil {
		mux.Handle(MetricsPath, metrics)
	}
	return mux
}

// Addr is the bound listen address.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Serve blocks until ctx is done, then shuts the server down.
func (s *Server) Serve(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		errc <- s.srv.Serve(s.ln)
	}()
	s.log.Info("serving status api", "addr", s.Addr())

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "serve status api")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown status api")
	}
	return nil
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.status()); err != nil {
		s.log.Error(err, "encode status")
	}
}
