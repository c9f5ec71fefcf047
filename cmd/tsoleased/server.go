package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/omid-ha/leasemanager/leasemanager"
)

const shutdownTimeout = 5 * time.Second

// httpServer exposes /metrics for prometheus scraping and /healthz for
// the surrounding infrastructure (a load balancer, an orchestrator's
// liveness probe) to check mastership without needing its own Consul
// client: it consults the transport/serving pipeline's fixed contract,
// InLeasePeriod(), on every request.
type httpServer struct {
	inner *http.Server
	ctrl  *leasemanager.Controller
}

func newHTTPServer(addr string, ctrl *leasemanager.Controller) *httpServer {
	mux := http.NewServeMux()
	s := &httpServer{ctrl: ctrl}
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", s.healthz)
	s.inner = &http.Server{Addr: addr, Handler: mux}
	return s
}

func (s *httpServer) healthz(w http.ResponseWriter, r *http.Request) {
	if s.ctrl.InLeasePeriod() {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "master")
		return
	}
	w.WriteHeader(http.StatusServiceUnavailable)
	fmt.Fprintln(w, "not master")
}

func (s *httpServer) start() error {
	if err := s.inner.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *httpServer) stop(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
